package domain

// RecordSet groups the canonical records one sync window produced from a
// multi-type source. Skipped counts malformed upstream datums dropped
// during normalization.
type RecordSet struct {
	Readings []Reading
	Doses    []Dose
	Sessions []Session
	Sleep    []SleepNight
	Skipped  int
}

// Count returns the number of canonical records in the set.
func (r RecordSet) Count() int {
	return len(r.Readings) + len(r.Doses) + len(r.Sessions) + len(r.Sleep)
}
