package tidepool

import (
	"strings"
	"time"

	"healthsync/internal/domain"
)

// Normalize converts raw datums into canonical records. Pure function:
// malformed or unrecognised datums are skipped and counted, never failing
// the whole batch.
func Normalize(datums []Datum) domain.RecordSet {
	var set domain.RecordSet
	for _, d := range datums {
		ts, err := time.Parse(time.RFC3339, d.Time)
		if err != nil {
			set.Skipped++
			continue
		}
		ts = ts.UTC()

		switch d.Type {
		case "cbg":
			r, ok := normalizeReading(d, ts)
			if !ok {
				set.Skipped++
				continue
			}
			set.Readings = append(set.Readings, r)
		case "bolus":
			if d.Normal == nil {
				set.Skipped++
				continue
			}
			set.Doses = append(set.Doses, domain.Dose{
				Time:    ts,
				Type:    domain.DoseBolus,
				Units:   *d.Normal,
				SubType: d.SubType,
				Source:  Source,
			})
		case "basal":
			if d.Rate == nil {
				set.Skipped++
				continue
			}
			set.Doses = append(set.Doses, domain.Dose{
				Time:            ts,
				Type:            domain.DoseBasal,
				Units:           *d.Rate,
				SubType:         d.DeliveryType,
				DurationSeconds: d.DurationSeconds(),
				Source:          Source,
			})
		case "physicalActivity":
			s, ok := normalizeSession(d, ts)
			if !ok {
				set.Skipped++
				continue
			}
			set.Sessions = append(set.Sessions, s)
		case "sleep":
			n, ok := normalizeSleep(d, ts)
			if !ok {
				set.Skipped++
				continue
			}
			set.Sleep = append(set.Sleep, n)
		default:
			set.Skipped++
		}
	}
	return set
}

func normalizeReading(d Datum, ts time.Time) (domain.Reading, bool) {
	if d.Value == nil {
		return domain.Reading{}, false
	}
	v := *d.Value
	if d.Units == "mmol/L" || d.Units == "mmol/l" {
		v = domain.MmolToMgdl(v)
	}
	return domain.Reading{
		Time:      ts,
		ValueMgdl: v,
		Trend:     d.Trend,
		Source:    Source,
	}, true
}

func normalizeSession(d Datum, ts time.Time) (domain.Session, bool) {
	dur := d.DurationSeconds()
	if dur == nil {
		return domain.Session{}, false
	}
	var distKm float64
	if d.Distance != nil {
		distKm = domain.DistanceKm(d.Distance.Value, d.Distance.Units)
	}
	s := domain.Session{
		StartTime:       ts,
		DistanceKm:      distKm,
		DurationSeconds: *dur,
		PaceSecPerKm:    domain.Pace(*dur, distKm),
		ActivityType:    strings.ToLower(domain.ActivityLabel(d.Name)),
		Source:          Source,
	}
	end := ts.Add(time.Duration(*dur * float64(time.Second)))
	s.EndTime = &end
	if d.Energy != nil {
		cal := d.Energy.Value
		s.Calories = &cal
	}
	return s, true
}

func normalizeSleep(d Datum, ts time.Time) (domain.SleepNight, bool) {
	dur := d.DurationSeconds()
	if dur == nil {
		return domain.SleepNight{}, false
	}
	// A night is keyed by the day it ended on.
	end := ts.Add(time.Duration(*dur * float64(time.Second)))
	n := domain.SleepNight{
		Day:          end.UTC().Format("2006-01-02"),
		TotalMinutes: *dur / 60,
		Source:       Source,
	}
	if d.DeepSleep != nil {
		n.DeepMinutes = domain.DurationSeconds(d.DeepSleep.Value, d.DeepSleep.Units) / 60
	}
	if d.RemSleep != nil {
		n.RemMinutes = domain.DurationSeconds(d.RemSleep.Value, d.RemSleep.Units) / 60
	}
	return n, true
}
