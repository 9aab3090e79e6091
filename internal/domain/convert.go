package domain

import "strings"

const (
	mmolToMgdl = 18.0182
	milesToKm  = 1.609344
)

// MmolToMgdl converts a glucose value from mmol/L (the upstream's internal
// unit) to mg/dL.
func MmolToMgdl(v float64) float64 {
	return v * mmolToMgdl
}

// DistanceKm converts a distance value to kilometers.
// Returns v unchanged if the unit is unrecognised or already km.
func DistanceKm(v float64, unit string) float64 {
	switch unit {
	case "miles", "mi":
		return v * milesToKm
	case "meters", "m":
		return v / 1000
	default:
		return v
	}
}

// DurationSeconds converts a duration value to seconds.
// Returns v unchanged if the unit is unrecognised or already seconds.
func DurationSeconds(v float64, unit string) float64 {
	switch unit {
	case "hours", "h":
		return v * 3600
	case "minutes", "min":
		return v * 60
	case "milliseconds", "ms":
		return v / 1000
	default:
		return v
	}
}

// Pace returns seconds per kilometer, or nil when distance is zero.
// A missing pace is not the same thing as a zero pace.
func Pace(durationSeconds, distanceKm float64) *float64 {
	if distanceKm <= 0 {
		return nil
	}
	p := durationSeconds / distanceKm
	return &p
}

// ActivityLabel strips a trailing description suffix like " - 6.50 miles"
// from an upstream activity name, leaving the bare activity type.
func ActivityLabel(name string) string {
	if i := strings.Index(name, " - "); i >= 0 {
		name = name[:i]
	}
	return strings.TrimSpace(name)
}
