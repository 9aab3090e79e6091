package domain

import (
	"math"
	"testing"
)

func TestDurationSeconds(t *testing.T) {
	tests := []struct {
		name string
		v    float64
		unit string
		want float64
	}{
		{"hours", 1.5, "hours", 5400},
		{"minutes", 30, "minutes", 1800},
		{"milliseconds", 2500, "ms", 2.5},
		{"already seconds", 90, "seconds", 90},
		{"unknown unit passes through", 42, "fortnights", 42},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := DurationSeconds(tc.v, tc.unit); got != tc.want {
				t.Fatalf("DurationSeconds(%v, %q) = %v, want %v", tc.v, tc.unit, got, tc.want)
			}
		})
	}
}

func TestDistanceKm(t *testing.T) {
	got := DistanceKm(6.5, "miles")
	if math.Abs(got-10.46) > 0.01 {
		t.Fatalf("6.5 miles = %v km, want ~10.46", got)
	}
	if got := DistanceKm(10300, "meters"); got != 10.3 {
		t.Fatalf("10300 m = %v km, want 10.3", got)
	}
	if got := DistanceKm(5, "km"); got != 5 {
		t.Fatalf("km should pass through, got %v", got)
	}
}

func TestMmolToMgdl(t *testing.T) {
	got := MmolToMgdl(5.5)
	if math.Abs(got-99.1) > 0.1 {
		t.Fatalf("5.5 mmol/L = %v mg/dL, want ~99.1", got)
	}
}

func TestPace(t *testing.T) {
	p := Pace(3000, 10)
	if p == nil || *p != 300 {
		t.Fatalf("expected pace 300 s/km, got %v", p)
	}
	if p := Pace(3000, 0); p != nil {
		t.Fatalf("expected nil pace for zero distance, got %v", *p)
	}
}

func TestActivityLabel(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Running - 6.50 miles", "Running"},
		{"Cycling", "Cycling"},
		{"  Walking ", "Walking"},
	}
	for _, tc := range tests {
		if got := ActivityLabel(tc.in); got != tc.want {
			t.Fatalf("ActivityLabel(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
