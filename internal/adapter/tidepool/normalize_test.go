package tidepool_test

import (
	"encoding/json"
	"testing"

	"healthsync/internal/adapter/tidepool"
	"healthsync/internal/domain"
)

func TestNormalize_GlucoseUnitConversion(t *testing.T) {
	v := 5.5
	set := tidepool.Normalize([]tidepool.Datum{
		{Type: "cbg", Time: "2026-08-01T08:00:00Z", Value: &v, Units: "mmol/L", Trend: "flat"},
	})
	if len(set.Readings) != 1 {
		t.Fatalf("got %d readings, want 1", len(set.Readings))
	}
	r := set.Readings[0]
	if r.ValueMgdl < 99.0 || r.ValueMgdl > 99.2 {
		t.Fatalf("value = %v mg/dL, want ~99.1", r.ValueMgdl)
	}
	if r.Trend != "flat" {
		t.Fatalf("trend = %q", r.Trend)
	}
	if r.Source != tidepool.Source {
		t.Fatalf("source = %q", r.Source)
	}
}

func TestNormalize_GlucoseAlreadyMgdl(t *testing.T) {
	v := 110.0
	set := tidepool.Normalize([]tidepool.Datum{
		{Type: "cbg", Time: "2026-08-01T08:00:00Z", Value: &v, Units: "mg/dL"},
	})
	if len(set.Readings) != 1 || set.Readings[0].ValueMgdl != 110 {
		t.Fatalf("set = %+v", set)
	}
}

func TestNormalize_Doses(t *testing.T) {
	normal := 4.5
	rate := 0.85
	set := tidepool.Normalize([]tidepool.Datum{
		{Type: "bolus", Time: "2026-08-01T12:00:00Z", Normal: &normal, SubType: "normal"},
		{Type: "basal", Time: "2026-08-01T12:30:00Z", Rate: &rate, DeliveryType: "automated",
			Duration: json.RawMessage(`1800000`)},
	})
	if len(set.Doses) != 2 {
		t.Fatalf("got %d doses, want 2", len(set.Doses))
	}

	bolus := set.Doses[0]
	if bolus.Type != domain.DoseBolus || bolus.Units != 4.5 {
		t.Fatalf("bolus = %+v", bolus)
	}
	if bolus.DurationSeconds != nil {
		t.Fatal("a bolus has no duration")
	}

	basal := set.Doses[1]
	if basal.Type != domain.DoseBasal || basal.Units != 0.85 || basal.SubType != "automated" {
		t.Fatalf("basal = %+v", basal)
	}
	if basal.DurationSeconds == nil || *basal.DurationSeconds != 1800 {
		t.Fatalf("basal duration = %v, want 1800s from 1800000ms", basal.DurationSeconds)
	}
}

func TestNormalize_PhysicalActivity(t *testing.T) {
	set := tidepool.Normalize([]tidepool.Datum{
		{
			Type:     "physicalActivity",
			Time:     "2026-08-01T07:00:00Z",
			Name:     "Running - 6.50 miles",
			Duration: json.RawMessage(`{"value":3000,"units":"seconds"}`),
			Distance: &tidepool.ValueUnits{Value: 6.5, Units: "miles"},
			Energy:   &tidepool.ValueUnits{Value: 512, Units: "kilocalories"},
		},
	})
	if len(set.Sessions) != 1 {
		t.Fatalf("got %d sessions, want 1", len(set.Sessions))
	}
	s := set.Sessions[0]
	if s.ActivityType != "running" {
		t.Fatalf("activity type = %q, want running (suffix stripped, lowercased)", s.ActivityType)
	}
	if s.DistanceKm < 10.46 || s.DistanceKm > 10.47 {
		t.Fatalf("distance = %v km, want ~10.46", s.DistanceKm)
	}
	if s.DurationSeconds != 3000 {
		t.Fatalf("duration = %v", s.DurationSeconds)
	}
	if s.PaceSecPerKm == nil {
		t.Fatal("expected a pace")
	}
	if s.EndTime == nil {
		t.Fatal("expected an end time")
	}
	if s.Calories == nil || *s.Calories != 512 {
		t.Fatalf("calories = %v", s.Calories)
	}
}

func TestNormalize_SleepKeyedByEndDay(t *testing.T) {
	set := tidepool.Normalize([]tidepool.Datum{
		{
			Type:      "sleep",
			Time:      "2026-07-31T23:00:00Z",
			Duration:  json.RawMessage(`{"value":8,"units":"hours"}`),
			DeepSleep: &tidepool.ValueUnits{Value: 90, Units: "minutes"},
			RemSleep:  &tidepool.ValueUnits{Value: 110, Units: "minutes"},
		},
	})
	if len(set.Sleep) != 1 {
		t.Fatalf("got %d sleep nights, want 1", len(set.Sleep))
	}
	n := set.Sleep[0]
	if n.Day != "2026-08-01" {
		t.Fatalf("day = %q, want the day the night ended on", n.Day)
	}
	if n.TotalMinutes != 480 {
		t.Fatalf("total = %v minutes, want 480", n.TotalMinutes)
	}
	if n.DeepMinutes != 90 || n.RemMinutes != 110 {
		t.Fatalf("deep=%v rem=%v", n.DeepMinutes, n.RemMinutes)
	}
}

func TestNormalize_SkipsMalformed(t *testing.T) {
	v := 5.5
	set := tidepool.Normalize([]tidepool.Datum{
		{Type: "cbg", Time: "not-a-time", Value: &v},
		{Type: "cbg", Time: "2026-08-01T08:00:00Z"}, // no value
		{Type: "bolus", Time: "2026-08-01T08:00:00Z"},
		{Type: "basal", Time: "2026-08-01T08:00:00Z"},
		{Type: "physicalActivity", Time: "2026-08-01T08:00:00Z"}, // no duration
		{Type: "smbg", Time: "2026-08-01T08:00:00Z", Value: &v},  // unrequested type
		{Type: "cbg", Time: "2026-08-01T08:05:00Z", Value: &v, Units: "mmol/L"},
	})
	if set.Skipped != 6 {
		t.Fatalf("skipped = %d, want 6", set.Skipped)
	}
	if len(set.Readings) != 1 {
		t.Fatalf("got %d readings, want the 1 valid one", len(set.Readings))
	}
	if set.Count() != 1 {
		t.Fatalf("count = %d, want 1", set.Count())
	}
}
