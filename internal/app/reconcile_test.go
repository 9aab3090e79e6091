package app_test

import (
	"testing"
	"time"

	"healthsync/internal/app"
	"healthsync/internal/domain"
)

func fptr(v float64) *float64 { return &v }

func session(start time.Time, km float64, avg, max *float64) domain.Session {
	return domain.Session{
		StartTime:       start,
		DistanceKm:      km,
		DurationSeconds: 1800,
		AvgHeartRate:    avg,
		MaxHeartRate:    max,
		ActivityType:    "running",
	}
}

func TestGreedyMatcher_TimeBoundary(t *testing.T) {
	base := time.Date(2026, 8, 1, 7, 0, 0, 0, time.UTC)
	m := app.NewGreedyMatcher()

	tests := []struct {
		name   string
		offset time.Duration
		want   bool
	}{
		{"exact", 0, true},
		{"four minutes", 4 * time.Minute, true},
		{"five minutes exactly", 5 * time.Minute, true},
		{"five minutes one second", 5*time.Minute + time.Second, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			existing := []domain.Session{session(base, 10, nil, nil)}
			cand := []domain.Session{session(base.Add(tc.offset), 10, fptr(150), fptr(165))}
			matches, unmatched := m.Match(existing, cand)
			if got := len(matches) == 1; got != tc.want {
				t.Fatalf("offset %v: matched=%v, want %v", tc.offset, got, tc.want)
			}
			if tc.want && unmatched != 0 {
				t.Fatalf("offset %v: unmatched=%d, want 0", tc.offset, unmatched)
			}
			if !tc.want && unmatched != 1 {
				t.Fatalf("offset %v: unmatched=%d, want 1", tc.offset, unmatched)
			}
		})
	}
}

func TestGreedyMatcher_DistanceBoundary(t *testing.T) {
	base := time.Date(2026, 8, 1, 7, 0, 0, 0, time.UTC)
	m := app.NewGreedyMatcher()

	tests := []struct {
		name       string
		existingKm float64
		candKm     float64
		want       bool
	}{
		{"identical", 10, 10, true},
		{"shorter within tolerance", 10, 8.1, true},
		{"shorter at tolerance", 10, 8, true},
		{"shorter past tolerance", 10, 7.9, false},
		{"longer within tolerance", 10, 11.9, true},
		{"longer at tolerance", 10, 12, true},
		{"longer past tolerance", 10, 12.1, false},
		{"existing has no distance", 0, 10, true},
		{"candidate has no distance", 10, 0, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			existing := []domain.Session{session(base, tc.existingKm, nil, nil)}
			cand := []domain.Session{session(base, tc.candKm, fptr(150), fptr(165))}
			matches, _ := m.Match(existing, cand)
			if got := len(matches) == 1; got != tc.want {
				t.Fatalf("%.1f vs %.1f km: matched=%v, want %v", tc.existingKm, tc.candKm, got, tc.want)
			}
		})
	}
}

func TestGreedyMatcher_SkipsCandidatesWithoutHeartRate(t *testing.T) {
	base := time.Date(2026, 8, 1, 7, 0, 0, 0, time.UTC)
	existing := []domain.Session{session(base, 10, nil, nil)}
	cand := []domain.Session{session(base, 10, nil, nil)}

	matches, unmatched := app.NewGreedyMatcher().Match(existing, cand)
	if len(matches) != 0 {
		t.Fatalf("expected no matches, got %d", len(matches))
	}
	if unmatched != 0 {
		t.Fatalf("a skipped candidate should not count as unmatched, got %d", unmatched)
	}
}

func TestGreedyMatcher_ProposesCandidateHeartRate(t *testing.T) {
	base := time.Date(2026, 8, 1, 7, 0, 0, 0, time.UTC)
	existing := []domain.Session{session(base, 10.3, nil, nil)}
	cand := []domain.Session{session(base.Add(2*time.Minute), 10.46, fptr(150), fptr(165))}

	matches, unmatched := app.NewGreedyMatcher().Match(existing, cand)
	if len(matches) != 1 || unmatched != 0 {
		t.Fatalf("got %d matches, %d unmatched; want 1, 0", len(matches), unmatched)
	}
	m := matches[0]
	if !m.StartTime.Equal(base) {
		t.Fatalf("match targets %v, want the existing session's start %v", m.StartTime, base)
	}
	if m.AvgHeartRate == nil || *m.AvgHeartRate != 150 {
		t.Fatalf("avg heart rate = %v, want 150", m.AvgHeartRate)
	}
	if m.MaxHeartRate == nil || *m.MaxHeartRate != 165 {
		t.Fatalf("max heart rate = %v, want 165", m.MaxHeartRate)
	}
}

func TestGreedyMatcher_LaterCandidateClaimsSameSession(t *testing.T) {
	base := time.Date(2026, 8, 1, 7, 0, 0, 0, time.UTC)
	existing := []domain.Session{session(base, 10, nil, nil)}
	cand := []domain.Session{
		session(base.Add(-time.Minute), 10, fptr(140), nil),
		session(base.Add(time.Minute), 10, fptr(155), nil),
	}

	matches, unmatched := app.NewGreedyMatcher().Match(existing, cand)
	if len(matches) != 2 || unmatched != 0 {
		t.Fatalf("got %d matches, %d unmatched; want 2, 0", len(matches), unmatched)
	}
	// Both claim the same target; the second proposal is the one that
	// lands last when applied in order.
	for i, m := range matches {
		if !m.StartTime.Equal(base) {
			t.Fatalf("match %d targets %v, want %v", i, m.StartTime, base)
		}
	}
	if *matches[1].AvgHeartRate != 155 {
		t.Fatalf("last proposal avg = %v, want 155", *matches[1].AvgHeartRate)
	}
}

func TestGreedyMatcher_CountsUnmatched(t *testing.T) {
	base := time.Date(2026, 8, 1, 7, 0, 0, 0, time.UTC)
	existing := []domain.Session{session(base, 10, nil, nil)}
	cand := []domain.Session{
		session(base, 10, fptr(150), nil),
		session(base.Add(3*time.Hour), 5, fptr(150), nil),
		session(base, 30, fptr(150), nil),
	}

	matches, unmatched := app.NewGreedyMatcher().Match(existing, cand)
	if len(matches) != 1 {
		t.Fatalf("got %d matches, want 1", len(matches))
	}
	if unmatched != 2 {
		t.Fatalf("got %d unmatched, want 2", unmatched)
	}
}
