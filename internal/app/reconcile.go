// Package app holds the application services: the sync orchestrator, the
// cross-source reconciler and the dashboard query services.
package app

import (
	"math"
	"time"

	"healthsync/internal/domain"
)

// Tolerances for deciding that two independently-recorded sessions
// describe the same real-world workout. The distance tolerance absorbs
// GPS and device measurement variance between services.
const (
	matchTimeTolerance     = 5 * time.Minute
	matchDistanceTolerance = 0.20
)

// SessionMatch proposes heart-rate fields for an already-persisted
// session, identified by its start time. The reconciler only ever
// proposes updates; the persistence layer applies them.
type SessionMatch struct {
	StartTime    time.Time
	AvgHeartRate *float64
	MaxHeartRate *float64
}

// Matcher pairs heart-rate-carrying candidates from a secondary source
// with existing sessions. Implementations decide the assignment strategy;
// callers only see proposals and an unmatched count.
type Matcher interface {
	Match(existing, candidates []domain.Session) ([]SessionMatch, int)
}

// greedyMatcher takes the first existing session within tolerance for
// each candidate. An already-claimed session stays eligible for later
// candidates, so when two candidates fit the same session the later one
// wins. That mirrors the long-standing behavior downstream consumers see;
// changing it to a one-to-one assignment belongs behind a new Matcher.
type greedyMatcher struct{}

// NewGreedyMatcher returns the first-match-wins Matcher.
func NewGreedyMatcher() Matcher {
	return greedyMatcher{}
}

func (greedyMatcher) Match(existing, candidates []domain.Session) ([]SessionMatch, int) {
	var matches []SessionMatch
	unmatched := 0
	for _, cand := range candidates {
		if cand.AvgHeartRate == nil {
			continue
		}
		matched := false
		for _, s := range existing {
			if !sameWorkout(s, cand) {
				continue
			}
			matches = append(matches, SessionMatch{
				StartTime:    s.StartTime,
				AvgHeartRate: cand.AvgHeartRate,
				MaxHeartRate: cand.MaxHeartRate,
			})
			matched = true
			break
		}
		if !matched {
			unmatched++
		}
	}
	return matches, unmatched
}

// sameWorkout holds when the start times are within five minutes and the
// candidate's distance is within 20% of the existing session's. The
// existing session is the reference for the relative difference, so the
// bound is symmetric around it in absolute terms. When either side lacks
// a distance the time check alone decides.
func sameWorkout(s, cand domain.Session) bool {
	dt := s.StartTime.Sub(cand.StartTime)
	if dt < 0 {
		dt = -dt
	}
	if dt > matchTimeTolerance {
		return false
	}
	if s.DistanceKm == 0 || cand.DistanceKm == 0 {
		return true
	}
	diff := math.Abs(s.DistanceKm - cand.DistanceKm)
	return diff/s.DistanceKm <= matchDistanceTolerance
}
