// Package memory implements the repository ports in memory for
// development and testing.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"healthsync/internal/domain"
)

// DB implements every repository port with map-backed storage.
type DB struct {
	mu            sync.Mutex
	readings      map[int64]domain.Reading // keyed by UnixNano
	doses         map[doseKey]domain.Dose
	sessions      map[int64]domain.Session
	credentials   map[string]string
	usageDays     map[usageKey]domain.UsageDay
	contributions map[string]domain.ContributionDay
	sleepNights   map[string]domain.SleepNight
}

type doseKey struct {
	time int64
	typ  string
}

type usageKey struct {
	day   string
	model string
}

// New creates an empty in-memory database.
func New() *DB {
	return &DB{
		readings:      make(map[int64]domain.Reading),
		doses:         make(map[doseKey]domain.Dose),
		sessions:      make(map[int64]domain.Session),
		credentials:   make(map[string]string),
		usageDays:     make(map[usageKey]domain.UsageDay),
		contributions: make(map[string]domain.ContributionDay),
		sleepNights:   make(map[string]domain.SleepNight),
	}
}

// Ensure interfaces are met.
var _ domain.GlucoseRepository = (*DB)(nil)
var _ domain.DoseRepository = (*DB)(nil)
var _ domain.SessionRepository = (*DB)(nil)
var _ domain.RollupRepository = (*DB)(nil)
var _ domain.CredentialStore = (*DB)(nil)

// --- GlucoseRepository ---

// UpsertReadings inserts readings, first write wins per timestamp.
func (db *DB) UpsertReadings(ctx context.Context, readings []domain.Reading) (int, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	inserted := 0
	for _, r := range readings {
		k := r.Time.UTC().UnixNano()
		if _, exists := db.readings[k]; exists {
			continue
		}
		db.readings[k] = r
		inserted++
	}
	return inserted, nil
}

// ListReadingsBetween returns readings in [start, end) ordered by time.
func (db *DB) ListReadingsBetween(ctx context.Context, start, end time.Time) ([]domain.Reading, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	var out []domain.Reading
	for _, r := range db.readings {
		if r.Time.Before(start) || !r.Time.Before(end) {
			continue
		}
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Time.Before(out[j].Time) })
	return out, nil
}

// --- DoseRepository ---

// UpsertDoses inserts doses, first write wins per (time, type).
func (db *DB) UpsertDoses(ctx context.Context, doses []domain.Dose) (int, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	inserted := 0
	for _, d := range doses {
		k := doseKey{d.Time.UTC().UnixNano(), d.Type}
		if _, exists := db.doses[k]; exists {
			continue
		}
		db.doses[k] = d
		inserted++
	}
	return inserted, nil
}

// ListDosesBetween returns doses in [start, end) ordered by time.
func (db *DB) ListDosesBetween(ctx context.Context, start, end time.Time) ([]domain.Dose, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	var out []domain.Dose
	for _, d := range db.doses {
		if d.Time.Before(start) || !d.Time.Before(end) {
			continue
		}
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Time.Before(out[j].Time) })
	return out, nil
}

// --- SessionRepository ---

// UpsertSessions inserts sessions, first write wins per start time.
func (db *DB) UpsertSessions(ctx context.Context, sessions []domain.Session) (int, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	inserted := 0
	for _, s := range sessions {
		k := s.StartTime.UTC().UnixNano()
		if _, exists := db.sessions[k]; exists {
			continue
		}
		db.sessions[k] = s
		inserted++
	}
	return inserted, nil
}

// SessionsMissingHeartRate returns sessions in [start, end] without an
// average heart rate, ordered by start time.
func (db *DB) SessionsMissingHeartRate(ctx context.Context, start, end time.Time) ([]domain.Session, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	var out []domain.Session
	for _, s := range db.sessions {
		if s.AvgHeartRate != nil {
			continue
		}
		if s.StartTime.Before(start) || s.StartTime.After(end) {
			continue
		}
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartTime.Before(out[j].StartTime) })
	return out, nil
}

// SetHeartRate fills heart-rate fields on the session keyed by start time.
func (db *DB) SetHeartRate(ctx context.Context, startTime time.Time, avg, max *float64) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	k := startTime.UTC().UnixNano()
	s, ok := db.sessions[k]
	if !ok {
		return nil
	}
	s.AvgHeartRate = avg
	s.MaxHeartRate = max
	db.sessions[k] = s
	return nil
}

// ListRecentSessions returns the most recent sessions up to limit.
func (db *DB) ListRecentSessions(ctx context.Context, limit int) ([]domain.Session, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	out := make([]domain.Session, 0, len(db.sessions))
	for _, s := range db.sessions {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartTime.After(out[j].StartTime) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// --- RollupRepository ---

// UpsertUsageDays overwrites usage rollups per (day, model).
func (db *DB) UpsertUsageDays(ctx context.Context, days []domain.UsageDay) (int, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	for _, u := range days {
		db.usageDays[usageKey{u.Day, u.Model}] = u
	}
	return len(days), nil
}

// ListUsageDays returns the most recent usage rollups up to limit.
func (db *DB) ListUsageDays(ctx context.Context, limit int) ([]domain.UsageDay, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	out := make([]domain.UsageDay, 0, len(db.usageDays))
	for _, u := range db.usageDays {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Day != out[j].Day {
			return out[i].Day > out[j].Day
		}
		return out[i].Model < out[j].Model
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// UpsertContributionDays overwrites GitHub rollups per day.
func (db *DB) UpsertContributionDays(ctx context.Context, days []domain.ContributionDay) (int, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	for _, c := range days {
		db.contributions[c.Day] = c
	}
	return len(days), nil
}

// ListContributionDays returns the most recent GitHub rollups up to limit.
func (db *DB) ListContributionDays(ctx context.Context, limit int) ([]domain.ContributionDay, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	out := make([]domain.ContributionDay, 0, len(db.contributions))
	for _, c := range db.contributions {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Day > out[j].Day })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// UpsertSleepNights overwrites sleep rollups per day.
func (db *DB) UpsertSleepNights(ctx context.Context, nights []domain.SleepNight) (int, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	for _, n := range nights {
		db.sleepNights[n.Day] = n
	}
	return len(nights), nil
}

// ListSleepNights returns the most recent sleep rollups up to limit.
func (db *DB) ListSleepNights(ctx context.Context, limit int) ([]domain.SleepNight, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	out := make([]domain.SleepNight, 0, len(db.sleepNights))
	for _, n := range db.sleepNights {
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Day > out[j].Day })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// --- CredentialStore ---

// Get returns the stored credential value, or "" when absent.
func (db *DB) Get(ctx context.Context, key string) (string, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	return db.credentials[key], nil
}

// Set stores a credential value, overwriting any previous one.
func (db *DB) Set(ctx context.Context, key, value string) error {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.credentials[key] = value
	return nil
}
