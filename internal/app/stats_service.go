package app

import (
	"context"
	"sort"
	"time"

	"healthsync/internal/domain"
)

// Clinical glucose band for the time-in-range statistic, mg/dL.
const (
	rangeLowMgdl  = 70
	rangeHighMgdl = 180
)

// StatsService encapsulates dashboard query use cases over the synced
// store. It never writes.
type StatsService struct {
	glucose  domain.GlucoseRepository
	doses    domain.DoseRepository
	sessions domain.SessionRepository
	rollups  domain.RollupRepository
}

// NewStatsService creates a StatsService backed by the given repositories.
func NewStatsService(g domain.GlucoseRepository, d domain.DoseRepository, s domain.SessionRepository, r domain.RollupRepository) *StatsService {
	return &StatsService{glucose: g, doses: d, sessions: s, rollups: r}
}

// GlucosePoint is one day of glucose statistics.
type GlucosePoint struct {
	Day         string  `json:"day"`
	Average     float64 `json:"average"`
	TimeInRange float64 `json:"timeInRange"` // fraction of readings in [70, 180] mg/dL
	Readings    int     `json:"readings"`
}

// GlucoseDaily returns per-day mean glucose and time-in-range for the
// last days days. Days without readings are omitted.
func (s *StatsService) GlucoseDaily(ctx context.Context, days int) ([]GlucosePoint, error) {
	if days <= 0 {
		days = 14
	}
	if days > 90 {
		days = 90
	}
	end := time.Now().UTC()
	start := end.AddDate(0, 0, -days)

	readings, err := s.glucose.ListReadingsBetween(ctx, start, end)
	if err != nil {
		return nil, err
	}

	type agg struct {
		sum     float64
		inRange int
		count   int
	}
	perDay := make(map[string]*agg)
	for _, r := range readings {
		day := r.Time.UTC().Format("2006-01-02")
		a, ok := perDay[day]
		if !ok {
			a = &agg{}
			perDay[day] = a
		}
		a.sum += r.ValueMgdl
		a.count++
		if r.ValueMgdl >= rangeLowMgdl && r.ValueMgdl <= rangeHighMgdl {
			a.inRange++
		}
	}

	points := make([]GlucosePoint, 0, len(perDay))
	for day, a := range perDay {
		points = append(points, GlucosePoint{
			Day:         day,
			Average:     a.sum / float64(a.count),
			TimeInRange: float64(a.inRange) / float64(a.count),
			Readings:    a.count,
		})
	}
	sort.Slice(points, func(i, j int) bool { return points[i].Day < points[j].Day })
	return points, nil
}

// RecentSessions returns the most recent workout sessions up to limit.
func (s *StatsService) RecentSessions(ctx context.Context, limit int) ([]domain.Session, error) {
	return s.sessions.ListRecentSessions(ctx, limit)
}

// DosesBetween returns insulin doses for the last days days.
func (s *StatsService) DosesBetween(ctx context.Context, days int) ([]domain.Dose, error) {
	if days <= 0 {
		days = 7
	}
	end := time.Now().UTC()
	return s.doses.ListDosesBetween(ctx, end.AddDate(0, 0, -days), end)
}

// UsageDays returns the most recent assistant-usage rollups up to limit.
func (s *StatsService) UsageDays(ctx context.Context, limit int) ([]domain.UsageDay, error) {
	return s.rollups.ListUsageDays(ctx, limit)
}

// ContributionDays returns the most recent GitHub rollups up to limit.
func (s *StatsService) ContributionDays(ctx context.Context, limit int) ([]domain.ContributionDay, error) {
	return s.rollups.ListContributionDays(ctx, limit)
}

// SleepNights returns the most recent sleep rollups up to limit.
func (s *StatsService) SleepNights(ctx context.Context, limit int) ([]domain.SleepNight, error) {
	return s.rollups.ListSleepNights(ctx, limit)
}
