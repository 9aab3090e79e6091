package domain

import (
	"context"
	"time"
)

// Session is a workout (run, ride, ...). StartTime is the unique key.
// Heart-rate fields are the only fields mutated after insert: the
// reconciler fills them in when a second source supplies them.
type Session struct {
	StartTime       time.Time  `json:"startTime"`
	EndTime         *time.Time `json:"endTime,omitempty"`
	DistanceKm      float64    `json:"distanceKm"`
	DurationSeconds float64    `json:"durationSeconds"`
	PaceSecPerKm    *float64   `json:"paceSecPerKm,omitempty"`
	AvgHeartRate    *float64   `json:"avgHeartRate,omitempty"`
	MaxHeartRate    *float64   `json:"maxHeartRate,omitempty"`
	ElevationGainM  *float64   `json:"elevationGainM,omitempty"`
	ActivityType    string     `json:"activityType"`
	Calories        *float64   `json:"calories,omitempty"`
	Source          string     `json:"source"`
}

// SessionRepository is the port for workout persistence. SetHeartRate is
// the single mutation path the reconciler is allowed to use.
type SessionRepository interface {
	UpsertSessions(ctx context.Context, sessions []Session) (int, error)
	SessionsMissingHeartRate(ctx context.Context, start, end time.Time) ([]Session, error)
	SetHeartRate(ctx context.Context, startTime time.Time, avg, max *float64) error
	ListRecentSessions(ctx context.Context, limit int) ([]Session, error)
}
