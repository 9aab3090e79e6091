package postgres

import (
	"context"
	"time"

	"healthsync/internal/domain"
)

const sessionFields = 11

// UpsertSessions inserts workout sessions, first write wins per start
// time. Heart-rate fields are not touched here; SetHeartRate is the only
// mutation path.
func (d *DB) UpsertSessions(ctx context.Context, sessions []domain.Session) (int, error) {
	inserted := 0
	size := batchSize(sessionFields)
	for i := 0; i < len(sessions); i += size {
		chunk := sessions[i:min(i+size, len(sessions))]
		args := make([]any, 0, len(chunk)*sessionFields)
		for _, s := range chunk {
			var endTime any
			if s.EndTime != nil {
				endTime = s.EndTime.UTC()
			}
			args = append(args, s.StartTime.UTC(), endTime, s.DistanceKm, s.DurationSeconds,
				s.PaceSecPerKm, s.AvgHeartRate, s.MaxHeartRate, s.ElevationGainM,
				s.ActivityType, s.Calories, s.Source)
		}
		query := "INSERT INTO sessions(start_time, end_time, distance_km, duration_seconds, pace_sec_per_km, avg_heart_rate, max_heart_rate, elevation_gain_m, activity_type, calories, source) VALUES " +
			placeholders(len(chunk), sessionFields) + " ON CONFLICT (start_time) DO NOTHING;"
		inserted += d.execBatch(ctx, "sessions", query, args, len(chunk))
	}
	return inserted, nil
}

// SessionsMissingHeartRate returns sessions in [start, end] that have no
// average heart rate yet, ordered by start time.
func (d *DB) SessionsMissingHeartRate(ctx context.Context, start, end time.Time) ([]domain.Session, error) {
	rows, err := d.sql.QueryContext(ctx,
		"SELECT start_time, end_time, distance_km, duration_seconds, pace_sec_per_km, avg_heart_rate, max_heart_rate, elevation_gain_m, activity_type, calories, source FROM sessions WHERE avg_heart_rate IS NULL AND start_time >= $1 AND start_time <= $2 ORDER BY start_time;",
		start.UTC(), end.UTC())
	if err != nil {
		return nil, err
	}
	defer rows.Close() //nolint:errcheck
	return scanSessions(rows)
}

// SetHeartRate fills the heart-rate fields of the session keyed by start
// time. Applying the same update twice is harmless.
func (d *DB) SetHeartRate(ctx context.Context, startTime time.Time, avg, max *float64) error {
	_, err := d.sql.ExecContext(ctx,
		"UPDATE sessions SET avg_heart_rate=$2, max_heart_rate=$3 WHERE start_time=$1;",
		startTime.UTC(), avg, max)
	return err
}

// ListRecentSessions returns the most recent sessions up to limit.
func (d *DB) ListRecentSessions(ctx context.Context, limit int) ([]domain.Session, error) {
	rows, err := d.sql.QueryContext(ctx,
		"SELECT start_time, end_time, distance_km, duration_seconds, pace_sec_per_km, avg_heart_rate, max_heart_rate, elevation_gain_m, activity_type, calories, source FROM sessions ORDER BY start_time DESC LIMIT $1;",
		limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close() //nolint:errcheck
	return scanSessions(rows)
}

type rowScanner interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}

func scanSessions(rows rowScanner) ([]domain.Session, error) {
	var out []domain.Session
	for rows.Next() {
		var s domain.Session
		if err := rows.Scan(&s.StartTime, &s.EndTime, &s.DistanceKm, &s.DurationSeconds,
			&s.PaceSecPerKm, &s.AvgHeartRate, &s.MaxHeartRate, &s.ElevationGainM,
			&s.ActivityType, &s.Calories, &s.Source); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
