package postgres

import (
	"context"
	"time"

	"healthsync/internal/domain"
)

const readingFields = 4

// UpsertReadings inserts glucose readings, first write wins per
// timestamp. Returns the number of newly inserted rows.
func (d *DB) UpsertReadings(ctx context.Context, readings []domain.Reading) (int, error) {
	inserted := 0
	size := batchSize(readingFields)
	for i := 0; i < len(readings); i += size {
		chunk := readings[i:min(i+size, len(readings))]
		args := make([]any, 0, len(chunk)*readingFields)
		for _, r := range chunk {
			args = append(args, r.Time.UTC(), r.ValueMgdl, r.Trend, r.Source)
		}
		query := "INSERT INTO glucose_readings(time, value_mgdl, trend, source) VALUES " +
			placeholders(len(chunk), readingFields) + " ON CONFLICT (time) DO NOTHING;"
		inserted += d.execBatch(ctx, "glucose_readings", query, args, len(chunk))
	}
	return inserted, nil
}

// ListReadingsBetween returns readings in [start, end) ordered by time.
func (d *DB) ListReadingsBetween(ctx context.Context, start, end time.Time) ([]domain.Reading, error) {
	rows, err := d.sql.QueryContext(ctx,
		"SELECT time, value_mgdl, trend, source FROM glucose_readings WHERE time >= $1 AND time < $2 ORDER BY time;",
		start.UTC(), end.UTC())
	if err != nil {
		return nil, err
	}
	defer rows.Close() //nolint:errcheck

	var out []domain.Reading
	for rows.Next() {
		var r domain.Reading
		if err := rows.Scan(&r.Time, &r.ValueMgdl, &r.Trend, &r.Source); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
