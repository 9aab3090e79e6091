package postgres

import (
	"context"
	"time"

	"healthsync/internal/domain"
)

const doseFields = 6

// UpsertDoses inserts insulin doses, first write wins per (time, type).
func (d *DB) UpsertDoses(ctx context.Context, doses []domain.Dose) (int, error) {
	inserted := 0
	size := batchSize(doseFields)
	for i := 0; i < len(doses); i += size {
		chunk := doses[i:min(i+size, len(doses))]
		args := make([]any, 0, len(chunk)*doseFields)
		for _, dose := range chunk {
			args = append(args, dose.Time.UTC(), dose.Type, dose.Units, dose.SubType, dose.DurationSeconds, dose.Source)
		}
		query := "INSERT INTO insulin_doses(time, type, units, sub_type, duration_seconds, source) VALUES " +
			placeholders(len(chunk), doseFields) + " ON CONFLICT (time, type) DO NOTHING;"
		inserted += d.execBatch(ctx, "insulin_doses", query, args, len(chunk))
	}
	return inserted, nil
}

// ListDosesBetween returns doses in [start, end) ordered by time.
func (d *DB) ListDosesBetween(ctx context.Context, start, end time.Time) ([]domain.Dose, error) {
	rows, err := d.sql.QueryContext(ctx,
		"SELECT time, type, units, sub_type, duration_seconds, source FROM insulin_doses WHERE time >= $1 AND time < $2 ORDER BY time;",
		start.UTC(), end.UTC())
	if err != nil {
		return nil, err
	}
	defer rows.Close() //nolint:errcheck

	var out []domain.Dose
	for rows.Next() {
		var dose domain.Dose
		if err := rows.Scan(&dose.Time, &dose.Type, &dose.Units, &dose.SubType, &dose.DurationSeconds, &dose.Source); err != nil {
			return nil, err
		}
		out = append(out, dose)
	}
	return out, rows.Err()
}
