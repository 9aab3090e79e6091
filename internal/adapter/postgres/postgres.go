// Package postgres implements the domain repository ports on PostgreSQL.
// Ingestion writes are batched multi-row upserts sized to a bound-parameter
// ceiling; a failed batch is logged and skipped so later batches still run.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"strings"
	"time"

	_ "github.com/lib/pq"

	"healthsync/internal/observability"
)

// maxBindParams caps bound parameters per statement. Postgres allows far
// more; keeping batches small bounds statement size and limits how many
// rows one failed batch takes down with it.
const maxBindParams = 100

// DB wraps a *sql.DB and implements the domain repository interfaces.
type DB struct {
	sql *sql.DB
}

// Open connects to PostgreSQL, pings, and runs migrations.
func Open(connStr string) (*DB, error) {
	s, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, err
	}
	s.SetMaxOpenConns(10)
	s.SetMaxIdleConns(5)
	s.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.PingContext(ctx); err != nil {
		_ = s.Close()
		return nil, err
	}

	d := &DB{sql: s}
	if err := d.migrate(ctx); err != nil {
		_ = s.Close()
		return nil, err
	}
	return d, nil
}

// Close closes the underlying database connection.
func (d *DB) Close() error {
	return d.sql.Close()
}

// Ping reports whether the store is reachable.
func (d *DB) Ping(ctx context.Context) error {
	return d.sql.PingContext(ctx)
}

func (d *DB) migrate(ctx context.Context) error {
	stmts := []string{
		"CREATE TABLE IF NOT EXISTS glucose_readings (time TIMESTAMPTZ PRIMARY KEY, value_mgdl DOUBLE PRECISION NOT NULL, trend TEXT NOT NULL DEFAULT '', source TEXT NOT NULL);",
		"CREATE TABLE IF NOT EXISTS insulin_doses (time TIMESTAMPTZ NOT NULL, type TEXT NOT NULL CHECK(type IN ('bolus','basal')), units DOUBLE PRECISION NOT NULL, sub_type TEXT NOT NULL DEFAULT '', duration_seconds DOUBLE PRECISION, source TEXT NOT NULL, PRIMARY KEY(time, type));",
		"CREATE TABLE IF NOT EXISTS sessions (start_time TIMESTAMPTZ PRIMARY KEY, end_time TIMESTAMPTZ, distance_km DOUBLE PRECISION NOT NULL, duration_seconds DOUBLE PRECISION NOT NULL, pace_sec_per_km DOUBLE PRECISION, avg_heart_rate DOUBLE PRECISION, max_heart_rate DOUBLE PRECISION, elevation_gain_m DOUBLE PRECISION, activity_type TEXT NOT NULL, calories DOUBLE PRECISION, source TEXT NOT NULL);",
		"CREATE INDEX IF NOT EXISTS idx_sessions_missing_hr ON sessions(start_time) WHERE avg_heart_rate IS NULL;",
		"CREATE TABLE IF NOT EXISTS credentials (key TEXT PRIMARY KEY, value TEXT NOT NULL, updated_at TIMESTAMPTZ NOT NULL);",
		"CREATE TABLE IF NOT EXISTS usage_days (day TEXT NOT NULL, model TEXT NOT NULL, input_tokens BIGINT NOT NULL, output_tokens BIGINT NOT NULL, cost_usd DOUBLE PRECISION NOT NULL, PRIMARY KEY(day, model));",
		"CREATE TABLE IF NOT EXISTS contribution_days (day TEXT PRIMARY KEY, commits INT NOT NULL, pull_requests INT NOT NULL, issues INT NOT NULL);",
		"CREATE TABLE IF NOT EXISTS sleep_nights (day TEXT PRIMARY KEY, total_minutes DOUBLE PRECISION NOT NULL, deep_minutes DOUBLE PRECISION NOT NULL DEFAULT 0, rem_minutes DOUBLE PRECISION NOT NULL DEFAULT 0, source TEXT NOT NULL);",
	}
	for _, stmt := range stmts {
		if _, err := d.sql.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}

// batchSize returns how many rows of the given width fit under the
// parameter ceiling.
func batchSize(fieldsPerRow int) int {
	return maxBindParams / fieldsPerRow
}

// placeholders builds "($1,$2),($3,$4),..." for rows x fields.
func placeholders(rows, fields int) string {
	var b strings.Builder
	n := 1
	for r := 0; r < rows; r++ {
		if r > 0 {
			b.WriteByte(',')
		}
		b.WriteByte('(')
		for f := 0; f < fields; f++ {
			if f > 0 {
				b.WriteByte(',')
			}
			fmt.Fprintf(&b, "$%d", n)
			n++
		}
		b.WriteByte(')')
	}
	return b.String()
}

// execBatch runs one upsert statement and returns the affected-row count.
// A failed batch is logged and counted, not propagated; the caller moves
// on to the next batch.
func (d *DB) execBatch(ctx context.Context, table, query string, args []any, rows int) int {
	res, err := d.sql.ExecContext(ctx, query, args...)
	if err != nil {
		log.Printf("postgres: %s batch of %d rows failed: %v", table, rows, err)
		observability.RecordBatchFailure()
		return 0
	}
	n, err := res.RowsAffected()
	if err != nil {
		return rows
	}
	return int(n)
}
