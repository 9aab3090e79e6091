package postgres

import (
	"context"

	"healthsync/internal/domain"
)

const (
	usageFields        = 5
	contributionFields = 4
	sleepFields        = 5
)

// UpsertUsageDays writes assistant-usage rollups, overwriting non-key
// fields: each sync recomputes whole days from source data.
func (d *DB) UpsertUsageDays(ctx context.Context, days []domain.UsageDay) (int, error) {
	written := 0
	size := batchSize(usageFields)
	for i := 0; i < len(days); i += size {
		chunk := days[i:min(i+size, len(days))]
		args := make([]any, 0, len(chunk)*usageFields)
		for _, u := range chunk {
			args = append(args, u.Day, u.Model, u.InputTokens, u.OutputTokens, u.CostUSD)
		}
		query := "INSERT INTO usage_days(day, model, input_tokens, output_tokens, cost_usd) VALUES " +
			placeholders(len(chunk), usageFields) +
			" ON CONFLICT (day, model) DO UPDATE SET input_tokens=EXCLUDED.input_tokens, output_tokens=EXCLUDED.output_tokens, cost_usd=EXCLUDED.cost_usd;"
		written += d.execBatch(ctx, "usage_days", query, args, len(chunk))
	}
	return written, nil
}

// ListUsageDays returns the most recent usage rollups up to limit.
func (d *DB) ListUsageDays(ctx context.Context, limit int) ([]domain.UsageDay, error) {
	rows, err := d.sql.QueryContext(ctx,
		"SELECT day, model, input_tokens, output_tokens, cost_usd FROM usage_days ORDER BY day DESC, model LIMIT $1;", limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close() //nolint:errcheck

	var out []domain.UsageDay
	for rows.Next() {
		var u domain.UsageDay
		if err := rows.Scan(&u.Day, &u.Model, &u.InputTokens, &u.OutputTokens, &u.CostUSD); err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

// UpsertContributionDays writes GitHub rollups, overwriting non-key fields.
func (d *DB) UpsertContributionDays(ctx context.Context, days []domain.ContributionDay) (int, error) {
	written := 0
	size := batchSize(contributionFields)
	for i := 0; i < len(days); i += size {
		chunk := days[i:min(i+size, len(days))]
		args := make([]any, 0, len(chunk)*contributionFields)
		for _, c := range chunk {
			args = append(args, c.Day, c.Commits, c.PullRequests, c.Issues)
		}
		query := "INSERT INTO contribution_days(day, commits, pull_requests, issues) VALUES " +
			placeholders(len(chunk), contributionFields) +
			" ON CONFLICT (day) DO UPDATE SET commits=EXCLUDED.commits, pull_requests=EXCLUDED.pull_requests, issues=EXCLUDED.issues;"
		written += d.execBatch(ctx, "contribution_days", query, args, len(chunk))
	}
	return written, nil
}

// ListContributionDays returns the most recent GitHub rollups up to limit.
func (d *DB) ListContributionDays(ctx context.Context, limit int) ([]domain.ContributionDay, error) {
	rows, err := d.sql.QueryContext(ctx,
		"SELECT day, commits, pull_requests, issues FROM contribution_days ORDER BY day DESC LIMIT $1;", limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close() //nolint:errcheck

	var out []domain.ContributionDay
	for rows.Next() {
		var c domain.ContributionDay
		if err := rows.Scan(&c.Day, &c.Commits, &c.PullRequests, &c.Issues); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// UpsertSleepNights writes sleep rollups, overwriting non-key fields.
func (d *DB) UpsertSleepNights(ctx context.Context, nights []domain.SleepNight) (int, error) {
	written := 0
	size := batchSize(sleepFields)
	for i := 0; i < len(nights); i += size {
		chunk := nights[i:min(i+size, len(nights))]
		args := make([]any, 0, len(chunk)*sleepFields)
		for _, n := range chunk {
			args = append(args, n.Day, n.TotalMinutes, n.DeepMinutes, n.RemMinutes, n.Source)
		}
		query := "INSERT INTO sleep_nights(day, total_minutes, deep_minutes, rem_minutes, source) VALUES " +
			placeholders(len(chunk), sleepFields) +
			" ON CONFLICT (day) DO UPDATE SET total_minutes=EXCLUDED.total_minutes, deep_minutes=EXCLUDED.deep_minutes, rem_minutes=EXCLUDED.rem_minutes, source=EXCLUDED.source;"
		written += d.execBatch(ctx, "sleep_nights", query, args, len(chunk))
	}
	return written, nil
}

// ListSleepNights returns the most recent sleep rollups up to limit.
func (d *DB) ListSleepNights(ctx context.Context, limit int) ([]domain.SleepNight, error) {
	rows, err := d.sql.QueryContext(ctx,
		"SELECT day, total_minutes, deep_minutes, rem_minutes, source FROM sleep_nights ORDER BY day DESC LIMIT $1;", limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close() //nolint:errcheck

	var out []domain.SleepNight
	for rows.Next() {
		var n domain.SleepNight
		if err := rows.Scan(&n.Day, &n.TotalMinutes, &n.DeepMinutes, &n.RemMinutes, &n.Source); err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}
