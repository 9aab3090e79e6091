package domain

import "context"

// UsageDay is one calendar day of assistant usage for one model. Each
// sync recomputes the full day from source data and overwrites the row.
type UsageDay struct {
	Day          string  `json:"day"` // YYYY-MM-DD
	Model        string  `json:"model"`
	InputTokens  int64   `json:"inputTokens"`
	OutputTokens int64   `json:"outputTokens"`
	CostUSD      float64 `json:"costUsd"`
}

// ContributionDay is one calendar day of GitHub activity.
type ContributionDay struct {
	Day          string `json:"day"`
	Commits      int    `json:"commits"`
	PullRequests int    `json:"pullRequests"`
	Issues       int    `json:"issues"`
}

// SleepNight is one night of sleep, keyed by the day it ended on.
type SleepNight struct {
	Day          string  `json:"day"`
	TotalMinutes float64 `json:"totalMinutes"`
	DeepMinutes  float64 `json:"deepMinutes,omitempty"`
	RemMinutes   float64 `json:"remMinutes,omitempty"`
	Source       string  `json:"source"`
}

// RollupRepository is the port for daily aggregates. All writes overwrite
// non-key fields on conflict.
type RollupRepository interface {
	UpsertUsageDays(ctx context.Context, days []UsageDay) (int, error)
	ListUsageDays(ctx context.Context, limit int) ([]UsageDay, error)
	UpsertContributionDays(ctx context.Context, days []ContributionDay) (int, error)
	ListContributionDays(ctx context.Context, limit int) ([]ContributionDay, error)
	UpsertSleepNights(ctx context.Context, nights []SleepNight) (int, error)
	ListSleepNights(ctx context.Context, limit int) ([]SleepNight, error)
}
