package app

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"healthsync/internal/domain"
	"healthsync/internal/observability"
)

// Source names accepted by SyncOptions.Sources and reported in results.
const (
	SourceTidepool = "tidepool"
	SourceStrava   = "strava"
	SourceGitHub   = "github"
	SourceClaude   = "claude"
)

// Terminal statuses for one source sync. A sync that ran cleanly but
// found nothing is "empty", which is not a failure.
const (
	StatusOK     = "ok"
	StatusEmpty  = "empty"
	StatusFailed = "failed"
)

// HealthSource feeds glucose, insulin, activity and sleep records.
type HealthSource interface {
	FetchWindow(ctx context.Context, start, end time.Time) (domain.RecordSet, error)
}

// WorkoutSource feeds sessions from the secondary fitness API, used only
// to reconcile heart-rate fields into existing sessions.
type WorkoutSource interface {
	FetchWindow(ctx context.Context, start, end time.Time) ([]domain.Session, error)
}

// ContributionSource feeds daily GitHub activity rollups.
type ContributionSource interface {
	FetchWindow(ctx context.Context, start, end time.Time) ([]domain.ContributionDay, error)
}

// UsageSource feeds daily assistant-usage rollups.
type UsageSource interface {
	FetchWindow(ctx context.Context, start, end time.Time) ([]domain.UsageDay, error)
}

// SyncOptions parameterizes one orchestrated run. Zero values mean "the
// configured default lookback, all sources".
type SyncOptions struct {
	Days    int      `json:"days"`
	Sources []string `json:"sources"`
}

// SourceResult is the scoped outcome of one source's sync. Errors are
// carried here as strings and never escape the orchestrator.
type SourceResult struct {
	Source    string `json:"source"`
	Status    string `json:"status"`
	Processed int    `json:"processed"`
	Matched   int    `json:"matched,omitempty"`
	Unmatched int    `json:"unmatched,omitempty"`
	Skipped   int    `json:"skipped,omitempty"`
	Error     string `json:"error,omitempty"`
}

// SyncResult aggregates one orchestrated run.
type SyncResult struct {
	RunID   string         `json:"runId"`
	Started time.Time      `json:"started"`
	TookMs  int64          `json:"tookMs"`
	Sources []SourceResult `json:"sources"`
}

// SyncDeps wires a SyncService. Matcher defaults to the greedy matcher
// when nil; sources left nil are skipped as unconfigured.
type SyncDeps struct {
	Health        HealthSource
	Workouts      WorkoutSource
	Contributions ContributionSource
	Usage         UsageSource

	Glucose  domain.GlucoseRepository
	Doses    domain.DoseRepository
	Sessions domain.SessionRepository
	Rollups  domain.RollupRepository

	Matcher      Matcher
	LookbackDays int
	Timeout      time.Duration
}

// SyncService sequences the per-source pipelines and aggregates their
// results. Independent sources run concurrently; one source failing never
// aborts its siblings.
type SyncService struct {
	deps SyncDeps
}

// NewSyncService creates a SyncService from explicit dependencies.
func NewSyncService(deps SyncDeps) *SyncService {
	if deps.Matcher == nil {
		deps.Matcher = NewGreedyMatcher()
	}
	if deps.LookbackDays <= 0 {
		deps.LookbackDays = 3
	}
	return &SyncService{deps: deps}
}

// Run executes one sync cycle and always returns a result; errors are
// folded into the per-source entries.
func (s *SyncService) Run(ctx context.Context, opts SyncOptions) SyncResult {
	began := time.Now()
	runID := uuid.NewString()

	days := opts.Days
	if days <= 0 {
		days = s.deps.LookbackDays
	}
	end := time.Now().UTC()
	start := end.AddDate(0, 0, -days)

	if s.deps.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.deps.Timeout)
		defer cancel()
	}

	type step struct {
		name string
		run  func(context.Context, time.Time, time.Time) SourceResult
	}
	steps := []step{
		{SourceTidepool, s.syncTidepool},
		{SourceStrava, s.syncStrava},
		{SourceGitHub, s.syncContributions},
		{SourceClaude, s.syncUsage},
	}

	wanted := make(map[string]bool, len(opts.Sources))
	for _, src := range opts.Sources {
		wanted[src] = true
	}
	var selected []step
	for _, st := range steps {
		if len(wanted) == 0 || wanted[st.name] {
			selected = append(selected, st)
		}
	}

	results := make([]SourceResult, len(selected))
	var wg sync.WaitGroup
	for i, st := range selected {
		wg.Add(1)
		go func(i int, st step) {
			defer wg.Done()
			results[i] = st.run(ctx, start, end)
		}(i, st)
	}
	wg.Wait()

	for _, r := range results {
		observability.RecordSync(r.Source, r.Processed)
		if r.Status == StatusFailed {
			observability.RecordSyncFailure(r.Source)
		}
		log.Printf("sync %s source=%s status=%s processed=%d matched=%d unmatched=%d skipped=%d err=%q",
			runID, r.Source, r.Status, r.Processed, r.Matched, r.Unmatched, r.Skipped, r.Error)
	}

	return SyncResult{
		RunID:   runID,
		Started: began.UTC(),
		TookMs:  time.Since(began).Milliseconds(),
		Sources: results,
	}
}

func (s *SyncService) syncTidepool(ctx context.Context, start, end time.Time) SourceResult {
	res := SourceResult{Source: SourceTidepool}
	if s.deps.Health == nil {
		res.Error = "source not configured"
		return finalize(res)
	}

	set, err := s.deps.Health.FetchWindow(ctx, start, end)
	if err != nil {
		res.Error = err.Error()
	}
	res.Skipped = set.Skipped

	// Persist whatever came back, even on a partial fetch.
	if len(set.Readings) > 0 {
		n, uerr := s.deps.Glucose.UpsertReadings(ctx, set.Readings)
		res.Processed += n
		res.Error = firstError(res.Error, uerr)
	}
	if len(set.Doses) > 0 {
		n, uerr := s.deps.Doses.UpsertDoses(ctx, set.Doses)
		res.Processed += n
		res.Error = firstError(res.Error, uerr)
	}
	if len(set.Sessions) > 0 {
		n, uerr := s.deps.Sessions.UpsertSessions(ctx, set.Sessions)
		res.Processed += n
		res.Error = firstError(res.Error, uerr)
	}
	if len(set.Sleep) > 0 {
		n, uerr := s.deps.Rollups.UpsertSleepNights(ctx, set.Sleep)
		res.Processed += n
		res.Error = firstError(res.Error, uerr)
	}
	return finalize(res)
}

func (s *SyncService) syncStrava(ctx context.Context, start, end time.Time) SourceResult {
	res := SourceResult{Source: SourceStrava}
	if s.deps.Workouts == nil {
		res.Error = "source not configured"
		return finalize(res)
	}

	candidates, err := s.deps.Workouts.FetchWindow(ctx, start, end)
	if err != nil {
		res.Error = err.Error()
	}
	res.Processed = len(candidates)
	if len(candidates) == 0 {
		return finalize(res)
	}

	// Widen the window by the match tolerance so a session that started
	// just outside it can still claim a candidate near the edge.
	existing, lerr := s.deps.Sessions.SessionsMissingHeartRate(ctx,
		start.Add(-matchTimeTolerance), end.Add(matchTimeTolerance))
	if lerr != nil {
		res.Error = firstError(res.Error, lerr)
		return finalize(res)
	}

	// Unmatched counts candidates only; an update that fails to persist is
	// a store problem, reported through the error field.
	matches, unmatched := s.deps.Matcher.Match(existing, candidates)
	res.Unmatched = unmatched
	for _, m := range matches {
		if err := s.deps.Sessions.SetHeartRate(ctx, m.StartTime, m.AvgHeartRate, m.MaxHeartRate); err != nil {
			log.Printf("strava reconcile: update %s: %v", m.StartTime.Format(time.RFC3339), err)
			res.Error = firstError(res.Error, err)
			continue
		}
		res.Matched++
	}
	observability.RecordReconcile(res.Matched, res.Unmatched)
	return finalize(res)
}

func (s *SyncService) syncContributions(ctx context.Context, start, end time.Time) SourceResult {
	res := SourceResult{Source: SourceGitHub}
	if s.deps.Contributions == nil {
		res.Error = "source not configured"
		return finalize(res)
	}

	days, err := s.deps.Contributions.FetchWindow(ctx, start, end)
	if err != nil {
		res.Error = err.Error()
	}
	if len(days) > 0 {
		n, uerr := s.deps.Rollups.UpsertContributionDays(ctx, days)
		res.Processed = n
		res.Error = firstError(res.Error, uerr)
	}
	return finalize(res)
}

func (s *SyncService) syncUsage(ctx context.Context, start, end time.Time) SourceResult {
	res := SourceResult{Source: SourceClaude}
	if s.deps.Usage == nil {
		res.Error = "source not configured"
		return finalize(res)
	}

	days, err := s.deps.Usage.FetchWindow(ctx, start, end)
	if err != nil {
		res.Error = err.Error()
	}
	if len(days) > 0 {
		n, uerr := s.deps.Rollups.UpsertUsageDays(ctx, days)
		res.Processed = n
		res.Error = firstError(res.Error, uerr)
	}
	return finalize(res)
}

// finalize derives the terminal status from what the pipeline recorded.
func finalize(res SourceResult) SourceResult {
	switch {
	case res.Error != "":
		res.Status = StatusFailed
	case res.Processed == 0 && res.Matched == 0:
		res.Status = StatusEmpty
	default:
		res.Status = StatusOK
	}
	return res
}

func firstError(existing string, err error) string {
	if existing != "" {
		return existing
	}
	if err != nil {
		return err.Error()
	}
	return ""
}
