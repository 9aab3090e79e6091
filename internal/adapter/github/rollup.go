package github

import (
	"sort"
	"time"

	"healthsync/internal/domain"
)

// Rollup aggregates raw events inside the window into per-day
// contribution counts. Pure function. Each sync recomputes whole days
// from scratch; the store overwrites rather than accumulates.
func Rollup(events []Event, start, end time.Time) []domain.ContributionDay {
	perDay := make(map[string]*domain.ContributionDay)
	for _, ev := range events {
		if ev.CreatedAt.Before(start) || ev.CreatedAt.After(end) {
			continue
		}
		day := ev.CreatedAt.UTC().Format("2006-01-02")
		d, ok := perDay[day]
		if !ok {
			d = &domain.ContributionDay{Day: day}
			perDay[day] = d
		}
		switch ev.Type {
		case "PushEvent":
			n := ev.Payload.Size
			if n == 0 {
				n = 1
			}
			d.Commits += n
		case "PullRequestEvent":
			if ev.Payload.Action == "opened" {
				d.PullRequests++
			}
		case "IssuesEvent":
			if ev.Payload.Action == "opened" {
				d.Issues++
			}
		}
	}

	out := make([]domain.ContributionDay, 0, len(perDay))
	for _, d := range perDay {
		out = append(out, *d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Day < out[j].Day })
	return out
}
