// Package github fetches a user's public event feed and rolls it up into
// per-day contribution counts.
package github

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/oauth2"

	"healthsync/internal/domain"
)

// Source tags every record produced by this adapter.
const Source = "github"

const eventsPageSize = 100

// Config holds GitHub client configuration. Token may be empty; the
// events endpoint works unauthenticated at a lower rate limit.
type Config struct {
	BaseURL   string
	User      string
	Token     string
	PageDelay time.Duration
}

// Client talks to the GitHub REST API.
type Client struct {
	cfg        Config
	httpClient *http.Client
}

// NewClient creates a Client. When a token is configured, requests go
// through an oauth2 transport that injects the bearer header. The
// transport is installed on the client rather than built with
// oauth2.NewClient so the request timeout survives.
func NewClient(cfg Config) *Client {
	c := &Client{cfg: cfg, httpClient: &http.Client{Timeout: 30 * time.Second}}
	if cfg.Token != "" {
		src := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.Token})
		c.httpClient.Transport = &oauth2.Transport{Source: src}
	}
	return c
}

// Event is the raw GitHub event shape, limited to the fields the rollup
// needs.
type Event struct {
	Type      string    `json:"type"`
	CreatedAt time.Time `json:"created_at"`
	Payload   struct {
		Size   int    `json:"size"` // PushEvent: commits in the push
		Action string `json:"action"`
	} `json:"payload"`
}

// FetchEvents pages through the user's event feed, newest first, until a
// page is empty or entirely older than the window. Pages collected before
// a failure are returned alongside the error.
func (c *Client) FetchEvents(ctx context.Context, start, end time.Time) ([]Event, error) {
	if c.cfg.User == "" {
		return nil, &domain.AuthError{Source: Source, Reason: "no user configured"}
	}

	var all []Event
	for page := 1; ; page++ {
		if page > 1 && c.cfg.PageDelay > 0 {
			select {
			case <-ctx.Done():
				return all, ctx.Err()
			case <-time.After(c.cfg.PageDelay):
			}
		}

		q := url.Values{}
		q.Set("page", strconv.Itoa(page))
		q.Set("per_page", strconv.Itoa(eventsPageSize))

		req, err := http.NewRequestWithContext(ctx, http.MethodGet,
			c.cfg.BaseURL+"/users/"+c.cfg.User+"/events?"+q.Encode(), nil)
		if err != nil {
			return all, err
		}
		req.Header.Set("Accept", "application/vnd.github+json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return all, fmt.Errorf("events page %d: %w", page, err)
		}
		body, err := io.ReadAll(resp.Body)
		resp.Body.Close() //nolint:errcheck
		if err != nil {
			return all, fmt.Errorf("events page %d: read body: %w", page, err)
		}
		if resp.StatusCode != http.StatusOK {
			return all, &domain.FetchError{Source: Source, Status: resp.StatusCode, Body: domain.TruncateBody(body)}
		}

		var items []Event
		if err := json.Unmarshal(body, &items); err != nil {
			return all, fmt.Errorf("events page %d: decode: %w", page, err)
		}
		if len(items) == 0 {
			return all, nil
		}
		all = append(all, items...)

		// The feed is newest-first; once a page ends before the window
		// starts there is nothing left worth fetching.
		if items[len(items)-1].CreatedAt.Before(start) {
			return all, nil
		}
	}
}

// FetchWindow is the orchestrator-facing facade: fetch and roll up.
// Partial results survive a mid-paging failure.
func (c *Client) FetchWindow(ctx context.Context, start, end time.Time) ([]domain.ContributionDay, error) {
	events, err := c.FetchEvents(ctx, start, end)
	return Rollup(events, start, end), err
}
