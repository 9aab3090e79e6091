// Package anthropic fetches per-day, per-model assistant usage from an
// admin usage-report endpoint.
package anthropic

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"healthsync/internal/domain"
)

// Source tags every record produced by this adapter.
const Source = "claude"

const apiVersion = "2023-06-01"

// Config holds usage-report client configuration.
type Config struct {
	BaseURL   string
	AdminKey  string
	PageDelay time.Duration
}

// Client talks to the usage-report API.
type Client struct {
	cfg        Config
	httpClient *http.Client
}

// NewClient creates a Client.
func NewClient(cfg Config) *Client {
	return &Client{cfg: cfg, httpClient: &http.Client{Timeout: 30 * time.Second}}
}

// UsageBucket is one raw day-by-model usage row.
type UsageBucket struct {
	Date         string  `json:"date"`
	Model        string  `json:"model"`
	InputTokens  int64   `json:"input_tokens"`
	OutputTokens int64   `json:"output_tokens"`
	CostUSD      float64 `json:"cost_usd"`
}

// usagePage is the tagged union over the two response shapes this
// endpoint is known to produce: a bare JSON array, or an object wrapping
// a data array with a has-more flag and cursor.
type usagePage struct {
	Data     []UsageBucket
	HasMore  bool
	NextPage string
}

// decodePage discriminates on the first non-space byte. Everything else
// in the client deals only in usagePage.
func decodePage(body []byte) (usagePage, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return usagePage{}, fmt.Errorf("empty usage response")
	}
	if trimmed[0] == '[' {
		var data []UsageBucket
		if err := json.Unmarshal(trimmed, &data); err != nil {
			return usagePage{}, fmt.Errorf("decode usage array: %w", err)
		}
		return usagePage{Data: data}, nil
	}
	var obj struct {
		Data     []UsageBucket `json:"data"`
		HasMore  bool          `json:"has_more"`
		NextPage string        `json:"next_page"`
	}
	if err := json.Unmarshal(trimmed, &obj); err != nil {
		return usagePage{}, fmt.Errorf("decode usage object: %w", err)
	}
	return usagePage{Data: obj.Data, HasMore: obj.HasMore, NextPage: obj.NextPage}, nil
}

// FetchUsage pages through the usage report for the window, following the
// has-more cursor until exhaustion. Buckets collected before a failure
// are returned alongside the error.
func (c *Client) FetchUsage(ctx context.Context, start, end time.Time) ([]UsageBucket, error) {
	if c.cfg.AdminKey == "" {
		return nil, &domain.AuthError{Source: Source, Reason: "no admin key configured"}
	}

	var all []UsageBucket
	cursor := ""
	for page := 1; ; page++ {
		if page > 1 && c.cfg.PageDelay > 0 {
			select {
			case <-ctx.Done():
				return all, ctx.Err()
			case <-time.After(c.cfg.PageDelay):
			}
		}

		q := url.Values{}
		q.Set("starting_at", start.UTC().Format("2006-01-02"))
		q.Set("ending_at", end.UTC().Format("2006-01-02"))
		if cursor != "" {
			q.Set("page", cursor)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet,
			c.cfg.BaseURL+"/v1/organizations/usage_report/messages?"+q.Encode(), nil)
		if err != nil {
			return all, err
		}
		req.Header.Set("X-Api-Key", c.cfg.AdminKey)
		req.Header.Set("Anthropic-Version", apiVersion)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return all, fmt.Errorf("usage page %d: %w", page, err)
		}
		body, err := io.ReadAll(resp.Body)
		resp.Body.Close() //nolint:errcheck
		if err != nil {
			return all, fmt.Errorf("usage page %d: read body: %w", page, err)
		}
		if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
			return all, &domain.AuthError{
				Source: Source,
				Reason: fmt.Sprintf("admin key rejected: status %d: %s", resp.StatusCode, domain.TruncateBody(body)),
			}
		}
		if resp.StatusCode != http.StatusOK {
			return all, &domain.FetchError{Source: Source, Status: resp.StatusCode, Body: domain.TruncateBody(body)}
		}

		pg, err := decodePage(body)
		if err != nil {
			return all, fmt.Errorf("usage page %d: %w", page, err)
		}
		all = append(all, pg.Data...)
		if !pg.HasMore || pg.NextPage == "" {
			return all, nil
		}
		cursor = pg.NextPage
	}
}

// FetchWindow is the orchestrator-facing facade: fetch and normalize.
// Partial results survive a mid-paging failure.
func (c *Client) FetchWindow(ctx context.Context, start, end time.Time) ([]domain.UsageDay, error) {
	buckets, err := c.FetchUsage(ctx, start, end)
	return Normalize(buckets), err
}

// Normalize converts raw buckets into canonical usage days, merging
// duplicate (day, model) rows additively within the one fetched window.
func Normalize(buckets []UsageBucket) []domain.UsageDay {
	type key struct{ day, model string }
	merged := make(map[key]*domain.UsageDay)
	order := make([]key, 0, len(buckets))
	for _, b := range buckets {
		if b.Date == "" || b.Model == "" {
			continue
		}
		k := key{b.Date, b.Model}
		d, ok := merged[k]
		if !ok {
			d = &domain.UsageDay{Day: b.Date, Model: b.Model}
			merged[k] = d
			order = append(order, k)
		}
		d.InputTokens += b.InputTokens
		d.OutputTokens += b.OutputTokens
		d.CostUSD += b.CostUSD
	}
	out := make([]domain.UsageDay, 0, len(order))
	for _, k := range order {
		out = append(out, *merged[k])
	}
	return out
}
