// Package strava is the driven adapter for the Strava v3 API: OAuth
// refresh-token exchange with rotation, and paged activity listing.
package strava

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"healthsync/internal/domain"
)

// Source tags every record produced by this adapter.
const Source = "strava"

const defaultPageSize = 50

// Config holds Strava client configuration.
type Config struct {
	BaseURL      string
	TokenURL     string
	ClientID     string
	ClientSecret string
	PageDelay    time.Duration // minimum delay between page requests
}

// Client talks to the Strava API. Credentials rotate, so the client owns a
// CredentialStore rather than a static token.
type Client struct {
	cfg        Config
	creds      domain.CredentialStore
	httpClient *http.Client
}

// NewClient creates a Client backed by the given credential store.
func NewClient(cfg Config, creds domain.CredentialStore) *Client {
	return &Client{
		cfg:        cfg,
		creds:      creds,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// Activity is the raw Strava activity shape, prior to normalization.
// Distance is meters, times are seconds.
type Activity struct {
	Name          string    `json:"name"`
	Type          string    `json:"type"`
	Distance      float64   `json:"distance"`
	MovingTime    float64   `json:"moving_time"`
	ElapsedTime   float64   `json:"elapsed_time"`
	StartDate     time.Time `json:"start_date"`
	AvgHeartRate  *float64  `json:"average_heartrate"`
	MaxHeartRate  *float64  `json:"max_heartrate"`
	ElevationGain *float64  `json:"total_elevation_gain"`
	Calories      *float64  `json:"calories"`
}

// RefreshAccessToken exchanges the stored refresh token for an access
// token. Strava rotates the refresh token on every exchange, and the old
// one is invalidated, so the new value is persisted before the access
// token is returned.
func (c *Client) RefreshAccessToken(ctx context.Context) (string, error) {
	refresh, err := c.creds.Get(ctx, domain.CredStravaRefreshToken)
	if err != nil {
		return "", fmt.Errorf("read refresh token: %w", err)
	}
	if refresh == "" {
		return "", &domain.AuthError{Source: Source, Reason: "no stored refresh token"}
	}

	payload, err := json.Marshal(map[string]string{
		"client_id":     c.cfg.ClientID,
		"client_secret": c.cfg.ClientSecret,
		"grant_type":    "refresh_token",
		"refresh_token": refresh,
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.TokenURL, bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("token exchange: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("token exchange: read body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &domain.AuthError{
			Source: Source,
			Reason: fmt.Sprintf("token exchange rejected: status %d: %s", resp.StatusCode, domain.TruncateBody(body)),
		}
	}

	var tr struct {
		AccessToken  string `json:"access_token"`
		RefreshToken string `json:"refresh_token"`
	}
	if err := json.Unmarshal(body, &tr); err != nil {
		return "", fmt.Errorf("token exchange: decode: %w", err)
	}
	if tr.AccessToken == "" {
		return "", &domain.AuthError{Source: Source, Reason: "token exchange response missing access_token"}
	}

	// Persist the rotated refresh token before handing the access token
	// back. Overwriting with an unchanged value is harmless; skipping a
	// changed one bricks every later cycle.
	if tr.RefreshToken != "" {
		if err := c.creds.Set(ctx, domain.CredStravaRefreshToken, tr.RefreshToken); err != nil {
			return "", fmt.Errorf("persist rotated refresh token: %w", err)
		}
	}
	return tr.AccessToken, nil
}

// FetchActivities pages through /athlete/activities for the window. An
// empty page signals exhaustion. A failure on page N aborts further paging
// but returns the pages already collected alongside the error.
func (c *Client) FetchActivities(ctx context.Context, token string, start, end time.Time) ([]Activity, error) {
	var all []Activity
	for page := 1; ; page++ {
		if page > 1 && c.cfg.PageDelay > 0 {
			select {
			case <-ctx.Done():
				return all, ctx.Err()
			case <-time.After(c.cfg.PageDelay):
			}
		}

		q := url.Values{}
		q.Set("after", strconv.FormatInt(start.Unix(), 10))
		q.Set("before", strconv.FormatInt(end.Unix(), 10))
		q.Set("page", strconv.Itoa(page))
		q.Set("per_page", strconv.Itoa(defaultPageSize))

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.BaseURL+"/athlete/activities?"+q.Encode(), nil)
		if err != nil {
			return all, err
		}
		req.Header.Set("Authorization", "Bearer "+token)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return all, fmt.Errorf("activities page %d: %w", page, err)
		}
		body, err := io.ReadAll(resp.Body)
		resp.Body.Close() //nolint:errcheck
		if err != nil {
			return all, fmt.Errorf("activities page %d: read body: %w", page, err)
		}
		if resp.StatusCode != http.StatusOK {
			return all, &domain.FetchError{Source: Source, Status: resp.StatusCode, Body: domain.TruncateBody(body)}
		}

		var items []Activity
		if err := json.Unmarshal(body, &items); err != nil {
			return all, fmt.Errorf("activities page %d: decode: %w", page, err)
		}
		if len(items) == 0 {
			return all, nil
		}
		all = append(all, items...)
	}
}

// FetchWindow is the orchestrator-facing facade: refresh, fetch, normalize.
// Partial results survive a mid-paging failure.
func (c *Client) FetchWindow(ctx context.Context, start, end time.Time) ([]domain.Session, error) {
	token, err := c.RefreshAccessToken(ctx)
	if err != nil {
		return nil, err
	}
	raw, err := c.FetchActivities(ctx, token, start, end)
	sessions := make([]domain.Session, 0, len(raw))
	for _, a := range raw {
		sessions = append(sessions, Normalize(a))
	}
	return sessions, err
}
