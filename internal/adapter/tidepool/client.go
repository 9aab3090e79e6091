// Package tidepool is the driven adapter for a Tidepool-style diabetes
// data platform: session-token login plus a windowed data fetch covering
// glucose, insulin, activity and sleep datums.
package tidepool

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"healthsync/internal/domain"
)

// Source tags every record produced by this adapter.
const Source = "tidepool"

const sessionTokenHeader = "X-Tidepool-Session-Token"

// Datum types requested from the upstream.
var defaultTypes = []string{"cbg", "bolus", "basal", "physicalActivity", "sleep"}

// Config holds Tidepool client configuration.
type Config struct {
	BaseURL  string
	Email    string
	Password string
}

// Client talks to the Tidepool API. Login is stateless; the session token
// lives only for the duration of one sync cycle.
type Client struct {
	cfg        Config
	httpClient *http.Client
}

// NewClient creates a Client for the given account.
func NewClient(cfg Config) *Client {
	return &Client{cfg: cfg, httpClient: &http.Client{Timeout: 30 * time.Second}}
}

// Login authenticates with basic auth and returns the ephemeral session
// token (from a response header) and the account's user id (from the
// body). Nothing is persisted.
func (c *Client) Login(ctx context.Context) (token, userID string, err error) {
	if c.cfg.Email == "" || c.cfg.Password == "" {
		return "", "", &domain.AuthError{Source: Source, Reason: "no credentials configured"}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/auth/login", nil)
	if err != nil {
		return "", "", err
	}
	req.SetBasicAuth(c.cfg.Email, c.cfg.Password)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", "", fmt.Errorf("login: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", "", fmt.Errorf("login: read body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", "", &domain.AuthError{
			Source: Source,
			Reason: fmt.Sprintf("login rejected: status %d: %s", resp.StatusCode, domain.TruncateBody(body)),
		}
	}

	token = resp.Header.Get(sessionTokenHeader)
	if token == "" {
		return "", "", &domain.AuthError{Source: Source, Reason: "login response missing session token header"}
	}

	var lr struct {
		UserID string `json:"userid"`
	}
	if err := json.Unmarshal(body, &lr); err != nil {
		return "", "", fmt.Errorf("login: decode: %w", err)
	}
	if lr.UserID == "" {
		return "", "", &domain.AuthError{Source: Source, Reason: "login response missing userid"}
	}
	return token, lr.UserID, nil
}

// ValueUnits is an upstream quantity with an explicit unit.
type ValueUnits struct {
	Value float64 `json:"value"`
	Units string  `json:"units"`
}

// Datum is one raw record from the data endpoint. The shape is
// heterogeneous across types; fields irrelevant to a given type are
// simply absent. Duration is raw JSON because basal segments encode it
// as bare milliseconds while activity and sleep use {value, units}.
type Datum struct {
	Type         string          `json:"type"`
	Time         string          `json:"time"`
	Value        *float64        `json:"value"`
	Units        string          `json:"units"`
	Trend        string          `json:"trend"`
	SubType      string          `json:"subType"`
	Normal       *float64        `json:"normal"`
	Rate         *float64        `json:"rate"`
	DeliveryType string          `json:"deliveryType"`
	Name         string          `json:"name"`
	Duration     json.RawMessage `json:"duration"`
	Distance     *ValueUnits     `json:"distance"`
	Energy       *ValueUnits     `json:"energy"`
	DeepSleep    *ValueUnits     `json:"deepSleep"`
	RemSleep     *ValueUnits     `json:"remSleep"`
}

// DurationSeconds decodes the polymorphic duration field. A bare number
// is milliseconds; an object carries its own units.
func (d Datum) DurationSeconds() *float64 {
	if len(d.Duration) == 0 {
		return nil
	}
	var ms float64
	if err := json.Unmarshal(d.Duration, &ms); err == nil {
		s := domain.DurationSeconds(ms, "ms")
		return &s
	}
	var vu ValueUnits
	if err := json.Unmarshal(d.Duration, &vu); err == nil {
		s := domain.DurationSeconds(vu.Value, vu.Units)
		return &s
	}
	return nil
}

// FetchData returns all datums of the requested types in the window. The
// endpoint answers the whole window in one response; there is no paging
// to drive.
func (c *Client) FetchData(ctx context.Context, token, userID string, start, end time.Time, types []string) ([]Datum, error) {
	if len(types) == 0 {
		types = defaultTypes
	}
	q := url.Values{}
	q.Set("type", strings.Join(types, ","))
	q.Set("startDate", start.UTC().Format(time.RFC3339))
	q.Set("endDate", end.UTC().Format(time.RFC3339))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.BaseURL+"/data/"+userID+"?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set(sessionTokenHeader, token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch data: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("fetch data: read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &domain.FetchError{Source: Source, Status: resp.StatusCode, Body: domain.TruncateBody(body)}
	}

	var datums []Datum
	if err := json.Unmarshal(body, &datums); err != nil {
		return nil, fmt.Errorf("fetch data: decode: %w", err)
	}
	return datums, nil
}

// FetchWindow is the orchestrator-facing facade: login, fetch, normalize.
func (c *Client) FetchWindow(ctx context.Context, start, end time.Time) (domain.RecordSet, error) {
	token, userID, err := c.Login(ctx)
	if err != nil {
		return domain.RecordSet{}, err
	}
	datums, err := c.FetchData(ctx, token, userID, start, end, nil)
	if err != nil {
		return domain.RecordSet{}, err
	}
	return Normalize(datums), nil
}
