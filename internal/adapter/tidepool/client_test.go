package tidepool_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"healthsync/internal/adapter/tidepool"
	"healthsync/internal/domain"
)

func TestLogin(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/auth/login" || r.Method != http.MethodPost {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		user, pass, ok := r.BasicAuth()
		if !ok || user != "me@example.com" || pass != "hunter2" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("X-Tidepool-Session-Token", "sess-token")
		_ = json.NewEncoder(w).Encode(map[string]string{"userid": "abc123"})
	}))
	defer srv.Close()

	c := tidepool.NewClient(tidepool.Config{BaseURL: srv.URL, Email: "me@example.com", Password: "hunter2"})
	token, userID, err := c.Login(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if token != "sess-token" {
		t.Fatalf("token = %q, want sess-token", token)
	}
	if userID != "abc123" {
		t.Fatalf("userID = %q, want abc123", userID)
	}
}

func TestLogin_Failures(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"rejected credentials", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		}},
		{"missing session token header", func(w http.ResponseWriter, r *http.Request) {
			_ = json.NewEncoder(w).Encode(map[string]string{"userid": "abc123"})
		}},
		{"missing userid", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Tidepool-Session-Token", "sess-token")
			_ = json.NewEncoder(w).Encode(map[string]string{})
		}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(tc.handler)
			defer srv.Close()

			c := tidepool.NewClient(tidepool.Config{BaseURL: srv.URL, Email: "me@example.com", Password: "x"})
			_, _, err := c.Login(context.Background())
			var authErr *domain.AuthError
			if !errors.As(err, &authErr) {
				t.Fatalf("error = %v, want AuthError", err)
			}
		})
	}
}

func TestLogin_NoCredentialsConfigured(t *testing.T) {
	c := tidepool.NewClient(tidepool.Config{BaseURL: "http://unused"})
	_, _, err := c.Login(context.Background())
	var authErr *domain.AuthError
	if !errors.As(err, &authErr) {
		t.Fatalf("error = %v, want AuthError", err)
	}
}

func TestFetchData(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/data/abc123" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if got := r.Header.Get("X-Tidepool-Session-Token"); got != "sess-token" {
			t.Errorf("session token header = %q", got)
		}
		if got := r.URL.Query().Get("type"); got != "cbg,bolus,basal,physicalActivity,sleep" {
			t.Errorf("type = %q", got)
		}
		_, _ = w.Write([]byte(`[{"type":"cbg","time":"2026-08-01T08:00:00Z","value":5.5,"units":"mmol/L"}]`))
	}))
	defer srv.Close()

	c := tidepool.NewClient(tidepool.Config{BaseURL: srv.URL})
	datums, err := c.FetchData(context.Background(), "sess-token", "abc123",
		time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC), time.Date(2026, 8, 2, 0, 0, 0, 0, time.UTC), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(datums) != 1 || datums[0].Type != "cbg" {
		t.Fatalf("datums = %+v", datums)
	}
}

func TestFetchData_UpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "server error", http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := tidepool.NewClient(tidepool.Config{BaseURL: srv.URL})
	_, err := c.FetchData(context.Background(), "tok", "u", time.Now().Add(-time.Hour), time.Now(), nil)
	var fetchErr *domain.FetchError
	if !errors.As(err, &fetchErr) {
		t.Fatalf("error = %v, want FetchError", err)
	}
	if fetchErr.Status != http.StatusInternalServerError {
		t.Fatalf("status = %d", fetchErr.Status)
	}
}

func TestDatumDurationSeconds(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want *float64
	}{
		{"bare milliseconds", `3600000`, ptr(3600)},
		{"value units seconds", `{"value":1800,"units":"seconds"}`, ptr(1800)},
		{"value units hours", `{"value":1.5,"units":"hours"}`, ptr(5400)},
		{"absent", ``, nil},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			d := tidepool.Datum{Duration: json.RawMessage(tc.raw)}
			got := d.DurationSeconds()
			if (got == nil) != (tc.want == nil) {
				t.Fatalf("got %v, want %v", got, tc.want)
			}
			if got != nil && *got != *tc.want {
				t.Fatalf("got %v, want %v", *got, *tc.want)
			}
		})
	}
}

func ptr(v float64) *float64 { return &v }
