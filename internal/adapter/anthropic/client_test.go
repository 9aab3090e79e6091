package anthropic_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"healthsync/internal/adapter/anthropic"
	"healthsync/internal/domain"
)

func window() (time.Time, time.Time) {
	return time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC), time.Date(2026, 8, 4, 0, 0, 0, 0, time.UTC)
}

func TestFetchUsage_BareArrayResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("X-Api-Key"); got != "admin-key" {
			t.Errorf("X-Api-Key = %q", got)
		}
		if got := r.Header.Get("Anthropic-Version"); got != "2023-06-01" {
			t.Errorf("Anthropic-Version = %q", got)
		}
		_, _ = w.Write([]byte(`[
			{"date":"2026-08-01","model":"claude-sonnet","input_tokens":1000,"output_tokens":250,"cost_usd":0.12}
		]`))
	}))
	defer srv.Close()

	c := anthropic.NewClient(anthropic.Config{BaseURL: srv.URL, AdminKey: "admin-key"})
	start, end := window()
	got, err := c.FetchUsage(context.Background(), start, end)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 || got[0].Model != "claude-sonnet" || got[0].InputTokens != 1000 {
		t.Fatalf("buckets = %+v", got)
	}
}

func TestFetchUsage_CursorPaging(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("page") {
		case "":
			_, _ = w.Write([]byte(`{"data":[{"date":"2026-08-01","model":"m1","input_tokens":10}],"has_more":true,"next_page":"cursor-2"}`))
		case "cursor-2":
			_, _ = w.Write([]byte(`{"data":[{"date":"2026-08-02","model":"m1","input_tokens":20}],"has_more":false}`))
		default:
			t.Errorf("unexpected cursor %q", r.URL.Query().Get("page"))
		}
	}))
	defer srv.Close()

	c := anthropic.NewClient(anthropic.Config{BaseURL: srv.URL, AdminKey: "admin-key"})
	start, end := window()
	got, err := c.FetchUsage(context.Background(), start, end)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d buckets, want 2", len(got))
	}
	if got[1].Date != "2026-08-02" {
		t.Fatalf("pages out of order: %+v", got)
	}
}

func TestFetchUsage_NoAdminKey(t *testing.T) {
	c := anthropic.NewClient(anthropic.Config{BaseURL: "http://unused"})
	start, end := window()
	_, err := c.FetchUsage(context.Background(), start, end)
	var authErr *domain.AuthError
	if !errors.As(err, &authErr) {
		t.Fatalf("error = %v, want AuthError", err)
	}
}

func TestFetchUsage_KeyRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"invalid x-api-key"}`, http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := anthropic.NewClient(anthropic.Config{BaseURL: srv.URL, AdminKey: "bad"})
	start, end := window()
	_, err := c.FetchUsage(context.Background(), start, end)
	var authErr *domain.AuthError
	if !errors.As(err, &authErr) {
		t.Fatalf("error = %v, want AuthError", err)
	}
}

func TestFetchUsage_FailureReturnsPartial(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("page") == "" {
			_, _ = w.Write([]byte(`{"data":[{"date":"2026-08-01","model":"m1","input_tokens":10}],"has_more":true,"next_page":"cursor-2"}`))
			return
		}
		http.Error(w, "overloaded", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := anthropic.NewClient(anthropic.Config{BaseURL: srv.URL, AdminKey: "admin-key"})
	start, end := window()
	got, err := c.FetchUsage(context.Background(), start, end)

	var fetchErr *domain.FetchError
	if !errors.As(err, &fetchErr) {
		t.Fatalf("error = %v, want FetchError", err)
	}
	if len(got) != 1 {
		t.Fatalf("got %d buckets, want the 1 collected before the failure", len(got))
	}
}

func TestNormalize_MergesDuplicateDayModel(t *testing.T) {
	days := anthropic.Normalize([]anthropic.UsageBucket{
		{Date: "2026-08-01", Model: "m1", InputTokens: 10, OutputTokens: 5, CostUSD: 0.01},
		{Date: "2026-08-01", Model: "m2", InputTokens: 7},
		{Date: "2026-08-01", Model: "m1", InputTokens: 30, OutputTokens: 15, CostUSD: 0.03},
		{Date: "", Model: "m1", InputTokens: 99}, // malformed, dropped
	})
	if len(days) != 2 {
		t.Fatalf("got %d days, want 2", len(days))
	}
	d := days[0]
	if d.Day != "2026-08-01" || d.Model != "m1" {
		t.Fatalf("first seen order not preserved: %+v", d)
	}
	if d.InputTokens != 40 || d.OutputTokens != 20 {
		t.Fatalf("tokens not merged additively: %+v", d)
	}
	if d.CostUSD < 0.039 || d.CostUSD > 0.041 {
		t.Fatalf("cost = %v, want ~0.04", d.CostUSD)
	}
}
