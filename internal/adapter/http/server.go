// Package adapthttp is the driving HTTP adapter that routes requests to
// application services.
package adapthttp

import (
	"context"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"healthsync/internal/app"
)

// Pinger reports whether the backing store is reachable. The sync
// endpoint answers 503 when it is not.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Server wires HTTP routes to the sync and stats services.
type Server struct {
	sync  *app.SyncService
	stats *app.StatsService
	store Pinger

	// accessHeader is the identity header the edge access gateway sets on
	// every authenticated request. Empty disables the check.
	accessHeader string
}

// New creates a Server wired to the given application services.
func New(sync *app.SyncService, stats *app.StatsService, store Pinger, accessHeader string) *Server {
	return &Server{sync: sync, stats: stats, store: store, accessHeader: accessHeader}
}

// Handler returns the root http.Handler for the application.
func (s *Server) Handler() http.Handler {
	api := http.NewServeMux()
	api.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
	})

	api.HandleFunc("/sync", s.handleSync)

	api.HandleFunc("/glucose/daily", s.handleGlucoseDaily)
	api.HandleFunc("/sessions/recent", s.handleSessionsRecent)
	api.HandleFunc("/doses/recent", s.handleDosesRecent)
	api.HandleFunc("/usage/daily", s.handleUsageDaily)
	api.HandleFunc("/contributions/daily", s.handleContributionsDaily)
	api.HandleFunc("/sleep/recent", s.handleSleepRecent)

	root := http.NewServeMux()
	root.Handle("/api/", http.StripPrefix("/api", s.accessMiddleware(api)))
	root.Handle("/metrics", promhttp.Handler())

	return withNoCache(s.loggingMiddleware(root))
}
