package adapthttp

import (
	"fmt"
	"net/http"

	"healthsync/internal/app"
)

// handleSync starts one sync cycle. The response is always 200 with
// per-source results, each possibly carrying an error field; only a
// malformed request or an unreachable store answers otherwise.
func (s *Server) handleSync(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var opts app.SyncOptions
	if err := parseOptionalJSON(r, &opts); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	if s.store != nil {
		if err := s.store.Ping(r.Context()); err != nil {
			writeError(w, http.StatusServiceUnavailable, fmt.Errorf("store unavailable: %w", err))
			return
		}
	}

	writeJSON(w, http.StatusOK, s.sync.Run(r.Context(), opts))
}
