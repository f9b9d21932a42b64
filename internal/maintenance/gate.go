// Package maintenance holds the switch that pauses score submissions while
// operators work on the leaderboards.
package maintenance

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync/atomic"
)

// Gate is a process-wide maintenance flag.
type Gate struct {
	enabled atomic.Bool
	logger  *slog.Logger
}

// NewGate returns a Gate with the given initial state.
func NewGate(enabled bool, logger *slog.Logger) *Gate {
	if logger == nil {
		logger = slog.Default()
	}
	g := &Gate{logger: logger}
	g.enabled.Store(enabled)
	return g
}

// Enabled reports whether maintenance mode is on.
func (g *Gate) Enabled() bool {
	return g.enabled.Load()
}

// Set switches maintenance mode and reports the previous state.
func (g *Gate) Set(enabled bool) bool {
	return g.enabled.Swap(enabled)
}

// Middleware rejects requests with 503 while maintenance mode is on.
func (g *Gate) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if g.Enabled() {
			w.Header().Set("Retry-After", "60")
			writeJSON(w, http.StatusServiceUnavailable, map[string]any{
				"error":     "leaderboards are under maintenance",
				"confirmed": false,
			})
			return
		}
		next.ServeHTTP(w, r)
	})
}

type statusBody struct {
	Enabled *bool `json:"enabled"`
}

// HandleSetMaintenance toggles the gate from a {"enabled": bool} body.
func (g *Gate) HandleSetMaintenance(w http.ResponseWriter, r *http.Request) {
	var body statusBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Enabled == nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": `body must be {"enabled": true|false}`})
		return
	}

	previous := g.Set(*body.Enabled)
	if previous != *body.Enabled {
		g.logger.InfoContext(r.Context(), "Maintenance mode changed", slog.Bool("enabled", *body.Enabled))
	}
	writeJSON(w, http.StatusOK, map[string]bool{"enabled": *body.Enabled})
}

// HandleStatus reports the current state.
func (g *Gate) HandleStatus(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]bool{"enabled": g.Enabled()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
