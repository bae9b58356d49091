// Package handler provides HTTP handlers for the health endpoints.
// Handlers only read loop state; they never drive the notification loop.
package handler

import (
	"net/http"
	"time"

	"github.com/albapepper/goalbot/internal/api/respond"
	"github.com/albapepper/goalbot/internal/notifications"
)

// StatsProvider exposes notification loop progress.
type StatsProvider interface {
	Stats() notifications.Stats
}

// Handler holds shared dependencies for all endpoint handlers.
type Handler struct {
	loop     StatsProvider
	interval time.Duration
	started  time.Time
}

// New creates a Handler. interval is the loop's poll interval and is used to
// decide when the loop counts as stalled.
func New(loop StatsProvider, interval time.Duration) *Handler {
	return &Handler{
		loop:     loop,
		interval: interval,
		started:  time.Now().UTC(),
	}
}

// HealthCheck returns basic health status.
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	respond.WriteJSONObject(w, http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// HealthCheckLoop reports notification loop progress. It answers 503 when no
// cycle has completed within three poll intervals.
func (h *Handler) HealthCheckLoop(w http.ResponseWriter, r *http.Request) {
	stats := h.loop.Stats()
	now := time.Now().UTC()

	last := stats.LastCycleAt
	if last.IsZero() {
		last = h.started
	}
	status, code := "healthy", http.StatusOK
	if h.interval > 0 && now.Sub(last) > 3*h.interval {
		status, code = "stalled", http.StatusServiceUnavailable
	}

	respond.WriteJSONObject(w, code, map[string]interface{}{
		"status":    status,
		"loop":      stats,
		"timestamp": now.Format(time.RFC3339),
	})
}
