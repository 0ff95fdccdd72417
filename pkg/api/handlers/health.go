package handlers

import (
	"net/http"
	"time"

	"github.com/novachat/nova/pkg/api/response"
	"github.com/novachat/nova/pkg/version"
)

// HealthHandler handles health check endpoints.
type HealthHandler struct {
	started time.Time
	ready   func() bool
}

// NewHealthHandler creates a health handler. ready reports whether the
// service's collaborators are wired; nil means always ready.
func NewHealthHandler(ready func() bool) *HealthHandler {
	return &HealthHandler{
		started: time.Now(),
		ready:   ready,
	}
}

// Health handles the /health endpoint (liveness probe).
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Ready handles the /ready endpoint (readiness probe).
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	if h.ready != nil && !h.ready() {
		response.JSON(w, http.StatusServiceUnavailable, map[string]bool{"ready": false})
		return
	}
	response.JSON(w, http.StatusOK, map[string]bool{"ready": true})
}

// Status handles the /status endpoint (detailed status).
func (h *HealthHandler) Status(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, http.StatusOK, map[string]any{
		"status":         "ok",
		"uptime_seconds": int64(time.Since(h.started).Seconds()),
		"version":        version.Info(),
	})
}
