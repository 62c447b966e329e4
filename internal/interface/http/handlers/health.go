package handlers

import (
	"context"
	"net/http"
	"time"
)

// Pinger checks reachability of one backing service. Satisfied by the
// postgres connection and the redis cache.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler serves liveness and readiness probes.
type HealthHandler struct {
	components map[string]Pinger
	timeout    time.Duration
}

// NewHealthHandler creates the handler. The components map names each
// dependency checked by the readiness probe; a nil Pinger is skipped, which
// keeps optional dependencies like redis out of the report when disabled.
func NewHealthHandler(components map[string]Pinger) *HealthHandler {
	return &HealthHandler{
		components: components,
		timeout:    5 * time.Second,
	}
}

type healthResponse struct {
	Status     string            `json:"status"`
	Components map[string]string `json:"components,omitempty"`
}

// Live handles GET /live. The process is up; nothing else is checked.
func (h *HealthHandler) Live(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{Status: "ok"})
}

// Ready handles GET /ready and GET /health. It pings every registered
// dependency and reports per-component state; any failure flips the overall
// status and the response code.
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	status := http.StatusOK
	resp := healthResponse{
		Status:     "ok",
		Components: make(map[string]string, len(h.components)),
	}

	for name, pinger := range h.components {
		if pinger == nil {
			continue
		}
		if err := pinger.Ping(ctx); err != nil {
			resp.Status = "degraded"
			resp.Components[name] = "down: " + err.Error()
			status = http.StatusServiceUnavailable
			continue
		}
		resp.Components[name] = "up"
	}

	writeJSON(w, status, resp)
}
