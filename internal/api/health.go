package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
)

const healthProbeTimeout = 3 * time.Second

// HandleHealth handles GET /healthz. The service itself is healthy as
// long as it can answer; backend and cache reachability are reported but
// do not fail the probe, since the client degrades gracefully.
func (h *Handler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthProbeTimeout)
	defer cancel()

	backendStatus := "ok"
	if err := h.client.Health(ctx); err != nil {
		backendStatus = err.Error()
	}

	cacheStatus := "disabled"
	if h.cache != nil {
		cacheStatus = "ok"
		if err := h.cache.Ping(ctx); err != nil {
			cacheStatus = err.Error()
		}
	}

	JSON(w, http.StatusOK, map[string]any{
		"status":   "ok",
		"backend":  backendStatus,
		"cache":    cacheStatus,
		"sessions": h.sessions.Count(),
	})
}

// RegisterHealth registers the health endpoint.
func (h *Handler) RegisterHealth(r chi.Router) {
	r.Get("/healthz", h.HandleHealth)
}
