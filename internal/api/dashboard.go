package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/vulnwatch/cyberrag/internal/backend"
	"github.com/vulnwatch/cyberrag/internal/chat"
	"github.com/vulnwatch/cyberrag/internal/domain"
)

// Dashboard endpoints proxy the backend for the news/filter view. CVE
// detail lookups go through the local cache; everything else is a
// pass-through. The chat dispatcher never touches this path.

// HandleCVE handles GET /api/cve/{id}.
func (h *Handler) HandleCVE(w http.ResponseWriter, r *http.Request) {
	id := chat.ExtractCVEID(chi.URLParam(r, "id"))
	if id == "" {
		Error(w, http.StatusBadRequest, "invalid CVE identifier")
		return
	}

	if h.cache != nil {
		cached, err := h.cache.GetCVE(r.Context(), id, h.cacheTTL)
		if err != nil {
			slog.Warn("cve cache read failed", "cve_id", id, "error", err)
		} else if cached != nil {
			JSON(w, http.StatusOK, map[string]any{"success": true, "cve": cached, "cached": true})
			return
		}
	}

	record, err := h.client.LookupCVE(r.Context(), id)
	if errors.Is(err, backend.ErrNotFound) {
		JSON(w, http.StatusNotFound, map[string]any{"success": false, "error": "CVE not found", "cve_id": id})
		return
	}
	if err != nil {
		slog.Error("cve lookup failed", "cve_id", id, "error", err)
		Error(w, http.StatusBadGateway, "backend unavailable")
		return
	}

	if h.cache != nil {
		if err := h.cache.UpsertCVEs(r.Context(), []domain.CVERecord{*record}); err != nil {
			slog.Warn("cve cache write failed", "cve_id", id, "error", err)
		}
	}

	JSON(w, http.StatusOK, map[string]any{"success": true, "cve": record, "cached": false})
}

type searchAPIRequest struct {
	Search string `json:"search"`
	Limit  int    `json:"limit"`
}

// HandleSearch handles POST /api/search.
func (h *Handler) HandleSearch(w http.ResponseWriter, r *http.Request) {
	var req searchAPIRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Search) == "" {
		Error(w, http.StatusBadRequest, "search term is required")
		return
	}

	results, err := h.client.Search(r.Context(), req.Search, req.Limit)
	if err != nil {
		slog.Error("search failed", "error", err)
		Error(w, http.StatusBadGateway, "backend unavailable")
		return
	}

	JSON(w, http.StatusOK, map[string]any{
		"success": true,
		"results": results,
		"count":   len(results),
	})
}

// HandleNews handles POST /api/news for the dashboard feed. Fetched
// records are folded into the cache so the refresh job and detail view
// benefit from them.
func (h *Handler) HandleNews(w http.ResponseWriter, r *http.Request) {
	var req backend.NewsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.client.News(r.Context(), req)
	if err != nil {
		slog.Error("news fetch failed", "error", err)
		Error(w, http.StatusBadGateway, "backend unavailable")
		return
	}

	if h.cache != nil && len(result.CVEs) > 0 {
		if err := h.cache.UpsertCVEs(r.Context(), result.CVEs); err != nil {
			slog.Warn("news cache write failed", "error", err)
		}
	}

	JSON(w, http.StatusOK, map[string]any{
		"success": true,
		"cves":    result.CVEs,
		"total":   result.Total,
		"filter":  result.Filter,
	})
}

// HandleStats handles GET /api/stats.
func (h *Handler) HandleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.client.Stats(r.Context())
	if err != nil {
		slog.Error("stats fetch failed", "error", err)
		Error(w, http.StatusBadGateway, "backend unavailable")
		return
	}

	JSON(w, http.StatusOK, map[string]any{
		"success": true,
		"stats":   stats,
	})
}

// RegisterDashboardRoutes registers the dashboard proxy endpoints.
func (h *Handler) RegisterDashboardRoutes(r chi.Router) {
	r.Get("/api/cve/{id}", h.HandleCVE)
	r.Post("/api/search", h.HandleSearch)
	r.Post("/api/news", h.HandleNews)
	r.Get("/api/stats", h.HandleStats)
}
