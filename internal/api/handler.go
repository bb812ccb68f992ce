// Package api provides HTTP handlers for the CyberRAG web client API.
package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/vulnwatch/cyberrag/internal/backend"
	"github.com/vulnwatch/cyberrag/internal/chat"
	"github.com/vulnwatch/cyberrag/internal/store"
)

// Handler provides common handler dependencies.
type Handler struct {
	sessions *chat.Manager
	client   backend.Client
	cache    store.Repository
	cacheTTL time.Duration
}

// NewHandler creates a new Handler with common dependencies. cache may be
// nil, in which case dashboard lookups always go to the backend.
func NewHandler(sessions *chat.Manager, client backend.Client, cache store.Repository, cacheTTL time.Duration) *Handler {
	return &Handler{
		sessions: sessions,
		client:   client,
		cache:    cache,
		cacheTTL: cacheTTL,
	}
}

// JSON writes a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, `{"error": "failed to encode response"}`, http.StatusInternalServerError)
	}
}

// Error writes a JSON error response.
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, map[string]string{"error": message})
}
