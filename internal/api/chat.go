package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/vulnwatch/cyberrag/internal/chat"
	"github.com/vulnwatch/cyberrag/internal/identity"
)

// maxChatBodySize caps chat request bodies (1MB).
const maxChatBodySize = 1 << 20

type chatRequest struct {
	Message string `json:"message"`
}

// HandleChat handles POST /api/chat: one submission through the caller's
// session dispatcher. The reply is the normalized assistant message;
// backend failures arrive as isError messages with status 200, because
// the conversation itself succeeded.
func (h *Handler) HandleChat(w http.ResponseWriter, r *http.Request) {
	userID := identity.UserIDFromContext(r.Context())
	sessionID := identity.SessionIDFromContext(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, maxChatBodySize)

	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	session := h.sessions.GetOrCreate(userID, sessionID)

	reply, err := session.Submit(r.Context(), req.Message)
	switch {
	case errors.Is(err, chat.ErrEmptyInput):
		Error(w, http.StatusBadRequest, "message is required")
		return
	case errors.Is(err, chat.ErrBusy):
		Error(w, http.StatusConflict, "a submission is already in flight")
		return
	case err != nil:
		slog.Error("chat submission failed", "user_id", userID, "session_id", sessionID, "error", err)
		Error(w, http.StatusInternalServerError, "internal error")
		return
	}

	JSON(w, http.StatusOK, reply)
}

// HandleMessages handles GET /api/chat/messages: the full conversation
// for rendering, greeting included.
func (h *Handler) HandleMessages(w http.ResponseWriter, r *http.Request) {
	userID := identity.UserIDFromContext(r.Context())
	sessionID := identity.SessionIDFromContext(r.Context())

	session := h.sessions.GetOrCreate(userID, sessionID)
	JSON(w, http.StatusOK, map[string]any{
		"messages": session.Messages(),
	})
}

// HandleReset handles POST /api/chat/reset: discards the conversation and
// seeds a fresh one.
func (h *Handler) HandleReset(w http.ResponseWriter, r *http.Request) {
	userID := identity.UserIDFromContext(r.Context())
	sessionID := identity.SessionIDFromContext(r.Context())

	session := h.sessions.Reset(userID, sessionID)
	JSON(w, http.StatusOK, map[string]any{
		"messages": session.Messages(),
	})
}

// RegisterChatRoutes registers the conversational endpoints.
func (h *Handler) RegisterChatRoutes(r chi.Router) {
	r.Route("/api/chat", func(r chi.Router) {
		r.Post("/", h.HandleChat)
		r.Get("/messages", h.HandleMessages)
		r.Post("/reset", h.HandleReset)
	})
}
