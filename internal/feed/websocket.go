// Package feed streams conversation updates to the browser over
// WebSocket. It is pure display transport: it replays the current store
// and forwards appends, never mutating conversation state.
package feed

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/vulnwatch/cyberrag/internal/chat"
	"github.com/vulnwatch/cyberrag/internal/identity"
)

// subscriberBuffer bounds per-connection backlog; a client that cannot
// keep up misses messages rather than stalling the dispatcher.
const subscriberBuffer = 32

// Handler upgrades GET /ws/chat connections and streams messages.
type Handler struct {
	sessions      *chat.Manager
	allowedOrigin string
	isDev         bool
}

// NewHandler creates a new feed handler.
func NewHandler(sessions *chat.Manager, allowedOrigin string, isDev bool) *Handler {
	return &Handler{
		sessions:      sessions,
		allowedOrigin: allowedOrigin,
		isDev:         isDev,
	}
}

// ServeHTTP implements http.Handler for the WebSocket upgrade.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	userID := identity.UserIDFromContext(r.Context())
	sessionID := identity.SessionIDFromContext(r.Context())
	slog.Info("chat feed connection", "user_id", userID, "session_id", sessionID, "ip", r.RemoteAddr)

	if !h.checkOrigin(r) {
		http.Error(w, "origin not allowed", http.StatusForbidden)
		return
	}

	ws, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		slog.Error("failed to accept chat feed WebSocket", "error", err, "user_id", userID)
		return
	}
	defer func() {
		if closeErr := ws.Close(websocket.StatusNormalClosure, "feed ended"); closeErr != nil {
			slog.Debug("failed to close chat feed WebSocket", "error", closeErr, "user_id", userID)
		}
	}()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	session := h.sessions.GetOrCreate(userID, sessionID)
	store := session.Store()

	// Subscribe before replaying so nothing appended in between is lost;
	// the client deduplicates by timestamp+content if a message appears in
	// both the replay and the live stream.
	updates, unsubscribe := store.Subscribe(subscriberBuffer)
	defer unsubscribe()

	for _, msg := range store.Messages() {
		if err := wsjson.Write(ctx, ws, msg); err != nil {
			slog.Debug("chat feed replay write failed", "error", err, "user_id", userID)
			return
		}
	}

	// Drain client frames so pings and close handshakes are processed;
	// the feed is one-way and ignores their content.
	go func() {
		defer cancel()
		for {
			if _, _, err := ws.Read(ctx); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case msg := <-updates:
			if err := wsjson.Write(ctx, ws, msg); err != nil {
				slog.Debug("chat feed write failed", "error", err, "user_id", userID)
				return
			}
		case <-ctx.Done():
			slog.Info("chat feed closed", "user_id", userID, "session_id", sessionID)
			return
		}
	}
}

func (h *Handler) checkOrigin(r *http.Request) bool {
	if h.isDev {
		return true
	}
	origin := r.Header.Get("Origin")
	if origin == "" || h.allowedOrigin == "*" || origin == h.allowedOrigin {
		return true
	}
	slog.Warn("chat feed origin rejected", "origin", origin, "allowed", h.allowedOrigin)
	return false
}
