package chat

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/vulnwatch/cyberrag/internal/backend"
)

const ttlSweepInterval = 5 * time.Minute

// Manager tracks live conversation sessions per user. Sessions are
// process-local only: teardown discards the whole message store, and
// nothing survives a restart.
type Manager struct {
	client backend.Client
	log    ConversationLogger
	logger *slog.Logger

	mu       sync.RWMutex
	sessions map[string]map[string]*Session // userID -> sessionID -> session
}

// NewManager creates an empty session manager.
func NewManager(client backend.Client, log ConversationLogger, logger *slog.Logger) *Manager {
	if log == nil {
		log = noopConversationLogger{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		client:   client,
		log:      log,
		logger:   logger,
		sessions: make(map[string]map[string]*Session),
	}
}

// GetOrCreate returns the session for (userID, sessionID), seeding a new
// conversation on first use.
func (m *Manager) GetOrCreate(userID, sessionID string) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()

	if sessions, ok := m.sessions[userID]; ok {
		if s, ok := sessions[sessionID]; ok {
			return s
		}
	} else {
		m.sessions[userID] = make(map[string]*Session)
	}

	s := NewSession(sessionID, userID, m.client, m.log, m.logger)
	m.sessions[userID][sessionID] = s
	m.logger.Info("chat session created", "user_id", userID, "session_id", sessionID)
	return s
}

// Reset discards the conversation for (userID, sessionID) and seeds a
// fresh one with the greeting.
func (m *Manager) Reset(userID, sessionID string) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.sessions[userID]; !ok {
		m.sessions[userID] = make(map[string]*Session)
	}
	s := NewSession(sessionID, userID, m.client, m.log, m.logger)
	m.sessions[userID][sessionID] = s
	m.logger.Info("chat session reset", "user_id", userID, "session_id", sessionID)
	return s
}

// Count returns the number of live sessions.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	n := 0
	for _, sessions := range m.sessions {
		n += len(sessions)
	}
	return n
}

// sweep removes sessions idle longer than ttl and returns how many were
// discarded.
func (m *Manager) sweep(ttl time.Duration) int {
	cutoff := time.Now().Add(-ttl)

	m.mu.Lock()
	defer m.mu.Unlock()

	removed := 0
	for userID, sessions := range m.sessions {
		for sessionID, s := range sessions {
			if s.LastActive().Before(cutoff) {
				delete(sessions, sessionID)
				removed++
				m.logger.Info("chat session expired",
					"user_id", userID, "session_id", sessionID)
			}
		}
		if len(sessions) == 0 {
			delete(m.sessions, userID)
		}
	}
	return removed
}

// StartTTLWorker runs a background goroutine that periodically sweeps
// idle sessions until ctx is cancelled.
func (m *Manager) StartTTLWorker(ctx context.Context, ttl time.Duration) {
	ticker := time.NewTicker(ttlSweepInterval)
	go func() {
		defer ticker.Stop()
		m.logger.Info("session TTL worker started", "interval", ttlSweepInterval, "ttl", ttl)

		for {
			select {
			case <-ticker.C:
				if removed := m.sweep(ttl); removed > 0 {
					m.logger.Info("session TTL sweep complete", "removed", removed)
				}
			case <-ctx.Done():
				m.logger.Info("session TTL worker shutting down", "reason", ctx.Err())
				return
			}
		}
	}()
}
