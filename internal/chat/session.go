package chat

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/vulnwatch/cyberrag/internal/backend"
	"github.com/vulnwatch/cyberrag/internal/domain"
)

var (
	// ErrEmptyInput is returned when Submit is called with blank input.
	// Nothing is appended and no backend call is issued.
	ErrEmptyInput = errors.New("empty input")

	// ErrBusy is returned when a submission is already in flight. At most
	// one backend request may be pending per session; callers retry after
	// the current one resolves.
	ErrBusy = errors.New("submission already in flight")
)

// Session is the query dispatcher for one conversation. It owns the
// message store exclusively and serializes submissions: the submitting
// flag, checked at the top of Submit, is the sole mutual-exclusion
// mechanism, so the assistant reply for request N is always appended
// before request N+1 can be issued.
type Session struct {
	ID     string
	UserID string

	store  *MessageStore
	client backend.Client
	log    ConversationLogger
	logger *slog.Logger

	mu         sync.Mutex
	submitting bool
	lastActive time.Time
}

// NewSession creates a session with a freshly seeded message store.
func NewSession(id, userID string, client backend.Client, log ConversationLogger, logger *slog.Logger) *Session {
	if log == nil {
		log = noopConversationLogger{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Session{
		ID:         id,
		UserID:     userID,
		store:      NewMessageStore(),
		client:     client,
		log:        log,
		logger:     logger,
		lastActive: time.Now(),
	}
}

// Store exposes the message store for rendering and the live feed.
func (s *Session) Store() *MessageStore {
	return s.store
}

// Messages returns a copy of the conversation for rendering.
func (s *Session) Messages() []domain.Message {
	return s.store.Messages()
}

// LastActive reports when the session last accepted a submission.
func (s *Session) LastActive() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastActive
}

// Submit runs one classify → call → normalize → append cycle.
//
// Blank input and concurrent submissions are no-ops (ErrEmptyInput,
// ErrBusy): nothing is appended and no backend call is issued. Every
// accepted submission makes exactly one backend call and appends exactly
// two messages: the user's, then the normalized assistant reply. Backend
// failures never escape: they are normalized into an error-flagged
// assistant message, and the session always returns to idle.
func (s *Session) Submit(ctx context.Context, raw string) (domain.Message, error) {
	content := strings.TrimSpace(raw)
	if content == "" {
		return domain.Message{}, ErrEmptyInput
	}

	s.mu.Lock()
	if s.submitting {
		s.mu.Unlock()
		return domain.Message{}, ErrBusy
	}
	s.submitting = true
	s.lastActive = time.Now()
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.submitting = false
		s.mu.Unlock()
	}()

	userMsg := domain.NewUserMessage(content)
	s.store.Append(userMsg)
	s.logTurn("chat_user_message", userMsg)

	reply := s.dispatch(ctx, content)
	s.store.Append(reply)
	s.logTurn("chat_assistant_message", reply)

	return reply, nil
}

// dispatch classifies the input and issues the single backend call.
func (s *Session) dispatch(ctx context.Context, content string) domain.Message {
	if id := ExtractCVEID(content); id != "" {
		s.logger.Info("dispatching direct lookup",
			"session_id", s.ID, "cve_id", id)

		record, err := s.client.LookupCVE(ctx, id)
		switch {
		case errors.Is(err, backend.ErrNotFound):
			return normalizeLookupMiss(id)
		case err != nil:
			s.logger.Warn("direct lookup failed",
				"session_id", s.ID, "cve_id", id, "error", err)
			return normalizeFailure(err)
		default:
			return normalizeLookupHit(record)
		}
	}

	// Projection happens over the full store, so the just-appended user
	// message is part of the history the backend sees.
	history := s.store.History()
	s.logger.Info("dispatching semantic search",
		"session_id", s.ID, "history_len", len(history))

	result, err := s.client.Query(ctx, content, history)
	if err != nil {
		s.logger.Warn("semantic search failed",
			"session_id", s.ID, "error", err)
		return normalizeFailure(err)
	}
	return normalizeQueryResult(result)
}

func (s *Session) logTurn(eventType string, msg domain.Message) {
	s.log.Log(ConversationLogEvent{
		Timestamp: time.Now().UTC().Format(time.RFC3339Nano),
		UserID:    s.UserID,
		SessionID: s.ID,
		Role:      string(msg.Role),
		EventType: eventType,
		Content:   msg.Content,
		IsError:   msg.IsError,
		Sources:   len(msg.Sources),
	})
}
