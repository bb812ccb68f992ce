package chat

import (
	"sync"

	"github.com/vulnwatch/cyberrag/internal/backend"
	"github.com/vulnwatch/cyberrag/internal/domain"
)

// Greeting is the fixed assistant message every new conversation starts with.
const Greeting = "Hi! I'm the CyberRAG assistant. Ask me about vulnerabilities " +
	"in plain language, or paste a CVE ID (like CVE-2024-3094) and I'll look it up directly."

// MessageStore is the append-only, ordered ground truth of one conversation.
// Messages are never edited or removed once appended; the whole store is
// discarded when its session is torn down.
type MessageStore struct {
	mu          sync.RWMutex
	messages    []domain.Message
	subscribers []chan domain.Message
}

// NewMessageStore creates a store seeded with the assistant greeting.
func NewMessageStore() *MessageStore {
	s := &MessageStore{}
	s.messages = append(s.messages, domain.NewAssistantMessage(Greeting, nil, false))
	return s
}

// Append adds a message to the end of the conversation and notifies
// subscribers. Slow subscribers are skipped, never waited on.
func (s *MessageStore) Append(msg domain.Message) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.messages = append(s.messages, msg)
	for _, sub := range s.subscribers {
		select {
		case sub <- msg:
		default:
		}
	}
}

// Messages returns a copy of the conversation for rendering.
func (s *MessageStore) Messages() []domain.Message {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Message, len(s.messages))
	copy(out, s.messages)
	return out
}

// Len returns the number of messages in the conversation.
func (s *MessageStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.messages)
}

// History projects the conversation onto the backend-facing payload:
// {role, content} pairs in store order, nothing else. The full history is
// sent: no truncation window, and error messages are not filtered out;
// the backend sees them as ordinary assistant turns.
func (s *MessageStore) History() []backend.HistoryEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	history := make([]backend.HistoryEntry, len(s.messages))
	for i, msg := range s.messages {
		history[i] = backend.HistoryEntry{
			Role:    string(msg.Role),
			Content: msg.Content,
		}
	}
	return history
}

// Subscribe registers a channel that receives every message appended after
// this call. The returned cancel function removes the subscription.
func (s *MessageStore) Subscribe(buffer int) (<-chan domain.Message, func()) {
	ch := make(chan domain.Message, buffer)

	s.mu.Lock()
	s.subscribers = append(s.subscribers, ch)
	s.mu.Unlock()

	cancel := func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		for i, sub := range s.subscribers {
			if sub == ch {
				s.subscribers = append(s.subscribers[:i], s.subscribers[i+1:]...)
				break
			}
		}
	}
	return ch, cancel
}
