package chat

import (
	"testing"
	"time"

	"github.com/vulnwatch/cyberrag/internal/domain"
)

func TestManagerGetOrCreateReturnsSameSession(t *testing.T) {
	t.Parallel()

	m := NewManager(&fakeClient{}, nil, nil)

	a := m.GetOrCreate("user-1", "default")
	b := m.GetOrCreate("user-1", "default")
	if a != b {
		t.Error("same (user, session) pair must map to the same session")
	}

	c := m.GetOrCreate("user-1", "other")
	if c == a {
		t.Error("distinct session IDs must map to distinct sessions")
	}
	d := m.GetOrCreate("user-2", "default")
	if d == a {
		t.Error("distinct users must map to distinct sessions")
	}

	if m.Count() != 3 {
		t.Errorf("Count() = %d, want 3", m.Count())
	}
}

func TestManagerResetDiscardsConversation(t *testing.T) {
	t.Parallel()

	m := NewManager(&fakeClient{}, nil, nil)

	s := m.GetOrCreate("user-1", "default")
	s.Store().Append(domain.NewUserMessage("some history"))
	if s.Store().Len() != 2 {
		t.Fatalf("setup failed, len = %d", s.Store().Len())
	}

	fresh := m.Reset("user-1", "default")
	if fresh == s {
		t.Error("Reset must return a new session")
	}
	if fresh.Store().Len() != 1 {
		t.Errorf("reset session len = %d, want 1 (greeting only)", fresh.Store().Len())
	}
	if m.GetOrCreate("user-1", "default") != fresh {
		t.Error("Reset must replace the stored session")
	}
}

func TestManagerSweepRemovesIdleSessions(t *testing.T) {
	t.Parallel()

	m := NewManager(&fakeClient{}, nil, nil)

	idle := m.GetOrCreate("user-1", "old")
	active := m.GetOrCreate("user-1", "new")
	m.GetOrCreate("user-2", "only")

	// Backdate the idle sessions past the TTL.
	backdate := time.Now().Add(-2 * time.Hour)
	idle.mu.Lock()
	idle.lastActive = backdate
	idle.mu.Unlock()

	other := m.GetOrCreate("user-2", "only")
	other.mu.Lock()
	other.lastActive = backdate
	other.mu.Unlock()

	removed := m.sweep(time.Hour)
	if removed != 2 {
		t.Errorf("sweep removed %d sessions, want 2", removed)
	}
	if m.Count() != 1 {
		t.Errorf("Count() = %d after sweep, want 1", m.Count())
	}
	if m.GetOrCreate("user-1", "new") != active {
		t.Error("active session must survive the sweep")
	}
	if m.GetOrCreate("user-1", "old") == idle {
		t.Error("swept session must be recreated from scratch")
	}
}
