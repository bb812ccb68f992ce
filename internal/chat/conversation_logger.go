package chat

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
)

// ConversationLogEvent is one NDJSON line in the conversation audit log.
type ConversationLogEvent struct {
	Timestamp string `json:"ts"`
	UserID    string `json:"user_id"`
	SessionID string `json:"session_id"`
	Role      string `json:"role"`
	EventType string `json:"event_type"`
	Content   string `json:"content"`
	IsError   bool   `json:"is_error,omitempty"`
	Sources   int    `json:"sources,omitempty"`
}

// ConversationLogger records chat turns for observability. Sessions never
// read the log back; it is not conversation persistence.
type ConversationLogger interface {
	// Log enqueues an event. It never blocks the dispatcher: when the
	// queue is full the event is dropped.
	Log(event ConversationLogEvent)

	// Close flushes pending events and releases resources.
	Close() error
}

type noopConversationLogger struct{}

func (noopConversationLogger) Log(ConversationLogEvent) {}
func (noopConversationLogger) Close() error             { return nil }

// NoopConversationLogger returns a logger that discards everything.
func NoopConversationLogger() ConversationLogger {
	return noopConversationLogger{}
}

// ConversationLogConfig controls NDJSON conversation logging.
type ConversationLogConfig struct {
	Enabled       bool
	Dir           string // per-session files: <dir>/<user_id>/<session_id>.ndjson
	GlobalEnabled bool
	GlobalPath    string // single combined file, appended across sessions
	QueueSize     int
}

// fileConversationLogger writes events from a single background goroutine
// so Log stays cheap on the request path.
type fileConversationLogger struct {
	cfg    ConversationLogConfig
	logger *slog.Logger

	queue chan ConversationLogEvent
	done  chan struct{}
	wg    sync.WaitGroup

	closeOnce sync.Once
}

// NewConversationLogger creates a logger per cfg. When cfg.Enabled and
// cfg.GlobalEnabled are both false it returns the no-op logger.
func NewConversationLogger(cfg ConversationLogConfig, logger *slog.Logger) (ConversationLogger, error) {
	if !cfg.Enabled && !cfg.GlobalEnabled {
		return noopConversationLogger{}, nil
	}
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 1000
	}
	if cfg.Enabled {
		if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
			return nil, fmt.Errorf("create conversation log dir: %w", err)
		}
	}
	if cfg.GlobalEnabled {
		if err := os.MkdirAll(filepath.Dir(cfg.GlobalPath), 0o755); err != nil {
			return nil, fmt.Errorf("create global conversation log dir: %w", err)
		}
	}

	l := &fileConversationLogger{
		cfg:    cfg,
		logger: logger,
		queue:  make(chan ConversationLogEvent, cfg.QueueSize),
		done:   make(chan struct{}),
	}
	l.wg.Add(1)
	go l.drain()
	return l, nil
}

func (l *fileConversationLogger) Log(event ConversationLogEvent) {
	select {
	case l.queue <- event:
	default:
		l.logger.Warn("conversation log queue full, dropping event",
			"user_id", event.UserID, "session_id", event.SessionID)
	}
}

func (l *fileConversationLogger) Close() error {
	l.closeOnce.Do(func() {
		close(l.done)
	})
	l.wg.Wait()
	return nil
}

func (l *fileConversationLogger) drain() {
	defer l.wg.Done()
	for {
		select {
		case event := <-l.queue:
			l.write(event)
		case <-l.done:
			// Flush whatever is still queued before exiting.
			for {
				select {
				case event := <-l.queue:
					l.write(event)
				default:
					return
				}
			}
		}
	}
}

func (l *fileConversationLogger) write(event ConversationLogEvent) {
	line, err := json.Marshal(event)
	if err != nil {
		l.logger.Warn("failed to marshal conversation log event", "error", err)
		return
	}
	line = append(line, '\n')

	if l.cfg.Enabled {
		dir := filepath.Join(l.cfg.Dir, sanitizePathComponent(event.UserID))
		if err := os.MkdirAll(dir, 0o755); err != nil {
			l.logger.Warn("failed to create session log dir", "dir", dir, "error", err)
		} else {
			path := filepath.Join(dir, sanitizePathComponent(event.SessionID)+".ndjson")
			appendLine(path, line, l.logger)
		}
	}
	if l.cfg.GlobalEnabled {
		appendLine(l.cfg.GlobalPath, line, l.logger)
	}
}

func appendLine(path string, line []byte, logger *slog.Logger) {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		logger.Warn("failed to open conversation log", "path", path, "error", err)
		return
	}
	if _, err := f.Write(line); err != nil {
		logger.Warn("failed to write conversation log", "path", path, "error", err)
	}
	if err := f.Close(); err != nil {
		logger.Warn("failed to close conversation log", "path", path, "error", err)
	}
}

// sanitizePathComponent keeps log file names flat even if an ID somehow
// contains a path separator.
func sanitizePathComponent(s string) string {
	if s == "" {
		return "unknown"
	}
	return filepath.Base(filepath.Clean(s))
}
