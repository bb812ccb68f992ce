// Package domain contains core domain types for the CyberRAG web client.
package domain

import (
	"time"
)

// Role identifies the author of a conversation turn.
type Role string

const (
	// RoleUser marks a message typed by the user.
	RoleUser Role = "user"
	// RoleAssistant marks a message produced by the assistant.
	RoleAssistant Role = "assistant"
)

// Message is one conversation turn. Messages are immutable once created:
// the dispatcher and normalizer construct them, the store appends them,
// and nothing ever edits them afterwards.
type Message struct {
	Role      Role       `json:"role"`
	Content   string     `json:"content"`
	Timestamp time.Time  `json:"timestamp"`
	Sources   []Citation `json:"sources,omitempty"`
	IsError   bool       `json:"isError,omitempty"`
}

// NewUserMessage creates a user turn with the current timestamp.
func NewUserMessage(content string) Message {
	return Message{
		Role:      RoleUser,
		Content:   content,
		Timestamp: time.Now(),
	}
}

// NewAssistantMessage creates an assistant turn with the current timestamp.
func NewAssistantMessage(content string, sources []Citation, isError bool) Message {
	return Message{
		Role:      RoleAssistant,
		Content:   content,
		Timestamp: time.Now(),
		Sources:   sources,
		IsError:   isError,
	}
}
