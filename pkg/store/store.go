// Package store provides persistent storage abstraction for user memories,
// per-user voice settings, and conversation history.
package store

import (
	"context"
	"fmt"
	"time"
)

// Memory is one stored user memory.
type Memory struct {
	ID        string    `json:"id"`
	Content   string    `json:"content"`
	Tags      []string  `json:"tags,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Settings are the per-user voice preferences.
type Settings struct {
	VoiceMode             string `json:"voice_mode"`
	AllowMemoryReferences bool   `json:"allow_memory_references"`
	SystemPrompt          string `json:"system_prompt,omitempty"`
}

// Message is one persisted conversation message.
type Message struct {
	Role    string    `json:"role"`
	Content string    `json:"content"`
	At      time.Time `json:"at"`
}

// HistoryLimit caps persisted messages per conversation; older messages are
// dropped on append.
const HistoryLimit = 200

// Store defines the persistence operations the service needs.
type Store interface {
	// Memory operations
	SaveMemory(ctx context.Context, userID string, m *Memory) error
	GetMemory(ctx context.Context, userID, memoryID string) (*Memory, error)
	ListMemories(ctx context.Context, userID string) ([]*Memory, error)
	DeleteMemory(ctx context.Context, userID, memoryID string) error

	// Settings operations
	GetSettings(ctx context.Context, userID string) (*Settings, error)
	SaveSettings(ctx context.Context, userID string, s *Settings) error

	// Conversation history
	AppendMessages(ctx context.Context, userID, conversationID string, msgs []Message) error
	GetConversation(ctx context.Context, userID, conversationID string, limit int) ([]Message, error)
	DeleteConversation(ctx context.Context, userID, conversationID string) error

	// Lifecycle
	Close() error
}

// NotFoundError indicates that the requested entity was not found.
type NotFoundError struct {
	EntityType string
	ID         string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.EntityType, e.ID)
}

// StorageUnavailableError indicates that the storage backend is unavailable.
type StorageUnavailableError struct {
	Cause error
}

func (e *StorageUnavailableError) Error() string {
	return fmt.Sprintf("storage unavailable: %v", e.Cause)
}

func (e *StorageUnavailableError) Unwrap() error { return e.Cause }

// SerializationError indicates a failure in data serialization or
// deserialization.
type SerializationError struct {
	Operation string
	Cause     error
}

func (e *SerializationError) Error() string {
	return fmt.Sprintf("serialization error during %s: %v", e.Operation, e.Cause)
}

func (e *SerializationError) Unwrap() error { return e.Cause }
