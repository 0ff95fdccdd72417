// Package memory provides an in-memory implementation of the store
// interface, used for tests and single-node dev runs.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/novachat/nova/pkg/store"
)

// MemoryStore implements store.Store with in-process maps.
type MemoryStore struct {
	mu            sync.RWMutex
	memories      map[string]map[string]*store.Memory
	settings      map[string]*store.Settings
	conversations map[string][]store.Message
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		memories:      make(map[string]map[string]*store.Memory),
		settings:      make(map[string]*store.Settings),
		conversations: make(map[string][]store.Message),
	}
}

func convKey(userID, conversationID string) string {
	return userID + "\x00" + conversationID
}

// SaveMemory stores a copy of m for the user.
func (s *MemoryStore) SaveMemory(_ context.Context, userID string, m *store.Memory) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.memories[userID]
	if !ok {
		user = make(map[string]*store.Memory)
		s.memories[userID] = user
	}
	cp := *m
	cp.Tags = append([]string(nil), m.Tags...)
	user[m.ID] = &cp
	return nil
}

// GetMemory returns the memory by id.
func (s *MemoryStore) GetMemory(_ context.Context, userID, memoryID string) (*store.Memory, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	m, ok := s.memories[userID][memoryID]
	if !ok {
		return nil, &store.NotFoundError{EntityType: "memory", ID: memoryID}
	}
	cp := *m
	cp.Tags = append([]string(nil), m.Tags...)
	return &cp, nil
}

// ListMemories returns the user's memories ordered by creation time, then id.
func (s *MemoryStore) ListMemories(_ context.Context, userID string) ([]*store.Memory, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user := s.memories[userID]
	out := make([]*store.Memory, 0, len(user))
	for _, m := range user {
		cp := *m
		cp.Tags = append([]string(nil), m.Tags...)
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// DeleteMemory removes the memory by id.
func (s *MemoryStore) DeleteMemory(_ context.Context, userID, memoryID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.memories[userID][memoryID]; !ok {
		return &store.NotFoundError{EntityType: "memory", ID: memoryID}
	}
	delete(s.memories[userID], memoryID)
	return nil
}

// GetSettings returns the user's settings.
func (s *MemoryStore) GetSettings(_ context.Context, userID string) (*store.Settings, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st, ok := s.settings[userID]
	if !ok {
		return nil, &store.NotFoundError{EntityType: "settings", ID: userID}
	}
	cp := *st
	return &cp, nil
}

// SaveSettings stores a copy of the user's settings.
func (s *MemoryStore) SaveSettings(_ context.Context, userID string, settings *store.Settings) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *settings
	s.settings[userID] = &cp
	return nil
}

// AppendMessages appends msgs to the conversation, trimming to the history
// limit.
func (s *MemoryStore) AppendMessages(_ context.Context, userID, conversationID string, msgs []store.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := convKey(userID, conversationID)
	history := append(s.conversations[key], msgs...)
	if len(history) > store.HistoryLimit {
		history = history[len(history)-store.HistoryLimit:]
	}
	s.conversations[key] = history
	return nil
}

// GetConversation returns up to limit of the newest messages, oldest first.
func (s *MemoryStore) GetConversation(_ context.Context, userID, conversationID string, limit int) ([]store.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	history := s.conversations[convKey(userID, conversationID)]
	if limit > 0 && len(history) > limit {
		history = history[len(history)-limit:]
	}
	out := make([]store.Message, len(history))
	copy(out, history)
	return out, nil
}

// DeleteConversation drops the conversation's history. Deleting an unknown
// conversation is a no-op.
func (s *MemoryStore) DeleteConversation(_ context.Context, userID, conversationID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.conversations, convKey(userID, conversationID))
	return nil
}

// Close is a no-op for the in-memory store.
func (s *MemoryStore) Close() error {
	return nil
}
