package store

import (
	"context"

	"github.com/novachat/nova/pkg/voice"
)

// MemoryReader adapts a Store to the voice engine's read-only memory view.
type MemoryReader struct {
	store Store
}

// NewMemoryReader wraps s for the voice engine.
func NewMemoryReader(s Store) *MemoryReader {
	return &MemoryReader{store: s}
}

// ListMemories returns the user's memories as engine snapshots.
func (r *MemoryReader) ListMemories(ctx context.Context, userID string) ([]voice.Memory, error) {
	memories, err := r.store.ListMemories(ctx, userID)
	if err != nil {
		return nil, err
	}
	out := make([]voice.Memory, 0, len(memories))
	for _, m := range memories {
		out = append(out, voice.Memory{ID: m.ID, Content: m.Content, Tags: m.Tags})
	}
	return out, nil
}
