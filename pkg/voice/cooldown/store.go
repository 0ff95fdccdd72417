// Package cooldown provides keyed timed state for the voice gate stages.
//
// Entries record when a stage last fired for one conversation, plus a
// stage-specific discriminator: the normalized message signature for
// reflection, the referenced memory id for continuity. Entries are created
// lazily, mutated on qualifying turns, and never expire; resetting on restart
// is acceptable.
package cooldown

import (
	"context"
	"time"
)

// StageKind identifies the gate stage a cooldown entry belongs to.
type StageKind string

const (
	// StageReflection gates reflection lines.
	StageReflection StageKind = "reflection"
	// StageContinuity gates memory references.
	StageContinuity StageKind = "continuity"
)

// Key identifies one cooldown entry.
type Key struct {
	UserID         string
	ConversationID string
	Stage          StageKind
}

// Entry is the stored cooldown state for one key.
type Entry struct {
	// LastAt is when the stage last fired.
	LastAt time.Time `json:"last_at"`

	// Signature is the normalized message signature (reflection only).
	Signature string `json:"signature,omitempty"`

	// MemoryID is the memory referenced last time (continuity only).
	MemoryID string `json:"memory_id,omitempty"`
}

// Store is the cooldown state backend. Implementations must be safe for
// concurrent use across requests for different keys. Callers serialize
// read-then-write sequences for one conversation themselves.
type Store interface {
	// Get returns the entry for key, reporting whether one exists.
	Get(ctx context.Context, key Key) (Entry, bool, error)

	// Put stores the entry for key, replacing any previous one.
	Put(ctx context.Context, key Key, entry Entry) error
}
