package cooldown

import (
	"context"
	"sync"
)

const shardCount = 16

// MemoryStore is an in-process cooldown backend. Keys are sharded by
// conversation so unrelated users never contend on one mutex.
type MemoryStore struct {
	shards [shardCount]shard
}

type shard struct {
	mu      sync.RWMutex
	entries map[Key]Entry
}

// NewMemoryStore creates an in-memory cooldown store.
func NewMemoryStore() *MemoryStore {
	s := &MemoryStore{}
	for i := range s.shards {
		s.shards[i].entries = make(map[Key]Entry)
	}
	return s
}

func (s *MemoryStore) shardFor(key Key) *shard {
	h := fnv32(key.UserID + "\x00" + key.ConversationID)
	return &s.shards[h%shardCount]
}

// Get returns the entry for key.
func (s *MemoryStore) Get(ctx context.Context, key Key) (Entry, bool, error) {
	sh := s.shardFor(key)
	sh.mu.RLock()
	defer sh.mu.RUnlock()
	entry, ok := sh.entries[key]
	return entry, ok, nil
}

// Put stores the entry for key.
func (s *MemoryStore) Put(ctx context.Context, key Key, entry Entry) error {
	sh := s.shardFor(key)
	sh.mu.Lock()
	defer sh.mu.Unlock()
	sh.entries[key] = entry
	return nil
}

// fnv32 is FNV-1a, inlined to avoid allocating a hash.Hash per lookup.
func fnv32(s string) uint32 {
	h := uint32(2166136261)
	for i := 0; i < len(s); i++ {
		h ^= uint32(s[i])
		h *= 16777619
	}
	return h
}
