// Package badger provides a Badger-based implementation of the store
// interface.
package badger

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/dgraph-io/badger/v4"

	"github.com/novachat/nova/pkg/store"
)

// Config holds configuration for BadgerStore.
type Config struct {
	Path             string
	SyncWrites       bool
	ValueLogFileSize int64
}

// BadgerStore implements store.Store using Badger.
type BadgerStore struct {
	db *badger.DB
}

// NewBadgerStore opens the database at config.Path.
func NewBadgerStore(config *Config) (*BadgerStore, error) {
	opts := badger.DefaultOptions(config.Path)
	opts.SyncWrites = config.SyncWrites
	if config.ValueLogFileSize > 0 {
		opts.ValueLogFileSize = config.ValueLogFileSize
	}
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, &store.StorageUnavailableError{Cause: err}
	}
	return &BadgerStore{db: db}, nil
}

// Key layout. Per-user data shares a user prefix so listing stays a single
// prefix scan.
func memoryKey(userID, memoryID string) []byte {
	return []byte(fmt.Sprintf("memory:%s:%s", userID, memoryID))
}

func memoryPrefix(userID string) []byte {
	return []byte(fmt.Sprintf("memory:%s:", userID))
}

func settingsKey(userID string) []byte {
	return []byte(fmt.Sprintf("settings:%s", userID))
}

func conversationKey(userID, conversationID string) []byte {
	return []byte(fmt.Sprintf("conv:%s:%s", userID, conversationID))
}

func serialize(v any) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, &store.SerializationError{Operation: "marshal", Cause: err}
	}
	return data, nil
}

func deserialize(data []byte, v any) error {
	if err := json.Unmarshal(data, v); err != nil {
		return &store.SerializationError{Operation: "unmarshal", Cause: err}
	}
	return nil
}

// SaveMemory stores m for the user.
func (b *BadgerStore) SaveMemory(_ context.Context, userID string, m *store.Memory) error {
	data, err := serialize(m)
	if err != nil {
		return err
	}
	return b.db.Update(func(txn *badger.Txn) error {
		return txn.Set(memoryKey(userID, m.ID), data)
	})
}

// GetMemory retrieves a memory by id.
func (b *BadgerStore) GetMemory(_ context.Context, userID, memoryID string) (*store.Memory, error) {
	var m store.Memory
	err := b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(memoryKey(userID, memoryID))
		if err != nil {
			if err == badger.ErrKeyNotFound {
				return &store.NotFoundError{EntityType: "memory", ID: memoryID}
			}
			return err
		}
		return item.Value(func(val []byte) error {
			return deserialize(val, &m)
		})
	})
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// ListMemories scans the user's memory prefix, ordered by creation time.
func (b *BadgerStore) ListMemories(_ context.Context, userID string) ([]*store.Memory, error) {
	var memories []*store.Memory
	err := b.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = memoryPrefix(userID)

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			var m store.Memory
			err := it.Item().Value(func(val []byte) error {
				return deserialize(val, &m)
			})
			if err != nil {
				return err
			}
			memories = append(memories, &m)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(memories, func(i, j int) bool {
		if !memories[i].CreatedAt.Equal(memories[j].CreatedAt) {
			return memories[i].CreatedAt.Before(memories[j].CreatedAt)
		}
		return memories[i].ID < memories[j].ID
	})
	return memories, nil
}

// DeleteMemory removes a memory by id.
func (b *BadgerStore) DeleteMemory(_ context.Context, userID, memoryID string) error {
	return b.db.Update(func(txn *badger.Txn) error {
		key := memoryKey(userID, memoryID)
		if _, err := txn.Get(key); err != nil {
			if err == badger.ErrKeyNotFound {
				return &store.NotFoundError{EntityType: "memory", ID: memoryID}
			}
			return err
		}
		return txn.Delete(key)
	})
}

// GetSettings retrieves the user's settings.
func (b *BadgerStore) GetSettings(_ context.Context, userID string) (*store.Settings, error) {
	var s store.Settings
	err := b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(settingsKey(userID))
		if err != nil {
			if err == badger.ErrKeyNotFound {
				return &store.NotFoundError{EntityType: "settings", ID: userID}
			}
			return err
		}
		return item.Value(func(val []byte) error {
			return deserialize(val, &s)
		})
	})
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// SaveSettings stores the user's settings.
func (b *BadgerStore) SaveSettings(_ context.Context, userID string, s *store.Settings) error {
	data, err := serialize(s)
	if err != nil {
		return err
	}
	return b.db.Update(func(txn *badger.Txn) error {
		return txn.Set(settingsKey(userID), data)
	})
}

// AppendMessages appends msgs to the conversation inside one transaction,
// trimming to the history limit.
func (b *BadgerStore) AppendMessages(_ context.Context, userID, conversationID string, msgs []store.Message) error {
	return b.db.Update(func(txn *badger.Txn) error {
		key := conversationKey(userID, conversationID)

		var history []store.Message
		item, err := txn.Get(key)
		switch err {
		case nil:
			err = item.Value(func(val []byte) error {
				return deserialize(val, &history)
			})
			if err != nil {
				return err
			}
		case badger.ErrKeyNotFound:
		default:
			return err
		}

		history = append(history, msgs...)
		if len(history) > store.HistoryLimit {
			history = history[len(history)-store.HistoryLimit:]
		}

		data, err := serialize(history)
		if err != nil {
			return err
		}
		return txn.Set(key, data)
	})
}

// GetConversation returns up to limit of the newest messages, oldest first.
func (b *BadgerStore) GetConversation(_ context.Context, userID, conversationID string, limit int) ([]store.Message, error) {
	var history []store.Message
	err := b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(conversationKey(userID, conversationID))
		if err != nil {
			if err == badger.ErrKeyNotFound {
				return nil
			}
			return err
		}
		return item.Value(func(val []byte) error {
			return deserialize(val, &history)
		})
	})
	if err != nil {
		return nil, err
	}
	if limit > 0 && len(history) > limit {
		history = history[len(history)-limit:]
	}
	return history, nil
}

// DeleteConversation drops the conversation's history. Deleting an unknown
// conversation is a no-op.
func (b *BadgerStore) DeleteConversation(_ context.Context, userID, conversationID string) error {
	return b.db.Update(func(txn *badger.Txn) error {
		err := txn.Delete(conversationKey(userID, conversationID))
		if err == badger.ErrKeyNotFound {
			return nil
		}
		return err
	})
}

// Close closes the database.
func (b *BadgerStore) Close() error {
	return b.db.Close()
}
