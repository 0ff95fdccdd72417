package cooldown

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

const defaultKeyPrefix = "nova:cooldown:"

// RedisStore is a Redis-backed cooldown store for deployments running more
// than one Nova instance against the same user base.
type RedisStore struct {
	client    redis.UniversalClient
	keyPrefix string
}

// NewRedisStore creates a Redis-backed cooldown store.
func NewRedisStore(client redis.UniversalClient, keyPrefix string) *RedisStore {
	if keyPrefix == "" {
		keyPrefix = defaultKeyPrefix
	}
	return &RedisStore{client: client, keyPrefix: keyPrefix}
}

func (s *RedisStore) redisKey(key Key) string {
	return fmt.Sprintf("%s%s:%s:%s", s.keyPrefix, key.UserID, key.ConversationID, key.Stage)
}

// Get returns the entry for key.
func (s *RedisStore) Get(ctx context.Context, key Key) (Entry, bool, error) {
	data, err := s.client.Get(ctx, s.redisKey(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return Entry{}, false, nil
		}
		return Entry{}, false, fmt.Errorf("cooldown: redis get: %w", err)
	}

	var entry Entry
	if err := json.Unmarshal(data, &entry); err != nil {
		return Entry{}, false, fmt.Errorf("cooldown: decode entry: %w", err)
	}
	return entry, true, nil
}

// Put stores the entry for key.
func (s *RedisStore) Put(ctx context.Context, key Key, entry Entry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("cooldown: encode entry: %w", err)
	}
	if err := s.client.Set(ctx, s.redisKey(key), data, 0).Err(); err != nil {
		return fmt.Errorf("cooldown: redis set: %w", err)
	}
	return nil
}
