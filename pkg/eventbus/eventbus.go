// Package eventbus is an in-process pub/sub fabric. The decision recorder
// publishes gate outcomes onto it and the websocket stream handler subscribes,
// keeping the two decoupled.
package eventbus

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"
)

// Message is a delivered bus message.
type Message struct {
	Subject   string
	Payload   []byte
	Timestamp time.Time
}

// Subscription is one live subject subscription.
type Subscription struct {
	pattern string
	ch      chan Message
	bus     *MemoryBus
	once    sync.Once
}

// C returns the read-only delivery channel.
func (s *Subscription) C() <-chan Message {
	return s.ch
}

// Close removes the subscription and closes its channel.
func (s *Subscription) Close() error {
	s.once.Do(func() {
		s.bus.closeSubscriber(s.pattern, s.ch)
	})
	return nil
}

// MemoryBus is an in-memory pub/sub transport.
type MemoryBus struct {
	mu          sync.RWMutex
	subscribers map[string][]chan Message
}

// NewMemoryBus creates an empty bus.
func NewMemoryBus() *MemoryBus {
	return &MemoryBus{subscribers: make(map[string][]chan Message)}
}

// Publish delivers payload to every subscription whose pattern matches
// subject. Slow subscribers are skipped, never blocked on.
func (b *MemoryBus) Publish(ctx context.Context, subject string, payload []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if subject == "" {
		return fmt.Errorf("eventbus: subject cannot be empty")
	}

	msg := Message{
		Subject:   subject,
		Payload:   append([]byte(nil), payload...),
		Timestamp: time.Now().UTC(),
	}

	// Sends happen under the read lock so a concurrent Close, which takes
	// the write lock before closing its channel, can never interleave with
	// a send in flight. The sends never block, so holding the lock is safe.
	b.mu.RLock()
	defer b.mu.RUnlock()
	for pattern, channels := range b.subscribers {
		if !subjectMatches(pattern, subject) {
			continue
		}
		for _, ch := range channels {
			select {
			case ch <- msg:
			default:
				// non-blocking drop for slow subscribers
			}
		}
	}
	return nil
}

// Subscribe registers a subject pattern with a buffered delivery channel.
func (b *MemoryBus) Subscribe(pattern string, buffer int) (*Subscription, error) {
	if pattern == "" {
		return nil, fmt.Errorf("eventbus: subscription pattern cannot be empty")
	}
	if buffer <= 0 {
		buffer = 32
	}
	ch := make(chan Message, buffer)

	b.mu.Lock()
	b.subscribers[pattern] = append(b.subscribers[pattern], ch)
	b.mu.Unlock()

	return &Subscription{pattern: pattern, ch: ch, bus: b}, nil
}

// closeSubscriber removes the channel from the subscriber table and closes it
// while holding the write lock, so no publisher can be mid-send on it.
func (b *MemoryBus) closeSubscriber(pattern string, target chan Message) {
	b.mu.Lock()
	defer b.mu.Unlock()
	defer close(target)
	channels := b.subscribers[pattern]
	filtered := channels[:0]
	for _, ch := range channels {
		if ch == target {
			continue
		}
		filtered = append(filtered, ch)
	}
	if len(filtered) == 0 {
		delete(b.subscribers, pattern)
		return
	}
	b.subscribers[pattern] = filtered
}

// subjectMatches supports exact subjects, "*" single-segment wildcards, and a
// ">" tail wildcard.
func subjectMatches(pattern, subject string) bool {
	if pattern == subject {
		return true
	}
	if strings.HasSuffix(pattern, ".>") {
		prefix := strings.TrimSuffix(pattern, ".>")
		if prefix == "" {
			return true
		}
		return subject == prefix || strings.HasPrefix(subject, prefix+".")
	}

	patternParts := strings.Split(pattern, ".")
	subjectParts := strings.Split(subject, ".")
	if len(patternParts) != len(subjectParts) {
		return false
	}
	for i := range patternParts {
		if patternParts[i] == "*" {
			continue
		}
		if patternParts[i] != subjectParts[i] {
			return false
		}
	}
	return true
}
