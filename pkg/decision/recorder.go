package decision

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/novachat/nova/pkg/eventbus"
	"github.com/novachat/nova/pkg/logger"
)

// DefaultCapacity is the per-user in-memory record cap.
const DefaultCapacity = 200

// Sink is a durable append target for records. Sink failures never fail the
// turn that produced the record.
type Sink interface {
	Append(rec Record) error
	Clear(userID string) error
	Close() error
}

// Publisher delivers serialized records to live stream subscribers.
type Publisher interface {
	Publish(ctx context.Context, subject string, payload []byte) error
}

// Recorder keeps a bounded per-user history of gate decisions in memory,
// mirrors each record to an optional durable sink, and publishes it on the
// event bus for streaming consumers.
type Recorder struct {
	mu       sync.RWMutex
	buffers  map[string][]Record
	capacity int

	sink  Sink
	bus   Publisher
	log   logger.Logger
	now   func() time.Time
	depth func(int)
}

// RecorderOption configures a Recorder.
type RecorderOption func(*Recorder)

// WithCapacity sets the per-user record cap.
func WithCapacity(n int) RecorderOption {
	return func(r *Recorder) {
		if n > 0 {
			r.capacity = n
		}
	}
}

// WithSink attaches a durable sink.
func WithSink(s Sink) RecorderOption {
	return func(r *Recorder) { r.sink = s }
}

// WithPublisher attaches a stream publisher.
func WithPublisher(p Publisher) RecorderOption {
	return func(r *Recorder) { r.bus = p }
}

// WithLogger sets the recorder logger.
func WithLogger(l logger.Logger) RecorderOption {
	return func(r *Recorder) { r.log = l }
}

// WithDepthGauge reports the total buffered record count after every
// mutation, feeding the buffer depth metric.
func WithDepthGauge(fn func(int)) RecorderOption {
	return func(r *Recorder) { r.depth = fn }
}

// WithClock sets the timestamp source.
func WithClock(now func() time.Time) RecorderOption {
	return func(r *Recorder) { r.now = now }
}

// NewRecorder creates a Recorder.
func NewRecorder(opts ...RecorderOption) *Recorder {
	r := &Recorder{
		buffers:  make(map[string][]Record),
		capacity: DefaultCapacity,
		log:      logger.Global(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Append stores rec, assigning its id and timestamp, and returns the stored
// record. The in-memory buffer is authoritative; sink and publish failures
// are logged and swallowed.
func (r *Recorder) Append(ctx context.Context, rec Record) Record {
	rec.ID = newID()
	rec.Timestamp = r.now().UTC()

	r.mu.Lock()
	buf := append(r.buffers[rec.UserID], rec)
	if len(buf) > r.capacity {
		buf = buf[len(buf)-r.capacity:]
	}
	r.buffers[rec.UserID] = buf
	total := r.totalLocked()
	r.mu.Unlock()

	if r.depth != nil {
		r.depth(total)
	}

	if r.sink != nil {
		if err := r.sink.Append(rec); err != nil {
			r.log.WarnContext(ctx, "decision sink append failed", "error", err, "user_id", rec.UserID)
		}
	}
	if r.bus != nil {
		payload, err := json.Marshal(rec)
		if err == nil {
			err = r.bus.Publish(ctx, eventbus.DecisionSubject(rec.UserID), payload)
		}
		if err != nil {
			r.log.WarnContext(ctx, "decision publish failed", "error", err, "user_id", rec.UserID)
		}
	}
	return rec
}

// Recent returns up to limit of the user's records, oldest first. A limit of
// zero or less returns everything buffered.
func (r *Recorder) Recent(userID string, limit int) []Record {
	r.mu.RLock()
	defer r.mu.RUnlock()

	buf := r.buffers[userID]
	if limit > 0 && len(buf) > limit {
		buf = buf[len(buf)-limit:]
	}
	out := make([]Record, len(buf))
	copy(out, buf)
	return out
}

// Clear drops the user's buffered records and clears them from the sink.
// Other users' records are untouched.
func (r *Recorder) Clear(ctx context.Context, userID string) {
	r.mu.Lock()
	delete(r.buffers, userID)
	total := r.totalLocked()
	r.mu.Unlock()

	if r.depth != nil {
		r.depth(total)
	}
	if r.sink != nil {
		if err := r.sink.Clear(userID); err != nil {
			r.log.WarnContext(ctx, "decision sink clear failed", "error", err, "user_id", userID)
		}
	}
}

// totalLocked counts buffered records across all users. Caller holds mu.
func (r *Recorder) totalLocked() int {
	total := 0
	for _, buf := range r.buffers {
		total += len(buf)
	}
	return total
}

// Close releases the sink.
func (r *Recorder) Close() error {
	if r.sink == nil {
		return nil
	}
	return r.sink.Close()
}
