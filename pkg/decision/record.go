// Package decision records gate pipeline outcomes. Every evaluated turn
// appends exactly one record, short-circuit or not, so the decision log is a
// complete account of why Nova spoke the way it did.
package decision

import (
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/novachat/nova/pkg/voice"
)

// Record is one gate decision.
type Record struct {
	ID             string    `json:"id"`
	UserID         string    `json:"userKey"`
	ConversationID string    `json:"conversationId"`
	Timestamp      time.Time `json:"ts"`
	Route          string    `json:"route"`
	Mode           string    `json:"mode"`
	Stage          string    `json:"stage"`
	Reason         string    `json:"reason,omitempty"`
	ShortCircuited bool      `json:"shortCircuited"`
	Rewritten      bool      `json:"rewritten"`
	ModelCalls     int       `json:"modelCallCount"`
	MemoryReads    int       `json:"memoryReadCount"`
}

// FromOutcome builds a record from an evaluated turn. The id and timestamp
// are assigned by the recorder on append.
func FromOutcome(t *voice.Turn, route string, out voice.Outcome) Record {
	return Record{
		UserID:         t.UserID,
		ConversationID: t.ConversationID,
		Route:          route,
		Mode:           string(t.Mode),
		Stage:          out.Stage,
		Reason:         out.Reason,
		ShortCircuited: out.ShortCircuited,
		Rewritten:      out.Rewritten,
		ModelCalls:     out.ModelCalls,
		MemoryReads:    out.MemoryReads,
	}
}

// newID returns a lexicographically sortable record id.
func newID() string {
	return ulid.Make().String()
}
