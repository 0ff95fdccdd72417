// Package voice implements Nova's response gating pipeline.
//
// Every inbound turn runs through an ordered list of short-circuit stages;
// the first matching stage resolves the turn locally. Only when no stage
// matches does the engine make exactly one call to the external language
// model, then deterministically sanitizes and truncates the result. The
// pipeline never makes a second model call and never surfaces collaborator
// failures to the user.
package voice

import (
	"context"
	"strings"

	"github.com/novachat/nova/pkg/model"
)

// Turn is one inbound user message with its context and routing flags.
type Turn struct {
	// UserID identifies the requesting user.
	UserID string

	// ConversationID identifies the conversation, scoping cooldown state.
	ConversationID string

	// Messages is the ordered conversation history. The inbound user message
	// is the last user-role entry.
	Messages []model.Message

	// SystemPrompt is the base system prompt for model calls.
	SystemPrompt string

	// Mode is the voice mode for this turn.
	Mode Mode

	// AllowMemoryReferences opts the turn into memory continuity.
	AllowMemoryReferences bool
}

// LastUserMessage returns the content of the most recent user-role message.
func (t *Turn) LastUserMessage() string {
	for i := len(t.Messages) - 1; i >= 0; i-- {
		if t.Messages[i].Role == model.RoleUser {
			return t.Messages[i].Content
		}
	}
	return ""
}

// Outcome is the result of evaluating one turn.
type Outcome struct {
	// Response is the text Nova says back.
	Response string

	// Stage names the gate stage that resolved the turn.
	Stage string

	// Reason carries stage detail for telemetry (matched bucket, phrase).
	Reason string

	// ShortCircuited reports whether a gate stage resolved the turn without
	// a model call.
	ShortCircuited bool

	// Rewritten reports whether sanitization changed the model output.
	Rewritten bool

	// ModelCalls counts external model calls made for this turn, always 0 or 1.
	ModelCalls int

	// MemoryReads counts memory snapshot reads made for this turn.
	MemoryReads int
}

// Memory is a read-only snapshot of one stored user memory.
type Memory struct {
	ID      string
	Content string
	Tags    []string
}

// MemoryReader provides read-only access to a user's stored memories.
type MemoryReader interface {
	ListMemories(ctx context.Context, userID string) ([]Memory, error)
}

// Gate stage names, recorded in decision telemetry.
const (
	StageEllipsis    = "ellipsis"
	StageUltraShort  = "ultra_short"
	StageCasualProbe = "casual_probe"
	StageGreeting    = "greeting"
	StageInvite      = "invite"
	StageReflection  = "reflection"
	StageModelCall   = "model_call"
)

// normalize lower-cases and collapses whitespace for matching and signatures.
func normalize(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

// signature returns the first 140 characters of the normalized message,
// used to suppress back-to-back reflections on near-identical input.
func signature(s string) string {
	n := normalize(s)
	if len(n) > 140 {
		n = n[:140]
	}
	return n
}

func wordCount(s string) int {
	return len(strings.Fields(s))
}
