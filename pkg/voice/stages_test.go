package voice

import (
	"context"
	"testing"

	"github.com/novachat/nova/pkg/model"
	"github.com/novachat/nova/pkg/voice/cooldown"
)

// fixedRand always picks the same pool index.
type fixedRand struct{ n int }

func (r fixedRand) Intn(n int) int {
	if r.n >= n {
		return 0
	}
	return r.n
}

// countingCaller counts completions and returns a canned response.
type countingCaller struct {
	calls    int
	response string
	err      error
}

func (c *countingCaller) Complete(ctx context.Context, messages []model.Message, systemPrompt string) (string, error) {
	c.calls++
	if c.err != nil {
		return "", c.err
	}
	return c.response, nil
}

// staticMemories is a stub memory reader.
type staticMemories struct {
	memories []Memory
	err      error
	reads    int
}

func (s *staticMemories) ListMemories(ctx context.Context, userID string) ([]Memory, error) {
	s.reads++
	if s.err != nil {
		return nil, s.err
	}
	return s.memories, nil
}

func newTestEngine(t *testing.T, caller model.Caller, opts ...Option) *Engine {
	t.Helper()
	base := []Option{WithRand(fixedRand{0})}
	return NewEngine(cooldown.NewMemoryStore(), &staticMemories{}, caller, append(base, opts...)...)
}

func userTurn(mode Mode, contents ...string) *Turn {
	msgs := make([]model.Message, 0, len(contents))
	for _, c := range contents {
		msgs = append(msgs, model.Message{Role: model.RoleUser, Content: c})
	}
	return &Turn{
		UserID:         "u1",
		ConversationID: "c1",
		Messages:       msgs,
		Mode:           mode,
	}
}

func TestEllipsisShortCircuit(t *testing.T) {
	caller := &countingCaller{response: "should not be used"}
	e := newTestEngine(t, caller)

	for _, input := range []string{"...", "…", "  ...  ", "....."} {
		out := e.Evaluate(context.Background(), userTurn(ModeQuiet, input))
		if !out.ShortCircuited {
			t.Errorf("input %q: not short-circuited", input)
		}
		if out.Stage != StageEllipsis {
			t.Errorf("input %q: stage = %s", input, out.Stage)
		}
		if !inPool(out.Response, ellipsisReplies) {
			t.Errorf("input %q: response %q not from ellipsis pool", input, out.Response)
		}
	}
	if caller.calls != 0 {
		t.Errorf("model called %d times, want 0", caller.calls)
	}
}

func TestUltraShortShortCircuit(t *testing.T) {
	caller := &countingCaller{}
	e := newTestEngine(t, caller)

	for _, input := range []string{"ok", "yeah", "nope", "k", "mhm", "ok."} {
		out := e.Evaluate(context.Background(), userTurn(ModeQuiet, input))
		if out.Stage != StageUltraShort {
			t.Errorf("input %q: stage = %s, want ultra_short", input, out.Stage)
		}
		if !inPool(out.Response, softAcknowledgements) {
			t.Errorf("input %q: response %q not a soft acknowledgement", input, out.Response)
		}
	}
	if caller.calls != 0 {
		t.Errorf("model called %d times, want 0", caller.calls)
	}
}

func TestCasualProbeShortCircuit(t *testing.T) {
	e := newTestEngine(t, &countingCaller{})

	for _, input := range []string{"are you there?", "you there", "what are you doing"} {
		out := e.Evaluate(context.Background(), userTurn(ModeQuiet, input))
		if out.Stage != StageCasualProbe {
			t.Errorf("input %q: stage = %s, want casual_probe", input, out.Stage)
		}
	}
}

func TestGreetingUsesModePool(t *testing.T) {
	e := newTestEngine(t, &countingCaller{})

	for _, mode := range Modes() {
		out := e.Evaluate(context.Background(), userTurn(mode, "hey"))
		if out.Stage != StageGreeting {
			t.Fatalf("mode %s: stage = %s, want greeting", mode, out.Stage)
		}
		if !out.ShortCircuited {
			t.Errorf("mode %s: greeting should short-circuit", mode)
		}
		if !inPool(out.Response, greetingReplies[mode]) {
			t.Errorf("mode %s: response %q not in that mode's pool", mode, out.Response)
		}
	}
}

func TestGreetingQuestionPolicyDiffersByMode(t *testing.T) {
	// Engaged allows a question on greeting; quiet does not. The pools must
	// reflect that split.
	for _, line := range greetingReplies[ModeQuiet] {
		if hasQuestion(line) {
			t.Errorf("quiet greeting %q contains a question", line)
		}
	}
	for _, line := range greetingReplies[ModeBlunt] {
		if hasQuestion(line) {
			t.Errorf("blunt greeting %q contains a question", line)
		}
	}
	anyQuestion := false
	for _, line := range greetingReplies[ModeEngaged] {
		if hasQuestion(line) {
			anyQuestion = true
		}
	}
	if !anyQuestion {
		t.Error("engaged greetings should include at least one question")
	}
}

func TestInviteShortCircuit(t *testing.T) {
	e := newTestEngine(t, &countingCaller{})

	for _, input := range []string{"can I tell you something", "I want to talk", "can we talk?"} {
		out := e.Evaluate(context.Background(), userTurn(ModeQuiet, input))
		if out.Stage != StageInvite {
			t.Errorf("input %q: stage = %s, want invite", input, out.Stage)
		}
		if out.Response != inviteReply {
			t.Errorf("input %q: response = %q", input, out.Response)
		}
	}
}

func TestGreetingVariantsWithPunctuation(t *testing.T) {
	e := newTestEngine(t, &countingCaller{})

	for _, input := range []string{"hi", "Hello!", "yo", "sup", "hey there."} {
		out := e.Evaluate(context.Background(), userTurn(ModeQuiet, input))
		if out.Stage != StageGreeting {
			t.Errorf("input %q: stage = %s, want greeting", input, out.Stage)
		}
	}
}

func inPool(s string, pool []string) bool {
	for _, p := range pool {
		if s == p {
			return true
		}
	}
	return false
}

func hasQuestion(s string) bool {
	for _, r := range s {
		if r == '?' {
			return true
		}
	}
	return false
}
