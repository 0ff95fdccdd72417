package voice

import (
	"context"
	"strings"
)

// stageResult is a short-circuit stage's resolved reply.
type stageResult struct {
	response    string
	reason      string
	memoryReads int
}

// gateStage is one ordered matcher in the pipeline. First match wins; a nil
// result means the stage passed and evaluation continues.
type gateStage struct {
	name  string
	match func(ctx context.Context, t *Turn, last string) *stageResult
}

// buildStages assembles the fixed-order short-circuit list. The order is the
// contract: reordering changes which stage claims an ambiguous message.
func (e *Engine) buildStages() []gateStage {
	return []gateStage{
		{name: StageEllipsis, match: e.matchEllipsis},
		{name: StageUltraShort, match: e.matchUltraShort},
		{name: StageCasualProbe, match: e.matchCasualProbe},
		{name: StageGreeting, match: e.matchGreeting},
		{name: StageInvite, match: e.matchInvite},
		{name: StageReflection, match: e.matchReflection},
	}
}

// matchEllipsis answers a bare "..." or ellipsis glyph with presence.
func (e *Engine) matchEllipsis(_ context.Context, _ *Turn, last string) *stageResult {
	if !ellipsisPattern.MatchString(last) {
		return nil
	}
	return &stageResult{response: pick(e.rng, ellipsisReplies)}
}

// matchUltraShort answers minimal acknowledgements without engaging.
func (e *Engine) matchUltraShort(_ context.Context, _ *Turn, last string) *stageResult {
	norm := normalize(strings.TrimRight(last, ".!?"))
	if _, fixed := minimalAcks[norm]; !fixed {
		if wordCount(last) > 2 || len(last) > 6 {
			return nil
		}
		if last == "" || greetingPattern.MatchString(normalize(last)) {
			// greetings get their own stage
			return nil
		}
	}
	return &stageResult{response: pick(e.rng, softAcknowledgements)}
}

// matchCasualProbe answers "are you there" style check-ins.
func (e *Engine) matchCasualProbe(_ context.Context, _ *Turn, last string) *stageResult {
	norm := normalize(last)
	for _, p := range probePatterns {
		if p.MatchString(norm) {
			return &stageResult{response: pick(e.rng, probeReplies)}
		}
	}
	return nil
}

// matchGreeting answers greetings from the mode's greeting pool.
func (e *Engine) matchGreeting(_ context.Context, t *Turn, last string) *stageResult {
	if !greetingPattern.MatchString(normalize(last)) {
		return nil
	}
	pool, ok := greetingReplies[t.Mode]
	if !ok {
		pool = greetingReplies[ModeQuiet]
	}
	return &stageResult{response: pick(e.rng, pool), reason: "mode=" + string(t.Mode)}
}

// matchInvite answers "can I tell you something" with the fixed go-ahead.
func (e *Engine) matchInvite(_ context.Context, _ *Turn, last string) *stageResult {
	norm := normalize(last)
	for _, p := range invitePatterns {
		if p.MatchString(norm) {
			return &stageResult{response: inviteReply}
		}
	}
	return nil
}

// asksAboutNature reports whether the user asked what Nova is this turn.
func asksAboutNature(last string) bool {
	return naturePattern.MatchString(normalize(last))
}
