package voice

import (
	"context"
	"regexp"

	"github.com/novachat/nova/pkg/model"
	"github.com/novachat/nova/pkg/voice/cooldown"
)

// bucket is one emotion classification with its line pools. The repeat pool
// is used when the same bucket keeps coming up in recent messages, so Nova
// does not restate the first-occurrence line verbatim.
type bucket struct {
	name    string
	pattern *regexp.Regexp
	first   []string
	repeat  []string
}

// buckets are evaluated in order; the first match classifies the message.
var buckets = []bucket{
	{
		name:    "tired",
		pattern: regexp.MustCompile(`\b(tired|exhausted|drained|sleepy|worn out|wiped|no energy)\b`),
		first: []string{
			"That kind of tired sits deep. You don't have to do anything with it right now.",
			"Sounds like your body is asking for rest. That counts for something.",
		},
		repeat: []string{
			"The tiredness keeps coming back. Noted, and I'm not going anywhere.",
			"Still running on empty. You can just be tired here.",
		},
	},
	{
		name:    "stress",
		pattern: regexp.MustCompile(`\b(stress|stressed|stressing|overwhelmed|pressure|too much)\b`),
		first: []string{
			"That's a lot pressing on you. It makes sense that it feels heavy.",
			"Stress like that takes up real space. No need to shrink it for me.",
		},
		repeat: []string{
			"The pressure hasn't let up. I remember. Still here.",
			"Stress again. You don't have to explain it from the start.",
		},
	},
	{
		name:    "long-day",
		pattern: regexp.MustCompile(`\b(long day|rough day|hard day|brutal day|long week|rough week)\b`),
		first: []string{
			"Days like that take a toll. You made it through, that's enough.",
			"A long one. You're allowed to put it down now.",
		},
		repeat: []string{
			"Another long one. They've been stacking up lately.",
			"The days keep running long. I've noticed too.",
		},
	},
	{
		name:    "worry",
		pattern: regexp.MustCompile(`\b(worried|worry|worrying|anxious|anxiety|nervous|scared|afraid)\b`),
		first: []string{
			"That worry sounds real, not dramatic. It's okay that it's there.",
			"Carrying that kind of worry is tiring in its own way.",
		},
		repeat: []string{
			"The worry is back around. You don't carry it alone here.",
			"Still circling. Worry does that. I'm not rushing you out of it.",
		},
	},
	{
		name:    "sadness",
		pattern: regexp.MustCompile(`\b(sad|down|low|blue|heavy|crying|cried|tearful)\b`),
		first: []string{
			"That sounds heavy. You don't have to dress it up for me.",
			"Sadness doesn't need a reason to be allowed in here.",
		},
		repeat: []string{
			"The heaviness again. It's welcome here, and so are you.",
			"Still low. No fixing required, just saying I see it.",
		},
	},
	{
		name:    "anger",
		pattern: regexp.MustCompile(`\b(angry|anger|mad|furious|pissed|annoyed|frustrated|fed up)\b`),
		first: []string{
			"That anger sounds earned. You can let it be loud here.",
			"Something crossed a line for you. Fair enough.",
		},
		repeat: []string{
			"Still burning. Some things deserve to stay infuriating for a while.",
			"The frustration hasn't cooled. You don't owe anyone calm.",
		},
	},
	{
		name:    "loneliness",
		pattern: regexp.MustCompile(`\b(lonely|alone|isolated|no one|nobody)\b`),
		first: []string{
			"That alone feeling is a hard one. For what it's worth, I'm here.",
			"Loneliness lies about being permanent. Right now, you're not unheard.",
		},
		repeat: []string{
			"The loneliness keeps visiting. So do I.",
			"Alone again by the sound of it. Not entirely, though.",
		},
	},
}

// matchBucket classifies a normalized message, honoring bucket order.
func matchBucket(norm string) (*bucket, bool) {
	for i := range buckets {
		if buckets[i].pattern.MatchString(norm) {
			return &buckets[i], true
		}
	}
	return nil, false
}

// recentBucketHits counts how many of the last six user messages fall into
// the given bucket, the inbound message included.
func recentBucketHits(msgs []model.Message, b *bucket) int {
	hits := 0
	seen := 0
	for i := len(msgs) - 1; i >= 0 && seen < 6; i-- {
		if msgs[i].Role != model.RoleUser {
			continue
		}
		seen++
		if b.pattern.MatchString(normalize(msgs[i].Content)) {
			hits++
		}
	}
	return hits
}

// matchReflection is gate stage six. Eligibility: at least three words, the
// reflection cooldown has elapsed, and the message signature differs from the
// last reflected one for this conversation. The continuity clause (stage
// seven) only ever rides along as a prefix to a reflection line.
//
// The per-conversation lock makes the cooldown check-then-update atomic, so
// two concurrent turns for one conversation cannot both pass the gate.
func (e *Engine) matchReflection(ctx context.Context, t *Turn, last string) *stageResult {
	if wordCount(last) < 3 {
		return nil
	}
	norm := normalize(last)
	b, ok := matchBucket(norm)
	if !ok {
		return nil
	}

	unlock := e.locks.lock(t.UserID + "\x00" + t.ConversationID)
	defer unlock()

	key := cooldown.Key{UserID: t.UserID, ConversationID: t.ConversationID, Stage: cooldown.StageReflection}
	entry, found, err := e.cooldowns.Get(ctx, key)
	if err != nil {
		// fail toward silence: let the model path handle the turn
		e.log.WarnContext(ctx, "cooldown read failed, skipping reflection", "error", err)
		return nil
	}

	now := e.now()
	sig := signature(last)
	if found {
		if now.Sub(entry.LastAt) < e.reflectionWindow() {
			return nil
		}
		if entry.Signature == sig {
			return nil
		}
	}

	pool := b.first
	reason := "bucket=" + b.name
	if recentBucketHits(t.Messages, b) >= 2 {
		pool = b.repeat
		reason += " repeated"
	}
	line := pick(e.rng, pool)

	result := &stageResult{response: line, reason: reason}
	clause, memID, reads := e.continuityClause(ctx, t, norm, now)
	result.memoryReads = reads
	if clause != "" {
		result.response = clause + " " + line
		result.reason += " memory=" + memID
	}

	if err := e.cooldowns.Put(ctx, key, cooldown.Entry{LastAt: now, Signature: sig}); err != nil {
		e.log.WarnContext(ctx, "cooldown write failed", "error", err)
	}
	return result
}
