package voice

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/novachat/nova/pkg/voice/cooldown"
)

const snippetLimit = 80

// continuityClause produces the optional memory-reference prefix for a
// reflection line. It returns the empty clause on any miss or failure; the
// caller falls back to the plain reflection line and that fallback is a hard
// contract, never an error.
//
// reads counts memory snapshot reads performed, whether or not a clause was
// produced. It is always zero when memory references are not opted into.
//
// Must be called under the same per-conversation lock as the reflection
// cooldown check.
func (e *Engine) continuityClause(ctx context.Context, t *Turn, norm string, now time.Time) (clause, memoryID string, reads int) {
	if !t.AllowMemoryReferences {
		return "", "", 0
	}
	if !containsFocusTerm(norm) {
		return "", "", 0
	}

	key := cooldown.Key{UserID: t.UserID, ConversationID: t.ConversationID, Stage: cooldown.StageContinuity}
	entry, found, err := e.cooldowns.Get(ctx, key)
	if err != nil {
		return "", "", 0
	}
	if found && now.Sub(entry.LastAt) < e.continuityWindow() {
		return "", "", 0
	}

	memories, err := e.memories.ListMemories(ctx, t.UserID)
	if err != nil {
		// treated as "no memories"
		return "", "", 0
	}
	reads = 1

	best, ok := scoreMemories(memories, norm, entry.MemoryID)
	if !ok {
		return "", "", reads
	}

	if err := e.cooldowns.Put(ctx, key, cooldown.Entry{LastAt: now, MemoryID: best.ID}); err != nil {
		e.log.WarnContext(ctx, "continuity cooldown write failed", "error", err)
	}

	return "You mentioned " + snippet(best.Content) + " before.", best.ID, reads
}

// containsFocusTerm reports whether the normalized message carries at least
// one continuity focus term.
func containsFocusTerm(norm string) bool {
	for _, term := range focusTerms {
		if strings.Contains(norm, term) {
			return true
		}
	}
	return false
}

// scoreMemories picks the memory whose content has the most occurrences of
// the focus terms present in the message, skipping the memory referenced
// last time. Ties keep the earliest candidate.
func scoreMemories(memories []Memory, norm string, excludeID string) (Memory, bool) {
	var active []string
	for _, term := range focusTerms {
		if strings.Contains(norm, term) {
			active = append(active, term)
		}
	}

	var best Memory
	bestScore := 0
	for _, m := range memories {
		if excludeID != "" && m.ID == excludeID {
			continue
		}
		content := strings.ToLower(m.Content)
		score := 0
		for _, term := range active {
			score += strings.Count(content, term)
		}
		if score > bestScore {
			best = m
			bestScore = score
		}
	}
	return best, bestScore > 0
}

// snippet lower-cases and truncates memory content for the clause. The cut
// lands on a rune boundary so multibyte content never yields invalid UTF-8.
func snippet(content string) string {
	s := strings.ToLower(strings.TrimSpace(content))
	if len(s) > snippetLimit {
		cut := snippetLimit
		for cut > 0 && !utf8.RuneStart(s[cut]) {
			cut--
		}
		s = strings.TrimSpace(s[:cut])
	}
	return s
}
