package voice

import (
	"regexp"
	"strings"
)

var (
	whitespaceRun = regexp.MustCompile(`\s{2,}`)
	spacedPunct   = regexp.MustCompile(`\s+([.,!?;:])`)
)

// findBannedPhrase returns the first banned phrase present in the response,
// case-insensitively. The conditional disclaimer list only applies when the
// user did not ask about Nova's nature this turn.
func findBannedPhrase(response, lastUserMessage string) (string, bool) {
	lower := strings.ToLower(response)
	for _, phrase := range bannedPhrases {
		if strings.Contains(lower, phrase) {
			return phrase, true
		}
	}
	if !asksAboutNature(lastUserMessage) {
		for _, phrase := range conditionalBannedPhrases {
			if strings.Contains(lower, phrase) {
				return phrase, true
			}
		}
	}
	return "", false
}

// Sanitize removes the first case-insensitive occurrence of phrase from
// text, then repairs the seam: whitespace runs collapse, punctuation left
// floating reattaches, wrapping quotes drop. A text without the phrase is
// returned untouched, which makes Sanitize idempotent. If removal empties
// the text entirely, a minimal presence line stands in.
func Sanitize(text, phrase string) string {
	if phrase == "" {
		return text
	}
	idx := strings.Index(strings.ToLower(text), strings.ToLower(phrase))
	if idx < 0 {
		return text
	}

	prefix := text[:idx]
	suffix := text[idx+len(phrase):]

	// A phrase that stood as its own sentence leaves its terminator stranded
	// against the previous sentence's. Absorb it into the excision.
	if endsWithTerminator(strings.TrimRight(prefix, " ")) {
		suffix = strings.TrimLeft(suffix, ".,!?;: ")
		if suffix != "" {
			suffix = " " + suffix
		}
	}

	cleaned := prefix + suffix
	cleaned = whitespaceRun.ReplaceAllString(cleaned, " ")
	cleaned = spacedPunct.ReplaceAllString(cleaned, "$1")
	cleaned = strings.Trim(cleaned, `"'`)
	cleaned = strings.TrimSpace(cleaned)

	// Removal can strand a leading punctuation mark.
	cleaned = strings.TrimLeft(cleaned, ".,!?;: ")

	if cleaned == "" {
		return sanitizerFallback
	}
	return cleaned
}

func endsWithTerminator(s string) bool {
	if s == "" {
		return false
	}
	switch s[len(s)-1] {
	case '.', '!', '?':
		return true
	}
	return false
}
