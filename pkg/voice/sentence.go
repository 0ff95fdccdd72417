package voice

import (
	"regexp"
	"strings"
)

// sentenceUnit matches one sentence with its trailing terminator run
// attached ("Really?!" stays one unit).
var sentenceUnit = regexp.MustCompile(`[^.!?]+[.!?]+`)

// TruncateSentences caps text at max sentence units. Text with no sentence
// terminators at all is returned as-is rather than truncated to nothing, and
// text already within the cap comes back unchanged apart from trailing
// whitespace.
func TruncateSentences(text string, max int) string {
	if max <= 0 {
		return strings.TrimSpace(text)
	}

	trimmed := strings.TrimRight(text, " \t\r\n")
	units := sentenceUnit.FindAllString(trimmed, -1)
	if len(units) == 0 {
		return trimmed
	}

	// A trailing unterminated clause counts as one more unit.
	total := len(units)
	if tail := strings.TrimSpace(trimmed[lastUnitEnd(trimmed, units):]); tail != "" {
		total++
	}

	if total <= max {
		return trimmed
	}

	kept := units
	if len(kept) > max {
		kept = kept[:max]
	}
	out := make([]string, 0, len(kept))
	for _, u := range kept {
		out = append(out, strings.TrimSpace(u))
	}
	return strings.Join(out, " ")
}

// lastUnitEnd returns the byte offset just past the final matched unit.
func lastUnitEnd(text string, units []string) int {
	end := 0
	rest := text
	for _, u := range units {
		i := strings.Index(rest, u)
		if i < 0 {
			break
		}
		end += i + len(u)
		rest = text[end:]
	}
	return end
}

// CountSentences reports how many sentence units text contains.
func CountSentences(text string) int {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return 0
	}
	units := sentenceUnit.FindAllString(trimmed, -1)
	if len(units) == 0 {
		return 1
	}
	total := len(units)
	if tail := strings.TrimSpace(trimmed[lastUnitEnd(trimmed, units):]); tail != "" {
		total++
	}
	return total
}
