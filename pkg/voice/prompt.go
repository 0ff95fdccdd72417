package voice

import (
	"fmt"
	"strings"
)

// renderStyleBlock builds the behavior block appended to the base system
// prompt on model calls. It spells the contract out for the model; the
// post-processors enforce it regardless.
func renderStyleBlock(mode Mode, style Style) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "Voice mode: %s.\n", mode)
	fmt.Fprintf(&sb, "Reply in at most %d sentences unless the user gave substantial context.\n", style.MaxSentences)

	if style.AllowQuestionsOnGreeting {
		sb.WriteString("You may ask one light question when greeting. Never interrogate.\n")
	} else {
		sb.WriteString("Do not ask questions unless the user explicitly asks for one.\n")
	}

	fmt.Fprintf(&sb, "Tone: %s.\n", warmthDescriptor(style.WarmthBias))

	sb.WriteString("Never use counselor phrasing. Banned examples: ")
	examples := []string{
		`"tell me how that makes you feel"`,
		`"thank you for sharing"`,
		`"it sounds like you"`,
		`"your feelings are valid"`,
	}
	sb.WriteString(strings.Join(examples, ", "))
	sb.WriteString(".\n")
	sb.WriteString("Do not mention being an AI unless the user asks what you are.")

	return sb.String()
}

// enhanceSystemPrompt appends the style block to the base prompt.
func enhanceSystemPrompt(base string, mode Mode, style Style) string {
	block := renderStyleBlock(mode, style)
	if strings.TrimSpace(base) == "" {
		return block
	}
	return base + "\n\n" + block
}
