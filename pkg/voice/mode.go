package voice

import "fmt"

// Mode is a named response-style configuration.
type Mode string

const (
	// ModeQuiet is terse and low-warmth.
	ModeQuiet Mode = "quiet"
	// ModeEngaged is fuller and may ask a question on greeting.
	ModeEngaged Mode = "engaged"
	// ModeMythic is imagistic, still brief.
	ModeMythic Mode = "mythic"
	// ModeBlunt is flat and direct.
	ModeBlunt Mode = "blunt"
)

// Style controls brevity and warmth for one voice mode. Styles are immutable
// and defined at process start.
type Style struct {
	// MaxSentences caps model-call responses when no context was provided.
	MaxSentences int

	// AllowQuestionsOnGreeting permits a question in greeting replies.
	AllowQuestionsOnGreeting bool

	// WarmthBias shifts tone, 0 (reserved) to 100 (warm).
	WarmthBias int
}

// styles holds the fixed per-mode configuration.
var styles = map[Mode]Style{
	ModeQuiet:   {MaxSentences: 2, AllowQuestionsOnGreeting: false, WarmthBias: 40},
	ModeEngaged: {MaxSentences: 4, AllowQuestionsOnGreeting: true, WarmthBias: 70},
	ModeMythic:  {MaxSentences: 3, AllowQuestionsOnGreeting: false, WarmthBias: 60},
	ModeBlunt:   {MaxSentences: 2, AllowQuestionsOnGreeting: false, WarmthBias: 25},
}

// Valid reports whether m is a known mode.
func (m Mode) Valid() bool {
	_, ok := styles[m]
	return ok
}

// StyleFor returns the style for a mode, falling back to quiet for unknown
// values so a corrupt setting can never break a turn.
func StyleFor(m Mode) Style {
	if s, ok := styles[m]; ok {
		return s
	}
	return styles[ModeQuiet]
}

// ParseMode validates a mode string.
func ParseMode(s string) (Mode, error) {
	m := Mode(s)
	if !m.Valid() {
		return "", fmt.Errorf("unknown voice mode %q", s)
	}
	return m, nil
}

// Modes lists all known modes.
func Modes() []Mode {
	return []Mode{ModeQuiet, ModeEngaged, ModeMythic, ModeBlunt}
}

// warmthDescriptor maps a warmth bias to the word used in the rendered
// style block.
func warmthDescriptor(bias int) string {
	switch {
	case bias < 35:
		return "reserved"
	case bias < 65:
		return "steady"
	default:
		return "warm"
	}
}
