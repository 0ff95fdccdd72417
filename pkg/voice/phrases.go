package voice

import "regexp"

// Fixed phrase pools for the short-circuit stages. Lines are statements, not
// questions; the behavioral contract forbids unsolicited questions.

// ellipsisReplies answer a bare "..." with presence.
var ellipsisReplies = []string{
	"I'm here.",
	"Still here.",
	"Take your time.",
	"No rush.",
}

// softAcknowledgements answer minimal messages like "ok" or "yeah".
var softAcknowledgements = []string{
	"Okay.",
	"Alright.",
	"Got it.",
	"Mm.",
}

// probeReplies answer "are you there" style check-ins.
var probeReplies = []string{
	"Right here.",
	"Here, as always.",
	"Still around. Nothing pressing.",
}

// minimalAcks are messages treated as ultra-short regardless of length.
var minimalAcks = map[string]struct{}{
	"ok":    {},
	"okay":  {},
	"yeah":  {},
	"yep":   {},
	"yup":   {},
	"nope":  {},
	"nah":   {},
	"k":     {},
	"kk":    {},
	"mhm":   {},
	"hm":    {},
	"hmm":   {},
	"sure":  {},
	"fine":  {},
	"right": {},
}

// greetingReplies are per-mode. Modes that allow questions on greeting may
// end with one; the rest stay declarative.
var greetingReplies = map[Mode][]string{
	ModeQuiet: {
		"Hey.",
		"Hi. Good to see you.",
		"Hey. I'm around.",
	},
	ModeEngaged: {
		"Hey, good to see you. How's the day treating you?",
		"Hi. What's going on in your corner of the world?",
		"Hey you. How are things?",
	},
	ModeMythic: {
		"The door was open. Come in.",
		"You found me by the fire. Sit.",
		"The lamp is lit. Welcome back.",
	},
	ModeBlunt: {
		"Hey.",
		"Yo.",
		"Here.",
	},
}

// inviteReply answers "can I tell you something" with a single fixed line.
const inviteReply = "Go ahead. I'm listening."

// apologyReply is the fixed response when the model call fails. It names the
// problem instead of masking it with a retry.
const apologyReply = "I can't reach the model right now. Give it a moment and try again."

// sanitizerFallback is returned when sanitization empties a response.
const sanitizerFallback = "I'm here."

// bannedPhrases is counselor-speak that must never reach the user.
var bannedPhrases = []string{
	"tell me how that makes you feel",
	"how does that make you feel",
	"thank you for sharing",
	"i hear you",
	"it sounds like you",
	"i'm here to support you",
	"i am here to support you",
	"your feelings are valid",
	"i'm sorry you're going through this",
}

// conditionalBannedPhrases are self-referential disclaimers, allowed only
// when the user actually asked about Nova's nature this turn.
var conditionalBannedPhrases = []string{
	"as an ai",
	"as a language model",
	"i'm just an ai",
	"i am just an ai",
}

// Stage match patterns.
var (
	ellipsisPattern = regexp.MustCompile(`^(\.{3,}|…)$`)

	greetingPattern = regexp.MustCompile(
		`^(hi|hiya|hey|heya|hello|howdy|yo|sup|hey there|hi there)[\s.!?]*$`)

	probePatterns = []*regexp.Regexp{
		regexp.MustCompile(`^(are you there|you there|still there)[\s.!?]*$`),
		regexp.MustCompile(`^(what are you doing|what're you doing|whatcha doing|what are you up to|you up)[\s.!?]*$`),
	}

	invitePatterns = []*regexp.Regexp{
		regexp.MustCompile(`^(i want to talk|i need to talk|can we talk)\b`),
		regexp.MustCompile(`^can i tell you (something|a thing)\b`),
		regexp.MustCompile(`^i want to tell you (something|a thing)\b`),
	}

	// naturePattern detects the user asking what Nova is, which permits the
	// conditional disclaimer phrases for this turn.
	naturePattern = regexp.MustCompile(
		`\b(are|r) (you|u) (an? )?(ai|bot|robot|machine|program|real|human|person)\b|\bwhat (are|r) (you|u)\b`)
)

// focusTerms are the emotional anchors the continuity scorer keys on.
var focusTerms = []string{
	"stress", "stressed", "tired", "exhausted", "worried", "worry",
	"anxious", "sad", "angry", "mad", "lonely", "alone", "overwhelmed",
}
