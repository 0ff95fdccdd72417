package voice

import (
	"strings"
	"testing"
)

func TestSanitizeRemovesPhrase(t *testing.T) {
	got := Sanitize("That's rough. Tell me how that makes you feel.", "tell me how that makes you feel")
	if got != "That's rough." {
		t.Errorf("Sanitize() = %q", got)
	}
}

func TestSanitizeAbsorbsOwnSentenceTerminator(t *testing.T) {
	tests := []struct {
		text   string
		phrase string
		want   string
	}{
		{
			text:   "That's rough. Tell me how that makes you feel.",
			phrase: "tell me how that makes you feel",
			want:   "That's rough.",
		},
		{
			text:   "That's rough. Tell me how that makes you feel. Rest up.",
			phrase: "tell me how that makes you feel",
			want:   "That's rough. Rest up.",
		},
		{
			text:   "Hard day! Thank you for sharing. I'm around.",
			phrase: "thank you for sharing",
			want:   "Hard day! I'm around.",
		},
	}
	for _, tt := range tests {
		if got := Sanitize(tt.text, tt.phrase); got != tt.want {
			t.Errorf("Sanitize(%q) = %q, want %q", tt.text, got, tt.want)
		}
	}
}

func TestSanitizeCaseInsensitive(t *testing.T) {
	got := Sanitize("Thank You For Sharing that with me.", "thank you for sharing")
	if got == "Thank You For Sharing that with me." {
		t.Error("Sanitize() should remove the phrase regardless of case")
	}
}

func TestSanitizeIdempotent(t *testing.T) {
	inputs := []struct {
		text   string
		phrase string
	}{
		{"Tell me how that makes you feel. I mean it.", "tell me how that makes you feel"},
		{"A clean sentence with no banned content.", "thank you for sharing"},
		{"  thank you for sharing  ", "thank you for sharing"},
	}
	for _, in := range inputs {
		once := Sanitize(in.text, in.phrase)
		twice := Sanitize(once, in.phrase)
		if once != twice {
			t.Errorf("Sanitize not idempotent for %q: %q != %q", in.text, once, twice)
		}
	}
}

func TestSanitizeCleanTextUnchanged(t *testing.T) {
	text := "Nothing wrong here.\nTwo lines even."
	if got := Sanitize(text, "thank you for sharing"); got != text {
		t.Errorf("Sanitize() altered clean text: %q", got)
	}
}

func TestSanitizeEmptyResultFallsBack(t *testing.T) {
	got := Sanitize("Thank you for sharing.", "thank you for sharing")
	if got != "I'm here." {
		t.Errorf("Sanitize() = %q, want fallback presence line", got)
	}
}

func TestSanitizeRepairsPunctuation(t *testing.T) {
	got := Sanitize("I see it, thank you for sharing, and it matters.", "thank you for sharing")
	for _, bad := range []string{" ,", "  "} {
		if strings.Contains(got, bad) {
			t.Errorf("Sanitize() left %q in %q", bad, got)
		}
	}
}

func TestFindBannedPhrase(t *testing.T) {
	tests := []struct {
		name     string
		response string
		last     string
		want     string
		found    bool
	}{
		{
			name:     "counselor phrase",
			response: "Tell me how that makes you feel.",
			last:     "work was awful",
			want:     "tell me how that makes you feel",
			found:    true,
		},
		{
			name:     "conditional phrase without nature question",
			response: "As an AI, I don't sleep.",
			last:     "did you sleep well",
			want:     "as an ai",
			found:    true,
		},
		{
			name:     "conditional phrase allowed on nature question",
			response: "As an AI, I don't sleep.",
			last:     "are you an ai?",
			found:    false,
		},
		{
			name:     "clean response",
			response: "Rough day. I'm around.",
			last:     "long day",
			found:    false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, found := findBannedPhrase(tt.response, tt.last)
			if found != tt.found {
				t.Fatalf("found = %v, want %v", found, tt.found)
			}
			if found && got != tt.want {
				t.Errorf("phrase = %q, want %q", got, tt.want)
			}
		})
	}
}
