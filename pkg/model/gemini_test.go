package model

import (
	"context"
	"testing"

	"google.golang.org/genai"
)

func TestGeminiRoleMapping(t *testing.T) {
	cases := []struct {
		role string
		want genai.Role
	}{
		{RoleUser, genai.RoleUser},
		{RoleAssistant, genai.RoleModel},
		{RoleSystem, genai.RoleUser},
		{"", genai.RoleUser},
	}
	for _, tc := range cases {
		if got := geminiRole(tc.role); got != tc.want {
			t.Errorf("geminiRole(%q) = %q, want %q", tc.role, got, tc.want)
		}
	}
}

func TestNewGeminiClientValidation(t *testing.T) {
	ctx := context.Background()
	if _, err := NewGeminiClient(ctx, "", "gemini-2.0-flash"); err == nil {
		t.Error("empty API key should be rejected")
	}
	if _, err := NewGeminiClient(ctx, "k", " "); err == nil {
		t.Error("empty model should be rejected")
	}
}
