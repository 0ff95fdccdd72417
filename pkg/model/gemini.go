package model

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

// GeminiClient calls the Gemini API through the official genai SDK.
type GeminiClient struct {
	client *genai.Client
	model  string
}

// NewGeminiClient creates a caller for the Gemini API.
func NewGeminiClient(ctx context.Context, apiKey, model string) (*GeminiClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini: API key is required")
	}
	if strings.TrimSpace(model) == "" {
		return nil, fmt.Errorf("gemini: model is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: apiKey,
	})
	if err != nil {
		return nil, fmt.Errorf("gemini: create client: %w", err)
	}

	return &GeminiClient{client: client, model: model}, nil
}

// geminiRole maps conversation roles onto the Gemini API role set. Anything
// that is not the assistant speaks as the user.
func geminiRole(role string) genai.Role {
	if role == RoleAssistant {
		return genai.RoleModel
	}
	return genai.RoleUser
}

// Complete performs one generation call.
func (c *GeminiClient) Complete(ctx context.Context, messages []Message, systemPrompt string) (string, error) {
	contents := make([]*genai.Content, 0, len(messages))
	for _, m := range messages {
		contents = append(contents, genai.NewContentFromText(m.Content, geminiRole(m.Role)))
	}

	var cfg *genai.GenerateContentConfig
	if systemPrompt != "" {
		cfg = &genai.GenerateContentConfig{
			SystemInstruction: genai.NewContentFromText(systemPrompt, genai.RoleUser),
		}
	}

	resp, err := c.client.Models.GenerateContent(ctx, c.model, contents, cfg)
	if err != nil {
		return "", fmt.Errorf("gemini: generate content: %w", err)
	}

	text := resp.Text()
	if strings.TrimSpace(text) == "" {
		return "", ErrEmptyCompletion
	}
	return text, nil
}
