package model

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// OpenAIClient calls an OpenAI-compatible chat completions endpoint over
// plain HTTP. It works against api.openai.com and any drop-in server
// (llama.cpp, vLLM, LM Studio) exposing the same route.
type OpenAIClient struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	model      string
}

// OpenAIOption configures an OpenAIClient.
type OpenAIOption func(*OpenAIClient)

// WithHTTPClient overrides the HTTP client, mainly for tests.
func WithHTTPClient(c *http.Client) OpenAIOption {
	return func(o *OpenAIClient) {
		o.httpClient = c
	}
}

// NewOpenAIClient creates a caller for an OpenAI-compatible endpoint.
func NewOpenAIClient(baseURL, apiKey, model string, opts ...OpenAIOption) (*OpenAIClient, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, fmt.Errorf("openai: base URL is required")
	}
	if strings.TrimSpace(model) == "" {
		return nil, fmt.Errorf("openai: model is required")
	}

	c := &OpenAIClient{
		httpClient: http.DefaultClient,
		baseURL:    baseURL,
		apiKey:     apiKey,
		model:      model,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

type chatCompletionRequest struct {
	Model    string    `json:"model"`
	Messages []Message `json:"messages"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

// Complete performs one chat completion call.
func (c *OpenAIClient) Complete(ctx context.Context, messages []Message, systemPrompt string) (string, error) {
	payload := chatCompletionRequest{
		Model:    c.model,
		Messages: make([]Message, 0, len(messages)+1),
	}
	if systemPrompt != "" {
		payload.Messages = append(payload.Messages, Message{Role: RoleSystem, Content: systemPrompt})
	}
	payload.Messages = append(payload.Messages, messages...)

	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("openai: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("openai: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("openai: completion call: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("openai: read response: %w", err)
	}

	var parsed chatCompletionResponse
	if err := json.Unmarshal(data, &parsed); err != nil {
		return "", fmt.Errorf("openai: decode response (status %d): %w", resp.StatusCode, err)
	}

	if resp.StatusCode != http.StatusOK {
		msg := "unexpected status"
		if parsed.Error != nil && parsed.Error.Message != "" {
			msg = parsed.Error.Message
		}
		return "", fmt.Errorf("openai: status %d: %s", resp.StatusCode, msg)
	}

	if len(parsed.Choices) == 0 || strings.TrimSpace(parsed.Choices[0].Message.Content) == "" {
		return "", ErrEmptyCompletion
	}
	return parsed.Choices[0].Message.Content, nil
}
