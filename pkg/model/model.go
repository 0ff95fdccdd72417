// Package model defines the external language-model collaborator and its
// provider implementations.
package model

import (
	"context"
	"errors"
)

// Role values for chat messages.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one turn of conversation history sent to the model.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ErrEmptyCompletion indicates the provider returned no usable text.
var ErrEmptyCompletion = errors.New("model returned an empty completion")

// Caller performs a single completion against an external language model.
// Implementations must honor context cancellation and deadlines; callers
// treat any error, including timeout, as a recoverable provider failure.
type Caller interface {
	Complete(ctx context.Context, messages []Message, systemPrompt string) (string, error)
}

// CallerFunc adapts a function to the Caller interface.
type CallerFunc func(ctx context.Context, messages []Message, systemPrompt string) (string, error)

// Complete implements Caller.
func (f CallerFunc) Complete(ctx context.Context, messages []Message, systemPrompt string) (string, error) {
	return f(ctx, messages, systemPrompt)
}
