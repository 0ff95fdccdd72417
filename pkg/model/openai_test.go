package model

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestOpenAIClientComplete(t *testing.T) {
	var gotReq chatCompletionRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("path = %s, want /chat/completions", r.URL.Path)
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer test-key" {
			t.Errorf("Authorization = %q", auth)
		}
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"role": "assistant", "content": "Here with you."}},
			},
		})
	}))
	defer srv.Close()

	c, err := NewOpenAIClient(srv.URL, "test-key", "test-model")
	if err != nil {
		t.Fatalf("NewOpenAIClient() error = %v", err)
	}

	got, err := c.Complete(context.Background(), []Message{
		{Role: RoleUser, Content: "hey"},
	}, "be brief")
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if got != "Here with you." {
		t.Errorf("Complete() = %q", got)
	}

	if len(gotReq.Messages) != 2 {
		t.Fatalf("sent %d messages, want 2", len(gotReq.Messages))
	}
	if gotReq.Messages[0].Role != RoleSystem || gotReq.Messages[0].Content != "be brief" {
		t.Errorf("system message = %+v", gotReq.Messages[0])
	}
}

func TestOpenAIClientErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]any{"message": "rate limited", "type": "requests"},
		})
	}))
	defer srv.Close()

	c, _ := NewOpenAIClient(srv.URL, "", "test-model")
	if _, err := c.Complete(context.Background(), nil, ""); err == nil {
		t.Error("Complete() should fail on non-200 status")
	}
}

func TestOpenAIClientEmptyChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"choices": []any{}})
	}))
	defer srv.Close()

	c, _ := NewOpenAIClient(srv.URL, "", "test-model")
	if _, err := c.Complete(context.Background(), nil, ""); err == nil {
		t.Error("Complete() should fail on empty choices")
	}
}

func TestOpenAIClientHonorsContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	c, _ := NewOpenAIClient(srv.URL, "", "test-model")
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	if _, err := c.Complete(ctx, nil, ""); err == nil {
		t.Error("Complete() should fail when the context deadline passes")
	}
}

func TestNewOpenAIClientValidation(t *testing.T) {
	if _, err := NewOpenAIClient("", "k", "m"); err == nil {
		t.Error("empty base URL should be rejected")
	}
	if _, err := NewOpenAIClient("http://localhost", "k", " "); err == nil {
		t.Error("empty model should be rejected")
	}
}
