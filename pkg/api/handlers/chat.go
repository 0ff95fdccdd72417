// Package handlers provides HTTP request handlers.
package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/novachat/nova/pkg/api/middleware"
	"github.com/novachat/nova/pkg/api/response"
	"github.com/novachat/nova/pkg/decision"
	"github.com/novachat/nova/pkg/logger"
	"github.com/novachat/nova/pkg/model"
	"github.com/novachat/nova/pkg/store"
	"github.com/novachat/nova/pkg/voice"
)

// ChatConfig carries handler-level chat defaults.
type ChatConfig struct {
	SystemPrompt string
	HistoryLimit int
}

// ChatHandler handles the completions endpoint.
type ChatHandler struct {
	engine    *voice.Engine
	store     store.Store
	recorder  *decision.Recorder
	logger    logger.Logger
	validator *validator.Validate
	cfg       ChatConfig
}

// NewChatHandler creates a chat handler.
func NewChatHandler(engine *voice.Engine, st store.Store, recorder *decision.Recorder, log logger.Logger, cfg ChatConfig) *ChatHandler {
	if cfg.HistoryLimit <= 0 {
		cfg.HistoryLimit = 40
	}
	return &ChatHandler{
		engine:    engine,
		store:     st,
		recorder:  recorder,
		logger:    log,
		validator: validator.New(),
		cfg:       cfg,
	}
}

// ChatRequest is the completions request body.
type ChatRequest struct {
	Message string `json:"message" validate:"required"`

	// Mode optionally overrides the user's stored voice mode for this turn.
	Mode string `json:"mode,omitempty"`
}

// ChatResponse is the completions response envelope.
type ChatResponse struct {
	Mock        bool            `json:"mock"`
	VoiceEngine VoiceEngineInfo `json:"voiceEngine"`
	Choices     []Choice        `json:"choices"`
}

// VoiceEngineInfo reports how the gate pipeline resolved the turn.
type VoiceEngineInfo struct {
	ShortCircuited bool   `json:"shortCircuited"`
	Rewritten      bool   `json:"rewritten"`
	Mode           string `json:"mode"`
}

// Choice is one response choice in the envelope.
type Choice struct {
	Message ChoiceMessage `json:"message"`
}

// ChoiceMessage is the assistant message inside a choice.
type ChoiceMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Completions handles POST /api/v1/chat/{userID}/{conversationID}/completions.
func (h *ChatHandler) Completions(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := chi.URLParam(r, "userID")
	conversationID := chi.URLParam(r, "conversationID")
	if userID == "" || conversationID == "" {
		response.Error(w, http.StatusBadRequest, response.ErrCodeBadRequest, "user and conversation ids are required", getRequestID(ctx))
		return
	}

	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.WarnContext(ctx, "failed to decode chat request", "error", err)
		response.Error(w, http.StatusBadRequest, response.ErrCodeBadRequest, "invalid request body", getRequestID(ctx))
		return
	}
	if err := h.validator.Struct(&req); err != nil {
		response.Error(w, http.StatusBadRequest, response.ErrCodeValidationFailed, err.Error(), getRequestID(ctx))
		return
	}
	settings := h.loadSettings(ctx, userID)
	mode := voice.ModeQuiet
	if m, err := voice.ParseMode(settings.VoiceMode); err == nil {
		mode = m
	}
	if req.Mode != "" {
		m, err := voice.ParseMode(req.Mode)
		if err != nil {
			response.Error(w, http.StatusBadRequest, response.ErrCodeValidationFailed, err.Error(), getRequestID(ctx))
			return
		}
		mode = m
	}
	systemPrompt := h.cfg.SystemPrompt
	if settings.SystemPrompt != "" {
		systemPrompt = settings.SystemPrompt
	}

	turn := &voice.Turn{
		UserID:                userID,
		ConversationID:        conversationID,
		Messages:              h.loadHistory(ctx, userID, conversationID),
		SystemPrompt:          systemPrompt,
		Mode:                  mode,
		AllowMemoryReferences: settings.AllowMemoryReferences,
	}
	turn.Messages = append(turn.Messages, model.Message{Role: model.RoleUser, Content: req.Message})

	outcome := h.engine.Evaluate(ctx, turn)

	h.persistTurn(ctx, userID, conversationID, req.Message, outcome.Response)
	h.recorder.Append(ctx, decision.FromOutcome(turn, routePattern(r), outcome))

	response.JSON(w, http.StatusOK, ChatResponse{
		Mock: outcome.ShortCircuited,
		VoiceEngine: VoiceEngineInfo{
			ShortCircuited: outcome.ShortCircuited,
			Rewritten:      outcome.Rewritten,
			Mode:           string(mode),
		},
		Choices: []Choice{
			{Message: ChoiceMessage{Role: model.RoleAssistant, Content: outcome.Response}},
		},
	})
}

// Reset handles DELETE /api/v1/chat/{userID}/{conversationID}. It drops the
// conversation's stored history; decision records are untouched.
func (h *ChatHandler) Reset(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := chi.URLParam(r, "userID")
	conversationID := chi.URLParam(r, "conversationID")
	if userID == "" || conversationID == "" {
		response.Error(w, http.StatusBadRequest, response.ErrCodeBadRequest, "user and conversation ids are required", getRequestID(ctx))
		return
	}

	if err := h.store.DeleteConversation(ctx, userID, conversationID); err != nil {
		h.logger.ErrorContext(ctx, "conversation delete failed", "error", err, "user_id", userID)
		response.StorageError(w, err, getRequestID(ctx))
		return
	}
	h.logger.InfoContext(ctx, "conversation reset", "user_id", userID, "conversation_id", conversationID)
	response.JSON(w, http.StatusOK, map[string]string{"status": "reset"})
}

// loadSettings returns the user's settings, falling back to defaults when
// none are stored or the read fails.
func (h *ChatHandler) loadSettings(ctx context.Context, userID string) *store.Settings {
	settings, err := h.store.GetSettings(ctx, userID)
	if err != nil {
		return &store.Settings{VoiceMode: string(voice.ModeQuiet)}
	}
	return settings
}

// loadHistory returns recent conversation history as model messages. A
// failed read degrades to an empty history.
func (h *ChatHandler) loadHistory(ctx context.Context, userID, conversationID string) []model.Message {
	history, err := h.store.GetConversation(ctx, userID, conversationID, h.cfg.HistoryLimit)
	if err != nil {
		h.logger.WarnContext(ctx, "history read failed", "error", err, "user_id", userID)
		return nil
	}
	msgs := make([]model.Message, 0, len(history))
	for _, m := range history {
		msgs = append(msgs, model.Message{Role: m.Role, Content: m.Content})
	}
	return msgs
}

// persistTurn appends the exchanged pair to conversation history,
// best-effort.
func (h *ChatHandler) persistTurn(ctx context.Context, userID, conversationID, userMsg, reply string) {
	now := time.Now().UTC()
	err := h.store.AppendMessages(ctx, userID, conversationID, []store.Message{
		{Role: model.RoleUser, Content: userMsg, At: now},
		{Role: model.RoleAssistant, Content: reply, At: now},
	})
	if err != nil {
		h.logger.WarnContext(ctx, "history write failed", "error", err, "user_id", userID)
	}
}

// routePattern returns the matched chi route pattern for telemetry.
func routePattern(r *http.Request) string {
	if rc := chi.RouteContext(r.Context()); rc != nil {
		if pattern := rc.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return r.URL.Path
}

// getRequestID extracts the request ID from context.
func getRequestID(ctx context.Context) string {
	if id := middleware.GetRequestID(ctx); id != "" {
		return id
	}
	return "unknown"
}
