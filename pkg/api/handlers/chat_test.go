package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/novachat/nova/pkg/decision"
	"github.com/novachat/nova/pkg/logger"
	"github.com/novachat/nova/pkg/model"
	"github.com/novachat/nova/pkg/store"
	storememory "github.com/novachat/nova/pkg/store/memory"
	"github.com/novachat/nova/pkg/voice"
	"github.com/novachat/nova/pkg/voice/cooldown"
)

func testLogger() logger.Logger {
	return logger.New(&logger.Config{
		Level:  logger.ErrorLevel,
		Format: "json",
		Output: "stderr",
	})
}

type chatFixture struct {
	router   chi.Router
	store    store.Store
	recorder *decision.Recorder
	calls    *atomic.Int32
}

func newChatFixture(t *testing.T, reply string) *chatFixture {
	t.Helper()

	st := storememory.NewMemoryStore()
	t.Cleanup(func() { st.Close() })

	calls := &atomic.Int32{}
	caller := model.CallerFunc(func(ctx context.Context, messages []model.Message, systemPrompt string) (string, error) {
		calls.Add(1)
		return reply, nil
	})

	engine := voice.NewEngine(cooldown.NewMemoryStore(), store.NewMemoryReader(st), caller)
	recorder := decision.NewRecorder(decision.WithLogger(testLogger()))
	t.Cleanup(func() { recorder.Close() })

	h := NewChatHandler(engine, st, recorder, testLogger(), ChatConfig{SystemPrompt: "You are Nova."})

	r := chi.NewRouter()
	r.Post("/api/v1/chat/{userID}/{conversationID}/completions", h.Completions)
	r.Delete("/api/v1/chat/{userID}/{conversationID}", h.Reset)

	return &chatFixture{router: r, store: st, recorder: recorder, calls: calls}
}

func (f *chatFixture) post(t *testing.T, body string) (*httptest.ResponseRecorder, ChatResponse) {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/chat/u1/c1/completions", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)

	var resp ChatResponse
	if w.Code == http.StatusOK {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	}
	return w, resp
}

func TestChatHandler_ShortCircuit(t *testing.T) {
	f := newChatFixture(t, "should not be called")

	w, resp := f.post(t, `{"message":"hey"}`)

	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, resp.Mock)
	assert.True(t, resp.VoiceEngine.ShortCircuited)
	assert.Equal(t, "quiet", resp.VoiceEngine.Mode)
	require.Len(t, resp.Choices, 1)
	assert.Equal(t, model.RoleAssistant, resp.Choices[0].Message.Role)
	assert.NotEmpty(t, resp.Choices[0].Message.Content)
	assert.Equal(t, int32(0), f.calls.Load())
}

func TestChatHandler_ModelPath(t *testing.T) {
	f := newChatFixture(t, "That sounds like a lovely plan.")

	w, resp := f.post(t, `{"message":"tomorrow I visit the botanical garden with my sister"}`)

	require.Equal(t, http.StatusOK, w.Code)
	assert.False(t, resp.Mock)
	assert.False(t, resp.VoiceEngine.ShortCircuited)
	assert.Equal(t, "That sounds like a lovely plan.", resp.Choices[0].Message.Content)
	assert.Equal(t, int32(1), f.calls.Load())
}

func TestChatHandler_RecordsDecisionAndHistory(t *testing.T) {
	f := newChatFixture(t, "Noted.")

	w, _ := f.post(t, `{"message":"hey"}`)
	require.Equal(t, http.StatusOK, w.Code)

	records := f.recorder.Recent("u1", 0)
	require.Len(t, records, 1)
	assert.Equal(t, "greeting", records[0].Stage)
	assert.True(t, records[0].ShortCircuited)
	assert.Equal(t, "c1", records[0].ConversationID)

	history, err := f.store.GetConversation(context.Background(), "u1", "c1", 0)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, model.RoleUser, history[0].Role)
	assert.Equal(t, "hey", history[0].Content)
	assert.Equal(t, model.RoleAssistant, history[1].Role)
}

func TestChatHandler_ModeFromSettings(t *testing.T) {
	f := newChatFixture(t, "Sure.")

	err := f.store.SaveSettings(context.Background(), "u1", &store.Settings{VoiceMode: "engaged"})
	require.NoError(t, err)

	w, resp := f.post(t, `{"message":"hey"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "engaged", resp.VoiceEngine.Mode)
}

func TestChatHandler_ModeOverride(t *testing.T) {
	f := newChatFixture(t, "Sure.")

	w, resp := f.post(t, `{"message":"hey","mode":"blunt"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "blunt", resp.VoiceEngine.Mode)
}

func TestChatHandler_InvalidMode(t *testing.T) {
	f := newChatFixture(t, "Sure.")

	w, _ := f.post(t, `{"message":"hey","mode":"shouty"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, int32(0), f.calls.Load())
}

func TestChatHandler_MissingMessage(t *testing.T) {
	f := newChatFixture(t, "Sure.")

	w, _ := f.post(t, `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestChatHandler_Reset(t *testing.T) {
	f := newChatFixture(t, "Noted.")

	w, _ := f.post(t, `{"message":"hey"}`)
	require.Equal(t, http.StatusOK, w.Code)

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/chat/u1/c1", nil)
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	history, err := f.store.GetConversation(context.Background(), "u1", "c1", 0)
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestChatHandler_MalformedBody(t *testing.T) {
	f := newChatFixture(t, "Sure.")

	w, _ := f.post(t, `{not json`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
