package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/novachat/nova/pkg/decision"
)

func newDecisionRouter(t *testing.T) (chi.Router, *decision.Recorder) {
	t.Helper()

	recorder := decision.NewRecorder(decision.WithLogger(testLogger()))
	t.Cleanup(func() { recorder.Close() })

	h := NewDecisionHandler(recorder, testLogger())
	r := chi.NewRouter()
	r.Route("/api/v1/decisions/{userID}", func(r chi.Router) {
		r.Get("/", h.List)
		r.Delete("/", h.Clear)
	})
	return r, recorder
}

func seedDecisions(t *testing.T, recorder *decision.Recorder, userID string, stages ...string) {
	t.Helper()
	for _, stage := range stages {
		recorder.Append(context.Background(), decision.Record{
			UserID:         userID,
			ConversationID: "c1",
			Route:          "/api/v1/chat/{userID}/{conversationID}/completions",
			Mode:           "quiet",
			Stage:          stage,
			ShortCircuited: stage != "model_call",
		})
	}
}

func TestDecisionHandler_List(t *testing.T) {
	r, recorder := newDecisionRouter(t)
	seedDecisions(t, recorder, "u1", "greeting", "model_call", "ellipsis")

	req := httptest.NewRequest(http.MethodGet, "/api/v1/decisions/u1", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var resp DecisionListResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "u1", resp.UserID)
	assert.Equal(t, 3, resp.Count)
	require.Len(t, resp.Decisions, 3)
	assert.Equal(t, "greeting", resp.Decisions[0].Stage)
	assert.Equal(t, "ellipsis", resp.Decisions[2].Stage)
}

func TestDecisionHandler_ListLimit(t *testing.T) {
	r, recorder := newDecisionRouter(t)
	seedDecisions(t, recorder, "u1", "greeting", "model_call", "ellipsis")

	req := httptest.NewRequest(http.MethodGet, "/api/v1/decisions/u1?limit=2", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var resp DecisionListResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Decisions, 2)
	assert.Equal(t, "model_call", resp.Decisions[0].Stage)
}

func TestDecisionHandler_ListEmpty(t *testing.T) {
	r, _ := newDecisionRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/decisions/nobody", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var resp DecisionListResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 0, resp.Count)
	assert.NotNil(t, resp.Decisions)
}

func TestDecisionHandler_ListBadLimit(t *testing.T) {
	r, _ := newDecisionRouter(t)

	for _, raw := range []string{"abc", "-1"} {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/decisions/u1?limit="+raw, nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	}
}

func TestDecisionHandler_ClearIsPerUser(t *testing.T) {
	r, recorder := newDecisionRouter(t)
	seedDecisions(t, recorder, "u1", "greeting")
	seedDecisions(t, recorder, "u2", "model_call")

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/decisions/u1", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, recorder.Recent("u1", 0))
	assert.Len(t, recorder.Recent("u2", 0), 1)
}
