package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/novachat/nova/pkg/store"
	storememory "github.com/novachat/nova/pkg/store/memory"
)

func newMemoryRouter(t *testing.T) chi.Router {
	t.Helper()

	st := storememory.NewMemoryStore()
	t.Cleanup(func() { st.Close() })

	h := NewMemoryHandler(st, testLogger())
	r := chi.NewRouter()
	r.Route("/api/v1/memories/{userID}", func(r chi.Router) {
		r.Post("/", h.Create)
		r.Get("/", h.List)
		r.Get("/{memoryID}", h.Get)
		r.Delete("/{memoryID}", h.Delete)
	})
	return r
}

func createMemory(t *testing.T, r chi.Router, userID, content string) store.Memory {
	t.Helper()

	body, _ := json.Marshal(MemoryRequest{Content: content, Tags: []string{"note"}})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/memories/"+userID, bytes.NewReader(body))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusCreated, w.Code)

	var m store.Memory
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &m))
	return m
}

func TestMemoryHandler_CreateAndGet(t *testing.T) {
	r := newMemoryRouter(t)

	created := createMemory(t, r, "u1", "deadline stress at work")
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "deadline stress at work", created.Content)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/memories/u1/"+created.ID, nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var got store.Memory
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, created.ID, got.ID)
}

func TestMemoryHandler_CreateRejectsBlankContent(t *testing.T) {
	r := newMemoryRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/memories/u1", bytes.NewBufferString(`{"content":"   "}`))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestMemoryHandler_List(t *testing.T) {
	r := newMemoryRouter(t)
	createMemory(t, r, "u1", "first")
	createMemory(t, r, "u1", "second")
	createMemory(t, r, "u2", "other user")

	req := httptest.NewRequest(http.MethodGet, "/api/v1/memories/u1", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		UserKey  string         `json:"userKey"`
		Count    int            `json:"count"`
		Memories []store.Memory `json:"memories"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "u1", resp.UserKey)
	assert.Equal(t, 2, resp.Count)
}

func TestMemoryHandler_GetNotFound(t *testing.T) {
	r := newMemoryRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/memories/u1/missing", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestMemoryHandler_Delete(t *testing.T) {
	r := newMemoryRouter(t)
	created := createMemory(t, r, "u1", "to be deleted")

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/memories/u1/"+created.ID, nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	req = httptest.NewRequest(http.MethodGet, "/api/v1/memories/u1/"+created.ID, nil)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
