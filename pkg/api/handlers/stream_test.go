package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/novachat/nova/pkg/decision"
	"github.com/novachat/nova/pkg/eventbus"
)

func newStreamServer(t *testing.T, cfg StreamConfig) (*httptest.Server, *eventbus.MemoryBus) {
	t.Helper()

	bus := eventbus.NewMemoryBus()
	h := NewStreamHandler(testLogger(), bus, cfg)

	r := chi.NewRouter()
	r.Get("/api/v1/decisions/{userID}/stream", h.ServeHTTP)

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv, bus
}

func dialStream(t *testing.T, srv *httptest.Server, userID string) *websocket.Conn {
	t.Helper()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/v1/decisions/" + userID + "/stream"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestStreamHandler_DeliversDecisions(t *testing.T) {
	srv, bus := newStreamServer(t, StreamConfig{})
	conn := dialStream(t, srv, "u1")

	rec := decision.Record{ID: "r1", UserID: "u1", Stage: "greeting", ShortCircuited: true}
	payload, err := json.Marshal(rec)
	require.NoError(t, err)

	// subscription is created during the upgrade; give the server a moment
	require.Eventually(t, func() bool {
		_ = bus.Publish(context.Background(), eventbus.DecisionSubject("u1"), payload)
		_ = conn.SetReadDeadline(time.Now().Add(100 * time.Millisecond))
		_, msg, err := conn.ReadMessage()
		if err != nil {
			return false
		}
		var got decision.Record
		return json.Unmarshal(msg, &got) == nil && got.ID == "r1"
	}, 2*time.Second, 50*time.Millisecond)
}

func TestStreamHandler_ScopedToUser(t *testing.T) {
	srv, bus := newStreamServer(t, StreamConfig{})
	conn := dialStream(t, srv, "u1")

	time.Sleep(50 * time.Millisecond)
	require.NoError(t, bus.Publish(context.Background(), eventbus.DecisionSubject("u2"), []byte(`{"id":"other"}`)))

	_ = conn.SetReadDeadline(time.Now().Add(200 * time.Millisecond))
	_, _, err := conn.ReadMessage()
	require.Error(t, err)
}

func TestStreamHandler_RequiresUpgrade(t *testing.T) {
	srv, _ := newStreamServer(t, StreamConfig{})

	resp, err := http.Get(srv.URL + "/api/v1/decisions/u1/stream")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestStreamHandler_ConnectionLimit(t *testing.T) {
	srv, _ := newStreamServer(t, StreamConfig{MaxConnections: 1})
	dialStream(t, srv, "u1")

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/v1/decisions/u2/stream"
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}
