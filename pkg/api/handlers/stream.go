package handlers

import (
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/novachat/nova/pkg/eventbus"
	"github.com/novachat/nova/pkg/logger"
)

const (
	defaultStreamMaxConnections = 100
	defaultStreamPingInterval   = 30 * time.Second
	defaultStreamPongTimeout    = 10 * time.Second
	defaultStreamWriteTimeout   = 10 * time.Second
	streamSubscribeBuffer       = 32
)

// StreamConfig configures the decision stream handler.
type StreamConfig struct {
	AllowedOrigins []string
	MaxConnections int
	PingInterval   time.Duration
	PongTimeout    time.Duration
}

// StreamHandler serves the live decision feed over websocket. Each
// connection subscribes to one user's decision subject on the event bus.
type StreamHandler struct {
	log          logger.Logger
	bus          *eventbus.MemoryBus
	upgrader     websocket.Upgrader
	pingInterval time.Duration
	pongTimeout  time.Duration
	writeTimeout time.Duration

	mu             sync.Mutex
	connections    int
	maxConnections int
}

// NewStreamHandler creates a stream handler.
func NewStreamHandler(log logger.Logger, bus *eventbus.MemoryBus, cfg StreamConfig) *StreamHandler {
	if cfg.MaxConnections <= 0 {
		cfg.MaxConnections = defaultStreamMaxConnections
	}
	if cfg.PingInterval <= 0 {
		cfg.PingInterval = defaultStreamPingInterval
	}
	if cfg.PongTimeout <= 0 {
		cfg.PongTimeout = defaultStreamPongTimeout
	}

	h := &StreamHandler{
		log:            log,
		bus:            bus,
		pingInterval:   cfg.PingInterval,
		pongTimeout:    cfg.PongTimeout,
		writeTimeout:   defaultStreamWriteTimeout,
		maxConnections: cfg.MaxConnections,
	}

	allowedOrigins := append([]string(nil), cfg.AllowedOrigins...)
	h.upgrader = websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			return isStreamOriginAllowed(r, allowedOrigins)
		},
	}
	return h
}

// ServeHTTP handles GET /api/v1/decisions/{userID}/stream.
func (h *StreamHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	if userID == "" {
		http.Error(w, "user id is required", http.StatusBadRequest)
		return
	}
	if !websocket.IsWebSocketUpgrade(r) {
		http.Error(w, "websocket upgrade required", http.StatusBadRequest)
		return
	}
	if !h.acquire() {
		http.Error(w, "stream connection limit reached", http.StatusServiceUnavailable)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.release()
		h.log.WarnContext(r.Context(), "stream upgrade failed", "error", err)
		return
	}
	defer h.release()
	defer conn.Close()

	sub, err := h.bus.Subscribe(eventbus.DecisionSubject(userID), streamSubscribeBuffer)
	if err != nil {
		h.log.WarnContext(r.Context(), "stream subscribe failed", "error", err)
		return
	}
	defer sub.Close()

	done := make(chan struct{})
	go h.readPump(conn, done)
	h.writePump(conn, sub, done)
}

// readPump discards client frames and signals when the peer goes away.
func (h *StreamHandler) readPump(conn *websocket.Conn, done chan<- struct{}) {
	defer close(done)

	readDeadline := h.pingInterval + h.pongTimeout
	conn.SetReadLimit(1 << 16)
	_ = conn.SetReadDeadline(time.Now().Add(readDeadline))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(readDeadline))
	})

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

// writePump forwards decision events and keeps the connection alive with
// pings.
func (h *StreamHandler) writePump(conn *websocket.Conn, sub *eventbus.Subscription, done <-chan struct{}) {
	ticker := time.NewTicker(h.pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case msg, ok := <-sub.C():
			if !ok {
				return
			}
			_ = conn.SetWriteDeadline(time.Now().Add(h.writeTimeout))
			if err := conn.WriteMessage(websocket.TextMessage, msg.Payload); err != nil {
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(h.writeTimeout))
			if err := conn.WriteControl(websocket.PingMessage, []byte("ping"), time.Now().Add(h.writeTimeout)); err != nil {
				return
			}
		}
	}
}

func (h *StreamHandler) acquire() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.connections >= h.maxConnections {
		return false
	}
	h.connections++
	return true
}

func (h *StreamHandler) release() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.connections > 0 {
		h.connections--
	}
}

// Count returns the active stream connection count.
func (h *StreamHandler) Count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.connections
}

func isStreamOriginAllowed(r *http.Request, allowed []string) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	if len(allowed) == 0 {
		// same-host only when no allowlist is configured
		u, err := url.Parse(origin)
		if err != nil {
			return false
		}
		return strings.EqualFold(u.Host, r.Host)
	}
	for _, a := range allowed {
		if a == "*" || strings.EqualFold(a, origin) {
			return true
		}
	}
	return false
}
