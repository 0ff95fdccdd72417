// Package api provides HTTP API server components.
package api

import (
	"github.com/go-chi/chi/v5"

	"github.com/novachat/nova/config"
	"github.com/novachat/nova/pkg/api/handlers"
	"github.com/novachat/nova/pkg/api/middleware"
	"github.com/novachat/nova/pkg/logger"
)

// Handlers holds all HTTP handlers.
type Handlers struct {
	// Chat handles completion requests through the voice engine.
	Chat *handlers.ChatHandler

	// Decisions serves the decision telemetry log.
	Decisions *handlers.DecisionHandler

	// Stream serves the live decision feed over websocket.
	Stream *handlers.StreamHandler

	// Memory handles stored-memory CRUD.
	Memory *handlers.MemoryHandler

	// Settings handles per-user voice settings.
	Settings *handlers.SettingsHandler

	// Health handles health check endpoints.
	Health *handlers.HealthHandler

	// Metrics is the optional metrics recorder.
	Metrics middleware.MetricsRecorder

	// RateLimiter is the optional per-user limiter for the chat route.
	RateLimiter *middleware.RateLimiter
}

// NewRouter creates a new chi router with middleware and routes.
func NewRouter(cfg *config.Config, log logger.Logger, h *Handlers) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(log))
	r.Use(middleware.Recovery(log))
	r.Use(middleware.Tracing(middleware.DefaultTracingOptions()))

	if h.Metrics != nil {
		r.Use(middleware.Metrics(h.Metrics))
	}

	r.Use(middleware.CORS(&cfg.Server.CORS))

	RegisterRoutes(r, cfg, h)

	return r
}

// RegisterRoutes registers all API routes. The websocket stream route stays
// outside the timeout group: a deadline on the handler would cut long-lived
// connections.
func RegisterRoutes(r chi.Router, cfg *config.Config, h *Handlers) {
	r.Route("/api/v1", func(r chi.Router) {
		if h.Stream != nil {
			r.Get("/decisions/{userID}/stream", h.Stream.ServeHTTP)
		}

		r.Group(func(r chi.Router) {
			r.Use(middleware.Timeout(cfg.Server.HTTP.ReadTimeout))

			if h.Chat != nil {
				r.Route("/chat/{userID}/{conversationID}", func(r chi.Router) {
					if h.RateLimiter != nil {
						r.Use(h.RateLimiter.Handler())
					}
					r.Post("/completions", h.Chat.Completions)
					r.Delete("/", h.Chat.Reset)
				})
			}

			if h.Decisions != nil {
				r.Route("/decisions/{userID}", func(r chi.Router) {
					r.Get("/", h.Decisions.List)
					r.Delete("/", h.Decisions.Clear)
				})
			}

			if h.Memory != nil {
				r.Route("/memories/{userID}", func(r chi.Router) {
					r.Post("/", h.Memory.Create)
					r.Get("/", h.Memory.List)
					r.Get("/{memoryID}", h.Memory.Get)
					r.Delete("/{memoryID}", h.Memory.Delete)
				})
			}

			if h.Settings != nil {
				r.Route("/settings/{userID}", func(r chi.Router) {
					r.Get("/", h.Settings.Get)
					r.Put("/", h.Settings.Put)
				})
			}
		})
	})

	// Health check routes (not versioned)
	if h.Health != nil {
		r.Get("/health", h.Health.Health)
		r.Get("/ready", h.Health.Ready)
		r.Get("/status", h.Health.Status)
	}
}
