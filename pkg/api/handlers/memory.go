package handlers

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/novachat/nova/pkg/api/response"
	"github.com/novachat/nova/pkg/logger"
	"github.com/novachat/nova/pkg/store"
)

// MemoryHandler handles the memories CRUD endpoints.
type MemoryHandler struct {
	store  store.Store
	logger logger.Logger
}

// NewMemoryHandler creates a memory handler.
func NewMemoryHandler(st store.Store, log logger.Logger) *MemoryHandler {
	return &MemoryHandler{store: st, logger: log}
}

// MemoryRequest is the create/update body.
type MemoryRequest struct {
	Content string   `json:"content"`
	Tags    []string `json:"tags,omitempty"`
}

// Create handles POST /api/v1/memories/{userID}.
func (h *MemoryHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := chi.URLParam(r, "userID")
	if userID == "" {
		response.Error(w, http.StatusBadRequest, response.ErrCodeBadRequest, "user id is required", getRequestID(ctx))
		return
	}

	var req MemoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, response.ErrCodeBadRequest, "invalid request body", getRequestID(ctx))
		return
	}
	if strings.TrimSpace(req.Content) == "" {
		response.Error(w, http.StatusBadRequest, response.ErrCodeValidationFailed, "content is required", getRequestID(ctx))
		return
	}

	m := &store.Memory{
		ID:        uuid.NewString(),
		Content:   strings.TrimSpace(req.Content),
		Tags:      req.Tags,
		CreatedAt: time.Now().UTC(),
	}
	if err := h.store.SaveMemory(ctx, userID, m); err != nil {
		h.logger.ErrorContext(ctx, "memory save failed", "error", err, "user_id", userID)
		response.StorageError(w, err, getRequestID(ctx))
		return
	}
	response.JSON(w, http.StatusCreated, m)
}

// List handles GET /api/v1/memories/{userID}.
func (h *MemoryHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := chi.URLParam(r, "userID")
	if userID == "" {
		response.Error(w, http.StatusBadRequest, response.ErrCodeBadRequest, "user id is required", getRequestID(ctx))
		return
	}

	memories, err := h.store.ListMemories(ctx, userID)
	if err != nil {
		h.logger.ErrorContext(ctx, "memory list failed", "error", err, "user_id", userID)
		response.StorageError(w, err, getRequestID(ctx))
		return
	}
	if memories == nil {
		memories = []*store.Memory{}
	}
	response.JSON(w, http.StatusOK, map[string]any{
		"userKey":  userID,
		"count":    len(memories),
		"memories": memories,
	})
}

// Get handles GET /api/v1/memories/{userID}/{memoryID}.
func (h *MemoryHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := chi.URLParam(r, "userID")
	memoryID := chi.URLParam(r, "memoryID")

	m, err := h.store.GetMemory(ctx, userID, memoryID)
	if err != nil {
		response.StorageError(w, err, getRequestID(ctx))
		return
	}
	response.JSON(w, http.StatusOK, m)
}

// Delete handles DELETE /api/v1/memories/{userID}/{memoryID}.
func (h *MemoryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := chi.URLParam(r, "userID")
	memoryID := chi.URLParam(r, "memoryID")

	if err := h.store.DeleteMemory(ctx, userID, memoryID); err != nil {
		response.StorageError(w, err, getRequestID(ctx))
		return
	}
	response.JSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
