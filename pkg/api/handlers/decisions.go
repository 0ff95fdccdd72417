package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/novachat/nova/pkg/api/response"
	"github.com/novachat/nova/pkg/decision"
	"github.com/novachat/nova/pkg/logger"
)

// DecisionHandler exposes the decision telemetry log.
type DecisionHandler struct {
	recorder *decision.Recorder
	logger   logger.Logger
}

// NewDecisionHandler creates a decision handler.
func NewDecisionHandler(recorder *decision.Recorder, log logger.Logger) *DecisionHandler {
	return &DecisionHandler{recorder: recorder, logger: log}
}

// DecisionListResponse is the decisions list body.
type DecisionListResponse struct {
	UserID    string            `json:"userKey"`
	Count     int               `json:"count"`
	Decisions []decision.Record `json:"decisions"`
}

// List handles GET /api/v1/decisions/{userID}. Records come back oldest
// first; ?limit= bounds the tail returned.
func (h *DecisionHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := chi.URLParam(r, "userID")
	if userID == "" {
		response.Error(w, http.StatusBadRequest, response.ErrCodeBadRequest, "user id is required", getRequestID(ctx))
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			response.Error(w, http.StatusBadRequest, response.ErrCodeBadRequest, "limit must be a non-negative integer", getRequestID(ctx))
			return
		}
		limit = n
	}

	records := h.recorder.Recent(userID, limit)
	if records == nil {
		records = []decision.Record{}
	}
	response.JSON(w, http.StatusOK, DecisionListResponse{
		UserID:    userID,
		Count:     len(records),
		Decisions: records,
	})
}

// Clear handles DELETE /api/v1/decisions/{userID}. Only the named user's
// records are dropped.
func (h *DecisionHandler) Clear(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := chi.URLParam(r, "userID")
	if userID == "" {
		response.Error(w, http.StatusBadRequest, response.ErrCodeBadRequest, "user id is required", getRequestID(ctx))
		return
	}

	h.recorder.Clear(ctx, userID)
	h.logger.InfoContext(ctx, "decision log cleared", "user_id", userID)
	response.JSON(w, http.StatusOK, map[string]string{"status": "cleared"})
}
