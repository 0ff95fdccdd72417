package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/novachat/nova/pkg/api/response"
	"github.com/novachat/nova/pkg/logger"
	"github.com/novachat/nova/pkg/store"
	"github.com/novachat/nova/pkg/voice"
)

// SettingsHandler handles the per-user settings endpoints.
type SettingsHandler struct {
	store  store.Store
	logger logger.Logger
}

// NewSettingsHandler creates a settings handler.
func NewSettingsHandler(st store.Store, log logger.Logger) *SettingsHandler {
	return &SettingsHandler{store: st, logger: log}
}

// Get handles GET /api/v1/settings/{userID}. Users without stored settings
// get the defaults.
func (h *SettingsHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := chi.URLParam(r, "userID")
	if userID == "" {
		response.Error(w, http.StatusBadRequest, response.ErrCodeBadRequest, "user id is required", getRequestID(ctx))
		return
	}

	settings, err := h.store.GetSettings(ctx, userID)
	if err != nil {
		var nf *store.NotFoundError
		if errors.As(err, &nf) {
			response.JSON(w, http.StatusOK, &store.Settings{VoiceMode: string(voice.ModeQuiet)})
			return
		}
		h.logger.ErrorContext(ctx, "settings read failed", "error", err, "user_id", userID)
		response.StorageError(w, err, getRequestID(ctx))
		return
	}
	response.JSON(w, http.StatusOK, settings)
}

// Put handles PUT /api/v1/settings/{userID}.
func (h *SettingsHandler) Put(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := chi.URLParam(r, "userID")
	if userID == "" {
		response.Error(w, http.StatusBadRequest, response.ErrCodeBadRequest, "user id is required", getRequestID(ctx))
		return
	}

	var settings store.Settings
	if err := json.NewDecoder(r.Body).Decode(&settings); err != nil {
		response.Error(w, http.StatusBadRequest, response.ErrCodeBadRequest, "invalid request body", getRequestID(ctx))
		return
	}
	if _, err := voice.ParseMode(settings.VoiceMode); err != nil {
		response.Error(w, http.StatusBadRequest, response.ErrCodeValidationFailed, err.Error(), getRequestID(ctx))
		return
	}

	if err := h.store.SaveSettings(ctx, userID, &settings); err != nil {
		h.logger.ErrorContext(ctx, "settings write failed", "error", err, "user_id", userID)
		response.StorageError(w, err, getRequestID(ctx))
		return
	}
	response.JSON(w, http.StatusOK, &settings)
}
