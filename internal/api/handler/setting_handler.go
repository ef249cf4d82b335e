package handler

import (
	"lending-engine/internal/api/handler/dto"
	"lending-engine/internal/domain/setting"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
)

type SettingHandler struct {
	service setting.SettingService
	logger  *slog.Logger
}

func NewSettingHandler(s setting.SettingService, l *slog.Logger) *SettingHandler {
	return &SettingHandler{
		service: s,
		logger:  l.With("component", "SettingHandler"),
	}
}

// ListSettings returns every company setting. The login screen reads these before anyone signs in.
//
// @Summary List settings
// @Tags Settings
// @Produce json
// @Success 200 {array} dto.SettingResponse
// @Router /settings [get]
func (h *SettingHandler) ListSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := h.service.ListSettings(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, dto.NewSettingListResponse(settings))
}

// GetSetting
//
// @Summary Get a setting
// @Tags Settings
// @Produce json
// @Param key path string true "Setting key"
// @Success 200 {object} dto.SettingResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /settings/{key} [get]
func (h *SettingHandler) GetSetting(w http.ResponseWriter, r *http.Request) {
	s, err := h.service.GetSetting(r.Context(), chi.URLParam(r, "key"))
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, dto.NewSettingResponse(s))
}

// UpdateSetting sets a value, creating the key when it does not exist yet.
//
// @Summary Create or replace a setting
// @Tags Settings
// @Accept json
// @Produce json
// @Param key path string true "Setting key"
// @Param request body dto.UpdateSettingRequest true "New value"
// @Success 200 {object} dto.SettingResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 403 {object} dto.ErrorResponse
// @Router /settings/{key} [put]
// @Security BearerAuth
func (h *SettingHandler) UpdateSetting(w http.ResponseWriter, r *http.Request) {
	var req dto.UpdateSettingRequest
	if err := decodeAndValidate(r, &req); err != nil {
		respondError(w, err)
		return
	}

	s, err := h.service.UpdateSetting(r.Context(), chi.URLParam(r, "key"), req.Value)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, dto.NewSettingResponse(s))
}
