package dto

import (
	"lending-engine/internal/domain/setting"
	"time"
)

type UpdateSettingRequest struct {
	Value string `json:"valor" validate:"required"`
}

type SettingResponse struct {
	Key       string    `json:"clave"`
	Value     string    `json:"valor"`
	UpdatedAt time.Time `json:"actualizado_en"`
}

func NewSettingResponse(s *setting.Setting) SettingResponse {
	return SettingResponse{Key: s.Key, Value: s.Value, UpdatedAt: s.UpdatedAt}
}

func NewSettingListResponse(settings []setting.Setting) []SettingResponse {
	resp := make([]SettingResponse, len(settings))
	for i := range settings {
		resp[i] = NewSettingResponse(&settings[i])
	}
	return resp
}
