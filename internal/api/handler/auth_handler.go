package handler

import (
	"lending-engine/internal/api/handler/dto"
	"lending-engine/internal/domain/user"
	"log/slog"
	"net/http"
)

type AuthHandler struct {
	service user.UserService
	logger  *slog.Logger
}

func NewAuthHandler(s user.UserService, l *slog.Logger) *AuthHandler {
	return &AuthHandler{
		service: s,
		logger:  l.With("component", "AuthHandler"),
	}
}

// Login exchanges credentials for a signed JWT.
//
// @Summary Log in
// @Description Validates email and password and returns a bearer token with the user profile.
// @Tags Authentication
// @Accept json
// @Produce json
// @Param request body dto.LoginRequest true "Credentials"
// @Success 200 {object} dto.LoginResponse
// @Failure 400 {object} dto.ErrorResponse "Invalid request payload"
// @Failure 401 {object} dto.ErrorResponse "Invalid credentials"
// @Router /auth/login [post]
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if err := decodeAndValidate(r, &req); err != nil {
		respondError(w, err)
		return
	}

	token, u, err := h.service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, dto.LoginResponse{Token: token, User: dto.NewUserResponse(u)})
}

// Profile returns the identity carried by the caller's token.
//
// @Summary Current user profile
// @Tags Authentication
// @Produce json
// @Success 200 {object} dto.ProfileResponse
// @Failure 401 {object} dto.ErrorResponse
// @Router /auth/profile [get]
// @Security BearerAuth
func (h *AuthHandler) Profile(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFrom(r)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, dto.NewProfileResponse(actor))
}
