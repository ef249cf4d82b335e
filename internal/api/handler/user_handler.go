package handler

import (
	"lending-engine/internal/api/handler/dto"
	"lending-engine/internal/domain/user"
	"log/slog"
	"net/http"
)

type UserHandler struct {
	service user.UserService
	logger  *slog.Logger
}

func NewUserHandler(s user.UserService, l *slog.Logger) *UserHandler {
	return &UserHandler{
		service: s,
		logger:  l.With("component", "UserHandler"),
	}
}

// ListCollectors lists active collectors.
//
// @Summary List active collectors
// @Tags Users
// @Produce json
// @Success 200 {array} dto.UserResponse
// @Router /users/collectors [get]
// @Security BearerAuth
func (h *UserHandler) ListCollectors(w http.ResponseWriter, r *http.Request) {
	users, err := h.service.ListCollectors(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, dto.NewUserListResponse(users))
}

// ListUsers lists every user.
//
// @Summary List users
// @Tags Users
// @Produce json
// @Success 200 {array} dto.UserResponse
// @Failure 403 {object} dto.ErrorResponse
// @Router /users [get]
// @Security BearerAuth
func (h *UserHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.service.ListUsers(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, dto.NewUserListResponse(users))
}

// CreateUser registers a new user.
//
// @Summary Register a user
// @Description Creates an admin or cobrador account. The role defaults to cobrador.
// @Tags Users
// @Accept json
// @Produce json
// @Param request body dto.CreateUserRequest true "New user"
// @Success 201 {object} dto.UserResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse "Email already registered"
// @Router /users [post]
// @Security BearerAuth
func (h *UserHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateUserRequest
	if err := decodeAndValidate(r, &req); err != nil {
		respondError(w, err)
		return
	}

	created, err := h.service.Register(r.Context(), req.ToInput())
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, dto.NewUserResponse(created))
}

// GetUser
//
// @Summary Get a user
// @Tags Users
// @Produce json
// @Param userID path int true "User ID"
// @Success 200 {object} dto.UserResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /users/{userID} [get]
// @Security BearerAuth
func (h *UserHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	userID, err := parseIDParam(r, "userID")
	if err != nil {
		respondError(w, err)
		return
	}

	u, err := h.service.GetUser(r.Context(), userID)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, dto.NewUserResponse(u))
}

// UpdateUser applies a partial update. A non-empty password is rehashed.
//
// @Summary Update a user
// @Tags Users
// @Accept json
// @Produce json
// @Param userID path int true "User ID"
// @Param request body dto.UpdateUserRequest true "Fields to change"
// @Success 200 {object} dto.UserResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /users/{userID} [put]
// @Security BearerAuth
func (h *UserHandler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	userID, err := parseIDParam(r, "userID")
	if err != nil {
		respondError(w, err)
		return
	}

	var req dto.UpdateUserRequest
	if err := decodeAndValidate(r, &req); err != nil {
		respondError(w, err)
		return
	}

	updated, err := h.service.UpdateUser(r.Context(), userID, req.ToInput())
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, dto.NewUserResponse(updated))
}

// DeleteUser
//
// @Summary Delete a user
// @Description Users cannot delete their own account.
// @Tags Users
// @Param userID path int true "User ID"
// @Success 204
// @Failure 404 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse
// @Router /users/{userID} [delete]
// @Security BearerAuth
func (h *UserHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	userID, err := parseIDParam(r, "userID")
	if err != nil {
		respondError(w, err)
		return
	}
	actor, err := actorFrom(r)
	if err != nil {
		respondError(w, err)
		return
	}

	if err := h.service.DeleteUser(r.Context(), userID, actor); err != nil {
		respondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
