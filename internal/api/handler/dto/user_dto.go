package dto

import (
	"lending-engine/internal/domain/user"
	"time"
)

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type LoginResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"usuario"`
}

type CreateUserRequest struct {
	Name     string  `json:"nombre" validate:"required"`
	Email    string  `json:"email" validate:"required,email"`
	Password string  `json:"password" validate:"required,min=6"`
	Role     string  `json:"rol" validate:"omitempty,oneof=admin cobrador"`
	PhotoURL *string `json:"foto_url"`
}

func (r *CreateUserRequest) ToInput() user.RegisterInput {
	return user.RegisterInput{
		Name:     r.Name,
		Email:    r.Email,
		Password: r.Password,
		Role:     user.Role(r.Role),
		PhotoURL: r.PhotoURL,
	}
}

type UpdateUserRequest struct {
	Name     *string `json:"nombre" validate:"omitempty,min=1"`
	Email    *string `json:"email" validate:"omitempty,email"`
	Password *string `json:"password" validate:"omitempty,min=6"`
	Role     *string `json:"rol" validate:"omitempty,oneof=admin cobrador"`
	Active   *bool   `json:"activo"`
	PhotoURL *string `json:"foto_url"`
}

func (r *UpdateUserRequest) ToInput() user.UpdateInput {
	in := user.UpdateInput{
		Name:     r.Name,
		Email:    r.Email,
		Password: r.Password,
		Active:   r.Active,
		PhotoURL: r.PhotoURL,
	}
	if r.Role != nil {
		role := user.Role(*r.Role)
		in.Role = &role
	}
	return in
}

type UserResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"nombre"`
	Email     string    `json:"email"`
	Role      string    `json:"rol"`
	Active    bool      `json:"activo"`
	PhotoURL  *string   `json:"foto_url,omitempty"`
	CreatedAt time.Time `json:"creado_en"`
	UpdatedAt time.Time `json:"actualizado_en"`
}

func NewUserResponse(u *user.User) UserResponse {
	return UserResponse{
		ID:        formatID(u.ID),
		Name:      u.Name,
		Email:     u.Email,
		Role:      string(u.Role),
		Active:    u.Active,
		PhotoURL:  u.PhotoURL,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

func NewUserListResponse(users []user.User) []UserResponse {
	resp := make([]UserResponse, len(users))
	for i := range users {
		resp[i] = NewUserResponse(&users[i])
	}
	return resp
}

type ProfileResponse struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Role  string `json:"rol"`
}

func NewProfileResponse(a user.Actor) ProfileResponse {
	return ProfileResponse{ID: formatID(a.ID), Email: a.Email, Role: string(a.Role)}
}
