package user

import (
	"fmt"
	"lending-engine/internal/pkg/apperrors"
	"strings"
	"time"
)

type Role string

const (
	RoleAdmin     Role = "admin"
	RoleCollector Role = "cobrador"
)

func ParseRole(s string) (Role, error) {
	switch r := Role(strings.ToLower(strings.TrimSpace(s))); r {
	case RoleAdmin, RoleCollector:
		return r, nil
	default:
		return "", apperrors.NewValidationError("rol", fmt.Sprintf("unknown role %q", s))
	}
}

type User struct {
	ID           int64
	Name         string
	Email        string
	PasswordHash string
	Role         Role
	Active       bool
	PhotoURL     *string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (u *User) IsActiveCollector() bool {
	return u.Active && u.Role == RoleCollector
}

// Actor is the authenticated caller of an operation.
type Actor struct {
	ID    int64
	Email string
	Role  Role
}

func (a Actor) IsAdmin() bool {
	return a.Role == RoleAdmin
}

func (a Actor) IsCollector() bool {
	return a.Role == RoleCollector
}

// UserPatch lists the columns an update may touch. Nil fields are left alone.
type UserPatch struct {
	Name         *string
	Email        *string
	PasswordHash *string
	Role         *Role
	Active       *bool
	PhotoURL     *string
}

func (p UserPatch) IsEmpty() bool {
	return p.Name == nil && p.Email == nil && p.PasswordHash == nil &&
		p.Role == nil && p.Active == nil && p.PhotoURL == nil
}
