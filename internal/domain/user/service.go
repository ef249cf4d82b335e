package user

import (
	"context"
	"errors"
	"fmt"
	"lending-engine/internal/pkg/apperrors"
	"log/slog"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Role     Role
	PhotoURL *string
}

type UpdateInput struct {
	Name     *string
	Email    *string
	Password *string
	Role     *Role
	Active   *bool
	PhotoURL *string
}

type UserService interface {
	Login(ctx context.Context, email, password string) (string, *User, error)

	Register(ctx context.Context, in RegisterInput) (*User, error)

	GetUser(ctx context.Context, userID int64) (*User, error)

	ListUsers(ctx context.Context) ([]User, error)

	ListCollectors(ctx context.Context) ([]User, error)

	UpdateUser(ctx context.Context, userID int64, in UpdateInput) (*User, error)

	DeleteUser(ctx context.Context, userID int64, actor Actor) error
}

type userServiceImpl struct {
	repo   Repository
	tokens *TokenIssuer
	logger *slog.Logger
}

func NewUserService(r Repository, tokens *TokenIssuer, logger *slog.Logger) UserService {
	return &userServiceImpl{repo: r, tokens: tokens, logger: logger.With("component", "UserService")}
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("%w: failed to hash password: %v", apperrors.ErrInternalServer, err)
	}
	return string(hash), nil
}

func (s *userServiceImpl) Login(ctx context.Context, email, password string) (string, *User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	u, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			s.logger.WarnContext(ctx, "Login attempt for unknown email")
			return "", nil, fmt.Errorf("%w: invalid credentials", apperrors.ErrUnauthorized)
		}
		return "", nil, err
	}

	if !u.Active {
		s.logger.WarnContext(ctx, "Login attempt for inactive user", "userID", u.ID)
		return "", nil, fmt.Errorf("%w: user is inactive", apperrors.ErrUnauthorized)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		s.logger.WarnContext(ctx, "Login attempt with wrong password", "userID", u.ID)
		return "", nil, fmt.Errorf("%w: invalid credentials", apperrors.ErrUnauthorized)
	}

	token, err := s.tokens.Issue(u)
	if err != nil {
		return "", nil, err
	}
	s.logger.InfoContext(ctx, "User logged in", "userID", u.ID, "role", u.Role)
	return token, u, nil
}

func (s *userServiceImpl) Register(ctx context.Context, in RegisterInput) (*User, error) {
	if strings.TrimSpace(in.Name) == "" {
		return nil, apperrors.NewValidationError("nombre", "name is required")
	}
	if len(in.Password) < 6 {
		return nil, apperrors.NewValidationError("password", "password must have at least 6 characters")
	}
	if in.Role == "" {
		in.Role = RoleCollector
	}

	hash, err := hashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	created, err := s.repo.Create(ctx, &User{
		Name:         strings.TrimSpace(in.Name),
		Email:        strings.ToLower(strings.TrimSpace(in.Email)),
		PasswordHash: hash,
		Role:         in.Role,
		Active:       true,
		PhotoURL:     in.PhotoURL,
	})
	if err != nil {
		if errors.Is(err, apperrors.ErrAlreadyExists) {
			return nil, fmt.Errorf("%w: email %s is already registered", apperrors.ErrConflict, in.Email)
		}
		s.logger.ErrorContext(ctx, "Failed to create user", "error", err)
		return nil, err
	}

	s.logger.InfoContext(ctx, "User registered", "userID", created.ID, "role", created.Role)
	return created, nil
}

func (s *userServiceImpl) GetUser(ctx context.Context, userID int64) (*User, error) {
	u, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: user with ID %d not found", apperrors.ErrNotFound, userID)
		}
		return nil, err
	}
	return u, nil
}

func (s *userServiceImpl) ListUsers(ctx context.Context) ([]User, error) {
	return s.repo.List(ctx)
}

func (s *userServiceImpl) ListCollectors(ctx context.Context) ([]User, error) {
	return s.repo.ListActiveByRole(ctx, RoleCollector)
}

func (s *userServiceImpl) UpdateUser(ctx context.Context, userID int64, in UpdateInput) (*User, error) {
	patch := UserPatch{
		Name:     in.Name,
		Email:    in.Email,
		Role:     in.Role,
		Active:   in.Active,
		PhotoURL: in.PhotoURL,
	}
	if patch.Email != nil {
		normalized := strings.ToLower(strings.TrimSpace(*patch.Email))
		patch.Email = &normalized
	}
	if in.Password != nil && *in.Password != "" {
		if len(*in.Password) < 6 {
			return nil, apperrors.NewValidationError("password", "password must have at least 6 characters")
		}
		hash, err := hashPassword(*in.Password)
		if err != nil {
			return nil, err
		}
		patch.PasswordHash = &hash
	}
	if patch.IsEmpty() {
		return nil, apperrors.NewValidationError("", "no fields to update")
	}

	updated, err := s.repo.Update(ctx, userID, patch)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrNotFound):
			return nil, fmt.Errorf("%w: user with ID %d not found", apperrors.ErrNotFound, userID)
		case errors.Is(err, apperrors.ErrAlreadyExists):
			return nil, fmt.Errorf("%w: email is already registered", apperrors.ErrConflict)
		}
		return nil, err
	}
	s.logger.InfoContext(ctx, "User updated", "userID", userID)
	return updated, nil
}

func (s *userServiceImpl) DeleteUser(ctx context.Context, userID int64, actor Actor) error {
	if userID == actor.ID {
		return fmt.Errorf("%w: users cannot delete themselves", apperrors.ErrConflict)
	}
	if err := s.repo.Delete(ctx, userID); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return fmt.Errorf("%w: user with ID %d not found", apperrors.ErrNotFound, userID)
		}
		return err
	}
	s.logger.InfoContext(ctx, "User deleted", "userID", userID, "deletedBy", actor.ID)
	return nil
}
