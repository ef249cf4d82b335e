package client

import (
	"context"
	"errors"
	"fmt"
	"lending-engine/internal/domain/user"
	"lending-engine/internal/pkg/apperrors"
	"log/slog"
	"strings"
)

type ClientService interface {
	CreateClient(ctx context.Context, c *Client, actor user.Actor) (*Client, error)

	GetClient(ctx context.Context, clientID int64) (*Client, error)

	ListClients(ctx context.Context, actor user.Actor) ([]Client, error)

	UpdateClient(ctx context.Context, clientID int64, patch ClientPatch, actor user.Actor) (*Client, error)

	DeleteClient(ctx context.Context, clientID int64, actor user.Actor) error
}

type clientServiceImpl struct {
	repo   Repository
	logger *slog.Logger
}

func NewClientService(r Repository, logger *slog.Logger) ClientService {
	return &clientServiceImpl{repo: r, logger: logger.With("component", "ClientService")}
}

func (s *clientServiceImpl) CreateClient(ctx context.Context, c *Client, actor user.Actor) (*Client, error) {
	c.FirstName = strings.TrimSpace(c.FirstName)
	c.LastName = strings.TrimSpace(c.LastName)
	c.NationalID = strings.TrimSpace(c.NationalID)
	if c.FirstName == "" {
		return nil, apperrors.NewValidationError("nombre", "first name is required")
	}
	if c.NationalID == "" {
		return nil, apperrors.NewValidationError("cedula", "national id is required")
	}

	if err := s.ensureNationalIDFree(ctx, c.NationalID, 0); err != nil {
		return nil, err
	}

	c.Active = true
	c.CreatedBy = actor.ID
	created, err := s.repo.Create(ctx, c)
	if err != nil {
		if errors.Is(err, apperrors.ErrAlreadyExists) {
			return nil, fmt.Errorf("%w: a client with national id %s already exists", apperrors.ErrConflict, c.NationalID)
		}
		s.logger.ErrorContext(ctx, "Failed to create client", "error", err)
		return nil, err
	}

	s.logger.InfoContext(ctx, "Client created", "clientID", created.ID, "createdBy", actor.ID)
	return created, nil
}

func (s *clientServiceImpl) ensureNationalIDFree(ctx context.Context, nationalID string, ownID int64) error {
	existing, err := s.repo.FindByNationalID(ctx, nationalID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil
		}
		return err
	}
	if existing.ID != ownID {
		return fmt.Errorf("%w: a client with national id %s already exists", apperrors.ErrConflict, nationalID)
	}
	return nil
}

func (s *clientServiceImpl) GetClient(ctx context.Context, clientID int64) (*Client, error) {
	c, err := s.repo.FindByID(ctx, clientID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: client with ID %d not found", apperrors.ErrNotFound, clientID)
		}
		return nil, err
	}
	return c, nil
}

func (s *clientServiceImpl) ListClients(ctx context.Context, actor user.Actor) ([]Client, error) {
	var createdBy *int64
	if actor.IsCollector() {
		createdBy = &actor.ID
	}
	return s.repo.List(ctx, createdBy)
}

func (s *clientServiceImpl) authorizeOwner(ctx context.Context, clientID int64, actor user.Actor) error {
	c, err := s.GetClient(ctx, clientID)
	if err != nil {
		return err
	}
	if actor.IsCollector() && c.CreatedBy != actor.ID {
		s.logger.WarnContext(ctx, "Collector tried to modify a client they do not own", "clientID", clientID, "actorID", actor.ID)
		return fmt.Errorf("%w: client %d belongs to another user", apperrors.ErrForbidden, clientID)
	}
	return nil
}

func (s *clientServiceImpl) UpdateClient(ctx context.Context, clientID int64, patch ClientPatch, actor user.Actor) (*Client, error) {
	if patch.IsEmpty() {
		return nil, apperrors.NewValidationError("", "no fields to update")
	}
	if err := s.authorizeOwner(ctx, clientID, actor); err != nil {
		return nil, err
	}
	if patch.NationalID != nil {
		nationalID := strings.TrimSpace(*patch.NationalID)
		if nationalID == "" {
			return nil, apperrors.NewValidationError("cedula", "national id cannot be empty")
		}
		if err := s.ensureNationalIDFree(ctx, nationalID, clientID); err != nil {
			return nil, err
		}
		patch.NationalID = &nationalID
	}

	updated, err := s.repo.Update(ctx, clientID, patch)
	if err != nil {
		if errors.Is(err, apperrors.ErrAlreadyExists) {
			return nil, fmt.Errorf("%w: national id already registered", apperrors.ErrConflict)
		}
		return nil, err
	}
	s.logger.InfoContext(ctx, "Client updated", "clientID", clientID, "actorID", actor.ID)
	return updated, nil
}

func (s *clientServiceImpl) DeleteClient(ctx context.Context, clientID int64, actor user.Actor) error {
	if err := s.authorizeOwner(ctx, clientID, actor); err != nil {
		return err
	}

	open, err := s.repo.CountOpenLoans(ctx, clientID)
	if err != nil {
		return err
	}
	if open > 0 {
		return fmt.Errorf("%w: client %d has %d open loans; complete or cancel them first", apperrors.ErrConflict, clientID, open)
	}

	if err := s.repo.Delete(ctx, clientID); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return fmt.Errorf("%w: client with ID %d not found", apperrors.ErrNotFound, clientID)
		}
		return err
	}
	s.logger.InfoContext(ctx, "Client deleted", "clientID", clientID, "actorID", actor.ID)
	return nil
}
