package client

import (
	"bytes"
	"context"
	"lending-engine/internal/domain/user"
	"lending-engine/internal/pkg/apperrors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var logger = slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))

var (
	admin     = user.Actor{ID: 1, Role: user.RoleAdmin}
	collector = user.Actor{ID: 2, Role: user.RoleCollector}
)

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) Create(ctx context.Context, c *Client) (*Client, error) {
	args := m.Called(ctx, c)
	if created, ok := args.Get(0).(*Client); ok {
		return created, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockRepository) FindByID(ctx context.Context, clientID int64) (*Client, error) {
	args := m.Called(ctx, clientID)
	if c, ok := args.Get(0).(*Client); ok {
		return c, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockRepository) FindByNationalID(ctx context.Context, nationalID string) (*Client, error) {
	args := m.Called(ctx, nationalID)
	if c, ok := args.Get(0).(*Client); ok {
		return c, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockRepository) List(ctx context.Context, createdBy *int64) ([]Client, error) {
	args := m.Called(ctx, createdBy)
	if clients, ok := args.Get(0).([]Client); ok {
		return clients, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockRepository) Update(ctx context.Context, clientID int64, patch ClientPatch) (*Client, error) {
	args := m.Called(ctx, clientID, patch)
	if c, ok := args.Get(0).(*Client); ok {
		return c, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockRepository) Delete(ctx context.Context, clientID int64) error {
	return m.Called(ctx, clientID).Error(0)
}

func (m *MockRepository) CountOpenLoans(ctx context.Context, clientID int64) (int, error) {
	args := m.Called(ctx, clientID)
	return args.Int(0), args.Error(1)
}

func strPtr(s string) *string { return &s }

func TestCreateClient(t *testing.T) {
	ctx := context.Background()

	t.Run("stamps the creator and activates the client", func(t *testing.T) {
		repo := new(MockRepository)
		svc := NewClientService(repo, logger)
		repo.On("FindByNationalID", ctx, "001-1").Return(nil, apperrors.ErrNotFound)
		repo.On("Create", ctx, mock.MatchedBy(func(c *Client) bool {
			return c.CreatedBy == collector.ID && c.Active && c.FirstName == "Luis"
		})).Return(&Client{ID: 10, FirstName: "Luis"}, nil)

		created, err := svc.CreateClient(ctx, &Client{FirstName: " Luis ", NationalID: "001-1"}, collector)

		require.NoError(t, err)
		assert.Equal(t, int64(10), created.ID)
		repo.AssertExpectations(t)
	})

	t.Run("rejects a duplicate national id", func(t *testing.T) {
		repo := new(MockRepository)
		svc := NewClientService(repo, logger)
		repo.On("FindByNationalID", ctx, "001-1").Return(&Client{ID: 3}, nil)

		_, err := svc.CreateClient(ctx, &Client{FirstName: "Luis", NationalID: "001-1"}, admin)

		assert.ErrorIs(t, err, apperrors.ErrConflict)
		repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("requires a first name", func(t *testing.T) {
		svc := NewClientService(new(MockRepository), logger)

		_, err := svc.CreateClient(ctx, &Client{NationalID: "001-1"}, admin)

		assert.ErrorIs(t, err, apperrors.ErrValidation)
	})
}

func TestListClientsScopesCollectors(t *testing.T) {
	ctx := context.Background()
	repo := new(MockRepository)
	svc := NewClientService(repo, logger)
	repo.On("List", ctx, (*int64)(nil)).Return([]Client{{ID: 1}, {ID: 2}}, nil)
	repo.On("List", ctx, mock.MatchedBy(func(id *int64) bool { return id != nil && *id == collector.ID })).
		Return([]Client{{ID: 2}}, nil)

	all, err := svc.ListClients(ctx, admin)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	own, err := svc.ListClients(ctx, collector)
	require.NoError(t, err)
	assert.Len(t, own, 1)
}

func TestUpdateClient(t *testing.T) {
	ctx := context.Background()

	t.Run("collector cannot edit another user's client", func(t *testing.T) {
		repo := new(MockRepository)
		svc := NewClientService(repo, logger)
		repo.On("FindByID", ctx, int64(7)).Return(&Client{ID: 7, CreatedBy: 99}, nil)

		_, err := svc.UpdateClient(ctx, 7, ClientPatch{Phone: strPtr("555")}, collector)

		assert.ErrorIs(t, err, apperrors.ErrForbidden)
	})

	t.Run("national id taken by another client is a conflict", func(t *testing.T) {
		repo := new(MockRepository)
		svc := NewClientService(repo, logger)
		repo.On("FindByID", ctx, int64(7)).Return(&Client{ID: 7, CreatedBy: 1}, nil)
		repo.On("FindByNationalID", ctx, "002").Return(&Client{ID: 8}, nil)

		_, err := svc.UpdateClient(ctx, 7, ClientPatch{NationalID: strPtr("002")}, admin)

		assert.ErrorIs(t, err, apperrors.ErrConflict)
	})

	t.Run("keeping its own national id is allowed", func(t *testing.T) {
		repo := new(MockRepository)
		svc := NewClientService(repo, logger)
		patch := ClientPatch{NationalID: strPtr("002")}
		repo.On("FindByID", ctx, int64(7)).Return(&Client{ID: 7, CreatedBy: collector.ID}, nil)
		repo.On("FindByNationalID", ctx, "002").Return(&Client{ID: 7}, nil)
		repo.On("Update", ctx, int64(7), patch).Return(&Client{ID: 7, NationalID: "002"}, nil)

		updated, err := svc.UpdateClient(ctx, 7, patch, collector)

		require.NoError(t, err)
		assert.Equal(t, "002", updated.NationalID)
	})
}

func TestDeleteClient(t *testing.T) {
	ctx := context.Background()

	t.Run("refuses while the client has open loans", func(t *testing.T) {
		repo := new(MockRepository)
		svc := NewClientService(repo, logger)
		repo.On("FindByID", ctx, int64(4)).Return(&Client{ID: 4, CreatedBy: 1}, nil)
		repo.On("CountOpenLoans", ctx, int64(4)).Return(2, nil)

		err := svc.DeleteClient(ctx, 4, admin)

		assert.ErrorIs(t, err, apperrors.ErrConflict)
		repo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	})

	t.Run("deletes a client without open loans", func(t *testing.T) {
		repo := new(MockRepository)
		svc := NewClientService(repo, logger)
		repo.On("FindByID", ctx, int64(4)).Return(&Client{ID: 4, CreatedBy: collector.ID}, nil)
		repo.On("CountOpenLoans", ctx, int64(4)).Return(0, nil)
		repo.On("Delete", ctx, int64(4)).Return(nil)

		require.NoError(t, svc.DeleteClient(ctx, 4, collector))
		repo.AssertExpectations(t)
	})

	t.Run("missing client is not found", func(t *testing.T) {
		repo := new(MockRepository)
		svc := NewClientService(repo, logger)
		repo.On("FindByID", ctx, int64(4)).Return(nil, apperrors.ErrNotFound)

		err := svc.DeleteClient(ctx, 4, admin)

		assert.ErrorIs(t, err, apperrors.ErrNotFound)
	})
}
