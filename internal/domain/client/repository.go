package client

import "context"

type Repository interface {
	Create(ctx context.Context, c *Client) (*Client, error)

	FindByID(ctx context.Context, clientID int64) (*Client, error)

	FindByNationalID(ctx context.Context, nationalID string) (*Client, error)

	// List returns active clients ordered by name. A non-nil createdBy restricts the result to that user's clients.
	List(ctx context.Context, createdBy *int64) ([]Client, error)

	Update(ctx context.Context, clientID int64, patch ClientPatch) (*Client, error)

	Delete(ctx context.Context, clientID int64) error

	CountOpenLoans(ctx context.Context, clientID int64) (int, error)
}
