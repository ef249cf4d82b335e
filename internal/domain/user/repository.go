package user

import "context"

type Repository interface {
	Create(ctx context.Context, u *User) (*User, error)

	FindByID(ctx context.Context, userID int64) (*User, error)

	FindByEmail(ctx context.Context, email string) (*User, error)

	List(ctx context.Context) ([]User, error)

	ListActiveByRole(ctx context.Context, role Role) ([]User, error)

	Update(ctx context.Context, userID int64, patch UserPatch) (*User, error)

	Delete(ctx context.Context, userID int64) error
}
