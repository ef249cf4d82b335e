package setting

import (
	"context"
	"time"
)

// Well-known keys read by the login screen.
const (
	KeyCompanyName = "nombre_empresa"
	KeyCompanyLogo = "logo_empresa"
)

// Setting is a single application-wide key/value pair.
type Setting struct {
	Key       string
	Value     string
	UpdatedAt time.Time
}

type Repository interface {
	List(ctx context.Context) ([]Setting, error)

	FindByKey(ctx context.Context, key string) (*Setting, error)

	// Upsert stores value under key, creating the key when it does not exist yet.
	Upsert(ctx context.Context, key, value string) (*Setting, error)
}
