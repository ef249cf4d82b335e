package report

import (
	"context"
	"time"
)

type Repository interface {
	// Summary aggregates the whole portfolio; payment totals cover [monthStart, monthStart+1 month).
	Summary(ctx context.Context, monthStart time.Time) (*Summary, error)

	CollectorStats(ctx context.Context, collectorID int64) (*CollectorStats, error)
}
