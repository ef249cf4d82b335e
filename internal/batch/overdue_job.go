package batch

import (
	"context"
	"fmt"
	"lending-engine/internal/domain/loan"
	"lending-engine/internal/infrastructure/monitoring"
	"log/slog"
	"time"
)

// OverdueStore is the slice of the loan repository the sweep needs.
type OverdueStore interface {
	MarkOverdueInstallments(ctx context.Context, asOf time.Time) (int64, error)
	MarkOverdueLoans(ctx context.Context) (int64, error)
	RestoreCurrentLoans(ctx context.Context) (int64, error)
}

type OverdueJob struct {
	store  OverdueStore
	logger *slog.Logger
	now    func() time.Time
}

func NewOverdueJob(store OverdueStore, logger *slog.Logger) *OverdueJob {
	if store == nil || logger == nil {
		panic("OverdueJob dependencies cannot be nil")
	}
	return &OverdueJob{
		store:  store,
		logger: logger.With("job", "OverdueSweep"),
		now:    time.Now,
	}
}

type sweepStep struct {
	kind string
	run  func(ctx context.Context) (int64, error)
}

// Run flags past-due installments first so the loan steps see the fresh installment states.
func (j *OverdueJob) Run(ctx context.Context) error {
	startTime := time.Now()
	asOf := loan.DateOnly(j.now())
	j.logger.InfoContext(ctx, "Starting overdue sweep.", slog.Time("as_of", asOf))

	steps := []sweepStep{
		{kind: "installments_overdue", run: func(ctx context.Context) (int64, error) {
			return j.store.MarkOverdueInstallments(ctx, asOf)
		}},
		{kind: "loans_overdue", run: j.store.MarkOverdueLoans},
		{kind: "loans_restored", run: j.store.RestoreCurrentLoans},
	}

	attrs := []any{}
	errorCount := 0
	for _, step := range steps {
		if err := ctx.Err(); err != nil {
			j.logger.WarnContext(ctx, "Overdue sweep cancelled.", slog.String("next_step", step.kind), slog.Any("error", err))
			return fmt.Errorf("overdue sweep cancelled before %s: %w", step.kind, err)
		}

		n, err := step.run(ctx)
		if err != nil {
			j.logger.ErrorContext(ctx, "Overdue sweep step failed.", slog.String("step", step.kind), slog.Any("error", err))
			errorCount++
			continue
		}
		monitoring.RecordOverdueSweep(step.kind, n)
		attrs = append(attrs, slog.Int64(step.kind, n))
	}

	summaryLog := j.logger.With(attrs...).With(
		slog.Duration("duration", time.Since(startTime)),
		slog.Int("errors_encountered", errorCount),
	)
	if errorCount > 0 {
		summaryLog.WarnContext(ctx, "Overdue sweep finished with errors.")
		return fmt.Errorf("job completed with %d errors", errorCount)
	}
	summaryLog.InfoContext(ctx, "Overdue sweep finished successfully.")
	return nil
}
