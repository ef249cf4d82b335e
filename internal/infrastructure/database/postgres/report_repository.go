package postgres

import (
	"context"
	"fmt"
	"lending-engine/internal/domain/loan"
	"lending-engine/internal/domain/report"
	"lending-engine/internal/domain/user"
	"lending-engine/internal/pkg/apperrors"
	"log/slog"
	"time"
)

type ReportRepository struct {
	db     DBPool
	logger *slog.Logger
}

var _ report.Repository = (*ReportRepository)(nil)

func NewReportRepository(db DBPool, logger *slog.Logger) *ReportRepository {
	return &ReportRepository{db: db, logger: logger.With("component", "ReportRepository")}
}

func (r *ReportRepository) Summary(ctx context.Context, monthStart time.Time) (s *report.Summary, err error) {
	start := time.Now()
	defer func() { observe("ReportSummary", start, err) }()

	s = &report.Summary{}

	loansSQL := `
        SELECT COUNT(*),
               COUNT(*) FILTER (WHERE estado = $1),
               COUNT(*) FILTER (WHERE estado = $2),
               COUNT(*) FILTER (WHERE estado = $3),
               COUNT(*) FILTER (WHERE estado = $4),
               COALESCE(SUM(monto_prestado), 0),
               COALESCE(SUM(monto_total), 0)
        FROM prestamos`
	err = r.db.QueryRow(ctx, loansSQL, loan.StateActive, loan.StateCompleted, loan.StateOverdue, loan.StateCancelled).Scan(
		&s.Loans.Total, &s.Loans.Active, &s.Loans.Completed, &s.Loans.Overdue, &s.Loans.Cancelled,
		&s.Loans.TotalLent, &s.Loans.TotalWithInterest,
	)
	if err != nil {
		return nil, r.fail(ctx, "loans", err)
	}

	pendingSQL := `
        SELECT COUNT(*), COALESCE(SUM(monto - monto_pagado), 0)
        FROM cuotas
        WHERE estado = ANY($1)`
	if err = r.db.QueryRow(ctx, pendingSQL, unpaidInstallmentStates).Scan(&s.Pending.Count, &s.Pending.Amount); err != nil {
		return nil, r.fail(ctx, "pending installments", err)
	}

	paymentsSQL := `
        SELECT COUNT(*), COALESCE(SUM(monto), 0)
        FROM pagos
        WHERE COALESCE(fecha_pago, creado_en) >= $1 AND COALESCE(fecha_pago, creado_en) < $2`
	err = r.db.QueryRow(ctx, paymentsSQL, monthStart, monthStart.AddDate(0, 1, 0)).
		Scan(&s.MonthPayment.Count, &s.MonthPayment.Collected)
	if err != nil {
		return nil, r.fail(ctx, "month payments", err)
	}

	clientsSQL := `SELECT COUNT(*), COUNT(*) FILTER (WHERE activo) FROM clientes`
	if err = r.db.QueryRow(ctx, clientsSQL).Scan(&s.Clients.Total, &s.Clients.Active); err != nil {
		return nil, r.fail(ctx, "clients", err)
	}

	usersSQL := `
        SELECT COUNT(*),
               COUNT(*) FILTER (WHERE activo),
               COUNT(*) FILTER (WHERE rol = $1),
               COUNT(*) FILTER (WHERE rol = $2)
        FROM usuarios`
	err = r.db.QueryRow(ctx, usersSQL, user.RoleAdmin, user.RoleCollector).
		Scan(&s.Users.Total, &s.Users.Active, &s.Users.Admins, &s.Users.Collectors)
	if err != nil {
		return nil, r.fail(ctx, "users", err)
	}

	return s, nil
}

// CollectorStats counts the collector's active clients and assigned loans. Money totals cover the
// activo and completado loans the collector created.
func (r *ReportRepository) CollectorStats(ctx context.Context, collectorID int64) (stats *report.CollectorStats, err error) {
	start := time.Now()
	defer func() { observe("CollectorStats", start, err) }()

	stats = &report.CollectorStats{CollectorID: collectorID}

	query := `
        SELECT
            (SELECT COUNT(*) FROM clientes WHERE creado_por = $1 AND activo = TRUE),
            (SELECT COUNT(*) FROM prestamos WHERE cobrador_id = $1),
            COALESCE(SUM(monto_prestado), 0),
            COALESCE(SUM(monto_total), 0),
            COALESCE(SUM(monto_total - monto_prestado), 0)
        FROM prestamos
        WHERE creado_por = $1 AND estado = ANY($2)`
	earningStates := []string{string(loan.StateActive), string(loan.StateCompleted)}

	err = r.db.QueryRow(ctx, query, collectorID, earningStates).Scan(
		&stats.ClientCount, &stats.LoanCount, &stats.TotalLent, &stats.TotalWithInterest, &stats.EstimatedEarnings,
	)
	if err != nil {
		return nil, r.fail(ctx, "collector stats", err)
	}
	return stats, nil
}

func (r *ReportRepository) fail(ctx context.Context, section string, err error) error {
	r.logger.ErrorContext(ctx, "Failed to aggregate report section", "section", section, "error", err)
	return fmt.Errorf("%w: %s: %w", apperrors.ErrDatabase, section, err)
}
