package postgres

import (
	"context"
	"errors"
	"fmt"
	"lending-engine/internal/domain/loan"
	"lending-engine/internal/pkg/apperrors"
	"log/slog"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

const loanColumns = `id, cliente_id, cobrador_id, creado_por, monto_prestado, interes_porcentaje, numero_cuotas,
        frecuencia_pago, fecha_inicio, fecha_fin, monto_total, monto_cuota, estado, observaciones, creado_en, actualizado_en`

const installmentColumns = `id, prestamo_id, numero_cuota, fecha_vencimiento, monto, monto_pagado, estado, creado_en, actualizado_en`

// unpaidInstallmentStates are the installment states that still owe money.
var unpaidInstallmentStates = []string{string(loan.InstallmentPending), string(loan.InstallmentOverdue)}

// openLoanStates are the loan states that still accept payments.
var openLoanStates = []string{string(loan.StateActive), string(loan.StateOverdue)}

type LoanRepository struct {
	db     DBPool
	logger *slog.Logger
}

var _ loan.Repository = (*LoanRepository)(nil)

func NewLoanRepository(db DBPool, logger *slog.Logger) *LoanRepository {
	return &LoanRepository{db: db, logger: logger.With("component", "LoanRepository")}
}

func (r *LoanRepository) BeginTx(ctx context.Context) (pgx.Tx, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to begin transaction", "error", err)
		return nil, fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
	}
	return tx, nil
}

func (r *LoanRepository) CommitTx(ctx context.Context, tx pgx.Tx) error {
	err := tx.Commit(ctx)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to commit transaction", "error", err)
		return fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
	}
	return nil
}

func (r *LoanRepository) RollbackTx(ctx context.Context, tx pgx.Tx) error {
	err := tx.Rollback(ctx)
	if err != nil && !errors.Is(err, pgx.ErrTxClosed) {
		r.logger.ErrorContext(ctx, "Failed to rollback transaction", "error", err)
		return fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
	}
	return nil
}

func scanLoan(row pgx.Row) (*loan.Loan, error) {
	var l loan.Loan
	err := row.Scan(
		&l.ID, &l.ClientID, &l.CollectorID, &l.CreatedBy, &l.Principal, &l.InterestRate, &l.InstallmentCount,
		&l.Frequency, &l.StartDate, &l.EndDate, &l.TotalPayable, &l.InstallmentAmount, &l.State, &l.Notes,
		&l.CreatedAt, &l.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &l, nil
}

func scanInstallment(row pgx.Row) (*loan.Installment, error) {
	var i loan.Installment
	err := row.Scan(&i.ID, &i.LoanID, &i.Number, &i.DueDate, &i.Amount, &i.PaidAmount, &i.State, &i.CreatedAt, &i.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &i, nil
}

func (r *LoanRepository) CreateLoanWithInstallments(ctx context.Context, newLoan *loan.Loan) (created *loan.Loan, err error) {
	start := time.Now()
	defer func() { observe("CreateLoanWithInstallments", start, err) }()

	tx, err := r.BeginTx(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			_ = r.RollbackTx(ctx, tx)
		}
	}()

	loanSQL := `
        INSERT INTO prestamos (cliente_id, cobrador_id, creado_por, monto_prestado, interes_porcentaje, numero_cuotas,
            frecuencia_pago, fecha_inicio, fecha_fin, monto_total, monto_cuota, estado, observaciones, creado_en, actualizado_en)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, NOW(), NOW())
        RETURNING ` + loanColumns

	created, err = scanLoan(tx.QueryRow(ctx, loanSQL,
		newLoan.ClientID, newLoan.CollectorID, newLoan.CreatedBy, newLoan.Principal, newLoan.InterestRate,
		newLoan.InstallmentCount, newLoan.Frequency, newLoan.StartDate, newLoan.EndDate, newLoan.TotalPayable,
		newLoan.InstallmentAmount, newLoan.State, newLoan.Notes,
	))
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to insert loan", "error", err)
		return nil, translateDBError(err, r.logger)
	}
	r.logger.InfoContext(ctx, "Loan created in DB", "loan_id", created.ID)

	schedule := newLoan.Installments
	copied, err := tx.CopyFrom(ctx,
		pgx.Identifier{"cuotas"},
		[]string{"prestamo_id", "numero_cuota", "fecha_vencimiento", "monto", "monto_pagado", "estado"},
		pgx.CopyFromSlice(len(schedule), func(i int) ([]any, error) {
			inst := schedule[i]
			return []any{created.ID, inst.Number, inst.DueDate, inst.Amount, inst.PaidAmount, inst.State}, nil
		}),
	)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed copying installment schedule", "error", err, "loan_id", created.ID)
		return nil, fmt.Errorf("%w: failed inserting schedule: %w", apperrors.ErrDatabase, err)
	}
	if int(copied) != len(schedule) {
		err = fmt.Errorf("%w: inserted %d of %d installments", apperrors.ErrDatabase, copied, len(schedule))
		return nil, err
	}

	created.Installments, err = r.listInstallments(ctx, tx, created.ID)
	if err != nil {
		return nil, err
	}

	if err = r.CommitTx(ctx, tx); err != nil {
		return nil, err
	}
	r.logger.InfoContext(ctx, "Loan schedule created in DB", "loan_id", created.ID, "num_entries", len(created.Installments))
	return created, nil
}

func (r *LoanRepository) getLoan(ctx context.Context, q querier, op string, query string, loanID int64) (l *loan.Loan, err error) {
	start := time.Now()
	defer func() { observe(op, start, err) }()

	l, err = scanLoan(q.QueryRow(ctx, query, loanID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.WarnContext(ctx, "Loan not found", "loan_id", loanID)
			return nil, apperrors.ErrNotFound
		}
		r.logger.ErrorContext(ctx, "Failed to get loan by ID", "loan_id", loanID, "error", err)
		return nil, fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
	}
	return l, nil
}

func (r *LoanRepository) GetLoanByID(ctx context.Context, loanID int64) (*loan.Loan, error) {
	return r.getLoan(ctx, r.db, "GetLoanByID", `SELECT `+loanColumns+` FROM prestamos WHERE id = $1`, loanID)
}

func (r *LoanRepository) GetLoanInTx(ctx context.Context, tx pgx.Tx, loanID int64) (*loan.Loan, error) {
	return r.getLoan(ctx, tx, "GetLoanInTx", `SELECT `+loanColumns+` FROM prestamos WHERE id = $1`, loanID)
}

func (r *LoanRepository) GetLoanForUpdateInTx(ctx context.Context, tx pgx.Tx, loanID int64) (*loan.Loan, error) {
	return r.getLoan(ctx, tx, "GetLoanForUpdateInTx", `SELECT `+loanColumns+` FROM prestamos WHERE id = $1 FOR UPDATE`, loanID)
}

func (r *LoanRepository) listInstallments(ctx context.Context, q querier, loanID int64) ([]loan.Installment, error) {
	query := `
        SELECT ` + installmentColumns + `
        FROM cuotas
        WHERE prestamo_id = $1
        ORDER BY numero_cuota ASC`

	rows, err := q.Query(ctx, query, loanID)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to query installments", "loan_id", loanID, "error", err)
		return nil, fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
	}
	defer rows.Close()

	schedule := make([]loan.Installment, 0)
	for rows.Next() {
		inst, err := scanInstallment(rows)
		if err != nil {
			r.logger.ErrorContext(ctx, "Failed to scan installment row", "loan_id", loanID, "error", err)
			return nil, fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
		}
		schedule = append(schedule, *inst)
	}
	if err = rows.Err(); err != nil {
		r.logger.ErrorContext(ctx, "Error iterating installment rows", "loan_id", loanID, "error", err)
		return nil, fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
	}
	return schedule, nil
}

func (r *LoanRepository) GetInstallmentsByLoanID(ctx context.Context, loanID int64) (schedule []loan.Installment, err error) {
	start := time.Now()
	defer func() { observe("GetInstallmentsByLoanID", start, err) }()
	return r.listInstallments(ctx, r.db, loanID)
}

func (r *LoanRepository) GetInstallmentForUpdateInTx(ctx context.Context, tx pgx.Tx, installmentID int64) (*loan.Installment, error) {
	query := `SELECT ` + installmentColumns + ` FROM cuotas WHERE id = $1 FOR UPDATE`

	inst, err := scanInstallment(tx.QueryRow(ctx, query, installmentID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.InfoContext(ctx, "Installment not found for update", "installment_id", installmentID)
			return nil, apperrors.ErrNotFound
		}
		r.logger.ErrorContext(ctx, "Failed to lock installment", "installment_id", installmentID, "error", err)
		return nil, fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
	}
	return inst, nil
}

func (r *LoanRepository) UpdateInstallmentInTx(ctx context.Context, tx pgx.Tx, inst *loan.Installment) error {
	sql := `
        UPDATE cuotas
        SET monto_pagado = $1, estado = $2, actualizado_en = NOW()
        WHERE id = $3 AND prestamo_id = $4`

	cmdTag, err := tx.Exec(ctx, sql, inst.PaidAmount, inst.State, inst.ID, inst.LoanID)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to update installment", "installment_id", inst.ID, "loan_id", inst.LoanID, "error", err)
		return fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
	}
	if cmdTag.RowsAffected() != 1 {
		r.logger.ErrorContext(ctx, "Installment update affected zero rows", "installment_id", inst.ID, "loan_id", inst.LoanID)
		return fmt.Errorf("%w: installment update affected zero rows", apperrors.ErrDatabase)
	}
	return nil
}

func (r *LoanRepository) InsertPaymentInTx(ctx context.Context, tx pgx.Tx, p *loan.Payment) (*loan.Payment, error) {
	sql := `
        INSERT INTO pagos (cuota_id, prestamo_id, cliente_id, cobrador_id, monto, fecha_pago, metodo_pago, referencia, observaciones, creado_en)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW())
        RETURNING id, creado_en`

	saved := *p
	err := tx.QueryRow(ctx, sql,
		p.InstallmentID, p.LoanID, p.ClientID, p.CollectorID, p.Amount, p.PaymentDate, p.Method, p.Reference, p.Notes,
	).Scan(&saved.ID, &saved.CreatedAt)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to insert payment", "installment_id", p.InstallmentID, "error", err)
		return nil, translateDBError(err, r.logger)
	}
	return &saved, nil
}

func (r *LoanRepository) CountUnpaidInstallmentsInTx(ctx context.Context, tx pgx.Tx, loanID int64) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM cuotas WHERE prestamo_id = $1 AND estado <> $2`
	err := tx.QueryRow(ctx, query, loanID, loan.InstallmentPaid).Scan(&count)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to count unpaid installments", "loan_id", loanID, "error", err)
		return 0, fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
	}
	return count, nil
}

func (r *LoanRepository) UpdateLoanStateInTx(ctx context.Context, tx pgx.Tx, loanID int64, state loan.LoanState) error {
	sql := `UPDATE prestamos SET estado = $1, actualizado_en = NOW() WHERE id = $2`
	cmdTag, err := tx.Exec(ctx, sql, state, loanID)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to update loan state", "loan_id", loanID, "state", state, "error", err)
		return fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
	}
	if cmdTag.RowsAffected() != 1 {
		r.logger.ErrorContext(ctx, "Loan state update affected zero rows", "loan_id", loanID, "state", state)
		return fmt.Errorf("%w: loan state update affected zero rows", apperrors.ErrDatabase)
	}
	r.logger.InfoContext(ctx, "Loan state updated in DB", "loan_id", loanID, "new_state", state)
	return nil
}

func (r *LoanRepository) UpdateLoanInTx(ctx context.Context, tx pgx.Tx, loanID int64, patch loan.LoanPatch) error {
	var set setClause
	switch {
	case patch.ClearCollector:
		set.add("cobrador_id", nil)
	case patch.CollectorID != nil:
		set.add("cobrador_id", *patch.CollectorID)
	}
	if patch.State != nil {
		set.add("estado", *patch.State)
	}
	if patch.Notes != nil {
		set.add("observaciones", *patch.Notes)
	}
	if set.empty() {
		return nil
	}

	columns, args, idx := set.build(loanID)
	sql := fmt.Sprintf(`UPDATE prestamos SET %s, actualizado_en = NOW() WHERE id = $%d`, columns, idx)

	cmdTag, err := tx.Exec(ctx, sql, args...)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to update loan", "loan_id", loanID, "error", err)
		return translateDBError(err, r.logger)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// DeleteLoan removes the loan; installments and payments go with it through ON DELETE CASCADE.
func (r *LoanRepository) DeleteLoan(ctx context.Context, loanID int64) (err error) {
	start := time.Now()
	defer func() { observe("DeleteLoan", start, err) }()

	cmdTag, err := r.db.Exec(ctx, `DELETE FROM prestamos WHERE id = $1`, loanID)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to delete loan", "loan_id", loanID, "error", err)
		return translateDBError(err, r.logger)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *LoanRepository) ListLoans(ctx context.Context, filter loan.ListFilter) (loans []loan.Loan, err error) {
	start := time.Now()
	defer func() { observe("ListLoans", start, err) }()

	var (
		where []string
		args  []any
	)
	if filter.State != nil {
		args = append(args, *filter.State)
		where = append(where, fmt.Sprintf("estado = $%d", len(args)))
	}
	if filter.ClientID != nil {
		args = append(args, *filter.ClientID)
		where = append(where, fmt.Sprintf("cliente_id = $%d", len(args)))
	}
	if filter.CollectorID != nil {
		args = append(args, *filter.CollectorID)
		where = append(where, fmt.Sprintf("cobrador_id = $%d", len(args)))
	}

	query := `SELECT ` + loanColumns + ` FROM prestamos`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY creado_en DESC, id DESC`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to query loans", "error", err)
		return nil, fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
	}
	defer rows.Close()

	loans = make([]loan.Loan, 0)
	for rows.Next() {
		l, err := scanLoan(rows)
		if err != nil {
			r.logger.ErrorContext(ctx, "Failed to scan loan row", "error", err)
			return nil, fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
		}
		loans = append(loans, *l)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
	}
	return loans, nil
}

func (r *LoanRepository) ListPaymentsByLoanID(ctx context.Context, loanID int64) (payments []loan.Payment, err error) {
	start := time.Now()
	defer func() { observe("ListPaymentsByLoanID", start, err) }()

	query := `
        SELECT p.id, p.cuota_id, p.prestamo_id, p.cliente_id, p.cobrador_id, p.monto, p.fecha_pago, p.metodo_pago,
               p.referencia, p.observaciones, p.creado_en, c.numero_cuota, u.nombre
        FROM pagos p
        INNER JOIN cuotas c ON p.cuota_id = c.id
        LEFT JOIN usuarios u ON p.cobrador_id = u.id
        WHERE p.prestamo_id = $1
        ORDER BY p.fecha_pago DESC, p.id DESC`

	rows, err := r.db.Query(ctx, query, loanID)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to query payments", "loan_id", loanID, "error", err)
		return nil, fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
	}
	defer rows.Close()

	payments = make([]loan.Payment, 0)
	for rows.Next() {
		var p loan.Payment
		if err := rows.Scan(
			&p.ID, &p.InstallmentID, &p.LoanID, &p.ClientID, &p.CollectorID, &p.Amount, &p.PaymentDate, &p.Method,
			&p.Reference, &p.Notes, &p.CreatedAt, &p.InstallmentNumber, &p.CollectorName,
		); err != nil {
			r.logger.ErrorContext(ctx, "Failed to scan payment row", "loan_id", loanID, "error", err)
			return nil, fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
		}
		payments = append(payments, p)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
	}
	return payments, nil
}

func (r *LoanRepository) ListPendingInstallmentsByClient(ctx context.Context, clientID int64, collectorID *int64) (pending []loan.PendingInstallment, err error) {
	start := time.Now()
	defer func() { observe("ListPendingInstallmentsByClient", start, err) }()

	query := `
        SELECT c.id, c.prestamo_id, c.numero_cuota, c.fecha_vencimiento, c.monto, c.monto_pagado, c.estado,
               c.creado_en, c.actualizado_en, p.monto_prestado, cl.id, cl.nombre, cl.apellido, cl.telefono, cl.direccion
        FROM cuotas c
        INNER JOIN prestamos p ON c.prestamo_id = p.id
        INNER JOIN clientes cl ON p.cliente_id = cl.id
        WHERE c.estado = ANY($1)
          AND p.estado = ANY($2)
          AND cl.id = $3`
	args := []any{unpaidInstallmentStates, openLoanStates, clientID}
	if collectorID != nil {
		args = append(args, *collectorID)
		query += ` AND p.cobrador_id = $4`
	}
	query += ` ORDER BY c.fecha_vencimiento ASC, c.numero_cuota ASC`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to query pending installments", "client_id", clientID, "error", err)
		return nil, fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
	}
	defer rows.Close()

	pending = make([]loan.PendingInstallment, 0)
	for rows.Next() {
		var pi loan.PendingInstallment
		if err := rows.Scan(
			&pi.ID, &pi.LoanID, &pi.Number, &pi.DueDate, &pi.Amount, &pi.PaidAmount, &pi.State,
			&pi.CreatedAt, &pi.UpdatedAt, &pi.LoanPrincipal, &pi.ClientID, &pi.ClientFirstName, &pi.ClientLastName,
			&pi.ClientPhone, &pi.ClientAddress,
		); err != nil {
			r.logger.ErrorContext(ctx, "Failed to scan pending installment row", "client_id", clientID, "error", err)
			return nil, fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
		}
		pending = append(pending, pi)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
	}
	return pending, nil
}

func (r *LoanRepository) ListClientsWithPending(ctx context.Context, collectorID *int64) (clients []loan.ClientWithPending, err error) {
	start := time.Now()
	defer func() { observe("ListClientsWithPending", start, err) }()

	query := `
        SELECT cl.id, cl.nombre, cl.apellido, cl.cedula, cl.telefono, cl.direccion,
               COUNT(DISTINCT p.id), COUNT(c.id), COALESCE(SUM(c.monto - c.monto_pagado), 0)
        FROM clientes cl
        INNER JOIN prestamos p ON cl.id = p.cliente_id
        INNER JOIN cuotas c ON p.id = c.prestamo_id
        WHERE c.estado = ANY($1)
          AND p.estado = ANY($2)`
	args := []any{unpaidInstallmentStates, openLoanStates}
	if collectorID != nil {
		args = append(args, *collectorID)
		query += ` AND p.cobrador_id = $3`
	}
	query += ` GROUP BY cl.id ORDER BY cl.nombre, cl.apellido`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to query clients with pending installments", "error", err)
		return nil, fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
	}
	defer rows.Close()

	clients = make([]loan.ClientWithPending, 0)
	for rows.Next() {
		var c loan.ClientWithPending
		if err := rows.Scan(
			&c.ClientID, &c.FirstName, &c.LastName, &c.NationalID, &c.Phone, &c.Address,
			&c.LoanCount, &c.PendingCount, &c.PendingAmount,
		); err != nil {
			r.logger.ErrorContext(ctx, "Failed to scan client with pending row", "error", err)
			return nil, fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
		}
		clients = append(clients, c)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
	}
	return clients, nil
}

func (r *LoanRepository) GetTotalOutstandingAmount(ctx context.Context, loanID int64) (decimal.Decimal, error) {
	var totalOutstanding decimal.Decimal

	query := `
        SELECT COALESCE(SUM(GREATEST(monto - monto_pagado, 0)), 0)
        FROM cuotas
        WHERE prestamo_id = $1 AND estado <> $2`

	err := r.db.QueryRow(ctx, query, loanID, loan.InstallmentPaid).Scan(&totalOutstanding)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		r.logger.ErrorContext(ctx, "Failed to calculate total outstanding amount", "loan_id", loanID, "error", err)
		return decimal.Zero, fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
	}
	return totalOutstanding, nil
}

// MarkOverdueInstallments flags unpaid installments due on a calendar day before asOf's day.
// An installment is never overdue on its own due date.
func (r *LoanRepository) MarkOverdueInstallments(ctx context.Context, asOf time.Time) (affected int64, err error) {
	start := time.Now()
	defer func() { observe("MarkOverdueInstallments", start, err) }()

	sql := `
        UPDATE cuotas c
        SET estado = $1, actualizado_en = NOW()
        FROM prestamos p
        WHERE c.prestamo_id = p.id
          AND c.estado = $2
          AND c.fecha_vencimiento < $3::date
          AND p.estado = ANY($4)`

	cmdTag, err := r.db.Exec(ctx, sql, loan.InstallmentOverdue, loan.InstallmentPending, loan.DateOnly(asOf), openLoanStates)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to mark overdue installments", "error", err)
		return 0, fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
	}
	return cmdTag.RowsAffected(), nil
}

// MarkOverdueLoans moves active loans with at least one overdue installment to vencido.
func (r *LoanRepository) MarkOverdueLoans(ctx context.Context) (affected int64, err error) {
	start := time.Now()
	defer func() { observe("MarkOverdueLoans", start, err) }()

	sql := `
        UPDATE prestamos p
        SET estado = $1, actualizado_en = NOW()
        WHERE p.estado = $2
          AND EXISTS (SELECT 1 FROM cuotas c WHERE c.prestamo_id = p.id AND c.estado = $3)`

	cmdTag, err := r.db.Exec(ctx, sql, loan.StateOverdue, loan.StateActive, loan.InstallmentOverdue)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to mark overdue loans", "error", err)
		return 0, fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
	}
	return cmdTag.RowsAffected(), nil
}

// RestoreCurrentLoans moves vencido loans back to activo once no installment is overdue.
func (r *LoanRepository) RestoreCurrentLoans(ctx context.Context) (affected int64, err error) {
	start := time.Now()
	defer func() { observe("RestoreCurrentLoans", start, err) }()

	sql := `
        UPDATE prestamos p
        SET estado = $1, actualizado_en = NOW()
        WHERE p.estado = $2
          AND NOT EXISTS (SELECT 1 FROM cuotas c WHERE c.prestamo_id = p.id AND c.estado = $3)`

	cmdTag, err := r.db.Exec(ctx, sql, loan.StateActive, loan.StateOverdue, loan.InstallmentOverdue)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to restore current loans", "error", err)
		return 0, fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
	}
	return cmdTag.RowsAffected(), nil
}
