package loan

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

type Repository interface {
	// CreateLoanWithInstallments stores the loan and its schedule in one transaction.
	CreateLoanWithInstallments(ctx context.Context, l *Loan) (*Loan, error)

	GetLoanByID(ctx context.Context, loanID int64) (*Loan, error)

	GetLoanInTx(ctx context.Context, tx pgx.Tx, loanID int64) (*Loan, error)

	GetLoanForUpdateInTx(ctx context.Context, tx pgx.Tx, loanID int64) (*Loan, error)

	GetInstallmentsByLoanID(ctx context.Context, loanID int64) ([]Installment, error)

	GetInstallmentForUpdateInTx(ctx context.Context, tx pgx.Tx, installmentID int64) (*Installment, error)

	UpdateInstallmentInTx(ctx context.Context, tx pgx.Tx, inst *Installment) error

	InsertPaymentInTx(ctx context.Context, tx pgx.Tx, p *Payment) (*Payment, error)

	CountUnpaidInstallmentsInTx(ctx context.Context, tx pgx.Tx, loanID int64) (int, error)

	UpdateLoanStateInTx(ctx context.Context, tx pgx.Tx, loanID int64, state LoanState) error

	UpdateLoanInTx(ctx context.Context, tx pgx.Tx, loanID int64, patch LoanPatch) error

	DeleteLoan(ctx context.Context, loanID int64) error

	ListLoans(ctx context.Context, filter ListFilter) ([]Loan, error)

	ListPaymentsByLoanID(ctx context.Context, loanID int64) ([]Payment, error)

	ListPendingInstallmentsByClient(ctx context.Context, clientID int64, collectorID *int64) ([]PendingInstallment, error)

	ListClientsWithPending(ctx context.Context, collectorID *int64) ([]ClientWithPending, error)

	GetTotalOutstandingAmount(ctx context.Context, loanID int64) (decimal.Decimal, error)

	MarkOverdueInstallments(ctx context.Context, asOf time.Time) (int64, error)

	MarkOverdueLoans(ctx context.Context) (int64, error)

	RestoreCurrentLoans(ctx context.Context) (int64, error)

	BeginTx(ctx context.Context) (pgx.Tx, error)

	CommitTx(ctx context.Context, tx pgx.Tx) error

	RollbackTx(ctx context.Context, tx pgx.Tx) error
}
