package loan

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

type MockRepository struct {
	mock.Mock
}

type TxMock struct {
	pgx.Tx
}

var tx pgx.Tx = &TxMock{}

func (m *MockRepository) CreateLoanWithInstallments(ctx context.Context, l *Loan) (*Loan, error) {
	args := m.Called(ctx, l)
	if rf, ok := args.Get(0).(func(context.Context, *Loan) *Loan); ok {
		return rf(ctx, l), args.Error(1)
	}
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Loan), args.Error(1)
}

func (m *MockRepository) GetLoanByID(ctx context.Context, loanID int64) (*Loan, error) {
	args := m.Called(ctx, loanID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Loan), args.Error(1)
}

func (m *MockRepository) GetLoanInTx(ctx context.Context, tx pgx.Tx, loanID int64) (*Loan, error) {
	args := m.Called(ctx, tx, loanID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Loan), args.Error(1)
}

func (m *MockRepository) GetLoanForUpdateInTx(ctx context.Context, tx pgx.Tx, loanID int64) (*Loan, error) {
	args := m.Called(ctx, tx, loanID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Loan), args.Error(1)
}

func (m *MockRepository) GetInstallmentsByLoanID(ctx context.Context, loanID int64) ([]Installment, error) {
	args := m.Called(ctx, loanID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]Installment), args.Error(1)
}

func (m *MockRepository) GetInstallmentForUpdateInTx(ctx context.Context, tx pgx.Tx, installmentID int64) (*Installment, error) {
	args := m.Called(ctx, tx, installmentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Installment), args.Error(1)
}

func (m *MockRepository) UpdateInstallmentInTx(ctx context.Context, tx pgx.Tx, inst *Installment) error {
	return m.Called(ctx, tx, inst).Error(0)
}

func (m *MockRepository) InsertPaymentInTx(ctx context.Context, tx pgx.Tx, p *Payment) (*Payment, error) {
	args := m.Called(ctx, tx, p)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Payment), args.Error(1)
}

func (m *MockRepository) CountUnpaidInstallmentsInTx(ctx context.Context, tx pgx.Tx, loanID int64) (int, error) {
	args := m.Called(ctx, tx, loanID)
	return args.Int(0), args.Error(1)
}

func (m *MockRepository) UpdateLoanStateInTx(ctx context.Context, tx pgx.Tx, loanID int64, state LoanState) error {
	return m.Called(ctx, tx, loanID, state).Error(0)
}

func (m *MockRepository) UpdateLoanInTx(ctx context.Context, tx pgx.Tx, loanID int64, patch LoanPatch) error {
	return m.Called(ctx, tx, loanID, patch).Error(0)
}

func (m *MockRepository) DeleteLoan(ctx context.Context, loanID int64) error {
	return m.Called(ctx, loanID).Error(0)
}

func (m *MockRepository) ListLoans(ctx context.Context, filter ListFilter) ([]Loan, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]Loan), args.Error(1)
}

func (m *MockRepository) ListPaymentsByLoanID(ctx context.Context, loanID int64) ([]Payment, error) {
	args := m.Called(ctx, loanID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]Payment), args.Error(1)
}

func (m *MockRepository) ListPendingInstallmentsByClient(ctx context.Context, clientID int64, collectorID *int64) ([]PendingInstallment, error) {
	args := m.Called(ctx, clientID, collectorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]PendingInstallment), args.Error(1)
}

func (m *MockRepository) ListClientsWithPending(ctx context.Context, collectorID *int64) ([]ClientWithPending, error) {
	args := m.Called(ctx, collectorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]ClientWithPending), args.Error(1)
}

func (m *MockRepository) GetTotalOutstandingAmount(ctx context.Context, loanID int64) (decimal.Decimal, error) {
	args := m.Called(ctx, loanID)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockRepository) MarkOverdueInstallments(ctx context.Context, asOf time.Time) (int64, error) {
	args := m.Called(ctx, asOf)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockRepository) MarkOverdueLoans(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockRepository) RestoreCurrentLoans(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockRepository) BeginTx(ctx context.Context) (pgx.Tx, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(pgx.Tx), args.Error(1)
}

func (m *MockRepository) CommitTx(ctx context.Context, tx pgx.Tx) error {
	return m.Called(ctx, tx).Error(0)
}

func (m *MockRepository) RollbackTx(ctx context.Context, tx pgx.Tx) error {
	return m.Called(ctx, tx).Error(0)
}
