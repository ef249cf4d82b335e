package loan

import (
	"fmt"
	"lending-engine/internal/pkg/apperrors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type LoanState string

const (
	StateActive    LoanState = "activo"
	StateCompleted LoanState = "completado"
	StateOverdue   LoanState = "vencido"
	StateCancelled LoanState = "cancelado"
)

func ParseLoanState(s string) (LoanState, error) {
	switch st := LoanState(strings.ToLower(strings.TrimSpace(s))); st {
	case StateActive, StateCompleted, StateOverdue, StateCancelled:
		return st, nil
	default:
		return "", apperrors.NewValidationError("estado", fmt.Sprintf("unknown loan state %q", s))
	}
}

// AcceptsPayments reports whether installments of a loan in this state can still be settled.
func (s LoanState) AcceptsPayments() bool {
	return s == StateActive || s == StateOverdue
}

type InstallmentState string

const (
	InstallmentPending InstallmentState = "pendiente"
	InstallmentPaid    InstallmentState = "pagada"
	InstallmentOverdue InstallmentState = "vencida"
)

// DisplayPartial is never persisted. It is derived for presentation from the paid amount.
const DisplayPartial = "parcial"

type PaymentMethod string

const (
	MethodCash     PaymentMethod = "efectivo"
	MethodTransfer PaymentMethod = "transferencia"
	MethodCheck    PaymentMethod = "cheque"
	MethodOther    PaymentMethod = "otro"
)

func ParsePaymentMethod(s string) (PaymentMethod, error) {
	if strings.TrimSpace(s) == "" {
		return MethodCash, nil
	}
	switch m := PaymentMethod(strings.ToLower(strings.TrimSpace(s))); m {
	case MethodCash, MethodTransfer, MethodCheck, MethodOther:
		return m, nil
	default:
		return "", apperrors.NewValidationError("metodo_pago", fmt.Sprintf("unknown payment method %q", s))
	}
}

type Loan struct {
	ID                int64
	ClientID          int64
	CollectorID       *int64
	CreatedBy         int64
	Principal         decimal.Decimal
	InterestRate      decimal.Decimal
	InstallmentCount  int
	Frequency         Frequency
	StartDate         time.Time
	EndDate           time.Time
	TotalPayable      decimal.Decimal
	InstallmentAmount decimal.Decimal
	State             LoanState
	Notes             *string
	CreatedAt         time.Time
	UpdatedAt         time.Time
	Installments      []Installment
}

// AssignedTo reports whether the loan is assigned to the given collector.
func (l *Loan) AssignedTo(collectorID int64) bool {
	return l.CollectorID != nil && *l.CollectorID == collectorID
}

type Installment struct {
	ID         int64
	LoanID     int64
	Number     int
	DueDate    time.Time
	Amount     decimal.Decimal
	PaidAmount decimal.Decimal
	State      InstallmentState
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Pending is the nominal amount minus what has been paid, never below zero.
func (i *Installment) Pending() decimal.Decimal {
	pending := i.Amount.Sub(i.PaidAmount)
	if pending.IsNegative() {
		return decimal.Zero
	}
	return pending
}

func (i *Installment) IsPaid() bool {
	return i.State == InstallmentPaid
}

func (i *Installment) DisplayState() string {
	if i.State != InstallmentPaid && i.PaidAmount.IsPositive() && i.PaidAmount.LessThan(i.Amount) {
		return DisplayPartial
	}
	return string(i.State)
}

type Payment struct {
	ID                int64
	InstallmentID     int64
	LoanID            int64
	ClientID          int64
	CollectorID       int64
	Amount            decimal.Decimal
	PaymentDate       time.Time
	Method            PaymentMethod
	Reference         *string
	Notes             *string
	CreatedAt         time.Time
	InstallmentNumber int
	CollectorName     *string
}

// PaymentReceipt is the outcome of a successfully recorded payment.
type PaymentReceipt struct {
	Payment          Payment
	Installment      Installment
	RemainingBalance decimal.Decimal
	LoanState        LoanState
	LoanCompleted    bool
}

type PendingInstallment struct {
	Installment
	ClientID        int64
	ClientFirstName string
	ClientLastName  string
	ClientPhone     *string
	ClientAddress   *string
	LoanPrincipal   decimal.Decimal
}

type ClientWithPending struct {
	ClientID      int64
	FirstName     string
	LastName      string
	NationalID    string
	Phone         *string
	Address       *string
	LoanCount     int
	PendingCount  int
	PendingAmount decimal.Decimal
}

type ListFilter struct {
	State       *LoanState
	ClientID    *int64
	CollectorID *int64
}

// NewLoan computes the amortization and the full installment schedule for a loan that has not been persisted yet.
func NewLoan(clientID int64, principal, ratePercent decimal.Decimal, count int, freq Frequency, startDate time.Time) (*Loan, error) {
	if startDate.IsZero() {
		return nil, apperrors.NewValidationError("fecha_inicio", "start date is required")
	}

	am, err := Amortize(principal, ratePercent, count)
	if err != nil {
		return nil, err
	}

	start := DateOnly(startDate)
	schedule, err := GenerateSchedule(0, start, count, freq, am.PerInstallment)
	if err != nil {
		return nil, err
	}

	return &Loan{
		ClientID:          clientID,
		Principal:         am.Principal,
		InterestRate:      am.RatePercent,
		InstallmentCount:  count,
		Frequency:         freq,
		StartDate:         start,
		EndDate:           schedule[len(schedule)-1].DueDate,
		TotalPayable:      am.Total,
		InstallmentAmount: am.PerInstallment,
		State:             StateActive,
		Installments:      schedule,
	}, nil
}

// DateOnly drops the clock part of t, keeping its calendar day in t's location.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
