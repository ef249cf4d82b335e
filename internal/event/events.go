package event

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

const (
	RoutingKeyLoanCreated     = "loan.created"
	RoutingKeyPaymentRecorded = "payment.recorded"
	RoutingKeyLoanCompleted   = "loan.completed"
)

type EventPublisher interface {
	PublishLoanCreated(ctx context.Context, event LoanCreatedEvent) error
	PublishPaymentRecorded(ctx context.Context, event PaymentRecordedEvent) error
	PublishLoanCompleted(ctx context.Context, event LoanCompletedEvent) error
}

type LoanCreatedEvent struct {
	LoanID           int64           `json:"loanId"`
	ClientID         int64           `json:"clientId"`
	CollectorID      *int64          `json:"collectorId,omitempty"`
	Principal        decimal.Decimal `json:"principal"`
	TotalPayable     decimal.Decimal `json:"totalPayable"`
	InstallmentCount int             `json:"installmentCount"`
	Frequency        string          `json:"frequency"`
	StartDate        string          `json:"startDate"`
	EndDate          string          `json:"endDate"`
	Timestamp        time.Time       `json:"timestamp"`
}

type PaymentRecordedEvent struct {
	PaymentID        int64           `json:"paymentId"`
	LoanID           int64           `json:"loanId"`
	InstallmentID    int64           `json:"installmentId"`
	ClientID         int64           `json:"clientId"`
	CollectorID      int64           `json:"collectorId"`
	Amount           decimal.Decimal `json:"amount"`
	Method           string          `json:"method"`
	InstallmentState string          `json:"installmentState"`
	RemainingBalance decimal.Decimal `json:"remainingBalance"`
	Timestamp        time.Time       `json:"timestamp"`
}

type LoanCompletedEvent struct {
	LoanID    int64     `json:"loanId"`
	ClientID  int64     `json:"clientId"`
	Timestamp time.Time `json:"timestamp"`
}
