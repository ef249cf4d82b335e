package loan

import (
	"fmt"
	"lending-engine/internal/pkg/apperrors"

	"github.com/shopspring/decimal"
)

// PaymentEpsilon absorbs cent-level rounding when comparing payments to balances.
var PaymentEpsilon = decimal.RequireFromString("0.01")

type PendingBalanceError struct {
	InstallmentID int64
	Pending       decimal.Decimal
	Attempted     decimal.Decimal
}

func (e *PendingBalanceError) Error() string {
	return fmt.Sprintf("%s: installment %d has %s pending, got %s",
		apperrors.ErrAmountExceedsPending, e.InstallmentID, e.Pending.StringFixed(2), e.Attempted.StringFixed(2))
}

func (e *PendingBalanceError) Unwrap() error {
	return apperrors.ErrAmountExceedsPending
}

// ValidatePaymentAmount accepts positive amounts in whole cents.
func ValidatePaymentAmount(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return fmt.Errorf("%w: amount must be greater than zero", apperrors.ErrInvalidPaymentAmount)
	}
	if !amount.Equal(amount.Round(2)) {
		return fmt.Errorf("%w: amount %s has more than two decimal places", apperrors.ErrInvalidPaymentAmount, amount)
	}
	return nil
}

// ApplyPayment adds amount to the installment's paid total and recomputes its state.
// A rejected payment leaves inst untouched.
func ApplyPayment(inst *Installment, amount decimal.Decimal) error {
	if err := ValidatePaymentAmount(amount); err != nil {
		return err
	}

	pending := inst.Amount.Sub(inst.PaidAmount)
	if amount.GreaterThan(pending.Add(PaymentEpsilon)) {
		return &PendingBalanceError{InstallmentID: inst.ID, Pending: inst.Pending(), Attempted: amount}
	}

	inst.PaidAmount = inst.PaidAmount.Add(amount)
	if inst.PaidAmount.GreaterThanOrEqual(inst.Amount.Sub(PaymentEpsilon)) {
		inst.State = InstallmentPaid
	} else {
		inst.State = InstallmentPending
	}
	return nil
}
