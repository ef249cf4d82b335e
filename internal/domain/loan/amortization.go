package loan

import (
	"lending-engine/internal/pkg/apperrors"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Amortization is the flat-interest breakdown of a loan. Values are not rounded;
// rounding to cents happens only when amounts are rendered.
type Amortization struct {
	Principal      decimal.Decimal
	RatePercent    decimal.Decimal
	Count          int
	Interest       decimal.Decimal
	Total          decimal.Decimal
	PerInstallment decimal.Decimal
}

func Amortize(principal, ratePercent decimal.Decimal, count int) (Amortization, error) {
	if !principal.IsPositive() {
		return Amortization{}, apperrors.NewValidationError("monto_prestado", "principal must be greater than zero")
	}
	if ratePercent.IsNegative() {
		return Amortization{}, apperrors.NewValidationError("tasa_interes", "interest rate cannot be negative")
	}
	if count < 1 {
		return Amortization{}, apperrors.NewValidationError("numero_cuotas", "installment count must be at least 1")
	}

	interest := principal.Mul(ratePercent).Div(hundred)
	total := principal.Add(interest)

	return Amortization{
		Principal:      principal,
		RatePercent:    ratePercent,
		Count:          count,
		Interest:       interest,
		Total:          total,
		PerInstallment: total.Div(decimal.NewFromInt(int64(count))),
	}, nil
}
