package dto

import (
	"lending-engine/internal/domain/loan"
	"lending-engine/internal/domain/user"
	"lending-engine/internal/pkg/apperrors"
	"time"

	"github.com/shopspring/decimal"
)

type RecordPaymentRequest struct {
	InstallmentID int64           `json:"cuota_id" validate:"required,gt=0"`
	Amount        decimal.Decimal `json:"monto"`
	PaymentDate   string          `json:"fecha_pago" validate:"omitempty,datetime=2006-01-02"`
	Method        string          `json:"metodo_pago" validate:"omitempty,oneof=efectivo transferencia cheque otro"`
	Reference     *string         `json:"referencia"`
	Notes         *string         `json:"notas"`
}

func (r *RecordPaymentRequest) ToInput(loanID int64, actor user.Actor) (loan.RecordPaymentInput, error) {
	if !r.Amount.Equal(r.Amount.Round(2)) {
		return loan.RecordPaymentInput{}, apperrors.NewValidationError("monto", "amount must not have more than two decimal places")
	}
	method, err := loan.ParsePaymentMethod(r.Method)
	if err != nil {
		return loan.RecordPaymentInput{}, err
	}
	paidOn, err := ParseDate("fecha_pago", r.PaymentDate)
	if err != nil {
		return loan.RecordPaymentInput{}, err
	}
	return loan.RecordPaymentInput{
		LoanID:        loanID,
		InstallmentID: r.InstallmentID,
		Amount:        r.Amount,
		PaymentDate:   paidOn,
		Method:        method,
		Reference:     r.Reference,
		Notes:         r.Notes,
		Actor:         actor,
	}, nil
}

type PaymentResponse struct {
	ID                string    `json:"id"`
	InstallmentID     string    `json:"cuota_id"`
	InstallmentNumber int       `json:"numero_cuota,omitempty"`
	LoanID            string    `json:"prestamo_id"`
	ClientID          string    `json:"cliente_id"`
	CollectorID       string    `json:"cobrador_id"`
	CollectorName     *string   `json:"cobrador_nombre,omitempty"`
	Amount            string    `json:"monto"`
	PaymentDate       string    `json:"fecha_pago"`
	Method            string    `json:"metodo_pago"`
	Reference         *string   `json:"referencia,omitempty"`
	Notes             *string   `json:"notas,omitempty"`
	CreatedAt         time.Time `json:"creado_en"`
}

func NewPaymentResponse(p *loan.Payment) PaymentResponse {
	return PaymentResponse{
		ID:                formatID(p.ID),
		InstallmentID:     formatID(p.InstallmentID),
		InstallmentNumber: p.InstallmentNumber,
		LoanID:            formatID(p.LoanID),
		ClientID:          formatID(p.ClientID),
		CollectorID:       formatID(p.CollectorID),
		CollectorName:     p.CollectorName,
		Amount:            formatMoney(p.Amount),
		PaymentDate:       p.PaymentDate.Format(dateLayout),
		Method:            string(p.Method),
		Reference:         p.Reference,
		Notes:             p.Notes,
		CreatedAt:         p.CreatedAt,
	}
}

func NewPaymentListResponse(payments []loan.Payment) []PaymentResponse {
	resp := make([]PaymentResponse, len(payments))
	for i := range payments {
		resp[i] = NewPaymentResponse(&payments[i])
	}
	return resp
}

type PaymentReceiptResponse struct {
	Payment          PaymentResponse     `json:"pago"`
	Installment      InstallmentResponse `json:"cuota"`
	RemainingBalance string              `json:"saldo_pendiente"`
	LoanState        string              `json:"estado_prestamo"`
	LoanCompleted    bool                `json:"prestamo_completado"`
}

func NewPaymentReceiptResponse(r *loan.PaymentReceipt) PaymentReceiptResponse {
	return PaymentReceiptResponse{
		Payment:          NewPaymentResponse(&r.Payment),
		Installment:      NewInstallmentResponse(&r.Installment),
		RemainingBalance: formatMoney(r.RemainingBalance),
		LoanState:        string(r.LoanState),
		LoanCompleted:    r.LoanCompleted,
	}
}
