package dto

import (
	"errors"
	"lending-engine/internal/domain/loan"
	"lending-engine/internal/domain/user"
	"lending-engine/internal/pkg/apperrors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validCreateLoanRequest() CreateLoanRequest {
	return CreateLoanRequest{
		ClientID:         3,
		Principal:        decimal.RequireFromString("1000"),
		InterestRate:     decimal.RequireFromString("10"),
		InstallmentCount: 10,
		Frequency:        "mensual",
		StartDate:        "2024-01-15",
	}
}

func TestValidate_CreateLoanRequest(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(r *CreateLoanRequest)
		field  string
	}{
		{name: "valid", mutate: func(r *CreateLoanRequest) {}},
		{name: "missing client", mutate: func(r *CreateLoanRequest) { r.ClientID = 0 }, field: "cliente_id"},
		{name: "zero installments", mutate: func(r *CreateLoanRequest) { r.InstallmentCount = 0 }, field: "numero_cuotas"},
		{name: "unknown frequency", mutate: func(r *CreateLoanRequest) { r.Frequency = "anual" }, field: "frecuencia_pago"},
		{name: "bad date", mutate: func(r *CreateLoanRequest) { r.StartDate = "15/01/2024" }, field: "fecha_inicio"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validCreateLoanRequest()
			tt.mutate(&req)

			err := Validate(&req)

			if tt.field == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.ErrorIs(t, err, apperrors.ErrValidation)
			var ve *apperrors.ValidationError
			require.True(t, errors.As(err, &ve))
			assert.Equal(t, tt.field, ve.Field)
		})
	}
}

func TestCreateLoanRequest_ToInput(t *testing.T) {
	req := validCreateLoanRequest()
	actor := user.Actor{ID: 7, Role: user.RoleCollector}

	in, err := req.ToInput(actor)

	require.NoError(t, err)
	assert.Equal(t, loan.FrequencyMonthly, in.Frequency)
	assert.Equal(t, time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), in.StartDate)
	assert.Equal(t, actor, in.Actor)
	assert.True(t, in.Principal.Equal(decimal.NewFromInt(1000)))
}

func TestUpdateLoanRequest_ToPatch(t *testing.T) {
	state := "cancelado"
	req := UpdateLoanRequest{State: &state, ClearCollector: true}

	patch, err := req.ToPatch()

	require.NoError(t, err)
	require.NotNil(t, patch.State)
	assert.Equal(t, loan.StateCancelled, *patch.State)
	assert.True(t, patch.ClearCollector)
	assert.False(t, patch.IsEmpty())
}

func TestRecordPaymentRequest_ToInputDefaultsMethod(t *testing.T) {
	req := RecordPaymentRequest{InstallmentID: 5, Amount: decimal.RequireFromString("110")}

	in, err := req.ToInput(9, user.Actor{ID: 1, Role: user.RoleAdmin})

	require.NoError(t, err)
	assert.Equal(t, int64(9), in.LoanID)
	assert.Equal(t, loan.MethodCash, in.Method)
	assert.True(t, in.PaymentDate.IsZero())
}

func TestNewLoanResponse(t *testing.T) {
	collector := int64(7)
	l := &loan.Loan{
		ID:                1,
		ClientID:          3,
		CollectorID:       &collector,
		CreatedBy:         1,
		Principal:         decimal.RequireFromString("1000"),
		InterestRate:      decimal.RequireFromString("10"),
		InstallmentCount:  3,
		Frequency:         loan.FrequencyWeekly,
		StartDate:         time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		EndDate:           time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
		TotalPayable:      decimal.RequireFromString("1100"),
		InstallmentAmount: decimal.RequireFromString("1100").Div(decimal.NewFromInt(3)),
		State:             loan.StateActive,
		Installments: []loan.Installment{
			{
				ID: 10, LoanID: 1, Number: 1,
				DueDate:    time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
				Amount:     decimal.RequireFromString("1100").Div(decimal.NewFromInt(3)),
				PaidAmount: decimal.RequireFromString("100"),
				State:      loan.InstallmentPending,
			},
		},
	}

	t.Run("without schedule", func(t *testing.T) {
		resp := NewLoanResponse(l, false)

		assert.Equal(t, "1", resp.ID)
		assert.Equal(t, "7", *resp.CollectorID)
		assert.Equal(t, "1000.00", resp.Principal)
		assert.Equal(t, "10", resp.InterestRate)
		assert.Equal(t, "366.67", resp.InstallmentAmount)
		assert.Equal(t, "2024-01-15", resp.EndDate)
		assert.Nil(t, resp.Installments)
	})

	t.Run("with schedule", func(t *testing.T) {
		resp := NewLoanResponse(l, true)

		require.Len(t, resp.Installments, 1)
		inst := resp.Installments[0]
		assert.Equal(t, "2024-01-01", inst.DueDate)
		assert.Equal(t, "100.00", inst.PaidAmount)
		assert.Equal(t, "266.67", inst.Pending)
		assert.Equal(t, loan.DisplayPartial, inst.State)
	})
}
