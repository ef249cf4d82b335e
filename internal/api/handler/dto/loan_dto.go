package dto

import (
	"lending-engine/internal/domain/loan"
	"lending-engine/internal/domain/user"
	"time"

	"github.com/shopspring/decimal"
)

type CreateLoanRequest struct {
	ClientID         int64           `json:"cliente_id" validate:"required,gt=0"`
	CollectorID      *int64          `json:"cobrador_id" validate:"omitempty,gt=0"`
	Principal        decimal.Decimal `json:"monto_prestado"`
	InterestRate     decimal.Decimal `json:"tasa_interes"`
	InstallmentCount int             `json:"numero_cuotas" validate:"required,min=1"`
	Frequency        string          `json:"frecuencia_pago" validate:"required,oneof=diario semanal quincenal mensual"`
	StartDate        string          `json:"fecha_inicio" validate:"required,datetime=2006-01-02"`
	Notes            *string         `json:"notas"`
}

func (r *CreateLoanRequest) ToInput(actor user.Actor) (loan.CreateLoanInput, error) {
	freq, err := loan.ParseFrequency(r.Frequency)
	if err != nil {
		return loan.CreateLoanInput{}, err
	}
	start, err := ParseDate("fecha_inicio", r.StartDate)
	if err != nil {
		return loan.CreateLoanInput{}, err
	}
	return loan.CreateLoanInput{
		ClientID:         r.ClientID,
		CollectorID:      r.CollectorID,
		Principal:        r.Principal,
		InterestRate:     r.InterestRate,
		InstallmentCount: r.InstallmentCount,
		Frequency:        freq,
		StartDate:        start,
		Notes:            r.Notes,
		Actor:            actor,
	}, nil
}

// UpdateLoanRequest sets cobrador_id to null through ClearCollector, since a JSON null cannot be told apart from an absent key.
type UpdateLoanRequest struct {
	CollectorID    *int64  `json:"cobrador_id" validate:"omitempty,gt=0"`
	ClearCollector bool    `json:"quitar_cobrador"`
	State          *string `json:"estado" validate:"omitempty,oneof=activo completado vencido cancelado"`
	Notes          *string `json:"notas"`
}

func (r *UpdateLoanRequest) ToPatch() (loan.LoanPatch, error) {
	patch := loan.LoanPatch{
		CollectorID:    r.CollectorID,
		ClearCollector: r.ClearCollector,
		Notes:          r.Notes,
	}
	if r.State != nil {
		st, err := loan.ParseLoanState(*r.State)
		if err != nil {
			return loan.LoanPatch{}, err
		}
		patch.State = &st
	}
	return patch, nil
}

type LoanResponse struct {
	ID                string                `json:"id"`
	ClientID          string                `json:"cliente_id"`
	CollectorID       *string               `json:"cobrador_id,omitempty"`
	CreatedBy         string                `json:"creado_por"`
	Principal         string                `json:"monto_prestado"`
	InterestRate      string                `json:"tasa_interes"`
	InstallmentCount  int                   `json:"numero_cuotas"`
	Frequency         string                `json:"frecuencia_pago"`
	StartDate         string                `json:"fecha_inicio"`
	EndDate           string                `json:"fecha_fin"`
	TotalPayable      string                `json:"monto_total"`
	InstallmentAmount string                `json:"monto_cuota"`
	State             string                `json:"estado"`
	Notes             *string               `json:"notas,omitempty"`
	CreatedAt         time.Time             `json:"creado_en"`
	UpdatedAt         time.Time             `json:"actualizado_en"`
	Installments      []InstallmentResponse `json:"cuotas,omitempty"`
}

func NewLoanResponse(l *loan.Loan, includeSchedule bool) LoanResponse {
	resp := LoanResponse{
		ID:                formatID(l.ID),
		ClientID:          formatID(l.ClientID),
		CollectorID:       formatOptionalID(l.CollectorID),
		CreatedBy:         formatID(l.CreatedBy),
		Principal:         formatMoney(l.Principal),
		InterestRate:      l.InterestRate.String(),
		InstallmentCount:  l.InstallmentCount,
		Frequency:         string(l.Frequency),
		StartDate:         l.StartDate.Format(dateLayout),
		EndDate:           l.EndDate.Format(dateLayout),
		TotalPayable:      formatMoney(l.TotalPayable),
		InstallmentAmount: formatMoney(l.InstallmentAmount),
		State:             string(l.State),
		Notes:             l.Notes,
		CreatedAt:         l.CreatedAt,
		UpdatedAt:         l.UpdatedAt,
	}
	if includeSchedule && l.Installments != nil {
		resp.Installments = NewInstallmentListResponse(l.Installments)
	}
	return resp
}

func NewLoanListResponse(loans []loan.Loan) []LoanResponse {
	resp := make([]LoanResponse, len(loans))
	for i := range loans {
		resp[i] = NewLoanResponse(&loans[i], false)
	}
	return resp
}

type InstallmentResponse struct {
	ID         string `json:"id"`
	LoanID     string `json:"prestamo_id"`
	Number     int    `json:"numero_cuota"`
	DueDate    string `json:"fecha_vencimiento"`
	Amount     string `json:"monto"`
	PaidAmount string `json:"monto_pagado"`
	Pending    string `json:"saldo_pendiente"`
	State      string `json:"estado"`
}

func NewInstallmentResponse(inst *loan.Installment) InstallmentResponse {
	return InstallmentResponse{
		ID:         formatID(inst.ID),
		LoanID:     formatID(inst.LoanID),
		Number:     inst.Number,
		DueDate:    inst.DueDate.Format(dateLayout),
		Amount:     formatMoney(inst.Amount),
		PaidAmount: formatMoney(inst.PaidAmount),
		Pending:    formatMoney(inst.Pending()),
		State:      inst.DisplayState(),
	}
}

func NewInstallmentListResponse(installments []loan.Installment) []InstallmentResponse {
	resp := make([]InstallmentResponse, len(installments))
	for i := range installments {
		resp[i] = NewInstallmentResponse(&installments[i])
	}
	return resp
}

type OutstandingResponse struct {
	LoanID            string `json:"prestamo_id"`
	OutstandingAmount string `json:"monto_pendiente"`
}

type ReconcileResponse struct {
	LoanID string `json:"prestamo_id"`
	State  string `json:"estado"`
}
