package handler

import (
	"fmt"
	"lending-engine/internal/api/handler/dto"
	"lending-engine/internal/domain/loan"
	"lending-engine/internal/pkg/apperrors"
	"log/slog"
	"net/http"
	"strconv"
)

type LoanHandler struct {
	service loan.LoanService
	logger  *slog.Logger
}

func NewLoanHandler(s loan.LoanService, l *slog.Logger) *LoanHandler {
	return &LoanHandler{
		service: s,
		logger:  l.With("component", "LoanHandler"),
	}
}

// CreateLoan handles the creation of a new loan.
//
// @Summary Create a new loan
// @Description Computes the flat-interest amortization and stores the loan with its full installment schedule. Collectors are assigned to the loans they create.
// @Tags Loans
// @Accept json
// @Produce json
// @Param request body dto.CreateLoanRequest true "Loan creation request payload"
// @Success 201 {object} dto.LoanResponse "Loan successfully created"
// @Failure 400 {object} dto.ErrorResponse "Invalid request payload or validation error"
// @Failure 404 {object} dto.ErrorResponse "Client not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /loans [post]
// @Security BearerAuth
func (h *LoanHandler) CreateLoan(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFrom(r)
	if err != nil {
		respondError(w, err)
		return
	}

	var req dto.CreateLoanRequest
	if err := decodeAndValidate(r, &req); err != nil {
		respondError(w, err)
		return
	}
	in, err := req.ToInput(actor)
	if err != nil {
		respondError(w, err)
		return
	}

	created, err := h.service.CreateLoan(r.Context(), in)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, dto.NewLoanResponse(created, true))
}

// ListLoans lists loans, optionally filtered by estado, cliente_id and cobrador_id.
//
// @Summary List loans
// @Tags Loans
// @Produce json
// @Param estado query string false "Loan state"
// @Param cliente_id query int false "Client ID"
// @Param cobrador_id query int false "Collector ID (ignored for collectors)"
// @Success 200 {array} dto.LoanResponse
// @Failure 400 {object} dto.ErrorResponse
// @Router /loans [get]
// @Security BearerAuth
func (h *LoanHandler) ListLoans(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFrom(r)
	if err != nil {
		respondError(w, err)
		return
	}
	filter, err := parseListFilter(r)
	if err != nil {
		respondError(w, err)
		return
	}

	loans, err := h.service.ListLoans(r.Context(), filter, actor)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, dto.NewLoanListResponse(loans))
}

func parseListFilter(r *http.Request) (loan.ListFilter, error) {
	var filter loan.ListFilter
	q := r.URL.Query()

	if v := q.Get("estado"); v != "" {
		st, err := loan.ParseLoanState(v)
		if err != nil {
			return filter, err
		}
		filter.State = &st
	}
	for _, p := range []struct {
		name string
		dst  **int64
	}{
		{"cliente_id", &filter.ClientID},
		{"cobrador_id", &filter.CollectorID},
	} {
		v := q.Get(p.name)
		if v == "" {
			continue
		}
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return filter, fmt.Errorf("%w: %s must be an integer", apperrors.ErrInvalidArgument, p.name)
		}
		*p.dst = &id
	}
	return filter, nil
}

// GetLoan retrieves a loan together with its installment schedule.
//
// @Summary Retrieve loan details
// @Tags Loans
// @Produce json
// @Param loanID path int true "Loan ID"
// @Success 200 {object} dto.LoanResponse "Loan details successfully retrieved"
// @Failure 400 {object} dto.ErrorResponse "Invalid loan ID"
// @Failure 403 {object} dto.ErrorResponse "Loan assigned to another collector"
// @Failure 404 {object} dto.ErrorResponse "Loan not found"
// @Router /loans/{loanID} [get]
// @Security BearerAuth
func (h *LoanHandler) GetLoan(w http.ResponseWriter, r *http.Request) {
	loanID, err := parseIDParam(r, "loanID")
	if err != nil {
		respondError(w, err)
		return
	}
	actor, err := actorFrom(r)
	if err != nil {
		respondError(w, err)
		return
	}

	l, err := h.service.GetLoan(r.Context(), loanID, actor)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, dto.NewLoanResponse(l, true))
}

// GetSchedule
//
// @Summary Installment schedule of a loan
// @Tags Loans
// @Produce json
// @Param loanID path int true "Loan ID"
// @Success 200 {array} dto.InstallmentResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /loans/{loanID}/installments [get]
// @Security BearerAuth
func (h *LoanHandler) GetSchedule(w http.ResponseWriter, r *http.Request) {
	loanID, err := parseIDParam(r, "loanID")
	if err != nil {
		respondError(w, err)
		return
	}

	schedule, err := h.service.GetLoanSchedule(r.Context(), loanID)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, dto.NewInstallmentListResponse(schedule))
}

// UpdateLoan
//
// @Summary Update a loan
// @Description Reassigns the collector, changes notes or moves the loan to another state. Financial terms cannot change.
// @Tags Loans
// @Accept json
// @Produce json
// @Param loanID path int true "Loan ID"
// @Param request body dto.UpdateLoanRequest true "Fields to change"
// @Success 200 {object} dto.LoanResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse "Invalid state transition"
// @Router /loans/{loanID} [put]
// @Security BearerAuth
func (h *LoanHandler) UpdateLoan(w http.ResponseWriter, r *http.Request) {
	loanID, err := parseIDParam(r, "loanID")
	if err != nil {
		respondError(w, err)
		return
	}

	var req dto.UpdateLoanRequest
	if err := decodeAndValidate(r, &req); err != nil {
		respondError(w, err)
		return
	}
	patch, err := req.ToPatch()
	if err != nil {
		respondError(w, err)
		return
	}

	updated, err := h.service.UpdateLoan(r.Context(), loanID, patch)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, dto.NewLoanResponse(updated, false))
}

// DeleteLoan removes a loan with its installments and payments.
//
// @Summary Delete a loan
// @Tags Loans
// @Param loanID path int true "Loan ID"
// @Success 204
// @Failure 404 {object} dto.ErrorResponse
// @Router /loans/{loanID} [delete]
// @Security BearerAuth
func (h *LoanHandler) DeleteLoan(w http.ResponseWriter, r *http.Request) {
	loanID, err := parseIDParam(r, "loanID")
	if err != nil {
		respondError(w, err)
		return
	}

	if err := h.service.DeleteLoan(r.Context(), loanID); err != nil {
		respondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetOutstanding retrieves the outstanding amount for a specific loan.
//
// @Summary Retrieve outstanding loan amount
// @Tags Loans
// @Produce json
// @Param loanID path int true "Loan ID"
// @Success 200 {object} dto.OutstandingResponse "Outstanding amount successfully retrieved"
// @Failure 400 {object} dto.ErrorResponse "Invalid loan ID"
// @Failure 404 {object} dto.ErrorResponse "Loan not found"
// @Router /loans/{loanID}/outstanding [get]
// @Security BearerAuth
func (h *LoanHandler) GetOutstanding(w http.ResponseWriter, r *http.Request) {
	loanID, err := parseIDParam(r, "loanID")
	if err != nil {
		respondError(w, err)
		return
	}

	outstanding, err := h.service.GetOutstanding(r.Context(), loanID)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, dto.OutstandingResponse{
		LoanID:            strconv.FormatInt(loanID, 10),
		OutstandingAmount: outstanding.StringFixed(2),
	})
}

// ListPayments
//
// @Summary Payment history of a loan
// @Tags Payments
// @Produce json
// @Param loanID path int true "Loan ID"
// @Success 200 {array} dto.PaymentResponse
// @Router /loans/{loanID}/payments [get]
// @Security BearerAuth
func (h *LoanHandler) ListPayments(w http.ResponseWriter, r *http.Request) {
	loanID, err := parseIDParam(r, "loanID")
	if err != nil {
		respondError(w, err)
		return
	}

	payments, err := h.service.ListPayments(r.Context(), loanID)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, dto.NewPaymentListResponse(payments))
}

// RecordPayment settles part or all of one installment.
//
// @Summary Record a payment
// @Description Applies the amount to the given installment of the loan. Amounts above the pending balance (plus a one cent tolerance) are rejected with the pending balance in the error body.
// @Tags Payments
// @Accept json
// @Produce json
// @Param loanID path int true "Loan ID"
// @Param request body dto.RecordPaymentRequest true "Payment request payload"
// @Success 201 {object} dto.PaymentReceiptResponse "Payment recorded"
// @Failure 400 {object} dto.ErrorResponse "Invalid amount or payload"
// @Failure 403 {object} dto.ErrorResponse "Loan assigned to another collector"
// @Failure 404 {object} dto.ErrorResponse "Installment not found"
// @Failure 409 {object} dto.ErrorResponse "Amount exceeds pending balance, installment of another loan, or loan closed"
// @Router /loans/{loanID}/payments [post]
// @Security BearerAuth
func (h *LoanHandler) RecordPayment(w http.ResponseWriter, r *http.Request) {
	loanID, err := parseIDParam(r, "loanID")
	if err != nil {
		respondError(w, err)
		return
	}
	actor, err := actorFrom(r)
	if err != nil {
		respondError(w, err)
		return
	}

	var req dto.RecordPaymentRequest
	if err := decodeAndValidate(r, &req); err != nil {
		respondError(w, err)
		return
	}
	in, err := req.ToInput(loanID, actor)
	if err != nil {
		respondError(w, err)
		return
	}

	receipt, err := h.service.RecordPayment(r.Context(), in)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, dto.NewPaymentReceiptResponse(receipt))
}

// ReconcileLoan recomputes the loan state from its installments.
//
// @Summary Reconcile loan state
// @Tags Loans
// @Produce json
// @Param loanID path int true "Loan ID"
// @Success 200 {object} dto.ReconcileResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /loans/{loanID}/reconcile [post]
// @Security BearerAuth
func (h *LoanHandler) ReconcileLoan(w http.ResponseWriter, r *http.Request) {
	loanID, err := parseIDParam(r, "loanID")
	if err != nil {
		respondError(w, err)
		return
	}

	state, err := h.service.ReconcileLoan(r.Context(), loanID)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, dto.ReconcileResponse{LoanID: strconv.FormatInt(loanID, 10), State: string(state)})
}
