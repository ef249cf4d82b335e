package loan

import (
	"context"
	"errors"
	"fmt"
	"lending-engine/internal/domain/client"
	"lending-engine/internal/domain/user"
	"lending-engine/internal/event"
	"lending-engine/internal/infrastructure/monitoring"
	"lending-engine/internal/pkg/apperrors"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

type ClientReader interface {
	FindByID(ctx context.Context, clientID int64) (*client.Client, error)
}

type CollectorReader interface {
	FindByID(ctx context.Context, userID int64) (*user.User, error)
}

type CreateLoanInput struct {
	ClientID         int64
	CollectorID      *int64
	Principal        decimal.Decimal
	InterestRate     decimal.Decimal
	InstallmentCount int
	Frequency        Frequency
	StartDate        time.Time
	Notes            *string
	Actor            user.Actor
}

type RecordPaymentInput struct {
	LoanID        int64
	InstallmentID int64
	Amount        decimal.Decimal
	PaymentDate   time.Time
	Method        PaymentMethod
	Reference     *string
	Notes         *string
	Actor         user.Actor
}

type LoanService interface {
	CreateLoan(ctx context.Context, in CreateLoanInput) (*Loan, error)

	RecordPayment(ctx context.Context, in RecordPaymentInput) (*PaymentReceipt, error)

	ReconcileLoan(ctx context.Context, loanID int64) (LoanState, error)

	GetLoan(ctx context.Context, loanID int64, actor user.Actor) (*Loan, error)

	GetLoanSchedule(ctx context.Context, loanID int64) ([]Installment, error)

	ListLoans(ctx context.Context, filter ListFilter, actor user.Actor) ([]Loan, error)

	UpdateLoan(ctx context.Context, loanID int64, patch LoanPatch) (*Loan, error)

	DeleteLoan(ctx context.Context, loanID int64) error

	GetOutstanding(ctx context.Context, loanID int64) (decimal.Decimal, error)

	ListPayments(ctx context.Context, loanID int64) ([]Payment, error)

	ListPendingInstallments(ctx context.Context, clientID int64, actor user.Actor) ([]PendingInstallment, error)

	ListClientsWithPending(ctx context.Context, actor user.Actor) ([]ClientWithPending, error)
}

type loanServiceImpl struct {
	repo       Repository
	clients    ClientReader
	collectors CollectorReader
	publisher  event.EventPublisher
	logger     *slog.Logger
	now        func() time.Time
}

func NewLoanService(r Repository, clients ClientReader, collectors CollectorReader, publisher event.EventPublisher, logger *slog.Logger) LoanService {
	return &loanServiceImpl{
		repo:       r,
		clients:    clients,
		collectors: collectors,
		publisher:  publisher,
		logger:     logger.With("component", "LoanService"),
		now:        time.Now,
	}
}

func (s *loanServiceImpl) CreateLoan(ctx context.Context, in CreateLoanInput) (*Loan, error) {
	s.logger.InfoContext(ctx, "Creating new loan", "clientID", in.ClientID, "actorID", in.Actor.ID)

	cl, err := s.clients.FindByID(ctx, in.ClientID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			s.logger.WarnContext(ctx, "Client not found", "clientID", in.ClientID)
			return nil, fmt.Errorf("%w: client %d not found", apperrors.ErrNotFound, in.ClientID)
		}
		s.logger.ErrorContext(ctx, "Failed to load client", "clientID", in.ClientID, "error", err)
		return nil, fmt.Errorf("failed to verify client: %w", err)
	}
	if !cl.Active {
		s.logger.WarnContext(ctx, "Attempted to create loan for inactive client", "clientID", in.ClientID)
		return nil, apperrors.NewValidationError("cliente_id", fmt.Sprintf("client %d is not active", in.ClientID))
	}

	collectorID := in.CollectorID
	if collectorID == nil && in.Actor.IsCollector() {
		collectorID = &in.Actor.ID
	}
	if collectorID != nil {
		if err := s.ensureCollector(ctx, *collectorID); err != nil {
			return nil, err
		}
	}

	newLoan, err := NewLoan(in.ClientID, in.Principal, in.InterestRate, in.InstallmentCount, in.Frequency, in.StartDate)
	if err != nil {
		s.logger.WarnContext(ctx, "Rejected loan terms", "error", err)
		return nil, err
	}
	if in.InstallmentCount == 1 {
		s.logger.WarnContext(ctx, "Single installment loan is due on its start date", "clientID", in.ClientID)
	}
	newLoan.CollectorID = collectorID
	newLoan.CreatedBy = in.Actor.ID
	newLoan.Notes = in.Notes

	created, err := s.repo.CreateLoanWithInstallments(ctx, newLoan)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to save loan and schedule", "error", err)
		return nil, fmt.Errorf("%w: failed to save loan and schedule: %w", apperrors.ErrInternalServer, err)
	}

	monitoring.RecordLoanCreated()
	s.logger.InfoContext(ctx, "Loan created successfully", "loanID", created.ID, "clientID", created.ClientID,
		"installments", len(created.Installments), "total", created.TotalPayable.StringFixed(2))

	s.publish(ctx, func(ctx context.Context) error {
		return s.publisher.PublishLoanCreated(ctx, event.LoanCreatedEvent{
			LoanID:           created.ID,
			ClientID:         created.ClientID,
			CollectorID:      created.CollectorID,
			Principal:        created.Principal,
			TotalPayable:     created.TotalPayable,
			InstallmentCount: created.InstallmentCount,
			Frequency:        string(created.Frequency),
			StartDate:        created.StartDate.Format(time.DateOnly),
			EndDate:          created.EndDate.Format(time.DateOnly),
			Timestamp:        s.now(),
		})
	})

	return created, nil
}

func (s *loanServiceImpl) ensureCollector(ctx context.Context, collectorID int64) error {
	u, err := s.collectors.FindByID(ctx, collectorID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return apperrors.NewValidationError("cobrador_id", fmt.Sprintf("collector %d not found", collectorID))
		}
		return fmt.Errorf("failed to verify collector: %w", err)
	}
	if !u.IsActiveCollector() {
		return apperrors.NewValidationError("cobrador_id", fmt.Sprintf("user %d is not an active collector", collectorID))
	}
	return nil
}

func (s *loanServiceImpl) publish(ctx context.Context, fn func(context.Context) error) {
	if s.publisher == nil {
		return
	}
	if err := fn(ctx); err != nil {
		s.logger.WarnContext(ctx, "Failed to publish domain event", "error", err)
	}
}

func paymentOutcome(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, apperrors.ErrInvalidPaymentAmount):
		return "failure_amount"
	case errors.Is(err, apperrors.ErrAmountExceedsPending):
		return "failure_exceeds_pending"
	case errors.Is(err, apperrors.ErrInstallmentLoanMismatch):
		return "failure_mismatch"
	case errors.Is(err, apperrors.ErrLoanClosed):
		return "failure_loan_closed"
	case errors.Is(err, apperrors.ErrNotFound):
		return "failure_not_found"
	case errors.Is(err, apperrors.ErrForbidden):
		return "failure_forbidden"
	default:
		return "failure_internal"
	}
}

func (s *loanServiceImpl) RecordPayment(ctx context.Context, in RecordPaymentInput) (receipt *PaymentReceipt, err error) {
	logCtx := s.logger.With("loanID", in.LoanID, "installmentID", in.InstallmentID)
	logCtx.InfoContext(ctx, "Recording payment", "amount", in.Amount.String())

	if in.Method == "" {
		in.Method = MethodCash
	}
	if in.PaymentDate.IsZero() {
		in.PaymentDate = s.now()
	}
	if err = ValidatePaymentAmount(in.Amount); err != nil {
		monitoring.RecordPayment(paymentOutcome(err))
		return nil, err
	}

	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		logCtx.ErrorContext(ctx, "Failed to begin transaction", "error", err)
		monitoring.RecordPayment(paymentOutcome(err))
		return nil, fmt.Errorf("%w: could not begin transaction: %w", apperrors.ErrInternalServer, err)
	}

	defer func() {
		monitoring.RecordPayment(paymentOutcome(err))
		if p := recover(); p != nil {
			logCtx.ErrorContext(ctx, "Panic occurred during payment processing", "error", p)
			_ = s.repo.RollbackTx(ctx, tx)
			panic(p)
		} else if err != nil {
			logCtx.WarnContext(ctx, "Rolling back payment transaction", "error", err)
			_ = s.repo.RollbackTx(ctx, tx)
		}
	}()

	inst, err := s.repo.GetInstallmentForUpdateInTx(ctx, tx, in.InstallmentID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: installment %d not found", apperrors.ErrNotFound, in.InstallmentID)
		}
		return nil, fmt.Errorf("%w: could not lock installment: %w", apperrors.ErrInternalServer, err)
	}
	if inst.LoanID != in.LoanID {
		return nil, fmt.Errorf("%w: installment %d belongs to loan %d, not %d",
			apperrors.ErrInstallmentLoanMismatch, inst.ID, inst.LoanID, in.LoanID)
	}

	// Locked so a concurrent cancel either commits first and is seen here, or waits for this payment.
	l, err := s.repo.GetLoanForUpdateInTx(ctx, tx, in.LoanID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: loan %d not found", apperrors.ErrNotFound, in.LoanID)
		}
		return nil, fmt.Errorf("%w: could not load loan: %w", apperrors.ErrInternalServer, err)
	}
	if in.Actor.IsCollector() && !l.AssignedTo(in.Actor.ID) {
		return nil, fmt.Errorf("%w: loan %d is not assigned to collector %d", apperrors.ErrForbidden, l.ID, in.Actor.ID)
	}
	if !l.State.AcceptsPayments() {
		return nil, fmt.Errorf("%w: loan %d is %s", apperrors.ErrLoanClosed, l.ID, l.State)
	}

	if err = ApplyPayment(inst, in.Amount); err != nil {
		return nil, err
	}

	if err = s.repo.UpdateInstallmentInTx(ctx, tx, inst); err != nil {
		return nil, fmt.Errorf("%w: could not update installment: %w", apperrors.ErrInternalServer, err)
	}

	payment, err := s.repo.InsertPaymentInTx(ctx, tx, &Payment{
		InstallmentID: inst.ID,
		LoanID:        l.ID,
		ClientID:      l.ClientID,
		CollectorID:   in.Actor.ID,
		Amount:        in.Amount,
		PaymentDate:   in.PaymentDate,
		Method:        in.Method,
		Reference:     in.Reference,
		Notes:         in.Notes,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: could not record payment: %w", apperrors.ErrInternalServer, err)
	}

	completed, err := s.reconcileInTx(ctx, tx, l.ID)
	if err != nil {
		return nil, err
	}

	if err = s.repo.CommitTx(ctx, tx); err != nil {
		return nil, fmt.Errorf("%w: could not commit transaction: %w", apperrors.ErrInternalServer, err)
	}

	receipt = &PaymentReceipt{
		Payment:          *payment,
		Installment:      *inst,
		RemainingBalance: inst.Pending(),
		LoanState:        completed.State,
		LoanCompleted:    completed.changed,
	}
	logCtx.InfoContext(ctx, "Payment processed successfully", "paymentID", payment.ID,
		"installmentState", inst.State, "loanState", completed.State)

	s.publish(ctx, func(ctx context.Context) error {
		return s.publisher.PublishPaymentRecorded(ctx, event.PaymentRecordedEvent{
			PaymentID:        payment.ID,
			LoanID:           l.ID,
			InstallmentID:    inst.ID,
			ClientID:         l.ClientID,
			CollectorID:      in.Actor.ID,
			Amount:           in.Amount,
			Method:           string(in.Method),
			InstallmentState: string(inst.State),
			RemainingBalance: receipt.RemainingBalance,
			Timestamp:        s.now(),
		})
	})
	if completed.changed {
		s.publishCompleted(ctx, l)
	}

	return receipt, nil
}

type reconcileResult struct {
	State   LoanState
	changed bool
}

// reconcileInTx locks the loan row so concurrent payments on sibling installments observe each other's commits.
func (s *loanServiceImpl) reconcileInTx(ctx context.Context, tx pgx.Tx, loanID int64) (reconcileResult, error) {
	l, err := s.repo.GetLoanForUpdateInTx(ctx, tx, loanID)
	if err != nil {
		return reconcileResult{}, fmt.Errorf("%w: could not lock loan: %w", apperrors.ErrInternalServer, err)
	}

	unpaid, err := s.repo.CountUnpaidInstallmentsInTx(ctx, tx, loanID)
	if err != nil {
		return reconcileResult{}, fmt.Errorf("%w: could not count unpaid installments: %w", apperrors.ErrInternalServer, err)
	}

	changed, err := Reconcile(ctx, l, unpaid)
	if err != nil {
		return reconcileResult{}, err
	}
	if changed {
		if err := s.repo.UpdateLoanStateInTx(ctx, tx, loanID, l.State); err != nil {
			return reconcileResult{}, fmt.Errorf("%w: could not update loan state: %w", apperrors.ErrInternalServer, err)
		}
		monitoring.RecordLoanCompleted()
		s.logger.InfoContext(ctx, "Loan completed", "loanID", loanID)
	}
	return reconcileResult{State: l.State, changed: changed}, nil
}

func (s *loanServiceImpl) publishCompleted(ctx context.Context, l *Loan) {
	s.publish(ctx, func(ctx context.Context) error {
		return s.publisher.PublishLoanCompleted(ctx, event.LoanCompletedEvent{
			LoanID:    l.ID,
			ClientID:  l.ClientID,
			Timestamp: s.now(),
		})
	})
}

func (s *loanServiceImpl) ReconcileLoan(ctx context.Context, loanID int64) (state LoanState, err error) {
	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		return "", fmt.Errorf("%w: could not begin transaction: %w", apperrors.ErrInternalServer, err)
	}
	defer func() {
		if err != nil {
			_ = s.repo.RollbackTx(ctx, tx)
		}
	}()

	if _, err = s.repo.GetLoanInTx(ctx, tx, loanID); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return "", fmt.Errorf("%w: loan %d not found", apperrors.ErrNotFound, loanID)
		}
		return "", fmt.Errorf("%w: could not load loan: %w", apperrors.ErrInternalServer, err)
	}

	res, err := s.reconcileInTx(ctx, tx, loanID)
	if err != nil {
		return "", err
	}
	if err = s.repo.CommitTx(ctx, tx); err != nil {
		return "", fmt.Errorf("%w: could not commit transaction: %w", apperrors.ErrInternalServer, err)
	}

	if res.changed {
		if l, getErr := s.repo.GetLoanByID(ctx, loanID); getErr == nil {
			s.publishCompleted(ctx, l)
		}
	}
	return res.State, nil
}

func (s *loanServiceImpl) GetLoan(ctx context.Context, loanID int64, actor user.Actor) (*Loan, error) {
	s.logger.DebugContext(ctx, "Getting loan details", "loanID", loanID)
	l, err := s.repo.GetLoanByID(ctx, loanID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			s.logger.WarnContext(ctx, "Loan not found", "loanID", loanID)
			return nil, fmt.Errorf("%w: loan with ID %d not found", apperrors.ErrNotFound, loanID)
		}
		s.logger.ErrorContext(ctx, "Failed to get loan", "loanID", loanID, "error", err)
		return nil, fmt.Errorf("%w: failed to get loan %d: %w", apperrors.ErrInternalServer, loanID, err)
	}
	if actor.IsCollector() && !l.AssignedTo(actor.ID) {
		return nil, fmt.Errorf("%w: loan %d is not assigned to collector %d", apperrors.ErrForbidden, loanID, actor.ID)
	}

	schedule, err := s.repo.GetInstallmentsByLoanID(ctx, loanID)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to get loan schedule", "loanID", loanID, "error", err)
		return nil, fmt.Errorf("%w: failed to get schedule for loan %d: %w", apperrors.ErrInternalServer, loanID, err)
	}
	l.Installments = schedule
	return l, nil
}

func (s *loanServiceImpl) GetLoanSchedule(ctx context.Context, loanID int64) ([]Installment, error) {
	schedule, err := s.repo.GetInstallmentsByLoanID(ctx, loanID)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to get schedule for loan %d: %w", apperrors.ErrInternalServer, loanID, err)
	}
	if len(schedule) == 0 {
		if _, checkErr := s.repo.GetLoanByID(ctx, loanID); errors.Is(checkErr, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: loan with ID %d not found when getting schedule", apperrors.ErrNotFound, loanID)
		}
	}
	return schedule, nil
}

func (s *loanServiceImpl) ListLoans(ctx context.Context, filter ListFilter, actor user.Actor) ([]Loan, error) {
	if actor.IsCollector() {
		filter.CollectorID = &actor.ID
	}
	loans, err := s.repo.ListLoans(ctx, filter)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to list loans", "error", err)
		return nil, fmt.Errorf("%w: failed to list loans: %w", apperrors.ErrInternalServer, err)
	}
	return loans, nil
}

func (s *loanServiceImpl) UpdateLoan(ctx context.Context, loanID int64, patch LoanPatch) (updated *Loan, err error) {
	if patch.IsEmpty() {
		return nil, apperrors.NewValidationError("", "no fields to update")
	}
	if patch.CollectorID != nil {
		if err := s.ensureCollector(ctx, *patch.CollectorID); err != nil {
			return nil, err
		}
	}

	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: could not begin transaction: %w", apperrors.ErrInternalServer, err)
	}
	defer func() {
		if err != nil {
			_ = s.repo.RollbackTx(ctx, tx)
		}
	}()

	current, err := s.repo.GetLoanForUpdateInTx(ctx, tx, loanID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: loan with ID %d not found", apperrors.ErrNotFound, loanID)
		}
		return nil, fmt.Errorf("%w: could not lock loan: %w", apperrors.ErrInternalServer, err)
	}
	previous := current.State

	if patch.State != nil {
		if err = NewLoanStateMachine(current).TransitionTo(ctx, *patch.State); err != nil {
			s.logger.WarnContext(ctx, "Rejected loan state override", "loanID", loanID, "from", previous, "to", *patch.State)
			return nil, err
		}
	}

	if err = s.repo.UpdateLoanInTx(ctx, tx, loanID, patch); err != nil {
		return nil, fmt.Errorf("%w: could not update loan: %w", apperrors.ErrInternalServer, err)
	}
	if err = s.repo.CommitTx(ctx, tx); err != nil {
		return nil, fmt.Errorf("%w: could not commit transaction: %w", apperrors.ErrInternalServer, err)
	}
	s.logger.InfoContext(ctx, "Loan updated", "loanID", loanID, "previousState", previous, "state", current.State)

	if previous != StateCompleted && current.State == StateCompleted {
		s.publishCompleted(ctx, current)
	}
	return s.repo.GetLoanByID(ctx, loanID)
}

func (s *loanServiceImpl) DeleteLoan(ctx context.Context, loanID int64) error {
	if err := s.repo.DeleteLoan(ctx, loanID); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return fmt.Errorf("%w: loan with ID %d not found", apperrors.ErrNotFound, loanID)
		}
		return fmt.Errorf("%w: failed to delete loan %d: %w", apperrors.ErrInternalServer, loanID, err)
	}
	s.logger.InfoContext(ctx, "Loan deleted", "loanID", loanID)
	return nil
}

func (s *loanServiceImpl) GetOutstanding(ctx context.Context, loanID int64) (decimal.Decimal, error) {
	if _, err := s.repo.GetLoanByID(ctx, loanID); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return decimal.Zero, fmt.Errorf("%w: loan with ID %d not found", apperrors.ErrNotFound, loanID)
		}
		return decimal.Zero, fmt.Errorf("%w: failed to get loan %d: %w", apperrors.ErrInternalServer, loanID, err)
	}

	outstanding, err := s.repo.GetTotalOutstandingAmount(ctx, loanID)
	if err != nil {
		s.logger.WarnContext(ctx, "Failed to get outstanding amount", "loanID", loanID, "error", err)
		return decimal.Zero, fmt.Errorf("%w: failed to get outstanding amount for loan %d: %w", apperrors.ErrInternalServer, loanID, err)
	}
	return outstanding, nil
}

func (s *loanServiceImpl) ListPayments(ctx context.Context, loanID int64) ([]Payment, error) {
	payments, err := s.repo.ListPaymentsByLoanID(ctx, loanID)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to list payments for loan %d: %w", apperrors.ErrInternalServer, loanID, err)
	}
	return payments, nil
}

func (s *loanServiceImpl) ListPendingInstallments(ctx context.Context, clientID int64, actor user.Actor) ([]PendingInstallment, error) {
	var collectorID *int64
	if actor.IsCollector() {
		collectorID = &actor.ID
	}
	pending, err := s.repo.ListPendingInstallmentsByClient(ctx, clientID, collectorID)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to list pending installments for client %d: %w", apperrors.ErrInternalServer, clientID, err)
	}
	return pending, nil
}

func (s *loanServiceImpl) ListClientsWithPending(ctx context.Context, actor user.Actor) ([]ClientWithPending, error) {
	var collectorID *int64
	if actor.IsCollector() {
		collectorID = &actor.ID
	}
	clients, err := s.repo.ListClientsWithPending(ctx, collectorID)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to list clients with pending installments: %w", apperrors.ErrInternalServer, err)
	}
	return clients, nil
}
