package loan

import (
	"context"
	"errors"
	"fmt"
	"lending-engine/internal/pkg/apperrors"

	"github.com/looplab/fsm"
)

const (
	eventComplete    = "complete"
	eventMarkOverdue = "mark_overdue"
	eventRestore     = "restore"
	eventCancel      = "cancel"
	eventReactivate  = "reactivate"
)

// LoanStateMachine wraps a loan with the transitions its state may take.
type LoanStateMachine struct {
	loan *Loan
	fsm  *fsm.FSM
}

func NewLoanStateMachine(l *Loan) *LoanStateMachine {
	m := &LoanStateMachine{loan: l}
	m.fsm = fsm.NewFSM(
		string(l.State),
		fsm.Events{
			// every installment settled
			{Name: eventComplete, Src: []string{string(StateActive), string(StateOverdue), string(StateCancelled)}, Dst: string(StateCompleted)},

			// overdue sweep
			{Name: eventMarkOverdue, Src: []string{string(StateActive)}, Dst: string(StateOverdue)},
			{Name: eventRestore, Src: []string{string(StateOverdue)}, Dst: string(StateActive)},

			// administrative overrides
			{Name: eventCancel, Src: []string{string(StateActive), string(StateOverdue)}, Dst: string(StateCancelled)},
			{Name: eventReactivate, Src: []string{string(StateCancelled)}, Dst: string(StateActive)},
		},
		fsm.Callbacks{},
	)
	return m
}

func (m *LoanStateMachine) Current() LoanState {
	return LoanState(m.fsm.Current())
}

func (m *LoanStateMachine) Can(target LoanState) bool {
	event, ok := eventFor(m.Current(), target)
	return ok && m.fsm.Can(event)
}

// TransitionTo moves the loan to target, updating the wrapped loan on success.
// Moving to the current state is a no-op.
func (m *LoanStateMachine) TransitionTo(ctx context.Context, target LoanState) error {
	current := m.Current()
	if current == target {
		return nil
	}

	event, ok := eventFor(current, target)
	if !ok {
		return fmt.Errorf("%w: %s -> %s", apperrors.ErrInvalidStateTransition, current, target)
	}

	if err := m.fsm.Event(ctx, event); err != nil {
		var noTransition fsm.NoTransitionError
		if errors.As(err, &noTransition) {
			return nil
		}
		return fmt.Errorf("%w: %s -> %s: %v", apperrors.ErrInvalidStateTransition, current, target, err)
	}

	m.loan.State = m.Current()
	return nil
}

func eventFor(current, target LoanState) (string, bool) {
	switch target {
	case StateCompleted:
		return eventComplete, true
	case StateOverdue:
		return eventMarkOverdue, true
	case StateCancelled:
		return eventCancel, true
	case StateActive:
		if current == StateCancelled {
			return eventReactivate, true
		}
		return eventRestore, true
	}
	return "", false
}

// Reconcile completes the loan once no installment is left unpaid. It never
// reopens a loan and calling it again with the same inputs changes nothing.
func Reconcile(ctx context.Context, l *Loan, unpaidCount int) (bool, error) {
	if unpaidCount > 0 || l.State == StateCompleted {
		return false, nil
	}
	if err := NewLoanStateMachine(l).TransitionTo(ctx, StateCompleted); err != nil {
		return false, err
	}
	return true, nil
}
