package event

import (
	"context"
	"log/slog"
)

// LogEventPublisher is used when no broker is configured. Events are only logged.
type LogEventPublisher struct {
	logger *slog.Logger
}

func NewLogEventPublisher(logger *slog.Logger) *LogEventPublisher {
	return &LogEventPublisher{logger: logger.With("component", "LogEventPublisher")}
}

func (p *LogEventPublisher) PublishLoanCreated(ctx context.Context, event LoanCreatedEvent) error {
	p.logger.InfoContext(ctx, "Event", "routingKey", RoutingKeyLoanCreated, "loanId", event.LoanID, "clientId", event.ClientID)
	return nil
}

func (p *LogEventPublisher) PublishPaymentRecorded(ctx context.Context, event PaymentRecordedEvent) error {
	p.logger.InfoContext(ctx, "Event", "routingKey", RoutingKeyPaymentRecorded, "paymentId", event.PaymentID, "loanId", event.LoanID)
	return nil
}

func (p *LogEventPublisher) PublishLoanCompleted(ctx context.Context, event LoanCompletedEvent) error {
	p.logger.InfoContext(ctx, "Event", "routingKey", RoutingKeyLoanCompleted, "loanId", event.LoanID)
	return nil
}
