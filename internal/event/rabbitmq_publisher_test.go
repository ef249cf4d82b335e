package event

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var logger = slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))

type MockChannel struct {
	mock.Mock
}

func (m *MockChannel) ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error {
	return m.Called(name, kind, durable, autoDelete, internal, noWait, args).Error(0)
}

func (m *MockChannel) PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error {
	return m.Called(ctx, exchange, key, mandatory, immediate, msg).Error(0)
}

func (m *MockChannel) Close() error {
	return m.Called().Error(0)
}

func opener(ch *MockChannel) ChannelOpener {
	return func() (Channel, error) { return ch, nil }
}

func TestNewRabbitMQEventPublisher(t *testing.T) {
	t.Run("declares a durable topic exchange", func(t *testing.T) {
		ch := new(MockChannel)
		ch.On("ExchangeDeclare", "lending", amqp.ExchangeTopic, true, false, false, false, amqp.Table(nil)).Return(nil)
		ch.On("Close").Return(nil)

		p, err := NewRabbitMQEventPublisher(opener(ch), "lending", logger)

		require.NoError(t, err)
		assert.NotNil(t, p)
		ch.AssertExpectations(t)
	})

	t.Run("fails without exchange name", func(t *testing.T) {
		_, err := NewRabbitMQEventPublisher(opener(new(MockChannel)), "", logger)
		assert.Error(t, err)
	})

	t.Run("surfaces declaration errors", func(t *testing.T) {
		ch := new(MockChannel)
		ch.On("ExchangeDeclare", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
			Return(errors.New("access refused"))
		ch.On("Close").Return(nil)

		_, err := NewRabbitMQEventPublisher(opener(ch), "lending", logger)
		assert.ErrorContains(t, err, "access refused")
	})
}

func TestPublishPaymentRecorded(t *testing.T) {
	ch := new(MockChannel)
	ch.On("ExchangeDeclare", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)
	ch.On("Close").Return(nil)

	var published amqp.Publishing
	ch.On("PublishWithContext", mock.Anything, "lending", RoutingKeyPaymentRecorded, false, false, mock.Anything).
		Run(func(args mock.Arguments) { published = args.Get(5).(amqp.Publishing) }).
		Return(nil)

	p, err := NewRabbitMQEventPublisher(opener(ch), "lending", logger)
	require.NoError(t, err)

	err = p.PublishPaymentRecorded(context.Background(), PaymentRecordedEvent{
		PaymentID:        11,
		LoanID:           3,
		Amount:           decimal.RequireFromString("40"),
		InstallmentState: "pendiente",
		RemainingBalance: decimal.RequireFromString("60"),
		Timestamp:        time.Now(),
	})
	require.NoError(t, err)

	assert.Equal(t, "application/json", published.ContentType)
	assert.Equal(t, amqp.Persistent, published.DeliveryMode)
	assert.Equal(t, publisherAppID, published.AppId)
	assert.NotEmpty(t, published.MessageId)

	var body map[string]any
	require.NoError(t, json.Unmarshal(published.Body, &body))
	assert.Equal(t, "40", body["amount"])
	assert.Equal(t, "pendiente", body["installmentState"])
}

func TestPublishFailsWhenChannelCannotOpen(t *testing.T) {
	p := &RabbitMQEventPublisher{
		open:         func() (Channel, error) { return nil, errors.New("connection closed") },
		exchangeName: "lending",
		logger:       logger,
	}

	err := p.PublishLoanCompleted(context.Background(), LoanCompletedEvent{LoanID: 1})
	assert.ErrorContains(t, err, "failed to open channel")
}

func TestLogEventPublisherNeverFails(t *testing.T) {
	p := NewLogEventPublisher(logger)
	ctx := context.Background()

	assert.NoError(t, p.PublishLoanCreated(ctx, LoanCreatedEvent{LoanID: 1}))
	assert.NoError(t, p.PublishPaymentRecorded(ctx, PaymentRecordedEvent{PaymentID: 1}))
	assert.NoError(t, p.PublishLoanCompleted(ctx, LoanCompletedEvent{LoanID: 1}))
}
