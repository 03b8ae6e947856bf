// internal/workers/payment/verify-payment/handler_test.go
package verifypayment

import (
	"context"
	"fmt"
	"testing"
	"time"

	"funnel-workers/internal/common/config"
	"funnel-workers/internal/common/errors"
	"funnel-workers/internal/common/logger"
	"funnel-workers/internal/models"
	"funnel-workers/internal/payment"
	"funnel-workers/internal/seats"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testWebhookSecret = "whsec_test"

type stubGateway struct{ calls int }

func (g *stubGateway) CreateOrder(ctx context.Context, amount int64, currency, receipt string) (string, error) {
	g.calls++
	return fmt.Sprintf("order_prov_%d", g.calls), nil
}

func (g *stubGateway) PublishableKey() string { return "rzp_test_key" }

type fixture struct {
	handler     *Handler
	coordinator *payment.Coordinator
	manager     *seats.Manager
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	log := logger.NewTestLogger(t)

	manager := seats.NewManager(
		seats.NewMemoryRepository(25),
		seats.Options{TotalSeats: 25, ReservationTTL: 15 * time.Minute},
		log,
	)
	coordinator := payment.NewCoordinator(
		payment.NewMemoryStore(), &stubGateway{}, manager,
		payment.CoordinatorOptions{
			Program: config.ProgramConfig{
				ProgramID:     "founding-member",
				PriceAmount:   4999900,
				PriceCurrency: "INR",
			},
			WebhookSecret: testWebhookSecret,
		},
		log,
	)
	return &fixture{
		handler:     NewHandler(LoadConfig(), coordinator, log),
		coordinator: coordinator,
		manager:     manager,
	}
}

func (f *fixture) createOrder(t *testing.T) *models.PaymentOrder {
	t.Helper()
	ctx := context.Background()
	reservation, err := f.manager.Reserve(ctx, "founding-member", "visitor-1")
	require.NoError(t, err)
	order, err := f.coordinator.CreateOrder(ctx, reservation.ReservationID)
	require.NoError(t, err)
	return order
}

func signedInput(order *models.PaymentOrder, paymentRef string) *Input {
	return &Input{
		ProviderOrderRef:   order.ProviderOrderRef,
		ProviderPaymentRef: paymentRef,
		Signature:          payment.ComputeSignature(testWebhookSecret, order.ProviderOrderRef, paymentRef),
		Amount:             order.Amount,
		Currency:           order.Currency,
	}
}

func TestHandler_Execute_VerifiesAndEnrolls(t *testing.T) {
	f := newFixture(t)
	order := f.createOrder(t)

	output, err := f.handler.Execute(context.Background(), signedInput(order, "pay_123"))
	require.NoError(t, err)
	assert.True(t, output.Enrolled)
	assert.NotEmpty(t, output.EnrollmentID)
	assert.Equal(t, order.OrderID, output.OrderID)
	assert.Equal(t, order.ReservationID, output.ReservationID)
}

func TestHandler_Execute_RedeliveryReturnsSameEnrollment(t *testing.T) {
	f := newFixture(t)
	order := f.createOrder(t)
	input := signedInput(order, "pay_123")
	ctx := context.Background()

	first, err := f.handler.Execute(ctx, input)
	require.NoError(t, err)
	second, err := f.handler.Execute(ctx, input)
	require.NoError(t, err)
	assert.Equal(t, first.EnrollmentID, second.EnrollmentID)
}

func TestHandler_Execute_BadSignature(t *testing.T) {
	f := newFixture(t)
	order := f.createOrder(t)

	input := signedInput(order, "pay_123")
	input.Signature = payment.ComputeSignature("wrong", order.ProviderOrderRef, "pay_123")

	_, err := f.handler.Execute(context.Background(), input)
	require.Error(t, err)

	stdErr, ok := err.(*errors.StandardError)
	require.True(t, ok)
	assert.Equal(t, errors.ErrCodeSignatureMismatch, stdErr.Code)
	assert.False(t, stdErr.Retryable)
}

func TestHandler_Execute_AmountMismatch(t *testing.T) {
	f := newFixture(t)
	order := f.createOrder(t)

	input := signedInput(order, "pay_123")
	input.Amount = 1

	_, err := f.handler.Execute(context.Background(), input)
	require.Error(t, err)

	stdErr, ok := err.(*errors.StandardError)
	require.True(t, ok)
	assert.Equal(t, errors.ErrCodeAmountMismatch, stdErr.Code)
}

func TestHandler_Execute_MissingFields(t *testing.T) {
	f := newFixture(t)

	_, err := f.handler.Execute(context.Background(), &Input{ProviderOrderRef: "order_1"})
	require.Error(t, err)

	stdErr, ok := err.(*errors.StandardError)
	require.True(t, ok)
	assert.Equal(t, errors.ErrCodeValidationFailed, stdErr.Code)
}
