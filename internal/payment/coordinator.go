// internal/payment/coordinator.go
package payment

import (
	"context"
	"sync"
	"time"

	"funnel-workers/internal/common/config"
	"funnel-workers/internal/common/errors"
	"funnel-workers/internal/common/logger"
	"funnel-workers/internal/common/metrics"
	"funnel-workers/internal/models"
	"funnel-workers/internal/seats"

	"github.com/google/uuid"
)

// VerifyInput carries the fields of a payment completion callback.
type VerifyInput struct {
	ProviderOrderRef   string `json:"providerOrderRef"`
	ProviderPaymentRef string `json:"providerPaymentRef"`
	Signature          string `json:"signature"`
	Amount             int64  `json:"amount"`
	Currency           string `json:"currency"`
}

// Coordinator drives a reservation through order creation and payment
// verification, ending in exactly one Enrollment per paid seat. Verification
// is idempotent: a redelivered callback for an already-verified order returns
// the existing enrollment without touching seat state again.
type Coordinator struct {
	store   OrderStore
	gateway Gateway
	seats   *seats.Manager
	program config.ProgramConfig
	secret  string
	now     func() time.Time
	logger  logger.Logger

	// verifyMu serializes VerifyPayment so concurrent redeliveries of the
	// same callback cannot both pass the status check.
	verifyMu sync.Mutex
}

// CoordinatorOptions configures a Coordinator.
type CoordinatorOptions struct {
	Program       config.ProgramConfig
	WebhookSecret string

	// Now overrides the clock; tests only.
	Now func() time.Time
}

func NewCoordinator(store OrderStore, gateway Gateway, seatManager *seats.Manager, opts CoordinatorOptions, log logger.Logger) *Coordinator {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Coordinator{
		store:   store,
		gateway: gateway,
		seats:   seatManager,
		program: opts.Program,
		secret:  opts.WebhookSecret,
		now:     now,
		logger:  log.WithFields(map[string]interface{}{"component": "payment"}),
	}
}

// PublishableKey is the client-side gateway key for the checkout widget.
func (c *Coordinator) PublishableKey() string {
	return c.gateway.PublishableKey()
}

// CreateOrder registers a provider order for a pending reservation. Repeating
// the call for the same reservation returns the existing open order; a
// reservation that already finished (verified or failed order, confirmed or
// released seat) fails with ALREADY_FINALIZED. The gateway call runs outside
// any seat pool lock.
func (c *Coordinator) CreateOrder(ctx context.Context, reservationID string) (*models.PaymentOrder, error) {
	reservation, err := c.seats.GetReservation(ctx, reservationID)
	if err != nil {
		return nil, err
	}

	switch reservation.Status {
	case models.ReservationPending:
		// proceed
	case models.ReservationExpired:
		return nil, errors.NewReservationExpiredError(reservationID)
	default:
		return nil, errors.NewAlreadyFinalizedError("reservation", reservationID, reservation.Status)
	}

	if reservation.ExpiredBy(c.now()) {
		return nil, errors.NewReservationExpiredError(reservationID)
	}

	existing, err := c.store.GetOrderByReservation(ctx, reservationID)
	switch {
	case err == nil && existing.Status == models.OrderCreated:
		return existing, nil
	case err == nil:
		return nil, errors.NewAlreadyFinalizedError("order", existing.OrderID, existing.Status)
	case codeOf(err) != errors.ErrCodeOrderNotFound:
		return nil, err
	}

	providerOrderRef, err := c.gateway.CreateOrder(ctx, c.program.PriceAmount, c.program.PriceCurrency, reservationID)
	if err != nil {
		return nil, err
	}

	order := &models.PaymentOrder{
		OrderID:          uuid.New().String(),
		ReservationID:    reservationID,
		Amount:           c.program.PriceAmount,
		Currency:         c.program.PriceCurrency,
		ProviderOrderRef: providerOrderRef,
		Status:           models.OrderCreated,
		CreatedAt:        c.now(),
	}
	if err := c.store.SaveOrder(ctx, order); err != nil {
		return nil, err
	}

	c.logger.Info("payment order created", map[string]interface{}{
		"orderId":          order.OrderID,
		"reservationId":    reservationID,
		"providerOrderRef": providerOrderRef,
		"amount":           order.Amount,
	})
	return order, nil
}

// VerifyPayment validates a payment callback and finalizes the enrollment.
// Checks run in order: signature, amount, then seat confirmation. A failure
// before seat confirmation leaves the order open so a corrected callback can
// still land; an expired reservation fails the order permanently.
func (c *Coordinator) VerifyPayment(ctx context.Context, input VerifyInput) (*models.Enrollment, error) {
	c.verifyMu.Lock()
	defer c.verifyMu.Unlock()

	order, err := c.store.GetOrderByProviderRef(ctx, input.ProviderOrderRef)
	if err != nil {
		metrics.PaymentVerifications.WithLabelValues("order_not_found").Inc()
		return nil, err
	}

	switch order.Status {
	case models.OrderVerified:
		// Redelivered callback. The enrollment already exists.
		metrics.PaymentVerifications.WithLabelValues("replayed").Inc()
		return c.store.GetEnrollmentByOrder(ctx, order.OrderID)
	case models.OrderFailed:
		metrics.PaymentVerifications.WithLabelValues("already_failed").Inc()
		return nil, errors.NewAlreadyFinalizedError("order", order.OrderID, order.Status)
	}

	if !VerifySignature(c.secret, input.ProviderOrderRef, input.ProviderPaymentRef, input.Signature) {
		metrics.PaymentVerifications.WithLabelValues("signature_mismatch").Inc()
		c.logger.Warn("payment signature mismatch", map[string]interface{}{
			"orderId":          order.OrderID,
			"providerOrderRef": input.ProviderOrderRef,
		})
		return nil, errors.NewSignatureMismatchError(input.ProviderOrderRef)
	}

	if input.Amount != order.Amount || input.Currency != order.Currency {
		metrics.PaymentVerifications.WithLabelValues("amount_mismatch").Inc()
		return nil, errors.NewAmountMismatchError(order.OrderID)
	}

	if err := c.confirmSeat(ctx, order); err != nil {
		return nil, err
	}

	order.Status = models.OrderVerified
	order.ProviderPaymentRef = input.ProviderPaymentRef
	if err := c.store.SaveOrder(ctx, order); err != nil {
		return nil, err
	}

	enrollment := &models.Enrollment{
		EnrollmentID:  uuid.New().String(),
		ReservationID: order.ReservationID,
		OrderID:       order.OrderID,
		CreatedAt:     c.now(),
	}
	if err := c.store.SaveEnrollment(ctx, enrollment); err != nil {
		return nil, err
	}

	metrics.PaymentVerifications.WithLabelValues("verified").Inc()
	c.logger.Info("payment verified, enrollment created", map[string]interface{}{
		"orderId":       order.OrderID,
		"enrollmentId":  enrollment.EnrollmentID,
		"reservationId": order.ReservationID,
	})
	return enrollment, nil
}

// confirmSeat confirms the reservation behind an order. An expired
// reservation fails the order permanently; a seat already confirmed by a
// crashed earlier attempt is accepted so verification can finish.
func (c *Coordinator) confirmSeat(ctx context.Context, order *models.PaymentOrder) error {
	err := c.seats.Confirm(ctx, order.ReservationID)
	if err == nil {
		return nil
	}

	switch codeOf(err) {
	case errors.ErrCodeReservationExpired:
		order.Status = models.OrderFailed
		if saveErr := c.store.SaveOrder(ctx, order); saveErr != nil {
			return saveErr
		}
		metrics.PaymentVerifications.WithLabelValues("reservation_expired").Inc()
		c.logger.Warn("payment arrived after reservation expiry", map[string]interface{}{
			"orderId":       order.OrderID,
			"reservationId": order.ReservationID,
		})
		return err
	case errors.ErrCodeAlreadyFinalized:
		reservation, lookupErr := c.seats.GetReservation(ctx, order.ReservationID)
		if lookupErr == nil && reservation.Status == models.ReservationConfirmed {
			return nil
		}
		return err
	default:
		return err
	}
}

func codeOf(err error) errors.ErrorCode {
	if stdErr, ok := err.(*errors.StandardError); ok {
		return stdErr.Code
	}
	return ""
}
