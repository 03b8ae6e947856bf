// internal/payment/store.go
package payment

import (
	"context"

	"funnel-workers/internal/models"
)

// OrderStore persists payment orders and enrollments. Implementations return
// ORDER_NOT_FOUND style StandardErrors for missing rows; the coordinator
// never sees driver-level errors directly.
type OrderStore interface {
	GetOrder(ctx context.Context, orderID string) (*models.PaymentOrder, error)
	GetOrderByProviderRef(ctx context.Context, providerOrderRef string) (*models.PaymentOrder, error)
	GetOrderByReservation(ctx context.Context, reservationID string) (*models.PaymentOrder, error)
	SaveOrder(ctx context.Context, order *models.PaymentOrder) error

	GetEnrollmentByOrder(ctx context.Context, orderID string) (*models.Enrollment, error)
	SaveEnrollment(ctx context.Context, enrollment *models.Enrollment) error
}
