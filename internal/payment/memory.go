// internal/payment/memory.go
package payment

import (
	"context"
	"sync"

	"funnel-workers/internal/common/errors"
	"funnel-workers/internal/models"
)

// MemoryStore keeps orders and enrollments in process memory. Used in tests;
// durable deployments use PostgresStore.
type MemoryStore struct {
	mu          sync.RWMutex
	orders      map[string]*models.PaymentOrder
	enrollments map[string]*models.Enrollment // keyed by orderID
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		orders:      map[string]*models.PaymentOrder{},
		enrollments: map[string]*models.Enrollment{},
	}
}

func (s *MemoryStore) GetOrder(ctx context.Context, orderID string) (*models.PaymentOrder, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	order, ok := s.orders[orderID]
	if !ok {
		return nil, errors.NewOrderNotFoundError(orderID)
	}
	clone := *order
	return &clone, nil
}

func (s *MemoryStore) GetOrderByProviderRef(ctx context.Context, providerOrderRef string) (*models.PaymentOrder, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, order := range s.orders {
		if order.ProviderOrderRef == providerOrderRef {
			clone := *order
			return &clone, nil
		}
	}
	return nil, errors.NewOrderNotFoundError(providerOrderRef)
}

func (s *MemoryStore) GetOrderByReservation(ctx context.Context, reservationID string) (*models.PaymentOrder, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, order := range s.orders {
		if order.ReservationID == reservationID {
			clone := *order
			return &clone, nil
		}
	}
	return nil, errors.NewOrderNotFoundError(reservationID)
}

func (s *MemoryStore) SaveOrder(ctx context.Context, order *models.PaymentOrder) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	clone := *order
	s.orders[order.OrderID] = &clone
	return nil
}

func (s *MemoryStore) GetEnrollmentByOrder(ctx context.Context, orderID string) (*models.Enrollment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	enrollment, ok := s.enrollments[orderID]
	if !ok {
		return nil, errors.NewOrderNotFoundError(orderID)
	}
	clone := *enrollment
	return &clone, nil
}

func (s *MemoryStore) SaveEnrollment(ctx context.Context, enrollment *models.Enrollment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	clone := *enrollment
	s.enrollments[enrollment.OrderID] = &clone
	return nil
}
