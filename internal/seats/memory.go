// internal/seats/memory.go
package seats

import (
	"context"
	"sync"

	"funnel-workers/internal/common/errors"
	"funnel-workers/internal/models"
)

// MemoryRepository keeps pools and reservations in process memory. Used in
// tests and single-node setups; durable deployments use PostgresRepository.
type MemoryRepository struct {
	totalSeats int

	mu           sync.RWMutex
	pools        map[string]*models.SeatPool
	reservations map[string]*models.Reservation
}

func NewMemoryRepository(totalSeats int) *MemoryRepository {
	return &MemoryRepository{
		totalSeats:   totalSeats,
		pools:        map[string]*models.SeatPool{},
		reservations: map[string]*models.Reservation{},
	}
}

func (r *MemoryRepository) GetPool(ctx context.Context, programID string) (*models.SeatPool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	pool, ok := r.pools[programID]
	if !ok {
		pool = &models.SeatPool{
			ProgramID:  programID,
			TotalSeats: r.totalSeats,
		}
		r.pools[programID] = pool
	}

	clone := *pool
	return &clone, nil
}

func (r *MemoryRepository) SavePool(ctx context.Context, pool *models.SeatPool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	clone := *pool
	r.pools[pool.ProgramID] = &clone
	return nil
}

func (r *MemoryRepository) GetReservation(ctx context.Context, reservationID string) (*models.Reservation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	reservation, ok := r.reservations[reservationID]
	if !ok {
		return nil, errors.NewReservationNotFoundError(reservationID)
	}

	clone := *reservation
	return &clone, nil
}

func (r *MemoryRepository) SaveReservation(ctx context.Context, reservation *models.Reservation) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	clone := *reservation
	r.reservations[reservation.ReservationID] = &clone
	return nil
}

func (r *MemoryRepository) PendingReservations(ctx context.Context, programID string) ([]*models.Reservation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var pending []*models.Reservation
	for _, reservation := range r.reservations {
		if reservation.ProgramID == programID && reservation.Status == models.ReservationPending {
			clone := *reservation
			pending = append(pending, &clone)
		}
	}
	return pending, nil
}
