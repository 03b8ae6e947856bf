// internal/seats/repository.go
// Package seats owns the SeatPool aggregate: a fixed enrollment capacity per
// program, guarded against oversell while payment completes asynchronously.
// All mutations go through the Manager; everything else gets read-only,
// possibly stale views.
package seats

import (
	"context"

	"funnel-workers/internal/models"
)

// Repository abstracts durable storage for seat pools and reservations.
// Implementations do not need to synchronize callers; the Manager serializes
// every mutation per program before touching the repository.
type Repository interface {
	// GetPool returns the pool for a program, creating it with the configured
	// capacity on first use.
	GetPool(ctx context.Context, programID string) (*models.SeatPool, error)

	// SavePool persists updated pool counters.
	SavePool(ctx context.Context, pool *models.SeatPool) error

	// GetReservation returns a reservation by ID or a RESERVATION_NOT_FOUND error.
	GetReservation(ctx context.Context, reservationID string) (*models.Reservation, error)

	// SaveReservation inserts or updates a reservation.
	SaveReservation(ctx context.Context, r *models.Reservation) error

	// PendingReservations returns all reservations still in Pending status for
	// a program, expired holds included; the Manager decides what to reclaim.
	PendingReservations(ctx context.Context, programID string) ([]*models.Reservation, error)
}
