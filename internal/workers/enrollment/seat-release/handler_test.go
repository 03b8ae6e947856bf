// internal/workers/enrollment/seat-release/handler_test.go
package seatrelease

import (
	"context"
	"testing"
	"time"

	"funnel-workers/internal/common/errors"
	"funnel-workers/internal/common/logger"
	"funnel-workers/internal/seats"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHandler(t *testing.T) (*Handler, *seats.Manager) {
	t.Helper()
	log := logger.NewTestLogger(t)
	manager := seats.NewManager(
		seats.NewMemoryRepository(25),
		seats.Options{TotalSeats: 25, ReservationTTL: 15 * time.Minute},
		log,
	)
	return NewHandler(LoadConfig(), manager, log), manager
}

func TestHandler_Execute_ReleasesPendingHold(t *testing.T) {
	handler, manager := newTestHandler(t)
	ctx := context.Background()

	reservation, err := manager.Reserve(ctx, "founding-member", "visitor-1")
	require.NoError(t, err)

	output, err := handler.Execute(ctx, &Input{ReservationID: reservation.ReservationID})
	require.NoError(t, err)
	assert.True(t, output.Released)

	remaining, _, err := manager.SeatsRemaining(ctx, "founding-member")
	require.NoError(t, err)
	assert.Equal(t, 25, remaining)
}

func TestHandler_Execute_RepeatReleaseIsNoOp(t *testing.T) {
	handler, manager := newTestHandler(t)
	ctx := context.Background()

	reservation, err := manager.Reserve(ctx, "founding-member", "visitor-1")
	require.NoError(t, err)

	_, err = handler.Execute(ctx, &Input{ReservationID: reservation.ReservationID})
	require.NoError(t, err)

	output, err := handler.Execute(ctx, &Input{ReservationID: reservation.ReservationID})
	require.NoError(t, err)
	assert.True(t, output.Released)
}

func TestHandler_Execute_ConfirmedSeatRejected(t *testing.T) {
	handler, manager := newTestHandler(t)
	ctx := context.Background()

	reservation, err := manager.Reserve(ctx, "founding-member", "visitor-1")
	require.NoError(t, err)
	require.NoError(t, manager.Confirm(ctx, reservation.ReservationID))

	_, err = handler.Execute(ctx, &Input{ReservationID: reservation.ReservationID})
	require.Error(t, err)

	stdErr, ok := err.(*errors.StandardError)
	require.True(t, ok)
	assert.Equal(t, errors.ErrCodeAlreadyFinalized, stdErr.Code)
}

func TestHandler_Execute_MissingReservationID(t *testing.T) {
	handler, _ := newTestHandler(t)

	_, err := handler.Execute(context.Background(), &Input{})
	require.Error(t, err)

	stdErr, ok := err.(*errors.StandardError)
	require.True(t, ok)
	assert.Equal(t, errors.ErrCodeValidationFailed, stdErr.Code)
}
