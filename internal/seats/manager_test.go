// internal/seats/manager_test.go
package seats

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"funnel-workers/internal/common/errors"
	"funnel-workers/internal/common/logger"
	"funnel-workers/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClock is a settable clock for exercising TTL expiry without sleeping.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestManager(totalSeats int, ttl time.Duration, clock *fakeClock) *Manager {
	opts := Options{TotalSeats: totalSeats, ReservationTTL: ttl}
	if clock != nil {
		opts.Now = clock.Now
	}
	return NewManager(NewMemoryRepository(totalSeats), opts, logger.NewNoOpLogger())
}

func errCode(t *testing.T, err error) errors.ErrorCode {
	t.Helper()
	stdErr, ok := err.(*errors.StandardError)
	require.True(t, ok, "expected *errors.StandardError, got %T: %v", err, err)
	return stdErr.Code
}

func TestReserve_NeverOversellsUnderContention(t *testing.T) {
	manager := newTestManager(25, 15*time.Minute, nil)
	ctx := context.Background()

	const attempts = 100
	results := make(chan error, attempts)

	var start sync.WaitGroup
	start.Add(1)

	var done sync.WaitGroup
	for i := 0; i < attempts; i++ {
		done.Add(1)
		go func(n int) {
			defer done.Done()
			start.Wait()
			_, err := manager.Reserve(ctx, "founding-member", fmt.Sprintf("visitor-%d", n))
			results <- err
		}(i)
	}

	start.Done()
	done.Wait()
	close(results)

	succeeded, exhausted := 0, 0
	for err := range results {
		if err == nil {
			succeeded++
			continue
		}
		assert.Equal(t, errors.ErrCodeSeatsExhausted, errCode(t, err))
		exhausted++
	}

	assert.Equal(t, 25, succeeded)
	assert.Equal(t, 75, exhausted)

	remaining, total, err := manager.SeatsRemaining(ctx, "founding-member")
	require.NoError(t, err)
	assert.Equal(t, 0, remaining)
	assert.Equal(t, 25, total)
}

func TestReserve_SingleSeatTwoRacers(t *testing.T) {
	manager := newTestManager(1, 15*time.Minute, nil)
	ctx := context.Background()

	results := make(chan error, 2)
	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			_, err := manager.Reserve(ctx, "founding-member", fmt.Sprintf("visitor-%d", n))
			results <- err
		}(i)
	}
	wg.Wait()
	close(results)

	succeeded := 0
	for err := range results {
		if err == nil {
			succeeded++
		} else {
			assert.Equal(t, errors.ErrCodeSeatsExhausted, errCode(t, err))
		}
	}
	assert.Equal(t, 1, succeeded)
}

func TestReserve_DuplicateHolderRejected(t *testing.T) {
	manager := newTestManager(25, 15*time.Minute, nil)
	ctx := context.Background()

	_, err := manager.Reserve(ctx, "founding-member", "visitor-1")
	require.NoError(t, err)

	_, err = manager.Reserve(ctx, "founding-member", "visitor-1")
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeDuplicateReservation, errCode(t, err))
}

func TestConfirm_HappyPath(t *testing.T) {
	manager := newTestManager(25, 15*time.Minute, nil)
	ctx := context.Background()

	reservation, err := manager.Reserve(ctx, "founding-member", "visitor-1")
	require.NoError(t, err)
	assert.Equal(t, models.ReservationPending, reservation.Status)

	require.NoError(t, manager.Confirm(ctx, reservation.ReservationID))

	remaining, _, err := manager.SeatsRemaining(ctx, "founding-member")
	require.NoError(t, err)
	assert.Equal(t, 24, remaining)
}

func TestConfirm_AfterTTLFailsAndReclaimsSeat(t *testing.T) {
	clock := newFakeClock()
	manager := newTestManager(1, time.Second, clock)
	ctx := context.Background()

	reservation, err := manager.Reserve(ctx, "founding-member", "visitor-1")
	require.NoError(t, err)

	clock.Advance(2 * time.Second)

	err = manager.Confirm(ctx, reservation.ReservationID)
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeReservationExpired, errCode(t, err))

	// The expired hold no longer consumes capacity.
	fresh, err := manager.Reserve(ctx, "founding-member", "visitor-2")
	require.NoError(t, err)
	assert.Equal(t, models.ReservationPending, fresh.Status)
}

func TestConfirm_TerminalStatesRejected(t *testing.T) {
	manager := newTestManager(25, 15*time.Minute, nil)
	ctx := context.Background()

	reservation, err := manager.Reserve(ctx, "founding-member", "visitor-1")
	require.NoError(t, err)
	require.NoError(t, manager.Confirm(ctx, reservation.ReservationID))

	err = manager.Confirm(ctx, reservation.ReservationID)
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeAlreadyFinalized, errCode(t, err))

	released, err := manager.Reserve(ctx, "founding-member", "visitor-2")
	require.NoError(t, err)
	require.NoError(t, manager.Release(ctx, released.ReservationID))

	err = manager.Confirm(ctx, released.ReservationID)
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeAlreadyFinalized, errCode(t, err))
}

func TestConfirm_UnknownReservation(t *testing.T) {
	manager := newTestManager(25, 15*time.Minute, nil)

	err := manager.Confirm(context.Background(), "no-such-id")
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeReservationNotFound, errCode(t, err))
}

func TestRelease_IsIdempotentForPendingHolds(t *testing.T) {
	manager := newTestManager(25, 15*time.Minute, nil)
	ctx := context.Background()

	reservation, err := manager.Reserve(ctx, "founding-member", "visitor-1")
	require.NoError(t, err)

	require.NoError(t, manager.Release(ctx, reservation.ReservationID))
	// Releasing again is a no-op, not an error.
	require.NoError(t, manager.Release(ctx, reservation.ReservationID))

	remaining, _, err := manager.SeatsRemaining(ctx, "founding-member")
	require.NoError(t, err)
	assert.Equal(t, 25, remaining)
}

func TestRelease_ConfirmedSeatStaysConfirmed(t *testing.T) {
	manager := newTestManager(25, 15*time.Minute, nil)
	ctx := context.Background()

	reservation, err := manager.Reserve(ctx, "founding-member", "visitor-1")
	require.NoError(t, err)
	require.NoError(t, manager.Confirm(ctx, reservation.ReservationID))

	err = manager.Release(ctx, reservation.ReservationID)
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeAlreadyFinalized, errCode(t, err))

	remaining, _, err := manager.SeatsRemaining(ctx, "founding-member")
	require.NoError(t, err)
	assert.Equal(t, 24, remaining)
}

func TestSeatsRemaining_IgnoresExpiredHolds(t *testing.T) {
	clock := newFakeClock()
	manager := newTestManager(25, time.Minute, clock)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, err := manager.Reserve(ctx, "founding-member", fmt.Sprintf("visitor-%d", i))
		require.NoError(t, err)
	}

	remaining, _, err := manager.SeatsRemaining(ctx, "founding-member")
	require.NoError(t, err)
	assert.Equal(t, 20, remaining)

	clock.Advance(2 * time.Minute)

	// Advisory read sees the holds as dead without any mutation having run.
	remaining, total, err := manager.SeatsRemaining(ctx, "founding-member")
	require.NoError(t, err)
	assert.Equal(t, 25, remaining)
	assert.Equal(t, 25, total)
}

func TestReserve_ReclaimsExpiredHoldsBeforeCapacityCheck(t *testing.T) {
	clock := newFakeClock()
	manager := newTestManager(2, time.Minute, clock)
	ctx := context.Background()

	_, err := manager.Reserve(ctx, "founding-member", "visitor-1")
	require.NoError(t, err)
	_, err = manager.Reserve(ctx, "founding-member", "visitor-2")
	require.NoError(t, err)

	_, err = manager.Reserve(ctx, "founding-member", "visitor-3")
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeSeatsExhausted, errCode(t, err))

	clock.Advance(2 * time.Minute)

	reservation, err := manager.Reserve(ctx, "founding-member", "visitor-3")
	require.NoError(t, err)
	assert.Equal(t, models.ReservationPending, reservation.Status)
}

func TestSubscribe_EmitsEventOnEveryMutation(t *testing.T) {
	manager := newTestManager(25, 15*time.Minute, nil)
	ctx := context.Background()

	var mu sync.Mutex
	var events []Event
	manager.Subscribe(func(e Event) {
		mu.Lock()
		defer mu.Unlock()
		events = append(events, e)
	})

	reservation, err := manager.Reserve(ctx, "founding-member", "visitor-1")
	require.NoError(t, err)
	require.NoError(t, manager.Confirm(ctx, reservation.ReservationID))

	second, err := manager.Reserve(ctx, "founding-member", "visitor-2")
	require.NoError(t, err)
	require.NoError(t, manager.Release(ctx, second.ReservationID))

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, events, 4)
	assert.Equal(t, 24, events[0].SeatsRemaining) // reserve
	assert.Equal(t, 24, events[1].SeatsRemaining) // confirm keeps the seat taken
	assert.Equal(t, 23, events[2].SeatsRemaining) // second reserve
	assert.Equal(t, 24, events[3].SeatsRemaining) // release re-opens it
	for _, event := range events {
		assert.Equal(t, "founding-member", event.ProgramID)
		assert.Equal(t, 25, event.TotalSeats)
	}
}
