// internal/seats/manager.go
package seats

import (
	"context"
	"sync"
	"time"

	"funnel-workers/internal/common/errors"
	"funnel-workers/internal/common/logger"
	"funnel-workers/internal/common/metrics"
	"funnel-workers/internal/models"

	"github.com/google/uuid"
)

// Event describes a seat availability change, emitted after every successful
// mutation. Push transports (live counters, dashboards) subscribe to these
// instead of reaching into pool state.
type Event struct {
	ProgramID      string `json:"programId"`
	SeatsRemaining int    `json:"seatsRemaining"`
	TotalSeats     int    `json:"totalSeats"`
}

// Subscriber receives seat events. Callbacks run on the mutating goroutine and
// must not block.
type Subscriber func(Event)

// Options configures a Manager.
type Options struct {
	TotalSeats     int
	ReservationTTL time.Duration

	// Now overrides the clock; tests only.
	Now func() time.Time
}

// Manager serializes all mutations to a program's SeatPool so capacity is
// never oversold. One mutex per programId covers the reclaim-check-increment
// sequence in Reserve as a single atomic unit; SeatsRemaining reads bypass it.
type Manager struct {
	repo   Repository
	ttl    time.Duration
	total  int
	now    func() time.Time
	logger logger.Logger

	mu    sync.Mutex // guards locks and subs
	locks map[string]*sync.Mutex
	subs  []Subscriber
}

func NewManager(repo Repository, opts Options, log logger.Logger) *Manager {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Manager{
		repo:   repo,
		ttl:    opts.ReservationTTL,
		total:  opts.TotalSeats,
		now:    now,
		logger: log.WithFields(map[string]interface{}{"component": "seats"}),
		locks:  map[string]*sync.Mutex{},
	}
}

// Subscribe registers a seat event subscriber.
func (m *Manager) Subscribe(s Subscriber) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.subs = append(m.subs, s)
}

// TotalSeats returns the fixed capacity used when creating pools.
func (m *Manager) TotalSeats() int {
	return m.total
}

// Reserve places a Pending hold on one seat. Expired Pending holds are
// reclaimed first (lazy expiration), then the capacity check and increment
// run under the same pool lock. Fails with SEATS_EXHAUSTED when the pool is
// full and DUPLICATE_RESERVATION when the holder already has a live hold.
func (m *Manager) Reserve(ctx context.Context, programID, holderRef string) (*models.Reservation, error) {
	lock := m.poolLock(programID)
	lock.Lock()
	defer lock.Unlock()

	pool, err := m.repo.GetPool(ctx, programID)
	if err != nil {
		return nil, err
	}

	if err := m.reclaimExpired(ctx, pool); err != nil {
		return nil, err
	}

	now := m.now()

	pending, err := m.repo.PendingReservations(ctx, programID)
	if err != nil {
		return nil, err
	}
	for _, r := range pending {
		if r.HolderRef == holderRef && !r.ExpiredBy(now) {
			metrics.SeatReservations.WithLabelValues(programID, "duplicate").Inc()
			return nil, errors.NewDuplicateReservationError(holderRef)
		}
	}

	if pool.ConfirmedCount+pool.ReservedCount >= pool.TotalSeats {
		metrics.SeatReservations.WithLabelValues(programID, "exhausted").Inc()
		return nil, errors.NewSeatsExhaustedError(programID)
	}

	reservation := &models.Reservation{
		ReservationID: uuid.New().String(),
		ProgramID:     programID,
		HolderRef:     holderRef,
		Status:        models.ReservationPending,
		CreatedAt:     now,
		ExpiresAt:     now.Add(m.ttl),
	}

	if err := m.repo.SaveReservation(ctx, reservation); err != nil {
		return nil, err
	}

	pool.ReservedCount++
	if err := m.repo.SavePool(ctx, pool); err != nil {
		return nil, err
	}

	metrics.SeatReservations.WithLabelValues(programID, "reserved").Inc()
	m.logger.Info("seat reserved", map[string]interface{}{
		"programId":      programID,
		"reservationId":  reservation.ReservationID,
		"seatsRemaining": pool.Remaining(),
	})
	m.emit(pool)

	return reservation, nil
}

// Confirm transitions a Pending reservation to Confirmed, moving its seat from
// reserved to confirmed. Fails with RESERVATION_EXPIRED past the TTL (the
// caller must re-reserve) and ALREADY_FINALIZED for terminal states.
func (m *Manager) Confirm(ctx context.Context, reservationID string) error {
	reservation, err := m.repo.GetReservation(ctx, reservationID)
	if err != nil {
		return err
	}

	lock := m.poolLock(reservation.ProgramID)
	lock.Lock()
	defer lock.Unlock()

	// Re-read under the lock; a concurrent call may have finalized it.
	reservation, err = m.repo.GetReservation(ctx, reservationID)
	if err != nil {
		return err
	}

	switch reservation.Status {
	case models.ReservationConfirmed, models.ReservationReleased:
		return errors.NewAlreadyFinalizedError("reservation", reservationID, reservation.Status)
	case models.ReservationExpired:
		return errors.NewReservationExpiredError(reservationID)
	}

	pool, err := m.repo.GetPool(ctx, reservation.ProgramID)
	if err != nil {
		return err
	}

	if reservation.ExpiredBy(m.now()) {
		reservation.Status = models.ReservationExpired
		if err := m.repo.SaveReservation(ctx, reservation); err != nil {
			return err
		}
		pool.ReservedCount--
		if err := m.repo.SavePool(ctx, pool); err != nil {
			return err
		}
		m.emit(pool)
		return errors.NewReservationExpiredError(reservationID)
	}

	reservation.Status = models.ReservationConfirmed
	if err := m.repo.SaveReservation(ctx, reservation); err != nil {
		return err
	}

	pool.ReservedCount--
	pool.ConfirmedCount++
	if err := m.repo.SavePool(ctx, pool); err != nil {
		return err
	}

	m.logger.Info("seat confirmed", map[string]interface{}{
		"programId":     reservation.ProgramID,
		"reservationId": reservationID,
	})
	m.emit(pool)

	return nil
}

// Release frees a Pending hold. Releasing an already-Released or Expired
// reservation is a no-op returning success; a Confirmed seat fails with
// ALREADY_FINALIZED and never silently re-opens capacity.
func (m *Manager) Release(ctx context.Context, reservationID string) error {
	reservation, err := m.repo.GetReservation(ctx, reservationID)
	if err != nil {
		return err
	}

	lock := m.poolLock(reservation.ProgramID)
	lock.Lock()
	defer lock.Unlock()

	reservation, err = m.repo.GetReservation(ctx, reservationID)
	if err != nil {
		return err
	}

	switch reservation.Status {
	case models.ReservationReleased, models.ReservationExpired:
		return nil
	case models.ReservationConfirmed:
		return errors.NewAlreadyFinalizedError("reservation", reservationID, reservation.Status)
	}

	reservation.Status = models.ReservationReleased
	if err := m.repo.SaveReservation(ctx, reservation); err != nil {
		return err
	}

	pool, err := m.repo.GetPool(ctx, reservation.ProgramID)
	if err != nil {
		return err
	}
	pool.ReservedCount--
	if err := m.repo.SavePool(ctx, pool); err != nil {
		return err
	}

	m.logger.Info("seat released", map[string]interface{}{
		"programId":     reservation.ProgramID,
		"reservationId": reservationID,
	})
	m.emit(pool)

	return nil
}

// SeatsRemaining computes the advisory remaining count without taking the pool
// lock. Counts only non-expired Pending holds, so a full-looking pool made of
// dead holds still reads as available. Stale reads are acceptable here; only
// the mutation path is strictly serialized.
func (m *Manager) SeatsRemaining(ctx context.Context, programID string) (remaining, total int, err error) {
	pool, err := m.repo.GetPool(ctx, programID)
	if err != nil {
		return 0, 0, err
	}

	pending, err := m.repo.PendingReservations(ctx, programID)
	if err != nil {
		return 0, 0, err
	}

	now := m.now()
	live := 0
	for _, r := range pending {
		if !r.ExpiredBy(now) {
			live++
		}
	}

	remaining = pool.TotalSeats - pool.ConfirmedCount - live
	if remaining < 0 {
		remaining = 0
	}
	return remaining, pool.TotalSeats, nil
}

// reclaimExpired marks every expired Pending hold Expired and returns its seat
// to the pool. Runs only under the pool lock.
func (m *Manager) reclaimExpired(ctx context.Context, pool *models.SeatPool) error {
	pending, err := m.repo.PendingReservations(ctx, pool.ProgramID)
	if err != nil {
		return err
	}

	now := m.now()
	reclaimed := 0
	for _, r := range pending {
		if !r.ExpiredBy(now) {
			continue
		}
		r.Status = models.ReservationExpired
		if err := m.repo.SaveReservation(ctx, r); err != nil {
			return err
		}
		reclaimed++
	}

	if reclaimed > 0 {
		pool.ReservedCount -= reclaimed
		if pool.ReservedCount < 0 {
			pool.ReservedCount = 0
		}
		if err := m.repo.SavePool(ctx, pool); err != nil {
			return err
		}
		m.logger.Info("reclaimed expired reservations", map[string]interface{}{
			"programId": pool.ProgramID,
			"count":     reclaimed,
		})
	}

	return nil
}

// GetReservation reads a reservation without taking the pool lock.
func (m *Manager) GetReservation(ctx context.Context, reservationID string) (*models.Reservation, error) {
	return m.repo.GetReservation(ctx, reservationID)
}

func (m *Manager) poolLock(programID string) *sync.Mutex {
	m.mu.Lock()
	defer m.mu.Unlock()
	lock, ok := m.locks[programID]
	if !ok {
		lock = &sync.Mutex{}
		m.locks[programID] = lock
	}
	return lock
}

func (m *Manager) emit(pool *models.SeatPool) {
	metrics.SeatsRemaining.WithLabelValues(pool.ProgramID).Set(float64(pool.Remaining()))

	event := Event{
		ProgramID:      pool.ProgramID,
		SeatsRemaining: pool.Remaining(),
		TotalSeats:     pool.TotalSeats,
	}

	m.mu.Lock()
	subs := make([]Subscriber, len(m.subs))
	copy(subs, m.subs)
	m.mu.Unlock()

	for _, s := range subs {
		s(event)
	}
}
