// internal/seats/postgres.go
package seats

import (
	"context"
	"database/sql"
	stderrors "errors"

	"funnel-workers/internal/common/errors"
	"funnel-workers/internal/models"
)

// PostgresRepository stores pools and reservations durably. The Manager's
// per-program lock serializes writers within one process; running more than
// one worker-manager instance against the same program requires moving that
// lock into the database (row lock on seat_pools).
type PostgresRepository struct {
	db         *sql.DB
	totalSeats int
}

func NewPostgresRepository(db *sql.DB, totalSeats int) *PostgresRepository {
	return &PostgresRepository{db: db, totalSeats: totalSeats}
}

func (r *PostgresRepository) GetPool(ctx context.Context, programID string) (*models.SeatPool, error) {
	pool := &models.SeatPool{ProgramID: programID}
	err := r.db.QueryRowContext(ctx, `
		SELECT total_seats, confirmed_count, reserved_count
		FROM seat_pools WHERE program_id = $1`,
		programID).Scan(&pool.TotalSeats, &pool.ConfirmedCount, &pool.ReservedCount)

	if stderrors.Is(err, sql.ErrNoRows) {
		pool.TotalSeats = r.totalSeats
		_, err = r.db.ExecContext(ctx, `
			INSERT INTO seat_pools (program_id, total_seats, confirmed_count, reserved_count)
			VALUES ($1, $2, 0, 0)
			ON CONFLICT (program_id) DO NOTHING`,
			programID, r.totalSeats)
		if err != nil {
			return nil, errors.NewQueryExecutionFailedError("create seat pool", err)
		}
		return pool, nil
	}
	if err != nil {
		return nil, errors.NewQueryExecutionFailedError("get seat pool", err)
	}
	return pool, nil
}

func (r *PostgresRepository) SavePool(ctx context.Context, pool *models.SeatPool) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE seat_pools
		SET confirmed_count = $2, reserved_count = $3
		WHERE program_id = $1`,
		pool.ProgramID, pool.ConfirmedCount, pool.ReservedCount)
	if err != nil {
		return errors.NewQueryExecutionFailedError("save seat pool", err)
	}
	return nil
}

func (r *PostgresRepository) GetReservation(ctx context.Context, reservationID string) (*models.Reservation, error) {
	reservation := &models.Reservation{ReservationID: reservationID}
	err := r.db.QueryRowContext(ctx, `
		SELECT program_id, holder_ref, status, created_at, expires_at
		FROM reservations WHERE id = $1`,
		reservationID).Scan(
		&reservation.ProgramID,
		&reservation.HolderRef,
		&reservation.Status,
		&reservation.CreatedAt,
		&reservation.ExpiresAt,
	)

	if stderrors.Is(err, sql.ErrNoRows) {
		return nil, errors.NewReservationNotFoundError(reservationID)
	}
	if err != nil {
		return nil, errors.NewQueryExecutionFailedError("get reservation", err)
	}
	return reservation, nil
}

func (r *PostgresRepository) SaveReservation(ctx context.Context, reservation *models.Reservation) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO reservations (id, program_id, holder_ref, status, created_at, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE SET status = EXCLUDED.status`,
		reservation.ReservationID,
		reservation.ProgramID,
		reservation.HolderRef,
		reservation.Status,
		reservation.CreatedAt,
		reservation.ExpiresAt,
	)
	if err != nil {
		return errors.NewQueryExecutionFailedError("save reservation", err)
	}
	return nil
}

func (r *PostgresRepository) PendingReservations(ctx context.Context, programID string) ([]*models.Reservation, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, holder_ref, status, created_at, expires_at
		FROM reservations WHERE program_id = $1 AND status = $2`,
		programID, models.ReservationPending)
	if err != nil {
		return nil, errors.NewQueryExecutionFailedError("pending reservations", err)
	}
	defer rows.Close()

	var pending []*models.Reservation
	for rows.Next() {
		reservation := &models.Reservation{ProgramID: programID}
		if err := rows.Scan(
			&reservation.ReservationID,
			&reservation.HolderRef,
			&reservation.Status,
			&reservation.CreatedAt,
			&reservation.ExpiresAt,
		); err != nil {
			return nil, errors.NewQueryExecutionFailedError("scan reservation", err)
		}
		pending = append(pending, reservation)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewQueryExecutionFailedError("pending reservations", err)
	}
	return pending, nil
}
