// internal/payment/postgres.go
package payment

import (
	"context"
	"database/sql"
	stderrors "errors"

	"funnel-workers/internal/common/errors"
	"funnel-workers/internal/models"
)

// PostgresStore persists payment orders and enrollments. A unique index on
// enrollments(reservation_id) backs the exactly-once enrollment guarantee at
// the storage layer as well.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const orderColumns = `id, reservation_id, amount, currency, provider_order_ref,
	COALESCE(provider_payment_ref, ''), status, created_at`

func (s *PostgresStore) scanOrder(row *sql.Row) (*models.PaymentOrder, error) {
	order := &models.PaymentOrder{}
	err := row.Scan(
		&order.OrderID,
		&order.ReservationID,
		&order.Amount,
		&order.Currency,
		&order.ProviderOrderRef,
		&order.ProviderPaymentRef,
		&order.Status,
		&order.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return order, nil
}

func (s *PostgresStore) GetOrder(ctx context.Context, orderID string) (*models.PaymentOrder, error) {
	order, err := s.scanOrder(s.db.QueryRowContext(ctx,
		`SELECT `+orderColumns+` FROM payment_orders WHERE id = $1`, orderID))
	if stderrors.Is(err, sql.ErrNoRows) {
		return nil, errors.NewOrderNotFoundError(orderID)
	}
	if err != nil {
		return nil, errors.NewQueryExecutionFailedError("get payment order", err)
	}
	return order, nil
}

func (s *PostgresStore) GetOrderByProviderRef(ctx context.Context, providerOrderRef string) (*models.PaymentOrder, error) {
	order, err := s.scanOrder(s.db.QueryRowContext(ctx,
		`SELECT `+orderColumns+` FROM payment_orders WHERE provider_order_ref = $1`, providerOrderRef))
	if stderrors.Is(err, sql.ErrNoRows) {
		return nil, errors.NewOrderNotFoundError(providerOrderRef)
	}
	if err != nil {
		return nil, errors.NewQueryExecutionFailedError("get payment order by provider ref", err)
	}
	return order, nil
}

func (s *PostgresStore) GetOrderByReservation(ctx context.Context, reservationID string) (*models.PaymentOrder, error) {
	order, err := s.scanOrder(s.db.QueryRowContext(ctx,
		`SELECT `+orderColumns+` FROM payment_orders WHERE reservation_id = $1`, reservationID))
	if stderrors.Is(err, sql.ErrNoRows) {
		return nil, errors.NewOrderNotFoundError(reservationID)
	}
	if err != nil {
		return nil, errors.NewQueryExecutionFailedError("get payment order by reservation", err)
	}
	return order, nil
}

func (s *PostgresStore) SaveOrder(ctx context.Context, order *models.PaymentOrder) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO payment_orders
			(id, reservation_id, amount, currency, provider_order_ref, provider_payment_ref, status, created_at)
		VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''), $7, $8)
		ON CONFLICT (id) DO UPDATE
		SET status = EXCLUDED.status,
		    provider_payment_ref = EXCLUDED.provider_payment_ref`,
		order.OrderID,
		order.ReservationID,
		order.Amount,
		order.Currency,
		order.ProviderOrderRef,
		order.ProviderPaymentRef,
		order.Status,
		order.CreatedAt,
	)
	if err != nil {
		return errors.NewDatabaseInsertFailedError(err)
	}
	return nil
}

func (s *PostgresStore) GetEnrollmentByOrder(ctx context.Context, orderID string) (*models.Enrollment, error) {
	enrollment := &models.Enrollment{OrderID: orderID}
	err := s.db.QueryRowContext(ctx, `
		SELECT id, reservation_id, created_at
		FROM enrollments WHERE order_id = $1`,
		orderID).Scan(&enrollment.EnrollmentID, &enrollment.ReservationID, &enrollment.CreatedAt)

	if stderrors.Is(err, sql.ErrNoRows) {
		return nil, errors.NewOrderNotFoundError(orderID)
	}
	if err != nil {
		return nil, errors.NewQueryExecutionFailedError("get enrollment", err)
	}
	return enrollment, nil
}

func (s *PostgresStore) SaveEnrollment(ctx context.Context, enrollment *models.Enrollment) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO enrollments (id, reservation_id, order_id, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (reservation_id) DO NOTHING`,
		enrollment.EnrollmentID,
		enrollment.ReservationID,
		enrollment.OrderID,
		enrollment.CreatedAt,
	)
	if err != nil {
		return errors.NewDatabaseInsertFailedError(err)
	}
	return nil
}
