// internal/models/enrollment.go
package models

import "time"

// ReservationStatus values. Pending is the only non-terminal state.
const (
	ReservationPending   = "pending"
	ReservationConfirmed = "confirmed"
	ReservationReleased  = "released"
	ReservationExpired   = "expired"
)

// Reservation is a time-boxed hold on one seat pending payment completion.
type Reservation struct {
	ReservationID string    `json:"reservationId"`
	ProgramID     string    `json:"programId"`
	HolderRef     string    `json:"holderRef"`
	Status        string    `json:"status"`
	CreatedAt     time.Time `json:"createdAt"`
	ExpiresAt     time.Time `json:"expiresAt"`
}

// ExpiredBy reports whether a still-pending reservation has outlived its TTL.
func (r *Reservation) ExpiredBy(now time.Time) bool {
	return r.Status == ReservationPending && !now.Before(r.ExpiresAt)
}

// SeatPool tracks the fixed enrollment capacity for one program.
// Invariant: ConfirmedCount + ReservedCount (non-expired) <= TotalSeats.
type SeatPool struct {
	ProgramID      string `json:"programId"`
	TotalSeats     int    `json:"totalSeats"`
	ConfirmedCount int    `json:"confirmedCount"`
	ReservedCount  int    `json:"reservedCount"`
}

// Remaining is the advisory seat count shown to visitors.
func (p *SeatPool) Remaining() int {
	remaining := p.TotalSeats - p.ConfirmedCount - p.ReservedCount
	if remaining < 0 {
		return 0
	}
	return remaining
}

// PaymentOrder status values. Created is the only non-terminal state.
const (
	OrderCreated  = "created"
	OrderVerified = "verified"
	OrderFailed   = "failed"
)

// PaymentOrder binds a reservation 1:1 to an external gateway order.
// Amount is in minor currency units (paise/cents).
type PaymentOrder struct {
	OrderID          string    `json:"orderId"`
	ReservationID    string    `json:"reservationId"`
	Amount           int64     `json:"amount"`
	Currency         string    `json:"currency"`
	ProviderOrderRef string    `json:"providerOrderRef"`
	// ProviderPaymentRef is set once verification succeeds.
	ProviderPaymentRef string    `json:"providerPaymentRef,omitempty"`
	Status             string    `json:"status"`
	CreatedAt          time.Time `json:"createdAt"`
}

// Enrollment is the durable record of a paid and confirmed seat.
// Written exactly once, when reservation confirmation and payment
// verification succeed together.
type Enrollment struct {
	EnrollmentID  string    `json:"enrollmentId"`
	ReservationID string    `json:"reservationId"`
	OrderID       string    `json:"orderId"`
	CreatedAt     time.Time `json:"createdAt"`
}
