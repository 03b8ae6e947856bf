// internal/workers/enrollment/seat-release/models.go
package seatrelease

type Input struct {
	ReservationID string `json:"reservationId"`
}

type Output struct {
	ReservationID string `json:"reservationId"`
	Released      bool   `json:"released"`
}
