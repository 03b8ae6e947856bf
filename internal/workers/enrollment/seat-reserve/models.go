// internal/workers/enrollment/seat-reserve/models.go
package seatreserve

type Input struct {
	ProgramID string `json:"programId"`
	HolderRef string `json:"holderRef"`
}

type Output struct {
	ReservationID string `json:"reservationId"`
	ProgramID     string `json:"programId"`
	Status        string `json:"reservationStatus"`
	ExpiresAt     string `json:"expiresAt"`
}
