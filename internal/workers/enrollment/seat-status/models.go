// internal/workers/enrollment/seat-status/models.go
package seatstatus

type Input struct {
	ProgramID string `json:"programId"`
}

type Output struct {
	ProgramID      string `json:"programId"`
	SeatsRemaining int    `json:"seatsRemaining"`
	TotalSeats     int    `json:"totalSeats"`
	// Source is "cache" when the Redis projection answered, "store" when the
	// repository had to be consulted.
	Source string `json:"source"`
}
