// internal/workers/enrollment/seat-status/config.go
package seatstatus

import "time"

// DefaultProgramID fills in when the process omits programId.
type Config struct {
	Timeout          time.Duration
	DefaultProgramID string
}

func LoadConfig(defaultProgramID string) *Config {
	return &Config{
		Timeout:          30 * time.Second,
		DefaultProgramID: defaultProgramID,
	}
}
