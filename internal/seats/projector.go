// internal/seats/projector.go
package seats

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"funnel-workers/internal/common/database"
	"funnel-workers/internal/common/logger"
)

const (
	statusKeyPrefix = "seats:status:"
	statusKeyTTL    = 24 * time.Hour
	projectTimeout  = 2 * time.Second
)

// SeatStatus is the advisory snapshot projected into Redis after every pool
// change. Readers must treat it as a hint; the pool row is authoritative.
type SeatStatus struct {
	ProgramID      string `json:"programId"`
	SeatsRemaining int    `json:"seatsRemaining"`
	TotalSeats     int    `json:"totalSeats"`
	UpdatedAt      string `json:"updatedAt"`
}

// StatusKey returns the Redis key holding the projected status for a program.
func StatusKey(programID string) string {
	return statusKeyPrefix + programID
}

// Projector mirrors seat pool changes into Redis so the status read path
// never touches Postgres. Projection failures are logged and dropped; a
// stale snapshot is acceptable, a blocked reservation is not.
type Projector struct {
	redis *database.RedisClient
	log   logger.Logger
}

// NewProjector creates a projector writing to the given Redis client.
func NewProjector(redis *database.RedisClient, log logger.Logger) *Projector {
	return &Projector{redis: redis, log: log}
}

// Attach registers the projector as a subscriber on the manager.
func (p *Projector) Attach(m *Manager) {
	m.Subscribe(p.Project)
}

// Project writes the snapshot for a single event.
func (p *Projector) Project(event Event) {
	ctx, cancel := context.WithTimeout(context.Background(), projectTimeout)
	defer cancel()

	status := SeatStatus{
		ProgramID:      event.ProgramID,
		SeatsRemaining: event.SeatsRemaining,
		TotalSeats:     event.TotalSeats,
		UpdatedAt:      time.Now().UTC().Format(time.RFC3339),
	}

	payload, err := json.Marshal(status)
	if err != nil {
		p.log.WithError(err).Error("failed to marshal seat status", nil)
		return
	}

	if err := p.redis.Set(ctx, StatusKey(event.ProgramID), payload, statusKeyTTL); err != nil {
		p.log.WithError(err).Error("failed to project seat status to redis", map[string]interface{}{
			"program_id": event.ProgramID,
		})
		return
	}

	p.log.Debug("seat status projected", map[string]interface{}{
		"program_id":      event.ProgramID,
		"seats_remaining": event.SeatsRemaining,
	})
}

// ReadStatus loads the projected snapshot, if one exists.
func ReadStatus(ctx context.Context, redis *database.RedisClient, programID string) (*SeatStatus, error) {
	raw, err := redis.Get(ctx, StatusKey(programID))
	if err != nil {
		return nil, err
	}

	var status SeatStatus
	if err := json.Unmarshal([]byte(raw), &status); err != nil {
		return nil, fmt.Errorf("corrupt seat status for %s: %w", programID, err)
	}
	return &status, nil
}
