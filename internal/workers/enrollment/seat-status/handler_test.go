// internal/workers/enrollment/seat-status/handler_test.go
package seatstatus

import (
	"context"
	"testing"
	"time"

	"funnel-workers/internal/common/database"
	"funnel-workers/internal/common/logger"
	"funnel-workers/internal/seats"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	handler *Handler
	manager *seats.Manager
	server  *miniredis.Miniredis
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	log := logger.NewTestLogger(t)

	server := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	redisClient := &database.RedisClient{Client: client}

	manager := seats.NewManager(
		seats.NewMemoryRepository(25),
		seats.Options{TotalSeats: 25, ReservationTTL: 15 * time.Minute},
		log,
	)
	seats.NewProjector(redisClient, log).Attach(manager)

	return &fixture{
		handler: NewHandler(LoadConfig("founding-member"), manager, redisClient, log),
		manager: manager,
		server:  server,
	}
}

func TestHandler_Execute_ServesFromProjection(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.manager.Reserve(ctx, "founding-member", "visitor-1")
	require.NoError(t, err)

	output, err := f.handler.Execute(ctx, &Input{})
	require.NoError(t, err)
	assert.Equal(t, "founding-member", output.ProgramID)
	assert.Equal(t, 24, output.SeatsRemaining)
	assert.Equal(t, 25, output.TotalSeats)
	assert.Equal(t, "cache", output.Source)
}

func TestHandler_Execute_FallsBackToStore(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// No event has fired yet, so the projection key does not exist.
	output, err := f.handler.Execute(ctx, &Input{ProgramID: "founding-member"})
	require.NoError(t, err)
	assert.Equal(t, 25, output.SeatsRemaining)
	assert.Equal(t, "store", output.Source)
}

func TestHandler_Execute_FallsBackWhenRedisDown(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.manager.Reserve(ctx, "founding-member", "visitor-1")
	require.NoError(t, err)

	f.server.Close()

	output, err := f.handler.Execute(ctx, &Input{})
	require.NoError(t, err)
	assert.Equal(t, 24, output.SeatsRemaining)
	assert.Equal(t, "store", output.Source)
}
