// internal/seats/projector_test.go
package seats

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"testing"
	"time"

	"funnel-workers/internal/common/database"
	"funnel-workers/internal/common/logger"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redismock/v9"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedis(t *testing.T) *database.RedisClient {
	t.Helper()
	server := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return &database.RedisClient{Client: client}
}

func TestProjector_WritesSnapshotOnSeatEvents(t *testing.T) {
	redisClient := newTestRedis(t)
	manager := newTestManager(25, 15*time.Minute, nil)
	NewProjector(redisClient, logger.NewNoOpLogger()).Attach(manager)

	ctx := context.Background()
	_, err := manager.Reserve(ctx, "founding-member", "visitor-1")
	require.NoError(t, err)

	raw, err := redisClient.Get(ctx, StatusKey("founding-member"))
	require.NoError(t, err)

	var status SeatStatus
	require.NoError(t, json.Unmarshal([]byte(raw), &status))
	assert.Equal(t, "founding-member", status.ProgramID)
	assert.Equal(t, 24, status.SeatsRemaining)
	assert.Equal(t, 25, status.TotalSeats)
	assert.NotEmpty(t, status.UpdatedAt)
}

func TestReadStatus(t *testing.T) {
	redisClient := newTestRedis(t)
	ctx := context.Background()

	t.Run("missing key", func(t *testing.T) {
		_, err := ReadStatus(ctx, redisClient, "unknown-program")
		assert.ErrorIs(t, err, redis.Nil)
	})

	t.Run("corrupt payload", func(t *testing.T) {
		require.NoError(t, redisClient.Set(ctx, StatusKey("broken"), "not-json", 0))
		_, err := ReadStatus(ctx, redisClient, "broken")
		assert.Error(t, err)
	})

	t.Run("round trip", func(t *testing.T) {
		manager := newTestManager(10, 15*time.Minute, nil)
		NewProjector(redisClient, logger.NewNoOpLogger()).Attach(manager)

		_, err := manager.Reserve(ctx, "spring-cohort", "visitor-1")
		require.NoError(t, err)

		status, err := ReadStatus(ctx, redisClient, "spring-cohort")
		require.NoError(t, err)
		assert.Equal(t, 9, status.SeatsRemaining)
		assert.Equal(t, 10, status.TotalSeats)
	})
}

func TestProjector_DropsRedisWriteFailures(t *testing.T) {
	client, mock := redismock.NewClientMock()
	mock.Regexp().
		ExpectSet(StatusKey("founding-member"), `.*`, statusKeyTTL).
		SetErr(stderrors.New("connection refused"))

	manager := newTestManager(25, 15*time.Minute, nil)
	NewProjector(&database.RedisClient{Client: client}, logger.NewNoOpLogger()).Attach(manager)

	res, err := manager.Reserve(context.Background(), "founding-member", "visitor-1")
	require.NoError(t, err)
	assert.NotEmpty(t, res.ReservationID)
	assert.NoError(t, mock.ExpectationsWereMet())
}
