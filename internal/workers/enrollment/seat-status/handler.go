// internal/workers/enrollment/seat-status/handler.go
package seatstatus

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"funnel-workers/internal/common/database"
	"funnel-workers/internal/common/errors"
	"funnel-workers/internal/common/logger"
	"funnel-workers/internal/common/metrics"
	"funnel-workers/internal/seats"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "seat-status"
)

// Handler answers the advisory "seats remaining" read. It serves from the
// Redis projection first and falls back to the seat repository when the
// projection is missing or unreadable. The answer may be stale; callers must
// still expect Reserve to fail.
type Handler struct {
	seats     *seats.Manager
	redis     *database.RedisClient
	config    *Config
	logger    logger.Logger
	errorHdlr *errors.ErrorHandler
}

func NewHandler(config *Config, seatManager *seats.Manager, redis *database.RedisClient, log logger.Logger) *Handler {
	scoped := log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		seats:     seatManager,
		redis:     redis,
		config:    config,
		logger:    scoped,
		errorHdlr: errors.NewErrorHandler(scoped),
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	startTime := time.Now()
	metrics.WorkerJobsActive.WithLabelValues(TaskType).Inc()
	defer metrics.WorkerJobsActive.WithLabelValues(TaskType).Dec()

	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		h.errorHdlr.HandleJobError(ctx, client, job,
			errors.NewValidationFailedError(fmt.Sprintf("parse input: %v", err)))
		return
	}

	output, err := h.execute(ctx, &input)
	if err != nil {
		h.errorHdlr.HandleJobError(ctx, client, job, err)
		return
	}

	h.completeJob(client, job, output)
	metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()
	metrics.WorkerJobDuration.WithLabelValues(TaskType).Observe(time.Since(startTime).Seconds())
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	programID := input.ProgramID
	if programID == "" {
		programID = h.config.DefaultProgramID
	}

	if h.redis != nil {
		status, err := seats.ReadStatus(ctx, h.redis, programID)
		if err == nil {
			return &Output{
				ProgramID:      programID,
				SeatsRemaining: status.SeatsRemaining,
				TotalSeats:     status.TotalSeats,
				Source:         "cache",
			}, nil
		}
		h.logger.Debug("seat status cache miss", map[string]interface{}{
			"programId": programID,
			"error":     err,
		})
	}

	remaining, total, err := h.seats.SeatsRemaining(ctx, programID)
	if err != nil {
		return nil, err
	}

	return &Output{
		ProgramID:      programID,
		SeatsRemaining: remaining,
		TotalSeats:     total,
		Source:         "store",
	}, nil
}

func (h *Handler) completeJob(client worker.JobClient, job entities.Job, output *Output) {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		h.logger.Error("failed to create complete job command", map[string]interface{}{
			"error": err,
		})
		return
	}
	_, err = cmd.Send(context.Background())
	if err != nil {
		h.logger.Error("failed to send complete job command", map[string]interface{}{
			"error": err,
		})
	}
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
