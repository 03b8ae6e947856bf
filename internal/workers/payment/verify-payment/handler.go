// internal/workers/payment/verify-payment/handler.go
package verifypayment

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"funnel-workers/internal/common/errors"
	"funnel-workers/internal/common/logger"
	"funnel-workers/internal/common/metrics"
	"funnel-workers/internal/payment"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "verify-payment"
)

type Handler struct {
	coordinator *payment.Coordinator
	config      *Config
	logger      logger.Logger
	errorHdlr   *errors.ErrorHandler
}

func NewHandler(config *Config, coordinator *payment.Coordinator, log logger.Logger) *Handler {
	scoped := log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		coordinator: coordinator,
		config:      config,
		logger:      scoped,
		errorHdlr:   errors.NewErrorHandler(scoped),
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
	if input.ProviderOrderRef == "" || input.ProviderPaymentRef == "" || input.Signature == "" {
		return nil, errors.NewValidationFailedError(
			"providerOrderRef, providerPaymentRef and signature are required")
	}

	enrollment, err := h.coordinator.VerifyPayment(ctx, payment.VerifyInput{
		ProviderOrderRef:   input.ProviderOrderRef,
		ProviderPaymentRef: input.ProviderPaymentRef,
		Signature:          input.Signature,
		Amount:             input.Amount,
		Currency:           input.Currency,
	})
	if err != nil {
		return nil, err
	}

	return &Output{
		EnrollmentID:  enrollment.EnrollmentID,
		ReservationID: enrollment.ReservationID,
		OrderID:       enrollment.OrderID,
		Enrolled:      true,
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
