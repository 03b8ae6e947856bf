// internal/workers/assessment/score-assessment/handler.go
package scoreassessment

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"funnel-workers/internal/assessment"
	"funnel-workers/internal/common/errors"
	"funnel-workers/internal/common/logger"
	"funnel-workers/internal/common/metrics"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/xeipuuv/gojsonschema"
)

const (
	TaskType = "score-assessment"
)

// answerSetSchema rejects malformed payloads before the engine sees them. The
// engine still enforces the value range itself; the schema gives process
// models a clean VALIDATION_FAILED with field-level detail.
const answerSetSchema = `{
	"type": "object",
	"required": ["answers"],
	"properties": {
		"assessmentId": {"type": "string"},
		"answers": {
			"type": "array",
			"minItems": 1,
			"items": {
				"type": "object",
				"required": ["questionId", "value"],
				"properties": {
					"questionId": {"type": "string", "minLength": 1},
					"value": {"type": "integer"}
				}
			}
		}
	}
}`

type Handler struct {
	timeout   time.Duration
	logger    logger.Logger
	errorHdlr *errors.ErrorHandler
	schema    *gojsonschema.Schema
}

func NewHandler(config *Config, log logger.Logger) *Handler {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(answerSetSchema))
	if err != nil {
		// The schema is a compile-time constant; this cannot happen on a
		// released build.
		panic(fmt.Sprintf("invalid answer set schema: %v", err))
	}
	scoped := log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		timeout:   config.Timeout,
		logger:    scoped,
		errorHdlr: errors.NewErrorHandler(scoped),
		schema:    schema,
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

	ctx, cancel := context.WithTimeout(context.Background(), h.timeout)
	defer cancel()

	input, err := h.parseAndValidate(job.Variables)
	if err != nil {
		h.errorHdlr.HandleJobError(ctx, client, job, err)
		return
	}

	output, err := h.execute(ctx, input)
	if err != nil {
		h.errorHdlr.HandleJobError(ctx, client, job, err)
		return
	}

	h.completeJob(client, job, output)
	metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()
	metrics.WorkerJobDuration.WithLabelValues(TaskType).Observe(time.Since(startTime).Seconds())
}

func (h *Handler) parseAndValidate(variables string) (*Input, error) {
	result, err := h.schema.Validate(gojsonschema.NewStringLoader(variables))
	if err != nil {
		return nil, errors.NewValidationFailedError(fmt.Sprintf("payload is not valid JSON: %v", err))
	}
	if !result.Valid() {
		details := make([]string, len(result.Errors()))
		for i, desc := range result.Errors() {
			details[i] = desc.String()
		}
		return nil, errors.NewValidationFailedError(fmt.Sprintf("answer set rejected: %v", details))
	}

	var input Input
	if err := json.Unmarshal([]byte(variables), &input); err != nil {
		return nil, errors.NewValidationFailedError(fmt.Sprintf("parse input: %v", err))
	}
	return &input, nil
}

func (h *Handler) execute(_ context.Context, input *Input) (*Output, error) {
	result, err := assessment.Score(input.Answers)
	if err != nil {
		return nil, err
	}

	categoryScores := make(map[string]int, len(result.CategoryScores))
	for category, score := range result.CategoryScores {
		categoryScores[string(category)] = score
	}

	h.logger.Info("assessment scored", map[string]interface{}{
		"assessmentId":   input.AssessmentID,
		"overallScore":   result.OverallScore,
		"categoryScores": categoryScores,
	})

	return &Output{
		AssessmentID:   input.AssessmentID,
		OverallScore:   result.OverallScore,
		CategoryScores: categoryScores,
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
