// internal/workers/assessment/create-assessment-record/handler.go
package createassessmentrecord

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"funnel-workers/internal/common/errors"
	"funnel-workers/internal/common/logger"
	"funnel-workers/internal/common/metrics"
	"funnel-workers/internal/models"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/google/uuid"
)

const (
	TaskType = "create-assessment-record"
)

type Handler struct {
	db        *sql.DB
	timeout   time.Duration
	logger    logger.Logger
	errorHdlr *errors.ErrorHandler
}

func NewHandler(config *Config, db *sql.DB, log logger.Logger) *Handler {
	scoped := log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		db:        db,
		timeout:   config.Timeout,
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

	ctx, cancel := context.WithTimeout(context.Background(), h.timeout)
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
	if !models.Tier(input.Tier).Valid() {
		return nil, errors.NewValidationFailedError(fmt.Sprintf("unknown tier: %q", input.Tier))
	}

	assessmentID := uuid.New().String()
	createdAt := time.Now().UTC().Format(time.RFC3339)

	categoryScoresJSON, err := json.Marshal(input.CategoryScores)
	if err != nil {
		return nil, errors.NewValidationFailedError(fmt.Sprintf("marshal category scores: %v", err))
	}
	recommendationsJSON, err := json.Marshal(input.Recommendations)
	if err != nil {
		return nil, errors.NewValidationFailedError(fmt.Sprintf("marshal recommendations: %v", err))
	}

	_, err = h.db.ExecContext(ctx, `
		INSERT INTO assessments (
			id, visitor_ref, overall_score, category_scores, tier,
			recommendations, opportunity_count, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		assessmentID,
		input.VisitorRef,
		input.OverallScore,
		categoryScoresJSON,
		input.Tier,
		recommendationsJSON,
		input.OpportunityCount,
		createdAt,
	)
	if err != nil {
		return nil, errors.NewDatabaseInsertFailedError(fmt.Errorf("insert assessment: %w", err))
	}

	// Audit log insert is non-critical; log failures but keep the result.
	auditDetailsJSON, err := json.Marshal(map[string]interface{}{
		"visitorRef":   input.VisitorRef,
		"overallScore": input.OverallScore,
		"tier":         input.Tier,
	})
	if err != nil {
		h.logger.Warn("failed to marshal audit log details", map[string]interface{}{
			"error": err,
		})
		auditDetailsJSON = []byte("{}")
	}

	_, err = h.db.ExecContext(ctx, `
		INSERT INTO audit_log (event_type, resource_type, resource_id, details, created_at)
		VALUES ($1, $2, $3, $4, $5)`,
		"assessment_recorded",
		"assessment",
		assessmentID,
		auditDetailsJSON,
		createdAt,
	)
	if err != nil {
		h.logger.Warn("audit log insert failed", map[string]interface{}{
			"error":        err,
			"assessmentId": assessmentID,
		})
	}

	h.logger.Info("assessment record created", map[string]interface{}{
		"assessmentId": assessmentID,
		"visitorRef":   input.VisitorRef,
		"overallScore": input.OverallScore,
		"tier":         input.Tier,
	})

	return &Output{
		AssessmentID:     assessmentID,
		AssessmentStatus: "recorded",
		CreatedAt:        createdAt,
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
