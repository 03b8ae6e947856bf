// internal/workers/assessment/generate-recommendations/handler.go
package generaterecommendations

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"funnel-workers/internal/assessment"
	"funnel-workers/internal/common/errors"
	"funnel-workers/internal/common/logger"
	"funnel-workers/internal/common/metrics"
	"funnel-workers/internal/models"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "generate-recommendations"
)

type Handler struct {
	timeout   time.Duration
	logger    logger.Logger
	errorHdlr *errors.ErrorHandler
}

func NewHandler(config *Config, log logger.Logger) *Handler {
	scoped := log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
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

func (h *Handler) execute(_ context.Context, input *Input) (*Output, error) {
	categoryScores, err := parseCategoryScores(input.CategoryScores)
	if err != nil {
		return nil, err
	}
	if input.OverallScore < 0 || input.OverallScore > 100 {
		return nil, errors.NewValidationFailedError(
			fmt.Sprintf("overall score %d outside 0-100", input.OverallScore))
	}

	recommendations, opportunities := assessment.Recommend(categoryScores, input.OverallScore)

	h.logger.Info("recommendations generated", map[string]interface{}{
		"assessmentId":       input.AssessmentID,
		"recommendations":    len(recommendations),
		"automationOpportunityCount": opportunities,
	})

	return &Output{
		AssessmentID:     input.AssessmentID,
		Recommendations:  recommendations,
		OpportunityCount: opportunities,
	}, nil
}

func parseCategoryScores(raw map[string]int) (map[models.Category]int, error) {
	scores := make(map[models.Category]int, len(models.Categories))
	for _, category := range models.Categories {
		score, ok := raw[string(category)]
		if !ok {
			return nil, errors.NewValidationFailedError(
				fmt.Sprintf("missing category score: %s", category))
		}
		if score < 0 || score > 100 {
			return nil, errors.NewValidationFailedError(
				fmt.Sprintf("category %s score %d outside 0-100", category, score))
		}
		scores[category] = score
	}
	return scores, nil
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
