// internal/common/camunda/worker.go
package camunda

import (
	"context"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"go.uber.org/zap"

	"funnel-workers/internal/common/config"
	"funnel-workers/internal/common/observability"
)

// HandlerFunc is the signature Zeebe job workers dispatch to.
type HandlerFunc func(client worker.JobClient, job entities.Job)

// Worker is a registered job worker for a single task type.
type Worker struct {
	worker   worker.JobWorker
	logger   *zap.Logger
	taskType string
}

// NewWorker opens a job worker for taskType and starts polling immediately.
// Every dispatched job is counted and timed through obs in addition to the
// per-handler prometheus metrics.
func NewWorker(client *Client, taskType string, wcfg config.WorkerConfig, handler HandlerFunc, obs *observability.Observability, logger *zap.Logger) *Worker {
	dispatch := func(jobClient worker.JobClient, job entities.Job) {
		start := time.Now()
		handler(jobClient, job)
		obs.RecordJobProcessed(context.Background(), taskType)
		obs.RecordJobDuration(context.Background(), taskType, time.Since(start))
	}

	jobWorker := client.GetClient().NewJobWorker().
		JobType(taskType).
		Handler(worker.JobHandler(dispatch)).
		MaxJobsActive(wcfg.MaxJobsActive).
		Timeout(time.Duration(wcfg.Timeout) * time.Millisecond).
		Open()

	logger.Info("worker started",
		zap.String("taskType", taskType),
		zap.Int("maxJobsActive", wcfg.MaxJobsActive),
		zap.Int("timeout_ms", wcfg.Timeout),
	)

	return &Worker{
		worker:   jobWorker,
		logger:   logger,
		taskType: taskType,
	}
}

// Close stops polling and waits for in-flight jobs to settle.
func (w *Worker) Close() {
	w.logger.Info("stopping worker", zap.String("taskType", w.taskType))
	w.worker.Close()
}
