// cmd/worker-manager/main.go
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"funnel-workers/internal/common/camunda"
	"funnel-workers/internal/common/config"
	"funnel-workers/internal/common/database"
	"funnel-workers/internal/common/logger"
	"funnel-workers/internal/common/observability"
	"funnel-workers/internal/payment"
	"funnel-workers/internal/seats"

	// Assessment workers (4)
	car "funnel-workers/internal/workers/assessment/create-assessment-record"
	ct "funnel-workers/internal/workers/assessment/classify-tier"
	gr "funnel-workers/internal/workers/assessment/generate-recommendations"
	sa "funnel-workers/internal/workers/assessment/score-assessment"

	// Enrollment workers (3)
	srel "funnel-workers/internal/workers/enrollment/seat-release"
	sres "funnel-workers/internal/workers/enrollment/seat-reserve"
	sst "funnel-workers/internal/workers/enrollment/seat-status"

	// Payment workers (2)
	cpo "funnel-workers/internal/workers/payment/create-payment-order"
	vp "funnel-workers/internal/workers/payment/verify-payment"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2 // Exponential backoff
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	zapLog := logger.New("info", "console")
	defer zapLog.Sync()

	// Wrap zap logger with our logger interface
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting worker manager...")

	cfg, err := config.Load()
	if err != nil {
		zapLog.Fatal("config load failed", zap.Error(err))
	}

	obs := observability.New("worker-manager")
	defer obs.Shutdown()

	ctx := context.Background()

	// --- Init Camunda/Zeebe client with retry ---
	var camundaClient *camunda.Client
	err = retryWithBackoff(func() error {
		var err error
		camundaClient, err = camunda.NewClient(cfg.Camunda)
		return err
	}, 10, 2*time.Second, zapLog, "Zeebe client initialization")

	if err != nil {
		zapLog.Fatal("zeebe client failed after retries", zap.Error(err))
	}
	zapLog.Info("Zeebe client connected successfully",
		zap.String("brokerAddress", cfg.Camunda.BrokerAddress))

	// --- Init PostgreSQL with retry ---
	var pg *database.PostgresClient
	err = retryWithBackoff(func() error {
		var err error
		pg, err = database.NewPostgres(cfg.Database.Postgres)
		if err != nil {
			return err
		}
		return pg.Ping(ctx)
	}, 15, 2*time.Second, zapLog, "PostgreSQL connection")

	if err != nil {
		zapLog.Fatal("postgres failed after retries", zap.Error(err))
	}
	defer pg.Close()
	zapLog.Info("PostgreSQL connected successfully")

	// --- Init Redis with retry ---
	var redis *database.RedisClient
	err = retryWithBackoff(func() error {
		var err error
		redis, err = database.NewRedis(cfg.Database.Redis)
		if err != nil {
			return err
		}
		return redis.Ping(ctx)
	}, 10, 2*time.Second, zapLog, "Redis connection")

	if err != nil {
		zapLog.Fatal("redis failed after retries", zap.Error(err))
	}
	defer redis.Close()
	zapLog.Info("Redis connected successfully")

	// --- Shared domain state ---
	seatManager := seats.NewManager(
		seats.NewPostgresRepository(pg.DB, cfg.Program.TotalSeats),
		seats.Options{
			TotalSeats:     cfg.Program.TotalSeats,
			ReservationTTL: cfg.Program.ReservationTTL,
		},
		log,
	)
	seats.NewProjector(redis, log).Attach(seatManager)

	gateway := payment.NewRazorpayGateway(cfg.Payment, log)
	coordinator := payment.NewCoordinator(
		payment.NewPostgresStore(pg.DB),
		gateway,
		seatManager,
		payment.CoordinatorOptions{
			Program:       cfg.Program,
			WebhookSecret: cfg.Payment.WebhookSecret,
		},
		log,
	)

	zapLog.Info("Seat manager and payment coordinator initialized",
		zap.String("programId", cfg.Program.ProgramID),
		zap.Int("totalSeats", cfg.Program.TotalSeats),
		zap.Duration("reservationTTL", cfg.Program.ReservationTTL),
	)

	var workers []*camunda.Worker
	register := func(taskType string, handler camunda.HandlerFunc) {
		wcfg := cfg.Workers[taskType]
		if !wcfg.Enabled {
			zapLog.Info("worker disabled", zap.String("taskType", taskType))
			return
		}
		workers = append(workers, camunda.NewWorker(camundaClient, taskType, wcfg, handler, obs, zapLog))
	}

	workerTimeout := func(taskType string) time.Duration {
		return time.Duration(cfg.Workers[taskType].Timeout) * time.Millisecond
	}

	// --- 1. Assessment Workers (4) ---
	register(sa.TaskType, sa.NewHandler(
		&sa.Config{Timeout: workerTimeout(sa.TaskType)},
		log,
	).Handle)

	register(ct.TaskType, ct.NewHandler(
		&ct.Config{Timeout: workerTimeout(ct.TaskType)},
		log,
	).Handle)

	register(gr.TaskType, gr.NewHandler(
		&gr.Config{Timeout: workerTimeout(gr.TaskType)},
		log,
	).Handle)

	register(car.TaskType, car.NewHandler(
		&car.Config{Timeout: workerTimeout(car.TaskType)},
		pg.DB, log,
	).Handle)

	// --- 2. Enrollment Workers (3) ---
	register(sres.TaskType, sres.NewHandler(
		&sres.Config{
			Timeout:          workerTimeout(sres.TaskType),
			DefaultProgramID: cfg.Program.ProgramID,
		},
		seatManager, log,
	).Handle)

	register(srel.TaskType, srel.NewHandler(
		&srel.Config{Timeout: workerTimeout(srel.TaskType)},
		seatManager, log,
	).Handle)

	register(sst.TaskType, sst.NewHandler(
		&sst.Config{
			Timeout:          workerTimeout(sst.TaskType),
			DefaultProgramID: cfg.Program.ProgramID,
		},
		seatManager, redis, log,
	).Handle)

	// --- 3. Payment Workers (2) ---
	register(cpo.TaskType, cpo.NewHandler(
		&cpo.Config{Timeout: workerTimeout(cpo.TaskType)},
		coordinator, log,
	).Handle)

	register(vp.TaskType, vp.NewHandler(
		&vp.Config{Timeout: workerTimeout(vp.TaskType)},
		coordinator, log,
	).Handle)

	zapLog.Info("All workers registered", zap.Int("count", len(workers)))

	// --- Health & Metrics Server ---
	go func() {
		http.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			json.NewEncoder(w).Encode(map[string]string{
				"status": "healthy",
				"time":   time.Now().Format(time.RFC3339),
			})
		})
		http.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			if err := pg.Ping(r.Context()); err != nil {
				w.WriteHeader(http.StatusServiceUnavailable)
				json.NewEncoder(w).Encode(map[string]string{
					"status": "not ready",
					"error":  err.Error(),
				})
				return
			}
			if err := camundaClient.HealthCheck(r.Context()); err != nil {
				w.WriteHeader(http.StatusServiceUnavailable)
				json.NewEncoder(w).Encode(map[string]string{
					"status": "not ready",
					"error":  err.Error(),
				})
				return
			}
			w.WriteHeader(http.StatusOK)
			json.NewEncoder(w).Encode(map[string]string{
				"status": "ready",
				"time":   time.Now().Format(time.RFC3339),
			})
		})
		http.Handle("/metrics", promhttp.Handler())
		zapLog.Info("Health/Metrics server listening on :8080")
		if err := http.ListenAndServe(":8080", nil); err != nil {
			zapLog.Error("Health/Metrics server failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Shutdown signal received, stopping workers...")

	for _, w := range workers {
		w.Close()
	}
	if err := camundaClient.Close(); err != nil {
		zapLog.Error("Error closing Zeebe client", zap.Error(err))
	}

	zapLog.Info("Worker manager stopped gracefully")
}
