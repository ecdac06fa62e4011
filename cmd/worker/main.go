package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/coursedocs/course-assistant/internal/config"
	"github.com/coursedocs/course-assistant/internal/core/domain"
	"github.com/coursedocs/course-assistant/internal/infrastructure/queue/nats"
	"github.com/coursedocs/course-assistant/internal/infrastructure/repository/postgres"
	"github.com/coursedocs/course-assistant/internal/infrastructure/resilience"
	"github.com/coursedocs/course-assistant/internal/observability/logging"
	"github.com/coursedocs/course-assistant/internal/observability/metrics"
)

const service = "worker"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}
	slog.SetDefault(logging.NewJSONLogger(service, cfg.LogLevel))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := postgres.OpenDB(cfg.PostgresDSN)
	if err != nil {
		log.Fatalf("open postgres: %v", err)
	}
	defer func() { _ = db.Close() }()

	repo := postgres.NewTurnLogRepository(db)
	if err := repo.EnsureSchema(ctx); err != nil {
		log.Fatalf("ensure schema: %v", err)
	}

	queue, err := nats.NewWithOptions(cfg.NATSURL, cfg.NATSSubject, nats.Options{
		ResilienceExecutor: resilience.NewExecutor(resilience.DefaultConfig()),
	})
	if err != nil {
		log.Fatalf("init event queue: %v", err)
	}
	defer queue.Close()

	workerMetrics := metrics.NewWorkerMetrics(service)
	metricsServer := &http.Server{
		Addr:    ":" + cfg.WorkerMetricsPort,
		Handler: workerMetrics.Handler(),
	}
	go func() {
		slog.Info("worker_metrics_listening", "port", cfg.WorkerMetricsPort)
		if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("worker_metrics_server_error", "error", err)
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = metricsServer.Shutdown(shutdownCtx)
	}()

	slog.Info("worker_subscribed", "subject", cfg.NATSSubject)
	err = queue.SubscribeTurnCompleted(ctx, func(handlerCtx context.Context, event domain.TurnEvent) error {
		workerMetrics.StartEvent()
		workerMetrics.ObserveEventLag(service, time.Since(event.CreatedAt))

		start := time.Now()
		persistCtx, cancel := context.WithTimeout(handlerCtx, 30*time.Second)
		defer cancel()

		persistErr := repo.RecordTurn(persistCtx, event)
		workerMetrics.FinishEvent(service, time.Since(start), persistErr)
		return persistErr
	})
	if err != nil {
		log.Fatalf("worker subscribe error: %v", err)
	}
}
