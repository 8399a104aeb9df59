package worker

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/rappahq/docex-be/internal/observability/metrics"
	"github.com/rappahq/docex-be/internal/worker/domain"
	"github.com/rappahq/docex-be/internal/worker/extractor"
	"github.com/rappahq/docex-be/internal/worker/storage"
	"github.com/rappahq/docex-be/shared/postgresql"
	"github.com/rappahq/docex-be/shared/rabbitmq"
)

// Config holds worker configuration
type Config struct {
	Logger            *slog.Logger
	DBClient          *postgresql.Client
	RabbitClient      *rabbitmq.Client
	Extractor         *extractor.Client
	Metrics           *metrics.WorkerMetrics
	Concurrency       int
	JobTimeout        time.Duration
	HeartbeatInterval time.Duration
	PrefetchCount     int
	QueueName         string
}

// Worker consumes extraction jobs from RabbitMQ and runs them through the
// extraction backend
type Worker struct {
	logger            *slog.Logger
	rabbitClient      *rabbitmq.Client
	extractor         *extractor.Client
	metrics           *metrics.WorkerMetrics
	storage           *storage.Storage
	concurrency       int
	jobTimeout        time.Duration
	heartbeatInterval time.Duration
	prefetchCount     int
	queueName         string
	workerID          string
	jobsChan          chan *domain.JobMessage
	wg                sync.WaitGroup
	stopChan          chan struct{}
}

// NewWorker creates a new worker instance
func NewWorker(cfg *Config) *Worker {
	hostname, err := os.Hostname()
	if err != nil {
		hostname = "worker"
	}

	prefetch := cfg.PrefetchCount
	if prefetch <= 0 {
		prefetch = cfg.Concurrency
	}

	heartbeat := cfg.HeartbeatInterval
	if heartbeat <= 0 {
		heartbeat = 30 * time.Second
	}

	return &Worker{
		logger:            cfg.Logger,
		rabbitClient:      cfg.RabbitClient,
		extractor:         cfg.Extractor,
		metrics:           cfg.Metrics,
		storage:           storage.NewStorage(cfg.DBClient.DB(), cfg.Logger),
		concurrency:       cfg.Concurrency,
		jobTimeout:        cfg.JobTimeout,
		heartbeatInterval: heartbeat,
		prefetchCount:     prefetch,
		queueName:         cfg.QueueName,
		workerID:          fmt.Sprintf("%s-%s", hostname, uuid.New().String()[:8]),
		jobsChan:          make(chan *domain.JobMessage),
		stopChan:          make(chan struct{}),
	}
}

// Start begins consuming and processing jobs. It blocks until ctx is
// canceled, then waits for in-flight jobs to finish.
func (w *Worker) Start(ctx context.Context) error {
	w.logger.Info("Starting worker",
		slog.String("worker_id", w.workerID),
		slog.Int("concurrency", w.concurrency),
		slog.Duration("job_timeout", w.jobTimeout),
	)

	deliveries, err := w.setupConsumer(ctx)
	if err != nil {
		return fmt.Errorf("failed to set up consumer: %w", err)
	}

	w.spawnWorkerPool(ctx)
	w.startMessageDispatcher(ctx, deliveries)

	w.logger.Info("Worker dispatcher exited, waiting for in-flight jobs")
	w.wg.Wait()

	return nil
}

// Stop gracefully stops the worker
func (w *Worker) Stop() {
	w.logger.Info("Stopping worker...")
	close(w.stopChan)
	w.wg.Wait()
	w.logger.Info("Worker stopped")
}
