package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/rappahq/docex-be/internal/worker/domain"
	"github.com/rappahq/docex-be/internal/worker/extractor"
)

// processJob runs a single extraction job: claim, extract, persist.
// The returned error drives the ACK/NACK decision in the worker loop.
func (w *Worker) processJob(ctx context.Context, msg *domain.JobMessage) error {
	w.logger.Info("Processing job",
		slog.String("job_id", msg.JobID),
		slog.String("worker_id", w.workerID),
	)

	job, err := w.storage.ClaimJob(ctx, msg.JobID, w.workerID)
	if err != nil {
		if errors.Is(err, domain.ErrJobAlreadyClaimed) {
			w.logger.Warn("Job already claimed, skipping",
				slog.String("job_id", msg.JobID),
			)
			return fmt.Errorf("job already claimed: %w", err)
		}
		// Database error, could be transient
		return domain.NewRetryableError(fmt.Errorf("failed to claim job: %w", err))
	}

	jobCtx, cancel := context.WithTimeout(ctx, w.jobTimeout)
	defer cancel()

	heartbeatDone := make(chan struct{})
	go w.sendJobHeartbeat(jobCtx, job.JobID, heartbeatDone)
	defer close(heartbeatDone)

	result, err := w.extractor.Extract(jobCtx, &extractor.Request{
		JobID:       job.JobID,
		StoragePath: job.StoragePath,
		FileType:    job.FileType,
		TemplateID:  job.TemplateID,
	})

	if err != nil {
		return w.handleExtractionFailure(ctx, job, err)
	}

	if err := w.storage.CompleteJob(ctx, job.JobID, result); err != nil {
		w.logger.Error("Failed to persist extraction result",
			slog.String("job_id", job.JobID),
			slog.String("error", err.Error()),
		)
		return w.handleExtractionFailure(ctx, job, fmt.Errorf("failed to persist result: %w", err))
	}

	w.logger.Info("Job completed successfully",
		slog.String("job_id", job.JobID),
		slog.String("document_type", result.DocumentType),
		slog.Float64("confidence", result.Confidence),
	)

	return nil
}

// handleExtractionFailure records the failure and decides whether the job
// gets another attempt
func (w *Worker) handleExtractionFailure(ctx context.Context, job *domain.Job, extractErr error) error {
	var retryableErr *domain.RetryableError
	retryable := errors.As(extractErr, &retryableErr)

	willRetry := retryable && job.RetryCount < job.MaxRetries

	if failErr := w.storage.FailJob(ctx, job.JobID, extractErr.Error(), willRetry); failErr != nil {
		w.logger.Error("Failed to record job failure",
			slog.String("job_id", job.JobID),
			slog.String("error", failErr.Error()),
		)
	}

	if willRetry {
		w.logger.Info("Job will be retried",
			slog.String("job_id", job.JobID),
			slog.Int("retry_count", job.RetryCount),
			slog.Int("max_retries", job.MaxRetries),
		)
		return domain.NewRetryableError(fmt.Errorf("extraction failed: %w", extractErr))
	}

	if retryable {
		w.logger.Warn("Job exceeded max retries",
			slog.String("job_id", job.JobID),
			slog.Int("retry_count", job.RetryCount),
			slog.Int("max_retries", job.MaxRetries),
		)
		return fmt.Errorf("%w: %v", domain.ErrMaxRetriesExceeded, extractErr)
	}

	return fmt.Errorf("extraction failed permanently: %w", extractErr)
}

// sendJobHeartbeat periodically updates the job's heartbeat timestamp
func (w *Worker) sendJobHeartbeat(ctx context.Context, jobID string, done <-chan struct{}) {
	ticker := time.NewTicker(w.heartbeatInterval)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return

		case <-ctx.Done():
			return

		case <-ticker.C:
			if err := w.storage.UpdateJobHeartbeat(ctx, jobID); err != nil {
				w.logger.Warn("Failed to update job heartbeat",
					slog.String("job_id", jobID),
					slog.String("error", err.Error()),
				)
			}
		}
	}
}
