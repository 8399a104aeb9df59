package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"

	"github.com/rappahq/docex-be/internal/worker/domain"
)

// Storage handles all database operations for the worker
type Storage struct {
	db     *sqlx.DB
	logger *slog.Logger
}

// NewStorage creates a new Storage instance
func NewStorage(db *sqlx.DB, logger *slog.Logger) *Storage {
	return &Storage{
		db:     db,
		logger: logger,
	}
}

// ClaimJob attempts to claim a queued job using optimistic locking.
// Returns full job details on success, ErrJobAlreadyClaimed if another
// worker got there first or the job is not in queued status.
func (s *Storage) ClaimJob(ctx context.Context, jobID, workerID string) (*domain.Job, error) {
	query := `
		UPDATE jobs
		SET status = $1,
		    worker_id = $2,
		    started_at = NOW(),
		    last_heartbeat_at = NOW(),
		    updated_at = NOW()
		WHERE job_id = $3
		  AND status = $4
		RETURNING job_id, user_id, filename, storage_path, file_type, template_id, retry_count, max_retries
	`

	var job domain.Job
	var templateID sql.NullString

	err := s.db.QueryRowContext(ctx, query, domain.JobStatusProcessing, workerID, jobID, domain.JobStatusQueued).Scan(
		&job.JobID,
		&job.UserID,
		&job.Filename,
		&job.StoragePath,
		&job.FileType,
		&templateID,
		&job.RetryCount,
		&job.MaxRetries,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			s.logger.Warn("Failed to claim job - already claimed or not found",
				slog.String("job_id", jobID),
				slog.String("worker_id", workerID),
			)
			return nil, domain.ErrJobAlreadyClaimed
		}
		return nil, fmt.Errorf("failed to claim job: %w", err)
	}

	job.Status = domain.JobStatusProcessing
	if templateID.Valid {
		job.TemplateID = templateID.String
	}

	s.logger.Info("Job claimed successfully",
		slog.String("job_id", jobID),
		slog.String("worker_id", workerID),
		slog.String("file_type", job.FileType),
	)

	return &job, nil
}

// CompleteJob persists extraction output and marks the job completed.
// Field rows and the job row are written in a single transaction so the job
// is never visible as completed without its extracted fields.
func (s *Storage) CompleteJob(ctx context.Context, jobID string, result *domain.ExtractionResult) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	deleteQuery := `DELETE FROM extracted_fields WHERE job_id = $1`
	if _, err := tx.ExecContext(ctx, deleteQuery, jobID); err != nil {
		return fmt.Errorf("failed to clear previous fields: %w", err)
	}

	insertQuery := `
		INSERT INTO extracted_fields (job_id, field_name, original_value, confidence, created_at)
		VALUES ($1, $2, $3, $4, NOW())
	`
	for _, field := range result.Fields {
		if _, err := tx.ExecContext(ctx, insertQuery, jobID, field.Name, field.Value, field.Confidence); err != nil {
			return fmt.Errorf("failed to insert extracted field %q: %w", field.Name, err)
		}
	}

	updateQuery := `
		UPDATE jobs
		SET status = $1,
		    document_type = $2,
		    confidence = $3,
		    error_message = NULL,
		    completed_at = NOW(),
		    updated_at = NOW()
		WHERE job_id = $4
	`
	if _, err := tx.ExecContext(ctx, updateQuery, domain.JobStatusCompleted, result.DocumentType, result.Confidence, jobID); err != nil {
		return fmt.Errorf("failed to mark job completed: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit completion: %w", err)
	}

	s.logger.Info("Job completed",
		slog.String("job_id", jobID),
		slog.String("document_type", result.DocumentType),
		slog.Int("field_count", len(result.Fields)),
	)

	return nil
}

// FailJob records a failed attempt. When willRetry is true the job goes
// back to queued with an incremented retry count; otherwise it is marked
// failed with the error message.
func (s *Storage) FailJob(ctx context.Context, jobID, errorMsg string, willRetry bool) error {
	status := domain.JobStatusFailed
	if willRetry {
		status = domain.JobStatusQueued
	}

	query := `
		UPDATE jobs
		SET status = $1,
		    error_message = $2,
		    retry_count = retry_count + 1,
		    worker_id = NULL,
		    completed_at = CASE WHEN $1 = $3 THEN NOW() ELSE NULL END,
		    updated_at = NOW()
		WHERE job_id = $4
	`

	_, err := s.db.ExecContext(ctx, query, status, errorMsg, domain.JobStatusFailed, jobID)
	if err != nil {
		return fmt.Errorf("failed to record job failure: %w", err)
	}

	s.logger.Info("Job failure recorded",
		slog.String("job_id", jobID),
		slog.String("status", status),
		slog.Bool("will_retry", willRetry),
	)

	return nil
}

// UpdateJobHeartbeat updates the last_heartbeat_at timestamp for a processing job
func (s *Storage) UpdateJobHeartbeat(ctx context.Context, jobID string) error {
	query := `
		UPDATE jobs
		SET last_heartbeat_at = NOW(),
		    updated_at = NOW()
		WHERE job_id = $1 AND status = $2
	`

	result, err := s.db.ExecContext(ctx, query, jobID, domain.JobStatusProcessing)
	if err != nil {
		return fmt.Errorf("failed to update job heartbeat: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		s.logger.Warn("Job heartbeat update - no rows affected (job may not be processing)",
			slog.String("job_id", jobID),
		)
	}

	return nil
}
