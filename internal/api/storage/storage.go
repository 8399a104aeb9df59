package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/rappahq/docex-be/internal/api/domain"
	"github.com/rappahq/docex-be/internal/api/model"
)

const jobColumns = `
	job_id, user_id, filename, storage_path, file_type, file_hash,
	document_type, template_id, confidence, status, error_message,
	retry_count, max_retries, created_at, completed_at, updated_at
`

type Storage struct {
	db *sqlx.DB
}

func NewStorage(db *sqlx.DB) *Storage {
	return &Storage{
		db: db,
	}
}

func (s *Storage) CreateJob(ctx context.Context, job *model.Job) error {
	query := `
		INSERT INTO jobs (
			job_id, user_id, filename, storage_path, file_type, file_hash,
			template_id, status, retry_count, max_retries, created_at, updated_at
		) VALUES (
			:job_id, :user_id, :filename, :storage_path, :file_type, :file_hash,
			:template_id, :status, :retry_count, :max_retries, :created_at, :updated_at
		)
	`

	if _, err := s.db.NamedExecContext(ctx, query, job); err != nil {
		return fmt.Errorf("failed to create job: %w", err)
	}

	return nil
}

func (s *Storage) GetJobByID(ctx context.Context, jobID string) (*model.Job, error) {
	var job model.Job
	query := `SELECT ` + jobColumns + ` FROM jobs WHERE job_id = $1`

	err := s.db.GetContext(ctx, &job, query, jobID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrJobNotFound
		}
		return nil, fmt.Errorf("failed to get job: %w", err)
	}

	return &job, nil
}

// ListJobsByUser returns every job owned by the user, newest first. Search,
// filtering, and pagination over the result belong to the listview pipeline,
// so there is deliberately no SQL-side filter here beyond the user scope.
func (s *Storage) ListJobsByUser(ctx context.Context, userID string) ([]model.Job, error) {
	query := `
		SELECT ` + jobColumns + `
		FROM jobs
		WHERE user_id = $1
		ORDER BY created_at DESC, job_id DESC
	`

	var jobs []model.Job
	if err := s.db.SelectContext(ctx, &jobs, query, userID); err != nil {
		return nil, fmt.Errorf("failed to list jobs: %w", err)
	}

	return jobs, nil
}

// RecentJobs returns the user's newest jobs for the dashboard overview.
func (s *Storage) RecentJobs(ctx context.Context, userID string, limit int) ([]model.Job, error) {
	query := `
		SELECT ` + jobColumns + `
		FROM jobs
		WHERE user_id = $1
		ORDER BY created_at DESC, job_id DESC
		LIMIT $2
	`

	var jobs []model.Job
	if err := s.db.SelectContext(ctx, &jobs, query, userID, limit); err != nil {
		return nil, fmt.Errorf("failed to list recent jobs: %w", err)
	}

	return jobs, nil
}

// CountJobsByStatus returns the user's job counts keyed by status.
func (s *Storage) CountJobsByStatus(ctx context.Context, userID string) (map[string]int, error) {
	query := `
		SELECT status, COUNT(*) AS count
		FROM jobs
		WHERE user_id = $1
		GROUP BY status
	`

	rows := []struct {
		Status string `db:"status"`
		Count  int    `db:"count"`
	}{}

	if err := s.db.SelectContext(ctx, &rows, query, userID); err != nil {
		return nil, fmt.Errorf("failed to count jobs: %w", err)
	}

	counts := make(map[string]int, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Count
	}

	return counts, nil
}

const fieldColumns = `
	id, job_id, field_name, original_value, edited_value,
	confidence, is_edited, created_at
`

func (s *Storage) ListFieldsByJob(ctx context.Context, jobID string) ([]model.ExtractedField, error) {
	query := `
		SELECT ` + fieldColumns + `
		FROM extracted_fields
		WHERE job_id = $1
		ORDER BY id
	`

	var fields []model.ExtractedField
	if err := s.db.SelectContext(ctx, &fields, query, jobID); err != nil {
		return nil, fmt.Errorf("failed to list extracted fields: %w", err)
	}

	return fields, nil
}

// UpdateField stores a manual correction for one extracted field. The field
// is looked up within the job so a field id from another job cannot match.
func (s *Storage) UpdateField(ctx context.Context, jobID string, fieldID int64, editedValue string) (*model.ExtractedField, error) {
	query := `
		UPDATE extracted_fields
		SET edited_value = $1, is_edited = TRUE
		WHERE id = $2 AND job_id = $3
		RETURNING ` + fieldColumns

	var field model.ExtractedField
	err := s.db.GetContext(ctx, &field, query, editedValue, fieldID, jobID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrFieldNotFound
		}
		return nil, fmt.Errorf("failed to update field: %w", err)
	}

	return &field, nil
}

// ResetField discards the manual correction and restores the extracted value.
func (s *Storage) ResetField(ctx context.Context, jobID string, fieldID int64) (*model.ExtractedField, error) {
	query := `
		UPDATE extracted_fields
		SET edited_value = NULL, is_edited = FALSE
		WHERE id = $1 AND job_id = $2
		RETURNING ` + fieldColumns

	var field model.ExtractedField
	err := s.db.GetContext(ctx, &field, query, fieldID, jobID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrFieldNotFound
		}
		return nil, fmt.Errorf("failed to reset field: %w", err)
	}

	return &field, nil
}

// DeleteJob removes a job and its extracted fields in one transaction.
func (s *Storage) DeleteJob(ctx context.Context, jobID string) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM extracted_fields WHERE job_id = $1`, jobID); err != nil {
		return fmt.Errorf("failed to delete extracted fields: %w", err)
	}

	result, err := tx.ExecContext(ctx, `DELETE FROM jobs WHERE job_id = $1`, jobID)
	if err != nil {
		return fmt.Errorf("failed to delete job: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return domain.ErrJobNotFound
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit delete: %w", err)
	}

	return nil
}
