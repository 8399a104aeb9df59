package storage

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rappahq/docex-be/internal/worker/domain"
)

func newTestStorage(t *testing.T) (*Storage, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewStorage(sqlx.NewDb(db, "sqlmock"), logger), mock
}

func TestStorage_ClaimJob(t *testing.T) {
	t.Run("claims a queued job", func(t *testing.T) {
		s, mock := newTestStorage(t)

		rows := sqlmock.NewRows([]string{
			"job_id", "user_id", "filename", "storage_path", "file_type", "template_id", "retry_count", "max_retries",
		}).AddRow(
			"0b54ad77-9c3e-4f71-9e2e-1f6f3a1c2d4e", "user-1", "invoice.pdf", "uploads/invoice.pdf", "pdf", "tpl-invoice", 0, 3,
		)

		mock.ExpectQuery("UPDATE jobs").
			WithArgs(domain.JobStatusProcessing, "worker-a", "0b54ad77-9c3e-4f71-9e2e-1f6f3a1c2d4e", domain.JobStatusQueued).
			WillReturnRows(rows)

		job, err := s.ClaimJob(context.Background(), "0b54ad77-9c3e-4f71-9e2e-1f6f3a1c2d4e", "worker-a")
		require.NoError(t, err)

		assert.Equal(t, domain.JobStatusProcessing, job.Status)
		assert.Equal(t, "invoice.pdf", job.Filename)
		assert.Equal(t, "tpl-invoice", job.TemplateID)
		assert.Equal(t, 3, job.MaxRetries)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns ErrJobAlreadyClaimed when no queued row matches", func(t *testing.T) {
		s, mock := newTestStorage(t)

		mock.ExpectQuery("UPDATE jobs").
			WithArgs(domain.JobStatusProcessing, "worker-a", "missing", domain.JobStatusQueued).
			WillReturnRows(sqlmock.NewRows([]string{"job_id"}))

		_, err := s.ClaimJob(context.Background(), "missing", "worker-a")
		assert.ErrorIs(t, err, domain.ErrJobAlreadyClaimed)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("null template_id is allowed", func(t *testing.T) {
		s, mock := newTestStorage(t)

		rows := sqlmock.NewRows([]string{
			"job_id", "user_id", "filename", "storage_path", "file_type", "template_id", "retry_count", "max_retries",
		}).AddRow(
			"job-1", "user-1", "scan.png", "uploads/scan.png", "png", nil, 1, 3,
		)

		mock.ExpectQuery("UPDATE jobs").
			WithArgs(domain.JobStatusProcessing, "worker-a", "job-1", domain.JobStatusQueued).
			WillReturnRows(rows)

		job, err := s.ClaimJob(context.Background(), "job-1", "worker-a")
		require.NoError(t, err)

		assert.Empty(t, job.TemplateID)
		assert.Equal(t, 1, job.RetryCount)
	})
}

func TestStorage_CompleteJob(t *testing.T) {
	s, mock := newTestStorage(t)

	result := &domain.ExtractionResult{
		DocumentType: "invoice",
		Confidence:   94.5,
		Fields: []domain.ExtractedField{
			{Name: "vendor_name", Value: "Acme Corp", Confidence: 97.2},
			{Name: "total_amount", Value: "1280.50", Confidence: 91.8},
		},
	}

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM extracted_fields").
		WithArgs("job-1").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("INSERT INTO extracted_fields").
		WithArgs("job-1", "vendor_name", "Acme Corp", 97.2).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO extracted_fields").
		WithArgs("job-1", "total_amount", "1280.50", 91.8).
		WillReturnResult(sqlmock.NewResult(2, 1))
	mock.ExpectExec("UPDATE jobs").
		WithArgs(domain.JobStatusCompleted, "invoice", 94.5, "job-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := s.CompleteJob(context.Background(), "job-1", result)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStorage_FailJob(t *testing.T) {
	t.Run("requeues when retrying", func(t *testing.T) {
		s, mock := newTestStorage(t)

		mock.ExpectExec("UPDATE jobs").
			WithArgs(domain.JobStatusQueued, "backend timeout", domain.JobStatusFailed, "job-1").
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := s.FailJob(context.Background(), "job-1", "backend timeout", true)
		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("marks failed on final attempt", func(t *testing.T) {
		s, mock := newTestStorage(t)

		mock.ExpectExec("UPDATE jobs").
			WithArgs(domain.JobStatusFailed, "unsupported layout", domain.JobStatusFailed, "job-1").
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := s.FailJob(context.Background(), "job-1", "unsupported layout", false)
		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestStorage_UpdateJobHeartbeat(t *testing.T) {
	s, mock := newTestStorage(t)

	mock.ExpectExec("UPDATE jobs").
		WithArgs("job-1", domain.JobStatusProcessing).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := s.UpdateJobHeartbeat(context.Background(), "job-1")
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
