package storage

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rappahq/docex-be/internal/api/domain"
)

const testJobID = "4f3c9c2a-6d1e-4b8a-8f0e-2a9c7d5b1e33"

func newTestStorage(t *testing.T) (*Storage, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return NewStorage(sqlx.NewDb(db, "sqlmock")), mock
}

func fieldRow(id int64, name, original string, edited any, isEdited bool) *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "job_id", "field_name", "original_value", "edited_value",
		"confidence", "is_edited", "created_at",
	}).AddRow(id, testJobID, name, original, edited, 0.92, isEdited, time.Now().UTC())
}

func TestStorage_UpdateField(t *testing.T) {
	t.Run("stores the correction and marks the field edited", func(t *testing.T) {
		s, mock := newTestStorage(t)

		mock.ExpectQuery("UPDATE extracted_fields").
			WithArgs("ACME Corp", int64(7), testJobID).
			WillReturnRows(fieldRow(7, "vendor_name", "ACME Inc", "ACME Corp", true))

		field, err := s.UpdateField(context.Background(), testJobID, 7, "ACME Corp")
		require.NoError(t, err)

		assert.True(t, field.IsEdited)
		assert.Equal(t, "ACME Corp", field.EditedValue.String)
		assert.Equal(t, "ACME Inc", field.OriginalValue.String)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns ErrFieldNotFound when the field is not in the job", func(t *testing.T) {
		s, mock := newTestStorage(t)

		mock.ExpectQuery("UPDATE extracted_fields").
			WithArgs("anything", int64(99), testJobID).
			WillReturnRows(sqlmock.NewRows([]string{"id"}))

		_, err := s.UpdateField(context.Background(), testJobID, 99, "anything")
		assert.ErrorIs(t, err, domain.ErrFieldNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestStorage_ResetField(t *testing.T) {
	t.Run("restores the extracted value", func(t *testing.T) {
		s, mock := newTestStorage(t)

		mock.ExpectQuery("UPDATE extracted_fields").
			WithArgs(int64(7), testJobID).
			WillReturnRows(fieldRow(7, "vendor_name", "ACME Inc", nil, false))

		field, err := s.ResetField(context.Background(), testJobID, 7)
		require.NoError(t, err)

		assert.False(t, field.IsEdited)
		assert.False(t, field.EditedValue.Valid)
		assert.Equal(t, "ACME Inc", field.OriginalValue.String)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns ErrFieldNotFound for an unknown field", func(t *testing.T) {
		s, mock := newTestStorage(t)

		mock.ExpectQuery("UPDATE extracted_fields").
			WithArgs(int64(99), testJobID).
			WillReturnRows(sqlmock.NewRows([]string{"id"}))

		_, err := s.ResetField(context.Background(), testJobID, 99)
		assert.ErrorIs(t, err, domain.ErrFieldNotFound)
	})
}
