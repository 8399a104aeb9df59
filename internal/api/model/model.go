package model

import (
	"database/sql"
	"time"

	"github.com/rappahq/docex-be/internal/listview"
)

// Job is one uploaded document tracked through extraction.
type Job struct {
	JobID        string          `db:"job_id"`
	UserID       string          `db:"user_id"`
	Filename     string          `db:"filename"`
	StoragePath  string          `db:"storage_path"`
	FileType     string          `db:"file_type"`
	FileHash     sql.NullString  `db:"file_hash"`
	DocumentType sql.NullString  `db:"document_type"`
	TemplateID   sql.NullString  `db:"template_id"`
	Confidence   sql.NullFloat64 `db:"confidence"`
	Status       string          `db:"status"`
	ErrorMessage sql.NullString  `db:"error_message"`
	RetryCount   int             `db:"retry_count"`
	MaxRetries   int             `db:"max_retries"`
	CreatedAt    time.Time       `db:"created_at"`
	CompletedAt  sql.NullTime    `db:"completed_at"`
	UpdatedAt    time.Time       `db:"updated_at"`
}

// ExtractedField is one key/value pair pulled out of a completed job's
// document. EditedValue holds a user correction made in the dashboard.
type ExtractedField struct {
	ID            int64           `db:"id"`
	JobID         string          `db:"job_id"`
	FieldName     string          `db:"field_name"`
	OriginalValue sql.NullString  `db:"original_value"`
	EditedValue   sql.NullString  `db:"edited_value"`
	Confidence    sql.NullFloat64 `db:"confidence"`
	IsEdited      bool            `db:"is_edited"`
	CreatedAt     time.Time       `db:"created_at"`
}

// ListViewRecord converts the job into the opaque map form the list-view
// pipeline operates on. Absent optionals are simply left out so the search
// stage resolves them to "no match".
func (j *Job) ListViewRecord() listview.Record {
	rec := listview.Record{
		"id":                  j.JobID,
		"filename":            j.Filename,
		"file_type":           j.FileType,
		listview.KeyStatus:    j.Status,
		listview.KeyCreatedAt: j.CreatedAt.UTC().Format(time.RFC3339),
	}
	if j.DocumentType.Valid {
		rec[listview.KeyDocumentType] = j.DocumentType.String
	}
	if j.TemplateID.Valid {
		rec[listview.KeyTemplateID] = j.TemplateID.String
	}
	if j.Confidence.Valid {
		rec[listview.KeyConfidence] = j.Confidence.Float64
	}
	if j.ErrorMessage.Valid {
		rec["error_message"] = j.ErrorMessage.String
	}
	return rec
}
