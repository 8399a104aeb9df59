package dto

type CreateJobRequest struct {
	UserID      string `json:"user_id" binding:"required"`
	Filename    string `json:"filename" binding:"required"`
	StoragePath string `json:"storage_path" binding:"required"`
	FileType    string `json:"file_type" binding:"required,oneof=pdf jpg png"`
	FileHash    string `json:"file_hash"`
	TemplateID  string `json:"template_id"`
}

// ListJobsRequest carries the dashboard list-view state as query parameters.
// Set-valued filters (status, document_type, template_id) are comma separated.
type ListJobsRequest struct {
	UserID        string  `form:"user_id" binding:"required"`
	Search        string  `form:"search"`
	Status        string  `form:"status"`
	DateFrom      string  `form:"date_from"`
	DateTo        string  `form:"date_to"`
	DocumentType  string  `form:"document_type"`
	TemplateID    string  `form:"template_id"`
	MinConfidence float64 `form:"min_confidence"`
	Page          int     `form:"page"`
	PageSize      int     `form:"page_size"`
}

type JobDTO struct {
	JobID        string   `json:"job_id"`
	UserID       string   `json:"user_id"`
	Filename     string   `json:"filename"`
	FileType     string   `json:"file_type"`
	DocumentType string   `json:"document_type,omitempty"`
	TemplateID   string   `json:"template_id,omitempty"`
	Confidence   *float64 `json:"confidence,omitempty"`
	Status       string   `json:"status"`
	ErrorMessage string   `json:"error_message,omitempty"`
	CreatedAt    string   `json:"created_at"`
	CompletedAt  string   `json:"completed_at,omitempty"`
	UpdatedAt    string   `json:"updated_at"`
}

// PageMeta mirrors listview.PageInfo for the wire: 1-based inclusive indices
// for a "Showing X to Y of Z" caption plus navigation flags.
type PageMeta struct {
	Total       int  `json:"total"`
	TotalPages  int  `json:"total_pages"`
	Page        int  `json:"page"`
	PageSize    int  `json:"page_size"`
	StartIndex  int  `json:"start_index"`
	EndIndex    int  `json:"end_index"`
	HasNext     bool `json:"has_next"`
	HasPrevious bool `json:"has_previous"`
}

type ListJobsResponse struct {
	Jobs []JobDTO `json:"jobs"`
	Meta PageMeta `json:"meta"`
}

// UpdateFieldRequest carries a manual correction for a single extracted field.
type UpdateFieldRequest struct {
	EditedValue string `json:"edited_value" binding:"required"`
}

type FieldDTO struct {
	ID            int64    `json:"id"`
	FieldName     string   `json:"field_name"`
	OriginalValue string   `json:"original_value,omitempty"`
	EditedValue   string   `json:"edited_value,omitempty"`
	CurrentValue  string   `json:"current_value,omitempty"`
	Confidence    *float64 `json:"confidence,omitempty"`
	IsEdited      bool     `json:"is_edited"`
}

type JobResultsResponse struct {
	Job         JobDTO     `json:"job"`
	Fields      []FieldDTO `json:"fields"`
	FieldsCount int        `json:"fields_count"`
}

// DashboardStatsResponse is the per-user overview the dashboard landing page
// renders.
type DashboardStatsResponse struct {
	Jobs        JobCounts `json:"jobs"`
	RecentJobs  []JobDTO  `json:"recent_jobs"`
	GeneratedAt string    `json:"generated_at"`
}

type JobCounts struct {
	Total       int     `json:"total"`
	Queued      int     `json:"queued"`
	Processing  int     `json:"processing"`
	Completed   int     `json:"completed"`
	Failed      int     `json:"failed"`
	SuccessRate float64 `json:"success_rate"`
}
