package handler

import (
	"database/sql"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rappahq/docex-be/internal/api/domain"
	"github.com/rappahq/docex-be/internal/api/dto"
	"github.com/rappahq/docex-be/internal/api/model"
	"github.com/rappahq/docex-be/internal/listview"
)

const defaultMaxRetries = 3

// CreateJob handles POST /api/v1/jobs
// Registers an uploaded document as a queued job and hands it to the workers.
func (h *JobHandler) CreateJob(c *gin.Context) {
	var req dto.CreateJobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid request body", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request body",
		})
		return
	}

	now := time.Now().UTC()
	job := model.Job{
		JobID:       uuid.New().String(),
		UserID:      req.UserID,
		Filename:    req.Filename,
		StoragePath: req.StoragePath,
		FileType:    req.FileType,
		FileHash:    nullString(req.FileHash),
		TemplateID:  nullString(req.TemplateID),
		Status:      domain.JobStatusQueued,
		MaxRetries:  defaultMaxRetries,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := h.storage.CreateJob(c.Request.Context(), &job); err != nil {
		h.logger.Error("Failed to create job", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to create job",
		})
		return
	}

	msg, _ := json.Marshal(gin.H{"job_id": job.JobID})
	if err := h.rabbitClient.PublishWithRetry(c.Request.Context(), msg, "application/json"); err != nil {
		h.logger.Error("Failed to enqueue job",
			slog.String("job_id", job.JobID),
			slog.String("error", err.Error()),
		)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to enqueue job",
		})
		return
	}

	h.logger.Info("Job created",
		slog.String("job_id", job.JobID),
		slog.String("user_id", job.UserID),
		slog.String("filename", job.Filename),
	)

	c.JSON(http.StatusCreated, jobToDTO(&job))
}

// ListJobs handles GET /api/v1/jobs
// Runs the dashboard list-view pipeline (search, filter, pagination) over the
// user's jobs and returns the current page with navigation metadata.
func (h *JobHandler) ListJobs(c *gin.Context) {
	var req dto.ListJobsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.logger.Error("Invalid query parameters", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid query parameters",
		})
		return
	}

	if !listview.ValidPageSize(req.PageSize) {
		req.PageSize = h.defaultPageSize
	}

	jobs, err := h.storage.ListJobsByUser(c.Request.Context(), req.UserID)
	if err != nil {
		h.logger.Error("Failed to list jobs", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to list jobs",
		})
		return
	}

	byID := make(map[string]*model.Job, len(jobs))
	records := make([]listview.Record, len(jobs))
	for i := range jobs {
		byID[jobs[i].JobID] = &jobs[i]
		records[i] = jobs[i].ListViewRecord()
	}

	// One-shot pipeline run: zero debounce, the request carries the final
	// term already.
	view := listview.NewView(listview.Options{
		SearchFields: h.searchFields,
		PageSize:     req.PageSize,
	})
	view.SetSource(records)
	view.SetSearchTerm(req.Search)

	if err := applyListFilters(view, &req); err != nil {
		h.logger.Error("Invalid filter parameters", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{
			"error": err.Error(),
		})
		return
	}

	if req.Page > 0 {
		view.GoToPage(req.Page)
	}

	page, info := view.Page()

	jobDTOs := make([]dto.JobDTO, 0, len(page))
	for _, rec := range page {
		id, _ := rec["id"].(string)
		if job, ok := byID[id]; ok {
			jobDTOs = append(jobDTOs, jobToDTO(job))
		}
	}

	c.JSON(http.StatusOK, dto.ListJobsResponse{
		Jobs: jobDTOs,
		Meta: dto.PageMeta{
			Total:       info.TotalItems,
			TotalPages:  info.TotalPages,
			Page:        info.CurrentPage,
			PageSize:    info.PageSize,
			StartIndex:  info.StartIndex,
			EndIndex:    info.EndIndex,
			HasNext:     info.HasNext,
			HasPrevious: info.HasPrevious,
		},
	})
}

// GetJob handles GET /api/v1/jobs/:job_id
func (h *JobHandler) GetJob(c *gin.Context) {
	jobID, ok := h.jobIDParam(c)
	if !ok {
		return
	}

	job, err := h.storage.GetJobByID(c.Request.Context(), jobID)
	if err != nil {
		h.respondJobError(c, jobID, err)
		return
	}

	c.JSON(http.StatusOK, jobToDTO(job))
}

// GetJobResults handles GET /api/v1/jobs/:job_id/results
// Returns the job plus its extracted fields; only completed jobs have results.
func (h *JobHandler) GetJobResults(c *gin.Context) {
	jobID, ok := h.jobIDParam(c)
	if !ok {
		return
	}

	job, err := h.storage.GetJobByID(c.Request.Context(), jobID)
	if err != nil {
		h.respondJobError(c, jobID, err)
		return
	}

	if job.Status != domain.JobStatusCompleted {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":  "Job is not completed",
			"status": job.Status,
		})
		return
	}

	fields, err := h.storage.ListFieldsByJob(c.Request.Context(), jobID)
	if err != nil {
		h.logger.Error("Failed to list extracted fields",
			slog.String("job_id", jobID),
			slog.String("error", err.Error()),
		)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to load job results",
		})
		return
	}

	fieldDTOs := make([]dto.FieldDTO, len(fields))
	for i, f := range fields {
		fieldDTOs[i] = fieldToDTO(&f)
	}

	c.JSON(http.StatusOK, dto.JobResultsResponse{
		Job:         jobToDTO(job),
		Fields:      fieldDTOs,
		FieldsCount: len(fieldDTOs),
	})
}

// DeleteJob handles DELETE /api/v1/jobs/:job_id
func (h *JobHandler) DeleteJob(c *gin.Context) {
	jobID, ok := h.jobIDParam(c)
	if !ok {
		return
	}

	if err := h.storage.DeleteJob(c.Request.Context(), jobID); err != nil {
		h.respondJobError(c, jobID, err)
		return
	}

	h.logger.Info("Job deleted", slog.String("job_id", jobID))
	c.Status(http.StatusNoContent)
}

// applyListFilters translates the query parameters into filter-stage updates.
// Set-valued parameters are comma separated; dates are YYYY-MM-DD.
func applyListFilters(view *listview.View, req *dto.ListJobsRequest) error {
	if set := splitSet(req.Status); len(set) > 0 {
		if err := view.UpdateFilter(listview.FieldStatus, set); err != nil {
			return err
		}
	}
	if set := splitSet(req.DocumentType); len(set) > 0 {
		if err := view.UpdateFilter(listview.FieldDocumentType, set); err != nil {
			return err
		}
	}
	if set := splitSet(req.TemplateID); len(set) > 0 {
		if err := view.UpdateFilter(listview.FieldTemplate, set); err != nil {
			return err
		}
	}

	if req.DateFrom != "" || req.DateTo != "" {
		var dateRange listview.DateRange
		if req.DateFrom != "" {
			start, err := time.Parse("2006-01-02", req.DateFrom)
			if err != nil {
				return errors.New("date_from must be YYYY-MM-DD")
			}
			dateRange.Start = &start
		}
		if req.DateTo != "" {
			end, err := time.Parse("2006-01-02", req.DateTo)
			if err != nil {
				return errors.New("date_to must be YYYY-MM-DD")
			}
			dateRange.End = &end
		}
		if err := view.UpdateFilter(listview.FieldDateRange, dateRange); err != nil {
			return err
		}
	}

	if req.MinConfidence > 0 {
		if err := view.UpdateFilter(listview.FieldConfidenceMin, req.MinConfidence); err != nil {
			return err
		}
	}

	return nil
}

// jobIDParam extracts and validates the :job_id path parameter.
func (h *JobHandler) jobIDParam(c *gin.Context) (string, bool) {
	jobID := c.Param("job_id")
	if _, err := uuid.Parse(jobID); err != nil {
		h.logger.Error("Invalid job_id format",
			slog.String("job_id", jobID),
			slog.String("error", err.Error()),
		)
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "job_id must be a valid UUID",
		})
		return "", false
	}
	return jobID, true
}

func (h *JobHandler) respondJobError(c *gin.Context, jobID string, err error) {
	if errors.Is(err, domain.ErrJobNotFound) {
		c.JSON(http.StatusNotFound, gin.H{
			"error": "Job not found",
		})
		return
	}

	h.logger.Error("Job storage error",
		slog.String("job_id", jobID),
		slog.String("error", err.Error()),
	)
	c.JSON(http.StatusInternalServerError, gin.H{
		"error": "Internal server error",
	})
}

func splitSet(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	set := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			set = append(set, trimmed)
		}
	}
	return set
}

func jobToDTO(job *model.Job) dto.JobDTO {
	d := dto.JobDTO{
		JobID:     job.JobID,
		UserID:    job.UserID,
		Filename:  job.Filename,
		FileType:  job.FileType,
		Status:    job.Status,
		CreatedAt: job.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt: job.UpdatedAt.UTC().Format(time.RFC3339),
	}
	if job.DocumentType.Valid {
		d.DocumentType = job.DocumentType.String
	}
	if job.TemplateID.Valid {
		d.TemplateID = job.TemplateID.String
	}
	if job.Confidence.Valid {
		conf := job.Confidence.Float64
		d.Confidence = &conf
	}
	if job.ErrorMessage.Valid {
		d.ErrorMessage = job.ErrorMessage.String
	}
	if job.CompletedAt.Valid {
		d.CompletedAt = job.CompletedAt.Time.UTC().Format(time.RFC3339)
	}
	return d
}

func fieldToDTO(f *model.ExtractedField) dto.FieldDTO {
	d := dto.FieldDTO{
		ID:        f.ID,
		FieldName: f.FieldName,
		IsEdited:  f.IsEdited,
	}
	if f.OriginalValue.Valid {
		d.OriginalValue = f.OriginalValue.String
		d.CurrentValue = f.OriginalValue.String
	}
	if f.EditedValue.Valid {
		d.EditedValue = f.EditedValue.String
	}
	// Manual corrections win over the extracted value.
	if f.IsEdited && f.EditedValue.Valid {
		d.CurrentValue = f.EditedValue.String
	}
	if f.Confidence.Valid {
		conf := f.Confidence.Float64
		d.Confidence = &conf
	}
	return d
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
