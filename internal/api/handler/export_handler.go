package handler

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rappahq/docex-be/internal/api/domain"
	"github.com/rappahq/docex-be/internal/api/export"
)

// ExportJobExcel handles GET /api/v1/jobs/:job_id/export/excel
// Streams the job's extracted fields as an XLSX download.
func (h *JobHandler) ExportJobExcel(c *gin.Context) {
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

	workbook, err := export.JobWorkbook(job, fields)
	if err != nil {
		h.logger.Error("Failed to build workbook",
			slog.String("job_id", jobID),
			slog.String("error", err.Error()),
		)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to build export",
		})
		return
	}

	filename := strings.TrimSuffix(job.Filename, "."+job.FileType) + "_extracted.xlsx"
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, export.XLSXContentType, workbook)
}
