package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rappahq/docex-be/internal/api/domain"
	"github.com/rappahq/docex-be/internal/api/dto"
)

// UpdateField handles PATCH /api/v1/jobs/:job_id/fields/:field_id
// Stores a manual correction for one extracted field and marks it edited.
func (h *JobHandler) UpdateField(c *gin.Context) {
	jobID, fieldID, ok := h.fieldParams(c)
	if !ok {
		return
	}

	var req dto.UpdateFieldRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid request body", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "edited_value is required",
		})
		return
	}

	field, err := h.storage.UpdateField(c.Request.Context(), jobID, fieldID, req.EditedValue)
	if err != nil {
		h.respondFieldError(c, jobID, fieldID, err)
		return
	}

	h.logger.Info("Field updated",
		slog.String("job_id", jobID),
		slog.Int64("field_id", fieldID),
		slog.String("field_name", field.FieldName),
	)

	c.JSON(http.StatusOK, fieldToDTO(field))
}

// ResetField handles POST /api/v1/jobs/:job_id/fields/:field_id/reset
// Discards the manual correction so the extracted value applies again.
func (h *JobHandler) ResetField(c *gin.Context) {
	jobID, fieldID, ok := h.fieldParams(c)
	if !ok {
		return
	}

	field, err := h.storage.ResetField(c.Request.Context(), jobID, fieldID)
	if err != nil {
		h.respondFieldError(c, jobID, fieldID, err)
		return
	}

	h.logger.Info("Field reset",
		slog.String("job_id", jobID),
		slog.Int64("field_id", fieldID),
		slog.String("field_name", field.FieldName),
	)

	c.JSON(http.StatusOK, fieldToDTO(field))
}

// fieldParams extracts and validates the :job_id and :field_id path
// parameters.
func (h *JobHandler) fieldParams(c *gin.Context) (string, int64, bool) {
	jobID, ok := h.jobIDParam(c)
	if !ok {
		return "", 0, false
	}

	fieldID, err := strconv.ParseInt(c.Param("field_id"), 10, 64)
	if err != nil {
		h.logger.Error("Invalid field_id format",
			slog.String("field_id", c.Param("field_id")),
			slog.String("error", err.Error()),
		)
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "field_id must be an integer",
		})
		return "", 0, false
	}

	return jobID, fieldID, true
}

func (h *JobHandler) respondFieldError(c *gin.Context, jobID string, fieldID int64, err error) {
	if errors.Is(err, domain.ErrFieldNotFound) {
		c.JSON(http.StatusNotFound, gin.H{
			"error": "Field not found",
		})
		return
	}

	h.logger.Error("Field storage error",
		slog.String("job_id", jobID),
		slog.Int64("field_id", fieldID),
		slog.String("error", err.Error()),
	)
	c.JSON(http.StatusInternalServerError, gin.H{
		"error": "Internal server error",
	})
}
