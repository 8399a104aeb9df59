package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rappahq/docex-be/internal/api/domain"
	"github.com/rappahq/docex-be/internal/api/dto"
)

const recentJobsLimit = 5

// Stats handles GET /api/v1/dashboard/stats
// Returns the user's job counts, success rate, and most recent jobs. The
// response is cached per user with a short TTL since the dashboard polls it.
func (h *DashboardHandler) Stats(c *gin.Context) {
	userID := c.Query("user_id")
	if userID == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "user_id is required",
		})
		return
	}

	ctx := c.Request.Context()
	cacheKey := "dashboard:stats:" + userID

	if h.cache != nil {
		var cached dto.DashboardStatsResponse
		hit, err := h.cache.GetJSON(ctx, cacheKey, &cached)
		if err != nil {
			h.logger.Warn("Stats cache read failed",
				slog.String("user_id", userID),
				slog.String("error", err.Error()),
			)
		}
		if hit {
			c.JSON(http.StatusOK, cached)
			return
		}
	}

	counts, err := h.storage.CountJobsByStatus(ctx, userID)
	if err != nil {
		h.logger.Error("Failed to count jobs", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to load dashboard stats",
		})
		return
	}

	recent, err := h.storage.RecentJobs(ctx, userID, recentJobsLimit)
	if err != nil {
		h.logger.Error("Failed to load recent jobs", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to load dashboard stats",
		})
		return
	}

	jobCounts := dto.JobCounts{
		Queued:     counts[domain.JobStatusQueued],
		Processing: counts[domain.JobStatusProcessing],
		Completed:  counts[domain.JobStatusCompleted],
		Failed:     counts[domain.JobStatusFailed],
	}
	jobCounts.Total = jobCounts.Queued + jobCounts.Processing + jobCounts.Completed + jobCounts.Failed
	if jobCounts.Total > 0 {
		jobCounts.SuccessRate = float64(jobCounts.Completed) / float64(jobCounts.Total) * 100
	}

	recentDTOs := make([]dto.JobDTO, len(recent))
	for i := range recent {
		recentDTOs[i] = jobToDTO(&recent[i])
	}

	resp := dto.DashboardStatsResponse{
		Jobs:        jobCounts,
		RecentJobs:  recentDTOs,
		GeneratedAt: time.Now().UTC().Format(time.RFC3339),
	}

	if h.cache != nil {
		if err := h.cache.SetJSON(ctx, cacheKey, resp, h.statsTTL); err != nil {
			h.logger.Warn("Stats cache write failed",
				slog.String("user_id", userID),
				slog.String("error", err.Error()),
			)
		}
	}

	c.JSON(http.StatusOK, resp)
}
