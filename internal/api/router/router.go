package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rappahq/docex-be/internal/api/handler"
	"github.com/rappahq/docex-be/internal/observability/metrics"
)

// SetupRouter configures and returns the Gin router with all routes
func SetupRouter(deps *handler.Dependencies, httpMetrics *metrics.HTTPMetrics) *gin.Engine {
	r := gin.New()

	// Middleware
	r.Use(gin.Recovery())
	r.Use(LoggerMiddleware(deps.Logger))
	r.Use(CORSMiddleware())
	if httpMetrics != nil {
		r.Use(MetricsMiddleware(httpMetrics))
	}

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": "docex-api-service",
		})
	})

	if httpMetrics != nil {
		r.GET("/metrics", gin.WrapH(httpMetrics.Handler()))
	}

	jobHandler := handler.NewJobHandler(deps)
	dashboardHandler := handler.NewDashboardHandler(deps)

	// API v1 routes
	v1 := r.Group("/api/v1")
	{
		jobs := v1.Group("/jobs")
		{
			// POST /api/v1/jobs - Register an uploaded document as a job
			jobs.POST("", jobHandler.CreateJob)

			// GET /api/v1/jobs - The dashboard list view (search, filter, pagination)
			jobs.GET("", jobHandler.ListJobs)

			// GET /api/v1/jobs/:job_id - Job details
			jobs.GET("/:job_id", jobHandler.GetJob)

			// GET /api/v1/jobs/:job_id/results - Extracted fields of a completed job
			jobs.GET("/:job_id/results", jobHandler.GetJobResults)

			// PATCH /api/v1/jobs/:job_id/fields/:field_id - Manually correct a field value
			jobs.PATCH("/:job_id/fields/:field_id", jobHandler.UpdateField)

			// POST /api/v1/jobs/:job_id/fields/:field_id/reset - Discard a manual correction
			jobs.POST("/:job_id/fields/:field_id/reset", jobHandler.ResetField)

			// GET /api/v1/jobs/:job_id/export/excel - XLSX download of the results
			jobs.GET("/:job_id/export/excel", jobHandler.ExportJobExcel)

			// DELETE /api/v1/jobs/:job_id - Delete a job and its fields
			jobs.DELETE("/:job_id", jobHandler.DeleteJob)
		}

		dashboard := v1.Group("/dashboard")
		{
			// GET /api/v1/dashboard/stats - Per-user overview counters
			dashboard.GET("/stats", dashboardHandler.Stats)
		}
	}

	return r
}
