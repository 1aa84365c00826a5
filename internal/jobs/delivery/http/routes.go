package http

import (
	"github.com/amankumarsingh77/frame-search/internal/jobs"
	"github.com/labstack/echo/v4"
)

func MapJobRoutes(jobGroup *echo.Group, h jobs.Handler) {
	jobGroup.POST("", h.CreateJob())
	jobGroup.GET("", h.ListJobs())
	jobGroup.GET("/:job_id", h.GetJob())
	jobGroup.DELETE("/:job_id", h.DeleteJob())
}
