package http

import (
	"net/http"

	"github.com/amankumarsingh77/frame-search/internal/jobs"
	"github.com/amankumarsingh77/frame-search/internal/models"
	"github.com/amankumarsingh77/frame-search/pkg/httpErrors"
	"github.com/amankumarsingh77/frame-search/pkg/utils"
	"github.com/labstack/echo/v4"
)

type jobHandler struct {
	jobUC jobs.UseCase
}

func NewJobHandler(jobUC jobs.UseCase) jobs.Handler {
	return &jobHandler{jobUC: jobUC}
}

func (h *jobHandler) CreateJob() echo.HandlerFunc {
	return func(c echo.Context) error {
		input := &models.JobCreateInput{}
		if err := c.Bind(input); err != nil {
			return httpErrors.ErrorResponse(c, httpErrors.NewBadRequestError("Invalid request payload"))
		}
		job, err := h.jobUC.CreateJob(utils.GetRequestCtx(c), input)
		if err != nil {
			return httpErrors.ErrorResponse(c, err)
		}
		return c.JSON(http.StatusCreated, job)
	}
}

func (h *jobHandler) GetJob() echo.HandlerFunc {
	return func(c echo.Context) error {
		job, err := h.jobUC.GetJob(utils.GetRequestCtx(c), c.Param("job_id"))
		if err != nil {
			return httpErrors.ErrorResponse(c, err)
		}
		return c.JSON(http.StatusOK, job)
	}
}

func (h *jobHandler) ListJobs() echo.HandlerFunc {
	return func(c echo.Context) error {
		pagination, err := utils.GetPaginationFromCtx(c)
		if err != nil {
			return httpErrors.ErrorResponse(c, httpErrors.NewBadRequestError(err.Error()))
		}
		filter := models.JobFilter{
			VideoID: c.QueryParam("video_id"),
			Status:  models.JobStatus(c.QueryParam("status")),
		}
		if filter.Status != "" && !filter.Status.IsValid() {
			return httpErrors.ErrorResponse(c, httpErrors.NewBadRequestError("unknown status "+string(filter.Status)))
		}
		jobList, err := h.jobUC.ListJobs(utils.GetRequestCtx(c), filter, pagination)
		if err != nil {
			return httpErrors.ErrorResponse(c, err)
		}
		return c.JSON(http.StatusOK, jobList)
	}
}

func (h *jobHandler) DeleteJob() echo.HandlerFunc {
	return func(c echo.Context) error {
		if err := h.jobUC.DeleteJob(utils.GetRequestCtx(c), c.Param("job_id")); err != nil {
			return httpErrors.ErrorResponse(c, err)
		}
		return c.NoContent(http.StatusNoContent)
	}
}
