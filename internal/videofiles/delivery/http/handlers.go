package http

import (
	"net/http"

	"github.com/amankumarsingh77/frame-search/internal/models"
	"github.com/amankumarsingh77/frame-search/internal/videofiles"
	"github.com/amankumarsingh77/frame-search/pkg/httpErrors"
	"github.com/amankumarsingh77/frame-search/pkg/logger"
	"github.com/amankumarsingh77/frame-search/pkg/utils"
	"github.com/labstack/echo/v4"
)

type videoHandler struct {
	videoUC videofiles.UseCase
	logger  logger.Logger
}

func NewVideoHandler(videoUC videofiles.UseCase, log logger.Logger) videofiles.Handler {
	return &videoHandler{
		videoUC: videoUC,
		logger:  log,
	}
}

func (h *videoHandler) UploadVideo() echo.HandlerFunc {
	return func(c echo.Context) error {
		fileHeader, err := c.FormFile("file")
		if err != nil {
			return httpErrors.ErrorResponse(c, httpErrors.NewBadRequestError("multipart field 'file' is required"))
		}
		file, err := fileHeader.Open()
		if err != nil {
			return httpErrors.ErrorResponse(c, httpErrors.NewBadRequestError(err.Error()))
		}
		defer file.Close()

		video, err := h.videoUC.UploadVideo(utils.GetRequestCtx(c), &models.VideoUploadInput{
			File:        file,
			Filename:    fileHeader.Filename,
			Size:        fileHeader.Size,
			ContentType: fileHeader.Header.Get(echo.HeaderContentType),
		})
		if err != nil {
			h.logger.Errorf("UploadVideo - request %s: %v", utils.GetRequestID(c), err)
			return httpErrors.ErrorResponse(c, err)
		}
		return c.JSON(http.StatusCreated, video)
	}
}

func (h *videoHandler) GetVideoByID() echo.HandlerFunc {
	return func(c echo.Context) error {
		video, err := h.videoUC.GetVideo(utils.GetRequestCtx(c), c.Param("video_id"))
		if err != nil {
			return httpErrors.ErrorResponse(c, err)
		}
		return c.JSON(http.StatusOK, video)
	}
}

func (h *videoHandler) ListVideos() echo.HandlerFunc {
	return func(c echo.Context) error {
		pagination, err := utils.GetPaginationFromCtx(c)
		if err != nil {
			return httpErrors.ErrorResponse(c, httpErrors.NewBadRequestError(err.Error()))
		}
		videos, err := h.videoUC.ListVideos(utils.GetRequestCtx(c), pagination)
		if err != nil {
			return httpErrors.ErrorResponse(c, err)
		}
		return c.JSON(http.StatusOK, videos)
	}
}

func (h *videoHandler) DeleteVideo() echo.HandlerFunc {
	return func(c echo.Context) error {
		if err := h.videoUC.DeleteVideo(utils.GetRequestCtx(c), c.Param("video_id")); err != nil {
			return httpErrors.ErrorResponse(c, err)
		}
		return c.NoContent(http.StatusNoContent)
	}
}

func (h *videoHandler) GetVideoFrames() echo.HandlerFunc {
	return func(c echo.Context) error {
		frames, err := h.videoUC.GetVideoFrames(utils.GetRequestCtx(c), c.Param("video_id"))
		if err != nil {
			return httpErrors.ErrorResponse(c, err)
		}
		return c.JSON(http.StatusOK, frames)
	}
}
