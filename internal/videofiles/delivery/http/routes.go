package http

import (
	"github.com/amankumarsingh77/frame-search/internal/videofiles"
	"github.com/labstack/echo/v4"
)

func MapVideoRoutes(videoGroup *echo.Group, h videofiles.Handler) {
	videoGroup.POST("/upload", h.UploadVideo())
	videoGroup.GET("", h.ListVideos())
	videoGroup.GET("/:video_id", h.GetVideoByID())
	videoGroup.DELETE("/:video_id", h.DeleteVideo())
	videoGroup.GET("/:video_id/frames", h.GetVideoFrames())
}
