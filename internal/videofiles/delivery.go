package videofiles

import "github.com/labstack/echo/v4"

type Handler interface {
	UploadVideo() echo.HandlerFunc
	ListVideos() echo.HandlerFunc
	GetVideoByID() echo.HandlerFunc
	DeleteVideo() echo.HandlerFunc
	GetVideoFrames() echo.HandlerFunc
}
