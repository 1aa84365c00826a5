package http

import (
	"github.com/amankumarsingh77/frame-search/internal/search"
	"github.com/labstack/echo/v4"
)

func MapSearchRoutes(searchGroup *echo.Group, h search.Handler) {
	searchGroup.POST("", h.Search())
	searchGroup.GET("/stats", h.Stats())
}
