package search

import (
	"context"

	"github.com/amankumarsingh77/frame-search/internal/models"
	"github.com/labstack/echo/v4"
)

type UseCase interface {
	Search(ctx context.Context, req *models.SearchRequest) (*models.SearchResponse, error)
	Stats(ctx context.Context) (*models.SearchStats, error)
}

type Handler interface {
	Search() echo.HandlerFunc
	Stats() echo.HandlerFunc
}
