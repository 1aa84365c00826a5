package http

import (
	"net/http"

	"github.com/amankumarsingh77/frame-search/internal/config"
	"github.com/amankumarsingh77/frame-search/internal/models"
	"github.com/amankumarsingh77/frame-search/internal/search"
	"github.com/amankumarsingh77/frame-search/pkg/httpErrors"
	"github.com/amankumarsingh77/frame-search/pkg/logger"
	"github.com/amankumarsingh77/frame-search/pkg/utils"
	"github.com/labstack/echo/v4"
)

type searchHandler struct {
	cfg      *config.Config
	searchUC search.UseCase
	logger   logger.Logger
}

func NewSearchHandler(cfg *config.Config, searchUC search.UseCase, log logger.Logger) search.Handler {
	return &searchHandler{
		cfg:      cfg,
		searchUC: searchUC,
		logger:   log,
	}
}

// Search binds over the configured defaults, so omitted fields keep them.
func (h *searchHandler) Search() echo.HandlerFunc {
	return func(c echo.Context) error {
		req := &models.SearchRequest{
			Threshold:          h.cfg.Search.DefaultThreshold,
			MaxResultsPerVideo: h.cfg.Search.DefaultMaxPerVideo,
			MaxVideos:          h.cfg.Search.DefaultMaxVideos,
		}
		if err := c.Bind(req); err != nil {
			return httpErrors.ErrorResponse(c, httpErrors.NewBadRequestError("Invalid request payload"))
		}
		resp, err := h.searchUC.Search(utils.GetRequestCtx(c), req)
		if err != nil {
			h.logger.Errorf("Search - request %s: %v", utils.GetRequestID(c), err)
			return httpErrors.ErrorResponse(c, err)
		}
		return c.JSON(http.StatusOK, resp)
	}
}

func (h *searchHandler) Stats() echo.HandlerFunc {
	return func(c echo.Context) error {
		stats, err := h.searchUC.Stats(utils.GetRequestCtx(c))
		if err != nil {
			return httpErrors.ErrorResponse(c, err)
		}
		return c.JSON(http.StatusOK, stats)
	}
}
