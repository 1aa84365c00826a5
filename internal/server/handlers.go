package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	frameRepository "github.com/amankumarsingh77/frame-search/internal/frames/repository"
	jobHttp "github.com/amankumarsingh77/frame-search/internal/jobs/delivery/http"
	jobRepository "github.com/amankumarsingh77/frame-search/internal/jobs/repository"
	jobUsecase "github.com/amankumarsingh77/frame-search/internal/jobs/usecase"
	"github.com/amankumarsingh77/frame-search/internal/middleware"
	searchHttp "github.com/amankumarsingh77/frame-search/internal/search/delivery/http"
	searchUsecase "github.com/amankumarsingh77/frame-search/internal/search/usecase"
	videoHttp "github.com/amankumarsingh77/frame-search/internal/videofiles/delivery/http"
	videoRepository "github.com/amankumarsingh77/frame-search/internal/videofiles/repository"
	videoUsecase "github.com/amankumarsingh77/frame-search/internal/videofiles/usecase"
	"github.com/amankumarsingh77/frame-search/pkg/logger"
	"github.com/amankumarsingh77/frame-search/pkg/utils"
	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const healthTimeout = 5 * time.Second

func (s *Server) MapHandlers(e *echo.Echo) error {
	videoRepo := videoRepository.NewVideoRepo(s.db)
	awsRepo := videoRepository.NewAwsRepository(s.s3Client)
	jobRepo := jobRepository.NewJobRepo(s.db)
	frameRepo := frameRepository.NewFrameRepo(s.db)
	vectorIndex := frameRepository.NewPgVectorIndex(s.db, s.cfg.Embedding.Dimension)

	videoUC := videoUsecase.NewVideoUseCase(s.cfg, videoRepo, awsRepo, jobRepo, frameRepo, vectorIndex, s.logger)
	jobUC := jobUsecase.NewJobUseCase(s.cfg, jobRepo, videoRepo, s.queue, s.logger)
	searchUC := searchUsecase.NewSearchUseCase(s.cfg, s.model, vectorIndex, videoRepo, frameRepo, s.logger)

	videoHandlers := videoHttp.NewVideoHandler(videoUC, s.logger)
	jobHandlers := jobHttp.NewJobHandler(jobUC)
	searchHandlers := searchHttp.NewSearchHandler(s.cfg, searchUC, s.logger)

	mw := middleware.NewMiddlewareManager(s.cfg, []string{"*"}, s.logger)

	e.Use(echoMiddleware.RequestID())
	e.Use(echoMiddleware.Recover())
	e.Use(mw.RequestLoggerMiddleware)
	e.Use(mw.CORS())
	e.Use(echoMiddleware.BodyLimit(bodyLimit(s.cfg.Upload.MaxVideoSizeMB)))

	e.GET("/health", healthHandler(s.logger,
		healthCheck{name: "database", check: s.db.PingContext},
		healthCheck{name: "queue", check: s.queue.Ping},
		healthCheck{name: "storage", check: func(ctx context.Context) error {
			return awsRepo.HeadBucket(ctx, s.cfg.S3.Bucket)
		}},
	))
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	v1 := e.Group("/api/v1")
	videoGroup := v1.Group("/videos")
	jobGroup := v1.Group("/jobs")
	searchGroup := v1.Group("/search")

	videoHttp.MapVideoRoutes(videoGroup, videoHandlers)
	jobHttp.MapJobRoutes(jobGroup, jobHandlers)
	searchHttp.MapSearchRoutes(searchGroup, searchHandlers)
	return nil
}

// bodyLimit leaves headroom above the video size limit for the multipart
// envelope, so oversized files reach the use case and get a 413 from there.
func bodyLimit(maxVideoSizeMB int64) string {
	if maxVideoSizeMB <= 0 {
		maxVideoSizeMB = 500
	}
	return fmt.Sprintf("%dM", maxVideoSizeMB+1)
}

type healthCheck struct {
	name  string
	check func(ctx context.Context) error
}

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

func healthHandler(log logger.Logger, checks ...healthCheck) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx, cancel := context.WithTimeout(c.Request().Context(), healthTimeout)
		defer cancel()

		resp := healthResponse{Status: "healthy", Checks: make(map[string]string, len(checks))}
		code := http.StatusOK
		for _, hc := range checks {
			if err := hc.check(ctx); err != nil {
				log.Errorf("Health check %s failed, RequestID: %s: %v", hc.name, utils.GetRequestID(c), err)
				resp.Checks[hc.name] = "unhealthy"
				resp.Status = "unhealthy"
				code = http.StatusServiceUnavailable
				continue
			}
			resp.Checks[hc.name] = "ok"
		}
		return c.JSON(code, resp)
	}
}
