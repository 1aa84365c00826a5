package server

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/amankumarsingh77/frame-search/internal/config"
	"github.com/amankumarsingh77/frame-search/internal/embedding"
	"github.com/amankumarsingh77/frame-search/internal/queue"
	"github.com/amankumarsingh77/frame-search/pkg/logger"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/jmoiron/sqlx"
	"github.com/labstack/echo/v4"
)

const (
	maxHeaderBytes = 1 << 20
	ctxTimeout     = 5
)

type Server struct {
	echo     *echo.Echo
	cfg      *config.Config
	db       *sqlx.DB
	queue    queue.Queue
	s3Client *s3.Client
	model    embedding.Model
	logger   logger.Logger
}

func NewServer(cfg *config.Config, db *sqlx.DB, q queue.Queue, s3Client *s3.Client, model embedding.Model, logger logger.Logger) *Server {
	return &Server{
		echo:     echo.New(),
		cfg:      cfg,
		db:       db,
		queue:    q,
		s3Client: s3Client,
		model:    model,
		logger:   logger,
	}
}

// Run serves the API until SIGINT or SIGTERM, then drains in-flight requests.
func (s *Server) Run() error {
	if err := s.MapHandlers(s.echo); err != nil {
		return err
	}
	s.echo.HideBanner = true

	server := &http.Server{
		Addr:           s.cfg.Server.Port,
		ReadTimeout:    time.Second * time.Duration(s.cfg.Server.ReadTimeout),
		WriteTimeout:   time.Second * time.Duration(s.cfg.Server.WriteTimeout),
		IdleTimeout:    time.Second * time.Duration(s.cfg.Server.IdleTimeout),
		MaxHeaderBytes: maxHeaderBytes,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Infof("Server is listening on PORT: %s", s.cfg.Server.Port)
		if err := s.echo.StartServer(server); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, os.Interrupt)
	defer signal.Stop(quit)

	select {
	case err := <-errCh:
		return err
	case <-quit:
	}

	ctx, shutdown := context.WithTimeout(context.Background(), time.Second*ctxTimeout)
	defer shutdown()
	s.logger.Infof("shutting down server")
	return s.echo.Shutdown(ctx)
}
