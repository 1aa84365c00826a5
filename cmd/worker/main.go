package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/amankumarsingh77/frame-search/internal/config"
	"github.com/amankumarsingh77/frame-search/internal/embedding/client"
	frameRepository "github.com/amankumarsingh77/frame-search/internal/frames/repository"
	jobRepository "github.com/amankumarsingh77/frame-search/internal/jobs/repository"
	jobUsecase "github.com/amankumarsingh77/frame-search/internal/jobs/usecase"
	"github.com/amankumarsingh77/frame-search/internal/metrics"
	queueRepository "github.com/amankumarsingh77/frame-search/internal/queue/repository"
	"github.com/amankumarsingh77/frame-search/internal/sampler"
	videoRepository "github.com/amankumarsingh77/frame-search/internal/videofiles/repository"
	"github.com/amankumarsingh77/frame-search/internal/worker"
	"github.com/amankumarsingh77/frame-search/pkg/db/aws"
	"github.com/amankumarsingh77/frame-search/pkg/db/postgres"
	"github.com/amankumarsingh77/frame-search/pkg/logger"
	"github.com/amankumarsingh77/frame-search/pkg/tracing"
)

const healthCheckTimeout = 10 * time.Second

func main() {
	os.Exit(run())
}

func run() int {
	configFile := os.Getenv("CONFIG_PATH")
	if configFile == "" {
		configFile = "config/config-local.yml"
	}
	cfgFile, err := config.LoadConfig(configFile)
	if err != nil {
		log.Fatalf("loadConfig: %v", err)
	}
	cfg, err := config.ParseConfig(cfgFile)
	if err != nil {
		log.Fatalf("parseConfig: %v", err)
	}

	appLogger := logger.NewApiLogger(cfg)
	appLogger.InitLogger()
	appLogger.Infof("AppVersion: %s, LogLevel: %s, Mode: %s", cfg.Server.AppVersion, cfg.Logger.Level, cfg.Server.Mode)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.Tracing.Enabled {
		tp, err := tracing.InitTracer(ctx, cfg.Tracing.Endpoint, cfg.Tracing.ServiceName+"-worker")
		if err != nil {
			appLogger.Errorf("could not init tracer: %v", err)
			return 1
		}
		defer tp.Shutdown(context.Background())
	}

	psqlDB, err := postgres.NewPsqlDB(cfg)
	if err != nil {
		appLogger.Errorf("could not connect to db: %v", err)
		return 1
	}
	defer psqlDB.Close()

	q, closeQueue, err := queueRepository.Open(ctx, cfg)
	if err != nil {
		appLogger.Errorf("could not connect to queue: %v", err)
		return 1
	}
	defer closeQueue()

	s3Client, err := aws.NewAWSClient(ctx, cfg.S3.Endpoint, cfg.S3.Region, cfg.S3.AccessKey, cfg.S3.SecretKey)
	if err != nil {
		appLogger.Errorf("could not create s3 client: %v", err)
		return 1
	}

	jobRepo := jobRepository.NewJobRepo(psqlDB)
	w := worker.NewWorker(cfg, appLogger, worker.Deps{
		Queue:        q,
		Orchestrator: jobUsecase.NewOrchestrator(jobRepo, appLogger),
		VideoRepo:    videoRepository.NewVideoRepo(psqlDB),
		AWSRepo:      videoRepository.NewAwsRepository(s3Client),
		FrameRepo:    frameRepository.NewFrameRepo(psqlDB),
		VectorIndex:  frameRepository.NewPgVectorIndex(psqlDB, cfg.Embedding.Dimension),
		Sampler:      sampler.NewFFmpegSampler(cfg.Embedding.FrameMaxSide, appLogger),
		Model: client.NewHTTPModel(cfg.Embedding.URL, cfg.Embedding.Dimension,
			time.Duration(cfg.Embedding.TimeoutSeconds)*time.Second),
	})

	healthCtx, healthCancel := context.WithTimeout(ctx, healthCheckTimeout)
	err = w.HealthCheck(healthCtx, psqlDB)
	healthCancel()
	if err != nil {
		appLogger.Errorf("health check failed: %v", err)
		return 1
	}
	appLogger.Info("health check passed")

	metricsServer := metrics.StartMetricsServer(cfg.Metrics.Port, appLogger)
	defer metricsServer.Close()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigChan
		appLogger.Infof("received %s, finishing current message", sig)
		w.Shutdown()
	}()

	// Run only fails with ErrTooManyConsecutiveErrors.
	if err := w.Run(ctx); err != nil {
		appLogger.Errorf("worker stopped: %v", err)
		return 1
	}
	appLogger.Info("worker stopped")
	return 0
}
