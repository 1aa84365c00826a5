package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/amankumarsingh77/frame-search/internal/config"
	"github.com/amankumarsingh77/frame-search/internal/embedding/client"
	queueRepository "github.com/amankumarsingh77/frame-search/internal/queue/repository"
	"github.com/amankumarsingh77/frame-search/internal/server"
	"github.com/amankumarsingh77/frame-search/pkg/db/aws"
	"github.com/amankumarsingh77/frame-search/pkg/db/postgres"
	"github.com/amankumarsingh77/frame-search/pkg/logger"
	"github.com/amankumarsingh77/frame-search/pkg/tracing"
)

func main() {
	log.Println("Starting server")
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

	ctx := context.Background()

	if cfg.Tracing.Enabled {
		tp, err := tracing.InitTracer(ctx, cfg.Tracing.Endpoint, cfg.Tracing.ServiceName+"-api")
		if err != nil {
			appLogger.Fatalf("could not init tracer: %v", err)
		}
		defer tp.Shutdown(context.Background())
	}

	psqlDB, err := postgres.NewPsqlDB(cfg)
	if err != nil {
		appLogger.Fatalf("could not connect to db: %v", err)
	}
	defer psqlDB.Close()
	appLogger.Infof("db connected, status: %#v", psqlDB.Stats())

	if err = postgres.RunMigrations(psqlDB); err != nil {
		appLogger.Fatalf("could not migrate db: %v", err)
	}

	q, closeQueue, err := queueRepository.Open(ctx, cfg)
	if err != nil {
		appLogger.Fatalf("could not connect to queue: %v", err)
	}
	defer closeQueue()
	appLogger.Infof("%s queue connected", cfg.Queue.Backend)

	s3Client, err := aws.NewAWSClient(ctx, cfg.S3.Endpoint, cfg.S3.Region, cfg.S3.AccessKey, cfg.S3.SecretKey)
	if err != nil {
		appLogger.Fatalf("could not create s3 client: %v", err)
	}

	model := client.NewHTTPModel(cfg.Embedding.URL, cfg.Embedding.Dimension,
		time.Duration(cfg.Embedding.TimeoutSeconds)*time.Second)

	s := server.NewServer(cfg, psqlDB, q, s3Client, model, appLogger)
	if err = s.Run(); err != nil {
		appLogger.Errorf("server stopped: %v", err)
	}
}
