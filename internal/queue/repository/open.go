package repository

import (
	"context"
	"fmt"

	"github.com/amankumarsingh77/frame-search/internal/config"
	"github.com/amankumarsingh77/frame-search/internal/queue"
	"github.com/amankumarsingh77/frame-search/pkg/db/aws"
	clientRedis "github.com/amankumarsingh77/frame-search/pkg/db/redis"
)

const (
	BackendRedis = "redis"
	BackendSQS   = "sqs"
)

// Open connects the transport named by cfg.Queue.Backend. The returned func
// releases the underlying client.
func Open(ctx context.Context, cfg *config.Config) (queue.Queue, func() error, error) {
	switch cfg.Queue.Backend {
	case "", BackendRedis:
		client, err := clientRedis.NewRedisClient(ctx, cfg)
		if err != nil {
			return nil, nil, err
		}
		return NewRedisQueue(client, cfg.Queue.Name, cfg.Queue.MaxReceiveCount), client.Close, nil
	case BackendSQS:
		if cfg.Queue.SQSURL == "" {
			return nil, nil, fmt.Errorf("queue backend %s requires queue.sqsURL", BackendSQS)
		}
		client, err := aws.NewSQSClient(ctx, cfg.S3.Region, cfg.S3.AccessKey, cfg.S3.SecretKey)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create sqs client: %w", err)
		}
		return NewSQSQueue(client, cfg.Queue.SQSURL), func() error { return nil }, nil
	default:
		return nil, nil, fmt.Errorf("unknown queue backend %q", cfg.Queue.Backend)
	}
}
