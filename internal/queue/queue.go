package queue

import (
	"context"
	"time"

	"github.com/amankumarsingh77/frame-search/internal/models"
)

// Queue is an at-least-once work queue with visibility timeouts. A received
// message stays invisible for the visibility period and is redelivered unless
// deleted before it elapses.
type Queue interface {
	Send(ctx context.Context, body []byte) (string, error)
	Receive(ctx context.Context, maxMessages int, wait, visibility time.Duration) ([]*models.QueueMessage, error)
	Delete(ctx context.Context, msg *models.QueueMessage) error
	Ping(ctx context.Context) error
}
