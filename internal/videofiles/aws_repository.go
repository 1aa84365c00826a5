package videofiles

import (
	"context"
	"io"
)

// AWSRepository is the blob store holding uploaded video files.
type AWSRepository interface {
	PutObject(ctx context.Context, bucket, key string, body io.Reader, size int64, contentType string) error
	Download(ctx context.Context, bucket, key, destPath string) error
	RemoveObject(ctx context.Context, bucket, key string) error
	HeadBucket(ctx context.Context, bucket string) error
}
