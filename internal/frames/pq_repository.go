package frames

import (
	"context"

	"github.com/amankumarsingh77/frame-search/internal/models"
)

// Repository stores per-video frame records. A video holds exactly one
// generation of frames at a time.
type Repository interface {
	// ReplaceForVideo atomically drops every existing frame of the video and
	// inserts frames in their place.
	ReplaceForVideo(ctx context.Context, videoID string, frames []*models.Frame) (int, error)
	ListByVideo(ctx context.Context, videoID string) ([]*models.FrameView, error)
	CountFrames(ctx context.Context) (int, error)
	CountByVideo(ctx context.Context) ([]*models.VideoFrameCount, error)
}
