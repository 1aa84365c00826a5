package videofiles

import (
	"context"

	"github.com/amankumarsingh77/frame-search/internal/models"
	"github.com/amankumarsingh77/frame-search/pkg/utils"
)

type Repository interface {
	CreateVideo(ctx context.Context, video *models.Video) (*models.Video, error)
	GetVideoByID(ctx context.Context, videoID string) (*models.Video, error)
	GetVideosByIDs(ctx context.Context, videoIDs []string) ([]*models.Video, error)
	GetVideos(ctx context.Context, pq *utils.Pagination) (*models.VideoList, error)
	CountVideos(ctx context.Context) (int, error)
	DeleteVideo(ctx context.Context, videoID string) error
	// SetDurationIfUnset writes duration only when the stored value is NULL.
	SetDurationIfUnset(ctx context.Context, videoID string, duration float64) error
}
