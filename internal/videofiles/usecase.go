package videofiles

import (
	"context"

	"github.com/amankumarsingh77/frame-search/internal/models"
	"github.com/amankumarsingh77/frame-search/pkg/utils"
)

type UseCase interface {
	UploadVideo(ctx context.Context, input *models.VideoUploadInput) (*models.Video, error)
	GetVideo(ctx context.Context, videoID string) (*models.Video, error)
	ListVideos(ctx context.Context, pagination *utils.Pagination) (*models.VideoList, error)
	DeleteVideo(ctx context.Context, videoID string) error
	GetVideoFrames(ctx context.Context, videoID string) (*models.VideoFrames, error)
}
