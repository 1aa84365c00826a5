package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/amankumarsingh77/frame-search/internal/config"
	"github.com/amankumarsingh77/frame-search/internal/frames"
	"github.com/amankumarsingh77/frame-search/internal/jobs"
	"github.com/amankumarsingh77/frame-search/internal/models"
	"github.com/amankumarsingh77/frame-search/internal/videofiles"
	"github.com/amankumarsingh77/frame-search/pkg/logger"
	"github.com/amankumarsingh77/frame-search/pkg/utils"
	"github.com/google/uuid"
)

type videoFileUC struct {
	cfg         *config.Config
	videoRepo   videofiles.Repository
	awsRepo     videofiles.AWSRepository
	jobRepo     jobs.Repository
	frameRepo   frames.Repository
	vectorIndex frames.VectorIndex
	logger      logger.Logger
}

func NewVideoUseCase(
	cfg *config.Config,
	videoRepo videofiles.Repository,
	awsRepo videofiles.AWSRepository,
	jobRepo jobs.Repository,
	frameRepo frames.Repository,
	vectorIndex frames.VectorIndex,
	log logger.Logger,
) videofiles.UseCase {
	return &videoFileUC{
		cfg:         cfg,
		videoRepo:   videoRepo,
		awsRepo:     awsRepo,
		jobRepo:     jobRepo,
		frameRepo:   frameRepo,
		vectorIndex: vectorIndex,
		logger:      log,
	}
}

// UploadVideo checks every limit before touching storage, then stores the
// blob and registers the video. A failed insert removes the blob again.
func (v *videoFileUC) UploadVideo(ctx context.Context, input *models.VideoUploadInput) (*models.Video, error) {
	if input == nil || input.File == nil {
		return nil, fmt.Errorf("invalid input: file is required")
	}
	if err := utils.ValidateStruct(ctx, input); err != nil {
		v.logger.Errorf("UploadVideo - ValidateStruct error: %v", err)
		return nil, err
	}

	ext := utils.FileExtension(input.Filename)
	if !utils.IsSupportedFormat(ext, v.cfg.Upload.SupportedFormats) {
		return nil, fmt.Errorf("%w: %q, supported: %v", models.ErrUnsupportedFormat, ext, v.cfg.Upload.SupportedFormats)
	}
	maxBytes := v.cfg.Upload.MaxVideoSizeMB * 1024 * 1024
	if maxBytes > 0 && input.Size > maxBytes {
		return nil, fmt.Errorf("%w: max size %dMB", models.ErrFileTooLarge, v.cfg.Upload.MaxVideoSizeMB)
	}

	count, err := v.videoRepo.CountVideos(ctx)
	if err != nil {
		v.logger.Errorf("UploadVideo - CountVideos error: %v", err)
		return nil, err
	}
	if v.cfg.Upload.MaxVideosLimit > 0 && count >= v.cfg.Upload.MaxVideosLimit {
		return nil, fmt.Errorf("%w: limit is %d", models.ErrVideoLimitReached, v.cfg.Upload.MaxVideosLimit)
	}

	videoID := uuid.New().String()
	key := utils.VideoStorageKey(videoID, ext)
	if err = v.awsRepo.PutObject(ctx, v.cfg.S3.Bucket, key, input.File, input.Size, input.ContentType); err != nil {
		v.logger.Errorf("UploadVideo - PutObject error: %v", err)
		return nil, err
	}

	video, err := v.videoRepo.CreateVideo(ctx, &models.Video{
		ID:         videoID,
		Filename:   input.Filename,
		StorageKey: key,
		SizeBytes:  input.Size,
		Format:     ext,
	})
	if err != nil {
		v.logger.Errorf("UploadVideo - CreateVideo error: %v", err)
		if rmErr := v.awsRepo.RemoveObject(ctx, v.cfg.S3.Bucket, key); rmErr != nil {
			v.logger.Warnf("UploadVideo - RemoveObject %s error: %v", key, rmErr)
		}
		return nil, err
	}
	v.logger.Infof("Uploaded video %s (%s, %d bytes)", video.ID, video.Filename, video.SizeBytes)
	return video, nil
}

func (v *videoFileUC) GetVideo(ctx context.Context, videoID string) (*models.Video, error) {
	video, err := v.videoRepo.GetVideoByID(ctx, videoID)
	if err != nil {
		if errors.Is(err, models.ErrVideoNotFound) {
			v.logger.Warnf("Video not found with ID: %s", videoID)
		} else {
			v.logger.Errorf("GetVideo - GetVideoByID error: %v", err)
		}
		return nil, err
	}
	return video, nil
}

func (v *videoFileUC) ListVideos(ctx context.Context, pagination *utils.Pagination) (*models.VideoList, error) {
	videos, err := v.videoRepo.GetVideos(ctx, pagination)
	if err != nil {
		v.logger.Errorf("ListVideos - GetVideos error: %v", err)
		return nil, err
	}
	return videos, nil
}

// DeleteVideo refuses while a pending or processing job still owns a queue
// message for the video. Frame rows go with the video row.
func (v *videoFileUC) DeleteVideo(ctx context.Context, videoID string) error {
	video, err := v.GetVideo(ctx, videoID)
	if err != nil {
		return err
	}

	active, err := v.jobRepo.CountActiveByVideo(ctx, videoID)
	if err != nil {
		v.logger.Errorf("DeleteVideo - CountActiveByVideo error: %v", err)
		return err
	}
	if active > 0 {
		return fmt.Errorf("%w: %s has %d active jobs", models.ErrVideoBusy, videoID, active)
	}

	if err = v.vectorIndex.DeleteByVideo(ctx, videoID); err != nil {
		v.logger.Errorf("DeleteVideo - DeleteByVideo error: %v", err)
		return err
	}
	if err = v.awsRepo.RemoveObject(ctx, v.cfg.S3.Bucket, video.StorageKey); err != nil {
		v.logger.Errorf("DeleteVideo - RemoveObject error: %v", err)
		return err
	}
	if err = v.videoRepo.DeleteVideo(ctx, videoID); err != nil {
		v.logger.Errorf("DeleteVideo - DeleteVideo error: %v", err)
		return err
	}
	v.logger.Infof("Deleted video %s", videoID)
	return nil
}

func (v *videoFileUC) GetVideoFrames(ctx context.Context, videoID string) (*models.VideoFrames, error) {
	frameViews, err := v.frameRepo.ListByVideo(ctx, videoID)
	if err != nil {
		v.logger.Errorf("GetVideoFrames - ListByVideo error: %v", err)
		return nil, err
	}
	if len(frameViews) == 0 {
		return nil, fmt.Errorf("%w: %s", models.ErrNoFrames, videoID)
	}
	for _, f := range frameViews {
		f.TimeFormatted = utils.FormatTimestamp(f.Timestamp)
	}
	return &models.VideoFrames{
		VideoID:    videoID,
		FrameCount: len(frameViews),
		Frames:     frameViews,
	}, nil
}
