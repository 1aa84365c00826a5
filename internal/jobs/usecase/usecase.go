package usecase

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/amankumarsingh77/frame-search/internal/config"
	"github.com/amankumarsingh77/frame-search/internal/jobs"
	"github.com/amankumarsingh77/frame-search/internal/models"
	"github.com/amankumarsingh77/frame-search/internal/queue"
	"github.com/amankumarsingh77/frame-search/internal/videofiles"
	"github.com/amankumarsingh77/frame-search/pkg/logger"
	"github.com/amankumarsingh77/frame-search/pkg/utils"
	"github.com/google/uuid"
)

type jobUC struct {
	cfg       *config.Config
	jobRepo   jobs.Repository
	videoRepo videofiles.Repository
	queue     queue.Queue
	logger    logger.Logger
}

func NewJobUseCase(
	cfg *config.Config,
	jobRepo jobs.Repository,
	videoRepo videofiles.Repository,
	q queue.Queue,
	log logger.Logger,
) jobs.UseCase {
	return &jobUC{
		cfg:       cfg,
		jobRepo:   jobRepo,
		videoRepo: videoRepo,
		queue:     q,
		logger:    log,
	}
}

// CreateJob registers a pending job and enqueues its work message. When the
// message cannot be enqueued the job is removed again, so no pending job is
// left without a message.
func (u *jobUC) CreateJob(ctx context.Context, input *models.JobCreateInput) (*models.Job, error) {
	if err := utils.ValidateStruct(ctx, input); err != nil {
		u.logger.Errorf("CreateJob - ValidateStruct error: %v", err)
		return nil, err
	}
	video, err := u.videoRepo.GetVideoByID(ctx, input.VideoID)
	if err != nil {
		u.logger.Warnf("CreateJob - GetVideoByID error: %v", err)
		return nil, err
	}

	job, err := u.jobRepo.Create(ctx, &models.Job{
		ID:      uuid.New().String(),
		VideoID: video.ID,
		Status:  models.JobStatusPending,
	})
	if err != nil {
		u.logger.Errorf("CreateJob - Create error: %v", err)
		return nil, err
	}

	body, err := json.Marshal(&models.WorkMessage{
		JobID:         job.ID,
		VideoID:       video.ID,
		StorageKey:    video.StorageKey,
		StorageBucket: u.cfg.S3.Bucket,
	})
	if err != nil {
		u.abandon(ctx, job.ID)
		return nil, fmt.Errorf("failed to encode work message: %w", err)
	}
	messageID, err := u.queue.Send(ctx, body)
	if err != nil {
		u.logger.Errorf("CreateJob - Send error: %v", err)
		u.abandon(ctx, job.ID)
		return nil, fmt.Errorf("failed to queue the job: %w", err)
	}
	u.logger.Infof("Queued job %s for video %s (message %s)", job.ID, video.ID, messageID)
	return job, nil
}

func (u *jobUC) abandon(ctx context.Context, jobID string) {
	if err := u.jobRepo.Abandon(context.WithoutCancel(ctx), jobID); err != nil {
		u.logger.Errorf("CreateJob - Abandon %s error: %v", jobID, err)
	}
}

func (u *jobUC) GetJob(ctx context.Context, jobID string) (*models.Job, error) {
	job, err := u.jobRepo.GetByID(ctx, jobID)
	if err != nil {
		u.logger.Warnf("GetJob - GetByID error: %v", err)
		return nil, err
	}
	return job, nil
}

func (u *jobUC) ListJobs(ctx context.Context, filter models.JobFilter, pagination *utils.Pagination) ([]*models.Job, error) {
	jobList, err := u.jobRepo.List(ctx, filter, pagination)
	if err != nil {
		u.logger.Errorf("ListJobs - List error: %v", err)
		return nil, err
	}
	return jobList, nil
}

func (u *jobUC) DeleteJob(ctx context.Context, jobID string) error {
	job, err := u.jobRepo.GetByID(ctx, jobID)
	if err != nil {
		return err
	}
	if !job.Status.IsTerminal() {
		return fmt.Errorf("%w: job %s is %s", models.ErrJobNotTerminal, jobID, job.Status)
	}
	if err = u.jobRepo.Delete(ctx, jobID); err != nil {
		u.logger.Errorf("DeleteJob - Delete error: %v", err)
		return err
	}
	return nil
}
