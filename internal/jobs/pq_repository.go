package jobs

import (
	"context"

	"github.com/amankumarsingh77/frame-search/internal/models"
	"github.com/amankumarsingh77/frame-search/pkg/utils"
)

type Repository interface {
	Create(ctx context.Context, job *models.Job) (*models.Job, error)
	GetByID(ctx context.Context, jobID string) (*models.Job, error)
	// Update loads the job under a row lock, runs apply and persists the result
	// in one transaction. An error from apply rolls everything back.
	Update(ctx context.Context, jobID string, apply func(job *models.Job) error) (*models.Job, error)
	List(ctx context.Context, filter models.JobFilter, pq *utils.Pagination) ([]*models.Job, error)
	// Delete removes a terminal job.
	Delete(ctx context.Context, jobID string) error
	// Abandon removes a job that is still pending and was never started.
	Abandon(ctx context.Context, jobID string) error
	CountActiveByVideo(ctx context.Context, videoID string) (int, error)
}
