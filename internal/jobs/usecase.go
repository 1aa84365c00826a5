package jobs

import (
	"context"

	"github.com/amankumarsingh77/frame-search/internal/models"
	"github.com/amankumarsingh77/frame-search/pkg/utils"
)

type UseCase interface {
	CreateJob(ctx context.Context, input *models.JobCreateInput) (*models.Job, error)
	GetJob(ctx context.Context, jobID string) (*models.Job, error)
	ListJobs(ctx context.Context, filter models.JobFilter, pagination *utils.Pagination) ([]*models.Job, error)
	DeleteJob(ctx context.Context, jobID string) error
}

// Orchestrator owns every status change after a job is created.
type Orchestrator interface {
	Transition(ctx context.Context, jobID string, target models.JobStatus, fields models.TransitionFields) (*models.Job, error)
}
