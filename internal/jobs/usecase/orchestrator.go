package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/amankumarsingh77/frame-search/internal/jobs"
	"github.com/amankumarsingh77/frame-search/internal/models"
	"github.com/amankumarsingh77/frame-search/pkg/logger"
)

type orchestrator struct {
	jobRepo jobs.Repository
	logger  logger.Logger
}

func NewOrchestrator(jobRepo jobs.Repository, log logger.Logger) jobs.Orchestrator {
	return &orchestrator{
		jobRepo: jobRepo,
		logger:  log,
	}
}

// Transition validates and persists a status change in one atomic step.
// Nothing is written when the job is missing or the change is not allowed.
func (o *orchestrator) Transition(ctx context.Context, jobID string, target models.JobStatus, fields models.TransitionFields) (*models.Job, error) {
	if !target.IsValid() {
		return nil, fmt.Errorf("%w: unknown status %q", models.ErrInvalidTransition, target)
	}
	job, err := o.jobRepo.Update(ctx, jobID, func(j *models.Job) error {
		return j.ApplyTransition(target, fields)
	})
	if err != nil {
		switch {
		case errors.Is(err, models.ErrJobNotFound), errors.Is(err, models.ErrInvalidTransition):
			o.logger.Warnf("Transition - job %s -> %s rejected: %v", jobID, target, err)
		default:
			o.logger.Errorf("Transition - job %s -> %s error: %v", jobID, target, err)
		}
		return nil, err
	}
	o.logger.Infof("Job %s is now %s", jobID, job.Status)
	return job, nil
}
