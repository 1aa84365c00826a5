package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/amankumarsingh77/frame-search/internal/jobs"
	"github.com/amankumarsingh77/frame-search/internal/models"
	"github.com/amankumarsingh77/frame-search/pkg/utils"
	"github.com/jmoiron/sqlx"
)

type jobRepo struct {
	db *sqlx.DB
}

func NewJobRepo(db *sqlx.DB) jobs.Repository {
	return &jobRepo{db: db}
}

func (r *jobRepo) Create(ctx context.Context, job *models.Job) (*models.Job, error) {
	created := &models.Job{}
	if err := r.db.QueryRowxContext(
		ctx,
		createJobQuery,
		job.ID,
		job.VideoID,
		job.Status,
	).StructScan(created); err != nil {
		return nil, fmt.Errorf("failed to create job: %w", err)
	}
	return created, nil
}

func (r *jobRepo) GetByID(ctx context.Context, jobID string) (*models.Job, error) {
	job := &models.Job{}
	if err := r.db.QueryRowxContext(ctx, getJobByIDQuery, jobID).StructScan(job); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", models.ErrJobNotFound, jobID)
		}
		return nil, fmt.Errorf("failed to get job by id: %w", err)
	}
	return job, nil
}

func (r *jobRepo) Update(ctx context.Context, jobID string, apply func(job *models.Job) error) (*models.Job, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	job := &models.Job{}
	if err = tx.QueryRowxContext(ctx, lockJobByIDQuery, jobID).StructScan(job); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", models.ErrJobNotFound, jobID)
		}
		return nil, fmt.Errorf("failed to lock job: %w", err)
	}

	if err = apply(job); err != nil {
		return nil, err
	}

	updated := &models.Job{}
	if err = tx.QueryRowxContext(
		ctx,
		updateJobQuery,
		job.ID,
		job.Status,
		job.StartedAt,
		job.CompletedAt,
		job.ErrorMessage,
		job.ProcessingTimeSeconds,
		job.FramesProcessed,
		job.EmbeddingsStored,
	).StructScan(updated); err != nil {
		return nil, fmt.Errorf("failed to update job: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit job update: %w", err)
	}
	return updated, nil
}

func (r *jobRepo) List(ctx context.Context, filter models.JobFilter, pq *utils.Pagination) ([]*models.Job, error) {
	jobList := make([]*models.Job, 0, pq.GetSize())
	if err := r.db.SelectContext(
		ctx,
		&jobList,
		listJobsQuery,
		filter.VideoID,
		string(filter.Status),
		pq.GetOffset(),
		pq.GetLimit(),
	); err != nil {
		return nil, fmt.Errorf("failed to list jobs: %w", err)
	}
	return jobList, nil
}

func (r *jobRepo) Delete(ctx context.Context, jobID string) error {
	return r.deleteWhere(ctx, deleteTerminalJobQuery, jobID, models.ErrJobNotTerminal)
}

func (r *jobRepo) Abandon(ctx context.Context, jobID string) error {
	return r.deleteWhere(ctx, abandonJobQuery, jobID, fmt.Errorf("%w: job %s already started", models.ErrInvalidTransition, jobID))
}

// deleteWhere runs a guarded delete and tells a missing job apart from one
// the guard refused.
func (r *jobRepo) deleteWhere(ctx context.Context, query, jobID string, refused error) error {
	res, err := r.db.ExecContext(ctx, query, jobID)
	if err != nil {
		return fmt.Errorf("failed to delete job: %w", err)
	}
	count, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete job: %w", err)
	}
	if count > 0 {
		return nil
	}
	var exists bool
	if err = r.db.GetContext(ctx, &exists, jobExistsQuery, jobID); err != nil {
		return fmt.Errorf("failed to check job existence: %w", err)
	}
	if !exists {
		return fmt.Errorf("%w: %s", models.ErrJobNotFound, jobID)
	}
	return refused
}

func (r *jobRepo) CountActiveByVideo(ctx context.Context, videoID string) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, countActiveJobsQuery, videoID); err != nil {
		return 0, fmt.Errorf("failed to count active jobs: %w", err)
	}
	return count, nil
}
