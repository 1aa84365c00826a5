package inmem

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/amankumarsingh77/frame-search/internal/models"
	"github.com/amankumarsingh77/frame-search/pkg/utils"
)

type JobRepo struct {
	mu   sync.Mutex
	jobs map[string]*models.Job
	// history records every persisted status per job, in order.
	history map[string][]models.JobStatus

	// UpdateErr, when set, fails every Update after apply succeeded.
	UpdateErr error
}

func NewJobRepo() *JobRepo {
	return &JobRepo{
		jobs:    make(map[string]*models.Job),
		history: make(map[string][]models.JobStatus),
	}
}

func cloneJob(j *models.Job) *models.Job {
	c := *j
	return &c
}

func (r *JobRepo) Create(_ context.Context, job *models.Job) (*models.Job, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.jobs[job.ID]; ok {
		return nil, fmt.Errorf("failed to create job: duplicate id %s", job.ID)
	}
	j := cloneJob(job)
	if j.CreatedAt.IsZero() {
		j.CreatedAt = time.Now().UTC()
	}
	r.jobs[j.ID] = j
	r.history[j.ID] = append(r.history[j.ID], j.Status)
	return cloneJob(j), nil
}

func (r *JobRepo) GetByID(_ context.Context, jobID string) (*models.Job, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	j, ok := r.jobs[jobID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", models.ErrJobNotFound, jobID)
	}
	return cloneJob(j), nil
}

func (r *JobRepo) Update(_ context.Context, jobID string, apply func(job *models.Job) error) (*models.Job, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	j, ok := r.jobs[jobID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", models.ErrJobNotFound, jobID)
	}
	working := cloneJob(j)
	if err := apply(working); err != nil {
		return nil, err
	}
	if r.UpdateErr != nil {
		return nil, r.UpdateErr
	}
	now := time.Now().UTC()
	working.UpdatedAt = &now
	r.jobs[jobID] = working
	r.history[jobID] = append(r.history[jobID], working.Status)
	return cloneJob(working), nil
}

func (r *JobRepo) List(_ context.Context, filter models.JobFilter, pq *utils.Pagination) ([]*models.Job, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*models.Job, 0)
	for _, j := range r.jobs {
		if filter.VideoID != "" && j.VideoID != filter.VideoID {
			continue
		}
		if filter.Status != "" && j.Status != filter.Status {
			continue
		}
		out = append(out, cloneJob(j))
	}
	sort.Slice(out, func(a, b int) bool { return out[a].CreatedAt.After(out[b].CreatedAt) })
	start := min(pq.GetOffset(), len(out))
	end := min(start+pq.GetLimit(), len(out))
	return out[start:end], nil
}

func (r *JobRepo) Delete(_ context.Context, jobID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	j, ok := r.jobs[jobID]
	if !ok {
		return fmt.Errorf("%w: %s", models.ErrJobNotFound, jobID)
	}
	if !j.Status.IsTerminal() {
		return models.ErrJobNotTerminal
	}
	delete(r.jobs, jobID)
	return nil
}

func (r *JobRepo) Abandon(_ context.Context, jobID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	j, ok := r.jobs[jobID]
	if !ok {
		return fmt.Errorf("%w: %s", models.ErrJobNotFound, jobID)
	}
	if j.Status != models.JobStatusPending || j.StartedAt != nil {
		return fmt.Errorf("%w: job %s already started", models.ErrInvalidTransition, jobID)
	}
	delete(r.jobs, jobID)
	return nil
}

func (r *JobRepo) CountActiveByVideo(_ context.Context, videoID string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, j := range r.jobs {
		if j.VideoID == videoID && !j.Status.IsTerminal() {
			n++
		}
	}
	return n, nil
}

// History returns every status the job was persisted with, oldest first.
func (r *JobRepo) History(jobID string) []models.JobStatus {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]models.JobStatus(nil), r.history[jobID]...)
}
