package models

import (
	"fmt"
	"time"
)

type JobStatus string

const (
	JobStatusPending    JobStatus = "pending"
	JobStatusProcessing JobStatus = "processing"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusFailed     JobStatus = "failed"
)

// IsTerminal reports whether no further transition is possible.
func (s JobStatus) IsTerminal() bool {
	return s == JobStatusCompleted || s == JobStatusFailed
}

func (s JobStatus) IsValid() bool {
	switch s {
	case JobStatusPending, JobStatusProcessing, JobStatusCompleted, JobStatusFailed:
		return true
	}
	return false
}

// CanTransitionTo encodes the forward-only lifecycle:
// pending -> processing -> {completed, failed}.
// processing -> processing is a re-entry after a crashed attempt was redelivered,
// pending -> failed covers a job that fails before processing starts.
func (s JobStatus) CanTransitionTo(target JobStatus) bool {
	switch s {
	case JobStatusPending:
		return target == JobStatusProcessing || target == JobStatusFailed
	case JobStatusProcessing:
		return target == JobStatusProcessing || target == JobStatusCompleted || target == JobStatusFailed
	}
	return false
}

type Job struct {
	ID                    string     `json:"id" db:"id"`
	VideoID               string     `json:"video_id" db:"video_id"`
	Status                JobStatus  `json:"status" db:"status"`
	StartedAt             *time.Time `json:"started_at" db:"started_at"`
	CompletedAt           *time.Time `json:"completed_at" db:"completed_at"`
	ErrorMessage          *string    `json:"error_message" db:"error_message"`
	ProcessingTimeSeconds *float64   `json:"processing_time_seconds" db:"processing_time_seconds"`
	FramesProcessed       *int       `json:"frames_processed" db:"frames_processed"`
	EmbeddingsStored      *int       `json:"embeddings_stored" db:"embeddings_stored"`
	CreatedAt             time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt             *time.Time `json:"updated_at" db:"updated_at"`
}

// TransitionFields are the optional values written together with a status change.
// Nil fields are left untouched.
type TransitionFields struct {
	StartedAt             *time.Time
	CompletedAt           *time.Time
	ErrorMessage          *string
	ProcessingTimeSeconds *float64
	FramesProcessed       *int
	EmbeddingsStored      *int
}

// ApplyTransition moves the job to target and copies the supplied fields.
// The job is left unmodified when the transition is rejected.
func (j *Job) ApplyTransition(target JobStatus, fields TransitionFields) error {
	if !j.Status.CanTransitionTo(target) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, j.Status, target)
	}
	j.Status = target
	if fields.StartedAt != nil {
		j.StartedAt = fields.StartedAt
	}
	if fields.CompletedAt != nil {
		j.CompletedAt = fields.CompletedAt
	}
	if fields.ProcessingTimeSeconds != nil {
		j.ProcessingTimeSeconds = fields.ProcessingTimeSeconds
	}
	if fields.FramesProcessed != nil {
		j.FramesProcessed = fields.FramesProcessed
	}
	if fields.EmbeddingsStored != nil {
		j.EmbeddingsStored = fields.EmbeddingsStored
	}
	if target == JobStatusFailed && fields.ErrorMessage != nil {
		j.ErrorMessage = fields.ErrorMessage
	}
	return nil
}

type JobCreateInput struct {
	VideoID string `json:"video_id" validate:"required,uuid"`
}

type JobFilter struct {
	VideoID string
	Status  JobStatus
}
