package repository

const (
	createJobQuery = `INSERT INTO processing_jobs (id, video_id, status) VALUES ($1, $2, $3)
					RETURNING id, video_id, status, started_at, completed_at, error_message,
						processing_time_seconds, frames_processed, embeddings_stored, created_at, updated_at`
	getJobByIDQuery = `SELECT id, video_id, status, started_at, completed_at, error_message,
						processing_time_seconds, frames_processed, embeddings_stored, created_at, updated_at
					FROM processing_jobs WHERE id = $1`
	lockJobByIDQuery = `SELECT id, video_id, status, started_at, completed_at, error_message,
						processing_time_seconds, frames_processed, embeddings_stored, created_at, updated_at
					FROM processing_jobs WHERE id = $1 FOR UPDATE`
	updateJobQuery = `UPDATE processing_jobs
					SET status = $2,
						started_at = $3,
						completed_at = $4,
						error_message = $5,
						processing_time_seconds = $6,
						frames_processed = $7,
						embeddings_stored = $8,
						updated_at = now()
					WHERE id = $1
					RETURNING id, video_id, status, started_at, completed_at, error_message,
						processing_time_seconds, frames_processed, embeddings_stored, created_at, updated_at`
	listJobsQuery = `SELECT id, video_id, status, started_at, completed_at, error_message,
						processing_time_seconds, frames_processed, embeddings_stored, created_at, updated_at
					FROM processing_jobs
					WHERE ($1 = '' OR video_id = $1) AND ($2 = '' OR status = $2)
					ORDER BY created_at DESC OFFSET $3 LIMIT $4`
	deleteTerminalJobQuery = `DELETE FROM processing_jobs WHERE id = $1 AND status IN ('completed', 'failed')`
	abandonJobQuery        = `DELETE FROM processing_jobs WHERE id = $1 AND status = 'pending' AND started_at IS NULL`
	jobExistsQuery         = `SELECT EXISTS(SELECT 1 FROM processing_jobs WHERE id = $1)`
	countActiveJobsQuery   = `SELECT COUNT(id) FROM processing_jobs WHERE video_id = $1 AND status IN ('pending', 'processing')`
)
