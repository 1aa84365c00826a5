package repository

import (
	"context"
	"database/sql/driver"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/amankumarsingh77/frame-search/internal/models"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var jobColumns = []string{
	"id", "video_id", "status", "started_at", "completed_at", "error_message",
	"processing_time_seconds", "frames_processed", "embeddings_stored", "created_at", "updated_at",
}

func jobRow(id, status string, created time.Time) []driver.Value {
	return []driver.Value{id, "video-1", status, nil, nil, nil, nil, nil, nil, created, nil}
}

func newMockRepo(t *testing.T) (*jobRepo, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return &jobRepo{db: sqlx.NewDb(db, "sqlmock")}, mock
}

func TestJobRepoUpdateCommits(t *testing.T) {
	repo, mock := newMockRepo(t)
	created := time.Now().UTC()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("FROM processing_jobs WHERE id = $1 FOR UPDATE")).
		WithArgs("job-1").
		WillReturnRows(sqlmock.NewRows(jobColumns).AddRow(jobRow("job-1", "pending", created)...))
	mock.ExpectQuery(regexp.QuoteMeta("UPDATE processing_jobs")).
		WithArgs("job-1", "processing", sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(),
			sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows(jobColumns).AddRow(jobRow("job-1", "processing", created)...))
	mock.ExpectCommit()

	job, err := repo.Update(context.Background(), "job-1", func(j *models.Job) error {
		now := time.Now()
		return j.ApplyTransition(models.JobStatusProcessing, models.TransitionFields{StartedAt: &now})
	})
	require.NoError(t, err)
	assert.Equal(t, models.JobStatusProcessing, job.Status)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestJobRepoUpdateRollsBackRejectedTransition(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("FROM processing_jobs WHERE id = $1 FOR UPDATE")).
		WithArgs("job-1").
		WillReturnRows(sqlmock.NewRows(jobColumns).AddRow(jobRow("job-1", "completed", time.Now())...))
	mock.ExpectRollback()

	_, err := repo.Update(context.Background(), "job-1", func(j *models.Job) error {
		return j.ApplyTransition(models.JobStatusProcessing, models.TransitionFields{})
	})
	require.ErrorIs(t, err, models.ErrInvalidTransition)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestJobRepoUpdateRollsBackWriteFailure(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("FOR UPDATE")).
		WithArgs("job-1").
		WillReturnRows(sqlmock.NewRows(jobColumns).AddRow(jobRow("job-1", "processing", time.Now())...))
	mock.ExpectQuery(regexp.QuoteMeta("UPDATE processing_jobs")).
		WillReturnError(errors.New("connection reset"))
	mock.ExpectRollback()

	_, err := repo.Update(context.Background(), "job-1", func(j *models.Job) error {
		return j.ApplyTransition(models.JobStatusCompleted, models.TransitionFields{})
	})
	require.Error(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestJobRepoUpdateNotFound(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("FOR UPDATE")).
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows(jobColumns))
	mock.ExpectRollback()

	_, err := repo.Update(context.Background(), "missing", func(j *models.Job) error {
		t.Fatal("apply must not run for a missing job")
		return nil
	})
	require.ErrorIs(t, err, models.ErrJobNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestJobRepoDeleteGuards(t *testing.T) {
	t.Run("active job is refused", func(t *testing.T) {
		repo, mock := newMockRepo(t)
		mock.ExpectExec(regexp.QuoteMeta("DELETE FROM processing_jobs")).
			WithArgs("job-1").
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS")).
			WithArgs("job-1").
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

		require.ErrorIs(t, repo.Delete(context.Background(), "job-1"), models.ErrJobNotTerminal)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing job", func(t *testing.T) {
		repo, mock := newMockRepo(t)
		mock.ExpectExec(regexp.QuoteMeta("DELETE FROM processing_jobs")).
			WithArgs("job-1").
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS")).
			WithArgs("job-1").
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

		require.ErrorIs(t, repo.Delete(context.Background(), "job-1"), models.ErrJobNotFound)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("terminal job is deleted", func(t *testing.T) {
		repo, mock := newMockRepo(t)
		mock.ExpectExec(regexp.QuoteMeta("DELETE FROM processing_jobs")).
			WithArgs("job-1").
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, repo.Delete(context.Background(), "job-1"))
		require.NoError(t, mock.ExpectationsWereMet())
	})
}
