package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/amankumarsingh77/frame-search/internal/models"
	"github.com/jmoiron/sqlx"
	"github.com/pgvector/pgvector-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testVideoID = "7c9e6679-7425-40de-944b-e07fc1f90ae7"

func newMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return sqlx.NewDb(db, "sqlmock"), mock
}

func testFrames(n int) []*models.Frame {
	out := make([]*models.Frame, n)
	for i := range out {
		out[i] = &models.Frame{
			VideoID:    testVideoID,
			FrameIndex: i,
			Timestamp:  float64(i),
			Embedding:  pgvector.NewVector([]float32{1, 0, 0}),
		}
	}
	return out
}

func TestReplaceForVideoDeletesAndInsertsInOneTransaction(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewFrameRepo(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM video_frames WHERE video_id = $1")).
		WithArgs(testVideoID).
		WillReturnResult(sqlmock.NewResult(0, 40))
	prep := mock.ExpectPrepare(regexp.QuoteMeta("INSERT INTO video_frames"))
	for i := 0; i < 2; i++ {
		prep.ExpectExec().
			WithArgs(testVideoID, i, float64(i), sqlmock.AnyArg(), sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(int64(i+1), 1))
	}
	mock.ExpectCommit()

	stored, err := repo.ReplaceForVideo(context.Background(), testVideoID, testFrames(2))
	require.NoError(t, err)
	assert.Equal(t, 2, stored)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestReplaceForVideoRollsBackInsertFailure(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewFrameRepo(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM video_frames")).
		WithArgs(testVideoID).
		WillReturnResult(sqlmock.NewResult(0, 5))
	prep := mock.ExpectPrepare(regexp.QuoteMeta("INSERT INTO video_frames"))
	prep.ExpectExec().
		WithArgs(testVideoID, 0, 0.0, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	prep.ExpectExec().
		WithArgs(testVideoID, 1, 1.0, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	_, err := repo.ReplaceForVideo(context.Background(), testVideoID, testFrames(3))
	require.ErrorContains(t, err, "disk full")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestReplaceForVideoRollsBackDeleteFailure(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewFrameRepo(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM video_frames")).
		WithArgs(testVideoID).
		WillReturnError(errors.New("lock timeout"))
	mock.ExpectRollback()

	_, err := repo.ReplaceForVideo(context.Background(), testVideoID, testFrames(1))
	require.ErrorContains(t, err, "lock timeout")
	require.NoError(t, mock.ExpectationsWereMet())
}
