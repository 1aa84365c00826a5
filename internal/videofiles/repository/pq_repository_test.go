package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/amankumarsingh77/frame-search/internal/models"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testVideoID = "7c9e6679-7425-40de-944b-e07fc1f90ae7"

var videoColumns = []string{"id", "filename", "s3_key", "size_bytes", "duration_seconds", "format", "uploaded_at"}

func newMockRepo(t *testing.T) (*videoRepo, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return &videoRepo{db: sqlx.NewDb(db, "sqlmock")}, mock
}

func TestSetDurationIfUnset(t *testing.T) {
	ctx := context.Background()
	update := regexp.QuoteMeta("UPDATE videos SET duration_seconds = $2 WHERE id = $1 AND duration_seconds IS NULL")
	exists := regexp.QuoteMeta("SELECT EXISTS(SELECT 1 FROM videos WHERE id = $1)")

	t.Run("writes when unset", func(t *testing.T) {
		repo, mock := newMockRepo(t)
		mock.ExpectExec(update).WithArgs(testVideoID, 12.5).WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, repo.SetDurationIfUnset(ctx, testVideoID, 12.5))
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("keeps an existing duration", func(t *testing.T) {
		repo, mock := newMockRepo(t)
		mock.ExpectExec(update).WithArgs(testVideoID, 12.5).WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery(exists).WithArgs(testVideoID).
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

		require.NoError(t, repo.SetDurationIfUnset(ctx, testVideoID, 12.5))
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing video", func(t *testing.T) {
		repo, mock := newMockRepo(t)
		mock.ExpectExec(update).WithArgs(testVideoID, 12.5).WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery(exists).WithArgs(testVideoID).
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

		err := repo.SetDurationIfUnset(ctx, testVideoID, 12.5)
		require.ErrorIs(t, err, models.ErrVideoNotFound)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGetVideosByIDs(t *testing.T) {
	ctx := context.Background()

	t.Run("no ids", func(t *testing.T) {
		repo, mock := newMockRepo(t)
		videos, err := repo.GetVideosByIDs(ctx, nil)
		require.NoError(t, err)
		assert.Empty(t, videos)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("allow list", func(t *testing.T) {
		repo, mock := newMockRepo(t)
		uploaded := time.Now().UTC()
		mock.ExpectQuery(regexp.QuoteMeta("WHERE id = ANY($1)")).
			WithArgs(sqlmock.AnyArg()).
			WillReturnRows(sqlmock.NewRows(videoColumns).
				AddRow(testVideoID, "park.mp4", "videos/park.mp4", 1024, 65.0, "mp4", uploaded))

		videos, err := repo.GetVideosByIDs(ctx, []string{testVideoID, "0f8fad5b-d9cb-469f-a165-70867728950e"})
		require.NoError(t, err)
		require.Len(t, videos, 1)
		assert.Equal(t, "park.mp4", videos[0].Filename)
		assert.Equal(t, "videos/park.mp4", videos[0].StorageKey)
		require.NotNil(t, videos[0].DurationSeconds)
		assert.Equal(t, 65.0, *videos[0].DurationSeconds)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}
