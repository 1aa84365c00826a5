package repository

import (
	"context"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/amankumarsingh77/frame-search/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var matchColumns = []string{"id", "video_id", "frame_index", "timestamp_seconds", "score"}

func TestPgVectorIndexUpsert(t *testing.T) {
	db, mock := newMockDB(t)
	index := NewPgVectorIndex(db, 3)

	records := []models.VectorRecord{
		{ID: testVideoID + "_0", VideoID: testVideoID, FrameIndex: 0, Timestamp: 0, Values: []float32{1, 0, 0}},
		{ID: testVideoID + "_1", VideoID: testVideoID, FrameIndex: 1, Timestamp: 1, Values: []float32{0, 1, 0}},
	}

	mock.ExpectBegin()
	prep := mock.ExpectPrepare(regexp.QuoteMeta("ON CONFLICT (id) DO UPDATE"))
	for _, rec := range records {
		prep.ExpectExec().
			WithArgs(rec.ID, rec.VideoID, rec.FrameIndex, rec.Timestamp, sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(0, 1))
	}
	mock.ExpectCommit()

	n, err := index.Upsert(context.Background(), records)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPgVectorIndexUpsertRejectsWrongDimension(t *testing.T) {
	db, mock := newMockDB(t)
	index := NewPgVectorIndex(db, 3)

	_, err := index.Upsert(context.Background(), []models.VectorRecord{{ID: "x_0", Values: []float32{1, 0}}})
	require.ErrorContains(t, err, "dimension 2, want 3")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPgVectorIndexQuery(t *testing.T) {
	ctx := context.Background()

	t.Run("whole index", func(t *testing.T) {
		db, mock := newMockDB(t)
		index := NewPgVectorIndex(db, 3)

		mock.ExpectQuery(regexp.QuoteMeta("FROM frame_vectors ORDER BY embedding <=> $1::vector LIMIT $2")).
			WithArgs(sqlmock.AnyArg(), 50).
			WillReturnRows(sqlmock.NewRows(matchColumns).
				AddRow("b_3", "b", 3, 90.0, 0.91).
				AddRow("a_2", "a", 2, 60.0, 0.91).
				AddRow("a_0", "a", 0, 0.0, 0.4))

		got, err := index.Query(ctx, []float32{1, 0, 0}, 50, models.VectorFilter{})
		require.NoError(t, err)
		require.Len(t, got, 3)
		assert.Equal(t, []string{"a_2", "b_3", "a_0"}, []string{got[0].ID, got[1].ID, got[2].ID})
		assert.Equal(t, models.ScoredMatch{ID: "a_2", VideoID: "a", FrameIndex: 2, Timestamp: 60, Score: 0.91}, got[0])
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("allow list", func(t *testing.T) {
		db, mock := newMockDB(t)
		index := NewPgVectorIndex(db, 3)

		mock.ExpectQuery(regexp.QuoteMeta("WHERE video_id = ANY($3) ORDER BY embedding <=> $1::vector LIMIT $2")).
			WithArgs(sqlmock.AnyArg(), 10, sqlmock.AnyArg()).
			WillReturnRows(sqlmock.NewRows(matchColumns).AddRow("a_1", "a", 1, 30.0, 0.8))

		got, err := index.Query(ctx, []float32{1, 0, 0}, 10, models.VectorFilter{VideoIDs: []string{"a"}})
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "a", got[0].VideoID)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("empty pool", func(t *testing.T) {
		db, mock := newMockDB(t)
		index := NewPgVectorIndex(db, 3)

		got, err := index.Query(ctx, []float32{1, 0, 0}, 0, models.VectorFilter{})
		require.NoError(t, err)
		assert.Empty(t, got)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestPgVectorIndexDeleteByVideo(t *testing.T) {
	db, mock := newMockDB(t)
	index := NewPgVectorIndex(db, 3)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM frame_vectors WHERE video_id = $1")).
		WithArgs(testVideoID).
		WillReturnResult(sqlmock.NewResult(0, 25))

	require.NoError(t, index.DeleteByVideo(context.Background(), testVideoID))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPgVectorIndexStats(t *testing.T) {
	db, mock := newMockDB(t)
	index := NewPgVectorIndex(db, 3)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(id) AS total_vectors FROM frame_vectors")).
		WillReturnRows(sqlmock.NewRows([]string{"total_vectors"}).AddRow(65))

	stats, err := index.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, &models.IndexStats{TotalVectors: 65, Dimension: 3}, stats)
	require.NoError(t, mock.ExpectationsWereMet())
}
