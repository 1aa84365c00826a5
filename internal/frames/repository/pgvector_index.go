package repository

import (
	"context"
	"fmt"
	"sort"

	"github.com/amankumarsingh77/frame-search/internal/frames"
	"github.com/amankumarsingh77/frame-search/internal/models"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pgvector/pgvector-go"
)

type pgVectorIndex struct {
	db        *sqlx.DB
	dimension int
}

// NewPgVectorIndex returns a VectorIndex over the frame_vectors table using
// cosine distance. Scores are cosine similarities.
func NewPgVectorIndex(db *sqlx.DB, dimension int) frames.VectorIndex {
	return &pgVectorIndex{db: db, dimension: dimension}
}

func (x *pgVectorIndex) Upsert(ctx context.Context, records []models.VectorRecord) (int, error) {
	if len(records) == 0 {
		return 0, nil
	}
	for _, rec := range records {
		if x.dimension > 0 && len(rec.Values) != x.dimension {
			return 0, fmt.Errorf("failed to upsert vector %s: dimension %d, want %d", rec.ID, len(rec.Values), x.dimension)
		}
	}

	tx, err := x.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PreparexContext(ctx, upsertVectorQuery)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare vector upsert: %w", err)
	}
	defer stmt.Close()

	for _, rec := range records {
		if _, err = stmt.ExecContext(ctx, rec.ID, rec.VideoID, rec.FrameIndex, rec.Timestamp, pgvector.NewVector(rec.Values)); err != nil {
			return 0, fmt.Errorf("failed to upsert vector %s: %w", rec.ID, err)
		}
	}
	if err = tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit vectors: %w", err)
	}
	return len(records), nil
}

func (x *pgVectorIndex) Query(ctx context.Context, vector []float32, topK int, filter models.VectorFilter) ([]models.ScoredMatch, error) {
	matches := make([]models.ScoredMatch, 0, topK)
	if topK <= 0 {
		return matches, nil
	}
	var err error
	if len(filter.VideoIDs) > 0 {
		err = x.db.SelectContext(ctx, &matches, queryVectorsByVideosQuery, pgvector.NewVector(vector), topK, pq.Array(filter.VideoIDs))
	} else {
		err = x.db.SelectContext(ctx, &matches, queryVectorsQuery, pgvector.NewVector(vector), topK)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query vectors: %w", err)
	}
	// The query orders by distance only; ties are broken by id.
	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].Score != matches[j].Score {
			return matches[i].Score > matches[j].Score
		}
		return matches[i].ID < matches[j].ID
	})
	return matches, nil
}

func (x *pgVectorIndex) DeleteByVideo(ctx context.Context, videoID string) error {
	if _, err := x.db.ExecContext(ctx, deleteVectorsByVideoQuery, videoID); err != nil {
		return fmt.Errorf("failed to delete vectors: %w", err)
	}
	return nil
}

func (x *pgVectorIndex) Stats(ctx context.Context) (*models.IndexStats, error) {
	stats := &models.IndexStats{Dimension: x.dimension}
	if err := x.db.GetContext(ctx, &stats.TotalVectors, countVectorsQuery); err != nil {
		return nil, fmt.Errorf("failed to count vectors: %w", err)
	}
	return stats, nil
}
