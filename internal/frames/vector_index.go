package frames

import (
	"context"
	"strconv"

	"github.com/amankumarsingh77/frame-search/internal/models"
)

// VectorIndex is the similarity search store for frame embeddings.
type VectorIndex interface {
	// Upsert writes records keyed by ID and returns how many were written.
	Upsert(ctx context.Context, records []models.VectorRecord) (int, error)
	// Query returns up to topK matches ordered by descending score.
	Query(ctx context.Context, vector []float32, topK int, filter models.VectorFilter) ([]models.ScoredMatch, error)
	DeleteByVideo(ctx context.Context, videoID string) error
	Stats(ctx context.Context) (*models.IndexStats, error)
}

// VectorID is the deterministic index key of a frame.
func VectorID(videoID string, frameIndex int) string {
	return videoID + "_" + strconv.Itoa(frameIndex)
}
