package repository

import (
	"context"
	"fmt"

	"github.com/amankumarsingh77/frame-search/internal/frames"
	"github.com/amankumarsingh77/frame-search/internal/models"
	"github.com/jmoiron/sqlx"
)

type frameRepo struct {
	db *sqlx.DB
}

func NewFrameRepo(db *sqlx.DB) frames.Repository {
	return &frameRepo{db: db}
}

func (r *frameRepo) ReplaceForVideo(ctx context.Context, videoID string, videoFrames []*models.Frame) (int, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err = tx.ExecContext(ctx, deleteFramesByVideoQuery, videoID); err != nil {
		return 0, fmt.Errorf("failed to delete frames: %w", err)
	}

	stmt, err := tx.PreparexContext(ctx, insertFrameQuery)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare frame insert: %w", err)
	}
	defer stmt.Close()

	for _, f := range videoFrames {
		if _, err = stmt.ExecContext(ctx, videoID, f.FrameIndex, f.Timestamp, f.Embedding, f.SceneLabel); err != nil {
			return 0, fmt.Errorf("failed to insert frame %d: %w", f.FrameIndex, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit frames: %w", err)
	}
	return len(videoFrames), nil
}

func (r *frameRepo) ListByVideo(ctx context.Context, videoID string) ([]*models.FrameView, error) {
	views := make([]*models.FrameView, 0)
	if err := r.db.SelectContext(ctx, &views, listFramesByVideoQuery, videoID); err != nil {
		return nil, fmt.Errorf("failed to list frames: %w", err)
	}
	return views, nil
}

func (r *frameRepo) CountFrames(ctx context.Context) (int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, countFramesQuery); err != nil {
		return 0, fmt.Errorf("failed to count frames: %w", err)
	}
	return total, nil
}

func (r *frameRepo) CountByVideo(ctx context.Context) ([]*models.VideoFrameCount, error) {
	counts := make([]*models.VideoFrameCount, 0)
	if err := r.db.SelectContext(ctx, &counts, countFramesByVideoQuery); err != nil {
		return nil, fmt.Errorf("failed to count frames by video: %w", err)
	}
	return counts, nil
}
