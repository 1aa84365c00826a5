package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/amankumarsingh77/frame-search/internal/models"
	"github.com/amankumarsingh77/frame-search/internal/videofiles"
	"github.com/amankumarsingh77/frame-search/pkg/utils"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

type videoRepo struct {
	db *sqlx.DB
}

func NewVideoRepo(db *sqlx.DB) videofiles.Repository {
	return &videoRepo{
		db: db,
	}
}

func (v *videoRepo) CreateVideo(ctx context.Context, videoFile *models.Video) (*models.Video, error) {
	video := &models.Video{}
	if err := v.db.QueryRowxContext(
		ctx,
		createVideoQuery,
		videoFile.ID,
		videoFile.Filename,
		videoFile.StorageKey,
		videoFile.SizeBytes,
		videoFile.Format,
	).StructScan(video); err != nil {
		return nil, fmt.Errorf("failed to create video: %w", err)
	}
	return video, nil
}

func (v *videoRepo) GetVideos(ctx context.Context, query *utils.Pagination) (*models.VideoList, error) {
	totalCount, err := v.CountVideos(ctx)
	if err != nil {
		return nil, err
	}
	if totalCount == 0 {
		return &models.VideoList{
			Videos:     make([]*models.Video, 0),
			TotalCount: 0,
			Page:       query.GetPage(),
			PageSize:   query.GetSize(),
			HasMore:    false,
		}, nil
	}
	rows, err := v.db.QueryxContext(
		ctx,
		getVideosQuery,
		query.GetOffset(),
		query.GetLimit(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get videos: %w", err)
	}
	defer rows.Close()
	var videos = make([]*models.Video, 0, query.GetSize())
	for rows.Next() {
		var video models.Video
		if err = rows.StructScan(&video); err != nil {
			return nil, fmt.Errorf("failed to scan video: %w", err)
		}
		videos = append(videos, &video)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan videos: %w", err)
	}
	return &models.VideoList{
		Videos:     videos,
		TotalCount: totalCount,
		Page:       query.GetPage(),
		PageSize:   query.GetSize(),
		HasMore:    utils.GetHasMore(query.GetPage(), totalCount, query.GetSize()),
	}, nil
}

func (v *videoRepo) CountVideos(ctx context.Context) (int, error) {
	var totalCount int
	if err := v.db.GetContext(ctx, &totalCount, getTotalVideosCountQuery); err != nil {
		return 0, fmt.Errorf("failed to get total videos count: %w", err)
	}
	return totalCount, nil
}

func (v *videoRepo) GetVideoByID(ctx context.Context, videoID string) (*models.Video, error) {
	video := &models.Video{}
	if err := v.db.QueryRowxContext(
		ctx,
		getVideoByIDQuery,
		videoID,
	).StructScan(video); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", models.ErrVideoNotFound, videoID)
		}
		return nil, fmt.Errorf("failed to get video by id: %w", err)
	}
	return video, nil
}

func (v *videoRepo) GetVideosByIDs(ctx context.Context, videoIDs []string) ([]*models.Video, error) {
	videos := make([]*models.Video, 0, len(videoIDs))
	if len(videoIDs) == 0 {
		return videos, nil
	}
	if err := v.db.SelectContext(ctx, &videos, getVideosByIDsQuery, pq.Array(videoIDs)); err != nil {
		return nil, fmt.Errorf("failed to get videos by ids: %w", err)
	}
	return videos, nil
}

func (v *videoRepo) SetDurationIfUnset(ctx context.Context, videoID string, duration float64) error {
	res, err := v.db.ExecContext(ctx, setDurationIfUnsetQuery, videoID, duration)
	if err != nil {
		return fmt.Errorf("failed to set video duration: %w", err)
	}
	count, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to set video duration: %w", err)
	}
	if count > 0 {
		return nil
	}
	// Zero rows means either the duration was already set or the video is gone.
	var exists bool
	if err := v.db.GetContext(ctx, &exists, videoExistsQuery, videoID); err != nil {
		return fmt.Errorf("failed to check video existence: %w", err)
	}
	if !exists {
		return fmt.Errorf("%w: %s", models.ErrVideoNotFound, videoID)
	}
	return nil
}

func (v *videoRepo) DeleteVideo(ctx context.Context, videoID string) error {
	res, err := v.db.ExecContext(
		ctx,
		deleteVideoQuery,
		videoID,
	)
	if err != nil {
		return fmt.Errorf("failed to delete video: %w", err)
	}
	count, _ := res.RowsAffected()
	if count == 0 {
		return fmt.Errorf("%w: %s", models.ErrVideoNotFound, videoID)
	}
	return nil
}
