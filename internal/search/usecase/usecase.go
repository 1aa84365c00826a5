package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/amankumarsingh77/frame-search/internal/config"
	"github.com/amankumarsingh77/frame-search/internal/embedding"
	"github.com/amankumarsingh77/frame-search/internal/frames"
	"github.com/amankumarsingh77/frame-search/internal/metrics"
	"github.com/amankumarsingh77/frame-search/internal/models"
	"github.com/amankumarsingh77/frame-search/internal/search"
	"github.com/amankumarsingh77/frame-search/internal/videofiles"
	"github.com/amankumarsingh77/frame-search/pkg/logger"
	"github.com/amankumarsingh77/frame-search/pkg/tracing"
	"github.com/amankumarsingh77/frame-search/pkg/utils"
	"go.opentelemetry.io/otel/attribute"
)

type searchUC struct {
	cfg         *config.Config
	model       embedding.Model
	vectorIndex frames.VectorIndex
	videoRepo   videofiles.Repository
	frameRepo   frames.Repository
	ranker      *Ranker
	logger      logger.Logger
}

func NewSearchUseCase(
	cfg *config.Config,
	model embedding.Model,
	vectorIndex frames.VectorIndex,
	videoRepo videofiles.Repository,
	frameRepo frames.Repository,
	log logger.Logger,
) search.UseCase {
	return &searchUC{
		cfg:         cfg,
		model:       model,
		vectorIndex: vectorIndex,
		videoRepo:   videoRepo,
		frameRepo:   frameRepo,
		ranker: NewRanker(PoolPolicy{
			Oversample: cfg.Search.Oversample,
			MinPool:    cfg.Search.MinPool,
			MaxPool:    cfg.Search.MaxPool,
		}),
		logger: log,
	}
}

// Search encodes the query, ranks the nearest frames and attaches video
// filenames. Any failure fails the whole request.
func (s *searchUC) Search(ctx context.Context, req *models.SearchRequest) (resp *models.SearchResponse, err error) {
	start := time.Now()
	defer func() {
		outcome := "ok"
		if err != nil {
			outcome = "error"
		}
		metrics.SearchRequestsTotal.WithLabelValues(outcome).Inc()
		metrics.SearchDuration.Observe(time.Since(start).Seconds())
	}()

	if err = utils.ValidateStruct(ctx, req); err != nil {
		return nil, err
	}

	ctx, span := tracing.StartSpan(ctx, "search.Search")
	defer span.End()
	span.SetAttributes(
		attribute.Int("search.max_videos", req.MaxVideos),
		attribute.Int("search.max_results_per_video", req.MaxResultsPerVideo),
		attribute.Float64("search.threshold", req.Threshold),
	)

	s.logger.Infof("Search query %q: threshold %.2f, %d per video, %d videos",
		req.Query, req.Threshold, req.MaxResultsPerVideo, req.MaxVideos)

	vector, err := s.model.EncodeText(ctx, req.Query)
	if err != nil {
		s.logger.Errorf("Search - EncodeText error: %v", err)
		return nil, fmt.Errorf("failed to encode query: %w", err)
	}

	poolSize := s.ranker.PoolSize(req.MaxVideos, req.MaxResultsPerVideo)
	candidates, err := s.vectorIndex.Query(ctx, vector, poolSize, models.VectorFilter{VideoIDs: req.VideoIDs})
	if err != nil {
		s.logger.Errorf("Search - Query error: %v", err)
		return nil, fmt.Errorf("failed to query index: %w", err)
	}
	span.SetAttributes(attribute.Int("search.candidates", len(candidates)))

	ranking, err := s.ranker.Rank(candidates, req.Threshold, req.MaxResultsPerVideo, req.MaxVideos)
	if err != nil {
		s.logger.Errorf("Search - Rank error: %v", err)
		return nil, err
	}

	results, err := s.buildResults(ctx, ranking)
	if err != nil {
		return nil, err
	}

	s.logger.Infof("Returning %d videos with %d matches from %d candidates, average similarity %.3f",
		len(results), ranking.TotalMatches, len(candidates), ranking.AverageSimilarity)
	return &models.SearchResponse{
		Query:             req.Query,
		TotalVideos:       len(results),
		TotalMatches:      ranking.TotalMatches,
		Results:           results,
		AverageSimilarity: ranking.AverageSimilarity,
	}, nil
}

func (s *searchUC) buildResults(ctx context.Context, ranking *Ranking) ([]*models.VideoResult, error) {
	results := make([]*models.VideoResult, 0, len(ranking.Groups))
	if len(ranking.Groups) == 0 {
		return results, nil
	}

	ids := make([]string, len(ranking.Groups))
	for i, g := range ranking.Groups {
		ids[i] = g.VideoID
	}
	videos, err := s.videoRepo.GetVideosByIDs(ctx, ids)
	if err != nil {
		s.logger.Errorf("Search - GetVideosByIDs error: %v", err)
		return nil, fmt.Errorf("failed to load videos: %w", err)
	}
	filenames := make(map[string]string, len(videos))
	for _, v := range videos {
		filenames[v.ID] = v.Filename
	}

	for _, g := range ranking.Groups {
		result := &models.VideoResult{
			VideoID:       g.VideoID,
			VideoFilename: filenames[g.VideoID],
			Matches:       make([]*models.FrameMatch, 0, len(g.Matches)),
		}
		for _, m := range g.Matches {
			result.Matches = append(result.Matches, &models.FrameMatch{
				FrameID:         m.ID,
				FrameIndex:      m.FrameIndex,
				Timestamp:       m.Timestamp,
				TimeFormatted:   utils.FormatTimestamp(m.Timestamp),
				SimilarityScore: m.Score,
			})
		}
		results = append(results, result)
	}
	return results, nil
}

func (s *searchUC) Stats(ctx context.Context) (*models.SearchStats, error) {
	totalVideos, err := s.videoRepo.CountVideos(ctx)
	if err != nil {
		s.logger.Errorf("Stats - CountVideos error: %v", err)
		return nil, err
	}
	totalFrames, err := s.frameRepo.CountFrames(ctx)
	if err != nil {
		s.logger.Errorf("Stats - CountFrames error: %v", err)
		return nil, err
	}
	perVideo, err := s.frameRepo.CountByVideo(ctx)
	if err != nil {
		s.logger.Errorf("Stats - CountByVideo error: %v", err)
		return nil, err
	}
	indexStats, err := s.vectorIndex.Stats(ctx)
	if err != nil {
		s.logger.Errorf("Stats - index Stats error: %v", err)
		return nil, err
	}

	stats := &models.SearchStats{
		TotalVideos:    totalVideos,
		TotalFrames:    totalFrames,
		IndexedVectors: indexStats.TotalVectors,
		Videos:         perVideo,
	}
	if totalVideos > 0 {
		stats.AvgFramesPerVideo = float64(totalFrames) / float64(totalVideos)
	}
	return stats, nil
}
