package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/amankumarsingh77/frame-search/internal/config"
	"github.com/amankumarsingh77/frame-search/internal/frames"
	"github.com/amankumarsingh77/frame-search/internal/inmem"
	"github.com/amankumarsingh77/frame-search/internal/models"
	"github.com/amankumarsingh77/frame-search/pkg/logger"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	videoA = "7c9e6679-7425-40de-944b-e07fc1f90ae7"
	videoB = "0f8fad5b-d9cb-469f-a165-70867728950e"
	dim    = 16
)

type searchFixture struct {
	uc     *searchUC
	model  *inmem.Model
	index  *inmem.VectorIndex
	frames *inmem.FrameRepo
}

func newSearchFixture(t *testing.T) *searchFixture {
	t.Helper()
	ctx := context.Background()
	cfg := &config.Config{}
	cfg.Search = config.SearchConfig{Oversample: 5, MinPool: 50, MaxPool: 500}

	model := inmem.NewModel(dim)
	index := inmem.NewVectorIndex(dim)
	videos := inmem.NewVideoRepo()
	frameRepo := inmem.NewFrameRepo()

	for id, name := range map[string]string{videoA: "dogs.mp4", videoB: "cats.mp4"} {
		_, err := videos.CreateVideo(ctx, &models.Video{ID: id, Filename: name, StorageKey: "videos/" + id + ".mp4", SizeBytes: 1, Format: "mp4"})
		require.NoError(t, err)
	}

	// Frame content equal to a query encodes to the same vector as the query.
	contents := map[string][]string{
		videoA: {"a dog running", "a red car", "a dog running"},
		videoB: {"a cat sleeping", "a dog running"},
	}
	for videoID, texts := range contents {
		records := make([]models.VectorRecord, 0, len(texts))
		rows := make([]*models.Frame, 0, len(texts))
		for i, text := range texts {
			vec, err := model.EncodeText(ctx, text)
			require.NoError(t, err)
			records = append(records, models.VectorRecord{
				ID: frames.VectorID(videoID, i), VideoID: videoID, FrameIndex: i, Timestamp: float64(i * 65), Values: vec,
			})
			rows = append(rows, &models.Frame{VideoID: videoID, FrameIndex: i, Timestamp: float64(i * 65)})
		}
		_, err := index.Upsert(ctx, records)
		require.NoError(t, err)
		_, err = frameRepo.ReplaceForVideo(ctx, videoID, rows)
		require.NoError(t, err)
	}

	uc := NewSearchUseCase(cfg, model, index, videos, frameRepo, logger.NewNop()).(*searchUC)
	return &searchFixture{uc: uc, model: model, index: index, frames: frameRepo}
}

func TestSearchGroupsMatchesByVideo(t *testing.T) {
	f := newSearchFixture(t)

	resp, err := f.uc.Search(context.Background(), &models.SearchRequest{
		Query: "a dog running", Threshold: 0.99, MaxResultsPerVideo: 5, MaxVideos: 10,
	})
	require.NoError(t, err)

	assert.Equal(t, "a dog running", resp.Query)
	assert.Equal(t, 2, resp.TotalVideos)
	assert.Equal(t, 3, resp.TotalMatches)
	assert.InDelta(t, 1.0, resp.AverageSimilarity, 1e-5)

	byVideo := make(map[string]*models.VideoResult)
	for _, r := range resp.Results {
		byVideo[r.VideoID] = r
	}
	require.Contains(t, byVideo, videoA)
	require.Contains(t, byVideo, videoB)
	assert.Equal(t, "dogs.mp4", byVideo[videoA].VideoFilename)
	assert.Len(t, byVideo[videoA].Matches, 2)
	assert.Equal(t, "cats.mp4", byVideo[videoB].VideoFilename)
	require.Len(t, byVideo[videoB].Matches, 1)

	m := byVideo[videoB].Matches[0]
	assert.Equal(t, frames.VectorID(videoB, 1), m.FrameID)
	assert.Equal(t, 1, m.FrameIndex)
	assert.Equal(t, "1:05", m.TimeFormatted)
}

func TestSearchCapsAndAllowList(t *testing.T) {
	f := newSearchFixture(t)
	ctx := context.Background()

	resp, err := f.uc.Search(ctx, &models.SearchRequest{
		Query: "a dog running", Threshold: 0.99, MaxResultsPerVideo: 1, MaxVideos: 1,
	})
	require.NoError(t, err)
	require.Len(t, resp.Results, 1)
	assert.Len(t, resp.Results[0].Matches, 1)
	assert.Equal(t, 1, resp.TotalMatches)

	resp, err = f.uc.Search(ctx, &models.SearchRequest{
		Query: "a dog running", VideoIDs: []string{videoB}, Threshold: 0.99, MaxResultsPerVideo: 5, MaxVideos: 10,
	})
	require.NoError(t, err)
	require.Len(t, resp.Results, 1)
	assert.Equal(t, videoB, resp.Results[0].VideoID)
}

func TestSearchNoMatches(t *testing.T) {
	f := newSearchFixture(t)

	resp, err := f.uc.Search(context.Background(), &models.SearchRequest{
		Query: "an empty beach", Threshold: 1, MaxResultsPerVideo: 5, MaxVideos: 10,
	})
	require.NoError(t, err)
	assert.Zero(t, resp.TotalVideos)
	assert.Zero(t, resp.TotalMatches)
	assert.NotNil(t, resp.Results)
	assert.Equal(t, 0.0, resp.AverageSimilarity)
}

func TestSearchFailures(t *testing.T) {
	ctx := context.Background()
	valid := &models.SearchRequest{Query: "a dog", Threshold: 0.25, MaxResultsPerVideo: 5, MaxVideos: 10}

	t.Run("invalid request", func(t *testing.T) {
		f := newSearchFixture(t)
		_, err := f.uc.Search(ctx, &models.SearchRequest{Query: "", MaxResultsPerVideo: 5, MaxVideos: 10})
		var verrs validator.ValidationErrors
		require.ErrorAs(t, err, &verrs)

		_, err = f.uc.Search(ctx, &models.SearchRequest{Query: "a dog", Threshold: 1.5, MaxResultsPerVideo: 5, MaxVideos: 10})
		require.ErrorAs(t, err, &verrs)

		_, err = f.uc.Search(ctx, &models.SearchRequest{Query: "a dog", VideoIDs: []string{"nope"}, MaxResultsPerVideo: 5, MaxVideos: 10})
		require.ErrorAs(t, err, &verrs)
	})

	t.Run("model unavailable", func(t *testing.T) {
		f := newSearchFixture(t)
		f.model.EncodeErr = errors.New("model unavailable")
		resp, err := f.uc.Search(ctx, valid)
		require.Error(t, err)
		assert.Nil(t, resp)
	})

	t.Run("index unavailable", func(t *testing.T) {
		f := newSearchFixture(t)
		f.index.QueryErr = errors.New("index unavailable")
		resp, err := f.uc.Search(ctx, valid)
		require.Error(t, err)
		assert.Nil(t, resp)
	})
}

func TestStats(t *testing.T) {
	f := newSearchFixture(t)

	stats, err := f.uc.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, stats.TotalVideos)
	assert.Equal(t, 5, stats.TotalFrames)
	assert.Equal(t, 5, stats.IndexedVectors)
	assert.InDelta(t, 2.5, stats.AvgFramesPerVideo, 1e-9)
	assert.Len(t, stats.Videos, 2)
}
