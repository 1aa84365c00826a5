package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/amankumarsingh77/frame-search/internal/config"
	"github.com/amankumarsingh77/frame-search/internal/inmem"
	"github.com/amankumarsingh77/frame-search/internal/jobs/usecase"
	"github.com/amankumarsingh77/frame-search/internal/models"
	"github.com/amankumarsingh77/frame-search/pkg/logger"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const videoID = "7c9e6679-7425-40de-944b-e07fc1f90ae7"

func newTestServer(t *testing.T) *echo.Echo {
	t.Helper()
	cfg := &config.Config{}
	cfg.S3.Bucket = "videos"
	videos := inmem.NewVideoRepo()
	_, err := videos.CreateVideo(context.Background(), &models.Video{ID: videoID, Filename: "a.mp4", StorageKey: "videos/a.mp4", SizeBytes: 1, Format: "mp4"})
	require.NoError(t, err)
	uc := usecase.NewJobUseCase(cfg, inmem.NewJobRepo(), videos, inmem.NewQueue(), logger.NewNop())

	e := echo.New()
	MapJobRoutes(e.Group("/api/v1/jobs"), NewJobHandler(uc))
	return e
}

func do(e *echo.Echo, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestJobEndpoints(t *testing.T) {
	e := newTestServer(t)

	rec := do(e, http.MethodPost, "/api/v1/jobs", `{"video_id":"`+videoID+`"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var job models.Job
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &job))
	assert.Equal(t, models.JobStatusPending, job.Status)

	rec = do(e, http.MethodGet, "/api/v1/jobs/"+job.ID, "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(e, http.MethodGet, "/api/v1/jobs?video_id="+videoID+"&status=pending", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var list []models.Job
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	assert.Len(t, list, 1)

	rec = do(e, http.MethodDelete, "/api/v1/jobs/"+job.ID, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestJobErrors(t *testing.T) {
	e := newTestServer(t)

	assert.Equal(t, http.StatusNotFound, do(e, http.MethodGet, "/api/v1/jobs/missing", "").Code)
	assert.Equal(t, http.StatusNotFound,
		do(e, http.MethodPost, "/api/v1/jobs", `{"video_id":"0f8fad5b-d9cb-469f-a165-70867728950e"}`).Code)
	assert.Equal(t, http.StatusBadRequest, do(e, http.MethodPost, "/api/v1/jobs", `{"video_id":"x"}`).Code)
	assert.Equal(t, http.StatusBadRequest, do(e, http.MethodGet, "/api/v1/jobs?status=paused", "").Code)
}
