package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/amankumarsingh77/frame-search/internal/config"
	"github.com/amankumarsingh77/frame-search/internal/metrics"
	"github.com/amankumarsingh77/frame-search/pkg/logger"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestLoggerMiddlewareRecordsRoute(t *testing.T) {
	mw := NewMiddlewareManager(&config.Config{}, []string{"*"}, logger.NewNop())
	e := echo.New()
	e.Use(middleware.RequestID())
	e.Use(mw.RequestLoggerMiddleware)
	e.GET("/api/v1/jobs/:job_id", func(c echo.Context) error {
		return c.NoContent(http.StatusNotFound)
	})

	counter := metrics.HTTPRequestsTotal.WithLabelValues(http.MethodGet, "/api/v1/jobs/:job_id", "404")
	before := testutil.ToFloat64(counter)

	for _, id := range []string{"a", "b"} {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/jobs/"+id, nil))
		require.Equal(t, http.StatusNotFound, rec.Code)
		assert.NotEmpty(t, rec.Header().Get(echo.HeaderXRequestID))
	}

	assert.Equal(t, before+2, testutil.ToFloat64(counter))
}

func TestCORSAllowsConfiguredOrigin(t *testing.T) {
	mw := NewMiddlewareManager(&config.Config{}, []string{"http://localhost:3000"}, logger.NewNop())
	e := echo.New()
	e.Use(mw.CORS())
	e.GET("/health", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(echo.HeaderOrigin, "http://localhost:3000")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "http://localhost:3000", rec.Header().Get(echo.HeaderAccessControlAllowOrigin))
}
