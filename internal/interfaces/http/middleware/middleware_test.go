package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/KeyIP-Continuity/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/KeyIP-Continuity/internal/infrastructure/monitoring/prometheus"
	mocks "github.com/turtacn/KeyIP-Continuity/internal/testutil"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func serve(r *gin.Engine, method, target string, header http.Header) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRequestID_GeneratesAndPropagates(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	var fromCtx, fromGin string
	r.GET("/x", func(c *gin.Context) {
		fromCtx = logging.RequestIDFromContext(c.Request.Context())
		fromGin = GetRequestID(c)
		c.Status(http.StatusNoContent)
	})

	w := serve(r, http.MethodGet, "/x", nil)
	id := w.Header().Get(HeaderRequestID)
	require.Len(t, id, 36)
	assert.Equal(t, id, fromCtx)
	assert.Equal(t, id, fromGin)

	w = serve(r, http.MethodGet, "/x", http.Header{HeaderRequestID: {"caller-id"}})
	assert.Equal(t, "caller-id", w.Header().Get(HeaderRequestID))
	assert.Equal(t, "caller-id", fromCtx)

	w = serve(r, http.MethodGet, "/x", http.Header{HeaderRequestID: {strings.Repeat("a", 500)}})
	assert.Len(t, w.Header().Get(HeaderRequestID), 36, "oversized ids are replaced")
}

func TestRequestLogging_Levels(t *testing.T) {
	logger := mocks.NewMockLogger()
	r := gin.New()
	r.Use(RequestID(), RequestLogging(logger, LoggingConfig{SkipPaths: []string{"/healthz"}, SlowThreshold: time.Hour}))
	r.GET("/ok", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/bad", func(c *gin.Context) { c.Status(http.StatusBadRequest) })
	r.GET("/boom", func(c *gin.Context) { c.Status(http.StatusBadGateway) })
	r.GET("/healthz", func(c *gin.Context) { c.Status(http.StatusOK) })

	serve(r, http.MethodGet, "/ok?q=1", nil)
	serve(r, http.MethodGet, "/bad", nil)
	serve(r, http.MethodGet, "/boom", nil)
	serve(r, http.MethodGet, "/healthz", nil)

	assert.True(t, logger.HasMessage("info", "HTTP request completed"))
	assert.True(t, logger.HasMessage("warn", "HTTP request completed with client error"))
	assert.True(t, logger.HasMessage("error", "HTTP request completed with server error"))
	assert.Len(t, logger.GetMessages(), 3, "skipped paths are not logged")

	first := logger.GetMessages()[0]
	path, ok := first.Field("path")
	require.True(t, ok)
	assert.Equal(t, "/ok?q=1", path)
	id, ok := first.Field("request_id")
	require.True(t, ok)
	assert.NotEmpty(t, id)
}

func TestRequestLogging_Slow(t *testing.T) {
	logger := mocks.NewMockLogger()
	r := gin.New()
	r.Use(RequestLogging(logger, LoggingConfig{SlowThreshold: time.Nanosecond}))
	r.GET("/slow", func(c *gin.Context) {
		time.Sleep(time.Millisecond)
		c.Status(http.StatusOK)
	})
	serve(r, http.MethodGet, "/slow", nil)
	assert.True(t, logger.HasMessage("warn", "HTTP request completed (slow)"))
}

func TestMetrics_RecordsRouteTemplate(t *testing.T) {
	collector, err := prometheus.NewMetricsCollector(prometheus.CollectorConfig{Namespace: "test"}, logging.NewNopLogger())
	require.NoError(t, err)
	m := prometheus.NewAppMetrics(collector)

	r := gin.New()
	r.Use(Metrics(m))
	r.GET("/api/v1/family/:application", func(c *gin.Context) { c.Status(http.StatusOK) })

	serve(r, http.MethodGet, "/api/v1/family/16123456", nil)
	serve(r, http.MethodGet, "/api/v1/family/17000009", nil)
	serve(r, http.MethodGet, "/nope", nil)

	expected := `
# HELP test_http_requests_total Total HTTP requests
# TYPE test_http_requests_total counter
test_http_requests_total{method="GET",route="/api/v1/family/:application",status_code="200"} 2
test_http_requests_total{method="GET",route="unmatched",status_code="404"} 1
`
	assert.NoError(t, testutil.GatherAndCompare(collector.Gatherer(), strings.NewReader(expected), "test_http_requests_total"))
}

func TestRecovery(t *testing.T) {
	logger := mocks.NewMockLogger()
	r := gin.New()
	r.Use(RequestID(), Recovery(logger))
	r.GET("/panic", func(c *gin.Context) { panic("kaboom") })

	w := serve(r, http.MethodGet, "/panic", nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), `"message":"internal server error"`)
	assert.Contains(t, w.Body.String(), w.Header().Get(HeaderRequestID))
	assert.True(t, logger.HasMessage("error", "panic recovered"))
}

func TestTimeout_BoundsRequestContext(t *testing.T) {
	var deadline time.Time
	var ok bool
	r := gin.New()
	r.Use(Timeout(50 * time.Millisecond))
	r.GET("/x", func(c *gin.Context) {
		deadline, ok = c.Request.Context().Deadline()
		c.Status(http.StatusNoContent)
	})

	start := time.Now()
	w := serve(r, http.MethodGet, "/x", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	require.True(t, ok)
	assert.WithinDuration(t, start.Add(50*time.Millisecond), deadline, time.Second)
}

func TestTimeout_ZeroDisables(t *testing.T) {
	var ok bool
	r := gin.New()
	r.Use(Timeout(0))
	r.GET("/x", func(c *gin.Context) {
		_, ok = c.Request.Context().Deadline()
		c.Status(http.StatusNoContent)
	})

	serve(r, http.MethodGet, "/x", nil)
	assert.False(t, ok)
}

//Personal.AI order the ending
