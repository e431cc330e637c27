package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/KeyIP-Continuity/internal/application/lookup"
	"github.com/turtacn/KeyIP-Continuity/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/KeyIP-Continuity/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/KeyIP-Continuity/internal/infrastructure/ptab"
	"github.com/turtacn/KeyIP-Continuity/internal/interfaces/http/handlers"
	"github.com/turtacn/KeyIP-Continuity/internal/interfaces/http/middleware"
	"github.com/turtacn/KeyIP-Continuity/pkg/errors"
)

// stubService answers every operation with a result naming the operation.
type stubService struct{}

func (stubService) Lookup(_ context.Context, id lookup.Identifier) (*lookup.Result, error) {
	return &lookup.Result{Kind: lookup.ResultLookup, Query: id.Value}, nil
}

func (stubService) Search(_ context.Context, term string, _ bool) (*lookup.Result, error) {
	return &lookup.Result{Kind: lookup.ResultSearch, Query: term}, nil
}

func (stubService) Proceeding(_ context.Context, number string) (*lookup.Result, error) {
	return &lookup.Result{Kind: lookup.ResultProceeding, Query: number}, nil
}

func (stubService) Family(_ context.Context, app string) (*lookup.Result, error) {
	if app == "panic" {
		panic("boom")
	}
	return &lookup.Result{Kind: lookup.ResultFamily, Query: app}, nil
}

func (stubService) Resolve(_ context.Context, req lookup.Request) (*lookup.Result, error) {
	return &lookup.Result{Kind: lookup.ResultLookup, Query: req.Application}, nil
}

type stubDownloader struct{}

func (stubDownloader) Download(context.Context, string) (*ptab.Download, error) {
	return nil, errors.NotFound("document not found")
}

func newTestRouter(t *testing.T) (http.Handler, prometheus.MetricsCollector) {
	t.Helper()
	collector, err := prometheus.NewMetricsCollector(prometheus.CollectorConfig{Namespace: "router"}, logging.NewNopLogger())
	require.NoError(t, err)

	logger := logging.NewNopLogger()
	return NewRouter(RouterConfig{
		LookupHandler:    handlers.NewLookupHandler(stubService{}, logger),
		DocumentHandler:  handlers.NewDocumentHandler(stubDownloader{}, logger),
		HealthHandler:    handlers.NewHealthHandler("test"),
		Logger:           logger,
		Logging:          middleware.DefaultLoggingConfig(),
		Metrics:          prometheus.NewAppMetrics(collector),
		MetricsCollector: collector,
		Mode:             gin.TestMode,
	}), collector
}

func TestNewRouter_Routes(t *testing.T) {
	router, _ := newTestRouter(t)

	tests := []struct {
		target string
		status int
		body   string
	}{
		{"/healthz", http.StatusOK, `"status":"alive"`},
		{"/readyz", http.StatusOK, `"status":"ready"`},
		{"/api/v1/lookup?application=16123456", http.StatusOK, `"query":"16123456"`},
		{"/api/v1/search?q=aspirin", http.StatusOK, `"kind":"search"`},
		{"/api/v1/proceedings/IPR2021-00001", http.StatusOK, `"query":"IPR2021-00001"`},
		{"/api/v1/family/16123456", http.StatusOK, `"kind":"family"`},
		{"/api/v1/documents/abc/download", http.StatusNotFound, `"message":"document not found"`},
		{"/api/v1/nope", http.StatusNotFound, ""},
	}
	for _, tt := range tests {
		t.Run(tt.target, func(t *testing.T) {
			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, tt.target, nil))
			assert.Equal(t, tt.status, w.Code)
			assert.Contains(t, w.Body.String(), tt.body)
			assert.NotEmpty(t, w.Header().Get(middleware.HeaderRequestID))
		})
	}
}

func TestNewRouter_MethodNotAllowed(t *testing.T) {
	router, _ := newTestRouter(t)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/search", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}

func TestNewRouter_RecoversPanics(t *testing.T) {
	router, _ := newTestRouter(t)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/family/panic", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "internal server error")
}

func TestNewRouter_ExposesMetrics(t *testing.T) {
	router, _ := newTestRouter(t)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/family/16123456", nil))
	require.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.Contains(w.Body.String(), `route="/api/v1/family/:application"`))
}

func TestNewRouter_NilHandlers(t *testing.T) {
	router := NewRouter(RouterConfig{Mode: gin.TestMode})
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

//Personal.AI order the ending
