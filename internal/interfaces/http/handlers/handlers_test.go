package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/KeyIP-Continuity/internal/application/lookup"
	"github.com/turtacn/KeyIP-Continuity/internal/domain/patent"
	"github.com/turtacn/KeyIP-Continuity/internal/domain/proceeding"
	"github.com/turtacn/KeyIP-Continuity/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/KeyIP-Continuity/internal/infrastructure/ptab"
	"github.com/turtacn/KeyIP-Continuity/internal/interfaces/http/middleware"
	"github.com/turtacn/KeyIP-Continuity/pkg/errors"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// ─────────────────────────────────────────────────────────────────────────────
// Mocks
// ─────────────────────────────────────────────────────────────────────────────

type mockService struct {
	mock.Mock
}

func (m *mockService) result(args mock.Arguments) (*lookup.Result, error) {
	res, _ := args.Get(0).(*lookup.Result)
	return res, args.Error(1)
}

func (m *mockService) Lookup(ctx context.Context, id lookup.Identifier) (*lookup.Result, error) {
	return m.result(m.Called(ctx, id))
}

func (m *mockService) Search(ctx context.Context, term string, confirmLarge bool) (*lookup.Result, error) {
	return m.result(m.Called(ctx, term, confirmLarge))
}

func (m *mockService) Proceeding(ctx context.Context, number string) (*lookup.Result, error) {
	return m.result(m.Called(ctx, number))
}

func (m *mockService) Family(ctx context.Context, app string) (*lookup.Result, error) {
	return m.result(m.Called(ctx, app))
}

func (m *mockService) Resolve(ctx context.Context, req lookup.Request) (*lookup.Result, error) {
	return m.result(m.Called(ctx, req))
}

type mockDownloader struct {
	mock.Mock
}

func (m *mockDownloader) Download(ctx context.Context, id string) (*ptab.Download, error) {
	args := m.Called(ctx, id)
	d, _ := args.Get(0).(*ptab.Download)
	return d, args.Error(1)
}

type closeTracker struct {
	io.Reader
	closed bool
}

func (c *closeTracker) Close() error {
	c.closed = true
	return nil
}

func newEngine(register func(*gin.RouterGroup)) *gin.Engine {
	r := gin.New()
	r.Use(middleware.RequestID())
	register(r.Group("/api/v1"))
	return r
}

func get(r *gin.Engine, target string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, target, nil))
	return w
}

// ─────────────────────────────────────────────────────────────────────────────
// Lookup
// ─────────────────────────────────────────────────────────────────────────────

func TestLookupHandler_ResolveBindsQuery(t *testing.T) {
	svc := new(mockService)
	svc.On("Resolve", mock.Anything, lookup.Request{Patent: "10123456"}).Return(&lookup.Result{
		Kind:   lookup.ResultLookup,
		Query:  "10123456",
		Patent: &patent.PatentRecord{PatentNumber: "10123456", ApplicationNumber: "16123456"},
		Total:  1,
	}, nil)
	h := NewLookupHandler(svc, logging.NewNopLogger())
	r := newEngine(h.RegisterRoutes)

	w := get(r, "/api/v1/lookup?patent=10123456")
	require.Equal(t, http.StatusOK, w.Code)

	var body lookup.ResultView
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "10123456", body.Patent.PatentNumber)
	assert.Equal(t, patent.NoTitle, body.Patent.Title)
	assert.NotNil(t, body.Proceedings)
	svc.AssertExpectations(t)
}

func TestLookupHandler_InvalidParamIs400(t *testing.T) {
	svc := new(mockService)
	svc.On("Resolve", mock.Anything, lookup.Request{}).
		Return(nil, errors.InvalidParam("exactly one identifier is required"))
	r := newEngine(NewLookupHandler(svc, logging.NewNopLogger()).RegisterRoutes)

	w := get(r, "/api/v1/lookup")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	var body ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, errors.CodeInvalidParam.String(), body.Code)
	assert.Equal(t, "exactly one identifier is required", body.Message)
	assert.NotEmpty(t, body.RequestID)
}

func TestLookupHandler_BadBoolIs400(t *testing.T) {
	svc := new(mockService)
	r := newEngine(NewLookupHandler(svc, logging.NewNopLogger()).RegisterRoutes)

	w := get(r, "/api/v1/search?q=x&confirm_large=maybe")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	svc.AssertNotCalled(t, "Search", mock.Anything, mock.Anything, mock.Anything)
}

func TestLookupHandler_Search(t *testing.T) {
	svc := new(mockService)
	svc.On("Search", mock.Anything, "aspirin", true).Return(&lookup.Result{
		Kind:      lookup.ResultSearch,
		Query:     "aspirin",
		Total:     2,
		Summaries: []patent.Summary{{ApplicationNumber: "16000001"}, {ApplicationNumber: "16000002"}},
	}, nil)
	r := newEngine(NewLookupHandler(svc, logging.NewNopLogger()).RegisterRoutes)

	w := get(r, "/api/v1/search?q=aspirin&confirm_large=true")
	require.Equal(t, http.StatusOK, w.Code)

	var body lookup.ResultView
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, 2, body.Total)
	assert.Len(t, body.Summaries, 2)
	svc.AssertExpectations(t)
}

func TestLookupHandler_PathParams(t *testing.T) {
	svc := new(mockService)
	svc.On("Proceeding", mock.Anything, "IPR2021-00001").Return(&lookup.Result{
		Kind:        lookup.ResultProceeding,
		Query:       "IPR2021-00001",
		Proceedings: []proceeding.Proceeding{{Number: "IPR2021-00001"}},
	}, nil)
	svc.On("Family", mock.Anything, "16123456").Return(&lookup.Result{
		Kind:  lookup.ResultFamily,
		Query: "16123456",
		Error: "No continuity data found for application: 16123456",
	}, nil)
	r := newEngine(NewLookupHandler(svc, logging.NewNopLogger()).RegisterRoutes)

	w := get(r, "/api/v1/proceedings/IPR2021-00001")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"number":"IPR2021-00001"`)

	w = get(r, "/api/v1/family/16123456")
	require.Equal(t, http.StatusOK, w.Code, "advisories are payload, not failures")
	assert.Contains(t, w.Body.String(), "No continuity data found")
	svc.AssertExpectations(t)
}

func TestLookupHandler_UpstreamFailures(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"unavailable", errors.UpstreamUnavailable("uspto: gave up after 4 attempts"), http.StatusServiceUnavailable},
		{"malformed", errors.Malformed("bad body"), http.StatusBadGateway},
		{"canceled", context.Canceled, http.StatusInternalServerError},
		{"deadline", context.DeadlineExceeded, http.StatusGatewayTimeout},
		{"credentials", errors.New(errors.ErrCodeDataSourceAuthFailed, "uspto: credentials rejected"), http.StatusBadGateway},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(mockService)
			svc.On("Family", mock.Anything, "16123456").Return(nil, tt.err)
			r := newEngine(NewLookupHandler(svc, logging.NewNopLogger()).RegisterRoutes)

			w := get(r, "/api/v1/family/16123456")
			assert.Equal(t, tt.status, w.Code)
			if tt.status == http.StatusInternalServerError {
				assert.Contains(t, w.Body.String(), "internal server error")
				assert.NotContains(t, w.Body.String(), "canceled")
			}
			if tt.status == http.StatusGatewayTimeout {
				assert.Contains(t, w.Body.String(), errors.ErrCodeTimeout.String())
				assert.Contains(t, w.Body.String(), "request timed out")
			}
		})
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Documents
// ─────────────────────────────────────────────────────────────────────────────

func TestDocumentHandler_Streams(t *testing.T) {
	body := &closeTracker{Reader: strings.NewReader("%PDF-1.7 bytes")}
	dl := new(mockDownloader)
	dl.On("Download", mock.Anything, "doc 2").Return(&ptab.Download{
		Body:          body,
		Filename:      "Exhibit 1001.pdf",
		ContentType:   "application/pdf",
		ContentLength: 14,
	}, nil)
	r := newEngine(NewDocumentHandler(dl, logging.NewNopLogger()).RegisterRoutes)

	w := get(r, "/api/v1/documents/doc%202/download")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.Equal(t, `inline; filename="Exhibit 1001.pdf"`, w.Header().Get("Content-Disposition"))
	assert.Equal(t, "14", w.Header().Get("Content-Length"))
	assert.Equal(t, "%PDF-1.7 bytes", w.Body.String())
	assert.True(t, body.closed)
}

func TestDocumentHandler_Failures(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"not found", errors.NotFound("document x not found"), http.StatusNotFound},
		{"upstream status", errors.New(errors.ErrCodeExternalService, "ptab: document download returned 500"), http.StatusBadGateway},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dl := new(mockDownloader)
			dl.On("Download", mock.Anything, "x").Return(nil, tt.err)
			r := newEngine(NewDocumentHandler(dl, logging.NewNopLogger()).RegisterRoutes)

			w := get(r, "/api/v1/documents/x/download")
			assert.Equal(t, tt.status, w.Code)
			assert.Equal(t, "application/json; charset=utf-8", w.Header().Get("Content-Type"))
		})
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Health
// ─────────────────────────────────────────────────────────────────────────────

func TestHealthHandler(t *testing.T) {
	ok := CheckFunc{Component: "redis", Fn: func(context.Context) error { return nil }}
	down := CheckFunc{Component: "kafka", Fn: func(context.Context) error { return errors.Internal("broker unreachable") }}

	t.Run("liveness ignores checks", func(t *testing.T) {
		h := NewHealthHandler("1.0.0", down)
		r := gin.New()
		r.GET("/healthz", h.Liveness)
		w := get(r, "/healthz")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"version":"1.0.0"`)
	})

	t.Run("ready", func(t *testing.T) {
		h := NewHealthHandler("1.0.0", ok)
		r := gin.New()
		r.GET("/readyz", h.Readiness)
		w := get(r, "/readyz")
		assert.Equal(t, http.StatusOK, w.Code)

		var body ReadinessResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, "ready", body.Status)
		assert.Equal(t, "healthy", body.Components["redis"].Status)
	})

	t.Run("not ready", func(t *testing.T) {
		h := NewHealthHandler("1.0.0", ok, down)
		r := gin.New()
		r.GET("/readyz", h.Readiness)
		w := get(r, "/readyz")
		assert.Equal(t, http.StatusServiceUnavailable, w.Code)

		var body ReadinessResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, "not_ready", body.Status)
		assert.Contains(t, body.Components["kafka"].Error, "broker unreachable")
	})

	t.Run("no checks", func(t *testing.T) {
		r := gin.New()
		r.GET("/readyz", NewHealthHandler("1.0.0").Readiness)
		assert.Equal(t, http.StatusOK, get(r, "/readyz").Code)
	})
}

//Personal.AI order the ending
