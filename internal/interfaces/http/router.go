// Package http assembles the gin engine and the HTTP server of the API.
package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/KeyIP-Continuity/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/KeyIP-Continuity/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/KeyIP-Continuity/internal/interfaces/http/handlers"
	"github.com/turtacn/KeyIP-Continuity/internal/interfaces/http/middleware"
)

// DefaultMetricsPath is used when RouterConfig.MetricsPath is empty.
const DefaultMetricsPath = "/metrics"

// RouterConfig aggregates the handler and middleware dependencies of the
// route tree.  Nil handlers leave their routes unregistered.
type RouterConfig struct {
	LookupHandler   *handlers.LookupHandler
	DocumentHandler *handlers.DocumentHandler
	HealthHandler   *handlers.HealthHandler

	Logger           logging.Logger
	Logging          middleware.LoggingConfig
	Metrics          *prometheus.AppMetrics
	MetricsCollector prometheus.MetricsCollector
	MetricsPath      string
	// RequestTimeout bounds every request context; zero disables it.
	RequestTimeout time.Duration

	// Mode is the gin mode: debug, release or test.
	Mode string
}

// NewRouter builds the engine.  Middleware runs in the order request ID,
// recovery, access log, metrics, timeout.
func NewRouter(cfg RouterConfig) http.Handler {
	if cfg.Mode != "" {
		gin.SetMode(cfg.Mode)
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logging.NewNopLogger()
	}

	r := gin.New()
	r.HandleMethodNotAllowed = true
	r.Use(
		middleware.RequestID(),
		middleware.Recovery(logger),
		middleware.RequestLogging(logger, cfg.Logging),
		middleware.Metrics(cfg.Metrics),
		middleware.Timeout(cfg.RequestTimeout),
	)

	if cfg.HealthHandler != nil {
		r.GET("/healthz", cfg.HealthHandler.Liveness)
		r.GET("/readyz", cfg.HealthHandler.Readiness)
	}
	if cfg.MetricsCollector != nil {
		path := cfg.MetricsPath
		if path == "" {
			path = DefaultMetricsPath
		}
		r.GET(path, gin.WrapH(cfg.MetricsCollector.Handler()))
	}

	api := r.Group("/api/v1")
	if cfg.LookupHandler != nil {
		cfg.LookupHandler.RegisterRoutes(api)
	}
	if cfg.DocumentHandler != nil {
		cfg.DocumentHandler.RegisterRoutes(api)
	}

	return r
}

//Personal.AI order the ending
