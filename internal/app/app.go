// Package app assembles the lookup service and its infrastructure from a
// loaded configuration.  Both binaries and the CLI build on it.
package app

import (
	"context"
	"fmt"
	"net/http"

	"golang.org/x/time/rate"

	"github.com/turtacn/KeyIP-Continuity/internal/application/lookup"
	"github.com/turtacn/KeyIP-Continuity/internal/config"
	"github.com/turtacn/KeyIP-Continuity/internal/domain/family"
	"github.com/turtacn/KeyIP-Continuity/internal/domain/proceeding"
	"github.com/turtacn/KeyIP-Continuity/internal/infrastructure/database/redis"
	"github.com/turtacn/KeyIP-Continuity/internal/infrastructure/messaging/kafka"
	"github.com/turtacn/KeyIP-Continuity/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/KeyIP-Continuity/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/KeyIP-Continuity/internal/infrastructure/ptab"
	"github.com/turtacn/KeyIP-Continuity/internal/infrastructure/upstream"
	"github.com/turtacn/KeyIP-Continuity/internal/infrastructure/uspto"
	httpserver "github.com/turtacn/KeyIP-Continuity/internal/interfaces/http"
	"github.com/turtacn/KeyIP-Continuity/internal/interfaces/http/handlers"
	"github.com/turtacn/KeyIP-Continuity/internal/interfaces/http/middleware"
)

// Build-time variables injected via ldflags.
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// App holds the wired components.  Close releases them.
type App struct {
	Config    *config.Config
	Logger    logging.Logger
	Service   lookup.Service
	Documents *ptab.Client
	Metrics   *prometheus.AppMetrics
	Collector prometheus.MetricsCollector

	limiter  upstream.Limiter
	redis    *redis.Client
	events   *kafka.EventPublisher
	checkers []handlers.HealthChecker
}

// Option customizes New.
type Option func(*options)

type options struct {
	upstream []upstream.Option
}

// WithUpstreamOptions appends options to every registry client.  Tests use
// it to replace the backoff sleeper.
func WithUpstreamOptions(opts ...upstream.Option) Option {
	return func(o *options) { o.upstream = append(o.upstream, opts...) }
}

// NewLogger builds the process logger.  A non-empty level overrides the
// configured one.
func NewLogger(cfg config.LogConfig, level string) (logging.Logger, error) {
	if level == "" {
		level = cfg.Level
	}
	return logging.NewLogger(logging.LogConfig{
		Level:       level,
		Format:      cfg.Format,
		OutputPaths: cfg.OutputPaths,
	})
}

// New wires the registry clients, the optional limiter and event producer,
// and the lookup service.  On error everything opened so far is closed.
func New(cfg *config.Config, logger logging.Logger, opts ...Option) (_ *App, err error) {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	a := &App{Config: cfg, Logger: logger}
	defer func() {
		if err != nil {
			a.Close()
		}
	}()

	if cfg.Metrics.Enabled {
		a.Collector, err = prometheus.NewMetricsCollector(prometheus.CollectorConfig{
			Namespace: cfg.Metrics.Namespace,
			Subsystem: cfg.Metrics.Subsystem,
		}, logger)
		if err != nil {
			return nil, fmt.Errorf("metrics: %w", err)
		}
		a.Metrics = prometheus.NewAppMetrics(a.Collector)
	}

	if err = a.initLimiter(); err != nil {
		return nil, err
	}

	common := []upstream.Option{upstream.WithMetrics(a.Metrics)}
	usptoOpts := append([]upstream.Option{upstream.WithLogger(logger.Named("uspto"))}, common...)
	if a.limiter != nil {
		usptoOpts = append(usptoOpts, upstream.WithLimiter(a.limiter, cfg.RateLimit.Backend))
	}
	usptoHTTP, err := upstream.New(upstream.Config{
		Registry:       "uspto",
		BaseURL:        cfg.USPTO.BaseURL,
		APIKey:         cfg.USPTO.APIKey,
		Timeout:        cfg.USPTO.Timeout,
		MaxAttempts:    cfg.USPTO.MaxAttempts,
		InitialBackoff: cfg.USPTO.InitialBackoff,
	}, append(usptoOpts, o.upstream...)...)
	if err != nil {
		return nil, fmt.Errorf("uspto client: %w", err)
	}

	ptabOpts := append([]upstream.Option{upstream.WithLogger(logger.Named("ptab"))}, common...)
	ptabHTTP, err := upstream.New(upstream.Config{
		Registry:       "ptab",
		BaseURL:        cfg.PTAB.BaseURL,
		APIKey:         cfg.PTAB.APIKey,
		Timeout:        cfg.PTAB.Timeout,
		MaxAttempts:    cfg.PTAB.MaxAttempts,
		InitialBackoff: cfg.PTAB.InitialBackoff,
	}, append(ptabOpts, o.upstream...)...)
	if err != nil {
		return nil, fmt.Errorf("ptab client: %w", err)
	}
	a.Documents = ptab.NewClient(ptabHTTP, logger.Named("ptab"))

	deps := lookup.Dependencies{
		Searcher: uspto.NewSearchClient(usptoHTTP, uspto.SearchConfig{
			PageSize:     cfg.USPTO.PageSize,
			DefaultLimit: cfg.USPTO.DefaultLimit,
		}, logger.Named("search")),
		Family: family.NewBuilder(uspto.NewContinuityClient(usptoHTTP), family.Options{
			MaxDepth:    cfg.Family.MaxDepth,
			Concurrency: cfg.Family.Concurrency,
		}, logger.Named("family")),
		Proceedings: proceeding.NewResolver(a.Documents, logger.Named("proceedings")),
		Documents:   a.Documents,
		Metrics:     a.Metrics,
		Logger:      logger.Named("lookup"),
	}

	if cfg.Kafka.Enabled {
		producer, perr := kafka.NewProducer(kafka.ProducerConfig{
			Brokers:      cfg.Kafka.Brokers,
			RequiredAcks: cfg.Kafka.Acks(),
			MaxAttempts:  cfg.Kafka.MaxAttempts,
			BatchSize:    cfg.Kafka.BatchSize,
			BatchTimeout: cfg.Kafka.BatchTimeout,
			WriteTimeout: cfg.Kafka.WriteTimeout,
		}, logger.Named("kafka"))
		if perr != nil {
			return nil, fmt.Errorf("kafka producer: %w", perr)
		}
		a.events = kafka.NewEventPublisher(producer, cfg.Kafka.Topic, a.Metrics, logger.Named("events"))
		deps.Events = a.events
	}

	a.Service, err = lookup.NewService(deps, lookup.Options{
		SearchCap:   cfg.USPTO.DefaultLimit,
		Concurrency: cfg.Family.Concurrency,
	})
	if err != nil {
		return nil, err
	}

	logger.Info("lookup service initialized",
		logging.String("uspto", cfg.USPTO.BaseURL),
		logging.String("ptab", cfg.PTAB.BaseURL),
		logging.String("rate_limit", cfg.RateLimit.Backend),
		logging.Bool("events", a.events != nil),
		logging.Bool("metrics", a.Metrics != nil))
	return a, nil
}

func (a *App) initLimiter() error {
	rl := a.Config.RateLimit
	switch rl.Backend {
	case config.RateLimitLocal:
		a.limiter = upstream.NewLocalLimiter(rl.RPS, rl.Burst)
	case config.RateLimitRedis:
		rc := a.Config.Redis
		client, err := redis.NewClient(&redis.RedisConfig{
			Mode:         rc.Mode,
			Addr:         rc.Addr,
			Addrs:        rc.Addrs,
			MasterName:   rc.MasterName,
			Password:     rc.Password,
			DB:           rc.DB,
			PoolSize:     rc.PoolSize,
			MinIdleConns: rc.MinIdleConns,
			DialTimeout:  rc.DialTimeout,
			ReadTimeout:  rc.ReadTimeout,
			WriteTimeout: rc.WriteTimeout,
			KeyPrefix:    rc.KeyPrefix,
		}, a.Logger.Named("redis"))
		if err != nil {
			return fmt.Errorf("redis: %w", err)
		}
		a.redis = client
		a.limiter = redis.NewClientLimiter(client, rl.Key, rl.RPS, rl.Burst, rl.Window, a.Logger.Named("limiter"))
		a.checkers = append(a.checkers, handlers.CheckFunc{Component: "redis", Fn: client.Ping})
	}
	return nil
}

// ApplyRuntimeConfig applies the settings that may change without a
// restart.  Only the local limiter rate is adjustable in place.
func (a *App) ApplyRuntimeConfig(cfg *config.Config) {
	if l, ok := a.limiter.(*rate.Limiter); ok && cfg.RateLimit.Backend == config.RateLimitLocal {
		l.SetLimit(rate.Limit(cfg.RateLimit.RPS))
		if cfg.RateLimit.Burst > 0 {
			l.SetBurst(cfg.RateLimit.Burst)
		}
		a.Logger.Info("outbound rate limit updated",
			logging.Float64("rps", cfg.RateLimit.RPS),
			logging.Int("burst", cfg.RateLimit.Burst))
	}
}

// Router builds the HTTP route tree over the service.
func (a *App) Router() http.Handler {
	cfg := httpserver.RouterConfig{
		LookupHandler:   handlers.NewLookupHandler(a.Service, a.Logger.Named("http")),
		DocumentHandler: handlers.NewDocumentHandler(a.Documents, a.Logger.Named("http")),
		HealthHandler:   handlers.NewHealthHandler(Version, a.checkers...),
		Logger:          a.Logger.Named("http"),
		Logging:         middleware.DefaultLoggingConfig(),
		Metrics:         a.Metrics,
		RequestTimeout:  a.Config.Server.RequestTimeout,
		Mode:            a.Config.Server.Mode,
	}
	if a.Collector != nil {
		cfg.MetricsCollector = a.Collector
		cfg.MetricsPath = a.Config.Metrics.Path
		cfg.Logging.SkipPaths = append(cfg.Logging.SkipPaths, a.Config.Metrics.Path)
	}
	return httpserver.NewRouter(cfg)
}

// Server wraps Router in an HTTP server using the server section.
func (a *App) Server() *httpserver.Server {
	s := a.Config.Server
	return httpserver.NewServer(httpserver.ServerConfig{
		Port:            s.Port,
		ReadTimeout:     s.ReadTimeout,
		WriteTimeout:    s.WriteTimeout,
		ShutdownTimeout: s.ShutdownTimeout,
	}, a.Router(), a.Logger.Named("http"))
}

// LookupService returns the wired lookup service.
func (a *App) LookupService() lookup.Service { return a.Service }

// Run serves HTTP until ctx is done, then drains in-flight requests.
func (a *App) Run(ctx context.Context) error {
	srv := a.Server()
	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	if err := srv.Stop(context.Background()); err != nil {
		return err
	}
	return <-errCh
}

// Close waits for pending completion events, flushes the event producer and
// closes the Redis client.  It is safe to call more than once.
func (a *App) Close() {
	if f, ok := a.Service.(lookup.Flusher); ok {
		f.Flush()
	}
	if a.events != nil {
		if err := a.events.Close(); err != nil {
			a.Logger.Warn("event publisher close failed", logging.Err(err))
		}
		a.events = nil
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.Logger.Warn("redis close failed", logging.Err(err))
		}
		a.redis = nil
	}
	_ = a.Logger.Sync()
}

//Personal.AI order the ending
