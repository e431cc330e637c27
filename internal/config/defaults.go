package config

import (
	"time"

	"github.com/spf13/viper"
)

// ─────────────────────────────────────────────────────────────────────────────
// Default value constants
// ─────────────────────────────────────────────────────────────────────────────

const (
	DefaultServerPort     = 8080
	DefaultServerMode     = "release"
	DefaultRequestTimeout = 2 * time.Minute

	DefaultUSPTOBaseURL   = "https://api.uspto.gov"
	DefaultUSPTOTimeout   = 30 * time.Second
	DefaultUSPTOAttempts  = 4
	DefaultInitialBackoff = time.Second
	DefaultPageSize       = 100
	DefaultSearchLimit    = 1000

	DefaultPTABBaseURL  = "https://developer.uspto.gov/ptab-api"
	DefaultPTABTimeout  = 30 * time.Second
	DefaultPTABAttempts = 1

	DefaultFamilyMaxDepth    = 40
	DefaultFamilyConcurrency = 1

	DefaultRateLimitBackend = RateLimitNone
	DefaultRateLimitWindow  = time.Second
	DefaultRateLimitKey     = "uspto:outbound"

	DefaultRedisAddr      = "localhost:6379"
	DefaultRedisMode      = "standalone"
	DefaultRedisKeyPrefix = "keyipc:"

	DefaultKafkaBroker = "localhost:9092"
	DefaultKafkaTopic  = "keyipc.lookup.completed"

	DefaultKafkaRequiredAcks = 1

	DefaultMetricsNamespace = "keyipc"
	DefaultMetricsPath      = "/metrics"

	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"
)

// NewDefaultConfig returns a Config populated entirely with defaults.
func NewDefaultConfig() *Config {
	cfg := &Config{}
	ApplyDefaults(cfg)
	return cfg
}

// ApplyDefaults fills every zero-value field in cfg with its default.  Values
// already set are left unchanged so explicit configuration always wins.
func ApplyDefaults(cfg *Config) {
	if cfg == nil {
		return
	}

	// ── Server ────────────────────────────────────────────────────────────────
	if cfg.Server.Port == 0 {
		cfg.Server.Port = DefaultServerPort
	}
	if cfg.Server.Mode == "" {
		cfg.Server.Mode = DefaultServerMode
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = 15 * time.Second
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = DefaultRequestTimeout + 15*time.Second
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = 10 * time.Second
	}
	if cfg.Server.RequestTimeout == 0 {
		cfg.Server.RequestTimeout = DefaultRequestTimeout
	}

	// ── USPTO ─────────────────────────────────────────────────────────────────
	if cfg.USPTO.BaseURL == "" {
		cfg.USPTO.BaseURL = DefaultUSPTOBaseURL
	}
	if cfg.USPTO.Timeout == 0 {
		cfg.USPTO.Timeout = DefaultUSPTOTimeout
	}
	if cfg.USPTO.MaxAttempts == 0 {
		cfg.USPTO.MaxAttempts = DefaultUSPTOAttempts
	}
	if cfg.USPTO.InitialBackoff == 0 {
		cfg.USPTO.InitialBackoff = DefaultInitialBackoff
	}
	if cfg.USPTO.PageSize == 0 {
		cfg.USPTO.PageSize = DefaultPageSize
	}
	if cfg.USPTO.DefaultLimit == 0 {
		cfg.USPTO.DefaultLimit = DefaultSearchLimit
	}

	// ── PTAB ──────────────────────────────────────────────────────────────────
	if cfg.PTAB.BaseURL == "" {
		cfg.PTAB.BaseURL = DefaultPTABBaseURL
	}
	if cfg.PTAB.Timeout == 0 {
		cfg.PTAB.Timeout = DefaultPTABTimeout
	}
	if cfg.PTAB.MaxAttempts == 0 {
		cfg.PTAB.MaxAttempts = DefaultPTABAttempts
	}
	if cfg.PTAB.InitialBackoff == 0 {
		cfg.PTAB.InitialBackoff = DefaultInitialBackoff
	}

	// ── Family ────────────────────────────────────────────────────────────────
	if cfg.Family.MaxDepth == 0 {
		cfg.Family.MaxDepth = DefaultFamilyMaxDepth
	}
	if cfg.Family.Concurrency == 0 {
		cfg.Family.Concurrency = DefaultFamilyConcurrency
	}

	// ── Rate limit ────────────────────────────────────────────────────────────
	if cfg.RateLimit.Backend == "" {
		cfg.RateLimit.Backend = DefaultRateLimitBackend
	}
	if cfg.RateLimit.Burst == 0 {
		cfg.RateLimit.Burst = 1
	}
	if cfg.RateLimit.Window == 0 {
		cfg.RateLimit.Window = DefaultRateLimitWindow
	}
	if cfg.RateLimit.Key == "" {
		cfg.RateLimit.Key = DefaultRateLimitKey
	}

	// ── Redis ─────────────────────────────────────────────────────────────────
	if cfg.Redis.Mode == "" {
		cfg.Redis.Mode = DefaultRedisMode
	}
	if cfg.Redis.Addr == "" && len(cfg.Redis.Addrs) == 0 {
		cfg.Redis.Addr = DefaultRedisAddr
	}
	if cfg.Redis.KeyPrefix == "" {
		cfg.Redis.KeyPrefix = DefaultRedisKeyPrefix
	}

	// ── Kafka ─────────────────────────────────────────────────────────────────
	if len(cfg.Kafka.Brokers) == 0 {
		cfg.Kafka.Brokers = []string{DefaultKafkaBroker}
	}
	if cfg.Kafka.Topic == "" {
		cfg.Kafka.Topic = DefaultKafkaTopic
	}
	if cfg.Kafka.RequiredAcks == nil {
		acks := DefaultKafkaRequiredAcks
		cfg.Kafka.RequiredAcks = &acks
	}
	if cfg.Kafka.BatchTimeout == 0 {
		cfg.Kafka.BatchTimeout = 100 * time.Millisecond
	}
	if cfg.Kafka.WriteTimeout == 0 {
		cfg.Kafka.WriteTimeout = 10 * time.Second
	}
	if cfg.Kafka.MaxAttempts == 0 {
		cfg.Kafka.MaxAttempts = 3
	}

	// ── Metrics ───────────────────────────────────────────────────────────────
	if cfg.Metrics.Namespace == "" {
		cfg.Metrics.Namespace = DefaultMetricsNamespace
	}
	if cfg.Metrics.Path == "" {
		cfg.Metrics.Path = DefaultMetricsPath
	}

	// ── Log ───────────────────────────────────────────────────────────────────
	if cfg.Log.Level == "" {
		cfg.Log.Level = DefaultLogLevel
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = DefaultLogFormat
	}
}

// registerKeys declares every leaf key on v so that AutomaticEnv can resolve
// KEYIPC_* variables during Unmarshal even when no config file mentions them.
func registerKeys(v *viper.Viper) {
	for _, key := range []string{
		"server.port", "server.mode", "server.read_timeout", "server.write_timeout",
		"server.shutdown_timeout", "server.request_timeout",
		"uspto.base_url", "uspto.api_key", "uspto.timeout", "uspto.max_attempts",
		"uspto.initial_backoff", "uspto.page_size", "uspto.default_limit",
		"ptab.base_url", "ptab.api_key", "ptab.timeout", "ptab.max_attempts", "ptab.initial_backoff",
		"family.max_depth", "family.concurrency",
		"rate_limit.backend", "rate_limit.rps", "rate_limit.burst", "rate_limit.window", "rate_limit.key",
		"redis.mode", "redis.addr", "redis.addrs", "redis.master_name", "redis.password", "redis.db",
		"redis.pool_size", "redis.min_idle_conns", "redis.dial_timeout", "redis.read_timeout",
		"redis.write_timeout", "redis.key_prefix",
		"kafka.enabled", "kafka.brokers", "kafka.topic", "kafka.required_acks", "kafka.batch_size",
		"kafka.batch_timeout", "kafka.write_timeout", "kafka.max_attempts",
		"metrics.enabled", "metrics.namespace", "metrics.subsystem", "metrics.path",
		"log.level", "log.format", "log.output_paths",
	} {
		// Zero values are overwritten by ApplyDefaults after Unmarshal.
		v.SetDefault(key, nil)
	}
	v.SetDefault("metrics.enabled", true)
}

//Personal.AI order the ending
