// Package config defines the configuration structures for KeyIP-Continuity.
// No I/O or parsing logic lives here, only plain data types and validation.
package config

import (
	"fmt"
	"net/url"
	"time"
)

// ─────────────────────────────────────────────────────────────────────────────
// Sub-configuration structs
// ─────────────────────────────────────────────────────────────────────────────

// ServerConfig holds HTTP server tunables.
type ServerConfig struct {
	Port            int           `mapstructure:"port"`
	Mode            string        `mapstructure:"mode"` // "debug" | "release" | "test"
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	RequestTimeout  time.Duration `mapstructure:"request_timeout"`
}

// USPTOConfig configures the patent-prosecution search and continuity registry.
type USPTOConfig struct {
	BaseURL        string        `mapstructure:"base_url"`
	APIKey         string        `mapstructure:"api_key"`
	Timeout        time.Duration `mapstructure:"timeout"`
	MaxAttempts    int           `mapstructure:"max_attempts"`
	InitialBackoff time.Duration `mapstructure:"initial_backoff"`
	PageSize       int           `mapstructure:"page_size"`
	DefaultLimit   int           `mapstructure:"default_limit"`
}

// PTABConfig configures the trial proceedings registry.
type PTABConfig struct {
	BaseURL        string        `mapstructure:"base_url"`
	APIKey         string        `mapstructure:"api_key"`
	Timeout        time.Duration `mapstructure:"timeout"`
	MaxAttempts    int           `mapstructure:"max_attempts"`
	InitialBackoff time.Duration `mapstructure:"initial_backoff"`
}

// FamilyConfig bounds the continuity traversal.
type FamilyConfig struct {
	MaxDepth    int `mapstructure:"max_depth"`
	Concurrency int `mapstructure:"concurrency"`
}

// Rate limiter backends.
const (
	RateLimitNone  = "none"
	RateLimitLocal = "local"
	RateLimitRedis = "redis"
)

// RateLimitConfig configures the shared outbound limiter in front of the
// search registry.
type RateLimitConfig struct {
	Backend string        `mapstructure:"backend"` // none | local | redis
	RPS     float64       `mapstructure:"rps"`
	Burst   int           `mapstructure:"burst"`
	Window  time.Duration `mapstructure:"window"`
	Key     string        `mapstructure:"key"`
}

// RedisConfig holds Redis connection parameters.
type RedisConfig struct {
	Mode         string        `mapstructure:"mode"` // standalone | sentinel | cluster
	Addr         string        `mapstructure:"addr"`
	Addrs        []string      `mapstructure:"addrs"`
	MasterName   string        `mapstructure:"master_name"`
	Password     string        `mapstructure:"password"`
	DB           int           `mapstructure:"db"`
	PoolSize     int           `mapstructure:"pool_size"`
	MinIdleConns int           `mapstructure:"min_idle_conns"`
	DialTimeout  time.Duration `mapstructure:"dial_timeout"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	KeyPrefix    string        `mapstructure:"key_prefix"`
}

// KafkaConfig holds the lookup-event producer parameters.
type KafkaConfig struct {
	Enabled      bool          `mapstructure:"enabled"`
	Brokers      []string      `mapstructure:"brokers"`
	Topic        string        `mapstructure:"topic"`
	RequiredAcks *int          `mapstructure:"required_acks"`
	BatchSize    int           `mapstructure:"batch_size"`
	BatchTimeout time.Duration `mapstructure:"batch_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	MaxAttempts  int           `mapstructure:"max_attempts"`
}

// Acks returns the configured acknowledgement level.  An unset value means
// leader acknowledgement; 0 is kept as fire-and-forget.
func (k KafkaConfig) Acks() int {
	if k.RequiredAcks == nil {
		return DefaultKafkaRequiredAcks
	}
	return *k.RequiredAcks
}

// MetricsConfig controls the Prometheus collector.
type MetricsConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Namespace string `mapstructure:"namespace"`
	Subsystem string `mapstructure:"subsystem"`
	Path      string `mapstructure:"path"`
}

// LogConfig mirrors logging.LogConfig so that this package stays free of
// infrastructure imports.
type LogConfig struct {
	Level       string   `mapstructure:"level"`
	Format      string   `mapstructure:"format"` // json | console
	OutputPaths []string `mapstructure:"output_paths"`
}

// ─────────────────────────────────────────────────────────────────────────────
// Root Config
// ─────────────────────────────────────────────────────────────────────────────

// Config is the root configuration structure.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	USPTO     USPTOConfig     `mapstructure:"uspto"`
	PTAB      PTABConfig      `mapstructure:"ptab"`
	Family    FamilyConfig    `mapstructure:"family"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Kafka     KafkaConfig     `mapstructure:"kafka"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`
	Log       LogConfig       `mapstructure:"log"`
}

// ─────────────────────────────────────────────────────────────────────────────
// Validation
// ─────────────────────────────────────────────────────────────────────────────

func validateURL(field, raw string) error {
	if raw == "" {
		return fmt.Errorf("config: %s is required", field)
	}
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("config: %s %q is not an absolute URL", field, raw)
	}
	return nil
}

// Validate performs semantic validation of the fully-populated Config and
// returns the first problem found.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("config: server.port %d is out of range [1, 65535]", c.Server.Port)
	}
	switch c.Server.Mode {
	case "debug", "release", "test":
	default:
		return fmt.Errorf("config: server.mode %q is invalid; expected debug|release|test", c.Server.Mode)
	}

	if err := validateURL("uspto.base_url", c.USPTO.BaseURL); err != nil {
		return err
	}
	if c.USPTO.MaxAttempts < 1 {
		return fmt.Errorf("config: uspto.max_attempts must be ≥ 1, got %d", c.USPTO.MaxAttempts)
	}
	if c.USPTO.PageSize < 1 || c.USPTO.PageSize > 100 {
		return fmt.Errorf("config: uspto.page_size %d is out of range [1, 100]", c.USPTO.PageSize)
	}
	if c.USPTO.DefaultLimit < 1 {
		return fmt.Errorf("config: uspto.default_limit must be ≥ 1, got %d", c.USPTO.DefaultLimit)
	}

	if err := validateURL("ptab.base_url", c.PTAB.BaseURL); err != nil {
		return err
	}
	if c.PTAB.MaxAttempts < 1 {
		return fmt.Errorf("config: ptab.max_attempts must be ≥ 1, got %d", c.PTAB.MaxAttempts)
	}

	if c.Family.MaxDepth < 1 {
		return fmt.Errorf("config: family.max_depth must be ≥ 1, got %d", c.Family.MaxDepth)
	}
	if c.Family.Concurrency < 1 {
		return fmt.Errorf("config: family.concurrency must be ≥ 1, got %d", c.Family.Concurrency)
	}

	switch c.RateLimit.Backend {
	case RateLimitNone:
	case RateLimitLocal, RateLimitRedis:
		if c.RateLimit.RPS <= 0 {
			return fmt.Errorf("config: rate_limit.rps must be > 0 for backend %q", c.RateLimit.Backend)
		}
		if c.RateLimit.Backend == RateLimitRedis && c.Redis.Addr == "" && len(c.Redis.Addrs) == 0 {
			return fmt.Errorf("config: redis.addr is required when rate_limit.backend is redis")
		}
	default:
		return fmt.Errorf("config: rate_limit.backend %q is invalid; expected none|local|redis", c.RateLimit.Backend)
	}

	if c.Redis.DB < 0 {
		return fmt.Errorf("config: redis.db must be ≥ 0, got %d", c.Redis.DB)
	}

	if c.Kafka.Enabled {
		if len(c.Kafka.Brokers) == 0 {
			return fmt.Errorf("config: kafka.brokers must contain at least one broker address")
		}
		if c.Kafka.Topic == "" {
			return fmt.Errorf("config: kafka.topic is required")
		}
		if acks := c.Kafka.Acks(); acks < -1 || acks > 1 {
			return fmt.Errorf("config: kafka.required_acks %d is invalid; expected -1, 0 or 1", acks)
		}
	}

	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("config: log.level %q is invalid; expected debug|info|warn|error", c.Log.Level)
	}
	switch c.Log.Format {
	case "json", "console":
	default:
		return fmt.Errorf("config: log.format %q is invalid; expected json|console", c.Log.Format)
	}

	return nil
}

//Personal.AI order the ending
