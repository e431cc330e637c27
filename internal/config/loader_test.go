package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validConfigYAML = `
server:
  port: 8080
  mode: debug
uspto:
  base_url: "https://api.uspto.gov"
  api_key: "file-key"
  initial_backoff: 500ms
ptab:
  base_url: "https://developer.uspto.gov/ptab-api"
family:
  concurrency: 4
rate_limit:
  backend: local
  rps: 3
  burst: 2
kafka:
  enabled: true
  brokers: ["kafka-1:9092", "kafka-2:9092"]
log:
  level: debug
  format: console
`

func createTempConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_FromFile_ValidConfig(t *testing.T) {
	cfg, err := Load(createTempConfigFile(t, validConfigYAML))
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "file-key", cfg.USPTO.APIKey)
	assert.Equal(t, 500*time.Millisecond, cfg.USPTO.InitialBackoff)
	assert.Equal(t, 4, cfg.Family.Concurrency)
	assert.Equal(t, 40, cfg.Family.MaxDepth)
	assert.Equal(t, RateLimitLocal, cfg.RateLimit.Backend)
	assert.Equal(t, 3.0, cfg.RateLimit.RPS)
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, DefaultKafkaTopic, cfg.Kafka.Topic)
	assert.Equal(t, "console", cfg.Log.Format)
}

func TestLoad_FromFile_FileNotFound(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestLoad_FromFile_InvalidYAML(t *testing.T) {
	_, err := Load(createTempConfigFile(t, "uspto: ["))
	assert.Error(t, err)
}

func TestLoad_FromFile_ValidationFailure(t *testing.T) {
	_, err := Load(createTempConfigFile(t, "family:\n  concurrency: -1\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "validation failed")
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("KEYIPC_USPTO_API_KEY", "env-key")
	t.Setenv("KEYIPC_SERVER_PORT", "9999")

	cfg, err := Load(createTempConfigFile(t, validConfigYAML))
	require.NoError(t, err)
	assert.Equal(t, "env-key", cfg.USPTO.APIKey)
	assert.Equal(t, 9999, cfg.Server.Port)
}

func TestLoad_KafkaAcksZeroKept(t *testing.T) {
	cfg, err := Load(createTempConfigFile(t, "kafka:\n  enabled: true\n  required_acks: 0\n"))
	require.NoError(t, err)
	assert.Equal(t, 0, cfg.Kafka.Acks())

	t.Setenv("KEYIPC_KAFKA_REQUIRED_ACKS", "-1")
	cfg, err = Load(createTempConfigFile(t, validConfigYAML))
	require.NoError(t, err)
	assert.Equal(t, -1, cfg.Kafka.Acks())
}

func TestLoadFromEnv_NoFile(t *testing.T) {
	t.Setenv("KEYIPC_USPTO_API_KEY", "env-only")
	t.Setenv("KEYIPC_FAMILY_CONCURRENCY", "3")
	t.Setenv("KEYIPC_USPTO_TIMEOUT", "5s")

	cfg, err := LoadFromEnv()
	require.NoError(t, err)
	assert.Equal(t, "env-only", cfg.USPTO.APIKey)
	assert.Equal(t, 3, cfg.Family.Concurrency)
	assert.Equal(t, 5*time.Second, cfg.USPTO.Timeout)
	assert.Equal(t, DefaultPTABBaseURL, cfg.PTAB.BaseURL)
}

func TestLoad_EmptyPathUsesEnv(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, DefaultServerPort, cfg.Server.Port)
}

func TestMustLoad(t *testing.T) {
	path := createTempConfigFile(t, validConfigYAML)
	assert.NotPanics(t, func() { MustLoad(path) })
	assert.Panics(t, func() { MustLoad(filepath.Join(t.TempDir(), "nope.yaml")) })
}

//Personal.AI order the ending
