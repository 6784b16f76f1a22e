package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    15 * time.Second,
			ShutdownTimeout: 30 * time.Second,
		},
		Upstream: UpstreamConfig{
			BaseURL:                 "http://localhost:9090",
			RequestTimeout:          10 * time.Second,
			MaxRetries:              3,
			CircuitBreakerThreshold: 5,
		},
		Redis: RedisConfig{
			Host: "localhost",
			Port: 6379,
		},
	}
}

func TestConfig_Validate_Success(t *testing.T) {
	err := validConfig().Validate()
	assert.NoError(t, err)
}

func TestConfig_Validate_InvalidServerPort(t *testing.T) {
	tests := []struct {
		name string
		port int
	}{
		{"port too low", 0},
		{"port negative", -1},
		{"port too high", 99999},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			cfg.Server.Port = tt.port

			err := cfg.Validate()
			assert.Error(t, err)
			assert.Contains(t, err.Error(), "server.port")
		})
	}
}

func TestConfig_Validate_InvalidReadTimeout(t *testing.T) {
	cfg := validConfig()
	cfg.Server.ReadTimeout = 0

	err := cfg.Validate()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "read_timeout")
}

func TestConfig_Validate_InvalidUpstreamBaseURL(t *testing.T) {
	tests := []struct {
		name    string
		baseURL string
	}{
		{"empty", ""},
		{"relative", "/api"},
		{"no host", "http://"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			cfg.Upstream.BaseURL = tt.baseURL

			err := cfg.Validate()
			assert.Error(t, err)
			assert.Contains(t, err.Error(), "upstream.base_url")
		})
	}
}

func TestConfig_Validate_RedisCheckedOnlyWhenEnabled(t *testing.T) {
	cfg := validConfig()
	cfg.Redis.Port = 0

	assert.NoError(t, cfg.Validate())

	cfg.Redis.Enabled = true
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "redis.port")
	assert.Contains(t, err.Error(), "redis.roster_ttl")
}

func TestConfig_Validate_TraceExporterCheckedOnlyWhenTracing(t *testing.T) {
	cfg := validConfig()
	cfg.Observability.TraceExporter = "zipkin"

	assert.NoError(t, cfg.Validate())

	cfg.Observability.EnableTracing = true
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "observability.trace_exporter")

	cfg.Observability.TraceExporter = "otlp"
	assert.NoError(t, cfg.Validate())
}

func TestConfig_Validate_MultipleErrors(t *testing.T) {
	cfg := &Config{}

	err := cfg.Validate()
	require.Error(t, err)

	errStr := err.Error()
	assert.Contains(t, errStr, "server.port")
	assert.Contains(t, errStr, "read_timeout")
	assert.Contains(t, errStr, "write_timeout")
	assert.Contains(t, errStr, "upstream.base_url")
	assert.Contains(t, errStr, "upstream.request_timeout")
	assert.Contains(t, errStr, "upstream.max_retries")
	assert.Contains(t, errStr, "upstream.circuit_breaker_threshold")
}

func TestLoad_Defaults(t *testing.T) {
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 120, cfg.Server.RateLimitPerMinute)
	assert.Equal(t, "http://localhost:9090", cfg.Upstream.BaseURL)
	assert.Equal(t, uint(3), cfg.Upstream.MaxRetries)
	assert.Equal(t, 5*time.Minute, cfg.Redis.RosterTTL)
	assert.False(t, cfg.Redis.Enabled)
	assert.Equal(t, "info", cfg.Observability.LogLevel)
	assert.Equal(t, "jaeger", cfg.Observability.TraceExporter)
}

func TestRedisConfig_RedisAddr(t *testing.T) {
	cfg := RedisConfig{Host: "redis.example.com", Port: 6380}

	assert.Equal(t, "redis.example.com:6380", cfg.RedisAddr())
}
