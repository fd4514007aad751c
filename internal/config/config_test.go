package config

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var configKeys = []string{
	"PROFILER_API_URL", "PROFILE_API_TIMEOUT_SEC", "PROFILE_TRANSFER_TIMEOUT_SEC", "INSIGHTS_TIMEOUT_SEC", "PROFILE_POLL_SCHEDULE", "PROFILE_POLL_TIMEOUT_SEC",
	"UPLOAD_MAX_BYTES", "EXPORT_DIR", "HTTP_PORT", "HTTP_READ_TIMEOUT_SEC", "HTTP_WRITE_TIMEOUT_SEC",
	"WORKER_POOL_SIZE", "WORKER_QUEUE_SIZE", "SESSION_IDLE_TTL_SEC", "SESSION_REAP_SCHEDULE",
	"NOTIFY_WEBHOOK_URL", "NOTIFY_WEBHOOK_TIMEOUT_SEC", "NOTIFY_HISTORY_LIMIT", "LOG_LEVEL", "LOG_FORMAT",
	"CORS_ALLOWED_ORIGINS", "CORS_ALLOWED_METHODS", "CORS_ALLOWED_HEADERS", "CORS_ALLOW_CREDENTIALS", "CORS_MAX_AGE",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range configKeys {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg := Load()

	assert.Equal(t, "http://localhost:8001", cfg.ProfilerAPIURL)
	assert.Equal(t, 30*time.Second, cfg.ProfileAPITimeout)
	assert.Equal(t, 5*time.Minute, cfg.TransferTimeout)
	assert.Equal(t, 3*time.Minute, cfg.InsightsTimeout)
	assert.Equal(t, "@every 2s", cfg.PollSchedule)
	assert.Equal(t, 10*time.Minute, cfg.PollTimeout)
	assert.Equal(t, int64(50*1024*1024), cfg.UploadMaxBytes)
	assert.Equal(t, "8080", cfg.HTTPPort)
	assert.Equal(t, 4, cfg.WorkerPoolSize)
	assert.Equal(t, time.Hour, cfg.SessionIdleTTL)
	assert.Equal(t, "@every 5m", cfg.SessionReapSchedule)
	assert.Empty(t, cfg.NotifyWebhookURL)
	assert.Equal(t, 500, cfg.NotifyHistoryLimit)
	assert.False(t, cfg.CORSAllowCredentials)
	require.NoError(t, cfg.Validate())
}

func TestLoadOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("PROFILER_API_URL", "http://engine:9000")
	t.Setenv("PROFILE_POLL_TIMEOUT_SEC", "5")
	t.Setenv("UPLOAD_MAX_BYTES", "1024")
	t.Setenv("WORKER_POOL_SIZE", "not-a-number")
	t.Setenv("CORS_ALLOW_CREDENTIALS", "true")

	cfg := Load()

	assert.Equal(t, "http://engine:9000", cfg.ProfilerAPIURL)
	assert.Equal(t, 5*time.Second, cfg.PollTimeout)
	assert.Equal(t, int64(1024), cfg.UploadMaxBytes)
	assert.Equal(t, 4, cfg.WorkerPoolSize)
	assert.True(t, cfg.CORSAllowCredentials)
}

func TestValidateRejects(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
	}{
		{"engine url", "PROFILER_API_URL", "not a url"},
		{"log level", "LOG_LEVEL", "verbose"},
		{"log format", "LOG_FORMAT", "xml"},
		{"pool size", "WORKER_POOL_SIZE", "0"},
		{"port", "HTTP_PORT", "eighty"},
		{"webhook url", "NOTIFY_WEBHOOK_URL", "nowhere"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(tt.key, tt.val)

			assert.Error(t, Load().Validate())
		})
	}
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warning"))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel(""))
}

func TestNewLoggerJSON(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&Config{LogLevel: "warn", LogFormat: "json"}, &buf)

	logger.Info("dropped")
	logger.Warn("kept", "job_id", "job-1")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "kept", line["msg"])
	assert.Equal(t, "profilewatch", line["service"])
	assert.Equal(t, "job-1", line["job_id"])
}
