package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	// Profiling engine
	ProfilerAPIURL    string        `validate:"required,url"`
	ProfileAPITimeout time.Duration `validate:"gt=0"`
	TransferTimeout   time.Duration `validate:"gte=0"`
	InsightsTimeout   time.Duration `validate:"gte=0"`
	PollSchedule      string        `validate:"required"`
	PollTimeout       time.Duration `validate:"gte=0"`
	UploadMaxBytes    int64         `validate:"gt=0"`
	ExportDir         string        `validate:"required"`

	// HTTP Server Configuration
	HTTPPort         string        `validate:"required,numeric"`
	HTTPReadTimeout  time.Duration `validate:"gt=0"`
	HTTPWriteTimeout time.Duration `validate:"gt=0"`

	// Worker Pool Configuration
	WorkerPoolSize  int `validate:"gte=1"`
	WorkerQueueSize int `validate:"gte=1"`

	// Sessions
	SessionIdleTTL      time.Duration `validate:"gte=0"`
	SessionReapSchedule string        `validate:"required"`

	// Notifications
	NotifyWebhookURL     string        `validate:"omitempty,url"`
	NotifyWebhookTimeout time.Duration `validate:"gt=0"`
	NotifyHistoryLimit   int           `validate:"gte=1"`

	// Logging Configuration
	LogLevel  string `validate:"oneof=debug info warn warning error"`
	LogFormat string `validate:"oneof=json text"`

	// CORS Configuration
	CORSAllowedOrigins   string
	CORSAllowedMethods   string
	CORSAllowedHeaders   string
	CORSAllowCredentials bool
	CORSMaxAge           int
}

// Load reads configuration from environment variables with sensible
// defaults. A .env file in the working directory is read first if present.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		// Profiling engine
		ProfilerAPIURL:    getEnv("PROFILER_API_URL", "http://localhost:8001"),
		ProfileAPITimeout: getDurationEnv("PROFILE_API_TIMEOUT_SEC", 30) * time.Second,
		TransferTimeout:   getDurationEnv("PROFILE_TRANSFER_TIMEOUT_SEC", 300) * time.Second,
		InsightsTimeout:   getDurationEnv("INSIGHTS_TIMEOUT_SEC", 180) * time.Second,
		PollSchedule:      getEnv("PROFILE_POLL_SCHEDULE", "@every 2s"),
		PollTimeout:       getDurationEnv("PROFILE_POLL_TIMEOUT_SEC", 600) * time.Second,
		UploadMaxBytes:    getInt64Env("UPLOAD_MAX_BYTES", 50*1024*1024),
		ExportDir:         getEnv("EXPORT_DIR", "./exports"),

		// HTTP Server
		HTTPPort:         getEnv("HTTP_PORT", "8080"),
		HTTPReadTimeout:  getDurationEnv("HTTP_READ_TIMEOUT_SEC", 60) * time.Second,
		HTTPWriteTimeout: getDurationEnv("HTTP_WRITE_TIMEOUT_SEC", 120) * time.Second,

		// Worker Pool
		WorkerPoolSize:  getIntEnv("WORKER_POOL_SIZE", 4),
		WorkerQueueSize: getIntEnv("WORKER_QUEUE_SIZE", 100),

		// Sessions
		SessionIdleTTL:      getDurationEnv("SESSION_IDLE_TTL_SEC", 3600) * time.Second,
		SessionReapSchedule: getEnv("SESSION_REAP_SCHEDULE", "@every 5m"),

		// Notifications
		NotifyWebhookURL:     getEnv("NOTIFY_WEBHOOK_URL", ""),
		NotifyWebhookTimeout: getDurationEnv("NOTIFY_WEBHOOK_TIMEOUT_SEC", 10) * time.Second,
		NotifyHistoryLimit:   getIntEnv("NOTIFY_HISTORY_LIMIT", 500),

		// Logging
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "json"),

		// CORS
		CORSAllowedOrigins:   getEnv("CORS_ALLOWED_ORIGINS", "*"),
		CORSAllowedMethods:   getEnv("CORS_ALLOWED_METHODS", "GET, POST, PUT, DELETE, OPTIONS"),
		CORSAllowedHeaders:   getEnv("CORS_ALLOWED_HEADERS", "*"),
		CORSAllowCredentials: getBoolEnv("CORS_ALLOW_CREDENTIALS", false),
		CORSMaxAge:           getIntEnv("CORS_MAX_AGE", 3600),
	}
}

// Validate checks the loaded values
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
		log.Printf("Warning: Invalid integer value for %s, using default %d", key, defaultValue)
	}
	return defaultValue
}

func getInt64Env(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intVal
		}
		log.Printf("Warning: Invalid integer value for %s, using default %d", key, defaultValue)
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue int) time.Duration {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return time.Duration(intVal)
		}
		log.Printf("Warning: Invalid duration value for %s, using default %d", key, defaultValue)
	}
	return time.Duration(defaultValue)
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
		log.Printf("Warning: Invalid boolean value for %s, using default %t", key, defaultValue)
	}
	return defaultValue
}
