// Package config loads process configuration from environment variables,
// grounded on the teacher's own internal/config (mmrzaf-sdgen/internal/config):
// a flat struct populated by getEnv-with-default, no external config
// library, since the pack shows no config library anywhere else either.
package config

import (
	"os"
	"strconv"
)

// Config is the push orchestrator's process-wide configuration.
type Config struct {
	LogLevel string

	ObjectStoreEndpointURL     string
	ObjectStoreRegion          string
	ObjectStoreUseSSL          bool
	ObjectStoreAccessKeyID     string
	ObjectStoreSecretAccessKey string
	ObjectStoreBucket          string

	PostgresDSN string

	TerminalRecordCapPerDestination int
	CompletionChannelBuffer         int

	TemporalHostPort  string
	TemporalNamespace string
	TemporalTaskQueue string
}

// Load reads Config from the environment, applying the same defaults a
// local/dev run would need with no external configuration at all.
func Load() *Config {
	return &Config{
		LogLevel: getEnv("RESULTPUSH_LOG_LEVEL", "info"),

		ObjectStoreEndpointURL:     getEnv("RESULTPUSH_OBJECTSTORE_ENDPOINT", "http://localhost:9000"),
		ObjectStoreRegion:          getEnv("RESULTPUSH_OBJECTSTORE_REGION", ""),
		ObjectStoreUseSSL:          getEnvBool("RESULTPUSH_OBJECTSTORE_USE_SSL", false),
		ObjectStoreAccessKeyID:     getEnv("RESULTPUSH_OBJECTSTORE_ACCESS_KEY_ID", "minioadmin"),
		ObjectStoreSecretAccessKey: getEnv("RESULTPUSH_OBJECTSTORE_SECRET_ACCESS_KEY", "minioadmin"),
		ObjectStoreBucket:          getEnv("RESULTPUSH_OBJECTSTORE_BUCKET", "results"),

		PostgresDSN: getEnv("RESULTPUSH_POSTGRES_DSN", "postgres://localhost:5432/resultpush?sslmode=disable"),

		TerminalRecordCapPerDestination: getEnvInt("RESULTPUSH_TERMINAL_RECORD_CAP", 1024),
		CompletionChannelBuffer:         getEnvInt("RESULTPUSH_COMPLETION_BUFFER", 64),

		TemporalHostPort:  getEnv("RESULTPUSH_TEMPORAL_HOST_PORT", "localhost:7233"),
		TemporalNamespace: getEnv("RESULTPUSH_TEMPORAL_NAMESPACE", "default"),
		TemporalTaskQueue: getEnv("RESULTPUSH_TEMPORAL_TASK_QUEUE", "resultpush-pushes"),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue
	}
	return parsed
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return parsed
}
