package config

import (
	"os"
	"strconv"

	"aetherlens/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Source SourceConfig
	Batch  BatchConfig
}

// SourceConfig controls how captured insight payloads are located and
// unwrapped.
type SourceConfig struct {
	// DataPath is a gjson path to the evidence object inside each captured
	// response body. Empty means probe the well-known wrappers.
	DataPath string
	// InsightIDPath locates the insight identifier inside the body.
	InsightIDPath string
}

// BatchConfig holds batch normalization settings
type BatchConfig struct {
	Concurrency int
	// Pretty re-indents emitted JSON for eyeballing captures.
	Pretty bool
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	config := &Config{
		Source: SourceConfig{
			DataPath:      getEnvOrDefault("EVIDENCE_DATA_PATH", ""),
			InsightIDPath: getEnvOrDefault("EVIDENCE_ID_PATH", "insight_id"),
		},
		Batch: BatchConfig{
			Concurrency: getEnvIntOrDefault("BATCH_CONCURRENCY", 4),
			Pretty:      getEnvBoolOrDefault("OUTPUT_PRETTY", false),
		},
	}

	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}
	return config, nil
}

func validateConfig(config *Config) error {
	if config.Batch.Concurrency < 1 {
		return errors.ConfigInvalid("BATCH_CONCURRENCY must be at least 1")
	}
	return nil
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}
