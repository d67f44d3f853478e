package config

import (
	"fmt"
	"os"
	"strconv"
)

type Config struct {
	DatabaseURL       string
	NumFeatureWorkers int
	ChannelSize       int
	SinkBatchSize     int
	ClaimWindowDays   int
	LogLevel          string
	LogFormat         string
	APIPort           string
}

func New() (*Config, error) {
	cfg := &Config{
		DatabaseURL:       os.Getenv("DATABASE_URL"),
		NumFeatureWorkers: 7,
		ChannelSize:       1000,
		SinkBatchSize:     5000,
		ClaimWindowDays:   180,
		LogLevel:          getEnv("LOG_LEVEL", "info"),
		LogFormat:         getEnv("LOG_FORMAT", "json"),
		APIPort:           getEnv("API_PORT", "8080"),
	}

	var err error
	cfg.NumFeatureWorkers, err = getEnvAsInt("NUM_FEATURE_WORKERS", cfg.NumFeatureWorkers)
	if err != nil {
		return nil, err
	}

	cfg.ChannelSize, err = getEnvAsInt("CHANNEL_SIZE", cfg.ChannelSize)
	if err != nil {
		return nil, err
	}

	cfg.SinkBatchSize, err = getEnvAsInt("SINK_BATCH_SIZE", cfg.SinkBatchSize)
	if err != nil {
		return nil, err
	}

	cfg.ClaimWindowDays, err = getEnvAsInt("CLAIM_WINDOW_DAYS", cfg.ClaimWindowDays)
	if err != nil {
		return nil, err
	}

	if cfg.NumFeatureWorkers < 1 {
		return nil, fmt.Errorf("NUM_FEATURE_WORKERS must be at least 1, got %d", cfg.NumFeatureWorkers)
	}
	if cfg.SinkBatchSize < 1 {
		return nil, fmt.Errorf("SINK_BATCH_SIZE must be at least 1, got %d", cfg.SinkBatchSize)
	}

	return cfg, nil
}

// RequireDatabase fails when no DATABASE_URL was configured.
func (c *Config) RequireDatabase() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL environment variable is not set")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) (int, error) {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue, nil
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return 0, fmt.Errorf("invalid value for %s: expected an integer, got '%s'", key, valueStr)
	}

	return value, nil
}
