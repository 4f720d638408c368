package config

import (
	"fmt"
	"os"
	"strconv"
)

const (
	EnvSource    = "EXTRACT_SOURCE"
	EnvOutputDir = "EXTRACT_OUT_DIR"
	EnvBatchSize = "EXTRACT_BATCH_SIZE"
)

// ApplyEnv overrides config values with the environment variables that are set
func ApplyEnv(cfg *Config) error {
	if value, exists := os.LookupEnv(EnvSource); exists && value != "" {
		cfg.Source.Path = value
	}
	if value, exists := os.LookupEnv(EnvOutputDir); exists && value != "" {
		cfg.OutputDir = value
	}
	if value, exists := os.LookupEnv(EnvBatchSize); exists && value != "" {
		size, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid %s value %q: %w", EnvBatchSize, value, err)
		}
		cfg.BatchSize = size
	}
	return nil
}
