// Package config loads command configuration from the environment and an
// optional .env file.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	// DatabasePath is the SQLite database used for ".db" outputs and
	// "#run-id" inputs when no path is given.
	DatabasePath string
	LogLevel     string
	LogPretty    bool

	// Seed seeds simulated field sources.
	Seed uint64
}

// Load reads configuration from environment variables, after loading any
// .env file in the working directory. Variables already set in the
// environment win over the file.
func Load() (*Config, error) {
	_ = godotenv.Load()
	return FromEnv()
}

// FromEnv reads configuration from environment variables only.
func FromEnv() (*Config, error) {
	seed, err := getEnvAsUint("HYBRID_SEED", 1234)
	if err != nil {
		return nil, err
	}
	cfg := &Config{
		DatabasePath: getEnv("HYBRID_DB_PATH", "./data/hybrid.db"),
		LogLevel:     strings.ToLower(getEnv("HYBRID_LOG_LEVEL", "info")),
		LogPretty:    getEnvAsBool("HYBRID_LOG_PRETTY", true),
		Seed:         seed,
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that the configuration is usable
func (c *Config) Validate() error {
	if c.DatabasePath == "" {
		return fmt.Errorf("HYBRID_DB_PATH is required")
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("HYBRID_LOG_LEVEL must be one of debug, info, warn, error: got %q", c.LogLevel)
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

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvAsUint(key string, defaultValue uint64) (uint64, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	v, err := strconv.ParseUint(value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return v, nil
}
