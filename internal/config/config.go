// Package config handles application configuration from environment variables
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	// Server settings
	Port     string
	Env      string // "development", "staging", "production"
	LogLevel string

	// Model settings
	ModelPath    string // Path to the serialized predictor artifact (required)
	ModelVersion string // Stamped into every response and audit entry

	// Audit trail
	AuditCapacity int // Max retained audit entries; 0 = unbounded

	// Rate limiting
	RateLimitRPM int

	// Tracing
	OTLPEndpoint string // OTLP gRPC endpoint; empty disables tracing
}

const (
	DefaultPort          = "8080"
	DefaultEnv           = "development"
	DefaultLogLevel      = "info"
	DefaultModelVersion  = "v1.0.0"
	DefaultAuditCapacity = 10000
	DefaultRateLimit     = 120
)

// Load reads configuration from environment variables
// It loads .env file if present (for local development)
func Load() (*Config, error) {
	// Load .env file if it exists (ignore error if not present)
	_ = godotenv.Load()

	cfg := &Config{
		Port:          getEnv("PORT", DefaultPort),
		Env:           getEnv("ENV", DefaultEnv),
		LogLevel:      getEnv("LOG_LEVEL", DefaultLogLevel),
		ModelPath:     os.Getenv("MODEL_PATH"), // Required, no default
		ModelVersion:  getEnv("MODEL_VERSION", DefaultModelVersion),
		AuditCapacity: int(getEnvInt64("AUDIT_CAPACITY", DefaultAuditCapacity)),
		RateLimitRPM:  int(getEnvInt64("RATE_LIMIT_RPM", DefaultRateLimit)),
		OTLPEndpoint:  os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks that all required configuration is present
func (c *Config) Validate() error {
	if c.ModelPath == "" {
		return fmt.Errorf("MODEL_PATH is required")
	}

	if c.AuditCapacity < 0 {
		return fmt.Errorf("AUDIT_CAPACITY must not be negative")
	}

	if c.RateLimitRPM <= 0 {
		return fmt.Errorf("RATE_LIMIT_RPM must be positive")
	}

	return nil
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// Helper functions

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.ParseInt(value, 10, 64); err == nil {
			return i
		}
	}
	return defaultValue
}
