package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test helper to set env vars and clean up after
func setEnv(t *testing.T, key, value string) {
	t.Helper()
	old := os.Getenv(key)
	os.Setenv(key, value)
	t.Cleanup(func() {
		if old == "" {
			os.Unsetenv(key)
		} else {
			os.Setenv(key, old)
		}
	})
}

func TestLoad_WithValidConfig(t *testing.T) {
	setEnv(t, "MODEL_PATH", "models/model.json")
	setEnv(t, "PORT", "9090")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, "models/model.json", cfg.ModelPath)
	assert.Equal(t, DefaultModelVersion, cfg.ModelVersion)
	assert.Equal(t, DefaultAuditCapacity, cfg.AuditCapacity)
	assert.Equal(t, DefaultRateLimit, cfg.RateLimitRPM)
}

func TestLoad_MissingModelPath(t *testing.T) {
	setEnv(t, "MODEL_PATH", "")

	_, err := Load()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "MODEL_PATH is required")
}

func TestLoad_Overrides(t *testing.T) {
	setEnv(t, "MODEL_PATH", "models/model.json")
	setEnv(t, "MODEL_VERSION", "v2.3.1")
	setEnv(t, "AUDIT_CAPACITY", "500")
	setEnv(t, "ENV", "production")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "v2.3.1", cfg.ModelVersion)
	assert.Equal(t, 500, cfg.AuditCapacity)
	assert.True(t, cfg.IsProduction())
	assert.False(t, cfg.IsDevelopment())
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr string
	}{
		{
			name:   "valid",
			config: Config{ModelPath: "m.json", AuditCapacity: 100, RateLimitRPM: 60},
		},
		{
			name:   "unbounded audit is allowed",
			config: Config{ModelPath: "m.json", AuditCapacity: 0, RateLimitRPM: 60},
		},
		{
			name:    "negative audit capacity",
			config:  Config{ModelPath: "m.json", AuditCapacity: -1, RateLimitRPM: 60},
			wantErr: "AUDIT_CAPACITY",
		},
		{
			name:    "zero rate limit",
			config:  Config{ModelPath: "m.json", AuditCapacity: 100, RateLimitRPM: 0},
			wantErr: "RATE_LIMIT_RPM",
		},
		{
			name:    "missing model path",
			config:  Config{AuditCapacity: 100, RateLimitRPM: 60},
			wantErr: "MODEL_PATH",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}
