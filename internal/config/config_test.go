package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() Config {
	return Config{
		Port:                 "3000",
		GinMode:              "debug",
		DatabaseDriver:       DriverSQLite,
		DatabaseURL:          ":memory:",
		DatabaseMaxOpenConns: 1,
		JWTSecret:            "test-secret",
		TokenTTL:             time.Hour,
		BcryptCost:           4,
		PasswordResetTTL:     time.Hour,
		CategoryMode:         CategoryModeSystem,
		LogLevel:             "info",
		LogFormat:            "text",
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(c *Config)
		wantErr     bool
		errorString string
	}{
		{
			name:    "valid sqlite config",
			mutate:  func(c *Config) {},
			wantErr: false,
		},
		{
			name:        "invalid port - non-numeric",
			mutate:      func(c *Config) { c.Port = "abc" },
			wantErr:     true,
			errorString: "invalid port 'abc': must be a number",
		},
		{
			name:        "invalid port - out of range",
			mutate:      func(c *Config) { c.Port = "70000" },
			wantErr:     true,
			errorString: "invalid port 70000: must be between 1 and 65535",
		},
		{
			name:        "unknown database driver",
			mutate:      func(c *Config) { c.DatabaseDriver = "oracle" },
			wantErr:     true,
			errorString: "invalid database driver 'oracle'",
		},
		{
			name:        "missing database url",
			mutate:      func(c *Config) { c.DatabaseURL = "" },
			wantErr:     true,
			errorString: "DATABASE_URL is required",
		},
		{
			name:        "negative maintenance interval",
			mutate:      func(c *Config) { c.MaintenanceInterval = -time.Minute },
			wantErr:     true,
			errorString: "invalid maintenance interval",
		},
		{
			name:    "maintenance disabled",
			mutate:  func(c *Config) { c.MaintenanceInterval = 0 },
			wantErr: false,
		},
		{
			name:        "missing jwt secret",
			mutate:      func(c *Config) { c.JWTSecret = "" },
			wantErr:     true,
			errorString: "JWT_SECRET is required",
		},
		{
			name: "short jwt secret in release mode",
			mutate: func(c *Config) {
				c.GinMode = "release"
				c.JWTSecret = "short"
			},
			wantErr:     true,
			errorString: "JWT_SECRET must be at least 32 bytes in release mode",
		},
		{
			name:        "bcrypt cost out of range",
			mutate:      func(c *Config) { c.BcryptCost = 2 },
			wantErr:     true,
			errorString: "invalid bcrypt cost 2",
		},
		{
			name:        "invalid category mode",
			mutate:      func(c *Config) { c.CategoryMode = "global" },
			wantErr:     true,
			errorString: "invalid category mode 'global'",
		},
		{
			name:        "invalid amqp scheme",
			mutate:      func(c *Config) { c.AMQPURL = "http://localhost:5672"; c.AMQPExchange = "events" },
			wantErr:     true,
			errorString: "invalid AMQP URL scheme 'http'",
		},
		{
			name:        "invalid log format",
			mutate:      func(c *Config) { c.LogFormat = "xml" },
			wantErr:     true,
			errorString: "invalid log format 'xml'",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)

			err := cfg.Validate()
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}

			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errorString)
		})
	}
}

func TestConfig_ValidateAggregatesErrors(t *testing.T) {
	cfg := validConfig()
	cfg.Port = "0"
	cfg.JWTSecret = ""

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid port 0")
	assert.Contains(t, err.Error(), "JWT_SECRET is required")
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("PORT", "8080")
	t.Setenv("GIN_MODE", "debug")
	t.Setenv("LOG_LEVEL", "")
	t.Setenv("LOG_FORMAT", "")
	t.Setenv("AMQP_URL", "")
	t.Setenv("DATABASE_DRIVER", "SQLite")
	t.Setenv("DATABASE_URL", "file:test.db")
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("TOKEN_TTL", "2h")
	t.Setenv("BCRYPT_COST", "6")
	t.Setenv("CATEGORY_MODE", "custom")
	t.Setenv("CLIENT_URL", "https://app.example.com")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example.com, ,https://b.example.com")

	cfg := Load()

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, DriverSQLite, cfg.DatabaseDriver)
	assert.Equal(t, "file:test.db", cfg.DatabaseURL)
	assert.Equal(t, 2*time.Hour, cfg.TokenTTL)
	assert.Equal(t, 6, cfg.BcryptCost)
	assert.False(t, cfg.SystemCategoriesEnabled())
	assert.Equal(t, []string{
		"http://localhost:3000",
		"http://localhost:5173",
		"https://app.example.com",
		"https://a.example.com",
		"https://b.example.com",
	}, cfg.AllowedOrigins)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("TOKEN_TTL", "not-a-duration")
	t.Setenv("CATEGORY_MODE", "")
	t.Setenv("AMQP_EXCHANGE", "")
	t.Setenv("MAINTENANCE_INTERVAL", "")

	cfg := Load()

	assert.Equal(t, "3000", cfg.Port)
	assert.Equal(t, 168*time.Hour, cfg.TokenTTL)
	assert.True(t, cfg.SystemCategoriesEnabled())
	assert.Equal(t, "expense-tracker.events", cfg.AMQPExchange)
	assert.Equal(t, time.Hour, cfg.MaintenanceInterval)
}
