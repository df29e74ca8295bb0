package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
)

const (
	DriverPostgres = "postgres"
	DriverMySQL    = "mysql"
	DriverSQLite   = "sqlite"

	// CategoryModeSystem lists system categories next to the caller's own;
	// CategoryModeCustom restricts every user to categories they created.
	CategoryModeSystem = "system"
	CategoryModeCustom = "custom"

	minSecretLength = 32
)

// Default allowed origins for development
var defaultOrigins = []string{
	"http://localhost:3000",
	"http://localhost:5173",
}

type Config struct {
	// HTTP server
	Port           string
	GinMode        string
	AllowedOrigins []string

	// Database
	DatabaseDriver       string
	DatabaseURL          string
	SlowQueryThreshold   time.Duration
	DatabaseMaxOpenConns int

	// Auth
	JWTSecret        string
	TokenTTL         time.Duration
	BcryptCost       int
	PasswordResetTTL time.Duration

	// Domain
	CategoryMode string

	// Background maintenance, zero disables it
	MaintenanceInterval time.Duration

	// AMQP, optional
	AMQPURL      string
	AMQPExchange string

	// Logging
	LogLevel  string
	LogFormat string
}

func Load() *Config {
	return &Config{
		Port:           getEnv("PORT", "3000"),
		GinMode:        getEnv("GIN_MODE", "debug"),
		AllowedOrigins: loadAllowedOrigins(),

		DatabaseDriver:       strings.ToLower(getEnv("DATABASE_DRIVER", DriverPostgres)),
		DatabaseURL:          os.Getenv("DATABASE_URL"),
		SlowQueryThreshold:   getEnvDuration("DB_SLOW_QUERY_THRESHOLD", 500*time.Millisecond),
		DatabaseMaxOpenConns: getEnvInt("DB_MAX_OPEN_CONNS", 10),

		JWTSecret:        os.Getenv("JWT_SECRET"),
		TokenTTL:         getEnvDuration("TOKEN_TTL", 168*time.Hour),
		BcryptCost:       getEnvInt("BCRYPT_COST", bcrypt.DefaultCost),
		PasswordResetTTL: getEnvDuration("PASSWORD_RESET_TTL", time.Hour),

		CategoryMode: strings.ToLower(getEnv("CATEGORY_MODE", CategoryModeSystem)),

		MaintenanceInterval: getEnvDuration("MAINTENANCE_INTERVAL", time.Hour),

		AMQPURL:      os.Getenv("AMQP_URL"),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "expense-tracker.events"),

		LogLevel:  strings.ToLower(getEnv("LOG_LEVEL", "info")),
		LogFormat: strings.ToLower(getEnv("LOG_FORMAT", "text")),
	}
}

// SystemCategoriesEnabled reports whether system categories are visible to users.
func (c *Config) SystemCategoriesEnabled() bool {
	return c.CategoryMode == CategoryModeSystem
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errors []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		errors = append(errors, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	switch c.DatabaseDriver {
	case DriverPostgres, DriverMySQL, DriverSQLite:
	default:
		errors = append(errors, fmt.Sprintf("invalid database driver '%s': must be one of [%s %s %s]",
			c.DatabaseDriver, DriverPostgres, DriverMySQL, DriverSQLite))
	}

	if c.DatabaseURL == "" {
		errors = append(errors, "DATABASE_URL is required")
	}

	if c.DatabaseMaxOpenConns < 1 {
		errors = append(errors, fmt.Sprintf("invalid max open connections %d: must be at least 1", c.DatabaseMaxOpenConns))
	}

	if c.JWTSecret == "" {
		errors = append(errors, "JWT_SECRET is required")
	} else if c.GinMode == "release" && len(c.JWTSecret) < minSecretLength {
		errors = append(errors, fmt.Sprintf("JWT_SECRET must be at least %d bytes in release mode", minSecretLength))
	}

	if c.TokenTTL < time.Minute {
		errors = append(errors, fmt.Sprintf("invalid token TTL %v: must be at least 1 minute", c.TokenTTL))
	}

	if c.BcryptCost < bcrypt.MinCost || c.BcryptCost > bcrypt.MaxCost {
		errors = append(errors, fmt.Sprintf("invalid bcrypt cost %d: must be between %d and %d",
			c.BcryptCost, bcrypt.MinCost, bcrypt.MaxCost))
	}

	if c.PasswordResetTTL < time.Minute {
		errors = append(errors, fmt.Sprintf("invalid password reset TTL %v: must be at least 1 minute", c.PasswordResetTTL))
	}

	if c.CategoryMode != CategoryModeSystem && c.CategoryMode != CategoryModeCustom {
		errors = append(errors, fmt.Sprintf("invalid category mode '%s': must be '%s' or '%s'",
			c.CategoryMode, CategoryModeSystem, CategoryModeCustom))
	}

	if c.MaintenanceInterval < 0 {
		errors = append(errors, fmt.Sprintf("invalid maintenance interval %v: must not be negative", c.MaintenanceInterval))
	}

	if c.AMQPURL != "" {
		if parsedURL, err := url.Parse(c.AMQPURL); err != nil {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsedURL.Scheme != "amqp" && parsedURL.Scheme != "amqps" {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsedURL.Scheme))
		}
		if c.AMQPExchange == "" {
			errors = append(errors, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
	}

	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		errors = append(errors, fmt.Sprintf("invalid log level '%s'", c.LogLevel))
	}

	if c.LogFormat != "text" && c.LogFormat != "json" {
		errors = append(errors, fmt.Sprintf("invalid log format '%s': must be 'text' or 'json'", c.LogFormat))
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
}

func loadAllowedOrigins() []string {
	origins := make([]string, len(defaultOrigins))
	copy(origins, defaultOrigins)

	if clientURL := os.Getenv("CLIENT_URL"); clientURL != "" {
		origins = append(origins, clientURL)
	}

	if allowedOrigins := os.Getenv("ALLOWED_ORIGINS"); allowedOrigins != "" {
		for _, origin := range strings.Split(allowedOrigins, ",") {
			if trimmed := strings.TrimSpace(origin); trimmed != "" {
				origins = append(origins, trimmed)
			}
		}
	}

	return origins
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
