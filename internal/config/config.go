package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"libris/internal/core/domain"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application.
// It is built once by Load and never mutated afterwards.
type Config struct {
	AppMode       string
	Port          string
	LogLevel      string
	EnvFileLoaded bool
	Database      DatabaseConfig
	Roles         RoleCredentials
	Redis         RedisConfig
	Telemetry     TelemetryConfig
	Batch         BatchConfig
	Cookie        CookieConfig
	Idempotency   IdempotencyConfig
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host           string
	Port           string
	Name           string
	Admin          domain.DatabaseCredential
	ConnectTimeout time.Duration
}

// RedisConfig holds the optional shared store for limiter and idempotency state
type RedisConfig struct {
	URL       string
	KeyPrefix string
}

// Enabled reports whether a redis URL was configured
func (r RedisConfig) Enabled() bool {
	return r.URL != ""
}

// TelemetryConfig holds OpenTelemetry exporter configuration
type TelemetryConfig struct {
	ServiceName  string
	OTLPEndpoint string
	Insecure     bool
}

// BatchConfig holds the maintenance job schedule (empty disables it)
type BatchConfig struct {
	Schedule string
}

// CookieConfig holds session cookie configuration
type CookieConfig struct {
	Secure   bool
	SameSite string
	Domain   string
}

// IdempotencyConfig holds replay window settings for X-Idempotency-Key
type IdempotencyConfig struct {
	Lifetime time.Duration
}

// Load reads configuration from .env file and environment variables
func Load() (*Config, error) {
	// .env is optional; production injects the environment directly
	envLoaded := godotenv.Load() == nil

	appMode := strings.TrimSpace(getEnv("APP_MODE", "dev"))
	if appMode != "dev" && appMode != "prod" {
		return nil, fmt.Errorf("invalid APP_MODE: '%s' (must be 'dev' or 'prod')", appMode)
	}

	database, err := loadDatabaseConfig(appMode)
	if err != nil {
		return nil, err
	}

	roles, err := LoadRoleCredentials(getEnv("ROLE_CREDENTIALS_FILE", ""))
	if err != nil {
		return nil, err
	}
	if appMode == "prod" {
		if missing := roles.MissingSecrets(); len(missing) > 0 {
			return nil, fmt.Errorf("role credentials without secret in prod: %s", strings.Join(missing, ", "))
		}
	}

	idemLifetime, err := time.ParseDuration(getEnv("IDEMPOTENCY_LIFETIME", "30m"))
	if err != nil {
		return nil, fmt.Errorf("invalid IDEMPOTENCY_LIFETIME: %w", err)
	}

	config := &Config{
		AppMode:       appMode,
		Port:          getEnv("PORT", "8000"),
		LogLevel:      getEnv("LOG_LEVEL", defaultLogLevel(appMode)),
		EnvFileLoaded: envLoaded,
		Database:      database,
		Roles:         roles,
		Redis: RedisConfig{
			URL:       getEnv("REDIS_URL", ""),
			KeyPrefix: getEnv("REDIS_KEY_PREFIX", "libris:"),
		},
		Telemetry: loadTelemetryConfig(),
		Batch: BatchConfig{
			Schedule: getEnv("BATCH_SCHEDULE", ""),
		},
		Cookie:      loadCookieConfig(appMode),
		Idempotency: IdempotencyConfig{Lifetime: idemLifetime},
	}

	return config, nil
}

// loadDatabaseConfig loads database config based on mode
func loadDatabaseConfig(mode string) (DatabaseConfig, error) {
	prefix := modePrefix(mode)

	timeout, err := time.ParseDuration(getEnv("DB_CONNECT_TIMEOUT", "10s"))
	if err != nil {
		return DatabaseConfig{}, fmt.Errorf("invalid DB_CONNECT_TIMEOUT: %w", err)
	}

	return DatabaseConfig{
		Host: getEnv(prefix+"DB_HOST", "localhost"),
		Port: getEnv(prefix+"DB_PORT", "3306"),
		Name: getEnv(prefix+"DB_NAME", "library"),
		Admin: domain.DatabaseCredential{
			Principal: getEnv(prefix+"DB_ADMIN_USER", "projet_admin"),
			Secret:    getEnv(prefix+"DB_ADMIN_PASS", ""),
		},
		ConnectTimeout: timeout,
	}, nil
}

func loadTelemetryConfig() TelemetryConfig {
	insecure, _ := strconv.ParseBool(getEnv("OTEL_EXPORTER_OTLP_INSECURE", "true"))
	return TelemetryConfig{
		ServiceName:  getEnv("OTEL_SERVICE_NAME", "libris"),
		OTLPEndpoint: getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
		Insecure:     insecure,
	}
}

// loadCookieConfig loads cookie config based on mode
func loadCookieConfig(mode string) CookieConfig {
	prefix := modePrefix(mode)

	secure, _ := strconv.ParseBool(getEnv(prefix+"COOKIE_SECURE", "false"))

	return CookieConfig{
		Secure:   secure,
		SameSite: getEnv("COOKIE_SAMESITE", "lax"),
		Domain:   getEnv("COOKIE_DOMAIN", ""),
	}
}

func modePrefix(mode string) string {
	if mode == "prod" {
		return "PROD_"
	}
	return "DEV_"
}

func defaultLogLevel(mode string) string {
	if mode == "prod" {
		return "info"
	}
	return "debug"
}

// getEnv gets environment variable with default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// IsDev returns true if running in development mode
func (c *Config) IsDev() bool {
	return c.AppMode == "dev"
}

// IsProd returns true if running in production mode
func (c *Config) IsProd() bool {
	return c.AppMode == "prod"
}

// GetAllowedOrigins returns allowed origins for CORS
func (c *Config) GetAllowedOrigins() string {
	origins := getEnv("ALLOWED_ORIGINS", "")
	if origins == "" {
		if c.IsDev() {
			return "*"
		}
		return "http://localhost:5173"
	}
	return origins
}
