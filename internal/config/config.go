// Package config loads service configuration from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config is the full runtime configuration of the API and CLI
type Config struct {
	Port        string
	Environment string
	LogLevel    string
	LogFile     string

	Database DatabaseConfig

	JWTSecret string
	JWTTTL    time.Duration

	Redis            RedisConfig
	ElasticsearchURL string
	Telemetry        TelemetryConfig
	RateLimit        RateLimitConfig

	CORSOrigins      []string
	RequiredServices []string
}

// DatabaseConfig selects the gorm driver and its DSN
type DatabaseConfig struct {
	Driver string // "postgres" or "sqlite"
	DSN    string
	LogSQL bool
}

// RedisConfig is empty when Redis is not configured
type RedisConfig struct {
	Host     string
	Port     string
	Password string
}

// Enabled reports whether a Redis host was configured
func (r RedisConfig) Enabled() bool {
	return r.Host != ""
}

type TelemetryConfig struct {
	Enabled      bool
	ServiceName  string
	Endpoint     string
	SamplingRate float64
}

type RateLimitConfig struct {
	Requests int
	Window   time.Duration
}

// Load reads the environment. JWT_SECRET is the only required variable.
func Load() (*Config, error) {
	cfg := &Config{
		Port:        getEnvOrDefault("PORT", "8787"),
		Environment: getEnvOrDefault("ENVIRONMENT", "development"),
		LogLevel:    getEnvOrDefault("LOG_LEVEL", "info"),
		LogFile:     getEnvOrDefault("LOG_FILE", "aihub.log"),
		JWTSecret:   os.Getenv("JWT_SECRET"),
		Redis: RedisConfig{
			Host:     os.Getenv("REDIS_HOST"),
			Port:     getEnvOrDefault("REDIS_PORT", "6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
		},
		ElasticsearchURL: os.Getenv("ELASTICSEARCH_URL"),
		CORSOrigins:      splitList(os.Getenv("CORS_ORIGINS")),
		RequiredServices: splitList(os.Getenv("REQUIRED_SERVICES")),
	}

	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET environment variable is required")
	}

	var err error
	if cfg.JWTTTL, err = getDuration("JWT_TTL", 24*time.Hour); err != nil {
		return nil, err
	}

	cfg.Database = loadDatabaseConfig(cfg.Environment)

	cfg.Telemetry = TelemetryConfig{
		Enabled:     getEnvOrDefault("OTEL_ENABLED", "false") == "true",
		ServiceName: getEnvOrDefault("OTEL_SERVICE_NAME", "aihub-backend"),
		Endpoint:    getEnvOrDefault("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4318"),
	}
	if cfg.Telemetry.SamplingRate, err = strconv.ParseFloat(getEnvOrDefault("OTEL_SAMPLING_RATE", "1.0"), 64); err != nil {
		return nil, fmt.Errorf("invalid OTEL_SAMPLING_RATE: %w", err)
	}

	requests, err := strconv.Atoi(getEnvOrDefault("RATE_LIMIT_REQUESTS", "100"))
	if err != nil || requests <= 0 {
		return nil, fmt.Errorf("invalid RATE_LIMIT_REQUESTS %q", os.Getenv("RATE_LIMIT_REQUESTS"))
	}
	window, err := getDuration("RATE_LIMIT_WINDOW", time.Minute)
	if err != nil {
		return nil, err
	}
	cfg.RateLimit = RateLimitConfig{Requests: requests, Window: window}

	return cfg, nil
}

func loadDatabaseConfig(environment string) DatabaseConfig {
	dbc := DatabaseConfig{
		Driver: strings.ToLower(getEnvOrDefault("DATABASE_DRIVER", "postgres")),
		DSN:    os.Getenv("DATABASE_URL"),
		LogSQL: environment == "development",
	}
	if dbc.DSN != "" {
		return dbc
	}

	if dbc.Driver == "sqlite" {
		dbc.DSN = "aihub.db"
		return dbc
	}

	dbc.DSN = fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		getEnvOrDefault("DB_HOST", "localhost"),
		getEnvOrDefault("DB_PORT", "5432"),
		getEnvOrDefault("DB_USER", "postgres"),
		getEnvOrDefault("DB_PASSWORD", ""),
		getEnvOrDefault("DB_NAME", "aihub"),
		getEnvOrDefault("DB_SSLMODE", "disable"),
	)
	return dbc
}

func getDuration(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

func splitList(v string) []string {
	out := make([]string, 0)
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// getEnvOrDefault returns environment variable or default value
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
