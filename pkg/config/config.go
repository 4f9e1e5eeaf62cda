package config

import (
	"os"
	"time"
)

// AppConfig general application configuration, resolved from the
// environment once at startup.
type AppConfig struct {
	Environment string
	Port        string
	MetricsPort string

	JWTSecret string

	// DatabaseURL selects the Postgres adapter when set; otherwise the
	// SQLite adapter is used with DatabasePath.
	DatabaseURL    string
	DatabasePath   string
	MigrationsPath string

	// RedisURL selects the Redis cache when set; otherwise the
	// in-process cache is used.
	RedisURL string

	// NotifierURL is the HTTP mail delivery endpoint. Empty disables
	// account notifications.
	NotifierURL string

	OTLPEndpoint string

	RateLimitEnabled bool
	RateLimitConfigs map[string]RateLimitConfig

	EnforceHTTPS bool
}

type RateLimitConfig struct {
	Requests int
	Window   time.Duration
}

func GetDefaultConfig() *AppConfig {
	return &AppConfig{
		Environment:    getenv("APP_ENV", "development"),
		Port:           getenv("PORT", "8080"),
		MetricsPort:    getenv("METRICS_PORT", "9090"),
		JWTSecret:      getenv("JWT_SECRET", "development-secret"),
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		DatabasePath:   getenv("DATABASE_PATH", "taskapp.db"),
		MigrationsPath: getenv("MIGRATIONS_PATH", "db/migrations"),
		RedisURL:       os.Getenv("REDIS_URL"),
		NotifierURL:    os.Getenv("NOTIFIER_URL"),
		OTLPEndpoint:   getenv("OTLP_ENDPOINT", "localhost:4317"),

		RateLimitEnabled: getenv("RATE_LIMIT_ENABLED", "true") == "true",
		RateLimitConfigs: map[string]RateLimitConfig{
			"POST /users": {
				Requests: 5,
				Window:   time.Minute,
			},
			"POST /users/login": {
				Requests: 10,
				Window:   time.Minute,
			},
			"default": {
				Requests: 60,
				Window:   time.Minute,
			},
		},

		EnforceHTTPS: os.Getenv("ENFORCE_HTTPS") == "true",
	}
}

func getenv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}

	return fallback
}
