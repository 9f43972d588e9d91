// Package config loads the task manager server settings from the environment.
package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

// DefaultJWTSecret is used when TASKS_JWT_SECRET is unset. It is only fit for local development.
const DefaultJWTSecret = "your-secret-key-change-in-production"

// Config holds all server settings.
type Config struct {
	HTTPPort    int
	APIPrefix   string
	CORSOrigins string

	DBDriver string
	DBDSN    string
	DBDebug  bool

	JWTSecret string
	JWTIssuer string

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RateLimit     int
	RateWindow    time.Duration

	ShutdownTimeout time.Duration
	LogLevel        string
}

// Load reads the configuration from environment variables, falling back to defaults.
func Load() Config {
	return Config{
		HTTPPort:    getEnvInt("TASKS_HTTP_PORT", 3000),
		APIPrefix:   "/" + strings.Trim(getEnv("TASKS_API_PREFIX", "/api"), "/"),
		CORSOrigins: getEnv("TASKS_CORS_ORIGINS", "*"),

		DBDriver: strings.ToLower(getEnv("TASKS_DB_DRIVER", "sqlite")),
		DBDSN:    getEnv("TASKS_DB_DSN", "tasks.db"),
		DBDebug:  getEnvBool("TASKS_DB_DEBUG", false),

		JWTSecret: getEnv("TASKS_JWT_SECRET", DefaultJWTSecret),
		JWTIssuer: getEnv("TASKS_JWT_ISSUER", "task-manager"),

		RedisAddr:     getEnv("TASKS_REDIS_ADDR", ""),
		RedisPassword: getEnv("TASKS_REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("TASKS_REDIS_DB", 0),
		RateLimit:     getEnvInt("TASKS_RATE_LIMIT", 120),
		RateWindow:    getEnvDuration("TASKS_RATE_WINDOW", time.Minute),

		ShutdownTimeout: getEnvDuration("TASKS_SHUTDOWN_TIMEOUT", 30*time.Second),
		LogLevel:        strings.ToLower(getEnv("TASKS_LOG_LEVEL", "info")),
	}
}

// RateLimitEnabled reports whether a Redis address was configured.
func (c Config) RateLimitEnabled() bool {
	return c.RedisAddr != ""
}

// getEnv returns the value of an environment variable or a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt returns the integer value of an environment variable or a default value.
// Logs a warning if the value cannot be parsed as an integer.
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if result, err := strconv.Atoi(value); err == nil {
			return result
		}
		log.Printf("Warning: invalid integer value for %s: %q, using default %d", key, value, defaultValue)
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if result, err := strconv.ParseBool(value); err == nil {
			return result
		}
		log.Printf("Warning: invalid boolean value for %s: %q, using default %t", key, value, defaultValue)
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if result, err := time.ParseDuration(value); err == nil {
			return result
		}
		log.Printf("Warning: invalid duration value for %s: %q, using default %s", key, value, defaultValue)
	}
	return defaultValue
}
