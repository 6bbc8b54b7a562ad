package app

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// DefaultJWTSecret is used when JWT_SECRET is unset. Running with it in
// anything but development is a misconfiguration and is logged as such.
const DefaultJWTSecret = "your-secret-key-change-in-production"

type Config struct {
	Issuer    string // Optional: issuer claim for session tokens (default: cyanix-api)
	JWTSecret string // Shared HS256 secret for session tokens (default: DefaultJWTSecret)

	DatabaseFile        string        // Optional: path to SQLite database file (default: ./cyanix.db)
	PepperFile          string        // Optional: path to file containing pepper for password hashing (default: ./pepper)
	Env                 string        // Environment (development, staging, production) (default: development)
	LogLevel            string        // Log level (debug, info, warn, error) (default: info)
	LogFormat           string        // Log format (json, text) (default: json)
	Port                int           // HTTP server port (default: 8080)
	ShutdownGracePeriod time.Duration // Graceful shutdown timeout (default: 10s)
}

func LoadConfig() Config {
	// Missing .env is fine; the process environment still applies.
	_ = godotenv.Load()

	return Config{
		Issuer:              getEnvOrDefault("API_ISSUER", "cyanix-api"),
		JWTSecret:           getEnvOrDefault("JWT_SECRET", DefaultJWTSecret),
		DatabaseFile:        getEnvOrDefault("DATABASE_FILE", "cyanix.db"),
		PepperFile:          getEnvOrDefault("PEPPER_FILE", "pepper"),
		Env:                 getEnvOrDefault("ENV", "development"),
		LogLevel:            getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:           getEnvOrDefault("LOG_FORMAT", "json"),
		Port:                getEnvIntOrDefault("PORT", 8080),
		ShutdownGracePeriod: getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if intValue, err := strconv.Atoi(value); err == nil {
		return intValue
	}

	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	// Bare integers are taken as seconds.
	if seconds, err := strconv.Atoi(value); err == nil {
		return time.Duration(seconds) * time.Second
	}

	return defaultValue
}
