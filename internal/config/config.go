package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration values.
type Config struct {
	AppPort       string
	APIBaseURL    string
	APITimeout    time.Duration
	DatabaseURL   string
	SessionCookie string
	SessionTTL    time.Duration
	CookieSecure  bool
	LogLevel      string
}

// Load reads environment variables and returns a populated Config.
func Load() *Config {
	_ = godotenv.Load()

	cfg := &Config{
		AppPort:       getEnv("APP_PORT", "3000"),
		APIBaseURL:    strings.TrimRight(getEnv("API_BASE_URL", "http://localhost:5000/api/v1"), "/"),
		APITimeout:    getEnvDuration("API_TIMEOUT_SECONDS", 15) * time.Second,
		DatabaseURL:   getEnv("DATABASE_URL", ""),
		SessionCookie: getEnv("SESSION_COOKIE", "amar_session"),
		SessionTTL:    getEnvDuration("SESSION_TTL_HOURS", 24*30) * time.Hour,
		CookieSecure:  getEnv("COOKIE_SECURE", "false") == "true",
		LogLevel:      getEnv("LOG_LEVEL", "info"),
	}

	if cfg.AppPort == "" {
		log.Fatal("APP_PORT must be set")
	}

	if cfg.APIBaseURL == "" {
		log.Fatal("API_BASE_URL must be set")
	}

	return cfg
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvDuration(key string, fallback int) time.Duration {
	if value, ok := os.LookupEnv(key); ok {
		if parsed, err := strconv.Atoi(value); err == nil && parsed > 0 {
			return time.Duration(parsed)
		}
	}
	return time.Duration(fallback)
}
