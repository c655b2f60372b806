package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config keeps runtime settings for the tracker.
type Config struct {
	Env            string
	HTTPAddress    string
	DatabaseDriver string
	DatabaseURL    string
	Location       *time.Location
	JWTSecret      string
	JWTIssuer      string
	TelegramToken  string
	ReminderTime   string
	ReportInterval time.Duration
}

const devJWTSecret = "dev-secret-change-me"

// Load reads configuration from a local .env file (if any) and environment variables.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		Env:            getEnv("APP_ENV", "production"),
		HTTPAddress:    getEnv("HTTP_ADDRESS", ":8080"),
		DatabaseDriver: strings.ToLower(getEnv("DB_TYPE", "sqlite")),
		DatabaseURL:    getEnv("DATABASE_URL", "skillup_tracker.db"),
		JWTSecret:      strings.TrimSpace(os.Getenv("JWT_SECRET")),
		JWTIssuer:      getEnv("JWT_ISSUER", "skillup.identity"),
		TelegramToken:  strings.TrimSpace(os.Getenv("TELEGRAM_TOKEN")),
		ReminderTime:   getEnv("REMINDER_TIME", "20:00"),
		ReportInterval: parseInterval(strings.TrimSpace(os.Getenv("REPORT_INTERVAL_HOURS"))),
	}

	loc, err := time.LoadLocation(getEnv("APP_TIMEZONE", "UTC"))
	if err != nil {
		return cfg, fmt.Errorf("APP_TIMEZONE: %w", err)
	}
	cfg.Location = loc

	switch cfg.DatabaseDriver {
	case "sqlite", "postgres":
	default:
		return cfg, fmt.Errorf("DB_TYPE must be sqlite or postgres, got %q", cfg.DatabaseDriver)
	}

	// The built-in secret is only accepted when development mode is requested explicitly.
	if cfg.JWTSecret == "" {
		if cfg.Env != "development" {
			return cfg, fmt.Errorf("JWT_SECRET is required")
		}
		cfg.JWTSecret = devJWTSecret
	}

	return cfg, nil
}

// BotEnabled reports whether the Telegram front-end should run.
func (c Config) BotEnabled() bool {
	return c.TelegramToken != ""
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && strings.TrimSpace(value) != "" {
		return strings.TrimSpace(value)
	}
	return fallback
}

func parseInterval(raw string) time.Duration {
	if raw == "" {
		return 0
	}
	hours, err := time.ParseDuration(raw + "h")
	if err != nil || hours <= 0 {
		return 0
	}
	return hours
}
