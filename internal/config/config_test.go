package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("APP_ENV", "development")
	t.Setenv("APP_TIMEZONE", "")
	t.Setenv("DB_TYPE", "")
	t.Setenv("JWT_SECRET", "")
	t.Setenv("TELEGRAM_TOKEN", "")
	t.Setenv("REPORT_INTERVAL_HOURS", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTPAddress)
	assert.Equal(t, "sqlite", cfg.DatabaseDriver)
	assert.Equal(t, time.UTC.String(), cfg.Location.String())
	assert.Equal(t, devJWTSecret, cfg.JWTSecret)
	assert.Equal(t, "20:00", cfg.ReminderTime)
	assert.Zero(t, cfg.ReportInterval)
	assert.False(t, cfg.BotEnabled())
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("APP_TIMEZONE", "Asia/Kolkata")
	t.Setenv("DB_TYPE", "POSTGRES")
	t.Setenv("DATABASE_URL", "host=db user=app")
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("TELEGRAM_TOKEN", "123:abc")
	t.Setenv("REPORT_INTERVAL_HOURS", "6")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.DatabaseDriver)
	assert.Equal(t, "host=db user=app", cfg.DatabaseURL)
	assert.Equal(t, "Asia/Kolkata", cfg.Location.String())
	assert.Equal(t, "s3cret", cfg.JWTSecret)
	assert.Equal(t, 6*time.Hour, cfg.ReportInterval)
	assert.True(t, cfg.BotEnabled())
}

func TestLoadRejectsBadInput(t *testing.T) {
	t.Run("timezone", func(t *testing.T) {
		t.Setenv("APP_ENV", "development")
		t.Setenv("APP_TIMEZONE", "Mars/Olympus")
		_, err := Load()
		assert.Error(t, err)
	})
	t.Run("driver", func(t *testing.T) {
		t.Setenv("APP_ENV", "development")
		t.Setenv("APP_TIMEZONE", "UTC")
		t.Setenv("DB_TYPE", "mysql")
		_, err := Load()
		assert.Error(t, err)
	})
	t.Run("secret outside development", func(t *testing.T) {
		t.Setenv("APP_ENV", "production")
		t.Setenv("APP_TIMEZONE", "UTC")
		t.Setenv("DB_TYPE", "sqlite")
		t.Setenv("JWT_SECRET", "")
		_, err := Load()
		assert.Error(t, err)
	})
}

func TestLoadRequiresSecretByDefault(t *testing.T) {
	for _, key := range []string{"APP_ENV", "APP_TIMEZONE", "DB_TYPE", "DATABASE_URL", "JWT_SECRET", "TELEGRAM_TOKEN", "REPORT_INTERVAL_HOURS"} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET")
	assert.Equal(t, "production", cfg.Env)
	assert.NotEqual(t, devJWTSecret, cfg.JWTSecret)
}

func TestParseInterval(t *testing.T) {
	assert.Equal(t, 4*time.Hour, parseInterval("4"))
	assert.Zero(t, parseInterval("-2"))
	assert.Zero(t, parseInterval("soon"))
	assert.Zero(t, parseInterval(""))
}
