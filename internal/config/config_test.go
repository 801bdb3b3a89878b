package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/richardnixondev/smartcart/internal/config"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := config.LoadForTests(map[string]string{
		"DATABASE_URL":     "postgres://localhost/smartcart",
		"REDIS_URL":        "redis://localhost:6379",
		"PORT":             "",
		"BATTLE_CACHE_TTL": "",
	})
	require.NoError(t, err)
	require.Equal(t, ":8080", cfg.HTTPAddr())
	require.Equal(t, 20, cfg.CatalogDefaultLimit)
	require.Equal(t, 30, cfg.HistoryDefaultDays)
	require.Equal(t, 5*time.Minute, cfg.BattleCacheTTL)
	require.Equal(t, 120, cfg.RateLimitMax)
}

func TestLoadRequiresDatabaseURL(t *testing.T) {
	_, err := config.LoadForTests(map[string]string{
		"DATABASE_URL": "",
		"REDIS_URL":    "redis://localhost:6379",
	})
	require.Error(t, err)
}

func TestLoadClampsLimits(t *testing.T) {
	cfg, err := config.LoadForTests(map[string]string{
		"DATABASE_URL":          "postgres://localhost/smartcart",
		"REDIS_URL":             "redis://localhost:6379",
		"CATALOG_DEFAULT_LIMIT": "500",
		"CATALOG_MAX_LIMIT":     "100",
		"HISTORY_DEFAULT_DAYS":  "999",
		"HISTORY_MAX_DAYS":      "365",
	})
	require.NoError(t, err)
	require.Equal(t, 100, cfg.CatalogDefaultLimit)
	require.Equal(t, 365, cfg.HistoryDefaultDays)
}

func TestLoadParsesOrigins(t *testing.T) {
	cfg, err := config.LoadForTests(map[string]string{
		"DATABASE_URL":         "postgres://localhost/smartcart",
		"REDIS_URL":            "redis://localhost:6379",
		"CORS_ALLOWED_ORIGINS": "https://smartcart.ie, https://staging.smartcart.ie",
	})
	require.NoError(t, err)
	require.Equal(t, []string{"https://smartcart.ie", "https://staging.smartcart.ie"}, cfg.CORSAllowedOrigins)
}
