package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"DEALS_CONFIG_PATH", "OPEN_MERCATO_API_BASE_URL", "OPEN_MERCATO_API_KEY", "HTTP_PORT",
		"HTTP_TIMEOUT", "LOG_LEVEL", "DEALS_LOCALE", "DEALS_TIMEZONE", "REDIS_ADDR",
		"RATE_LIMIT_PER_MINUTE", "DASHBOARD_JWT_SECRET",
	} {
		if value, ok := os.LookupEnv(key); ok {
			require.NoError(t, os.Unsetenv(key))
			t.Cleanup(func() { os.Setenv(key, value) })
		}
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, DefaultAPIBaseURL, cfg.APIBaseURL)
	require.Empty(t, cfg.APIKey)
	require.Equal(t, "8080", cfg.HTTPPort)
	require.Equal(t, 10*time.Second, cfg.HTTPTimeout)
	require.Equal(t, "en-US", cfg.Locale)
	require.Equal(t, "UTC", cfg.Timezone)
	require.Equal(t, 60, cfg.RateLimitPerMinute)
	require.Empty(t, cfg.RedisAddr)
	require.Empty(t, cfg.JWTSecret)
}

func TestLoad_FileThenEnv(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "config.yaml")
	content := []byte("api_base_url: https://file.example/api\napi_key: from-file\nhttp_timeout: 3s\nlocale: de-DE\n")
	require.NoError(t, os.WriteFile(path, content, 0o600))

	t.Setenv("DEALS_CONFIG_PATH", path)
	t.Setenv("OPEN_MERCATO_API_KEY", "from-env")
	t.Setenv("RATE_LIMIT_PER_MINUTE", "5")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "https://file.example/api", cfg.APIBaseURL)
	require.Equal(t, "from-env", cfg.APIKey)
	require.Equal(t, 3*time.Second, cfg.HTTPTimeout)
	require.Equal(t, "de-DE", cfg.Locale)
	require.Equal(t, 5, cfg.RateLimitPerMinute)
}

func TestLoad_InvalidValues(t *testing.T) {
	cases := map[string]string{
		"HTTP_TIMEOUT":          "soon",
		"RATE_LIMIT_PER_MINUTE": "many",
		"DEALS_TIMEZONE":        "Mars/Olympus",
	}
	for key, value := range cases {
		t.Run(key, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(key, value)

			_, err := Load()
			require.Error(t, err)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	clearEnv(t)
	t.Setenv("DEALS_CONFIG_PATH", filepath.Join(t.TempDir(), "absent.yaml"))

	_, err := Load()
	require.ErrorContains(t, err, "read config file")
}
