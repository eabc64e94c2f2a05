package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoad_KeepsDefaultsForMissingKeys(t *testing.T) {
	path := writeConfig(t, `
matching:
  ride_window_days: 3
providers:
  uber_eats:
    max_pages: 10
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 3, cfg.Matching.RideWindowDays)
	assert.Equal(t, 14, cfg.Matching.TipWindowDays)
	assert.Equal(t, 2.50, cfg.Matching.RideMinTolerance)
	assert.Equal(t, 10, cfg.Providers.UberEats.MaxPages)
	assert.Equal(t, DefaultUberEatsEndpoint, cfg.Providers.UberEats.Endpoint)
	assert.Equal(t, 50, cfg.Providers.UberRides.PageSize)
	assert.Equal(t, 200, cfg.Monarch.Limit)
	assert.Equal(t, "rideshare_sync.db", cfg.Storage.DatabasePath)
}

func TestLoad_Locations(t *testing.T) {
	path := writeConfig(t, `
locations:
  aliases:
    "99 Home Rd, Oakland, CA": my house
  home_names: ["my house"]
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "my house", cfg.Locations.Aliases["99 Home Rd, Oakland, CA"])
	assert.Equal(t, []string{"my house"}, cfg.Locations.HomeNames)
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := writeConfig(t, "matching: [unclosed")

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoadFromEnv(t *testing.T) {
	// Set environment variables
	os.Setenv("RIDESHARE_DB_PATH", "test.db")
	os.Setenv("MONARCH_TOKEN", "test-token")
	os.Setenv("RIDESHARE_API_PORT", "9090")
	os.Setenv("RIDESHARE_ALLOWED_ORIGINS", "http://localhost:3000,http://localhost:5173")
	defer func() {
		os.Unsetenv("RIDESHARE_DB_PATH")
		os.Unsetenv("MONARCH_TOKEN")
		os.Unsetenv("RIDESHARE_API_PORT")
		os.Unsetenv("RIDESHARE_ALLOWED_ORIGINS")
	}()

	cfg := LoadFromEnv()
	assert.NotNil(t, cfg)
	assert.Equal(t, "test.db", cfg.Storage.DatabasePath)
	assert.Equal(t, "test-token", cfg.Monarch.APIKey)
	assert.Equal(t, 9090, cfg.API.Port)
	assert.Equal(t, []string{"http://localhost:3000", "http://localhost:5173"}, cfg.API.AllowedOrigins)
}

func TestLoadFromEnv_Defaults(t *testing.T) {
	os.Unsetenv("RIDESHARE_DB_PATH")
	os.Unsetenv("LOG_LEVEL")

	cfg := LoadFromEnv()
	assert.NotNil(t, cfg)
	assert.Equal(t, "rideshare_sync.db", cfg.Storage.DatabasePath)
	assert.Equal(t, "info", cfg.Observability.Logging.Level)
	assert.True(t, cfg.Providers.BayWheels.Enabled)
}

func TestLoadOrEnv_FallbackToEnv(t *testing.T) {
	// Test fallback when config file doesn't exist
	os.Setenv("RIDESHARE_DB_PATH", "fallback.db")
	defer os.Unsetenv("RIDESHARE_DB_PATH")

	cfg := LoadOrEnv_WithPath("nonexistent.yaml")
	assert.NotNil(t, cfg)
	assert.Equal(t, "fallback.db", cfg.Storage.DatabasePath)
}

func TestEnvVarExpansion(t *testing.T) {
	path := writeConfig(t, `
storage:
  database_path: "${TEST_DB_PATH}"
monarch:
  api_key: "${TEST_MONARCH_TOKEN}"
`)

	os.Setenv("TEST_DB_PATH", "expanded.db")
	os.Setenv("TEST_MONARCH_TOKEN", "expanded-token")
	defer func() {
		os.Unsetenv("TEST_DB_PATH")
		os.Unsetenv("TEST_MONARCH_TOKEN")
	}()

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "expanded.db", cfg.Storage.DatabasePath)
	assert.Equal(t, "expanded-token", cfg.Monarch.APIKey)
}

func TestProviderConfig_Interval(t *testing.T) {
	assert.Equal(t, 250*time.Millisecond, ProviderConfig{RateLimit: "250ms"}.Interval())
	assert.Equal(t, time.Duration(0), ProviderConfig{}.Interval())
	assert.Equal(t, time.Duration(0), ProviderConfig{RateLimit: "soon"}.Interval())
}

func TestConfig_Location(t *testing.T) {
	cfg := Default()

	loc, err := cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, time.Local, loc)

	cfg.Timezone = "America/Los_Angeles"
	loc, err = cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, "America/Los_Angeles", loc.String())

	cfg.Timezone = "Mars/Olympus_Mons"
	_, err = cfg.Location()
	assert.Error(t, err)
}

func TestGetAPIKey(t *testing.T) {
	cfg := Default()
	os.Setenv("TEST_ALT_TOKEN", "from-env")
	defer os.Unsetenv("TEST_ALT_TOKEN")

	assert.Equal(t, "from-config", cfg.GetAPIKey("from-config", "TEST_ALT_TOKEN"))
	assert.Equal(t, "from-env", cfg.GetAPIKey("", "TEST_MISSING_TOKEN", "TEST_ALT_TOKEN"))
	assert.Equal(t, "", cfg.GetAPIKey(""))
}
