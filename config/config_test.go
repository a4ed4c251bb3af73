package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "https://gamma-api.polymarket.com", cfg.API.GammaBase)
	assert.Equal(t, "https://data-api.polymarket.com", cfg.API.DataBase)
	assert.Equal(t, 5000, cfg.Fetch.PageLimit)
	assert.Equal(t, 1000, cfg.Fetch.MaxPages)
	assert.True(t, cfg.VerifyEnabled())
	assert.True(t, cfg.StorageEnabled())
	assert.Equal(t, "UTC", cfg.Report.Timezone)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "text", cfg.Log.Format)
}

func TestLoad_YAMLValues(t *testing.T) {
	path := writeConfig(t, `
fetch:
  page_limit: 100
  verify: false
storage:
  dsn: ":memory:"
  enabled: false
report:
  timezone: "Europe/Madrid"
log:
  level: debug
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 100, cfg.Fetch.PageLimit)
	assert.False(t, cfg.VerifyEnabled())
	assert.False(t, cfg.StorageEnabled())
	assert.Equal(t, ":memory:", cfg.Storage.DSN)
	assert.Equal(t, "debug", cfg.Log.Level)

	loc, err := cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, "Europe/Madrid", loc.String())
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("LOG_LEVEL", "warn")
	t.Setenv("STORAGE_DSN", "/tmp/other.db")
	t.Setenv("DATA_API_BASE", "http://localhost:9999")
	t.Setenv("FETCH_PAGE_LIMIT", "250")

	cfg, err := Load(writeConfig(t, "log:\n  level: debug\n"))
	require.NoError(t, err)

	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, "/tmp/other.db", cfg.Storage.DSN)
	assert.Equal(t, "http://localhost:9999", cfg.API.DataBase)
	assert.Equal(t, 250, cfg.Fetch.PageLimit)
}

func TestLoad_InvalidYAML(t *testing.T) {
	_, err := Load(writeConfig(t, "fetch: [oops"))
	assert.Error(t, err)
}

func TestLoad_InvalidTimezone(t *testing.T) {
	_, err := Load(writeConfig(t, "report:\n  timezone: Mars/Olympus\n"))
	assert.Error(t, err)
}
