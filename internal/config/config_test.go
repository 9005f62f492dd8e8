package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "./trends.db", cfg.Database.Path)
	assert.Equal(t, 30*time.Minute, cfg.Schedule.ParseInterval())
	assert.True(t, cfg.Sources.Search.Enabled)
	assert.Equal(t, []string{"trending", "viral", "challenge", "meme", "fashion", "music"}, cfg.Sources.Search.Seeds)
	assert.False(t, cfg.Enrich.Enabled)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "http://localhost:5173", cfg.Server.AllowedOrigin)
}

func TestLoadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
database:
  path: /var/lib/tiktrend/trends.db
schedule:
  interval: 1h
sources:
  search:
    enabled: true
    seeds: [dance, skincare]
    region: GB
server:
  port: 9090
  allowed_origin: http://localhost:3000
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/var/lib/tiktrend/trends.db", cfg.Database.Path)
	assert.Equal(t, time.Hour, cfg.Schedule.ParseInterval())
	assert.Equal(t, []string{"dance", "skincare"}, cfg.Sources.Search.Seeds)
	assert.Equal(t, "GB", cfg.Sources.Search.Region)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "http://localhost:3000", cfg.Server.AllowedOrigin)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("TIKTREND_DB_PATH", "/tmp/override.db")
	t.Setenv("TIKTREND_PORT", "7070")
	t.Setenv("TIKTREND_ALLOWED_ORIGIN", "http://example.dev")
	t.Setenv("OPENAI_API_KEY", "sk-test")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "/tmp/override.db", cfg.Database.Path)
	assert.Equal(t, 7070, cfg.Server.Port)
	assert.Equal(t, "http://example.dev", cfg.Server.AllowedOrigin)
	assert.True(t, cfg.Enrich.Enabled)
	assert.Equal(t, "sk-test", cfg.Enrich.APIKey)
}

func TestInvalidIntervalFallsBack(t *testing.T) {
	cfg := Default()
	cfg.Schedule.Interval = "not-a-duration"
	assert.Equal(t, 30*time.Minute, cfg.Schedule.ParseInterval())
}
