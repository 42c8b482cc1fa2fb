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
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	path := writeConfig(t, "server:\n  port: 0\n")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "http://localhost:8000/api", cfg.BookingAPI.BaseURL)
	assert.Equal(t, "America/Mexico_City", cfg.Booking.Timezone)
	assert.Equal(t, 10*time.Second, cfg.APITimeout())
	assert.Equal(t, time.Duration(0), cfg.CacheTTL())
	assert.Equal(t, 5*time.Minute, cfg.RefreshInterval())
	assert.Equal(t, 30*time.Minute, cfg.SessionTimeout())
}

func TestLoad_EnvExpansion(t *testing.T) {
	t.Setenv("BOOKING_API_URL", "https://api.example.com/api")

	path := writeConfig(t, `
server:
  port: 9000
booking_api:
  base_url: ${BOOKING_API_URL}
  timeout_seconds: 5
  cache_ttl_seconds: 60
booking:
  timezone: UTC
  refresh_seconds: 120
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, "https://api.example.com/api", cfg.BookingAPI.BaseURL)
	assert.Equal(t, 5*time.Second, cfg.APITimeout())
	assert.Equal(t, time.Minute, cfg.CacheTTL())
	assert.Equal(t, 2*time.Minute, cfg.RefreshInterval())

	loc, err := cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, time.UTC, loc)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
