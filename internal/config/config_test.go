package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pzl/doorbee/pkg/eco"
)

// isolate keeps the developer's real environment and config out of the test.
func isolate(t *testing.T) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	for _, k := range []string{
		eco.EnvAccessToken, eco.EnvRefreshToken,
		"DOORBEE_WATCH_INTERVAL", "DOORBEE_WATCH_OPEN_MODE", "DOORBEE_LOG_LEVEL",
	} {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_DefaultsFromEnvOnly(t *testing.T) {
	isolate(t)
	t.Setenv(eco.EnvAccessToken, "tok")
	t.Setenv(eco.EnvRefreshToken, "ref")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, eco.Credentials{AccessToken: "tok", RefreshToken: "ref"}, cfg.Credentials)
	assert.Equal(t, eco.DefaultBaseURL, cfg.BaseURL)
	assert.Equal(t, 90*time.Second, cfg.Timeout)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 15*time.Minute, cfg.Watch.Interval)
	assert.Equal(t, "Catio Door", cfg.Watch.SensorName)
	assert.Equal(t, eco.SensorDryContact, cfg.Watch.SensorType)
	assert.Equal(t, []string{"zoneHvacMode", "zoneCalendarEvent"}, cfg.Watch.Columns)
	assert.Equal(t, "auto", cfg.Watch.ClosedMode)
	assert.Equal(t, "off", cfg.Watch.OpenMode)
	assert.False(t, cfg.Watch.LocalDay)
}

func TestLoad_RequiresToken(t *testing.T) {
	isolate(t)

	_, err := Load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), eco.EnvAccessToken)
}

func TestLoad_YAMLFileWithEnvOverride(t *testing.T) {
	isolate(t)
	t.Setenv("DOORBEE_WATCH_OPEN_MODE", "heat")

	path := writeFile(t, "doorbee.yaml", `
auth:
  token: from-file
log:
  level: DEBUG
watch:
  interval: 5m
  thermostat: "522697894617"
  sensor_name: Back Door
  columns: " zoneHvacMode , "
  open_mode: cool
  local_day: true
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "from-file", cfg.Credentials.AccessToken)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 5*time.Minute, cfg.Watch.Interval)
	assert.Equal(t, "522697894617", cfg.Watch.Thermostat)
	assert.Equal(t, "Back Door", cfg.Watch.SensorName)
	assert.Equal(t, []string{"zoneHvacMode"}, cfg.Watch.Columns)
	assert.Equal(t, "heat", cfg.Watch.OpenMode, "environment beats the file")
	assert.True(t, cfg.Watch.LocalDay)
}

func TestLoad_TOMLFile(t *testing.T) {
	isolate(t)
	t.Setenv(eco.EnvAccessToken, "tok")

	path := writeFile(t, "doorbee.toml", `
[api]
base_url = "http://127.0.0.1:8080"
timeout = "10s"

[watch]
reload_env = true
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "http://127.0.0.1:8080", cfg.BaseURL)
	assert.Equal(t, 10*time.Second, cfg.Timeout)
	assert.True(t, cfg.Watch.ReloadEnv)
}

func TestLoad_ExplicitMissingFile(t *testing.T) {
	isolate(t)
	t.Setenv(eco.EnvAccessToken, "tok")

	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	isolate(t)
	t.Setenv(eco.EnvAccessToken, "tok")
	base, err := Load("")
	require.NoError(t, err)

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero interval", func(c *Config) { c.Watch.Interval = 0 }},
		{"zero timeout", func(c *Config) { c.Timeout = 0 }},
		{"no sensor", func(c *Config) { c.Watch.SensorName, c.Watch.SensorType = "", "" }},
		{"no closed mode", func(c *Config) { c.Watch.ClosedMode = "" }},
		{"no base url", func(c *Config) { c.BaseURL = "" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
	assert.NoError(t, base.Validate())
}
