package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "https://citrination.com", cfg.Site)
	assert.Equal(t, 5*time.Second, cfg.Poll.Interval.Std())
	assert.Equal(t, "MLI", cfg.Learn.Acquisition)
}

func TestParseOverlaysDefaults(t *testing.T) {
	cfg, err := Parse([]byte(`
site: https://my.citrination.com
poll:
  interval: 1s
  deadline: 5m
learn:
  target: "Band gap"
  iterations: 3
  early_stop: 3.0
`))
	require.NoError(t, err)

	assert.Equal(t, "https://my.citrination.com", cfg.Site)
	assert.Equal(t, time.Second, cfg.Poll.Interval.Std())
	assert.Equal(t, 3, cfg.Learn.Iterations)
	require.NotNil(t, cfg.Learn.EarlyStop)
	assert.Equal(t, 3.0, *cfg.Learn.EarlyStop)

	// untouched keys keep their defaults
	assert.Equal(t, "CITRINATION_API_KEY", cfg.APIKeyEnv)
	assert.Equal(t, 1, cfg.Learn.BatchSize)
}

func TestParseRejectsUnknownKeys(t *testing.T) {
	_, err := Parse([]byte("sight: https://typo.example.com\n"))
	assert.Error(t, err)
}

func TestParseRejectsBadDuration(t *testing.T) {
	_, err := Parse([]byte("poll:\n  interval: soon\n"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty site", func(c *Config) { c.Site = "" }},
		{"empty key env", func(c *Config) { c.APIKeyEnv = "" }},
		{"zero timeout", func(c *Config) { c.HTTP.Timeout = 0 }},
		{"zero interval", func(c *Config) { c.Poll.Interval = 0 }},
		{"deadline under interval", func(c *Config) { c.Poll.Deadline = c.Poll.Interval / 2 }},
		{"bad goal", func(c *Config) { c.Learn.Goal = "Sideways" }},
		{"zero iterations", func(c *Config) { c.Learn.Iterations = 0 }},
		{"zero batch", func(c *Config) { c.Learn.BatchSize = 0 }},
		{"bad selection", func(c *Config) { c.Learn.Selection = "oracle" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "citrine.yaml")
	require.NoError(t, os.WriteFile(path, []byte("site: https://example.com\n"), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "https://example.com", cfg.Site)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestAPIKey(t *testing.T) {
	cfg := DefaultConfig()
	cfg.APIKeyEnv = "CITRINE_TEST_KEY"

	t.Setenv("CITRINE_TEST_KEY", "")
	_, err := cfg.APIKey()
	assert.Error(t, err)

	t.Setenv("CITRINE_TEST_KEY", "secret")
	key, err := cfg.APIKey()
	require.NoError(t, err)
	assert.Equal(t, "secret", key)
}
