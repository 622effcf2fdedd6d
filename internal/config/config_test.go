package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestLoadConfigFromFile(t *testing.T) {
	scratch := t.TempDir()
	path := writeConfig(t, `
engine:
  binary: /opt/bin/gifsicle
output:
  directory: /srv/gifs
  scratch_root: `+scratch+`
defaults:
  optimization_level: 2
  lossy: 80
  colors: 128
  unoptimize: true
logging:
  level: DEBUG
  file_path: /var/log/gif-compressor.log
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "/opt/bin/gifsicle", cfg.Engine.Binary)
	assert.Equal(t, "/srv/gifs", cfg.Output.Directory)
	assert.Equal(t, scratch, cfg.Output.ScratchRoot)
	assert.Equal(t, 2, cfg.Defaults.OptimizationLevel)
	assert.Equal(t, 80, cfg.Defaults.Lossy)
	assert.Equal(t, 128, cfg.Defaults.Colors)
	assert.True(t, cfg.Defaults.Unoptimize)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, 10, cfg.Logging.MaxSize)
}

func TestLoadConfigEnvOverride(t *testing.T) {
	path := writeConfig(t, "engine:\n  binary: gifsicle\n")
	t.Setenv("GIF_COMPRESSOR_ENGINE_BINARY", "/usr/local/bin/gifsicle")
	t.Setenv("GIF_COMPRESSOR_DEFAULTS_LOSSY", "40")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "/usr/local/bin/gifsicle", cfg.Engine.Binary)
	assert.Equal(t, 40, cfg.Defaults.Lossy)
}

func TestLoadConfigMissingExplicitFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoadConfigRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"level", "defaults:\n  optimization_level: 5\n"},
		{"lossy", "defaults:\n  lossy: 10\n"},
		{"colors", "defaults:\n  colors: 300\n"},
		{"log level", "logging:\n  level: chatty\n"},
		{"scratch root", "output:\n  scratch_root: /definitely/not/here\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadConfig(writeConfig(t, tt.body))
			require.Error(t, err)
			assert.Contains(t, err.Error(), "config validation failed")
		})
	}
}

func TestValidateFillsDefaults(t *testing.T) {
	cfg := &Config{Logging: LoggingConfig{Level: "info"}}
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "gifsicle", cfg.Engine.Binary)
	assert.Equal(t, os.TempDir(), cfg.Output.Directory)
	assert.Equal(t, 3, cfg.Defaults.OptimizationLevel)
}
