package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(
		"sheet_url: https://example.test/exec\n"+
			"jwt_secret: c2VjcmV0\n"+
			"addr: \":9000\"\n"+
			"token_ttl: 1h\n"), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "https://example.test/exec", cfg.SheetURL)
	assert.Equal(t, ":9000", cfg.Addr)
	assert.Equal(t, time.Hour, cfg.TokenTTL)
	// Untouched keys keep their defaults.
	assert.Equal(t, 15*time.Second, cfg.SettingsSyncInterval)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestEnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(
		"sheet_url: https://example.test/exec\n"+
			"jwt_secret: c2VjcmV0\n"), 0o600))

	t.Setenv("PACKTRACK_SHEET_URL", "https://override.test/exec")
	t.Setenv("PACKTRACK_LOG_LEVEL", "debug")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "https://override.test/exec", cfg.SheetURL)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestMissingRequiredKeys(t *testing.T) {
	t.Setenv("PACKTRACK_SHEET_URL", "")
	_, err := Load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sheet_url")

	t.Setenv("PACKTRACK_SHEET_URL", "https://example.test/exec")
	_, err = Load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "jwt_secret")
}
