package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, DefaultAddr, cfg.Addr)
	assert.Equal(t, DefaultProvider, cfg.Provider)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoadEnv(t *testing.T) {
	t.Setenv("AGENDUM_PROVIDER", "openai")
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("AGENDUM_ADDR", ":9000")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "openai", cfg.Provider)
	assert.Equal(t, ":9000", cfg.Addr)
	assert.Equal(t, "sk-test", cfg.APIKey())
}

func TestLoadFileOverridesEnv(t *testing.T) {
	t.Setenv("AGENDUM_MODEL", "env-model")

	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"model":"file-model","provider":"anthropic"}`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "file-model", cfg.Model)
}

func TestLoadMissingFileIsFine(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.json"))
	require.NoError(t, err)
	assert.Equal(t, DefaultProvider, cfg.Provider)
}

func TestLoadRejectsUnknownProvider(t *testing.T) {
	t.Setenv("AGENDUM_PROVIDER", "cohere")
	_, err := Load("")
	assert.Error(t, err)
}

func TestLoadRejectsMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte("{"), 0o644))
	_, err := Load(path)
	assert.Error(t, err)
}
