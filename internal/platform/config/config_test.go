package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_RequiresServiceName(t *testing.T) {
	t.Setenv("ENV_FILE", filepath.Join(t.TempDir(), "missing.env"))
	t.Setenv("SERVICE_NAME", "")
	_, err := Load()
	require.Error(t, err)
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("ENV_FILE", filepath.Join(t.TempDir(), "missing.env"))
	t.Setenv("SERVICE_NAME", "movie-batch")
	t.Setenv("APP_ENV", "")
	t.Setenv("LOG_LEVEL", "")
	t.Setenv("HTTP_ADDR", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "movie-batch", cfg.ServiceName)
	assert.Equal(t, "dev", cfg.Env)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, ":8080", cfg.HTTP.Addr)
	assert.False(t, cfg.IsProd())
}

func TestLoad_DotEnvDoesNotOverrideEnvironment(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(path, []byte("SERVICE_NAME=from-file\nLOG_LEVEL=debug\n"), 0o600))
	t.Setenv("ENV_FILE", path)
	t.Setenv("SERVICE_NAME", "from-env")
	t.Setenv("LOG_LEVEL", "")
	os.Unsetenv("LOG_LEVEL")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.ServiceName)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestIsProd(t *testing.T) {
	assert.True(t, AppConfig{Env: "production"}.IsProd())
	assert.True(t, AppConfig{Env: "PROD"}.IsProd())
	assert.False(t, AppConfig{Env: "staging"}.IsProd())
}
