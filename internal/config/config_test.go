package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{"CUTDESK_DATA_DIR", "CUTDESK_STORAGE", "PORT", "GO_ENV", "LOG_LEVEL", "CUTDESK_MANAGER_CODE"} {
		t.Setenv(key, "")
	}
}

func TestFromEnvDefaults(t *testing.T) {
	clearEnv(t)

	cfg := FromEnv()
	assert.Equal(t, ".cutdesk", filepath.Base(cfg.DataDir))
	assert.Equal(t, "json", cfg.Storage)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "development", cfg.GoEnv)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "MANAGER2024", cfg.ManagerCode)
	assert.True(t, cfg.IsDevelopment())
	assert.False(t, cfg.IsProduction())
	assert.NoError(t, cfg.Validate())
}

func TestFromEnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("CUTDESK_DATA_DIR", "/srv/cutdesk")
	t.Setenv("CUTDESK_STORAGE", "SQLite")
	t.Setenv("PORT", "9090")
	t.Setenv("GO_ENV", "production")
	t.Setenv("LOG_LEVEL", "WARN")
	t.Setenv("CUTDESK_MANAGER_CODE", "opensesame")

	cfg := FromEnv()
	assert.Equal(t, "/srv/cutdesk", cfg.DataDir)
	assert.Equal(t, "sqlite", cfg.Storage)
	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.Equal(t, "opensesame", cfg.ManagerCode)
	assert.True(t, cfg.IsProduction())
}

func TestValidate(t *testing.T) {
	clearEnv(t)

	cfg := FromEnv()
	cfg.Storage = "postgres"
	assert.Error(t, cfg.Validate())

	cfg = FromEnv()
	cfg.LogLevel = "verbose"
	assert.Error(t, cfg.Validate())

	cfg = FromEnv()
	cfg.DataDir = ""
	assert.Error(t, cfg.Validate())
}

func TestLoadReadsEnvFile(t *testing.T) {
	clearEnv(t)
	os.Unsetenv("PORT")
	os.Unsetenv("CUTDESK_STORAGE")
	t.Setenv("GO_ENV", "test")

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env.test"), []byte("PORT=7070\nCUTDESK_STORAGE=memory\n"), 0644))
	t.Chdir(dir)
	t.Cleanup(func() {
		os.Unsetenv("PORT")
		os.Unsetenv("CUTDESK_STORAGE")
	})

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "7070", cfg.Port)
	assert.Equal(t, "memory", cfg.Storage)
	assert.Equal(t, ".env.test", cfg.EnvFile())
}

func TestNewLogger(t *testing.T) {
	for _, env := range []string{"development", "production"} {
		logger, err := NewLogger("debug", env)
		require.NoError(t, err)
		assert.True(t, logger.Core().Enabled(zap.DebugLevel), "debug enabled for %s", env)
	}

	logger, err := NewLogger("error", "production")
	require.NoError(t, err)
	assert.False(t, logger.Core().Enabled(zap.InfoLevel))
}
