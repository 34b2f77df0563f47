package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestLoadConfig_LoggerFollowsConfigFile(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "gm-test")
	t.Setenv("PINATA_JWT", "pinata-test")
	t.Setenv("SOLANA_MINT_AUTHORITY_KEY", "key")
	t.Setenv("ENVIRONMENT", "")

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("environment: production\n"), 0o600))
	t.Setenv("CONFIG_FILE", path)

	cfg, logger, err := loadConfig()
	require.NoError(t, err)

	assert.Equal(t, "production", cfg.Environment)
	assert.False(t, logger.Core().Enabled(zap.DebugLevel))
	assert.True(t, logger.Core().Enabled(zap.InfoLevel))
}

func TestLoadConfig_DevelopmentLogsDebug(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "gm-test")
	t.Setenv("PINATA_JWT", "pinata-test")
	t.Setenv("SOLANA_MINT_AUTHORITY_KEY", "key")
	t.Setenv("ENVIRONMENT", "")
	t.Setenv("CONFIG_FILE", "")

	cfg, logger, err := loadConfig()
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.Environment)
	assert.True(t, logger.Core().Enabled(zap.DebugLevel))
}

func TestLoadConfig_Invalid(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("CONFIG_FILE", "")

	_, logger, err := loadConfig()
	require.Error(t, err)
	assert.Nil(t, logger)
}
