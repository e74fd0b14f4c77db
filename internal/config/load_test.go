package config_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrz1836/reasonkernel/internal/config"
)

func TestLoad_ReturnsDefaultsWhenNoConfigFile(t *testing.T) {
	tempDir := t.TempDir()
	oldWd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(tempDir))
	defer func() { _ = os.Chdir(oldWd) }()

	cfg, err := config.Load(context.Background())
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, "fixture", cfg.Provider.Kind)
	assert.Equal(t, "sha256", cfg.Engine.HashAlgorithm)
}

func TestLoadFromPaths_ProjectConfigOverridesGlobal(t *testing.T) {
	ctx := context.Background()
	globalDir := t.TempDir()
	projectDir := t.TempDir()

	globalConfig := filepath.Join(globalDir, "config.yaml")
	require.NoError(t, os.WriteFile(globalConfig, []byte(`
provider:
  kind: http
  base_url: https://global.example.com
`), 0o600))

	projectConfig := filepath.Join(projectDir, "config.yaml")
	require.NoError(t, os.WriteFile(projectConfig, []byte(`
provider:
  base_url: https://project.example.com
`), 0o600))

	cfg, err := config.LoadFromPaths(ctx, projectConfig, globalConfig)
	require.NoError(t, err)
	assert.Equal(t, "https://project.example.com", cfg.Provider.BaseURL)
	assert.Equal(t, "http", cfg.Provider.Kind)
}

func TestLoadWithOverrides_AppliesNonZeroValuesOnly(t *testing.T) {
	tempDir := t.TempDir()
	oldWd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(tempDir))
	defer func() { _ = os.Chdir(oldWd) }()

	overrides := &config.Config{}
	overrides.Trace.Dir = "/var/run/traces"

	cfg, err := config.LoadWithOverrides(context.Background(), overrides)
	require.NoError(t, err)
	assert.Equal(t, "/var/run/traces", cfg.Trace.Dir)
	assert.Equal(t, "fixture", cfg.Provider.Kind)
}

func TestLoad_EnvironmentVariableOverridesDefaults(t *testing.T) {
	tempDir := t.TempDir()
	oldWd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(tempDir))
	defer func() { _ = os.Chdir(oldWd) }()

	t.Setenv("REASONKERNEL_TRACE_DIR", "/tmp/override-traces")

	cfg, err := config.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "/tmp/override-traces", cfg.Trace.Dir)
}
