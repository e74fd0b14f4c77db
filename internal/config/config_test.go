package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrz1836/reasonkernel/internal/config"
)

func TestDefaultConfig_PassesValidation(t *testing.T) {
	cfg := config.DefaultConfig()
	require.NoError(t, config.Validate(cfg))
	assert.Equal(t, "sha256", cfg.Engine.HashAlgorithm)
	assert.Equal(t, "fixture", cfg.Provider.Kind)
}

func TestValidate_RejectsNilConfig(t *testing.T) {
	err := config.Validate(nil)
	require.ErrorIs(t, err, config.ErrConfigNil)
}

func TestValidate_RejectsBadHashAlgorithm(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Engine.HashAlgorithm = "md5"
	err := config.Validate(cfg)
	require.ErrorIs(t, err, config.ErrConfigInvalidEngine)
}

func TestValidate_RequiresBaseURLForHTTPProvider(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Provider.Kind = "http"
	cfg.Provider.BaseURL = ""
	err := config.Validate(cfg)
	require.ErrorIs(t, err, config.ErrConfigInvalidProvider)
}

func TestValidate_RejectsEmptyTraceDir(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Trace.Dir = ""
	err := config.Validate(cfg)
	require.ErrorIs(t, err, config.ErrConfigInvalidTrace)
}
