package config

import (
	"errors"
	"fmt"
	"time"
)

// Sentinel errors for configuration validation failures.
var (
	ErrConfigNil             = errors.New("config is nil")
	ErrConfigInvalidEngine   = errors.New("invalid engine config")
	ErrConfigInvalidProvider = errors.New("invalid provider config")
	ErrConfigInvalidTrace    = errors.New("invalid trace config")
)

// MinStepTimeout and MaxStepTimeout bound engine.step_timeout.
const (
	MinStepTimeout = 1 * time.Second
	MaxStepTimeout = 30 * time.Minute
)

// Validate checks the configuration for invalid or inconsistent values. It
// returns an error describing the first validation failure found.
func Validate(cfg *Config) error {
	if cfg == nil {
		return ErrConfigNil
	}

	if err := validateEngineConfig(&cfg.Engine); err != nil {
		return fmt.Errorf("validate engine config: %w", err)
	}
	if err := validateProviderConfig(&cfg.Provider); err != nil {
		return fmt.Errorf("validate provider config: %w", err)
	}
	if err := validateTraceConfig(&cfg.Trace); err != nil {
		return fmt.Errorf("validate trace config: %w", err)
	}

	return nil
}

func validateEngineConfig(cfg *EngineConfig) error {
	if cfg.Version == "" {
		return fmt.Errorf("%w: engine.version must not be empty", ErrConfigInvalidEngine)
	}
	if cfg.HashAlgorithm != "sha256" {
		return fmt.Errorf("%w: engine.hash_algorithm must be %q, got %q", ErrConfigInvalidEngine, "sha256", cfg.HashAlgorithm)
	}
	if cfg.DefaultMaxIterations < 1 {
		return fmt.Errorf("%w: engine.default_max_iterations must be at least 1, got %d", ErrConfigInvalidEngine, cfg.DefaultMaxIterations)
	}
	if cfg.StepTimeout < MinStepTimeout || cfg.StepTimeout > MaxStepTimeout {
		return fmt.Errorf("%w: engine.step_timeout must be between %s and %s, got %s",
			ErrConfigInvalidEngine, MinStepTimeout, MaxStepTimeout, cfg.StepTimeout)
	}
	return nil
}

func validateProviderConfig(cfg *ProviderConfig) error {
	switch cfg.Kind {
	case "fixture", "http":
	default:
		return fmt.Errorf("%w: provider.kind must be %q or %q, got %q", ErrConfigInvalidProvider, "fixture", "http", cfg.Kind)
	}
	if cfg.Kind == "http" && cfg.BaseURL == "" {
		return fmt.Errorf("%w: provider.base_url is required when provider.kind is %q", ErrConfigInvalidProvider, "http")
	}
	if cfg.MaxAttempts < 1 {
		return fmt.Errorf("%w: provider.max_attempts must be at least 1, got %d", ErrConfigInvalidProvider, cfg.MaxAttempts)
	}
	if cfg.PerCallTimeout <= 0 {
		return fmt.Errorf("%w: provider.per_call_timeout must be positive, got %s", ErrConfigInvalidProvider, cfg.PerCallTimeout)
	}
	return nil
}

func validateTraceConfig(cfg *TraceConfig) error {
	if cfg.Dir == "" {
		return fmt.Errorf("%w: trace.dir must not be empty", ErrConfigInvalidTrace)
	}
	return nil
}
