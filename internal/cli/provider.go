package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/mrz1836/reasonkernel/internal/config"
	"github.com/mrz1836/reasonkernel/internal/provider"
)

// buildProvider constructs the configured model-provider collaborator,
// wrapped in a retrying decorator per cfg.Provider's attempt/timeout
// settings.
func buildProvider(cfg config.ProviderConfig) (provider.Provider, error) {
	var base provider.Provider

	switch cfg.Kind {
	case "fixture":
		fixtures, err := loadFixtures(cfg.FixturePath)
		if err != nil {
			return nil, err
		}
		base = provider.NewFixtureProvider(fixtures)
	case "http":
		base = provider.NewHTTPProvider(cfg.BaseURL, nil)
	default:
		return nil, fmt.Errorf("unsupported provider kind %q", cfg.Kind)
	}

	return provider.NewRetryingProvider(base,
		provider.WithMaxAttempts(cfg.MaxAttempts),
		provider.WithPerCallTimeout(cfg.PerCallTimeout),
	), nil
}

func loadFixtures(path string) ([]provider.Fixture, error) {
	if path == "" {
		return nil, nil
	}

	raw, err := os.ReadFile(path) //nolint:gosec // operator-supplied fixture path
	if err != nil {
		return nil, fmt.Errorf("read fixture file %s: %w", path, err)
	}

	var fixtures []provider.Fixture
	if err := json.Unmarshal(raw, &fixtures); err != nil {
		return nil, fmt.Errorf("parse fixture file %s: %w", path, err)
	}
	return fixtures, nil
}
