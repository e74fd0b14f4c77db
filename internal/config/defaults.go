package config

import "time"

// DefaultConfig returns a new Config with sensible default values. These
// defaults are the base layer that config files and environment variables
// can override.
func DefaultConfig() *Config {
	return &Config{
		Engine: EngineConfig{
			// Version: embedded in every trace header; bump on deploy.
			Version: "1.0.0",

			// HashAlgorithm: pinned; see EngineConfig's doc comment.
			HashAlgorithm: "sha256",

			// DefaultMaxIterations: generous enough for most convergence
			// loops without risking an unbounded run.
			DefaultMaxIterations: 10,

			// StepTimeout: long enough for a structured-generation call
			// plus its own internal retries.
			StepTimeout: 2 * time.Minute,
		},
		Provider: ProviderConfig{
			// Kind: "fixture" keeps local runs and tests replay-safe with
			// no network dependency by default.
			Kind: "fixture",

			// MaxAttempts: matches RetryingProvider's own default so the
			// config and code don't silently disagree.
			MaxAttempts: 3,

			// PerCallTimeout: bounds a single provider call attempt.
			PerCallTimeout: 30 * time.Second,
		},
		Trace: TraceConfig{
			Dir: "./traces",
		},
		Idempotency: IdempotencyConfig{
			Addr: "localhost:6379",
			TTL:  24 * time.Hour,
		},
		TraceStore: TraceStoreConfig{
			MaxConns: 10,
		},
		HTTP: HTTPConfig{
			Addr:         ":8080",
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 2 * time.Minute,
		},
		Logging: LoggingConfig{
			Level:           "info",
			RedactSensitive: true,
		},
	}
}
