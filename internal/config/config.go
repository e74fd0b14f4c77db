// Package config provides configuration management for the reasoning
// kernel with layered precedence.
//
// Configuration sources are loaded in the following order (highest
// precedence first):
//  1. CLI flags (passed via LoadWithOverrides)
//  2. Environment variables (REASONKERNEL_* prefix)
//  3. Project config (.reasonkernel/config.yaml)
//  4. Global config (~/.reasonkernel/config.yaml)
//  5. Built-in defaults
//
// Each higher level completely overrides the lower level for the same key.
//
// IMPORTANT: This package may import internal/constants and internal/errors,
// but MUST NOT import internal/domain or other internal packages.
package config

import "time"

// Config is the root configuration structure for the reasoning kernel's
// process-level settings: everything that is not itself part of a
// ProblemSpec, which travels with the request rather than the deployment.
type Config struct {
	// Engine controls engine-wide invariants and the defaults applied when
	// a ProblemSpec leaves a field unset.
	Engine EngineConfig `yaml:"engine" mapstructure:"engine"`

	// Provider configures the model-provider collaborator adapter.
	Provider ProviderConfig `yaml:"provider" mapstructure:"provider"`

	// Trace configures the trace writer's sink.
	Trace TraceConfig `yaml:"trace" mapstructure:"trace"`

	// Idempotency configures the Redis-backed idempotency cache adapter.
	Idempotency IdempotencyConfig `yaml:"idempotency" mapstructure:"idempotency"`

	// TraceStore configures the Postgres-backed trace persistence adapter.
	TraceStore TraceStoreConfig `yaml:"trace_store" mapstructure:"trace_store"`

	// HTTP configures the HTTP execution surface adapter.
	HTTP HTTPConfig `yaml:"http" mapstructure:"http"`

	// Logging configures structured logging and secret redaction.
	Logging LoggingConfig `yaml:"logging" mapstructure:"logging"`
}

// EngineConfig controls engine-wide invariants and defaults.
type EngineConfig struct {
	// Version is the engine's own semver, embedded in every trace header.
	// Default: "1.0.0"
	Version string `yaml:"version" mapstructure:"version"`

	// HashAlgorithm is pinned to "sha256" (per the canonicalization
	// contract); exposed here only so a future algorithm migration has a
	// single declared knob, not because any other value is accepted today.
	HashAlgorithm string `yaml:"hash_algorithm" mapstructure:"hash_algorithm"`

	// DefaultMaxIterations seeds settings.loop.max_iterations when a
	// ProblemSpec enables looping but omits it.
	// Default: 10
	DefaultMaxIterations int `yaml:"default_max_iterations" mapstructure:"default_max_iterations"`

	// StepTimeout bounds how long the runner waits on a single step
	// invocation, including any collaborator calls it makes, before
	// treating it as a collaborator_timeout failure.
	// Default: 2 minutes
	StepTimeout time.Duration `yaml:"step_timeout" mapstructure:"step_timeout"`
}

// ProviderConfig configures the model-provider collaborator adapter.
type ProviderConfig struct {
	// Kind selects the provider implementation: "fixture" (replay-safe, no
	// network) or "http" (a live oracle behind the model-provider interface).
	// Default: "fixture"
	Kind string `yaml:"kind" mapstructure:"kind"`

	// FixturePath is the path to a JSON fixture file when Kind == "fixture".
	FixturePath string `yaml:"fixture_path,omitempty" mapstructure:"fixture_path"`

	// BaseURL is the live provider's endpoint when Kind == "http".
	BaseURL string `yaml:"base_url,omitempty" mapstructure:"base_url"`

	// MaxAttempts bounds the retrying provider's retry loop.
	// Default: 3
	MaxAttempts int `yaml:"max_attempts" mapstructure:"max_attempts"`

	// PerCallTimeout bounds a single provider call attempt.
	// Default: 30 seconds
	PerCallTimeout time.Duration `yaml:"per_call_timeout" mapstructure:"per_call_timeout"`
}

// TraceConfig configures where the trace writer appends NDJSON records.
type TraceConfig struct {
	// Dir is the directory trace files are written into.
	// Default: "./traces"
	Dir string `yaml:"dir" mapstructure:"dir"`
}

// IdempotencyConfig configures the Redis-backed idempotency cache adapter.
type IdempotencyConfig struct {
	// Addr is the Redis address, e.g. "localhost:6379".
	Addr string `yaml:"addr" mapstructure:"addr"`

	// TTL is how long a cached response is honored before a re-execution
	// with the same idempotency key is required to recompute it.
	// Default: 24 hours
	TTL time.Duration `yaml:"ttl" mapstructure:"ttl"`
}

// TraceStoreConfig configures the relational persistence adapter backed by
// Postgres.
type TraceStoreConfig struct {
	// DSN is the Postgres connection string.
	DSN string `yaml:"dsn" mapstructure:"dsn"`

	// MaxConns bounds the connection pool size.
	// Default: 10
	MaxConns int `yaml:"max_conns" mapstructure:"max_conns"`
}

// HTTPConfig configures the HTTP execution surface adapter.
type HTTPConfig struct {
	// Addr is the listen address, e.g. ":8080".
	Addr string `yaml:"addr" mapstructure:"addr"`

	// ReadTimeout bounds request read time.
	// Default: 15 seconds
	ReadTimeout time.Duration `yaml:"read_timeout" mapstructure:"read_timeout"`

	// WriteTimeout bounds response write time.
	// Default: 2 minutes
	WriteTimeout time.Duration `yaml:"write_timeout" mapstructure:"write_timeout"`
}

// LoggingConfig configures structured logging.
type LoggingConfig struct {
	// Level is the minimum zerolog level emitted, e.g. "info", "debug".
	// Default: "info"
	Level string `yaml:"level" mapstructure:"level"`

	// RedactSensitive enables the secret-redaction writer hook.
	// Default: true
	RedactSensitive bool `yaml:"redact_sensitive" mapstructure:"redact_sensitive"`
}
