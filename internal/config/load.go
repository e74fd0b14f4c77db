package config

import (
	"context"
	stderrors "errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"

	"github.com/mrz1836/reasonkernel/internal/errors"
)

// Load reads configuration from all available sources with proper
// precedence. Configuration is loaded in the following order (highest
// precedence first):
//  1. Environment variables (REASONKERNEL_* prefix)
//  2. Project config (.reasonkernel/config.yaml)
//  3. Global config (~/.reasonkernel/config.yaml)
//  4. Built-in defaults
//
// For CLI flag overrides, use LoadWithOverrides instead.
//
// The function returns an error only for actual configuration problems,
// not for missing config files, which are expected in many deployments.
func Load(_ context.Context) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("REASONKERNEL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := loadGlobalConfig(v); err != nil {
		return nil, err
	}
	if err := loadProjectConfig(v); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg, viperDecoderOption()); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal config")
	}
	if err := Validate(&cfg); err != nil {
		return nil, errors.Wrap(err, "invalid configuration")
	}
	return &cfg, nil
}

// loadGlobalConfig attempts to load the global config file
// (~/.reasonkernel/config.yaml). Returns nil if the file doesn't exist or
// the home directory cannot be determined.
func loadGlobalConfig(v *viper.Viper) error {
	globalConfigPath, ok := getGlobalConfigPathIfExists()
	if !ok {
		return nil
	}

	v.SetConfigFile(globalConfigPath)
	if err := v.ReadInConfig(); err != nil {
		var configNotFoundErr viper.ConfigFileNotFoundError
		if !stderrors.As(err, &configNotFoundErr) {
			return errors.Wrap(err, "failed to read global config file")
		}
	}
	return nil
}

func getGlobalConfigPathIfExists() (string, bool) {
	globalDir, err := GlobalConfigDir()
	if err != nil {
		return "", false
	}

	globalConfigPath := filepath.Join(globalDir, "config.yaml")
	if _, err := os.Stat(globalConfigPath); err != nil {
		return "", false
	}
	return globalConfigPath, true
}

// loadProjectConfig attempts to load the project config file
// (.reasonkernel/config.yaml). Returns nil if the file doesn't exist.
func loadProjectConfig(v *viper.Viper) error {
	projectConfigPath := ProjectConfigPath()
	if !fileExists(projectConfigPath) {
		return nil
	}

	v.SetConfigFile(projectConfigPath)
	if err := v.MergeInConfig(); err != nil {
		var configNotFoundErr viper.ConfigFileNotFoundError
		if !stderrors.As(err, &configNotFoundErr) {
			return errors.Wrap(err, "failed to read project config file")
		}
	}
	return nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// LoadWithOverrides loads configuration and applies CLI flag overrides.
// Only non-zero values in overrides are applied, so partial overrides work.
func LoadWithOverrides(ctx context.Context, overrides *Config) (*Config, error) {
	cfg, err := Load(ctx)
	if err != nil {
		return nil, err
	}

	if overrides != nil {
		applyOverrides(cfg, overrides)
	}

	if err := Validate(cfg); err != nil {
		return nil, errors.Wrap(err, "invalid configuration after overrides")
	}
	return cfg, nil
}

// LoadFromPaths loads configuration from specific file paths, primarily for
// tests that want precise control over which config files are read.
func LoadFromPaths(_ context.Context, projectConfigPath, globalConfigPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("REASONKERNEL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if globalConfigPath != "" {
		v.SetConfigFile(globalConfigPath)
		if err := v.ReadInConfig(); err != nil {
			var configNotFoundErr viper.ConfigFileNotFoundError
			if !stderrors.As(err, &configNotFoundErr) && !os.IsNotExist(err) {
				return nil, errors.Wrapf(err, "failed to read global config: %s", globalConfigPath)
			}
		}
	}

	if projectConfigPath != "" {
		v.SetConfigFile(projectConfigPath)
		if err := v.MergeInConfig(); err != nil {
			var configNotFoundErr viper.ConfigFileNotFoundError
			if !stderrors.As(err, &configNotFoundErr) && !os.IsNotExist(err) {
				return nil, errors.Wrapf(err, "failed to read project config: %s", projectConfigPath)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg, viperDecoderOption()); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal config")
	}
	if err := Validate(&cfg); err != nil {
		return nil, errors.Wrap(err, "invalid configuration")
	}
	return &cfg, nil
}

// setDefaults configures all default values on the Viper instance. These
// must match DefaultConfig(); keys must match the YAML tag names exactly.
func setDefaults(v *viper.Viper) {
	v.SetDefault("engine.version", "1.0.0")
	v.SetDefault("engine.hash_algorithm", "sha256")
	v.SetDefault("engine.default_max_iterations", 10)
	v.SetDefault("engine.step_timeout", 2*time.Minute)

	v.SetDefault("provider.kind", "fixture")
	v.SetDefault("provider.max_attempts", 3)
	v.SetDefault("provider.per_call_timeout", 30*time.Second)

	v.SetDefault("trace.dir", "./traces")

	v.SetDefault("idempotency.addr", "localhost:6379")
	v.SetDefault("idempotency.ttl", 24*time.Hour)

	v.SetDefault("trace_store.max_conns", 10)

	v.SetDefault("http.addr", ":8080")
	v.SetDefault("http.read_timeout", 15*time.Second)
	v.SetDefault("http.write_timeout", 2*time.Minute)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.redact_sensitive", true)
}

// applyOverrides merges non-zero override values into the config. Boolean
// fields cannot be overridden to false this way, since Go's zero value for
// bool is false and indistinguishable from "not set"; CLI callers should
// use cmd.Flags().Changed(...) and assign directly for those.
func applyOverrides(cfg, overrides *Config) {
	if overrides.Engine.Version != "" {
		cfg.Engine.Version = overrides.Engine.Version
	}
	if overrides.Engine.DefaultMaxIterations != 0 {
		cfg.Engine.DefaultMaxIterations = overrides.Engine.DefaultMaxIterations
	}
	if overrides.Engine.StepTimeout != 0 {
		cfg.Engine.StepTimeout = overrides.Engine.StepTimeout
	}

	if overrides.Provider.Kind != "" {
		cfg.Provider.Kind = overrides.Provider.Kind
	}
	if overrides.Provider.FixturePath != "" {
		cfg.Provider.FixturePath = overrides.Provider.FixturePath
	}
	if overrides.Provider.BaseURL != "" {
		cfg.Provider.BaseURL = overrides.Provider.BaseURL
	}
	if overrides.Provider.MaxAttempts != 0 {
		cfg.Provider.MaxAttempts = overrides.Provider.MaxAttempts
	}
	if overrides.Provider.PerCallTimeout != 0 {
		cfg.Provider.PerCallTimeout = overrides.Provider.PerCallTimeout
	}

	if overrides.Trace.Dir != "" {
		cfg.Trace.Dir = overrides.Trace.Dir
	}

	if overrides.Idempotency.Addr != "" {
		cfg.Idempotency.Addr = overrides.Idempotency.Addr
	}
	if overrides.Idempotency.TTL != 0 {
		cfg.Idempotency.TTL = overrides.Idempotency.TTL
	}

	if overrides.TraceStore.DSN != "" {
		cfg.TraceStore.DSN = overrides.TraceStore.DSN
	}
	if overrides.TraceStore.MaxConns != 0 {
		cfg.TraceStore.MaxConns = overrides.TraceStore.MaxConns
	}

	if overrides.HTTP.Addr != "" {
		cfg.HTTP.Addr = overrides.HTTP.Addr
	}
	if overrides.HTTP.ReadTimeout != 0 {
		cfg.HTTP.ReadTimeout = overrides.HTTP.ReadTimeout
	}
	if overrides.HTTP.WriteTimeout != 0 {
		cfg.HTTP.WriteTimeout = overrides.HTTP.WriteTimeout
	}

	if overrides.Logging.Level != "" {
		cfg.Logging.Level = overrides.Logging.Level
	}
}

// viperDecoderOption configures mapstructure to decode time.Duration values
// from their string form (e.g. "30s") in YAML and environment variables.
func viperDecoderOption() viper.DecoderConfigOption {
	return viper.DecodeHook(
		mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
		),
	)
}
