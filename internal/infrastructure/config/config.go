package config

import (
	"fmt"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// Config is the application configuration, loaded from defaults, an
// optional YAML file, and REFUND_-prefixed environment variables, in that
// order of precedence.
type Config struct {
	Version     string `koanf:"version"`
	Environment string `koanf:"environment"`
	LogLevel    string `koanf:"log_level"`

	Engine  EngineConfig  `koanf:"engine"`
	Metrics MetricsConfig `koanf:"metrics"`
}

// EngineConfig tunes the compliance engine
type EngineConfig struct {
	// ParallelProviders evaluates rule providers concurrently. Violation
	// ordering stays provider-registration-stable either way.
	ParallelProviders bool `koanf:"parallel_providers"`

	// RuleFiles lists JSON rule documents loaded as additional providers
	// alongside the built-in rule set.
	RuleFiles []string `koanf:"rule_files"`
}

// MetricsConfig controls the Prometheus metrics listener
type MetricsConfig struct {
	Enabled bool   `koanf:"enabled"`
	Addr    string `koanf:"addr"`
}

// Load reads configuration with the given YAML file layered over built-in
// defaults and under environment variables. An empty path skips the file
// layer; a named file that is missing is an error. Environment variables
// use the REFUND_ prefix with "__" separating nesting levels, e.g.
// REFUND_ENGINE__PARALLEL_PROVIDERS=true.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	defaults := &Config{
		Version:     "dev",
		Environment: "development",
		LogLevel:    "info",
		Engine: EngineConfig{
			ParallelProviders: false,
		},
		Metrics: MetricsConfig{
			Enabled: false,
			Addr:    ":9090",
		},
	}
	if err := k.Load(structs.Provider(defaults, "koanf"), nil); err != nil {
		return nil, fmt.Errorf("loading defaults: %w", err)
	}

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("loading config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider("REFUND_", ".", func(s string) string {
		return strings.ReplaceAll(strings.ToLower(
			strings.TrimPrefix(s, "REFUND_")), "__", ".")
	}), nil); err != nil {
		return nil, fmt.Errorf("loading environment variables: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	return &cfg, nil
}
