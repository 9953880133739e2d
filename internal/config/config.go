// Package config loads the optional ledgerfold.yaml settings file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/ledgerfold-dev/ledgerfold/internal/rules"
)

// DefaultPath is where the settings file is looked for.
const DefaultPath = "ledgerfold.yaml"

// Config represents the top-level ledgerfold.yaml configuration.
type Config struct {
	Rules RulesConfig `yaml:"rules"`
	Merge MergeConfig `yaml:"merge"`
}

// RulesConfig controls the rule engine.
type RulesConfig struct {
	// StepBudget bounds rule evaluations per posting.
	StepBudget int `yaml:"step_budget"`
}

// MergeConfig controls the merge engine.
type MergeConfig struct {
	// WindowDays widens soft-match date equality to ± N days. Zero keeps
	// strict equality.
	WindowDays int `yaml:"window_days"`
}

// Default returns a Config with the built-in defaults.
func Default() *Config {
	return &Config{
		Rules: RulesConfig{StepBudget: rules.DefaultStepBudget},
	}
}

// Load reads a settings file from disk.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	return cfg, nil
}

// LoadOptional reads a settings file, returning defaults when the file
// does not exist.
func LoadOptional(path string) (*Config, error) {
	cfg, err := Load(path)
	if err != nil && errors.Is(err, fs.ErrNotExist) {
		return Default(), nil
	}
	return cfg, err
}

// Save writes a Config to a YAML file.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}
