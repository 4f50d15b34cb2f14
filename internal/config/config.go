package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config represents the top-level curdbook.yaml configuration.
type Config struct {
	Business BusinessConfig `yaml:"business"`
	Remote   RemoteConfig   `yaml:"remote"`
	Defaults DefaultsConfig `yaml:"defaults"`
}

// BusinessConfig identifies the business entity.
type BusinessConfig struct {
	Name string `yaml:"name"`
}

// RemoteConfig points at the persistence collaborator.
type RemoteConfig struct {
	BaseURL        string `yaml:"base_url"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// DefaultsConfig holds operator-tunable defaults.
type DefaultsConfig struct {
	Currency         string  `yaml:"currency"`
	OverheadFraction float64 `yaml:"overhead_fraction"`
	ProjectionMonths int     `yaml:"projection_months"`
}

// Load reads a curdbook.yaml file from disk.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return &cfg, nil
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

// Default returns a Config with sensible defaults for a new data
// directory.
func Default(businessName string) *Config {
	return &Config{
		Business: BusinessConfig{
			Name: businessName,
		},
		Remote: RemoteConfig{
			TimeoutSeconds: 15,
		},
		Defaults: DefaultsConfig{
			Currency:         "EUR",
			OverheadFraction: 0.30,
			ProjectionMonths: 6,
		},
	}
}
