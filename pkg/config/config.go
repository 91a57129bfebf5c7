// Package config loads declarative middleware configuration from YAML files.
// The file form mirrors the in-code kernel.MiddlewareConfig list, with refs
// restricted to registered names and import-path strings.
package config

import (
	"fmt"
	"os"

	"github.com/Suhaibinator/SKernel/pkg/kernel"
	"gopkg.in/yaml.v3"
)

// MiddlewareEntry is one middleware in a configuration file.
type MiddlewareEntry struct {
	Ref    string         `yaml:"ref"`
	Name   string         `yaml:"name,omitempty"`
	Groups []string       `yaml:"groups,omitempty"`
	Args   map[string]any `yaml:"args,omitempty"`
}

// Config is the top-level middleware configuration.
type Config struct {
	Middlewares []MiddlewareEntry `yaml:"middlewares"`
}

// Load reads a YAML config file and parses it into a Config. Refs are
// checked for presence only; unknown refs surface at registration time.
func Load(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", filename, err)
	}
	return cfg, nil
}

// Parse parses YAML configuration bytes.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	for i, entry := range cfg.Middlewares {
		if entry.Ref == "" {
			return nil, fmt.Errorf("middleware entry %d: missing ref", i)
		}
	}
	return &cfg, nil
}

// MiddlewareConfigs converts the file entries into kernel configuration.
func (c *Config) MiddlewareConfigs() []kernel.MiddlewareConfig {
	configs := make([]kernel.MiddlewareConfig, 0, len(c.Middlewares))
	for _, entry := range c.Middlewares {
		configs = append(configs, kernel.MiddlewareConfig{
			Ref:    entry.Ref,
			Name:   entry.Name,
			Groups: entry.Groups,
			Args:   entry.Args,
		})
	}
	return configs
}
