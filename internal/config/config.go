// Package config loads the photoid configuration file.
package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"photoid/internal/score"
)

// Config holds all photoid settings. Zero values fall back to defaults;
// CLI flags override file values.
type Config struct {
	// Photo folders to scan, recursively.
	Folders []string `yaml:"folders"`

	// Path substring filters applied during the catalog scan.
	Include []string `yaml:"include"`
	Exclude []string `yaml:"exclude"`

	// Quiz parameters.
	Questions int `yaml:"questions"`
	Choices   int `yaml:"choices"`

	// Score database path.
	Database string `yaml:"database"`

	// Default CSV export path for `photoid export`.
	Export string `yaml:"export"`
}

// Default returns the configuration used when no file is present.
func Default() Config {
	return Config{
		Questions: 20,
		Choices:   4,
		Database:  score.DefaultDBPath(),
	}
}

// Load reads the config file at path, layered over Default. A missing file
// is not an error; it yields the defaults.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	if cfg.Database == "" {
		cfg.Database = score.DefaultDBPath()
	}
	return cfg, cfg.Validate()
}

// Validate checks parameter ranges. Folder presence is checked by the
// catalog scan, not here; subcommands like stats need no folders.
func (c Config) Validate() error {
	if c.Questions < 0 {
		return fmt.Errorf("questions must not be negative, got %d", c.Questions)
	}
	if c.Choices < 2 {
		return fmt.Errorf("choices must be at least 2, got %d", c.Choices)
	}
	return nil
}
