package model

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// LoadScoringConfig reads a rule tuning from a YAML file. The file must be a
// complete tuning: weight entries for all five rules and positive threshold
// parameters. Partial files are rejected so a typo'd rule name cannot
// silently fall back to a default weight.
func LoadScoringConfig(path string) (ScoringConfig, error) {
	var cfg ScoringConfig

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read tuning file: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, &ConfigurationError{Reason: fmt.Sprintf("parse %s: %v", path, err)}
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}
