// Package config loads the prompt configuration passed through to the
// answering collaborator and recorded on run records.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/mohdibrahimai/HELMSMAN/internal/model"
)

// LoadPrompts reads a YAML prompt file. system_prompt defaults to the
// empty string and version to "unknown".
func LoadPrompts(path string) (model.PromptConfig, error) {
	var cfg model.PromptConfig
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read prompts %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse prompts %s: %w", path, err)
	}
	if cfg.Version == "" {
		cfg.Version = "unknown"
	}
	return cfg, nil
}
