package config

import (
	"fmt"
	"os"
	"strings"
	"unicode/utf8"

	"gopkg.in/yaml.v3"

	"github.com/iliyamo/hotdesk/internal/model"
)

// DeskConfig is one entry of the desk inventory.
type DeskConfig struct {
	Name string `yaml:"name"`
}

// DesksConfig is the root of desks.yaml.
type DesksConfig struct {
	Desks []DeskConfig `yaml:"desks"`
}

// LoadDesksConfig reads and validates the desk inventory at path.
func LoadDesksConfig(path string) (*DesksConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read desks config: %w", err)
	}
	var cfg DesksConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse desks config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks names are present, fit the desks.name column and are
// unique.
func (c *DesksConfig) Validate() error {
	seen := make(map[string]bool, len(c.Desks))
	for i := range c.Desks {
		name := strings.TrimSpace(c.Desks[i].Name)
		if name == "" {
			return fmt.Errorf("desk #%d: name is required", i+1)
		}
		if utf8.RuneCountInString(name) > model.DeskNameMaxLen {
			return fmt.Errorf("desk %q: name longer than %d characters", name, model.DeskNameMaxLen)
		}
		if seen[name] {
			return fmt.Errorf("desk %q: duplicate name", name)
		}
		seen[name] = true
		c.Desks[i].Name = name
	}
	return nil
}

// Names returns the desk names in file order.
func (c *DesksConfig) Names() []string {
	out := make([]string, 0, len(c.Desks))
	for _, d := range c.Desks {
		out = append(out, d.Name)
	}
	return out
}
