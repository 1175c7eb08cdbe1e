// Package plcconfig loads the user-facing connection parameters the s7
// core itself never needs: host, rack/slot, timeouts, and PDU size hint.
// It stays scoped to one PLC family's connection fields rather than a
// multi-sink gateway config.
package plcconfig

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the top-level configuration file: a list of named PLC
// connections plus module-wide defaults.
type Config struct {
	DefaultTimeout time.Duration `yaml:"default_timeout"`
	PLCs           []PLC         `yaml:"plcs"`
}

// PLC holds the connection parameters for one S7 CPU.
type PLC struct {
	Name    string        `yaml:"name"`
	Host    string        `yaml:"host"`
	Rack    byte          `yaml:"rack"`
	Slot    byte          `yaml:"slot"`
	Timeout time.Duration `yaml:"timeout,omitempty"` // 0 = use Config.DefaultTimeout
	PDUHint uint16        `yaml:"pdu_hint,omitempty"` // 0 = use the module default (1920)

	Tags []TagSelection `yaml:"tags,omitempty"`
}

// TagSelection names one address to poll or write, with its S7 type.
type TagSelection struct {
	Name    string `yaml:"name"`
	Address string `yaml:"address"` // e.g. "DB9.DBW6", "MW10", "I0.0"
	Type    string `yaml:"type"`    // e.g. "WORD", "INT", "BOOL"
	Count   int    `yaml:"count,omitempty"`
}

// DefaultConfig returns a Config with the module-wide defaults filled
// in and no PLCs.
func DefaultConfig() *Config {
	return &Config{DefaultTimeout: 5 * time.Second}
}

// DefaultPath returns ~/.s7link/config.yaml, a dotfile-under-home
// convention for the module's config file.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "config.yaml"
	}
	return filepath.Join(home, ".s7link", "config.yaml")
}

// Load reads and parses the YAML file at path. A missing file is not an
// error: Load returns DefaultConfig().
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("plcconfig: read %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("plcconfig: parse %s: %w", path, err)
	}
	for i := range cfg.PLCs {
		if cfg.PLCs[i].Timeout == 0 {
			cfg.PLCs[i].Timeout = cfg.DefaultTimeout
		}
		if cfg.PLCs[i].PDUHint == 0 {
			cfg.PLCs[i].PDUHint = 1920
		}
	}
	return cfg, nil
}

// Find returns the PLC named name, or false if no such entry exists.
func (c *Config) Find(name string) (PLC, bool) {
	for _, p := range c.PLCs {
		if p.Name == name {
			return p, true
		}
	}
	return PLC{}, false
}

// Save marshals c to YAML and writes it to path, creating parent
// directories as needed.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("plcconfig: marshal: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("plcconfig: mkdir: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("plcconfig: write %s: %w", path, err)
	}
	return nil
}
