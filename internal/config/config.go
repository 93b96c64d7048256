// Package config loads the optional YAML configuration file carrying
// per-command defaults for flags like --skip-invalid and --gzip.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Global holds defaults applying to every command.
type Global struct {
	SkipInvalid bool `yaml:"skip-invalid"`
	// Translit is read from the file, but no command applies it; the
	// normalization form comes from the --translit flag only.
	Translit string `yaml:"translit"`
}

// Command holds per-command defaults; unset values fall back to the
// global section.
type Command struct {
	SkipInvalid *bool   `yaml:"skip-invalid"`
	Gzip        *bool   `yaml:"gzip"`
	Template    *string `yaml:"template"`
}

// Config is the root of the configuration file.
type Config struct {
	Global    Global  `yaml:"global"`
	Cat       Command `yaml:"cat"`
	Convert   Command `yaml:"convert"`
	Count     Command `yaml:"count"`
	Filter    Command `yaml:"filter"`
	Frequency Command `yaml:"frequency"`
	Hash      Command `yaml:"hash"`
	Partition Command `yaml:"partition"`
	Print     Command `yaml:"print"`
	Sample    Command `yaml:"sample"`
	Select    Command `yaml:"select"`
	Slice     Command `yaml:"slice"`
	Split     Command `yaml:"split"`
}

// Load reads the configuration from path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return &cfg, nil
}

// Discover loads the configuration from its default location
// ($XDG_CONFIG_HOME/pica/config.yml or ~/.config/pica/config.yml). A
// missing file yields an empty configuration.
func Discover() (*Config, error) {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return &Config{}, nil
		}
		dir = filepath.Join(home, ".config")
	}

	cfg, err := Load(filepath.Join(dir, "pica", "config.yml"))
	if errors.Is(err, os.ErrNotExist) {
		return &Config{}, nil
	}
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

// SkipInvalid resolves the effective --skip-invalid default for a
// command: flag, then command section, then global section.
func (c *Config) SkipInvalid(flag bool, cmd Command) bool {
	if flag {
		return true
	}
	if cmd.SkipInvalid != nil {
		return *cmd.SkipInvalid
	}
	return c.Global.SkipInvalid
}

// Gzip resolves the effective --gzip default for a command.
func (c *Config) Gzip(flag bool, cmd Command) bool {
	if flag {
		return true
	}
	if cmd.Gzip != nil {
		return *cmd.Gzip
	}
	return false
}

// Template resolves a partition or split filename template.
func (c *Config) Template(flag string, cmd Command, fallback string) string {
	if flag != "" {
		return flag
	}
	if cmd.Template != nil {
		return *cmd.Template
	}
	return fallback
}
