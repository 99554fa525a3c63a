package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is looked up in the working directory.
const DefaultConfigFile = AppName + ".yaml"

// ErrConfigNotFound is returned when an explicitly given config file does not exist.
var ErrConfigNotFound = errors.New("configuration file not found")

// LoadFile reads a YAML file on top of the defaults. Keys absent from
// the file keep their default values.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path) //nolint:gosec // user-provided config path is intentional
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, path)
		}
		return nil, err
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

// FindConfigFile searches for a config file in the following order:
//  1. configPath, if given (returned even when missing so the caller reports it)
//  2. marketetl.yaml in the working directory
//  3. config.yaml in the XDG config directory
//
// It returns "" when nothing is found.
func FindConfigFile(configPath string) string {
	if configPath != "" {
		return configPath
	}

	if cwd, err := os.Getwd(); err == nil {
		p := filepath.Join(cwd, DefaultConfigFile)
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}

	p := filepath.Join(XDGConfigDir(), "config.yaml")
	if _, err := os.Stat(p); err == nil {
		return p
	}
	return ""
}

// Load resolves the config file (see FindConfigFile) and loads it, falling
// back to Default when there is none. The result is validated.
func Load(configPath string) (*Config, error) {
	cfg := Default()
	if path := FindConfigFile(configPath); path != "" {
		var err error
		if cfg, err = LoadFile(path); err != nil {
			return nil, err
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
