package config

import (
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Tempo bounds, matching the sequencer's
const (
	minTempo     = 40.0
	maxTempo     = 240.0
	defaultTempo = 120.0
)

// PortConfig selects a MIDI port by case-insensitive substring of its
// name. Empty means the first port found.
type PortConfig struct {
	PortName string `json:"portName,omitempty" yaml:"portName,omitempty"`
}

// Config is the main configuration structure
type Config struct {
	Output       PortConfig `json:"output" yaml:"output"`
	Input        PortConfig `json:"input" yaml:"input"`
	StatePath    string     `json:"statePath,omitempty" yaml:"statePath,omitempty"`
	Debug        bool       `json:"debug,omitempty" yaml:"debug,omitempty"`
	DefaultTempo float64    `json:"defaultTempo,omitempty" yaml:"defaultTempo,omitempty"`
	Palette      string     `json:"palette,omitempty" yaml:"palette,omitempty"` // GIMP .gpl file
}

// DefaultConfig returns a config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Input:        PortConfig{PortName: "LPD8"},
		DefaultTempo: defaultTempo,
	}
}

// ConfigDir returns the config directory path
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "go-arp"), nil
}

// ConfigPath returns the config file to use: config.yaml if present,
// otherwise config.json
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	for _, name := range []string{"config.yaml", "config.yml"} {
		p := filepath.Join(dir, name)
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
	}
	return filepath.Join(dir, "config.json"), nil
}

// Load reads the config from disk, or returns defaults if not found
func Load() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return DefaultConfig(), nil
	}
	return LoadFrom(path)
}

// LoadFrom reads the config at path. The format follows the extension:
// .yaml/.yml is YAML, anything else JSON.
func LoadFrom(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, err
	}

	cfg := DefaultConfig()
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, cfg)
	default:
		err = json.Unmarshal(data, cfg)
	}
	if err != nil {
		return nil, err
	}

	cfg.Normalize()
	return cfg, nil
}

// Normalize clamps values into range
func (c *Config) Normalize() {
	if c.DefaultTempo == 0 || math.IsNaN(c.DefaultTempo) {
		c.DefaultTempo = defaultTempo
	}
	c.DefaultTempo = max(minTempo, min(maxTempo, c.DefaultTempo))
}

// Save writes the config to disk as config.json
func (c *Config) Save() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}
	return c.SaveTo(filepath.Join(dir, "config.json"))
}

// SaveTo writes the config to path as JSON
func (c *Config) SaveTo(path string) error {
	// Create directory if it doesn't exist
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}
