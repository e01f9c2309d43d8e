package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Defaults for Settings fields left unset.
const (
	DefaultPause       = 50 * time.Millisecond
	DefaultToolTimeout = 10 * time.Minute
)

// Settings is the optional user configuration file.
type Settings struct {
	LogLevel    string        `yaml:"log_level"`
	LogFile     string        `yaml:"log_file"`
	Enabled     []string      `yaml:"enabled"`
	Protected   []string      `yaml:"protected"`
	Pause       time.Duration `yaml:"pause"`
	ToolTimeout time.Duration `yaml:"tool_timeout"`
}

// DefaultSettings returns the settings used when no file exists.
func DefaultSettings() Settings {
	return Settings{
		LogLevel:    "info",
		Pause:       DefaultPause,
		ToolTimeout: DefaultToolTimeout,
	}
}

// SettingsPaths returns candidate config file locations in lookup order.
func SettingsPaths(home string) []string {
	var paths []string
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		paths = append(paths, filepath.Join(xdg, "tuxmole", "config.yaml"))
	}
	if home != "" {
		paths = append(paths, filepath.Join(home, ".config", "tuxmole", "config.yaml"))
	}
	return paths
}

// LoadSettings reads explicit when set, otherwise the first existing file
// from SettingsPaths. No file at all yields DefaultSettings.
func LoadSettings(explicit, home string) (Settings, error) {
	if explicit != "" {
		return loadSettingsFile(explicit)
	}
	for _, candidate := range SettingsPaths(home) {
		if _, err := os.Stat(candidate); err == nil {
			return loadSettingsFile(candidate)
		}
	}
	return DefaultSettings(), nil
}

func loadSettingsFile(path string) (Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Settings{}, fmt.Errorf("read config %s: %w", path, err)
	}

	cfg := DefaultSettings()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Settings{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Settings{}, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate rejects out-of-range values and fills zero durations with defaults.
func (s *Settings) Validate() error {
	if s.Pause < 0 {
		return errors.New("pause must be >= 0")
	}
	if s.ToolTimeout < 0 {
		return errors.New("tool_timeout must be >= 0")
	}
	if s.ToolTimeout == 0 {
		s.ToolTimeout = DefaultToolTimeout
	}
	return nil
}

// UnknownIDs returns entries of Enabled that the catalog does not know.
func (s Settings) UnknownIDs(c *Catalog) []string {
	var unknown []string
	for _, id := range s.Enabled {
		if _, ok := c.Lookup(id); !ok {
			unknown = append(unknown, id)
		}
	}
	return unknown
}
