// Package config loads and saves the sv configuration file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/kraitsura/segment_viewer/pkg/rowstate"
)

// DefaultPath is where sv looks for its config relative to the working directory.
var DefaultPath = filepath.Join(".sv", "config.yaml")

// Config is the on-disk configuration.
type Config struct {
	Mode       rowstate.GroupingMode `yaml:"mode"`
	Result     string                `yaml:"result,omitempty"`
	Watch      bool                  `yaml:"watch"`
	DebounceMS int                   `yaml:"debounce_ms"`
	Notes      NotesConfig           `yaml:"notes"`
}

// NotesConfig configures the segment notes database.
type NotesConfig struct {
	Driver string `yaml:"driver"` // "sqlite3" (cgo) or "sqlite" (pure Go)
	Path   string `yaml:"path"`
	Author string `yaml:"author,omitempty"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Mode:       rowstate.Combined,
		DebounceMS: 250,
		Notes: NotesConfig{
			Driver: "sqlite3",
			Path:   filepath.Join(".sv", "notes.db"),
		},
	}
}

// Debounce returns the watcher debounce window.
func (c Config) Debounce() time.Duration {
	return time.Duration(c.DebounceMS) * time.Millisecond
}

// Validate checks the configuration for impossible values.
func (c Config) Validate() error {
	if !c.Mode.IsValid() {
		return fmt.Errorf("invalid mode: %s", c.Mode)
	}
	if c.DebounceMS < 0 {
		return fmt.Errorf("debounce_ms cannot be negative: %d", c.DebounceMS)
	}
	switch c.Notes.Driver {
	case "sqlite3", "sqlite":
	default:
		return fmt.Errorf("unknown notes driver %q (want sqlite3 or sqlite)", c.Notes.Driver)
	}
	if c.Notes.Path == "" {
		return fmt.Errorf("notes path cannot be empty")
	}
	return nil
}

// Load reads the config at path over the defaults. A missing file yields
// the defaults.
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
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes cfg to path, creating the directory if needed.
func Save(path string, cfg Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}
