package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v2"

	"cardgate/actuator"
	"cardgate/console"
	"cardgate/eeprom"
	"cardgate/presence"
	"cardgate/reader"
	"cardgate/registry"
)

// Config is the main configuration structure for cardgate.
type Config struct {
	// Persistent registry storage
	Store eeprom.Config `yaml:"store"`

	// Registry layout: "named" (25 labelled entries) or "bare" (40 identifiers)
	Layout   string `yaml:"layout"`
	Capacity int    `yaml:"capacity"` // overrides the layout's capacity when set

	// Reader configuration
	Reader reader.Config `yaml:"reader"`

	// Operator console; stdin/stdout unless a serial device is given
	Console console.Config `yaml:"console"`

	// Outputs energized while a registered card is present
	Indicator actuator.Config `yaml:"indicator"`
	Tone      actuator.Config `yaml:"tone"`

	// Presence timing
	Presence presence.Config `yaml:"presence"`

	// Framebuffer status display (requires -tags=screen)
	VideoEnabled bool   `yaml:"video_enabled"`
	VideoDevice  string `yaml:"video_device"`

	// Logging
	LogLevel string `yaml:"log_level"`
	LogFile  string `yaml:"log_file"`
}

// LoadConfig reads and validates the YAML configuration at path.
func LoadConfig(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer f.Close()

	var cfg Config
	if err := yaml.NewDecoder(f).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	cfg.applyDefaults()
	if _, err := cfg.RegistryLayout(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Store.Type == "" {
		c.Store.Type = "file"
	}
	if c.Store.Type == "file" && c.Store.Path == "" {
		c.Store.Path = "cardgate.store"
	}
	if c.Layout == "" {
		c.Layout = "named"
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
}

// RegistryLayout resolves the configured storage layout.
func (c *Config) RegistryLayout() (registry.Layout, error) {
	var l registry.Layout
	switch c.Layout {
	case "named":
		l = registry.NamedLayout
	case "bare":
		l = registry.BareLayout
	default:
		return l, fmt.Errorf("unknown layout %q (want named or bare)", c.Layout)
	}
	if c.Capacity != 0 {
		l.Capacity = c.Capacity
	}
	if err := l.Validate(); err != nil {
		return l, fmt.Errorf("layout: %w", err)
	}
	return l, nil
}
