package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	yamlv3 "gopkg.in/yaml.v3"
)

// FileName is the default configuration file in the working directory.
const FileName = ".doxnav.yml"

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Site:           "html",
		StatePath:      ".doxnav/state.db",
		Persist:        true,
		RevealDuration: 200 * time.Millisecond,
		RowHeight:      22,
		ViewportHeight: 600,
		LogLevel:       LogInfo,
		Server: ServerConfig{
			Port: 8080,
		},
	}
}

// Load reads configuration from the given YAML file, then overlays
// environment variable overrides (DOXNAV_*). A double underscore selects a
// nested key: DOXNAV_SERVER__PORT -> server.port.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	cfg := DefaultConfig()

	if _, err := os.Stat(path); err == nil {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("accessing config %s: %w", path, err)
	}

	if err := k.Load(env.Provider("DOXNAV_", ".", func(s string) string {
		s = strings.ToLower(strings.TrimPrefix(s, "DOXNAV_"))
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, fmt.Errorf("loading env overrides: %w", err)
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	return cfg, nil
}

// Save writes the configuration to the given YAML file path.
func (c *Config) Save(path string) error {
	data, err := yamlv3.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshalling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}

var validLogLevels = map[LogLevel]bool{
	LogDebug: true,
	LogInfo:  true,
	LogWarn:  true,
	LogError: true,
}

// Validate checks that the configuration contains valid values.
func (c *Config) Validate() error {
	if c.Site == "" {
		return fmt.Errorf("site is required")
	}
	if c.Relpath != "" && !strings.HasSuffix(c.Relpath, "/") {
		return fmt.Errorf("relpath %q must end with '/'", c.Relpath)
	}
	if c.Persist && c.StatePath == "" {
		return fmt.Errorf("state_path is required when persist is enabled")
	}
	if c.RevealDuration < 0 {
		return fmt.Errorf("reveal_duration must be non-negative")
	}
	if c.RowHeight <= 0 {
		return fmt.Errorf("row_height must be positive")
	}
	if c.ViewportHeight <= 0 {
		return fmt.Errorf("viewport_height must be positive")
	}
	if c.LogLevel != "" && !validLogLevels[c.LogLevel] {
		return fmt.Errorf("invalid log_level %q: must be one of debug, info, warn, error", c.LogLevel)
	}
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d out of range", c.Server.Port)
	}
	return nil
}

// IsRemote reports whether Site is served over HTTP rather than read from disk.
func (c *Config) IsRemote() bool {
	return strings.HasPrefix(c.Site, "http://") || strings.HasPrefix(c.Site, "https://")
}
