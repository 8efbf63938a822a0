package config

import "time"

// LogLevel is a zap level name.
type LogLevel string

const (
	LogDebug LogLevel = "debug"
	LogInfo  LogLevel = "info"
	LogWarn  LogLevel = "warn"
	LogError LogLevel = "error"
)

// Config is the top-level doxnav configuration, corresponding to .doxnav.yml.
type Config struct {
	// Site is the generated documentation: a local HTML output directory or
	// an http(s) base URL.
	Site           string        `yaml:"site" koanf:"site"`
	Relpath        string        `yaml:"relpath" koanf:"relpath"`
	RootDocument   string        `yaml:"root_document" koanf:"root_document"`
	StatePath      string        `yaml:"state_path" koanf:"state_path"`
	Persist        bool          `yaml:"persist" koanf:"persist"`
	RevealDuration time.Duration `yaml:"reveal_duration" koanf:"reveal_duration"`
	RowHeight      int           `yaml:"row_height" koanf:"row_height"`
	ViewportHeight int           `yaml:"viewport_height" koanf:"viewport_height"`
	LogLevel       LogLevel      `yaml:"log_level" koanf:"log_level"`
	Server         ServerConfig  `yaml:"server" koanf:"server"`
}

// ServerConfig holds settings for the HTTP server.
type ServerConfig struct {
	Port     int  `yaml:"port" koanf:"port"`
	AllowAll bool `yaml:"allow_all" koanf:"allow_all"` // CORS for any origin
}
