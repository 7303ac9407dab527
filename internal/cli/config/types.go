// Package config provides configuration management for the EduMetric CLI.
package config

import "time"

// Config holds all CLI configuration options.
type Config struct {
	API          APIConfig   `koanf:"api"`
	OutputFormat string      `koanf:"output" validate:"oneof=auto text markdown json"`
	Verbose      bool        `koanf:"verbose"`
	UI           UIConfig    `koanf:"ui"`
	Alert        AlertConfig `koanf:"alert"`
	Batch        BatchConfig `koanf:"batch"`

	// ProjectRoot is the directory the config file was found in, or the
	// working directory when there is none.
	ProjectRoot string `koanf:"-" yaml:"-"`
}

// APIConfig locates the EduMetric server.
type APIConfig struct {
	BaseURL string        `koanf:"base_url" yaml:"base_url" validate:"required,url"`
	Timeout time.Duration `koanf:"timeout" yaml:"timeout" validate:"gt=0"`
}

// UIConfig holds configuration for the web dashboard.
type UIConfig struct {
	Port          int    `koanf:"port" yaml:"port" validate:"min=1,max=65535"`
	AutoOpen      bool   `koanf:"auto_open" yaml:"auto_open"`
	SessionSecret string `koanf:"session_secret" yaml:"session_secret,omitempty"`
	Username      string `koanf:"username" yaml:"username,omitempty"`
	PasswordHash  string `koanf:"password_hash" yaml:"password_hash,omitempty" validate:"required_with=Username"`
}

// AlertConfig controls mentor alerts.
type AlertConfig struct {
	MentorEmail string `koanf:"mentor_email" yaml:"mentor_email,omitempty" validate:"omitempty,email"`
	RulesFile   string `koanf:"rules_file" yaml:"rules_file,omitempty"`
}

// BatchConfig controls spreadsheet uploads.
type BatchConfig struct {
	Mode     string `koanf:"mode" yaml:"mode" validate:"oneof=normalize analytics"`
	WatchDir string `koanf:"watch_dir" yaml:"watch_dir,omitempty"`
}

// Default configuration values.
const (
	DefaultBaseURL   = "http://localhost:5000"
	DefaultTimeout   = 30 * time.Second
	DefaultOutput    = "auto" // Auto-detect: TTY=text, non-TTY=markdown
	DefaultUIPort    = 8765
	DefaultBatchMode = "normalize"
	DefaultWatchDir  = "inbox"
)

// Default returns the configuration used when nothing else is set.
func Default() *Config {
	return &Config{
		API:          APIConfig{BaseURL: DefaultBaseURL, Timeout: DefaultTimeout},
		OutputFormat: DefaultOutput,
		UI:           UIConfig{Port: DefaultUIPort, AutoOpen: true},
		Batch:        BatchConfig{Mode: DefaultBatchMode, WatchDir: DefaultWatchDir},
	}
}
