package config

import "time"

// StudioConfig is the top-level configuration structure for studio.
type StudioConfig struct {
	Server       ServerConfig       `yaml:"server"`
	Backend      BackendConfig      `yaml:"backend"`
	Auth         AuthConfig         `yaml:"auth"`
	Localization LocalizationConfig `yaml:"localization"`
	Logging      LoggingConfig      `yaml:"logging"`
}

// ServerConfig controls the console HTTP listener.
type ServerConfig struct {
	Host string `yaml:"host,omitempty"` // Host to bind to (default: localhost)
	Port int    `yaml:"port,omitempty"` // Port to listen on (default: 8080)
}

// BackendConfig describes the primary workflow engine endpoint. It is used
// when no named environment is selected.
type BackendConfig struct {
	URL     string        `yaml:"url,omitempty"`
	Timeout time.Duration `yaml:"timeout,omitempty"`
}

// TokenStorageKind selects the token storage variant.
type TokenStorageKind string

const (
	// TokenStorageFile persists tokens in a per-user file, the local
	// storage analogue used by the CLI and single-user setups.
	TokenStorageFile TokenStorageKind = "file"
	// TokenStorageSession keeps tokens server-side per browser session.
	TokenStorageSession TokenStorageKind = "session"
)

// AuthConfig controls where bearer tokens live.
type AuthConfig struct {
	Storage  TokenStorageKind `yaml:"storage,omitempty"`
	TokenDir string           `yaml:"tokenDir,omitempty"` // Defaults to ~/.config/studio/tokens
}

// LocalizationConfig lists the cultures the console can render.
type LocalizationConfig struct {
	SupportedCultures []string `yaml:"supportedCultures,omitempty"`
	DefaultCulture    string   `yaml:"defaultCulture,omitempty"`
}

// LoggingConfig selects the log output format (text or json).
type LoggingConfig struct {
	Format string `yaml:"format,omitempty"`
}
