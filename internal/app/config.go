package app

import (
	"studio/internal/config"
)

// Config holds the settings `studio serve` was started with.
type Config struct {
	// Debug enables debug logging.
	Debug bool

	// Silent discards log output, used by tests.
	Silent bool

	// ConfigPath is the directory holding config.yaml and environments.yaml.
	ConfigPath string

	// Backend and Environment override the initial backend selection.
	Backend     string
	Environment string

	// Host and Port override server.host and server.port when set.
	Host string
	Port int

	// StudioConfig is filled in during bootstrap.
	StudioConfig *config.StudioConfig
}

// NewConfig creates a new application configuration.
func NewConfig(debug bool, configPath string) *Config {
	return &Config{
		Debug:      debug,
		ConfigPath: configPath,
	}
}
