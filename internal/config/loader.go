package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"studio/pkg/logging"

	"gopkg.in/yaml.v3"
)

const (
	userConfigDir  = ".config/studio"
	configFileName = "config.yaml"
)

// GetDefaultConfigPath returns ~/.config/studio.
func GetDefaultConfigPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine user config directory: %w", err)
	}
	return filepath.Join(homeDir, userConfigDir), nil
}

// LoadConfig loads config.yaml from the given directory on top of the
// defaults. A missing file is not an error. The result is validated.
func LoadConfig(configPath string) (StudioConfig, error) {
	configFilePath := filepath.Join(configPath, configFileName)
	config := GetDefaultConfig()

	data, err := os.ReadFile(configFilePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			logging.Info("ConfigLoader", "No config.yaml found at %s, using defaults", configFilePath)
			return config, nil
		}
		return StudioConfig{}, ConfigurationError{FilePath: configFilePath, Section: "config", Kind: ErrorKindIO, Message: err.Error()}
	}

	if err := yaml.Unmarshal(data, &config); err != nil {
		return StudioConfig{}, ConfigurationError{
			FilePath: configFilePath,
			Section:  "config",
			Kind:     ErrorKindParse,
			Message:  "malformed YAML",
			Details:  err.Error(),
			Hint:     "check indentation and key names against 'studio serve --help'",
		}
	}

	applyDefaults(&config)

	if errs := Validate(config, configFilePath); errs.HasErrors() {
		return StudioConfig{}, errs
	}

	logging.Info("ConfigLoader", "Loaded configuration from %s", configFilePath)
	return config, nil
}

// applyDefaults fills zero values that YAML may have cleared.
func applyDefaults(cfg *StudioConfig) {
	defaults := GetDefaultConfig()
	if cfg.Server.Host == "" {
		cfg.Server.Host = defaults.Server.Host
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = defaults.Server.Port
	}
	if cfg.Backend.URL == "" {
		cfg.Backend.URL = defaults.Backend.URL
	}
	if cfg.Backend.Timeout == 0 {
		cfg.Backend.Timeout = defaults.Backend.Timeout
	}
	if cfg.Auth.Storage == "" {
		cfg.Auth.Storage = defaults.Auth.Storage
	}
	if len(cfg.Localization.SupportedCultures) == 0 {
		cfg.Localization.SupportedCultures = defaults.Localization.SupportedCultures
	}
	if cfg.Localization.DefaultCulture == "" {
		cfg.Localization.DefaultCulture = cfg.Localization.SupportedCultures[0]
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = defaults.Logging.Format
	}
}
