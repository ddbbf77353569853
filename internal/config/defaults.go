package config

import "time"

const (
	// DefaultServerPort is the console listen port.
	DefaultServerPort = 8080

	// DefaultBackendURL points at a locally running workflow engine.
	DefaultBackendURL = "https://localhost:5001/elsa/api"

	// DefaultBackendTimeout bounds every remote API call.
	DefaultBackendTimeout = 30 * time.Second

	// DefaultCulture is used when nothing else matches.
	DefaultCulture = "en-US"
)

// GetDefaultConfig returns the default configuration.
func GetDefaultConfig() StudioConfig {
	return StudioConfig{
		Server: ServerConfig{
			Host: "localhost",
			Port: DefaultServerPort,
		},
		Backend: BackendConfig{
			URL:     DefaultBackendURL,
			Timeout: DefaultBackendTimeout,
		},
		Auth: AuthConfig{
			Storage: TokenStorageSession,
		},
		Localization: LocalizationConfig{
			SupportedCultures: []string{DefaultCulture},
			DefaultCulture:    DefaultCulture,
		},
		Logging: LoggingConfig{
			Format: "text",
		},
	}
}
