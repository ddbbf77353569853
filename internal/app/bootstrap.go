package app

import (
	"context"
	"fmt"
	"io"
	"os"

	"studio/internal/config"
	"studio/pkg/logging"
)

// Application bootstraps and runs the console server.
//
// Bootstrap happens in NewApplication: load configuration, configure
// logging, build services. Run then initializes the feature modules and
// serves until the context is cancelled or a signal arrives.
type Application struct {
	config   *Config
	services *Services
}

// NewApplication loads configuration and wires the services. No module is
// initialized and no port is opened yet.
func NewApplication(cfg *Config) (*Application, error) {
	level := logging.LevelInfo
	if cfg.Debug {
		level = logging.LevelDebug
	}
	var logOutput io.Writer = os.Stderr
	if cfg.Silent {
		logOutput = io.Discard
	}
	logging.InitForCLI(level, logOutput)

	studioCfg, err := config.LoadConfig(cfg.ConfigPath)
	if err != nil {
		logging.Error("Bootstrap", err, "Failed to load configuration from %s", cfg.ConfigPath)
		return nil, fmt.Errorf("failed to load configuration from %s: %w", cfg.ConfigPath, err)
	}
	cfg.StudioConfig = &studioCfg

	// Switch to the configured format now that it is known.
	logging.Init(logging.Options{
		Level:  level,
		Format: logging.ParseFormat(studioCfg.Logging.Format),
		Output: logOutput,
	})

	services, err := InitializeServices(cfg)
	if err != nil {
		logging.Error("Bootstrap", err, "Failed to initialize services")
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	return &Application{config: cfg, services: services}, nil
}

// Services exposes the wired services, mainly for tests.
func (a *Application) Services() *Services {
	return a.services
}

// Run blocks until ctx is cancelled, SIGINT or SIGTERM arrives, or the
// server fails.
func (a *Application) Run(ctx context.Context) error {
	defer a.services.Close()
	return runServer(ctx, a.services, notifyReady)
}
