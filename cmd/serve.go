package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"studio/internal/app"
)

var (
	serveHost string
	servePort int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the web console",
	Long: `Starts the Workflow Studio web console.

The console initializes every feature module, then serves the dashboard,
workflow definitions and instances, the activity catalog, labels, the
environment picker and the login page. Startup aborts if any module fails
to initialize.

Configuration is read from config.yaml in --config-path:

  server:       {host: localhost, port: 8080}
  backend:      {url: https://localhost:5001/elsa/api, timeout: 30s}
  auth:         {storage: session}     # or file, shared with 'studio login'
  localization: {supportedCultures: [en-US], defaultCulture: en-US}
  logging:      {format: text}         # or json

Changes to the current environment made with 'studio environment use'
are picked up by a running console. Under systemd the console reports
readiness once it is listening.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := app.NewConfig(rootFlags.Debug, rootFlags.ConfigPath)
	cfg.Backend = rootFlags.Backend
	cfg.Environment = rootFlags.Environment
	cfg.Host = serveHost
	cfg.Port = servePort

	application, err := app.NewApplication(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return application.Run(ctx)
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serveHost, "host", "", "Address to bind to (overrides server.host)")
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port to listen on (overrides server.port)")
}
