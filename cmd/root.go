package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"studio/internal/cli"
	"studio/internal/config"
	"studio/internal/formatting"
	"studio/pkg/logging"
)

// rootFlags holds the persistent flags shared by every command.
var rootFlags cli.CommandFlags

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "studio",
	Short: "Administer a remote workflow engine",
	Long: `studio is an admin console and command line client for a workflow engine.

Run 'studio serve' to start the web console, or use the commands below to
list and manage workflow definitions, instances, activities and labels on
the selected environment.

Environments:
  The engine is selected, highest precedence first, by --backend,
  --environment, the STUDIO_ENVIRONMENT variable, the current environment
  in ~/.config/studio/environments.yaml and finally backend.url in
  ~/.config/studio/config.yaml.`,
	// SilenceUsage keeps runtime errors from printing the usage text.
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level := logging.LevelWarn
		if rootFlags.Debug {
			level = logging.LevelDebug
		}
		logging.InitForCLI(level, cmd.ErrOrStderr())
		return nil
	},
}

// SetVersion sets the version reported by `studio version`.
func SetVersion(v string) {
	rootCmd.Version = v
}

// GetVersion returns the version set by SetVersion.
func GetVersion() string {
	return rootCmd.Version
}

// Execute runs the root command and exits with a code scripts can act on
// (see cli.ExitCode).
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "studio version %s\n" .Version}}`)

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		var cfgErrs config.ConfigurationErrorCollection
		if errors.As(err, &cfgErrs) && len(cfgErrs.Errors) > 1 {
			fmt.Fprint(os.Stderr, cfgErrs.Report())
		}
		os.Exit(cli.ExitCode(err))
	}
}

func defaultConfigPath() string {
	path, err := config.GetDefaultConfigPath()
	if err != nil {
		return ".studio"
	}
	return path
}

// newSession resolves the backend and token store for a command.
func newSession() (*cli.Session, error) {
	return cli.NewSession(&rootFlags, cli.SessionOptions{UserAgent: "studio/" + GetVersion()})
}

// newPrinter builds the output printer for cmd.
func newPrinter(cmd *cobra.Command) (*formatting.Printer, error) {
	return rootFlags.Printer(cmd.OutOrStdout())
}

// say prints a confirmation line unless --quiet or a structured output
// format is selected.
func say(p *formatting.Printer, format string, args ...any) {
	if rootFlags.Quiet {
		return
	}
	p.Message(format, args...)
}

// progress runs fn behind a spinner on stderr.
func progress(cmd *cobra.Command, message string, fn func() error) error {
	return cli.WithProgress(cmd.ErrOrStderr(), rootFlags.Quiet, message, fn)
}

func init() {
	cli.RegisterCommonFlags(rootCmd, &rootFlags, defaultConfigPath())

	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newSelfUpdateCmd())
}

// confirmAction asks a yes/no question on cmd's input. Anything but y or
// yes declines.
func confirmAction(cmd *cobra.Command, prompt string) bool {
	fmt.Fprintf(cmd.ErrOrStderr(), "%s [y/N] ", prompt)

	response, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	if err != nil && response == "" {
		return false
	}

	response = strings.TrimSpace(strings.ToLower(response))
	return response == "y" || response == "yes"
}
