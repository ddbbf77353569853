package cli

import (
	"io"
	"os"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"

	"studio/internal/formatting"
)

// BackendEnvVar overrides the backend URL for every command.
const BackendEnvVar = "STUDIO_BACKEND"

// CommandFlags holds the flags shared by commands that talk to the engine.
type CommandFlags struct {
	// OutputFormat is one of table, wide, json or yaml.
	OutputFormat string
	// NoHeaders suppresses the header row in table output.
	NoHeaders bool
	// Quiet suppresses spinners and other non-essential output.
	Quiet bool
	// Debug enables debug logging.
	Debug bool
	// ConfigPath is the directory holding config.yaml and environments.yaml.
	ConfigPath string
	// Backend is an explicit engine URL that bypasses environment selection.
	Backend string
	// Environment selects a named environment for this invocation only.
	Environment string
}

// RegisterCommonFlags registers the output and connection flags as
// persistent flags on cmd.
func RegisterCommonFlags(cmd *cobra.Command, flags *CommandFlags, defaultConfigPath string) {
	RegisterOutputFlags(cmd, flags)
	RegisterConnectionFlags(cmd, flags, defaultConfigPath)
}

// RegisterOutputFlags registers --output, --no-headers and --quiet.
func RegisterOutputFlags(cmd *cobra.Command, flags *CommandFlags) {
	cmd.PersistentFlags().StringVarP(&flags.OutputFormat, "output", "o", string(formatting.FormatTable), "Output format (table, wide, json, yaml)")
	cmd.PersistentFlags().BoolVar(&flags.NoHeaders, "no-headers", false, "Suppress header row in table output")
	cmd.PersistentFlags().BoolVarP(&flags.Quiet, "quiet", "q", false, "Suppress non-essential output")
}

// RegisterConnectionFlags registers --debug, --config-path, --backend and
// --environment.
func RegisterConnectionFlags(cmd *cobra.Command, flags *CommandFlags, defaultConfigPath string) {
	cmd.PersistentFlags().BoolVar(&flags.Debug, "debug", false, "Enable debug logging")
	cmd.PersistentFlags().StringVar(&flags.ConfigPath, "config-path", defaultConfigPath, "Configuration directory")
	cmd.PersistentFlags().StringVar(&flags.Backend, "backend", os.Getenv(BackendEnvVar), "Workflow engine API URL (env: "+BackendEnvVar+")")
	cmd.PersistentFlags().StringVarP(&flags.Environment, "environment", "e", "", "Use a specific environment (env: STUDIO_ENVIRONMENT)")
}

// Printer builds the output printer for the selected format.
func (f *CommandFlags) Printer(w io.Writer) (*formatting.Printer, error) {
	format, err := formatting.ParseFormat(f.OutputFormat)
	if err != nil {
		return nil, err
	}
	return formatting.NewPrinter(formatting.Options{
		Format:    format,
		NoHeaders: f.NoHeaders,
		Color:     isTerminal(w),
		Writer:    w,
	}), nil
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return readline.IsTerminal(int(f.Fd()))
}
