package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"studio/internal/environment"
	"studio/internal/formatting"
)

var (
	envAddURL         string
	envAddDescription string
	envAddUse         bool
	envUpdateURL      string
	envUpdateDesc     string
	envDeleteForce    bool
)

// environmentCmd represents the environment command group
var environmentCmd = &cobra.Command{
	Use:     "environment",
	Aliases: []string{"env"},
	Short:   "Manage workflow engine environments",
	Long: `Manage named environments pointing at workflow engine APIs.

The current environment is used by every command and by the web console.
A running console picks up 'studio environment use' without a restart.

Examples:
  studio environment                               # List all environments
  studio environment use staging                   # Switch environment
  studio environment use primary                   # Back to backend.url
  studio environment add staging --url <url>       # Add an environment
  studio environment add staging --url <url> --use # Add and switch
  studio environment update staging --url <url>    # Change the URL
  studio environment delete staging                # Remove (asks first)
  studio environment rename staging stage          # Rename
  studio environment show staging -o yaml          # Show details

Environments are stored in ~/.config/studio/environments.yaml. The name
"primary" always refers to backend.url in config.yaml.`,
	Args: cobra.NoArgs,
	RunE: runEnvironmentList,
}

var environmentListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List all environments",
	Long: `List all configured environments. The current one is marked with an
asterisk (*).`,
	Args: cobra.NoArgs,
	RunE: runEnvironmentList,
}

var environmentCurrentCmd = &cobra.Command{
	Use:   "current",
	Short: "Show the current environment",
	Long: `Display the environment and backend URL commands will use, taking
--backend, --environment and STUDIO_ENVIRONMENT into account.`,
	Args: cobra.NoArgs,
	RunE: runEnvironmentCurrent,
}

var environmentUseCmd = &cobra.Command{
	Use:     "use <name>",
	Aliases: []string{"switch"},
	Short:   "Switch to a different environment",
	Long: `Set the current environment. Use "primary" to go back to the backend
configured in config.yaml.

Stored logins are kept per environment, so switching back later does not
require signing in again.`,
	Args:              cobra.ExactArgs(1),
	ValidArgsFunction: completeEnvironmentNames,
	RunE:              runEnvironmentUse,
}

var environmentAddCmd = &cobra.Command{
	Use:   "add <name> --url <url>",
	Short: "Add a new environment",
	Long: `Add a named environment pointing at a workflow engine API.

Environment names must:
  - Be between 1 and 63 characters
  - Contain only lowercase letters, numbers, and hyphens
  - Start and end with an alphanumeric character

Examples:
  studio environment add local --url https://localhost:5001/elsa/api
  studio environment add production --url https://engine.example.com/elsa/api --use`,
	Args: cobra.ExactArgs(1),
	RunE: runEnvironmentAdd,
}

var environmentUpdateCmd = &cobra.Command{
	Use:               "update <name>",
	Aliases:           []string{"set"},
	Short:             "Update an existing environment",
	Args:              cobra.ExactArgs(1),
	ValidArgsFunction: completeEnvironmentNames,
	RunE:              runEnvironmentUpdate,
}

var environmentDeleteCmd = &cobra.Command{
	Use:     "delete <name>",
	Aliases: []string{"rm", "remove"},
	Short:   "Delete an environment",
	Long: `Remove an environment by name. Deleting the current environment
switches back to the primary backend.

By default, this command asks for confirmation. Use --force to skip the prompt.`,
	Args:              cobra.ExactArgs(1),
	ValidArgsFunction: completeEnvironmentNames,
	RunE:              runEnvironmentDelete,
}

var environmentRenameCmd = &cobra.Command{
	Use:   "rename <old-name> <new-name>",
	Short: "Rename an environment",
	Args:  cobra.ExactArgs(2),
	ValidArgsFunction: func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		if len(args) == 0 {
			return environmentNamesForCompletion(), cobra.ShellCompDirectiveNoFileComp
		}
		return nil, cobra.ShellCompDirectiveNoFileComp
	},
	RunE: runEnvironmentRename,
}

var environmentShowCmd = &cobra.Command{
	Use:               "show <name>",
	Aliases:           []string{"describe", "get"},
	Short:             "Show environment details",
	Args:              cobra.ExactArgs(1),
	ValidArgsFunction: completeEnvironmentNames,
	RunE:              runEnvironmentShow,
}

func init() {
	rootCmd.AddCommand(environmentCmd)

	environmentCmd.AddCommand(environmentListCmd)
	environmentCmd.AddCommand(environmentCurrentCmd)
	environmentCmd.AddCommand(environmentUseCmd)
	environmentCmd.AddCommand(environmentAddCmd)
	environmentCmd.AddCommand(environmentUpdateCmd)
	environmentCmd.AddCommand(environmentDeleteCmd)
	environmentCmd.AddCommand(environmentRenameCmd)
	environmentCmd.AddCommand(environmentShowCmd)

	environmentAddCmd.Flags().StringVar(&envAddURL, "url", "", "Workflow engine API URL (required)")
	environmentAddCmd.Flags().StringVar(&envAddDescription, "description", "", "Description shown in the environment picker")
	environmentAddCmd.Flags().BoolVar(&envAddUse, "use", false, "Switch to the new environment")
	_ = environmentAddCmd.MarkFlagRequired("url")

	environmentUpdateCmd.Flags().StringVar(&envUpdateURL, "url", "", "New workflow engine API URL")
	environmentUpdateCmd.Flags().StringVar(&envUpdateDesc, "description", "", "New description")

	environmentDeleteCmd.Flags().BoolVarP(&envDeleteForce, "force", "f", false, "Skip confirmation prompt")
}

func environmentStore() *environment.Storage {
	return environment.NewStorageWithPath(rootFlags.ConfigPath)
}

func runEnvironmentList(cmd *cobra.Command, args []string) error {
	p, err := newPrinter(cmd)
	if err != nil {
		return err
	}

	store := environmentStore()
	cfg, err := store.Load()
	if err != nil {
		return fmt.Errorf("failed to load environments: %w", err)
	}

	envs := cfg.Environments
	if envs == nil {
		envs = []environment.Environment{}
	}
	if p.Format() == formatting.FormatJSON || p.Format() == formatting.FormatYAML {
		return p.Print(cfg, formatting.Table{})
	}
	return p.Print(envs, formatting.EnvironmentsTable(envs, cfg.Current))
}

func runEnvironmentCurrent(cmd *cobra.Command, args []string) error {
	p, err := newPrinter(cmd)
	if err != nil {
		return err
	}

	session, err := newSession()
	if err != nil {
		return err
	}
	sel := session.Selection

	data := map[string]string{"name": sel.Name, "url": sel.Backend.String()}
	view := formatting.Table{
		Headers: []string{"Name", "URL"},
		Rows:    [][]string{{sel.Name, sel.Backend.String()}},
	}
	return p.Print(data, view)
}

func runEnvironmentUse(cmd *cobra.Command, args []string) error {
	name := args[0]
	store := environmentStore()

	if name == environment.PrimaryName {
		if err := store.ClearCurrent(); err != nil {
			return fmt.Errorf("failed to switch environment: %w", err)
		}
	} else if err := store.SetCurrent(name); err != nil {
		return err
	}

	p, err := newPrinter(cmd)
	if err != nil {
		return err
	}
	say(p, "Switched to environment %q", name)
	return nil
}

func runEnvironmentAdd(cmd *cobra.Command, args []string) error {
	env := environment.Environment{
		Name:        args[0],
		URL:         envAddURL,
		Description: envAddDescription,
	}

	store := environmentStore()
	if err := store.Add(env); err != nil {
		return err
	}

	p, err := newPrinter(cmd)
	if err != nil {
		return err
	}
	say(p, "Environment %q added", env.Name)

	if envAddUse {
		if err := store.SetCurrent(env.Name); err != nil {
			return err
		}
		say(p, "Switched to environment %q", env.Name)
	}
	return nil
}

func runEnvironmentUpdate(cmd *cobra.Command, args []string) error {
	if !cmd.Flags().Changed("url") && !cmd.Flags().Changed("description") {
		return fmt.Errorf("nothing to update: specify --url or --description")
	}

	store := environmentStore()
	existing, err := store.Get(args[0])
	if err != nil {
		return err
	}
	if existing == nil {
		return &environment.NotFoundError{Name: args[0]}
	}

	env := *existing
	if cmd.Flags().Changed("url") {
		env.URL = envUpdateURL
	}
	if cmd.Flags().Changed("description") {
		env.Description = envUpdateDesc
	}
	if err := store.Update(env); err != nil {
		return err
	}

	p, err := newPrinter(cmd)
	if err != nil {
		return err
	}
	say(p, "Environment %q updated", env.Name)
	return nil
}

func runEnvironmentDelete(cmd *cobra.Command, args []string) error {
	name := args[0]
	store := environmentStore()

	existing, err := store.Get(name)
	if err != nil {
		return err
	}
	if existing == nil {
		return &environment.NotFoundError{Name: name}
	}

	p, err := newPrinter(cmd)
	if err != nil {
		return err
	}

	if !envDeleteForce {
		if !confirmAction(cmd, fmt.Sprintf("Delete environment %q (%s)?", name, existing.URL)) {
			say(p, "Aborted.")
			return nil
		}
	}

	if err := store.Delete(name); err != nil {
		return err
	}
	say(p, "Environment %q deleted", name)
	return nil
}

func runEnvironmentRename(cmd *cobra.Command, args []string) error {
	if err := environmentStore().Rename(args[0], args[1]); err != nil {
		return err
	}

	p, err := newPrinter(cmd)
	if err != nil {
		return err
	}
	say(p, "Environment %q renamed to %q", args[0], args[1])
	return nil
}

func runEnvironmentShow(cmd *cobra.Command, args []string) error {
	p, err := newPrinter(cmd)
	if err != nil {
		return err
	}

	store := environmentStore()
	cfg, err := store.Load()
	if err != nil {
		return fmt.Errorf("failed to load environments: %w", err)
	}

	env := cfg.Get(args[0])
	if env == nil {
		return &environment.NotFoundError{Name: args[0]}
	}
	return p.Print(env, formatting.EnvironmentTable(*env, cfg.Current == env.Name))
}

func completeEnvironmentNames(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) != 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	return environmentNamesForCompletion(), cobra.ShellCompDirectiveNoFileComp
}

func environmentNamesForCompletion() []string {
	names, err := environmentStore().Names()
	if err != nil {
		return nil
	}
	return names
}
