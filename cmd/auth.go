package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"

	"studio/internal/cli"
	"studio/internal/formatting"
)

var (
	loginUsername      string
	loginPasswordStdin bool
)

// errInvalidCredentials is returned when the engine rejects a login.
var errInvalidCredentials = errors.New("invalid username or password")

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in to the selected environment",
	Long: `Sign in to the workflow engine of the selected environment.

The access and refresh tokens are stored under ~/.config/studio/tokens,
one login per environment. Later commands refresh the access token
automatically while the refresh token is valid.

Examples:
  studio login                                   # Prompt for credentials
  studio login -u admin                          # Prompt for the password
  studio login -e staging -u admin               # Sign in to 'staging'
  echo "$PASSWORD" | studio login -u admin --password-stdin`,
	Args: cobra.NoArgs,
	RunE: runLogin,
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Sign out of the selected environment",
	Long: `Remove the stored tokens for the selected environment. Logins to other
environments are kept.`,
	Args: cobra.NoArgs,
	RunE: runLogout,
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the sign-in state for the selected environment",
	Long: `Show whether a login is stored for the selected environment, who it
belongs to and when the access token expires. The engine is not contacted.`,
	Args: cobra.NoArgs,
	RunE: runStatus,
}

func init() {
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(statusCmd)

	loginCmd.Flags().StringVarP(&loginUsername, "username", "u", "", "User name (prompted when omitted)")
	loginCmd.Flags().BoolVar(&loginPasswordStdin, "password-stdin", false, "Read the password from standard input")
}

func runLogin(cmd *cobra.Command, args []string) error {
	session, err := newSession()
	if err != nil {
		return err
	}

	username, password, err := readCredentials(cmd)
	if err != nil {
		return err
	}

	var valid bool
	err = progress(cmd, fmt.Sprintf("Signing in to %s...", session.Selection.Backend), func() error {
		result := session.Validator.ValidateCredentials(cmd.Context(), username, password)
		if !result.IsValid {
			return nil
		}
		valid = true
		return session.Tokens.WriteTokens(cmd.Context(), result.Pair())
	})
	if err != nil {
		return fmt.Errorf("failed to store tokens: %w", err)
	}
	if !valid {
		return errInvalidCredentials
	}

	p, err := newPrinter(cmd)
	if err != nil {
		return err
	}
	say(p, "Signed in to %s as %s", session.Selection.Name, username)
	return nil
}

// readCredentials takes the user name from --username and the password from
// stdin when --password-stdin is set, prompting on the terminal otherwise.
func readCredentials(cmd *cobra.Command) (string, string, error) {
	interactive := readline.IsTerminal(int(os.Stdin.Fd()))
	prompter := cli.NewPrompter()

	username := loginUsername
	if username == "" {
		if !interactive || loginPasswordStdin {
			return "", "", fmt.Errorf("--username is required when not running interactively")
		}
		var err error
		if username, err = prompter.Ask("Username", ""); err != nil {
			return "", "", err
		}
	}

	if loginPasswordStdin {
		password, err := cli.ReadSecret(cmd.InOrStdin())
		return username, password, err
	}
	if !interactive {
		return "", "", fmt.Errorf("use --password-stdin when not running interactively")
	}
	password, err := prompter.Password("Password")
	return username, password, err
}

func runLogout(cmd *cobra.Command, args []string) error {
	session, err := newSession()
	if err != nil {
		return err
	}

	if err := session.Tokens.ClearTokens(cmd.Context()); err != nil {
		return fmt.Errorf("failed to clear tokens: %w", err)
	}

	p, err := newPrinter(cmd)
	if err != nil {
		return err
	}
	say(p, "Signed out of %s", session.Selection.Name)
	return nil
}

func runStatus(cmd *cobra.Command, args []string) error {
	p, err := newPrinter(cmd)
	if err != nil {
		return err
	}

	session, err := newSession()
	if err != nil {
		return err
	}

	st, err := session.Status(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to read tokens: %w", err)
	}

	data := struct {
		Environment string `json:"environment" yaml:"environment"`
		Backend     string `json:"backend" yaml:"backend"`
		Status      any    `json:"status" yaml:"status"`
	}{session.Selection.Name, session.Selection.Backend.String(), st}

	view := formatting.AuthStatusTable(session.Selection.Backend.String(), st)
	view.Rows = append([][]string{{"Environment", session.Selection.Name}}, view.Rows...)
	return p.Print(data, view)
}
