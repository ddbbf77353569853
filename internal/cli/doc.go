// Package cli holds the plumbing shared by studio's commands.
//
// CommandFlags registers the common output and connection flags, and
// NewSession turns them into a ready-to-use engine client: it loads
// config.yaml, resolves the backend (--backend, --environment,
// STUDIO_ENVIRONMENT, the current environment, then backend.url) and opens
// the file token store of the selected environment.
//
// Errors from the engine client are translated by Explain into
// AuthRequiredError or a classified ConnectionError with a hint for the
// user, and ExitCode maps them to process exit codes:
//
//	0  success
//	1  any other failure
//	2  authentication required (run 'studio login')
//	3  resource or environment not found
//	4  engine unreachable
//
// WithProgress shows a spinner on terminals and Prompter reads input and
// passwords through readline.
package cli
