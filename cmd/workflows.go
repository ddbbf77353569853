package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"studio/internal/api"
	"studio/internal/client"
	"studio/internal/formatting"
)

var (
	workflowsPage        int
	workflowsPageSize    int
	workflowsSearch      string
	workflowsLabel       string
	workflowsVersion     string
	workflowGetVersion   int
	workflowsDeleteForce bool
)

// workflowsCmd represents the workflow definitions command group
var workflowsCmd = &cobra.Command{
	Use:     "workflows",
	Aliases: []string{"wf", "workflow", "definitions"},
	Short:   "Manage workflow definitions",
	Long: `List, inspect, publish, retract and delete workflow definitions on the
selected environment.

Examples:
  studio workflows list
  studio workflows list --search order --label billing
  studio workflows list --version published -o wide
  studio workflows get order-fulfilment -o yaml
  studio workflows publish order-fulfilment
  studio workflows delete order-fulfilment --force`,
}

var workflowsListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List workflow definitions",
	Args:    cobra.NoArgs,
	RunE:    runWorkflowsList,
}

var workflowsGetCmd = &cobra.Command{
	Use:     "get <definition-id>",
	Aliases: []string{"show", "describe"},
	Short:   "Show a workflow definition",
	Long: `Show the latest version of a workflow definition, or the version given
with --version, together with its labels.`,
	Args: cobra.ExactArgs(1),
	RunE: runWorkflowsGet,
}

var workflowsPublishCmd = &cobra.Command{
	Use:   "publish <definition-id>",
	Short: "Publish the latest version of a workflow definition",
	Args:  cobra.ExactArgs(1),
	RunE:  runWorkflowsPublish,
}

var workflowsRetractCmd = &cobra.Command{
	Use:     "retract <definition-id>",
	Aliases: []string{"unpublish"},
	Short:   "Retract the published version of a workflow definition",
	Args:    cobra.ExactArgs(1),
	RunE:    runWorkflowsRetract,
}

var workflowsDeleteCmd = &cobra.Command{
	Use:     "delete <definition-id>",
	Aliases: []string{"rm"},
	Short:   "Delete a workflow definition and all of its versions",
	Long: `Delete a workflow definition with all of its versions.

By default, this command asks for confirmation. Use --force to skip the prompt.`,
	Args: cobra.ExactArgs(1),
	RunE: runWorkflowsDelete,
}

func init() {
	rootCmd.AddCommand(workflowsCmd)

	workflowsCmd.AddCommand(workflowsListCmd)
	workflowsCmd.AddCommand(workflowsGetCmd)
	workflowsCmd.AddCommand(workflowsPublishCmd)
	workflowsCmd.AddCommand(workflowsRetractCmd)
	workflowsCmd.AddCommand(workflowsDeleteCmd)

	registerPagingFlags(workflowsListCmd, &workflowsPage, &workflowsPageSize)
	workflowsListCmd.Flags().StringVar(&workflowsSearch, "search", "", "Only show definitions matching this term")
	workflowsListCmd.Flags().StringVar(&workflowsLabel, "label", "", "Only show definitions with this label ID")
	workflowsListCmd.Flags().StringVar(&workflowsVersion, "version", "latest", "Versions to list (latest, published, latestorpublished, draft, all)")

	workflowsGetCmd.Flags().IntVar(&workflowGetVersion, "version", 0, "Show this version instead of the latest")

	workflowsDeleteCmd.Flags().BoolVarP(&workflowsDeleteForce, "force", "f", false, "Skip confirmation prompt")
}

func registerPagingFlags(cmd *cobra.Command, page, pageSize *int) {
	cmd.Flags().IntVar(page, "page", 0, "Zero-based page to show")
	cmd.Flags().IntVar(pageSize, "page-size", 20, "Number of items per page")
}

// parseVersionOptions maps a --version value to the engine's version
// selector. Matching is case-insensitive.
func parseVersionOptions(s string) (api.VersionOptions, error) {
	for _, v := range []api.VersionOptions{
		api.VersionLatest,
		api.VersionPublished,
		api.VersionLatestOrPublish,
		api.VersionDraft,
		api.VersionAll,
	} {
		if strings.EqualFold(s, string(v)) {
			return v, nil
		}
	}
	return "", fmt.Errorf("unsupported version selector %q (valid: latest, published, latestorpublished, draft, all)", s)
}

func runWorkflowsList(cmd *cobra.Command, args []string) error {
	p, err := newPrinter(cmd)
	if err != nil {
		return err
	}
	version, err := parseVersionOptions(workflowsVersion)
	if err != nil {
		return err
	}

	session, err := newSession()
	if err != nil {
		return err
	}

	var list *api.PagedList[api.WorkflowDefinitionSummary]
	err = progress(cmd, "Fetching workflow definitions...", func() error {
		var err error
		list, err = session.Client.ListDefinitions(cmd.Context(), api.DefinitionListOptions{
			ListOptions:    api.ListOptions{Page: workflowsPage, PageSize: workflowsPageSize},
			SearchTerm:     workflowsSearch,
			VersionOptions: version,
			Label:          workflowsLabel,
		})
		return err
	})
	if err != nil {
		return session.Explain(err)
	}
	return p.Print(list, formatting.DefinitionsTable(list))
}

func runWorkflowsGet(cmd *cobra.Command, args []string) error {
	p, err := newPrinter(cmd)
	if err != nil {
		return err
	}

	session, err := newSession()
	if err != nil {
		return err
	}

	version := api.VersionLatest
	if workflowGetVersion > 0 {
		version = api.SpecificVersion(workflowGetVersion)
	}

	var (
		def    *api.WorkflowDefinition
		labels []string
	)
	err = progress(cmd, "Fetching workflow definition...", func() error {
		var err error
		if def, err = session.Client.GetDefinition(cmd.Context(), args[0], version); err != nil {
			return err
		}
		labels, err = session.Client.GetDefinitionLabels(cmd.Context(), args[0])
		return err
	})
	if err != nil {
		return session.Explain(err)
	}
	return p.Print(def, formatting.DefinitionTable(def, labels))
}

func runWorkflowsPublish(cmd *cobra.Command, args []string) error {
	return runDefinitionAction(cmd, args[0], "Publishing", "published", client.WorkflowClient.PublishDefinition)
}

func runWorkflowsRetract(cmd *cobra.Command, args []string) error {
	return runDefinitionAction(cmd, args[0], "Retracting", "retracted", client.WorkflowClient.RetractDefinition)
}

// definitionAction is a publish or retract call on the engine client.
type definitionAction func(c client.WorkflowClient, ctx context.Context, definitionID string) (*api.WorkflowDefinition, error)

func runDefinitionAction(cmd *cobra.Command, definitionID, verb, done string, action definitionAction) error {
	p, err := newPrinter(cmd)
	if err != nil {
		return err
	}

	session, err := newSession()
	if err != nil {
		return err
	}

	var def *api.WorkflowDefinition
	err = progress(cmd, fmt.Sprintf("%s %s...", verb, definitionID), func() error {
		var err error
		def, err = action(session.Client, cmd.Context(), definitionID)
		return err
	})
	if err != nil {
		return session.Explain(err)
	}

	if p.Format() == formatting.FormatJSON || p.Format() == formatting.FormatYAML {
		return p.Print(def, formatting.Table{})
	}
	say(p, "Workflow %q %s (version %d)", definitionID, done, def.Version)
	return nil
}

func runWorkflowsDelete(cmd *cobra.Command, args []string) error {
	definitionID := args[0]

	p, err := newPrinter(cmd)
	if err != nil {
		return err
	}

	session, err := newSession()
	if err != nil {
		return err
	}

	if !workflowsDeleteForce {
		if !confirmAction(cmd, fmt.Sprintf("Delete workflow %q and all of its versions on %s?", definitionID, session.Selection.Name)) {
			say(p, "Aborted.")
			return nil
		}
	}

	err = progress(cmd, fmt.Sprintf("Deleting %s...", definitionID), func() error {
		return session.Client.DeleteDefinition(cmd.Context(), definitionID)
	})
	if err != nil {
		return session.Explain(err)
	}
	say(p, "Workflow %q deleted", definitionID)
	return nil
}
