package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"studio/internal/api"
	"studio/internal/formatting"
)

var (
	instancesPage        int
	instancesPageSize    int
	instancesDefinition  string
	instancesStatus      string
	instancesSearch      string
	instancesDeleteForce bool
)

// instancesCmd represents the workflow instances command group
var instancesCmd = &cobra.Command{
	Use:     "instances",
	Aliases: []string{"instance", "inst"},
	Short:   "Inspect workflow instances",
	Long: `List, inspect and delete workflow instances on the selected environment.

Examples:
  studio instances list --status faulted
  studio instances list --definition order-fulfilment -o wide
  studio instances get 4b1f3c0e
  studio instances delete 4b1f3c0e --force`,
}

var instancesListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List workflow instances",
	Args:    cobra.NoArgs,
	RunE:    runInstancesList,
}

var instancesGetCmd = &cobra.Command{
	Use:     "get <instance-id>",
	Aliases: []string{"show", "describe"},
	Short:   "Show a workflow instance with its faults and blocking activities",
	Args:    cobra.ExactArgs(1),
	RunE:    runInstancesGet,
}

var instancesDeleteCmd = &cobra.Command{
	Use:     "delete <instance-id>",
	Aliases: []string{"rm"},
	Short:   "Delete a workflow instance",
	Args:    cobra.ExactArgs(1),
	RunE:    runInstancesDelete,
}

func init() {
	rootCmd.AddCommand(instancesCmd)

	instancesCmd.AddCommand(instancesListCmd)
	instancesCmd.AddCommand(instancesGetCmd)
	instancesCmd.AddCommand(instancesDeleteCmd)

	registerPagingFlags(instancesListCmd, &instancesPage, &instancesPageSize)
	instancesListCmd.Flags().StringVar(&instancesDefinition, "definition", "", "Only show instances of this definition ID")
	instancesListCmd.Flags().StringVar(&instancesStatus, "status", "", "Only show instances with this status (idle, running, finished, suspended, faulted, cancelled)")
	instancesListCmd.Flags().StringVar(&instancesSearch, "search", "", "Only show instances matching this term")
	_ = instancesListCmd.RegisterFlagCompletionFunc("status", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		statuses := make([]string, len(api.ValidStatuses))
		for i, s := range api.ValidStatuses {
			statuses[i] = strings.ToLower(string(s))
		}
		return statuses, cobra.ShellCompDirectiveNoFileComp
	})

	instancesDeleteCmd.Flags().BoolVarP(&instancesDeleteForce, "force", "f", false, "Skip confirmation prompt")
}

// parseStatus maps a --status value to a workflow status. Matching is
// case-insensitive; an empty value means any status.
func parseStatus(s string) (api.WorkflowStatus, error) {
	if s == "" {
		return "", nil
	}
	for _, status := range api.ValidStatuses {
		if strings.EqualFold(s, string(status)) {
			return status, nil
		}
	}
	return "", fmt.Errorf("unsupported status %q (valid: idle, running, finished, suspended, faulted, cancelled)", s)
}

func runInstancesList(cmd *cobra.Command, args []string) error {
	p, err := newPrinter(cmd)
	if err != nil {
		return err
	}
	status, err := parseStatus(instancesStatus)
	if err != nil {
		return err
	}

	session, err := newSession()
	if err != nil {
		return err
	}

	var list *api.PagedList[api.WorkflowInstanceSummary]
	err = progress(cmd, "Fetching workflow instances...", func() error {
		var err error
		list, err = session.Client.ListInstances(cmd.Context(), api.InstanceListOptions{
			ListOptions:  api.ListOptions{Page: instancesPage, PageSize: instancesPageSize},
			DefinitionID: instancesDefinition,
			Status:       status,
			SearchTerm:   instancesSearch,
		})
		return err
	})
	if err != nil {
		return session.Explain(err)
	}
	return p.Print(list, formatting.InstancesTable(list))
}

func runInstancesGet(cmd *cobra.Command, args []string) error {
	p, err := newPrinter(cmd)
	if err != nil {
		return err
	}

	session, err := newSession()
	if err != nil {
		return err
	}

	var inst *api.WorkflowInstance
	err = progress(cmd, "Fetching workflow instance...", func() error {
		var err error
		inst, err = session.Client.GetInstance(cmd.Context(), args[0])
		return err
	})
	if err != nil {
		return session.Explain(err)
	}
	return p.Print(inst, formatting.InstanceTable(inst))
}

func runInstancesDelete(cmd *cobra.Command, args []string) error {
	id := args[0]

	p, err := newPrinter(cmd)
	if err != nil {
		return err
	}

	session, err := newSession()
	if err != nil {
		return err
	}

	if !instancesDeleteForce {
		if !confirmAction(cmd, fmt.Sprintf("Delete workflow instance %q on %s?", id, session.Selection.Name)) {
			say(p, "Aborted.")
			return nil
		}
	}

	err = progress(cmd, fmt.Sprintf("Deleting %s...", id), func() error {
		return session.Client.DeleteInstance(cmd.Context(), id)
	})
	if err != nil {
		return session.Explain(err)
	}
	say(p, "Workflow instance %q deleted", id)
	return nil
}
