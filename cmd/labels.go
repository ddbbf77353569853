package cmd

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"studio/internal/api"
	"studio/internal/cli"
	"studio/internal/formatting"
	"studio/internal/ui"
)

var (
	labelDescription string
	labelColor       string
	labelDeleteForce bool
)

var labelsCmd = &cobra.Command{
	Use:     "labels",
	Aliases: []string{"label"},
	Short:   "Manage workflow labels",
	Long: `List, create, update and delete the labels used to tag workflow definitions.

Examples:
  studio labels list
  studio labels create billing --color "#3b82f6" --description "Billing flows"
  studio labels update 9f2c --color "#ef4444"
  studio labels delete 9f2c --force`,
}

var labelsListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List labels",
	Args:    cobra.NoArgs,
	RunE:    runLabelsList,
}

var labelsCreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create a label",
	Long: `Create a label. Names are limited to 50 characters and descriptions to
200. Colors are given as #rgb or #rrggbb.`,
	Args: cobra.ExactArgs(1),
	RunE: runLabelsCreate,
}

var labelsUpdateCmd = &cobra.Command{
	Use:   "update <id> [name]",
	Short: "Update a label",
	Long: `Update a label's name, description or color. Fields that are not given
keep their current value.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runLabelsUpdate,
}

var labelsDeleteCmd = &cobra.Command{
	Use:     "delete <id>",
	Aliases: []string{"rm"},
	Short:   "Delete a label",
	Args:    cobra.ExactArgs(1),
	RunE:    runLabelsDelete,
}

func init() {
	rootCmd.AddCommand(labelsCmd)

	labelsCmd.AddCommand(labelsListCmd)
	labelsCmd.AddCommand(labelsCreateCmd)
	labelsCmd.AddCommand(labelsUpdateCmd)
	labelsCmd.AddCommand(labelsDeleteCmd)

	for _, c := range []*cobra.Command{labelsCreateCmd, labelsUpdateCmd} {
		c.Flags().StringVar(&labelDescription, "description", "", "Label description")
		c.Flags().StringVar(&labelColor, "color", "", "Label color (#rgb or #rrggbb)")
	}
	labelsDeleteCmd.Flags().BoolVarP(&labelDeleteForce, "force", "f", false, "Skip confirmation prompt")
}

// labelErrors joins editor field errors in a stable order.
func labelErrors(params *ui.LabelEditorParams) error {
	fields := make([]string, 0, len(params.Errors))
	for field := range params.Errors {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	msgs := make([]string, len(fields))
	for i, field := range fields {
		msgs[i] = fmt.Sprintf("%s: %s", field, params.Errors[field])
	}
	return errors.New("invalid label: " + strings.Join(msgs, "; "))
}

func runLabelsList(cmd *cobra.Command, args []string) error {
	p, err := newPrinter(cmd)
	if err != nil {
		return err
	}

	session, err := newSession()
	if err != nil {
		return err
	}

	var list *api.PagedList[api.Label]
	err = progress(cmd, "Fetching labels...", func() error {
		var err error
		list, err = session.Client.ListLabels(cmd.Context())
		return err
	})
	if err != nil {
		return session.Explain(err)
	}
	return p.Print(list, formatting.LabelsTable(list))
}

func runLabelsCreate(cmd *cobra.Command, args []string) error {
	params := &ui.LabelEditorParams{Name: args[0], Description: labelDescription, Color: labelColor}
	if !params.Validate() {
		return labelErrors(params)
	}

	session, err := newSession()
	if err != nil {
		return err
	}
	return saveLabel(cmd, session, params)
}

func runLabelsUpdate(cmd *cobra.Command, args []string) error {
	session, err := newSession()
	if err != nil {
		return err
	}

	var list *api.PagedList[api.Label]
	err = progress(cmd, "Fetching labels...", func() error {
		var err error
		list, err = session.Client.ListLabels(cmd.Context())
		return err
	})
	if err != nil {
		return session.Explain(err)
	}

	var current *api.Label
	for i := range list.Items {
		if list.Items[i].ID == args[0] {
			current = &list.Items[i]
			break
		}
	}
	if current == nil {
		return api.NewNotFoundError("label", args[0])
	}

	params := &ui.LabelEditorParams{
		ID:          current.ID,
		Name:        current.Name,
		Description: current.Description,
		Color:       current.Color,
	}
	if len(args) == 2 {
		params.Name = args[1]
	}
	if cmd.Flags().Changed("description") {
		params.Description = labelDescription
	}
	if cmd.Flags().Changed("color") {
		params.Color = labelColor
	}
	if !params.Validate() {
		return labelErrors(params)
	}
	return saveLabel(cmd, session, params)
}

func saveLabel(cmd *cobra.Command, session *cli.Session, params *ui.LabelEditorParams) error {
	p, err := newPrinter(cmd)
	if err != nil {
		return err
	}

	var label *api.Label
	err = progress(cmd, fmt.Sprintf("Saving label %s...", params.Name), func() error {
		var err error
		if params.IsNew() {
			label, err = session.Client.CreateLabel(cmd.Context(), params.Request())
		} else {
			label, err = session.Client.UpdateLabel(cmd.Context(), params.ID, params.Request())
		}
		return err
	})
	if err != nil {
		return session.Explain(err)
	}

	if p.Format() == formatting.FormatJSON || p.Format() == formatting.FormatYAML {
		return p.Print(label, formatting.Table{})
	}
	if params.IsNew() {
		say(p, "Label %q created (%s)", label.Name, label.ID)
	} else {
		say(p, "Label %q updated", label.Name)
	}
	return nil
}

func runLabelsDelete(cmd *cobra.Command, args []string) error {
	id := args[0]

	p, err := newPrinter(cmd)
	if err != nil {
		return err
	}

	session, err := newSession()
	if err != nil {
		return err
	}

	if !labelDeleteForce {
		if !confirmAction(cmd, fmt.Sprintf("Delete label %q? It is removed from every workflow.", id)) {
			say(p, "Aborted.")
			return nil
		}
	}

	err = progress(cmd, fmt.Sprintf("Deleting label %s...", id), func() error {
		return session.Client.DeleteLabel(cmd.Context(), id)
	})
	if err != nil {
		return session.Explain(err)
	}
	say(p, "Label %q deleted", id)
	return nil
}
