package cmd

import (
	"strings"

	"github.com/spf13/cobra"

	"studio/internal/api"
	"studio/internal/formatting"
)

var activitiesCategory string

var activitiesCmd = &cobra.Command{
	Use:     "activities",
	Aliases: []string{"activity"},
	Short:   "Browse the activity catalog",
	Long: `Browse the activity types the selected engine offers, grouped by category.

Examples:
  studio activities list
  studio activities list --category http -o wide`,
}

var activitiesListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List activity types",
	Args:    cobra.NoArgs,
	RunE:    runActivitiesList,
}

func init() {
	rootCmd.AddCommand(activitiesCmd)
	activitiesCmd.AddCommand(activitiesListCmd)

	activitiesListCmd.Flags().StringVar(&activitiesCategory, "category", "", "Only show activities in this category")
}

func runActivitiesList(cmd *cobra.Command, args []string) error {
	p, err := newPrinter(cmd)
	if err != nil {
		return err
	}

	session, err := newSession()
	if err != nil {
		return err
	}

	var activities []api.ActivityDescriptor
	err = progress(cmd, "Fetching activities...", func() error {
		var err error
		activities, err = session.Client.ListActivities(cmd.Context())
		return err
	})
	if err != nil {
		return session.Explain(err)
	}

	if activitiesCategory != "" {
		filtered := activities[:0]
		for _, a := range activities {
			if strings.EqualFold(a.Category, activitiesCategory) {
				filtered = append(filtered, a)
			}
		}
		activities = filtered
	}
	if activities == nil {
		activities = []api.ActivityDescriptor{}
	}
	return p.Print(activities, formatting.ActivitiesTable(activities))
}
