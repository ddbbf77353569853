package formatting

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"studio/internal/api"
	"studio/internal/auth"
	"studio/internal/environment"
	"studio/internal/ui"
)

// DescriptionMaxLen bounds description cells.
const DescriptionMaxLen = 60

// DefinitionsTable lists workflow definitions.
func DefinitionsTable(list *api.PagedList[api.WorkflowDefinitionSummary]) Table {
	t := Table{
		Headers:     []string{"Definition ID", "Name", "Version", "State"},
		WideHeaders: []string{"Latest", "Description"},
		Status:      "State",
		Empty:       "No workflow definitions found.",
	}
	if list == nil {
		return t
	}
	for _, d := range list.Items {
		t.Rows = append(t.Rows, []string{
			d.DefinitionID,
			d.Title(),
			strconv.Itoa(d.Version),
			publishState(d.IsPublished),
			yesNo(d.IsLatest),
			ui.Truncate(d.Description, DescriptionMaxLen),
		})
	}
	t.Footer = pageFooter(list.Page, list.PageCount(), list.TotalCount)
	return t
}

// DefinitionTable shows one definition as field/value pairs.
func DefinitionTable(def *api.WorkflowDefinition, labels []string) Table {
	t := Table{Headers: []string{"Field", "Value"}}
	t.Rows = [][]string{
		{"Definition ID", def.DefinitionID},
		{"Version ID", def.ID},
		{"Name", def.Title()},
		{"Version", strconv.Itoa(def.Version)},
		{"State", publishState(def.IsPublished)},
		{"Latest", yesNo(def.IsLatest)},
		{"Activities", strconv.Itoa(len(def.Activities))},
		{"Connections", strconv.Itoa(len(def.Connections))},
	}
	if def.Description != "" {
		t.Rows = append(t.Rows, []string{"Description", ui.Truncate(def.Description, DescriptionMaxLen)})
	}
	if len(labels) > 0 {
		t.Rows = append(t.Rows, []string{"Labels", strings.Join(labels, ", ")})
	}
	if def.CreatedAt != nil {
		t.Rows = append(t.Rows, []string{"Created", formatTime(*def.CreatedAt)})
	}
	return t
}

// InstancesTable lists workflow instances.
func InstancesTable(list *api.PagedList[api.WorkflowInstanceSummary]) Table {
	t := Table{
		Headers:     []string{"ID", "Name", "Definition", "Version", "Status", "Created"},
		WideHeaders: []string{"Correlation ID", "Last Executed"},
		Status:      "Status",
		Empty:       "No workflow instances found.",
	}
	if list == nil {
		return t
	}
	for _, i := range list.Items {
		t.Rows = append(t.Rows, []string{
			i.ID,
			i.Name,
			i.DefinitionID,
			strconv.Itoa(i.Version),
			string(i.WorkflowStatus),
			formatTime(i.CreatedAt),
			i.CorrelationID,
			formatTimePtr(i.LastExecutedAt),
		})
	}
	t.Footer = pageFooter(list.Page, list.PageCount(), list.TotalCount)
	return t
}

// InstanceTable shows one instance with its faults and blocking activities.
func InstanceTable(inst *api.WorkflowInstance) Table {
	t := Table{Headers: []string{"Field", "Value"}, Status: "Value"}
	t.Rows = [][]string{
		{"ID", inst.ID},
		{"Status", string(inst.WorkflowStatus)},
		{"Name", inst.Name},
		{"Definition", fmt.Sprintf("%s (v%d)", inst.DefinitionID, inst.Version)},
		{"Created", formatTime(inst.CreatedAt)},
	}
	if inst.CorrelationID != "" {
		t.Rows = append(t.Rows, []string{"Correlation ID", inst.CorrelationID})
	}
	for _, f := range []struct {
		name string
		at   *time.Time
	}{
		{"Last Executed", inst.LastExecutedAt},
		{"Finished", inst.FinishedAt},
		{"Cancelled", inst.CancelledAt},
		{"Faulted", inst.FaultedAt},
	} {
		if f.at != nil {
			t.Rows = append(t.Rows, []string{f.name, formatTime(*f.at)})
		}
	}
	for _, b := range inst.BlockingActivities {
		t.Rows = append(t.Rows, []string{"Blocked On", fmt.Sprintf("%s (%s)", b.ActivityID, b.ActivityType)})
	}
	for _, f := range inst.Faults {
		t.Rows = append(t.Rows, []string{"Fault", ui.Truncate(f.Message, DescriptionMaxLen)})
	}
	if len(inst.Variables) > 0 {
		names := make([]string, 0, len(inst.Variables))
		for name := range inst.Variables {
			names = append(names, name)
		}
		sort.Strings(names)
		t.Rows = append(t.Rows, []string{"Variables", strings.Join(names, ", ")})
	}
	return t
}

// ActivitiesTable lists activity descriptors ordered by category.
func ActivitiesTable(activities []api.ActivityDescriptor) Table {
	t := Table{
		Headers:     []string{"Category", "Type", "Display Name"},
		WideHeaders: []string{"Outcomes", "Description"},
		Empty:       "No activities found.",
	}
	for _, cat := range ui.GroupActivities(activities) {
		for _, a := range cat.Activities {
			t.Rows = append(t.Rows, []string{
				cat.Name,
				a.Type,
				a.DisplayName,
				strings.Join(a.Outcomes, ", "),
				ui.Truncate(a.Description, DescriptionMaxLen),
			})
		}
	}
	return t
}

// LabelsTable lists labels.
func LabelsTable(list *api.PagedList[api.Label]) Table {
	t := Table{
		Headers:     []string{"ID", "Name", "Color"},
		WideHeaders: []string{"Description"},
		Empty:       "No labels found.",
	}
	if list == nil {
		return t
	}
	for _, l := range list.Items {
		t.Rows = append(t.Rows, []string{l.ID, l.Name, l.Color, ui.Truncate(l.Description, DescriptionMaxLen)})
	}
	return t
}

// EnvironmentsTable lists environments, marking the current one.
func EnvironmentsTable(envs []environment.Environment, current string) Table {
	t := Table{
		Headers:     []string{"Current", "Name", "URL"},
		WideHeaders: []string{"Description"},
		Empty:       "No environments configured. Use 'studio environment add' to create one.",
	}
	for _, env := range envs {
		marker := ""
		if env.Name == current {
			marker = "*"
		}
		t.Rows = append(t.Rows, []string{marker, env.Name, env.URL, env.Description})
	}
	return t
}

// EnvironmentTable shows one environment.
func EnvironmentTable(env environment.Environment, current bool) Table {
	t := Table{Headers: []string{"Field", "Value"}}
	t.Rows = [][]string{
		{"Name", env.Name},
		{"URL", env.URL},
		{"Current", yesNo(current)},
	}
	if env.Description != "" {
		t.Rows = append(t.Rows, []string{"Description", env.Description})
	}
	return t
}

// AuthStatusTable shows the sign-in state for a backend.
func AuthStatusTable(backend string, st auth.Status) Table {
	t := Table{Headers: []string{"Field", "Value"}}
	t.Rows = [][]string{{"Backend", backend}}
	if !st.Authenticated && st.User == "" && !st.Expired {
		t.Rows = append(t.Rows, []string{"Status", "Not signed in"})
		return t
	}
	state := "Signed in"
	if st.Expired {
		state = "Expired"
		if st.CanRefresh {
			state = "Expired (refreshable)"
		}
	}
	t.Rows = append(t.Rows, []string{"Status", state})
	if st.User != "" {
		t.Rows = append(t.Rows, []string{"User", st.User})
	}
	if st.ExpiresAt != "" {
		t.Rows = append(t.Rows, []string{"Expires", st.ExpiresAt})
	}
	return t
}

func publishState(published bool) string {
	if published {
		return "Published"
	}
	return "Draft"
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format("2006-01-02 15:04:05")
}

func formatTimePtr(t *time.Time) string {
	if t == nil {
		return ""
	}
	return formatTime(*t)
}

func pageFooter(page, pages, total int) string {
	if pages <= 1 {
		return ""
	}
	if page < 1 {
		page = 1
	}
	return fmt.Sprintf("Page %d of %d (%d total). Use --page to see more.", page, pages, total)
}
