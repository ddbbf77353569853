package ui

import (
	"bytes"
	"html/template"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"studio/internal/api"
	"studio/internal/menu"
)

func newTestRenderer(t *testing.T) *Renderer {
	t.Helper()
	r, err := NewRenderer()
	require.NoError(t, err)
	return r
}

func render(t *testing.T, r *Renderer, name string, params any) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, r.Render(&buf, name, params))
	return buf.String()
}

func TestRenderer_AllComponentsExist(t *testing.T) {
	r := newTestRenderer(t)
	for _, name := range []string{
		ComponentShell, ComponentLogin, ComponentDashboard, ComponentDefinitions,
		ComponentDefinition, ComponentInstances, ComponentInstance, ComponentActivities,
		ComponentLabels, ComponentLabelEditor, ComponentDialog, ComponentError,
		ComponentEnvPicker, ComponentCulture, ComponentUserMenu,
	} {
		assert.True(t, r.Has(name), "missing component %s", name)
	}
}

func TestRenderer_Shell(t *testing.T) {
	r := newTestRenderer(t)
	out := render(t, r, ComponentShell, ShellParams{
		Title: "Labels",
		Sections: []menu.Section{
			{Items: []menu.Item{{ID: "dashboard", Label: "Dashboard", Href: "/"}}},
			{Group: menu.Group{Name: "Settings"}, Items: []menu.Item{{ID: "labels", Label: "Labels", Href: "/labels"}}},
		},
		ActiveID: "labels",
		AppBar:   []template.HTML{"<span>picker</span>"},
		Content:  "<p>body</p>",
	})

	assert.Contains(t, out, "<title>Labels · Workflow Studio</title>")
	assert.Contains(t, out, `<h4>Settings</h4>`)
	assert.Contains(t, out, `<a href="/labels" class="active" aria-current="page">`)
	assert.Contains(t, out, "<span>picker</span>")
	assert.Contains(t, out, "<p>body</p>")
	assert.Contains(t, out, `lang="en-US"`)
}

func TestRenderer_EscapesUserContent(t *testing.T) {
	r := newTestRenderer(t)
	out := render(t, r, ComponentDefinitions, DefinitionListParams{
		Items:      []api.WorkflowDefinitionSummary{{DefinitionID: "d1", Name: "<script>alert(1)</script>"}},
		Pagination: NewPagination("/workflows/definitions", nil, 1, 20, 1),
	})
	assert.NotContains(t, out, "<script>alert(1)</script>")
	assert.Contains(t, out, "&lt;script&gt;")
}

func TestRenderer_DefinitionsPager(t *testing.T) {
	r := newTestRenderer(t)
	out := render(t, r, ComponentDefinitions, DefinitionListParams{
		Items:      []api.WorkflowDefinitionSummary{{DefinitionID: "d1", Name: "One"}},
		Search:     "on",
		Pagination: NewPagination("/workflows/definitions", url.Values{"search": {"on"}}, 2, 1, 3),
	})
	assert.Contains(t, out, "Page 2 of 3")
	assert.Contains(t, out, "page=1")
	assert.Contains(t, out, "page=3")
}

func TestRenderer_Instance(t *testing.T) {
	r := newTestRenderer(t)
	created := time.Date(2024, 3, 1, 10, 30, 0, 0, time.UTC)
	out := render(t, r, ComponentInstance, InstanceParams{
		Instance: &api.WorkflowInstance{
			WorkflowInstanceSummary: api.WorkflowInstanceSummary{
				ID: "i1", DefinitionID: "d1", WorkflowStatus: api.StatusFaulted, CreatedAt: created,
			},
			Faults: []api.Fault{{FaultedActivityID: "a1", Message: "division by zero"}},
		},
		Dialog: ConfirmDelete("confirm-delete", "workflow instance", "i1", "/workflows/instances/i1/delete"),
	})
	assert.Contains(t, out, "badge-error")
	assert.Contains(t, out, "division by zero")
	assert.Contains(t, out, `value="close"`)
	assert.Contains(t, out, `value="cancel"`)
}

func TestRenderer_LabelEditorErrors(t *testing.T) {
	r := newTestRenderer(t)
	editor := &LabelEditorParams{Name: "", Color: "nope"}
	editor.Validate()

	out := render(t, r, ComponentLabels, LabelListParams{Editor: editor})
	assert.Contains(t, out, "Name is required.")
	assert.Contains(t, out, "Color must look like #rgb or #rrggbb.")
	assert.Contains(t, out, `action="/labels"`)
}

func TestRenderer_RenderHTML(t *testing.T) {
	r := newTestRenderer(t)
	html, err := r.RenderHTML(ComponentUserMenu, UserMenuParams{Authenticated: true, User: "alice"})
	require.NoError(t, err)
	assert.Contains(t, string(html), "alice")
	assert.Contains(t, string(html), "Sign out")

	_, err = r.RenderHTML("missing-component", nil)
	assert.Error(t, err)
}

func TestStatusClass(t *testing.T) {
	assert.Equal(t, "badge-error", StatusClass(api.StatusFaulted))
	assert.Equal(t, "badge-idle", StatusClass(""))
}
