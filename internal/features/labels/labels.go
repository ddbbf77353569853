// Package labels manages the labels that can be attached to workflow
// definitions.
package labels

import (
	"context"
	"net/http"
	"net/url"

	"studio/internal/api"
	"studio/internal/client"
	"studio/internal/identity"
	"studio/internal/menu"
	"studio/internal/registry"
	"studio/internal/server"
	"studio/internal/ui"
	"studio/pkg/logging"
)

// Module is the labels feature.
type Module struct {
	registry *registry.Registry

	server *server.Server
	client client.WorkflowClient
	ids    identity.Generator
}

// New creates the labels module.
func New(reg *registry.Registry) *Module {
	return &Module{registry: reg}
}

// Name implements module.Module.
func (m *Module) Name() string { return "labels" }

// Initialize implements module.Module.
func (m *Module) Initialize(ctx context.Context) error {
	var err error
	if m.server, err = registry.Resolve[*server.Server](m.registry); err != nil {
		return err
	}
	if m.client, err = registry.Resolve[client.WorkflowClient](m.registry); err != nil {
		return err
	}
	if m.ids, err = registry.Resolve[identity.Generator](m.registry); err != nil {
		return err
	}
	menus, err := registry.Resolve[*menu.Registry](m.registry)
	if err != nil {
		return err
	}

	if err := menus.AddGroup(menu.Group{Name: "Settings", Order: 90}); err != nil {
		return err
	}
	if err := menus.AddItems(menu.Item{ID: "labels", Label: "Labels", Icon: "tag", Href: "/labels", Group: "Settings"}); err != nil {
		return err
	}

	m.server.Handle(http.MethodGet, "/labels", m.handleList)
	m.server.Handle(http.MethodPost, "/labels", m.handleCreate)
	m.server.Handle(http.MethodPost, "/labels/{id}", m.handleUpdate)
	m.server.Handle(http.MethodPost, "/labels/{id}/delete", m.handleDelete)
	return nil
}

// handleList renders the labels. ?edit=new or ?edit={id} opens the editor,
// ?delete={id} opens the delete confirmation.
func (m *Module) handleList(w http.ResponseWriter, r *http.Request) {
	list, err := m.client.ListLabels(r.Context())
	if err != nil {
		m.server.Fail(w, r, err)
		return
	}

	params := ui.LabelListParams{Labels: list.Items}
	q := r.URL.Query()

	if edit := q.Get("edit"); edit != "" {
		if edit == "new" {
			params.Editor = &ui.LabelEditorParams{}
		} else if l := find(list.Items, edit); l != nil {
			params.Editor = &ui.LabelEditorParams{ID: l.ID, Name: l.Name, Description: l.Description, Color: l.Color}
		} else {
			m.server.Fail(w, r, api.NewNotFoundError("label", edit))
			return
		}
	}

	if del := q.Get("delete"); del != "" {
		l := find(list.Items, del)
		if l == nil {
			m.server.Fail(w, r, api.NewNotFoundError("label", del))
			return
		}
		id := "delete-label-" + identity.NewCompactID(m.ids)[:8]
		params.Dialog = ui.ConfirmDelete(id, "label", l.Name, "/labels/"+url.PathEscape(l.ID)+"/delete")
	}

	m.renderList(w, r, http.StatusOK, params)
}

func (m *Module) renderList(w http.ResponseWriter, r *http.Request, status int, params ui.LabelListParams) {
	m.server.RenderPage(w, r, server.Page{Title: "Labels", Component: ui.ComponentLabels, Params: params, Status: status})
}

func find(labels []api.Label, id string) *api.Label {
	for i := range labels {
		if labels[i].ID == id {
			return &labels[i]
		}
	}
	return nil
}

func (m *Module) handleCreate(w http.ResponseWriter, r *http.Request) {
	m.save(w, r, "")
}

func (m *Module) handleUpdate(w http.ResponseWriter, r *http.Request) {
	m.save(w, r, server.Var(r, "id"))
}

// save handles the editor form. Invalid input re-renders the editor with
// field errors instead of calling the engine.
func (m *Module) save(w http.ResponseWriter, r *http.Request, id string) {
	if err := r.ParseForm(); err != nil {
		m.server.RenderError(w, r, http.StatusBadRequest, "Invalid request", err.Error())
		return
	}

	result, err := ui.ParseDialogResult(r.PostForm.Get("result"))
	if err != nil {
		m.server.RenderError(w, r, http.StatusBadRequest, "Invalid request", err.Error())
		return
	}
	if !result.Confirmed() {
		server.Redirect(w, r, "/labels")
		return
	}

	editor := &ui.LabelEditorParams{
		ID:          id,
		Name:        r.PostForm.Get("name"),
		Description: r.PostForm.Get("description"),
		Color:       r.PostForm.Get("color"),
	}
	if !editor.Validate() {
		list, err := m.client.ListLabels(r.Context())
		if err != nil {
			m.server.Fail(w, r, err)
			return
		}
		m.renderList(w, r, http.StatusUnprocessableEntity, ui.LabelListParams{Labels: list.Items, Editor: editor})
		return
	}

	var label *api.Label
	if editor.IsNew() {
		label, err = m.client.CreateLabel(r.Context(), editor.Request())
	} else {
		label, err = m.client.UpdateLabel(r.Context(), id, editor.Request())
	}
	if err != nil {
		m.server.Fail(w, r, err)
		return
	}

	logging.Info("Labels", "Saved label %s (%s)", label.ID, label.Name)
	server.SetNotice(w, "Label "+label.Name+" saved.")
	server.Redirect(w, r, "/labels")
}

func (m *Module) handleDelete(w http.ResponseWriter, r *http.Request) {
	id := server.Var(r, "id")

	result, err := ui.ParseDialogResult(r.PostFormValue("result"))
	if err != nil {
		m.server.RenderError(w, r, http.StatusBadRequest, "Invalid request", err.Error())
		return
	}
	if result.Confirmed() {
		if err := m.client.DeleteLabel(r.Context(), id); err != nil {
			m.server.Fail(w, r, err)
			return
		}
		logging.Info("Labels", "Deleted label %s", id)
		server.SetNotice(w, "Label deleted.")
	}
	server.Redirect(w, r, "/labels")
}
