package workflows

import (
	"net/http"
	"net/url"
	"strings"

	"studio/internal/api"
	"studio/internal/server"
	"studio/internal/ui"
	"studio/pkg/logging"
)

func (m *Module) registerDefinitionRoutes() {
	m.server.Handle(http.MethodGet, "/workflows/definitions", m.handleListDefinitions)
	m.server.Handle(http.MethodGet, "/workflows/definitions/{id}", m.handleGetDefinition)
	m.server.Handle(http.MethodPost, "/workflows/definitions/{id}/publish", m.handlePublish)
	m.server.Handle(http.MethodPost, "/workflows/definitions/{id}/retract", m.handleRetract)
	m.server.Handle(http.MethodPost, "/workflows/definitions/{id}/delete", m.handleDeleteDefinition)
}

func definitionURL(id string) string {
	return "/workflows/definitions/" + url.PathEscape(id)
}

func (m *Module) handleListDefinitions(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	search := strings.TrimSpace(q.Get("search"))
	page := ui.ParsePage(q)

	list, err := m.client.ListDefinitions(r.Context(), api.DefinitionListOptions{
		ListOptions:    api.ListOptions{Page: page, PageSize: DefaultPageSize},
		SearchTerm:     search,
		VersionOptions: api.VersionLatest,
		Label:          q.Get("label"),
	})
	if err != nil {
		m.server.Fail(w, r, err)
		return
	}

	query := url.Values{}
	if search != "" {
		query.Set("search", search)
	}
	m.server.RenderPage(w, r, server.Page{
		Title:     "Workflow definitions",
		Component: ui.ComponentDefinitions,
		Params: ui.DefinitionListParams{
			Items:      list.Items,
			Search:     search,
			Pagination: ui.NewPagination("/workflows/definitions", query, page, DefaultPageSize, list.TotalCount),
		},
	})
}

func (m *Module) handleGetDefinition(w http.ResponseWriter, r *http.Request) {
	id := server.Var(r, "id")
	ctx := r.Context()

	def, err := m.client.GetDefinition(ctx, id, api.VersionLatest)
	if err != nil {
		m.server.Fail(w, r, err)
		return
	}

	params := ui.DefinitionParams{Definition: def}

	labels, err := m.definitionLabels(r, id)
	if err != nil {
		if api.IsUnauthorized(err) {
			m.server.Fail(w, r, err)
			return
		}
		logging.Warn("Workflows", "Failed to load labels of %s: %v", id, err)
	}
	params.Labels = labels

	if r.URL.Query().Get("confirm") == "delete" {
		params.Dialog = ui.ConfirmDelete(m.dialogID("delete-definition"), "workflow definition", def.Title(), definitionURL(id)+"/delete")
	}

	m.server.RenderPage(w, r, server.Page{Title: def.Title(), Component: ui.ComponentDefinition, Params: params})
}

// definitionLabels resolves the label IDs attached to a definition.
func (m *Module) definitionLabels(r *http.Request, definitionID string) ([]api.Label, error) {
	ids, err := m.client.GetDefinitionLabels(r.Context(), definitionID)
	if err != nil || len(ids) == 0 {
		return nil, err
	}
	all, err := m.client.ListLabels(r.Context())
	if err != nil {
		return nil, err
	}

	byID := make(map[string]api.Label, len(all.Items))
	for _, l := range all.Items {
		byID[l.ID] = l
	}
	labels := make([]api.Label, 0, len(ids))
	for _, id := range ids {
		if l, ok := byID[id]; ok {
			labels = append(labels, l)
		}
	}
	return labels, nil
}

func (m *Module) handlePublish(w http.ResponseWriter, r *http.Request) {
	id := server.Var(r, "id")
	def, err := m.client.PublishDefinition(r.Context(), id)
	if err != nil {
		m.server.Fail(w, r, err)
		return
	}
	logging.Info("Workflows", "Published workflow definition %s (version %d)", id, def.Version)
	server.SetNotice(w, "Published "+def.Title()+".")
	server.Redirect(w, r, definitionURL(id))
}

func (m *Module) handleRetract(w http.ResponseWriter, r *http.Request) {
	id := server.Var(r, "id")
	def, err := m.client.RetractDefinition(r.Context(), id)
	if err != nil {
		m.server.Fail(w, r, err)
		return
	}
	logging.Info("Workflows", "Retracted workflow definition %s", id)
	server.SetNotice(w, "Retracted "+def.Title()+".")
	server.Redirect(w, r, definitionURL(id))
}

func (m *Module) handleDeleteDefinition(w http.ResponseWriter, r *http.Request) {
	id := server.Var(r, "id")

	result, err := ui.ParseDialogResult(r.PostFormValue("result"))
	if err != nil {
		m.server.RenderError(w, r, http.StatusBadRequest, "Invalid request", err.Error())
		return
	}
	if !result.Confirmed() {
		server.Redirect(w, r, definitionURL(id))
		return
	}

	if err := m.client.DeleteDefinition(r.Context(), id); err != nil {
		m.server.Fail(w, r, err)
		return
	}
	logging.Info("Workflows", "Deleted workflow definition %s", id)
	server.SetNotice(w, "Workflow definition deleted.")
	server.Redirect(w, r, "/workflows/definitions")
}
