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

func (m *Module) registerInstanceRoutes() {
	m.server.Handle(http.MethodGet, "/workflows/instances", m.handleListInstances)
	m.server.Handle(http.MethodGet, "/workflows/instances/{id}", m.handleGetInstance)
	m.server.Handle(http.MethodPost, "/workflows/instances/{id}/delete", m.handleDeleteInstance)
}

func instanceURL(id string) string {
	return "/workflows/instances/" + url.PathEscape(id)
}

// parseStatus accepts a known status case-insensitively; anything else
// means no filter.
func parseStatus(s string) api.WorkflowStatus {
	for _, status := range api.ValidStatuses {
		if strings.EqualFold(s, string(status)) {
			return status
		}
	}
	return ""
}

func (m *Module) handleListInstances(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	definitionID := strings.TrimSpace(q.Get("definitionId"))
	status := parseStatus(q.Get("status"))
	page := ui.ParsePage(q)

	list, err := m.client.ListInstances(r.Context(), api.InstanceListOptions{
		ListOptions:  api.ListOptions{Page: page, PageSize: DefaultPageSize},
		DefinitionID: definitionID,
		Status:       status,
	})
	if err != nil {
		m.server.Fail(w, r, err)
		return
	}

	query := url.Values{}
	if definitionID != "" {
		query.Set("definitionId", definitionID)
	}
	if status != "" {
		query.Set("status", string(status))
	}
	m.server.RenderPage(w, r, server.Page{
		Title:     "Workflow instances",
		Component: ui.ComponentInstances,
		Params: ui.InstanceListParams{
			Items:        list.Items,
			DefinitionID: definitionID,
			Status:       status,
			Statuses:     api.ValidStatuses,
			Pagination:   ui.NewPagination("/workflows/instances", query, page, DefaultPageSize, list.TotalCount),
		},
	})
}

func (m *Module) handleGetInstance(w http.ResponseWriter, r *http.Request) {
	id := server.Var(r, "id")

	instance, err := m.client.GetInstance(r.Context(), id)
	if err != nil {
		m.server.Fail(w, r, err)
		return
	}

	params := ui.InstanceParams{Instance: instance}
	if r.URL.Query().Get("confirm") == "delete" {
		params.Dialog = ui.ConfirmDelete(m.dialogID("delete-instance"), "workflow instance", id, instanceURL(id)+"/delete")
	}

	m.server.RenderPage(w, r, server.Page{Title: "Instance " + id, Component: ui.ComponentInstance, Params: params})
}

func (m *Module) handleDeleteInstance(w http.ResponseWriter, r *http.Request) {
	id := server.Var(r, "id")

	result, err := ui.ParseDialogResult(r.PostFormValue("result"))
	if err != nil {
		m.server.RenderError(w, r, http.StatusBadRequest, "Invalid request", err.Error())
		return
	}
	if !result.Confirmed() {
		server.Redirect(w, r, instanceURL(id))
		return
	}

	if err := m.client.DeleteInstance(r.Context(), id); err != nil {
		m.server.Fail(w, r, err)
		return
	}
	logging.Info("Workflows", "Deleted workflow instance %s", id)
	server.SetNotice(w, "Workflow instance deleted.")
	server.Redirect(w, r, "/workflows/instances")
}
