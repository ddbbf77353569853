// Package activities lists the activity types the engine offers.
package activities

import (
	"context"
	"net/http"

	"studio/internal/client"
	"studio/internal/menu"
	"studio/internal/registry"
	"studio/internal/server"
	"studio/internal/ui"
)

// Module is the activities feature.
type Module struct {
	registry *registry.Registry

	server *server.Server
	client client.WorkflowClient
}

// New creates the activities module.
func New(reg *registry.Registry) *Module {
	return &Module{registry: reg}
}

// Name implements module.Module.
func (m *Module) Name() string { return "activities" }

// Initialize implements module.Module.
func (m *Module) Initialize(ctx context.Context) error {
	var err error
	if m.server, err = registry.Resolve[*server.Server](m.registry); err != nil {
		return err
	}
	if m.client, err = registry.Resolve[client.WorkflowClient](m.registry); err != nil {
		return err
	}
	menus, err := registry.Resolve[*menu.Registry](m.registry)
	if err != nil {
		return err
	}

	if err := menus.AddGroup(menu.Group{Name: "Workflows", Order: 10}); err != nil {
		return err
	}
	if err := menus.AddItems(menu.Item{
		ID:    "activities",
		Label: "Activities",
		Icon:  "puzzle",
		Href:  "/activities",
		Group: "Workflows",
		Order: 20,
	}); err != nil {
		return err
	}

	m.server.Handle(http.MethodGet, "/activities", m.handleList)
	return nil
}

func (m *Module) handleList(w http.ResponseWriter, r *http.Request) {
	descriptors, err := m.client.ListActivities(r.Context())
	if err != nil {
		m.server.Fail(w, r, err)
		return
	}

	m.server.RenderPage(w, r, server.Page{
		Title:     "Activities",
		Component: ui.ComponentActivities,
		Params: ui.ActivityListParams{
			Categories: ui.GroupActivities(descriptors),
			Total:      len(descriptors),
		},
	})
}
