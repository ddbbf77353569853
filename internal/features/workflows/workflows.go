// Package workflows adds the workflow definition and instance pages.
package workflows

import (
	"context"

	"studio/internal/client"
	"studio/internal/identity"
	"studio/internal/menu"
	"studio/internal/registry"
	"studio/internal/server"
)

// DefaultPageSize is the number of rows per list page.
const DefaultPageSize = 20

// GroupName is the sidebar group shared with the activities module.
const GroupName = "Workflows"

// Module is the workflows feature.
type Module struct {
	registry *registry.Registry

	server *server.Server
	client client.WorkflowClient
	ids    identity.Generator
}

// New creates the workflows module.
func New(reg *registry.Registry) *Module {
	return &Module{registry: reg}
}

// Name implements module.Module.
func (m *Module) Name() string { return "workflows" }

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

	if err := menus.AddGroup(menu.Group{Name: GroupName, Order: 10}); err != nil {
		return err
	}
	if err := menus.AddItems(
		menu.Item{ID: "workflows-definitions", Label: "Definitions", Icon: "sitemap", Href: "/workflows/definitions", Group: GroupName, Order: 0},
		menu.Item{ID: "workflows-instances", Label: "Instances", Icon: "play", Href: "/workflows/instances", Group: GroupName, Order: 10},
	); err != nil {
		return err
	}

	m.registerDefinitionRoutes()
	m.registerInstanceRoutes()
	return nil
}

// dialogID returns a fresh element ID for a confirmation dialog.
func (m *Module) dialogID(prefix string) string {
	return prefix + "-" + identity.NewCompactID(m.ids)[:8]
}
