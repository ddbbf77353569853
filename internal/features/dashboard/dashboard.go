// Package dashboard renders the console's landing page.
package dashboard

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"golang.org/x/sync/errgroup"

	"studio/internal/api"
	"studio/internal/client"
	"studio/internal/environment"
	"studio/internal/menu"
	"studio/internal/registry"
	"studio/internal/server"
	"studio/internal/ui"
)

// Module is the dashboard feature.
type Module struct {
	registry *registry.Registry

	server       *server.Server
	client       client.WorkflowClient
	environments *environment.Accessor
}

// New creates the dashboard module.
func New(reg *registry.Registry) *Module {
	return &Module{registry: reg}
}

// Name implements module.Module.
func (m *Module) Name() string { return "dashboard" }

// Initialize implements module.Module.
func (m *Module) Initialize(ctx context.Context) error {
	var err error
	if m.server, err = registry.Resolve[*server.Server](m.registry); err != nil {
		return err
	}
	if m.client, err = registry.Resolve[client.WorkflowClient](m.registry); err != nil {
		return err
	}
	if m.environments, err = registry.Resolve[*environment.Accessor](m.registry); err != nil {
		return err
	}
	menus, err := registry.Resolve[*menu.Registry](m.registry)
	if err != nil {
		return err
	}

	if err := menus.AddItems(menu.Item{
		ID:    "dashboard",
		Label: "Dashboard",
		Icon:  "home",
		Href:  "/",
		Order: 0,
		Match: menu.MatchExact,
	}); err != nil {
		return err
	}

	m.server.Handle(http.MethodGet, "/", m.handleDashboard)
	return nil
}

func (m *Module) handleDashboard(w http.ResponseWriter, r *http.Request) {
	selection := m.environments.Current()
	params := ui.DashboardParams{
		Environment: selection.Name,
		Backend:     selection.Backend.String(),
		User:        server.AuthStatus(r.Context()).User,
	}

	var mu sync.Mutex
	record := func(what string, err error) error {
		if api.IsUnauthorized(err) {
			return err
		}
		mu.Lock()
		params.Errors = append(params.Errors, fmt.Sprintf("Could not count %s: %v", what, err))
		mu.Unlock()
		return nil
	}

	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() error {
		defs, err := m.client.ListDefinitions(ctx, api.DefinitionListOptions{
			ListOptions:    api.ListOptions{Page: 1, PageSize: 1},
			VersionOptions: api.VersionLatest,
		})
		if err != nil {
			return record("workflow definitions", err)
		}
		params.DefinitionCount = defs.TotalCount
		return nil
	})
	g.Go(func() error {
		instances, err := m.client.ListInstances(ctx, api.InstanceListOptions{ListOptions: api.ListOptions{Page: 1, PageSize: 1}})
		if err != nil {
			return record("workflow instances", err)
		}
		params.InstanceCount = instances.TotalCount
		return nil
	})
	g.Go(func() error {
		faulted, err := m.client.ListInstances(ctx, api.InstanceListOptions{
			ListOptions: api.ListOptions{Page: 1, PageSize: 1},
			Status:      api.StatusFaulted,
		})
		if err != nil {
			return record("faulted instances", err)
		}
		params.FaultedCount = faulted.TotalCount
		return nil
	})

	if err := g.Wait(); err != nil {
		m.server.Fail(w, r, err)
		return
	}

	m.server.RenderPage(w, r, server.Page{Title: "Dashboard", Component: ui.ComponentDashboard, Params: params})
}
