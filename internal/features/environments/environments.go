// Package environments adds the environment picker to the app bar.
package environments

import (
	"context"
	"errors"
	"net/http"

	"studio/internal/environment"
	"studio/internal/menu"
	"studio/internal/registry"
	"studio/internal/server"
	"studio/internal/ui"
	"studio/pkg/logging"
)

// AppBarID identifies the picker in the app bar.
const AppBarID = "environment-picker"

// Module is the environments feature.
type Module struct {
	registry *registry.Registry

	server   *server.Server
	accessor *environment.Accessor
}

// New creates the environments module.
func New(reg *registry.Registry) *Module {
	return &Module{registry: reg}
}

// Name implements module.Module.
func (m *Module) Name() string { return "environments" }

// Initialize implements module.Module.
func (m *Module) Initialize(ctx context.Context) error {
	var err error
	if m.server, err = registry.Resolve[*server.Server](m.registry); err != nil {
		return err
	}
	if m.accessor, err = registry.Resolve[*environment.Accessor](m.registry); err != nil {
		return err
	}
	menus, err := registry.Resolve[*menu.Registry](m.registry)
	if err != nil {
		return err
	}

	if err := menus.AddAppBarItems(menu.AppBarItem{
		ID:        AppBarID,
		Label:     "Environment",
		Component: ui.ComponentEnvPicker,
		Order:     10,
	}); err != nil {
		return err
	}
	if err := m.server.RegisterAppBar(AppBarID, m.pickerParams); err != nil {
		return err
	}

	m.accessor.OnChange(func(previous, current environment.Selection) {
		logging.Info("Environments", "Backend switched from %s to %s (%s)", previous.Name, current.Name, current.Backend)
	})

	m.server.Handle(http.MethodPost, "/environments/select", m.handleSelect)
	return nil
}

func (m *Module) pickerParams(r *http.Request) (any, error) {
	envs, err := m.accessor.Environments()
	if err != nil {
		return nil, err
	}

	current := m.accessor.Current()
	params := ui.EnvironmentPickerParams{
		Current:  current.Name,
		Backend:  current.Backend.String(),
		Redirect: r.URL.RequestURI(),
	}
	for _, env := range envs {
		params.Options = append(params.Options, ui.EnvironmentOption{
			Name:     env.Name,
			URL:      env.URL,
			Selected: env.Name == current.Name,
		})
	}
	return params, nil
}

func (m *Module) handleSelect(w http.ResponseWriter, r *http.Request) {
	name := r.PostFormValue("environment")
	redirect := server.SafeRedirect(r.PostFormValue("redirect"), "/")

	if err := m.accessor.Select(name); err != nil {
		var notFound *environment.NotFoundError
		if errors.As(err, &notFound) {
			m.server.RenderError(w, r, http.StatusNotFound, "Unknown environment", err.Error())
			return
		}
		m.server.Fail(w, r, err)
		return
	}

	server.SetNotice(w, "Switched to "+m.accessor.Current().Name+".")
	server.Redirect(w, r, redirect)
}
