// Package culture adds the UI culture picker to the app bar.
package culture

import (
	"context"
	"net/http"

	"studio/internal/localization"
	"studio/internal/menu"
	"studio/internal/registry"
	"studio/internal/server"
	"studio/internal/ui"
)

// AppBarID identifies the picker in the app bar.
const AppBarID = "culture-picker"

// Module is the localization feature.
type Module struct {
	registry *registry.Registry

	server   *server.Server
	cultures *localization.Negotiator
}

// New creates the localization module.
func New(reg *registry.Registry) *Module {
	return &Module{registry: reg}
}

// Name implements module.Module.
func (m *Module) Name() string { return "localization" }

// Initialize implements module.Module.
func (m *Module) Initialize(ctx context.Context) error {
	var err error
	if m.server, err = registry.Resolve[*server.Server](m.registry); err != nil {
		return err
	}
	if m.cultures, err = registry.Resolve[*localization.Negotiator](m.registry); err != nil {
		return err
	}
	menus, err := registry.Resolve[*menu.Registry](m.registry)
	if err != nil {
		return err
	}

	// A single culture leaves nothing to pick.
	if len(m.cultures.Cultures()) > 1 {
		if err := menus.AddAppBarItems(menu.AppBarItem{
			ID:        AppBarID,
			Label:     "Language",
			Component: ui.ComponentCulture,
			Order:     20,
		}); err != nil {
			return err
		}
		if err := m.server.RegisterAppBar(AppBarID, m.pickerParams); err != nil {
			return err
		}
	}

	m.server.HandlePublic(http.MethodPost, "/culture", m.handleSet)
	return nil
}

func (m *Module) pickerParams(r *http.Request) (any, error) {
	return ui.CulturePickerParams{
		Cultures: m.cultures.Cultures(),
		Current:  localization.FromContext(r.Context()),
		Redirect: r.URL.RequestURI(),
	}, nil
}

func (m *Module) handleSet(w http.ResponseWriter, r *http.Request) {
	culture := r.PostFormValue("culture")
	redirect := server.SafeRedirect(r.PostFormValue("redirect"), "/")

	if !m.cultures.IsSupported(culture) {
		m.server.RenderError(w, r, http.StatusBadRequest, "Unsupported language", culture)
		return
	}

	http.SetCookie(w, localization.Cookie(m.cultures.Negotiate(culture, ""), r.TLS != nil))
	server.Redirect(w, r, redirect)
}
