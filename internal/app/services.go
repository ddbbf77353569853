package app

import (
	"fmt"
	"net/http"
	"time"

	"studio/internal/auth"
	"studio/internal/client"
	"studio/internal/config"
	"studio/internal/environment"
	"studio/internal/features/activities"
	"studio/internal/features/culture"
	"studio/internal/features/dashboard"
	"studio/internal/features/environments"
	"studio/internal/features/labels"
	"studio/internal/features/security"
	"studio/internal/features/workflows"
	"studio/internal/identity"
	"studio/internal/localization"
	"studio/internal/menu"
	"studio/internal/module"
	"studio/internal/registry"
	"studio/internal/server"
	"studio/internal/ui"
	"studio/pkg/logging"
)

// SessionIdleTimeout drops server-side tokens of idle browser sessions.
const SessionIdleTimeout = 12 * time.Hour

// Services holds everything the console needs at runtime. It is built once
// by InitializeServices; feature modules see it only through Registry.
type Services struct {
	// Registry maps capabilities to implementations for feature modules.
	Registry *registry.Registry

	Server   *server.Server
	Menu     *menu.Registry
	Modules  *module.Initializer
	Accessor *environment.Accessor
	Store    *environment.Storage
	Tokens   *auth.JwtAccessor
	Client   *client.HTTPClient

	// stop releases resources such as the session janitor.
	stop []func()
}

// Close releases background resources.
func (s *Services) Close() {
	for _, fn := range s.stop {
		fn()
	}
	s.stop = nil
}

// Features returns the console's feature modules in initialization order.
// Dashboard comes first so it heads the menu at equal order.
func Features(reg *registry.Registry) []module.Module {
	return []module.Module{
		dashboard.New(reg),
		workflows.New(reg),
		activities.New(reg),
		labels.New(reg),
		environments.New(reg),
		security.New(reg),
		culture.New(reg),
	}
}

// InitializeServices wires the console. Modules are registered but not yet
// initialized; that happens in Run, before the server starts listening.
//
// Initialization order:
//  1. Backend selection (flags, STUDIO_ENVIRONMENT, environments.yaml, config)
//  2. Token storage chosen by auth.storage and scoped by environment, then
//     the token accessor
//  3. Engine client and credentials validator
//  4. Renderer, menu registry, culture negotiator and server
//  5. Capability registry and feature modules
func InitializeServices(cfg *Config) (*Services, error) {
	sc := cfg.StudioConfig
	if sc == nil {
		defaults := config.GetDefaultConfig()
		sc = &defaults
	}

	primary, err := environment.NewBackend(sc.Backend.URL)
	if err != nil {
		return nil, fmt.Errorf("invalid backend.url: %w", err)
	}
	store := environment.NewStorageWithPath(cfg.ConfigPath)
	sel, err := environment.Resolve(environment.ResolveOptions{
		ExplicitURL: cfg.Backend,
		Name:        cfg.Environment,
		Store:       store,
		Primary:     primary,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to select backend: %w", err)
	}
	accessor := environment.NewAccessor(primary, store)
	if sel.Name != environment.PrimaryName {
		accessor.Override(sel.Name, sel.Backend)
	}
	logging.Info("Services", "Using backend %s (%s)", sel.Name, sel.Backend)

	services := &Services{Accessor: accessor, Store: store, Menu: menu.NewRegistry()}

	storage, stop, err := newTokenStorage(sc.Auth, func() string { return accessor.Current().Name })
	if err != nil {
		return nil, err
	}
	if stop != nil {
		services.stop = append(services.stop, stop)
	}
	services.Tokens = auth.NewJwtAccessor(storage)

	httpClient := &http.Client{Timeout: sc.Backend.Timeout}
	refresher := auth.NewRefresher(services.Tokens, accessor, httpClient)
	services.Client = client.New(client.Config{
		Backend:   accessor,
		Tokens:    refresher.TokenSource,
		Timeout:   sc.Backend.Timeout,
		UserAgent: "studio-console",
	})
	validator := auth.NewCredentialsValidator(accessor, httpClient)

	renderer, err := ui.NewRenderer()
	if err != nil {
		services.Close()
		return nil, fmt.Errorf("failed to load templates: %w", err)
	}
	cultures, err := localization.NewNegotiator(sc.Localization.SupportedCultures, sc.Localization.DefaultCulture)
	if err != nil {
		services.Close()
		return nil, err
	}

	ids := identity.NewGenerator()
	services.Modules = module.NewInitializer()

	serverCfg := server.Config{Host: sc.Server.Host, Port: sc.Server.Port}
	if cfg.Host != "" {
		serverCfg.Host = cfg.Host
	}
	if cfg.Port != 0 {
		serverCfg.Port = cfg.Port
	}
	services.Server, err = server.New(serverCfg, server.Dependencies{
		Renderer: renderer,
		Menu:     services.Menu,
		Cultures: cultures,
		Tokens:   services.Tokens,
		IDs:      ids,
		Modules:  services.Modules,
	})
	if err != nil {
		services.Close()
		return nil, err
	}

	reg := registry.New()
	registry.MustRegister(reg, services.Server)
	registry.MustRegister(reg, services.Menu)
	registry.MustRegister(reg, accessor)
	registry.MustRegister(reg, services.Tokens)
	registry.MustRegister(reg, cultures)
	registry.MustRegister[client.WorkflowClient](reg, services.Client)
	registry.MustRegister[auth.Validator](reg, validator)
	registry.MustRegister[identity.Generator](reg, ids)
	services.Registry = reg

	for _, m := range Features(reg) {
		if err := services.Modules.Register(m); err != nil {
			services.Close()
			return nil, err
		}
	}
	logging.Debug("Services", "Registered capabilities: %v", reg.Capabilities())

	return services, nil
}

// newTokenStorage picks the token storage variant. Tokens are kept per
// environment so a switch never sends one backend's tokens to another. File
// storage keys the token document by environment name, which shares the
// CLI's login. The returned stop func, when non-nil, ends background work.
func newTokenStorage(cfg config.AuthConfig, scope auth.ScopeFunc) (auth.TokenStorage, func(), error) {
	switch cfg.Storage {
	case config.TokenStorageFile:
		open := func(profile string) (auth.TokenStorage, error) {
			return auth.NewFileStorage(auth.FileStorageConfig{Dir: cfg.TokenDir, Profile: profile})
		}
		// Fail at startup rather than on the first sign-in.
		if _, err := open(scope()); err != nil {
			return nil, nil, err
		}
		logging.Info("Services", "Storing tokens on disk (profile %s)", scope())
		return auth.NewScopedStorage(scope, open), nil, nil
	case config.TokenStorageSession, "":
		sessions := auth.NewSessionStorage(SessionIdleTimeout)
		return auth.NewScopedStorage(scope, auth.PrefixScopes(sessions)), sessions.Stop, nil
	default:
		return nil, nil, fmt.Errorf("unknown token storage %q", cfg.Storage)
	}
}
