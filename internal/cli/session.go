package cli

import (
	"context"
	"fmt"
	"net/http"

	"studio/internal/auth"
	"studio/internal/client"
	"studio/internal/config"
	"studio/internal/environment"
	"studio/pkg/logging"
)

// Session is what a CLI command needs to talk to the selected engine.
// Tokens are always file-backed: each environment keeps its own login
// under the token directory.
type Session struct {
	Config    config.StudioConfig
	Store     *environment.Storage
	Selection environment.Selection
	Accessor  *environment.Accessor
	Tokens    *auth.JwtAccessor
	Client    *client.HTTPClient
	Validator *auth.CredentialsValidator
}

// SessionOptions carries test seams for NewSession.
type SessionOptions struct {
	// Transport overrides the HTTP transport for engine calls.
	Transport http.RoundTripper
	// UserAgent is sent with engine calls.
	UserAgent string
}

// NewSession loads configuration from flags.ConfigPath and resolves the
// backend from the flags, the environment variable and environments.yaml.
func NewSession(flags *CommandFlags, opts SessionOptions) (*Session, error) {
	cfg, err := config.LoadConfig(flags.ConfigPath)
	if err != nil {
		return nil, err
	}

	primary, err := environment.NewBackend(cfg.Backend.URL)
	if err != nil {
		return nil, fmt.Errorf("invalid backend.url in configuration: %w", err)
	}

	store := environment.NewStorageWithPath(flags.ConfigPath)
	sel, err := environment.Resolve(environment.ResolveOptions{
		ExplicitURL: flags.Backend,
		Name:        flags.Environment,
		Store:       store,
		Primary:     primary,
	})
	if err != nil {
		return nil, err
	}
	logging.Debug("CLI", "Using environment %s (%s)", sel.Name, sel.Backend)

	accessor := environment.NewAccessor(primary, store)
	accessor.Override(sel.Name, sel.Backend)

	storage, err := auth.NewFileStorage(auth.FileStorageConfig{Dir: cfg.Auth.TokenDir, Profile: sel.Name})
	if err != nil {
		return nil, err
	}
	tokens := auth.NewJwtAccessor(storage)

	httpClient := &http.Client{Timeout: cfg.Backend.Timeout, Transport: opts.Transport}
	refresher := auth.NewRefresher(tokens, accessor, httpClient)

	return &Session{
		Config:    cfg,
		Store:     store,
		Selection: sel,
		Accessor:  accessor,
		Tokens:    tokens,
		Client: client.New(client.Config{
			Backend:   accessor,
			Tokens:    refresher.TokenSource,
			Timeout:   cfg.Backend.Timeout,
			Transport: opts.Transport,
			UserAgent: opts.UserAgent,
		}),
		Validator: auth.NewCredentialsValidator(accessor, httpClient),
	}, nil
}

// Explain wraps Explain with the session's selection.
func (s *Session) Explain(err error) error {
	return Explain(err, s.Selection)
}

// Status reports the stored login for the selected environment.
func (s *Session) Status(ctx context.Context) (auth.Status, error) {
	return s.Tokens.Status(ctx)
}
