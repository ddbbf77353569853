package environment

import (
	"fmt"
	"os"
)

// ResolveOptions carries the inputs used to pick the initial backend.
type ResolveOptions struct {
	// ExplicitURL comes from the --backend flag.
	ExplicitURL string
	// Name comes from the --environment flag.
	Name string
	// Store holds environments.yaml. May be nil.
	Store *Storage
	// Primary is backend.url from config.yaml.
	Primary Backend
}

// Resolve determines the initial selection. Precedence, highest first:
//  1. --backend flag
//  2. --environment flag
//  3. STUDIO_ENVIRONMENT environment variable
//  4. current environment in environments.yaml
//  5. backend.url from config.yaml
func Resolve(opts ResolveOptions) (Selection, error) {
	if opts.ExplicitURL != "" {
		b, err := NewBackend(opts.ExplicitURL)
		if err != nil {
			return Selection{}, err
		}
		return Selection{Name: "explicit", Backend: b}, nil
	}

	if opts.Name != "" {
		return lookup(opts.Store, opts.Name, opts.Primary)
	}

	if name := os.Getenv(EnvVar); name != "" {
		return lookup(opts.Store, name, opts.Primary)
	}

	if opts.Store != nil {
		env, err := opts.Store.Current()
		if err != nil {
			return Selection{}, err
		}
		if env != nil {
			b, err := env.Backend()
			if err != nil {
				return Selection{}, fmt.Errorf("environment %q: %w", env.Name, err)
			}
			return Selection{Name: env.Name, Backend: b}, nil
		}
	}

	if opts.Primary.IsZero() {
		return Selection{}, fmt.Errorf("no backend configured")
	}
	return Selection{Name: PrimaryName, Backend: opts.Primary}, nil
}

func lookup(store *Storage, name string, primary Backend) (Selection, error) {
	if name == PrimaryName {
		return Selection{Name: PrimaryName, Backend: primary}, nil
	}
	if store == nil {
		return Selection{}, &NotFoundError{Name: name}
	}
	env, err := store.Get(name)
	if err != nil {
		return Selection{}, err
	}
	if env == nil {
		return Selection{}, &NotFoundError{Name: name}
	}
	b, err := env.Backend()
	if err != nil {
		return Selection{}, fmt.Errorf("environment %q: %w", name, err)
	}
	return Selection{Name: name, Backend: b}, nil
}
