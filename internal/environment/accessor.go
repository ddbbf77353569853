package environment

import (
	"fmt"
	"sync"

	"studio/pkg/logging"
)

// PrimaryName labels the configured primary backend when no named
// environment is selected.
const PrimaryName = "primary"

// Selection is the active environment name together with its Backend.
type Selection struct {
	Name    string
	Backend Backend
}

// ChangeFunc is called after the selection changed.
type ChangeFunc func(previous, current Selection)

// Accessor holds the single current Backend that all remote API calls
// target. Callers must read Backend() per request and never cache the
// result, since the selection may change between calls.
//
// Writes are expected from one place at a time (the environment picker,
// the CLI or the file watcher) but are still serialized by a lock, so a
// concurrent reader sees either the old or the new Selection, never a mix.
type Accessor struct {
	mu        sync.RWMutex
	current   Selection
	primary   Backend
	store     *Storage
	listeners []ChangeFunc

	// persisted is the current name last seen in the store, "" for none.
	// Reload only follows the file when it changes.
	persisted string
}

// NewAccessor creates an accessor that starts on the primary backend.
// store may be nil, in which case selections are not persisted and only
// the primary backend is available.
func NewAccessor(primary Backend, store *Storage) *Accessor {
	a := &Accessor{
		current: Selection{Name: PrimaryName, Backend: primary},
		primary: primary,
		store:   store,
	}
	if store != nil {
		env, err := store.Current()
		if err != nil {
			logging.Warn("Environment", "Failed to read the persisted selection: %v", err)
		} else if env != nil {
			a.persisted = env.Name
		}
	}
	return a
}

// Backend returns the currently selected backend.
func (a *Accessor) Backend() Backend {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.current.Backend
}

// Current returns the current selection.
func (a *Accessor) Current() Selection {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.current
}

// Primary returns the configured primary backend.
func (a *Accessor) Primary() Backend {
	return a.primary
}

// OnChange registers a listener for selection changes.
func (a *Accessor) OnChange(fn ChangeFunc) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.listeners = append(a.listeners, fn)
}

// Environments lists the selectable environments. The primary backend is
// always listed first.
func (a *Accessor) Environments() ([]Environment, error) {
	envs := []Environment{{Name: PrimaryName, URL: a.primary.String(), Description: "Configured primary server"}}
	if a.store == nil {
		return envs, nil
	}
	stored, err := a.store.List()
	if err != nil {
		return nil, err
	}
	return append(envs, stored...), nil
}

// Select makes the named environment current and persists the choice.
// Selecting PrimaryName returns to the configured primary backend.
func (a *Accessor) Select(name string) error {
	if name == PrimaryName || name == "" {
		if a.store != nil {
			if err := a.store.ClearCurrent(); err != nil {
				return err
			}
			a.setPersisted("")
		}
		a.swap(Selection{Name: PrimaryName, Backend: a.primary})
		return nil
	}

	if a.store == nil {
		return &NotFoundError{Name: name}
	}

	env, err := a.store.Get(name)
	if err != nil {
		return err
	}
	if env == nil {
		return &NotFoundError{Name: name}
	}
	backend, err := env.Backend()
	if err != nil {
		return fmt.Errorf("environment %q: %w", name, err)
	}

	if err := a.store.SetCurrent(name); err != nil {
		return err
	}
	a.setPersisted(name)
	a.swap(Selection{Name: name, Backend: backend})
	return nil
}

// Override points the accessor at an explicit backend without persisting
// anything. It is used for the --backend flag.
func (a *Accessor) Override(name string, backend Backend) {
	a.swap(Selection{Name: name, Backend: backend})
}

// Reload re-reads the persisted selection. It is called when
// environments.yaml changes on disk. The accessor follows the file only when
// its current name changed since the last read, so edits to other entries
// keep an --environment or --backend override in place. A changed URL of
// the active environment is picked up.
func (a *Accessor) Reload() error {
	if a.store == nil {
		return nil
	}

	env, err := a.store.Current()
	if err != nil {
		return err
	}

	name := ""
	next := Selection{Name: PrimaryName, Backend: a.primary}
	if env != nil {
		backend, err := env.Backend()
		if err != nil {
			return fmt.Errorf("environment %q: %w", env.Name, err)
		}
		name = env.Name
		next = Selection{Name: env.Name, Backend: backend}
	}

	a.mu.Lock()
	switched := name != a.persisted
	a.persisted = name
	follow := switched || a.current.Name == next.Name
	unchanged := a.current.Name == next.Name && a.current.Backend.String() == next.Backend.String()
	a.mu.Unlock()
	if !follow || unchanged {
		return nil
	}

	a.swap(next)
	return nil
}

func (a *Accessor) setPersisted(name string) {
	a.mu.Lock()
	a.persisted = name
	a.mu.Unlock()
}

func (a *Accessor) swap(next Selection) {
	a.mu.Lock()
	previous := a.current
	a.current = next
	listeners := make([]ChangeFunc, len(a.listeners))
	copy(listeners, a.listeners)
	a.mu.Unlock()

	logging.Info("Environment", "Switched backend from %s (%s) to %s (%s)",
		previous.Name, previous.Backend, next.Name, next.Backend)

	for _, fn := range listeners {
		fn(previous, next)
	}
}
