package module

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"studio/pkg/logging"
)

// Module is a feature module composed into the console at startup.
type Module interface {
	// Name identifies the module in logs and errors. It must be unique.
	Name() string

	// Initialize registers the module's menu items, routes and services.
	// It is called exactly once per process.
	Initialize(ctx context.Context) error
}

// State is the initialization state of one module.
type State string

const (
	StateNotInitialized State = "NotInitialized"
	StateInitialized    State = "Initialized"
	StateFailed         State = "Failed"
)

var (
	// ErrAlreadyInitialized is returned by a second InitializeModules call.
	ErrAlreadyInitialized = errors.New("modules already initialized")

	// ErrRegistrationClosed is returned when a module is registered after
	// initialization started.
	ErrRegistrationClosed = errors.New("module registration is closed")
)

// InitError reports which module failed to initialize.
type InitError struct {
	Module string
	Err    error
}

func (e *InitError) Error() string {
	return fmt.Sprintf("failed to initialize module %s: %v", e.Module, e.Err)
}

func (e *InitError) Unwrap() error {
	return e.Err
}

// ModuleStatus is a diagnostics snapshot of one module.
type ModuleStatus struct {
	Name  string `json:"name"`
	State State  `json:"state"`
	Error string `json:"error,omitempty"`
}

type entry struct {
	module Module
	state  State
	err    error
}

// Initializer runs every registered module's Initialize hook once, in
// registration order.
type Initializer struct {
	mu      sync.Mutex
	entries []*entry
	names   map[string]struct{}
	started bool
}

// NewInitializer creates an empty initializer.
func NewInitializer() *Initializer {
	return &Initializer{
		names: make(map[string]struct{}),
	}
}

// Register appends a module. Names must be unique and non-empty.
func (i *Initializer) Register(m Module) error {
	if m == nil {
		return fmt.Errorf("cannot register nil module")
	}

	name := m.Name()
	if name == "" {
		return fmt.Errorf("module has empty name")
	}

	i.mu.Lock()
	defer i.mu.Unlock()

	if i.started {
		return fmt.Errorf("%w: %s", ErrRegistrationClosed, name)
	}
	if _, exists := i.names[name]; exists {
		return fmt.Errorf("module %s already registered", name)
	}

	i.names[name] = struct{}{}
	i.entries = append(i.entries, &entry{module: m, state: StateNotInitialized})
	return nil
}

// InitializeModules runs Initialize on every module sequentially. The first
// failure stops the sequence and is returned as an *InitError; modules
// already initialized stay initialized and later modules are never invoked.
// A cancelled ctx stops the sequence between modules with ctx.Err().
func (i *Initializer) InitializeModules(ctx context.Context) error {
	i.mu.Lock()
	if i.started {
		i.mu.Unlock()
		return ErrAlreadyInitialized
	}
	i.started = true
	entries := make([]*entry, len(i.entries))
	copy(entries, i.entries)
	i.mu.Unlock()

	logging.Info("Modules", "Initializing %d modules", len(entries))

	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			logging.Warn("Modules", "Initialization cancelled before module %s", e.module.Name())
			return err
		}

		name := e.module.Name()
		start := time.Now()
		err := e.module.Initialize(ctx)

		i.mu.Lock()
		if err != nil {
			e.state = StateFailed
			e.err = err
		} else {
			e.state = StateInitialized
		}
		i.mu.Unlock()

		if err != nil {
			logging.Error("Modules", err, "Module %s failed to initialize", name)
			return &InitError{Module: name, Err: err}
		}
		logging.Debug("Modules", "Module %s initialized in %s", name, time.Since(start))
	}

	logging.Info("Modules", "All modules initialized")
	return nil
}

// States returns the state of every module in registration order.
func (i *Initializer) States() []ModuleStatus {
	i.mu.Lock()
	defer i.mu.Unlock()

	out := make([]ModuleStatus, len(i.entries))
	for idx, e := range i.entries {
		out[idx] = ModuleStatus{Name: e.module.Name(), State: e.state}
		if e.err != nil {
			out[idx].Error = e.err.Error()
		}
	}
	return out
}

// Names returns module names in registration order.
func (i *Initializer) Names() []string {
	i.mu.Lock()
	defer i.mu.Unlock()

	names := make([]string, len(i.entries))
	for idx, e := range i.entries {
		names[idx] = e.module.Name()
	}
	return names
}
