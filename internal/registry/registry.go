package registry

import (
	"fmt"
	"reflect"
	"sort"
	"sync"
)

// Registry maps capability interfaces to the implementation chosen at
// composition time. It is built once in internal/app and handed to every
// feature module constructor.
type Registry struct {
	mu       sync.RWMutex
	services map[reflect.Type]any
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{
		services: make(map[reflect.Type]any),
	}
}

// NotRegisteredError is returned when a capability has no implementation.
type NotRegisteredError struct {
	Capability string
}

func (e *NotRegisteredError) Error() string {
	return fmt.Sprintf("capability %s is not registered", e.Capability)
}

func keyOf[T any]() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}

// Register binds impl as the implementation of capability T.
// Registering the same capability twice fails.
func Register[T any](r *Registry, impl T) error {
	key := keyOf[T]()
	if isNil(impl) {
		return fmt.Errorf("cannot register nil implementation for %s", key)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.services[key]; exists {
		return fmt.Errorf("capability %s already registered", key)
	}

	r.services[key] = impl
	return nil
}

// isNil also catches a nil pointer wrapped in a non-nil interface value.
func isNil(v any) bool {
	if v == nil {
		return true
	}
	switch rv := reflect.ValueOf(v); rv.Kind() {
	case reflect.Ptr, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		return rv.IsNil()
	}
	return false
}

// MustRegister is Register for composition code where a duplicate is a
// programming error.
func MustRegister[T any](r *Registry, impl T) {
	if err := Register[T](r, impl); err != nil {
		panic(err)
	}
}

// Resolve returns the implementation registered for capability T.
func Resolve[T any](r *Registry) (T, error) {
	key := keyOf[T]()

	r.mu.RLock()
	impl, ok := r.services[key]
	r.mu.RUnlock()

	if !ok {
		var zero T
		return zero, &NotRegisteredError{Capability: key.String()}
	}
	return impl.(T), nil
}

// MustResolve is Resolve for module constructors whose dependencies are
// guaranteed by the composition root.
func MustResolve[T any](r *Registry) T {
	impl, err := Resolve[T](r)
	if err != nil {
		panic(err)
	}
	return impl
}

// Capabilities lists registered capability names, sorted.
func (r *Registry) Capabilities() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.services))
	for key := range r.services {
		names = append(names, key.String())
	}
	sort.Strings(names)
	return names
}
