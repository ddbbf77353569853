package auth

import (
	"context"
	"fmt"
	"sync"
)

// ScopeFunc names the token scope of the current call, usually the active
// environment.
type ScopeFunc func() string

// OpenFunc returns the storage that holds the tokens of one scope.
type OpenFunc func(scope string) (TokenStorage, error)

// ScopedStorage routes every call to the storage of the current scope, so
// tokens issued by one backend are never presented to another. Storages are
// opened on first use and kept for the process lifetime.
type ScopedStorage struct {
	scope ScopeFunc
	open  OpenFunc

	mu     sync.Mutex
	scopes map[string]TokenStorage
}

// NewScopedStorage creates a storage that picks its delegate by scope().
func NewScopedStorage(scope ScopeFunc, open OpenFunc) *ScopedStorage {
	return &ScopedStorage{
		scope:  scope,
		open:   open,
		scopes: make(map[string]TokenStorage),
	}
}

// PrefixScopes keeps every scope in one shared storage by prefixing keys
// with the scope name.
func PrefixScopes(shared TokenStorage) OpenFunc {
	return func(scope string) (TokenStorage, error) {
		return prefixedStorage{inner: shared, prefix: scope + "/"}, nil
	}
}

func (s *ScopedStorage) current() (TokenStorage, error) {
	name := s.scope()

	s.mu.Lock()
	defer s.mu.Unlock()

	if storage, ok := s.scopes[name]; ok {
		return storage, nil
	}
	storage, err := s.open(name)
	if err != nil {
		return nil, fmt.Errorf("failed to open token storage for %s: %w", name, err)
	}
	s.scopes[name] = storage
	return storage, nil
}

// Get implements TokenStorage.
func (s *ScopedStorage) Get(ctx context.Context, key string) (string, error) {
	storage, err := s.current()
	if err != nil {
		return "", err
	}
	return storage.Get(ctx, key)
}

// Set implements TokenStorage.
func (s *ScopedStorage) Set(ctx context.Context, key, value string) error {
	storage, err := s.current()
	if err != nil {
		return err
	}
	return storage.Set(ctx, key, value)
}

// Delete implements TokenStorage.
func (s *ScopedStorage) Delete(ctx context.Context, key string) error {
	storage, err := s.current()
	if err != nil {
		return err
	}
	return storage.Delete(ctx, key)
}

type prefixedStorage struct {
	inner  TokenStorage
	prefix string
}

func (p prefixedStorage) Get(ctx context.Context, key string) (string, error) {
	return p.inner.Get(ctx, p.prefix+key)
}

func (p prefixedStorage) Set(ctx context.Context, key, value string) error {
	return p.inner.Set(ctx, p.prefix+key, value)
}

func (p prefixedStorage) Delete(ctx context.Context, key string) error {
	return p.inner.Delete(ctx, p.prefix+key)
}
