package auth

import (
	"context"
	"sync"
	"time"

	"studio/pkg/logging"
)

// DefaultSessionIdleTimeout is how long an untouched session keeps its tokens.
const DefaultSessionIdleTimeout = 12 * time.Hour

type sessionEntry struct {
	values   map[string]string
	lastSeen time.Time
}

// SessionStorage keeps tokens in server memory, scoped by the session ID
// carried in the request context. Each browser session sees only its own
// tokens. Idle sessions are dropped by a background cleanup loop.
type SessionStorage struct {
	mu       sync.RWMutex
	sessions map[string]*sessionEntry

	idleTimeout     time.Duration
	cleanupInterval time.Duration
	stopCleanup     chan struct{}
	stopOnce        sync.Once
	now             func() time.Time
}

// NewSessionStorage creates a session store and starts its cleanup loop.
// Call Stop to end the loop.
func NewSessionStorage(idleTimeout time.Duration) *SessionStorage {
	if idleTimeout <= 0 {
		idleTimeout = DefaultSessionIdleTimeout
	}
	s := &SessionStorage{
		sessions:        make(map[string]*sessionEntry),
		idleTimeout:     idleTimeout,
		cleanupInterval: 5 * time.Minute,
		stopCleanup:     make(chan struct{}),
		now:             time.Now,
	}
	go s.cleanupLoop()
	return s
}

// Get implements TokenStorage.
func (s *SessionStorage) Get(ctx context.Context, key string) (string, error) {
	id, ok := SessionIDFromContext(ctx)
	if !ok {
		return "", ErrNoSession
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	entry, exists := s.sessions[id]
	if !exists {
		return "", ErrTokenNotFound
	}
	entry.lastSeen = s.now()

	value, exists := entry.values[key]
	if !exists {
		return "", ErrTokenNotFound
	}
	return value, nil
}

// Set implements TokenStorage.
func (s *SessionStorage) Set(ctx context.Context, key, value string) error {
	id, ok := SessionIDFromContext(ctx)
	if !ok {
		return ErrNoSession
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	entry, exists := s.sessions[id]
	if !exists {
		entry = &sessionEntry{values: make(map[string]string)}
		s.sessions[id] = entry
	}
	entry.values[key] = value
	entry.lastSeen = s.now()
	return nil
}

// Delete implements TokenStorage.
func (s *SessionStorage) Delete(ctx context.Context, key string) error {
	id, ok := SessionIDFromContext(ctx)
	if !ok {
		return ErrNoSession
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	entry, exists := s.sessions[id]
	if !exists {
		return nil
	}
	delete(entry.values, key)
	if len(entry.values) == 0 {
		delete(s.sessions, id)
	}
	return nil
}

// Count returns the number of sessions holding tokens.
func (s *SessionStorage) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// Stop ends the cleanup loop. It is safe to call more than once.
func (s *SessionStorage) Stop() {
	s.stopOnce.Do(func() { close(s.stopCleanup) })
}

func (s *SessionStorage) cleanupLoop() {
	ticker := time.NewTicker(s.cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.cleanup()
		case <-s.stopCleanup:
			return
		}
	}
}

// cleanup removes sessions idle for longer than the timeout.
func (s *SessionStorage) cleanup() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := s.now().Add(-s.idleTimeout)
	count := 0
	for id, entry := range s.sessions {
		if entry.lastSeen.Before(cutoff) {
			delete(s.sessions, id)
			count++
		}
	}

	if count > 0 {
		logging.Debug("Auth", "Dropped %d idle sessions", count)
	}
	return count
}
