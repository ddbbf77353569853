package auth

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// DefaultTokenStorageDir is the default directory for token files, relative
// to the user's home directory.
const DefaultTokenStorageDir = ".config/studio/tokens"

// DefaultProfile is used when FileStorageConfig.Profile is empty.
const DefaultProfile = "default"

// FileStorageConfig configures FileStorage.
type FileStorageConfig struct {
	// Dir holds the token files. Defaults to ~/.config/studio/tokens.
	Dir string

	// Profile selects the token document. The CLI uses the environment
	// name, so each backend keeps its own login.
	Profile string
}

// FileStorage keeps tokens in one JSON document per profile, the
// single-user analogue of browser local storage.
//
// SECURITY: the directory is created 0700 and files are written 0600.
// Token values are never logged.
type FileStorage struct {
	mu      sync.RWMutex
	dir     string
	profile string
}

type tokenDocument struct {
	Profile   string            `json:"profile"`
	Values    map[string]string `json:"values"`
	UpdatedAt time.Time         `json:"updated_at"`
}

// NewFileStorage creates the storage directory if needed.
func NewFileStorage(cfg FileStorageConfig) (*FileStorage, error) {
	dir := cfg.Dir
	if dir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		dir = filepath.Join(homeDir, DefaultTokenStorageDir)
	}

	profile := cfg.Profile
	if profile == "" {
		profile = DefaultProfile
	}

	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create token storage directory: %w", err)
	}

	return &FileStorage{dir: dir, profile: profile}, nil
}

// Path returns the file backing this profile.
func (s *FileStorage) Path() string {
	hash := sha256.Sum256([]byte(s.profile))
	return filepath.Join(s.dir, hex.EncodeToString(hash[:16])+".json")
}

// Get implements TokenStorage.
func (s *FileStorage) Get(_ context.Context, key string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, err := s.read()
	if err != nil {
		return "", err
	}
	value, ok := doc.Values[key]
	if !ok {
		return "", ErrTokenNotFound
	}
	return value, nil
}

// Set implements TokenStorage.
func (s *FileStorage) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.read()
	if err != nil {
		return err
	}
	doc.Values[key] = value

	if err := s.write(doc); err != nil {
		slog.Warn("SECURITY_AUDIT: token storage failed",
			"event", "token_store_failed",
			"profile", s.profile,
			"key", key,
			"error", err.Error(),
		)
		return err
	}
	return nil
}

// Delete implements TokenStorage.
func (s *FileStorage) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.read()
	if err != nil {
		return err
	}
	if _, ok := doc.Values[key]; !ok {
		return nil
	}
	delete(doc.Values, key)

	if len(doc.Values) == 0 {
		if err := os.Remove(s.Path()); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("failed to delete token file: %w", err)
		}
		return nil
	}
	return s.write(doc)
}

func (s *FileStorage) read() (*tokenDocument, error) {
	// #nosec G304 -- path is derived from a hash, not user input
	data, err := os.ReadFile(s.Path())
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &tokenDocument{Profile: s.profile, Values: map[string]string{}}, nil
		}
		return nil, fmt.Errorf("failed to read token file: %w", err)
	}

	var doc tokenDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to unmarshal token file: %w", err)
	}
	if doc.Values == nil {
		doc.Values = map[string]string{}
	}
	return &doc, nil
}

func (s *FileStorage) write(doc *tokenDocument) error {
	doc.Profile = s.profile
	doc.UpdatedAt = time.Now()

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal token file: %w", err)
	}

	// Write with restricted permissions (owner read/write only)
	if err := os.WriteFile(s.Path(), data, 0600); err != nil {
		return fmt.Errorf("failed to write token file: %w", err)
	}
	return nil
}
