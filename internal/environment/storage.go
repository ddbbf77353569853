package environment

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"
)

const (
	// FileName is the name of the environments file.
	FileName = "environments.yaml"
	// userConfigDir is the subdirectory under home for studio configuration.
	userConfigDir = ".config/studio"
)

// Storage provides thread-safe access to environments.yaml.
type Storage struct {
	mu         sync.RWMutex
	configPath string
}

// NewStorage creates a Storage rooted at ~/.config/studio.
func NewStorage() (*Storage, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("failed to determine home directory: %w", err)
	}
	return NewStorageWithPath(filepath.Join(homeDir, userConfigDir)), nil
}

// NewStorageWithPath creates a Storage rooted at a custom directory.
func NewStorageWithPath(configPath string) *Storage {
	return &Storage{
		configPath: configPath,
	}
}

// FilePath returns the full path to environments.yaml.
func (s *Storage) FilePath() string {
	return filepath.Join(s.configPath, FileName)
}

// Dir returns the directory holding environments.yaml.
func (s *Storage) Dir() string {
	return s.configPath
}

// Load reads and parses the environments file.
// If the file doesn't exist, an empty Config is returned.
func (s *Storage) Load() (*Config, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.loadLocked()
}

func (s *Storage) loadLocked() (*Config, error) {
	data, err := os.ReadFile(s.FilePath())
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Config{}, nil
		}
		return nil, fmt.Errorf("failed to read environments file: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse environments file: %w", err)
	}

	return &config, nil
}

// Save writes the environments file, creating the directory if needed.
func (s *Storage) Save(config *Config) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.saveLocked(config)
}

func (s *Storage) saveLocked(config *Config) error {
	if err := os.MkdirAll(s.configPath, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal environments: %w", err)
	}

	// Write to a temp file and rename so a concurrent watcher never reads a
	// half-written document.
	tmp, err := os.CreateTemp(s.configPath, FileName+".*")
	if err != nil {
		return fmt.Errorf("failed to write environments file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write environments file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write environments file: %w", err)
	}
	if err := os.Chmod(tmp.Name(), 0644); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write environments file: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.FilePath()); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write environments file: %w", err)
	}

	return nil
}

// Current returns the selected environment, or nil when none is selected or
// the selection points at a removed environment.
func (s *Storage) Current() (*Environment, error) {
	config, err := s.Load()
	if err != nil {
		return nil, err
	}

	if config.Current == "" {
		return nil, nil
	}

	return config.Get(config.Current), nil
}

// CurrentName returns the name of the selected environment, or "".
func (s *Storage) CurrentName() (string, error) {
	config, err := s.Load()
	if err != nil {
		return "", err
	}

	return config.Current, nil
}

// SetCurrent selects the named environment.
func (s *Storage) SetCurrent(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	config, err := s.loadLocked()
	if err != nil {
		return err
	}

	if !config.Has(name) {
		return &NotFoundError{Name: name}
	}

	config.Current = name
	return s.saveLocked(config)
}

// ClearCurrent drops the selection so the configured primary backend is
// used again.
func (s *Storage) ClearCurrent() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	config, err := s.loadLocked()
	if err != nil {
		return err
	}

	config.Current = ""
	return s.saveLocked(config)
}

// Add adds a new environment. It fails if the name is taken.
func (s *Storage) Add(env Environment) error {
	if err := ValidateName(env.Name); err != nil {
		return err
	}
	if _, err := NewBackend(env.URL); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	config, err := s.loadLocked()
	if err != nil {
		return err
	}

	if config.Has(env.Name) {
		return fmt.Errorf("environment %q already exists", env.Name)
	}

	config.AddOrUpdate(env)
	return s.saveLocked(config)
}

// Update replaces an existing environment.
func (s *Storage) Update(env Environment) error {
	if err := ValidateName(env.Name); err != nil {
		return err
	}
	if _, err := NewBackend(env.URL); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	config, err := s.loadLocked()
	if err != nil {
		return err
	}

	if !config.Has(env.Name) {
		return &NotFoundError{Name: env.Name}
	}

	config.AddOrUpdate(env)
	return s.saveLocked(config)
}

// Delete removes an environment by name.
func (s *Storage) Delete(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	config, err := s.loadLocked()
	if err != nil {
		return err
	}

	if !config.Remove(name) {
		return &NotFoundError{Name: name}
	}

	return s.saveLocked(config)
}

// Rename renames an environment, carrying the selection along.
func (s *Storage) Rename(oldName, newName string) error {
	if err := ValidateName(newName); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	config, err := s.loadLocked()
	if err != nil {
		return err
	}

	old := config.Get(oldName)
	if old == nil {
		return &NotFoundError{Name: oldName}
	}

	if oldName != newName && config.Has(newName) {
		return fmt.Errorf("environment %q already exists", newName)
	}

	wasCurrent := config.Current == oldName
	renamed := *old
	renamed.Name = newName

	config.Remove(oldName)
	config.AddOrUpdate(renamed)

	if wasCurrent {
		config.Current = newName
	}

	return s.saveLocked(config)
}

// List returns all defined environments.
func (s *Storage) List() ([]Environment, error) {
	config, err := s.Load()
	if err != nil {
		return nil, err
	}

	return config.Environments, nil
}

// Get returns the named environment, or nil if it doesn't exist.
func (s *Storage) Get(name string) (*Environment, error) {
	config, err := s.Load()
	if err != nil {
		return nil, err
	}

	return config.Get(name), nil
}

// Names returns all environment names, for shell completion.
func (s *Storage) Names() ([]string, error) {
	config, err := s.Load()
	if err != nil {
		return nil, err
	}

	names := make([]string, len(config.Environments))
	for i, env := range config.Environments {
		names[i] = env.Name
	}
	return names, nil
}
