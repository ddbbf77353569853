package environment

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

// EnvVar is the environment variable name for overriding the current environment.
const EnvVar = "STUDIO_ENVIRONMENT"

// maxNameLength is the maximum allowed length for environment names.
// Names follow Kubernetes label rules.
const maxNameLength = 63

// namePattern defines valid environment name characters.
var namePattern = regexp.MustCompile(`^[a-z0-9][a-z0-9-]*[a-z0-9]$|^[a-z0-9]$`)

// Backend is the remote workflow engine endpoint that API calls target.
// Values are immutable; selecting another environment replaces the Backend
// held by the Accessor rather than mutating it.
type Backend struct {
	url *url.URL
}

// NewBackend parses rawURL into a Backend. The URL must be absolute and use
// http or https. A trailing slash is dropped so paths can be joined safely.
func NewBackend(rawURL string) (Backend, error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return Backend{}, fmt.Errorf("invalid backend URL %q: %w", rawURL, err)
	}
	if !u.IsAbs() || u.Host == "" {
		return Backend{}, fmt.Errorf("backend URL %q must be absolute", rawURL)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return Backend{}, fmt.Errorf("backend URL %q must use http or https", rawURL)
	}
	u.Path = strings.TrimSuffix(u.Path, "/")
	return Backend{url: u}, nil
}

// URL returns a copy of the endpoint address.
func (b Backend) URL() *url.URL {
	if b.url == nil {
		return nil
	}
	u := *b.url
	return &u
}

// String returns the endpoint address.
func (b Backend) String() string {
	if b.url == nil {
		return ""
	}
	return b.url.String()
}

// IsZero reports whether the Backend was never set.
func (b Backend) IsZero() bool {
	return b.url == nil
}

// Resolve joins an API path onto the backend URL.
func (b Backend) Resolve(path string) string {
	if b.url == nil {
		return path
	}
	return b.url.JoinPath(path).String()
}

// Environment represents a named workflow engine endpoint.
type Environment struct {
	// Name is the unique identifier for this environment
	Name string `yaml:"name" json:"name"`
	// URL is the engine API base address (e.g. https://staging.example.com/elsa/api)
	URL string `yaml:"url" json:"url"`
	// Description is shown in the environment picker
	Description string `yaml:"description,omitempty" json:"description,omitempty"`
}

// Backend converts the environment to a Backend.
func (e Environment) Backend() (Backend, error) {
	return NewBackend(e.URL)
}

// Config represents the complete environments file.
// This is the root structure stored in ~/.config/studio/environments.yaml.
type Config struct {
	// Current is the name of the selected environment
	Current string `yaml:"current,omitempty" json:"current,omitempty"`
	// Environments is the list of all defined environments
	Environments []Environment `yaml:"environments,omitempty" json:"environments"`
}

// NotFoundError is returned when a named environment does not exist.
type NotFoundError struct {
	Name string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("environment %q not found", e.Name)
}

// ValidateName validates an environment name according to the naming rules.
// Environment names must:
//   - Be between 1 and 63 characters
//   - Contain only lowercase letters, numbers, and hyphens
//   - Start and end with an alphanumeric character
func ValidateName(name string) error {
	if name == "" {
		return fmt.Errorf("environment name cannot be empty")
	}

	if len(name) > maxNameLength {
		return fmt.Errorf("environment name cannot exceed %d characters", maxNameLength)
	}

	if !namePattern.MatchString(name) {
		return fmt.Errorf("environment name must contain only lowercase letters, numbers, and hyphens, and must start and end with an alphanumeric character")
	}

	if name == PrimaryName {
		return fmt.Errorf("environment name %q is reserved for the configured primary backend", PrimaryName)
	}

	return nil
}

// Get returns the environment with the given name, or nil if not found.
func (c *Config) Get(name string) *Environment {
	for i := range c.Environments {
		if c.Environments[i].Name == name {
			return &c.Environments[i]
		}
	}
	return nil
}

// Has returns true if an environment with the given name exists.
func (c *Config) Has(name string) bool {
	return c.Get(name) != nil
}

// AddOrUpdate adds a new environment or replaces one with the same name.
func (c *Config) AddOrUpdate(env Environment) {
	for i := range c.Environments {
		if c.Environments[i].Name == env.Name {
			c.Environments[i] = env
			return
		}
	}
	c.Environments = append(c.Environments, env)
}

// Remove removes the environment with the given name and clears Current
// if it pointed at it. Returns false if nothing was removed.
func (c *Config) Remove(name string) bool {
	for i := range c.Environments {
		if c.Environments[i].Name == name {
			c.Environments = append(c.Environments[:i], c.Environments[i+1:]...)
			if c.Current == name {
				c.Current = ""
			}
			return true
		}
	}
	return false
}
