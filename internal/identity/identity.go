// Package identity generates the identifiers the console hands out:
// session IDs, dialog and element IDs, and new activity IDs.
package identity

import (
	"strings"

	"github.com/google/uuid"
)

// Generator produces unique identifiers.
type Generator interface {
	// NewID returns a new random identifier in canonical UUID form.
	NewID() string
}

// UUIDGenerator produces random (version 4) UUIDs.
type UUIDGenerator struct{}

// NewGenerator returns the default generator.
func NewGenerator() *UUIDGenerator {
	return &UUIDGenerator{}
}

// NewID implements Generator.
func (UUIDGenerator) NewID() string {
	return uuid.NewString()
}

// NewCompactID returns a UUID without hyphens, suitable for HTML element IDs
// and activity IDs.
func NewCompactID(g Generator) string {
	return strings.ReplaceAll(g.NewID(), "-", "")
}

// IsValid reports whether s parses as a UUID.
func IsValid(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}
