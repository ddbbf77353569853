package config

import (
	"fmt"
	"strings"
)

// Kinds of configuration errors.
const (
	ErrorKindIO         = "io"
	ErrorKindParse      = "parse"
	ErrorKindValidation = "validation"
)

// ConfigurationError describes one problem with config.yaml.
type ConfigurationError struct {
	FilePath string `json:"filePath"`
	// Section is the top-level key the problem belongs to, e.g. backend.
	Section string `json:"section"`
	Kind    string `json:"kind"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
	Hint    string `json:"hint,omitempty"`
}

func (ce ConfigurationError) Error() string {
	return fmt.Sprintf("%s (%s): %s", configFileName, ce.Section, ce.Message)
}

// Describe renders the error over several lines for terminal output.
func (ce ConfigurationError) Describe() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s error in %s\n", ce.Kind, ce.FilePath)
	fmt.Fprintf(&b, "  %s: %s\n", ce.Section, ce.Message)
	if ce.Details != "" {
		fmt.Fprintf(&b, "  details: %s\n", ce.Details)
	}
	if ce.Hint != "" {
		fmt.Fprintf(&b, "  hint: %s\n", ce.Hint)
	}
	return b.String()
}

// ConfigurationErrorCollection gathers every problem found while
// validating, so they can all be fixed in one pass.
type ConfigurationErrorCollection struct {
	Errors []ConfigurationError `json:"errors"`
}

func (cec ConfigurationErrorCollection) Error() string {
	switch len(cec.Errors) {
	case 0:
		return "no configuration errors"
	case 1:
		return cec.Errors[0].Error()
	default:
		return fmt.Sprintf("%d configuration errors: %s (and %d more)",
			len(cec.Errors), cec.Errors[0].Error(), len(cec.Errors)-1)
	}
}

// HasErrors reports whether anything was collected.
func (cec *ConfigurationErrorCollection) HasErrors() bool {
	return len(cec.Errors) > 0
}

// Add appends err.
func (cec *ConfigurationErrorCollection) Add(err ConfigurationError) {
	cec.Errors = append(cec.Errors, err)
}

// InSection returns the errors for one top-level key.
func (cec *ConfigurationErrorCollection) InSection(section string) []ConfigurationError {
	var filtered []ConfigurationError
	for _, err := range cec.Errors {
		if err.Section == section {
			filtered = append(filtered, err)
		}
	}
	return filtered
}

// Report lists every error for terminal output.
func (cec *ConfigurationErrorCollection) Report() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s has %d problem(s):\n", configFileName, len(cec.Errors))
	for _, err := range cec.Errors {
		b.WriteString(err.Describe())
	}
	return b.String()
}
