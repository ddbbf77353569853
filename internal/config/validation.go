package config

import (
	"fmt"
	"net/url"
	"strings"
)

// ValidationError is a problem with one configuration field.
type ValidationError struct {
	Field   string
	Value   any
	Message string
}

func (ve ValidationError) Error() string {
	if ve.Field == "" {
		return ve.Message
	}
	return fmt.Sprintf("field '%s': %s", ve.Field, ve.Message)
}

// ValidateOneOf checks that value is one of allowed.
func ValidateOneOf(field, value string, allowed []string) error {
	for _, allowedValue := range allowed {
		if value == allowedValue {
			return nil
		}
	}
	return ValidationError{
		Field:   field,
		Value:   value,
		Message: fmt.Sprintf("must be one of: %s", strings.Join(allowed, ", ")),
	}
}

// ValidateAbsoluteURL checks that value parses as an absolute http(s) URL.
func ValidateAbsoluteURL(field, value string) error {
	u, err := url.Parse(value)
	if err != nil || !u.IsAbs() || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return ValidationError{
			Field:   field,
			Value:   value,
			Message: "must be an absolute http or https URL",
		}
	}
	return nil
}

// Validate checks a loaded configuration and reports every problem found.
func Validate(cfg StudioConfig, filePath string) ConfigurationErrorCollection {
	var errs ConfigurationErrorCollection
	add := func(category string, err error) {
		if err == nil {
			return
		}
		errs.Add(ConfigurationError{FilePath: filePath, Section: category, Kind: ErrorKindValidation, Message: err.Error()})
	}

	if cfg.Server.Port < 1 || cfg.Server.Port > 65535 {
		add("server", ValidationError{Field: "server.port", Value: cfg.Server.Port, Message: "must be between 1 and 65535"})
	}

	add("backend", ValidateAbsoluteURL("backend.url", cfg.Backend.URL))
	if cfg.Backend.Timeout < 0 {
		add("backend", ValidationError{Field: "backend.timeout", Value: cfg.Backend.Timeout, Message: "must not be negative"})
	}

	add("auth", ValidateOneOf("auth.storage", string(cfg.Auth.Storage),
		[]string{string(TokenStorageFile), string(TokenStorageSession)}))

	if len(cfg.Localization.SupportedCultures) == 0 {
		add("localization", ValidationError{Field: "localization.supportedCultures", Message: "must list at least one culture"})
	} else {
		add("localization", ValidateOneOf("localization.defaultCulture",
			cfg.Localization.DefaultCulture, cfg.Localization.SupportedCultures))
	}

	add("logging", ValidateOneOf("logging.format", cfg.Logging.Format, []string{"text", "json"}))

	return errs
}
