package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// NotFoundError represents a resource not found error with contextual information.
// It is returned when the engine answers 404 for a resource lookup.
type NotFoundError struct {
	// ResourceType categorizes the type of resource that was not found
	// (e.g., "workflow definition", "workflow instance", "label")
	ResourceType string

	// ResourceName is the specific identifier of the resource that was not found
	ResourceName string

	// Message provides a custom error message if the default format is insufficient
	Message string
}

// Error implements the error interface for NotFoundError.
func (e *NotFoundError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("%s %s not found", e.ResourceType, e.ResourceName)
}

// IsNotFound checks if an error is a NotFoundError using error unwrapping.
//
// Example:
//
//	def, err := c.GetDefinition(ctx, id, api.VersionLatest)
//	if api.IsNotFound(err) {
//	    // render the empty state
//	}
func IsNotFound(err error) bool {
	var notFoundErr *NotFoundError
	return errors.As(err, &notFoundErr)
}

// NewNotFoundError creates a new NotFoundError with the specified resource type and name.
func NewNotFoundError(resourceType, resourceName string) *NotFoundError {
	return &NotFoundError{
		ResourceType: resourceType,
		ResourceName: resourceName,
	}
}

// UnauthorizedError is returned when the engine rejects the bearer token
// (401) or the authenticated user lacks permission (403).
type UnauthorizedError struct {
	StatusCode int
	Message    string
}

// Error implements the error interface for UnauthorizedError.
func (e *UnauthorizedError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.StatusCode == http.StatusForbidden {
		return "access denied by workflow engine"
	}
	return "authentication required"
}

// IsUnauthorized checks if an error is or wraps an UnauthorizedError.
func IsUnauthorized(err error) bool {
	var unauthorizedErr *UnauthorizedError
	return errors.As(err, &unauthorizedErr)
}

// RemoteError carries any other non-2xx answer from the engine.
type RemoteError struct {
	Method     string
	Path       string
	StatusCode int
	Body       string
}

// maxErrorBody bounds how much of the response body ends up in messages.
const maxErrorBody = 512

// Error implements the error interface for RemoteError.
func (e *RemoteError) Error() string {
	body := strings.TrimSpace(e.Body)
	if len(body) > maxErrorBody {
		body = body[:maxErrorBody] + "..."
	}
	msg := fmt.Sprintf("%s %s: HTTP %d", e.Method, e.Path, e.StatusCode)
	if body != "" {
		msg += ": " + body
	}
	return msg
}

// IsRemoteError checks if an error is or wraps a RemoteError.
func IsRemoteError(err error) bool {
	var remoteErr *RemoteError
	return errors.As(err, &remoteErr)
}

// ErrorFromStatus maps an engine response status to the matching typed
// error. It returns nil for 2xx codes.
func ErrorFromStatus(method, path string, statusCode int, body []byte, resourceType, resourceName string) error {
	switch {
	case statusCode >= 200 && statusCode < 300:
		return nil
	case statusCode == http.StatusNotFound:
		return NewNotFoundError(resourceType, resourceName)
	case statusCode == http.StatusUnauthorized, statusCode == http.StatusForbidden:
		return &UnauthorizedError{StatusCode: statusCode}
	default:
		return &RemoteError{Method: method, Path: path, StatusCode: statusCode, Body: string(body)}
	}
}
