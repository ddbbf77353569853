package cli

import (
	"crypto/x509"
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"

	"studio/internal/api"
	"studio/internal/auth"
	"studio/internal/environment"
)

// Process exit codes. Scripts rely on ExitAuthRequired to trigger a login.
const (
	ExitOK           = 0
	ExitError        = 1
	ExitAuthRequired = 2
	ExitNotFound     = 3
	ExitUnreachable  = 4
)

// ConnectionErrorType categorizes the type of connection error.
type ConnectionErrorType int

const (
	// ConnectionErrorUnknown indicates an unclassified connection error.
	ConnectionErrorUnknown ConnectionErrorType = iota
	// ConnectionErrorTLS indicates a TLS/certificate verification error.
	ConnectionErrorTLS
	// ConnectionErrorNetwork indicates a refused or unreachable engine.
	ConnectionErrorNetwork
	// ConnectionErrorTimeout indicates a connection timeout.
	ConnectionErrorTimeout
	// ConnectionErrorDNS indicates a DNS resolution failure.
	ConnectionErrorDNS
)

// String returns a human-readable name for the connection error type.
func (t ConnectionErrorType) String() string {
	switch t {
	case ConnectionErrorTLS:
		return "TLS certificate error"
	case ConnectionErrorNetwork:
		return "Network error"
	case ConnectionErrorTimeout:
		return "Connection timeout"
	case ConnectionErrorDNS:
		return "DNS resolution error"
	default:
		return "Connection error"
	}
}

// ConnectionError indicates the workflow engine could not be reached.
type ConnectionError struct {
	// Endpoint is the backend URL that could not be reached.
	Endpoint string
	// Type categorizes the connection error.
	Type ConnectionErrorType
	// Reason is the underlying error.
	Reason error
}

// Error returns the failure with a hint matching its type.
func (e *ConnectionError) Error() string {
	switch e.Type {
	case ConnectionErrorTLS:
		return fmt.Sprintf(`TLS certificate verification failed for %s: %v

Possible causes:
  - Self-signed certificate on a development engine
  - The certificate does not match the host name`, e.Endpoint, e.Reason)
	case ConnectionErrorNetwork:
		return fmt.Sprintf(`Connection failed to %s: %v

Possible causes:
  - Server is not running
  - Wrong backend URL (check 'studio environment current')`, e.Endpoint, e.Reason)
	case ConnectionErrorTimeout:
		return fmt.Sprintf("Connection to %s timed out: %v", e.Endpoint, e.Reason)
	case ConnectionErrorDNS:
		return fmt.Sprintf("DNS resolution failed for %s: %v", e.Endpoint, e.Reason)
	default:
		return fmt.Sprintf("Connection failed to %s: %v", e.Endpoint, e.Reason)
	}
}

// Unwrap returns the underlying error.
func (e *ConnectionError) Unwrap() error {
	return e.Reason
}

// Is allows errors.Is() to match any ConnectionError.
func (e *ConnectionError) Is(target error) bool {
	_, ok := target.(*ConnectionError)
	return ok
}

// ClassifyConnectionError wraps a transport failure in a ConnectionError.
// It returns nil for a nil error.
func ClassifyConnectionError(err error, endpoint string) *ConnectionError {
	if err == nil {
		return nil
	}

	connErr := &ConnectionError{Endpoint: endpoint, Type: ConnectionErrorUnknown, Reason: err}

	var dnsErr *net.DNSError
	switch {
	case isTLSError(err):
		connErr.Type = ConnectionErrorTLS
	case errors.As(err, &dnsErr):
		connErr.Type = ConnectionErrorDNS
	case isTimeoutError(err):
		connErr.Type = ConnectionErrorTimeout
	case isNetworkError(err.Error()):
		connErr.Type = ConnectionErrorNetwork
	}
	return connErr
}

func isTLSError(err error) bool {
	if err == nil {
		return false
	}

	var certErr *x509.CertificateInvalidError
	var hostErr *x509.HostnameError
	var unknownAuthErr *x509.UnknownAuthorityError
	var systemRootsErr *x509.SystemRootsError
	if errors.As(err, &certErr) || errors.As(err, &hostErr) ||
		errors.As(err, &unknownAuthErr) || errors.As(err, &systemRootsErr) {
		return true
	}

	errStr := err.Error()
	for _, keyword := range []string{"x509:", "certificate", "tls:", "TLS handshake"} {
		if strings.Contains(errStr, keyword) {
			return true
		}
	}
	return false
}

func isTimeoutError(err error) bool {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) && urlErr.Timeout() {
		return true
	}
	errStr := err.Error()
	return strings.Contains(errStr, "timeout") || strings.Contains(errStr, "deadline exceeded")
}

func isNetworkError(errStr string) bool {
	for _, keyword := range []string{
		"connection refused",
		"connection reset",
		"network is unreachable",
		"no route to host",
		"dial tcp",
		"connect:",
	} {
		if strings.Contains(errStr, keyword) {
			return true
		}
	}
	return false
}

// AuthRequiredError tells the user to sign in to the selected environment.
type AuthRequiredError struct {
	// Environment is the selected environment name.
	Environment string
	// Endpoint is the backend URL that rejected the request.
	Endpoint string
}

// Error returns a message with actionable guidance.
func (e *AuthRequiredError) Error() string {
	return fmt.Sprintf(`Authentication required for %s (%s)

To sign in, run:
  studio login --environment %s`, e.Environment, e.Endpoint, e.Environment)
}

// Is allows errors.Is() to match any AuthRequiredError.
func (e *AuthRequiredError) Is(target error) bool {
	_, ok := target.(*AuthRequiredError)
	return ok
}

// Explain turns errors from the engine client into errors a CLI user can
// act on. Unrecognized errors are returned unchanged.
func Explain(err error, sel environment.Selection) error {
	if err == nil {
		return nil
	}
	endpoint := sel.Backend.String()

	if api.IsUnauthorized(err) || errors.Is(err, auth.ErrNotAuthenticated) || errors.Is(err, auth.ErrRefreshFailed) {
		return &AuthRequiredError{Environment: sel.Name, Endpoint: endpoint}
	}
	if api.IsNotFound(err) || api.IsRemoteError(err) {
		return err
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return ClassifyConnectionError(err, endpoint)
	}
	return err
}

// ExitCode maps an error to the process exit code.
func ExitCode(err error) int {
	var notFound *environment.NotFoundError
	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, &AuthRequiredError{}), api.IsUnauthorized(err):
		return ExitAuthRequired
	case api.IsNotFound(err), errors.As(err, &notFound):
		return ExitNotFound
	case errors.Is(err, &ConnectionError{}):
		return ExitUnreachable
	default:
		return ExitError
	}
}
