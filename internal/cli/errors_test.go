package cli

import (
	"crypto/x509"
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"
	"testing"

	"studio/internal/api"
	"studio/internal/auth"
	"studio/internal/environment"
)

func TestConnectionErrorType(t *testing.T) {
	tests := []struct {
		errType  ConnectionErrorType
		expected string
	}{
		{ConnectionErrorUnknown, "Connection error"},
		{ConnectionErrorTLS, "TLS certificate error"},
		{ConnectionErrorNetwork, "Network error"},
		{ConnectionErrorTimeout, "Connection timeout"},
		{ConnectionErrorDNS, "DNS resolution error"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			if got := tt.errType.String(); got != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, got)
			}
		})
	}
}

func TestConnectionError_Messages(t *testing.T) {
	tests := []struct {
		name    string
		errType ConnectionErrorType
		want    []string
	}{
		{"tls", ConnectionErrorTLS, []string{"TLS certificate verification failed", "Self-signed"}},
		{"network", ConnectionErrorNetwork, []string{"Connection failed", "Server is not running", "studio environment current"}},
		{"timeout", ConnectionErrorTimeout, []string{"timed out"}},
		{"dns", ConnectionErrorDNS, []string{"DNS resolution failed"}},
		{"unknown", ConnectionErrorUnknown, []string{"Connection failed", "boom"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := &ConnectionError{Endpoint: "https://engine.example.com/elsa/api", Type: tt.errType, Reason: errors.New("boom")}
			msg := err.Error()
			if !strings.Contains(msg, "engine.example.com") {
				t.Errorf("expected message to contain the endpoint, got %q", msg)
			}
			for _, w := range tt.want {
				if !strings.Contains(msg, w) {
					t.Errorf("expected message to contain %q, got %q", w, msg)
				}
			}
		})
	}
}

func TestConnectionError_Wrapping(t *testing.T) {
	reason := errors.New("connection refused")
	err := &ConnectionError{Endpoint: "https://e", Type: ConnectionErrorNetwork, Reason: reason}

	if err.Unwrap() != reason {
		t.Error("expected Unwrap to return the reason")
	}
	if !errors.Is(fmt.Errorf("wrapped: %w", err), &ConnectionError{}) {
		t.Error("expected errors.Is to find a wrapped ConnectionError")
	}
	if err.Is(errors.New("other")) {
		t.Error("expected Is to reject other errors")
	}
}

func TestClassifyConnectionError(t *testing.T) {
	hostErr := &x509.HostnameError{Certificate: &x509.Certificate{}, Host: "example.com"}

	tests := []struct {
		name string
		err  error
		want ConnectionErrorType
	}{
		{"x509 message", errors.New("x509: certificate signed by unknown authority"), ConnectionErrorTLS},
		{"x509 hostname error", fmt.Errorf("get: %w", hostErr), ConnectionErrorTLS},
		{"tls handshake", errors.New("remote error: tls: bad certificate"), ConnectionErrorTLS},
		{"dns", fmt.Errorf("lookup: %w", &net.DNSError{Err: "no such host", Name: "nope.example.com"}), ConnectionErrorDNS},
		{"deadline", errors.New("context deadline exceeded"), ConnectionErrorTimeout},
		{"refused", errors.New("dial tcp 127.0.0.1:5001: connect: connection refused"), ConnectionErrorNetwork},
		{"unknown", errors.New("something odd"), ConnectionErrorUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ClassifyConnectionError(tt.err, "https://example.com")
			if got == nil {
				t.Fatal("expected non-nil result")
			}
			if got.Type != tt.want {
				t.Errorf("expected %v, got %v", tt.want, got.Type)
			}
		})
	}

	if ClassifyConnectionError(nil, "https://example.com") != nil {
		t.Error("expected nil for nil error")
	}
}

func testSelection(t *testing.T) environment.Selection {
	t.Helper()
	b, err := environment.NewBackend("https://staging.example.com/elsa/api")
	if err != nil {
		t.Fatal(err)
	}
	return environment.Selection{Name: "staging", Backend: b}
}

func TestExplain(t *testing.T) {
	sel := testSelection(t)

	t.Run("unauthorized becomes AuthRequiredError", func(t *testing.T) {
		err := Explain(&api.UnauthorizedError{StatusCode: 401}, sel)
		var authErr *AuthRequiredError
		if !errors.As(err, &authErr) {
			t.Fatalf("expected AuthRequiredError, got %T", err)
		}
		if authErr.Environment != "staging" {
			t.Errorf("expected environment staging, got %q", authErr.Environment)
		}
		if !strings.Contains(err.Error(), "studio login --environment staging") {
			t.Errorf("expected login hint, got %q", err.Error())
		}
	})

	t.Run("missing token becomes AuthRequiredError", func(t *testing.T) {
		err := Explain(fmt.Errorf("get: %w", auth.ErrNotAuthenticated), sel)
		if !errors.Is(err, &AuthRequiredError{}) {
			t.Fatalf("expected AuthRequiredError, got %v", err)
		}
	})

	t.Run("transport failure is classified", func(t *testing.T) {
		urlErr := &url.Error{Op: "Get", URL: "https://staging.example.com", Err: errors.New("dial tcp: connect: connection refused")}
		err := Explain(fmt.Errorf("GET /labels: %w", urlErr), sel)
		var connErr *ConnectionError
		if !errors.As(err, &connErr) {
			t.Fatalf("expected ConnectionError, got %T", err)
		}
		if connErr.Type != ConnectionErrorNetwork {
			t.Errorf("expected network error, got %v", connErr.Type)
		}
	})

	t.Run("api errors pass through", func(t *testing.T) {
		notFound := api.NewNotFoundError("workflow definition", "x")
		if Explain(notFound, sel) != error(notFound) {
			t.Error("expected NotFoundError unchanged")
		}
	})

	t.Run("nil stays nil", func(t *testing.T) {
		if Explain(nil, sel) != nil {
			t.Error("expected nil")
		}
	})
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, ExitOK},
		{"auth required", fmt.Errorf("x: %w", &AuthRequiredError{Environment: "a"}), ExitAuthRequired},
		{"unauthorized", &api.UnauthorizedError{StatusCode: 403}, ExitAuthRequired},
		{"api not found", api.NewNotFoundError("label", "x"), ExitNotFound},
		{"environment not found", &environment.NotFoundError{Name: "nope"}, ExitNotFound},
		{"connection", &ConnectionError{Type: ConnectionErrorDNS, Reason: errors.New("x")}, ExitUnreachable},
		{"other", errors.New("other"), ExitError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExitCode(tt.err); got != tt.want {
				t.Errorf("ExitCode() = %d, want %d", got, tt.want)
			}
		})
	}
}
