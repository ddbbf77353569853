package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"studio/internal/environment"
	"studio/pkg/logging"
)

// BackendProvider returns the backend API calls should target. It is read
// per call so environment switches take effect immediately.
type BackendProvider interface {
	Backend() environment.Backend
}

// LoginResult is the outcome of a credentials check. IsValid implies both
// tokens are non-empty.
type LoginResult struct {
	IsValid      bool
	AccessToken  string
	RefreshToken string
}

// String keeps token values out of logs.
func (r LoginResult) String() string {
	return fmt.Sprintf("LoginResult{valid:%t}", r.IsValid)
}

// Pair returns the tokens as a TokenPair.
func (r LoginResult) Pair() TokenPair {
	return TokenPair{AccessToken: r.AccessToken, RefreshToken: r.RefreshToken}
}

// maxResponseSize bounds identity responses.
const maxResponseSize = 1 << 20

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	IsAuthenticated bool   `json:"isAuthenticated"`
	AccessToken     string `json:"accessToken"`
	RefreshToken    string `json:"refreshToken"`
}

// CredentialsValidator exchanges a username and password for a token pair
// against the engine's identity endpoint.
type CredentialsValidator struct {
	backend    BackendProvider
	httpClient *http.Client
}

// Validator exchanges a username and password for a token pair.
type Validator interface {
	ValidateCredentials(ctx context.Context, username, password string) LoginResult
}

var _ Validator = (*CredentialsValidator)(nil)

// NewCredentialsValidator creates a validator. A nil httpClient gets a
// client with a 30 second timeout.
func NewCredentialsValidator(backend BackendProvider, httpClient *http.Client) *CredentialsValidator {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &CredentialsValidator{backend: backend, httpClient: httpClient}
}

// ValidateCredentials fails closed: any failure yields an invalid result
// with empty tokens. The reason is logged, never returned to the caller.
func (v *CredentialsValidator) ValidateCredentials(ctx context.Context, username, password string) LoginResult {
	if username == "" || password == "" {
		logging.Audit(logging.AuditEvent{Action: "login", Outcome: "rejected", Target: username, Error: fmt.Errorf("empty credentials")})
		return LoginResult{}
	}

	result, err := v.login(ctx, username, password)
	if err != nil {
		logging.Audit(logging.AuditEvent{Action: "login", Outcome: "failure", Target: username, Error: err})
		return LoginResult{}
	}

	logging.Audit(logging.AuditEvent{Action: "login", Outcome: "success", Target: username})
	return result
}

func (v *CredentialsValidator) login(ctx context.Context, username, password string) (LoginResult, error) {
	var resp loginResponse
	if err := postJSON(ctx, v.httpClient, v.backend.Backend().Resolve("/identity/login"), loginRequest{Username: username, Password: password}, &resp); err != nil {
		return LoginResult{}, err
	}

	if !resp.IsAuthenticated {
		return LoginResult{}, fmt.Errorf("credentials rejected")
	}
	if resp.AccessToken == "" || resp.RefreshToken == "" {
		return LoginResult{}, fmt.Errorf("identity response is missing tokens")
	}

	return LoginResult{IsValid: true, AccessToken: resp.AccessToken, RefreshToken: resp.RefreshToken}, nil
}

// statusError reports a non-2xx answer from an identity endpoint.
type statusError struct {
	StatusCode int
}

func (e *statusError) Error() string {
	return fmt.Sprintf("identity endpoint returned HTTP %d", e.StatusCode)
}

// postJSON sends body as JSON and decodes a 2xx JSON answer into out.
func postJSON(ctx context.Context, client *http.Client, url string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &statusError{StatusCode: resp.StatusCode}
	}

	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
