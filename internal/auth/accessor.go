package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"studio/pkg/logging"
)

// TokenPair is the bearer token pair issued by the engine.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// String keeps token values out of logs and error messages.
func (p TokenPair) String() string {
	return fmt.Sprintf("TokenPair{access:%t refresh:%t}", p.AccessToken != "", p.RefreshToken != "")
}

// GoString keeps token values out of %#v output.
func (p TokenPair) GoString() string {
	return p.String()
}

// JwtAccessor reads and writes the token pair through the configured
// TokenStorage. The storage is the single source of truth: nothing is
// cached here.
type JwtAccessor struct {
	storage TokenStorage
}

// NewJwtAccessor creates an accessor over storage.
func NewJwtAccessor(storage TokenStorage) *JwtAccessor {
	return &JwtAccessor{storage: storage}
}

// ReadToken returns the token stored under name, or "" when nothing is
// stored. Other storage failures are returned as-is.
func (a *JwtAccessor) ReadToken(ctx context.Context, name string) (string, error) {
	value, err := a.storage.Get(ctx, name)
	if errors.Is(err, ErrTokenNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", name, err)
	}
	return value, nil
}

// ReadTokens returns both tokens.
func (a *JwtAccessor) ReadTokens(ctx context.Context) (TokenPair, error) {
	access, err := a.ReadToken(ctx, AccessTokenKey)
	if err != nil {
		return TokenPair{}, err
	}
	refresh, err := a.ReadToken(ctx, RefreshTokenKey)
	if err != nil {
		return TokenPair{}, err
	}
	return TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

// WriteTokens stores both tokens, overwriting any previous pair.
func (a *JwtAccessor) WriteTokens(ctx context.Context, pair TokenPair) error {
	if err := a.storage.Set(ctx, AccessTokenKey, pair.AccessToken); err != nil {
		return fmt.Errorf("failed to write %s: %w", AccessTokenKey, err)
	}
	if err := a.storage.Set(ctx, RefreshTokenKey, pair.RefreshToken); err != nil {
		return fmt.Errorf("failed to write %s: %w", RefreshTokenKey, err)
	}
	session, _ := SessionIDFromContext(ctx)
	logging.Audit(logging.AuditEvent{Action: "tokens_stored", Outcome: "success", SessionID: session})
	return nil
}

// ClearTokens removes both tokens.
func (a *JwtAccessor) ClearTokens(ctx context.Context) error {
	var errs []error
	for _, key := range []string{AccessTokenKey, RefreshTokenKey} {
		if err := a.storage.Delete(ctx, key); err != nil {
			errs = append(errs, fmt.Errorf("failed to delete %s: %w", key, err))
		}
	}
	session, _ := SessionIDFromContext(ctx)
	err := errors.Join(errs...)
	outcome := "success"
	if err != nil {
		outcome = "failure"
	}
	logging.Audit(logging.AuditEvent{Action: "tokens_cleared", Outcome: outcome, SessionID: session, Error: err})
	return err
}

// Status describes the signed-in state for display.
type Status struct {
	Authenticated bool   `json:"authenticated" yaml:"authenticated"`
	User          string `json:"user,omitempty" yaml:"user,omitempty"`
	ExpiresAt     string `json:"expiresAt,omitempty" yaml:"expiresAt,omitempty"`
	Expired       bool   `json:"expired,omitempty" yaml:"expired,omitempty"`
	CanRefresh    bool   `json:"canRefresh,omitempty" yaml:"canRefresh,omitempty"`
}

// Status inspects the stored access token without contacting the engine.
func (a *JwtAccessor) Status(ctx context.Context) (Status, error) {
	pair, err := a.ReadTokens(ctx)
	if err != nil {
		return Status{}, err
	}
	if pair.AccessToken == "" {
		return Status{}, nil
	}

	st := Status{
		Authenticated: true,
		User:          TokenSubject(pair.AccessToken),
		CanRefresh:    pair.RefreshToken != "",
	}
	if exp, err := TokenExpiry(pair.AccessToken); err == nil && !exp.IsZero() {
		st.ExpiresAt = exp.Format(time.RFC3339)
		st.Expired = IsExpired(pair.AccessToken, 0)
		st.Authenticated = !st.Expired || st.CanRefresh
	}
	return st, nil
}
