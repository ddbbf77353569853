package auth

import (
	"context"
	"errors"

	"golang.org/x/oauth2"
)

// ErrNotAuthenticated is returned by TokenSource when no token is stored.
var ErrNotAuthenticated = errors.New("not authenticated")

type contextTokenSource struct {
	ctx       context.Context
	refresher *Refresher
}

// TokenSource returns an oauth2.TokenSource bound to ctx, so session-scoped
// storage resolves the right user. It refreshes expired tokens and returns
// ErrNotAuthenticated when signed out.
func (r *Refresher) TokenSource(ctx context.Context) oauth2.TokenSource {
	return &contextTokenSource{ctx: ctx, refresher: r}
}

func (s *contextTokenSource) Token() (*oauth2.Token, error) {
	access, err := s.refresher.AccessToken(s.ctx)
	if err != nil {
		return nil, err
	}
	if access == "" {
		return nil, ErrNotAuthenticated
	}

	token := &oauth2.Token{AccessToken: access, TokenType: "Bearer"}
	if exp, err := TokenExpiry(access); err == nil {
		token.Expiry = exp
	}
	return token, nil
}
