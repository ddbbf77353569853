package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/sync/singleflight"

	"studio/pkg/logging"
)

// ErrRefreshFailed is returned when the refresh call fails. When the engine
// rejected the refresh token the stored tokens have been cleared, so the user
// must sign in again. Transport failures leave the tokens in place.
var ErrRefreshFailed = errors.New("token refresh failed")

// refreshTimeout bounds a shared refresh independently of any one caller.
const refreshTimeout = 30 * time.Second

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type refreshResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// Refresher keeps the access token fresh before outgoing calls. Concurrent
// callers for the same session share one refresh request. There are no
// retries.
type Refresher struct {
	accessor   *JwtAccessor
	backend    BackendProvider
	httpClient *http.Client
	margin     time.Duration

	group singleflight.Group
}

// NewRefresher creates a refresher. A nil httpClient gets a client with a
// 30 second timeout.
func NewRefresher(accessor *JwtAccessor, backend BackendProvider, httpClient *http.Client) *Refresher {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Refresher{
		accessor:   accessor,
		backend:    backend,
		httpClient: httpClient,
		margin:     DefaultExpiryMargin,
	}
}

// AccessToken returns a usable access token, refreshing it first when it
// is expired and a refresh token exists. It returns "" when signed out.
func (r *Refresher) AccessToken(ctx context.Context) (string, error) {
	pair, err := r.accessor.ReadTokens(ctx)
	if err != nil {
		return "", err
	}
	if pair.AccessToken == "" {
		return "", nil
	}
	if !IsExpired(pair.AccessToken, r.margin) || pair.RefreshToken == "" {
		return pair.AccessToken, nil
	}

	key, _ := SessionIDFromContext(ctx)
	ch := r.group.DoChan("refresh:"+key, func() (interface{}, error) {
		// The shared call outlives the caller that started it.
		rctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), refreshTimeout)
		defer cancel()

		// Another flight may have finished between the read above and now.
		current, err := r.accessor.ReadTokens(rctx)
		if err != nil {
			return "", err
		}
		if current.AccessToken == "" {
			return "", nil
		}
		if !IsExpired(current.AccessToken, r.margin) || current.RefreshToken == "" {
			return current.AccessToken, nil
		}
		return r.refresh(rctx, current.RefreshToken)
	})

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return "", res.Err
		}
		if res.Shared {
			logging.Debug("Auth", "Joined in-flight token refresh")
		}
		return res.Val.(string), nil
	}
}

func (r *Refresher) refresh(ctx context.Context, refreshToken string) (string, error) {
	session, _ := SessionIDFromContext(ctx)

	var resp refreshResponse
	err := postJSON(ctx, r.httpClient, r.backend.Backend().Resolve("/identity/refresh-token"), refreshRequest{RefreshToken: refreshToken}, &resp)
	var statusErr *statusError
	rejected := errors.As(err, &statusErr)
	if err == nil && resp.AccessToken == "" {
		err = fmt.Errorf("refresh response is missing the access token")
		rejected = true
	}
	if err != nil {
		logging.Audit(logging.AuditEvent{Action: "token_refresh", Outcome: "failure", SessionID: session, Error: err})
		if rejected {
			if clearErr := r.accessor.ClearTokens(ctx); clearErr != nil {
				logging.Error("Auth", clearErr, "Failed to clear tokens after refresh failure")
			}
		}
		return "", fmt.Errorf("%w: %v", ErrRefreshFailed, err)
	}

	if resp.RefreshToken == "" {
		resp.RefreshToken = refreshToken
	}
	if err := r.accessor.WriteTokens(ctx, TokenPair{AccessToken: resp.AccessToken, RefreshToken: resp.RefreshToken}); err != nil {
		return "", err
	}

	logging.Audit(logging.AuditEvent{Action: "token_refresh", Outcome: "success", SessionID: session})
	return resp.AccessToken, nil
}
