package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/oauth2"

	"studio/internal/api"
	"studio/internal/auth"
	"studio/internal/environment"
	"studio/pkg/logging"
)

// WorkflowClient is the console's view of the workflow engine API.
type WorkflowClient interface {
	// Workflow definitions
	ListDefinitions(ctx context.Context, opts api.DefinitionListOptions) (*api.PagedList[api.WorkflowDefinitionSummary], error)
	GetDefinition(ctx context.Context, definitionID string, version api.VersionOptions) (*api.WorkflowDefinition, error)
	SaveDefinition(ctx context.Context, req api.SaveWorkflowDefinitionRequest) (*api.WorkflowDefinition, error)
	PublishDefinition(ctx context.Context, definitionID string) (*api.WorkflowDefinition, error)
	RetractDefinition(ctx context.Context, definitionID string) (*api.WorkflowDefinition, error)
	DeleteDefinition(ctx context.Context, definitionID string) error

	// Workflow instances
	ListInstances(ctx context.Context, opts api.InstanceListOptions) (*api.PagedList[api.WorkflowInstanceSummary], error)
	GetInstance(ctx context.Context, id string) (*api.WorkflowInstance, error)
	DeleteInstance(ctx context.Context, id string) error

	// Activity descriptors
	ListActivities(ctx context.Context) ([]api.ActivityDescriptor, error)

	// Labels
	ListLabels(ctx context.Context) (*api.PagedList[api.Label], error)
	CreateLabel(ctx context.Context, req api.SaveLabelRequest) (*api.Label, error)
	UpdateLabel(ctx context.Context, id string, req api.SaveLabelRequest) (*api.Label, error)
	DeleteLabel(ctx context.Context, id string) error
	GetDefinitionLabels(ctx context.Context, definitionID string) ([]string, error)
	SetDefinitionLabels(ctx context.Context, definitionID string, labelIDs []string) error
}

// BackendProvider returns the backend requests should target.
type BackendProvider interface {
	Backend() environment.Backend
}

// TokenSourceFunc returns the bearer token source for a request context.
type TokenSourceFunc func(ctx context.Context) oauth2.TokenSource

// Config configures HTTPClient.
type Config struct {
	// Backend is read on every request. Required.
	Backend BackendProvider

	// Tokens supplies the bearer token. Nil sends requests anonymously.
	Tokens TokenSourceFunc

	// Timeout applies to the whole request. Defaults to 30s.
	Timeout time.Duration

	// Transport overrides http.DefaultTransport, mainly for tests.
	Transport http.RoundTripper

	// UserAgent is sent with every request.
	UserAgent string
}

// HTTPClient implements WorkflowClient over the engine's JSON API.
type HTTPClient struct {
	backend    BackendProvider
	httpClient *http.Client
	userAgent  string
}

var _ WorkflowClient = (*HTTPClient)(nil)

// maxResponseSize bounds response bodies read into memory.
const maxResponseSize = 16 << 20

// New creates an HTTPClient.
func New(cfg Config) *HTTPClient {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	base := cfg.Transport
	if base == nil {
		base = http.DefaultTransport
	}
	userAgent := cfg.UserAgent
	if userAgent == "" {
		userAgent = "studio"
	}

	var transport http.RoundTripper = base
	if cfg.Tokens != nil {
		transport = &bearerTransport{base: base, tokens: cfg.Tokens}
	}

	return &HTTPClient{
		backend:    cfg.Backend,
		httpClient: &http.Client{Timeout: timeout, Transport: transport},
		userAgent:  userAgent,
	}
}

// bearerTransport attaches the token of the request's context. The
// oauth2.Transport is built per request because the token source depends
// on the session carried by the context.
type bearerTransport struct {
	base   http.RoundTripper
	tokens TokenSourceFunc
}

func (t *bearerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	rt := &oauth2.Transport{Source: t.tokens(req.Context()), Base: t.base}
	return rt.RoundTrip(req)
}

// resource names what a request is about, for NotFoundError.
type resource struct {
	kind string
	name string
}

func (c *HTTPClient) do(ctx context.Context, method, path string, query url.Values, body, out any, res resource) error {
	backend := c.backend.Backend()
	if backend.IsZero() {
		return fmt.Errorf("no backend selected")
	}

	target := backend.Resolve(path)
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, auth.ErrNotAuthenticated) || errors.Is(err, auth.ErrRefreshFailed) {
			return &api.UnauthorizedError{StatusCode: http.StatusUnauthorized, Message: "not signed in"}
		}
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	logging.Debug("Client", "%s %s -> %d (%s)", method, path, resp.StatusCode, time.Since(start))

	if err := api.ErrorFromStatus(method, path, resp.StatusCode, data, res.kind, res.name); err != nil {
		return err
	}

	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", path, err)
	}
	return nil
}

func pagingQuery(opts api.ListOptions) url.Values {
	q := url.Values{}
	if opts.Page > 0 {
		q.Set("page", fmt.Sprint(opts.Page))
	}
	if opts.PageSize > 0 {
		q.Set("pageSize", fmt.Sprint(opts.PageSize))
	}
	return q
}
