package client

import (
	"context"
	"net/http"
	"net/url"

	"studio/internal/api"
)

const instanceResource = "workflow instance"

// ListInstances returns a page of workflow instances.
func (c *HTTPClient) ListInstances(ctx context.Context, opts api.InstanceListOptions) (*api.PagedList[api.WorkflowInstanceSummary], error) {
	q := pagingQuery(opts.ListOptions)
	if opts.DefinitionID != "" {
		q.Set("definitionId", opts.DefinitionID)
	}
	if opts.Status != "" {
		q.Set("status", string(opts.Status))
	}
	if opts.SearchTerm != "" {
		q.Set("searchTerm", opts.SearchTerm)
	}

	var out api.PagedList[api.WorkflowInstanceSummary]
	if err := c.do(ctx, http.MethodGet, "/workflow-instances", q, nil, &out, resource{}); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetInstance returns one instance.
func (c *HTTPClient) GetInstance(ctx context.Context, id string) (*api.WorkflowInstance, error) {
	var out api.WorkflowInstance
	if err := c.do(ctx, http.MethodGet, "/workflow-instances/"+url.PathEscape(id), nil, nil, &out, resource{instanceResource, id}); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteInstance deletes one instance.
func (c *HTTPClient) DeleteInstance(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/workflow-instances/"+url.PathEscape(id), nil, nil, nil, resource{instanceResource, id})
}
