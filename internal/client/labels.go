package client

import (
	"context"
	"net/http"
	"net/url"

	"studio/internal/api"
)

const labelResource = "label"

// ListLabels returns every label.
func (c *HTTPClient) ListLabels(ctx context.Context) (*api.PagedList[api.Label], error) {
	var out api.PagedList[api.Label]
	if err := c.do(ctx, http.MethodGet, "/labels", nil, nil, &out, resource{}); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateLabel creates a label.
func (c *HTTPClient) CreateLabel(ctx context.Context, req api.SaveLabelRequest) (*api.Label, error) {
	var out api.Label
	if err := c.do(ctx, http.MethodPost, "/labels", nil, req, &out, resource{labelResource, req.Name}); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateLabel updates a label.
func (c *HTTPClient) UpdateLabel(ctx context.Context, id string, req api.SaveLabelRequest) (*api.Label, error) {
	var out api.Label
	if err := c.do(ctx, http.MethodPost, "/labels/"+url.PathEscape(id), nil, req, &out, resource{labelResource, id}); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteLabel deletes a label.
func (c *HTTPClient) DeleteLabel(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/labels/"+url.PathEscape(id), nil, nil, nil, resource{labelResource, id})
}
