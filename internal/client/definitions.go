package client

import (
	"context"
	"net/http"
	"net/url"

	"studio/internal/api"
)

const definitionResource = "workflow definition"

// ListDefinitions returns a page of workflow definitions.
func (c *HTTPClient) ListDefinitions(ctx context.Context, opts api.DefinitionListOptions) (*api.PagedList[api.WorkflowDefinitionSummary], error) {
	q := pagingQuery(opts.ListOptions)
	if opts.SearchTerm != "" {
		q.Set("searchTerm", opts.SearchTerm)
	}
	if opts.VersionOptions != "" {
		q.Set("versionOptions", string(opts.VersionOptions))
	}
	if opts.Label != "" {
		q.Set("label", opts.Label)
	}

	var out api.PagedList[api.WorkflowDefinitionSummary]
	if err := c.do(ctx, http.MethodGet, "/workflow-definitions", q, nil, &out, resource{}); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetDefinition returns one definition by its definition ID.
func (c *HTTPClient) GetDefinition(ctx context.Context, definitionID string, version api.VersionOptions) (*api.WorkflowDefinition, error) {
	if version == "" {
		version = api.VersionLatest
	}
	q := url.Values{"versionOptions": {string(version)}}

	var out api.WorkflowDefinition
	path := "/workflow-definitions/by-definition-id/" + url.PathEscape(definitionID)
	if err := c.do(ctx, http.MethodGet, path, q, nil, &out, resource{definitionResource, definitionID}); err != nil {
		return nil, err
	}
	return &out, nil
}

// SaveDefinition creates or updates a draft, publishing it when req.Publish is set.
func (c *HTTPClient) SaveDefinition(ctx context.Context, req api.SaveWorkflowDefinitionRequest) (*api.WorkflowDefinition, error) {
	var out api.WorkflowDefinition
	if err := c.do(ctx, http.MethodPost, "/workflow-definitions", nil, req, &out, resource{definitionResource, req.WorkflowDefinitionID}); err != nil {
		return nil, err
	}
	return &out, nil
}

// PublishDefinition publishes the latest draft.
func (c *HTTPClient) PublishDefinition(ctx context.Context, definitionID string) (*api.WorkflowDefinition, error) {
	return c.definitionAction(ctx, definitionID, "publish")
}

// RetractDefinition unpublishes the published version.
func (c *HTTPClient) RetractDefinition(ctx context.Context, definitionID string) (*api.WorkflowDefinition, error) {
	return c.definitionAction(ctx, definitionID, "retract")
}

func (c *HTTPClient) definitionAction(ctx context.Context, definitionID, action string) (*api.WorkflowDefinition, error) {
	var out api.WorkflowDefinition
	path := "/workflow-definitions/" + url.PathEscape(definitionID) + "/" + action
	if err := c.do(ctx, http.MethodPost, path, nil, struct{}{}, &out, resource{definitionResource, definitionID}); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteDefinition deletes every version of a definition.
func (c *HTTPClient) DeleteDefinition(ctx context.Context, definitionID string) error {
	path := "/workflow-definitions/by-definition-id/" + url.PathEscape(definitionID)
	return c.do(ctx, http.MethodDelete, path, nil, nil, nil, resource{definitionResource, definitionID})
}

// GetDefinitionLabels returns the label IDs attached to a definition.
func (c *HTTPClient) GetDefinitionLabels(ctx context.Context, definitionID string) ([]string, error) {
	var out api.DefinitionLabels
	path := "/workflow-definitions/" + url.PathEscape(definitionID) + "/labels"
	if err := c.do(ctx, http.MethodGet, path, nil, nil, &out, resource{definitionResource, definitionID}); err != nil {
		return nil, err
	}
	return out.LabelIDs, nil
}

// SetDefinitionLabels replaces the labels attached to a definition.
func (c *HTTPClient) SetDefinitionLabels(ctx context.Context, definitionID string, labelIDs []string) error {
	if labelIDs == nil {
		labelIDs = []string{}
	}
	path := "/workflow-definitions/" + url.PathEscape(definitionID) + "/labels"
	return c.do(ctx, http.MethodPost, path, nil, api.DefinitionLabels{LabelIDs: labelIDs}, nil, resource{definitionResource, definitionID})
}
