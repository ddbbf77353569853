package client

import (
	"context"
	"net/http"

	"studio/internal/api"
)

// ListActivities returns the activity types the engine offers.
func (c *HTTPClient) ListActivities(ctx context.Context) ([]api.ActivityDescriptor, error) {
	var out api.ActivityDescriptors
	if err := c.do(ctx, http.MethodGet, "/descriptors/activities", nil, nil, &out, resource{}); err != nil {
		return nil, err
	}
	return out.Items, nil
}
