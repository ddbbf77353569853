package activities_test

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"studio/internal/api"
	"studio/internal/auth"
	"studio/internal/client"
	"studio/internal/client/clienttest"
	"studio/internal/features/activities"
	"studio/internal/registry"
	"studio/internal/server/servertest"
)

func TestActivitiesPage(t *testing.T) {
	h := servertest.New(t)
	fake := clienttest.New()
	fake.Activities = []api.ActivityDescriptor{
		{Type: "Elsa.WriteLine", DisplayName: "Write Line", Category: "Console", Outcomes: []string{"Done"}},
		{Type: "Elsa.If", DisplayName: "If", Category: "Control Flow", Outcomes: []string{"True", "False"}},
	}

	reg := h.Registry()
	require.NoError(t, registry.Register[client.WorkflowClient](reg, fake))
	require.NoError(t, activities.New(reg).Initialize(context.Background()))
	h.SignIn(auth.TokenPair{})

	rec := h.Get("/activities")

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "2 activity types available.")
	assert.Contains(t, body, "<h2>Console</h2>")
	assert.Contains(t, body, "True, False")
	assert.Contains(t, body, `<a href="/activities" class="active"`)
}

func TestActivitiesPage_EngineError(t *testing.T) {
	h := servertest.New(t)
	fake := clienttest.New()
	fake.Err = errors.New("connection refused")

	reg := h.Registry()
	require.NoError(t, registry.Register[client.WorkflowClient](reg, fake))
	require.NoError(t, activities.New(reg).Initialize(context.Background()))
	h.SignIn(auth.TokenPair{})

	rec := h.Get("/activities")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "connection refused")
}
