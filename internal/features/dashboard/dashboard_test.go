package dashboard_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"studio/internal/api"
	"studio/internal/auth"
	"studio/internal/client"
	"studio/internal/client/clienttest"
	"studio/internal/environment"
	"studio/internal/features/dashboard"
	"studio/internal/registry"
	"studio/internal/server/servertest"
)

func setup(t *testing.T, fake *clienttest.Fake) *servertest.Harness {
	t.Helper()
	h := servertest.New(t)
	primary, err := environment.NewBackend("https://engine.example.com/elsa/api")
	require.NoError(t, err)

	reg := h.Registry()
	require.NoError(t, registry.Register[client.WorkflowClient](reg, fake))
	require.NoError(t, registry.Register(reg, environment.NewAccessor(primary, nil)))
	require.NoError(t, dashboard.New(reg).Initialize(context.Background()))

	h.SignIn(auth.TokenPair{})
	return h
}

func TestDashboard(t *testing.T) {
	fake := clienttest.New()
	fake.AddDefinition(api.WorkflowDefinition{WorkflowDefinitionSummary: api.WorkflowDefinitionSummary{DefinitionID: "d1"}})
	fake.AddInstance(api.WorkflowInstance{WorkflowInstanceSummary: api.WorkflowInstanceSummary{ID: "i1", WorkflowStatus: api.StatusFaulted}})
	fake.AddInstance(api.WorkflowInstance{WorkflowInstanceSummary: api.WorkflowInstanceSummary{ID: "i2", WorkflowStatus: api.StatusRunning}})
	h := setup(t, fake)

	rec := h.Get("/")

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "https://engine.example.com/elsa/api")
	assert.Contains(t, body, `<a href="/workflows/instances">2</a>`)
	assert.Contains(t, body, `<a href="/workflows/instances?status=Faulted">1</a>`)
	assert.Contains(t, body, `<a href="/workflows/definitions">1</a>`)
	assert.Contains(t, body, `<a href="/" class="active"`)
}

func TestDashboard_OnlyRootIsActive(t *testing.T) {
	h := setup(t, clienttest.New())
	assert.Equal(t, "dashboard", h.Menu.Active("/"))
	assert.Equal(t, "", h.Menu.Active("/labels"))
}

func TestDashboard_PartialFailure(t *testing.T) {
	fake := clienttest.New()
	h := setup(t, fake)
	fake.Err = &api.RemoteError{Method: "GET", Path: "/workflow-instances", StatusCode: 500}

	rec := h.Get("/")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Could not count workflow instances")
}
