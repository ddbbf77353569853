package labels_test

import (
	"context"
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"studio/internal/api"
	"studio/internal/auth"
	"studio/internal/client"
	"studio/internal/client/clienttest"
	"studio/internal/features/labels"
	"studio/internal/registry"
	"studio/internal/server/servertest"
)

func setup(t *testing.T) (*servertest.Harness, *clienttest.Fake) {
	t.Helper()
	h := servertest.New(t)
	fake := clienttest.New()

	reg := h.Registry()
	require.NoError(t, registry.Register[client.WorkflowClient](reg, fake))
	require.NoError(t, labels.New(reg).Initialize(context.Background()))

	h.SignIn(auth.TokenPair{})
	return h, fake
}

func TestList(t *testing.T) {
	h, fake := setup(t)
	fake.AddLabel(api.Label{ID: "l1", Name: "finance", Color: "#00ff00"})

	rec := h.Get("/labels")

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "finance")
	assert.Contains(t, body, "<h4>Settings</h4>")
	assert.NotContains(t, body, "<dialog")
}

func TestEditorDialogs(t *testing.T) {
	h, fake := setup(t)
	fake.AddLabel(api.Label{ID: "l1", Name: "finance", Description: "Money things"})

	body := h.Get("/labels?edit=new").Body.String()
	assert.Contains(t, body, "New label")
	assert.Contains(t, body, `action="/labels"`)

	body = h.Get("/labels?edit=l1").Body.String()
	assert.Contains(t, body, "Edit label")
	assert.Contains(t, body, `action="/labels/l1"`)
	assert.Contains(t, body, `value="Money things"`)

	assert.Equal(t, http.StatusNotFound, h.Get("/labels?edit=nope").Code)

	body = h.Get("/labels?delete=l1").Body.String()
	assert.Contains(t, body, "Delete label")
	assert.Contains(t, body, `action="/labels/l1/delete"`)
}

func TestCreate(t *testing.T) {
	h, fake := setup(t)

	rec := h.PostForm("/labels", url.Values{"result": {"close"}, "name": {" urgent "}, "color": {"#f00"}})

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/labels", rec.Header().Get("Location"))
	require.Len(t, fake.Labels, 1)
	for _, l := range fake.Labels {
		assert.Equal(t, "urgent", l.Name)
		assert.Equal(t, "#f00", l.Color)
	}
}

func TestCreate_ValidationErrors(t *testing.T) {
	h, fake := setup(t)

	rec := h.PostForm("/labels", url.Values{"result": {"close"}, "name": {""}, "color": {"green"}})

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Name is required.")
	assert.Contains(t, body, "Color must look like #rgb or #rrggbb.")
	assert.NotContains(t, fake.Calls(), "CreateLabel")
}

func TestCreate_Cancel(t *testing.T) {
	h, fake := setup(t)

	rec := h.PostForm("/labels", url.Values{"result": {"cancel"}, "name": {"x"}})

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Empty(t, fake.Labels)
}

func TestUpdate(t *testing.T) {
	h, fake := setup(t)
	fake.AddLabel(api.Label{ID: "l1", Name: "finance"})

	rec := h.PostForm("/labels/l1", url.Values{"result": {"close"}, "name": {"accounting"}, "description": {"Renamed"}})

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "accounting", fake.Labels["l1"].Name)
	assert.Equal(t, "Renamed", fake.Labels["l1"].Description)
}

func TestUpdate_Missing(t *testing.T) {
	h, _ := setup(t)
	rec := h.PostForm("/labels/nope", url.Values{"result": {"close"}, "name": {"x"}})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDelete(t *testing.T) {
	h, fake := setup(t)
	fake.AddLabel(api.Label{ID: "l1", Name: "finance"})

	h.PostForm("/labels/l1/delete", url.Values{"result": {"cancel"}})
	assert.Contains(t, fake.Labels, "l1")

	rec := h.PostForm("/labels/l1/delete", url.Values{"result": {"close"}})
	assert.Equal(t, "/labels", rec.Header().Get("Location"))
	assert.NotContains(t, fake.Labels, "l1")
}
