package menu

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ids(items []Item) []string {
	out := make([]string, len(items))
	for i, item := range items {
		out[i] = item.ID
	}
	return out
}

func TestRegistry_ItemOrdering(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.AddGroup(Group{Name: "Settings", Order: 100}))
	require.NoError(t, r.AddGroup(Group{Name: "Workflows", Order: 10}))

	require.NoError(t, r.AddItems(Item{ID: "labels", Label: "Labels", Href: "/labels", Group: "Settings"}))
	require.NoError(t, r.AddItems(
		Item{ID: "instances", Label: "Instances", Href: "/workflows/instances", Group: "Workflows", Order: 20},
		Item{ID: "definitions", Label: "Definitions", Href: "/workflows/definitions", Group: "Workflows", Order: 10},
	))
	require.NoError(t, r.AddItems(Item{ID: "activities", Label: "Activities", Href: "/activities", Group: "Workflows", Order: 20}))
	require.NoError(t, r.AddItems(Item{ID: "dashboard", Label: "Dashboard", Href: "/", Match: MatchExact}))

	assert.Equal(t,
		[]string{"dashboard", "definitions", "instances", "activities", "labels"},
		ids(r.Items()))
}

func TestRegistry_Sections(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.AddGroup(Group{Name: "Workflows", Order: 10}))
	require.NoError(t, r.AddItems(
		Item{ID: "dashboard", Label: "Dashboard", Href: "/"},
		Item{ID: "definitions", Label: "Definitions", Href: "/workflows/definitions", Group: "Workflows"},
		Item{ID: "other", Label: "Other", Href: "/other", Group: "Undeclared"},
	))

	sections := r.Sections()
	require.Len(t, sections, 3)
	assert.Equal(t, "", sections[0].Group.Name)
	assert.Equal(t, "Workflows", sections[1].Group.Name)
	assert.Equal(t, 10, sections[1].Group.Order)
	assert.Equal(t, "Undeclared", sections[2].Group.Name)
}

func TestRegistry_RejectsDuplicatesAtomically(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.AddItems(Item{ID: "a", Label: "A", Href: "/a"}))

	err := r.AddItems(Item{ID: "b", Label: "B", Href: "/b"}, Item{ID: "a", Label: "A2", Href: "/a2"})
	assert.Error(t, err)
	assert.Equal(t, []string{"a"}, ids(r.Items()))

	assert.Error(t, r.AddAppBarItems(AppBarItem{ID: "a", Component: "x"}))
}

func TestRegistry_Validation(t *testing.T) {
	r := NewRegistry()
	assert.Error(t, r.AddItems(Item{Label: "No ID", Href: "/"}))
	assert.Error(t, r.AddItems(Item{ID: "x", Href: "/"}))
	assert.Error(t, r.AddItems(Item{ID: "x", Label: "X", Href: "relative"}))
	assert.Error(t, r.AddItems(Item{ID: "x", Label: "X", Href: "/x", Match: "fuzzy"}))
	assert.Error(t, r.AddGroup(Group{}))
	assert.Error(t, r.AddAppBarItems(AppBarItem{ID: "x"}))
}

func TestRegistry_AppBarOrdering(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.AddAppBarItems(AppBarItem{ID: "user", Component: "user-menu", Order: 100}))
	require.NoError(t, r.AddAppBarItems(AppBarItem{ID: "env", Component: "environment-picker", Order: 10}))
	require.NoError(t, r.AddAppBarItems(AppBarItem{ID: "culture", Component: "culture-picker", Order: 10}))

	items := r.AppBarItems()
	require.Len(t, items, 3)
	assert.Equal(t, "env", items[0].ID)
	assert.Equal(t, "culture", items[1].ID)
	assert.Equal(t, "user", items[2].ID)
}

func TestItem_IsActive(t *testing.T) {
	defs := Item{Href: "/workflows/definitions", Match: MatchPrefix}
	assert.True(t, defs.IsActive("/workflows/definitions"))
	assert.True(t, defs.IsActive("/workflows/definitions/abc"))
	assert.False(t, defs.IsActive("/workflows/definitionsx"))

	root := Item{Href: "/", Match: MatchPrefix}
	assert.True(t, root.IsActive("/"))
	assert.False(t, root.IsActive("/labels"))

	exact := Item{Href: "/labels", Match: MatchExact}
	assert.False(t, exact.IsActive("/labels/1"))
}

func TestRegistry_Active(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.AddItems(
		Item{ID: "dashboard", Label: "Dashboard", Href: "/"},
		Item{ID: "workflows", Label: "Workflows", Href: "/workflows"},
		Item{ID: "definitions", Label: "Definitions", Href: "/workflows/definitions"},
	))

	assert.Equal(t, "definitions", r.Active("/workflows/definitions/42"))
	assert.Equal(t, "workflows", r.Active("/workflows/other"))
	assert.Equal(t, "dashboard", r.Active("/"))
	assert.Equal(t, "", r.Active("/nowhere"))
}
