package menu

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// MatchMode decides when a menu item is highlighted for the current path.
type MatchMode string

const (
	// MatchPrefix highlights the item for its Href and everything below it.
	MatchPrefix MatchMode = "prefix"
	// MatchExact highlights the item only for its exact Href.
	MatchExact MatchMode = "exact"
)

// Item is one entry in the navigation sidebar.
type Item struct {
	// ID is unique across all modules (e.g. "workflows-definitions").
	ID string `json:"id"`
	// Label is the text shown in the sidebar.
	Label string `json:"label"`
	// Icon is an icon token rendered alongside the label.
	Icon string `json:"icon,omitempty"`
	// Href is the console path the item links to.
	Href string `json:"href"`
	// Group names the section the item belongs to. Empty means top level.
	Group string `json:"group,omitempty"`
	// Order controls the position within the group (lower = higher up).
	Order int `json:"order"`
	// Match selects how the active item is determined.
	Match MatchMode `json:"match,omitempty"`

	seq int
}

// IsActive reports whether the item should be highlighted for path.
func (i Item) IsActive(path string) bool {
	if i.Match == MatchExact || i.Href == "/" {
		return path == i.Href
	}
	return path == i.Href || strings.HasPrefix(path, strings.TrimSuffix(i.Href, "/")+"/")
}

// Group is a named sidebar section.
type Group struct {
	Name  string `json:"name"`
	Order int    `json:"order"`
}

// AppBarItem is a component rendered in the top bar (environment picker,
// culture picker, user menu).
type AppBarItem struct {
	ID string `json:"id"`
	// Label is used as the accessible name of the component.
	Label string `json:"label"`
	// Component names the UI component that renders the item.
	Component string `json:"component"`
	Order     int    `json:"order"`

	seq int
}

// Section is a group together with its sorted items, ready to render.
type Section struct {
	Group Group  `json:"group"`
	Items []Item `json:"items"`
}

// Registry collects navigation entries contributed by feature modules.
// Entries are appended during module initialization and never removed.
type Registry struct {
	mu     sync.RWMutex
	items  []Item
	groups map[string]Group
	appBar []AppBarItem
	ids    map[string]struct{}
	seq    int
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		groups: make(map[string]Group),
		ids:    make(map[string]struct{}),
	}
}

// AddGroup declares a group. Declaring the same name again updates its order.
func (r *Registry) AddGroup(g Group) error {
	if g.Name == "" {
		return fmt.Errorf("menu group has empty name")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.groups[g.Name] = g
	return nil
}

// AddItems appends menu items. IDs must be unique across the registry;
// nothing is added when any item is invalid.
func (r *Registry) AddItems(items ...Item) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	seen := make(map[string]struct{}, len(items))
	for _, item := range items {
		if err := validateItem(item); err != nil {
			return err
		}
		if _, exists := r.ids[item.ID]; exists {
			return fmt.Errorf("menu item %s already registered", item.ID)
		}
		if _, exists := seen[item.ID]; exists {
			return fmt.Errorf("menu item %s listed twice", item.ID)
		}
		seen[item.ID] = struct{}{}
	}

	for _, item := range items {
		if item.Match == "" {
			item.Match = MatchPrefix
		}
		item.seq = r.seq
		r.seq++
		r.ids[item.ID] = struct{}{}
		r.items = append(r.items, item)
	}
	return nil
}

// AddAppBarItems appends app-bar items.
func (r *Registry) AddAppBarItems(items ...AppBarItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, item := range items {
		if item.ID == "" || item.Component == "" {
			return fmt.Errorf("app bar item requires id and component")
		}
		if _, exists := r.ids[item.ID]; exists {
			return fmt.Errorf("app bar item %s already registered", item.ID)
		}
	}

	for _, item := range items {
		item.seq = r.seq
		r.seq++
		r.ids[item.ID] = struct{}{}
		r.appBar = append(r.appBar, item)
	}
	return nil
}

func validateItem(item Item) error {
	if item.ID == "" {
		return fmt.Errorf("menu item has empty id")
	}
	if item.Label == "" {
		return fmt.Errorf("menu item %s has empty label", item.ID)
	}
	if !strings.HasPrefix(item.Href, "/") {
		return fmt.Errorf("menu item %s href %q must be an absolute path", item.ID, item.Href)
	}
	switch item.Match {
	case "", MatchPrefix, MatchExact:
	default:
		return fmt.Errorf("menu item %s has unknown match mode %q", item.ID, item.Match)
	}
	return nil
}

// groupOrder returns the order of a group. Undeclared groups sort after
// declared ones; the top level (empty group) sorts first.
func (r *Registry) groupOrder(name string) int {
	if name == "" {
		return -1 << 31
	}
	if g, ok := r.groups[name]; ok {
		return g.Order
	}
	return 1 << 30
}

// Items returns all menu items sorted by (group order, order, registration sequence).
func (r *Registry) Items() []Item {
	r.mu.RLock()
	defer r.mu.RUnlock()

	items := make([]Item, len(r.items))
	copy(items, r.items)

	sort.SliceStable(items, func(a, b int) bool {
		ga, gb := r.groupOrder(items[a].Group), r.groupOrder(items[b].Group)
		if ga != gb {
			return ga < gb
		}
		if items[a].Group != items[b].Group {
			return items[a].Group < items[b].Group
		}
		if items[a].Order != items[b].Order {
			return items[a].Order < items[b].Order
		}
		return items[a].seq < items[b].seq
	})
	return items
}

// Sections returns items partitioned by group, in display order.
func (r *Registry) Sections() []Section {
	items := r.Items()

	r.mu.RLock()
	defer r.mu.RUnlock()

	var sections []Section
	for _, item := range items {
		if len(sections) == 0 || sections[len(sections)-1].Group.Name != item.Group {
			g, ok := r.groups[item.Group]
			if !ok {
				g = Group{Name: item.Group}
			}
			sections = append(sections, Section{Group: g})
		}
		last := &sections[len(sections)-1]
		last.Items = append(last.Items, item)
	}
	return sections
}

// AppBarItems returns app-bar items sorted by (order, registration sequence).
func (r *Registry) AppBarItems() []AppBarItem {
	r.mu.RLock()
	defer r.mu.RUnlock()

	items := make([]AppBarItem, len(r.appBar))
	copy(items, r.appBar)

	sort.SliceStable(items, func(a, b int) bool {
		if items[a].Order != items[b].Order {
			return items[a].Order < items[b].Order
		}
		return items[a].seq < items[b].seq
	})
	return items
}

// Active returns the ID of the most specific item matching path, or "".
func (r *Registry) Active(path string) string {
	best, bestLen := "", -1
	for _, item := range r.Items() {
		if item.IsActive(path) && len(item.Href) > bestLen {
			best, bestLen = item.ID, len(item.Href)
		}
	}
	return best
}
