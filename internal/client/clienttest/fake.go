// Package clienttest provides an in-memory WorkflowClient for tests.
package clienttest

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"studio/internal/api"
	"studio/internal/client"
)

// Fake is an in-memory engine. Set Err to make every call fail.
type Fake struct {
	mu sync.Mutex

	Definitions      map[string]*api.WorkflowDefinition
	Instances        map[string]*api.WorkflowInstance
	Activities       []api.ActivityDescriptor
	Labels           map[string]*api.Label
	DefinitionLabels map[string][]string

	Err   error
	calls []string
	next  int
}

var _ client.WorkflowClient = (*Fake)(nil)

// New returns an empty fake.
func New() *Fake {
	return &Fake{
		Definitions:      make(map[string]*api.WorkflowDefinition),
		Instances:        make(map[string]*api.WorkflowInstance),
		Labels:           make(map[string]*api.Label),
		DefinitionLabels: make(map[string][]string),
	}
}

// Calls returns the names of the methods invoked so far.
func (f *Fake) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

// AddDefinition stores a definition.
func (f *Fake) AddDefinition(d api.WorkflowDefinition) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Definitions[d.DefinitionID] = &d
}

// AddInstance stores an instance.
func (f *Fake) AddInstance(i api.WorkflowInstance) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Instances[i.ID] = &i
}

// AddLabel stores a label.
func (f *Fake) AddLabel(l api.Label) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Labels[l.ID] = &l
}

func (f *Fake) record(name string) error {
	f.calls = append(f.calls, name)
	return f.Err
}

func page[T any](items []T, opts api.ListOptions) *api.PagedList[T] {
	out := &api.PagedList[T]{TotalCount: len(items), Page: opts.Page, PageSize: opts.PageSize}
	if opts.PageSize <= 0 {
		out.Items = items
		return out
	}
	p := opts.Page
	if p < 1 {
		p = 1
	}
	start := (p - 1) * opts.PageSize
	if start >= len(items) {
		out.Items = []T{}
		return out
	}
	end := min(start+opts.PageSize, len(items))
	out.Items = items[start:end]
	return out
}

// ListDefinitions implements client.WorkflowClient.
func (f *Fake) ListDefinitions(_ context.Context, opts api.DefinitionListOptions) (*api.PagedList[api.WorkflowDefinitionSummary], error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("ListDefinitions"); err != nil {
		return nil, err
	}

	var items []api.WorkflowDefinitionSummary
	for _, d := range f.Definitions {
		if opts.SearchTerm != "" && !strings.Contains(strings.ToLower(d.Title()), strings.ToLower(opts.SearchTerm)) {
			continue
		}
		items = append(items, d.WorkflowDefinitionSummary)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].DefinitionID < items[j].DefinitionID })
	return page(items, opts.ListOptions), nil
}

// GetDefinition implements client.WorkflowClient.
func (f *Fake) GetDefinition(_ context.Context, definitionID string, _ api.VersionOptions) (*api.WorkflowDefinition, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("GetDefinition"); err != nil {
		return nil, err
	}
	d, ok := f.Definitions[definitionID]
	if !ok {
		return nil, api.NewNotFoundError("workflow definition", definitionID)
	}
	out := *d
	return &out, nil
}

// SaveDefinition implements client.WorkflowClient.
func (f *Fake) SaveDefinition(_ context.Context, req api.SaveWorkflowDefinitionRequest) (*api.WorkflowDefinition, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("SaveDefinition"); err != nil {
		return nil, err
	}

	id := req.WorkflowDefinitionID
	if id == "" {
		f.next++
		id = fmt.Sprintf("def-%d", f.next)
	}
	d, ok := f.Definitions[id]
	if !ok {
		d = &api.WorkflowDefinition{}
		d.ID, d.DefinitionID = id+"-v1", id
	}
	d.Name, d.DisplayName, d.Description = req.Name, req.DisplayName, req.Description
	d.Activities, d.Connections = req.Activities, req.Connections
	d.IsPublished = req.Publish
	d.IsLatest = true
	d.Version++
	f.Definitions[id] = d
	out := *d
	return &out, nil
}

func (f *Fake) setPublished(name, definitionID string, published bool) (*api.WorkflowDefinition, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record(name); err != nil {
		return nil, err
	}
	d, ok := f.Definitions[definitionID]
	if !ok {
		return nil, api.NewNotFoundError("workflow definition", definitionID)
	}
	d.IsPublished = published
	out := *d
	return &out, nil
}

// PublishDefinition implements client.WorkflowClient.
func (f *Fake) PublishDefinition(_ context.Context, definitionID string) (*api.WorkflowDefinition, error) {
	return f.setPublished("PublishDefinition", definitionID, true)
}

// RetractDefinition implements client.WorkflowClient.
func (f *Fake) RetractDefinition(_ context.Context, definitionID string) (*api.WorkflowDefinition, error) {
	return f.setPublished("RetractDefinition", definitionID, false)
}

// DeleteDefinition implements client.WorkflowClient.
func (f *Fake) DeleteDefinition(_ context.Context, definitionID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("DeleteDefinition"); err != nil {
		return err
	}
	if _, ok := f.Definitions[definitionID]; !ok {
		return api.NewNotFoundError("workflow definition", definitionID)
	}
	delete(f.Definitions, definitionID)
	return nil
}

// ListInstances implements client.WorkflowClient.
func (f *Fake) ListInstances(_ context.Context, opts api.InstanceListOptions) (*api.PagedList[api.WorkflowInstanceSummary], error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("ListInstances"); err != nil {
		return nil, err
	}

	var items []api.WorkflowInstanceSummary
	for _, i := range f.Instances {
		if opts.DefinitionID != "" && i.DefinitionID != opts.DefinitionID {
			continue
		}
		if opts.Status != "" && i.WorkflowStatus != opts.Status {
			continue
		}
		items = append(items, i.WorkflowInstanceSummary)
	}
	sort.Slice(items, func(a, b int) bool { return items[a].ID < items[b].ID })
	return page(items, opts.ListOptions), nil
}

// GetInstance implements client.WorkflowClient.
func (f *Fake) GetInstance(_ context.Context, id string) (*api.WorkflowInstance, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("GetInstance"); err != nil {
		return nil, err
	}
	i, ok := f.Instances[id]
	if !ok {
		return nil, api.NewNotFoundError("workflow instance", id)
	}
	out := *i
	return &out, nil
}

// DeleteInstance implements client.WorkflowClient.
func (f *Fake) DeleteInstance(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("DeleteInstance"); err != nil {
		return err
	}
	if _, ok := f.Instances[id]; !ok {
		return api.NewNotFoundError("workflow instance", id)
	}
	delete(f.Instances, id)
	return nil
}

// ListActivities implements client.WorkflowClient.
func (f *Fake) ListActivities(_ context.Context) ([]api.ActivityDescriptor, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("ListActivities"); err != nil {
		return nil, err
	}
	return append([]api.ActivityDescriptor(nil), f.Activities...), nil
}

// ListLabels implements client.WorkflowClient.
func (f *Fake) ListLabels(_ context.Context) (*api.PagedList[api.Label], error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("ListLabels"); err != nil {
		return nil, err
	}
	items := make([]api.Label, 0, len(f.Labels))
	for _, l := range f.Labels {
		items = append(items, *l)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].Name < items[j].Name })
	return &api.PagedList[api.Label]{Items: items, TotalCount: len(items)}, nil
}

// CreateLabel implements client.WorkflowClient.
func (f *Fake) CreateLabel(_ context.Context, req api.SaveLabelRequest) (*api.Label, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("CreateLabel"); err != nil {
		return nil, err
	}
	f.next++
	l := &api.Label{
		ID:             fmt.Sprintf("label-%d", f.next),
		Name:           req.Name,
		NormalizedName: strings.ToLower(req.Name),
		Description:    req.Description,
		Color:          req.Color,
	}
	f.Labels[l.ID] = l
	out := *l
	return &out, nil
}

// UpdateLabel implements client.WorkflowClient.
func (f *Fake) UpdateLabel(_ context.Context, id string, req api.SaveLabelRequest) (*api.Label, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("UpdateLabel"); err != nil {
		return nil, err
	}
	l, ok := f.Labels[id]
	if !ok {
		return nil, api.NewNotFoundError("label", id)
	}
	l.Name, l.NormalizedName, l.Description, l.Color = req.Name, strings.ToLower(req.Name), req.Description, req.Color
	out := *l
	return &out, nil
}

// DeleteLabel implements client.WorkflowClient.
func (f *Fake) DeleteLabel(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("DeleteLabel"); err != nil {
		return err
	}
	if _, ok := f.Labels[id]; !ok {
		return api.NewNotFoundError("label", id)
	}
	delete(f.Labels, id)
	return nil
}

// GetDefinitionLabels implements client.WorkflowClient.
func (f *Fake) GetDefinitionLabels(_ context.Context, definitionID string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("GetDefinitionLabels"); err != nil {
		return nil, err
	}
	return append([]string(nil), f.DefinitionLabels[definitionID]...), nil
}

// SetDefinitionLabels implements client.WorkflowClient.
func (f *Fake) SetDefinitionLabels(_ context.Context, definitionID string, labelIDs []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("SetDefinitionLabels"); err != nil {
		return err
	}
	f.DefinitionLabels[definitionID] = append([]string(nil), labelIDs...)
	return nil
}
