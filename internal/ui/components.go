package ui

import (
	"fmt"
	"html/template"
	"net/url"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"

	"studio/internal/api"
	"studio/internal/localization"
	"studio/internal/menu"
)

// Component template names.
const (
	ComponentShell       = "shell"
	ComponentLogin       = "login"
	ComponentDashboard   = "dashboard"
	ComponentDefinitions = "definitions"
	ComponentDefinition  = "definition"
	ComponentInstances   = "instances"
	ComponentInstance    = "instance"
	ComponentActivities  = "activities"
	ComponentLabels      = "labels"
	ComponentLabelEditor = "label-editor"
	ComponentDialog      = "dialog"
	ComponentError       = "error"
	ComponentEnvPicker   = "environment-picker"
	ComponentCulture     = "culture-picker"
	ComponentUserMenu    = "user-menu"
)

// ShellParams renders the page frame around a module page.
type ShellParams struct {
	Title    string
	Sections []menu.Section
	ActiveID string
	AppBar   []template.HTML
	Content  template.HTML
	Culture  string
	Notice   string
}

// EnvironmentOption is one entry in the environment picker.
type EnvironmentOption struct {
	Name     string
	URL      string
	Selected bool
}

// EnvironmentPickerParams renders the app-bar environment picker.
type EnvironmentPickerParams struct {
	Options  []EnvironmentOption
	Current  string
	Backend  string
	Redirect string
}

// CulturePickerParams renders the app-bar culture picker.
type CulturePickerParams struct {
	Cultures []localization.Culture
	Current  string
	Redirect string
}

// UserMenuParams renders the app-bar user menu.
type UserMenuParams struct {
	Authenticated bool
	User          string
}

// Pagination describes paging state for list components.
type Pagination struct {
	Page     int
	PageSize int
	Total    int
	// BasePath and Query are used to build page links.
	BasePath string
	Query    url.Values
}

// NewPagination clamps page to 1 and derives page count from total.
func NewPagination(basePath string, query url.Values, page, pageSize, total int) Pagination {
	if page < 1 {
		page = 1
	}
	return Pagination{Page: page, PageSize: pageSize, Total: total, BasePath: basePath, Query: query}
}

// Pages returns the number of pages.
func (p Pagination) Pages() int {
	if p.PageSize <= 0 {
		return 1
	}
	pages := (p.Total + p.PageSize - 1) / p.PageSize
	if pages < 1 {
		return 1
	}
	return pages
}

// HasPrev reports whether a previous page exists.
func (p Pagination) HasPrev() bool { return p.Page > 1 }

// HasNext reports whether a next page exists.
func (p Pagination) HasNext() bool { return p.Page < p.Pages() }

// URL links to page, keeping the other query parameters.
func (p Pagination) URL(page int) string {
	q := url.Values{}
	for k, v := range p.Query {
		q[k] = v
	}
	q.Set("page", strconv.Itoa(page))
	return p.BasePath + "?" + q.Encode()
}

// PrevURL links to the previous page.
func (p Pagination) PrevURL() string { return p.URL(p.Page - 1) }

// NextURL links to the next page.
func (p Pagination) NextURL() string { return p.URL(p.Page + 1) }

// ParsePage reads the page query parameter, defaulting to 1.
func ParsePage(q url.Values) int {
	page, err := strconv.Atoi(q.Get("page"))
	if err != nil || page < 1 {
		return 1
	}
	return page
}

// LoginFormParams renders the login page.
type LoginFormParams struct {
	Username string
	Password string
	Redirect string
	Errors   map[string]string
	Failed   bool
	Backend  string
}

// Validate checks the form and records field errors.
func (p *LoginFormParams) Validate() bool {
	p.Errors = map[string]string{}
	if strings.TrimSpace(p.Username) == "" {
		p.Errors["username"] = "Username is required."
	}
	if p.Password == "" {
		p.Errors["password"] = "Password is required."
	}
	return len(p.Errors) == 0
}

// DashboardParams renders the dashboard.
type DashboardParams struct {
	Environment     string
	Backend         string
	User            string
	DefinitionCount int
	InstanceCount   int
	FaultedCount    int
	Errors          []string
}

// DefinitionListParams renders the workflow definitions list.
type DefinitionListParams struct {
	Items      []api.WorkflowDefinitionSummary
	Search     string
	Pagination Pagination
}

// DefinitionParams renders a definition detail page.
type DefinitionParams struct {
	Definition *api.WorkflowDefinition
	Labels     []api.Label
	Dialog     *DialogParams
}

// InstanceListParams renders the workflow instances list.
type InstanceListParams struct {
	Items        []api.WorkflowInstanceSummary
	DefinitionID string
	Status       api.WorkflowStatus
	Statuses     []api.WorkflowStatus
	Pagination   Pagination
}

// InstanceParams renders an instance detail page.
type InstanceParams struct {
	Instance *api.WorkflowInstance
	Dialog   *DialogParams
}

// ActivityCategory is one category of activity descriptors.
type ActivityCategory struct {
	Name       string
	Activities []api.ActivityDescriptor
}

// ActivityListParams renders the activity catalog.
type ActivityListParams struct {
	Categories []ActivityCategory
	Total      int
}

// GroupActivities groups descriptors by category, both sorted by name.
func GroupActivities(descriptors []api.ActivityDescriptor) []ActivityCategory {
	byCategory := make(map[string][]api.ActivityDescriptor)
	for _, d := range descriptors {
		category := d.Category
		if category == "" {
			category = "Miscellaneous"
		}
		byCategory[category] = append(byCategory[category], d)
	}

	categories := make([]ActivityCategory, 0, len(byCategory))
	for name, items := range byCategory {
		sort.Slice(items, func(i, j int) bool {
			return strings.ToLower(items[i].DisplayName) < strings.ToLower(items[j].DisplayName)
		})
		categories = append(categories, ActivityCategory{Name: name, Activities: items})
	}
	sort.Slice(categories, func(i, j int) bool { return categories[i].Name < categories[j].Name })
	return categories
}

// LabelListParams renders the labels page.
type LabelListParams struct {
	Labels []api.Label
	Editor *LabelEditorParams
	Dialog *DialogParams
}

// Label editor limits.
const (
	MaxLabelNameLength        = 50
	MaxLabelDescriptionLength = 200
)

var colorPattern = regexp.MustCompile(`^#([0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

// LabelEditorParams renders the create/edit label dialog.
type LabelEditorParams struct {
	ID          string
	Name        string
	Description string
	Color       string
	Errors      map[string]string
}

// IsNew reports whether the editor creates a label.
func (p *LabelEditorParams) IsNew() bool { return p.ID == "" }

// Validate trims input and records field errors.
func (p *LabelEditorParams) Validate() bool {
	p.Name = strings.TrimSpace(p.Name)
	p.Description = strings.TrimSpace(p.Description)
	p.Color = strings.TrimSpace(p.Color)
	p.Errors = map[string]string{}

	switch {
	case p.Name == "":
		p.Errors["name"] = "Name is required."
	case utf8.RuneCountInString(p.Name) > MaxLabelNameLength:
		p.Errors["name"] = fmt.Sprintf("Name cannot exceed %d characters.", MaxLabelNameLength)
	}
	if utf8.RuneCountInString(p.Description) > MaxLabelDescriptionLength {
		p.Errors["description"] = fmt.Sprintf("Description cannot exceed %d characters.", MaxLabelDescriptionLength)
	}
	if p.Color != "" && !colorPattern.MatchString(p.Color) {
		p.Errors["color"] = "Color must look like #rgb or #rrggbb."
	}
	return len(p.Errors) == 0
}

// Request converts the editor to an API request.
func (p *LabelEditorParams) Request() api.SaveLabelRequest {
	return api.SaveLabelRequest{Name: p.Name, Description: p.Description, Color: p.Color}
}

// ErrorParams renders an error page.
type ErrorParams struct {
	Status  int
	Title   string
	Message string
}
