package api

import (
	"encoding/json"
	"strconv"
	"time"
)

// VersionOptions selects which version of a workflow definition the engine
// returns. The engine accepts these strings verbatim in the versionOptions
// query parameter.
type VersionOptions string

const (
	VersionLatest          VersionOptions = "Latest"
	VersionPublished       VersionOptions = "Published"
	VersionLatestOrPublish VersionOptions = "LatestOrPublished"
	VersionDraft           VersionOptions = "Draft"
	VersionAll             VersionOptions = "All"
)

// SpecificVersion requests one exact version number.
func SpecificVersion(v int) VersionOptions {
	return VersionOptions("Version:" + strconv.Itoa(v))
}

// WorkflowStatus mirrors the engine's instance status values.
type WorkflowStatus string

const (
	StatusIdle      WorkflowStatus = "Idle"
	StatusRunning   WorkflowStatus = "Running"
	StatusFinished  WorkflowStatus = "Finished"
	StatusSuspended WorkflowStatus = "Suspended"
	StatusFaulted   WorkflowStatus = "Faulted"
	StatusCancelled WorkflowStatus = "Cancelled"
)

// ValidStatuses lists the statuses accepted by instance filters.
var ValidStatuses = []WorkflowStatus{
	StatusIdle, StatusRunning, StatusFinished, StatusSuspended, StatusFaulted, StatusCancelled,
}

// PagedList is the envelope the engine uses for list endpoints.
type PagedList[T any] struct {
	Items      []T `json:"items" yaml:"items"`
	Page       int `json:"page,omitempty" yaml:"page,omitempty"`
	PageSize   int `json:"pageSize,omitempty" yaml:"pageSize,omitempty"`
	TotalCount int `json:"totalCount" yaml:"totalCount"`
}

// PageCount returns how many pages of PageSize items TotalCount spans.
func (p PagedList[T]) PageCount() int {
	if p.PageSize <= 0 {
		if p.TotalCount > 0 {
			return 1
		}
		return 0
	}
	return (p.TotalCount + p.PageSize - 1) / p.PageSize
}

// ListOptions holds paging parameters shared by list endpoints.
type ListOptions struct {
	Page     int
	PageSize int
}

// DefinitionListOptions filters GET /workflow-definitions.
type DefinitionListOptions struct {
	ListOptions
	SearchTerm     string
	VersionOptions VersionOptions
	Label          string
}

// InstanceListOptions filters GET /workflow-instances.
type InstanceListOptions struct {
	ListOptions
	DefinitionID string
	Status       WorkflowStatus
	SearchTerm   string
}

// WorkflowDefinitionSummary is one row of the definitions list.
type WorkflowDefinitionSummary struct {
	ID           string `json:"id" yaml:"id"`
	DefinitionID string `json:"definitionId" yaml:"definitionId"`
	Name         string `json:"name,omitempty" yaml:"name,omitempty"`
	DisplayName  string `json:"displayName,omitempty" yaml:"displayName,omitempty"`
	Description  string `json:"description,omitempty" yaml:"description,omitempty"`
	Version      int    `json:"version" yaml:"version"`
	IsLatest     bool   `json:"isLatest" yaml:"isLatest"`
	IsPublished  bool   `json:"isPublished" yaml:"isPublished"`
}

// Title returns the display name, falling back to the name and then the ID.
func (s WorkflowDefinitionSummary) Title() string {
	switch {
	case s.DisplayName != "":
		return s.DisplayName
	case s.Name != "":
		return s.Name
	default:
		return s.DefinitionID
	}
}

// ActivityDefinition is one activity placed on a workflow.
type ActivityDefinition struct {
	ActivityID  string                     `json:"activityId" yaml:"activityId"`
	Type        string                     `json:"type" yaml:"type"`
	Name        string                     `json:"name,omitempty" yaml:"name,omitempty"`
	DisplayName string                     `json:"displayName,omitempty" yaml:"displayName,omitempty"`
	Description string                     `json:"description,omitempty" yaml:"description,omitempty"`
	Properties  map[string]json.RawMessage `json:"properties,omitempty" yaml:"-"`
}

// Connection links the outcome of one activity to the next.
type Connection struct {
	SourceActivityID string `json:"sourceActivityId" yaml:"sourceActivityId"`
	TargetActivityID string `json:"targetActivityId" yaml:"targetActivityId"`
	Outcome          string `json:"outcome" yaml:"outcome"`
}

// WorkflowDefinition is the full definition returned by the detail endpoint.
type WorkflowDefinition struct {
	WorkflowDefinitionSummary `yaml:",inline"`
	TenantID                  string               `json:"tenantId,omitempty" yaml:"tenantId,omitempty"`
	Tag                       string               `json:"tag,omitempty" yaml:"tag,omitempty"`
	IsSingleton               bool                 `json:"isSingleton" yaml:"isSingleton"`
	PersistenceBehavior       string               `json:"persistenceBehavior,omitempty" yaml:"persistenceBehavior,omitempty"`
	Activities                []ActivityDefinition `json:"activities" yaml:"activities"`
	Connections               []Connection         `json:"connections" yaml:"connections"`
	CreatedAt                 *time.Time           `json:"createdAt,omitempty" yaml:"createdAt,omitempty"`
}

// SaveWorkflowDefinitionRequest is the body of POST /workflow-definitions.
type SaveWorkflowDefinitionRequest struct {
	WorkflowDefinitionID string               `json:"workflowDefinitionId,omitempty"`
	Name                 string               `json:"name,omitempty"`
	DisplayName          string               `json:"displayName,omitempty"`
	Description          string               `json:"description,omitempty"`
	Tag                  string               `json:"tag,omitempty"`
	IsSingleton          bool                 `json:"isSingleton"`
	Publish              bool                 `json:"publish"`
	Activities           []ActivityDefinition `json:"activities"`
	Connections          []Connection         `json:"connections"`
}

// WorkflowInstanceSummary is one row of the instances list.
type WorkflowInstanceSummary struct {
	ID                   string         `json:"id" yaml:"id"`
	DefinitionID         string         `json:"definitionId" yaml:"definitionId"`
	DefinitionVersionID  string         `json:"definitionVersionId,omitempty" yaml:"definitionVersionId,omitempty"`
	Version              int            `json:"version" yaml:"version"`
	Name                 string         `json:"name,omitempty" yaml:"name,omitempty"`
	CorrelationID        string         `json:"correlationId,omitempty" yaml:"correlationId,omitempty"`
	ContextType          string         `json:"contextType,omitempty" yaml:"contextType,omitempty"`
	ContextID            string         `json:"contextId,omitempty" yaml:"contextId,omitempty"`
	WorkflowStatus       WorkflowStatus `json:"workflowStatus" yaml:"workflowStatus"`
	CreatedAt            time.Time      `json:"createdAt" yaml:"createdAt"`
	LastExecutedAt       *time.Time     `json:"lastExecutedAt,omitempty" yaml:"lastExecutedAt,omitempty"`
	FinishedAt           *time.Time     `json:"finishedAt,omitempty" yaml:"finishedAt,omitempty"`
	CancelledAt          *time.Time     `json:"cancelledAt,omitempty" yaml:"cancelledAt,omitempty"`
	FaultedAt            *time.Time     `json:"faultedAt,omitempty" yaml:"faultedAt,omitempty"`
}

// Fault describes why an instance faulted.
type Fault struct {
	FaultedActivityID string `json:"faultedActivityId,omitempty" yaml:"faultedActivityId,omitempty"`
	Message           string `json:"message" yaml:"message"`
	Resuming          bool   `json:"resuming" yaml:"resuming"`
}

// BlockingActivity is an activity the instance waits on.
type BlockingActivity struct {
	ActivityID   string `json:"activityId" yaml:"activityId"`
	ActivityType string `json:"activityType" yaml:"activityType"`
	Tag          string `json:"tag,omitempty" yaml:"tag,omitempty"`
}

// WorkflowInstance is the full instance returned by the detail endpoint.
type WorkflowInstance struct {
	WorkflowInstanceSummary `yaml:",inline"`
	TenantID                string             `json:"tenantId,omitempty" yaml:"tenantId,omitempty"`
	LastExecutedActivityID  string             `json:"lastExecutedActivityId,omitempty" yaml:"lastExecutedActivityId,omitempty"`
	BlockingActivities      []BlockingActivity `json:"blockingActivities,omitempty" yaml:"blockingActivities,omitempty"`
	Faults                  []Fault            `json:"faults,omitempty" yaml:"faults,omitempty"`
	Variables               map[string]any     `json:"variables,omitempty" yaml:"variables,omitempty"`
}

// ActivityInputDescriptor describes one input property of an activity type.
type ActivityInputDescriptor struct {
	Name        string `json:"name" yaml:"name"`
	Type        string `json:"type,omitempty" yaml:"type,omitempty"`
	UIHint      string `json:"uiHint,omitempty" yaml:"uiHint,omitempty"`
	Label       string `json:"label,omitempty" yaml:"label,omitempty"`
	Hint        string `json:"hint,omitempty" yaml:"hint,omitempty"`
	IsBrowsable bool   `json:"isBrowsable" yaml:"isBrowsable"`
}

// ActivityDescriptor describes an activity type the engine offers.
type ActivityDescriptor struct {
	Type            string                    `json:"type" yaml:"type"`
	DisplayName     string                    `json:"displayName" yaml:"displayName"`
	Description     string                    `json:"description,omitempty" yaml:"description,omitempty"`
	Category        string                    `json:"category" yaml:"category"`
	Traits          int                       `json:"traits,omitempty" yaml:"traits,omitempty"`
	Outcomes        []string                  `json:"outcomes,omitempty" yaml:"outcomes,omitempty"`
	InputProperties []ActivityInputDescriptor `json:"inputProperties,omitempty" yaml:"inputProperties,omitempty"`
}

// ActivityDescriptors is the body of GET /descriptors/activities.
type ActivityDescriptors struct {
	Items      []ActivityDescriptor `json:"items"`
	Categories []string             `json:"categories,omitempty"`
}

// Label is a user-defined tag attached to workflow definitions.
type Label struct {
	ID             string `json:"id" yaml:"id"`
	Name           string `json:"name" yaml:"name"`
	NormalizedName string `json:"normalizedName,omitempty" yaml:"normalizedName,omitempty"`
	Description    string `json:"description,omitempty" yaml:"description,omitempty"`
	Color          string `json:"color,omitempty" yaml:"color,omitempty"`
}

// SaveLabelRequest is the body of POST /labels and POST /labels/{id}.
type SaveLabelRequest struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Color       string `json:"color,omitempty"`
}

// DefinitionLabels is the body of the definition labels endpoints.
type DefinitionLabels struct {
	LabelIDs []string `json:"labelIds"`
}
