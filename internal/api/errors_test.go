package api

import (
	"fmt"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorFromStatus(t *testing.T) {
	tests := []struct {
		name   string
		status int
		check  func(error) bool
	}{
		{"ok", http.StatusOK, func(err error) bool { return err == nil }},
		{"no content", http.StatusNoContent, func(err error) bool { return err == nil }},
		{"not found", http.StatusNotFound, IsNotFound},
		{"unauthorized", http.StatusUnauthorized, IsUnauthorized},
		{"forbidden", http.StatusForbidden, IsUnauthorized},
		{"server error", http.StatusInternalServerError, IsRemoteError},
		{"bad request", http.StatusBadRequest, IsRemoteError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ErrorFromStatus(http.MethodGet, "/labels", tt.status, []byte("boom"), "label", "l1")
			assert.True(t, tt.check(err), "unexpected error %v", err)
		})
	}
}

func TestIsNotFound_Wrapped(t *testing.T) {
	err := fmt.Errorf("loading definition: %w", NewNotFoundError("workflow definition", "abc"))
	assert.True(t, IsNotFound(err))
	assert.False(t, IsUnauthorized(err))
	assert.Equal(t, "loading definition: workflow definition abc not found", err.Error())
}

func TestRemoteError_TruncatesBody(t *testing.T) {
	err := &RemoteError{Method: "POST", Path: "/labels", StatusCode: 500, Body: strings.Repeat("x", 2000)}
	msg := err.Error()
	assert.True(t, strings.HasPrefix(msg, "POST /labels: HTTP 500: "))
	assert.True(t, strings.HasSuffix(msg, "..."))
	assert.Less(t, len(msg), 600)
}

func TestUnauthorizedError_Messages(t *testing.T) {
	assert.Equal(t, "authentication required", (&UnauthorizedError{StatusCode: 401}).Error())
	assert.Equal(t, "access denied by workflow engine", (&UnauthorizedError{StatusCode: 403}).Error())
	assert.Equal(t, "custom", (&UnauthorizedError{Message: "custom"}).Error())
}

func TestPagedList_PageCount(t *testing.T) {
	assert.Equal(t, 0, PagedList[Label]{}.PageCount())
	assert.Equal(t, 1, PagedList[Label]{TotalCount: 3}.PageCount())
	assert.Equal(t, 3, PagedList[Label]{TotalCount: 21, PageSize: 10}.PageCount())
	assert.Equal(t, 2, PagedList[Label]{TotalCount: 20, PageSize: 10}.PageCount())
}

func TestVersionOptions(t *testing.T) {
	assert.Equal(t, VersionOptions("Version:3"), SpecificVersion(3))
}

func TestWorkflowDefinitionSummary_Title(t *testing.T) {
	assert.Equal(t, "Display", WorkflowDefinitionSummary{DisplayName: "Display", Name: "n"}.Title())
	assert.Equal(t, "n", WorkflowDefinitionSummary{Name: "n", DefinitionID: "d"}.Title())
	assert.Equal(t, "d", WorkflowDefinitionSummary{DefinitionID: "d"}.Title())
}
