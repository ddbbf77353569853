package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"

	"studio/internal/environment"
)

// resetFlags restores every flag of the command tree to its default. Flags
// are bound to package variables, so values leak between executions.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, sub := range cmd.Commands() {
		resetFlags(sub)
	}
}

// execute runs the root command with args and returns stdout, stderr and
// the command error.
func execute(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	t.Setenv(environment.EnvVar, "")

	resetFlags(rootCmd)
	t.Cleanup(func() { resetFlags(rootCmd) })

	var stdout, stderr bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetIn(nil)
		rootCmd.SetArgs(nil)
	})

	err := rootCmd.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

// writeTestConfig writes a config.yaml pointing at backendURL with tokens
// kept in the returned directory.
func writeTestConfig(t *testing.T, backendURL string) string {
	t.Helper()
	dir := t.TempDir()
	cfg := fmt.Sprintf("backend:\n  url: %s\n  timeout: 5s\nauth:\n  tokenDir: %s\n", backendURL, filepath.Join(dir, "tokens"))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(cfg), 0600))
	return dir
}

const (
	testUser         = "admin"
	testPassword     = "secret"
	testAccessToken  = "access-token"
	testRefreshToken = "refresh-token"
)

// fakeEngine serves the engine endpoints the commands use. Every endpoint
// except login requires the test access token.
type fakeEngine struct {
	*httptest.Server

	mu       sync.Mutex
	requests []string
}

// sawRequest reports whether the engine received method and path.
func (e *fakeEngine) sawRequest(method, path string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, r := range e.requests {
		if r == method+" "+path {
			return true
		}
	}
	return false
}

func newFakeEngine(t *testing.T) *fakeEngine {
	t.Helper()
	e := &fakeEngine{}
	mux := http.NewServeMux()

	mux.HandleFunc("POST /identity/login", func(w http.ResponseWriter, r *http.Request) {
		var body struct{ Username, Password string }
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body.Username != testUser || body.Password != testPassword {
			writeJSON(w, map[string]any{"isAuthenticated": false})
			return
		}
		writeJSON(w, map[string]any{"isAuthenticated": true, "accessToken": testAccessToken, "refreshToken": testRefreshToken})
	})
	mux.HandleFunc("GET /workflow-definitions", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{
			"items": []map[string]any{
				{"id": "v1", "definitionId": "order", "name": "Order fulfilment", "version": 3, "isLatest": true, "isPublished": true},
				{"id": "v2", "definitionId": "invoice", "name": "Invoice", "version": 1, "isLatest": true},
			},
			"totalCount": 2,
		})
	})
	// One pattern serves both lookups; separate patterns would overlap on
	// /workflow-definitions/by-definition-id/labels.
	mux.HandleFunc("GET /workflow-definitions/{id}/{sub}", func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.PathValue("id") == "by-definition-id" && r.PathValue("sub") == "order":
			writeJSON(w, map[string]any{"id": "v1", "definitionId": "order", "name": "Order fulfilment", "version": 3, "isPublished": true, "activities": []any{}, "connections": []any{}})
		case r.PathValue("sub") == "labels":
			writeJSON(w, map[string]any{"labelIds": []string{"l1"}})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})
	mux.HandleFunc("POST /workflow-definitions/{id}/publish", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{"id": "v4", "definitionId": r.PathValue("id"), "version": 4, "isPublished": true})
	})
	mux.HandleFunc("DELETE /workflow-definitions/by-definition-id/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	mux.HandleFunc("GET /workflow-instances", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{
			"items": []map[string]any{
				{"id": "i1", "definitionId": "order", "version": 3, "workflowStatus": "Faulted", "createdAt": "2024-05-01T10:00:00Z"},
			},
			"totalCount": 1,
		})
	})
	mux.HandleFunc("GET /labels", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{"items": []map[string]any{{"id": "l1", "name": "billing", "color": "#3b82f6"}}, "totalCount": 1})
	})
	mux.HandleFunc("POST /labels", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		body["id"] = "l2"
		writeJSON(w, body)
	})
	mux.HandleFunc("DELETE /labels/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	e.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		e.mu.Lock()
		e.requests = append(e.requests, r.Method+" "+r.URL.Path)
		e.mu.Unlock()
		if r.URL.Path != "/identity/login" && r.Header.Get("Authorization") != "Bearer "+testAccessToken {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		mux.ServeHTTP(w, r)
	}))
	t.Cleanup(e.Close)
	return e
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

// signedIn returns a config dir pointing at a fake engine with a stored
// login for the primary environment.
func signedIn(t *testing.T) (*fakeEngine, string) {
	t.Helper()
	engine := newFakeEngine(t)
	dir := writeTestConfig(t, engine.URL)

	_, _, err := execute(t, testPassword+"\n", "login", "--config-path", dir, "-u", testUser, "--password-stdin", "-q")
	require.NoError(t, err)
	return engine, dir
}
