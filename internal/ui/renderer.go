package ui

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
	"strings"

	"github.com/Masterminds/sprig/v3"

	"studio/internal/api"
)

//go:embed templates/*.html
var templateFS embed.FS

// Renderer executes the console's component templates.
type Renderer struct {
	templates *template.Template
}

// NewRenderer parses the embedded templates.
func NewRenderer() (*Renderer, error) {
	funcs := sprig.HtmlFuncMap()
	for name, fn := range componentFuncs() {
		funcs[name] = fn
	}

	tmpl, err := template.New("studio").Funcs(funcs).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}
	return &Renderer{templates: tmpl}, nil
}

// Render executes the named component into w. Output is buffered so a
// failing template never leaves a half-written response.
func (r *Renderer) Render(w io.Writer, name string, params any) error {
	var buf bytes.Buffer
	if err := r.templates.ExecuteTemplate(&buf, name, params); err != nil {
		return fmt.Errorf("failed to render %s: %w", name, err)
	}
	_, err := buf.WriteTo(w)
	return err
}

// RenderHTML executes the named component and returns the markup for
// embedding in another component.
func (r *Renderer) RenderHTML(name string, params any) (template.HTML, error) {
	var buf bytes.Buffer
	if err := r.Render(&buf, name, params); err != nil {
		return "", err
	}
	// #nosec G203 -- output of html/template, already escaped
	return template.HTML(buf.String()), nil
}

// Has reports whether a component template exists.
func (r *Renderer) Has(name string) bool {
	return r.templates.Lookup(name) != nil
}

func componentFuncs() template.FuncMap {
	return template.FuncMap{
		"statusClass": StatusClass,
		"truncateText": func(max int, s string) string {
			return Truncate(s, max)
		},
	}
}

// StatusClass maps an instance status to a badge CSS class.
func StatusClass(status api.WorkflowStatus) string {
	switch status {
	case api.StatusRunning:
		return "badge-running"
	case api.StatusFinished:
		return "badge-ok"
	case api.StatusFaulted:
		return "badge-error"
	case api.StatusSuspended:
		return "badge-waiting"
	case api.StatusCancelled:
		return "badge-muted"
	default:
		return "badge-idle"
	}
}

// Truncate shortens s to max runes on one line, adding "..." when cut.
func Truncate(s string, max int) string {
	if max < 4 {
		max = 4
	}
	s = strings.Join(strings.Fields(s), " ")
	runes := []rune(s)
	if len(runes) > max {
		return string(runes[:max-3]) + "..."
	}
	return s
}
