package formatting

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"gopkg.in/yaml.v3"
)

// Format is a CLI output format.
type Format string

const (
	// FormatTable prints a kubectl-style plain table.
	FormatTable Format = "table"
	// FormatWide prints the table with additional columns.
	FormatWide Format = "wide"
	// FormatJSON prints the raw payload as indented JSON.
	FormatJSON Format = "json"
	// FormatYAML prints the raw payload as YAML.
	FormatYAML Format = "yaml"
)

// ValidFormats lists every supported output format.
var ValidFormats = []Format{FormatTable, FormatWide, FormatJSON, FormatYAML}

// ParseFormat validates s. An empty string selects FormatTable.
func ParseFormat(s string) (Format, error) {
	if s == "" {
		return FormatTable, nil
	}
	for _, f := range ValidFormats {
		if Format(strings.ToLower(s)) == f {
			return f, nil
		}
	}
	return "", fmt.Errorf("unsupported output format: %q (valid: table, wide, json, yaml)", s)
}

// Options configures a Printer.
type Options struct {
	Format    Format
	NoHeaders bool
	// Color enables ANSI colors in tables.
	Color bool
	// Writer defaults to os.Stdout.
	Writer io.Writer
}

// Table is the tabular view of a value. Wide columns are only shown with
// FormatWide; their cells follow the regular cells in each row.
type Table struct {
	Headers     []string
	WideHeaders []string
	Rows        [][]string
	// Status names the column whose cells are colored by workflow status.
	Status string
	// Empty is printed instead of a table without rows.
	Empty string
	// Footer is printed after the table, e.g. paging information.
	Footer string
}

// Printer writes command results in the selected format.
type Printer struct {
	opts Options
}

// NewPrinter creates a printer.
func NewPrinter(opts Options) *Printer {
	if opts.Format == "" {
		opts.Format = FormatTable
	}
	if opts.Writer == nil {
		opts.Writer = os.Stdout
	}
	return &Printer{opts: opts}
}

// Format returns the selected format.
func (p *Printer) Format() Format {
	return p.opts.Format
}

// Print writes data. Structured formats encode data itself; table formats
// render the view.
func (p *Printer) Print(data any, view Table) error {
	switch p.opts.Format {
	case FormatJSON:
		return p.printJSON(data)
	case FormatYAML:
		return p.printYAML(data)
	default:
		return p.printTable(view)
	}
}

// Message prints a line for humans. It is suppressed for structured
// formats so their output stays machine-readable.
func (p *Printer) Message(format string, args ...any) {
	if p.opts.Format == FormatJSON || p.opts.Format == FormatYAML {
		return
	}
	fmt.Fprintf(p.opts.Writer, format+"\n", args...)
}

func (p *Printer) printJSON(data any) error {
	enc := json.NewEncoder(p.opts.Writer)
	enc.SetIndent("", "  ")
	if err := enc.Encode(data); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}

func (p *Printer) printYAML(data any) error {
	enc := yaml.NewEncoder(p.opts.Writer)
	enc.SetIndent(2)
	if err := enc.Encode(data); err != nil {
		return fmt.Errorf("failed to encode YAML: %w", err)
	}
	return enc.Close()
}

func (p *Printer) printTable(view Table) error {
	if len(view.Rows) == 0 {
		if view.Empty != "" {
			fmt.Fprintln(p.opts.Writer, view.Empty)
		}
		return nil
	}

	wide := p.opts.Format == FormatWide
	headers := view.Headers
	if wide {
		headers = append(append([]string{}, view.Headers...), view.WideHeaders...)
	}
	statusCol := -1
	for i, h := range headers {
		if view.Status != "" && h == view.Status {
			statusCol = i
		}
	}

	t := table.NewWriter()
	t.SetOutputMirror(p.opts.Writer)
	t.SetStyle(plainStyle())

	if !p.opts.NoHeaders {
		t.AppendHeader(toRow(headers))
	}
	for _, cells := range view.Rows {
		if len(cells) > len(headers) {
			cells = cells[:len(headers)]
		}
		row := toRow(cells)
		if statusCol >= 0 && statusCol < len(row) && p.opts.Color {
			row[statusCol] = StatusColors(fmt.Sprint(row[statusCol])).Sprint(row[statusCol])
		}
		t.AppendRow(row)
	}
	t.Render()

	if view.Footer != "" {
		fmt.Fprintln(p.opts.Writer, view.Footer)
	}
	return nil
}

// plainStyle renders without box drawing so output pipes cleanly into grep
// and awk.
func plainStyle() table.Style {
	style := table.StyleDefault
	style.Box.PaddingLeft = ""
	style.Box.PaddingRight = "   "
	style.Options = table.Options{}
	style.Format.Header = text.FormatUpper
	return style
}

func toRow(cells []string) table.Row {
	row := make(table.Row, len(cells))
	for i, c := range cells {
		row[i] = c
	}
	return row
}

// StatusColors picks the color for a workflow status cell.
func StatusColors(status string) text.Colors {
	switch strings.ToLower(status) {
	case "running":
		return text.Colors{text.FgHiCyan}
	case "finished", "published":
		return text.Colors{text.FgGreen}
	case "faulted":
		return text.Colors{text.FgRed, text.Bold}
	case "suspended", "draft":
		return text.Colors{text.FgYellow}
	default:
		return text.Colors{}
	}
}

// PrettyJSON formats any value as indented JSON, falling back to %v.
func PrettyJSON(v any) string {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(b)
}
