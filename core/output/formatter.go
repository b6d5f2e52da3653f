// Package output provides output formatting interfaces.
// This package produces human and machine-readable mortality tables.
package output

import (
	"io"
	"sort"
	"strconv"
	"strings"
	"sync"

	"irs-mortality/core/engine"
	"irs-mortality/core/types"
	"irs-mortality/internal/errors"
)

// Format represents output format type
type Format string

const (
	// FormatCLI is a human-readable CLI table
	FormatCLI Format = "cli"

	// FormatJSON is machine-readable JSON
	FormatJSON Format = "json"

	// FormatCSV is the published table file layout
	FormatCSV Format = "csv"

	// FormatMarkdown is a markdown report
	FormatMarkdown Format = "markdown"
)

// ParseFormat validates a format name
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatCLI, FormatJSON, FormatCSV, FormatMarkdown:
		return f, nil
	case "md":
		return FormatMarkdown, nil
	}
	return "", errors.Newf(errors.TypeInput, "unknown output format %q (want cli, json, csv or markdown)", s)
}

// Kind selects which tables a report carries
type Kind string

const (
	KindAll       Kind = "all"
	Kind430       Kind = "430"
	Kind430Static Kind = "430-static"
	Kind417e      Kind = "417e"
)

// ParseKind validates a table kind. Empty means all.
func ParseKind(s string) (Kind, error) {
	switch k := Kind(strings.ToLower(strings.TrimSpace(s))); k {
	case "":
		return KindAll, nil
	case KindAll, Kind430, Kind430Static, Kind417e:
		return k, nil
	case "430static", "static":
		return Kind430Static, nil
	}
	return "", errors.Newf(errors.TypeInput, "unknown table kind %q (want all, 430, 430-static or 417e)", s)
}

// Includes reports whether k selects the table t
func (k Kind) Includes(t Kind) bool {
	return k == KindAll || k == t
}

// Formatter produces output in a specific format
type Formatter interface {
	// Format returns the format type
	Format() Format

	// Render produces output for the given report
	Render(w io.Writer, report *Report) error
}

// Report is a full table set filtered to one kind
type Report struct {
	Full *engine.FullTable
	Kind Kind
}

// NewReport creates a report. An empty kind selects every table.
func NewReport(full *engine.FullTable, kind Kind) *Report {
	if kind == "" {
		kind = KindAll
	}
	return &Report{Full: full, Kind: kind}
}

// column is one rate column of the tabular layouts
type column struct {
	header string
	rates  types.AgeRateTable
}

// columns returns the rate columns in published-file order
func (r *Report) columns() []column {
	var cols []column
	if r.Kind.Includes(Kind430) {
		for _, c := range types.Categories {
			cols = append(cols, column{header: string(c), rates: r.Full.Table430[c]})
		}
	}
	if r.Kind.Includes(Kind430Static) {
		for _, s := range types.Sexes {
			cols = append(cols, column{header: string(s), rates: r.Full.Table430Static[s]})
		}
	}
	if r.Kind.Includes(Kind417e) {
		cols = append(cols, column{header: "417e", rates: r.Full.Table417e})
	}
	return cols
}

// rows returns the header line and one line per age; absent rates are blank
func (r *Report) rows() ([]string, [][]string) {
	cols := r.columns()
	header := make([]string, 0, len(cols)+1)
	header = append(header, "Age")
	for _, c := range cols {
		header = append(header, c.header)
	}

	ages := types.Ages()
	rows := make([][]string, 0, len(ages))
	for _, age := range ages {
		row := make([]string, 0, len(cols)+1)
		row = append(row, strconv.Itoa(age))
		for _, c := range cols {
			row = append(row, formatRate(c.rates, age))
		}
		rows = append(rows, row)
	}
	return header, rows
}

func formatRate(t types.AgeRateTable, age int) string {
	d, ok := t[age]
	if !ok {
		return ""
	}
	return d.String()
}

// Registry manages formatter registration
type Registry struct {
	mu         sync.RWMutex
	formatters map[Format]Formatter
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{formatters: make(map[Format]Formatter)}
}

// DefaultRegistry returns a registry holding every built-in formatter
func DefaultRegistry(noColor bool) *Registry {
	r := NewRegistry()
	_ = r.Register(&CLIFormatter{NoColor: noColor})
	_ = r.Register(&JSONFormatter{Indent: true})
	_ = r.Register(&CSVFormatter{})
	_ = r.Register(&MarkdownFormatter{})
	return r
}

// Register adds a formatter to the registry
func (r *Registry) Register(f Formatter) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.formatters[f.Format()]; exists {
		return errors.Newf(errors.TypeConfig, "formatter %q already registered", f.Format())
	}
	r.formatters[f.Format()] = f
	return nil
}

// Get returns a formatter for a format type
func (r *Registry) Get(format Format) (Formatter, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	f, ok := r.formatters[format]
	return f, ok
}

// All returns all registered formatters ordered by format name
func (r *Registry) All() []Formatter {
	r.mu.RLock()
	defer r.mu.RUnlock()
	all := make([]Formatter, 0, len(r.formatters))
	for _, f := range r.formatters {
		all = append(all, f)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Format() < all[j].Format() })
	return all
}

// Render writes report to w in the named format
func (r *Registry) Render(w io.Writer, format Format, report *Report) error {
	f, ok := r.Get(format)
	if !ok {
		return errors.Newf(errors.TypeInput, "no formatter for %q", format)
	}
	return f.Render(w, report)
}
