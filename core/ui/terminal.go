// Package ui - Terminal user interface
// Colored CLI output: headers, status lines and aligned tables.
package ui

import (
	"fmt"
	"io"
	"os"
	"strings"
)

// Colors for terminal output
const (
	Reset  = "\033[0m"
	Bold   = "\033[1m"
	Dim    = "\033[2m"
	Red    = "\033[31m"
	Green  = "\033[32m"
	Yellow = "\033[33m"
	Blue   = "\033[34m"
	Cyan   = "\033[36m"
)

// Writer is the UI output destination
type Writer struct {
	out       io.Writer
	noColor   bool
	verbosity int
}

// NewWriter creates a UI writer
func NewWriter(out io.Writer, noColor bool) *Writer {
	if out == nil {
		out = os.Stdout
	}
	return &Writer{
		out:       out,
		noColor:   noColor,
		verbosity: 1,
	}
}

// SetVerbosity sets output verbosity (0=quiet, 1=normal, 2=verbose)
func (w *Writer) SetVerbosity(level int) {
	w.verbosity = level
}

// color applies color if enabled
func (w *Writer) color(c, text string) string {
	if w.noColor {
		return text
	}
	return c + text + Reset
}

// Print writes a line
func (w *Writer) Print(format string, args ...interface{}) {
	fmt.Fprintf(w.out, format, args...)
}

// Println writes a line with newline
func (w *Writer) Println(format string, args ...interface{}) {
	fmt.Fprintf(w.out, format+"\n", args...)
}

// Header prints a section header
func (w *Writer) Header(title string) {
	w.Println("")
	w.Println("%s", w.color(Bold+Cyan, "━━━ "+title+" ━━━"))
	w.Println("")
}

// SubHeader prints a subsection header
func (w *Writer) SubHeader(title string) {
	w.Println("%s", w.color(Bold, "▸ "+title))
}

// Success prints a success message
func (w *Writer) Success(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	w.Println("%s%s", w.color(Green, "✓ "), msg)
}

// Warning prints a warning
func (w *Writer) Warning(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	w.Println("%s%s", w.color(Yellow, "⚠ "), msg)
}

// Error prints an error
func (w *Writer) Error(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	w.Println("%s%s", w.color(Red, "✗ "), msg)
}

// Info prints an info message
func (w *Writer) Info(format string, args ...interface{}) {
	if w.verbosity < 1 {
		return
	}
	msg := fmt.Sprintf(format, args...)
	w.Println("%s%s", w.color(Blue, "ℹ "), msg)
}

// Debug prints a debug message
func (w *Writer) Debug(format string, args ...interface{}) {
	if w.verbosity < 2 {
		return
	}
	msg := fmt.Sprintf(format, args...)
	w.Println("%s", w.color(Dim, "  "+msg))
}

// Table renders a table
type Table struct {
	w       *Writer
	headers []string
	rows    [][]string
	widths  []int
}

// NewTable creates a table
func (w *Writer) NewTable(headers ...string) *Table {
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = len(h)
	}
	return &Table{
		w:       w,
		headers: headers,
		rows:    [][]string{},
		widths:  widths,
	}
}

// AddRow adds a row to the table
func (t *Table) AddRow(cells ...string) {
	// Pad or truncate cells to match header count
	row := make([]string, len(t.headers))
	for i := range row {
		if i < len(cells) {
			row[i] = cells[i]
		}
		if len(row[i]) > t.widths[i] {
			t.widths[i] = len(row[i])
		}
	}
	t.rows = append(t.rows, row)
}

// Render prints the table. Numeric columns are right-aligned.
func (t *Table) Render() {
	cells := func(row []string) string {
		var b strings.Builder
		for i, cell := range row {
			if i > 0 {
				b.WriteString(" │ ")
			}
			if i == 0 {
				fmt.Fprintf(&b, "%-*s", t.widths[i], cell)
			} else {
				fmt.Fprintf(&b, "%*s", t.widths[i], cell)
			}
		}
		return b.String()
	}

	t.w.Println("%s", t.w.color(Bold, cells(t.headers)))

	sep := ""
	for i, w := range t.widths {
		if i > 0 {
			sep += "─┼─"
		}
		sep += strings.Repeat("─", w)
	}
	t.w.Println("%s", sep)

	for _, row := range t.rows {
		t.w.Println("%s", cells(row))
	}
}

// TableSummary renders the banner above a mortality table
type TableSummary struct {
	w           *Writer
	CalcYear    int
	Source      string
	Fingerprint string
	Precision   int32
}

// NewTableSummary creates a table summary
func (w *Writer) NewTableSummary() *TableSummary {
	return &TableSummary{w: w}
}

// Render prints the summary
func (s *TableSummary) Render() {
	s.w.Header(fmt.Sprintf("IRS Mortality Tables %d", s.CalcYear))

	sourceColor := Green
	if s.Source != "published" {
		sourceColor = Yellow
	}
	s.w.Println("%s", s.w.color(sourceColor, fmt.Sprintf("● Source: %s", s.Source)))
	s.w.Println("%s", s.w.color(Dim, fmt.Sprintf("  Precision:   %d places", s.Precision)))
	s.w.Println("%s", s.w.color(Dim, fmt.Sprintf("  Fingerprint: %s", s.Fingerprint)))
	s.w.Println("")
}
