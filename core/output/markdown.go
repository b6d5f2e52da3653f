package output

import (
	"fmt"
	"io"
	"strings"
)

// MarkdownFormatter renders a pipe table
type MarkdownFormatter struct{}

// Format returns FormatMarkdown
func (f *MarkdownFormatter) Format() Format {
	return FormatMarkdown
}

// Render writes the report as markdown
func (f *MarkdownFormatter) Render(w io.Writer, report *Report) error {
	full := report.Full
	var b strings.Builder

	fmt.Fprintf(&b, "## IRS Mortality Tables %d\n\n", full.CalcYear)
	fmt.Fprintf(&b, "- **Source:** %s\n", full.Source)
	fmt.Fprintf(&b, "- **Precision:** %d places\n", full.FinalPrecision)
	fmt.Fprintf(&b, "- **Fingerprint:** `%s`\n\n", shortFingerprint(full.Fingerprint))

	header, rows := report.rows()
	b.WriteString("| " + strings.Join(header, " | ") + " |\n")
	b.WriteString("|" + strings.Repeat("---:|", len(header)) + "\n")
	for _, row := range rows {
		b.WriteString("| " + strings.Join(row, " | ") + " |\n")
	}

	_, err := io.WriteString(w, b.String())
	return err
}
