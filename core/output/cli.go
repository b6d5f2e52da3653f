package output

import (
	"io"

	"irs-mortality/core/ui"
)

// CLIFormatter renders colourised terminal tables
type CLIFormatter struct {
	NoColor bool
}

// Format returns FormatCLI
func (f *CLIFormatter) Format() Format {
	return FormatCLI
}

// Render writes a summary banner followed by one row per age
func (f *CLIFormatter) Render(w io.Writer, report *Report) error {
	out := ui.NewWriter(w, f.NoColor)

	summary := out.NewTableSummary()
	summary.CalcYear = report.Full.CalcYear
	summary.Source = string(report.Full.Source)
	summary.Fingerprint = shortFingerprint(report.Full.Fingerprint)
	summary.Precision = report.Full.FinalPrecision
	summary.Render()

	out.SubHeader(kindTitle(report.Kind))
	header, rows := report.rows()
	table := out.NewTable(header...)
	for _, row := range rows {
		table.AddRow(row...)
	}
	table.Render()
	return nil
}

func kindTitle(kind Kind) string {
	switch kind {
	case Kind430:
		return "430 rates by category"
	case Kind430Static:
		return "430 static rates by sex"
	case Kind417e:
		return "417e unisex rates"
	}
	return "430, 430 static and 417e rates by age"
}

func shortFingerprint(fp string) string {
	if len(fp) > 16 {
		return fp[:16]
	}
	return fp
}
