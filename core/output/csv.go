package output

import (
	"encoding/csv"
	"io"
	"strconv"
)

// CSVFormatter renders the published 430 file layout: a line holding the
// calculation year, a header row, then one row per age. Output of the
// "all" kind can be read back by the published table loader.
type CSVFormatter struct{}

// Format returns FormatCSV
func (f *CSVFormatter) Format() Format {
	return FormatCSV
}

// Render writes the report as CSV
func (f *CSVFormatter) Render(w io.Writer, report *Report) error {
	cw := csv.NewWriter(w)

	header, rows := report.rows()
	if err := cw.Write([]string{strconv.Itoa(report.Full.CalcYear)}); err != nil {
		return err
	}
	if err := cw.Write(header); err != nil {
		return err
	}
	if err := cw.WriteAll(rows); err != nil {
		return err
	}
	return cw.Error()
}
