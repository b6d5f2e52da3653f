package output

import (
	"encoding/json"
	"io"

	"irs-mortality/core/types"
)

// Document is the JSON shape of a report. Rates are emitted as JSON
// numbers with their exact decimal digits.
type Document struct {
	CalcYear       int    `json:"calc_year"`
	Source         string `json:"source"`
	Fingerprint    string `json:"fingerprint"`
	FinalPrecision int32  `json:"final_precision"`

	Table430       map[types.Category]map[int]json.Number `json:"430,omitempty"`
	Table430Static map[types.Sex]map[int]json.Number      `json:"430Static,omitempty"`
	Table417e      map[int]json.Number                    `json:"417e,omitempty"`
}

// NewDocument converts a report to its JSON shape
func NewDocument(report *Report) *Document {
	full := report.Full
	doc := &Document{
		CalcYear:       full.CalcYear,
		Source:         string(full.Source),
		Fingerprint:    full.Fingerprint,
		FinalPrecision: full.FinalPrecision,
	}
	if report.Kind.Includes(Kind430) {
		doc.Table430 = make(map[types.Category]map[int]json.Number, len(types.Categories))
		for _, c := range types.Categories {
			doc.Table430[c] = numbers(full.Table430[c])
		}
	}
	if report.Kind.Includes(Kind430Static) {
		doc.Table430Static = make(map[types.Sex]map[int]json.Number, len(types.Sexes))
		for _, s := range types.Sexes {
			doc.Table430Static[s] = numbers(full.Table430Static[s])
		}
	}
	if report.Kind.Includes(Kind417e) {
		doc.Table417e = numbers(full.Table417e)
	}
	return doc
}

func numbers(t types.AgeRateTable) map[int]json.Number {
	out := make(map[int]json.Number, len(t))
	for age, rate := range t {
		out[age] = json.Number(rate.String())
	}
	return out
}

// JSONFormatter renders a Document
type JSONFormatter struct {
	Indent bool
}

// Format returns FormatJSON
func (f *JSONFormatter) Format() Format {
	return FormatJSON
}

// Render encodes the report as JSON
func (f *JSONFormatter) Render(w io.Writer, report *Report) error {
	enc := json.NewEncoder(w)
	if f.Indent {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(NewDocument(report))
}
