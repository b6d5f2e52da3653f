package output

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"irs-mortality/core/engine"
	"irs-mortality/core/engine/enginetest"
	"irs-mortality/internal/errors"
)

func fullTable(t *testing.T, year int) *engine.FullTable {
	t.Helper()
	e, err := engine.New(enginetest.Tables(t), year)
	require.NoError(t, err)
	full, err := e.FullTable()
	require.NoError(t, err)
	return full
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"cli", FormatCLI, false},
		{"JSON", FormatJSON, false},
		{" csv ", FormatCSV, false},
		{"md", FormatMarkdown, false},
		{"html", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			if tt.wantErr {
				assert.True(t, errors.IsType(err, errors.TypeInput))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseKind(t *testing.T) {
	for in, want := range map[string]Kind{
		"":           KindAll,
		"all":        KindAll,
		"430":        Kind430,
		"430-static": Kind430Static,
		"static":     Kind430Static,
		"417E":       Kind417e,
	} {
		got, err := ParseKind(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseKind("431")
	assert.True(t, errors.IsType(err, errors.TypeInput))
}

func TestRegistry(t *testing.T) {
	r := DefaultRegistry(true)

	all := r.All()
	require.Len(t, all, 4)
	assert.Equal(t, FormatCLI, all[0].Format())
	assert.Equal(t, FormatMarkdown, all[3].Format())

	err := r.Register(&CSVFormatter{})
	assert.True(t, errors.IsType(err, errors.TypeConfig))

	err = NewRegistry().Render(&bytes.Buffer{}, FormatJSON, NewReport(fullTable(t, 2030), KindAll))
	assert.True(t, errors.IsType(err, errors.TypeInput))
}

func TestJSONFormatter(t *testing.T) {
	full := fullTable(t, 2025)

	var buf bytes.Buffer
	require.NoError(t, DefaultRegistry(true).Render(&buf, FormatJSON, NewReport(full, KindAll)))

	var doc map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(buf.Bytes(), &doc))
	for _, key := range []string{"calc_year", "source", "fingerprint", "430", "430Static", "417e"} {
		assert.Contains(t, doc, key)
	}
	assert.Equal(t, `"derived"`, string(doc["source"]))

	// rates are numbers, not strings
	assert.Contains(t, buf.String(), `"65": 0.00558`)

	var unisex map[string]float64
	require.NoError(t, json.Unmarshal(doc["417e"], &unisex))
	assert.Len(t, unisex, 106)
	assert.InDelta(t, 0.00558, unisex["65"], 1e-12)
}

func TestJSONFormatterKindFilter(t *testing.T) {
	var buf bytes.Buffer
	f := &JSONFormatter{}
	require.NoError(t, f.Render(&buf, NewReport(fullTable(t, 2030), Kind417e)))

	var doc map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(buf.Bytes(), &doc))
	assert.Contains(t, doc, "417e")
	assert.NotContains(t, doc, "430")
	assert.NotContains(t, doc, "430Static")
}

func TestCSVFormatter(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, (&CSVFormatter{}).Render(&buf, NewReport(fullTable(t, 2025), KindAll)))

	r := csv.NewReader(&buf)
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	require.NoError(t, err)

	require.Len(t, records, 2+106)
	assert.Equal(t, []string{"2025"}, records[0])
	assert.Equal(t, []string{"Age", "Male EE", "Male HA", "Female EE", "Female HA", "Male", "Female", "417e"}, records[1])
	assert.Equal(t, "15", records[2][0])
	assert.Equal(t, "120", records[len(records)-1][0])

	row65 := records[2+65-15]
	assert.Equal(t, []string{"65", "0.005704", "0.005682", "0.005485", "0.005441", "0.00569", "0.00546", "0.00558"}, row65)
}

func TestCSVFormatterKindFilter(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, (&CSVFormatter{}).Render(&buf, NewReport(fullTable(t, 2025), Kind430Static)))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Equal(t, "Age,Male,Female", lines[1])
}

func TestMarkdownFormatter(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, (&MarkdownFormatter{}).Render(&buf, NewReport(fullTable(t, 2024), Kind430)))

	out := buf.String()
	assert.Contains(t, out, "## IRS Mortality Tables 2024")
	assert.Contains(t, out, "- **Source:** published")
	assert.Contains(t, out, "| Age | Male EE | Male HA | Female EE | Female HA |")
	assert.Contains(t, out, "|---:|---:|---:|---:|---:|")
	assert.NotContains(t, out, "417e")
}

func TestCLIFormatter(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, (&CLIFormatter{NoColor: true}).Render(&buf, NewReport(fullTable(t, 2040), KindAll)))

	out := buf.String()
	assert.Contains(t, out, "IRS Mortality Tables 2040")
	assert.Contains(t, out, "Source: derived")
	assert.Contains(t, out, "▸ 430, 430 static and 417e rates by age")
	assert.Contains(t, out, "Male EE")
	assert.Contains(t, out, "417e")
	assert.NotContains(t, out, "\033[")
}

func TestRowsLeaveMissingRatesBlank(t *testing.T) {
	full := fullTable(t, 2030)
	delete(full.Table417e, 100)

	_, rows := NewReport(full, Kind417e).rows()
	assert.Equal(t, []string{"100", ""}, rows[100-15])
}
