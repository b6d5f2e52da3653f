package ui

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVerbosityGatesInfoAndDebug(t *testing.T) {
	tests := []struct {
		verbosity int
		info      bool
		debug     bool
	}{
		{verbosity: 0},
		{verbosity: 1, info: true},
		{verbosity: 2, info: true, debug: true},
	}

	for _, tt := range tests {
		var buf bytes.Buffer
		w := NewWriter(&buf, true)
		w.SetVerbosity(tt.verbosity)
		w.Info("loaded %d files", 7)
		w.Debug("fingerprint %s", "abc")
		w.Warning("always shown")

		out := buf.String()
		assert.Equal(t, tt.info, strings.Contains(out, "ℹ loaded 7 files"), "verbosity %d", tt.verbosity)
		assert.Equal(t, tt.debug, strings.Contains(out, "fingerprint abc"), "verbosity %d", tt.verbosity)
		assert.Contains(t, out, "⚠ always shown")
	}
}

func TestStatusLinesUseColorUnlessDisabled(t *testing.T) {
	var plain, colored bytes.Buffer
	NewWriter(&plain, true).Error("load failed: %s", "Base.csv")
	NewWriter(&colored, false).Error("load failed: %s", "Base.csv")

	assert.Equal(t, "✗ load failed: Base.csv\n", plain.String())
	assert.Equal(t, Red+"✗ "+Reset+"load failed: Base.csv\n", colored.String())

	plain.Reset()
	w := NewWriter(&plain, true)
	w.Print("%s: ", "Male EE")
	w.Println("%s", "0.005704")
	w.Success("saved")
	w.SubHeader("430 rates")
	assert.Equal(t, "Male EE: 0.005704\n✓ saved\n▸ 430 rates\n", plain.String())
}

func TestTableAlignsColumns(t *testing.T) {
	var buf bytes.Buffer
	tbl := NewWriter(&buf, true).NewTable("Age", "Male")
	tbl.AddRow("15", "0.00123")
	tbl.AddRow("120", "1")
	tbl.Render()

	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	assert.Equal(t, []string{
		"Age │    Male",
		"────┼────────",
		"15  │ 0.00123",
		"120 │       1",
	}, lines)
}
