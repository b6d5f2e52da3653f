package tablefile

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"irs-mortality/core/engine"
)

// writeFile writes content under dir, creating parent directories
func writeFile(t *testing.T, dir, rel, content string) string {
	t.Helper()
	path := filepath.Join(dir, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func ageGrid(header []string, ages []int, cell func(col string, age int) string) string {
	var b strings.Builder
	b.WriteString("Age," + strings.Join(header, ",") + "\n")
	for _, age := range ages {
		b.WriteString(strconv.Itoa(age))
		for _, col := range header {
			b.WriteString("," + cell(col, age))
		}
		b.WriteString("\n")
	}
	return b.String()
}

// writeDataSet writes in to dir using the default layout
func writeDataSet(t *testing.T, dir string, in engine.Inputs) {
	t.Helper()
	require.NoError(t, WriteInputs(dir, Layout{}, in))
}
