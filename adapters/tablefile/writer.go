package tablefile

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strconv"

	"irs-mortality/core/determinism"
	"irs-mortality/core/engine"
	"irs-mortality/core/types"
	"irs-mortality/internal/errors"
)

// WriteInputs writes a data set under dir in the layout LoadInputs reads.
// Published 430 files are named <year>.csv.
func WriteInputs(dir string, layout Layout, in engine.Inputs) error {
	paths := layout.withDefaults().resolve(dir)

	base := [][]string{{"Base-" + strconv.Itoa(in.BaseYear)}}
	base = append(base, categorizedRows(in.Base)...)
	if err := writeCSV(paths.BaseTable, base); err != nil {
		return err
	}

	for sex, path := range map[types.Sex]string{types.Male: paths.MaleImprovement, types.Female: paths.FemaleImprovement} {
		if err := writeCSV(path, yearRows(in.Improvement[sex])); err != nil {
			return err
		}
	}
	if err := writeCSV(paths.ProjectionYears, categorizedRows(in.ProjectionYears)); err != nil {
		return err
	}
	if err := writeCSV(paths.Blending, sexRows(in.Blending)); err != nil {
		return err
	}

	for _, year := range determinism.SortedKeys(in.Published430) {
		t430 := categorizedRows(in.Published430[year])
		static := sexRows(in.PublishedStatic[year])
		rows := [][]string{{strconv.Itoa(year)}}
		for i := range t430 {
			rows = append(rows, append(t430[i], static[i][1:]...))
		}
		if err := writeCSV(filepath.Join(paths.Published430Dir, strconv.Itoa(year)+".csv"), rows); err != nil {
			return err
		}
	}
	return writeCSV(paths.Published417e, yearRows(types.YearAgeTable(in.Published417e)))
}

func categorizedRows(t types.CategorizedTable) [][]string {
	cols := make([]types.AgeRateTable, len(types.Categories))
	header := []string{"Age"}
	for i, c := range types.Categories {
		cols[i] = t[c]
		header = append(header, string(c))
	}
	return ageRows(header, cols, types.Ages())
}

func sexRows(t types.SexTable) [][]string {
	cols := make([]types.AgeRateTable, len(types.Sexes))
	header := []string{"Age"}
	for i, s := range types.Sexes {
		cols[i] = t[s]
		header = append(header, string(s))
	}
	return ageRows(header, cols, types.Ages())
}

// yearRows lays a surface out as "Age,<year>,..." over every age present
func yearRows(t types.YearAgeTable) [][]string {
	years := t.Years()
	header := []string{"Age"}
	cols := make([]types.AgeRateTable, len(years))
	seen := map[int]bool{}
	for i, year := range years {
		header = append(header, strconv.Itoa(year))
		cols[i] = t[year]
		for age := range t[year] {
			seen[age] = true
		}
	}
	return ageRows(header, cols, determinism.SortedKeys(seen))
}

func ageRows(header []string, cols []types.AgeRateTable, ages []int) [][]string {
	rows := [][]string{header}
	for _, age := range ages {
		row := []string{strconv.Itoa(age)}
		for _, col := range cols {
			row = append(row, formatCell(col, age))
		}
		rows = append(rows, row)
	}
	return rows
}

func formatCell(t types.AgeRateTable, age int) string {
	if d, ok := t[age]; ok {
		return d.String()
	}
	return ""
}

func writeCSV(path string, rows [][]string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Wrapf(errors.TypeInternal, err, "create directory for %s", path)
	}
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(errors.TypeInternal, err, "create %s", path)
	}
	w := csv.NewWriter(f)
	if err := w.WriteAll(rows); err != nil {
		f.Close()
		return errors.Wrapf(errors.TypeInternal, err, "write %s", path)
	}
	return f.Close()
}
