package tablefile

import (
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"irs-mortality/core/types"
	"irs-mortality/internal/errors"
	"irs-mortality/internal/logging"
)

// ReadBaseTable reads a base table. The first line names the table and
// ends with its year after the last "-" (e.g. "Pri-2012").
func ReadBaseTable(path string) (types.CategorizedTable, int, error) {
	records, err := readRecords(path)
	if err != nil {
		return nil, 0, err
	}
	if len(records) < 2 {
		return nil, 0, parseError(path, 1, 1, "expected a table name line and a header")
	}

	name := records[0].cells[0]
	year, err := strconv.Atoi(name[strings.LastIndex(name, "-")+1:])
	if err != nil {
		return nil, 0, parseError(path, records[0].line, 1, "table name "+strconv.Quote(name)+" does not end in a year")
	}

	g, err := parseGrid(path, records[1], records[2:])
	if err != nil {
		return nil, 0, err
	}
	table, err := categorized(g)
	if err != nil {
		return nil, 0, err
	}

	logging.Debug("loaded base table", zap.String("path", path), zap.String("name", name), zap.Int("year", year), zap.Int("rows", g.rows))
	return table, year, nil
}

// ReadImprovement reads a sparse improvement surface laid out as
// "Age,<year>,<year>,...".
func ReadImprovement(path string) (types.YearAgeTable, error) {
	g, err := readGrid(path)
	if err != nil {
		return nil, err
	}
	years, err := g.byYear()
	if err != nil {
		return nil, err
	}

	logging.Debug("loaded improvement table", zap.String("path", path), zap.Int("years", len(years)), zap.Int("rows", g.rows))
	return types.YearAgeTable(years), nil
}

// ReadProjectionYears reads projection durations per category
func ReadProjectionYears(path string) (types.CategorizedTable, error) {
	g, err := readGrid(path)
	if err != nil {
		return nil, err
	}
	logging.Debug("loaded projection years", zap.String("path", path), zap.Int("rows", g.rows))
	return categorized(g)
}

// ReadBlending reads annuitant blending weights laid out as "Age,Male,Female"
func ReadBlending(path string) (types.SexTable, error) {
	g, err := readGrid(path)
	if err != nil {
		return nil, err
	}
	logging.Debug("loaded blending table", zap.String("path", path), zap.Int("rows", g.rows))
	return bySex(g)
}

// ReadPublished417e reads published 417e rates laid out as "Age,<year>,..."
func ReadPublished417e(path string) (map[int]types.AgeRateTable, error) {
	g, err := readGrid(path)
	if err != nil {
		return nil, err
	}
	years, err := g.byYear()
	if err != nil {
		return nil, err
	}
	logging.Debug("loaded published 417e table", zap.String("path", path), zap.Int("years", len(years)))
	return years, nil
}

// ReadPublished430File reads one published 430 file: a line starting with
// the calendar year, then "Age,Male EE,Male HA,Female EE,Female HA,Male,Female".
// Extra columns are ignored.
func ReadPublished430File(path string) (int, types.CategorizedTable, types.SexTable, error) {
	records, err := readRecords(path)
	if err != nil {
		return 0, nil, nil, err
	}
	if len(records) < 2 {
		return 0, nil, nil, parseError(path, 1, 1, "expected a year line and a header")
	}

	year, err := strconv.Atoi(records[0].cells[0])
	if err != nil {
		return 0, nil, nil, parseError(path, records[0].line, 1, "first line must start with the year")
	}

	g, err := parseGrid(path, records[1], records[2:])
	if err != nil {
		return 0, nil, nil, err
	}
	t430, err := categorized(g)
	if err != nil {
		return 0, nil, nil, err
	}
	static, err := bySex(g)
	if err != nil {
		return 0, nil, nil, err
	}
	return year, t430, static, nil
}

// ReadPublished430Dir reads every published 430 file in dir. The directory
// must hold only .csv files and no two files may share a year.
func ReadPublished430Dir(dir string) (map[int]types.CategorizedTable, map[int]types.SexTable, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil, errors.Wrapf(errors.TypeNotFound, err, "published 430 directory %s", dir)
		}
		return nil, nil, errors.Wrapf(errors.TypeInput, err, "read %s", dir)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if !strings.EqualFold(filepath.Ext(entry.Name()), ".csv") {
			return nil, nil, errors.Newf(errors.TypeInput,
				"invalid file type for %s: only .csv files are supported", entry.Name()).
				WithContext("directory", dir)
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)

	tables := make(map[int]types.CategorizedTable, len(names))
	statics := make(map[int]types.SexTable, len(names))
	seen := make(map[int]string, len(names))
	for _, name := range names {
		path := filepath.Join(dir, name)
		year, t430, static, err := ReadPublished430File(path)
		if err != nil {
			return nil, nil, err
		}
		if prev, dup := seen[year]; dup {
			return nil, nil, errors.Newf(errors.TypeInput, "published year %d appears in both %s and %s", year, prev, name)
		}
		seen[year] = name
		tables[year] = t430
		statics[year] = static
	}

	logging.Debug("loaded published 430 tables", zap.String("dir", dir), zap.Int("years", len(tables)))
	return tables, statics, nil
}

func readGrid(path string) (*grid, error) {
	records, err := readRecords(path)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, parseError(path, 1, 1, "empty file")
	}
	return parseGrid(path, records[0], records[1:])
}

func categorized(g *grid) (types.CategorizedTable, error) {
	table := make(types.CategorizedTable, len(types.Categories))
	for _, c := range types.Categories {
		ages, err := g.column(string(c))
		if err != nil {
			return nil, err
		}
		table[c] = ages
	}
	return table, nil
}

func bySex(g *grid) (types.SexTable, error) {
	table := make(types.SexTable, len(types.Sexes))
	for _, s := range types.Sexes {
		ages, err := g.column(string(s))
		if err != nil {
			return nil, err
		}
		table[s] = ages
	}
	return table, nil
}
