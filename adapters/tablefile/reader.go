// Package tablefile loads the IRS mortality data set from CSV files.
//
// Every file is a grid keyed by an "Age" column. Base and published files
// carry one preamble line ahead of the header (the table name or the
// calendar year); the other files start directly with the header.
package tablefile

import (
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"irs-mortality/core/types"
	"irs-mortality/internal/errors"
)

const bom = "\uFEFF"

// record is one non-blank CSV line
type record struct {
	line  int
	cells []string
}

// readRecords reads every non-blank record of a .csv file with cells trimmed
func readRecords(path string) ([]record, error) {
	if !strings.EqualFold(filepath.Ext(path), ".csv") {
		return nil, errors.Newf(errors.TypeInput, "invalid file type for %s: only .csv files are supported", path)
	}

	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrapf(errors.TypeNotFound, err, "table file %s", path)
		}
		return nil, errors.Wrapf(errors.TypeInput, err, "open %s", path)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true

	var records []record
	for {
		cells, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrapf(errors.TypeParsing, err, "read %s", path)
		}
		line, _ := r.FieldPos(0)

		blank := true
		for i := range cells {
			if len(records) == 0 && i == 0 {
				cells[i] = strings.TrimPrefix(cells[i], bom)
			}
			cells[i] = strings.TrimSpace(cells[i])
			if cells[i] != "" {
				blank = false
			}
		}
		if blank {
			continue
		}
		records = append(records, record{line: line, cells: cells})
	}
	return records, nil
}

// grid is an "Age,<column>..." block parsed into one age table per column
type grid struct {
	path    string
	columns []string
	tables  map[string]types.AgeRateTable
	rows    int
}

// parseGrid parses a header record and the data records below it. Blank
// cells are left absent.
func parseGrid(path string, header record, rows []record) (*grid, error) {
	if len(header.cells) < 2 || !strings.EqualFold(header.cells[0], "Age") {
		return nil, parseError(path, header.line, 1, "header must start with Age and name at least one column")
	}

	g := &grid{
		path:    path,
		columns: header.cells[1:],
		tables:  make(map[string]types.AgeRateTable, len(header.cells)-1),
		rows:    len(rows),
	}
	for _, col := range g.columns {
		if col == "" {
			return nil, parseError(path, header.line, 0, "empty column name")
		}
		if _, dup := g.tables[col]; dup {
			return nil, parseError(path, header.line, 0, "duplicate column "+strconv.Quote(col))
		}
		g.tables[col] = types.AgeRateTable{}
	}

	for _, rec := range rows {
		age, ok := parseAge(rec.cells[0])
		if !ok {
			return nil, parseError(path, rec.line, 1, "invalid age "+strconv.Quote(rec.cells[0]))
		}
		for i, col := range g.columns {
			if i+1 >= len(rec.cells) || rec.cells[i+1] == "" {
				continue
			}
			rate, err := decimal.NewFromString(rec.cells[i+1])
			if err != nil {
				return nil, cellError(path, rec.line, i+2, "invalid number "+strconv.Quote(rec.cells[i+1]), err)
			}
			g.tables[col][age] = rate
		}
	}
	return g, nil
}

// column returns the table for a named column
func (g *grid) column(name string) (types.AgeRateTable, error) {
	t, ok := g.tables[name]
	if !ok {
		return nil, errors.Newf(errors.TypeInput, "%s: missing column %q", g.path, name)
	}
	return t, nil
}

// byYear returns the grid's columns keyed by calendar year
func (g *grid) byYear() (map[int]types.AgeRateTable, error) {
	years := make(map[int]types.AgeRateTable, len(g.columns))
	for _, col := range g.columns {
		year, err := strconv.Atoi(col)
		if err != nil {
			return nil, errors.Newf(errors.TypeParsing, "%s: column %q is not a year", g.path, col)
		}
		years[year] = g.tables[col]
	}
	return years, nil
}

// parseAge accepts "65" and "65.0"
func parseAge(cell string) (int, bool) {
	if age, err := strconv.Atoi(cell); err == nil {
		return age, true
	}
	d, err := decimal.NewFromString(cell)
	if err != nil || !d.Equal(d.Truncate(0)) {
		return 0, false
	}
	return int(d.IntPart()), true
}

func parseError(path string, line, col int, msg string) *errors.Error {
	return cellError(path, line, col, msg, nil)
}

// cellError is a PARSING error located at file, row and column
func cellError(path string, line, col int, msg string, cause error) *errors.Error {
	return errors.Parsing(path+":"+strconv.Itoa(line)+": "+msg, cause).
		WithContext("file", path).
		WithContext("row", line).
		WithContext("column", col)
}
