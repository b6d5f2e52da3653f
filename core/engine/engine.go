// Package engine provides the IRS mortality engine.
// CLI and HTTP surfaces are thin wrappers around it.
package engine

import (
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"irs-mortality/core/types"
	"irs-mortality/internal/errors"
	"irs-mortality/internal/logging"
)

// Source tells whether a year's tables are published or derived
type Source string

const (
	SourcePublished Source = "published"
	SourceDerived   Source = "derived"
)

// Engine produces the 430, 430 static and 417e tables for one calculation
// year. Derived tables are recomputed on every call; an Engine holds no
// mutable state and may be shared between goroutines.
type Engine struct {
	tables   *Tables
	calcYear int
	source   Source
}

// New creates an engine for calcYear, which must lie in [2009, 2099].
func New(tables *Tables, calcYear int) (*Engine, error) {
	if tables == nil {
		return nil, errors.New(errors.TypeInternal, "engine: tables not loaded")
	}
	if err := types.ValidateCalcYear(calcYear); err != nil {
		return nil, err
	}

	source := SourceDerived
	if types.IsPublishedYear(calcYear) {
		source = SourcePublished
	}
	logging.Debug("engine created",
		zap.Int("calc_year", calcYear),
		zap.String("source", string(source)),
		zap.Stringer("fingerprint", tables.fingerprint))

	return &Engine{tables: tables, calcYear: calcYear, source: source}, nil
}

// CalcYear returns the calculation year
func (e *Engine) CalcYear() int {
	return e.calcYear
}

// Source returns whether tables are published or derived
func (e *Engine) Source() Source {
	return e.source
}

// Published reports whether the IRS published tables for the year
func (e *Engine) Published() bool {
	return e.source == SourcePublished
}

// Tables returns the shared data set
func (e *Engine) Tables() *Tables {
	return e.tables
}

// Table430 returns the 430 rates by category. Published tables are returned
// as copies, so callers may modify the result.
func (e *Engine) Table430() (types.CategorizedTable, error) {
	if e.Published() {
		t, ok := e.tables.published430[e.calcYear]
		if !ok {
			return nil, errors.Lookup("published 430 table", e.calcYear)
		}
		return t.Clone(), nil
	}
	return e.tables.projector.ProjectTable(e.calcYear)
}

// Table430Static returns the static rates by sex
func (e *Engine) Table430Static() (types.SexTable, error) {
	if e.Published() {
		t, ok := e.tables.publishedStatic[e.calcYear]
		if !ok {
			return nil, errors.Lookup("published 430 static table", e.calcYear)
		}
		return t.Clone(), nil
	}
	t430, err := e.Table430()
	if err != nil {
		return nil, err
	}
	return e.tables.blender.BlendTable(t430)
}

// Table417e returns the unisex 417e rates
func (e *Engine) Table417e() (types.AgeRateTable, error) {
	if e.Published() {
		t, ok := e.tables.published417e[e.calcYear]
		if !ok {
			return nil, errors.Lookup("published 417e table", e.calcYear)
		}
		return t.Clone(), nil
	}
	static, err := e.Table430Static()
	if err != nil {
		return nil, err
	}
	return e.tables.averager.AverageTable(static)
}

// Rate430 returns a single 430 rate without building the whole table.
func (e *Engine) Rate430(category types.Category, age int) (decimal.Decimal, error) {
	if !category.IsValid() {
		return decimal.Zero, errors.Newf(errors.TypeInput, "unknown category %q", category)
	}
	if e.Published() {
		t, ok := e.tables.published430[e.calcYear]
		if !ok {
			return decimal.Zero, errors.Lookup("published 430 table", e.calcYear)
		}
		return t.Rate(category, age)
	}
	return e.tables.projector.Project(category, age, e.calcYear)
}

// FullTable is every table for one calculation year
type FullTable struct {
	CalcYear       int
	Source         Source
	Fingerprint    string
	FinalPrecision int32

	Table430       types.CategorizedTable
	Table430Static types.SexTable
	Table417e      types.AgeRateTable
}

// FullTable computes all three tables. Derived years compute the 430
// table once and feed it through the blender and averager.
func (e *Engine) FullTable() (*FullTable, error) {
	full := &FullTable{
		CalcYear:       e.calcYear,
		Source:         e.source,
		Fingerprint:    e.tables.fingerprint.Hex(),
		FinalPrecision: e.tables.finalPrecision,
	}

	var err error
	if full.Table430, err = e.Table430(); err != nil {
		return nil, fmt.Errorf("430 table for %d: %w", e.calcYear, err)
	}
	if e.Published() {
		if full.Table430Static, err = e.Table430Static(); err != nil {
			return nil, fmt.Errorf("430 static table for %d: %w", e.calcYear, err)
		}
		if full.Table417e, err = e.Table417e(); err != nil {
			return nil, fmt.Errorf("417e table for %d: %w", e.calcYear, err)
		}
		return full, nil
	}

	if full.Table430Static, err = e.tables.blender.BlendTable(full.Table430); err != nil {
		return nil, fmt.Errorf("430 static table for %d: %w", e.calcYear, err)
	}
	if full.Table417e, err = e.tables.averager.AverageTable(full.Table430Static); err != nil {
		return nil, fmt.Errorf("417e table for %d: %w", e.calcYear, err)
	}
	return full, nil
}

// Map returns the tables keyed "430", "430Static" and "417e".
func (f *FullTable) Map() map[string]interface{} {
	return map[string]interface{}{
		"430":       f.Table430,
		"430Static": f.Table430Static,
		"417e":      f.Table417e,
	}
}
