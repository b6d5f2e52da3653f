// Package projection projects base mortality rates forward with compounding
// improvement factors.
package projection

import (
	"fmt"

	"github.com/shopspring/decimal"

	"irs-mortality/core/determinism"
	"irs-mortality/core/types"
	"irs-mortality/internal/errors"
)

var one = decimal.NewFromInt(1)

// Projector projects 430 rates from a base table. It holds read-only
// references and is safe for concurrent use.
type Projector struct {
	base        types.CategorizedTable
	baseYear    int
	improvement map[types.Sex]types.YearAgeTable
	durations   types.CategorizedTable
}

// New creates a projector. improvement must already be extrapolated.
func New(base types.CategorizedTable, baseYear int, improvement map[types.Sex]types.YearAgeTable, durations types.CategorizedTable) *Projector {
	return &Projector{
		base:        base,
		baseYear:    baseYear,
		improvement: improvement,
		durations:   durations,
	}
}

// BaseYear returns the year the base rates apply to
func (p *Projector) BaseYear() int {
	return p.baseYear
}

// Project returns the 430 rate for (category, age) in calcYear.
//
// The base rate is compounded over floor(duration) and floor(duration)+1
// extra years, each result rounded to 6 places, and the two are linearly
// interpolated on the fractional part of the duration before a final
// 6-place rounding. The improvement rate itself is never interpolated.
func (p *Projector) Project(category types.Category, age, calcYear int) (decimal.Decimal, error) {
	baseRate, err := p.base.Rate(category, age)
	if err != nil {
		return decimal.Zero, fmt.Errorf("base table: %w", err)
	}
	duration, err := p.durations.Rate(category, age)
	if err != nil {
		return decimal.Zero, fmt.Errorf("projection years: %w", err)
	}

	whole := duration.Floor()
	remainder := duration.Sub(whole)
	spanLower := calcYear - p.baseYear + int(whole.IntPart())

	lowerFactor, higherFactor, err := p.compound(category.Sex(), age, spanLower)
	if err != nil {
		return decimal.Zero, err
	}

	lower := determinism.RoundHalfUp(baseRate.Mul(lowerFactor), determinism.CheckpointPlaces)
	higher := determinism.RoundHalfUp(baseRate.Mul(higherFactor), determinism.CheckpointPlaces)

	rate := one.Sub(remainder).Mul(lower).Add(remainder.Mul(higher))
	return determinism.RoundHalfUp(rate, determinism.CheckpointPlaces), nil
}

// compound returns Π(1 - f) over years baseYear+1..baseYear+span and the
// same product extended by one more year. Spans below one give the empty
// product.
func (p *Projector) compound(sex types.Sex, age, span int) (decimal.Decimal, decimal.Decimal, error) {
	surface, ok := p.improvement[sex]
	if !ok {
		return decimal.Zero, decimal.Zero, errors.Lookup("improvement table", sex)
	}

	lower := one
	product := one
	for i := 1; i <= span+1; i++ {
		f, err := surface.Rate(p.baseYear+i, age)
		if err != nil {
			return decimal.Zero, decimal.Zero, fmt.Errorf("improvement table %s: %w", sex, err)
		}
		product = product.Mul(one.Sub(f))
		if i == span {
			lower = product
		}
	}
	return lower, product, nil
}

// ProjectTable projects every (category, age) pair for calcYear.
func (p *Projector) ProjectTable(calcYear int) (types.CategorizedTable, error) {
	table := make(types.CategorizedTable, len(types.Categories))
	for _, category := range types.Categories {
		ages := make(types.AgeRateTable, types.MaxAge-types.MinAge+1)
		for _, age := range types.Ages() {
			rate, err := p.Project(category, age, calcYear)
			if err != nil {
				return nil, err
			}
			ages[age] = rate
		}
		table[category] = ages
	}
	return table, nil
}
