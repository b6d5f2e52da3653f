// Package enginetest builds small synthetic data sets for tests.
package enginetest

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"irs-mortality/core/engine"
	"irs-mortality/core/types"
)

// BaseYear of the synthetic base table
const BaseYear = 2012

// Durations per category in the synthetic projection-years table
var Durations = map[types.Category]string{
	types.MaleEE:   "0",
	types.MaleHA:   "0.5",
	types.FemaleEE: "1.25",
	types.FemaleHA: "2",
}

// ImprovementFactor returns the synthetic improvement rate for a sex
func ImprovementFactor(sex types.Sex) decimal.Decimal {
	if sex == types.Female {
		return decimal.RequireFromString("0.012")
	}
	return decimal.RequireFromString("0.01")
}

// BaseRate is the synthetic base rate: (age*100 + 7*index) * 1e-6
func BaseRate(c types.Category, age int) decimal.Decimal {
	idx := 0
	for i, cat := range types.Categories {
		if cat == c {
			idx = i
		}
	}
	return decimal.New(int64(age*100+7*idx), -6)
}

// Weight is the synthetic annuitant weight: (age-15)/105 to 6 places
func Weight(age int) decimal.Decimal {
	return decimal.NewFromInt(int64(age - types.MinAge)).DivRound(decimal.NewFromInt(105), 6)
}

// PublishedRate is the synthetic published 430 rate, distinct per year
func PublishedRate(year int, c types.Category, age int) decimal.Decimal {
	return BaseRate(c, age).Add(decimal.New(int64(year-2000), -7))
}

// Inputs returns a complete data set. Improvement data covers 2013..2020
// and ages 20..120, leaving the rest to extrapolation.
func Inputs() engine.Inputs {
	in := engine.Inputs{
		Base:            types.CategorizedTable{},
		BaseYear:        BaseYear,
		Improvement:     map[types.Sex]types.YearAgeTable{},
		ProjectionYears: types.CategorizedTable{},
		Blending:        types.SexTable{},
		Published430:    map[int]types.CategorizedTable{},
		PublishedStatic: map[int]types.SexTable{},
		Published417e:   map[int]types.AgeRateTable{},
	}

	for _, c := range types.Categories {
		base := types.AgeRateTable{}
		durations := types.AgeRateTable{}
		for _, age := range types.Ages() {
			base[age] = BaseRate(c, age)
			durations[age] = decimal.RequireFromString(Durations[c])
		}
		in.Base[c] = base
		in.ProjectionYears[c] = durations
	}

	for _, sex := range types.Sexes {
		surface := types.YearAgeTable{}
		for year := 2013; year <= 2020; year++ {
			ages := types.AgeRateTable{}
			for age := 20; age <= types.MaxAge; age++ {
				ages[age] = ImprovementFactor(sex)
			}
			surface[year] = ages
		}
		in.Improvement[sex] = surface

		weights := types.AgeRateTable{}
		for _, age := range types.Ages() {
			weights[age] = Weight(age)
		}
		in.Blending[sex] = weights
	}

	for year := types.FirstPublishedYear; year <= types.LastPublishedYear; year++ {
		t430 := types.CategorizedTable{}
		for _, c := range types.Categories {
			ages := types.AgeRateTable{}
			for _, age := range types.Ages() {
				ages[age] = PublishedRate(year, c, age)
			}
			t430[c] = ages
		}
		static := types.SexTable{}
		for _, sex := range types.Sexes {
			ages := types.AgeRateTable{}
			for _, age := range types.Ages() {
				ages[age] = decimal.New(int64(age*10+year-2000), -5)
			}
			static[sex] = ages
		}
		unisex := types.AgeRateTable{}
		for _, age := range types.Ages() {
			unisex[age] = decimal.New(int64(age*10+year-1990), -5)
		}
		in.Published430[year] = t430
		in.PublishedStatic[year] = static
		in.Published417e[year] = unisex
	}
	return in
}

// Tables builds engine tables from Inputs
func Tables(t testing.TB) *engine.Tables {
	t.Helper()
	tables, err := engine.NewTables(Inputs())
	require.NoError(t, err)
	return tables
}
