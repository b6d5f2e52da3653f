// Package improvement extends sparse mortality-improvement surfaces.
package improvement

import (
	"irs-mortality/core/types"
)

// Extrapolate returns a copy of surface extended flat to every age down to
// types.MinAge and every year up to types.MaxImprovementYear.
//
// The first defined age is taken from the last defined year. Each year's
// missing young ages repeat that year's rate at the first defined age; each
// year after the last one is a copy of the last year. The input is never
// modified and applying Extrapolate twice gives the same surface.
func Extrapolate(surface types.YearAgeTable) types.YearAgeTable {
	out := surface.Clone()
	years := out.Years()
	if len(years) == 0 {
		return out
	}

	lastYear := years[len(years)-1]
	ages := out[lastYear].Ages()
	if len(ages) == 0 {
		return out
	}
	firstAge := ages[0]

	if firstAge > types.MinAge {
		for _, year := range years {
			extendAges(out[year], firstAge)
		}
	}

	for year := lastYear + 1; year <= types.MaxImprovementYear; year++ {
		out[year] = out[lastYear].Clone()
	}
	return out
}

// extendAges fills ages [MinAge, firstAge) of one year in place. A year
// without a rate at firstAge falls back to its own lowest defined age.
func extendAges(ages types.AgeRateTable, firstAge int) {
	from := firstAge
	if _, ok := ages[from]; !ok {
		defined := ages.Ages()
		if len(defined) == 0 {
			return
		}
		from = defined[0]
	}
	rate := ages[from]
	for age := types.MinAge; age < from; age++ {
		if _, ok := ages[age]; !ok {
			ages[age] = rate
		}
	}
}
