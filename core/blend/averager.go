package blend

import (
	"fmt"

	"github.com/shopspring/decimal"

	"irs-mortality/core/determinism"
	"irs-mortality/core/types"
)

var two = decimal.NewFromInt(2)

// Averager produces unisex 417e rates from male and female static rates.
type Averager struct {
	finalPlaces int32
}

// NewAverager creates an averager rounding to finalPlaces.
func NewAverager(finalPlaces int32) Averager {
	return Averager{finalPlaces: finalPlaces}
}

// Average returns (male + female) / 2 rounded once to the final precision.
// The age is carried for symmetry with the other table operations.
func (a Averager) Average(_ int, male, female decimal.Decimal) decimal.Decimal {
	return determinism.RoundHalfUp(male.Add(female).Div(two), a.finalPlaces)
}

// AverageTable builds the 417e table from a static table.
func (a Averager) AverageTable(static types.SexTable) (types.AgeRateTable, error) {
	table := make(types.AgeRateTable, types.MaxAge-types.MinAge+1)
	for _, age := range types.Ages() {
		male, err := static.Rate(types.Male, age)
		if err != nil {
			return nil, fmt.Errorf("static table: %w", err)
		}
		female, err := static.Rate(types.Female, age)
		if err != nil {
			return nil, fmt.Errorf("static table: %w", err)
		}
		table[age] = a.Average(age, male, female)
	}
	return table, nil
}
