// Package blend turns projected 430 rates into static and unisex rates.
package blend

import (
	"fmt"

	"github.com/shopspring/decimal"

	"irs-mortality/core/determinism"
	"irs-mortality/core/types"
)

var one = decimal.NewFromInt(1)

// Blender combines employee and annuitant rates into a static rate per sex.
type Blender struct {
	weights     types.SexTable
	finalPlaces int32
}

// NewBlender creates a blender over weights, rounding to finalPlaces.
func NewBlender(weights types.SexTable, finalPlaces int32) *Blender {
	return &Blender{weights: weights, finalPlaces: finalPlaces}
}

// Blend returns ha*w + ee*(1-w) for the weight w of (sex, age).
// The result is rounded to the 6-place checkpoint and then to the final
// precision; a single rounding to the final precision can differ at ties.
func (b *Blender) Blend(sex types.Sex, age int, ee, ha decimal.Decimal) (decimal.Decimal, error) {
	w, err := b.weights.Rate(sex, age)
	if err != nil {
		return decimal.Zero, fmt.Errorf("blending table: %w", err)
	}
	static := ha.Mul(w).Add(ee.Mul(one.Sub(w)))
	checkpoint := determinism.RoundHalfUp(static, determinism.CheckpointPlaces)
	return determinism.RoundHalfUp(checkpoint, b.finalPlaces), nil
}

// BlendTable builds the static table for both sexes from a 430 table.
func (b *Blender) BlendTable(t430 types.CategorizedTable) (types.SexTable, error) {
	table := make(types.SexTable, len(types.Sexes))
	for _, sex := range types.Sexes {
		ages := make(types.AgeRateTable, types.MaxAge-types.MinAge+1)
		for _, age := range types.Ages() {
			ee, err := t430.Rate(sex.Employee(), age)
			if err != nil {
				return nil, fmt.Errorf("430 table: %w", err)
			}
			ha, err := t430.Rate(sex.Annuitant(), age)
			if err != nil {
				return nil, fmt.Errorf("430 table: %w", err)
			}
			rate, err := b.Blend(sex, age, ee, ha)
			if err != nil {
				return nil, err
			}
			ages[age] = rate
		}
		table[sex] = ages
	}
	return table, nil
}
