package types

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"irs-mortality/internal/errors"
)

func fullAges(v string) AgeRateTable {
	t := AgeRateTable{}
	for _, age := range Ages() {
		t[age] = decimal.RequireFromString(v)
	}
	return t
}

func TestCategorySex(t *testing.T) {
	tests := []struct {
		category Category
		sex      Sex
	}{
		{MaleEE, Male},
		{MaleHA, Male},
		{FemaleEE, Female},
		{FemaleHA, Female},
	}
	for _, tt := range tests {
		t.Run(string(tt.category), func(t *testing.T) {
			assert.Equal(t, tt.sex, tt.category.Sex())
		})
	}
	assert.Equal(t, MaleEE, Male.Employee())
	assert.Equal(t, FemaleHA, Female.Annuitant())
}

func TestParseCategory(t *testing.T) {
	c, err := ParseCategory("Female EE")
	require.NoError(t, err)
	assert.Equal(t, FemaleEE, c)

	for _, alias := range []string{"male-ee", "MALE_HA", " female  ha "} {
		_, err := ParseCategory(alias)
		assert.NoError(t, err, alias)
	}
	sex, err := ParseSex("female")
	require.NoError(t, err)
	assert.Equal(t, Female, sex)

	_, err = ParseCategory("Unisex")
	assert.True(t, errors.IsType(err, errors.TypeInput))

	_, err = ParseSex("Other")
	assert.True(t, errors.IsType(err, errors.TypeInput))
}

func TestValidateCalcYear(t *testing.T) {
	for _, year := range []int{2009, 2024, 2025, 2099} {
		assert.NoError(t, ValidateCalcYear(year), year)
	}
	for _, year := range []int{2008, 2100, 0} {
		assert.True(t, errors.IsType(ValidateCalcYear(year), errors.TypeRange), year)
	}
}

func TestIsPublishedYear(t *testing.T) {
	assert.True(t, IsPublishedYear(2009))
	assert.True(t, IsPublishedYear(2024))
	assert.False(t, IsPublishedYear(2025))
	assert.False(t, IsPublishedYear(2008))
}

func TestLookupsReportMissingEntries(t *testing.T) {
	cat := CategorizedTable{MaleEE: fullAges("0.01")}

	r, err := cat.Rate(MaleEE, 65)
	require.NoError(t, err)
	assert.Equal(t, "0.01", r.String())

	_, err = cat.Rate(FemaleHA, 65)
	assert.True(t, errors.IsType(err, errors.TypeLookup))

	_, err = cat.Rate(MaleEE, 121)
	assert.True(t, errors.IsType(err, errors.TypeLookup))

	surface := YearAgeTable{2030: fullAges("0.02")}
	_, err = surface.Rate(2031, 65)
	assert.True(t, errors.IsType(err, errors.TypeLookup))
}

func TestCategorizedTableValidate(t *testing.T) {
	complete := CategorizedTable{}
	for _, c := range Categories {
		complete[c] = fullAges("0.001")
	}
	require.NoError(t, complete.Validate("base table"))

	delete(complete[MaleHA], 90)
	err := complete.Validate("base table")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"Male HA" missing ages [90]`)

	delete(complete, FemaleEE)
	assert.Error(t, complete.Validate("base table"))
}

func TestSexTableValidate(t *testing.T) {
	weights := SexTable{Male: fullAges("0.5")}
	err := weights.Validate("blending table")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `missing sex "Female"`)
}

func TestAgeRateTableHelpers(t *testing.T) {
	a := AgeRateTable{20: decimal.RequireFromString("0.1"), 15: decimal.RequireFromString("0.2")}
	assert.Equal(t, []int{15, 20}, a.Ages())

	b := a.Clone()
	assert.True(t, a.Equal(b))
	b[20] = decimal.RequireFromString("0.10")
	assert.True(t, a.Equal(b), "numerically equal decimals compare equal")
	b[21] = decimal.Zero
	assert.False(t, a.Equal(b))
	assert.Len(t, a, 2)
}

func TestTableClonesAreDeep(t *testing.T) {
	categorized := CategorizedTable{MaleEE: fullAges("0.01")}
	copied := categorized.Clone()
	copied[MaleEE][65] = decimal.RequireFromString("0.5")
	delete(copied, MaleEE)
	require.Contains(t, categorized, MaleEE)
	assert.True(t, categorized[MaleEE][65].Equal(decimal.RequireFromString("0.01")))

	bySex := SexTable{Female: fullAges("0.2")}
	copiedSex := bySex.Clone()
	delete(copiedSex[Female], 40)
	assert.Contains(t, bySex[Female], 40)
	assert.Empty(t, SexTable(nil).Clone())
}
