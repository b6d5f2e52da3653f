package engine_test

import (
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"irs-mortality/core/engine"
	"irs-mortality/core/engine/enginetest"
	"irs-mortality/core/types"
	"irs-mortality/internal/errors"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// TestNewRejectsYearsOutsideRange proves construction fails with a range
// error outside [2009, 2099].
func TestNewRejectsYearsOutsideRange(t *testing.T) {
	tables := enginetest.Tables(t)

	for _, year := range []int{1990, 2008, 2100, 2200} {
		_, err := engine.New(tables, year)
		require.Error(t, err, "year %d", year)
		assert.True(t, errors.IsType(err, errors.TypeRange), "year %d: %v", year, err)
	}
	for _, year := range []int{2009, 2024, 2025, 2099} {
		_, err := engine.New(tables, year)
		assert.NoError(t, err, "year %d", year)
	}
}

func TestNewRequiresTables(t *testing.T) {
	_, err := engine.New(nil, 2030)
	assert.True(t, errors.IsType(err, errors.TypeInternal))
}

// TestPublishedBoundary proves 2024 is served from published data and
// 2025 is derived from the base table.
func TestPublishedBoundary(t *testing.T) {
	tables := enginetest.Tables(t)

	published, err := engine.New(tables, 2024)
	require.NoError(t, err)
	assert.True(t, published.Published())
	assert.Equal(t, engine.SourcePublished, published.Source())

	t430, err := published.Table430()
	require.NoError(t, err)
	assert.True(t, t430[types.MaleEE][65].Equal(enginetest.PublishedRate(2024, types.MaleEE, 65)))

	derived, err := engine.New(tables, 2025)
	require.NoError(t, err)
	assert.False(t, derived.Published())
	assert.Equal(t, engine.SourceDerived, derived.Source())
	assert.Equal(t, 2025, derived.CalcYear())
}

// TestPublishedTablesAreCopies proves a caller writing to a published table
// does not change what later engines see.
func TestPublishedTablesAreCopies(t *testing.T) {
	tables := enginetest.Tables(t)
	want := enginetest.PublishedRate(2020, types.MaleEE, 65)

	first, err := engine.New(tables, 2020)
	require.NoError(t, err)
	t430, err := first.Table430()
	require.NoError(t, err)
	t430[types.MaleEE][65] = t430[types.MaleEE][65].Mul(decimal.NewFromInt(2))
	static, err := first.Table430Static()
	require.NoError(t, err)
	delete(static[types.Female], 65)
	t417e, err := first.Table417e()
	require.NoError(t, err)
	t417e[65] = decimal.Zero

	second, err := engine.New(tables, 2020)
	require.NoError(t, err)
	full, err := second.FullTable()
	require.NoError(t, err)
	assert.True(t, full.Table430[types.MaleEE][65].Equal(want), "got %s", full.Table430[types.MaleEE][65])
	assert.Contains(t, full.Table430Static[types.Female], 65)
	assert.False(t, full.Table417e[65].IsZero())

	rate, err := second.Rate430(types.MaleEE, 65)
	require.NoError(t, err)
	assert.True(t, rate.Equal(want))
}

// TestDerivedRatesComeFromBaseTable proves the derived 430 rate compounds
// improvement from the base year only, never on top of published rates.
func TestDerivedRatesComeFromBaseTable(t *testing.T) {
	e, err := engine.New(enginetest.Tables(t), 2025)
	require.NoError(t, err)

	tests := []struct {
		category types.Category
		want     string
	}{
		{types.MaleEE, "0.005704"},
		{types.MaleHA, "0.005682"},
		{types.FemaleEE, "0.005485"},
		{types.FemaleHA, "0.005441"},
	}
	t430, err := e.Table430()
	require.NoError(t, err)
	for _, tt := range tests {
		t.Run(string(tt.category), func(t *testing.T) {
			assert.True(t, t430[tt.category][65].Equal(dec(tt.want)), "got %s", t430[tt.category][65])

			single, err := e.Rate430(tt.category, 65)
			require.NoError(t, err)
			assert.True(t, single.Equal(dec(tt.want)))
		})
	}
}

func TestDerivedStaticAndUnisex(t *testing.T) {
	e, err := engine.New(enginetest.Tables(t), 2025)
	require.NoError(t, err)

	static, err := e.Table430Static()
	require.NoError(t, err)
	assert.Equal(t, "0.00569", static[types.Male][65].String())
	assert.Equal(t, "0.00546", static[types.Female][65].String())

	unisex, err := e.Table417e()
	require.NoError(t, err)
	assert.Equal(t, "0.00558", unisex[65].String())
}

func TestFullTableMatchesIndividualTables(t *testing.T) {
	tables := enginetest.Tables(t)

	for _, year := range []int{2015, 2024, 2025, 2060, 2099} {
		e, err := engine.New(tables, year)
		require.NoError(t, err)

		full, err := e.FullTable()
		require.NoError(t, err)

		t430, err := e.Table430()
		require.NoError(t, err)
		static, err := e.Table430Static()
		require.NoError(t, err)
		unisex, err := e.Table417e()
		require.NoError(t, err)

		assert.Equal(t, year, full.CalcYear)
		assert.Equal(t, tables.Fingerprint().Hex(), full.Fingerprint)
		assert.Equal(t, int32(5), full.FinalPrecision)
		for _, c := range types.Categories {
			assert.True(t, full.Table430[c].Equal(t430[c]), "%d %s", year, c)
		}
		for _, s := range types.Sexes {
			assert.True(t, full.Table430Static[s].Equal(static[s]), "%d %s", year, s)
		}
		assert.True(t, full.Table417e.Equal(unisex))

		keys := full.Map()
		assert.Contains(t, keys, "430")
		assert.Contains(t, keys, "430Static")
		assert.Contains(t, keys, "417e")
	}
}

func TestDerivedTablesAreComplete(t *testing.T) {
	e, err := engine.New(enginetest.Tables(t), 2050)
	require.NoError(t, err)

	full, err := e.FullTable()
	require.NoError(t, err)
	require.NoError(t, full.Table430.Validate("430"))
	require.NoError(t, full.Table430Static.Validate("430 static"))
	assert.Empty(t, full.Table417e.MissingAges())
}

// TestDerivedRatesDecreaseOverTime proves positive improvement makes later
// years no more likely to die.
func TestDerivedRatesDecreaseOverTime(t *testing.T) {
	tables := enginetest.Tables(t)

	prev := map[types.Category]decimal.Decimal{}
	for year := 2025; year <= types.MaxCalcYear; year++ {
		e, err := engine.New(tables, year)
		require.NoError(t, err)
		for _, c := range types.Categories {
			rate, err := e.Rate430(c, 80)
			require.NoError(t, err)
			if p, ok := prev[c]; ok {
				assert.True(t, rate.LessThanOrEqual(p), "%s %d: %s > %s", c, year, rate, p)
			}
			prev[c] = rate
		}
	}
}

func TestDeterministicAcrossEngines(t *testing.T) {
	tables := enginetest.Tables(t)

	first, err := engine.New(tables, 2071)
	require.NoError(t, err)
	a, err := first.FullTable()
	require.NoError(t, err)

	second, err := engine.New(tables, 2071)
	require.NoError(t, err)
	b, err := second.FullTable()
	require.NoError(t, err)

	for _, c := range types.Categories {
		assert.True(t, a.Table430[c].Equal(b.Table430[c]))
	}
	assert.True(t, a.Table417e.Equal(b.Table417e))
}

// TestConcurrentEngines proves engines can share one Tables value.
func TestConcurrentEngines(t *testing.T) {
	tables := enginetest.Tables(t)

	ref, err := engine.New(tables, 2040)
	require.NoError(t, err)
	want, err := ref.Table417e()
	require.NoError(t, err)

	var wg sync.WaitGroup
	results := make([]types.AgeRateTable, 16)
	errs := make([]error, 16)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			e, err := engine.New(tables, 2040)
			if err != nil {
				errs[i] = err
				return
			}
			results[i], errs[i] = e.Table417e()
		}(i)
	}
	wg.Wait()

	for i := range results {
		require.NoError(t, errs[i])
		assert.True(t, results[i].Equal(want))
	}
}

func TestPublishedYearMissingFromData(t *testing.T) {
	in := enginetest.Inputs()
	delete(in.Published430, 2020)
	delete(in.PublishedStatic, 2020)
	delete(in.Published417e, 2020)
	tables, err := engine.NewTables(in)
	require.NoError(t, err)

	e, err := engine.New(tables, 2020)
	require.NoError(t, err)

	_, err = e.Table430()
	assert.True(t, errors.IsType(err, errors.TypeLookup))
	_, err = e.Table430Static()
	assert.True(t, errors.IsType(err, errors.TypeLookup))
	_, err = e.Table417e()
	assert.True(t, errors.IsType(err, errors.TypeLookup))
	_, err = e.FullTable()
	assert.True(t, errors.IsType(err, errors.TypeLookup))
	_, err = e.Rate430(types.MaleEE, 65)
	assert.True(t, errors.IsType(err, errors.TypeLookup))
}

func TestRate430RejectsUnknownCategory(t *testing.T) {
	e, err := engine.New(enginetest.Tables(t), 2030)
	require.NoError(t, err)

	_, err = e.Rate430(types.Category("Unisex"), 65)
	assert.True(t, errors.IsType(err, errors.TypeInput))

	_, err = e.Rate430(types.MaleEE, 121)
	assert.True(t, errors.IsType(err, errors.TypeLookup))
}

func TestNewTablesValidation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(in *engine.Inputs)
	}{
		{"missing base category", func(in *engine.Inputs) { delete(in.Base, types.FemaleHA) }},
		{"missing base age", func(in *engine.Inputs) { delete(in.Base[types.MaleEE], 90) }},
		{"missing projection age", func(in *engine.Inputs) { delete(in.ProjectionYears[types.MaleHA], 15) }},
		{"missing blending sex", func(in *engine.Inputs) { delete(in.Blending, types.Female) }},
		{"weight above one", func(in *engine.Inputs) { in.Blending[types.Male][70] = dec("1.2") }},
		{"negative weight", func(in *engine.Inputs) { in.Blending[types.Female][70] = dec("-0.1") }},
		{"negative duration", func(in *engine.Inputs) { in.ProjectionYears[types.FemaleEE][40] = dec("-1") }},
		{"negative base rate", func(in *engine.Inputs) { in.Base[types.MaleHA][40] = dec("-0.001") }},
		{"missing improvement", func(in *engine.Inputs) { delete(in.Improvement, types.Male) }},
		{"improvement missing oldest ages", func(in *engine.Inputs) {
			for _, ages := range in.Improvement[types.Female] {
				for age := 111; age <= types.MaxAge; age++ {
					delete(ages, age)
				}
			}
		}},
		{"improvement starts after base year", func(in *engine.Inputs) {
			delete(in.Improvement[types.Male], enginetest.BaseYear+1)
		}},
		{"improvement year gap", func(in *engine.Inputs) { delete(in.Improvement[types.Male], 2016) }},
		{"precision too fine", func(in *engine.Inputs) { in.FinalPrecision = 7 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := enginetest.Inputs()
			tt.mutate(&in)
			_, err := engine.NewTables(in)
			require.Error(t, err)
			assert.True(t, errors.IsType(err, errors.TypeInput), "%v", err)
		})
	}
}

func TestNewTablesDoesNotMutateImprovement(t *testing.T) {
	in := enginetest.Inputs()
	before := in.Improvement[types.Male].Clone()

	_, err := engine.NewTables(in)
	require.NoError(t, err)
	assert.True(t, in.Improvement[types.Male].Equal(before))
}

func TestFingerprint(t *testing.T) {
	a := enginetest.Tables(t)
	b := enginetest.Tables(t)
	assert.Equal(t, a.Fingerprint(), b.Fingerprint())
	assert.False(t, a.Fingerprint().IsZero())

	in := enginetest.Inputs()
	in.Base[types.MaleEE][65] = dec("0.123456")
	changed, err := engine.NewTables(in)
	require.NoError(t, err)
	assert.NotEqual(t, a.Fingerprint(), changed.Fingerprint())

	in = enginetest.Inputs()
	in.FinalPrecision = 6
	finer, err := engine.NewTables(in)
	require.NoError(t, err)
	assert.NotEqual(t, a.Fingerprint(), finer.Fingerprint())
	assert.Equal(t, int32(6), finer.FinalPrecision())
}

func TestTablesAccessors(t *testing.T) {
	tables := enginetest.Tables(t)
	assert.Equal(t, enginetest.BaseYear, tables.BaseYear())
	assert.Equal(t, int32(5), tables.FinalPrecision())
	assert.Len(t, tables.PublishedYears(), 16)
	assert.Equal(t, 2009, tables.PublishedYears()[0])
	assert.Equal(t, enginetest.BaseYear, tables.Projector().BaseYear())
}
