package engine

import (
	"strconv"

	"github.com/shopspring/decimal"

	"irs-mortality/core/blend"
	"irs-mortality/core/determinism"
	"irs-mortality/core/improvement"
	"irs-mortality/core/projection"
	"irs-mortality/core/types"
	"irs-mortality/internal/errors"
)

// Inputs are the parsed source tables supplied by a loader.
type Inputs struct {
	// Base is the base mortality table for BaseYear
	Base     types.CategorizedTable
	BaseYear int

	// Improvement holds the sparse improvement surface per sex
	Improvement map[types.Sex]types.YearAgeTable

	// ProjectionYears holds the projection duration per category and age
	ProjectionYears types.CategorizedTable

	// Blending holds the annuitant weight per sex and age
	Blending types.SexTable

	// Published tables keyed by calendar year
	Published430    map[int]types.CategorizedTable
	PublishedStatic map[int]types.SexTable
	Published417e   map[int]types.AgeRateTable

	// FinalPrecision is the rounding of static and 417e rates (0 = default)
	FinalPrecision int32
}

// Tables is the immutable data set shared by every Engine. Build it once
// with NewTables and pass it by reference; nothing mutates it afterwards.
type Tables struct {
	baseYear        int
	published430    map[int]types.CategorizedTable
	publishedStatic map[int]types.SexTable
	published417e   map[int]types.AgeRateTable
	finalPrecision  int32

	projector   *projection.Projector
	blender     *blend.Blender
	averager    blend.Averager
	fingerprint determinism.ContentHash
}

// NewTables validates inputs, extrapolates the improvement surfaces and
// seals the result.
func NewTables(in Inputs) (*Tables, error) {
	if err := in.Base.Validate("base table"); err != nil {
		return nil, err
	}
	if err := in.ProjectionYears.Validate("projection years"); err != nil {
		return nil, err
	}
	if err := in.Blending.Validate("blending table"); err != nil {
		return nil, err
	}
	if err := validateBounds(in); err != nil {
		return nil, err
	}

	surfaces := make(map[types.Sex]types.YearAgeTable, len(types.Sexes))
	for _, sex := range types.Sexes {
		sparse, ok := in.Improvement[sex]
		if !ok || len(sparse) == 0 {
			return nil, errors.Newf(errors.TypeInput, "improvement table: no data for %s", sex)
		}
		surface := improvement.Extrapolate(sparse)
		if err := checkSurface(sex, surface, in.BaseYear); err != nil {
			return nil, err
		}
		surfaces[sex] = surface
	}

	precision := in.FinalPrecision
	if precision <= 0 {
		precision = determinism.DefaultFinalPlaces
	}
	if precision > determinism.CheckpointPlaces {
		return nil, errors.Newf(errors.TypeInput, "final precision %d exceeds the %d-place checkpoint",
			precision, determinism.CheckpointPlaces)
	}

	return &Tables{
		baseYear:        in.BaseYear,
		published430:    in.Published430,
		publishedStatic: in.PublishedStatic,
		published417e:   in.Published417e,
		finalPrecision:  precision,
		projector:       projection.New(in.Base, in.BaseYear, surfaces, in.ProjectionYears),
		blender:         blend.NewBlender(in.Blending, precision),
		averager:        blend.NewAverager(precision),
		fingerprint:     fingerprint(in, precision),
	}, nil
}

// BaseYear returns the year of the base table
func (t *Tables) BaseYear() int {
	return t.baseYear
}

// FinalPrecision returns the decimal places of static and 417e rates
func (t *Tables) FinalPrecision() int32 {
	return t.finalPrecision
}

// Fingerprint identifies the input data set
func (t *Tables) Fingerprint() determinism.ContentHash {
	return t.fingerprint
}

// PublishedYears returns the years with a published 430 table
func (t *Tables) PublishedYears() []int {
	return determinism.SortedKeys(t.published430)
}

// Projector exposes the rate projector over these tables
func (t *Tables) Projector() *projection.Projector {
	return t.projector
}

func validateBounds(in Inputs) error {
	zero := decimal.Zero
	oneDec := decimal.NewFromInt(1)
	for _, sex := range types.Sexes {
		for age, w := range in.Blending[sex] {
			if w.LessThan(zero) || w.GreaterThan(oneDec) {
				return errors.Newf(errors.TypeInput, "blending table: weight %s for %s age %d outside [0,1]", w, sex, age)
			}
		}
	}
	for _, c := range types.Categories {
		for age, d := range in.ProjectionYears[c] {
			if d.IsNegative() {
				return errors.Newf(errors.TypeInput, "projection years: negative duration %s for %s age %d", d, c, age)
			}
		}
		for age, r := range in.Base[c] {
			if r.IsNegative() {
				return errors.Newf(errors.TypeInput, "base table: negative rate %s for %s age %d", r, c, age)
			}
		}
	}
	return nil
}

// checkSurface requires a factor for every age in every year the projector
// can reach: baseYear+1 through the improvement ceiling.
func checkSurface(sex types.Sex, surface types.YearAgeTable, baseYear int) error {
	for year := baseYear + 1; year <= types.MaxImprovementYear; year++ {
		ages, ok := surface[year]
		if !ok {
			return errors.Newf(errors.TypeInput, "improvement table %s: no data for %d", sex, year)
		}
		if missing := ages.MissingAges(); len(missing) > 0 {
			return errors.Newf(errors.TypeInput, "improvement table %s: year %d missing ages %v", sex, year, missing)
		}
	}
	return nil
}

func fingerprint(in Inputs, precision int32) determinism.ContentHash {
	h := determinism.NewHasher("irs-mortality/tables/v1")
	h.Int(in.BaseYear).Int(int(precision))

	writeCategorized := func(label string, t types.CategorizedTable) {
		h.String(label)
		for _, c := range types.Categories {
			writeAges(h, string(c), t[c])
		}
	}
	writeSexes := func(label string, t types.SexTable) {
		h.String(label)
		for _, s := range types.Sexes {
			writeAges(h, string(s), t[s])
		}
	}

	writeCategorized("base", in.Base)
	writeCategorized("projection", in.ProjectionYears)
	writeSexes("blending", in.Blending)
	for _, s := range types.Sexes {
		h.String("improvement/" + string(s))
		determinism.RangeMapSorted(in.Improvement[s], func(year int, ages types.AgeRateTable) bool {
			h.Int(year)
			writeAges(h, "", ages)
			return true
		})
	}
	determinism.RangeMapSorted(in.Published430, func(year int, t types.CategorizedTable) bool {
		writeCategorized("published430/"+strconv.Itoa(year), t)
		return true
	})
	determinism.RangeMapSorted(in.PublishedStatic, func(year int, t types.SexTable) bool {
		writeSexes("publishedStatic/"+strconv.Itoa(year), t)
		return true
	})
	determinism.RangeMapSorted(in.Published417e, func(year int, t types.AgeRateTable) bool {
		writeAges(h, "published417e/"+strconv.Itoa(year), t)
		return true
	})
	return h.Sum()
}

func writeAges(h *determinism.Hasher, label string, t types.AgeRateTable) {
	h.String(label)
	for _, age := range t.Ages() {
		h.Int(age).Decimal(t[age])
	}
}
