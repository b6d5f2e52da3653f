package tablefile

import (
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"irs-mortality/core/engine"
	"irs-mortality/core/types"
	"irs-mortality/internal/errors"
	"irs-mortality/internal/logging"
)

// Layout names the data files relative to the data directory
type Layout struct {
	BaseTable         string `json:"base_table" yaml:"base_table"`
	MaleImprovement   string `json:"male_improvement" yaml:"male_improvement"`
	FemaleImprovement string `json:"female_improvement" yaml:"female_improvement"`
	ProjectionYears   string `json:"projection_years" yaml:"projection_years"`
	Blending          string `json:"blending" yaml:"blending"`
	Published430Dir   string `json:"published_430_dir" yaml:"published_430_dir"`
	Published417e     string `json:"published_417e" yaml:"published_417e"`
}

// DefaultLayout matches the layout of the IRS data set distribution
func DefaultLayout() Layout {
	return Layout{
		BaseTable:         filepath.Join("Base Tables", "Pri-2012.csv"),
		MaleImprovement:   filepath.Join("Improvement Tables", "MP2021_Adj_Males.csv"),
		FemaleImprovement: filepath.Join("Improvement Tables", "MP2021_Adj_Females.csv"),
		ProjectionYears:   filepath.Join("Projection Methods", "Projection Years.csv"),
		Blending:          filepath.Join("Projection Methods", "Blending.csv"),
		Published430Dir:   filepath.Join("Published Tables", "430_Published"),
		Published417e:     filepath.Join("Published Tables", "417e Published.csv"),
	}
}

// withDefaults fills empty entries from DefaultLayout
func (l Layout) withDefaults() Layout {
	d := DefaultLayout()
	for _, p := range []struct {
		v   *string
		def string
	}{
		{&l.BaseTable, d.BaseTable},
		{&l.MaleImprovement, d.MaleImprovement},
		{&l.FemaleImprovement, d.FemaleImprovement},
		{&l.ProjectionYears, d.ProjectionYears},
		{&l.Blending, d.Blending},
		{&l.Published430Dir, d.Published430Dir},
		{&l.Published417e, d.Published417e},
	} {
		if *p.v == "" {
			*p.v = p.def
		}
	}
	return l
}

// resolve joins relative entries onto dir
func (l Layout) resolve(dir string) Layout {
	join := func(p string) string {
		if filepath.IsAbs(p) {
			return p
		}
		return filepath.Join(dir, p)
	}
	return Layout{
		BaseTable:         join(l.BaseTable),
		MaleImprovement:   join(l.MaleImprovement),
		FemaleImprovement: join(l.FemaleImprovement),
		ProjectionYears:   join(l.ProjectionYears),
		Blending:          join(l.Blending),
		Published430Dir:   join(l.Published430Dir),
		Published417e:     join(l.Published417e),
	}
}

// LoadInputs reads every table of the data set in dir
func LoadInputs(dir string, layout Layout) (engine.Inputs, error) {
	paths := layout.withDefaults().resolve(dir)
	var in engine.Inputs
	var err error

	if in.Base, in.BaseYear, err = ReadBaseTable(paths.BaseTable); err != nil {
		return engine.Inputs{}, err
	}

	male, err := ReadImprovement(paths.MaleImprovement)
	if err != nil {
		return engine.Inputs{}, err
	}
	female, err := ReadImprovement(paths.FemaleImprovement)
	if err != nil {
		return engine.Inputs{}, err
	}
	in.Improvement = map[types.Sex]types.YearAgeTable{types.Male: male, types.Female: female}

	if in.ProjectionYears, err = ReadProjectionYears(paths.ProjectionYears); err != nil {
		return engine.Inputs{}, err
	}
	if in.Blending, err = ReadBlending(paths.Blending); err != nil {
		return engine.Inputs{}, err
	}
	if in.Published430, in.PublishedStatic, err = ReadPublished430Dir(paths.Published430Dir); err != nil {
		return engine.Inputs{}, err
	}
	if in.Published417e, err = ReadPublished417e(paths.Published417e); err != nil {
		return engine.Inputs{}, err
	}
	return in, nil
}

// Load reads the data set in dir and builds the engine tables.
// precision sets the final rounding of static and 417e rates (0 = default).
func Load(dir string, layout Layout, precision int32) (*engine.Tables, error) {
	start := time.Now()

	in, err := LoadInputs(dir, layout)
	if err != nil {
		return nil, err
	}
	in.FinalPrecision = precision

	tables, err := engine.NewTables(in)
	if err != nil {
		return nil, errors.Wrapf(errors.TypeInput, err, "data set %s", dir)
	}

	logging.Info("mortality data loaded",
		zap.String("dir", dir),
		zap.Int("base_year", tables.BaseYear()),
		zap.Int("published_years", len(tables.PublishedYears())),
		zap.Stringer("fingerprint", tables.Fingerprint()),
		zap.Duration("duration", time.Since(start)))
	return tables, nil
}
