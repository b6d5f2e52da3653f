// Package types defines core domain types shared across all layers.
// This package contains NO business logic - only type definitions and lookups.
package types

import (
	"fmt"
	"slices"
	"strings"

	"github.com/shopspring/decimal"

	"irs-mortality/internal/errors"
)

// Age and year bounds of the IRS tables.
const (
	MinAge = 15
	MaxAge = 120

	MinCalcYear = 2009
	MaxCalcYear = 2099

	FirstPublishedYear = 2009
	LastPublishedYear  = 2024

	// MaxImprovementYear is the last year an improvement surface is extended to.
	MaxImprovementYear = 2178
)

// Sex is the sex dimension of static and blending tables
type Sex string

const (
	Male   Sex = "Male"
	Female Sex = "Female"
)

// Sexes lists both sexes in table order
var Sexes = []Sex{Male, Female}

// String returns the string representation
func (s Sex) String() string {
	return string(s)
}

// Employee returns the EE category for this sex
func (s Sex) Employee() Category {
	return Category(string(s) + " EE")
}

// Annuitant returns the HA category for this sex
func (s Sex) Annuitant() Category {
	return Category(string(s) + " HA")
}

// ParseSex parses "Male" or "Female", ignoring case
func ParseSex(s string) (Sex, error) {
	for _, sex := range Sexes {
		if strings.EqualFold(strings.TrimSpace(s), string(sex)) {
			return sex, nil
		}
	}
	return "", errors.Newf(errors.TypeInput, "unknown sex %q", s)
}

// Category is a 430 rate category
type Category string

const (
	MaleEE   Category = "Male EE"
	MaleHA   Category = "Male HA"
	FemaleEE Category = "Female EE"
	FemaleHA Category = "Female HA"
)

// Categories lists the 430 categories in table order
var Categories = []Category{MaleEE, MaleHA, FemaleEE, FemaleHA}

// String returns the string representation
func (c Category) String() string {
	return string(c)
}

// IsValid checks if the category is one of the four 430 categories
func (c Category) IsValid() bool {
	return slices.Contains(Categories, c)
}

// Sex returns the sex part of the category
func (c Category) Sex() Sex {
	switch c {
	case MaleEE, MaleHA:
		return Male
	case FemaleEE, FemaleHA:
		return Female
	}
	return ""
}

// ParseCategory parses a category label such as "Male EE". Case is
// ignored and "-" or "_" may stand in for the space ("male-ee").
func ParseCategory(s string) (Category, error) {
	label := strings.NewReplacer("-", " ", "_", " ").Replace(strings.TrimSpace(s))
	label = strings.Join(strings.Fields(label), " ")
	for _, c := range Categories {
		if strings.EqualFold(label, string(c)) {
			return c, nil
		}
	}
	return "", errors.Newf(errors.TypeInput, "unknown category %q", s)
}

// Ages returns every age in [MinAge, MaxAge]
func Ages() []int {
	ages := make([]int, 0, MaxAge-MinAge+1)
	for age := MinAge; age <= MaxAge; age++ {
		ages = append(ages, age)
	}
	return ages
}

// ValidateCalcYear checks year against [MinCalcYear, MaxCalcYear]
func ValidateCalcYear(year int) error {
	if year < MinCalcYear || year > MaxCalcYear {
		return errors.Range("IRS mortality rates are not defined for %d; calc year must be between %d and %d",
			year, MinCalcYear, MaxCalcYear)
	}
	return nil
}

// IsPublishedYear reports whether the IRS published tables for year
func IsPublishedYear(year int) bool {
	return year >= FirstPublishedYear && year <= LastPublishedYear
}

// AgeRateTable maps age to rate
type AgeRateTable map[int]decimal.Decimal

// Rate returns the rate for age
func (t AgeRateTable) Rate(age int) (decimal.Decimal, error) {
	r, ok := t[age]
	if !ok {
		return decimal.Zero, errors.Lookup("age table", age)
	}
	return r, nil
}

// Ages returns the defined ages in ascending order
func (t AgeRateTable) Ages() []int {
	ages := make([]int, 0, len(t))
	for age := range t {
		ages = append(ages, age)
	}
	slices.Sort(ages)
	return ages
}

// Clone returns a shallow copy; decimals are immutable values.
func (t AgeRateTable) Clone() AgeRateTable {
	out := make(AgeRateTable, len(t))
	for age, r := range t {
		out[age] = r
	}
	return out
}

// Equal compares two tables numerically
func (t AgeRateTable) Equal(other AgeRateTable) bool {
	if len(t) != len(other) {
		return false
	}
	for age, r := range t {
		o, ok := other[age]
		if !ok || !r.Equal(o) {
			return false
		}
	}
	return true
}

// MissingAges returns the ages in [MinAge, MaxAge] absent from the table
func (t AgeRateTable) MissingAges() []int {
	var missing []int
	for age := MinAge; age <= MaxAge; age++ {
		if _, ok := t[age]; !ok {
			missing = append(missing, age)
		}
	}
	return missing
}

// YearAgeTable maps year to an age table
type YearAgeTable map[int]AgeRateTable

// Rate returns the rate for (year, age)
func (t YearAgeTable) Rate(year, age int) (decimal.Decimal, error) {
	ages, ok := t[year]
	if !ok {
		return decimal.Zero, errors.Lookup("year table", year, age)
	}
	r, ok := ages[age]
	if !ok {
		return decimal.Zero, errors.Lookup("year table", year, age)
	}
	return r, nil
}

// Years returns the defined years in ascending order
func (t YearAgeTable) Years() []int {
	years := make([]int, 0, len(t))
	for y := range t {
		years = append(years, y)
	}
	slices.Sort(years)
	return years
}

// Clone returns a deep copy
func (t YearAgeTable) Clone() YearAgeTable {
	out := make(YearAgeTable, len(t))
	for y, ages := range t {
		out[y] = ages.Clone()
	}
	return out
}

// Equal compares two surfaces numerically
func (t YearAgeTable) Equal(other YearAgeTable) bool {
	if len(t) != len(other) {
		return false
	}
	for y, ages := range t {
		o, ok := other[y]
		if !ok || !ages.Equal(o) {
			return false
		}
	}
	return true
}

// CategorizedTable maps a 430 category to an age table
type CategorizedTable map[Category]AgeRateTable

// Rate returns the rate for (category, age)
func (t CategorizedTable) Rate(c Category, age int) (decimal.Decimal, error) {
	ages, ok := t[c]
	if !ok {
		return decimal.Zero, errors.Lookup("category table", c, age)
	}
	r, ok := ages[age]
	if !ok {
		return decimal.Zero, errors.Lookup("category table", c, age)
	}
	return r, nil
}

// Clone returns a deep copy
func (t CategorizedTable) Clone() CategorizedTable {
	out := make(CategorizedTable, len(t))
	for c, ages := range t {
		out[c] = ages.Clone()
	}
	return out
}

// Validate checks that all four categories cover every age
func (t CategorizedTable) Validate(name string) error {
	for _, c := range Categories {
		ages, ok := t[c]
		if !ok {
			return errors.Newf(errors.TypeInput, "%s: missing category %q", name, c)
		}
		if missing := ages.MissingAges(); len(missing) > 0 {
			return errors.Newf(errors.TypeInput, "%s: category %q missing ages %s", name, c, describeAges(missing))
		}
	}
	return nil
}

// SexTable maps sex to an age table
type SexTable map[Sex]AgeRateTable

// Rate returns the rate for (sex, age)
func (t SexTable) Rate(s Sex, age int) (decimal.Decimal, error) {
	ages, ok := t[s]
	if !ok {
		return decimal.Zero, errors.Lookup("sex table", s, age)
	}
	r, ok := ages[age]
	if !ok {
		return decimal.Zero, errors.Lookup("sex table", s, age)
	}
	return r, nil
}

// Clone returns a deep copy
func (t SexTable) Clone() SexTable {
	out := make(SexTable, len(t))
	for sex, ages := range t {
		out[sex] = ages.Clone()
	}
	return out
}

// Validate checks that both sexes cover every age
func (t SexTable) Validate(name string) error {
	for _, s := range Sexes {
		ages, ok := t[s]
		if !ok {
			return errors.Newf(errors.TypeInput, "%s: missing sex %q", name, s)
		}
		if missing := ages.MissingAges(); len(missing) > 0 {
			return errors.Newf(errors.TypeInput, "%s: %q missing ages %s", name, s, describeAges(missing))
		}
	}
	return nil
}

func describeAges(ages []int) string {
	if len(ages) > 5 {
		return fmt.Sprintf("%v... (%d total)", ages[:5], len(ages))
	}
	return fmt.Sprint(ages)
}
