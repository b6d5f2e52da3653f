package determinism

import "github.com/shopspring/decimal"

// Rounding checkpoints used by the IRS tables.
const (
	// CheckpointPlaces is the precision of projected 430 rates and of the
	// intermediate static blend.
	CheckpointPlaces int32 = 6

	// DefaultFinalPlaces is the published precision of static and 417e rates.
	DefaultFinalPlaces int32 = 5
)

// RoundHalfUp rounds d to places decimal places with ties going away from
// zero. NEVER replace with RoundBank or float rounding: published tables
// differ in the last digit at exact ties.
func RoundHalfUp(d decimal.Decimal, places int32) decimal.Decimal {
	return d.Round(places)
}
