package valuation

import (
	"math"

	"hauswert/internal/models"
)

// Operating cost share of gross rental income by property type.
var operatingCostRatio = map[models.PropertyType]float64{
	models.PropertyTypeHouse:     0.22,
	models.PropertyTypeApartment: 0.27,
}

// Land interest rate bands by property type. The applied rate moves from
// the high bound at low land values to the low bound at high land values:
// expensive locations price at lower yields.
type rateBand struct {
	low, high float64
}

var landInterestBands = map[models.PropertyType]rateBand{
	models.PropertyTypeHouse:     {low: 0.025, high: 0.045},
	models.PropertyTypeApartment: {low: 0.030, high: 0.050},
}

const (
	landLevelLow  = 100.0 // EUR/m2 at or below which the high bound applies
	landLevelHigh = 800.0 // EUR/m2 at or above which the low bound applies
)

// landInterestRate interpolates the rate within the per-type band,
// inversely related to the land value level.
func landInterestRate(t models.PropertyType, landValuePerSqm float64) float64 {
	band := landInterestBands[t]
	switch {
	case landValuePerSqm <= landLevelLow:
		return band.high
	case landValuePerSqm >= landLevelHigh:
		return band.low
	default:
		pos := (landValuePerSqm - landLevelLow) / (landLevelHigh - landLevelLow)
		return band.high - pos*(band.high-band.low)
	}
}

// capitalizationMultiplier is the present-value annuity factor for the
// given rate over the remaining useful life.
func capitalizationMultiplier(rate float64, years float64) float64 {
	if years <= 0 {
		return 0
	}
	if rate <= 0 {
		return years
	}
	q := math.Pow(1+rate, years)
	return (q - 1) / (q * rate)
}

// IncomeValue computes the income-capitalization cross-check: capitalized
// net building income plus the land value. Returns false when the inputs
// required for the approach are not all present.
func IncomeValue(input models.PropertyInput, rentPerSqm, livingArea, landValueTotal, landValuePerSqm float64, valuationYear int) (float64, bool) {
	if rentPerSqm <= 0 || livingArea <= 0 || landValueTotal <= 0 {
		return 0, false
	}

	grossIncome := rentPerSqm * 12 * livingArea
	netIncome := grossIncome * (1 - operatingCostRatio[input.Type])

	rate := landInterestRate(input.Type, landValuePerSqm)
	landInterest := landValueTotal * rate
	buildingNetIncome := netIncome - landInterest

	class := classify(input.Type, input.SubType)
	tier := NormalizeLevel(input.Fitout, levelFitout)
	modScore := NormalizeLevel(input.Modernization, levelModernization)
	age := 0
	if input.ConstructionYear != nil && *input.ConstructionYear > 0 {
		age = valuationYear - *input.ConstructionYear
		if age < 0 {
			age = 0
		}
	}
	rem := remainingLife(totalLifeTable[class][tier-1], age, modScore)

	capitalized := buildingNetIncome * capitalizationMultiplier(rate, rem)
	if capitalized < 0 {
		capitalized = 0
	}
	return landValueTotal + capitalized, true
}
