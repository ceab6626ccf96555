package valuation

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"hauswert/internal/models"
)

func plainResult(total, land float64) models.ValuationResult {
	return models.ValuationResult{
		Method:        models.MethodCostLite,
		LandValue:     land,
		BuildingValue: total - land,
		TotalValue:    total,
		Confidence:    models.ConfidenceLow,
	}
}

func TestPlausibilityBuildingCap(t *testing.T) {
	res := plainResult(600000, 0)
	data := models.SourceData{ValuationDate: testDate()}

	out := ApplyPlausibility(res, data, false, 100)

	assert.Equal(t, 500000.0, out.TotalValue, "5000 EUR/m2 cap over 100 m2")
	assert.NotEmpty(t, out.Notes)
	assert.Equal(t, 600000.0, res.TotalValue, "input result must not be mutated")
}

func TestPlausibilityIncomePull(t *testing.T) {
	res := plainResult(130000, 0)
	res.IncomeValue = floatPtr(100000)
	data := models.SourceData{ValuationDate: testDate()}

	out := ApplyPlausibility(res, data, false, 100)

	// Deviation 30% -> strength 25% + 5%*0.3 = 26.5% -> 130000 - 30000*0.265.
	assert.Equal(t, 122050.0, out.TotalValue)
	assert.NotEmpty(t, out.Notes)
}

func TestPlausibilityLandDominanceFloor(t *testing.T) {
	res := plainResult(100000, 80000)
	data := models.SourceData{ValuationDate: testDate()}

	out := ApplyPlausibility(res, data, false, 100)

	assert.Equal(t, 120000.0, out.TotalValue, "floored at 1.5x the land value")
	assert.Equal(t, out.LandValue+out.BuildingValue, out.TotalValue)
}

func TestPlausibilityPerSqmClamp(t *testing.T) {
	// 500 EUR/m2 against the bayern house average of 3900 is below the 20%
	// floor of the regional corridor.
	res := plainResult(50000, 0)
	data := models.SourceData{Region: "bayern", ValuationDate: testDate()}

	out := ApplyPlausibility(res, data, false, 100)

	assert.Equal(t, 78000.0, out.TotalValue)
	assert.Equal(t, 780.0, out.PricePerSqm)
}

func TestPlausibilityConvergesAndIsIdempotent(t *testing.T) {
	res := plainResult(130000, 0)
	res.IncomeValue = floatPtr(100000)
	data := models.SourceData{ValuationDate: testDate()}

	corrected := ApplyPlausibility(res, data, false, 100)
	again := ApplyPlausibility(corrected, data, false, 100)

	assert.Equal(t, corrected, again, "a further pass over a converged result changes nothing")
}

func TestPlausibilityNoSignalNoChange(t *testing.T) {
	res := plainResult(320000, 125000)
	res.Range = models.ValueRange{Min: 294400, Max: 345600}
	data := models.SourceData{Region: "bayern", ValuationDate: testDate()}

	out := ApplyPlausibility(res, data, false, 140)

	assert.Equal(t, res, out)
}
