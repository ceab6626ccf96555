package valuation

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"hauswert/internal/models"
)

func TestLandInterestRateInverseToLandLevel(t *testing.T) {
	band := landInterestBands[models.PropertyTypeHouse]

	assert.Equal(t, band.high, landInterestRate(models.PropertyTypeHouse, 50))
	assert.Equal(t, band.low, landInterestRate(models.PropertyTypeHouse, 1200))

	mid := landInterestRate(models.PropertyTypeHouse, 450)
	assert.Less(t, mid, band.high)
	assert.Greater(t, mid, band.low)

	// Strictly non-increasing across the band.
	prev := landInterestRate(models.PropertyTypeHouse, 100)
	for _, lv := range []float64{200, 300, 500, 700, 800} {
		cur := landInterestRate(models.PropertyTypeHouse, lv)
		assert.LessOrEqual(t, cur, prev)
		prev = cur
	}
}

func TestCapitalizationMultiplier(t *testing.T) {
	assert.Equal(t, 20.0, capitalizationMultiplier(0, 20), "zero rate degenerates to the year count")
	assert.Equal(t, 0.0, capitalizationMultiplier(0.05, 0))
	assert.InDelta(t, 12.462, capitalizationMultiplier(0.05, 20), 0.01)
}

func TestIncomeValue(t *testing.T) {
	input := models.PropertyInput{
		Type:             models.PropertyTypeHouse,
		ConstructionYear: intPtr(1985),
	}

	value, ok := IncomeValue(input, 10, 140, 125000, 250, 2025)
	assert.True(t, ok)
	assert.Greater(t, value, 125000.0, "income value includes the land value")

	_, ok = IncomeValue(input, 0, 140, 125000, 250, 2025)
	assert.False(t, ok, "no rent, no income approach")

	_, ok = IncomeValue(input, 10, 140, 0, 0, 2025)
	assert.False(t, ok, "no land value, no income approach")
}
