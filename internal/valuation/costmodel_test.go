package valuation

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"hauswert/internal/models"
)

func TestMarketAdjustmentMonotoneInLandBracket(t *testing.T) {
	provisionals := []float64{30000, 75000, 150000, 350000, 800000}
	landLevels := []float64{10, 100, 200, 400, 900}

	for _, prov := range provisionals {
		prev := marketAdjustment(prov, landLevels[0])
		for _, land := range landLevels[1:] {
			cur := marketAdjustment(prov, land)
			assert.GreaterOrEqual(t, cur, prev, "provisional %.0f, land %.0f", prov, land)
			prev = cur
		}
	}
}

func TestRemainingLife(t *testing.T) {
	// Plain straight-line aging.
	assert.Equal(t, 30.0, remainingLife(70, 40, 1))

	// Never negative.
	assert.Equal(t, 0.0, remainingLife(70, 90, 1))

	// Modernization raises the remaining life to a tier share.
	assert.Equal(t, 35.0, remainingLife(70, 60, 5), "score 5 guarantees half of total life")

	// But never decreases it.
	assert.Equal(t, 60.0, remainingLife(70, 10, 5))
}

func TestReplacementCostAgedOutBuilding(t *testing.T) {
	input := models.PropertyInput{
		Type:             models.PropertyTypeHouse,
		ConstructionYear: intPtr(1920),
		Modernization:    scoreLevel(1),
		Fitout:           scoreLevel(1),
	}

	value, notes := ReplacementCost(input, 120, 200, nil, 2025)

	assert.GreaterOrEqual(t, value, 0.0)
	assert.Equal(t, 0.0, value, "no remaining life and no modernization floor")
	assert.NotEmpty(t, notes, "age beyond total life must be noted")
}

func TestReplacementCostUsesCostIndex(t *testing.T) {
	input := models.PropertyInput{
		Type:             models.PropertyTypeHouse,
		ConstructionYear: intPtr(2010),
	}
	base, _ := ReplacementCost(input, 120, 200, nil, 2025)
	indexed, _ := ReplacementCost(input, 120, 200, &models.ConstructionCostIndexPoint{Current: 105, Base: 100}, 2025)

	assert.Greater(t, base, 0.0)
	assert.InDelta(t, base*1.05, indexed, base*0.001, "cost index scales the replacement cost")
}
