package valuation

import (
	"fmt"
	"strings"

	"hauswert/internal/models"
)

// buildingClass keys the standardized cost tables.
type buildingClass int

const (
	classSingleFamily buildingClass = iota
	classMultiFamily
	classApartment
)

// classify derives the cost-table class from the property type and the
// sub-type text.
func classify(t models.PropertyType, subType string) buildingClass {
	if t == models.PropertyTypeApartment {
		return classApartment
	}
	if strings.Contains(strings.ToLower(subType), "multi-family") {
		return classMultiFamily
	}
	return classSingleFamily
}

// Standardized construction cost per square meter gross floor area, indexed
// by quality tier 1-5 at the cost-index base year.
var costTable = map[buildingClass][5]float64{
	classSingleFamily: {1100, 1300, 1500, 1800, 2200},
	classMultiFamily:  {1000, 1150, 1350, 1600, 1950},
	classApartment:    {1050, 1200, 1400, 1700, 2100},
}

// Living area to gross floor area multiplier. Higher tiers carry more
// circulation and ancillary space.
var grossFloorAreaFactor = map[buildingClass][5]float64{
	classSingleFamily: {1.25, 1.27, 1.30, 1.32, 1.35},
	classMultiFamily:  {1.20, 1.22, 1.25, 1.27, 1.30},
	classApartment:    {1.18, 1.20, 1.22, 1.25, 1.28},
}

// Total useful life in years by class and tier.
var totalLifeTable = map[buildingClass][5]float64{
	classSingleFamily: {60, 65, 70, 75, 80},
	classMultiFamily:  {50, 55, 60, 65, 70},
	classApartment:    {60, 65, 70, 75, 80},
}

// Modernization guarantees a minimum share of total life, by modernization
// score. It never shortens the remaining life.
var minRemainingShare = map[int]float64{1: 0, 2: 0.2, 3: 0.3, 4: 0.4, 5: 0.5}

// Market adjustment brackets: rows by provisional building value, columns
// by land value per square meter. Each row is non-decreasing left to right.
var marketAdjustmentValueBrackets = []float64{50000, 100000, 200000, 500000}
var marketAdjustmentLandBrackets = []float64{50, 150, 300, 500}
var marketAdjustmentTable = [5][5]float64{
	{0.70, 0.80, 0.90, 1.00, 1.10},
	{0.75, 0.85, 0.95, 1.05, 1.15},
	{0.80, 0.90, 1.00, 1.10, 1.20},
	{0.85, 0.95, 1.05, 1.15, 1.25},
	{0.90, 1.00, 1.10, 1.20, 1.30},
}

func bracketIndex(v float64, bounds []float64) int {
	for i, b := range bounds {
		if v < b {
			return i
		}
	}
	return len(bounds)
}

// marketAdjustment aligns a theoretical replacement cost with observed
// market behavior for the location's land value level.
func marketAdjustment(provisionalValue, landValuePerSqm float64) float64 {
	row := bracketIndex(provisionalValue, marketAdjustmentValueBrackets)
	col := bracketIndex(landValuePerSqm, marketAdjustmentLandBrackets)
	return marketAdjustmentTable[row][col]
}

// remainingLife applies straight-line aging and the modernization floor.
func remainingLife(totalLife float64, age int, modernizationScore int) float64 {
	rem := totalLife - float64(age)
	if rem < 0 {
		rem = 0
	}
	if floor := totalLifeShareFloor(totalLife, modernizationScore); rem < floor {
		rem = floor
	}
	return rem
}

func totalLifeShareFloor(totalLife float64, modernizationScore int) float64 {
	return totalLife * minRemainingShare[modernizationScore]
}

// ReplacementCost computes the depreciated, market-adjusted replacement
// value of the building per the standardized cost table.
func ReplacementCost(input models.PropertyInput, livingArea float64, landValuePerSqm float64, costIndex *models.ConstructionCostIndexPoint, valuationYear int) (float64, []string) {
	var notes []string

	class := classify(input.Type, input.SubType)
	tier := NormalizeLevel(input.Fitout, levelFitout)
	modScore := NormalizeLevel(input.Modernization, levelModernization)

	baseCost := costTable[class][tier-1]
	grossFloorArea := livingArea * grossFloorAreaFactor[class][tier-1]

	indexRatio := 1.0
	if costIndex != nil && costIndex.Base > 0 && costIndex.Current > 0 {
		indexRatio = costIndex.Current / costIndex.Base
	}

	age := 0
	if input.ConstructionYear != nil && *input.ConstructionYear > 0 {
		age = valuationYear - *input.ConstructionYear
		if age < 0 {
			age = 0
		}
	}

	totalLife := totalLifeTable[class][tier-1]
	if float64(age) > totalLife {
		notes = append(notes, fmt.Sprintf("building age %d exceeds total useful life of %.0f years; residual value applied", age, totalLife))
	}
	rem := remainingLife(totalLife, age, modScore)

	provisional := baseCost * grossFloorArea * indexRatio * (rem / totalLife)
	value := provisional * marketAdjustment(provisional, landValuePerSqm)
	if value < 0 {
		value = 0
	}
	return value, notes
}
