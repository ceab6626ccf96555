package valuation

import (
	"fmt"
	"math"

	"hauswert/config"
	"hauswert/internal/models"
)

const (
	// Ceiling for the building component per square meter living area.
	maxBuildingPerSqm = 5000.0

	// Income cross-check deviation threshold and pull parameters.
	incomeDeviationThreshold = 0.25
	incomePullBase           = 0.25
	incomePullSlope          = 0.30
	incomePullMax            = 0.40

	// Land-dominance guard.
	landShareCeiling = 0.70
	landFloorFactor  = 1.5

	// Per-square-meter sanity corridor relative to the regional average.
	perSqmFloorShare   = 0.20
	perSqmCeilingShare = 3.00

	maxPlausibilityPasses = 3
)

// ApplyPlausibility runs the bounded self-correction loop: up to three
// passes of four ordered signals over the total value, stopping early once
// a pass changes nothing beyond rounding. The input result is not mutated.
func ApplyPlausibility(res models.ValuationResult, data models.SourceData, apartment bool, livingArea float64) models.ValuationResult {
	out := res.Clone()
	if livingArea <= 0 || out.TotalValue <= 0 {
		return out
	}

	regionAvg, _ := config.AveragePricePerSqm(data.Region, apartment)
	total := out.TotalValue
	land := out.LandValue

	for pass := 0; pass < maxPlausibilityPasses; pass++ {
		changed := false

		// 1. Cap the building component per square meter.
		if building := total - land; building/livingArea > maxBuildingPerSqm {
			next := land + maxBuildingPerSqm*livingArea
			if round(next) != round(total) {
				out.Notes = append(out.Notes, fmt.Sprintf("building value capped at %.0f EUR/m2", maxBuildingPerSqm))
				total = next
				changed = true
			}
		}

		// 2. Pull toward the income cross-check on large deviation.
		if out.IncomeValue != nil && *out.IncomeValue > 0 {
			income := *out.IncomeValue
			dev := math.Abs(total-income) / income
			if dev > incomeDeviationThreshold {
				strength := incomePullBase + (dev-incomeDeviationThreshold)*incomePullSlope
				if strength > incomePullMax {
					strength = incomePullMax
				}
				next := total + (income-total)*strength
				if round(next) != round(total) {
					out.Notes = append(out.Notes, fmt.Sprintf("value deviates %.0f%% from income cross-check; pulled %.0f%% toward it", dev*100, strength*100))
					total = next
					changed = true
				}
			}
		}

		// 3. Floor the total when the land share dominates.
		if land > 0 && land > total*landShareCeiling {
			next := land * landFloorFactor
			if next > total && round(next) != round(total) {
				out.Notes = append(out.Notes, fmt.Sprintf("land value is %.0f%% of the total; total floored at %.1fx land value", land/total*100, landFloorFactor))
				total = next
				changed = true
			}
		}

		// 4. Clamp the per-square-meter price into the regional corridor.
		if regionAvg > 0 {
			perSqm := total / livingArea
			lo, hi := regionAvg*perSqmFloorShare, regionAvg*perSqmCeilingShare
			clamped := math.Min(math.Max(perSqm, lo), hi)
			if round(clamped*livingArea) != round(total) {
				out.Notes = append(out.Notes, fmt.Sprintf("price of %.0f EUR/m2 clamped into [%.0f, %.0f] EUR/m2 regional corridor", perSqm, lo, hi))
				total = clamped * livingArea
				changed = true
			}
		}

		if !changed {
			break
		}
	}

	if round(total) == out.TotalValue {
		return out
	}

	out.TotalValue = round(total)
	out.BuildingValue = out.TotalValue - out.LandValue
	if out.BuildingValue < 0 {
		// Keep the land/building split additive.
		out.LandValue = out.TotalValue
		out.BuildingValue = 0
	}
	out.PricePerSqm = round(out.TotalValue / livingArea)
	spread := Spread(out.Confidence)
	out.Range = models.ValueRange{
		Min: round(out.TotalValue * (1 - spread)),
		Max: round(out.TotalValue * (1 + spread)),
	}
	return out
}
