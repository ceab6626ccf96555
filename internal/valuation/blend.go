package valuation

import (
	"fmt"

	"hauswert/internal/models"
)

// Sanity guard: a recommendation outside this multiple of the current
// total is silently ignored as degenerate.
const (
	advisoryGuardLow  = 0.20
	advisoryGuardHigh = 5.00

	minorConcernWeight        = 0.30
	minorConcernMinConfidence = 0.70
	majorConcernWeight        = 0.50
	majorConcernMinConfidence = 0.75
)

// ApplyAdvisory blends the external opinion's recommended value into the
// result. It is a no-op unless the opinion voices a concern with enough
// confidence and a recommendation inside the sanity guard band.
func ApplyAdvisory(res models.ValuationResult, op models.AdvisoryOpinion) models.ValuationResult {
	weight := 0.0
	switch op.Status {
	case models.AdvisoryMinorConcern:
		if op.Confidence >= minorConcernMinConfidence {
			weight = minorConcernWeight
		}
	case models.AdvisoryMajorConcern:
		if op.Confidence >= majorConcernMinConfidence {
			weight = majorConcernWeight
		}
	}
	if weight == 0 || op.RecommendedValue == nil || res.TotalValue <= 0 {
		return res
	}

	recommended := *op.RecommendedValue
	if recommended < res.TotalValue*advisoryGuardLow || recommended > res.TotalValue*advisoryGuardHigh {
		return res
	}

	out := res.Clone()
	previous := out.TotalValue
	out.TotalValue = round(previous*(1-weight) + recommended*weight)
	out.BuildingValue = out.TotalValue - out.LandValue
	if out.BuildingValue < 0 {
		out.LandValue = out.TotalValue
		out.BuildingValue = 0
	}
	if previous > 0 {
		shift := (out.TotalValue - previous) / previous * 100
		out.Notes = append(out.Notes, fmt.Sprintf("advisory opinion (%s) shifted the value by %+.1f%% at blend weight %.0f%%", op.Status, shift, weight*100))
		out.PricePerSqm = round(res.PricePerSqm * out.TotalValue / previous)
	}
	spread := Spread(out.Confidence)
	out.Range = models.ValueRange{
		Min: round(out.TotalValue * (1 - spread)),
		Max: round(out.TotalValue * (1 + spread)),
	}
	return out
}
