package valuation

import (
	"fmt"
	"time"

	"hauswert/internal/models"
)

// Flat fallback: 2.5% per year beyond a two-year grace period.
const (
	flatCorrectionPerYear = 0.025
	flatCorrectionGrace   = 2.0
)

// ValuationDateCorrection converts a value fixed at refDate to terms of the
// valuation date. It prefers the real quarterly index ratio and falls back
// to a flat per-year uplift when no index data is available.
func ValuationDateCorrection(series *models.PriceIndexSeries, refDate, valuationDate time.Time) float64 {
	if ratio, ok := indexRatio(series, refDate, valuationDate); ok {
		return ratio - 1
	}
	years := valuationDate.Sub(refDate).Hours() / 24 / 365.25
	if years <= flatCorrectionGrace {
		return 0
	}
	return (years - flatCorrectionGrace) * flatCorrectionPerYear
}

// indexRatio returns indexAt(valuationDate)/indexAt(refDate) using
// nearest-available-quarter lookup.
func indexRatio(series *models.PriceIndexSeries, refDate, valuationDate time.Time) (float64, bool) {
	if series == nil || len(series.Points) == 0 {
		return 0, false
	}
	atRef := lookupQuarter(series.Points, quarterKey(refDate))
	atNow := lookupQuarter(series.Points, quarterKey(valuationDate))
	if atRef <= 0 || atNow <= 0 {
		return 0, false
	}
	return atNow / atRef, true
}

// quarterKey encodes a date as "YYYY-Qn"; the encoding compares
// lexicographically in chronological order.
func quarterKey(t time.Time) string {
	return fmt.Sprintf("%04d-Q%d", t.Year(), (int(t.Month())-1)/3+1)
}

// lookupQuarter finds the index value for a quarter: exact match first,
// else the most recent earlier quarter, else the earliest point available.
// Points are expected in chronological order.
func lookupQuarter(points []models.PriceIndexPoint, key string) float64 {
	for i := len(points) - 1; i >= 0; i-- {
		if points[i].Quarter <= key {
			return points[i].Value
		}
	}
	return points[0].Value
}
