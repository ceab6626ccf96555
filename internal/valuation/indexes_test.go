package valuation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"hauswert/internal/models"
)

func TestQuarterKey(t *testing.T) {
	assert.Equal(t, "2024-Q1", quarterKey(time.Date(2024, 2, 15, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, "2024-Q4", quarterKey(time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC)))
}

func TestLookupQuarter(t *testing.T) {
	points := []models.PriceIndexPoint{
		{Quarter: "2021-Q1", Value: 100},
		{Quarter: "2022-Q3", Value: 110},
		{Quarter: "2024-Q1", Value: 120},
	}

	assert.Equal(t, 110.0, lookupQuarter(points, "2022-Q3"), "exact match")
	assert.Equal(t, 110.0, lookupQuarter(points, "2023-Q2"), "most recent earlier quarter")
	assert.Equal(t, 100.0, lookupQuarter(points, "2019-Q4"), "earliest available as last resort")
	assert.Equal(t, 120.0, lookupQuarter(points, "2025-Q1"))
}

func TestValuationDateCorrectionIndexRatio(t *testing.T) {
	series := &models.PriceIndexSeries{
		Points: []models.PriceIndexPoint{
			{Quarter: "2020-Q1", Value: 100},
			{Quarter: "2025-Q2", Value: 120},
		},
	}
	ref := time.Date(2020, 2, 1, 0, 0, 0, 0, time.UTC)
	now := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)

	assert.InDelta(t, 0.20, ValuationDateCorrection(series, ref, now), 1e-9)
}

func TestValuationDateCorrectionFlatFallback(t *testing.T) {
	now := time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC)

	recent := now.AddDate(-1, 0, 0)
	assert.Equal(t, 0.0, ValuationDateCorrection(nil, recent, now), "within the two-year grace period")

	stale := now.AddDate(-6, 0, 0)
	assert.InDelta(t, 0.10, ValuationDateCorrection(nil, stale, now), 0.002, "2.5% per year beyond two years")

	empty := &models.PriceIndexSeries{}
	assert.InDelta(t, 0.10, ValuationDateCorrection(empty, stale, now), 0.002, "empty series falls back too")
}
