// Package sources holds the clients for the independently-failing
// external data services. Every fetch returns (nil, error) or (nil, nil)
// for "absent"; the orchestrator treats all three outcomes the same way
// and degrades instead of failing.
package sources

import (
	"context"

	"github.com/paulmach/orb"

	"hauswert/internal/models"
)

type LandValueSource interface {
	FetchLandValue(ctx context.Context, point orb.Point, region string) (*models.ReferenceLandValue, error)
}

type MarketSource interface {
	FetchMarketSample(ctx context.Context, region, locality, district string) (*models.MarketPriceSample, error)
}

type PriceIndexSource interface {
	FetchPriceIndex(ctx context.Context) (*models.PriceIndexSeries, error)
}

type CostIndexSource interface {
	FetchConstructionCostIndex(ctx context.Context) (*models.ConstructionCostIndexPoint, error)
}

type RegionalReferenceSource interface {
	FetchRegionalReferenceValue(ctx context.Context, point orb.Point, region, segment string) (*models.RegionalReferenceValue, error)
}
