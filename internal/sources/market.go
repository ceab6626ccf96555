package sources

import (
	"context"
	"fmt"
	"net/url"

	"github.com/sirupsen/logrus"

	"hauswert/internal/models"
	"hauswert/internal/platform"
)

// Bounded fallback chain: district stats, locality stats, locality with a
// widened period, then region-wide stats. After that the source is absent.
const maxMarketAttempts = 4

// MarketClient fetches scraped listing statistics with a sequential
// fallback chain over ever-coarser granularities.
type MarketClient struct {
	client  *platform.Client
	baseURL string
	logger  *logrus.Logger
}

func NewMarketClient(client *platform.Client, baseURL string, logger *logrus.Logger) *MarketClient {
	return &MarketClient{client: client, baseURL: baseURL, logger: logger}
}

type marketBand struct {
	Min    float64 `json:"min"`
	Median float64 `json:"median"`
	Max    float64 `json:"max"`
}

type marketStatsResponse struct {
	HousePurchase     *marketBand `json:"house_purchase"`
	ApartmentPurchase *marketBand `json:"apartment_purchase"`
	HouseRent         *marketBand `json:"house_rent"`
	ApartmentRent     *marketBand `json:"apartment_rent"`
	Period            string      `json:"period"`
}

type marketAttempt struct {
	granularity string
	params      url.Values
}

func (m *MarketClient) attempts(region, locality, district string) []marketAttempt {
	var out []marketAttempt
	if district != "" && locality != "" {
		out = append(out, marketAttempt{"district", url.Values{"locality": {locality}, "district": {district}}})
	}
	if locality != "" {
		out = append(out, marketAttempt{"city", url.Values{"locality": {locality}}})
		out = append(out, marketAttempt{"city", url.Values{"locality": {locality}, "period": {"24m"}}})
	}
	if region != "" {
		out = append(out, marketAttempt{"region", url.Values{"region": {region}}})
	}
	if len(out) > maxMarketAttempts {
		out = out[:maxMarketAttempts]
	}
	return out
}

// FetchMarketSample implements MarketSource. It returns (nil, nil) when
// the chain is exhausted without data.
func (m *MarketClient) FetchMarketSample(ctx context.Context, region, locality, district string) (*models.MarketPriceSample, error) {
	if m.baseURL == "" {
		return nil, nil
	}

	var lastErr error
	for _, attempt := range m.attempts(region, locality, district) {
		sample, err := m.fetch(ctx, attempt)
		if err != nil {
			lastErr = err
			m.logger.WithError(err).WithField("granularity", attempt.granularity).Debug("Market stats attempt failed")
			continue
		}
		if sample != nil {
			return sample, nil
		}
	}

	if lastErr != nil {
		return nil, fmt.Errorf("market sample chain exhausted: %w", lastErr)
	}
	return nil, nil
}

func (m *MarketClient) fetch(ctx context.Context, attempt marketAttempt) (*models.MarketPriceSample, error) {
	var resp marketStatsResponse
	if err := m.client.GetJSON(ctx, m.baseURL+"/stats?"+attempt.params.Encode(), &resp); err != nil {
		return nil, err
	}

	sample := &models.MarketPriceSample{
		HousePurchase:     toBand(resp.HousePurchase),
		ApartmentPurchase: toBand(resp.ApartmentPurchase),
		HouseRent:         toBand(resp.HouseRent),
		ApartmentRent:     toBand(resp.ApartmentRent),
		Granularity:       attempt.granularity,
		Period:            resp.Period,
		Source:            "listing-stats",
	}
	if sample.HousePurchase == nil && sample.ApartmentPurchase == nil {
		// An empty response is not an error, just no data at this level.
		return nil, nil
	}
	return sample, nil
}

func toBand(b *marketBand) *models.PriceBand {
	if b == nil || b.Median <= 0 {
		return nil
	}
	return &models.PriceBand{Min: b.Min, Median: b.Median, Max: b.Max}
}
