package sources

import (
	"context"
	"fmt"

	"github.com/paulmach/orb"
	"github.com/sirupsen/logrus"

	"hauswert/config"
	"hauswert/internal/models"
	"hauswert/internal/platform"
)

// RegionalReferenceClient fetches the independent official comparison
// figure. Only some regions publish it; everywhere else the source is
// absent by definition.
type RegionalReferenceClient struct {
	client  *platform.Client
	baseURL string
	logger  *logrus.Logger
}

func NewRegionalReferenceClient(client *platform.Client, baseURL string, logger *logrus.Logger) *RegionalReferenceClient {
	return &RegionalReferenceClient{client: client, baseURL: baseURL, logger: logger}
}

type regionalReferenceResponse struct {
	ValuePerSqm float64 `json:"value_per_sqm"`
	Segment     string  `json:"segment"`
}

// FetchRegionalReferenceValue implements RegionalReferenceSource.
func (r *RegionalReferenceClient) FetchRegionalReferenceValue(ctx context.Context, point orb.Point, region, segment string) (*models.RegionalReferenceValue, error) {
	cfg := config.GetRegionByName(region)
	if cfg == nil || !cfg.HasRegionalRefValue || r.baseURL == "" {
		return nil, nil
	}

	url := fmt.Sprintf("%s?region=%s&segment=%s&lat=%.6f&lon=%.6f", r.baseURL, region, segment, point.Lat(), point.Lon())

	var resp regionalReferenceResponse
	if err := r.client.GetJSON(ctx, url, &resp); err != nil {
		return nil, fmt.Errorf("regional reference fetch failed: %w", err)
	}
	if resp.ValuePerSqm <= 0 {
		return nil, nil
	}

	return &models.RegionalReferenceValue{
		ValuePerSqm: resp.ValuePerSqm,
		Segment:     resp.Segment,
		Source:      "regional-reference",
	}, nil
}
