package sources

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"hauswert/internal/models"
	"hauswert/internal/platform"
)

// PriceIndexClient fetches the quarterly price index with a process-wide
// cache. The series changes once a quarter; a 30-day TTL is generous.
type PriceIndexClient struct {
	client *platform.Client
	url    string
	ttl    time.Duration
	logger *logrus.Logger

	mu        sync.Mutex
	cached    *models.PriceIndexSeries
	fetchedAt time.Time
}

func NewPriceIndexClient(client *platform.Client, url string, ttl time.Duration, logger *logrus.Logger) *PriceIndexClient {
	return &PriceIndexClient{client: client, url: url, ttl: ttl, logger: logger}
}

type priceIndexResponse struct {
	Points []models.PriceIndexPoint `json:"points"`
}

// FetchPriceIndex implements PriceIndexSource. An unconfigured URL or a
// failed fetch resolves to absent; a stale cached series is preferred over
// nothing.
func (p *PriceIndexClient) FetchPriceIndex(ctx context.Context) (*models.PriceIndexSeries, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.cached != nil && time.Since(p.fetchedAt) < p.ttl {
		return p.cached, nil
	}
	if p.url == "" {
		return nil, nil
	}

	var resp priceIndexResponse
	if err := p.client.GetJSON(ctx, p.url, &resp); err != nil {
		if p.cached != nil {
			p.logger.WithError(err).Warn("Price index refresh failed; serving stale series")
			return p.cached, nil
		}
		return nil, err
	}

	sort.Slice(resp.Points, func(i, j int) bool { return resp.Points[i].Quarter < resp.Points[j].Quarter })
	p.cached = &models.PriceIndexSeries{Points: resp.Points, Source: "price-index"}
	p.fetchedAt = time.Now()
	return p.cached, nil
}

// CostIndexClient fetches the construction cost index, cached process-wide
// for 90 days.
type CostIndexClient struct {
	client *platform.Client
	url    string
	ttl    time.Duration
	logger *logrus.Logger

	mu        sync.Mutex
	cached    *models.ConstructionCostIndexPoint
	fetchedAt time.Time
}

func NewCostIndexClient(client *platform.Client, url string, ttl time.Duration, logger *logrus.Logger) *CostIndexClient {
	return &CostIndexClient{client: client, url: url, ttl: ttl, logger: logger}
}

type costIndexResponse struct {
	Current float64 `json:"current"`
	Base    float64 `json:"base"`
	Label   string  `json:"label"`
}

// FetchConstructionCostIndex implements CostIndexSource.
func (c *CostIndexClient) FetchConstructionCostIndex(ctx context.Context) (*models.ConstructionCostIndexPoint, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cached != nil && time.Since(c.fetchedAt) < c.ttl {
		return c.cached, nil
	}
	if c.url == "" {
		return nil, nil
	}

	var resp costIndexResponse
	if err := c.client.GetJSON(ctx, c.url, &resp); err != nil {
		if c.cached != nil {
			c.logger.WithError(err).Warn("Cost index refresh failed; serving stale point")
			return c.cached, nil
		}
		return nil, err
	}
	if resp.Current <= 0 || resp.Base <= 0 {
		return nil, nil
	}

	c.cached = &models.ConstructionCostIndexPoint{
		Current: resp.Current,
		Base:    resp.Base,
		Label:   resp.Label,
		Source:  "cost-index",
	}
	c.fetchedAt = time.Now()
	return c.cached, nil
}
