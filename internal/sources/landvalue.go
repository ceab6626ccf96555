package sources

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/paulmach/orb"
	"github.com/sirupsen/logrus"

	"hauswert/config"
	"hauswert/internal/models"
	"hauswert/internal/platform"
)

// ErrNoAdapter marks a region without a registered land-value adapter; the
// orchestrator resolves it to an absent source.
var ErrNoAdapter = errors.New("no land value adapter for region")

// LandValueAdapter is one region's client against its geo-data service.
// Retries and format negotiation are the adapter's own business.
type LandValueAdapter interface {
	Fetch(ctx context.Context, point orb.Point) (*models.ReferenceLandValue, error)
}

// LandValueRegistry dispatches land-value lookups to the per-region
// adapter.
type LandValueRegistry struct {
	mu       sync.RWMutex
	adapters map[string]LandValueAdapter
	logger   *logrus.Logger
}

func NewLandValueRegistry(logger *logrus.Logger) *LandValueRegistry {
	return &LandValueRegistry{
		adapters: make(map[string]LandValueAdapter),
		logger:   logger,
	}
}

// Register installs the adapter for a region, replacing any previous one.
func (r *LandValueRegistry) Register(region string, adapter LandValueAdapter) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.adapters[strings.ToLower(region)] = adapter
}

// FetchLandValue implements LandValueSource.
func (r *LandValueRegistry) FetchLandValue(ctx context.Context, point orb.Point, region string) (*models.ReferenceLandValue, error) {
	r.mu.RLock()
	adapter, ok := r.adapters[strings.ToLower(region)]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNoAdapter, region)
	}
	return adapter.Fetch(ctx, point)
}

// httpLandValueAdapter speaks the common WFS-style JSON dialect most
// regional services expose.
type httpLandValueAdapter struct {
	client *platform.Client
	url    string
	source string
}

// NewHTTPLandValueAdapter builds an adapter for one region from the URL
// template (the single %s is replaced with the region name).
func NewHTTPLandValueAdapter(client *platform.Client, urlTemplate, region string) LandValueAdapter {
	return &httpLandValueAdapter{
		client: client,
		url:    fmt.Sprintf(urlTemplate, region),
		source: "boris-" + region,
	}
}

type landValueResponse struct {
	ValuePerSqm   float64 `json:"value_per_sqm"`
	ReferenceDate string  `json:"reference_date"`
	UsageClass    string  `json:"usage_class"`
	Zone          string  `json:"zone"`
	Municipality  string  `json:"municipality"`
	Official      bool    `json:"official"`
}

func (a *httpLandValueAdapter) Fetch(ctx context.Context, point orb.Point) (*models.ReferenceLandValue, error) {
	url := fmt.Sprintf("%s?lat=%.6f&lon=%.6f", a.url, point.Lat(), point.Lon())

	var resp landValueResponse
	if err := a.client.GetJSON(ctx, url, &resp); err != nil {
		return nil, fmt.Errorf("land value fetch failed: %w", err)
	}
	if resp.ValuePerSqm <= 0 {
		return nil, fmt.Errorf("land value service returned no usable value")
	}

	refDate, err := time.Parse("2006-01-02", resp.ReferenceDate)
	if err != nil {
		// A missing reference date is tolerable; the index correction
		// then treats the value as current.
		refDate = time.Now()
	}

	return &models.ReferenceLandValue{
		ValuePerSqm:   resp.ValuePerSqm,
		ReferenceDate: refDate,
		UsageClass:    resp.UsageClass,
		Zone:          resp.Zone,
		Municipality:  resp.Municipality,
		Official:      resp.Official,
		Source:        a.source,
	}, nil
}

// DefaultLandValueRegistry registers an HTTP adapter for every supported
// region. With no URL template configured the registry stays empty and all
// land-value lookups resolve absent.
func DefaultLandValueRegistry(client *platform.Client, urlTemplate string, logger *logrus.Logger) *LandValueRegistry {
	registry := NewLandValueRegistry(logger)
	if urlTemplate == "" {
		logger.Warn("No land value URL template configured; land values will be absent")
		return registry
	}
	for _, region := range config.GetRegionNames() {
		registry.Register(region, NewHTTPLandValueAdapter(client, urlTemplate, region))
	}
	return registry
}
