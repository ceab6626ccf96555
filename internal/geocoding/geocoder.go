package geocoding

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/paulmach/orb"
	"github.com/sirupsen/logrus"
)

// Location is a resolved address: coordinates plus the administrative tags
// the data sources are keyed by.
type Location struct {
	Point    orb.Point `json:"point"`
	Region   string    `json:"region"`
	Locality string    `json:"locality"`
	District string    `json:"district"`
}

// CoordKey buckets a point to four decimals (roughly 10 m); land values
// are constant at that resolution, so it doubles as the cache key.
func CoordKey(p orb.Point) string {
	return fmt.Sprintf("%.4f:%.4f", p.Lat(), p.Lon())
}

type Geocoder struct {
	logger    *logrus.Logger
	baseURL   string
	cacheDir  string
	cache     map[string]*Location
	cacheLock sync.RWMutex
	client    *http.Client
}

func NewGeocoder(logger *logrus.Logger, cacheDir, baseURL string, timeout time.Duration) *Geocoder {
	os.MkdirAll(cacheDir, 0755)

	g := &Geocoder{
		logger:   logger,
		baseURL:  strings.TrimRight(baseURL, "/"),
		cacheDir: cacheDir,
		cache:    make(map[string]*Location),
		client:   &http.Client{Timeout: timeout},
	}

	g.loadCache()
	return g
}

func (g *Geocoder) loadCache() {
	cacheFile := filepath.Join(g.cacheDir, "geocode_cache.json")
	data, err := os.ReadFile(cacheFile)
	if err != nil {
		g.logger.Warnf("Could not load geocode cache: %v", err)
		return
	}

	if err := json.Unmarshal(data, &g.cache); err != nil {
		g.logger.Errorf("Failed to parse geocode cache: %v", err)
		return
	}

	g.logger.Infof("Loaded %d cached addresses", len(g.cache))
}

func (g *Geocoder) saveCache() {
	g.cacheLock.RLock()
	defer g.cacheLock.RUnlock()

	cacheFile := filepath.Join(g.cacheDir, "geocode_cache.json")
	data, err := json.Marshal(g.cache)
	if err != nil {
		g.logger.Errorf("Failed to marshal geocode cache: %v", err)
		return
	}

	if err := os.WriteFile(cacheFile, data, 0644); err != nil {
		g.logger.Errorf("Failed to save geocode cache: %v", err)
	}
}

type nominatimResponse []struct {
	Lat     string `json:"lat"`
	Lon     string `json:"lon"`
	Address struct {
		State        string `json:"state"`
		City         string `json:"city"`
		Town         string `json:"town"`
		Village      string `json:"village"`
		Suburb       string `json:"suburb"`
		CityDistrict string `json:"city_district"`
	} `json:"address"`
}

// Geocode resolves a free-text address to coordinates and administrative
// tags. Results are cached indefinitely; addresses do not move.
func (g *Geocoder) Geocode(ctx context.Context, address string) (*Location, error) {
	g.cacheLock.RLock()
	if loc, ok := g.cache[address]; ok {
		g.cacheLock.RUnlock()
		g.logger.WithFields(logrus.Fields{"address": address, "source": "cache"}).Debug("Found address in geocode cache")
		return loc, nil
	}
	g.cacheLock.RUnlock()

	g.logger.WithField("address", address).Info("Geocoding address")

	params := url.Values{
		"q":              []string{address},
		"format":         []string{"json"},
		"limit":          []string{"1"},
		"countrycodes":   []string{"de"},
		"addressdetails": []string{"1"},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+"/search", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.URL.RawQuery = params.Encode()
	req.Header.Set("User-Agent", "hauswert/1.0")

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("geocoding request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	var result nominatimResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	if len(result) == 0 {
		return nil, fmt.Errorf("no results found for address: %s", address)
	}

	lat, err := strconv.ParseFloat(result[0].Lat, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid latitude in response: %w", err)
	}
	lon, err := strconv.ParseFloat(result[0].Lon, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid longitude in response: %w", err)
	}

	addr := result[0].Address
	locality := addr.City
	if locality == "" {
		locality = addr.Town
	}
	if locality == "" {
		locality = addr.Village
	}
	district := addr.Suburb
	if district == "" {
		district = addr.CityDistrict
	}

	loc := &Location{
		Point:    orb.Point{lon, lat},
		Region:   NormalizeRegion(addr.State),
		Locality: strings.ToLower(locality),
		District: strings.ToLower(district),
	}

	g.logger.WithFields(logrus.Fields{
		"address":   address,
		"latitude":  lat,
		"longitude": lon,
		"region":    loc.Region,
		"locality":  loc.Locality,
	}).Info("Successfully geocoded address")

	g.cacheLock.Lock()
	g.cache[address] = loc
	g.cacheLock.Unlock()

	go g.saveCache()

	return loc, nil
}

var regionReplacer = strings.NewReplacer("ä", "ae", "ö", "oe", "ü", "ue", "ß", "ss", " ", "-")

// NormalizeRegion maps a geocoder state label onto the region names used
// by the adapter registry and the average-price table.
func NormalizeRegion(state string) string {
	return regionReplacer.Replace(strings.ToLower(strings.TrimSpace(state)))
}
