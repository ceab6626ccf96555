package orchestrator

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/paulmach/orb"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hauswert/internal/cache"
	"hauswert/internal/database"
	"hauswert/internal/geocoding"
	"hauswert/internal/models"
)

type stubGeocoder struct {
	loc *geocoding.Location
	err error
}

func (s *stubGeocoder) Geocode(ctx context.Context, address string) (*geocoding.Location, error) {
	return s.loc, s.err
}

type stubLandSource struct {
	value *models.ReferenceLandValue
	err   error
	calls int
}

func (s *stubLandSource) FetchLandValue(ctx context.Context, point orb.Point, region string) (*models.ReferenceLandValue, error) {
	s.calls++
	return s.value, s.err
}

type stubMarketSource struct {
	sample *models.MarketPriceSample
	err    error
	calls  int
}

func (s *stubMarketSource) FetchMarketSample(ctx context.Context, region, locality, district string) (*models.MarketPriceSample, error) {
	s.calls++
	return s.sample, s.err
}

type stubPriceIndex struct {
	series *models.PriceIndexSeries
	err    error
}

func (s *stubPriceIndex) FetchPriceIndex(ctx context.Context) (*models.PriceIndexSeries, error) {
	return s.series, s.err
}

type stubCostIndex struct {
	point *models.ConstructionCostIndexPoint
	err   error
}

func (s *stubCostIndex) FetchConstructionCostIndex(ctx context.Context) (*models.ConstructionCostIndexPoint, error) {
	return s.point, s.err
}

type stubRegional struct {
	value *models.RegionalReferenceValue
	err   error
}

func (s *stubRegional) FetchRegionalReferenceValue(ctx context.Context, point orb.Point, region, segment string) (*models.RegionalReferenceValue, error) {
	return s.value, s.err
}

type memoryHistory struct {
	records []*database.ValuationRecord
}

func (m *memoryHistory) SaveValuation(rec *database.ValuationRecord) error {
	m.records = append(m.records, rec)
	return nil
}

func testTimeouts() Timeouts {
	return Timeouts{
		LandValue:  time.Second,
		Market:     time.Second,
		PriceIndex: time.Second,
		CostIndex:  time.Second,
		Regional:   time.Second,
	}
}

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return logger
}

func munichLocation() *geocoding.Location {
	return &geocoding.Location{
		Point:    orb.Point{11.5755, 48.1372},
		Region:   "bayern",
		Locality: "muenchen",
	}
}

func houseInput() models.PropertyInput {
	area := 140.0
	plot := 500.0
	year := 1985
	return models.PropertyInput{
		Type:             models.PropertyTypeHouse,
		LivingArea:       &area,
		PlotArea:         &plot,
		ConstructionYear: &year,
	}
}

func TestEvaluateAddressSurvivesAllSourceFailures(t *testing.T) {
	deps := Deps{
		Geocoder:  &stubGeocoder{loc: munichLocation()},
		LandValue: &stubLandSource{err: errors.New("land service down")},
		Market:    &stubMarketSource{err: errors.New("market service down")},
		PriceIdx:  &stubPriceIndex{err: errors.New("index service down")},
		CostIdx:   &stubCostIndex{err: errors.New("index service down")},
		Regional:  &stubRegional{err: errors.New("reference service down")},
		Timeouts:  testTimeouts(),
		Logger:    quietLogger(),
	}
	o := New(deps)

	result, data, err := o.EvaluateAddress(context.Background(), "Musterweg 1, München", houseInput())
	require.NoError(t, err)

	// Region was resolved, so the average table still yields a value.
	assert.Equal(t, "bayern", data.Region)
	assert.Nil(t, data.LandValue)
	assert.Equal(t, models.MethodMarketIndication, result.Method)
	assert.Equal(t, models.ConfidenceLow, result.Confidence)
	assert.Greater(t, result.TotalValue, 0.0)
}

func TestEvaluateAddressGeocodeFailure(t *testing.T) {
	deps := Deps{
		Geocoder:  &stubGeocoder{err: errors.New("no results")},
		LandValue: &stubLandSource{},
		Market:    &stubMarketSource{},
		PriceIdx:  &stubPriceIndex{},
		CostIdx:   &stubCostIndex{},
		Regional:  &stubRegional{},
		Timeouts:  testTimeouts(),
		Logger:    quietLogger(),
	}
	o := New(deps)

	result, data, err := o.EvaluateAddress(context.Background(), "???", houseInput())
	require.NoError(t, err)

	assert.Empty(t, data.Region)
	assert.Equal(t, models.MethodMarketIndication, result.Method)
	assert.Equal(t, models.ConfidenceMinimal, result.Confidence)
	assert.Contains(t, result.Notes, "address could not be resolved; regional data sources were skipped")
}

func TestGatherUsesCaches(t *testing.T) {
	land := &stubLandSource{value: &models.ReferenceLandValue{
		ValuePerSqm:   250,
		ReferenceDate: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		Official:      true,
		Source:        "boris-bayern",
	}}
	market := &stubMarketSource{sample: &models.MarketPriceSample{
		HousePurchase: &models.PriceBand{Min: 2100, Median: 2400, Max: 2700},
		Granularity:   "city",
		Source:        "listing-stats",
	}}

	deps := Deps{
		Geocoder:    &stubGeocoder{loc: munichLocation()},
		LandValue:   land,
		Market:      market,
		PriceIdx:    &stubPriceIndex{},
		CostIdx:     &stubCostIndex{},
		Regional:    &stubRegional{},
		LandCache:   cache.New("land", time.Hour, quietLogger()),
		MarketCache: cache.New("market", time.Hour, quietLogger()),
		Timeouts:    testTimeouts(),
		Logger:      quietLogger(),
	}
	o := New(deps)

	first, _, err := o.EvaluateAddress(context.Background(), "Musterweg 1, München", houseInput())
	require.NoError(t, err)
	second, _, err := o.EvaluateAddress(context.Background(), "Musterweg 1, München", houseInput())
	require.NoError(t, err)

	assert.Equal(t, 1, land.calls)
	assert.Equal(t, 1, market.calls)
	assert.Equal(t, first.TotalValue, second.TotalValue)
	assert.Equal(t, models.MethodCostLite, first.Method)
}

func TestValuationHistoryIsRecorded(t *testing.T) {
	history := &memoryHistory{}
	deps := Deps{
		Geocoder:  &stubGeocoder{loc: munichLocation()},
		LandValue: &stubLandSource{},
		Market:    &stubMarketSource{},
		PriceIdx:  &stubPriceIndex{},
		CostIdx:   &stubCostIndex{},
		Regional:  &stubRegional{},
		History:   history,
		Timeouts:  testTimeouts(),
		Logger:    quietLogger(),
	}
	o := New(deps)

	result, _, err := o.EvaluateAddress(context.Background(), "Musterweg 1, München", houseInput())
	require.NoError(t, err)

	require.Len(t, history.records, 1)
	rec := history.records[0]
	assert.Equal(t, "Musterweg 1, München", rec.Address)
	assert.Equal(t, "bayern", rec.Region)
	assert.Equal(t, result.TotalValue, rec.TotalValue)
	assert.Equal(t, string(result.Confidence), rec.Confidence)
}

type fixedAdvisory struct {
	opinion models.AdvisoryOpinion
}

func (f *fixedAdvisory) RequestOpinion(ctx context.Context, input models.PropertyInput, result models.ValuationResult, data models.SourceData, address string) models.AdvisoryOpinion {
	return f.opinion
}

func TestEvaluateWithAdvisoryBlends(t *testing.T) {
	land := &stubLandSource{value: &models.ReferenceLandValue{
		ValuePerSqm:   250,
		ReferenceDate: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		Official:      true,
		Source:        "boris-bayern",
	}}
	market := &stubMarketSource{sample: &models.MarketPriceSample{
		HousePurchase: &models.PriceBand{Min: 2100, Median: 2400, Max: 2700},
		Granularity:   "city",
		Source:        "listing-stats",
	}}
	recommended := 400000.0

	deps := Deps{
		Geocoder:  &stubGeocoder{loc: munichLocation()},
		LandValue: land,
		Market:    market,
		PriceIdx:  &stubPriceIndex{},
		CostIdx:   &stubCostIndex{},
		Regional:  &stubRegional{},
		Advisory: &fixedAdvisory{opinion: models.AdvisoryOpinion{
			Status:           models.AdvisoryMinorConcern,
			Confidence:       0.85,
			RecommendedValue: &recommended,
		}},
		Timeouts: testTimeouts(),
		Logger:   quietLogger(),
	}
	o := New(deps)

	base, _, err := o.EvaluateAddress(context.Background(), "Musterweg 1, München", houseInput())
	require.NoError(t, err)
	blended, opinion, err := o.EvaluateWithAdvisory(context.Background(), "Musterweg 1, München", houseInput())
	require.NoError(t, err)

	require.NotNil(t, opinion)
	assert.Equal(t, models.AdvisoryMinorConcern, opinion.Status)
	assert.NotEqual(t, base.TotalValue, blended.TotalValue)
	assert.Greater(t, blended.TotalValue, base.TotalValue)
}
