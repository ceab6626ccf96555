// Package orchestrator ties the acquisition layer to the valuation
// pipeline: resolve the address, fan out to the data sources with
// per-branch timeouts, join, evaluate, and persist a history line.
package orchestrator

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"hauswert/internal/cache"
	"hauswert/internal/database"
	"hauswert/internal/geocoding"
	"hauswert/internal/models"
	"hauswert/internal/sources"
	"hauswert/internal/valuation"
)

// Geocoder resolves free-text addresses.
type Geocoder interface {
	Geocode(ctx context.Context, address string) (*geocoding.Location, error)
}

// AdvisoryProvider supplies the optional second opinion.
type AdvisoryProvider interface {
	RequestOpinion(ctx context.Context, input models.PropertyInput, result models.ValuationResult, data models.SourceData, address string) models.AdvisoryOpinion
}

// HistoryStore records finished valuations.
type HistoryStore interface {
	SaveValuation(rec *database.ValuationRecord) error
}

// Timeouts bounds each acquisition branch independently; one slow source
// must not hold up the join.
type Timeouts struct {
	LandValue  time.Duration
	Market     time.Duration
	PriceIndex time.Duration
	CostIndex  time.Duration
	Regional   time.Duration
}

// Deps collects everything the orchestrator needs. Advisory and History
// are optional; a nil source is treated as permanently absent.
type Deps struct {
	Geocoder  Geocoder
	LandValue sources.LandValueSource
	Market    sources.MarketSource
	PriceIdx  sources.PriceIndexSource
	CostIdx   sources.CostIndexSource
	Regional  sources.RegionalReferenceSource
	Advisory  AdvisoryProvider
	History   HistoryStore

	LandCache   *cache.Cache
	MarketCache *cache.Cache

	Timeouts Timeouts
	Logger   *logrus.Logger
}

type Orchestrator struct {
	deps Deps
	now  func() time.Time
}

func New(deps Deps) *Orchestrator {
	if deps.Logger == nil {
		deps.Logger = logrus.New()
	}
	return &Orchestrator{deps: deps, now: time.Now}
}

// EvaluateAddress runs the full pipeline without the advisory step.
func (o *Orchestrator) EvaluateAddress(ctx context.Context, address string, input models.PropertyInput) (models.ValuationResult, models.SourceData, error) {
	data, resolved := o.gather(ctx, address, input)

	result := valuation.Evaluate(input, data)
	if !resolved {
		result.Notes = append(result.Notes, "address could not be resolved; regional data sources were skipped")
	}

	o.persist(address, data, result)
	return result, data, nil
}

// EvaluateWithAdvisory runs the pipeline and, when an advisory backend is
// wired, blends its opinion into the result.
func (o *Orchestrator) EvaluateWithAdvisory(ctx context.Context, address string, input models.PropertyInput) (models.ValuationResult, *models.AdvisoryOpinion, error) {
	data, resolved := o.gather(ctx, address, input)

	result := valuation.Evaluate(input, data)
	if !resolved {
		result.Notes = append(result.Notes, "address could not be resolved; regional data sources were skipped")
	}

	var opinion *models.AdvisoryOpinion
	if o.deps.Advisory != nil {
		op := o.deps.Advisory.RequestOpinion(ctx, input, result, data, address)
		opinion = &op
		result = valuation.ApplyAdvisory(result, op)
	}

	o.persist(address, data, result)
	return result, opinion, nil
}

// gather geocodes and fans out to the five sources. Every branch failure
// degrades to an absent field; the join always completes.
func (o *Orchestrator) gather(ctx context.Context, address string, input models.PropertyInput) (models.SourceData, bool) {
	data := models.SourceData{ValuationDate: o.now()}

	loc, err := o.deps.Geocoder.Geocode(ctx, address)
	resolved := err == nil && loc != nil
	if !resolved {
		o.deps.Logger.WithError(err).WithField("address", address).Warn("Geocoding failed; proceeding without location")
		loc = &geocoding.Location{}
	}
	data.Region = loc.Region
	data.Locality = loc.Locality
	data.District = loc.District

	var wg sync.WaitGroup
	wg.Add(5)

	go func() {
		defer wg.Done()
		data.LandValue = o.fetchLandValue(ctx, loc)
	}()
	go func() {
		defer wg.Done()
		data.Market = o.fetchMarket(ctx, loc)
	}()
	go func() {
		defer wg.Done()
		branchCtx, cancel := context.WithTimeout(ctx, o.deps.Timeouts.PriceIndex)
		defer cancel()
		series, err := o.deps.PriceIdx.FetchPriceIndex(branchCtx)
		if err != nil {
			o.deps.Logger.WithError(err).Warn("Price index unavailable")
			return
		}
		data.PriceIndex = series
	}()
	go func() {
		defer wg.Done()
		branchCtx, cancel := context.WithTimeout(ctx, o.deps.Timeouts.CostIndex)
		defer cancel()
		point, err := o.deps.CostIdx.FetchConstructionCostIndex(branchCtx)
		if err != nil {
			o.deps.Logger.WithError(err).Warn("Construction cost index unavailable")
			return
		}
		data.CostIndex = point
	}()
	go func() {
		defer wg.Done()
		branchCtx, cancel := context.WithTimeout(ctx, o.deps.Timeouts.Regional)
		defer cancel()
		ref, err := o.deps.Regional.FetchRegionalReferenceValue(branchCtx, loc.Point, loc.Region, string(input.Type))
		if err != nil {
			o.deps.Logger.WithError(err).Warn("Regional reference value unavailable")
			return
		}
		data.RegionalReference = ref
	}()

	wg.Wait()
	return data, resolved
}

func (o *Orchestrator) fetchLandValue(ctx context.Context, loc *geocoding.Location) *models.ReferenceLandValue {
	if loc.Region == "" {
		return nil
	}

	key := geocoding.CoordKey(loc.Point)
	if o.deps.LandCache != nil {
		var cached models.ReferenceLandValue
		if o.deps.LandCache.Get(key, &cached) {
			return &cached
		}
	}

	branchCtx, cancel := context.WithTimeout(ctx, o.deps.Timeouts.LandValue)
	defer cancel()

	value, err := o.deps.LandValue.FetchLandValue(branchCtx, loc.Point, loc.Region)
	if err != nil {
		o.deps.Logger.WithError(err).WithField("region", loc.Region).Warn("Land value unavailable")
		return nil
	}
	if value != nil && o.deps.LandCache != nil {
		o.deps.LandCache.Set(key, value)
	}
	return value
}

func (o *Orchestrator) fetchMarket(ctx context.Context, loc *geocoding.Location) *models.MarketPriceSample {
	if loc.Region == "" && loc.Locality == "" {
		return nil
	}

	key := loc.Region + "|" + loc.Locality
	if o.deps.MarketCache != nil {
		var cached models.MarketPriceSample
		if o.deps.MarketCache.Get(key, &cached) {
			return &cached
		}
	}

	branchCtx, cancel := context.WithTimeout(ctx, o.deps.Timeouts.Market)
	defer cancel()

	sample, err := o.deps.Market.FetchMarketSample(branchCtx, loc.Region, loc.Locality, loc.District)
	if err != nil {
		o.deps.Logger.WithError(err).WithField("locality", loc.Locality).Warn("Market sample unavailable")
		return nil
	}
	if sample != nil && o.deps.MarketCache != nil {
		o.deps.MarketCache.Set(key, sample)
	}
	return sample
}

// persist appends a history row; failures are logged, never surfaced.
func (o *Orchestrator) persist(address string, data models.SourceData, result models.ValuationResult) {
	if o.deps.History == nil {
		return
	}
	rec := &database.ValuationRecord{
		Address:     address,
		Region:      data.Region,
		Method:      string(result.Method),
		TotalValue:  result.TotalValue,
		PricePerSqm: result.PricePerSqm,
		Confidence:  string(result.Confidence),
	}
	if err := o.deps.History.SaveValuation(rec); err != nil {
		o.deps.Logger.WithError(err).Warn("Failed to record valuation history")
	}
}

// Warm prefetches the slow-moving index series at startup so the first
// request does not pay for them.
func (o *Orchestrator) Warm(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		_, err := o.deps.PriceIdx.FetchPriceIndex(ctx)
		return err
	})
	g.Go(func() error {
		_, err := o.deps.CostIdx.FetchConstructionCostIndex(ctx)
		return err
	})
	if err := g.Wait(); err != nil {
		o.deps.Logger.WithError(err).Warn("Index warm-up incomplete")
		return err
	}
	return nil
}
