package valuation

import (
	"fmt"
	"math"

	"hauswert/config"
	"hauswert/internal/models"
)

const (
	// Listing prices run above realized transaction prices.
	listingDiscount = 0.95

	// Total factor magnitude that maps onto the band min/max.
	bandFactorSpan = 0.15

	// Per-square-meter floor as a share of the band median.
	bandFloorShare = 0.25

	// Weight of the income cross-check in the comparison blend.
	incomeBlendWeight = 0.20

	// Area substitution defaults.
	defaultHouseLivingArea     = 140.0
	defaultApartmentLivingArea = 70.0
	livingPerPlotShare         = 0.28
	plotPerLivingFactor        = 2.5
)

var confidenceSpread = map[models.Confidence]float64{
	models.ConfidenceHigh:    0.08,
	models.ConfidenceMedium:  0.12,
	models.ConfidenceLow:     0.15,
	models.ConfidenceMinimal: 0.20,
}

// Spread returns the deterministic value-range spread for a confidence tier.
func Spread(c models.Confidence) float64 {
	if s, ok := confidenceSpread[c]; ok {
		return s
	}
	return confidenceSpread[models.ConfidenceMinimal]
}

var confidenceRank = map[models.Confidence]int{
	models.ConfidenceHigh:    3,
	models.ConfidenceMedium:  2,
	models.ConfidenceLow:     1,
	models.ConfidenceMinimal: 0,
}

var confidenceByRank = []models.Confidence{
	models.ConfidenceMinimal,
	models.ConfidenceLow,
	models.ConfidenceMedium,
	models.ConfidenceHigh,
}

func capConfidence(c, cap models.Confidence) models.Confidence {
	if confidenceRank[c] > confidenceRank[cap] {
		return cap
	}
	return c
}

func downgrade(c models.Confidence) models.Confidence {
	r := confidenceRank[c]
	if r > 0 {
		r--
	}
	return confidenceByRank[r]
}

type areas struct {
	living          float64
	plot            float64
	livingEstimated bool
	plotEstimated   bool
}

// resolveAreas substitutes estimates for a missing or implausible living
// area rather than rejecting the request.
func resolveAreas(input models.PropertyInput) (areas, []string) {
	var a areas
	var notes []string

	if input.LivingArea != nil && *input.LivingArea > 0 {
		a.living = *input.LivingArea
	} else {
		switch {
		case input.PlotArea != nil && *input.PlotArea > 0 && input.Type == models.PropertyTypeHouse:
			a.living = *input.PlotArea * livingPerPlotShare
			notes = append(notes, fmt.Sprintf("living area missing; estimated %.0f m2 from plot area", a.living))
		case input.Type == models.PropertyTypeApartment:
			a.living = defaultApartmentLivingArea
			notes = append(notes, fmt.Sprintf("living area missing; assumed %.0f m2 for an apartment", a.living))
		default:
			a.living = defaultHouseLivingArea
			notes = append(notes, fmt.Sprintf("living area missing; assumed %.0f m2 for a house", a.living))
		}
		a.livingEstimated = true
	}

	if input.PlotArea != nil && *input.PlotArea > 0 {
		a.plot = *input.PlotArea
	} else if input.Type == models.PropertyTypeHouse {
		a.plot = a.living * plotPerLivingFactor
		a.plotEstimated = true
		notes = append(notes, fmt.Sprintf("plot area missing; estimated %.0f m2 from living area", a.plot))
	}

	return a, notes
}

// scaleBand applies the listing-to-transaction discount.
func scaleBand(b *models.PriceBand, factor float64) *models.PriceBand {
	if b == nil {
		return nil
	}
	return &models.PriceBand{Min: b.Min * factor, Median: b.Median * factor, Max: b.Max * factor}
}

// interpolateBand maps the total correction factor onto the sample's
// [min, median, max] band: zero hits the median, +-0.15 the band edges, and
// larger factors extrapolate softly past the band, floored at a quarter of
// the median.
func interpolateBand(b models.PriceBand, factor float64) float64 {
	var v float64
	switch {
	case factor >= bandFactorSpan:
		v = b.Max * (1 + (factor-bandFactorSpan)*0.5)
	case factor >= 0:
		v = b.Median + (b.Max-b.Median)*factor/bandFactorSpan
	case factor > -bandFactorSpan:
		v = b.Median + (b.Median-b.Min)*factor/bandFactorSpan
	default:
		v = b.Min * (1 + (factor+bandFactorSpan)*0.5)
	}
	if floor := b.Median * bandFloorShare; v < floor {
		v = floor
	}
	return v
}

func round(v float64) float64 { return math.Round(v) }

// Evaluate turns the joined source data into a priced estimate. It is a
// pure function of its inputs: the same joined snapshot always yields the
// same result, and it never fails. Missing sources lower the confidence
// tier instead.
func Evaluate(input models.PropertyInput, data models.SourceData) models.ValuationResult {
	var notes []string
	var dataSources []string

	a, areaNotes := resolveAreas(input)
	notes = append(notes, areaNotes...)

	factors, factorNotes := ComputeFactors(input, data)
	notes = append(notes, factorNotes...)

	landPerSqm := 0.0
	landOfficial := false
	if data.LandValue != nil && data.LandValue.ValuePerSqm > 0 {
		landPerSqm = data.LandValue.ValuePerSqm
		landOfficial = data.LandValue.Official
		dataSources = append(dataSources, data.LandValue.Source)
	}
	indexedLandPerSqm := landPerSqm * (1 + factors.ValuationDate)

	band := scaleBand(data.Market.PurchaseBand(input.Type), listingDiscount)
	if data.Market != nil {
		dataSources = append(dataSources, data.Market.Source)
	}
	if data.PriceIndex != nil && len(data.PriceIndex.Points) > 0 {
		dataSources = append(dataSources, data.PriceIndex.Source)
	}

	var (
		method        models.Method
		landValue     float64
		buildingValue float64
		totalValue    float64
		usedCostIndex bool
		usedAvgTable  bool
		regionAvgHit  bool
	)

	switch {
	case input.Type == models.PropertyTypeApartment && band != nil:
		method = models.MethodComparison
		perSqm := interpolateBand(*band, factors.Total)
		totalValue = perSqm * a.living

	case input.Type == models.PropertyTypeHouse && indexedLandPerSqm > 0 && a.plot > 0:
		method = models.MethodCostLite
		landValue = indexedLandPerSqm * a.plot
		if band != nil {
			marketTotal := interpolateBand(*band, factors.Total) * a.living
			buildingValue = marketTotal - landValue
			if buildingValue < 0 {
				buildingValue = 0
				notes = append(notes, "market level below land value; building component floored at zero")
			}
		} else {
			var costNotes []string
			buildingValue, costNotes = ReplacementCost(input, a.living, landPerSqm, data.CostIndex, data.ValuationDate.Year())
			notes = append(notes, costNotes...)
			usedCostIndex = data.CostIndex != nil
		}
		totalValue = landValue + buildingValue

	default:
		method = models.MethodMarketIndication
		if band != nil {
			totalValue = interpolateBand(*band, factors.Total) * a.living
		} else {
			avg, regional := config.AveragePricePerSqm(data.Region, input.Type == models.PropertyTypeApartment)
			regionAvgHit = regional
			usedAvgTable = true
			totalValue = avg * (1 + factors.Total) * a.living
			dataSources = append(dataSources, "regional-average-table")
		}
		if indexedLandPerSqm > 0 && a.plot > 0 {
			landValue = indexedLandPerSqm * a.plot
			if landValue > totalValue {
				landValue = totalValue
			}
		}
		buildingValue = totalValue - landValue
	}

	if usedCostIndex {
		dataSources = append(dataSources, data.CostIndex.Source)
	}

	// Income cross-check whenever rent and a land value are both known.
	var incomeValue *float64
	if rent := data.Market.RentPerSqm(input.Type); rent != nil && indexedLandPerSqm > 0 {
		incomeArea := a.plot
		if incomeArea <= 0 {
			incomeArea = a.living
		}
		landTotal := indexedLandPerSqm * incomeArea
		if v, ok := IncomeValue(input, *rent, a.living, landTotal, landPerSqm, data.ValuationDate.Year()); ok {
			incomeValue = &v
			dataSources = append(dataSources, "ertragswert")
		}
	}

	// Comparison results are pulled 20% toward the income value when the
	// rent data supports it.
	if method == models.MethodComparison && incomeValue != nil {
		totalValue = totalValue*(1-incomeBlendWeight) + *incomeValue*incomeBlendWeight
		buildingValue = totalValue - landValue
		notes = append(notes, "comparison value blended 80/20 with income cross-check")
	}

	// Regional reference value is consulted for cross-validation only.
	if data.RegionalReference != nil && data.RegionalReference.ValuePerSqm > 0 {
		dataSources = append(dataSources, data.RegionalReference.Source)
		refPerSqm := data.RegionalReference.ValuePerSqm
		perSqm := totalValue / a.living
		if dev := math.Abs(perSqm-refPerSqm) / refPerSqm; dev > 0.5 {
			notes = append(notes, fmt.Sprintf("result deviates %.0f%% from the regional reference value of %.0f EUR/m2", dev*100, refPerSqm))
		}
	}

	confidence := assembleConfidence(method, landPerSqm > 0, landOfficial, a.livingEstimated, usedAvgTable, regionAvgHit)
	if landPerSqm <= 0 {
		notes = append(notes, "no land reference value available; confidence reduced")
	} else if !landOfficial {
		notes = append(notes, "land reference value is an estimate, not an official figure")
	}
	if usedAvgTable {
		if regionAvgHit {
			notes = append(notes, "no market sample available; regional average table applied")
		} else {
			notes = append(notes, "no market sample or region match; country-wide average applied")
		}
	}

	result := models.ValuationResult{
		Method:        method,
		LandValue:     round(landValue),
		BuildingValue: round(buildingValue),
		PricePerSqm:   round(totalValue / a.living),
		IncomeValue:   incomeValue,
		Confidence:    confidence,
		Factors:       factors,
		Notes:         notes,
		DataSources:   dataSources,
	}
	if method == models.MethodCostLite {
		// The cost split must add up exactly after rounding.
		result.TotalValue = result.LandValue + result.BuildingValue
	} else {
		result.TotalValue = round(totalValue)
	}
	spread := Spread(confidence)
	result.Range = models.ValueRange{
		Min: round(result.TotalValue * (1 - spread)),
		Max: round(result.TotalValue * (1 + spread)),
	}

	return ApplyPlausibility(result, data, input.Type == models.PropertyTypeApartment, a.living)
}

// assembleConfidence derives the tier from the method and the provenance of
// the inputs. The mapping is deterministic per combination.
func assembleConfidence(method models.Method, landPresent, landOfficial, livingEstimated, usedAvgTable, regionAvgHit bool) models.Confidence {
	c := models.ConfidenceHigh
	if method == models.MethodMarketIndication {
		c = models.ConfidenceLow
	}
	if !landPresent || !landOfficial {
		c = capConfidence(c, models.ConfidenceLow)
	}
	if livingEstimated {
		c = downgrade(c)
	}
	if usedAvgTable && !regionAvgHit {
		c = models.ConfidenceMinimal
	}
	return c
}
