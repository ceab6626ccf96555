package models

import "time"

// ReferenceLandValue is the official (or estimated) land price per square
// meter for a zone, fixed at a reference date ("Stichtag"). Immutable once
// fetched; cached by rounded coordinates for up to six months.
type ReferenceLandValue struct {
	ValuePerSqm   float64   `json:"value_per_sqm"`
	ReferenceDate time.Time `json:"reference_date"`
	UsageClass    string    `json:"usage_class,omitempty"`
	Zone          string    `json:"zone,omitempty"`
	Municipality  string    `json:"municipality,omitempty"`
	Official      bool      `json:"official"`
	Source        string    `json:"source"`
}

// PriceBand is a per-square-meter price distribution for one segment.
type PriceBand struct {
	Min    float64 `json:"min"`
	Median float64 `json:"median"`
	Max    float64 `json:"max"`
}

// MarketPriceSample aggregates scraped listing statistics for a locality.
// Rent bands are optional. Cached by region+locality for up to 90 days.
type MarketPriceSample struct {
	HousePurchase     *PriceBand `json:"house_purchase,omitempty"`
	ApartmentPurchase *PriceBand `json:"apartment_purchase,omitempty"`
	HouseRent         *PriceBand `json:"house_rent,omitempty"`
	ApartmentRent     *PriceBand `json:"apartment_rent,omitempty"`
	Granularity       string     `json:"granularity"` // "district" or "city"
	Period            string     `json:"period,omitempty"`
	Source            string     `json:"source"`
}

// PurchaseBand returns the purchase price band for the given property type.
func (m *MarketPriceSample) PurchaseBand(t PropertyType) *PriceBand {
	if m == nil {
		return nil
	}
	if t == PropertyTypeApartment {
		return m.ApartmentPurchase
	}
	return m.HousePurchase
}

// RentPerSqm returns the median rent per square meter for the given
// property type, or nil when no rent data was scraped.
func (m *MarketPriceSample) RentPerSqm(t PropertyType) *float64 {
	if m == nil {
		return nil
	}
	band := m.HouseRent
	if t == PropertyTypeApartment {
		band = m.ApartmentRent
	}
	if band == nil || band.Median <= 0 {
		return nil
	}
	v := band.Median
	return &v
}

// PriceIndexPoint is one quarter of the government price index, base = 100.
type PriceIndexPoint struct {
	Quarter string  `json:"quarter"` // "2024-Q1"
	Value   float64 `json:"value"`
}

// PriceIndexSeries is the ordered quarterly price index. May be empty.
type PriceIndexSeries struct {
	Points []PriceIndexPoint `json:"points"`
	Source string            `json:"source"`
}

// ConstructionCostIndexPoint carries the current and base-year construction
// cost index used to bring the standardized cost table to present terms.
type ConstructionCostIndexPoint struct {
	Current float64 `json:"current"`
	Base    float64 `json:"base"`
	Label   string  `json:"label,omitempty"`
	Source  string  `json:"source"`
}

// RegionalReferenceValue is an independent official per-square-meter figure
// available only in some regions, used for cross-validation.
type RegionalReferenceValue struct {
	ValuePerSqm float64 `json:"value_per_sqm"`
	Segment     string  `json:"segment,omitempty"`
	Source      string  `json:"source"`
}

// SourceData is the joined output of the concurrent fetch phase. Every
// field except the location tags may be nil; the pipeline degrades instead
// of failing.
type SourceData struct {
	LandValue         *ReferenceLandValue         `json:"land_value,omitempty"`
	Market            *MarketPriceSample          `json:"market,omitempty"`
	PriceIndex        *PriceIndexSeries           `json:"price_index,omitempty"`
	CostIndex         *ConstructionCostIndexPoint `json:"cost_index,omitempty"`
	RegionalReference *RegionalReferenceValue     `json:"regional_reference,omitempty"`

	Region   string `json:"region,omitempty"`
	Locality string `json:"locality,omitempty"`
	District string `json:"district,omitempty"`

	// ValuationDate anchors age and index computations so results are
	// reproducible for a given joined snapshot.
	ValuationDate time.Time `json:"valuation_date"`
}
