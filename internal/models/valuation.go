package models

// Method identifies which valuation approach produced the result.
type Method string

const (
	MethodComparison       Method = "comparison"
	MethodCostLite         Method = "cost-lite"
	MethodMarketIndication Method = "market-indication"
)

// Confidence is the qualitative tier attached to a result. Each tier maps
// to a deterministic value-range spread.
type Confidence string

const (
	ConfidenceHigh    Confidence = "high"
	ConfidenceMedium  Confidence = "medium"
	ConfidenceLow     Confidence = "low"
	ConfidenceMinimal Confidence = "minimal"
)

// CorrectionFactors are the seven additive adjustment fractions applied to
// the base per-square-meter price. Total equals the sum of the named fields
// after the new-build/modernization overlap correction.
type CorrectionFactors struct {
	ConstructionYear float64 `json:"construction_year"`
	Modernization    float64 `json:"modernization"`
	Energy           float64 `json:"energy"`
	Fitout           float64 `json:"fitout"`
	SubType          float64 `json:"sub_type"`
	NewBuild         float64 `json:"new_build"`
	ValuationDate    float64 `json:"valuation_date"`
	Total            float64 `json:"total"`
}

// Sum recomputes the total from the named fields.
func (f CorrectionFactors) Sum() float64 {
	return f.ConstructionYear + f.Modernization + f.Energy + f.Fitout +
		f.SubType + f.NewBuild + f.ValuationDate
}

// ValueRange is the confidence band around the total value.
type ValueRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// ValuationResult is the priced estimate produced once per request. It is
// treated as immutable: the plausibility corrector and the advisory blend
// both return adjusted copies.
type ValuationResult struct {
	Method        Method            `json:"method"`
	LandValue     float64           `json:"land_value"`
	BuildingValue float64           `json:"building_value"`
	TotalValue    float64           `json:"total_value"`
	PricePerSqm   float64           `json:"price_per_sqm"`
	Range         ValueRange        `json:"value_range"`
	IncomeValue   *float64          `json:"income_value,omitempty"`
	Confidence    Confidence        `json:"confidence"`
	Factors       CorrectionFactors `json:"factors"`
	Notes         []string          `json:"notes,omitempty"`
	DataSources   []string          `json:"data_sources,omitempty"`
}

// Clone returns a deep copy so correction steps never mutate their input.
func (r ValuationResult) Clone() ValuationResult {
	out := r
	out.Notes = append([]string(nil), r.Notes...)
	out.DataSources = append([]string(nil), r.DataSources...)
	if r.IncomeValue != nil {
		v := *r.IncomeValue
		out.IncomeValue = &v
	}
	return out
}
