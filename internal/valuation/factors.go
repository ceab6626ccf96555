package valuation

import (
	"fmt"
	"strings"

	"hauswert/internal/models"
)

// Construction-year step table. The >=2020 bracket is deliberately zero:
// those properties receive the new-build premium instead, and applying both
// would double count.
func constructionYearFactor(year int) float64 {
	switch {
	case year <= 0:
		return 0
	case year >= 2020:
		return 0
	case year >= 2010:
		return 0.05
	case year >= 2000:
		return 0.02
	case year >= 1990:
		return 0
	case year >= 1970:
		return -0.03
	case year >= 1950:
		return -0.06
	default:
		return -0.10
	}
}

// newBuildPremium applies a flat +10% for construction year >= 2020.
func newBuildPremium(year int) float64 {
	if year >= 2020 {
		return 0.10
	}
	return 0
}

// modernizationAnchors holds the factor anchor points at scores 1, 3 and 5.
// Older buildings gain more from modernization, so the anchors are
// parameterized by a construction-year bracket.
type modernizationAnchors struct {
	low, mid, high float64
}

func anchorsForYear(year int) modernizationAnchors {
	switch {
	case year > 0 && year < 1970:
		return modernizationAnchors{low: -0.05, mid: 0.05, high: 0.15}
	case year > 0 && year < 1990:
		return modernizationAnchors{low: -0.04, mid: 0.03, high: 0.10}
	default:
		return modernizationAnchors{low: -0.02, mid: 0.01, high: 0.05}
	}
}

// modernizationFactor maps the modernization attribute to a factor. A
// numeric score interpolates linearly between the anchor points; free text
// maps onto the nearest anchor without interpolation.
func modernizationFactor(in models.LevelInput, year int) float64 {
	a := anchorsForYear(year)
	if in.HasScore() {
		return interpolateAnchors(a, float64(*in.Score))
	}
	score := NormalizeLevel(in, levelModernization)
	switch {
	case score <= 2:
		return a.low
	case score == 3:
		return a.mid
	default:
		return a.high
	}
}

func interpolateAnchors(a modernizationAnchors, score float64) float64 {
	switch {
	case score <= 1:
		return a.low
	case score >= 5:
		return a.high
	case score <= 3:
		return a.low + (a.mid-a.low)*(score-1)/2
	default:
		return a.mid + (a.high-a.mid)*(score-3)/2
	}
}

var energyFactorTable = map[int]float64{1: -0.04, 2: -0.02, 3: 0, 4: 0.02, 5: 0.04}

var fitoutFactorTable = map[int]float64{1: -0.05, 2: -0.02, 3: 0, 4: 0.03, 5: 0.06}

func energyFactor(in models.LevelInput) float64 {
	return energyFactorTable[NormalizeLevel(in, levelEnergy)]
}

func fitoutFactor(in models.LevelInput) float64 {
	return fitoutFactorTable[NormalizeLevel(in, levelFitout)]
}

// Ordered so that "semi-detached" matches before "detached".
var subTypePatterns = []struct {
	substr string
	factor float64
}{
	{"semi-detached", 0.02},
	{"detached", 0.05},
	{"villa", 0.08},
	{"bungalow", 0.03},
	{"terrace", -0.02},
	{"row house", -0.02},
	{"end-terrace", 0},
	{"multi-family", -0.05},
	{"penthouse", 0.07},
	{"maisonette", 0.02},
	{"loft", 0.03},
	{"ground floor", -0.01},
	{"souterrain", -0.04},
	{"attic", -0.01},
}

func subTypeFactor(subType string) float64 {
	text := strings.ToLower(subType)
	if text == "" {
		return 0
	}
	for _, p := range subTypePatterns {
		if strings.Contains(text, p.substr) {
			return p.factor
		}
	}
	return 0
}

// ComputeFactors derives the seven correction factors from the property
// attributes and the joined source data. The returned notes document the
// overlap correction when it fires.
func ComputeFactors(input models.PropertyInput, data models.SourceData) (models.CorrectionFactors, []string) {
	var notes []string

	year := 0
	if input.ConstructionYear != nil {
		year = *input.ConstructionYear
	}

	f := models.CorrectionFactors{
		ConstructionYear: constructionYearFactor(year),
		Modernization:    modernizationFactor(input.Modernization, year),
		Energy:           energyFactor(input.Energy),
		Fitout:           fitoutFactor(input.Fitout),
		SubType:          subTypeFactor(input.SubType),
		NewBuild:         newBuildPremium(year),
	}

	if data.LandValue != nil {
		f.ValuationDate = ValuationDateCorrection(data.PriceIndex, data.LandValue.ReferenceDate, data.ValuationDate)
	}

	// A new building is definitionally already modernized; the premium and
	// a positive modernization factor must not both apply.
	if f.NewBuild > 0 && f.Modernization > 0 {
		f.Modernization = 0
		notes = append(notes, fmt.Sprintf("modernization factor suppressed: new-build premium of %.0f%% already applied", f.NewBuild*100))
	}

	f.Total = f.Sum()
	return f, notes
}
