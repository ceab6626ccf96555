package config

import "strings"

// Region describes one administrative region the service can value
// properties in. Average prices are EUR per square meter living area and
// act as the last-resort fallback when no market data is available.
type Region struct {
	Name                string  `json:"name"`
	Code                string  `json:"code"`
	AvgHousePerSqm      float64 `json:"avg_house_per_sqm"`
	AvgApartmentPerSqm  float64 `json:"avg_apartment_per_sqm"`
	HasRegionalRefValue bool    `json:"has_regional_ref_value"`
}

// SupportedRegions lists the sixteen regions with their fallback price
// levels. Regions with HasRegionalRefValue expose the independent official
// comparison figure used for cross-validation.
var SupportedRegions = []Region{
	{Name: "baden-wuerttemberg", Code: "BW", AvgHousePerSqm: 3550, AvgApartmentPerSqm: 3300, HasRegionalRefValue: true},
	{Name: "bayern", Code: "BY", AvgHousePerSqm: 3900, AvgApartmentPerSqm: 3700, HasRegionalRefValue: true},
	{Name: "berlin", Code: "BE", AvgHousePerSqm: 4200, AvgApartmentPerSqm: 4000, HasRegionalRefValue: false},
	{Name: "brandenburg", Code: "BB", AvgHousePerSqm: 2500, AvgApartmentPerSqm: 2300, HasRegionalRefValue: false},
	{Name: "bremen", Code: "HB", AvgHousePerSqm: 2700, AvgApartmentPerSqm: 2500, HasRegionalRefValue: false},
	{Name: "hamburg", Code: "HH", AvgHousePerSqm: 4400, AvgApartmentPerSqm: 4300, HasRegionalRefValue: false},
	{Name: "hessen", Code: "HE", AvgHousePerSqm: 3200, AvgApartmentPerSqm: 3000, HasRegionalRefValue: true},
	{Name: "mecklenburg-vorpommern", Code: "MV", AvgHousePerSqm: 2200, AvgApartmentPerSqm: 2100, HasRegionalRefValue: false},
	{Name: "niedersachsen", Code: "NI", AvgHousePerSqm: 2500, AvgApartmentPerSqm: 2300, HasRegionalRefValue: true},
	{Name: "nordrhein-westfalen", Code: "NW", AvgHousePerSqm: 2900, AvgApartmentPerSqm: 2600, HasRegionalRefValue: true},
	{Name: "rheinland-pfalz", Code: "RP", AvgHousePerSqm: 2600, AvgApartmentPerSqm: 2400, HasRegionalRefValue: false},
	{Name: "saarland", Code: "SL", AvgHousePerSqm: 2100, AvgApartmentPerSqm: 1900, HasRegionalRefValue: false},
	{Name: "sachsen", Code: "SN", AvgHousePerSqm: 2300, AvgApartmentPerSqm: 2100, HasRegionalRefValue: false},
	{Name: "sachsen-anhalt", Code: "ST", AvgHousePerSqm: 1900, AvgApartmentPerSqm: 1700, HasRegionalRefValue: false},
	{Name: "schleswig-holstein", Code: "SH", AvgHousePerSqm: 3000, AvgApartmentPerSqm: 2900, HasRegionalRefValue: false},
	{Name: "thueringen", Code: "TH", AvgHousePerSqm: 2000, AvgApartmentPerSqm: 1800, HasRegionalRefValue: false},
}

// Country-wide fallback levels when even the region is unknown.
const (
	CountryAvgHousePerSqm     = 2900.0
	CountryAvgApartmentPerSqm = 2700.0
)

// GetRegionNames returns the names of all supported regions.
func GetRegionNames() []string {
	names := make([]string, len(SupportedRegions))
	for i, r := range SupportedRegions {
		names[i] = r.Name
	}
	return names
}

// GetRegionByName returns a region configuration by (case-insensitive)
// name, or nil when the region is not supported.
func GetRegionByName(name string) *Region {
	name = strings.ToLower(strings.TrimSpace(name))
	for _, r := range SupportedRegions {
		if r.Name == name {
			return &r
		}
	}
	return nil
}

// AveragePricePerSqm returns the fallback per-square-meter price for the
// region, falling back to the country-wide average for unknown regions.
// The second return reports whether a regional figure was found.
func AveragePricePerSqm(region string, apartment bool) (float64, bool) {
	if r := GetRegionByName(region); r != nil {
		if apartment {
			return r.AvgApartmentPerSqm, true
		}
		return r.AvgHousePerSqm, true
	}
	if apartment {
		return CountryAvgApartmentPerSqm, false
	}
	return CountryAvgHousePerSqm, false
}
