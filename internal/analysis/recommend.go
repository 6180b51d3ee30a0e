package analysis

// UrbanPlanning holds land-use guidance for a location.
type UrbanPlanning struct {
	Optimal   []string `json:"optimal" yaml:"optimal"`
	Dangerous []string `json:"dangerous" yaml:"dangerous"`
	Avoid     []string `json:"avoid" yaml:"avoid"`
	Reasons   []string `json:"reasons" yaml:"reasons"`
}

// Recommend maps ground stability, flood and earthquake levels to urban
// planning guidance. Medium levels contribute nothing. Optimal is never empty.
func Recommend(stability, flood, earthquake RiskLevel) UrbanPlanning {
	up := UrbanPlanning{
		Optimal:   []string{},
		Dangerous: []string{},
		Avoid:     []string{},
		Reasons:   []string{},
	}

	switch stability {
	case High:
		up.Optimal = append(up.Optimal, "Residential high-rise buildings", "Commercial centers", "Industrial facilities")
		up.Reasons = append(up.Reasons, "High ground stability allows for multi-story construction")
	case Low:
		up.Avoid = append(up.Avoid, "High-rise buildings", "Heavy industrial structures")
		up.Reasons = append(up.Reasons, "Low ground stability increases foundation failure risk")
	}

	switch flood {
	case Low:
		up.Optimal = append(up.Optimal, "Underground parking", "Basement storage facilities")
	case High:
		up.Dangerous = append(up.Dangerous, "Low-lying areas", "River proximity zones")
		up.Avoid = append(up.Avoid, "Underground construction", "Ground-floor residential")
		up.Reasons = append(up.Reasons, "High flood risk requires elevated construction")
	}

	if earthquake == High {
		up.Dangerous = append(up.Dangerous, "Areas near fault lines", "Non-reinforced structures")
		up.Reasons = append(up.Reasons, "High seismic activity requires earthquake-resistant design")
	}

	if len(up.Optimal) == 0 {
		up.Optimal = append(up.Optimal, "Low-rise residential", "Parks and recreation")
	}

	return up
}

// Land cost buckets for economic prospects.
const (
	primeLandCost    = 300000
	moderateLandCost = 150000
)

// EconomicProspects returns two statements for the land-cost bucket and, when
// air quality is outside the 50-100 band, a third about air quality.
func EconomicProspects(landCost, aqi int) []string {
	var prospects []string

	switch {
	case landCost > primeLandCost:
		prospects = append(prospects,
			"Prime location with high investment potential",
			"Suitable for luxury residential or commercial development",
		)
	case landCost > moderateLandCost:
		prospects = append(prospects,
			"Moderate development potential",
			"Balanced cost-benefit ratio for mid-range projects",
		)
	default:
		prospects = append(prospects,
			"Affordable development opportunity",
			"Suitable for budget-conscious projects",
		)
	}

	if aqi < cleanAirAQI {
		prospects = append(prospects, "Excellent air quality attracts premium residents")
	} else if aqi > pollutedAirAQI {
		prospects = append(prospects, "Air quality improvements needed to increase value")
	}

	return prospects
}
