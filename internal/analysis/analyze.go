package analysis

import "github.com/sells-group/geo-analytics/internal/model"

// Report is the full analysis for one coordinate. It is never mutated after
// Analyze returns it.
type Report struct {
	Latitude          float64         `json:"latitude" yaml:"latitude"`
	Longitude         float64         `json:"longitude" yaml:"longitude"`
	AQI               int             `json:"aqi" yaml:"aqi"`
	GroundStability   RiskLevel       `json:"ground_stability" yaml:"ground_stability"`
	FloodRisk         RiskLevel       `json:"flood_risk" yaml:"flood_risk"`
	EarthquakeRisk    RiskLevel       `json:"earthquake_risk" yaml:"earthquake_risk"`
	TsunamiRisk       RiskLevel       `json:"tsunami_risk" yaml:"tsunami_risk"`
	LandslideRisk     RiskLevel       `json:"landslide_risk" yaml:"landslide_risk"`
	LandCost          int             `json:"land_cost" yaml:"land_cost"`
	UrbanPlanning     UrbanPlanning   `json:"urban_planning" yaml:"urban_planning"`
	EconomicProspects []string        `json:"economic_prospects" yaml:"economic_prospects"`
	ClimateForecast   ClimateForecast `json:"climate_forecast" yaml:"climate_forecast"`
	ModelVersion      string          `json:"model_version" yaml:"model_version"`
}

// Analyze builds the report for (lat, lon). Callers validate the coordinate
// first; Analyze itself is total and safe for concurrent use.
func Analyze(lat, lon float64) Report {
	seeds := DeriveSeeds(lat, lon)

	aqi := aqiFromSeed(seeds.AQI)
	stability := LevelFor(SeededRandom(seeds.GroundStability))
	flood := LevelFor(SeededRandom(seeds.Flood))
	earthquake := LevelFor(SeededRandom(seeds.Earthquake))
	landCost := landCostFromSeed(seeds.LandCost, aqi)

	return Report{
		Latitude:          lat,
		Longitude:         lon,
		AQI:               aqi,
		GroundStability:   stability,
		FloodRisk:         flood,
		EarthquakeRisk:    earthquake,
		TsunamiRisk:       LevelFor(SeededRandom(seeds.Tsunami)),
		LandslideRisk:     LevelFor(SeededRandom(seeds.Landslide)),
		LandCost:          landCost,
		UrbanPlanning:     Recommend(stability, flood, earthquake),
		EconomicProspects: EconomicProspects(landCost, aqi),
		ClimateForecast:   climateFromSeed(seeds.Climate),
		ModelVersion:      ModelVersion,
	}
}

// Record flattens the report into the fields that get persisted. Identity,
// ID and timestamp are left for the caller.
func (r Report) Record() model.AnalysisRecord {
	return model.AnalysisRecord{
		Latitude:        r.Latitude,
		Longitude:       r.Longitude,
		AQI:             r.AQI,
		GroundStability: string(r.GroundStability),
		FloodRisk:       string(r.FloodRisk),
		EarthquakeRisk:  string(r.EarthquakeRisk),
		TsunamiRisk:     string(r.TsunamiRisk),
		LandslideRisk:   string(r.LandslideRisk),
		LandCost:        r.LandCost,
		ModelVersion:    r.ModelVersion,
	}
}

// Hazards returns the labelled hazard levels in display order.
func (r Report) Hazards() []Hazard {
	return []Hazard{
		{Name: "ground_stability", Level: r.GroundStability},
		{Name: "flood", Level: r.FloodRisk},
		{Name: "earthquake", Level: r.EarthquakeRisk},
		{Name: "tsunami", Level: r.TsunamiRisk},
		{Name: "landslide", Level: r.LandslideRisk},
	}
}

// Hazard is one named level within a report.
type Hazard struct {
	Name  string
	Level RiskLevel
}
