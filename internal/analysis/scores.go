package analysis

import "math"

// Seeds holds the per-quantity seeds derived from a coordinate.
type Seeds struct {
	AQI             float64
	LandCost        float64
	GroundStability float64
	Flood           float64
	Earthquake      float64
	Tsunami         float64
	Landslide       float64
	Climate         float64
}

// DeriveSeeds computes every seed for (lat, lon). The linear combinations are
// part of the stored-report format and must not change.
func DeriveSeeds(lat, lon float64) Seeds {
	return Seeds{
		AQI:             math.Abs(lat*1000 + lon*1000),
		LandCost:        math.Abs(lat*100 + lon*100),
		GroundStability: math.Abs(lat*1000 + lon),
		Flood:           math.Abs(lat + lon*1000),
		Earthquake:      math.Abs(lat*500 + lon*500),
		Tsunami:         math.Abs(lat*200 + lon*300),
		Landslide:       math.Abs(lat*300 + lon*200),
		Climate:         math.Abs(lat*10 + lon*10),
	}
}

// AQI range: [minAQI, minAQI+aqiSpan).
const (
	minAQI  = 20
	aqiSpan = 130
)

// Land cost model, in whole currency units.
const (
	baseLandCost   = 50000
	landCostSpan   = 450000
	cleanAirAQI    = 50  // below: premium multiplier
	pollutedAirAQI = 100 // at or above: discount multiplier
	cleanAirMul    = 1.3
	moderateAirMul = 1.0
	pollutedAirMul = 0.7
)

// AQI returns the air-quality index for a coordinate, an integer in [20, 150).
func AQI(lat, lon float64) int {
	return aqiFromSeed(DeriveSeeds(lat, lon).AQI)
}

func aqiFromSeed(seed float64) int {
	return int(math.Floor(minAQI + SeededRandom(seed)*aqiSpan))
}

// AQIMultiplier is the land-cost adjustment for a given AQI.
func AQIMultiplier(aqi int) float64 {
	switch {
	case aqi < cleanAirAQI:
		return cleanAirMul
	case aqi < pollutedAirAQI:
		return moderateAirMul
	default:
		return pollutedAirMul
	}
}

// LandCost returns the estimated land cost for a coordinate. The base price is
// drawn from the land-cost seed; aqi comes from its own seed and only selects
// the multiplier.
func LandCost(lat, lon float64, aqi int) int {
	return landCostFromSeed(DeriveSeeds(lat, lon).LandCost, aqi)
}

func landCostFromSeed(seed float64, aqi int) int {
	base := baseLandCost + SeededRandom(seed)*landCostSpan
	return int(math.Floor(base * AQIMultiplier(aqi)))
}

// Trend labels, indexed by floor(r*3).
var (
	trends         = [3]string{"Increasing", "Stable", "Decreasing"}
	disasterTrends = [3]string{"Increasing risk", "Stable conditions", "Decreasing risk"}
)

// ClimateForecast is the climate sub-record of a report.
type ClimateForecast struct {
	TemperatureTrend string `json:"temperature_trend" yaml:"temperature_trend"`
	HumidityTrend    string `json:"humidity_trend" yaml:"humidity_trend"`
	AvgTemperature   int    `json:"avg_temperature" yaml:"avg_temperature"`
	AvgHumidity      int    `json:"avg_humidity" yaml:"avg_humidity"`
	DisasterTrend    string `json:"disaster_trend" yaml:"disaster_trend"`
}

// Climate derives the climate forecast. Temperature, humidity and the
// temperature trend share one draw; the humidity and disaster trends use
// seed+1 and seed+2.
func Climate(lat, lon float64) ClimateForecast {
	return climateFromSeed(DeriveSeeds(lat, lon).Climate)
}

func climateFromSeed(seed float64) ClimateForecast {
	r := SeededRandom(seed)
	return ClimateForecast{
		TemperatureTrend: trends[trendIndex(r)],
		HumidityTrend:    trends[trendIndex(SeededRandom(seed+1))],
		AvgTemperature:   int(math.Floor(15 + r*20)),
		AvgHumidity:      int(math.Floor(40 + r*40)),
		DisasterTrend:    disasterTrends[trendIndex(SeededRandom(seed+2))],
	}
}

// trendIndex maps r in [0, 1) to 0..2.
func trendIndex(r float64) int {
	i := int(math.Floor(r * 3))
	if i > 2 {
		i = 2
	}
	return i
}
