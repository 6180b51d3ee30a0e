package analysis

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnalyze_NewYork(t *testing.T) {
	r := Analyze(40.7128, -74.0060)

	assert.Equal(t, 40.7128, r.Latitude)
	assert.Equal(t, -74.0060, r.Longitude)
	assert.Equal(t, 59, r.AQI)
	assert.Equal(t, 270134, r.LandCost)
	assert.Equal(t, High, r.GroundStability)
	assert.Equal(t, Medium, r.FloodRisk)
	assert.Equal(t, Low, r.EarthquakeRisk)
	assert.Equal(t, High, r.TsunamiRisk)
	assert.Equal(t, Low, r.LandslideRisk)
	assert.Equal(t, ClimateForecast{
		TemperatureTrend: "Stable",
		HumidityTrend:    "Increasing",
		AvgTemperature:   25,
		AvgHumidity:      61,
		DisasterTrend:    "Stable conditions",
	}, r.ClimateForecast)
	assert.Equal(t, []string{
		"Residential high-rise buildings", "Commercial centers", "Industrial facilities",
	}, r.UrbanPlanning.Optimal)
	assert.Equal(t, []string{
		"Moderate development potential",
		"Balanced cost-benefit ratio for mid-range projects",
	}, r.EconomicProspects)
	assert.Equal(t, ModelVersion, r.ModelVersion)
}

func TestAnalyze_KnownLocations(t *testing.T) {
	tests := []struct {
		name     string
		lat, lon float64
		aqi      int
		landCost int
		levels   [5]RiskLevel
	}{
		{"london", 51.5074, -0.1278, 128, 288770, [5]RiskLevel{Medium, Low, Low, Low, High}},
		{"sydney", -33.8688, 151.2093, 40, 186178, [5]RiskLevel{Low, Low, Medium, Low, High}},
		{"tokyo", 35.6762, 139.6503, 93, 284397, [5]RiskLevel{Low, Medium, Medium, Medium, Low}},
		{"null island", 0, 0, 20, 65000, [5]RiskLevel{Low, Low, Low, Low, Low}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := Analyze(tt.lat, tt.lon)
			assert.Equal(t, tt.aqi, r.AQI)
			assert.Equal(t, tt.landCost, r.LandCost)
			got := [5]RiskLevel{r.GroundStability, r.FloodRisk, r.EarthquakeRisk, r.TsunamiRisk, r.LandslideRisk}
			assert.Equal(t, tt.levels, got)
		})
	}
}

func TestAnalyze_Idempotent(t *testing.T) {
	for _, c := range [][2]float64{{40.7128, -74.006}, {-90, 180}, {12.34, -56.78}} {
		assert.Equal(t, Analyze(c[0], c[1]), Analyze(c[0], c[1]))
	}
}

func TestAnalyze_MatchesComponents(t *testing.T) {
	lat, lon := 48.8566, 2.3522
	r := Analyze(lat, lon)
	assert.Equal(t, AQI(lat, lon), r.AQI)
	assert.Equal(t, LandCost(lat, lon, r.AQI), r.LandCost)
	assert.Equal(t, Climate(lat, lon), r.ClimateForecast)
	assert.Equal(t, Recommend(r.GroundStability, r.FloodRisk, r.EarthquakeRisk), r.UrbanPlanning)
	assert.Equal(t, EconomicProspects(r.LandCost, r.AQI), r.EconomicProspects)
}

func TestAnalyze_ConcurrentCallsAgree(t *testing.T) {
	want := Analyze(40.7128, -74.0060)

	var wg sync.WaitGroup
	results := make([]Report, 32)
	for i := range results {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i] = Analyze(40.7128, -74.0060)
		}()
	}
	wg.Wait()

	for _, got := range results {
		assert.Equal(t, want, got)
	}
}

func TestReport_Record(t *testing.T) {
	r := Analyze(40.7128, -74.0060)
	rec := r.Record()

	require.Empty(t, rec.ID)
	require.Empty(t, rec.UserID)
	assert.Equal(t, 40.7128, rec.Latitude)
	assert.Equal(t, -74.0060, rec.Longitude)
	assert.Equal(t, 59, rec.AQI)
	assert.Equal(t, "High", rec.GroundStability)
	assert.Equal(t, "Medium", rec.FloodRisk)
	assert.Equal(t, "Low", rec.EarthquakeRisk)
	assert.Equal(t, "High", rec.TsunamiRisk)
	assert.Equal(t, "Low", rec.LandslideRisk)
	assert.Equal(t, 270134, rec.LandCost)
	assert.Equal(t, ModelVersion, rec.ModelVersion)
}

func TestReport_Hazards(t *testing.T) {
	r := Analyze(51.5074, -0.1278)
	hz := r.Hazards()
	require.Len(t, hz, 5)
	assert.Equal(t, "ground_stability", hz[0].Name)
	assert.Equal(t, r.GroundStability, hz[0].Level)
	assert.Equal(t, "landslide", hz[4].Name)
	assert.Equal(t, r.LandslideRisk, hz[4].Level)
}
