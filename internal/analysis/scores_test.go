package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDeriveSeeds_AlwaysNonNegative(t *testing.T) {
	for _, c := range [][2]float64{{-90, -180}, {90, 180}, {-33.8688, 151.2093}, {0, 0}, {40.7128, -74.006}} {
		s := DeriveSeeds(c[0], c[1])
		for _, v := range []float64{s.AQI, s.LandCost, s.GroundStability, s.Flood, s.Earthquake, s.Tsunami, s.Landslide, s.Climate} {
			assert.GreaterOrEqual(t, v, 0.0)
		}
	}
}

func TestDeriveSeeds_NewYork(t *testing.T) {
	s := DeriveSeeds(40.7128, -74.0060)
	assert.InDelta(t, 33293.2, s.AQI, 1e-6)
	assert.InDelta(t, 3329.32, s.LandCost, 1e-6)
	assert.InDelta(t, 40638.794, s.GroundStability, 1e-6)
	assert.InDelta(t, 73965.2872, s.Flood, 1e-6)
	assert.InDelta(t, 16646.6, s.Earthquake, 1e-6)
	assert.InDelta(t, 14059.24, s.Tsunami, 1e-6)
	assert.InDelta(t, 2587.36, s.Landslide, 1e-6)
	assert.InDelta(t, 332.932, s.Climate, 1e-6)
}

func TestAQI_Range(t *testing.T) {
	for lat := -90.0; lat <= 90; lat += 7.25 {
		for lon := -180.0; lon <= 180; lon += 11.5 {
			aqi := AQI(lat, lon)
			assert.GreaterOrEqual(t, aqi, 20)
			assert.Less(t, aqi, 150)
		}
	}
}

func TestAQIMultiplier(t *testing.T) {
	tests := []struct {
		aqi  int
		want float64
	}{
		{20, 1.3},
		{49, 1.3},
		{50, 1.0},
		{99, 1.0},
		{100, 0.7},
		{149, 0.7},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, AQIMultiplier(tt.aqi), "aqi %d", tt.aqi)
	}
}

func TestLandCost_Positive(t *testing.T) {
	for lat := -90.0; lat <= 90; lat += 9.5 {
		for lon := -180.0; lon <= 180; lon += 13.25 {
			assert.Positive(t, LandCost(lat, lon, AQI(lat, lon)))
		}
	}
}

func TestLandCost_Origin(t *testing.T) {
	// sin(0) = 0 so the draw is zero and only the multiplier applies.
	assert.Equal(t, 65000, LandCost(0, 0, 20))
	assert.Equal(t, 50000, LandCost(0, 0, 75))
	assert.Equal(t, 35000, LandCost(0, 0, 120))
}

func TestLandCost_UsesSuppliedAQI(t *testing.T) {
	clean := LandCost(40.7128, -74.0060, 30)
	dirty := LandCost(40.7128, -74.0060, 130)
	assert.Greater(t, clean, dirty)
}

func TestClimate_Origin(t *testing.T) {
	got := Climate(0, 0)
	assert.Equal(t, ClimateForecast{
		TemperatureTrend: "Increasing",
		HumidityTrend:    "Decreasing",
		AvgTemperature:   15,
		AvgHumidity:      40,
		DisasterTrend:    "Decreasing risk",
	}, got)
}

func TestClimate_Ranges(t *testing.T) {
	validTrend := map[string]bool{"Increasing": true, "Stable": true, "Decreasing": true}
	validDisaster := map[string]bool{"Increasing risk": true, "Stable conditions": true, "Decreasing risk": true}
	for lat := -90.0; lat <= 90; lat += 12.5 {
		for lon := -180.0; lon <= 180; lon += 17 {
			c := Climate(lat, lon)
			assert.GreaterOrEqual(t, c.AvgTemperature, 15)
			assert.Less(t, c.AvgTemperature, 35)
			assert.GreaterOrEqual(t, c.AvgHumidity, 40)
			assert.Less(t, c.AvgHumidity, 80)
			assert.True(t, validTrend[c.TemperatureTrend])
			assert.True(t, validTrend[c.HumidityTrend])
			assert.True(t, validDisaster[c.DisasterTrend])
		}
	}
}

func TestTrendIndex(t *testing.T) {
	assert.Equal(t, 0, trendIndex(0))
	assert.Equal(t, 0, trendIndex(0.33))
	assert.Equal(t, 1, trendIndex(0.34))
	assert.Equal(t, 1, trendIndex(0.66))
	assert.Equal(t, 2, trendIndex(0.67))
	assert.Equal(t, 2, trendIndex(0.9999999))
}
