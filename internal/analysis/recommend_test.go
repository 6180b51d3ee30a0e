package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRecommend(t *testing.T) {
	tests := []struct {
		name       string
		stability  RiskLevel
		flood      RiskLevel
		earthquake RiskLevel
		want       UrbanPlanning
	}{
		{
			name:      "all medium falls back to defaults",
			stability: Medium, flood: Medium, earthquake: Medium,
			want: UrbanPlanning{
				Optimal:   []string{"Low-rise residential", "Parks and recreation"},
				Dangerous: []string{},
				Avoid:     []string{},
				Reasons:   []string{},
			},
		},
		{
			name:      "stable ground and dry",
			stability: High, flood: Low, earthquake: Low,
			want: UrbanPlanning{
				Optimal: []string{
					"Residential high-rise buildings", "Commercial centers", "Industrial facilities",
					"Underground parking", "Basement storage facilities",
				},
				Dangerous: []string{},
				Avoid:     []string{},
				Reasons:   []string{"High ground stability allows for multi-story construction"},
			},
		},
		{
			name:      "worst case",
			stability: Low, flood: High, earthquake: High,
			want: UrbanPlanning{
				Optimal:   []string{"Low-rise residential", "Parks and recreation"},
				Dangerous: []string{"Low-lying areas", "River proximity zones", "Areas near fault lines", "Non-reinforced structures"},
				Avoid:     []string{"High-rise buildings", "Heavy industrial structures", "Underground construction", "Ground-floor residential"},
				Reasons: []string{
					"Low ground stability increases foundation failure risk",
					"High flood risk requires elevated construction",
					"High seismic activity requires earthquake-resistant design",
				},
			},
		},
		{
			name:      "low flood alone prevents fallback",
			stability: Medium, flood: Low, earthquake: Medium,
			want: UrbanPlanning{
				Optimal:   []string{"Underground parking", "Basement storage facilities"},
				Dangerous: []string{},
				Avoid:     []string{},
				Reasons:   []string{},
			},
		},
		{
			name:      "low and medium earthquake add nothing",
			stability: Medium, flood: Medium, earthquake: Low,
			want: UrbanPlanning{
				Optimal:   []string{"Low-rise residential", "Parks and recreation"},
				Dangerous: []string{},
				Avoid:     []string{},
				Reasons:   []string{},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Recommend(tt.stability, tt.flood, tt.earthquake))
		})
	}
}

func TestRecommend_OptimalNeverEmpty(t *testing.T) {
	levels := []RiskLevel{Low, Medium, High}
	for _, s := range levels {
		for _, f := range levels {
			for _, e := range levels {
				up := Recommend(s, f, e)
				assert.NotEmpty(t, up.Optimal, "stability=%s flood=%s earthquake=%s", s, f, e)
			}
		}
	}
}

func TestEconomicProspects(t *testing.T) {
	tests := []struct {
		name     string
		landCost int
		aqi      int
		want     []string
	}{
		{
			name: "prime, clean air", landCost: 400000, aqi: 30,
			want: []string{
				"Prime location with high investment potential",
				"Suitable for luxury residential or commercial development",
				"Excellent air quality attracts premium residents",
			},
		},
		{
			name: "moderate, mid band air", landCost: 200000, aqi: 75,
			want: []string{
				"Moderate development potential",
				"Balanced cost-benefit ratio for mid-range projects",
			},
		},
		{
			name: "affordable, polluted", landCost: 100000, aqi: 120,
			want: []string{
				"Affordable development opportunity",
				"Suitable for budget-conscious projects",
				"Air quality improvements needed to increase value",
			},
		},
		{
			name: "boundaries are exclusive", landCost: 300000, aqi: 100,
			want: []string{
				"Moderate development potential",
				"Balanced cost-benefit ratio for mid-range projects",
			},
		},
		{
			name: "lower boundaries", landCost: 150000, aqi: 50,
			want: []string{
				"Affordable development opportunity",
				"Suitable for budget-conscious projects",
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, EconomicProspects(tt.landCost, tt.aqi))
		})
	}
}

func TestEconomicProspects_Length(t *testing.T) {
	for _, cost := range []int{35000, 150000, 150001, 300000, 300001, 650000} {
		for aqi := 20; aqi < 150; aqi++ {
			n := len(EconomicProspects(cost, aqi))
			assert.GreaterOrEqual(t, n, 2)
			assert.LessOrEqual(t, n, 3)
		}
	}
}
