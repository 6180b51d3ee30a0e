package model

import "time"

// AnalysisRecord is a persisted analysis: the flat fields of a report keyed to
// the user who requested it.
type AnalysisRecord struct {
	ID              string    `json:"id" csv:"id"`
	UserID          string    `json:"user_id" csv:"user_id"`
	Latitude        float64   `json:"latitude" csv:"latitude"`
	Longitude       float64   `json:"longitude" csv:"longitude"`
	AQI             int       `json:"aqi" csv:"aqi"`
	GroundStability string    `json:"ground_stability" csv:"ground_stability"`
	FloodRisk       string    `json:"flood_risk" csv:"flood_risk"`
	EarthquakeRisk  string    `json:"earthquake_risk" csv:"earthquake_risk"`
	TsunamiRisk     string    `json:"tsunami_risk" csv:"tsunami_risk"`
	LandslideRisk   string    `json:"landslide_risk" csv:"landslide_risk"`
	LandCost        int       `json:"land_cost" csv:"land_cost"`
	ModelVersion    string    `json:"model_version" csv:"model_version"`
	CreatedAt       time.Time `json:"created_at" csv:"created_at"`
}
