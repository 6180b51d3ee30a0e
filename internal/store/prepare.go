package store

import (
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"

	"github.com/sells-group/geo-analytics/internal/geo"
	"github.com/sells-group/geo-analytics/internal/model"
)

// analysisColumns is the column order shared by inserts and selects.
var analysisColumns = []string{
	"id", "user_id", "latitude", "longitude", "aqi",
	"ground_stability", "flood_risk", "earthquake_risk", "tsunami_risk", "landslide_risk",
	"land_cost", "model_version", "created_at",
}

// stampAnalysis fills in ID and CreatedAt when the caller left them empty.
func stampAnalysis(rec model.AnalysisRecord) (model.AnalysisRecord, error) {
	if rec.UserID == "" {
		return rec, eris.New("analysis record has no user")
	}
	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	rec.CreatedAt = rec.CreatedAt.UTC()
	return rec, nil
}

// analysisRow returns the insert values for rec: the shared columns followed
// by the EWKB location.
func analysisRow(rec model.AnalysisRecord) ([]any, error) {
	loc, err := geo.EncodeEWKB(geo.Coordinate{Latitude: rec.Latitude, Longitude: rec.Longitude})
	if err != nil {
		return nil, err
	}
	return []any{
		rec.ID, rec.UserID, rec.Latitude, rec.Longitude, rec.AQI,
		rec.GroundStability, rec.FloodRisk, rec.EarthquakeRisk, rec.TsunamiRisk, rec.LandslideRisk,
		rec.LandCost, rec.ModelVersion, rec.CreatedAt, loc,
	}, nil
}

type scannable interface {
	Scan(dest ...any) error
}

func scanAnalysis(row scannable) (*model.AnalysisRecord, error) {
	var r model.AnalysisRecord
	err := row.Scan(
		&r.ID, &r.UserID, &r.Latitude, &r.Longitude, &r.AQI,
		&r.GroundStability, &r.FloodRisk, &r.EarthquakeRisk, &r.TsunamiRisk, &r.LandslideRisk,
		&r.LandCost, &r.ModelVersion, &r.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	r.CreatedAt = r.CreatedAt.UTC()
	return &r, nil
}
