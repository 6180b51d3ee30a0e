// Package geo validates coordinates at the system boundary and converts them
// to geometry for storage and map display.
package geo

import (
	"math"
	"strconv"
	"strings"
)

// Coordinate ranges in decimal degrees.
const (
	MinLatitude  = -90.0
	MaxLatitude  = 90.0
	MinLongitude = -180.0
	MaxLongitude = 180.0
)

// Coordinate is a validated WGS84 latitude/longitude pair.
type Coordinate struct {
	Latitude  float64 `json:"latitude" csv:"latitude"`
	Longitude float64 `json:"longitude" csv:"longitude"`
}

// Reason classifies a validation failure.
type Reason string

const (
	ReasonNotANumber Reason = "not_a_number"
	ReasonOutOfRange Reason = "out_of_range"
)

// Field names used in validation errors.
const (
	FieldLatitude  = "latitude"
	FieldLongitude = "longitude"
)

// ValidationError is a user-facing rejection of coordinate input. Message is
// safe to show as-is.
type ValidationError struct {
	Field   string `json:"field"`
	Reason  Reason `json:"reason"`
	Message string `json:"error"`
}

func (e *ValidationError) Error() string {
	return e.Message
}

// ParseCoordinate parses and validates raw latitude/longitude text. Latitude
// is checked before longitude, and a non-numeric value is reported before any
// range problem.
func ParseCoordinate(latText, lonText string) (Coordinate, error) {
	lat, ok := parseNumber(latText)
	if !ok {
		return Coordinate{}, notANumber(FieldLatitude)
	}
	lon, ok := parseNumber(lonText)
	if !ok {
		return Coordinate{}, notANumber(FieldLongitude)
	}
	c := Coordinate{Latitude: lat, Longitude: lon}
	if err := Validate(c); err != nil {
		return Coordinate{}, err
	}
	return c, nil
}

// Validate checks an already-numeric coordinate.
func Validate(c Coordinate) error {
	if !finite(c.Latitude) {
		return notANumber(FieldLatitude)
	}
	if !finite(c.Longitude) {
		return notANumber(FieldLongitude)
	}
	if c.Latitude < MinLatitude || c.Latitude > MaxLatitude {
		return &ValidationError{
			Field:   FieldLatitude,
			Reason:  ReasonOutOfRange,
			Message: "Latitude must be between -90 and 90",
		}
	}
	if c.Longitude < MinLongitude || c.Longitude > MaxLongitude {
		return &ValidationError{
			Field:   FieldLongitude,
			Reason:  ReasonOutOfRange,
			Message: "Longitude must be between -180 and 180",
		}
	}
	return nil
}

func parseNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || !finite(v) {
		return 0, false
	}
	return v, true
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func notANumber(field string) *ValidationError {
	label := "Latitude"
	if field == FieldLongitude {
		label = "Longitude"
	}
	return &ValidationError{
		Field:   field,
		Reason:  ReasonNotANumber,
		Message: label + " must be a valid number",
	}
}
