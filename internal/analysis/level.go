package analysis

// RiskLevel is a three-way bucket used for hazards and ground stability.
type RiskLevel string

// Risk levels, ordered from least to most.
const (
	Low    RiskLevel = "Low"
	Medium RiskLevel = "Medium"
	High   RiskLevel = "High"
)

// Bucket thresholds. A value equal to a threshold falls into the upper bucket.
const (
	lowThreshold    = 0.33
	mediumThreshold = 0.66
)

// LevelFor buckets a pseudo-random draw r into a RiskLevel.
func LevelFor(r float64) RiskLevel {
	if r < lowThreshold {
		return Low
	}
	if r < mediumThreshold {
		return Medium
	}
	return High
}

// Valid reports whether l is one of the known levels.
func (l RiskLevel) Valid() bool {
	switch l {
	case Low, Medium, High:
		return true
	default:
		return false
	}
}
