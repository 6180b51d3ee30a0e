// Package analysis derives the deterministic territory report for a coordinate.
//
// Every value in a report is a pure function of (latitude, longitude). Scores
// come from a sine-based hash, not a statistical generator; the formulas are
// kept bit-for-bit so previously stored reports can be re-derived.
package analysis

import "math"

// ModelVersion identifies the scoring model that produced a report.
const ModelVersion = "sine-v1"

// SeededRandom maps seed to a value in [0, 1) via sin(seed)*10000 mod 1.
func SeededRandom(seed float64) float64 {
	x := math.Sin(seed) * 10000
	return x - math.Floor(x)
}
