package decision

import (
	"fmt"
	"math"
)

// StaticScorer always returns the same score. Useful for demos and tests.
type StaticScorer struct {
	Score float64
}

// Predict returns the fixed score, rejecting values outside [0, 1].
func (s StaticScorer) Predict(map[string]float64) (float64, error) {
	if s.Score < 0 || s.Score > 1 {
		return 0, fmt.Errorf("static score %v outside [0,1]", s.Score)
	}
	return s.Score, nil
}

// MomentumScorer squashes relative momentum into a score via a logistic
// curve: positive momentum pushes the score above 0.5, negative below.
type MomentumScorer struct {
	// Sensitivity scales how quickly relative momentum saturates the
	// score. Zero means the default of 50.
	Sensitivity float64
}

// Predict derives a score from momentum_8 relative to ma_8.
func (s MomentumScorer) Predict(features map[string]float64) (float64, error) {
	momentum, ok := features["momentum_8"]
	if !ok {
		return 0, fmt.Errorf("feature momentum_8 missing")
	}
	base := features["ma_8"]
	if base == 0 {
		// No history yet; stay neutral.
		return 0.5, nil
	}

	sensitivity := s.Sensitivity
	if sensitivity == 0 {
		sensitivity = 50
	}
	return 1 / (1 + math.Exp(-sensitivity*momentum/base)), nil
}
