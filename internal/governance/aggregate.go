package governance

import "math"

// EvidenceFactor is the share of a control's weight credited when it is implemented.
const EvidenceFactor = 0.2

// Aggregate computes a 0..100 score per framework. Implemented controls add
// EvidenceFactor*w to both numerator and denominator; unimplemented controls add nothing.
func Aggregate(frameworks []Framework, questions []Question, controls ControlSet, perQuestion map[string]int) map[Framework]float64 {
	totals := make(map[Framework]float64, len(frameworks))
	maxTotals := make(map[Framework]float64, len(frameworks))

	for _, q := range questions {
		m := float64(ClampMaturity(perQuestion[q.ID])) / 4.0
		for _, f := range frameworks {
			w := q.Weights.Of(f)
			totals[f] += m * w
			maxTotals[f] += w
		}
	}

	for _, ctrl := range controls {
		if !ctrl.Evidence {
			continue
		}
		for _, f := range frameworks {
			w := ctrl.Weights.Of(f)
			totals[f] += EvidenceFactor * w
			maxTotals[f] += EvidenceFactor * w
		}
	}

	scores := make(map[Framework]float64, len(frameworks))
	for _, f := range frameworks {
		if maxTotals[f] <= 0 {
			scores[f] = 0
			continue
		}
		scores[f] = clampScore(100.0 * totals[f] / maxTotals[f])
	}
	return scores
}

// Overall is the arithmetic mean of the framework scores.
func Overall(scores map[Framework]float64, frameworks []Framework) float64 {
	if len(frameworks) == 0 {
		return 0
	}
	sum := 0.0
	for _, f := range frameworks {
		sum += scores[f]
	}
	return sum / float64(len(frameworks))
}

func clampScore(v float64) float64 {
	if v < 0 || math.IsNaN(v) {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
