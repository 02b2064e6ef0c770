package analysis

import (
	"math"

	domain "chess_insight/internal/domain/analysis"
)

// moveAccuracy scores one move on a 0..120 scale before weighting:
// positive improvements earn a capped bonus above 100, losses decay
// with a concave exponent so small inaccuracies cost little.
func moveAccuracy(r domain.MoveRecord) (score, weight float64) {
	impCP := r.Improvement * 100

	if impCP > 0 {
		score = 100 + math.Min(impCP/5, AccuracyBonusCap)
	} else {
		loss := math.Min(-impCP, AccuracyLossCapCP)
		score = 100 * (1 - math.Pow(loss/AccuracyLossCapCP, AccuracyLossExp))
	}

	weight = 0.5 + r.Metrics.PositionComplexity/100
	if r.IsCritical {
		weight *= 1.5
	}
	return score, weight
}

// accuracyFor computes the weighted mean accuracy over the given
// records, clamped to [0,100].
func accuracyFor(records []domain.MoveRecord) float64 {
	if len(records) == 0 {
		return 0
	}
	var sum, weights float64
	for _, r := range records {
		s, w := moveAccuracy(r)
		sum += s * w
		weights += w
	}
	if weights == 0 {
		return 0
	}
	return clamp(sum/weights, 0, 100)
}

// lossCP is the centipawn loss of a move (zero when the move improved
// the eval).
func lossCP(r domain.MoveRecord) float64 {
	if r.Improvement >= 0 {
		return 0
	}
	return -r.Improvement * 100
}
