package analysis

import (
	"math"

	domain "chess_insight/internal/domain/analysis"
)

// consistencyFor blends run-length, sliding-window error density,
// mistake clustering and time steadiness into one 0..100 score.
func consistencyFor(records []domain.MoveRecord) domain.ConsistencyMetrics {
	if len(records) == 0 {
		return domain.ConsistencyMetrics{}
	}

	run := longestGoodRun(records)
	runScore := math.Min(float64(run)/ConsRunTarget, 1)

	windowScore, clusters, windows := slidingWindowScore(records)

	clusterScore := 1.0
	if windows > 0 {
		clusterScore = clamp01(1 - float64(clusters)/float64(windows))
	}

	timeScore := timeSteadiness(records)

	score := 100 * (ConsWeightRun*runScore +
		ConsWeightWindow*windowScore +
		ConsWeightCluster*clusterScore +
		ConsWeightTime*timeScore)

	return domain.ConsistencyMetrics{
		Score:           clamp(score, 0, 100),
		LongestGoodRun:  run,
		MistakeClusters: clusters,
		WindowScore:     windowScore,
		TimeConsistency: timeScore,
	}
}

// longestGoodRun is the longest streak of moves at good-or-better
// quality (loss within the good bucket).
func longestGoodRun(records []domain.MoveRecord) int {
	best, cur := 0, 0
	for _, r := range records {
		if lossCP(r) <= GoodLossCP {
			cur++
			if cur > best {
				best = cur
			}
		} else {
			cur = 0
		}
	}
	return best
}

// slidingWindowScore measures mistake/blunder density over a 5-move
// window; a window holding two or more errors counts as a cluster and
// takes an extra penalty.
func slidingWindowScore(records []domain.MoveRecord) (score float64, clusters, windows int) {
	n := len(records)
	if n < ConsWindowSize {
		windows = 1
		bad := 0
		for _, r := range records {
			if r.IsMistake {
				bad++
			}
		}
		if bad >= 2 {
			clusters = 1
		}
		density := float64(bad) / float64(n)
		return clamp01(1 - 2*density - 0.1*float64(clusters)), clusters, windows
	}

	totalBad := 0
	for i := 0; i+ConsWindowSize <= n; i++ {
		windows++
		bad := 0
		for j := i; j < i+ConsWindowSize; j++ {
			if records[j].IsMistake {
				bad++
			}
		}
		totalBad += bad
		if bad >= 2 {
			clusters++
		}
	}

	density := float64(totalBad) / float64(windows*ConsWindowSize)
	return clamp01(1 - 2*density - 0.1*float64(clusters)), clusters, windows
}

// timeSteadiness is the inverse coefficient of variation of time
// spent per move; missing timing data scores full marks rather than
// penalizing the game.
func timeSteadiness(records []domain.MoveRecord) float64 {
	var sum float64
	for _, r := range records {
		sum += r.TimeSpent
	}
	mean := sum / float64(len(records))
	if mean <= 0 {
		return 1
	}

	var variance float64
	for _, r := range records {
		d := r.TimeSpent - mean
		variance += d * d
	}
	variance /= float64(len(records))

	cv := math.Sqrt(variance) / mean
	return clamp01(1 - cv)
}
