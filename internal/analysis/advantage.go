package analysis

import (
	domain "chess_insight/internal/domain/analysis"
)

// advantageFor tracks the running advantage from the analyzed side's
// perspective: winning-position conversion, recoveries under pressure
// and the early-vs-late trend.
func advantageFor(records []domain.MoveRecord) domain.AdvantageMetrics {
	if len(records) == 0 {
		return domain.AdvantageMetrics{}
	}

	series := make([]float64, len(records))
	for i, r := range records {
		series[i] = clamp(r.EvalAfter, AdvantageClampMin, AdvantageClampMax)
	}

	var sum float64
	for _, v := range series {
		sum += v
	}
	mean := sum / float64(len(series))

	var winning, converted, pressure, recovered int
	for i, v := range series {
		if v > WinningAdvantage {
			winning++
			if i+1 >= len(series) || series[i+1] >= v-BestMoveTolerance {
				converted++
			}
		}
		if v < PressureEval {
			pressure++
			if i+1 < len(series) && series[i+1] >= PressureEval {
				recovered++
			}
		}
	}

	m := domain.AdvantageMetrics{
		Mean:             clamp(mean, AdvantageClampMin, AdvantageClampMax),
		Final:            series[len(series)-1],
		WinningPositions: winning,
		PressureMoments:  pressure,
		Trend:            clamp(trendOf(series), AdvantageClampMin, AdvantageClampMax),
	}
	if winning > 0 {
		m.ConversionRate = clamp01(float64(converted) / float64(winning))
	}
	if pressure > 0 {
		m.PressureHandling = clamp01(float64(recovered) / float64(pressure))
	}
	return m
}

// trendOf is the late-third mean minus the early-third mean.
func trendOf(series []float64) float64 {
	n := len(series)
	third := n / 3
	if third == 0 {
		return 0
	}

	var early, late float64
	for i := 0; i < third; i++ {
		early += series[i]
	}
	for i := n - third; i < n; i++ {
		late += series[i]
	}
	return late/float64(third) - early/float64(third)
}
