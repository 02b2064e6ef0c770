package analysis

import (
	domain "chess_insight/internal/domain/analysis"
)

// ExpectedTimePerMove is the clock budget for one move: the total time
// spread over twice the player's move count, thinking time being shared
// with the opponent's turns. Zero when no clock data is available.
func ExpectedTimePerMove(totalTime float64, moves int) float64 {
	if totalTime <= 0 || moves <= 0 {
		return 0
	}
	return totalTime / float64(moves*2)
}

// timeManagementFor scores how the clock was used: steadiness,
// appropriate per-move usage against a phase-adjusted expectation and
// behavior in critical moments.
func timeManagementFor(records []domain.MoveRecord, split domain.GamePhaseSplit, totalTime, increment float64) domain.TimeManagementMetrics {
	if len(records) == 0 {
		return domain.TimeManagementMetrics{}
	}

	expected := ExpectedTimePerMove(totalTime, len(records))

	consistency := timeSteadiness(records)
	usage := appropriateUsage(records, split, expected, increment)
	pressure := pressureHandlingTime(records)

	bonus := 0.0
	if increment > 0 {
		bonus = IncrementBonusValue
	}

	score := 100 * (TimeWeightCons*consistency +
		TimeWeightUsage*usage +
		TimeWeightPressure*pressure +
		bonus)

	return domain.TimeManagementMetrics{
		Score:            clamp(score, 0, 100),
		ExpectedPerMove:  expected,
		TimeConsistency:  consistency,
		AppropriateUsage: usage,
		PressureHandling: pressure,
		IncrementBonus:   bonus,
	}
}

// expectedFor adjusts the base expectation by game phase: more time is
// normal early, less late, and never below half the increment.
func expectedFor(ply int, split domain.GamePhaseSplit, expected, increment float64) float64 {
	adjusted := expected
	switch {
	case ply < split.OpeningEnd:
		adjusted = expected * EarlyPhaseFactor
	case ply >= split.MiddlegameEnd:
		adjusted = expected * LatePhaseFactor
	}
	floor := increment * PressureTimeFloor
	if adjusted < floor {
		adjusted = floor
	}
	return adjusted
}

// appropriateUsage is the share of moves whose time spent stayed in a
// sane band around the phase expectation. Without timing data every
// move passes.
func appropriateUsage(records []domain.MoveRecord, split domain.GamePhaseSplit, expected, increment float64) float64 {
	if expected <= 0 {
		return 1
	}
	ok := 0
	for _, r := range records {
		want := expectedFor(r.Ply, split, expected, increment)
		if want <= 0 {
			ok++
			continue
		}
		if r.TimeSpent >= 0.1*want && r.TimeSpent <= 3*want {
			ok++
		}
	}
	return float64(ok) / float64(len(records))
}

// pressureHandlingTime is the share of critical moves that did not
// turn into mistakes; with no critical moves the game is neutral.
func pressureHandlingTime(records []domain.MoveRecord) float64 {
	critical, held := 0, 0
	for _, r := range records {
		if !r.IsCritical {
			continue
		}
		critical++
		if !r.IsMistake {
			held++
		}
	}
	if critical == 0 {
		return 1
	}
	return float64(held) / float64(critical)
}
