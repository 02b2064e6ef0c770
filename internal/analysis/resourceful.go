package analysis

import (
	domain "chess_insight/internal/domain/analysis"
)

// Resourcefulness weights: how well the player defended once already
// in trouble.
const (
	resWeightDefense  = 0.30
	resWeightRecovery = 0.25
	resWeightTactical = 0.20
	resWeightBestMove = 0.15
	resWeightComeback = 0.10
)

// resourcefulnessFor scores defense in critical positions: a bad eval,
// standing in check, a piece hanging, or a badly exposed king. A zero
// safety value means the evaluator never ran, not an exposed king.
func resourcefulnessFor(records []domain.MoveRecord) domain.ResourcefulnessMetrics {
	if len(records) == 0 {
		return domain.ResourcefulnessMetrics{}
	}

	var critical []domain.MoveRecord
	for _, r := range records {
		if r.EvalBefore < PressureEval || r.WasInCheck || r.HangingPieces > 0 ||
			(r.Metrics.KingSafety > 0 && r.Metrics.KingSafety < KingDangerSafety) {
			critical = append(critical, r)
		}
	}

	m := domain.ResourcefulnessMetrics{
		CriticalPositions: len(critical),
		DefensiveScore:    defensiveScore(critical),
		RecoveryRate:      recoveryRate(records),
		TacticalDefense:   tacticalDefense(critical),
		BestMoveFinding:   bestMoveFinding(critical),
		ComebackPotential: comebackPotential(records),
	}

	m.Score = clamp(100*(resWeightDefense*m.DefensiveScore+
		resWeightRecovery*m.RecoveryRate+
		resWeightTactical*m.TacticalDefense+
		resWeightBestMove*m.BestMoveFinding+
		resWeightComeback*m.ComebackPotential), 0, 100)
	return m
}

// defensiveScore averages eval recovery across critical positions,
// centered so holding steady scores 0.5.
func defensiveScore(critical []domain.MoveRecord) float64 {
	if len(critical) == 0 {
		return 0.5
	}
	var sum float64
	for _, r := range critical {
		sum += clamp01(0.5 + r.Improvement/DefensiveEvalScale)
	}
	return sum / float64(len(critical))
}

// recoveryRate is the share of clearly lost positions (eval below
// -200cp) where the move still improved the eval.
func recoveryRate(records []domain.MoveRecord) float64 {
	lost, improved := 0, 0
	for _, r := range records {
		if r.EvalBefore >= BadPositionEval {
			continue
		}
		lost++
		if r.Improvement > 0 {
			improved++
		}
	}
	if lost == 0 {
		return 0.5
	}
	return float64(improved) / float64(lost)
}

// tacticalDefense is the share of under-pressure positions answered
// with a tactical resource or at least no further loss.
func tacticalDefense(critical []domain.MoveRecord) float64 {
	if len(critical) == 0 {
		return 0.5
	}
	held := 0
	for _, r := range critical {
		if r.IsTactical || r.Improvement >= 0 {
			held++
		}
	}
	return float64(held) / float64(len(critical))
}

// bestMoveFinding is the share of critical positions where the played
// move stayed within tolerance of the engine line.
func bestMoveFinding(critical []domain.MoveRecord) float64 {
	if len(critical) == 0 {
		return 0.5
	}
	found := 0
	for _, r := range critical {
		if r.Improvement >= -BestMoveTolerance {
			found++
		}
	}
	return float64(found) / float64(len(critical))
}

// comebackPotential rewards climbing back from the worst point of the
// game, but only if the game was genuinely bad at some point.
func comebackPotential(records []domain.MoveRecord) float64 {
	worst := records[0].EvalAfter
	for _, r := range records {
		if r.EvalAfter < worst {
			worst = r.EvalAfter
		}
	}
	if worst >= BadPositionEval {
		return 0
	}
	final := records[len(records)-1].EvalAfter
	return clamp01((final - worst) / ComebackDivisor)
}
