package analysis

import (
	domain "chess_insight/internal/domain/analysis"
)

// ValidateReport clamps every numeric field of the report to its
// documented range. It runs as the final pass before a report leaves
// the aggregator, so out-of-range intermediate math can never escape.
func ValidateReport(r *domain.MetricsReport) {
	r.Overall.Accuracy = clamp(r.Overall.Accuracy, 0, 100)

	r.TimeManagement.Score = clamp(r.TimeManagement.Score, 0, 100)
	r.TimeManagement.TimeConsistency = clamp01(r.TimeManagement.TimeConsistency)
	r.TimeManagement.AppropriateUsage = clamp01(r.TimeManagement.AppropriateUsage)
	r.TimeManagement.PressureHandling = clamp01(r.TimeManagement.PressureHandling)
	r.TimeManagement.IncrementBonus = clamp(r.TimeManagement.IncrementBonus, 0, IncrementBonusValue)
	if r.TimeManagement.ExpectedPerMove < 0 {
		r.TimeManagement.ExpectedPerMove = 0
	}

	r.Consistency.Score = clamp(r.Consistency.Score, 0, 100)
	r.Consistency.WindowScore = clamp01(r.Consistency.WindowScore)
	r.Consistency.TimeConsistency = clamp01(r.Consistency.TimeConsistency)
	if r.Consistency.LongestGoodRun < 0 {
		r.Consistency.LongestGoodRun = 0
	}
	if r.Consistency.MistakeClusters < 0 {
		r.Consistency.MistakeClusters = 0
	}

	clampPhase(&r.Phases.Opening)
	clampPhase(&r.Phases.Middlegame)
	clampPhase(&r.Phases.Endgame)

	r.Tactics.Score = clamp(r.Tactics.Score, 0, 100)
	r.Tactics.SuccessRate = clamp01(r.Tactics.SuccessRate)
	r.Tactics.OpportunityRate = clamp01(r.Tactics.OpportunityRate)
	r.Tactics.PatternRecognition = clamp01(r.Tactics.PatternRecognition)

	r.Advantage.Mean = clamp(r.Advantage.Mean, AdvantageClampMin, AdvantageClampMax)
	r.Advantage.Final = clamp(r.Advantage.Final, AdvantageClampMin, AdvantageClampMax)
	r.Advantage.Trend = clamp(r.Advantage.Trend, AdvantageClampMin, AdvantageClampMax)
	r.Advantage.ConversionRate = clamp01(r.Advantage.ConversionRate)
	r.Advantage.PressureHandling = clamp01(r.Advantage.PressureHandling)

	r.Resourcefulness.Score = clamp(r.Resourcefulness.Score, 0, 100)
	r.Resourcefulness.DefensiveScore = clamp01(r.Resourcefulness.DefensiveScore)
	r.Resourcefulness.RecoveryRate = clamp01(r.Resourcefulness.RecoveryRate)
	r.Resourcefulness.TacticalDefense = clamp01(r.Resourcefulness.TacticalDefense)
	r.Resourcefulness.BestMoveFinding = clamp01(r.Resourcefulness.BestMoveFinding)
	r.Resourcefulness.ComebackPotential = clamp01(r.Resourcefulness.ComebackPotential)
}

func clampPhase(s *domain.PhaseSection) {
	s.Accuracy = clamp(s.Accuracy, 0, 100)
	if s.AvgTime < 0 {
		s.AvgTime = 0
	}
}
