package analysis

import (
	"math"

	domain "chess_insight/internal/domain/analysis"
)

// tacticsFor measures how many tactical opportunities the player had
// and how many converted. prev metrics come from the preceding record
// of the same player so activity swings can be seen.
func tacticsFor(records []domain.MoveRecord) domain.TacticsMetrics {
	if len(records) == 0 {
		return domain.TacticsMetrics{}
	}

	var opportunities, brilliant, tactical int
	var successWeight, successCount float64

	for i, r := range records {
		activitySwing := 0.0
		if i > 0 {
			activitySwing = math.Abs(r.Metrics.PieceActivity - records[i-1].Metrics.PieceActivity)
		}

		features := tacticalFeatures(r, activitySwing)
		if len(features) == 0 {
			continue
		}
		opportunities++
		if r.IsTactical {
			tactical++
		}

		if r.Improvement > 0 {
			w := 1.0
			for _, f := range features {
				switch f {
				case featureCheck:
					w *= CheckSuccessWeight
				case featureMaterial:
					w *= MaterialSuccessWeight
				case featureComplex:
					w *= ComplexSuccessWeight
				}
			}
			successWeight += w
			successCount++
		}

		if math.Abs(r.Improvement*100) > BrilliantSwingCP && len(features) >= BrilliantMinFeatures {
			brilliant++
		}
	}

	m := domain.TacticsMetrics{
		Opportunities:  opportunities,
		Successes:      int(successCount),
		BrilliantMoves: brilliant,
	}
	if opportunities > 0 {
		m.SuccessRate = clamp01(successWeight / float64(opportunities))
		m.OpportunityRate = clamp01(float64(opportunities) / float64(len(records)))
		m.PatternRecognition = clamp01(float64(tactical) / float64(opportunities))
	}

	brilliantBonus := clamp01(float64(brilliant) * 0.5)
	m.Score = clamp(100*(0.4*m.SuccessRate+
		0.2*brilliantBonus+
		0.2*m.PatternRecognition+
		0.2*m.OpportunityRate), 0, 100)
	return m
}

type tacticalFeature int

const (
	featureMaterial tacticalFeature = iota
	featureCheck
	featureEvalSwing
	featureActivity
	featureComplex
)

// tacticalFeatures lists which opportunity conditions a move meets.
func tacticalFeatures(r domain.MoveRecord, activitySwing float64) []tacticalFeature {
	var out []tacticalFeature
	if r.MaterialChange >= 1 || r.MaterialChange <= -1 {
		out = append(out, featureMaterial)
	}
	if r.IsCheck {
		out = append(out, featureCheck)
	}
	if math.Abs(r.Improvement*100) > TacticsEvalSwingCP {
		out = append(out, featureEvalSwing)
	}
	if activitySwing > TacticsActivitySwing {
		out = append(out, featureActivity)
	}
	if r.Metrics.PositionComplexity > TacticsComplexityMin {
		out = append(out, featureComplex)
	}
	return out
}
