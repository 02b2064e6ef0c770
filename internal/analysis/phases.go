package analysis

import (
	domain "chess_insight/internal/domain/analysis"
)

// SegmentPhases derives the opening/middlegame/endgame boundaries from
// the classified move list. An empty list yields zero-length phases.
func SegmentPhases(records []domain.MoveRecord) domain.GamePhaseSplit {
	total := len(records)
	if total == 0 {
		return domain.GamePhaseSplit{}
	}

	openingEnd := openingBoundary(records)
	middlegameEnd := endgameBoundary(records)

	if openingEnd > middlegameEnd {
		middlegameEnd = openingEnd
	}
	if middlegameEnd > total {
		middlegameEnd = total
	}

	return domain.GamePhaseSplit{
		OpeningEnd:    openingEnd,
		MiddlegameEnd: middlegameEnd,
		TotalMoves:    total,
	}
}

// openingBoundary is the first index in the first third of the game
// where material dips, a tactical move appears, or the hard ply cap is
// reached; defaults to min(10, total).
func openingBoundary(records []domain.MoveRecord) int {
	total := len(records)
	firstThird := total / 3

	for i := 0; i < firstThird; i++ {
		r := records[i]
		if r.Metrics.MaterialCount < OpeningMaterialLimit || r.IsTactical || i >= OpeningPlyCap {
			return i
		}
	}

	if total < OpeningPlyCap {
		return total
	}
	return OpeningPlyCap
}

// endgameBoundary is the first index past the halfway point where
// material drops below the endgame limit; defaults to total*2/3.
func endgameBoundary(records []domain.MoveRecord) int {
	total := len(records)
	for i := total / 2; i < total; i++ {
		if records[i].Metrics.MaterialCount < EndgameMaterialLimit {
			return i
		}
	}
	return total * 2 / 3
}
