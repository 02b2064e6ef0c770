package analysis

import (
	"github.com/notnil/chess"

	domain "chess_insight/internal/domain/analysis"
)

// PositionEvaluator computes the heuristic feature vector for a
// position. All functions are pure and deterministic; on any internal
// failure they fall back to their documented defaults instead of
// panicking outward.

const (
	mobilityNormSquares = 8.0
	centerControlSpread = 16.0
	kingSafetyStep      = 0.1
	doubledPawnPenalty  = 0.1
	connectedPawnBonus  = 0.15
	structureOffset     = 0.5

	complexityPieceWeight    = 0.4
	complexityMobilityWeight = 0.4
	complexitySpreadWeight   = 0.2
	complexityMoveCap        = 40.0
)

var centerSquares = []chess.Square{chess.E4, chess.D4, chess.E5, chess.D5}

// EvaluatePosition builds the full feature vector for pos from the
// perspective of the side to move.
func EvaluatePosition(pos *chess.Position) (m domain.PositionMetrics) {
	defer func() {
		if r := recover(); r != nil {
			m = domain.DefaultPositionMetrics()
		}
	}()

	b := pos.Board()
	side := pos.Turn()
	m = domain.PositionMetrics{
		PieceActivity:      PieceActivity(b),
		CenterControl:      CenterControl(b, side),
		KingSafety:         KingSafety(b, side),
		PawnStructure:      PawnStructure(b, side),
		PositionComplexity: PositionComplexity(pos),
		MaterialCount:      materialCount(b),
	}
	return m
}

// PieceActivity is the average normalized mobility of all non-king
// pieces on the board: attacked-square count over 8, capped at 1.
func PieceActivity(b *chess.Board) float64 {
	pieces := 0
	total := 0.0
	for sq, p := range b.SquareMap() {
		if p.Type() == chess.King {
			continue
		}
		pieces++
		mob := float64(len(attackedSquares(b, sq))) / mobilityNormSquares
		if mob > 1 {
			mob = 1
		}
		total += mob
	}
	if pieces == 0 {
		return 0
	}
	return clamp01(total / float64(pieces))
}

// CenterControl is the attacker-count differential over e4/d4/e5/d5
// from the side's perspective, offset to [0,1].
func CenterControl(b *chess.Board, side chess.Color) float64 {
	diff := 0
	for _, sq := range centerSquares {
		diff += countAttackers(b, sq, side) - countAttackers(b, sq, other(side))
	}
	return clamp01(0.5 + float64(diff)/centerControlSpread)
}

// KingSafety counts the pawn shield in front of the side's king and
// subtracts enemy attackers of the king zone, offset 0.5.
func KingSafety(b *chess.Board, side chess.Color) float64 {
	ksq := kingSquare(b, side)
	if ksq < 0 {
		return 0.5
	}
	f, r := int(ksq.File()), int(ksq.Rank())
	dir := 1
	if side == chess.Black {
		dir = -1
	}

	shield := 0
	for df := -1; df <= 1; df++ {
		if !onBoard(f+df, r+dir) {
			continue
		}
		p := b.Piece(squareAt(f+df, r+dir))
		if p.Type() == chess.Pawn && p.Color() == side {
			shield++
		}
	}

	attackers := 0
	zone := append([]chess.Square{ksq}, attackedSquares(b, ksq)...)
	seen := map[chess.Square]bool{}
	for sq, p := range b.SquareMap() {
		if p.Color() != other(side) || p.Type() == chess.King {
			continue
		}
		for _, a := range attackedSquares(b, sq) {
			for _, z := range zone {
				if a == z && !seen[sq] {
					seen[sq] = true
					attackers++
				}
			}
		}
	}

	return clamp01(0.5 + kingSafetyStep*float64(shield-attackers))
}

// PawnStructure scores the side's pawns: -0.1 per doubled pawn,
// +0.15 per connected pawn, offset 0.5, clamped.
func PawnStructure(b *chess.Board, side chess.Color) float64 {
	var pawns []chess.Square
	filesCount := [8]int{}
	for sq, p := range b.SquareMap() {
		if p.Type() == chess.Pawn && p.Color() == side {
			pawns = append(pawns, sq)
			filesCount[int(sq.File())]++
		}
	}

	score := structureOffset
	for _, n := range filesCount {
		if n > 1 {
			score -= doubledPawnPenalty * float64(n-1)
		}
	}
	for _, sq := range pawns {
		f := int(sq.File())
		if (f > 0 && filesCount[f-1] > 0) || (f < 7 && filesCount[f+1] > 0) {
			score += connectedPawnBonus
		}
	}
	return clamp01(score)
}

// PositionComplexity blends piece count, legal-move count and the
// file/rank spread of the occupied squares.
func PositionComplexity(pos *chess.Position) float64 {
	b := pos.Board()
	pieces := 0
	files := map[int]bool{}
	ranks := map[int]bool{}
	for sq := range b.SquareMap() {
		pieces++
		files[int(sq.File())] = true
		ranks[int(sq.Rank())] = true
	}

	pieceTerm := float64(pieces) / 32.0
	moveTerm := float64(len(pos.ValidMoves())) / complexityMoveCap
	if moveTerm > 1 {
		moveTerm = 1
	}
	spreadTerm := (float64(len(files))/8.0 + float64(len(ranks))/8.0) / 2.0

	return clamp01(complexityPieceWeight*pieceTerm +
		complexityMobilityWeight*moveTerm +
		complexitySpreadWeight*spreadTerm)
}

// MaterialCount sums standard piece values for both sides.
func MaterialCount(pos *chess.Position) int {
	return materialCount(pos.Board())
}
