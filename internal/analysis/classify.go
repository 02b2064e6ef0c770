package analysis

import (
	"math"

	"github.com/notnil/chess"

	domain "chess_insight/internal/domain/analysis"
)

// Classification carries the per-move heuristic flags derived from the
// engine evals and the board.
type Classification struct {
	Tactical       bool
	Critical       bool
	Mistake        bool
	Blunder        bool
	Fork           bool
	Pin            bool
	Capture        bool
	Check          bool
	Checkmate      bool
	WasInCheck     bool
	MaterialChange int
	HangingOwn     int
}

// ClassifyMove evaluates one applied move. Evals are in pawns from the
// mover's perspective; after is the position once the move was played.
func ClassifyMove(before, after *chess.Position, move *chess.Move, evalBefore, evalAfter float64, metrics domain.PositionMetrics) Classification {
	var c Classification

	mover := before.Turn()
	improvement := evalAfter - evalBefore
	drop := evalBefore - evalAfter

	captured := capturedPiece(before, move)
	c.Capture = captured != chess.NoPieceType
	c.MaterialChange = pieceValue(captured)
	if promo := move.Promo(); promo != chess.NoPieceType {
		c.MaterialChange += pieceValue(promo) - pieceValue(chess.Pawn)
	}

	afterBoard := after.Board()
	c.Checkmate = after.Status() == chess.Checkmate
	c.Check = c.Checkmate || inCheck(afterBoard, other(mover))
	c.WasInCheck = inCheck(before.Board(), mover)
	c.HangingOwn = hangingPieces(afterBoard, mover)

	c.Fork = detectFork(afterBoard, move.S2())
	c.Pin = detectPin(afterBoard, move.S2())

	c.Tactical = c.isTactical(captured, improvement, metrics)
	c.Critical = c.isCritical(captured, evalBefore, evalAfter)
	c.Mistake = drop > MistakeDropPawns
	c.Blunder = drop > BlunderDropPawns
	if c.Blunder {
		c.Mistake = true
	}
	return c
}

func (c Classification) isTactical(captured chess.PieceType, improvement float64, m domain.PositionMetrics) bool {
	abs := math.Abs(improvement)
	switch {
	case captured != chess.NoPieceType && captured != chess.Pawn:
		return true
	case c.Checkmate:
		return true
	case abs >= TacticalSwingPawns:
		return true
	case m.PositionComplexity > ComplexityTacticalMin && abs >= ComplexTacticalSwing:
		return true
	case m.PieceActivity > ActivityTacticalMin && m.PositionComplexity > ActiveComplexityMin && abs >= ActiveTacticalSwing:
		return true
	case c.WasInCheck && abs >= CheckTacticalSwing:
		return true
	case c.Capture && abs >= CaptureTacticalSwing:
		return true
	case c.Fork || c.Pin:
		return true
	}
	return false
}

func (c Classification) isCritical(captured chess.PieceType, evalBefore, evalAfter float64) bool {
	switch {
	case math.Abs(evalAfter-evalBefore) > CriticalSwingPawns:
		return true
	case math.Abs(evalBefore) > CriticalEvalPawns:
		return true
	case math.Abs(evalAfter) > CriticalEvalPawns:
		return true
	case c.Check || c.Checkmate:
		return true
	case captured == chess.Queen || captured == chess.Rook:
		return true
	}
	return false
}

// capturedPiece returns the piece type removed from the board by the
// move, accounting for en passant.
func capturedPiece(before *chess.Position, move *chess.Move) chess.PieceType {
	if move.HasTag(chess.EnPassant) {
		return chess.Pawn
	}
	t := before.Board().Piece(move.S2())
	if t == chess.NoPiece {
		return chess.NoPieceType
	}
	return t.Type()
}

// detectFork: the moved piece simultaneously attacks at least two
// enemy pieces whose combined value reaches the fork threshold.
func detectFork(b *chess.Board, sq chess.Square) bool {
	targets := attackedEnemyPieces(b, sq)
	if len(targets) < ForkMinTargets {
		return false
	}
	value := 0
	for _, t := range targets {
		value += pieceValue(b.Piece(t).Type())
	}
	return value >= ForkMinMaterial
}

// detectPin: a sliding piece whose attack ray holds two or more enemy
// pieces. This is a documented approximation; king alignment is not
// verified.
func detectPin(b *chess.Board, sq chess.Square) bool {
	return len(pinnedRayTargets(b, sq)) >= PinMinRayPieces
}

// hangingPieces counts non-pawn pieces of color c with more attackers
// than defenders.
func hangingPieces(b *chess.Board, c chess.Color) int {
	n := 0
	for sq, p := range b.SquareMap() {
		if p.Color() != c || p.Type() == chess.Pawn || p.Type() == chess.King {
			continue
		}
		attackers := countAttackers(b, sq, other(c))
		if attackers == 0 {
			continue
		}
		defenders := countAttackers(b, sq, c)
		if attackers > defenders {
			n++
		}
	}
	return n
}
