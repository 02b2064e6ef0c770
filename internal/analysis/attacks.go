package analysis

import (
	"github.com/notnil/chess"
)

// Board scan helpers shared by the evaluator, the classifier and the
// pattern detectors. notnil/chess does not expose attack maps, so rays
// and offsets are walked directly on the square map.

var knightOffsets = [8][2]int{
	{1, 2}, {2, 1}, {2, -1}, {1, -2}, {-1, -2}, {-2, -1}, {-2, 1}, {-1, 2},
}

var kingOffsets = [8][2]int{
	{1, 0}, {1, 1}, {0, 1}, {-1, 1}, {-1, 0}, {-1, -1}, {0, -1}, {1, -1},
}

var bishopDirs = [4][2]int{{1, 1}, {1, -1}, {-1, 1}, {-1, -1}}
var rookDirs = [4][2]int{{1, 0}, {-1, 0}, {0, 1}, {0, -1}}

var pieceValues = map[chess.PieceType]int{
	chess.Pawn:   1,
	chess.Knight: 3,
	chess.Bishop: 3,
	chess.Rook:   5,
	chess.Queen:  9,
	chess.King:   0,
}

func pieceValue(pt chess.PieceType) int {
	return pieceValues[pt]
}

func squareAt(file, rank int) chess.Square {
	return chess.Square(rank*8 + file)
}

func onBoard(file, rank int) bool {
	return file >= 0 && file < 8 && rank >= 0 && rank < 8
}

// attackedSquares returns every square the piece on sq attacks,
// including occupied ones. Sliding pieces stop at the first blocker
// (the blocker's square is included).
func attackedSquares(b *chess.Board, sq chess.Square) []chess.Square {
	p := b.Piece(sq)
	if p == chess.NoPiece {
		return nil
	}
	f, r := int(sq.File()), int(sq.Rank())

	var out []chess.Square
	switch p.Type() {
	case chess.Pawn:
		dir := 1
		if p.Color() == chess.Black {
			dir = -1
		}
		for _, df := range []int{-1, 1} {
			if onBoard(f+df, r+dir) {
				out = append(out, squareAt(f+df, r+dir))
			}
		}
	case chess.Knight:
		for _, o := range knightOffsets {
			if onBoard(f+o[0], r+o[1]) {
				out = append(out, squareAt(f+o[0], r+o[1]))
			}
		}
	case chess.King:
		for _, o := range kingOffsets {
			if onBoard(f+o[0], r+o[1]) {
				out = append(out, squareAt(f+o[0], r+o[1]))
			}
		}
	case chess.Bishop:
		out = slideAttacks(b, f, r, bishopDirs[:])
	case chess.Rook:
		out = slideAttacks(b, f, r, rookDirs[:])
	case chess.Queen:
		out = slideAttacks(b, f, r, bishopDirs[:])
		out = append(out, slideAttacks(b, f, r, rookDirs[:])...)
	}
	return out
}

func slideAttacks(b *chess.Board, f, r int, dirs [][2]int) []chess.Square {
	var out []chess.Square
	for _, d := range dirs {
		nf, nr := f+d[0], r+d[1]
		for onBoard(nf, nr) {
			sq := squareAt(nf, nr)
			out = append(out, sq)
			if b.Piece(sq) != chess.NoPiece {
				break
			}
			nf += d[0]
			nr += d[1]
		}
	}
	return out
}

// countAttackers counts pieces of color `by` attacking target.
func countAttackers(b *chess.Board, target chess.Square, by chess.Color) int {
	count := 0
	for sq, p := range b.SquareMap() {
		if p.Color() != by {
			continue
		}
		for _, a := range attackedSquares(b, sq) {
			if a == target {
				count++
				break
			}
		}
	}
	return count
}

// isAttacked reports whether target is attacked by any piece of color `by`.
func isAttacked(b *chess.Board, target chess.Square, by chess.Color) bool {
	return countAttackers(b, target, by) > 0
}

// kingSquare returns the king square of the given color, or -1 when
// the board has no such king (degenerate test positions).
func kingSquare(b *chess.Board, c chess.Color) chess.Square {
	for sq, p := range b.SquareMap() {
		if p.Type() == chess.King && p.Color() == c {
			return sq
		}
	}
	return chess.Square(-1)
}

// inCheck reports whether the king of color c stands attacked.
func inCheck(b *chess.Board, c chess.Color) bool {
	ksq := kingSquare(b, c)
	if ksq < 0 {
		return false
	}
	return isAttacked(b, ksq, other(c))
}

func other(c chess.Color) chess.Color {
	if c == chess.White {
		return chess.Black
	}
	return chess.White
}

// materialCount sums standard piece values for both sides.
func materialCount(b *chess.Board) int {
	total := 0
	for _, p := range b.SquareMap() {
		total += pieceValue(p.Type())
	}
	return total
}

// attackedEnemyPieces lists enemy-occupied squares attacked by the
// piece on sq.
func attackedEnemyPieces(b *chess.Board, sq chess.Square) []chess.Square {
	p := b.Piece(sq)
	if p == chess.NoPiece {
		return nil
	}
	var out []chess.Square
	for _, a := range attackedSquares(b, sq) {
		t := b.Piece(a)
		if t != chess.NoPiece && t.Color() != p.Color() {
			out = append(out, a)
		}
	}
	return out
}

// pinnedRayTargets walks every ray of a sliding piece and returns the
// enemy pieces found on the ray with the most enemy pieces, scanning
// through blockers. Two or more enemy pieces on one ray is the pin
// (or skewer) heuristic; king alignment is not verified.
func pinnedRayTargets(b *chess.Board, sq chess.Square) []chess.Square {
	p := b.Piece(sq)
	if p == chess.NoPiece {
		return nil
	}
	var dirs [][2]int
	switch p.Type() {
	case chess.Bishop:
		dirs = bishopDirs[:]
	case chess.Rook:
		dirs = rookDirs[:]
	case chess.Queen:
		dirs = append(append([][2]int{}, bishopDirs[:]...), rookDirs[:]...)
	default:
		return nil
	}

	f, r := int(sq.File()), int(sq.Rank())
	var best []chess.Square
	for _, d := range dirs {
		var onRay []chess.Square
		nf, nr := f+d[0], r+d[1]
		for onBoard(nf, nr) {
			t := b.Piece(squareAt(nf, nr))
			if t != chess.NoPiece {
				if t.Color() == p.Color() {
					break
				}
				onRay = append(onRay, squareAt(nf, nr))
			}
			nf += d[0]
			nr += d[1]
		}
		if len(onRay) > len(best) {
			best = onRay
		}
	}
	return best
}
