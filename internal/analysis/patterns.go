package analysis

import (
	"fmt"

	"github.com/notnil/chess"

	domain "chess_insight/internal/domain/analysis"
)

// PatternAnalyzer replays the game independently of the engine trace
// and names tactical, positional and endgame patterns. Findings are
// descriptive; they never feed back into the scores.
//
// Every detector fails closed: a panic inside one detector is recorded
// on the error list for that ply and the sweep continues.

// AnalyzePatterns walks the position after each applied move.
// positions[i] is the position once moves[i] was played.
func AnalyzePatterns(positions []*chess.Position, moves []*chess.Move) ([]domain.PatternFinding, []domain.AnalysisError) {
	findings := []domain.PatternFinding{}
	errs := []domain.AnalysisError{}
	seen := map[string]bool{}

	for i, pos := range positions {
		ply := i + 1
		var move *chess.Move
		if i < len(moves) {
			move = moves[i]
		}

		sweep(&errs, ply, "tactical", func() {
			findings = append(findings, tacticalFindings(pos, move, ply)...)
		})
		sweep(&errs, ply, "positional", func() {
			findings = append(findings, positionalFindings(pos, ply, seen)...)
		})
	}

	if len(positions) > 0 {
		last := positions[len(positions)-1]
		sweep(&errs, len(positions), "endgame", func() {
			findings = append(findings, endgameFindings(last, len(positions))...)
		})
	}

	return findings, errs
}

func sweep(errs *[]domain.AnalysisError, ply int, stage string, f func()) {
	defer func() {
		if r := recover(); r != nil {
			*errs = append(*errs, domain.AnalysisError{
				Kind: domain.ErrKindMetrics,
				Ply:  ply,
				Msg:  fmt.Sprintf("pattern %s sweep: %v", stage, r),
			})
		}
	}()
	f()
}

func tacticalFindings(pos *chess.Position, move *chess.Move, ply int) []domain.PatternFinding {
	if move == nil {
		return nil
	}
	b := pos.Board()
	sq := move.S2()
	var out []domain.PatternFinding

	if detectPin(b, sq) {
		out = append(out, domain.PatternFinding{
			Kind:        domain.PatternKindTactical,
			Ply:         ply,
			Pattern:     "pin",
			Description: fmt.Sprintf("piece on %s lines up two enemy pieces on one ray", sq),
		})
	}

	if targets := attackedEnemyPieces(b, sq); len(targets) >= ForkMinTargets {
		value := 0
		for _, t := range targets {
			value += pieceValue(b.Piece(t).Type())
		}
		if value >= ForkMinMaterial {
			out = append(out, domain.PatternFinding{
				Kind:        domain.PatternKindTactical,
				Ply:         ply,
				Pattern:     "fork",
				Description: fmt.Sprintf("piece on %s attacks %d enemy pieces at once", sq, len(targets)),
			})
		}
	}

	// enemy pieces the mover now attacks more than they are defended
	mover := b.Piece(sq).Color()
	for hsq, p := range b.SquareMap() {
		if p.Color() == mover || p.Type() == chess.Pawn || p.Type() == chess.King {
			continue
		}
		attackers := countAttackers(b, hsq, mover)
		if attackers == 0 {
			continue
		}
		if attackers > countAttackers(b, hsq, p.Color()) {
			out = append(out, domain.PatternFinding{
				Kind:        domain.PatternKindTactical,
				Ply:         ply,
				Pattern:     "hanging_piece",
				Description: fmt.Sprintf("%s on %s has more attackers than defenders", p.Type(), hsq),
			})
		}
	}
	return out
}

func positionalFindings(pos *chess.Position, ply int, seen map[string]bool) []domain.PatternFinding {
	b := pos.Board()
	var out []domain.PatternFinding

	add := func(pattern, key, desc string) {
		if seen[key] {
			return
		}
		seen[key] = true
		out = append(out, domain.PatternFinding{
			Kind:        domain.PatternKindPositional,
			Ply:         ply,
			Pattern:     pattern,
			Description: desc,
		})
	}

	for _, color := range []chess.Color{chess.White, chess.Black} {
		files := pawnFiles(b, color)
		name := colorName(color)

		for f, n := range files {
			if n == 0 {
				continue
			}
			if n > 1 {
				add("doubled_pawns", fmt.Sprintf("doubled:%s:%d", name, f),
					fmt.Sprintf("%s has doubled pawns on the %c-file", name, 'a'+f))
			}
			left := f > 0 && files[f-1] > 0
			right := f < 7 && files[f+1] > 0
			if !left && !right {
				add("isolated_pawn", fmt.Sprintf("isolated:%s:%d", name, f),
					fmt.Sprintf("%s pawn on the %c-file has no neighbors", name, 'a'+f))
			}
		}

		for sq, p := range b.SquareMap() {
			if p.Color() != color {
				continue
			}
			if p.Type() == chess.Pawn && isBackwardPawn(b, sq, color) {
				add("backward_pawn", fmt.Sprintf("backward:%s:%d", name, int(sq.File())),
					fmt.Sprintf("%s pawn on %s lags behind its neighbors", name, sq))
			}
			if (p.Type() == chess.Knight || p.Type() == chess.Bishop) && isOutpost(b, sq, color) {
				add("outpost", fmt.Sprintf("outpost:%s:%s", name, sq),
					fmt.Sprintf("%s %s sits on an outpost at %s", name, p.Type(), sq))
			}
			if p.Type() == chess.Bishop && isFianchetto(sq, color) {
				add("fianchetto", fmt.Sprintf("fianchetto:%s:%s", name, sq),
					fmt.Sprintf("%s bishop fianchettoed on %s", name, sq))
			}
		}
	}
	return out
}

func endgameFindings(pos *chess.Position, ply int) []domain.PatternFinding {
	b := pos.Board()
	if materialCount(b) >= EndgameMaterialLimit {
		return nil
	}

	var pawns, knights, bishops, rooks, queens int
	var bishopColors []int
	for sq, p := range b.SquareMap() {
		switch p.Type() {
		case chess.Pawn:
			pawns++
		case chess.Knight:
			knights++
		case chess.Bishop:
			bishops++
			bishopColors = append(bishopColors, (int(sq.File())+int(sq.Rank()))%2)
		case chess.Rook:
			rooks++
		case chess.Queen:
			queens++
		}
	}

	finding := func(pattern, desc string) []domain.PatternFinding {
		return []domain.PatternFinding{{
			Kind:        domain.PatternKindEndgame,
			Ply:         ply,
			Pattern:     pattern,
			Description: desc,
		}}
	}

	minors := knights + bishops
	switch {
	case queens == 0 && rooks == 0 && minors == 0 && pawns > 0:
		return finding("king_pawn_endgame", "only kings and pawns remain")
	case queens == 0 && rooks > 0 && minors == 0:
		return finding("rook_endgame", "rooks and pawns decide the game")
	case queens == 0 && rooks == 0 && bishops == 2 && knights == 0 &&
		len(bishopColors) == 2 && bishopColors[0] != bishopColors[1]:
		return finding("opposite_colored_bishops", "each side keeps a bishop on opposite colors")
	case queens == 0 && rooks == 0 && minors > 0:
		return finding("minor_piece_endgame", "minor pieces decide the game")
	}
	return nil
}

func pawnFiles(b *chess.Board, c chess.Color) [8]int {
	var files [8]int
	for sq, p := range b.SquareMap() {
		if p.Type() == chess.Pawn && p.Color() == c {
			files[int(sq.File())]++
		}
	}
	return files
}

// isBackwardPawn: no friendly pawn on an adjacent file at the same
// rank or behind, and the stop square is covered by an enemy pawn.
func isBackwardPawn(b *chess.Board, sq chess.Square, c chess.Color) bool {
	f, r := int(sq.File()), int(sq.Rank())
	dir := 1
	if c == chess.Black {
		dir = -1
	}

	for _, df := range []int{-1, 1} {
		nf := f + df
		if nf < 0 || nf > 7 {
			continue
		}
		for nr := r; nr >= 0 && nr <= 7; nr -= dir {
			p := b.Piece(squareAt(nf, nr))
			if p.Type() == chess.Pawn && p.Color() == c {
				return false
			}
		}
	}

	stopF, stopR := f, r+dir
	if !onBoard(stopF, stopR) {
		return false
	}
	for _, df := range []int{-1, 1} {
		if !onBoard(stopF+df, stopR+dir) {
			continue
		}
		p := b.Piece(squareAt(stopF+df, stopR+dir))
		if p.Type() == chess.Pawn && p.Color() == other(c) {
			return true
		}
	}
	return false
}

// isOutpost: a minor piece in enemy territory, protected by a friendly
// pawn, with no enemy pawn able to chase it off its file neighborhood.
func isOutpost(b *chess.Board, sq chess.Square, c chess.Color) bool {
	f, r := int(sq.File()), int(sq.Rank())
	dir := 1
	enemyHalf := r >= 4
	if c == chess.Black {
		dir = -1
		enemyHalf = r <= 3
	}
	if !enemyHalf {
		return false
	}

	protected := false
	for _, df := range []int{-1, 1} {
		if !onBoard(f+df, r-dir) {
			continue
		}
		p := b.Piece(squareAt(f+df, r-dir))
		if p.Type() == chess.Pawn && p.Color() == c {
			protected = true
		}
	}
	if !protected {
		return false
	}

	for _, df := range []int{-1, 1} {
		nf := f + df
		if nf < 0 || nf > 7 {
			continue
		}
		for nr := r + dir; nr >= 0 && nr <= 7; nr += dir {
			p := b.Piece(squareAt(nf, nr))
			if p.Type() == chess.Pawn && p.Color() == other(c) {
				return false
			}
		}
	}
	return true
}

func isFianchetto(sq chess.Square, c chess.Color) bool {
	if c == chess.White {
		return sq == chess.B2 || sq == chess.G2
	}
	return sq == chess.B7 || sq == chess.G7
}

func colorName(c chess.Color) string {
	if c == chess.White {
		return "white"
	}
	return "black"
}
