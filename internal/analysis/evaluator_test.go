package analysis

import (
	"math"
	"testing"

	"github.com/notnil/chess"
)

func mustPosition(t *testing.T, fen string) *chess.Position {
	t.Helper()
	opt, err := chess.FEN(fen)
	if err != nil {
		t.Fatalf("bad FEN %q: %v", fen, err)
	}
	return chess.NewGame(opt).Position()
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestEvaluateStartPosition(t *testing.T) {
	pos := chess.NewGame().Position()
	m := EvaluatePosition(pos)

	if m.MaterialCount != 78 {
		t.Errorf("start position material = %d, want 78", m.MaterialCount)
	}
	for name, v := range map[string]float64{
		"piece_activity":      m.PieceActivity,
		"center_control":      m.CenterControl,
		"king_safety":         m.KingSafety,
		"pawn_structure":      m.PawnStructure,
		"position_complexity": m.PositionComplexity,
	} {
		if v < 0 || v > 1 {
			t.Errorf("%s = %v, want within [0,1]", name, v)
		}
	}

	// no piece reaches the central squares yet, control must be even
	if !almostEqual(m.CenterControl, 0.5) {
		t.Errorf("center control = %v, want 0.5", m.CenterControl)
	}
	// full pawn shield, no attackers near the king
	if !almostEqual(m.KingSafety, 0.8) {
		t.Errorf("king safety = %v, want 0.8", m.KingSafety)
	}
	// every pawn is connected, the score saturates
	if !almostEqual(m.PawnStructure, 1.0) {
		t.Errorf("pawn structure = %v, want 1.0", m.PawnStructure)
	}
}

func TestEvaluateBareKings(t *testing.T) {
	pos := mustPosition(t, "8/8/8/4k3/8/8/8/4K3 w - - 0 1")
	m := EvaluatePosition(pos)

	if m.MaterialCount != 0 {
		t.Errorf("material = %d, want 0", m.MaterialCount)
	}
	if m.PieceActivity != 0 {
		t.Errorf("piece activity = %v, want 0 with no non-king pieces", m.PieceActivity)
	}
}

func TestEvaluateDeterministic(t *testing.T) {
	pos := mustPosition(t, "r1bqkb1r/pppp1ppp/2n2n2/4p3/2B1P3/5N2/PPPP1PPP/RNBQK2R w KQkq - 4 4")
	a := EvaluatePosition(pos)
	b := EvaluatePosition(pos)
	if a != b {
		t.Errorf("evaluation not deterministic: %+v vs %+v", a, b)
	}
}
