package analysis

import (
	"testing"

	"github.com/notnil/chess"
)

func mustMove(t *testing.T, pos *chess.Position, uci string) *chess.Move {
	t.Helper()
	move, err := (chess.UCINotation{}).Decode(pos, uci)
	if err != nil {
		t.Fatalf("decode %q: %v", uci, err)
	}
	legal := asLegal(pos, move)
	if legal == nil {
		t.Fatalf("move %q not legal in %s", uci, pos.String())
	}
	return legal
}

func classify(t *testing.T, fen, uci string, evalBefore, evalAfter float64) Classification {
	t.Helper()
	pos := mustPosition(t, fen)
	move := mustMove(t, pos, uci)
	after := pos.Update(move)
	return ClassifyMove(pos, after, move, evalBefore, evalAfter, EvaluatePosition(after))
}

func TestClassifyCheckmate(t *testing.T) {
	// scholar's mate, the queen takes f7
	c := classify(t, "r1bqkb1r/pppp1ppp/2n2n2/4p2Q/2B1P3/8/PPPP1PPP/RNB1K1NR w KQkq - 4 4",
		"h5f7", 2.0, 100.0)

	if !c.Checkmate {
		t.Error("Qxf7# not flagged as checkmate")
	}
	if !c.Check {
		t.Error("checkmate must imply check")
	}
	if !c.Capture || c.MaterialChange != 1 {
		t.Errorf("capture=%v material=%d, want pawn capture", c.Capture, c.MaterialChange)
	}
	if !c.Tactical {
		t.Error("checkmate must be tactical")
	}
	if !c.Critical {
		t.Error("checkmate must be critical")
	}
	if c.Mistake || c.Blunder {
		t.Error("a winning move is neither mistake nor blunder")
	}
}

func TestClassifyQueenCapture(t *testing.T) {
	c := classify(t, "3qk3/8/8/8/8/8/8/3QK3 w - - 0 1", "d1d8", 0.0, 9.0)

	if !c.Capture || c.MaterialChange != 9 {
		t.Errorf("capture=%v material=%d, want queen capture worth 9", c.Capture, c.MaterialChange)
	}
	if !c.Tactical {
		t.Error("a queen capture is tactical")
	}
	if !c.Critical {
		t.Error("a queen capture is critical")
	}
}

func TestClassifyEnPassant(t *testing.T) {
	c := classify(t, "rnbqkbnr/pp2pppp/8/2ppP3/8/8/PPPP1PPP/RNBQKBNR w KQkq d6 0 3",
		"e5d6", 0.2, 0.3)

	if !c.Capture {
		t.Error("en passant must count as a capture")
	}
	if c.MaterialChange != 1 {
		t.Errorf("en passant material = %d, want 1", c.MaterialChange)
	}
}

func TestClassifyMistakeThresholds(t *testing.T) {
	pos := chess.NewGame().Position()
	move := mustMove(t, pos, "e2e4")
	after := pos.Update(move)
	metrics := EvaluatePosition(after)

	tests := []struct {
		name       string
		evalBefore float64
		evalAfter  float64
		mistake    bool
		blunder    bool
	}{
		{"quiet", 0.3, 0.2, false, false},
		{"mistake", 0.3, -2.2, true, false},
		{"blunder", 0.3, -4.5, true, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := ClassifyMove(pos, after, move, tt.evalBefore, tt.evalAfter, metrics)
			if c.Mistake != tt.mistake {
				t.Errorf("mistake = %v, want %v", c.Mistake, tt.mistake)
			}
			if c.Blunder != tt.blunder {
				t.Errorf("blunder = %v, want %v", c.Blunder, tt.blunder)
			}
			if c.Blunder && !c.Mistake {
				t.Error("blunder without mistake")
			}
		})
	}
}
