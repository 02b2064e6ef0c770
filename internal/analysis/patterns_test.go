package analysis

import (
	"strings"
	"testing"

	"github.com/notnil/chess"

	domain "chess_insight/internal/domain/analysis"
)

func patternsOf(findings []domain.PatternFinding) map[string]int {
	out := map[string]int{}
	for _, f := range findings {
		out[f.Pattern]++
	}
	return out
}

func TestPatternsIsolatedPawnEndgame(t *testing.T) {
	pos := mustPosition(t, "4k3/8/8/8/3P4/8/8/4K3 w - - 0 1")
	findings, errs := AnalyzePatterns([]*chess.Position{pos}, []*chess.Move{nil})

	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	got := patternsOf(findings)
	if got["isolated_pawn"] == 0 {
		t.Error("lone d-pawn not reported as isolated")
	}
	if got["king_pawn_endgame"] != 1 {
		t.Error("kings and a single pawn must be a king-pawn endgame")
	}
}

func TestPatternsRookEndgame(t *testing.T) {
	pos := mustPosition(t, "4k3/8/8/8/8/8/8/R3K3 w - - 0 1")
	findings, _ := AnalyzePatterns([]*chess.Position{pos}, []*chess.Move{nil})

	if patternsOf(findings)["rook_endgame"] != 1 {
		t.Errorf("findings = %v, want a rook endgame", findings)
	}
}

func TestPatternsFianchetto(t *testing.T) {
	pos := mustPosition(t, "rn1qkbnr/pbpppppp/1p6/8/8/1P6/PBPPPPPP/RN1QKBNR w KQkq - 0 3")
	findings, _ := AnalyzePatterns([]*chess.Position{pos}, []*chess.Move{nil})

	if patternsOf(findings)["fianchetto"] != 2 {
		t.Errorf("findings = %v, want fianchettoed bishops for both sides", findings)
	}
}

func TestPatternsDeduplicated(t *testing.T) {
	pos := mustPosition(t, "rn1qkbnr/pbpppppp/1p6/8/8/1P6/PBPPPPPP/RN1QKBNR w KQkq - 0 3")
	findings, _ := AnalyzePatterns(
		[]*chess.Position{pos, pos},
		[]*chess.Move{nil, nil},
	)

	if patternsOf(findings)["fianchetto"] != 2 {
		t.Errorf("repeated positions must not repeat positional findings, got %v", findings)
	}
}

func TestPatternsNoEndgameWithFullBoard(t *testing.T) {
	pos := chess.NewGame().Position()
	findings, _ := AnalyzePatterns([]*chess.Position{pos}, []*chess.Move{nil})

	for _, f := range findings {
		if f.Kind == domain.PatternKindEndgame {
			t.Errorf("endgame finding %v on the start position", f)
		}
	}
}

func TestPatternsFork(t *testing.T) {
	// the knight jumps to d5 and hits the queen on c7 and the rook on f6
	pos := mustPosition(t, "4k3/2q5/5r2/8/8/4N3/8/4K3 w - - 0 1")
	move := mustMove(t, pos, "e3d5")
	after := pos.Update(move)

	findings, _ := AnalyzePatterns([]*chess.Position{after}, []*chess.Move{move})
	if patternsOf(findings)["fork"] == 0 {
		t.Errorf("findings = %v, want a knight fork", findings)
	}
}

func TestPatternsHangingPieceIsTheOpponents(t *testing.T) {
	// the rook slides to a4 and attacks the undefended knight on h4; the
	// hanging piece reported is the opponent's, never the moved rook
	pos := mustPosition(t, "4k3/8/8/8/7n/8/8/R3K3 w - - 0 1")
	move := mustMove(t, pos, "a1a4")
	after := pos.Update(move)

	findings, _ := AnalyzePatterns([]*chess.Position{after}, []*chess.Move{move})
	found := false
	for _, f := range findings {
		if f.Pattern != "hanging_piece" {
			continue
		}
		found = true
		if !strings.Contains(f.Description, "h4") {
			t.Errorf("hanging piece on %q, want the knight on h4", f.Description)
		}
	}
	if !found {
		t.Errorf("findings = %v, want the knight on h4 hanging", findings)
	}
}
