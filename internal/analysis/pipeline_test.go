package analysis

import (
	"context"
	"reflect"
	"testing"
	"time"

	"go.uber.org/zap"

	domain "chess_insight/internal/domain/analysis"
	gamedomain "chess_insight/internal/domain/game"
)

// fakeEngine returns a fixed score for every position, so pipeline
// tests never need a real subprocess.
type fakeEngine struct {
	score float64
	calls int
}

func (f *fakeEngine) AnalyzePosition(_ context.Context, fen string, _ int) domain.EngineResult {
	f.calls++
	return domain.EngineResult{
		ScorePawns: f.score,
		Depth:      6,
		PV:         []string{"e2e4"},
		Metrics:    domain.DefaultPositionMetrics(),
	}
}

func testPipeline(engine Engine) *Pipeline {
	return NewPipeline(zap.NewNop().Sugar(), engine, 6)
}

func TestPipelineReplaysEveryMove(t *testing.T) {
	engine := &fakeEngine{}
	g := gamedomain.GameRecord{
		GameID: "g1",
		Side:   "w",
		Moves:  []string{"e4", "e5", "Nf3", "Nc6"},
	}

	report := testPipeline(engine).Analyze(context.Background(), g, nil)

	if len(report.Moves) != 4 {
		t.Fatalf("moves = %d, want 4", len(report.Moves))
	}
	wantColors := []string{"w", "b", "w", "b"}
	for i, rec := range report.Moves {
		if rec.Ply != i+1 {
			t.Errorf("ply = %d, want %d", rec.Ply, i+1)
		}
		if rec.Color != wantColors[i] {
			t.Errorf("ply %d color = %q, want %q", rec.Ply, rec.Color, wantColors[i])
		}
	}
	if report.Moves[0].MoveUCI != "e2e4" {
		t.Errorf("first move UCI = %q, want e2e4", report.Moves[0].MoveUCI)
	}
	if report.Metrics.Metadata.Partial {
		t.Error("clean game flagged as partial")
	}
	if report.Metrics.Overall.AnalyzedMoves != 2 {
		t.Errorf("analyzed moves = %d, want 2 white plies", report.Metrics.Overall.AnalyzedMoves)
	}
	// start position plus one eval per applied move
	if engine.calls != 5 {
		t.Errorf("engine calls = %d, want 5", engine.calls)
	}
}

func TestPipelineAcceptsUCIAndSAN(t *testing.T) {
	g := gamedomain.GameRecord{Moves: []string{"e2e4", "e5", "g1f3"}}
	report := testPipeline(&fakeEngine{}).Analyze(context.Background(), g, nil)

	if len(report.Moves) != 3 {
		t.Fatalf("moves = %d, want 3", len(report.Moves))
	}
	if report.Moves[0].MoveSAN != "e4" {
		t.Errorf("SAN for e2e4 = %q, want e4", report.Moves[0].MoveSAN)
	}
}

func TestPipelineStopsOnMalformedMove(t *testing.T) {
	g := gamedomain.GameRecord{Moves: []string{"e4", "not-a-move", "Nf3"}}
	report := testPipeline(&fakeEngine{}).Analyze(context.Background(), g, nil)

	if len(report.Moves) != 1 {
		t.Fatalf("moves = %d, want analysis to stop after the valid prefix", len(report.Moves))
	}
	if !report.Metrics.Metadata.Partial {
		t.Error("truncated analysis not flagged as partial")
	}
	found := false
	for _, e := range report.Metrics.Errors {
		if e.Kind == domain.ErrKindMalformedInput && e.Ply == 2 {
			found = true
		}
	}
	if !found {
		t.Errorf("errors = %v, want malformed input at ply 2", report.Metrics.Errors)
	}
}

func TestPipelineStopsOnIllegalMove(t *testing.T) {
	// Ke2 is blocked by the e-pawn in the start position
	g := gamedomain.GameRecord{Moves: []string{"e1e2"}}
	report := testPipeline(&fakeEngine{}).Analyze(context.Background(), g, nil)

	if len(report.Moves) != 0 {
		t.Fatalf("moves = %d, want 0", len(report.Moves))
	}
	if !report.Metrics.Metadata.Partial {
		t.Error("illegal first move not flagged as partial")
	}
}

func TestPipelineProgressCallback(t *testing.T) {
	g := gamedomain.GameRecord{Moves: []string{"e4", "e5"}}
	var plies []int
	testPipeline(&fakeEngine{}).Analyze(context.Background(), g, func(ply, total int, rec domain.MoveRecord) {
		if total != 2 {
			t.Errorf("total = %d, want 2", total)
		}
		plies = append(plies, ply)
	})

	if !reflect.DeepEqual(plies, []int{1, 2}) {
		t.Errorf("progress plies = %v, want [1 2]", plies)
	}
}

func TestPipelineDeterministic(t *testing.T) {
	g := gamedomain.GameRecord{GameID: "g1", Side: "w", Moves: []string{"e4", "e5", "Nf3"}}

	a := testPipeline(&fakeEngine{score: 0.3}).Analyze(context.Background(), g, nil)
	b := testPipeline(&fakeEngine{score: 0.3}).Analyze(context.Background(), g, nil)

	a.Metrics.Metadata.GeneratedAt = time.Time{}
	b.Metrics.Metadata.GeneratedAt = time.Time{}
	if !reflect.DeepEqual(a, b) {
		t.Error("same game and engine output must produce identical reports")
	}
}

// failingEngine simulates a dead engine: every call degrades to a
// neutral result instead of failing.
type failingEngine struct{}

func (failingEngine) AnalyzePosition(context.Context, string, int) domain.EngineResult {
	return domain.NeutralEngineResult("engine process could not be started")
}

func TestPipelineSurvivesEngineFailure(t *testing.T) {
	g := gamedomain.GameRecord{Moves: []string{"e4", "e5"}}
	report := testPipeline(failingEngine{}).Analyze(context.Background(), g, nil)

	if len(report.Moves) != 2 {
		t.Fatalf("moves = %d, want the full game despite engine failure", len(report.Moves))
	}
	for _, rec := range report.Moves {
		if rec.EngineErr == "" {
			t.Errorf("ply %d carries no engine error", rec.Ply)
		}
		if rec.EvalBefore != 0 || rec.EvalAfter != 0 {
			t.Errorf("ply %d evals = %v/%v, want neutral", rec.Ply, rec.EvalBefore, rec.EvalAfter)
		}
	}
	if report.Metrics.Metadata.Partial {
		t.Error("neutral evals must not mark the report partial")
	}
}

func TestPipelineMoverPerspective(t *testing.T) {
	// the engine always scores +0.5 for the side to move; after a move
	// the score belongs to the opponent and must be negated
	g := gamedomain.GameRecord{Moves: []string{"e4"}}
	report := testPipeline(&fakeEngine{score: 0.5}).Analyze(context.Background(), g, nil)

	rec := report.Moves[0]
	if !almostEqual(rec.EvalBefore, 0.5) {
		t.Errorf("eval before = %v, want 0.5", rec.EvalBefore)
	}
	if !almostEqual(rec.EvalAfter, -0.5) {
		t.Errorf("eval after = %v, want -0.5", rec.EvalAfter)
	}
	if !almostEqual(rec.Improvement, -1.0) {
		t.Errorf("improvement = %v, want -1.0", rec.Improvement)
	}
}
