package repository

import (
	"testing"

	"chess_insight/internal/analysis"
)

func TestParseInfoLine(t *testing.T) {
	var res searchResult
	parseInfoLine("info depth 12 seldepth 16 multipv 1 score cp 35 nodes 30000 nps 120000 time 250 pv e2e4 e7e5 g1f3", &res)

	if res.depth != 12 {
		t.Errorf("depth = %d, want 12", res.depth)
	}
	if res.nodes != 30000 {
		t.Errorf("nodes = %d, want 30000", res.nodes)
	}
	if res.timeMS != 250 {
		t.Errorf("time = %d, want 250", res.timeMS)
	}
	if res.cp == nil || *res.cp != 35 {
		t.Errorf("cp = %v, want 35", res.cp)
	}
	wantPV := []string{"e2e4", "e7e5", "g1f3"}
	if len(res.pv) != len(wantPV) {
		t.Fatalf("pv = %v, want %v", res.pv, wantPV)
	}
	for i, m := range wantPV {
		if res.pv[i] != m {
			t.Errorf("pv[%d] = %q, want %q", i, res.pv[i], m)
		}
	}

	score, err := res.scorePawns()
	if err != nil {
		t.Fatalf("scorePawns: %v", err)
	}
	if score != 0.35 {
		t.Errorf("score = %v, want 0.35", score)
	}
}

func TestParseInfoLineKeepsDeepest(t *testing.T) {
	var res searchResult
	parseInfoLine("info depth 8 score cp 20 pv e2e4", &res)
	parseInfoLine("info depth 12 score cp -45 pv d2d4 d7d5", &res)

	if res.depth != 12 {
		t.Errorf("depth = %d, want the later line to win", res.depth)
	}
	score, err := res.scorePawns()
	if err != nil {
		t.Fatalf("scorePawns: %v", err)
	}
	if score != -0.45 {
		t.Errorf("score = %v, want -0.45", score)
	}
}

func TestMateScoresSaturate(t *testing.T) {
	tests := []struct {
		line string
		want float64
	}{
		{"info depth 10 score mate 3 pv h5f7", analysis.MateScorePawns},
		{"info depth 10 score mate 1 pv d8h4", analysis.MateScorePawns},
		{"info depth 10 score mate -2 pv e8e7", -analysis.MateScorePawns},
		{"info depth 10 score mate 0", -analysis.MateScorePawns},
	}
	for _, tt := range tests {
		var res searchResult
		parseInfoLine(tt.line, &res)
		score, err := res.scorePawns()
		if err != nil {
			t.Fatalf("%q: %v", tt.line, err)
		}
		if score != tt.want {
			t.Errorf("%q score = %v, want %v", tt.line, score, tt.want)
		}
	}
}

func TestMateOverridesEarlierCP(t *testing.T) {
	var res searchResult
	parseInfoLine("info depth 8 score cp 350 pv h5f7", &res)
	parseInfoLine("info depth 10 score mate 2 pv h5f7", &res)

	score, err := res.scorePawns()
	if err != nil {
		t.Fatalf("scorePawns: %v", err)
	}
	if score != analysis.MateScorePawns {
		t.Errorf("score = %v, want mate saturation", score)
	}
}

func TestNoScoreIsAnError(t *testing.T) {
	var res searchResult
	parseInfoLine("info depth 3 nodes 500 time 2", &res)
	if _, err := res.scorePawns(); err == nil {
		t.Error("missing score must be an error, not a silent zero")
	}
}

func TestParseBestMove(t *testing.T) {
	var res searchResult
	// search() extracts bestmove itself; the parser only folds info
	// lines, so a bestmove line must leave the result untouched
	parseInfoLine("bestmove e2e4 ponder e7e5", &res)
	if res.cp != nil || res.mate != nil || res.depth != 0 {
		t.Errorf("bestmove line altered the result: %+v", res)
	}
}
