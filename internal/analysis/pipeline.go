package analysis

import (
	"context"
	"fmt"

	"github.com/notnil/chess"
	"go.uber.org/zap"

	domain "chess_insight/internal/domain/analysis"
	gamedomain "chess_insight/internal/domain/game"
)

// Engine is what the pipeline needs from an engine session. A failed
// call must come back as a neutral EngineResult with Err set, never as
// a panic or a Go error.
type Engine interface {
	AnalyzePosition(ctx context.Context, fen string, depth int) domain.EngineResult
}

// ProgressFunc receives one event per analyzed ply.
type ProgressFunc func(ply, total int, rec domain.MoveRecord)

// Pipeline runs the whole analysis for one game: sequential replay,
// engine trace, classification, phase split, metrics and patterns.
type Pipeline struct {
	log    *zap.SugaredLogger
	engine Engine
	depth  int
}

func NewPipeline(log *zap.SugaredLogger, engine Engine, depth int) *Pipeline {
	if depth <= 0 {
		depth = 12
	}
	return &Pipeline{log: log, engine: engine, depth: depth}
}

// Analyze replays the game strictly in order. A move that cannot be
// parsed or is illegal in the current position stops the run: the
// prefix analyzed so far is reported with a malformed-input marker,
// later moves are never skipped or reordered.
func (p *Pipeline) Analyze(ctx context.Context, g gamedomain.GameRecord, progress ProgressFunc) domain.GameReport {
	records := make([]domain.MoveRecord, 0, len(g.Moves))
	var positions []*chess.Position
	var applied []*chess.Move
	var errs []domain.AnalysisError
	partial := false

	chessGame := chess.NewGame()
	pos := chessGame.Position()
	prev := p.engine.AnalyzePosition(ctx, pos.String(), p.depth)

	total := len(g.Moves)
	for i, moveStr := range g.Moves {
		move, san, err := decodeMove(pos, moveStr)
		if err != nil {
			p.log.Warnw("aborting analysis on malformed move",
				"game_id", g.GameID, "ply", i+1, "move", moveStr, "error", err)
			errs = append(errs, domain.AnalysisError{
				Kind: domain.ErrKindMalformedInput,
				Ply:  i + 1,
				Msg:  fmt.Sprintf("move %q: %v", moveStr, err),
			})
			partial = true
			break
		}

		mover := pos.Turn()
		after := pos.Update(move)

		cur := p.engine.AnalyzePosition(ctx, after.String(), p.depth)

		// prev is scored for the mover, cur for the opponent.
		evalBefore := prev.ScorePawns
		evalAfter := -cur.ScorePawns

		metrics := EvaluatePosition(after)
		cls := ClassifyMove(pos, after, move, evalBefore, evalAfter, metrics)

		rec := domain.MoveRecord{
			Ply:            i + 1,
			Color:          colorLetter(mover),
			MoveUCI:        chess.UCINotation{}.Encode(pos, move),
			MoveSAN:        san,
			EvalBefore:     evalBefore,
			EvalAfter:      evalAfter,
			Improvement:    evalAfter - evalBefore,
			TimeSpent:      g.TimeFor(i),
			IsCapture:      cls.Capture,
			IsCheck:        cls.Check,
			IsCheckmate:    cls.Checkmate,
			IsTactical:     cls.Tactical,
			IsCritical:     cls.Critical,
			IsMistake:      cls.Mistake,
			IsBlunder:      cls.Blunder,
			WasInCheck:     cls.WasInCheck,
			HangingPieces:  cls.HangingOwn,
			MaterialChange: cls.MaterialChange,
			Metrics:        metrics,
		}
		if prev.Err != "" {
			rec.EngineErr = prev.Err
		} else if cur.Err != "" {
			rec.EngineErr = cur.Err
		}

		records = append(records, rec)
		positions = append(positions, after)
		applied = append(applied, move)

		if progress != nil {
			progress(i+1, total, rec)
		}

		pos = after
		prev = cur
	}

	split := SegmentPhases(records)
	report := AggregateMetrics(records, split, g, p.depth, partial)
	report.Errors = append(report.Errors, errs...)

	patterns, patternErrs := AnalyzePatterns(positions, applied)
	report.Errors = append(report.Errors, patternErrs...)

	return domain.GameReport{
		Metrics:  report,
		Moves:    records,
		Patterns: patterns,
	}
}

// decodeMove accepts UCI first, then SAN, against the current
// position, and rejects anything not legal right now.
func decodeMove(pos *chess.Position, s string) (*chess.Move, string, error) {
	if move, err := (chess.UCINotation{}).Decode(pos, s); err == nil {
		if legal := asLegal(pos, move); legal != nil {
			return legal, chess.AlgebraicNotation{}.Encode(pos, legal), nil
		}
	}
	move, err := (chess.AlgebraicNotation{}).Decode(pos, s)
	if err != nil {
		return nil, "", err
	}
	if legal := asLegal(pos, move); legal != nil {
		return legal, s, nil
	}
	return nil, "", fmt.Errorf("illegal move %q", s)
}

// asLegal maps a decoded move onto the canonical legal move (with its
// tags attached), or nil when the move is not playable.
func asLegal(pos *chess.Position, move *chess.Move) *chess.Move {
	for _, m := range pos.ValidMoves() {
		if m.S1() == move.S1() && m.S2() == move.S2() && m.Promo() == move.Promo() {
			return m
		}
	}
	return nil
}

func colorLetter(c chess.Color) string {
	if c == chess.White {
		return "w"
	}
	return "b"
}
