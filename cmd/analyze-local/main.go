package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"

	"chess_insight/internal/analysis"
	"chess_insight/internal/bootstrap"
	domain "chess_insight/internal/domain/analysis"
	gamedomain "chess_insight/internal/domain/game"
	"chess_insight/internal/repository"
)

// analyze-local runs the full pipeline against a game record from a JSON
// file (or stdin) without the HTTP service, mongo or redis. Useful for
// engine debugging and batch runs.
func main() {
	var (
		input   = flag.String("input", "-", "path to game record JSON, '-' for stdin")
		engine  = flag.String("engine", "", "path to UCI engine binary (overrides ENGINE_PATH)")
		depth   = flag.Int("depth", 0, "search depth (default from config)")
		verbose = flag.Bool("v", false, "per-move progress on stderr")
	)
	flag.Parse()

	logger := newLogger(*verbose)
	defer logger.Sync()

	cfg, err := bootstrap.Setup(".env")
	if err != nil {
		// config file is optional for local runs, fall back to defaults
		cfg = &bootstrap.Config{}
		bootstrap.ApplyDefaults(cfg)
	}
	if *engine != "" {
		cfg.EnginePath = *engine
	}
	if *depth > 0 {
		cfg.EngineDepth = *depth
	}

	game, err := readGame(*input)
	if err != nil {
		fmt.Fprintln(os.Stderr, "read game:", err)
		os.Exit(1)
	}

	session := repository.NewEngineSession(*cfg, logger)
	defer session.Close()
	if err := session.Start(); err != nil {
		fmt.Fprintln(os.Stderr, "engine start:", err)
		os.Exit(1)
	}

	pipeline := analysis.NewPipeline(logger, session, cfg.EngineDepth)

	var progress analysis.ProgressFunc
	if *verbose {
		progress = func(ply, total int, rec domain.MoveRecord) {
			fmt.Fprintf(os.Stderr, "[%d/%d] %s eval %+.2f\n", ply, total, rec.MoveSAN, rec.EvalAfter)
		}
	}

	report := pipeline.Analyze(context.Background(), game, progress)

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(report); err != nil {
		fmt.Fprintln(os.Stderr, "encode report:", err)
		os.Exit(1)
	}
}

func newLogger(verbose bool) *zap.SugaredLogger {
	cfg := zap.NewProductionConfig()
	if !verbose {
		cfg.Level = zap.NewAtomicLevelAt(zap.ErrorLevel)
	}
	logger, err := cfg.Build()
	if err != nil {
		panic("failed to initialize logger: " + err.Error())
	}
	return logger.Sugar()
}

func readGame(path string) (gamedomain.GameRecord, error) {
	var r io.Reader = os.Stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return gamedomain.GameRecord{}, err
		}
		defer f.Close()
		r = f
	}
	var game gamedomain.GameRecord
	if err := json.NewDecoder(r).Decode(&game); err != nil {
		return gamedomain.GameRecord{}, err
	}
	if len(game.Moves) == 0 {
		return gamedomain.GameRecord{}, fmt.Errorf("game has no moves")
	}
	return game, nil
}
