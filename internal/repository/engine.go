package repository

import (
	"bufio"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/notnil/chess"
	"go.uber.org/zap"

	"chess_insight/internal/analysis"
	"chess_insight/internal/bootstrap"
	domain "chess_insight/internal/domain/analysis"
	ierrors "chess_insight/internal/errors"
)

// fallbackEnginePaths is tried in order when the configured binary is
// missing.
var fallbackEnginePaths = []string{
	"stockfish",
	"/usr/bin/stockfish",
	"/usr/local/bin/stockfish",
	"/opt/homebrew/bin/stockfish",
}

const selfTestDepth = 6

// A binary that starts but never speaks UCI must not wedge the session,
// so every read during init is bounded. Vars so tests can shorten them.
var (
	handshakeTimeout = 5 * time.Second
	selfTestTimeout  = 10 * time.Second
	stopGracePeriod  = time.Second
)

// engineProc is one engine process incarnation. Its reader goroutine is
// the only consumer of the stdout pipe; everyone else reads from the
// lines channel, which closes when the process output ends. kill joins
// the reader, so no goroutine from one incarnation can touch the next.
type engineProc struct {
	cmd    *exec.Cmd
	stdin  *bufio.Writer
	lines  chan string
	killed bool
}

func startEngineProc(path string) (*engineProc, error) {
	cmd := exec.Command(path)
	stdinPipe, err := cmd.StdinPipe()
	if err != nil {
		return nil, err
	}
	stdoutPipe, err := cmd.StdoutPipe()
	if err != nil {
		return nil, err
	}
	if err := cmd.Start(); err != nil {
		return nil, err
	}

	p := &engineProc{
		cmd:   cmd,
		stdin: bufio.NewWriter(stdinPipe),
		lines: make(chan string, 64),
	}
	go func() {
		sc := bufio.NewScanner(stdoutPipe)
		for sc.Scan() {
			p.lines <- sc.Text()
		}
		close(p.lines)
	}()
	return p, nil
}

func (p *engineProc) send(cmd string) error {
	if p.killed {
		return ierrors.ErrEngineNotReady
	}
	if _, err := fmt.Fprintln(p.stdin, cmd); err != nil {
		return err
	}
	return p.stdin.Flush()
}

// waitFor reads output until a line starting with token appears, the
// deadline fires, or the stream ends.
func (p *engineProc) waitFor(token string, deadline <-chan time.Time) error {
	for {
		select {
		case line, ok := <-p.lines:
			if !ok {
				return fmt.Errorf("engine closed its output waiting for %s", token)
			}
			if strings.HasPrefix(line, token) {
				return nil
			}
		case <-deadline:
			return fmt.Errorf("engine did not answer %s", token)
		}
	}
}

// kill tears the process down and waits for the reader goroutine to
// drain out. Safe to call more than once.
func (p *engineProc) kill() {
	if p.killed {
		return
	}
	_ = p.send("quit")
	p.killed = true
	if p.cmd.Process != nil {
		_ = p.cmd.Process.Kill()
	}
	_ = p.cmd.Wait()
	for range p.lines {
	}
}

// EngineSession owns one UCI engine subprocess. All analysis and
// lifecycle calls are serialized by one lock; a crashed or misbehaving
// process is torn down and lazily re-initialized on the next call
// instead of failing the caller. The session is injected by its owner,
// there is no process-wide singleton.
type EngineSession struct {
	cfg bootstrap.Config
	log *zap.SugaredLogger

	mu          sync.Mutex
	proc        *engineProc
	ready       bool
	needsReinit bool
	initErr     error
	idleTimer   *time.Timer
}

func NewEngineSession(cfg bootstrap.Config, log *zap.SugaredLogger) *EngineSession {
	return &EngineSession{cfg: cfg, log: log}
}

// Start eagerly initializes the engine process. Callers that prefer
// lazy startup can skip it; the first analysis call initializes too.
func (s *EngineSession) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ensureReady()
}

// ensureReady is called under s.mu.
func (s *EngineSession) ensureReady() error {
	if s.ready && !s.needsReinit {
		return nil
	}
	if s.needsReinit {
		s.teardown()
		s.needsReinit = false
		s.initErr = nil
	}
	if s.initErr != nil {
		// init already failed for this incarnation; report once per
		// incarnation, not once per call
		return s.initErr
	}

	paths := []string{}
	if s.cfg.EnginePath != "" {
		paths = append(paths, s.cfg.EnginePath)
	}
	paths = append(paths, fallbackEnginePaths...)

	var lastErr error
	for _, path := range paths {
		proc, err := startEngineProc(path)
		if err != nil {
			lastErr = err
			continue
		}
		s.proc = proc
		if err := s.configure(); err != nil {
			s.teardown()
			lastErr = err
			continue
		}
		if err := s.selfTest(); err != nil {
			s.teardown()
			lastErr = err
			continue
		}
		s.ready = true
		s.log.Infow("engine session initialized", "path", path)
		return nil
	}

	s.initErr = fmt.Errorf("%w: %v", ierrors.ErrEngineUnavailable, lastErr)
	return s.initErr
}

// configure runs the UCI handshake and sets the engine options.
func (s *EngineSession) configure() error {
	deadline := time.After(handshakeTimeout)
	if err := s.proc.send("uci"); err != nil {
		return err
	}
	if err := s.proc.waitFor("uciok", deadline); err != nil {
		return err
	}
	if err := s.proc.send(fmt.Sprintf("setoption name Threads value %d", s.cfg.EngineThreads)); err != nil {
		return err
	}
	if err := s.proc.send(fmt.Sprintf("setoption name Hash value %d", s.cfg.EngineHashMB)); err != nil {
		return err
	}
	if s.cfg.EngineSkillLevel > 0 {
		// unknown options are ignored by UCI engines
		if err := s.proc.send(fmt.Sprintf("setoption name Skill Level value %d", s.cfg.EngineSkillLevel)); err != nil {
			return err
		}
	}
	if err := s.proc.send("isready"); err != nil {
		return err
	}
	return s.proc.waitFor("readyok", deadline)
}

// selfTest analyzes the start position; a valid score and principal
// variation are required before the session is considered usable.
func (s *EngineSession) selfTest() error {
	ctx, cancel := context.WithTimeout(context.Background(), selfTestTimeout)
	defer cancel()
	res, err := s.search(ctx, "startpos", "", selfTestDepth)
	if err != nil {
		return fmt.Errorf("engine self-test: %w", err)
	}
	if _, err := res.scorePawns(); err != nil {
		return fmt.Errorf("engine self-test: %w", err)
	}
	if len(res.pv) == 0 {
		return fmt.Errorf("engine self-test returned no principal variation")
	}
	return nil
}

// AnalyzePosition evaluates one FEN at the given depth. It never
// returns a Go error: failures come back as a neutral evaluation with
// the error string set, and the session re-initializes lazily on the
// next call.
func (s *EngineSession) AnalyzePosition(ctx context.Context, fen string, depth int) domain.EngineResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	defer s.resetIdleTimer()

	if depth <= 0 {
		depth = s.cfg.EngineDepth
	}
	if err := s.ensureReady(); err != nil {
		return domain.NeutralEngineResult(err.Error())
	}

	res, err := s.search(ctx, "", fen, depth)
	if err != nil {
		s.log.Errorw("engine call failed, scheduling re-init", "error", err)
		s.needsReinit = true
		return domain.NeutralEngineResult(err.Error())
	}

	score, err := res.scorePawns()
	if err != nil {
		s.needsReinit = true
		return domain.NeutralEngineResult(err.Error())
	}

	metrics := domain.DefaultPositionMetrics()
	if pos := positionFromFEN(fen); pos != nil {
		metrics = analysis.EvaluatePosition(pos)
	}

	return domain.EngineResult{
		ScorePawns: score,
		Depth:      res.depth,
		Nodes:      res.nodes,
		TimeMS:     res.timeMS,
		PV:         res.pv,
		Metrics:    metrics,
	}
}

// MoveEval is the per-move engine contract: evals around one move plus
// the derived classification and time bookkeeping.
type MoveEval struct {
	Before         domain.EngineResult `json:"before"`
	After          domain.EngineResult `json:"after"`
	Improvement    float64             `json:"evaluation_improvement"`
	IsTactical     bool                `json:"is_tactical"`
	IsCritical     bool                `json:"is_critical"`
	IsCheck        bool                `json:"is_check"`
	IsCapture      bool                `json:"is_capture"`
	MaterialChange int                 `json:"material_change"`
	TimeSpent      float64             `json:"time_spent"`
	TimeExpected   float64             `json:"time_expected"`
}

// AnalyzeMove evaluates the position before and after one move and
// classifies it. The move must be legal in the given position; an
// illegal move returns a zero MoveEval with the error recorded on
// Before. gameMoves is the player's move count, used to spread the
// clock budget over the game.
func (s *EngineSession) AnalyzeMove(ctx context.Context, fen, moveUCI string, timeSpent, totalTime, increment float64, gameMoves, depth int) MoveEval {
	pos := positionFromFEN(fen)
	if pos == nil {
		return MoveEval{Before: domain.NeutralEngineResult(fmt.Sprintf("unparseable position %q", fen))}
	}
	move, err := (chess.UCINotation{}).Decode(pos, moveUCI)
	if err != nil {
		return MoveEval{Before: domain.NeutralEngineResult(fmt.Sprintf("malformed move %q: %v", moveUCI, err))}
	}
	legal := false
	for _, m := range pos.ValidMoves() {
		if m.S1() == move.S1() && m.S2() == move.S2() && m.Promo() == move.Promo() {
			move = m
			legal = true
			break
		}
	}
	if !legal {
		return MoveEval{Before: domain.NeutralEngineResult(fmt.Sprintf("illegal move %q", moveUCI))}
	}
	after := pos.Update(move)

	before := s.AnalyzePosition(ctx, fen, depth)
	afterRes := s.AnalyzePosition(ctx, after.String(), depth)

	evalBefore := before.ScorePawns
	evalAfter := -afterRes.ScorePawns

	metrics := analysis.EvaluatePosition(after)
	cls := analysis.ClassifyMove(pos, after, move, evalBefore, evalAfter, metrics)

	expected := analysis.ExpectedTimePerMove(totalTime, gameMoves)
	if expected > 0 {
		if floor := increment * analysis.PressureTimeFloor; expected < floor {
			expected = floor
		}
	}

	return MoveEval{
		Before:         before,
		After:          afterRes,
		Improvement:    evalAfter - evalBefore,
		IsTactical:     cls.Tactical,
		IsCritical:     cls.Critical,
		IsCheck:        cls.Check,
		IsCapture:      cls.Capture,
		MaterialChange: cls.MaterialChange,
		TimeSpent:      timeSpent,
		TimeExpected:   expected,
	}
}

// search runs "position ... / go depth N" and reads until bestmove.
// name "startpos" selects the initial position, otherwise fen is used.
// When the context expires a "stop" is sent; an engine that still does
// not answer within the grace period is killed so its output can never
// bleed into the next incarnation.
func (s *EngineSession) search(ctx context.Context, name, fen string, depth int) (searchResult, error) {
	var posCmd string
	if name == "startpos" {
		posCmd = "position startpos"
	} else {
		posCmd = fmt.Sprintf("position fen %s", fen)
	}
	if err := s.proc.send(posCmd); err != nil {
		return searchResult{}, err
	}
	if err := s.proc.send(fmt.Sprintf("go depth %d", depth)); err != nil {
		return searchResult{}, err
	}

	var res searchResult
	var grace <-chan time.Time
	ctxDone := ctx.Done()
	for {
		select {
		case line, ok := <-s.proc.lines:
			if !ok {
				return searchResult{}, fmt.Errorf("engine closed its output before bestmove")
			}
			if strings.HasPrefix(line, "info ") {
				parseInfoLine(line, &res)
			} else if strings.HasPrefix(line, "bestmove") {
				fields := strings.Fields(line)
				if len(fields) > 1 {
					res.bestMove = fields[1]
				}
				return res, nil
			}
		case <-ctxDone:
			ctxDone = nil
			_ = s.proc.send("stop")
			grace = time.After(stopGracePeriod)
		case <-grace:
			s.proc.kill()
			return searchResult{}, ctx.Err()
		}
	}
}

// resetIdleTimer arms the idle teardown; called under s.mu.
func (s *EngineSession) resetIdleTimer() {
	if s.idleTimer != nil {
		s.idleTimer.Stop()
	}
	if !s.ready {
		return
	}
	idle := time.Duration(s.cfg.EngineIdleSeconds) * time.Second
	s.idleTimer = time.AfterFunc(idle, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if !s.ready {
			return
		}
		s.log.Infow("engine idle, shutting process down")
		s.teardown()
	})
}

// teardown kills the process; called under s.mu. The next call
// re-initializes transparently.
func (s *EngineSession) teardown() {
	if s.proc != nil {
		s.proc.kill()
		s.proc = nil
	}
	s.ready = false
	s.initErr = nil
}

// Close shuts the session down for good.
func (s *EngineSession) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.idleTimer != nil {
		s.idleTimer.Stop()
	}
	s.teardown()
}

func positionFromFEN(fen string) *chess.Position {
	fenOpt, err := chess.FEN(fen)
	if err != nil {
		return nil
	}
	return chess.NewGame(fenOpt).Position()
}
