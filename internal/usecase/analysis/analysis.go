package analysis

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"chess_insight/internal/analysis"
	"chess_insight/internal/bootstrap"
	domain "chess_insight/internal/domain/analysis"
	gamedomain "chess_insight/internal/domain/game"
	"chess_insight/internal/errors"
	"chess_insight/internal/repository"
	"chess_insight/internal/statuses"
)

// AnalysisStore is the persistence surface the use case needs, the
// mongo/redis repository satisfies it.
type AnalysisStore interface {
	SaveReport(ctx context.Context, gameID string, report domain.GameReport) error
	GetReport(ctx context.Context, gameID string) (domain.GameReport, error)
	CacheEval(ctx context.Context, fen string, depth int, res domain.EngineResult) error
	CachedEval(ctx context.Context, fen string, depth int) (domain.EngineResult, bool)
}

// ProgressEvent is pushed to websocket subscribers after each analyzed ply.
type ProgressEvent struct {
	JobID  string            `json:"job_id"`
	Ply    int               `json:"ply"`
	Total  int               `json:"total"`
	Status string            `json:"status"`
	Move   domain.MoveRecord `json:"move"`
}

// JobInfo is the externally visible state of an analysis job.
type JobInfo struct {
	JobID  string `json:"job_id"`
	GameID string `json:"game_id"`
	Status string `json:"status"`
	Ply    int    `json:"ply"`
	Total  int    `json:"total"`
	Error  string `json:"error,omitempty"`
}

type job struct {
	info        JobInfo
	subscribers map[int]chan ProgressEvent
	nextSub     int
}

type AnalysisUseCase struct {
	cfg   bootstrap.Config
	log   *zap.SugaredLogger
	store AnalysisStore

	sessions chan *repository.EngineSession

	mu   sync.RWMutex
	jobs map[string]*job
}

func NewAnalysisUseCase(cfg bootstrap.Config, log *zap.SugaredLogger, store AnalysisStore) *AnalysisUseCase {
	uc := &AnalysisUseCase{
		cfg:      cfg,
		log:      log,
		store:    store,
		sessions: make(chan *repository.EngineSession, cfg.EngineWorkers),
		jobs:     make(map[string]*job),
	}
	for i := 0; i < cfg.EngineWorkers; i++ {
		uc.sessions <- repository.NewEngineSession(cfg, log)
	}
	return uc
}

// Close shuts down every pooled engine process.
func (uc *AnalysisUseCase) Close() {
	for i := 0; i < uc.cfg.EngineWorkers; i++ {
		session := <-uc.sessions
		session.Close()
	}
}

func (uc *AnalysisUseCase) depthFor(req gamedomain.AnalyzeRequest) int {
	if req.Depth > 0 {
		return req.Depth
	}
	return uc.cfg.EngineDepth
}

// AnalyzeGame runs the whole pipeline synchronously and persists the report.
func (uc *AnalysisUseCase) AnalyzeGame(ctx context.Context, req gamedomain.AnalyzeRequest) (domain.GameReport, error) {
	if len(req.Game.Moves) == 0 {
		return domain.GameReport{}, errors.ErrEmptyGame
	}

	session := <-uc.sessions
	defer func() { uc.sessions <- session }()

	engine := &cachingEngine{store: uc.store, session: session}
	pipeline := analysis.NewPipeline(uc.log, engine, uc.depthFor(req))
	report := pipeline.Analyze(ctx, req.Game, nil)

	if req.Game.GameID != "" {
		if err := uc.store.SaveReport(ctx, req.Game.GameID, report); err != nil {
			uc.log.Errorf("failed to persist report for game %s: %v", req.Game.GameID, err)
		}
	}
	return report, nil
}

// StartAnalysis queues a game for background analysis and returns a job id
// that progress subscribers can attach to.
func (uc *AnalysisUseCase) StartAnalysis(ctx context.Context, req gamedomain.AnalyzeRequest) (string, error) {
	if len(req.Game.Moves) == 0 {
		return "", errors.ErrEmptyGame
	}

	jobID := uuid.NewString()
	uc.mu.Lock()
	uc.jobs[jobID] = &job{
		info: JobInfo{
			JobID:  jobID,
			GameID: req.Game.GameID,
			Status: statuses.StatusQueued,
			Total:  len(req.Game.Moves),
		},
		subscribers: make(map[int]chan ProgressEvent),
	}
	uc.mu.Unlock()

	go uc.runJob(jobID, req)

	return jobID, nil
}

func (uc *AnalysisUseCase) runJob(jobID string, req gamedomain.AnalyzeRequest) {
	ctx := context.Background()

	session := <-uc.sessions
	defer func() { uc.sessions <- session }()

	uc.setStatus(jobID, statuses.StatusRunning)

	engine := &cachingEngine{store: uc.store, session: session}
	pipeline := analysis.NewPipeline(uc.log, engine, uc.depthFor(req))

	report := pipeline.Analyze(ctx, req.Game, func(ply, total int, rec domain.MoveRecord) {
		uc.publish(jobID, ply, total, rec)
	})

	if req.Game.GameID != "" {
		if err := uc.store.SaveReport(ctx, req.Game.GameID, report); err != nil {
			uc.log.Errorf("failed to persist report for game %s: %v", req.Game.GameID, err)
		}
	}

	final := statuses.StatusDone
	if report.Metrics.Metadata.Partial {
		final = statuses.StatusPartial
	}
	uc.finish(jobID, final)
}

// JobStatus reports current job state.
func (uc *AnalysisUseCase) JobStatus(jobID string) (JobInfo, error) {
	uc.mu.RLock()
	defer uc.mu.RUnlock()
	j, ok := uc.jobs[jobID]
	if !ok {
		return JobInfo{}, errors.ErrJobNotFound
	}
	return j.info, nil
}

// Subscribe attaches a progress channel to a running job. The returned
// cancel function must be called when the consumer goes away.
func (uc *AnalysisUseCase) Subscribe(jobID string) (<-chan ProgressEvent, func(), error) {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	j, ok := uc.jobs[jobID]
	if !ok {
		return nil, nil, errors.ErrJobNotFound
	}

	ch := make(chan ProgressEvent, 64)
	if j.info.Status == statuses.StatusDone || j.info.Status == statuses.StatusPartial || j.info.Status == statuses.StatusFailed {
		// job already finished, the subscriber only gets the close
		close(ch)
		return ch, func() {}, nil
	}
	id := j.nextSub
	j.nextSub++
	j.subscribers[id] = ch

	cancel := func() {
		uc.mu.Lock()
		defer uc.mu.Unlock()
		if sub, ok := j.subscribers[id]; ok {
			delete(j.subscribers, id)
			close(sub)
		}
	}
	return ch, cancel, nil
}

// GetReport loads a persisted report by game id.
func (uc *AnalysisUseCase) GetReport(ctx context.Context, gameID string) (domain.GameReport, error) {
	return uc.store.GetReport(ctx, gameID)
}

func (uc *AnalysisUseCase) setStatus(jobID, status string) {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	if j, ok := uc.jobs[jobID]; ok {
		j.info.Status = status
	}
}

func (uc *AnalysisUseCase) publish(jobID string, ply, total int, rec domain.MoveRecord) {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	j, ok := uc.jobs[jobID]
	if !ok {
		return
	}
	j.info.Ply = ply
	j.info.Total = total
	event := ProgressEvent{
		JobID:  jobID,
		Ply:    ply,
		Total:  total,
		Status: j.info.Status,
		Move:   rec,
	}
	for _, sub := range j.subscribers {
		select {
		case sub <- event:
		default:
			// slow consumer, drop the event rather than stall analysis
		}
	}
}

// jobRetention is how long a finished job stays queryable before its
// entry is dropped. A var so tests can shorten it.
var jobRetention = time.Hour

func (uc *AnalysisUseCase) finish(jobID, status string) {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	j, ok := uc.jobs[jobID]
	if !ok {
		return
	}
	j.info.Status = status
	for id, sub := range j.subscribers {
		close(sub)
		delete(j.subscribers, id)
	}
	time.AfterFunc(jobRetention, func() {
		uc.mu.Lock()
		defer uc.mu.Unlock()
		delete(uc.jobs, jobID)
	})
}

// cachingEngine checks the redis eval cache before asking the engine.
type cachingEngine struct {
	store   AnalysisStore
	session *repository.EngineSession
}

func (c *cachingEngine) AnalyzePosition(ctx context.Context, fen string, depth int) domain.EngineResult {
	if res, ok := c.store.CachedEval(ctx, fen, depth); ok {
		return res
	}
	res := c.session.AnalyzePosition(ctx, fen, depth)
	if res.Err == "" {
		_ = c.store.CacheEval(ctx, fen, depth, res)
	}
	return res
}
