package analysis

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"chess_insight/internal/adapters"
	"chess_insight/internal/bootstrap"
	gamedomain "chess_insight/internal/domain/game"
	ierrors "chess_insight/internal/errors"
	"chess_insight/internal/httpresponse"
	"chess_insight/internal/repository"
	"chess_insight/internal/statuses"
	analysisuc "chess_insight/internal/usecase/analysis"
	"chess_insight/internal/utils"
)

type AnalysisHandler struct {
	cfg        bootstrap.Config
	log        *zap.SugaredLogger
	analysisUC *analysisuc.AnalysisUseCase
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

func NewAnalysisHandler(cfg bootstrap.Config, log *zap.SugaredLogger, mongoAdapter *adapters.AdapterMongo, redisAdapter *adapters.AdapterRedis) *AnalysisHandler {
	store := repository.NewReportRepository(cfg, log, redisAdapter.GetClient(), mongoAdapter.Database)
	return &AnalysisHandler{
		cfg:        cfg,
		log:        log,
		analysisUC: analysisuc.NewAnalysisUseCase(cfg, log, store),
	}
}

// Close releases the pooled engine sessions.
func (h *AnalysisHandler) Close() {
	h.analysisUC.Close()
}

// HandleAnalyze queues a game for background analysis and returns the job id.
func (h *AnalysisHandler) HandleAnalyze(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		h.log.Error("Only POST method is allowed")
		httpresponse.WriteResponseWithStatus(w, http.StatusMethodNotAllowed, "Only POST method is allowed")
		return
	}

	var req gamedomain.AnalyzeRequest
	if err := utils.DecodeJSONRequest(r, &req); err != nil {
		h.log.Error("JSON decode error:", err)
		httpresponse.WriteResponseWithStatus(w, http.StatusBadRequest, "Invalid JSON: "+err.Error())
		return
	}

	jobID, err := h.analysisUC.StartAnalysis(r.Context(), req)
	if err != nil {
		h.log.Error("failed to start analysis:", err)
		status := http.StatusInternalServerError
		if errors.Is(err, ierrors.ErrEmptyGame) {
			status = http.StatusBadRequest
		}
		httpresponse.WriteResponseWithStatus(w, status, err.Error())
		return
	}

	resp := gamedomain.AnalyzeResponse{
		JobID:  jobID,
		GameID: req.Game.GameID,
		Status: statuses.StatusQueued,
	}
	h.log.Infof("analysis job %s started for game %s", jobID, req.Game.GameID)
	httpresponse.WriteResponseWithStatus(w, http.StatusAccepted, resp)
}

// HandleAnalyzeSync runs the pipeline inline and returns the full report.
func (h *AnalysisHandler) HandleAnalyzeSync(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		h.log.Error("Only POST method is allowed")
		httpresponse.WriteResponseWithStatus(w, http.StatusMethodNotAllowed, "Only POST method is allowed")
		return
	}

	var req gamedomain.AnalyzeRequest
	if err := utils.DecodeJSONRequest(r, &req); err != nil {
		h.log.Error("JSON decode error:", err)
		httpresponse.WriteResponseWithStatus(w, http.StatusBadRequest, "Invalid JSON: "+err.Error())
		return
	}

	report, err := h.analysisUC.AnalyzeGame(r.Context(), req)
	if err != nil {
		h.log.Error("analysis failed:", err)
		status := http.StatusInternalServerError
		if errors.Is(err, ierrors.ErrEmptyGame) {
			status = http.StatusBadRequest
		}
		httpresponse.WriteResponseWithStatus(w, status, err.Error())
		return
	}
	httpresponse.WriteResponseWithStatus(w, http.StatusOK, report)
}

// HandleGetReport returns a previously computed report by game id.
func (h *AnalysisHandler) HandleGetReport(w http.ResponseWriter, r *http.Request) {
	gameID := chi.URLParam(r, "gameID")
	if gameID == "" {
		httpresponse.WriteResponseWithStatus(w, http.StatusBadRequest, "missing gameID")
		return
	}

	report, err := h.analysisUC.GetReport(r.Context(), gameID)
	if errors.Is(err, ierrors.ErrReportNotFound) {
		httpresponse.WriteResponseWithStatus(w, http.StatusNotFound, "report not found: "+gameID)
		return
	}
	if err != nil {
		h.log.Error("failed to load report:", err)
		httpresponse.WriteInternalErrorResponse(w)
		return
	}
	httpresponse.WriteResponseWithStatus(w, http.StatusOK, report)
}

// HandleJobStatus returns the state of a background job.
func (h *AnalysisHandler) HandleJobStatus(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobID")
	info, err := h.analysisUC.JobStatus(jobID)
	if err != nil {
		httpresponse.WriteResponseWithStatus(w, http.StatusNotFound, "job not found: "+jobID)
		return
	}
	httpresponse.WriteResponseWithStatus(w, http.StatusOK, info)
}

// HandleProgress streams per-ply progress events over a websocket until the
// job finishes or the client disconnects.
func (h *AnalysisHandler) HandleProgress(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobID")

	events, cancel, err := h.analysisUC.Subscribe(jobID)
	if err != nil {
		httpresponse.WriteResponseWithStatus(w, http.StatusNotFound, "job not found: "+jobID)
		return
	}
	defer cancel()

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Error("websocket upgrade error:", err)
		return
	}
	defer conn.Close()

	// drain client messages so close frames are processed
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				cancel()
				return
			}
		}
	}()

	for event := range events {
		if err := conn.WriteJSON(event); err != nil {
			h.log.Error("websocket write error:", err)
			return
		}
	}

	if info, err := h.analysisUC.JobStatus(jobID); err == nil {
		_ = conn.WriteJSON(info)
	}
	_ = conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, "analysis finished"))
}
