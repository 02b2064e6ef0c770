package analysis

import "time"

// ErrorKind classifies analysis failures that are carried on results
// instead of being raised to the caller.
type ErrorKind string

const (
	ErrKindEngineUnavailable ErrorKind = "engine_unavailable"
	ErrKindEngineCall        ErrorKind = "engine_call_failure"
	ErrKindMalformedInput    ErrorKind = "malformed_input"
	ErrKindMetrics           ErrorKind = "metrics_computation_error"
)

type AnalysisError struct {
	Kind ErrorKind `json:"kind"`
	Ply  int       `json:"ply"`
	Msg  string    `json:"msg"`
}

// PositionMetrics is the evaluator feature vector for one position.
// Every field except MaterialCount lies in [0,1].
type PositionMetrics struct {
	PieceActivity      float64 `json:"piece_activity"`
	CenterControl      float64 `json:"center_control"`
	KingSafety         float64 `json:"king_safety"`
	PawnStructure      float64 `json:"pawn_structure"`
	PositionComplexity float64 `json:"position_complexity"`
	MaterialCount      int     `json:"material_count"`
}

// DefaultPositionMetrics is the documented fallback when evaluation of
// a position fails internally.
func DefaultPositionMetrics() PositionMetrics {
	return PositionMetrics{
		PieceActivity:      0.5,
		CenterControl:      0.5,
		KingSafety:         0.5,
		PawnStructure:      0.5,
		PositionComplexity: 0.5,
		MaterialCount:      0,
	}
}

// EngineResult is one engine evaluation of a single position.
// ScorePawns is from the side-to-move perspective; mate scores are
// saturated to ±100.0.
type EngineResult struct {
	ScorePawns float64         `json:"score_pawns"`
	Depth      int             `json:"depth"`
	Nodes      int64           `json:"nodes"`
	TimeMS     int64           `json:"time_ms"`
	PV         []string        `json:"principal_variation"`
	Metrics    PositionMetrics `json:"position_metrics"`
	Err        string          `json:"error,omitempty"`
}

// NeutralEngineResult is returned for a failed engine call so a single
// bad call never fails the whole game.
func NeutralEngineResult(errMsg string) EngineResult {
	return EngineResult{
		ScorePawns: 0.0,
		Depth:      0,
		PV:         []string{},
		Metrics:    DefaultPositionMetrics(),
		Err:        errMsg,
	}
}

// MoveRecord is the per-ply analysis record. Evals are in pawns from
// the perspective of the player who made the move; Improvement is
// EvalAfter - EvalBefore.
type MoveRecord struct {
	Ply            int             `json:"ply"`
	Color          string          `json:"color"` // "w" or "b"
	MoveUCI        string          `json:"move_uci"`
	MoveSAN        string          `json:"move_san"`
	EvalBefore     float64         `json:"eval_before"`
	EvalAfter      float64         `json:"eval_after"`
	Improvement    float64         `json:"evaluation_improvement"`
	TimeSpent      float64         `json:"time_spent"`
	IsCapture      bool            `json:"is_capture"`
	IsCheck        bool            `json:"is_check"`
	IsCheckmate    bool            `json:"is_checkmate"`
	IsTactical     bool            `json:"is_tactical"`
	IsCritical     bool            `json:"is_critical"`
	IsMistake      bool            `json:"is_mistake"`
	IsBlunder      bool            `json:"is_blunder"`
	WasInCheck     bool            `json:"was_in_check"`
	HangingPieces  int             `json:"hanging_pieces"`
	MaterialChange int             `json:"material_change"`
	Metrics        PositionMetrics `json:"position_metrics"`
	EngineErr      string          `json:"engine_error,omitempty"`
}

// GamePhaseSplit holds phase boundary indices into the move record
// sequence. Invariant: 0 <= OpeningEnd <= MiddlegameEnd <= TotalMoves.
type GamePhaseSplit struct {
	OpeningEnd    int `json:"opening_end"`
	MiddlegameEnd int `json:"middlegame_end"`
	TotalMoves    int `json:"total_moves"`
}

// PatternFinding is one named pattern found during the board replay.
type PatternFinding struct {
	Kind        string `json:"kind"` // "tactical", "positional" or "endgame"
	Ply         int    `json:"ply"`
	Pattern     string `json:"pattern"`
	Description string `json:"description"`
}

const (
	PatternKindTactical   = "tactical"
	PatternKindPositional = "positional"
	PatternKindEndgame    = "endgame"
)

type OverallMetrics struct {
	Accuracy      float64 `json:"accuracy"`       // [0,100]
	TotalMoves    int     `json:"total_moves"`    // all applied plies
	AnalyzedMoves int     `json:"analyzed_moves"` // plies of the analyzed side
}

type MoveQualityMetrics struct {
	Excellent     int `json:"excellent"`
	Good          int `json:"good"`
	Inaccuracies  int `json:"inaccuracies"`
	Mistakes      int `json:"mistakes"`
	Blunders      int `json:"blunders"`
	TacticalMoves int `json:"tactical_moves"`
	CriticalMoves int `json:"critical_moves"`
}

type TimeManagementMetrics struct {
	Score            float64 `json:"score"` // [0,100]
	ExpectedPerMove  float64 `json:"expected_time_per_move"`
	TimeConsistency  float64 `json:"time_consistency"`  // [0,1]
	AppropriateUsage float64 `json:"appropriate_usage"` // [0,1]
	PressureHandling float64 `json:"pressure_handling"` // [0,1]
	IncrementBonus   float64 `json:"increment_bonus"`   // [0,0.1]
}

type ConsistencyMetrics struct {
	Score           float64 `json:"score"` // [0,100]
	LongestGoodRun  int     `json:"longest_good_run"`
	MistakeClusters int     `json:"mistake_clusters"`
	WindowScore     float64 `json:"window_score"` // [0,1]
	TimeConsistency float64 `json:"time_consistency"`
}

type PhaseSection struct {
	StartPly int     `json:"start_ply"`
	EndPly   int     `json:"end_ply"`
	Accuracy float64 `json:"accuracy"` // [0,100]
	Mistakes int     `json:"mistakes"`
	Blunders int     `json:"blunders"`
	AvgTime  float64 `json:"avg_time"`
}

type PhaseMetrics struct {
	Opening    PhaseSection `json:"opening"`
	Middlegame PhaseSection `json:"middlegame"`
	Endgame    PhaseSection `json:"endgame"`
}

type TacticsMetrics struct {
	Score              float64 `json:"score"` // [0,100]
	Opportunities      int     `json:"opportunities"`
	Successes          int     `json:"successes"`
	SuccessRate        float64 `json:"success_rate"` // [0,1]
	BrilliantMoves     int     `json:"brilliant_moves"`
	OpportunityRate    float64 `json:"opportunity_rate"`    // [0,1]
	PatternRecognition float64 `json:"pattern_recognition"` // [0,1]
}

type AdvantageMetrics struct {
	Mean             float64 `json:"mean"`  // pawns, [-20,20]
	Final            float64 `json:"final"` // pawns, [-20,20]
	WinningPositions int     `json:"winning_positions"`
	ConversionRate   float64 `json:"conversion_rate"` // [0,1]
	PressureMoments  int     `json:"pressure_moments"`
	PressureHandling float64 `json:"pressure_handling"` // [0,1]
	Trend            float64 `json:"trend"`             // pawns, [-20,20]
}

type ResourcefulnessMetrics struct {
	Score             float64 `json:"score"` // [0,100]
	CriticalPositions int     `json:"critical_positions"`
	DefensiveScore    float64 `json:"defensive_score"`    // [0,1]
	RecoveryRate      float64 `json:"recovery_rate"`      // [0,1]
	TacticalDefense   float64 `json:"tactical_defense"`   // [0,1]
	BestMoveFinding   float64 `json:"best_move_finding"`  // [0,1]
	ComebackPotential float64 `json:"comeback_potential"` // [0,1]
}

type ReportMetadata struct {
	GameID        string    `json:"game_id"`
	Side          string    `json:"side"`
	Depth         int       `json:"depth"`
	MovesAnalyzed int       `json:"moves_analyzed"`
	Partial       bool      `json:"partial"`
	GeneratedAt   time.Time `json:"generated_at"`
}

// MetricsReport is the full analysis report. Every section is always
// present; failed sections carry their documented defaults plus an
// entry in Errors.
type MetricsReport struct {
	Overall         OverallMetrics         `json:"overall"`
	MoveQuality     MoveQualityMetrics     `json:"move_quality"`
	TimeManagement  TimeManagementMetrics  `json:"time_management"`
	Consistency     ConsistencyMetrics     `json:"consistency"`
	Phases          PhaseMetrics           `json:"phases"`
	Tactics         TacticsMetrics         `json:"tactics"`
	Advantage       AdvantageMetrics       `json:"advantage"`
	Resourcefulness ResourcefulnessMetrics `json:"resourcefulness"`
	Metadata        ReportMetadata         `json:"metadata"`
	Errors          []AnalysisError        `json:"errors,omitempty"`
}

// GameReport bundles everything the pipeline produces for one game.
type GameReport struct {
	Metrics  MetricsReport    `json:"metrics"`
	Moves    []MoveRecord     `json:"moves"`
	Patterns []PatternFinding `json:"patterns"`
}
