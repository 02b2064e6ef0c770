package analysis

// Classification and scoring thresholds. Values are calibrated
// heuristics carried over from production tuning, not derived
// constants; change them only together with the metric contracts.
const (
	// Score conversion
	MateScorePawns = 100.0 // mate-in-N saturates to +/-100 pawns

	// Move classification (pawns unless noted)
	MistakeDropPawns      = 2.0 // eval drop > 200cp
	BlunderDropPawns      = 4.0 // eval drop > 400cp
	TacticalSwingPawns    = 1.0
	CriticalSwingPawns    = 2.0
	CriticalEvalPawns     = 2.0
	ComplexTacticalSwing  = 0.8
	ComplexityTacticalMin = 0.6
	ActiveTacticalSwing   = 0.6
	ActivityTacticalMin   = 0.6
	ActiveComplexityMin   = 0.5
	CheckTacticalSwing    = 0.4
	CaptureTacticalSwing  = 0.6

	// Fork heuristic
	ForkMinTargets  = 2
	ForkMinMaterial = 6

	// Pin heuristic: enemy pieces on one sliding ray
	PinMinRayPieces = 2

	// Phase segmentation
	OpeningMaterialLimit = 28
	OpeningPlyCap        = 10
	EndgameMaterialLimit = 20

	// Move quality buckets (centipawn loss)
	ExcellentLossCP   = 20
	GoodLossCP        = 100
	AccuracyLossCapCP = 400
	AccuracyLossExp   = 0.6
	AccuracyBonusCap  = 20.0

	// Tactics
	TacticsEvalSwingCP    = 200
	TacticsActivitySwing  = 0.3
	TacticsComplexityMin  = 0.7
	BrilliantSwingCP      = 300
	BrilliantMinFeatures  = 2
	CheckSuccessWeight    = 1.2
	MaterialSuccessWeight = 1.1
	ComplexSuccessWeight  = 1.3

	// Advantage / resourcefulness (pawns)
	WinningAdvantage   = 2.0
	PressureEval       = -1.5
	BadPositionEval    = -2.0
	AdvantageClampMin  = -20.0
	AdvantageClampMax  = 20.0
	ComebackDivisor    = 4.0
	KingDangerSafety   = 0.3
	BestMoveTolerance  = 0.1 // tolerated loss while still "finding the best move"
	DefensiveEvalScale = 4.0

	// Time management
	EarlyPhaseFactor    = 1.2
	LatePhaseFactor     = 0.8
	PressureTimeFloor   = 0.5 // times the increment
	TimeWeightCons      = 0.35
	TimeWeightUsage     = 0.35
	TimeWeightPressure  = 0.30
	IncrementBonusValue = 0.1

	// Consistency weights
	ConsWeightRun     = 0.4
	ConsWeightWindow  = 0.3
	ConsWeightCluster = 0.2
	ConsWeightTime    = 0.1
	ConsWindowSize    = 5
	ConsRunTarget     = 10 // run of this length scores 1.0
)

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
