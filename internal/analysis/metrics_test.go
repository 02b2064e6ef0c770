package analysis

import (
	"testing"

	domain "chess_insight/internal/domain/analysis"
	gamedomain "chess_insight/internal/domain/game"
)

func quietRecords(n int) []domain.MoveRecord {
	out := make([]domain.MoveRecord, n)
	for i := range out {
		color := "w"
		if i%2 == 1 {
			color = "b"
		}
		out[i] = domain.MoveRecord{
			Ply:       i + 1,
			Color:     color,
			TimeSpent: 10,
			Metrics:   domain.PositionMetrics{PositionComplexity: 0.5, MaterialCount: 40},
		}
	}
	return out
}

func TestAggregateEmptyGame(t *testing.T) {
	g := gamedomain.GameRecord{GameID: "g1", Side: "w"}
	report := AggregateMetrics(nil, domain.GamePhaseSplit{}, g, 12, false)

	if report.Overall.TotalMoves != 0 || report.Overall.AnalyzedMoves != 0 {
		t.Errorf("overall = %+v, want zeros", report.Overall)
	}
	if report.Metadata.GameID != "g1" || report.Metadata.Depth != 12 {
		t.Errorf("metadata = %+v", report.Metadata)
	}
	if report.Metadata.GeneratedAt.IsZero() {
		t.Error("GeneratedAt not set")
	}
	if len(report.Errors) != 0 {
		t.Errorf("errors = %v, want none", report.Errors)
	}
}

func TestAggregateFiltersAnalyzedSide(t *testing.T) {
	records := quietRecords(4)
	split := SegmentPhases(records)
	g := gamedomain.GameRecord{GameID: "g2", Side: "w"}

	report := AggregateMetrics(records, split, g, 12, false)
	if report.Overall.TotalMoves != 4 {
		t.Errorf("total moves = %d, want 4", report.Overall.TotalMoves)
	}
	if report.Overall.AnalyzedMoves != 2 {
		t.Errorf("analyzed moves = %d, want 2 white plies", report.Overall.AnalyzedMoves)
	}
}

func TestMoveQualityBuckets(t *testing.T) {
	records := []domain.MoveRecord{
		{Improvement: -0.1},                              // excellent
		{Improvement: -0.5},                              // good
		{Improvement: -1.5},                              // inaccuracy
		{Improvement: -2.5, IsMistake: true},             // mistake
		{Improvement: -5, IsMistake: true, IsBlunder: true}, // blunder
	}
	m := moveQualityFor(records)

	if m.Excellent != 1 || m.Good != 1 || m.Inaccuracies != 1 {
		t.Errorf("buckets = %+v", m)
	}
	if m.Mistakes != 2 {
		t.Errorf("mistakes = %d, want 2 (blunders included)", m.Mistakes)
	}
	if m.Blunders != 1 {
		t.Errorf("blunders = %d, want 1", m.Blunders)
	}
}

func TestAccuracyPerfectGame(t *testing.T) {
	if got := accuracyFor(quietRecords(10)); !almostEqual(got, 100) {
		t.Errorf("accuracy of lossless game = %v, want 100", got)
	}
}

func TestAccuracyDecreasesWithLoss(t *testing.T) {
	small := []domain.MoveRecord{{Improvement: -0.2, Metrics: domain.PositionMetrics{PositionComplexity: 0.5}}}
	large := []domain.MoveRecord{{Improvement: -3.0, Metrics: domain.PositionMetrics{PositionComplexity: 0.5}}}
	if accuracyFor(small) <= accuracyFor(large) {
		t.Errorf("accuracy not monotone: small loss %v <= large loss %v",
			accuracyFor(small), accuracyFor(large))
	}
}

func TestAccuracyEmpty(t *testing.T) {
	if got := accuracyFor(nil); got != 0 {
		t.Errorf("accuracy of no moves = %v, want 0", got)
	}
}

func TestConsistencyQuietGame(t *testing.T) {
	m := consistencyFor(quietRecords(10))
	if m.Score < 99.9 {
		t.Errorf("consistency of a steady lossless game = %v, want ~100", m.Score)
	}
	if m.LongestGoodRun != 10 {
		t.Errorf("longest good run = %d, want 10", m.LongestGoodRun)
	}
	if m.MistakeClusters != 0 {
		t.Errorf("mistake clusters = %d, want 0", m.MistakeClusters)
	}
}

func TestConsistencyPenalizesClusters(t *testing.T) {
	records := quietRecords(10)
	records[4].IsMistake = true
	records[4].Improvement = -2.5
	records[5].IsMistake = true
	records[5].Improvement = -2.5

	m := consistencyFor(records)
	if m.MistakeClusters == 0 {
		t.Error("two adjacent mistakes must form a cluster")
	}
	if m.Score >= consistencyFor(quietRecords(10)).Score {
		t.Error("clustered mistakes must lower the score")
	}
}

func TestTimeManagementWithoutClock(t *testing.T) {
	records := quietRecords(6)
	for i := range records {
		records[i].TimeSpent = 0
	}
	m := timeManagementFor(records, SegmentPhases(records), 0, 0)

	if !almostEqual(m.AppropriateUsage, 1) {
		t.Errorf("usage without clock data = %v, want 1", m.AppropriateUsage)
	}
	if !almostEqual(m.Score, 100) {
		t.Errorf("score = %v, want 100 when no data penalizes nothing", m.Score)
	}
	if m.IncrementBonus != 0 {
		t.Errorf("increment bonus = %v, want 0 without increment", m.IncrementBonus)
	}
}

func TestTimeManagementIncrementBonus(t *testing.T) {
	records := quietRecords(6)
	m := timeManagementFor(records, SegmentPhases(records), 600, 5)
	if !almostEqual(m.IncrementBonus, IncrementBonusValue) {
		t.Errorf("increment bonus = %v, want %v", m.IncrementBonus, IncrementBonusValue)
	}
}

func TestExpectedTimePerMove(t *testing.T) {
	if got := ExpectedTimePerMove(600, 40); got != 7.5 {
		t.Errorf("ExpectedTimePerMove(600, 40) = %v, want 7.5", got)
	}
	if got := ExpectedTimePerMove(0, 40); got != 0 {
		t.Errorf("without clock data = %v, want 0", got)
	}
	if got := ExpectedTimePerMove(600, 0); got != 0 {
		t.Errorf("without moves = %v, want 0", got)
	}
}

func TestTimeManagementUsesSharedBudget(t *testing.T) {
	records := quietRecords(6)
	m := timeManagementFor(records, SegmentPhases(records), 600, 0)
	if want := ExpectedTimePerMove(600, len(records)); m.ExpectedPerMove != want {
		t.Errorf("expected per move = %v, want %v", m.ExpectedPerMove, want)
	}
}

func TestAdvantageConversion(t *testing.T) {
	records := []domain.MoveRecord{
		{EvalAfter: 3}, {EvalAfter: 3}, {EvalAfter: 3},
	}
	m := advantageFor(records)

	if m.WinningPositions != 3 {
		t.Errorf("winning positions = %d, want 3", m.WinningPositions)
	}
	if !almostEqual(m.ConversionRate, 1) {
		t.Errorf("conversion rate = %v, want 1 for a held advantage", m.ConversionRate)
	}
	if !almostEqual(m.Mean, 3) || !almostEqual(m.Final, 3) {
		t.Errorf("mean=%v final=%v, want 3", m.Mean, m.Final)
	}
	if m.PressureMoments != 0 {
		t.Errorf("pressure moments = %d, want 0", m.PressureMoments)
	}
}

func TestAdvantageClampsMateScores(t *testing.T) {
	m := advantageFor([]domain.MoveRecord{{EvalAfter: 100}, {EvalAfter: 100}})
	if m.Final != AdvantageClampMax {
		t.Errorf("final = %v, want clamped to %v", m.Final, AdvantageClampMax)
	}
}

func TestResourcefulnessQuietGame(t *testing.T) {
	m := resourcefulnessFor(quietRecords(8))
	if m.CriticalPositions != 0 {
		t.Errorf("critical positions = %d, want 0", m.CriticalPositions)
	}
	// neutral defaults on every component, no comeback in a level game
	if !almostEqual(m.Score, 45) {
		t.Errorf("score = %v, want 45", m.Score)
	}
}

func TestResourcefulnessCountsTrouble(t *testing.T) {
	records := quietRecords(4)
	records[1].EvalBefore = -3
	records[1].Improvement = 1
	records[2].WasInCheck = true

	m := resourcefulnessFor(records)
	if m.CriticalPositions != 2 {
		t.Errorf("critical positions = %d, want 2", m.CriticalPositions)
	}
	if !almostEqual(m.RecoveryRate, 1) {
		t.Errorf("recovery rate = %v, want 1", m.RecoveryRate)
	}
}

func TestValidateReportClamps(t *testing.T) {
	r := domain.MetricsReport{}
	r.Overall.Accuracy = 150
	r.Advantage.Mean = -50
	r.Tactics.SuccessRate = 2
	r.Resourcefulness.Score = -10
	r.TimeManagement.IncrementBonus = 0.5

	ValidateReport(&r)

	if r.Overall.Accuracy != 100 {
		t.Errorf("accuracy = %v, want 100", r.Overall.Accuracy)
	}
	if r.Advantage.Mean != AdvantageClampMin {
		t.Errorf("advantage mean = %v, want %v", r.Advantage.Mean, AdvantageClampMin)
	}
	if r.Tactics.SuccessRate != 1 {
		t.Errorf("success rate = %v, want 1", r.Tactics.SuccessRate)
	}
	if r.Resourcefulness.Score != 0 {
		t.Errorf("resourcefulness = %v, want 0", r.Resourcefulness.Score)
	}
	if r.TimeManagement.IncrementBonus != IncrementBonusValue {
		t.Errorf("increment bonus = %v, want %v", r.TimeManagement.IncrementBonus, IncrementBonusValue)
	}
}

func TestTacticsQuietGame(t *testing.T) {
	m := tacticsFor(quietRecords(10))
	if m.Opportunities != 0 || m.Score != 0 {
		t.Errorf("quiet game tactics = %+v, want no opportunities", m)
	}
}

func TestTacticsCountsOpportunities(t *testing.T) {
	records := quietRecords(4)
	records[1].MaterialChange = 3
	records[1].Improvement = 1.2
	records[1].IsTactical = true
	records[2].IsCheck = true
	records[2].Improvement = -0.2

	m := tacticsFor(records)
	if m.Opportunities != 2 {
		t.Errorf("opportunities = %d, want 2", m.Opportunities)
	}
	if m.Successes != 1 {
		t.Errorf("successes = %d, want 1 (only the improving move)", m.Successes)
	}
}
