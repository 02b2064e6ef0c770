package analysis

import (
	"fmt"
	"time"

	domain "chess_insight/internal/domain/analysis"
	gamedomain "chess_insight/internal/domain/game"
)

// AggregateMetrics builds the full report from the classified move
// list. Sections recover independently: a failing section is replaced
// by its zero default and noted in Errors, the rest of the report is
// still returned.
func AggregateMetrics(records []domain.MoveRecord, split domain.GamePhaseSplit, g gamedomain.GameRecord, depth int, partial bool) domain.MetricsReport {
	report := domain.MetricsReport{
		Metadata: domain.ReportMetadata{
			GameID:        g.GameID,
			Side:          g.Side,
			Depth:         depth,
			MovesAnalyzed: len(records),
			Partial:       partial,
			GeneratedAt:   time.Now().UTC(),
		},
	}

	player := playerRecords(records, g.Side)
	report.Overall = domain.OverallMetrics{
		TotalMoves:    len(records),
		AnalyzedMoves: len(player),
	}
	if len(records) == 0 {
		return report
	}

	section(&report, "accuracy", func() {
		report.Overall.Accuracy = accuracyFor(player)
	})
	section(&report, "move_quality", func() {
		report.MoveQuality = moveQualityFor(player)
	})
	section(&report, "time_management", func() {
		report.TimeManagement = timeManagementFor(player, split, g.TotalTime, g.Increment)
	})
	section(&report, "consistency", func() {
		report.Consistency = consistencyFor(player)
	})
	section(&report, "phases", func() {
		report.Phases = phaseMetricsFor(records, split, g.Side)
	})
	section(&report, "tactics", func() {
		report.Tactics = tacticsFor(player)
	})
	section(&report, "advantage", func() {
		report.Advantage = advantageFor(player)
	})
	section(&report, "resourcefulness", func() {
		report.Resourcefulness = resourcefulnessFor(player)
	})

	ValidateReport(&report)
	return report
}

// section runs one aggregation step, converting a panic into a
// MetricsComputationError note while leaving the section at its
// documented default.
func section(report *domain.MetricsReport, name string, f func()) {
	defer func() {
		if r := recover(); r != nil {
			report.Errors = append(report.Errors, domain.AnalysisError{
				Kind: domain.ErrKindMetrics,
				Msg:  fmt.Sprintf("%s: %v", name, r),
			})
		}
	}()
	f()
}

// playerRecords filters the plies played by the analyzed side; an
// unknown side keeps every ply.
func playerRecords(records []domain.MoveRecord, side string) []domain.MoveRecord {
	if side != "w" && side != "b" {
		return records
	}
	var out []domain.MoveRecord
	for _, r := range records {
		if r.Color == side {
			out = append(out, r)
		}
	}
	return out
}

func moveQualityFor(records []domain.MoveRecord) domain.MoveQualityMetrics {
	var m domain.MoveQualityMetrics
	for _, r := range records {
		loss := lossCP(r)
		switch {
		case r.IsMistake:
			m.Mistakes++
			if r.IsBlunder {
				m.Blunders++
			}
		case loss > GoodLossCP:
			m.Inaccuracies++
		case loss > ExcellentLossCP:
			m.Good++
		default:
			m.Excellent++
		}
		if r.IsTactical {
			m.TacticalMoves++
		}
		if r.IsCritical {
			m.CriticalMoves++
		}
	}
	return m
}

// phaseMetricsFor slices the full record list by the phase boundaries
// and scores the analyzed side inside each slice.
func phaseMetricsFor(records []domain.MoveRecord, split domain.GamePhaseSplit, side string) domain.PhaseMetrics {
	return domain.PhaseMetrics{
		Opening:    phaseSection(records, 0, split.OpeningEnd, side),
		Middlegame: phaseSection(records, split.OpeningEnd, split.MiddlegameEnd, side),
		Endgame:    phaseSection(records, split.MiddlegameEnd, len(records), side),
	}
}

func phaseSection(records []domain.MoveRecord, start, end int, side string) domain.PhaseSection {
	if start < 0 {
		start = 0
	}
	if end > len(records) {
		end = len(records)
	}
	s := domain.PhaseSection{StartPly: start, EndPly: end}
	if start >= end {
		return s
	}

	player := playerRecords(records[start:end], side)
	s.Accuracy = accuracyFor(player)

	var timeSum float64
	for _, r := range player {
		if r.IsMistake {
			s.Mistakes++
		}
		if r.IsBlunder {
			s.Blunders++
		}
		timeSum += r.TimeSpent
	}
	if len(player) > 0 {
		s.AvgTime = timeSum / float64(len(player))
	}
	return s
}
