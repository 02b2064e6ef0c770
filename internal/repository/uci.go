package repository

import (
	"fmt"
	"strconv"
	"strings"

	"chess_insight/internal/analysis"
)

// searchResult is the raw parse of one "go ... bestmove" exchange.
type searchResult struct {
	cp       *int
	mate     *int
	depth    int
	nodes    int64
	timeMS   int64
	pv       []string
	bestMove string
}

// parseInfoLine folds one "info ..." line into the result, keeping the
// values of the deepest line seen.
func parseInfoLine(line string, res *searchResult) {
	parts := strings.Fields(line)
	for i, part := range parts {
		switch part {
		case "depth":
			if i+1 < len(parts) {
				if v, err := strconv.Atoi(parts[i+1]); err == nil {
					res.depth = v
				}
			}
		case "nodes":
			if i+1 < len(parts) {
				if v, err := strconv.ParseInt(parts[i+1], 10, 64); err == nil {
					res.nodes = v
				}
			}
		case "time":
			if i+1 < len(parts) {
				if v, err := strconv.ParseInt(parts[i+1], 10, 64); err == nil {
					res.timeMS = v
				}
			}
		case "score":
			if i+2 < len(parts) {
				v, err := strconv.Atoi(parts[i+2])
				if err != nil {
					continue
				}
				switch parts[i+1] {
				case "cp":
					res.cp = &v
					res.mate = nil
				case "mate":
					res.mate = &v
					res.cp = nil
				}
			}
		case "pv":
			if i+1 < len(parts) {
				res.pv = append([]string{}, parts[i+1:]...)
			}
		}
	}
}

// scorePawns converts an engine score to pawns. Mate-in-N saturates to
// +/-100 regardless of distance, with the sign of the mating side.
func (r searchResult) scorePawns() (float64, error) {
	switch {
	case r.mate != nil:
		// "mate 0" means the side to move is already mated
		if *r.mate <= 0 {
			return -analysis.MateScorePawns, nil
		}
		return analysis.MateScorePawns, nil
	case r.cp != nil:
		return float64(*r.cp) / 100.0, nil
	}
	return 0, fmt.Errorf("engine reported no score")
}
