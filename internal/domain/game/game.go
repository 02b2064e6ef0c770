package game

// GameRecord is the already-parsed input for one analysis run. Moves
// are ordered ply by ply (SAN or UCI); MoveTimes, when present, holds
// seconds spent on the matching ply.
type GameRecord struct {
	GameID    string    `json:"game_id"`
	White     string    `json:"white"`
	Black     string    `json:"black"`
	Side      string    `json:"side"` // "w" or "b": whose play is scored
	Moves     []string  `json:"moves"`
	MoveTimes []float64 `json:"move_times,omitempty"`
	TotalTime float64   `json:"total_time"` // seconds on the clock
	Increment float64   `json:"increment"`  // seconds per move
}

// TimeFor returns the recorded time for ply i, or 0 when timing data
// is missing.
func (g GameRecord) TimeFor(ply int) float64 {
	if ply < 0 || ply >= len(g.MoveTimes) {
		return 0
	}
	return g.MoveTimes[ply]
}

type AnalyzeRequest struct {
	Game  GameRecord `json:"game"`
	Depth int        `json:"depth,omitempty"`
}

type AnalyzeResponse struct {
	JobID  string `json:"job_id"`
	GameID string `json:"game_id"`
	Status string `json:"status"`
}
