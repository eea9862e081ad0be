package world

// RunSummary is the outcome of one run, as recorded by the run index.
type RunSummary struct {
	RunID   string `json:"run_id"`
	WorldID string `json:"world_id"`
	Seed    int64  `json:"seed"`

	Robots     int     `json:"robots"`
	Obstacles  int     `json:"obstacles"`
	Quicksands int     `json:"quicksands"`
	Mines      int     `json:"mines"`
	Speed      float64 `json:"speed"`

	Ticks    uint64   `json:"ticks"`
	Finished bool     `json:"finished"`
	Counters Counters `json:"counters"`
}

func (w *World) Summary() RunSummary {
	return RunSummary{
		RunID:      w.runID,
		WorldID:    w.cfg.ID,
		Seed:       w.cfg.Seed,
		Robots:     w.cfg.Robots,
		Obstacles:  w.cfg.Obstacles,
		Quicksands: w.cfg.Quicksands,
		Mines:      w.initialMines,
		Speed:      w.cfg.Speed,
		Ticks:      w.tick.Load(),
		Finished:   w.finished.Load(),
		Counters:   w.counters(),
	}
}
