package world

// Snapshot is a read-only, serializable view of the whole world between
// ticks.
type Snapshot struct {
	WorldID  string `json:"world_id"`
	RunID    string `json:"run_id"`
	Tick     uint64 `json:"tick"`
	Finished bool   `json:"finished"`

	Arena Arena `json:"arena"`

	Robots     []RobotState  `json:"robots"`
	Mines      []MineState   `json:"mines"`
	Markers    []MarkerState `json:"markers"`
	Obstacles  []DiscState   `json:"obstacles"`
	Quicksands []DiscState   `json:"quicksands"`

	Counters Counters `json:"counters"`
}

type Arena struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

type RobotState struct {
	ID              string  `json:"id"`
	X               float64 `json:"x"`
	Y               float64 `json:"y"`
	Angle           float64 `json:"angle"`
	Speed           float64 `json:"speed"`
	DefaultSpeed    float64 `json:"default_speed"`
	SightDistance   float64 `json:"sight_distance"`
	Motion          string  `json:"motion"`
	IgnoreCountdown int     `json:"ignore_countdown"`
	MinesDestroyed  int     `json:"mines_destroyed"`
	QuicksandSteps  int     `json:"quicksand_steps"`
	StuckTicks      int     `json:"stuck_ticks"`
}

type MineState struct {
	ID string  `json:"id"`
	X  float64 `json:"x"`
	Y  float64 `json:"y"`
}

type MarkerState struct {
	ID        string        `json:"id"`
	X         float64       `json:"x"`
	Y         float64       `json:"y"`
	Purpose   MarkerPurpose `json:"purpose"`
	Direction *float64      `json:"direction,omitempty"`
}

type DiscState struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	R float64 `json:"r"`
}

// Snapshot builds a view of the current state. It must be called from the
// goroutine that steps the world; other goroutines use LatestSnapshot.
func (w *World) Snapshot() Snapshot {
	s := Snapshot{
		WorldID:  w.cfg.ID,
		RunID:    w.runID,
		Tick:     w.tick.Load(),
		Finished: w.finished.Load(),
		Arena:    Arena{Width: w.cfg.Width, Height: w.cfg.Height},

		Robots:     make([]RobotState, 0, len(w.robots)),
		Mines:      make([]MineState, 0, len(w.env.mines)),
		Markers:    make([]MarkerState, 0, len(w.env.markers)),
		Obstacles:  make([]DiscState, 0, len(w.env.obstacles)),
		Quicksands: make([]DiscState, 0, len(w.env.quicksands)),

		Counters: w.counters(),
	}
	for _, r := range w.robots {
		s.Robots = append(s.Robots, RobotState{
			ID:              r.ID,
			X:               r.X,
			Y:               r.Y,
			Angle:           r.Angle,
			Speed:           r.Speed(),
			DefaultSpeed:    r.DefaultSpeed,
			SightDistance:   r.SightDistance,
			Motion:          r.Motion.String(),
			IgnoreCountdown: r.IgnoreCountdown,
			MinesDestroyed:  r.MinesDestroyed,
			QuicksandSteps:  r.QuicksandSteps,
			StuckTicks:      r.StuckTicks,
		})
	}
	for _, m := range w.env.mines {
		s.Mines = append(s.Mines, MineState{ID: m.ID, X: m.X, Y: m.Y})
	}
	for _, m := range w.env.markers {
		ms := MarkerState{ID: m.ID, X: m.X, Y: m.Y, Purpose: m.Purpose}
		if dir, ok := m.Direction(); ok {
			d := dir
			ms.Direction = &d
		}
		s.Markers = append(s.Markers, ms)
	}
	for _, o := range w.env.obstacles {
		s.Obstacles = append(s.Obstacles, DiscState{X: o.X, Y: o.Y, R: o.R})
	}
	for _, q := range w.env.quicksands {
		s.Quicksands = append(s.Quicksands, DiscState{X: q.X, Y: q.Y, R: q.R})
	}
	return s
}

// LatestSnapshot returns the snapshot published after the most recent tick.
// Safe to call from any goroutine.
func (w *World) LatestSnapshot() Snapshot {
	v := w.latest.Load()
	if v == nil {
		return Snapshot{}
	}
	s, _ := v.(Snapshot)
	return s
}
