package world

import (
	"fmt"
	"math/rand"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"deminer.ai/internal/sim/world/logic/kinematics"
	"deminer.ai/internal/sim/world/logic/mathx"
	"deminer.ai/internal/sim/world/logic/motion"
)

// World is one simulation instance. All state is mutated from a single
// goroutine: either the caller of StepOnce or the Run loop.
type World struct {
	cfg   WorldConfig
	runID string

	rng *rand.Rand
	env *Environment

	robots       []*Robot
	initialMines int
	stuckEvents  int
	lastStuck    []string

	tick     atomic.Uint64
	finished atomic.Bool
	done     chan struct{}

	seriesSink SeriesSink

	metrics atomic.Value // SeriesEntry
	latest  atomic.Value // Snapshot

	observers     map[string]*observerClient
	observerJoin  chan ObserverJoinRequest
	observerSub   chan ObserverSubscribeRequest
	observerLeave chan string
	stop          chan struct{}
	stopOnce      sync.Once

	seriesErrors atomic.Uint64
}

// Layout is an explicit arena used instead of random placement.
type Layout struct {
	Obstacles  []Obstacle
	Quicksands []Quicksand
	Mines      [][2]float64
	Robots     []RobotSpec
}

type RobotSpec struct {
	X     float64
	Y     float64
	Angle float64
}

// New builds the environment and robot population with random placement.
// Robots and mines are never placed inside an obstacle or quicksand disc,
// and robots start at least one speed apart from each other.
func New(cfg WorldConfig) (*World, error) {
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	w := newWorld(cfg)
	rng := w.rng

	for i := 0; i < cfg.Obstacles; i++ {
		w.env.addObstacle(Obstacle{
			X: rng.Float64() * cfg.SpawnWidth,
			Y: rng.Float64() * cfg.SpawnHeight,
			R: cfg.Zones.ObstacleRadiusMin + cfg.Zones.ObstacleRadiusSpread*rng.Float64(),
		})
	}
	for i := 0; i < cfg.Quicksands; i++ {
		w.env.addQuicksand(Quicksand{
			X: rng.Float64() * cfg.SpawnWidth,
			Y: rng.Float64() * cfg.SpawnHeight,
			R: cfg.Zones.QuicksandRadiusMin + cfg.Zones.QuicksandRadiusSpread*rng.Float64(),
		})
	}

	for i := 0; i < cfg.Robots; i++ {
		x, y, err := w.place(func(x, y float64) bool {
			return w.freeOfZones(x, y) && !w.env.crowded(x, y, nil)
		})
		if err != nil {
			return nil, fmt.Errorf("place robot %d: %w", i, err)
		}
		w.spawnRobot(x, y, kinematics.RandomHeading(rng))
	}
	for i := 0; i < cfg.Mines; i++ {
		x, y, err := w.place(w.freeOfZones)
		if err != nil {
			return nil, fmt.Errorf("place mine %d: %w", i, err)
		}
		w.env.addMine(x, y)
	}
	w.finishInit()
	return w, nil
}

// NewWithLayout builds a world from an explicit arena. Robots may start in
// quicksand but not in an obstacle; mines must be clear of both. Anything
// out of bounds is rejected.
func NewWithLayout(cfg WorldConfig, layout Layout) (*World, error) {
	cfg.Robots = len(layout.Robots)
	cfg.Obstacles = len(layout.Obstacles)
	cfg.Quicksands = len(layout.Quicksands)
	cfg.Mines = len(layout.Mines)
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	w := newWorld(cfg)
	for _, o := range layout.Obstacles {
		w.env.addObstacle(o)
	}
	for _, q := range layout.Quicksands {
		w.env.addQuicksand(q)
	}
	for i, rs := range layout.Robots {
		if !w.env.WithinBounds(rs.X, rs.Y) || w.env.blockedByObstacle(rs.X, rs.Y) {
			return nil, fmt.Errorf("place robot %d at (%.2f,%.2f): %w", i, rs.X, rs.Y, ErrConfigurationInfeasible)
		}
		w.spawnRobot(rs.X, rs.Y, mathx.WrapAngle(rs.Angle))
	}
	for i, p := range layout.Mines {
		if !w.env.WithinBounds(p[0], p[1]) || !w.freeOfZones(p[0], p[1]) {
			return nil, fmt.Errorf("place mine %d at (%.2f,%.2f): %w", i, p[0], p[1], ErrConfigurationInfeasible)
		}
		w.env.addMine(p[0], p[1])
	}
	w.finishInit()
	return w, nil
}

func newWorld(cfg WorldConfig) *World {
	return &World{
		cfg: cfg,
		rng: newRand(cfg.Seed),
		env: NewEnvironment(Bounds{XMin: 0, XMax: cfg.Width, YMin: 0, YMax: cfg.Height}),

		done:          make(chan struct{}),
		observers:     map[string]*observerClient{},
		observerJoin:  make(chan ObserverJoinRequest, 64),
		observerSub:   make(chan ObserverSubscribeRequest, 64),
		observerLeave: make(chan string, 64),
		stop:          make(chan struct{}),
	}
}

func (w *World) finishInit() {
	w.initialMines = w.env.MineCount()
	w.runID = w.newUUID()
	w.metrics.Store(w.collect())
	w.latest.Store(w.Snapshot())
	w.checkFinished()
}

func (w *World) freeOfZones(x, y float64) bool {
	return !w.env.blockedByObstacle(x, y) && !w.env.inQuicksand(x, y)
}

func (w *World) place(ok func(x, y float64) bool) (float64, float64, error) {
	for i := 0; i < w.cfg.PlacementRetryCap; i++ {
		x := w.rng.Float64() * w.cfg.SpawnWidth
		y := w.rng.Float64() * w.cfg.SpawnHeight
		if ok(x, y) {
			return x, y, nil
		}
	}
	return 0, 0, fmt.Errorf("no free position after %d attempts: %w", w.cfg.PlacementRetryCap, ErrConfigurationInfeasible)
}

func (w *World) spawnRobot(x, y, angle float64) *Robot {
	r := &Robot{
		ID:            w.newUUID(),
		X:             x,
		Y:             y,
		Angle:         angle,
		DefaultSpeed:  w.cfg.Speed,
		SightDistance: w.cfg.SightDistance(),
		Motion:        motion.Normal,
	}
	w.robots = append(w.robots, r)
	w.env.addRobot(r)
	return r
}

// newUUID draws ids from the seeded generator so two worlds built from the
// same config agree on every id.
func (w *World) newUUID() string {
	id, err := uuid.NewRandomFromReader(w.rng)
	if err != nil {
		return fmt.Sprintf("R%06d", len(w.robots)+1)
	}
	return id.String()
}

func (w *World) SetSeriesSink(s SeriesSink) { w.seriesSink = s }

func (w *World) Config() WorldConfig { return w.cfg }

func (w *World) ID() string {
	if w == nil {
		return ""
	}
	return w.cfg.ID
}

func (w *World) RunID() string { return w.runID }

func (w *World) CurrentTick() uint64 { return w.tick.Load() }

// IsFinished reports whether every mine has been cleared.
func (w *World) IsFinished() bool { return w.finished.Load() }

// Done is closed once the world is finished.
func (w *World) Done() <-chan struct{} { return w.done }

func (w *World) checkFinished() {
	if w.env.MineCount() != 0 || w.finished.Load() {
		return
	}
	w.finished.Store(true)
	close(w.done)
}

// Environment exposes the arena for read-only inspection between ticks.
func (w *World) Environment() *Environment { return w.env }

// Robots returns copies of the robot states in creation order.
func (w *World) Robots() []Robot {
	out := make([]Robot, 0, len(w.robots))
	for _, r := range w.robots {
		out = append(out, *r)
	}
	return out
}
