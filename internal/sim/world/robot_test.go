package world

import (
	"errors"
	"math"
	"testing"
)

func smallArena() WorldConfig {
	return WorldConfig{
		ID:     "test",
		Seed:   7,
		Width:  100,
		Height: 100,
		Speed:  5,
		Robot:  RobotConfig{HeadingChangeProb: -1},
	}
}

func mustLayout(t *testing.T, cfg WorldConfig, l Layout) *World {
	t.Helper()
	w, err := NewWithLayout(cfg, l)
	if err != nil {
		t.Fatalf("NewWithLayout: %v", err)
	}
	return w
}

func TestStep_SnapsOntoMineThenDestroysIt(t *testing.T) {
	w := mustLayout(t, smallArena(), Layout{
		Mines:  [][2]float64{{53, 50}},
		Robots: []RobotSpec{{X: 50, Y: 50, Angle: 0}},
	})
	r := w.robots[0]

	w.StepOnce()
	if r.X != 53 || r.Y != 50 {
		t.Fatalf("tick 1: expected robot on the mine, got (%v,%v)", r.X, r.Y)
	}
	if w.IsFinished() {
		t.Fatalf("tick 1: finished too early")
	}

	w.StepOnce()
	if r.MinesDestroyed != 1 {
		t.Fatalf("tick 2: mines destroyed = %d", r.MinesDestroyed)
	}
	if r.X != 53 || r.Y != 50 {
		t.Fatalf("destroying a mine ends movement for the tick, got (%v,%v)", r.X, r.Y)
	}
	if r.IgnoreCountdown != 5 {
		t.Fatalf("ignore countdown = %d", r.IgnoreCountdown)
	}
	_, ind := w.env.MarkerCounts()
	if ind != 1 {
		t.Fatalf("expected one indication marker, got %d", ind)
	}
	if !w.IsFinished() {
		t.Fatalf("world should be finished")
	}
	select {
	case <-w.Done():
	default:
		t.Fatalf("Done not closed")
	}
}

func TestStep_QuicksandSlowsThenDropsDangerMarker(t *testing.T) {
	w := mustLayout(t, smallArena(), Layout{
		Quicksands: []Quicksand{{X: 50, Y: 50, R: 1}},
		Robots:     []RobotSpec{{X: 50, Y: 50, Angle: 0}},
	})
	r := w.robots[0]

	w.StepOnce()
	if r.Speed() != 2.5 {
		t.Fatalf("tick 1: speed = %v", r.Speed())
	}
	if r.QuicksandSteps != 1 {
		t.Fatalf("tick 1: quicksand steps = %d", r.QuicksandSteps)
	}
	exitX, exitY := r.X, r.Y
	if d := math.Hypot(exitX-50, exitY-50); math.Abs(d-2.5) > 1e-9 {
		t.Fatalf("tick 1: expected one slowed step, moved %v", d)
	}

	w.StepOnce()
	if r.Speed() != 5 {
		t.Fatalf("tick 2: speed = %v", r.Speed())
	}
	if r.QuicksandSteps != 2 {
		t.Fatalf("tick 2: quicksand steps = %d", r.QuicksandSteps)
	}
	if r.IgnoreCountdown != 3 {
		t.Fatalf("tick 2: ignore countdown = %d", r.IgnoreCountdown)
	}
	ms := w.env.Markers()
	if len(ms) != 1 || ms[0].Purpose != MarkerDanger {
		t.Fatalf("expected one danger marker, got %+v", ms)
	}
	if ms[0].X != exitX || ms[0].Y != exitY {
		t.Fatalf("danger marker at (%v,%v), want (%v,%v)", ms[0].X, ms[0].Y, exitX, exitY)
	}
}

func TestStep_ConsumesIndicationMarker(t *testing.T) {
	w := mustLayout(t, smallArena(), Layout{
		Robots: []RobotSpec{{X: 50, Y: 50, Angle: 0}},
	})
	w.env.AddMarker(NewIndicationMarker(50, 55, 0))
	r := w.robots[0]

	res := w.stepRobot(r)
	if !res.Consumed {
		t.Fatalf("marker not consumed")
	}
	if _, ind := w.env.MarkerCounts(); ind != 0 {
		t.Fatalf("indication markers left: %d", ind)
	}
	if math.Abs(r.Angle-math.Pi/2) > 1e-12 {
		t.Fatalf("angle = %v, want pi/2", r.Angle)
	}
}

func TestStep_IgnoresIndicationDuringCooldown(t *testing.T) {
	w := mustLayout(t, smallArena(), Layout{
		Robots: []RobotSpec{{X: 50, Y: 50, Angle: 0}},
	})
	w.env.AddMarker(NewIndicationMarker(50, 55, 0))
	r := w.robots[0]
	r.IgnoreCountdown = 3

	res := w.stepRobot(r)
	if res.Consumed {
		t.Fatalf("marker consumed during cooldown")
	}
	if r.IgnoreCountdown != 2 {
		t.Fatalf("countdown = %d", r.IgnoreCountdown)
	}
	if _, ind := w.env.MarkerCounts(); ind != 1 {
		t.Fatalf("indication markers: %d", ind)
	}
}

func TestStep_DangerMarkersAreSensedOnly(t *testing.T) {
	w := mustLayout(t, smallArena(), Layout{
		Robots: []RobotSpec{{X: 50, Y: 50, Angle: 0}},
	})
	w.env.AddMarker(NewDangerMarker(52, 50))
	r := w.robots[0]
	w.stepRobot(r)
	if r.DangerInSight != 1 {
		t.Fatalf("danger in sight = %d", r.DangerInSight)
	}
	if d, _ := w.env.MarkerCounts(); d != 1 {
		t.Fatalf("danger marker must not be consumed")
	}
}

func TestStep_StuckRobotStaysPut(t *testing.T) {
	cfg := smallArena()
	cfg.Width, cfg.Height = 10, 10
	cfg.Speed = 15
	w := mustLayout(t, cfg, Layout{
		Mines:  [][2]float64{{1, 1}},
		Robots: []RobotSpec{{X: 5, Y: 5}},
	})
	r := w.robots[0]

	w.StepOnce()
	if r.X != 5 || r.Y != 5 {
		t.Fatalf("stuck robot moved to (%v,%v)", r.X, r.Y)
	}
	if r.StuckTicks != 1 {
		t.Fatalf("stuck ticks = %d", r.StuckTicks)
	}
	if err := w.StuckErr(); !errors.Is(err, ErrStuckAgent) {
		t.Fatalf("expected ErrStuckAgent, got %v", err)
	}
	if got := w.counters().StuckEvents; got != 1 {
		t.Fatalf("stuck events = %d", got)
	}
}

func TestStep_StuckRobotStillClearsMineUnderfoot(t *testing.T) {
	cfg := smallArena()
	cfg.Width, cfg.Height = 10, 10
	cfg.Speed = 15
	w := mustLayout(t, cfg, Layout{
		Mines:  [][2]float64{{5, 5}},
		Robots: []RobotSpec{{X: 5, Y: 5}},
	})
	w.StepOnce()
	if !w.IsFinished() {
		t.Fatalf("mine underfoot should be cleared")
	}
	if w.robots[0].MinesDestroyed != 1 {
		t.Fatalf("mines destroyed = %d", w.robots[0].MinesDestroyed)
	}
}

func TestCanOccupy(t *testing.T) {
	w := mustLayout(t, smallArena(), Layout{
		Obstacles: []Obstacle{{X: 80, Y: 80, R: 5}},
		Robots:    []RobotSpec{{X: 10, Y: 10}, {X: 30, Y: 30}},
	})
	self, other := w.robots[0], w.robots[1]

	cases := []struct {
		name string
		x, y float64
		want bool
	}{
		{"free", 50, 50, true},
		{"out of bounds", 101, 50, false},
		{"obstacle edge", 85, 80, false},
		{"near other robot", 33, 30, false},
		{"other robot speed away", 35, 30, true},
	}
	for _, tc := range cases {
		if got := w.canOccupy(self, tc.x, tc.y); got != tc.want {
			t.Fatalf("%s: canOccupy(%v,%v) = %v", tc.name, tc.x, tc.y, got)
		}
	}
	if !w.canOccupy(other, 30, 30) {
		t.Fatalf("a robot never blocks itself")
	}
}

func TestNewWithLayout_RejectsRobotInObstacle(t *testing.T) {
	_, err := NewWithLayout(smallArena(), Layout{
		Obstacles: []Obstacle{{X: 50, Y: 50, R: 5}},
		Robots:    []RobotSpec{{X: 51, Y: 50}},
	})
	if !errors.Is(err, ErrConfigurationInfeasible) {
		t.Fatalf("expected ErrConfigurationInfeasible, got %v", err)
	}
}

func TestStep_HeadingChangeStillAppliesOnDestroyTick(t *testing.T) {
	cfg := smallArena()
	cfg.Robot.HeadingChangeProb = 1
	w := mustLayout(t, cfg, Layout{
		Mines:  [][2]float64{{50, 50}},
		Robots: []RobotSpec{{X: 50, Y: 50, Angle: 0}},
	})
	r := w.robots[0]

	res := w.stepRobot(r)
	if !res.Destroyed || r.MinesDestroyed != 1 {
		t.Fatalf("expected the mine underfoot to be destroyed, got %+v", res)
	}
	if r.X != 50 || r.Y != 50 {
		t.Fatalf("destroy tick moved the robot to (%v,%v)", r.X, r.Y)
	}
	if r.Angle == 0 {
		t.Fatalf("heading change with probability 1 did not fire")
	}
	// The marker keeps the heading the robot had when it cleared the mine.
	ms := w.env.Markers()
	if len(ms) != 1 {
		t.Fatalf("markers = %d", len(ms))
	}
	if dir, ok := ms[0].Direction(); !ok || dir != 0 {
		t.Fatalf("indication direction = %v ok=%v", dir, ok)
	}
}

func TestStep_BlockedGoalSeekHoldsPosition(t *testing.T) {
	w := mustLayout(t, smallArena(), Layout{
		Mines:  [][2]float64{{53, 50}},
		Robots: []RobotSpec{{X: 50, Y: 50, Angle: 0}, {X: 56, Y: 50, Angle: math.Pi}},
	})
	r := w.robots[0]

	// The mine lies within the other robot's speed, so the step onto it is
	// rejected and the robot waits instead of wandering off.
	for i := 0; i < 5; i++ {
		res := w.stepRobot(r)
		if res.Stuck {
			t.Fatalf("step %d: unexpected stuck", i)
		}
		if r.X != 50 || r.Y != 50 {
			t.Fatalf("step %d: robot left (50,50) for (%v,%v)", i, r.X, r.Y)
		}
	}
	if w.env.MineCount() != 1 {
		t.Fatalf("mine count = %d", w.env.MineCount())
	}
}

func TestNewWithLayout_RejectsMineInQuicksand(t *testing.T) {
	_, err := NewWithLayout(smallArena(), Layout{
		Quicksands: []Quicksand{{X: 50, Y: 50, R: 5}},
		Mines:      [][2]float64{{52, 50}},
	})
	if !errors.Is(err, ErrConfigurationInfeasible) {
		t.Fatalf("expected ErrConfigurationInfeasible, got %v", err)
	}
}
