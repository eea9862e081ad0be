package worldtest

import (
	"math"
	"testing"

	world "deminer.ai/internal/sim/world"
)

func testArena() world.WorldConfig {
	return world.WorldConfig{
		ID:     "worldtest",
		Seed:   2024,
		Width:  100,
		Height: 100,
		Speed:  5,
	}
}

func dist(ax, ay, bx, by float64) float64 { return math.Hypot(ax-bx, ay-by) }

// checkInvariants asserts the tick-boundary properties that hold for every
// world regardless of layout.
func checkInvariants(t *testing.T, initialMines int, prev, cur world.Snapshot) {
	t.Helper()
	if cur.Counters.Mines > prev.Counters.Mines {
		t.Fatalf("tick %d: mines grew %d -> %d", cur.Tick, prev.Counters.Mines, cur.Counters.Mines)
	}
	if len(cur.Mines) != cur.Counters.Mines {
		t.Fatalf("tick %d: counters disagree with mine list", cur.Tick)
	}
	destroyed := 0
	for _, r := range cur.Robots {
		destroyed += r.MinesDestroyed
		if r.Speed != r.DefaultSpeed && r.Speed != r.DefaultSpeed/2 {
			t.Fatalf("tick %d: robot %s speed %v", cur.Tick, r.ID, r.Speed)
		}
		if (r.Motion == "SLOWED") != (r.Speed == r.DefaultSpeed/2) {
			t.Fatalf("tick %d: robot %s motion %s with speed %v", cur.Tick, r.ID, r.Motion, r.Speed)
		}
		if r.X < 0 || r.X > cur.Arena.Width || r.Y < 0 || r.Y > cur.Arena.Height {
			t.Fatalf("tick %d: robot %s out of bounds (%v,%v)", cur.Tick, r.ID, r.X, r.Y)
		}
		for _, o := range cur.Obstacles {
			if dist(r.X, r.Y, o.X, o.Y) <= o.R {
				t.Fatalf("tick %d: robot %s inside obstacle", cur.Tick, r.ID)
			}
		}
	}
	if destroyed != initialMines-cur.Counters.Mines {
		t.Fatalf("tick %d: destroyed %d != %d - %d", cur.Tick, destroyed, initialMines, cur.Counters.Mines)
	}
	for _, m := range cur.Markers {
		if (m.Direction != nil) != (m.Purpose == world.MarkerIndication) {
			t.Fatalf("tick %d: marker %s purpose %s direction %v", cur.Tick, m.ID, m.Purpose, m.Direction)
		}
	}
}
