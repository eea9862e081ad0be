package world

import "testing"

func TestEnvironment_BoundsInclusive(t *testing.T) {
	env := NewEnvironment(Bounds{XMin: 0, XMax: 100, YMin: 0, YMax: 50})
	for _, p := range [][2]float64{{0, 0}, {100, 50}, {100, 0}, {42, 17}} {
		if !env.WithinBounds(p[0], p[1]) {
			t.Fatalf("%v should be in bounds", p)
		}
	}
	for _, p := range [][2]float64{{-0.1, 0}, {100.1, 0}, {0, 50.1}, {0, -1}} {
		if env.WithinBounds(p[0], p[1]) {
			t.Fatalf("%v should be out of bounds", p)
		}
	}
}

func TestEnvironment_MinesWithinIsStrict(t *testing.T) {
	env := NewEnvironment(Bounds{XMax: 100, YMax: 100})
	near := env.addMine(13, 10)
	env.addMine(20, 10)
	got := env.MinesWithin(10, 10, 10)
	if len(got) != 1 || got[0] != near {
		t.Fatalf("expected only the near mine, got %d", len(got))
	}
	if n := len(env.MinesWithin(10, 10, 10.0001)); n != 2 {
		t.Fatalf("expected 2 mines, got %d", n)
	}
}

func TestEnvironment_MarkersFilteredByPurposeInScanOrder(t *testing.T) {
	env := NewEnvironment(Bounds{XMax: 100, YMax: 100})
	env.AddMarker(NewIndicationMarker(1, 1, 0))
	env.AddMarker(NewDangerMarker(2, 2))
	env.AddMarker(NewIndicationMarker(3, 3, 1))

	ind := env.MarkersWithin(0, 0, 10, MarkerIndication)
	if len(ind) != 2 || ind[0].X != 1 || ind[1].X != 3 {
		t.Fatalf("unexpected indications: %+v", ind)
	}
	if ind[0].ID == ind[1].ID {
		t.Fatalf("marker ids must be unique")
	}
	danger, indication := env.MarkerCounts()
	if danger != 1 || indication != 2 {
		t.Fatalf("counts: danger=%d indication=%d", danger, indication)
	}

	if !env.RemoveMarker(ind[0]) {
		t.Fatalf("remove failed")
	}
	if env.RemoveMarker(ind[0]) {
		t.Fatalf("second remove must report false")
	}
	rest := env.Markers()
	if len(rest) != 2 || rest[0].Purpose != MarkerDanger || rest[1].X != 3 {
		t.Fatalf("order not preserved: %+v", rest)
	}
}

func TestEnvironment_RemoveMinePreservesOrder(t *testing.T) {
	env := NewEnvironment(Bounds{XMax: 100, YMax: 100})
	a := env.addMine(1, 1)
	b := env.addMine(2, 2)
	c := env.addMine(3, 3)
	if !env.RemoveMine(b) {
		t.Fatalf("remove failed")
	}
	ms := env.Mines()
	if len(ms) != 2 || ms[0].ID != a.ID || ms[1].ID != c.ID {
		t.Fatalf("unexpected mines: %+v", ms)
	}
	if env.RemoveMine(b) {
		t.Fatalf("removing twice must fail")
	}
}

func TestEnvironment_CrowdedUsesOtherRobotSpeed(t *testing.T) {
	env := NewEnvironment(Bounds{XMax: 100, YMax: 100})
	fast := &Robot{ID: "fast", X: 50, Y: 50, DefaultSpeed: 10}
	self := &Robot{ID: "self", X: 0, Y: 0, DefaultSpeed: 1}
	env.addRobot(fast)
	env.addRobot(self)

	if !env.crowded(55, 50, self) {
		t.Fatalf("5 units from a speed-10 robot must be crowded")
	}
	if env.crowded(60, 50, self) {
		t.Fatalf("exactly the other robot's speed away is allowed")
	}
	if env.crowded(0, 0, self) {
		t.Fatalf("self must be ignored")
	}
	if got := env.RobotsWithin(50, 50, 1, nil); len(got) != 1 || got[0] != fast {
		t.Fatalf("RobotsWithin: %+v", got)
	}
}
