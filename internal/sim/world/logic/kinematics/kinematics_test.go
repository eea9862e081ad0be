package kinematics

import (
	"math"
	"math/rand"
	"testing"
)

func TestAdvance(t *testing.T) {
	x, y := Advance(10, 10, 5, 0)
	if x != 15 || y != 10 {
		t.Fatalf("Advance east: got (%v,%v)", x, y)
	}
	x, y = Advance(10, 10, 2, math.Pi/2)
	if math.Abs(x-10) > 1e-12 || math.Abs(y-12) > 1e-12 {
		t.Fatalf("Advance north: got (%v,%v)", x, y)
	}
}

func TestSteerTowardSnapsWhenClose(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	x, y, a := SteerToward(0, 0, 5, 3, 1, rng)
	if x != 3 || y != 1 {
		t.Fatalf("expected snap onto target, got (%v,%v)", x, y)
	}
	if a < 0 || a >= 2*math.Pi {
		t.Fatalf("heading out of range: %v", a)
	}
}

func TestSteerTowardCoincidentTarget(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	x, y, a := SteerToward(4, 4, 0, 4, 4, rng)
	if x != 4 || y != 4 {
		t.Fatalf("got (%v,%v)", x, y)
	}
	if math.IsNaN(a) {
		t.Fatalf("heading is NaN")
	}
}

func TestSteerTowardStepsAlongLine(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	cases := []struct {
		tx, ty    float64
		wantAngle float64
	}{
		{100, 0, 0},
		{0, 100, math.Pi / 2},
		{0, -100, -math.Pi / 2},
		{-100, 0, math.Pi},
	}
	for _, tc := range cases {
		x, y, a := SteerToward(0, 0, 5, tc.tx, tc.ty, rng)
		if math.Abs(a-tc.wantAngle) > 1e-9 {
			t.Fatalf("target (%v,%v): angle=%v want %v", tc.tx, tc.ty, a, tc.wantAngle)
		}
		if d := math.Hypot(x, y); math.Abs(d-5) > 1e-9 {
			t.Fatalf("target (%v,%v): moved %v want 5", tc.tx, tc.ty, d)
		}
	}
}

func TestReverseWraps(t *testing.T) {
	a := Reverse(1.5*math.Pi, 0.9)
	want := math.Mod(1.5*math.Pi+0.9*math.Pi, 2*math.Pi)
	if math.Abs(a-want) > 1e-12 {
		t.Fatalf("Reverse=%v want %v", a, want)
	}
}
