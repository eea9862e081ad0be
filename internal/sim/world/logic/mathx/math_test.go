package mathx

import (
	"math"
	"testing"
)

func TestWrapAngle(t *testing.T) {
	cases := []struct {
		in, want float64
	}{
		{0, 0},
		{math.Pi, math.Pi},
		{TwoPi, 0},
		{-math.Pi / 2, 3 * math.Pi / 2},
		{5 * math.Pi, math.Pi},
	}
	for _, tc := range cases {
		got := WrapAngle(tc.in)
		if math.Abs(got-tc.want) > 1e-12 {
			t.Fatalf("WrapAngle(%v)=%v want %v", tc.in, got, tc.want)
		}
		if got < 0 || got >= TwoPi {
			t.Fatalf("WrapAngle(%v)=%v out of range", tc.in, got)
		}
	}
}

func TestDist(t *testing.T) {
	if d := Dist(0, 0, 3, 4); d != 5 {
		t.Fatalf("Dist=%v want 5", d)
	}
	if d := Dist(1, 1, 1, 1); d != 0 {
		t.Fatalf("Dist=%v want 0", d)
	}
}

func TestClamp(t *testing.T) {
	if v := Clamp(-1, 0, 10); v != 0 {
		t.Fatalf("Clamp low=%v", v)
	}
	if v := Clamp(11, 0, 10); v != 10 {
		t.Fatalf("Clamp high=%v", v)
	}
	if v := Clamp(4, 0, 10); v != 4 {
		t.Fatalf("Clamp mid=%v", v)
	}
}
