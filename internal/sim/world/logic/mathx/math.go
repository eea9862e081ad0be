package mathx

import "math"

const TwoPi = 2 * math.Pi

// WrapAngle maps a into [0, 2*pi).
func WrapAngle(a float64) float64 {
	m := math.Mod(a, TwoPi)
	if m < 0 {
		m += TwoPi
	}
	if m >= TwoPi {
		m = 0
	}
	return m
}

func Dist(ax, ay, bx, by float64) float64 {
	return math.Hypot(ax-bx, ay-by)
}

func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
