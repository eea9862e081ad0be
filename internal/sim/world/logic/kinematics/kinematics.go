package kinematics

import (
	"math"

	"deminer.ai/internal/sim/world/logic/mathx"
)

// Rand is the subset of *rand.Rand the kinematics helpers draw from.
type Rand interface {
	Float64() float64
}

// Advance moves (x, y) by speed along angle.
func Advance(x, y, speed, angle float64) (float64, float64) {
	return x + speed*math.Cos(angle), y + speed*math.Sin(angle)
}

// RandomHeading returns a uniform heading in [0, 2*pi).
func RandomHeading(rng Rand) float64 {
	return mathx.TwoPi * rng.Float64()
}

// SteerToward moves one step of length speed toward (tx, ty).
//
// When the target is closer than speed the mover lands on it exactly and
// picks a fresh random heading. A target equal to the source is treated the
// same way, so the heading computation never sees a zero distance.
func SteerToward(x, y, speed, tx, ty float64, rng Rand) (nx, ny, angle float64) {
	d := mathx.Dist(x, y, tx, ty)
	if d < speed || d == 0 {
		return tx, ty, RandomHeading(rng)
	}
	angle = math.Acos((tx - x) / d)
	if ty < y {
		angle = -angle
	}
	nx, ny = Advance(x, y, speed, angle)
	return nx, ny, angle
}

// Reverse turns a heading by frac*pi and wraps it.
func Reverse(angle, frac float64) float64 {
	return mathx.WrapAngle(angle + math.Pi*frac)
}
