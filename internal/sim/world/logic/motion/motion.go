// Package motion holds the per-robot locomotion state machine: the
// normal/slowed speed regime driven by quicksand occupancy, and the
// marker-ignore cooldown.
package motion

// State is the speed regime of a robot.
type State uint8

const (
	Normal State = iota
	Slowed
)

func (s State) String() string {
	switch s {
	case Normal:
		return "NORMAL"
	case Slowed:
		return "SLOWED"
	default:
		return "UNKNOWN"
	}
}

// Transition is the edge taken by Next, if any.
type Transition uint8

const (
	None Transition = iota
	Entered
	Exited
)

func (t Transition) String() string {
	switch t {
	case Entered:
		return "ENTERED"
	case Exited:
		return "EXITED"
	default:
		return "NONE"
	}
}

// Next evaluates quicksand occupancy sampled at the start of a tick.
// At most one edge fires per call.
func Next(s State, inSand bool) (State, Transition) {
	switch {
	case inSand && s == Normal:
		return Slowed, Entered
	case !inSand && s == Slowed:
		return Normal, Exited
	}
	return s, None
}

// Speed is the effective speed of a robot with the given base speed.
func Speed(s State, base float64) float64 {
	if s == Slowed {
		return base / 2
	}
	return base
}

// TickCooldown decrements a positive cooldown by one and never goes below 0.
func TickCooldown(c int) int {
	if c > 0 {
		return c - 1
	}
	return 0
}

// Ignoring reports whether Indication markers must be ignored.
func Ignoring(cooldown int) bool { return cooldown > 0 }
