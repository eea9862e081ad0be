package world

import (
	"math"

	"deminer.ai/internal/sim/world/logic/kinematics"
	"deminer.ai/internal/sim/world/logic/mathx"
	"deminer.ai/internal/sim/world/logic/motion"
)

type Robot struct {
	ID string

	X     float64
	Y     float64
	Angle float64

	DefaultSpeed  float64
	SightDistance float64

	Motion          motion.State
	IgnoreCountdown int

	MinesDestroyed int
	QuicksandSteps int
	StuckTicks     int

	// Danger markers seen on the last tick without visible mines. Sensed
	// only; routing does not use them.
	DangerInSight int
}

func (r *Robot) Speed() float64 { return motion.Speed(r.Motion, r.DefaultSpeed) }

type robotStepResult struct {
	Stuck     bool
	Destroyed bool
	Consumed  bool
}

// canOccupy is the move legality check shared by every position write.
func (w *World) canOccupy(r *Robot, x, y float64) bool {
	if !w.env.WithinBounds(x, y) {
		return false
	}
	if w.env.blockedByObstacle(x, y) {
		return false
	}
	return !w.env.crowded(x, y, r)
}

// findHeading keeps the current heading if the next step along it is
// legal, and otherwise resamples uniformly until one is or the retry cap is
// spent.
func (w *World) findHeading(r *Robot) bool {
	speed := r.Speed()
	for i := 0; i < w.cfg.Robot.MoveRetryCap; i++ {
		nx, ny := kinematics.Advance(r.X, r.Y, speed, r.Angle)
		if w.canOccupy(r, nx, ny) {
			return true
		}
		r.Angle = kinematics.RandomHeading(w.rng)
	}
	return false
}

func (w *World) stepRobot(r *Robot) robotStepResult {
	var res robotStepResult
	env := w.env
	rc := w.cfg.Robot

	r.IgnoreCountdown = motion.TickCooldown(r.IgnoreCountdown)

	var tr motion.Transition
	r.Motion, tr = motion.Next(r.Motion, env.inQuicksand(r.X, r.Y))
	switch tr {
	case motion.Entered:
		r.QuicksandSteps++
	case motion.Exited:
		r.QuicksandSteps++
		env.AddMarker(NewDangerMarker(r.X, r.Y))
		r.IgnoreCountdown = rc.DangerIgnoreTicks
	}

	// finalized means position is settled for the tick; the heading may
	// still change below.
	finalized := false
	if !w.findHeading(r) {
		res.Stuck = true
		r.StuckTicks++
		finalized = true
		// Clearing the mine underfoot needs no movement.
		if m := mineAt(env.MinesWithin(r.X, r.Y, r.SightDistance), r.X, r.Y); m != nil {
			w.destroyMine(r, m)
			res.Destroyed = true
		}
	} else {
		res.Destroyed, res.Consumed, finalized = w.senseAndAct(r)
	}

	if rc.HeadingChangeProb > 0 && w.rng.Float64() < rc.HeadingChangeProb {
		r.Angle = kinematics.RandomHeading(w.rng)
	}

	if finalized {
		return res
	}
	if !w.findHeading(r) {
		res.Stuck = true
		r.StuckTicks++
		return res
	}
	r.X, r.Y = kinematics.Advance(r.X, r.Y, r.Speed(), r.Angle)
	return res
}

// senseAndAct runs the mine or marker branch. A visible mine always settles
// the position for the tick, even when the step toward it is blocked.
func (w *World) senseAndAct(r *Robot) (destroyed, consumed, finalized bool) {
	env := w.env
	speed := r.Speed()

	if mines := env.MinesWithin(r.X, r.Y, r.SightDistance); len(mines) > 0 {
		if m := mineAt(mines, r.X, r.Y); m != nil {
			w.destroyMine(r, m)
			return true, false, true
		}
		goal := nearestMine(mines, r.X, r.Y)
		nx, ny, a := kinematics.SteerToward(r.X, r.Y, speed, goal.X, goal.Y, w.rng)
		if w.canOccupy(r, nx, ny) {
			r.X, r.Y, r.Angle = nx, ny, mathx.WrapAngle(a)
		}
		return false, false, true
	}

	r.DangerInSight = len(env.MarkersWithin(r.X, r.Y, r.SightDistance, MarkerDanger))
	indications := env.MarkersWithin(r.X, r.Y, r.SightDistance, MarkerIndication)

	r.Angle = kinematics.Reverse(r.Angle, w.cfg.Robot.ReverseTurn)
	nx, ny := kinematics.Advance(r.X, r.Y, speed, r.Angle)
	if w.canOccupy(r, nx, ny) {
		r.X, r.Y = nx, ny
		finalized = true
	}

	if len(indications) > 0 && !motion.Ignoring(r.IgnoreCountdown) {
		mk := indications[0]
		nx, ny, _ := kinematics.SteerToward(r.X, r.Y, speed, mk.X, mk.Y, w.rng)
		if w.canOccupy(r, nx, ny) {
			r.X, r.Y = nx, ny
		}
		env.RemoveMarker(mk)
		dir, _ := mk.Direction()
		r.Angle = mathx.WrapAngle(dir + math.Pi/2)
		consumed, finalized = true, true
	}
	return false, consumed, finalized
}

func (w *World) destroyMine(r *Robot, m *Mine) {
	if !w.env.RemoveMine(m) {
		return
	}
	r.MinesDestroyed++
	w.env.AddMarker(NewIndicationMarker(r.X, r.Y, r.Angle))
	r.IgnoreCountdown = w.cfg.Robot.IndicationIgnoreTicks
}

func mineAt(mines []*Mine, x, y float64) *Mine {
	for _, m := range mines {
		if m.X == x && m.Y == y {
			return m
		}
	}
	return nil
}

// nearestMine picks the closest mine; ties go to the earlier one in scan order.
func nearestMine(mines []*Mine, x, y float64) *Mine {
	var best *Mine
	bestD := math.Inf(1)
	for _, m := range mines {
		if d := mathx.Dist(m.X, m.Y, x, y); d < bestD {
			best, bestD = m, d
		}
	}
	return best
}
