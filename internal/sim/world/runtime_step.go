package world

import "fmt"

// StepOnce advances the world by exactly one tick and returns the tick
// that was executed.
//
// Metrics are collected before any robot acts. Robots then step once each
// in an order reshuffled every tick; later robots see the moves, markers
// and cleared mines of earlier ones.
func (w *World) StepOnce() uint64 {
	nowTick := w.tick.Load()

	entry := w.collect()
	w.metrics.Store(entry)
	if w.seriesSink != nil {
		if err := w.seriesSink.WriteSeries(entry); err != nil {
			w.seriesErrors.Add(1)
		}
	}

	w.lastStuck = w.lastStuck[:0]
	for _, i := range w.rng.Perm(len(w.robots)) {
		r := w.robots[i]
		res := w.stepRobot(r)
		if res.Stuck {
			w.stuckEvents++
			w.lastStuck = append(w.lastStuck, r.ID)
		}
	}

	w.tick.Add(1)
	w.checkFinished()

	snap := w.Snapshot()
	w.latest.Store(snap)
	w.stepObservers(snap)
	return nowTick
}

// StepFor runs up to n ticks, stopping early once finished. It returns the
// number of ticks executed.
func (w *World) StepFor(n int) int {
	ran := 0
	for ran < n && !w.IsFinished() {
		w.StepOnce()
		ran++
	}
	return ran
}

// StuckErr reports the robots that stayed in place on the last tick because
// no legal heading was found. It wraps ErrStuckAgent and is nil otherwise.
func (w *World) StuckErr() error {
	if len(w.lastStuck) == 0 {
		return nil
	}
	return fmt.Errorf("tick %d: %d robot(s) %v: %w", w.tick.Load()-1, len(w.lastStuck), w.lastStuck, ErrStuckAgent)
}
