package world

import (
	"context"
	"time"
)

// Run ticks the world at TickRateHz until ctx is cancelled or Stop is
// called. Once the world is finished it stops stepping but keeps serving
// observer requests; Done is closed at that point.
func (w *World) Run(ctx context.Context) error {
	interval := time.Second / time.Duration(w.cfg.TickRateHz)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-w.stop:
			return nil
		case req := <-w.observerJoin:
			w.handleObserverJoin(req)
		case req := <-w.observerSub:
			w.handleObserverSubscribe(req)
		case id := <-w.observerLeave:
			w.handleObserverLeave(id)
		case <-ticker.C:
			if w.IsFinished() {
				continue
			}
			w.StepOnce()
		}
	}
}

// Stop ends Run. It is safe to call more than once.
func (w *World) Stop() { w.stopOnce.Do(func() { close(w.stop) }) }
