package worldtest

import (
	"testing"

	world "deminer.ai/internal/sim/world"
)

// Harness is a small black-box test helper for driving a world via exported
// APIs. Every read goes through Snapshot so tests see exactly what an
// observer would.
type Harness struct {
	T *testing.T
	W *world.World
}

func NewHarness(t *testing.T, cfg world.WorldConfig) *Harness {
	t.Helper()
	w, err := world.New(cfg)
	if err != nil {
		t.Fatalf("world.New: %v", err)
	}
	return &Harness{T: t, W: w}
}

// NewLayoutHarness builds the world from an explicit arena.
func NewLayoutHarness(t *testing.T, cfg world.WorldConfig, layout world.Layout) *Harness {
	t.Helper()
	w, err := world.NewWithLayout(cfg, layout)
	if err != nil {
		t.Fatalf("world.NewWithLayout: %v", err)
	}
	return &Harness{T: t, W: w}
}

// Step advances one tick and returns the resulting snapshot.
func (h *Harness) Step() world.Snapshot {
	h.T.Helper()
	h.W.StepOnce()
	return h.W.Snapshot()
}

// StepFor advances n ticks, calling check (if non-nil) with the previous and
// current snapshot after each one.
func (h *Harness) StepFor(n int, check func(prev, cur world.Snapshot)) world.Snapshot {
	h.T.Helper()
	prev := h.W.Snapshot()
	for i := 0; i < n; i++ {
		cur := h.Step()
		if check != nil {
			check(prev, cur)
		}
		prev = cur
	}
	return prev
}

// StepUntilFinished steps until every mine is cleared or max ticks have run.
// It fails the test if the world did not finish.
func (h *Harness) StepUntilFinished(max int) world.Snapshot {
	h.T.Helper()
	for i := 0; i < max && !h.W.IsFinished(); i++ {
		h.W.StepOnce()
	}
	if !h.W.IsFinished() {
		h.T.Fatalf("world not finished after %d ticks (mines left %d)", max, h.W.Snapshot().Counters.Mines)
	}
	return h.W.Snapshot()
}

func (h *Harness) Snapshot() world.Snapshot { return h.W.Snapshot() }

// Robot returns the state of robot i in creation order.
func (h *Harness) Robot(i int) world.RobotState {
	h.T.Helper()
	rs := h.W.Snapshot().Robots
	if i < 0 || i >= len(rs) {
		h.T.Fatalf("robot %d out of range (have %d)", i, len(rs))
	}
	return rs[i]
}
