package world

import (
	"encoding/json"

	"deminer.ai/internal/observerproto"
)

// ObserverJoinRequest registers a read-only observer session that receives
// one TICK frame every EveryTicks ticks on TickOut.
//
// All observer state is maintained by the world loop goroutine.
type ObserverJoinRequest struct {
	SessionID  string
	TickOut    chan []byte
	EveryTicks int
}

// ObserverSubscribeRequest updates an existing observer session.
type ObserverSubscribeRequest struct {
	SessionID  string
	EveryTicks int
}

type observerClient struct {
	id         string
	tickOut    chan []byte
	everyTicks uint64
}

func (w *World) ObserverJoin() chan<- ObserverJoinRequest           { return w.observerJoin }
func (w *World) ObserverSubscribe() chan<- ObserverSubscribeRequest { return w.observerSub }
func (w *World) ObserverLeave() chan<- string                       { return w.observerLeave }

// Bootstrap describes the run for a new observer. Safe to call from any
// goroutine.
func (w *World) Bootstrap() observerproto.BootstrapResponse {
	snap := w.LatestSnapshot()
	return observerproto.BootstrapResponse{
		ProtocolVersion: observerproto.Version,
		WorldID:         w.cfg.ID,
		RunID:           w.runID,
		Tick:            snap.Tick,
		WorldParams: observerproto.WorldParams{
			TickRateHz: w.cfg.TickRateHz,
			Width:      w.cfg.Width,
			Height:     w.cfg.Height,
			Seed:       w.cfg.Seed,
			Robots:     w.cfg.Robots,
			Obstacles:  w.cfg.Obstacles,
			Quicksands: w.cfg.Quicksands,
			Mines:      w.initialMines,
			Speed:      w.cfg.Speed,
		},
		Static: snap.StaticDrawables(),
	}
}

func normalizeEvery(n int) uint64 {
	if n <= 0 {
		return 1
	}
	return uint64(n)
}

func (w *World) handleObserverJoin(req ObserverJoinRequest) {
	if req.SessionID == "" || req.TickOut == nil {
		return
	}
	c := &observerClient{id: req.SessionID, tickOut: req.TickOut, everyTicks: normalizeEvery(req.EveryTicks)}
	w.observers[req.SessionID] = c

	// Late joiners get the current state right away.
	if b, err := json.Marshal(w.LatestSnapshot().TickMsg()); err == nil {
		sendLatest(c.tickOut, b)
	}
}

func (w *World) handleObserverSubscribe(req ObserverSubscribeRequest) {
	c := w.observers[req.SessionID]
	if c == nil {
		return
	}
	c.everyTicks = normalizeEvery(req.EveryTicks)
}

func (w *World) handleObserverLeave(id string) {
	delete(w.observers, id)
}

func (w *World) stepObservers(snap Snapshot) {
	if len(w.observers) == 0 {
		return
	}
	var b []byte
	for _, c := range w.observers {
		if snap.Tick%c.everyTicks != 0 && !snap.Finished {
			continue
		}
		if b == nil {
			var err error
			b, err = json.Marshal(snap.TickMsg())
			if err != nil {
				return
			}
		}
		sendLatest(c.tickOut, b)
	}
}

// sendLatest delivers b, dropping the oldest queued frame if the channel
// is full.
func sendLatest(ch chan []byte, b []byte) {
	select {
	case ch <- b:
		return
	default:
	}
	select {
	case <-ch:
	default:
	}
	select {
	case ch <- b:
	default:
	}
}
