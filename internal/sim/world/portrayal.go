package world

import (
	"sort"

	"deminer.ai/internal/observerproto"
	"deminer.ai/internal/sim/world/logic/mathx"
)

// EntityKind is the closed set of renderable entities.
type EntityKind string

const (
	KindObstacle         EntityKind = "obstacle"
	KindQuicksand        EntityKind = "quicksand"
	KindMine             EntityKind = "mine"
	KindDangerMarker     EntityKind = "danger_marker"
	KindIndicationMarker EntityKind = "indication_marker"
	KindRobot            EntityKind = "robot"
)

// Portrayal is the drawing metadata of a kind. R is used when the entity
// has no radius of its own.
type Portrayal struct {
	Shape  string
	Color  string
	Layer  int
	Filled bool
	R      float64
	S      float64
}

var portrayals = map[EntityKind]Portrayal{
	KindObstacle:         {Shape: "circle", Color: "black", Layer: 1, Filled: true},
	KindQuicksand:        {Shape: "circle", Color: "olive", Layer: 1, Filled: true},
	KindMine:             {Shape: "circle", Color: "black", Layer: 2, Filled: true, R: 2},
	KindDangerMarker:     {Shape: "circle", Color: "red", Layer: 2, Filled: true, R: 2},
	KindIndicationMarker: {Shape: "circle", Color: "green", Layer: 2, Filled: true, R: 2},
	KindRobot:            {Shape: "arrowHead", Color: "red", Layer: 3, Filled: true, S: 1},
}

func PortrayalOf(k EntityKind) (Portrayal, bool) {
	p, ok := portrayals[k]
	return p, ok
}

func markerKind(p MarkerPurpose) EntityKind {
	if p == MarkerIndication {
		return KindIndicationMarker
	}
	return KindDangerMarker
}

type drawer struct {
	arena Arena
	out   []observerproto.Drawable
}

func (d *drawer) add(kind EntityKind, id string, x, y, r float64, angle *float64) {
	p := portrayals[kind]
	if r == 0 {
		r = p.R
	}
	nx, ny := x, y
	if d.arena.Width > 0 {
		nx = mathx.Clamp(x/d.arena.Width, 0, 1)
	}
	if d.arena.Height > 0 {
		ny = mathx.Clamp(y/d.arena.Height, 0, 1)
	}
	d.out = append(d.out, observerproto.Drawable{
		Kind:   string(kind),
		ID:     id,
		Shape:  p.Shape,
		Color:  p.Color,
		Layer:  p.Layer,
		Filled: p.Filled,
		R:      r,
		S:      p.S,
		X:      nx,
		Y:      ny,
		Angle:  angle,
	})
}

// StaticDrawables returns obstacles and quicksand zones.
func (s Snapshot) StaticDrawables() []observerproto.Drawable {
	d := drawer{arena: s.Arena}
	for _, o := range s.Obstacles {
		d.add(KindObstacle, "", o.X, o.Y, o.R, nil)
	}
	for _, q := range s.Quicksands {
		d.add(KindQuicksand, "", q.X, q.Y, q.R, nil)
	}
	return d.out
}

// Drawables returns every entity of the snapshot ordered by layer, then by
// kind order within a layer.
func (s Snapshot) Drawables() []observerproto.Drawable {
	d := drawer{arena: s.Arena, out: s.StaticDrawables()}
	for _, m := range s.Mines {
		d.add(KindMine, m.ID, m.X, m.Y, 0, nil)
	}
	for _, m := range s.Markers {
		d.add(markerKind(m.Purpose), m.ID, m.X, m.Y, 0, nil)
	}
	for _, r := range s.Robots {
		a := r.Angle
		d.add(KindRobot, r.ID, r.X, r.Y, 0, &a)
	}
	sort.SliceStable(d.out, func(i, j int) bool { return d.out[i].Layer < d.out[j].Layer })
	return d.out
}

func (c Counters) proto() observerproto.Counters {
	return observerproto.Counters{
		Mines:             c.Mines,
		DangerMarkers:     c.DangerMarkers,
		IndicationMarkers: c.IndicationMarkers,
		MinesDestroyed:    c.MinesDestroyed,
		QuicksandSteps:    c.QuicksandSteps,
		StuckEvents:       c.StuckEvents,
	}
}

// TickMsg renders the snapshot as an observer frame.
func (s Snapshot) TickMsg() observerproto.TickMsg {
	return observerproto.TickMsg{
		Type:            observerproto.TypeTick,
		ProtocolVersion: observerproto.Version,
		Tick:            s.Tick,
		Finished:        s.Finished,
		Counters:        s.Counters.proto(),
		Drawables:       s.Drawables(),
	}
}
