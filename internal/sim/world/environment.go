package world

import (
	"deminer.ai/internal/sim/world/logic/ids"
	"deminer.ai/internal/sim/world/logic/mathx"
)

// Bounds is an inclusive rectangle.
type Bounds struct {
	XMin float64
	XMax float64
	YMin float64
	YMax float64
}

func (b Bounds) Contains(x, y float64) bool {
	return x >= b.XMin && x <= b.XMax && y >= b.YMin && y <= b.YMax
}

func (b Bounds) Width() float64  { return b.XMax - b.XMin }
func (b Bounds) Height() float64 { return b.YMax - b.YMin }

// Environment owns the static layout and the mutable mine and marker sets.
// Every mutation goes through its methods; robots only ever hold the
// pointers handed back by a query for the duration of their own step.
//
// Queries are linear scans in insertion order, which is also the tie-break
// order callers rely on ("first visible marker").
type Environment struct {
	bounds Bounds

	obstacles  []Obstacle
	quicksands []Quicksand
	mines      []*Mine
	markers    []*Marker
	robots     []*Robot

	nextMine   uint64
	nextMarker uint64

	markersPlaced   int
	markersConsumed int
}

func NewEnvironment(b Bounds) *Environment {
	return &Environment{bounds: b}
}

func (e *Environment) Bounds() Bounds { return e.bounds }

func (e *Environment) WithinBounds(x, y float64) bool { return e.bounds.Contains(x, y) }

func (e *Environment) addObstacle(o Obstacle)   { e.obstacles = append(e.obstacles, o) }
func (e *Environment) addQuicksand(q Quicksand) { e.quicksands = append(e.quicksands, q) }
func (e *Environment) addRobot(r *Robot)        { e.robots = append(e.robots, r) }

func (e *Environment) addMine(x, y float64) *Mine {
	e.nextMine++
	m := &Mine{ID: ids.MineID(e.nextMine), X: x, Y: y}
	e.mines = append(e.mines, m)
	return m
}

// ObstaclesContaining returns the obstacles whose disc contains (x, y).
func (e *Environment) ObstaclesContaining(x, y float64) []Obstacle {
	var out []Obstacle
	for _, o := range e.obstacles {
		if o.Contains(x, y) {
			out = append(out, o)
		}
	}
	return out
}

func (e *Environment) blockedByObstacle(x, y float64) bool {
	for _, o := range e.obstacles {
		if o.Contains(x, y) {
			return true
		}
	}
	return false
}

// QuicksandsContaining returns the quicksand zones whose disc contains (x, y).
func (e *Environment) QuicksandsContaining(x, y float64) []Quicksand {
	var out []Quicksand
	for _, q := range e.quicksands {
		if q.Contains(x, y) {
			out = append(out, q)
		}
	}
	return out
}

func (e *Environment) inQuicksand(x, y float64) bool {
	for _, q := range e.quicksands {
		if q.Contains(x, y) {
			return true
		}
	}
	return false
}

// MinesWithin returns mines strictly closer than r to (x, y).
func (e *Environment) MinesWithin(x, y, r float64) []*Mine {
	var out []*Mine
	for _, m := range e.mines {
		if mathx.Dist(m.X, m.Y, x, y) < r {
			out = append(out, m)
		}
	}
	return out
}

// MarkersWithin returns markers of the given purpose strictly closer than r
// to (x, y).
func (e *Environment) MarkersWithin(x, y, r float64, purpose MarkerPurpose) []*Marker {
	var out []*Marker
	for _, m := range e.markers {
		if m.Purpose != purpose {
			continue
		}
		if mathx.Dist(m.X, m.Y, x, y) < r {
			out = append(out, m)
		}
	}
	return out
}

// RobotsWithin returns robots other than self strictly closer than r.
func (e *Environment) RobotsWithin(x, y, r float64, self *Robot) []*Robot {
	var out []*Robot
	for _, o := range e.robots {
		if o == self {
			continue
		}
		if mathx.Dist(o.X, o.Y, x, y) < r {
			out = append(out, o)
		}
	}
	return out
}

// crowded reports whether some robot other than self would be within its
// own speed of (x, y).
func (e *Environment) crowded(x, y float64, self *Robot) bool {
	for _, o := range e.robots {
		if o == self {
			continue
		}
		if mathx.Dist(o.X, o.Y, x, y) < o.Speed() {
			return true
		}
	}
	return false
}

// RemoveMine deletes m, preserving the order of the remaining mines.
func (e *Environment) RemoveMine(m *Mine) bool {
	for i, cur := range e.mines {
		if cur == m {
			e.mines = append(e.mines[:i], e.mines[i+1:]...)
			return true
		}
	}
	return false
}

func (e *Environment) AddMarker(m *Marker) {
	e.nextMarker++
	m.ID = ids.MarkerID(e.nextMarker)
	e.markers = append(e.markers, m)
	e.markersPlaced++
}

// RemoveMarker deletes m, preserving the order of the remaining markers.
func (e *Environment) RemoveMarker(m *Marker) bool {
	for i, cur := range e.markers {
		if cur == m {
			e.markers = append(e.markers[:i], e.markers[i+1:]...)
			e.markersConsumed++
			return true
		}
	}
	return false
}

func (e *Environment) MineCount() int { return len(e.mines) }

func (e *Environment) MarkerCounts() (danger, indication int) {
	for _, m := range e.markers {
		switch m.Purpose {
		case MarkerDanger:
			danger++
		case MarkerIndication:
			indication++
		}
	}
	return danger, indication
}

func (e *Environment) Obstacles() []Obstacle   { return append([]Obstacle(nil), e.obstacles...) }
func (e *Environment) Quicksands() []Quicksand { return append([]Quicksand(nil), e.quicksands...) }

// Mines returns a copy of the mine set in scan order.
func (e *Environment) Mines() []Mine {
	out := make([]Mine, 0, len(e.mines))
	for _, m := range e.mines {
		out = append(out, *m)
	}
	return out
}

// Markers returns a copy of the marker set in scan order.
func (e *Environment) Markers() []Marker {
	out := make([]Marker, 0, len(e.markers))
	for _, m := range e.markers {
		out = append(out, *m)
	}
	return out
}
