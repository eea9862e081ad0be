package world

import (
	"fmt"

	"deminer.ai/internal/sim/world/logic/mathx"
)

// Obstacle is an impassable disc.
type Obstacle struct {
	X float64
	Y float64
	R float64
}

func (o Obstacle) Contains(x, y float64) bool { return mathx.Dist(o.X, o.Y, x, y) <= o.R }

// Quicksand halves the speed of any robot standing in it.
type Quicksand struct {
	X float64
	Y float64
	R float64
}

func (q Quicksand) Contains(x, y float64) bool { return mathx.Dist(q.X, q.Y, x, y) <= q.R }

type Mine struct {
	ID string
	X  float64
	Y  float64
}

type MarkerPurpose uint8

const (
	MarkerDanger MarkerPurpose = iota + 1
	MarkerIndication
)

func (p MarkerPurpose) String() string {
	switch p {
	case MarkerDanger:
		return "DANGER"
	case MarkerIndication:
		return "INDICATION"
	default:
		return fmt.Sprintf("MarkerPurpose(%d)", uint8(p))
	}
}

func (p MarkerPurpose) MarshalText() ([]byte, error) { return []byte(p.String()), nil }

func (p *MarkerPurpose) UnmarshalText(b []byte) error {
	switch string(b) {
	case "DANGER":
		*p = MarkerDanger
	case "INDICATION":
		*p = MarkerIndication
	default:
		return fmt.Errorf("unknown marker purpose %q", string(b))
	}
	return nil
}

// Marker is a stigmergic mark dropped by a robot. Only Indication markers
// carry a direction.
type Marker struct {
	ID      string
	X       float64
	Y       float64
	Purpose MarkerPurpose

	direction    float64
	hasDirection bool
}

// NewMarker builds a marker. An Indication marker requires a direction;
// a direction passed with a Danger marker is dropped.
func NewMarker(x, y float64, purpose MarkerPurpose, direction *float64) (*Marker, error) {
	m := &Marker{X: x, Y: y, Purpose: purpose}
	switch purpose {
	case MarkerIndication:
		if direction == nil {
			return nil, fmt.Errorf("indication marker at (%.2f,%.2f) without direction: %w", x, y, ErrInvalidState)
		}
		m.direction = *direction
		m.hasDirection = true
	case MarkerDanger:
	default:
		return nil, fmt.Errorf("marker purpose %s: %w", purpose, ErrInvalidState)
	}
	return m, nil
}

func NewDangerMarker(x, y float64) *Marker {
	return &Marker{X: x, Y: y, Purpose: MarkerDanger}
}

func NewIndicationMarker(x, y, direction float64) *Marker {
	return &Marker{X: x, Y: y, Purpose: MarkerIndication, direction: direction, hasDirection: true}
}

// Direction returns the indicated heading; ok is false for Danger markers.
func (m *Marker) Direction() (float64, bool) {
	return m.direction, m.hasDirection
}
