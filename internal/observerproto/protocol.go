package observerproto

// Version is the observer protocol version.
const Version = "0.1"

// Client -> Server. First message on the observer WS connection, and can be
// re-sent to update settings.
type SubscribeMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`

	// Send one frame every N ticks (default 1).
	EveryTicks int `json:"every_ticks,omitempty"`
}

// HTTP response for GET /v1/observer/bootstrap.
type BootstrapResponse struct {
	ProtocolVersion string      `json:"protocol_version"`
	WorldID         string      `json:"world_id"`
	RunID           string      `json:"run_id"`
	Tick            uint64      `json:"tick"`
	WorldParams     WorldParams `json:"world_params"`

	// Obstacles and quicksand never change during a run.
	Static []Drawable `json:"static"`
}

type WorldParams struct {
	TickRateHz int     `json:"tick_rate_hz"`
	Width      float64 `json:"width"`
	Height     float64 `json:"height"`
	Seed       int64   `json:"seed"`
	Robots     int     `json:"robots"`
	Obstacles  int     `json:"obstacles"`
	Quicksands int     `json:"quicksands"`
	Mines      int     `json:"mines"`
	Speed      float64 `json:"speed"`
}

// Server -> Client. Sent every EveryTicks ticks.
type TickMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	Tick            uint64 `json:"tick"`
	Finished        bool   `json:"finished"`

	Counters  Counters   `json:"counters"`
	Drawables []Drawable `json:"drawables"`
}

// Counters carries the five charted series plus the stuck diagnostic.
type Counters struct {
	Mines             int `json:"mines"`
	DangerMarkers     int `json:"danger_markers"`
	IndicationMarkers int `json:"indication_markers"`
	MinesDestroyed    int `json:"mines_destroyed"`
	QuicksandSteps    int `json:"quicksand_steps"`
	StuckEvents       int `json:"stuck_events"`
}

// Drawable is one renderable entity. X and Y are normalized to [0,1] by the
// arena size; R is in arena units.
type Drawable struct {
	Kind   string   `json:"kind"`
	ID     string   `json:"id,omitempty"`
	Shape  string   `json:"shape"`
	Color  string   `json:"color"`
	Layer  int      `json:"layer"`
	Filled bool     `json:"filled"`
	R      float64  `json:"r,omitempty"`
	S      float64  `json:"s,omitempty"`
	X      float64  `json:"x"`
	Y      float64  `json:"y"`
	Angle  *float64 `json:"angle,omitempty"`
}

const (
	TypeSubscribe = "SUBSCRIBE"
	TypeTick      = "TICK"
)
