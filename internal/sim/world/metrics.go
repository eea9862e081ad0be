package world

// Counters are the aggregate signals tracked per tick.
type Counters struct {
	Mines             int `json:"mines"`
	DangerMarkers     int `json:"danger_markers"`
	IndicationMarkers int `json:"indication_markers"`
	MinesDestroyed    int `json:"mines_destroyed"`
	QuicksandSteps    int `json:"quicksand_steps"`
	StuckEvents       int `json:"stuck_events"`
}

// SeriesEntry is one row of the metric time series, collected at the start
// of a tick before any robot acts.
type SeriesEntry struct {
	Tick     uint64   `json:"tick"`
	Counters Counters `json:"counters"`
}

// SeriesSink receives one SeriesEntry per tick from the stepping goroutine.
type SeriesSink interface {
	WriteSeries(SeriesEntry) error
}

func (w *World) counters() Counters {
	danger, indication := w.env.MarkerCounts()
	c := Counters{
		Mines:             w.env.MineCount(),
		DangerMarkers:     danger,
		IndicationMarkers: indication,
		StuckEvents:       w.stuckEvents,
	}
	for _, r := range w.robots {
		c.MinesDestroyed += r.MinesDestroyed
		c.QuicksandSteps += r.QuicksandSteps
	}
	return c
}

func (w *World) collect() SeriesEntry {
	return SeriesEntry{Tick: w.tick.Load(), Counters: w.counters()}
}

// SeriesErrors counts ticks whose series entry the sink failed to write.
// Safe to call from any goroutine.
func (w *World) SeriesErrors() uint64 { return w.seriesErrors.Load() }

// Metrics returns the last collected series entry. Safe to call from any
// goroutine.
func (w *World) Metrics() SeriesEntry {
	if w == nil {
		return SeriesEntry{}
	}
	v := w.metrics.Load()
	if v == nil {
		return SeriesEntry{}
	}
	m, ok := v.(SeriesEntry)
	if !ok {
		return SeriesEntry{}
	}
	return m
}
