package indexdb

import (
	"context"

	"deminer.ai/internal/sim/world"
)

// Runs returns the most recently recorded runs, newest first. limit <= 0
// means no limit.
func (s *SQLiteIndex) Runs(ctx context.Context, limit int) ([]world.RunSummary, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx, `SELECT run_id,world_id,seed,robots,obstacles,quicksands,mines,speed,ticks,finished,
		mines_left,mines_destroyed,danger_markers,indication_markers,quicksand_steps,stuck_events
		FROM runs ORDER BY recorded_at DESC, run_id LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []world.RunSummary
	for rows.Next() {
		var (
			r        world.RunSummary
			ticks    int64
			finished int
		)
		if err := rows.Scan(&r.RunID, &r.WorldID, &r.Seed, &r.Robots, &r.Obstacles, &r.Quicksands, &r.Mines, &r.Speed,
			&ticks, &finished,
			&r.Counters.Mines, &r.Counters.MinesDestroyed, &r.Counters.DangerMarkers, &r.Counters.IndicationMarkers,
			&r.Counters.QuicksandSteps, &r.Counters.StuckEvents); err != nil {
			return nil, err
		}
		r.Ticks = uint64(ticks)
		r.Finished = finished != 0
		out = append(out, r)
	}
	return out, rows.Err()
}

// RunSeries returns the indexed series of one run in tick order.
func (s *SQLiteIndex) RunSeries(ctx context.Context, runID string) ([]world.SeriesEntry, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT tick,mines,danger_markers,indication_markers,mines_destroyed,quicksand_steps,stuck_events
		FROM series WHERE run_id=? ORDER BY tick`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []world.SeriesEntry
	for rows.Next() {
		var (
			e    world.SeriesEntry
			tick int64
		)
		c := &e.Counters
		if err := rows.Scan(&tick, &c.Mines, &c.DangerMarkers, &c.IndicationMarkers, &c.MinesDestroyed, &c.QuicksandSteps, &c.StuckEvents); err != nil {
			return nil, err
		}
		e.Tick = uint64(tick)
		out = append(out, e)
	}
	return out, rows.Err()
}

// Aggregate summarizes every recorded run with the given population.
type Aggregate struct {
	Runs        int     `json:"runs"`
	Finished    int     `json:"finished"`
	MeanTicks   float64 `json:"mean_ticks"`
	MaxTicks    uint64  `json:"max_ticks"`
	MeanCleared float64 `json:"mean_cleared"`
}

func (s *SQLiteIndex) AggregateRuns(ctx context.Context, robots, mines int) (Aggregate, error) {
	var (
		a       Aggregate
		mean    *float64
		maxT    *int64
		cleared *float64
	)
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*), COALESCE(SUM(finished),0), AVG(ticks), MAX(ticks),
		AVG(CASE WHEN mines > 0 THEN CAST(mines_destroyed AS REAL)/mines ELSE 1.0 END)
		FROM runs WHERE robots=? AND mines=?`, robots, mines).Scan(&a.Runs, &a.Finished, &mean, &maxT, &cleared)
	if err != nil {
		return Aggregate{}, err
	}
	if mean != nil {
		a.MeanTicks = *mean
	}
	if maxT != nil {
		a.MaxTicks = uint64(*maxT)
	}
	if cleared != nil {
		a.MeanCleared = *cleared
	}
	return a, nil
}
