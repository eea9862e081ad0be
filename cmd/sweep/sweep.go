package main

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"sync"

	"deminer.ai/internal/persistence/indexdb"
	persistlog "deminer.ai/internal/persistence/log"
	"deminer.ai/internal/sim/tuning"
	"deminer.ai/internal/sim/world"
)

type sweepConfig struct {
	Tune     tuning.Tuning
	Runs     int
	Workers  int
	MaxTicks int

	// SeriesDir, when set, receives one compressed series per run.
	SeriesDir string
	Index     *indexdb.SQLiteIndex
}

type runResult struct {
	Summary world.RunSummary
	Err     error
}

type sweepReport struct {
	Runs      int     `json:"runs"`
	Failed    int     `json:"failed"`
	Finished  int     `json:"finished"`
	MeanTicks float64 `json:"mean_ticks"`
	P50Ticks  uint64  `json:"p50_ticks"`
	P90Ticks  uint64  `json:"p90_ticks"`
	MaxTicks  uint64  `json:"max_ticks"`

	MeanCleared float64 `json:"mean_cleared"`
	TotalStuck  int     `json:"total_stuck_events"`

	Results []world.RunSummary `json:"results"`
}

// runSweep plays cfg.Runs independent worlds with consecutive seeds. Each
// world is stepped by a single worker goroutine.
func runSweep(ctx context.Context, cfg sweepConfig) (sweepReport, error) {
	if cfg.Runs <= 0 {
		return sweepReport{}, fmt.Errorf("runs must be positive")
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.MaxTicks <= 0 {
		cfg.MaxTicks = 10000
	}

	results := make([]runResult, cfg.Runs)
	jobs := make(chan int, cfg.Runs)
	var wg sync.WaitGroup
	for i := 0; i < cfg.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range jobs {
				if ctx.Err() != nil {
					results[j] = runResult{Err: ctx.Err()}
					continue
				}
				sum, err := runOne(ctx, cfg, cfg.Tune.Seed+int64(j))
				results[j] = runResult{Summary: sum, Err: err}
			}
		}()
	}
	for i := 0; i < cfg.Runs; i++ {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	return summarize(results), ctx.Err()
}

func runOne(ctx context.Context, cfg sweepConfig, seed int64) (world.RunSummary, error) {
	tune := cfg.Tune
	tune.Seed = seed
	w, err := world.New(tune.WorldConfig())
	if err != nil {
		return world.RunSummary{}, fmt.Errorf("seed %d: %w", seed, err)
	}

	var sinks []world.SeriesSink
	var sl *persistlog.SeriesLogger
	if cfg.SeriesDir != "" {
		sl = persistlog.NewSeriesLogger(filepath.Join(cfg.SeriesDir, w.RunID()))
		sinks = append(sinks, sl)
	}
	if cfg.Index != nil {
		sinks = append(sinks, cfg.Index.SeriesSink(w.RunID()))
	}
	if len(sinks) > 0 {
		w.SetSeriesSink(teeSink(sinks))
	}

	for t := 0; t < cfg.MaxTicks && !w.IsFinished(); t++ {
		if t%256 == 0 && ctx.Err() != nil {
			break
		}
		w.StepOnce()
	}
	if sl != nil {
		if err := sl.Close(); err != nil {
			return w.Summary(), fmt.Errorf("seed %d: close series: %w", seed, err)
		}
	}
	sum := w.Summary()
	cfg.Index.RecordRun(sum)
	return sum, nil
}

type teeSink []world.SeriesSink

func (t teeSink) WriteSeries(e world.SeriesEntry) error {
	var errs []error
	for _, s := range t {
		if err := s.WriteSeries(e); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func summarize(results []runResult) sweepReport {
	var rep sweepReport
	var ticks []uint64
	var sumTicks, sumCleared float64
	for _, r := range results {
		rep.Runs++
		if r.Err != nil {
			rep.Failed++
			continue
		}
		s := r.Summary
		rep.Results = append(rep.Results, s)
		if s.Finished {
			rep.Finished++
		}
		ticks = append(ticks, s.Ticks)
		sumTicks += float64(s.Ticks)
		if s.Mines > 0 {
			sumCleared += float64(s.Counters.MinesDestroyed) / float64(s.Mines)
		} else {
			sumCleared++
		}
		rep.TotalStuck += s.Counters.StuckEvents
	}
	if len(ticks) == 0 {
		return rep
	}
	sort.Slice(ticks, func(i, j int) bool { return ticks[i] < ticks[j] })
	n := float64(len(ticks))
	rep.MeanTicks = sumTicks / n
	rep.MeanCleared = sumCleared / n
	rep.P50Ticks = percentile(ticks, 0.5)
	rep.P90Ticks = percentile(ticks, 0.9)
	rep.MaxTicks = ticks[len(ticks)-1]
	return rep
}

// percentile uses nearest-rank on sorted input.
func percentile(sorted []uint64, p float64) uint64 {
	if len(sorted) == 0 {
		return 0
	}
	idx := int(p*float64(len(sorted))+0.999999) - 1
	if idx < 0 {
		idx = 0
	}
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}
