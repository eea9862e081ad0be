package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"strings"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"

	"deminer.ai/internal/persistence/indexdb"
	"deminer.ai/internal/sim/tuning"
)

func main() {
	var (
		configDir  = flag.String("configs", "./configs", "config directory")
		tuningPath = flag.String("tuning", "", "path to tuning.yaml (default: <configs>/tuning.yaml)")
		dataDir    = flag.String("data", "./data", "runtime data directory")
		name       = flag.String("name", "", "sweep name (default: timestamp)")
		seed       = flag.Int64("seed", 1, "first seed; run i uses seed+i")
		runs       = flag.Int("n", 100, "number of runs")
		workers    = flag.Int("workers", runtime.NumCPU(), "parallel worlds")
		maxTicks   = flag.Int("max_ticks", 10000, "tick cap per run")
		series     = flag.Bool("series", false, "write a compressed metric series per run")
		disableDB  = flag.Bool("disable_db", false, "disable the sqlite run index")
		out        = flag.String("out", "", "write the JSON report here")

		robots = flag.Int("robots", -1, "robot count override")
		mines  = flag.Int("mines", -1, "mine count override")
		speed  = flag.Float64("speed", 0, "robot speed override")
	)
	flag.Parse()

	logger := log.New(os.Stdout, "[sweep] ", log.LstdFlags|log.Lmicroseconds)

	tp := strings.TrimSpace(*tuningPath)
	if tp == "" {
		tp = filepath.Join(*configDir, "tuning.yaml")
	}
	tune, err := tuning.Load(tp)
	if err != nil {
		if !os.IsNotExist(err) {
			logger.Fatalf("load tuning: %v", err)
		}
		logger.Printf("tuning not found (%s); using defaults", tp)
		tune = tuning.Defaults()
	}
	tune.Seed = *seed
	if *robots >= 0 {
		tune.Population.Robots = *robots
	}
	if *mines >= 0 {
		tune.Population.Mines = *mines
	}
	if *speed > 0 {
		tune.Population.Speed = *speed
	}
	if err := tune.Validate(); err != nil {
		logger.Fatalf("tuning: %v", err)
	}

	sweepName := strings.TrimSpace(*name)
	if sweepName == "" {
		sweepName = time.Now().UTC().Format("20060102-150405")
	}
	sweepDir := filepath.Join(*dataDir, "sweeps", sweepName)

	cfg := sweepConfig{
		Tune:     tune,
		Runs:     *runs,
		Workers:  *workers,
		MaxTicks: *maxTicks,
	}
	if *series {
		cfg.SeriesDir = filepath.Join(sweepDir, "runs")
	}
	if !*disableDB {
		idx, err := indexdb.OpenSQLite(filepath.Join(sweepDir, "runs.sqlite"))
		if err != nil {
			logger.Fatalf("open index: %v", err)
		}
		defer idx.Close()
		if _, err := idx.UpsertTuning(tune); err != nil {
			logger.Printf("index: upsert tuning: %v", err)
		}
		cfg.Index = idx
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	logger.Printf("sweep=%s runs=%s workers=%d robots=%d mines=%d speed=%g",
		sweepName, humanize.Comma(int64(*runs)), cfg.Workers,
		tune.Population.Robots, tune.Population.Mines, tune.Population.Speed)

	started := time.Now()
	rep, err := runSweep(ctx, cfg)
	if err != nil {
		logger.Printf("sweep interrupted: %v", err)
	}
	elapsed := time.Since(started)

	var totalTicks uint64
	for _, r := range rep.Results {
		totalTicks += r.Ticks
	}
	logger.Printf("done in %s: %s ticks (%s ticks/s)", elapsed.Round(time.Millisecond),
		humanize.Comma(int64(totalTicks)),
		humanize.Comma(int64(float64(totalTicks)/elapsed.Seconds())))
	logger.Printf("finished %d/%d (failed %d) mean_ticks=%s p50=%s p90=%s max=%s cleared=%.1f%% stuck=%s",
		rep.Finished, rep.Runs, rep.Failed,
		humanize.CommafWithDigits(rep.MeanTicks, 1),
		humanize.Comma(int64(rep.P50Ticks)),
		humanize.Comma(int64(rep.P90Ticks)),
		humanize.Comma(int64(rep.MaxTicks)),
		rep.MeanCleared*100,
		humanize.Comma(int64(rep.TotalStuck)),
	)

	if *out != "" {
		b, err := json.MarshalIndent(rep, "", "  ")
		if err != nil {
			logger.Fatalf("marshal report: %v", err)
		}
		if err := os.WriteFile(*out, b, 0o644); err != nil {
			logger.Fatalf("write report: %v", err)
		}
		logger.Printf("report written to %s (%s)", *out, humanize.Bytes(uint64(len(b))))
	}
}
