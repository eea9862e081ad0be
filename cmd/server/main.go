package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"

	persistlog "deminer.ai/internal/persistence/log"
	"deminer.ai/internal/sim/tuning"
	"deminer.ai/internal/sim/world"
	"deminer.ai/internal/transport/observer"
)

func main() {
	var (
		addr       = flag.String("addr", ":8080", "http listen address")
		worldID    = flag.String("world", "", "world id (default: tuning world_id)")
		seed       = flag.Int64("seed", 0, "world seed (default: tuning seed)")
		configDir  = flag.String("configs", "./configs", "config directory")
		tuningPath = flag.String("tuning", "", "path to tuning.yaml (default: <configs>/tuning.yaml)")
		dataDir    = flag.String("data", "./data", "runtime data directory")
		disableDB  = flag.Bool("disable_db", false, "disable the sqlite run index")
		noSeries   = flag.Bool("disable_series", false, "disable the compressed per-tick series log")
		exitOnDone = flag.Bool("exit_on_finish", false, "shut down once every mine is cleared")

		robots     = flag.Int("robots", -1, "robot count override")
		obstacles  = flag.Int("obstacles", -1, "obstacle count override")
		quicksands = flag.Int("quicksands", -1, "quicksand count override")
		mines      = flag.Int("mines", -1, "mine count override")
		speed      = flag.Float64("speed", 0, "robot speed override")
	)
	flag.Parse()

	logger := log.New(os.Stdout, "[server] ", log.LstdFlags|log.Lmicroseconds)

	tp := strings.TrimSpace(*tuningPath)
	if tp == "" {
		tp = filepath.Join(*configDir, "tuning.yaml")
	}
	tune, err := tuning.Load(tp)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			logger.Fatalf("load tuning: %v", err)
		}
		logger.Printf("tuning not found (%s); using defaults", tp)
		tune = tuning.Defaults()
	}
	applyOverrides(&tune, overrides{
		WorldID:    *worldID,
		Seed:       *seed,
		Robots:     *robots,
		Obstacles:  *obstacles,
		Quicksands: *quicksands,
		Mines:      *mines,
		Speed:      *speed,
	})
	if err := tune.Validate(); err != nil {
		logger.Fatalf("tuning: %v", err)
	}

	w, err := world.New(tune.WorldConfig())
	if err != nil {
		logger.Fatalf("world: %v", err)
	}
	cfg := w.Config()
	logger.Printf("world=%s run=%s seed=%d robots=%d obstacles=%d quicksands=%d mines=%d speed=%g",
		cfg.ID, w.RunID(), cfg.Seed, cfg.Robots, cfg.Obstacles, cfg.Quicksands, cfg.Mines, cfg.Speed)

	runDir := filepath.Join(*dataDir, "worlds", cfg.ID, "runs", w.RunID())

	// Optional: read-model index (does not affect sim determinism).
	idx, err := openRuntimeIndex(*dataDir, cfg.ID, *disableDB)
	if err != nil {
		logger.Fatalf("open index: %v", err)
	}
	if idx != nil {
		defer idx.Close()
		if digest, err := idx.UpsertTuning(tune); err != nil {
			logger.Printf("index: upsert tuning: %v", err)
		} else {
			logger.Printf("index: tuning digest=%s", digest[:12])
		}
	}

	var sinks multiSeriesSink
	if !*noSeries {
		sl := persistlog.NewSeriesLogger(runDir)
		defer sl.Close()
		sinks = append(sinks, sl)
	}
	if idx != nil {
		sinks = append(sinks, idx.SeriesSink(w.RunID()))
	}
	if len(sinks) > 0 {
		w.SetSeriesSink(sinks)
	}

	ctx, cancel := signalContext()
	defer cancel()

	started := time.Now()
	runDone := make(chan struct{})
	go func() {
		defer close(runDone)
		if err := w.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Printf("world stopped: %v", err)
		}
	}()
	go func() {
		select {
		case <-ctx.Done():
			return
		case <-w.Done():
		}
		sum := w.Summary()
		logger.Printf("all mines cleared: ticks=%s wall=%s markers=%s quicksand_steps=%s stuck=%s",
			humanize.Comma(int64(sum.Ticks)),
			time.Since(started).Round(time.Millisecond),
			humanize.Comma(int64(sum.Counters.DangerMarkers+sum.Counters.IndicationMarkers)),
			humanize.Comma(int64(sum.Counters.QuicksandSteps)),
			humanize.Comma(int64(sum.Counters.StuckEvents)),
		)
		if idx != nil {
			idx.RecordRun(sum)
		}
		if *exitOnDone {
			cancel()
		}
	}()

	obsSrv := observer.NewServer(w, logger)
	srv := &http.Server{
		Addr:              *addr,
		Handler:           newMux(w, obsSrv, idx),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel2()
		_ = srv.Shutdown(ctx2)
	}()

	logger.Printf("listening on %s", *addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatalf("ListenAndServe: %v", err)
	}

	// Record unfinished runs too so the index reflects every run served.
	<-runDone
	if idx != nil && !w.IsFinished() {
		idx.RecordRun(w.Summary())
	}
}

type overrides struct {
	WorldID    string
	Seed       int64
	Robots     int
	Obstacles  int
	Quicksands int
	Mines      int
	Speed      float64
}

// applyOverrides replaces tuning values with explicitly set flags. Negative
// counts and a zero speed or seed mean "not set".
func applyOverrides(t *tuning.Tuning, o overrides) {
	if o.WorldID != "" {
		t.WorldID = o.WorldID
	}
	if o.Seed != 0 {
		t.Seed = o.Seed
	}
	if o.Robots >= 0 {
		t.Population.Robots = o.Robots
	}
	if o.Obstacles >= 0 {
		t.Population.Obstacles = o.Obstacles
	}
	if o.Quicksands >= 0 {
		t.Population.Quicksands = o.Quicksands
	}
	if o.Mines >= 0 {
		t.Population.Mines = o.Mines
	}
	if o.Speed > 0 {
		t.Population.Speed = o.Speed
	}
}

func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	ch := make(chan os.Signal, 2)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-ch
		cancel()
	}()
	return ctx, cancel
}

type multiSeriesSink []world.SeriesSink

func (m multiSeriesSink) WriteSeries(entry world.SeriesEntry) error {
	var errs []error
	for _, s := range m {
		if err := s.WriteSeries(entry); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
