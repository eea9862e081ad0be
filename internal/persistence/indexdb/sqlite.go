package indexdb

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	_ "modernc.org/sqlite"

	"deminer.ai/internal/sim/tuning"
	"deminer.ai/internal/sim/world"
)

// SQLiteIndex is a secondary, queryable index of runs and their metric
// series. Writes are queued and applied by a single goroutine; the JSONL
// series files remain the source of truth.
type SQLiteIndex struct {
	db *sql.DB

	ch   chan req
	wg   sync.WaitGroup
	once sync.Once

	closed atomic.Bool

	dropRun    atomic.Uint64
	dropSeries atomic.Uint64
}

type reqKind int

const (
	reqRun reqKind = iota + 1
	reqSeries
)

type req struct {
	kind reqKind

	run    runRow
	runID  string
	series world.SeriesEntry
}

type runRow struct {
	Summary    world.RunSummary
	RecordedAt string
}

// Stats reports queue pressure.
type Stats struct {
	QueueDepth      int
	QueueCapacity   int
	DropRunTotal    uint64
	DropSeriesTotal uint64
}

func OpenSQLite(path string) (*SQLiteIndex, error) {
	if path == "" {
		return nil, fmt.Errorf("empty db path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := initPragmas(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	s := &SQLiteIndex{
		db: db,
		ch: make(chan req, 65536),
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.loop()
	}()
	return s, nil
}

func initPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA foreign_keys=ON;",
		"PRAGMA busy_timeout=5000;",
		"PRAGMA temp_store=MEMORY;",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return err
		}
	}
	return nil
}

func initSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS meta (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS tunings (
			digest TEXT PRIMARY KEY,
			json TEXT NOT NULL,
			updated_at TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS runs (
			run_id TEXT PRIMARY KEY,
			world_id TEXT NOT NULL,
			seed INTEGER NOT NULL,
			robots INTEGER NOT NULL,
			obstacles INTEGER NOT NULL,
			quicksands INTEGER NOT NULL,
			mines INTEGER NOT NULL,
			speed REAL NOT NULL,
			ticks INTEGER NOT NULL,
			finished INTEGER NOT NULL,
			mines_left INTEGER NOT NULL,
			mines_destroyed INTEGER NOT NULL,
			danger_markers INTEGER NOT NULL,
			indication_markers INTEGER NOT NULL,
			quicksand_steps INTEGER NOT NULL,
			stuck_events INTEGER NOT NULL,
			recorded_at TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_runs_params ON runs(robots, mines, speed);`,
		`CREATE TABLE IF NOT EXISTS series (
			run_id TEXT NOT NULL,
			tick INTEGER NOT NULL,
			mines INTEGER NOT NULL,
			danger_markers INTEGER NOT NULL,
			indication_markers INTEGER NOT NULL,
			mines_destroyed INTEGER NOT NULL,
			quicksand_steps INTEGER NOT NULL,
			stuck_events INTEGER NOT NULL,
			PRIMARY KEY (run_id, tick)
		);`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			return err
		}
	}
	return nil
}

func (s *SQLiteIndex) Close() error {
	var err error
	s.once.Do(func() {
		s.closed.Store(true)
		close(s.ch)
		s.wg.Wait()
		err = s.db.Close()
	})
	return err
}

func (s *SQLiteIndex) Stats() Stats {
	if s == nil {
		return Stats{}
	}
	return Stats{
		QueueDepth:      len(s.ch),
		QueueCapacity:   cap(s.ch),
		DropRunTotal:    s.dropRun.Load(),
		DropSeriesTotal: s.dropSeries.Load(),
	}
}

// RecordRun queues a run summary. A later summary for the same run id
// replaces the earlier one.
func (s *SQLiteIndex) RecordRun(sum world.RunSummary) {
	if s == nil || s.closed.Load() {
		return
	}
	r := runRow{Summary: sum, RecordedAt: time.Now().UTC().Format(time.RFC3339Nano)}
	select {
	case s.ch <- req{kind: reqRun, run: r}:
	default:
		s.dropRun.Add(1)
	}
}

// SeriesSink returns a world.SeriesSink that indexes entries under runID.
func (s *SQLiteIndex) SeriesSink(runID string) world.SeriesSink {
	return seriesSink{s: s, runID: runID}
}

type seriesSink struct {
	s     *SQLiteIndex
	runID string
}

func (k seriesSink) WriteSeries(e world.SeriesEntry) error {
	s := k.s
	if s == nil || s.closed.Load() {
		return nil
	}
	select {
	case s.ch <- req{kind: reqSeries, runID: k.runID, series: e}:
	default:
		// Drop if the indexer falls behind.
		s.dropSeries.Add(1)
	}
	return nil
}

// UpsertTuning stores the tuning actually applied, keyed by the digest of
// its canonical JSON, and returns that digest.
func (s *SQLiteIndex) UpsertTuning(tune tuning.Tuning) (string, error) {
	if s == nil {
		return "", nil
	}
	b, err := json.Marshal(tune)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(b)
	digest := hex.EncodeToString(sum[:])
	now := time.Now().UTC().Format(time.RFC3339Nano)

	tx, err := s.db.BeginTx(context.Background(), nil)
	if err != nil {
		return "", err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(`INSERT OR REPLACE INTO meta(key,value) VALUES('schema_version','1')`); err != nil {
		return "", err
	}
	if _, err := tx.Exec(`INSERT OR REPLACE INTO meta(key,value) VALUES('tuning_digest',?)`, digest); err != nil {
		return "", err
	}
	if _, err := tx.Exec(`INSERT OR REPLACE INTO tunings(digest,json,updated_at) VALUES(?,?,?)`, digest, string(b), now); err != nil {
		return "", err
	}
	if err := tx.Commit(); err != nil {
		return "", err
	}
	return digest, nil
}

func (s *SQLiteIndex) loop() {
	ctx := context.Background()

	insertRun, _ := s.db.Prepare(`INSERT OR REPLACE INTO runs(run_id,world_id,seed,robots,obstacles,quicksands,mines,speed,ticks,finished,mines_left,mines_destroyed,danger_markers,indication_markers,quicksand_steps,stuck_events,recorded_at) VALUES(?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`)
	insertSeries, _ := s.db.Prepare(`INSERT OR REPLACE INTO series(run_id,tick,mines,danger_markers,indication_markers,mines_destroyed,quicksand_steps,stuck_events) VALUES(?,?,?,?,?,?,?,?)`)
	defer func() {
		if insertRun != nil {
			_ = insertRun.Close()
		}
		if insertSeries != nil {
			_ = insertSeries.Close()
		}
	}()

	var (
		tx            *sql.Tx
		opCount       int
		lastCommit    = time.Now()
		commitEvery   = 2000
		commitMaxWait = 2 * time.Second
	)

	begin := func() {
		if tx != nil {
			return
		}
		txx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			time.Sleep(50 * time.Millisecond)
			return
		}
		tx = txx
		opCount = 0
		lastCommit = time.Now()
	}
	commit := func() {
		if tx == nil {
			return
		}
		_ = tx.Commit()
		tx = nil
		opCount = 0
		lastCommit = time.Now()
	}
	rollback := func() {
		if tx == nil {
			return
		}
		_ = tx.Rollback()
		tx = nil
		opCount = 0
		lastCommit = time.Now()
	}

	for r := range s.ch {
		begin()
		if tx == nil {
			continue
		}
		switch r.kind {
		case reqRun:
			sum := r.run.Summary
			if insertRun == nil {
				continue
			}
			if _, err := tx.Stmt(insertRun).Exec(
				sum.RunID,
				sum.WorldID,
				sum.Seed,
				sum.Robots,
				sum.Obstacles,
				sum.Quicksands,
				sum.Mines,
				sum.Speed,
				int64(sum.Ticks),
				boolInt(sum.Finished),
				sum.Counters.Mines,
				sum.Counters.MinesDestroyed,
				sum.Counters.DangerMarkers,
				sum.Counters.IndicationMarkers,
				sum.Counters.QuicksandSteps,
				sum.Counters.StuckEvents,
				r.run.RecordedAt,
			); err != nil {
				rollback()
				continue
			}
			opCount++
			// Run summaries are rare and usually the last write of a run.
			commit()
			continue

		case reqSeries:
			c := r.series.Counters
			if insertSeries == nil {
				continue
			}
			if _, err := tx.Stmt(insertSeries).Exec(
				r.runID,
				int64(r.series.Tick),
				c.Mines,
				c.DangerMarkers,
				c.IndicationMarkers,
				c.MinesDestroyed,
				c.QuicksandSteps,
				c.StuckEvents,
			); err != nil {
				rollback()
				continue
			}
			opCount++
		}
		if opCount >= commitEvery || time.Since(lastCommit) >= commitMaxWait {
			commit()
		}
	}

	commit()
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
