package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"deminer.ai/internal/persistence/indexdb"
	"deminer.ai/internal/protocol"
	"deminer.ai/internal/sim/world"
	"deminer.ai/internal/transport/observer"
)

func newMux(w *world.World, obsSrv *observer.Server, idx *indexdb.SQLiteIndex) *http.ServeMux {
	worldID := w.ID()

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(rw http.ResponseWriter, r *http.Request) {
		rw.WriteHeader(200)
		_, _ = rw.Write([]byte("ok"))
	})
	mux.HandleFunc("/metrics", func(rw http.ResponseWriter, r *http.Request) {
		rw.Header().Set("Content-Type", "text/plain; version=0.0.4")
		writeMetrics(rw, worldID, w, obsSrv, idx)
	})

	mux.HandleFunc("/v1/snapshot", obsSrv.SnapshotHandler())
	mux.HandleFunc("/v1/observer/bootstrap", obsSrv.BootstrapHandler())
	mux.HandleFunc("/v1/observer/ws", obsSrv.WSHandler())

	if envBool("DM_ENABLE_ADMIN_HTTP", defaultEnableAdminHTTP()) {
		mux.HandleFunc("/admin/v1/runs", func(rw http.ResponseWriter, r *http.Request) {
			if !isLoopbackRemote(r.RemoteAddr) {
				http.Error(rw, "forbidden", http.StatusForbidden)
				return
			}
			if idx == nil {
				writeError(rw, http.StatusServiceUnavailable, protocol.ErrInternal, "run index disabled")
				return
			}
			limit := 20
			if v := r.URL.Query().Get("limit"); v != "" {
				n, err := strconv.Atoi(v)
				if err != nil || n < 0 {
					writeError(rw, http.StatusBadRequest, protocol.ErrBadRequest, "bad limit")
					return
				}
				limit = n
			}
			ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
			defer cancel()
			runs, err := idx.Runs(ctx, limit)
			if err != nil {
				writeError(rw, http.StatusInternalServerError, protocol.CodeFor(err), err.Error())
				return
			}
			cur := currentSummary(w)
			agg, err := idx.AggregateRuns(ctx, cur.Robots, cur.Mines)
			if err != nil {
				writeError(rw, http.StatusInternalServerError, protocol.CodeFor(err), err.Error())
				return
			}
			rw.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(rw).Encode(struct {
				Current   world.RunSummary   `json:"current"`
				Aggregate indexdb.Aggregate  `json:"aggregate"`
				Runs      []world.RunSummary `json:"runs"`
			}{Current: cur, Aggregate: agg, Runs: runs})
		})
		mux.HandleFunc("/admin/v1/runs/series", func(rw http.ResponseWriter, r *http.Request) {
			if !isLoopbackRemote(r.RemoteAddr) {
				http.Error(rw, "forbidden", http.StatusForbidden)
				return
			}
			if idx == nil {
				writeError(rw, http.StatusServiceUnavailable, protocol.ErrInternal, "run index disabled")
				return
			}
			runID := strings.TrimSpace(r.URL.Query().Get("run_id"))
			if runID == "" {
				runID = w.RunID()
			}
			ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
			defer cancel()
			series, err := idx.RunSeries(ctx, runID)
			if err != nil {
				writeError(rw, http.StatusInternalServerError, protocol.CodeFor(err), err.Error())
				return
			}
			rw.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(rw).Encode(struct {
				RunID  string              `json:"run_id"`
				Series []world.SeriesEntry `json:"series"`
			}{RunID: runID, Series: series})
		})
	}
	return mux
}

// currentSummary reads the published snapshot rather than the live world so
// it is safe off the loop goroutine.
func currentSummary(w *world.World) world.RunSummary {
	cfg := w.Config()
	snap := w.LatestSnapshot()
	return world.RunSummary{
		RunID:      w.RunID(),
		WorldID:    cfg.ID,
		Seed:       cfg.Seed,
		Robots:     cfg.Robots,
		Obstacles:  cfg.Obstacles,
		Quicksands: cfg.Quicksands,
		Mines:      cfg.Mines,
		Speed:      cfg.Speed,
		Ticks:      snap.Tick,
		Finished:   snap.Finished,
		Counters:   snap.Counters,
	}
}

func writeMetrics(rw http.ResponseWriter, worldID string, w *world.World, obsSrv *observer.Server, idx *indexdb.SQLiteIndex) {
	snap := w.LatestSnapshot()
	c := snap.Counters

	// Minimal Prometheus exposition format.
	fmt.Fprintf(rw, "# HELP deminer_world_tick Current world tick.\n")
	fmt.Fprintf(rw, "# TYPE deminer_world_tick gauge\n")
	fmt.Fprintf(rw, "deminer_world_tick{world=%q} %d\n", worldID, snap.Tick)

	fmt.Fprintf(rw, "# HELP deminer_world_finished 1 once every mine is cleared.\n")
	fmt.Fprintf(rw, "# TYPE deminer_world_finished gauge\n")
	fmt.Fprintf(rw, "deminer_world_finished{world=%q} %d\n", worldID, boolInt(snap.Finished))

	fmt.Fprintf(rw, "# HELP deminer_world_robots Robots in the world.\n")
	fmt.Fprintf(rw, "# TYPE deminer_world_robots gauge\n")
	fmt.Fprintf(rw, "deminer_world_robots{world=%q} %d\n", worldID, len(snap.Robots))

	fmt.Fprintf(rw, "# HELP deminer_world_mines Mines left.\n")
	fmt.Fprintf(rw, "# TYPE deminer_world_mines gauge\n")
	fmt.Fprintf(rw, "deminer_world_mines{world=%q} %d\n", worldID, c.Mines)

	fmt.Fprintf(rw, "# HELP deminer_world_markers Markers currently in the arena.\n")
	fmt.Fprintf(rw, "# TYPE deminer_world_markers gauge\n")
	fmt.Fprintf(rw, "deminer_world_markers{world=%q,purpose=%q} %d\n", worldID, "danger", c.DangerMarkers)
	fmt.Fprintf(rw, "deminer_world_markers{world=%q,purpose=%q} %d\n", worldID, "indication", c.IndicationMarkers)

	fmt.Fprintf(rw, "# HELP deminer_mines_destroyed_total Mines destroyed by all robots.\n")
	fmt.Fprintf(rw, "# TYPE deminer_mines_destroyed_total counter\n")
	fmt.Fprintf(rw, "deminer_mines_destroyed_total{world=%q} %d\n", worldID, c.MinesDestroyed)

	fmt.Fprintf(rw, "# HELP deminer_quicksand_steps_total Quicksand enter and exit transitions.\n")
	fmt.Fprintf(rw, "# TYPE deminer_quicksand_steps_total counter\n")
	fmt.Fprintf(rw, "deminer_quicksand_steps_total{world=%q} %d\n", worldID, c.QuicksandSteps)

	fmt.Fprintf(rw, "# HELP deminer_stuck_events_total Robot ticks without a legal heading.\n")
	fmt.Fprintf(rw, "# TYPE deminer_stuck_events_total counter\n")
	fmt.Fprintf(rw, "deminer_stuck_events_total{world=%q} %d\n", worldID, c.StuckEvents)

	fmt.Fprintf(rw, "# HELP deminer_series_write_errors_total Ticks whose series entry failed to write.\n")
	fmt.Fprintf(rw, "# TYPE deminer_series_write_errors_total counter\n")
	fmt.Fprintf(rw, "deminer_series_write_errors_total{world=%q} %d\n", worldID, w.SeriesErrors())

	fmt.Fprintf(rw, "# HELP deminer_observer_sessions Connected observer sessions.\n")
	fmt.Fprintf(rw, "# TYPE deminer_observer_sessions gauge\n")
	fmt.Fprintf(rw, "deminer_observer_sessions{world=%q} %d\n", worldID, obsSrv.Sessions())

	if idx == nil {
		return
	}
	st := idx.Stats()
	fmt.Fprintf(rw, "# HELP deminer_index_queue_depth Run index queue depth.\n")
	fmt.Fprintf(rw, "# TYPE deminer_index_queue_depth gauge\n")
	fmt.Fprintf(rw, "deminer_index_queue_depth{world=%q} %d\n", worldID, st.QueueDepth)

	fmt.Fprintf(rw, "# HELP deminer_index_dropped_total Index writes dropped because the queue was full.\n")
	fmt.Fprintf(rw, "# TYPE deminer_index_dropped_total counter\n")
	fmt.Fprintf(rw, "deminer_index_dropped_total{world=%q,kind=%q} %d\n", worldID, "run", st.DropRunTotal)
	fmt.Fprintf(rw, "deminer_index_dropped_total{world=%q,kind=%q} %d\n", worldID, "series", st.DropSeriesTotal)
}

func writeError(rw http.ResponseWriter, status int, code, msg string) {
	rw.Header().Set("Content-Type", "application/json")
	rw.WriteHeader(status)
	_ = json.NewEncoder(rw).Encode(protocol.ErrorResponse{Code: code, Message: msg})
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func isLoopbackRemote(remoteAddr string) bool {
	host := remoteAddr
	if h, _, err := net.SplitHostPort(remoteAddr); err == nil {
		host = h
	}
	host = strings.TrimPrefix(host, "[")
	host = strings.TrimSuffix(host, "]")
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}

func defaultEnableAdminHTTP() bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv("DEPLOY_ENV"))) {
	case "staging", "production":
		return false
	default:
		return true
	}
}

func envBool(key string, def bool) bool {
	v := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	switch v {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	default:
		return def
	}
}
