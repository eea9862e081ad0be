package log

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/klauspost/compress/zstd"

	"deminer.ai/internal/sim/world"
)

// DefaultSegmentTicks is the tick span of one series file.
const DefaultSegmentTicks = 4096

// SeriesLogger writes the metric series of one run as zstd-compressed JSONL
// under <runDir>/series. Files are split by tick range and named after the
// first tick they may hold, so name order is tick order. It implements
// world.SeriesSink.
type SeriesLogger struct {
	dir          string
	segmentTicks uint64

	mu       sync.Mutex
	segStart uint64
	open     bool
	f        *os.File
	enc      *zstd.Encoder
	w        *bufio.Writer
	written  uint64
}

func NewSeriesLogger(runDir string) *SeriesLogger {
	return NewSegmentedSeriesLogger(runDir, DefaultSegmentTicks)
}

// NewSegmentedSeriesLogger starts a new file every segmentTicks ticks
// (<= 0 means DefaultSegmentTicks).
func NewSegmentedSeriesLogger(runDir string, segmentTicks int) *SeriesLogger {
	if segmentTicks <= 0 {
		segmentTicks = DefaultSegmentTicks
	}
	return &SeriesLogger{
		dir:          filepath.Join(runDir, "series"),
		segmentTicks: uint64(segmentTicks),
	}
}

func (l *SeriesLogger) WriteSeries(e world.SeriesEntry) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	start := e.Tick - e.Tick%l.segmentTicks
	if !l.open || start != l.segStart {
		if err := l.rotateLocked(start); err != nil {
			return err
		}
	}

	b, err := json.Marshal(e)
	if err != nil {
		return err
	}
	if _, err := l.w.Write(b); err != nil {
		return err
	}
	if err := l.w.WriteByte('\n'); err != nil {
		return err
	}
	l.written++
	return nil
}

// Written is the number of entries accepted so far.
func (l *SeriesLogger) Written() uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.written
}

func (l *SeriesLogger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.closeLocked()
}

func (l *SeriesLogger) rotateLocked(start uint64) error {
	if err := l.closeLocked(); err != nil {
		return err
	}
	if err := os.MkdirAll(l.dir, 0o755); err != nil {
		return err
	}
	path := filepath.Join(l.dir, segmentName(start))
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}
	enc, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedFastest))
	if err != nil {
		_ = f.Close()
		return err
	}
	l.f = f
	l.enc = enc
	l.w = bufio.NewWriterSize(enc, 64*1024)
	l.segStart = start
	l.open = true
	return nil
}

func (l *SeriesLogger) closeLocked() error {
	var firstErr error
	if l.w != nil {
		if err := l.w.Flush(); err != nil {
			firstErr = err
		}
	}
	if l.enc != nil {
		if err := l.enc.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		l.enc = nil
	}
	if l.f != nil {
		if err := l.f.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		l.f = nil
	}
	l.w = nil
	l.open = false
	return firstErr
}

func segmentName(start uint64) string {
	return fmt.Sprintf("series-%012d.jsonl.zst", start)
}
