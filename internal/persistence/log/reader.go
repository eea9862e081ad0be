package log

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/klauspost/compress/zstd"

	"deminer.ai/internal/sim/world"
)

// ListSeriesFiles returns the series files of a run directory in write order.
func ListSeriesFiles(runDir string) ([]string, error) {
	dir := filepath.Join(runDir, "series")
	ents, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(ents))
	for _, e := range ents {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if strings.HasPrefix(name, "series-") && strings.HasSuffix(name, ".jsonl.zst") {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	out := make([]string, 0, len(names))
	for _, name := range names {
		out = append(out, filepath.Join(dir, name))
	}
	return out, nil
}

// ReadSeries decodes every entry written by a SeriesLogger for runDir and
// calls fn for each, in order. fn returning an error stops the scan.
func ReadSeries(runDir string, fn func(world.SeriesEntry) error) error {
	files, err := ListSeriesFiles(runDir)
	if err != nil {
		return err
	}
	for _, path := range files {
		if err := readSeriesFile(path, fn); err != nil {
			return err
		}
	}
	return nil
}

func readSeriesFile(path string, fn func(world.SeriesEntry) error) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	dec, err := zstd.NewReader(f)
	if err != nil {
		return err
	}
	defer dec.Close()

	sc := bufio.NewScanner(dec)
	sc.Buffer(make([]byte, 64*1024), 1024*1024)
	for sc.Scan() {
		var entry world.SeriesEntry
		if err := json.Unmarshal(sc.Bytes(), &entry); err != nil {
			return fmt.Errorf("%s: unmarshal: %w", filepath.Base(path), err)
		}
		if err := fn(entry); err != nil {
			return err
		}
	}
	return sc.Err()
}
