package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"deminer.ai/internal/persistence/indexdb"
)

func openRuntimeIndex(dataDir, worldID string, disableDB bool) (*indexdb.SQLiteIndex, error) {
	if disableDB {
		return nil, nil
	}

	backend := strings.ToLower(strings.TrimSpace(os.Getenv("DM_INDEX_BACKEND")))
	if backend == "" {
		backend = "sqlite"
	}

	switch backend {
	case "none", "off", "disabled":
		return nil, nil
	case "sqlite":
		dbPath := filepath.Join(dataDir, "worlds", worldID, "index", "runs.sqlite")
		return indexdb.OpenSQLite(dbPath)
	default:
		return nil, fmt.Errorf("unsupported DM_INDEX_BACKEND: %s", backend)
	}
}
