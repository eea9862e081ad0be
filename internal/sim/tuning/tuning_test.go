package tuning

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"deminer.ai/internal/sim/world"
)

func TestLoad_RepoTuningMatchesDefaults(t *testing.T) {
	got, err := Load("../../../configs/tuning.yaml")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got != Defaults() {
		t.Fatalf("configs/tuning.yaml drifted from Defaults():\n got %+v\nwant %+v", got, Defaults())
	}
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tuning.yaml")
	if err := os.WriteFile(path, []byte("population:\n  robots: 0\n  mines: 3\n  speed: 15\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.Population.Robots != 0 || got.Population.Mines != 3 {
		t.Fatalf("population = %+v", got.Population)
	}
	if got.Arena.Width != 600 || got.Robot.ReverseTurn != 0.9 {
		t.Fatalf("defaults lost: %+v", got)
	}
}

func TestLoad_Rejects(t *testing.T) {
	cases := map[string]string{
		"bad yaml":      "population: [",
		"negative mine": "population:\n  mines: -1\n",
		"zero speed":    "population:\n  speed: 0\n",
		"prob above 1":  "robot:\n  heading_change_prob: 1.5\n",
		"zero arena":    "arena:\n  width: 0\n",
	}
	for name, body := range cases {
		path := filepath.Join(t.TempDir(), "tuning.yaml")
		if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
			t.Fatalf("%s: write: %v", name, err)
		}
		_, err := Load(path)
		if err == nil {
			t.Fatalf("%s: expected error", name)
		}
		if !strings.HasPrefix(err.Error(), "tuning.yaml: ") {
			t.Fatalf("%s: error not prefixed: %v", name, err)
		}
	}
}

func TestWorldConfig_BuildsWorld(t *testing.T) {
	cfg := Defaults().WorldConfig()
	w, err := world.New(cfg)
	if err != nil {
		t.Fatalf("world.New: %v", err)
	}
	got := w.Config()
	if got.Robots != 7 || got.Mines != 15 || got.SightDistance() != 30 {
		t.Fatalf("config = %+v", got)
	}
	if got.Robot.HeadingChangeProb != 0.01 {
		t.Fatalf("heading change prob = %v", got.Robot.HeadingChangeProb)
	}

	tn := Defaults()
	tn.Robot.HeadingChangeProb = 0
	if p := tn.WorldConfig().Robot.HeadingChangeProb; p >= 0 {
		t.Fatalf("zero probability must disable perturbation, got %v", p)
	}
}
