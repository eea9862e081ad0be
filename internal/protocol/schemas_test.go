package protocol_test

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"deminer.ai/internal/sim/world"
)

func TestSchemas_ValidateLiveOutput(t *testing.T) {
	compile := func(name string) *jsonschema.Schema {
		t.Helper()
		p := filepath.Join("..", "..", "schemas", name)
		s, err := jsonschema.Compile(p)
		if err != nil {
			t.Fatalf("compile %s: %v", name, err)
		}
		return s
	}

	// Round-trip through encoding/json so the validator sees wire values.
	validate := func(s *jsonschema.Schema, name string, v any) {
		t.Helper()
		b, err := json.Marshal(v)
		if err != nil {
			t.Fatalf("%s: marshal: %v", name, err)
		}
		var doc any
		if err := json.Unmarshal(b, &doc); err != nil {
			t.Fatalf("%s: unmarshal: %v", name, err)
		}
		if err := s.Validate(doc); err != nil {
			t.Fatalf("%s: validate: %v\n%s", name, err, b)
		}
	}

	snapSchema := compile("snapshot.schema.json")
	tickSchema := compile("tick.schema.json")
	bootSchema := compile("bootstrap.schema.json")

	w, err := world.New(world.WorldConfig{
		Seed:       11,
		Robots:     7,
		Obstacles:  5,
		Quicksands: 5,
		Mines:      15,
	})
	if err != nil {
		t.Fatalf("world: %v", err)
	}
	validate(bootSchema, "bootstrap", w.Bootstrap())

	for i := 0; i < 300 && !w.IsFinished(); i++ {
		w.StepOnce()
		if i%25 != 0 {
			continue
		}
		snap := w.Snapshot()
		validate(snapSchema, "snapshot", snap)
		validate(tickSchema, "tick", snap.TickMsg())
	}
	snap := w.Snapshot()
	validate(snapSchema, "snapshot", snap)
	validate(tickSchema, "tick", snap.TickMsg())
}

func TestSchemas_RejectIndicationWithoutDirection(t *testing.T) {
	s, err := jsonschema.Compile(filepath.Join("..", "..", "schemas", "snapshot.schema.json"))
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	var doc any
	_ = json.Unmarshal([]byte(`{
	  "world_id":"w","run_id":"r","tick":0,"finished":false,
	  "arena":{"width":600,"height":600},
	  "robots":[],"mines":[],"obstacles":[],"quicksands":[],
	  "markers":[{"id":"K000001","x":1,"y":1,"purpose":"INDICATION"}],
	  "counters":{"mines":0,"danger_markers":0,"indication_markers":1,"mines_destroyed":1,"quicksand_steps":0,"stuck_events":0}
	}`), &doc)
	if err := s.Validate(doc); err == nil {
		t.Fatalf("expected indication marker without direction to be rejected")
	}
}
