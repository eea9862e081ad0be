package tuning

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"deminer.ai/internal/sim/world"
)

type Tuning struct {
	WorldID    string `yaml:"world_id"`
	TickRateHz int    `yaml:"tick_rate_hz"`
	Seed       int64  `yaml:"seed"`

	Arena      Arena      `yaml:"arena"`
	Population Population `yaml:"population"`
	Robot      Robot      `yaml:"robot"`
	Zones      Zones      `yaml:"zones"`

	PlacementRetryCap int `yaml:"placement_retry_cap"`
}

type Arena struct {
	Width       float64 `yaml:"width"`
	Height      float64 `yaml:"height"`
	SpawnWidth  float64 `yaml:"spawn_width"`
	SpawnHeight float64 `yaml:"spawn_height"`
}

type Population struct {
	Robots     int     `yaml:"robots"`
	Obstacles  int     `yaml:"obstacles"`
	Quicksands int     `yaml:"quicksands"`
	Mines      int     `yaml:"mines"`
	Speed      float64 `yaml:"speed"`
}

type Robot struct {
	SightFactor           float64 `yaml:"sight_factor"`
	HeadingChangeProb     float64 `yaml:"heading_change_prob"`
	ReverseTurn           float64 `yaml:"reverse_turn"`
	DangerIgnoreTicks     int     `yaml:"danger_ignore_ticks"`
	IndicationIgnoreTicks int     `yaml:"indication_ignore_ticks"`
	MoveRetryCap          int     `yaml:"move_retry_cap"`
}

type Zones struct {
	ObstacleRadiusMin     float64 `yaml:"obstacle_radius_min"`
	ObstacleRadiusSpread  float64 `yaml:"obstacle_radius_spread"`
	QuicksandRadiusMin    float64 `yaml:"quicksand_radius_min"`
	QuicksandRadiusSpread float64 `yaml:"quicksand_radius_spread"`
}

// Defaults mirrors the stock minefield: 7 robots, 5 obstacles, 5 quicksand
// zones and 15 mines on a 600x600 arena at speed 15.
func Defaults() Tuning {
	return Tuning{
		WorldID:    "minefield_1",
		TickRateHz: 10,
		Seed:       1,
		Arena:      Arena{Width: 600, Height: 600, SpawnWidth: 500, SpawnHeight: 500},
		Population: Population{Robots: 7, Obstacles: 5, Quicksands: 5, Mines: 15, Speed: 15},
		Robot: Robot{
			SightFactor:           2,
			HeadingChangeProb:     0.01,
			ReverseTurn:           0.9,
			DangerIgnoreTicks:     3,
			IndicationIgnoreTicks: 5,
			MoveRetryCap:          64,
		},
		Zones: Zones{
			ObstacleRadiusMin:     10,
			ObstacleRadiusSpread:  20,
			QuicksandRadiusMin:    10,
			QuicksandRadiusSpread: 20,
		},
		PlacementRetryCap: 1000,
	}
}

// Load reads a tuning file on top of Defaults; keys missing from the file
// keep their default value.
func Load(path string) (Tuning, error) {
	t := Defaults()
	raw, err := os.ReadFile(path)
	if err != nil {
		return t, err
	}
	if err := yaml.Unmarshal(raw, &t); err != nil {
		return t, fmt.Errorf("tuning.yaml: %w", err)
	}
	if err := t.Validate(); err != nil {
		return t, fmt.Errorf("tuning.yaml: %w", err)
	}
	return t, nil
}

func (t Tuning) Validate() error {
	if t.Arena.Width <= 0 || t.Arena.Height <= 0 {
		return fmt.Errorf("arena must be positive, got %vx%v", t.Arena.Width, t.Arena.Height)
	}
	if t.Arena.SpawnWidth < 0 || t.Arena.SpawnWidth > t.Arena.Width ||
		t.Arena.SpawnHeight < 0 || t.Arena.SpawnHeight > t.Arena.Height {
		return fmt.Errorf("spawn area %vx%v outside arena", t.Arena.SpawnWidth, t.Arena.SpawnHeight)
	}
	p := t.Population
	if p.Robots < 0 || p.Obstacles < 0 || p.Quicksands < 0 || p.Mines < 0 {
		return fmt.Errorf("negative population count")
	}
	if p.Speed <= 0 {
		return fmt.Errorf("speed must be positive, got %v", p.Speed)
	}
	if t.Robot.HeadingChangeProb < 0 || t.Robot.HeadingChangeProb > 1 {
		return fmt.Errorf("heading_change_prob %v outside [0,1]", t.Robot.HeadingChangeProb)
	}
	if t.TickRateHz < 0 {
		return fmt.Errorf("tick_rate_hz must not be negative")
	}
	return nil
}

// WorldConfig converts the tuning into a world config. A heading change
// probability of exactly 0 is kept as "disabled".
func (t Tuning) WorldConfig() world.WorldConfig {
	prob := t.Robot.HeadingChangeProb
	if prob == 0 {
		prob = -1
	}
	return world.WorldConfig{
		ID:          t.WorldID,
		TickRateHz:  t.TickRateHz,
		Seed:        t.Seed,
		Width:       t.Arena.Width,
		Height:      t.Arena.Height,
		SpawnWidth:  t.Arena.SpawnWidth,
		SpawnHeight: t.Arena.SpawnHeight,
		Robots:      t.Population.Robots,
		Obstacles:   t.Population.Obstacles,
		Quicksands:  t.Population.Quicksands,
		Mines:       t.Population.Mines,
		Speed:       t.Population.Speed,
		Robot: world.RobotConfig{
			SightFactor:           t.Robot.SightFactor,
			HeadingChangeProb:     prob,
			ReverseTurn:           t.Robot.ReverseTurn,
			DangerIgnoreTicks:     t.Robot.DangerIgnoreTicks,
			IndicationIgnoreTicks: t.Robot.IndicationIgnoreTicks,
			MoveRetryCap:          t.Robot.MoveRetryCap,
		},
		Zones: world.ZoneConfig{
			ObstacleRadiusMin:     t.Zones.ObstacleRadiusMin,
			ObstacleRadiusSpread:  t.Zones.ObstacleRadiusSpread,
			QuicksandRadiusMin:    t.Zones.QuicksandRadiusMin,
			QuicksandRadiusSpread: t.Zones.QuicksandRadiusSpread,
		},
		PlacementRetryCap: t.PlacementRetryCap,
	}
}
