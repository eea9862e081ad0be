package world

import "fmt"

type WorldConfig struct {
	ID         string
	TickRateHz int
	Seed       int64

	// Arena is [0, Width] x [0, Height]. Random placement draws centers from
	// [0, SpawnWidth) x [0, SpawnHeight).
	Width       float64
	Height      float64
	SpawnWidth  float64
	SpawnHeight float64

	// Population. Counts are used as given; zero is a legal count.
	Robots     int
	Obstacles  int
	Quicksands int
	Mines      int
	Speed      float64

	Robot RobotConfig
	Zones ZoneConfig

	// Attempts per robot/mine before placement gives up.
	PlacementRetryCap int
}

type RobotConfig struct {
	// Sight distance is SightFactor * speed.
	SightFactor float64
	// Per-tick probability of a random heading change. Negative disables it.
	HeadingChangeProb float64
	// Heading reversal when no mine is visible, as a fraction of pi.
	ReverseTurn           float64
	DangerIgnoreTicks     int
	IndicationIgnoreTicks int
	// Heading samples tried before a robot is reported stuck for the tick.
	MoveRetryCap int
}

type ZoneConfig struct {
	ObstacleRadiusMin     float64
	ObstacleRadiusSpread  float64
	QuicksandRadiusMin    float64
	QuicksandRadiusSpread float64
}

func (c *WorldConfig) applyDefaults() {
	if c.ID == "" {
		c.ID = "minefield_1"
	}
	if c.TickRateHz <= 0 {
		c.TickRateHz = 10
	}
	if c.Seed == 0 {
		c.Seed = 1
	}
	if c.Width <= 0 {
		c.Width = 600
	}
	if c.Height <= 0 {
		c.Height = 600
	}
	if c.SpawnWidth <= 0 || c.SpawnWidth > c.Width {
		c.SpawnWidth = c.Width * 5 / 6
	}
	if c.SpawnHeight <= 0 || c.SpawnHeight > c.Height {
		c.SpawnHeight = c.Height * 5 / 6
	}
	if c.Speed <= 0 {
		c.Speed = 15
	}
	if c.PlacementRetryCap <= 0 {
		c.PlacementRetryCap = 1000
	}
	c.Robot.applyDefaults()
	c.Zones.applyDefaults()
}

func (rc *RobotConfig) applyDefaults() {
	if rc.SightFactor <= 0 {
		rc.SightFactor = 2
	}
	if rc.HeadingChangeProb == 0 {
		rc.HeadingChangeProb = 0.01
	}
	if rc.HeadingChangeProb < 0 {
		rc.HeadingChangeProb = 0
	}
	if rc.ReverseTurn <= 0 {
		rc.ReverseTurn = 0.9
	}
	if rc.DangerIgnoreTicks <= 0 {
		rc.DangerIgnoreTicks = 3
	}
	if rc.IndicationIgnoreTicks <= 0 {
		rc.IndicationIgnoreTicks = 5
	}
	if rc.MoveRetryCap <= 0 {
		rc.MoveRetryCap = 64
	}
}

func (zc *ZoneConfig) applyDefaults() {
	if zc.ObstacleRadiusMin <= 0 {
		zc.ObstacleRadiusMin = 10
	}
	if zc.ObstacleRadiusSpread < 0 {
		zc.ObstacleRadiusSpread = 0
	} else if zc.ObstacleRadiusSpread == 0 {
		zc.ObstacleRadiusSpread = 20
	}
	if zc.QuicksandRadiusMin <= 0 {
		zc.QuicksandRadiusMin = 10
	}
	if zc.QuicksandRadiusSpread < 0 {
		zc.QuicksandRadiusSpread = 0
	} else if zc.QuicksandRadiusSpread == 0 {
		zc.QuicksandRadiusSpread = 20
	}
}

func (c WorldConfig) validate() error {
	counts := []struct {
		name string
		n    int
	}{
		{"robots", c.Robots},
		{"obstacles", c.Obstacles},
		{"quicksands", c.Quicksands},
		{"mines", c.Mines},
	}
	for _, ct := range counts {
		if ct.n < 0 {
			return fmt.Errorf("%w: negative %s count %d", ErrConfigurationInfeasible, ct.name, ct.n)
		}
	}
	if c.Robot.HeadingChangeProb > 1 {
		return fmt.Errorf("%w: heading change probability %v > 1", ErrConfigurationInfeasible, c.Robot.HeadingChangeProb)
	}
	return nil
}

// SightDistance is the sensing radius of a robot created with this config.
func (c WorldConfig) SightDistance() float64 {
	return c.Robot.SightFactor * c.Speed
}
