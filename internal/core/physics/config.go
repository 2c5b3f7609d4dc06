package physics

import "fmt"

// Config holds the engine constants. They are fixed for the lifetime of a
// World.
type Config struct {
	// PoolCapacity is the number of body slots.
	PoolCapacity int `yaml:"pool_capacity"`
	// NeighborSlots is the size of each body's neighbor table.
	NeighborSlots int `yaml:"neighbor_slots"`
	// Gravity is subtracted from Y velocity every step.
	Gravity float64 `yaml:"gravity"`
	// WallThreshold is the minimum tile height increase treated as a wall.
	WallThreshold float64 `yaml:"wall_threshold"`
	// WallMaxDepth bounds how many walls one body can be clipped against per step.
	WallMaxDepth int `yaml:"wall_max_depth"`
	// CorrectionDivisor caps positional correction at other.Radius/CorrectionDivisor.
	CorrectionDivisor float64 `yaml:"correction_divisor"`
	// MinionStride selects 1/MinionStride of the minions for minion-minion tests each step.
	MinionStride int `yaml:"minion_stride"`
	// BucketSize is the coarse cell edge used to pair minions.
	BucketSize float64 `yaml:"bucket_size"`
	// Seed feeds the degenerate-overlap direction generator.
	Seed uint64 `yaml:"seed"`
}

func DefaultConfig() Config {
	return Config{
		PoolCapacity:      256,
		NeighborSlots:     6,
		Gravity:           4.5 / 30.0,
		WallThreshold:     2.0,
		WallMaxDepth:      4,
		CorrectionDivisor: 8,
		MinionStride:      8,
		BucketSize:        1,
		Seed:              0x5eed,
	}
}

func (c Config) Validate() error {
	switch {
	case c.PoolCapacity <= 0:
		return fmt.Errorf("%w: pool_capacity must be positive, got %d", ErrInvalidConfig, c.PoolCapacity)
	case c.NeighborSlots <= 0:
		return fmt.Errorf("%w: neighbor_slots must be positive, got %d", ErrInvalidConfig, c.NeighborSlots)
	case c.Gravity < 0:
		return fmt.Errorf("%w: gravity must not be negative, got %v", ErrInvalidConfig, c.Gravity)
	case c.WallThreshold < 0:
		return fmt.Errorf("%w: wall_threshold must not be negative, got %v", ErrInvalidConfig, c.WallThreshold)
	case c.WallMaxDepth <= 0:
		return fmt.Errorf("%w: wall_max_depth must be positive, got %d", ErrInvalidConfig, c.WallMaxDepth)
	case c.CorrectionDivisor <= 0:
		return fmt.Errorf("%w: correction_divisor must be positive, got %v", ErrInvalidConfig, c.CorrectionDivisor)
	case c.MinionStride <= 0:
		return fmt.Errorf("%w: minion_stride must be positive, got %d", ErrInvalidConfig, c.MinionStride)
	case c.BucketSize <= 0:
		return fmt.Errorf("%w: bucket_size must be positive, got %v", ErrInvalidConfig, c.BucketSize)
	}
	return nil
}
