package physics

import "time"

// Stats describes the work done by the last Step.
type Stats struct {
	Step uint64

	Important int
	Ordinary  int
	Minions   int

	// BodiesOverlapping counts overlap tests, TotalCollisions the tests that hit.
	BodiesOverlapping int
	TotalCollisions   int
	WallHits          int
	Rebuilt           bool

	Move          time.Duration
	Neighbors     time.Duration
	OrdinaryPairs time.Duration
	MinionPairs   time.Duration
	MinionMinion  time.Duration
	Level         time.Duration
	Total         time.Duration
}
