package physics

import "github.com/go-gl/mathgl/mgl64"

// MaxCollisionResults bounds the per-step sensor results kept on a body.
const MaxCollisionResults = 8

// CollisionResult records that Other touched the body this step while
// belonging to a group the body senses.
type CollisionResult struct {
	Other Handle
	Group uint32
}

// Neighbor is one slot of a body's approximate nearest-neighbor table.
// Distance is the squared XZ distance at the last refresh.
type Neighbor struct {
	Handle   Handle
	Distance float64
}

// Body is a vertical cylinder standing on Position (its base). Bodies live in
// the world's pool and are addressed from outside through handles only.
type Body struct {
	Position     mgl64.Vec3
	OldPosition  mgl64.Vec3
	Velocity     mgl64.Vec3
	Acceleration mgl64.Vec3

	Radius    float64
	OldRadius float64
	Height    float64

	IsSensor           bool
	CollidesWithBodies bool
	CollidesWithLevel  bool
	IgnoresWalls       bool
	IsMovable          bool
	IsMinion           bool
	AffectedByGravity  bool
	IsImportant        bool
	TouchingGround     bool

	// CollisionGroup is the set of groups this body belongs to; SensorGroups
	// the set of groups whose contact it wants reported.
	CollisionGroup uint32
	SensorGroups   uint32

	// ResultGroups is the OR of every sensed group that touched the body
	// during the last step.
	ResultGroups uint32

	// Owner is the game object that allocated the body.
	Owner Handle

	active     bool
	handle     Handle
	results    [MaxCollisionResults]CollisionResult
	numResults int
	neighbors  []Neighbor
}

func (b *Body) Active() bool   { return b.active }
func (b *Body) Handle() Handle { return b.handle }

// CollisionResults returns the sensor hits recorded during the last step. The
// slice aliases the body and is only valid until the next step.
func (b *Body) CollisionResults() []CollisionResult {
	return b.results[:b.numResults]
}

// Neighbors returns the body's neighbor table. Slots whose handle no longer
// resolves are empty.
func (b *Body) Neighbors() []Neighbor {
	return b.neighbors
}

// Senses reports whether any of group is in the body's sensed groups.
func (b *Body) Senses(group uint32) bool {
	return b.SensorGroups&group != 0
}

func (b *Body) reset(neighbors []Neighbor) {
	*b = Body{neighbors: neighbors}
	b.CollidesWithBodies = true
	b.CollidesWithLevel = true
	b.AffectedByGravity = true
	for i := range b.neighbors {
		b.neighbors[i] = Neighbor{Handle: invalidHandle()}
	}
}

func (b *Body) prepare() {
	b.OldPosition = b.Position
	b.OldRadius = b.Radius
	b.ResultGroups = 0
	b.numResults = 0
}

func (b *Body) record(other *Body) {
	b.ResultGroups |= other.CollisionGroup
	if b.numResults < MaxCollisionResults {
		b.results[b.numResults] = CollisionResult{Other: other.handle, Group: other.CollisionGroup}
		b.numResults++
	}
}
