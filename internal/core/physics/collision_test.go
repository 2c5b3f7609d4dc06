package physics

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	groupPikmin   uint32 = 1 << 1
	groupTreasure uint32 = 1 << 10
)

func TestOverlapCylinder(t *testing.T) {
	w := newTestWorld(t, nil)
	a := spawn(t, w, 0, 0, 1)
	b := spawn(t, w, 1.5, 0, 1)

	assert.True(t, Overlaps(a, b))
	assert.False(t, Overlaps(a, a), "a body never overlaps itself")

	b.Position = mgl64.Vec3{2, 0, 0}
	assert.False(t, Overlaps(a, b), "touching circles do not overlap")

	b.Position = mgl64.Vec3{1, 1, 0}
	assert.True(t, Overlaps(a, b), "top of a touches bottom of b")

	b.Position = mgl64.Vec3{1, 1.01, 0}
	assert.False(t, Overlaps(a, b), "b floats above a")

	b.Position = mgl64.Vec3{1, -1.5, 0}
	assert.False(t, Overlaps(a, b), "b is below a")
}

func TestSeparationConverges(t *testing.T) {
	w := newTestWorld(t, nil)
	a := spawn(t, w, 0, 0, 1)
	b := spawn(t, w, 1.2, 0.3, 1)
	sum := a.Radius + b.Radius

	penetration := sum - xzDistance(a, b)
	for i := 0; i < 100 && Overlaps(a, b); i++ {
		w.resolve(a, b)
		next := sum - xzDistance(a, b)
		require.Less(t, next, penetration, "iteration %d", i)
		require.Less(t, a.Position.X(), b.Position.X(), "bodies never swap sides")
		// each side moves at most other.Radius/8
		require.LessOrEqual(t, penetration-next, 2*(1.0/8)+1e-9)
		penetration = next
	}
	assert.GreaterOrEqual(t, xzDistance(a, b), sum-1e-9)
	assert.Zero(t, a.Position.Y())
	assert.Zero(t, b.Position.Y())
}

func TestResolveDegenerateOverlap(t *testing.T) {
	w := newTestWorld(t, nil)
	a := spawn(t, w, 3, 3, 1)
	b := spawn(t, w, 3, 3, 1)

	w.resolve(a, b)
	d := xzDistance(a, b)
	assert.Greater(t, d, 0.0)
	assert.False(t, math.IsNaN(a.Position.X()) || math.IsNaN(a.Position.Z()))
	assert.False(t, math.IsNaN(b.Position.X()) || math.IsNaN(b.Position.Z()))
	assert.InDelta(t, 2.0/8, d, 1e-9)
}

func TestResolveLeavesVelocityAndSensors(t *testing.T) {
	w := newTestWorld(t, nil)
	a := spawn(t, w, 0, 0, 1)
	b := spawn(t, w, 1, 0, 1)
	a.Velocity = mgl64.Vec3{0.3, 0.1, 0}

	w.resolve(a, b)
	assert.Equal(t, mgl64.Vec3{0.3, 0.1, 0}, a.Velocity)

	before := a.Position
	b.IsSensor = true
	w.resolve(a, b)
	assert.Equal(t, before, a.Position)

	b.IsSensor = false
	a.IsMovable, b.IsMovable = false, false
	w.resolve(a, b)
	assert.Equal(t, before, a.Position)
}

func TestResolveMinionsDoNotPushOrdinary(t *testing.T) {
	w := newTestWorld(t, nil)
	o := spawn(t, w, 0, 0, 1)
	m := spawn(t, w, 1, 0, 0.5)
	m.IsMinion = true

	w.resolve(o, m)
	assert.Equal(t, 0.0, o.Position.X(), "ordinary body is not pushed by a minion")
	assert.Greater(t, m.Position.X(), 1.0)

	m2 := spawn(t, w, m.Position.X()+0.2, 0, 0.5)
	m2.IsMinion = true
	mx, m2x := m.Position.X(), m2.Position.X()
	w.resolve(m, m2)
	assert.Less(t, m.Position.X(), mx, "minions push each other")
	assert.Greater(t, m2.Position.X(), m2x)
}

func TestSensorResultsAreAsymmetric(t *testing.T) {
	w := newTestWorld(t, nil)
	solid := spawn(t, w, 0, 0, 1)
	solid.CollisionGroup = groupPikmin
	solid.SensorGroups = groupTreasure

	sensor := spawn(t, w, 0.5, 0, 1)
	sensor.IsSensor = true
	sensor.IsMovable = false
	sensor.CollisionGroup = groupTreasure

	w.Step()
	require.Len(t, solid.CollisionResults(), 1)
	assert.Equal(t, sensor.Handle(), solid.CollisionResults()[0].Other)
	assert.Equal(t, groupTreasure, solid.CollisionResults()[0].Group)
	assert.Equal(t, groupTreasure, solid.ResultGroups)
	assert.Empty(t, sensor.CollisionResults(), "sensor does not sense the solid")
	assert.Zero(t, sensor.ResultGroups)
	assert.Equal(t, 0.0, solid.Position.X(), "sensors never push")

	require.Len(t, w.Contacts(), 1)
	assert.Equal(t, solid.Handle(), w.Contacts()[0].Body)
	assert.Equal(t, solid.Owner, w.Contacts()[0].Owner)

	// both tables now hold the other body, so the pair is seen from each side
	sensor.SensorGroups = groupPikmin
	w.Step()
	require.NotEmpty(t, sensor.CollisionResults())
	assert.Equal(t, solid.Handle(), sensor.CollisionResults()[0].Other)
	assert.Equal(t, groupPikmin, sensor.ResultGroups)
	assert.NotEmpty(t, solid.CollisionResults())
}

func TestResultListIsBounded(t *testing.T) {
	w := newTestWorld(t, nil)
	p := spawn(t, w, 0, 0, 1)
	p.IsMinion = true
	p.SensorGroups = groupTreasure
	for i := 0; i < MaxCollisionResults+3; i++ {
		s := spawn(t, w, 0, 0, 1)
		s.IsImportant = true
		s.IsSensor = true
		s.CollisionGroup = groupTreasure
	}

	w.Step()
	assert.Len(t, p.CollisionResults(), MaxCollisionResults)
	assert.Equal(t, groupTreasure, p.ResultGroups)
	assert.Len(t, w.Contacts(), MaxCollisionResults+3)
}

func TestImportantBodiesAlwaysCollide(t *testing.T) {
	w := newTestWorld(t, nil)
	captain := spawn(t, w, 0, 0, 1.5)
	captain.IsImportant = true
	o := spawn(t, w, 1, 0, 1)
	m := spawn(t, w, -1, 0, 0.5)
	m.IsMinion = true

	w.Step()
	assert.Greater(t, o.Position.X(), 1.0, "ordinary pushed by important")
	assert.Less(t, m.Position.X(), -1.0, "minion pushed by important")
	assert.Less(t, captain.Position.X(), 0.0+1e-9, "important pushed by ordinary")
}

func TestMinionSensesOrdinarySensor(t *testing.T) {
	w := newTestWorld(t, nil)
	treasure := spawn(t, w, 0, 0, 1)
	treasure.IsSensor = true
	treasure.CollisionGroup = groupTreasure
	treasure.SensorGroups = groupPikmin

	m := spawn(t, w, 0.5, 0, 0.2)
	m.IsMinion = true
	m.CollisionGroup = groupPikmin
	m.SensorGroups = groupTreasure

	w.Step()
	require.Len(t, m.CollisionResults(), 1)
	assert.Equal(t, treasure.Handle(), m.CollisionResults()[0].Other)
	assert.Empty(t, treasure.CollisionResults(), "minions are not reported to sensors")

	blind := spawn(t, w, 0.2, 0.9, 0.2)
	blind.IsMinion = true
	w.Step()
	assert.Empty(t, blind.CollisionResults())
	assert.Equal(t, mgl64.Vec3{0.2, 0, 0.9}, blind.Position, "sensors never push minions")
}

func TestMinionMinionUsesTileBuckets(t *testing.T) {
	w := newTestWorld(t, nil)
	a := spawn(t, w, 0.4, 0.5, 0.3)
	b := spawn(t, w, 0.6, 0.5, 0.3)
	a.IsMinion, b.IsMinion = true, true

	// straddling a tile edge: overlapping but never paired
	c := spawn(t, w, 4.9, 0.5, 0.3)
	d := spawn(t, w, 5.1, 0.5, 0.3)
	c.IsMinion, d.IsMinion = true, true

	for i := 0; i < w.Config().MinionStride; i++ {
		w.Step()
	}
	assert.Less(t, a.Position.X(), 0.4)
	assert.Greater(t, b.Position.X(), 0.6)
	assert.Equal(t, 4.9, c.Position.X())
	assert.Equal(t, 5.1, d.Position.X())
}

func TestMinionMinionStrideRotates(t *testing.T) {
	w := newTestWorld(t, func(c *Config) { c.MinionStride = 2 })
	a := spawn(t, w, 0.4, 0.5, 0.3)
	b := spawn(t, w, 0.6, 0.5, 0.3)
	a.IsMinion, b.IsMinion = true, true

	// self pairs are rejected before they count as a test
	w.Step()
	assert.Equal(t, 1, w.Stats().BodiesOverlapping, "step 0 tests minion 0 against minion 1")
	w.Step()
	assert.Equal(t, 1, w.Stats().BodiesOverlapping, "step 1 tests minion 1 against minion 0")

	w.cfg.MinionStride = 4
	w.step = 2
	w.Step()
	assert.Zero(t, w.Stats().BodiesOverlapping, "no minion at index 2")
}
