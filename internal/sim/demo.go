package sim

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/zeusync/zeuphys/internal/core/events"
	"github.com/zeusync/zeuphys/internal/core/physics"
)

// Collision groups of the demo scene.
const (
	GroupPlayer uint32 = 1 << iota
	GroupPikmin
	GroupWhistle
	GroupAttack
	GroupDetect
	GroupOnionFeet
	GroupOnionBeam
	GroupFire
	GroupWater
	GroupElectric
	GroupTreasure
)

// Owner tags of demo bodies.
const (
	OwnerCaptain = physics.HandleUser + iota
	OwnerCursor
	OwnerMinion
	OwnerTreasure
)

const (
	captainOrbit  = 8.0
	captainSpeed  = 0.02
	cursorReach   = 3.0
	followSpacing = 1.5
	minionSpeed   = 0.15
)

// Demo is a captain walking a circle with a whistle cursor in front of it.
// Minions touched by the whistle start following the captain. Minions also
// sense the treasure sensor in the middle of the level.
type Demo struct {
	Center   mgl64.Vec3
	Captain  physics.Handle
	Cursor   physics.Handle
	Treasure physics.Handle
	Minions  []physics.Handle

	following map[physics.Handle]bool
	touched   map[physics.Handle]bool
	subs      []string
}

// SpawnDemo fills the world with the demo scene around the middle of the
// level and hooks its steering and event handlers into s.
func SpawnDemo(s *Simulation, minions int) (*Demo, error) {
	center := mgl64.Vec3{}
	if h := s.world.Heightmap(); h != nil {
		center = mgl64.Vec3{float64(h.Width()) / 2, 0, float64(h.Depth()) / 2}
	}
	d := &Demo{
		Center:    center,
		following: make(map[physics.Handle]bool),
		touched:   make(map[physics.Handle]bool),
	}

	var err error
	d.Captain, err = s.Spawn(physics.Handle{Type: OwnerCaptain}, func(b *physics.Body) {
		b.Position = center.Add(mgl64.Vec3{captainOrbit, 0, 0})
		b.Radius = 0.5
		b.Height = 1.8
		b.IsImportant = true
		b.IsMovable = true
		b.CollisionGroup = GroupPlayer
		b.SensorGroups = GroupTreasure
	})
	if err != nil {
		return nil, fmt.Errorf("spawn captain: %w", err)
	}

	d.Cursor, err = s.Spawn(physics.Handle{Type: OwnerCursor}, func(b *physics.Body) {
		b.Position = center.Add(mgl64.Vec3{captainOrbit + cursorReach, 0, 0})
		b.Radius = 2
		b.Height = 4
		b.IsImportant = true
		b.IsSensor = true
		b.IgnoresWalls = true
		b.AffectedByGravity = false
		b.CollisionGroup = GroupWhistle
	})
	if err != nil {
		return nil, fmt.Errorf("spawn cursor: %w", err)
	}

	d.Treasure, err = s.Spawn(physics.Handle{Type: OwnerTreasure}, func(b *physics.Body) {
		b.Position = center
		b.Radius = 1
		b.Height = 1
		b.IsSensor = true
		b.AffectedByGravity = false
		b.CollisionGroup = GroupTreasure
		b.SensorGroups = GroupPlayer
	})
	if err != nil {
		return nil, fmt.Errorf("spawn treasure: %w", err)
	}

	d.Minions = make([]physics.Handle, 0, minions)
	for i := 0; i < minions; i++ {
		angle := 2 * math.Pi * float64(i) / float64(max(minions, 1))
		ring := 4 + float64(i%4)
		h, err := s.Spawn(physics.Handle{ID: uint32(i), Type: OwnerMinion}, func(b *physics.Body) {
			b.Position = center.Add(mgl64.Vec3{ring * math.Cos(angle), 0, ring * math.Sin(angle)})
			b.Radius = 0.25
			b.Height = 0.6
			b.IsMinion = true
			b.IsMovable = true
			b.CollisionGroup = GroupPikmin
			b.SensorGroups = GroupWhistle | GroupTreasure
		})
		if err != nil {
			return d, fmt.Errorf("spawn minion %d: %w", i, err)
		}
		d.Minions = append(d.Minions, h)
	}

	s.AddSteering(d.Steer)
	d.subs = append(d.subs, s.bus.Subscribe(events.KindSensorContact, d.onContact))
	return d, nil
}

// Following reports whether the minion behind h has been whistled.
func (d *Demo) Following(h physics.Handle) bool { return d.following[h] }

// Touched reports whether the minion behind h has reached the treasure.
func (d *Demo) Touched(h physics.Handle) bool { return d.touched[h] }

// Detach removes the demo's event handlers.
func (d *Demo) Detach(s *Simulation) {
	for _, id := range d.subs {
		s.bus.Unsubscribe(id)
	}
	d.subs = nil
}

func (d *Demo) onContact(e events.Event) error {
	c, ok := e.Data().(physics.Contact)
	if !ok {
		return fmt.Errorf("sensor contact event carries %T", e.Data())
	}
	if c.Owner.Type != OwnerMinion {
		return nil
	}
	if c.Group&GroupWhistle != 0 {
		d.following[c.Body] = true
	}
	if c.Group&GroupTreasure != 0 {
		d.touched[c.Body] = true
	}
	return nil
}

// Steer moves the captain along its orbit, keeps the cursor ahead of it and
// walks followers toward the captain.
func (d *Demo) Steer(s *Simulation, step uint64) {
	captain, ok := s.world.Resolve(d.Captain)
	if !ok {
		return
	}
	theta := float64(step+1) * captainSpeed
	target := d.Center.Add(mgl64.Vec3{captainOrbit * math.Cos(theta), 0, captainOrbit * math.Sin(theta)})
	captain.Velocity[0] = (target.X() - captain.Position.X()) * 0.5
	captain.Velocity[2] = (target.Z() - captain.Position.Z()) * 0.5

	if cursor, ok := s.world.Resolve(d.Cursor); ok {
		ahead := mgl64.Vec3{-math.Sin(theta), 0, math.Cos(theta)}.Mul(cursorReach)
		cursor.Position = target.Add(ahead)
		cursor.Position[1] = captain.Position.Y()
		cursor.Velocity = mgl64.Vec3{}
	}

	for _, h := range d.Minions {
		m, ok := s.world.Resolve(h)
		if !ok || !d.following[h] {
			continue
		}
		dx := captain.Position.X() - m.Position.X()
		dz := captain.Position.Z() - m.Position.Z()
		dist := math.Hypot(dx, dz)
		if dist <= followSpacing {
			m.Velocity[0], m.Velocity[2] = 0, 0
			continue
		}
		speed := math.Min(minionSpeed, dist-followSpacing)
		m.Velocity[0] = dx / dist * speed
		m.Velocity[2] = dz / dist * speed
	}
}
