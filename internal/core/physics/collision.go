package physics

import (
	"math"
	"time"
)

// collideBodies runs the three pair tiers: ordinary bodies against their
// neighbor tables and every important body, minions against their neighbor
// tables and every important body, then a rotating slice of minions against
// all minions.
func (w *World) collideBodies() {
	mark := time.Now()
	for _, ai := range w.ordinary {
		a := &w.bodies[ai]
		for n := range a.neighbors {
			if b, ok := w.Resolve(a.neighbors[n].Handle); ok && !b.IsImportant {
				w.collideObjects(a, b)
			}
		}
		for _, ii := range w.important {
			w.collideObjects(a, &w.bodies[ii])
		}
	}
	w.stats.OrdinaryPairs = time.Since(mark)

	mark = time.Now()
	for _, pi := range w.minions {
		p := &w.bodies[pi]
		for n := range p.neighbors {
			if b, ok := w.Resolve(p.neighbors[n].Handle); ok && !b.IsImportant {
				w.collideMinionWithObject(p, b)
			}
		}
		for _, ii := range w.important {
			w.collideMinionWithObject(p, &w.bodies[ii])
		}
	}
	w.stats.MinionPairs = time.Since(mark)

	mark = time.Now()
	stride := w.cfg.MinionStride
	for p1 := int(w.step % uint64(stride)); p1 < len(w.minions); p1 += stride {
		a := &w.bodies[w.minions[p1]]
		for _, p2 := range w.minions {
			w.collideMinions(a, &w.bodies[p2])
		}
	}
	w.stats.MinionMinion = time.Since(mark)
}

// collideObjects handles a pair where both sides may push and both may sense.
func (w *World) collideObjects(a, b *Body) {
	aSensesB := b.IsSensor && a.Senses(b.CollisionGroup)
	bSensesA := a.IsSensor && b.Senses(a.CollisionGroup)
	aPushesB := a.CollidesWithBodies && !b.IsSensor
	bPushesA := b.CollidesWithBodies && !a.IsSensor
	if !aSensesB && !bSensesA && !aPushesB && !bPushesA {
		return
	}
	if !w.overlap(a, b) {
		return
	}
	w.resolve(a, b)
	if b.Senses(a.CollisionGroup) {
		w.recordContact(b, a)
	}
	if a.Senses(b.CollisionGroup) {
		w.recordContact(a, b)
	}
}

// collideMinionWithObject only ever records on the minion side.
func (w *World) collideMinionWithObject(p, a *Body) {
	if a.IsSensor && !p.Senses(a.CollisionGroup) {
		return
	}
	if !w.overlap(a, p) {
		return
	}
	w.resolve(a, p)
	if p.Senses(a.CollisionGroup) {
		w.recordContact(p, a)
	}
}

// collideMinions pairs two minions only when they share a coarse bucket.
func (w *World) collideMinions(a, b *Body) {
	if w.bucket(a.Position.X()) != w.bucket(b.Position.X()) ||
		w.bucket(a.Position.Z()) != w.bucket(b.Position.Z()) {
		return
	}
	if w.overlap(a, b) {
		w.resolve(a, b)
	}
}

func (w *World) bucket(v float64) int {
	return int(math.Floor(v / w.cfg.BucketSize))
}

func (w *World) recordContact(b, other *Body) {
	b.record(other)
	w.contacts = append(w.contacts, Contact{
		Body:  b.handle,
		Owner: b.Owner,
		Other: other.handle,
		Group: other.CollisionGroup,
	})
}

// overlap is Overlaps plus the per-step pair counters.
func (w *World) overlap(a, b *Body) bool {
	if a == b {
		return false
	}
	w.stats.BodiesOverlapping++
	if !Overlaps(a, b) {
		return false
	}
	w.stats.TotalCollisions++
	return true
}

// Overlaps tests two cylinders: circles on XZ, then the vertical spans.
func Overlaps(a, b *Body) bool {
	if a == b {
		return false
	}
	sum := a.Radius + b.Radius
	if distanceXZ2(a.Position, b.Position) >= sum*sum {
		return false
	}
	return a.Position.Y()+a.Height >= b.Position.Y() && b.Position.Y()+b.Height >= a.Position.Y()
}
