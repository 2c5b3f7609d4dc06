package physics

import "math"

// resolve pushes overlapping bodies apart on the XZ plane. Each movable side
// moves along the line between centers by the overlap, capped at a fraction
// of the other body's radius. Minions never push non-minions. Velocity and Y
// are left alone; sensors never get a response.
func (w *World) resolve(a, b *Body) {
	if a.IsSensor || b.IsSensor {
		return
	}
	if !a.IsMovable && !b.IsMovable {
		return
	}

	dx := a.Position.X() - b.Position.X()
	dz := a.Position.Z() - b.Position.Z()
	distance := math.Hypot(dx, dz)

	// unit direction from b towards a
	var ux, uz float64
	if distance == 0 {
		ux, uz = w.randomDirection()
	} else {
		ux, uz = dx/distance, dz/distance
	}
	overlap := a.Radius + b.Radius - distance

	if a.IsMovable && (!b.IsMinion || a.IsMinion) {
		offset := math.Min(overlap, b.Radius/w.cfg.CorrectionDivisor)
		a.Position[0] += ux * offset
		a.Position[2] += uz * offset
	}
	if b.IsMovable && (!a.IsMinion || b.IsMinion) {
		offset := math.Min(overlap, a.Radius/w.cfg.CorrectionDivisor)
		b.Position[0] -= ux * offset
		b.Position[2] -= uz * offset
	}
}

// randomDirection returns a unit XZ vector from the world's seeded source.
func (w *World) randomDirection() (float64, float64) {
	angle := w.rng.Float64() * 2 * math.Pi
	return math.Cos(angle), math.Sin(angle)
}
