package physics

import "github.com/go-gl/mathgl/mgl64"

// distanceXZ2 is the squared distance between a and b projected on the ground plane.
func distanceXZ2(a, b mgl64.Vec3) float64 {
	dx := a.X() - b.X()
	dz := a.Z() - b.Z()
	return dx*dx + dz*dz
}
