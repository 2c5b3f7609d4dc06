package physics

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/zeusync/zeuphys/internal/core/level"
)

func (w *World) collideLevel() {
	if w.heightmap == nil {
		return
	}
	for _, list := range [...][]int{w.important, w.ordinary, w.minions} {
		for _, i := range list {
			w.collideWithLevel(&w.bodies[i])
		}
	}
}

// collideWithLevel clips the body against walls crossed this step, then
// rests it on the ground of the tile it ended up in.
func (w *World) collideWithLevel(b *Body) {
	if !b.CollidesWithLevel {
		return
	}
	if !b.IgnoresWalls {
		w.collideWithWalls(b)
	}

	ground := w.heightmap.GroundAt(b.Position.X(), b.Position.Z())
	if b.Position.Y() < ground {
		b.Position[1] = ground
		b.Velocity[1] = 0
		b.TouchingGround = true
	} else {
		b.TouchingGround = false
	}
}

// collideWithWalls walks the tiles between OldPosition and Position. At the
// first wall the body is clipped to the crossed tile boundary and OldPosition
// moves to the crossing point, so the remaining motion is walked again, up to
// WallMaxDepth times.
func (w *World) collideWithWalls(b *Body) {
	for depth := w.cfg.WallMaxDepth; depth > 0; depth-- {
		hit, ok := w.findWall(b)
		if !ok {
			return
		}
		b.OldPosition = hit.intersection
		if hit.alongX {
			b.Position[0] = hit.intersection.X()
		} else {
			b.Position[2] = hit.intersection.Z()
		}
		w.wallHits = append(w.wallHits, WallHit{
			Body:   b.handle,
			Owner:  b.Owner,
			TileX:  hit.tileX,
			TileZ:  hit.tileZ,
			AlongX: hit.alongX,
		})
	}
}

type wallCrossing struct {
	intersection mgl64.Vec3
	tileX, tileZ int
	alongX       bool
}

// findWall steps through every tile boundary on the segment from OldPosition
// to Position in order (2D DDA). A boundary is a wall when the body is below
// the next tile and that tile rises more than WallThreshold above the
// previous one.
func (w *World) findWall(b *Body) (wallCrossing, bool) {
	ox, oy, oz := b.OldPosition.X(), b.OldPosition.Y(), b.OldPosition.Z()
	nx, nz := b.Position.X(), b.Position.Z()
	dx, dy, dz := nx-ox, b.Position.Y()-oy, nz-oz

	// a clipped body sits exactly on a tile edge; an axis it does not move
	// along starts on the lower side of that edge
	tileX, tileZ := tileAlong(ox, dx), tileAlong(oz, dz)
	if dx == 0 && onEdge(ox) && w.heightmap.TileHeight(tileX-1, tileZ) < w.heightmap.TileHeight(tileX, tileZ) {
		tileX--
	}
	if dz == 0 && onEdge(oz) && w.heightmap.TileHeight(tileX, tileZ-1) < w.heightmap.TileHeight(tileX, tileZ) {
		tileZ--
	}
	endX, endZ := tileX, tileZ
	if dx != 0 {
		endX = tileAlong(nx, dx)
	}
	if dz != 0 {
		endZ = tileAlong(nz, dz)
	}
	crossings := abs(endX-tileX) + abs(endZ-tileZ)
	if crossings == 0 {
		return wallCrossing{}, false
	}

	stepX, nextX, deltaX := ddaAxis(ox, dx, tileX)
	stepZ, nextZ, deltaZ := ddaAxis(oz, dz, tileZ)

	previous := w.heightmap.TileHeight(tileX, tileZ)
	for range crossings {
		var t float64
		alongX := nextX < nextZ
		if alongX {
			tileX += stepX
			t = nextX
			nextX += deltaX
		} else {
			tileZ += stepZ
			t = nextZ
			nextZ += deltaZ
		}

		height := w.heightmap.TileHeight(tileX, tileZ)
		if b.Position.Y() < height && height-previous > w.cfg.WallThreshold {
			hit := wallCrossing{
				intersection: mgl64.Vec3{ox + dx*t, oy + dy*t, oz + dz*t},
				tileX:        tileX,
				tileZ:        tileZ,
				alongX:       alongX,
			}
			if alongX {
				hit.intersection[0] = boundary(tileX, stepX)
			} else {
				hit.intersection[2] = boundary(tileZ, stepZ)
			}
			return hit, true
		}
		previous = height
	}
	return wallCrossing{}, false
}

// ddaAxis returns the step direction, the segment parameter of the first
// boundary crossing and the parameter distance between crossings on one axis.
func ddaAxis(origin, delta float64, tile int) (step int, next, inc float64) {
	switch {
	case delta > 0:
		return 1, (float64(tile+1) - origin) / delta, 1 / delta
	case delta < 0:
		return -1, (origin - float64(tile)) / -delta, -1 / delta
	default:
		return 0, math.Inf(1), 0
	}
}

// boundary is the coordinate of the edge shared by the wall tile and the tile
// the body came from.
func boundary(wallTile, step int) float64 {
	if step > 0 {
		return float64(wallTile)
	}
	return float64(wallTile + 1)
}

// tileAlong is the tile a coordinate belongs to while moving with delta. A
// coordinate exactly on an edge while moving in +direction has not entered
// the tile above the edge yet.
func tileAlong(v, delta float64) int {
	t := level.TileOf(v)
	if delta > 0 && float64(t) == v {
		t--
	}
	return t
}

func onEdge(v float64) bool { return v == math.Floor(v) }

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
