package physics

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/zeuphys/internal/core/level"
)

const testOwnerType = HandleUser + 1

func newTestWorld(t testing.TB, mutate func(*Config)) *World {
	t.Helper()
	cfg := DefaultConfig()
	if mutate != nil {
		mutate(&cfg)
	}
	w, err := NewWorld(cfg)
	require.NoError(t, err)
	return w
}

// spawn allocates a floating movable body at (x, 0, z).
func spawn(t testing.TB, w *World, x, z, radius float64) *Body {
	t.Helper()
	b, err := w.Allocate(Handle{ID: uint32(w.ActiveCount()), Type: testOwnerType})
	require.NoError(t, err)
	b.Position = mgl64.Vec3{x, 0, z}
	b.Radius = radius
	b.Height = 1
	b.IsMovable = true
	b.AffectedByGravity = false
	return b
}

// gridMap builds a width x depth heightmap; tile returns the height index of (x, z).
func gridMap(t testing.TB, width, depth int, tile func(x, z int) byte) *level.Heightmap {
	t.Helper()
	tiles := make([]byte, width*depth)
	for z := 0; z < depth; z++ {
		for x := 0; x < width; x++ {
			tiles[z*width+x] = tile(x, z)
		}
	}
	h, err := level.New(width, depth, tiles)
	require.NoError(t, err)
	return h
}

func xzDistance(a, b *Body) float64 {
	return mgl64.Vec2{a.Position.X() - b.Position.X(), a.Position.Z() - b.Position.Z()}.Len()
}
