package level

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testGrid(t *testing.T) *Heightmap {
	t.Helper()
	// 3 wide, 2 deep
	h, err := New(3, 2, []byte{
		0, 4, 8,
		12, 16, 0x80 | 20,
	})
	require.NoError(t, err)
	return h
}

func TestTileHeightUsesTable(t *testing.T) {
	h := testGrid(t)
	assert.Equal(t, 0.0, h.TileHeight(0, 0))
	assert.Equal(t, 1.0, h.TileHeight(1, 0))
	assert.Equal(t, 2.0, h.TileHeight(2, 0))
	assert.Equal(t, 3.0, h.TileHeight(0, 1))
	// high bit is not part of the index
	assert.Equal(t, 5.0, h.TileHeight(2, 1))
}

func TestTileHeightClampsToEdges(t *testing.T) {
	h := testGrid(t)
	assert.Equal(t, h.TileHeight(0, 0), h.TileHeight(-5, -5))
	assert.Equal(t, h.TileHeight(2, 0), h.TileHeight(99, -1))
	assert.Equal(t, h.TileHeight(0, 1), h.TileHeight(-1, 40))
	assert.Equal(t, h.TileHeight(2, 1), h.TileHeight(3, 2))

	assert.Equal(t, h.TileHeight(2, 1), h.HeightAt(1e6, 1e6))
	assert.Equal(t, h.TileHeight(0, 0), h.HeightAt(-0.5, -0.5))
}

func TestHeightAtFloorsCoordinates(t *testing.T) {
	h := testGrid(t)
	assert.Equal(t, h.TileHeight(1, 0), h.HeightAt(1.99, 0.5))
	assert.Equal(t, h.TileHeight(2, 1), h.HeightAt(2.0, 1.0))
	assert.Equal(t, -1, TileOf(-0.25))
}

func TestGroundAtTakesLowestTouchingTile(t *testing.T) {
	h := testGrid(t)
	// inside a tile it matches HeightAt
	assert.Equal(t, h.HeightAt(1.5, 0.5), h.GroundAt(1.5, 0.5))
	assert.Equal(t, h.HeightAt(2.25, 1.75), h.GroundAt(2.25, 1.75))

	// on the x=2 edge between 1.0 and 2.0
	assert.Equal(t, 1.0, h.GroundAt(2.0, 0.5))
	// on the z=1 edge between 2.0 and 5.0
	assert.Equal(t, 2.0, h.GroundAt(2.5, 1.0))
	// corner (2, 1) touches 1.0, 2.0, 4.0 and 5.0
	assert.Equal(t, 1.0, h.GroundAt(2.0, 1.0))
	// outside the map edges clamp
	assert.Equal(t, 0.0, h.GroundAt(0.0, 0.0))
	assert.Equal(t, h.TileHeight(2, 1), h.GroundAt(3.0, 2.0))
}

func TestNewRejectsBadSizes(t *testing.T) {
	_, err := New(0, 3, nil)
	assert.ErrorIs(t, err, ErrEmptyHeightmap)

	_, err = New(2, 2, []byte{1, 2, 3})
	assert.ErrorIs(t, err, ErrBadHeightmap)

	_, err = Flat(-1, 2, 0)
	assert.ErrorIs(t, err, ErrEmptyHeightmap)
}

func TestDecodeEncodeBlob(t *testing.T) {
	h := testGrid(t)
	decoded, err := Decode(h.Encode())
	require.NoError(t, err)
	assert.Equal(t, 3, decoded.Width())
	assert.Equal(t, 2, decoded.Depth())
	assert.Equal(t, h.TileHeight(2, 1), decoded.TileHeight(2, 1))

	_, err = Decode([]byte{1, 0, 0})
	assert.ErrorIs(t, err, ErrBadHeightmap)

	truncated := h.Encode()[:10]
	_, err = Decode(truncated)
	assert.ErrorIs(t, err, ErrBadHeightmap)
}

func TestLoadYAML(t *testing.T) {
	src := `
width: 2
depth: 2
rows:
  - [0, 8]
  - [16, 127]
`
	h, err := LoadYAML(strings.NewReader(src))
	require.NoError(t, err)
	assert.Equal(t, 2.0, h.TileHeight(1, 0))
	assert.Equal(t, 127*HeightStep, h.TileHeight(1, 1))

	_, err = LoadYAML(strings.NewReader("width: 2\ndepth: 1\nrows:\n  - [0]\n"))
	assert.ErrorIs(t, err, ErrBadHeightmap)

	_, err = LoadYAML(strings.NewReader("width: 1\ndepth: 1\nrows:\n  - [200]\n"))
	assert.ErrorIs(t, err, ErrBadHeightmap)

	_, err = LoadYAML(strings.NewReader("width: -1\ndepth: 1\nrows:\n  - []\n"))
	assert.ErrorIs(t, err, ErrEmptyHeightmap)

	_, err = LoadYAML(strings.NewReader("width: 2\ndepth: 0\nrows: []\n"))
	assert.ErrorIs(t, err, ErrEmptyHeightmap)
}

func TestLoadPicksDecoderByExtension(t *testing.T) {
	dir := t.TempDir()

	yamlPath := filepath.Join(dir, "level.yaml")
	require.NoError(t, os.WriteFile(yamlPath, []byte("width: 1\ndepth: 1\nrows:\n  - [4]\n"), 0o600))
	h, err := Load(yamlPath)
	require.NoError(t, err)
	assert.Equal(t, 1.0, h.TileHeight(0, 0))

	blobPath := filepath.Join(dir, "level.bin")
	require.NoError(t, os.WriteFile(blobPath, testGrid(t).Encode(), 0o600))
	h, err = Load(blobPath)
	require.NoError(t, err)
	assert.Equal(t, 3, h.Width())

	_, err = Load(filepath.Join(dir, "missing.bin"))
	assert.Error(t, err)
}
