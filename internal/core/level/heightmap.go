// Package level holds the static height grid the physics world collides
// bodies against. A grid is loaded once per level and never mutated after.
package level

import (
	"encoding/binary"
	"fmt"
	"math"
)

const (
	// TableSize is the number of distinct tile heights a byte can select.
	TableSize = 128
	// HeightStep is the world-space height of one table index.
	HeightStep = 32.0 / 128.0

	indexMask  = 0x7F
	headerSize = 8
)

// Heightmap is a Width x Depth grid of tile height indices. One tile is one
// world unit on both X and Z.
type Heightmap struct {
	width int
	depth int
	tiles []byte
	table [TableSize]float64
}

// New builds a heightmap from row-major tiles (tiles[z*width+x]).
func New(width, depth int, tiles []byte) (*Heightmap, error) {
	if width <= 0 || depth <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrEmptyHeightmap, width, depth)
	}
	if len(tiles) != width*depth {
		return nil, fmt.Errorf("%w: want %d tiles for %dx%d, got %d", ErrBadHeightmap, width*depth, width, depth, len(tiles))
	}

	h := &Heightmap{
		width: width,
		depth: depth,
		tiles: append([]byte(nil), tiles...),
	}
	for i := range h.table {
		h.table[i] = HeightStep * float64(i)
	}
	return h, nil
}

// Decode parses the raw level blob: little-endian int32 width, int32 depth,
// then width*depth tile bytes.
func Decode(raw []byte) (*Heightmap, error) {
	if len(raw) < headerSize {
		return nil, fmt.Errorf("%w: header truncated (%d bytes)", ErrBadHeightmap, len(raw))
	}
	width := int(int32(binary.LittleEndian.Uint32(raw[0:4])))
	depth := int(int32(binary.LittleEndian.Uint32(raw[4:8])))
	if width <= 0 || depth <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrEmptyHeightmap, width, depth)
	}
	body := raw[headerSize:]
	if len(body) < width*depth {
		return nil, fmt.Errorf("%w: want %d tiles, got %d", ErrBadHeightmap, width*depth, len(body))
	}
	return New(width, depth, body[:width*depth])
}

// Encode is the inverse of Decode.
func (h *Heightmap) Encode() []byte {
	out := make([]byte, headerSize+len(h.tiles))
	binary.LittleEndian.PutUint32(out[0:4], uint32(int32(h.width)))
	binary.LittleEndian.PutUint32(out[4:8], uint32(int32(h.depth)))
	copy(out[headerSize:], h.tiles)
	return out
}

func (h *Heightmap) Width() int { return h.width }
func (h *Heightmap) Depth() int { return h.depth }

// TileHeight returns the height of tile (x, z). Coordinates outside the grid
// clamp to the nearest edge tile.
func (h *Heightmap) TileHeight(x, z int) float64 {
	x = min(max(x, 0), h.width-1)
	z = min(max(z, 0), h.depth-1)
	return h.table[h.tiles[z*h.width+x]&indexMask]
}

// HeightAt returns the height of the tile containing world point (x, z).
func (h *Heightmap) HeightAt(x, z float64) float64 {
	return h.TileHeight(TileOf(x), TileOf(z))
}

// GroundAt is the height a body standing at (x, z) rests on. A point exactly
// on a tile edge touches the tiles on both sides and rests on the lowest.
func (h *Heightmap) GroundAt(x, z float64) float64 {
	xs, nx := edgeTiles(x)
	zs, nz := edgeTiles(z)
	ground := math.Inf(1)
	for _, tx := range xs[:nx] {
		for _, tz := range zs[:nz] {
			ground = min(ground, h.TileHeight(tx, tz))
		}
	}
	return ground
}

func edgeTiles(v float64) ([2]int, int) {
	t := TileOf(v)
	if float64(t) == v {
		return [2]int{t - 1, t}, 2
	}
	return [2]int{t}, 1
}

// TileOf maps a world coordinate to its tile coordinate.
func TileOf(v float64) int {
	return int(math.Floor(v))
}
