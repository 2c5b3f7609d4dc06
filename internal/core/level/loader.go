package level

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Document is the YAML form of a heightmap, convenient for hand-authored test
// levels. Each row lists Width height indices, rows run along +Z.
type Document struct {
	Width int     `yaml:"width"`
	Depth int     `yaml:"depth"`
	Rows  [][]int `yaml:"rows"`
}

// LoadYAML reads a Document and converts it to a Heightmap.
func LoadYAML(r io.Reader) (*Heightmap, error) {
	var doc Document
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("parse heightmap yaml: %w", err)
	}
	return doc.Build()
}

// Build validates the rows against the declared size.
func (d Document) Build() (*Heightmap, error) {
	if d.Width <= 0 || d.Depth <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrEmptyHeightmap, d.Width, d.Depth)
	}
	if len(d.Rows) != d.Depth {
		return nil, fmt.Errorf("%w: declared depth %d, got %d rows", ErrBadHeightmap, d.Depth, len(d.Rows))
	}
	tiles := make([]byte, 0, d.Width*d.Depth)
	for z, row := range d.Rows {
		if len(row) != d.Width {
			return nil, fmt.Errorf("%w: row %d has %d tiles, want %d", ErrBadHeightmap, z, len(row), d.Width)
		}
		for x, v := range row {
			if v < 0 || v >= TableSize {
				return nil, fmt.Errorf("%w: tile (%d,%d) index %d out of range", ErrBadHeightmap, x, z, v)
			}
			tiles = append(tiles, byte(v))
		}
	}
	return New(d.Width, d.Depth, tiles)
}

// Load picks the decoder from the file extension: .yaml/.yml for Document,
// anything else for the raw binary blob.
func Load(path string) (*Heightmap, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read heightmap %s: %w", path, err)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		h, err := LoadYAML(bytes.NewReader(raw))
		if err != nil {
			return nil, fmt.Errorf("load %s: %w", path, err)
		}
		return h, nil
	default:
		h, err := Decode(raw)
		if err != nil {
			return nil, fmt.Errorf("load %s: %w", path, err)
		}
		return h, nil
	}
}

// Flat returns a width x depth heightmap where every tile has index idx.
func Flat(width, depth int, idx byte) (*Heightmap, error) {
	if width <= 0 || depth <= 0 {
		return New(width, depth, nil)
	}
	tiles := make([]byte, width*depth)
	for i := range tiles {
		tiles[i] = idx
	}
	return New(width, depth, tiles)
}
