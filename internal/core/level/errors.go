package level

import "errors"

var (
	ErrBadHeightmap   = errors.New("malformed heightmap")
	ErrEmptyHeightmap = errors.New("heightmap has no tiles")
)
