package physics

import "errors"

var (
	// ErrPoolExhausted is returned by Allocate when every slot is in use. The
	// caller decides whether to drop or retry the spawn.
	ErrPoolExhausted = errors.New("physics body pool exhausted")
	// ErrStaleHandle reports a handle whose slot was freed or reused.
	ErrStaleHandle   = errors.New("stale body handle")
	ErrInvalidConfig = errors.New("invalid physics configuration")
)
