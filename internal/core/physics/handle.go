package physics

import "math"

// HandleType tags what a handle points at. Values above HandleBody are free
// for callers to use for their own objects (see Body.Owner).
type HandleType uint8

const (
	HandleNone HandleType = iota
	HandleBody

	// HandleUser is the first tag available to game code.
	HandleUser HandleType = 16
)

// invalidGeneration marks neighbor slots that have never held a body.
const invalidGeneration = math.MaxUint32

// Handle is a generation-checked reference to a pool slot. Handles stay safe to
// hold across steps; Resolve fails once the slot is freed or reused.
type Handle struct {
	ID         uint32
	Generation uint32
	Type       HandleType
}

// Matches reports whether h and other refer to the same slot incarnation.
func (h Handle) Matches(other Handle) bool {
	return h.ID == other.ID && h.Generation == other.Generation && h.Type == other.Type
}

func (h Handle) IsZero() bool {
	return h == Handle{}
}

func invalidHandle() Handle {
	return Handle{Generation: invalidGeneration, Type: HandleNone}
}
