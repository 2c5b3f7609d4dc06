// Package snapshot captures the world after a step for external renderers and
// for determinism checks between runs.
package snapshot

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/cespare/xxhash/v2"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/zeusync/zeuphys/internal/core/physics"
	"github.com/zeusync/zeuphys/pkg/generic"
)

// Body flag bits packed into BodyState.Flags.
const (
	FlagSensor uint16 = 1 << iota
	FlagMovable
	FlagMinion
	FlagImportant
	FlagIgnoresWalls
	FlagTouchingGround
	FlagCollidesWithLevel
	FlagCollidesWithBodies
)

// BodyState is the renderer view of one active body.
type BodyState struct {
	ID         uint32     `msgpack:"id"`
	Generation uint32     `msgpack:"gen"`
	OwnerID    uint32     `msgpack:"owner"`
	OwnerType  uint8      `msgpack:"owner_type"`
	Class      uint8      `msgpack:"class"`
	Position   [3]float64 `msgpack:"pos"`
	Radius     float64    `msgpack:"r"`
	Height     float64    `msgpack:"h"`
	Flags      uint16     `msgpack:"flags"`
	Groups     uint32     `msgpack:"groups"`
	Results    uint32     `msgpack:"results"`
}

// Frame is every active body of a world after one step, in slot order.
type Frame struct {
	WorldID string      `msgpack:"world"`
	Step    uint64      `msgpack:"step"`
	Bodies  []BodyState `msgpack:"bodies"`
}

var buffers = generic.NewHotPool(func() *bytes.Buffer { return new(bytes.Buffer) }, (*bytes.Buffer).Reset, 4)

// Capture copies the state of every active body. The step recorded is the
// number of steps the world has completed.
func Capture(w *physics.World, worldID string) Frame {
	f := Frame{
		WorldID: worldID,
		Step:    w.StepCount(),
		Bodies:  make([]BodyState, 0, w.ActiveCount()),
	}
	w.Each(func(b *physics.Body) {
		h := b.Handle()
		f.Bodies = append(f.Bodies, BodyState{
			ID:         h.ID,
			Generation: h.Generation,
			OwnerID:    b.Owner.ID,
			OwnerType:  uint8(b.Owner.Type),
			Class:      uint8(w.ClassOf(h)),
			Position:   [3]float64(b.Position),
			Radius:     b.Radius,
			Height:     b.Height,
			Flags:      flagsOf(b),
			Groups:     b.CollisionGroup,
			Results:    b.ResultGroups,
		})
	})
	return f
}

func flagsOf(b *physics.Body) uint16 {
	var flags uint16
	set := func(bit uint16, on bool) {
		if on {
			flags |= bit
		}
	}
	set(FlagSensor, b.IsSensor)
	set(FlagMovable, b.IsMovable)
	set(FlagMinion, b.IsMinion)
	set(FlagImportant, b.IsImportant)
	set(FlagIgnoresWalls, b.IgnoresWalls)
	set(FlagTouchingGround, b.TouchingGround)
	set(FlagCollidesWithLevel, b.CollidesWithLevel)
	set(FlagCollidesWithBodies, b.CollidesWithBodies)
	return flags
}

// Encode serializes the frame with msgpack. The returned slice is owned by
// the caller.
func (f Frame) Encode() ([]byte, error) {
	buf := buffers.Get()
	defer buffers.Put(buf)

	if err := msgpack.NewEncoder(buf).Encode(f); err != nil {
		return nil, fmt.Errorf("encode frame %d: %w", f.Step, err)
	}
	return bytes.Clone(buf.Bytes()), nil
}

// Decode is the inverse of Encode.
func Decode(data []byte) (Frame, error) {
	var f Frame
	if err := msgpack.Unmarshal(data, &f); err != nil {
		return Frame{}, fmt.Errorf("decode frame: %w", err)
	}
	return f, nil
}

// Checksum hashes the step and body states. The world id is left out so two
// worlds fed the same seed and inputs compare equal.
func (f Frame) Checksum() (uint64, error) {
	d := xxhash.New()
	var step [8]byte
	binary.LittleEndian.PutUint64(step[:], f.Step)
	_, _ = d.Write(step[:])
	if err := msgpack.NewEncoder(d).Encode(f.Bodies); err != nil {
		return 0, fmt.Errorf("checksum frame %d: %w", f.Step, err)
	}
	return d.Sum64(), nil
}
