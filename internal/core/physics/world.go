// Package physics is the step-driven collision engine for cylinder bodies
// moving over a tile height field.
//
// A World owns a fixed pool of bodies. Each Step moves every active body,
// advances the neighbor cache by one candidate, resolves body-body overlaps
// and finally collides bodies with the level. Game code holds Handles and
// re-resolves them every step; raw *Body values must not be kept across steps.
package physics

import (
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/zeusync/zeuphys/internal/core/level"
	"github.com/zeusync/zeuphys/internal/core/observability/log"
)

// Contact is a sensor hit recorded during a step, in recording order.
type Contact struct {
	Body  Handle
	Owner Handle
	Other Handle
	Group uint32
}

// WallHit is emitted each time the level collider clips a body against a wall.
type WallHit struct {
	Body   Handle
	Owner  Handle
	TileX  int
	TileZ  int
	AlongX bool
}

type World struct {
	cfg    Config
	logger log.Log

	bodies     []Body
	neighbors  []Neighbor
	generation uint32
	dirty      bool

	important []int
	minions   []int
	ordinary  []int
	classes   []Class

	cursor int
	step   uint64
	rng    *rand.Rand

	heightmap *level.Heightmap

	stats    Stats
	contacts []Contact
	wallHits []WallHit
}

type Option func(*World)

func WithLogger(l log.Log) Option {
	return func(w *World) {
		if l != nil {
			w.logger = l
		}
	}
}

// WithHeightmap installs the level at construction time.
func WithHeightmap(h *level.Heightmap) Option {
	return func(w *World) { w.heightmap = h }
}

// NewWorld allocates the pool and every neighbor table up front; nothing in
// Step allocates per body.
func NewWorld(cfg Config, opts ...Option) (*World, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	w := &World{
		cfg:       cfg,
		logger:    log.NewNop(),
		bodies:    make([]Body, cfg.PoolCapacity),
		neighbors: make([]Neighbor, cfg.PoolCapacity*cfg.NeighborSlots),
		important: make([]int, 0, cfg.PoolCapacity),
		minions:   make([]int, 0, cfg.PoolCapacity),
		ordinary:  make([]int, 0, cfg.PoolCapacity),
		classes:   make([]Class, cfg.PoolCapacity),
		rng:       rand.New(rand.NewPCG(cfg.Seed, cfg.Seed^0x9e3779b97f4a7c15)),
		contacts:  make([]Contact, 0, 64),
	}
	for i := range w.bodies {
		w.bodies[i].reset(w.neighborTable(i))
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

func (w *World) neighborTable(slot int) []Neighbor {
	k := w.cfg.NeighborSlots
	return w.neighbors[slot*k : (slot+1)*k : (slot+1)*k]
}

func (w *World) Config() Config { return w.cfg }

// StepCount is the number of completed steps.
func (w *World) StepCount() uint64 { return w.step }

// Stats returns the counters of the last completed step.
func (w *World) Stats() Stats { return w.stats }

// Contacts returns the sensor hits of the last step. Valid until the next Step.
func (w *World) Contacts() []Contact { return w.contacts }

// WallHits returns the wall clips of the last step. Valid until the next Step.
func (w *World) WallHits() []WallHit { return w.wallHits }

// SetHeightmap replaces the level. A nil heightmap disables level collision.
func (w *World) SetHeightmap(h *level.Heightmap) {
	w.heightmap = h
	if h != nil {
		w.logger.Info("heightmap installed", log.Int("width", h.Width()), log.Int("depth", h.Depth()))
	}
}

func (w *World) Heightmap() *level.Heightmap { return w.heightmap }

// Allocate claims the first free slot for owner. Slept bodies keep their
// slot. On exhaustion it returns a nil body and ErrPoolExhausted.
func (w *World) Allocate(owner Handle) (*Body, error) {
	for i := range w.bodies {
		b := &w.bodies[i]
		if b.active || b.handle.Type != HandleNone {
			continue
		}
		b.reset(w.neighborTable(i))
		b.active = true
		b.Owner = owner
		b.handle = Handle{ID: uint32(i), Generation: w.generation, Type: HandleBody}
		w.dirty = true
		return b, nil
	}
	w.logger.Warn("body pool exhausted",
		log.Int("capacity", len(w.bodies)),
		log.Uint32("owner_id", owner.ID),
	)
	return nil, fmt.Errorf("%w: capacity %d", ErrPoolExhausted, len(w.bodies))
}

// Free releases a body. Freeing nil or an already freed body is a no-op.
func (w *World) Free(b *Body) {
	if b == nil || b.handle.Type == HandleNone {
		return
	}
	b.Owner = Handle{}
	b.active = false
	b.handle.Type = HandleNone
	w.generation++
	w.dirty = true
}

// Resolve returns the body behind h, or false if h is out of range, the slot
// is inactive or the slot has been reused since h was issued.
func (w *World) Resolve(h Handle) (*Body, bool) {
	if h.ID >= uint32(len(w.bodies)) {
		return nil, false
	}
	b := &w.bodies[h.ID]
	if !b.active || !b.handle.Matches(h) {
		return nil, false
	}
	return b, true
}

// MustResolve is Resolve with an error result for callers that propagate errors.
func (w *World) MustResolve(h Handle) (*Body, error) {
	b, ok := w.Resolve(h)
	if !ok {
		return nil, fmt.Errorf("%w: id=%d gen=%d", ErrStaleHandle, h.ID, h.Generation)
	}
	return b, nil
}

// Wake reactivates a slept body. Its handle stays valid.
func (w *World) Wake(b *Body) {
	if b == nil || b.handle.Type == HandleNone {
		return
	}
	b.active = true
	w.dirty = true
}

// Sleep removes a body from simulation without invalidating its slot.
func (w *World) Sleep(b *Body) {
	if b == nil {
		return
	}
	b.active = false
	w.dirty = true
}

// MarkDirty requests a classification rebuild, for callers that changed
// IsImportant or IsMinion on a live body.
func (w *World) MarkDirty() { w.dirty = true }

// Reset frees every body and rebuilds the index.
func (w *World) Reset() {
	for i := range w.bodies {
		w.Free(&w.bodies[i])
	}
	w.rebuildIndex()
	w.cursor = 0
}

// ActiveCount returns the number of classified bodies as of the last rebuild.
func (w *World) ActiveCount() int {
	return len(w.important) + len(w.minions) + len(w.ordinary)
}

// Each calls fn for every active body in slot order.
func (w *World) Each(fn func(b *Body)) {
	for i := range w.bodies {
		if w.bodies[i].active {
			fn(&w.bodies[i])
		}
	}
}

// Step advances the simulation by one fixed step.
func (w *World) Step() Stats {
	start := time.Now()
	w.stats = Stats{Step: w.step}
	w.contacts = w.contacts[:0]
	w.wallHits = w.wallHits[:0]

	if w.dirty {
		w.rebuildIndex()
		w.stats.Rebuilt = true
	}
	w.stats.Important = len(w.important)
	w.stats.Ordinary = len(w.ordinary)
	w.stats.Minions = len(w.minions)

	mark := time.Now()
	w.moveBodies()
	w.stats.Move = time.Since(mark)

	mark = time.Now()
	w.updateNeighbors()
	w.stats.Neighbors = time.Since(mark)

	w.collideBodies()

	mark = time.Now()
	w.collideLevel()
	w.stats.Level = time.Since(mark)

	w.step++
	w.stats.WallHits = len(w.wallHits)
	w.stats.Total = time.Since(start)
	return w.stats
}

func (w *World) moveBodies() {
	for _, list := range [...][]int{w.important, w.ordinary, w.minions} {
		for _, i := range list {
			b := &w.bodies[i]
			b.prepare()
			w.integrate(b)
		}
	}
}

func (w *World) integrate(b *Body) {
	b.Position = b.Position.Add(b.Velocity)
	b.Velocity = b.Velocity.Add(b.Acceleration)
	if b.AffectedByGravity {
		b.Velocity[1] -= w.cfg.Gravity
	}
}
