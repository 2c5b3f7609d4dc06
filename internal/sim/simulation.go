// Package sim drives a physics world at a fixed rate and connects it to the
// event bus and the viewer feed.
package sim

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/zeusync/zeuphys/internal/core/events"
	"github.com/zeusync/zeuphys/internal/core/observability/log"
	"github.com/zeusync/zeuphys/internal/core/physics"
	"github.com/zeusync/zeuphys/internal/core/snapshot"
)

type Options struct {
	StepInterval time.Duration
	// SnapshotEvery broadcasts a frame every N steps when a feed is attached.
	SnapshotEvery int
	// MaxSteps ends Run after that many world steps; zero means no limit.
	MaxSteps uint64
	// ReportEvery logs step statistics every N steps; zero disables it.
	ReportEvery uint64
}

func DefaultOptions() Options {
	return Options{
		StepInterval:  time.Second / 30,
		SnapshotEvery: 2,
		ReportEvery:   300,
	}
}

// Broadcaster receives encoded frames. *server.Feed implements it.
type Broadcaster interface {
	Broadcast(frame []byte)
}

// Steering writes body velocities before each step. It is the seam where game
// AI plugs in.
type Steering func(s *Simulation, step uint64)

type Simulation struct {
	id     string
	opts   Options
	world  *physics.World
	bus    *events.Bus
	feed   Broadcaster
	logger log.Log

	steering []Steering
	last     physics.Stats
}

// New wires a simulation. feed may be nil.
func New(opts Options, world *physics.World, bus *events.Bus, feed Broadcaster, logger log.Log) *Simulation {
	if logger == nil {
		logger = log.NewNop()
	}
	if bus == nil {
		bus = events.NewBus()
	}
	if opts.StepInterval <= 0 {
		opts.StepInterval = DefaultOptions().StepInterval
	}
	if opts.SnapshotEvery <= 0 {
		opts.SnapshotEvery = 1
	}
	id := uuid.NewString()
	return &Simulation{
		id:     id,
		opts:   opts,
		world:  world,
		bus:    bus,
		feed:   feed,
		logger: logger.Named("sim").With(log.String("world", id)),
	}
}

func (s *Simulation) ID() string               { return s.id }
func (s *Simulation) World() *physics.World    { return s.world }
func (s *Simulation) Bus() *events.Bus         { return s.bus }
func (s *Simulation) LastStats() physics.Stats { return s.last }

// AddSteering appends fn to the callbacks run before every step, in order.
func (s *Simulation) AddSteering(fn Steering) {
	if fn != nil {
		s.steering = append(s.steering, fn)
	}
}

// Spawn allocates a body for owner and lets setup initialize it. Pool
// exhaustion is published as a pool.exhausted event and returned.
func (s *Simulation) Spawn(owner physics.Handle, setup func(b *physics.Body)) (physics.Handle, error) {
	b, err := s.world.Allocate(owner)
	if err != nil {
		if errors.Is(err, physics.ErrPoolExhausted) {
			if perr := s.bus.Publish(events.NewEvent(events.KindPoolExhausted, s.world.StepCount(), owner)); perr != nil {
				err = errors.Join(err, perr)
			}
		}
		return physics.Handle{}, err
	}
	if setup != nil {
		setup(b)
	}
	return b.Handle(), nil
}

// Despawn frees the body behind h. Stale handles are ignored.
func (s *Simulation) Despawn(h physics.Handle) {
	if b, ok := s.world.Resolve(h); ok {
		s.world.Free(b)
	}
}

// Step runs steering, advances the world once, publishes the step's contacts
// and wall hits and broadcasts a frame when one is due. Handler and encoding
// failures are returned joined; the world state is already advanced.
func (s *Simulation) Step() (physics.Stats, error) {
	step := s.world.StepCount()
	for _, fn := range s.steering {
		fn(s, step)
	}

	s.last = s.world.Step()

	var errs error
	if err := s.publish(step); err != nil {
		errs = errors.Join(errs, err)
	}
	if s.feed != nil && s.world.StepCount()%uint64(s.opts.SnapshotEvery) == 0 {
		if err := s.broadcast(); err != nil {
			errs = errors.Join(errs, err)
		}
	}
	return s.last, errs
}

func (s *Simulation) publish(step uint64) error {
	contacts := s.world.Contacts()
	hits := s.world.WallHits()
	if len(contacts)+len(hits) == 0 {
		return nil
	}
	batch := make([]events.Event, 0, len(contacts)+len(hits))
	for _, c := range contacts {
		batch = append(batch, events.NewEvent(events.KindSensorContact, step, c))
	}
	for _, h := range hits {
		batch = append(batch, events.NewEvent(events.KindLevelWall, step, h))
	}
	return s.bus.PublishBatch(batch...)
}

func (s *Simulation) broadcast() error {
	data, err := s.Snapshot().Encode()
	if err != nil {
		return err
	}
	s.feed.Broadcast(data)
	return nil
}

// Snapshot captures the current world state.
func (s *Simulation) Snapshot() snapshot.Frame {
	return snapshot.Capture(s.world, s.id)
}

// Checksum hashes the current world state; see snapshot.Frame.Checksum.
func (s *Simulation) Checksum() (uint64, error) {
	return s.Snapshot().Checksum()
}

// Run steps the world every StepInterval until ctx is cancelled or MaxSteps
// is reached. Failed event handlers are logged and do not stop the loop.
func (s *Simulation) Run(ctx context.Context) error {
	if s.world == nil {
		return fmt.Errorf("run simulation %s: no world", s.id)
	}
	ticker := time.NewTicker(s.opts.StepInterval)
	defer ticker.Stop()

	s.logger.Info("simulation started",
		log.Duration("interval", s.opts.StepInterval),
		log.Int("bodies", s.world.ActiveCount()),
	)
	for {
		select {
		case <-ctx.Done():
			s.logger.Info("simulation stopped", log.Uint64("step", s.world.StepCount()))
			return nil
		case <-ticker.C:
		}

		stats, err := s.Step()
		if err != nil {
			s.logger.Warn("step side effects failed", log.Uint64("step", stats.Step), log.Error(err))
		}
		if stats.Total > s.opts.StepInterval {
			s.logger.Debug("step over budget",
				log.Uint64("step", stats.Step),
				log.Duration("took", stats.Total),
				log.Duration("budget", s.opts.StepInterval),
			)
		}
		if s.opts.ReportEvery > 0 && s.world.StepCount()%s.opts.ReportEvery == 0 {
			s.report(stats)
		}
		if s.opts.MaxSteps > 0 && s.world.StepCount() >= s.opts.MaxSteps {
			s.logger.Info("step limit reached", log.Uint64("step", s.world.StepCount()))
			return nil
		}
	}
}

func (s *Simulation) report(stats physics.Stats) {
	s.logger.Info("step stats",
		log.Uint64("step", stats.Step),
		log.Int("important", stats.Important),
		log.Int("ordinary", stats.Ordinary),
		log.Int("minions", stats.Minions),
		log.Int("overlapping", stats.BodiesOverlapping),
		log.Int("collisions", stats.TotalCollisions),
		log.Int("wall_hits", stats.WallHits),
		log.Duration("total", stats.Total),
	)
}
