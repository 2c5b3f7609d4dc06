// Package injector assembles the simulator from its configuration.
package injector

import (
	"context"
	"fmt"

	"github.com/google/wire"
	"golang.org/x/sync/errgroup"

	"github.com/zeusync/zeuphys/internal/config"
	"github.com/zeusync/zeuphys/internal/core/events"
	"github.com/zeusync/zeuphys/internal/core/level"
	"github.com/zeusync/zeuphys/internal/core/observability/log"
	"github.com/zeusync/zeuphys/internal/core/physics"
	"github.com/zeusync/zeuphys/internal/server"
	"github.com/zeusync/zeuphys/internal/sim"
)

var ProviderSet = wire.NewSet(
	ProvideLogger,
	ProvideHeightmap,
	ProvideWorld,
	ProvideFeed,
	ProvideBroadcaster,
	ProvideOptions,
	events.NewBus,
	sim.New,
	wire.Struct(new(App), "*"),
)

// App is the assembled simulator. Feed is nil when the server is disabled.
type App struct {
	Config config.Config
	Logger log.Log
	Sim    *sim.Simulation
	Feed   *server.Feed
}

func ProvideLogger(cfg config.Config) (log.Log, func()) {
	logger := log.New(cfg.Logging.Options())
	return logger, func() { _ = logger.Sync() }
}

func ProvideHeightmap(cfg config.Config, logger log.Log) (*level.Heightmap, error) {
	hm, err := cfg.Level.Heightmap()
	if err != nil {
		return nil, fmt.Errorf("level: %w", err)
	}
	logger.Info("level loaded",
		log.String("path", cfg.Level.Path),
		log.Int("width", hm.Width()),
		log.Int("depth", hm.Depth()),
	)
	return hm, nil
}

func ProvideWorld(cfg config.Config, logger log.Log, hm *level.Heightmap) (*physics.World, error) {
	return physics.NewWorld(cfg.Physics,
		physics.WithLogger(logger.Named("physics")),
		physics.WithHeightmap(hm),
	)
}

func ProvideFeed(cfg config.Config, logger log.Log) (*server.Feed, error) {
	if !cfg.Server.Enabled {
		return nil, nil
	}
	fc := server.DefaultConfig()
	fc.Addr = cfg.Server.Addr
	fc.WriteTimeout = cfg.Server.WriteTimeout
	fc.SendBuffer = cfg.Server.SendBuffer
	return server.NewFeed(fc, logger)
}

// ProvideBroadcaster keeps a disabled feed from turning into a non-nil
// interface holding a nil pointer.
func ProvideBroadcaster(feed *server.Feed) sim.Broadcaster {
	if feed == nil {
		return nil
	}
	return feed
}

func ProvideOptions(cfg config.Config) sim.Options {
	opts := sim.DefaultOptions()
	opts.StepInterval = cfg.Sim.StepInterval()
	opts.SnapshotEvery = cfg.Server.SnapshotEvery
	opts.MaxSteps = cfg.Sim.MaxSteps
	return opts
}

// Run spawns the demo scene when enabled, then runs the step loop and the
// feed until ctx is cancelled, either of them fails, or the step limit is
// reached.
func (a *App) Run(ctx context.Context) error {
	if a.Config.Sim.Demo {
		if _, err := sim.SpawnDemo(a.Sim, a.Config.Sim.DemoMinions); err != nil {
			return fmt.Errorf("spawn demo: %w", err)
		}
	}

	g, ctx := errgroup.WithContext(ctx)
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	g.Go(func() error {
		defer cancel()
		return a.Sim.Run(ctx)
	})
	if a.Feed != nil {
		g.Go(func() error {
			return a.Feed.Run(ctx)
		})
	}
	return g.Wait()
}
