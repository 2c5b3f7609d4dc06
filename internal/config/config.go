// Package config loads the YAML configuration of the physics simulator.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/zeusync/zeuphys/internal/core/level"
	"github.com/zeusync/zeuphys/internal/core/observability/log"
	"github.com/zeusync/zeuphys/internal/core/physics"
)

var ErrInvalid = errors.New("invalid configuration")

type Config struct {
	Physics physics.Config `yaml:"physics"`
	Level   LevelConfig    `yaml:"level"`
	Server  ServerConfig   `yaml:"server"`
	Sim     SimConfig      `yaml:"sim"`
	Logging LoggingConfig  `yaml:"logging"`
}

// LevelConfig names a heightmap file or embeds one. With neither set the
// simulator uses a flat Width x Depth level.
type LevelConfig struct {
	Path   string          `yaml:"path"`
	Inline *level.Document `yaml:"inline"`
	Width  int             `yaml:"width"`
	Depth  int             `yaml:"depth"`
}

type ServerConfig struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`
	// SnapshotEvery broadcasts one frame every N steps.
	SnapshotEvery int           `yaml:"snapshot_every"`
	WriteTimeout  time.Duration `yaml:"write_timeout"`
	// SendBuffer is the number of frames queued per viewer before it is dropped.
	SendBuffer int `yaml:"send_buffer"`
}

type SimConfig struct {
	// StepRate is the number of steps per second.
	StepRate    int  `yaml:"step_rate"`
	Demo        bool `yaml:"demo"`
	DemoMinions int  `yaml:"demo_minions"`
	// MaxSteps stops the run after N steps; zero runs until cancelled.
	MaxSteps uint64 `yaml:"max_steps"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

func Default() Config {
	return Config{
		Physics: physics.DefaultConfig(),
		Level:   LevelConfig{Width: 64, Depth: 64},
		Server: ServerConfig{
			Addr:          ":8090",
			SnapshotEvery: 2,
			WriteTimeout:  2 * time.Second,
			SendBuffer:    16,
		},
		Sim: SimConfig{
			StepRate:    30,
			Demo:        true,
			DemoMinions: 100,
		},
		Logging: LoggingConfig{Level: "info", Format: "json"},
	}
}

// Load overlays the YAML file at path on Default and validates the result.
func Load(path string) (Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}
	cfg, err := Parse(bytes.NewReader(raw))
	if err != nil {
		return Config{}, fmt.Errorf("load %s: %w", path, err)
	}
	return cfg, nil
}

// Parse is Load for an already opened document. An empty document yields the
// defaults.
func Parse(r io.Reader) (Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if err := c.Physics.Validate(); err != nil {
		return fmt.Errorf("physics: %w", err)
	}
	if c.Level.Path == "" && c.Level.Inline == nil && (c.Level.Width <= 0 || c.Level.Depth <= 0) {
		return fmt.Errorf("%w: level needs a path, inline rows or a positive size", ErrInvalid)
	}
	if c.Server.Enabled {
		switch {
		case c.Server.Addr == "":
			return fmt.Errorf("%w: server.addr is empty", ErrInvalid)
		case c.Server.SnapshotEvery <= 0:
			return fmt.Errorf("%w: server.snapshot_every must be positive, got %d", ErrInvalid, c.Server.SnapshotEvery)
		case c.Server.SendBuffer <= 0:
			return fmt.Errorf("%w: server.send_buffer must be positive, got %d", ErrInvalid, c.Server.SendBuffer)
		}
	}
	if c.Sim.StepRate <= 0 {
		return fmt.Errorf("%w: sim.step_rate must be positive, got %d", ErrInvalid, c.Sim.StepRate)
	}
	if c.Sim.DemoMinions < 0 {
		return fmt.Errorf("%w: sim.demo_minions must not be negative, got %d", ErrInvalid, c.Sim.DemoMinions)
	}
	switch c.Logging.Format {
	case "json", "console":
	default:
		return fmt.Errorf("%w: logging.format must be json or console, got %q", ErrInvalid, c.Logging.Format)
	}
	return nil
}

// StepInterval is the wall-clock duration of one step.
func (c SimConfig) StepInterval() time.Duration {
	return time.Second / time.Duration(c.StepRate)
}

// Heightmap builds the configured level.
func (c LevelConfig) Heightmap() (*level.Heightmap, error) {
	switch {
	case c.Path != "":
		return level.Load(c.Path)
	case c.Inline != nil:
		return c.Inline.Build()
	default:
		return level.Flat(c.Width, c.Depth, 0)
	}
}

func (c LoggingConfig) Options() log.Options {
	return log.Options{Level: log.ParseLevel(c.Level), Format: c.Format}
}
