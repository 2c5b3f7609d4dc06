package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/zeusync/zeuphys/internal/config"
	"github.com/zeusync/zeuphys/internal/core/observability/log"
	"github.com/zeusync/zeuphys/internal/injector"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML config file; defaults are used when empty")
	levelPath := flag.String("level", "", "heightmap file overriding level.path")
	serve := flag.Bool("serve", false, "enable the viewer feed")
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(2)
	}
	if *levelPath != "" {
		cfg.Level.Path = *levelPath
	}
	if *serve {
		cfg.Server.Enabled = true
	}
	if err = cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(2)
	}

	app, cleanup, err := injector.InitializeApp(cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, "startup:", err)
		os.Exit(1)
	}
	defer cleanup()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err = app.Run(ctx); err != nil {
		app.Logger.Error("simulator stopped", log.Error(err))
		cleanup()
		os.Exit(1)
	}
}

func loadConfig(path string) (config.Config, error) {
	if path == "" {
		return config.Default(), nil
	}
	return config.Load(path)
}
