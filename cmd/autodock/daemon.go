package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/1broseidon/autodock/internal/config"
	"github.com/1broseidon/autodock/internal/daemon"
	"github.com/1broseidon/autodock/internal/hotkeys"
	"github.com/1broseidon/autodock/internal/ipc"
	"github.com/1broseidon/autodock/internal/logging"
	"github.com/1broseidon/autodock/internal/platform"
)

func runDaemon(args []string) int {
	fs := flag.NewFlagSet("daemon", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	path := fs.String("path", "", "Config file path (default: ~/.config/autodock/config.yaml)")
	dryRun := fs.Bool("dry-run", false, "Decide and log, but never change the dock preference")
	noWatch := fs.Bool("no-watch", false, "Do not reload when the config file changes")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: autodock daemon [--path PATH] [--dry-run] [--no-watch]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Hide the dock while the frontmost window is maximized or covers it.")
		fmt.Fprintln(os.Stderr, "")
		fs.PrintDefaults()
	}
	if code := parseFlags(fs, args); code >= 0 {
		return code
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(os.Stderr, "daemon takes no arguments")
		fs.Usage()
		return 2
	}

	res, err := loadConfig(*path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		return 1
	}
	cfg := res.Config

	logger, level := logging.New(cfg.LogLevel, os.Stderr)
	logger.Info("configuration loaded",
		"path", res.Path,
		"file", res.Loaded,
		"backend", cfg.Dock.Backend,
		"dry_run", *dryRun)

	if cfg.XAuthority != "" {
		os.Setenv("XAUTHORITY", cfg.XAuthority)
	}
	backend, err := platform.NewLinuxBackendFromDisplay(cfg.Display)
	if err != nil {
		logger.Error("failed to connect to display", "error", err)
		return 1
	}
	defer backend.Disconnect()
	backend.Logger = logger

	svc, err := daemon.NewService(daemon.ServiceOptions{
		Config:     cfg,
		ConfigPath: res.Path,
		Build: daemon.Factory(daemon.Environment{
			Backend: backend,
			Events:  backend,
			Toggler: backend,
			Logger:  logger,
			DryRun:  *dryRun,
		}),
		Load: func() (*config.Config, error) {
			r, err := config.LoadFromPath(res.Path)
			if err != nil {
				return nil, err
			}
			return r.Config, nil
		},
		Logger: logger,
		DryRun: *dryRun,
	})
	if err != nil {
		logger.Error("failed to create controller", "error", err)
		return 1
	}
	defer svc.Close()

	hotkeyHandler := hotkeys.NewHandler(backend, svc, logger)
	if err := hotkeyHandler.Register(cfg.PauseHotkey); err != nil {
		logger.Warn("pause hotkey unavailable", "error", err)
	}
	svc.OnReload(func(c *config.Config) {
		if err := logging.SetLevel(level, c.LogLevel); err != nil {
			logger.Warn("invalid log level", "error", err)
		}
		if err := hotkeyHandler.Register(c.PauseHotkey); err != nil {
			logger.Warn("pause hotkey unavailable", "error", err)
		}
	})

	server, err := ipc.NewServer(svc, logger)
	if err != nil {
		logger.Error("failed to create IPC server", "error", err)
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := server.Serve(gctx); err != nil {
			return fmt.Errorf("IPC server: %w", err)
		}
		return nil
	})

	// The event loop only notices Quit on the next X event; closing the
	// connection on the way out unblocks it.
	go backend.EventLoop()
	g.Go(func() error {
		<-gctx.Done()
		backend.Quit()
		return nil
	})
	g.Go(func() error {
		hup := make(chan os.Signal, 1)
		signal.Notify(hup, syscall.SIGHUP)
		defer signal.Stop(hup)
		for {
			select {
			case <-gctx.Done():
				return nil
			case <-hup:
				logger.Info("received SIGHUP, reloading config")
				if err := svc.Reload(); err != nil {
					logger.Warn("config reload failed", "error", err)
				}
			}
		}
	})
	if !*noWatch {
		watcher := config.NewWatcher(res.Path, 0, logger, func(r *config.LoadResult, err error) {
			if err != nil {
				logger.Warn("config change ignored", "error", err)
				return
			}
			if err := svc.Apply(r.Config); err != nil {
				logger.Warn("config reload failed", "error", err)
			}
		})
		g.Go(func() error {
			if err := watcher.Run(gctx); err != nil {
				logger.Warn("config watcher stopped", "error", err)
			}
			return nil
		})
	}

	if err := svc.Start(); err != nil {
		logger.Error("failed to start controller", "error", err)
		stop()
	}

	logger.Info("entering event loop")
	if err := g.Wait(); err != nil {
		logger.Error("daemon stopped", "error", err)
		return 1
	}
	logger.Info("shutting down autodock daemon")
	return 0
}

func loadConfig(path string) (*config.LoadResult, error) {
	if path == "" {
		return config.LoadWithSources()
	}
	return config.LoadFromPath(path)
}
