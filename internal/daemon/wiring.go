package daemon

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/1broseidon/autodock/internal/config"
	"github.com/1broseidon/autodock/internal/dock"
	"github.com/1broseidon/autodock/internal/dockaccess"
	"github.com/1broseidon/autodock/internal/platform"
)

// Environment is the host side of a controller: window system, event source
// and optional key chord sender.
type Environment struct {
	Backend   platform.Backend
	Events    platform.EventSource
	Toggler   dockaccess.Toggler
	Scheduler Scheduler
	Logger    *slog.Logger

	// DryRun swaps the preference writer for an in-memory shim. Layout reads
	// still go to the configured backend.
	DryRun bool
}

// ControllerFactory builds a stopped controller for a config.
type ControllerFactory func(cfg *config.Config) (*Controller, error)

// ControllerConfig extracts the controller tunables from cfg.
func ControllerConfig(cfg *config.Config) Config {
	return Config{
		Debounce:        cfg.Debounce(),
		Tolerance:       cfg.MaximizeTolerance,
		GeometryRefresh: RefreshPolicy(cfg.Dock.GeometryRefresh),
		ResyncInterval:  cfg.ResyncInterval(),
		RestoreOnStop:   cfg.RestoreOnStop,
	}
}

// DockCommands converts the config command section.
func DockCommands(cfg *config.Config) dockaccess.Commands {
	c := cfg.Dock.Commands
	return dockaccess.Commands{
		Get:         c.Get,
		Set:         c.Set,
		Toggle:      c.Toggle,
		Orientation: c.Orientation,
		TileSize:    c.TileSize,
		HiddenValue: c.HiddenValue,
		ShownValue:  c.ShownValue,
		Timeout:     cfg.CommandTimeout(),
	}
}

// NewShim builds the dock preference shim for cfg. The second return value
// is the shim used for layout reads, which differs from the writer in dry-run.
func NewShim(cfg *config.Config, env Environment) (dockaccess.Shim, dockaccess.Shim, error) {
	shim, err := dockaccess.NewPreset(cfg.Dock.Backend, DockCommands(cfg))
	if err != nil {
		return nil, nil, fmt.Errorf("dock backend: %w", err)
	}
	if cs, ok := shim.(*dockaccess.CommandShim); ok && env.Toggler != nil && strings.TrimSpace(cfg.Dock.ToggleKeys) != "" {
		cs.WithToggler(env.Toggler, cfg.Dock.ToggleKeys)
	}
	if env.DryRun {
		return dockaccess.NewMemory(false), shim, nil
	}
	return shim, shim, nil
}

// NewGeometryProvider assembles the strategy chain for cfg.
func NewGeometryProvider(cfg *config.Config, backend platform.Backend, layout dock.Layout, logger *slog.Logger) *dock.Provider {
	orientation, err := dock.ParseOrientation(cfg.Dock.Orientation)
	if err != nil {
		logger.Warn("invalid dock orientation, using bottom", "error", err)
	}

	var strategies []dock.Strategy
	if cfg.Dock.Introspect {
		strategies = append(strategies, &dock.Introspector{
			Backend:     backend,
			Class:       cfg.Dock.WindowClass,
			Orientation: orientation,
		})
	}
	strategies = append(strategies, &dock.Formula{
		Backend: backend,
		Layout:  layout,
		Logger:  logger,
	})
	return dock.NewProvider(logger, strategies...)
}

// Factory returns a ControllerFactory bound to env.
func Factory(env Environment) ControllerFactory {
	return func(cfg *config.Config) (*Controller, error) {
		if env.Backend == nil {
			return nil, fmt.Errorf("no window system backend")
		}
		logger := env.Logger
		if logger == nil {
			logger = slog.Default()
		}

		writer, reader, err := NewShim(cfg, env)
		if err != nil {
			return nil, err
		}
		layout := dockaccess.NewPreferences(reader, cfg.Dock.Orientation, cfg.Dock.TileSize)

		return NewController(ControllerConfig(cfg), Deps{
			Backend:   env.Backend,
			Events:    env.Events,
			Shim:      writer,
			Geometry:  NewGeometryProvider(cfg, env.Backend, layout, logger),
			Scheduler: env.Scheduler,
			Logger:    logger,
		}), nil
	}
}
