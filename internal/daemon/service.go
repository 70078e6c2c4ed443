package daemon

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/1broseidon/autodock/internal/config"
	"github.com/1broseidon/autodock/internal/dock"
)

// ServiceOptions configure a Service.
type ServiceOptions struct {
	Config     *config.Config
	ConfigPath string
	Build      ControllerFactory
	// Load re-reads the configuration for Reload. Nil disables Reload.
	Load   func() (*config.Config, error)
	Logger *slog.Logger
	DryRun bool
	Now    func() time.Time
}

// Service owns the active controller and its configuration. It is what the
// control surface (IPC, hotkey, signals) talks to. A config change touching
// the dock section rebuilds the controller; other changes are applied in
// place.
type Service struct {
	build      ControllerFactory
	load       func() (*config.Config, error)
	logger     *slog.Logger
	now        func() time.Time
	dryRun     bool
	configPath string
	startedAt  time.Time

	// applyMu serialises reloads.
	applyMu sync.Mutex

	mu       sync.Mutex
	cfg      *config.Config
	ctrl     *Controller
	reloads  int
	onReload []func(*config.Config)
}

// ServiceStatus extends the controller status with daemon-level details.
type ServiceStatus struct {
	Status
	Backend             string `json:"backend"`
	DryRun              bool   `json:"dry_run"`
	DaemonUptimeSeconds int64  `json:"daemon_uptime_seconds"`
	ConfigPath          string `json:"config_path,omitempty"`
	Reloads             int    `json:"reloads"`
}

// NewService builds the initial controller. The controller is not started.
func NewService(opts ServiceOptions) (*Service, error) {
	if opts.Config == nil {
		return nil, fmt.Errorf("config is required")
	}
	if opts.Build == nil {
		return nil, fmt.Errorf("controller factory is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	ctrl, err := opts.Build(opts.Config)
	if err != nil {
		return nil, fmt.Errorf("failed to build controller: %w", err)
	}

	return &Service{
		build:      opts.Build,
		load:       opts.Load,
		logger:     logger,
		now:        now,
		dryRun:     opts.DryRun,
		configPath: opts.ConfigPath,
		startedAt:  now(),
		cfg:        opts.Config,
		ctrl:       ctrl,
	}, nil
}

func (s *Service) controller() *Controller {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ctrl
}

// Config returns the active configuration.
func (s *Service) Config() *config.Config {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cfg
}

// OnReload registers fn to run after every successful reload.
func (s *Service) OnReload(fn func(*config.Config)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onReload = append(s.onReload, fn)
}

// Start starts the controller.
func (s *Service) Start() error {
	s.logger.Info("autodock started")
	return s.controller().Start()
}

// Stop stops the controller. The daemon itself keeps running.
func (s *Service) Stop() error {
	s.controller().Stop()
	s.logger.Info("autodock stopped")
	return nil
}

// Toggle stops a running controller or starts a stopped one and reports
// whether it is running afterwards.
func (s *Service) Toggle() (bool, error) {
	ctrl := s.controller()
	if ctrl.Running() {
		ctrl.Stop()
		s.logger.Info("autodock paused")
		return false, nil
	}
	if err := ctrl.Start(); err != nil {
		return false, err
	}
	s.logger.Info("autodock resumed")
	return true, nil
}

// Reconcile runs a pass now.
func (s *Service) Reconcile() (Decision, error) {
	return s.controller().ReconcileNow()
}

// RefreshGeometry recomputes the dock rect.
func (s *Service) RefreshGeometry() dock.Geometry {
	return s.controller().RefreshGeometry()
}

// Status reports the current state.
func (s *Service) Status() ServiceStatus {
	ctrl := s.controller()
	st := ctrl.Status()

	s.mu.Lock()
	defer s.mu.Unlock()
	return ServiceStatus{
		Status:              st,
		Backend:             s.cfg.Dock.Backend,
		DryRun:              s.dryRun,
		DaemonUptimeSeconds: int64(s.now().Sub(s.startedAt).Seconds()),
		ConfigPath:          s.configPath,
		Reloads:             s.reloads,
	}
}

// Reload re-reads the configuration and applies it.
func (s *Service) Reload() error {
	if s.load == nil {
		return fmt.Errorf("reload is not supported")
	}
	cfg, err := s.load()
	if err != nil {
		return fmt.Errorf("failed to reload config: %w", err)
	}
	return s.Apply(cfg)
}

// Apply switches to cfg. If the controller cannot be rebuilt the previous
// configuration stays active.
func (s *Service) Apply(cfg *config.Config) error {
	if cfg == nil {
		return fmt.Errorf("config is required")
	}
	s.applyMu.Lock()
	defer s.applyMu.Unlock()

	s.mu.Lock()
	prev := s.cfg
	ctrl := s.ctrl
	s.mu.Unlock()

	if prev.Display != cfg.Display || prev.XAuthority != cfg.XAuthority {
		s.logger.Warn("display settings change requires a daemon restart")
	}

	if prev.Dock != cfg.Dock {
		next, err := s.build(cfg)
		if err != nil {
			return fmt.Errorf("failed to rebuild controller: %w", err)
		}
		wasRunning := ctrl.Running()
		// next takes the dock over in its current state.
		ctrl.halt(false)

		s.mu.Lock()
		s.ctrl = next
		s.mu.Unlock()

		if wasRunning {
			if err := next.Start(); err != nil {
				return err
			}
		}
		s.logger.Info("dock settings changed, controller rebuilt", "backend", cfg.Dock.Backend)
	} else {
		ctrl.UpdateConfig(ControllerConfig(cfg))
	}

	s.mu.Lock()
	s.cfg = cfg
	s.reloads++
	hooks := append([]func(*config.Config){}, s.onReload...)
	s.mu.Unlock()

	for _, fn := range hooks {
		fn(cfg)
	}
	s.logger.Info("config reloaded")
	return nil
}

// Close stops the controller for daemon shutdown.
func (s *Service) Close() {
	s.controller().Stop()
}
