package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/1broseidon/autodock/internal/dock"
	"github.com/1broseidon/autodock/internal/platform"
)

// RefreshPolicy controls when cached dock geometry is recomputed.
type RefreshPolicy string

const (
	// RefreshStartup computes geometry once per Start.
	RefreshStartup RefreshPolicy = "startup"
	// RefreshScreenChange recomputes after every screen change event.
	RefreshScreenChange RefreshPolicy = "screen_change"
	// RefreshEveryPass recomputes on every reconciliation.
	RefreshEveryPass RefreshPolicy = "every_pass"
)

// ErrNotRunning is returned by operations that need a started controller.
var ErrNotRunning = errors.New("controller is stopped")

// Config holds the controller's tunables.
type Config struct {
	Debounce        time.Duration
	Tolerance       int
	GeometryRefresh RefreshPolicy
	ResyncInterval  time.Duration
	RestoreOnStop   bool
}

// DefaultControllerConfig returns the built-in controller settings.
func DefaultControllerConfig() Config {
	return Config{
		Debounce:        DefaultDebounce,
		Tolerance:       dock.DefaultTolerance,
		GeometryRefresh: RefreshScreenChange,
		RestoreOnStop:   true,
	}
}

// Deps are the controller's collaborators.
type Deps struct {
	Backend   platform.Backend
	Events    platform.EventSource
	Shim      dock.Accessor
	Geometry  *dock.Provider
	Scheduler Scheduler
	Logger    *slog.Logger
	Now       func() time.Time
}

// Decision records the outcome of one reconciliation pass.
type Decision struct {
	Desired        string        `json:"desired"`
	Reason         dock.Reason   `json:"reason"`
	Changed        bool          `json:"changed"`
	VisibleWindows int           `json:"visible_windows"`
	Frontmost      string        `json:"frontmost,omitempty"`
	DockRect       platform.Rect `json:"dock_rect"`
	DockSource     dock.Source   `json:"dock_source"`
	Error          string        `json:"error,omitempty"`
	At             time.Time     `json:"at"`
}

// Controller keeps the dock's autohide state in line with the frontmost
// window. Reconciliation passes are serialised.
type Controller struct {
	backend  platform.Backend
	events   platform.EventSource
	store    *dock.Store
	geometry *dock.Provider
	logger   *slog.Logger
	now      func() time.Time

	// reconcileMu serialises passes and the restore write on Stop.
	reconcileMu sync.Mutex

	mu           sync.Mutex
	cfg          Config
	running      bool
	startedAt    time.Time
	passes       int
	last         *Decision
	debouncer    *Debouncer
	subs         *EventSubscriptionManager
	resyncCancel context.CancelFunc
}

// NewController builds a stopped controller.
func NewController(cfg Config, deps Deps) *Controller {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	geometry := deps.Geometry
	if geometry == nil {
		geometry = dock.NewProvider(logger,
			&dock.Formula{Backend: deps.Backend, Logger: logger},
		)
	}

	c := &Controller{
		backend:  deps.Backend,
		events:   deps.Events,
		store:    dock.NewStore(deps.Shim, logger),
		geometry: geometry,
		logger:   logger,
		now:      now,
		cfg:      normalizeConfig(cfg),
	}
	c.debouncer = NewDebouncer(deps.Scheduler, c.cfg.Debounce, c.fireReconcile)
	c.debouncer.Stop()
	c.subs = NewEventSubscriptionManager(deps.Events, c.debouncer, c.onScreenChange, logger)
	return c
}

func normalizeConfig(cfg Config) Config {
	if cfg.Debounce <= 0 {
		cfg.Debounce = DefaultDebounce
	}
	if cfg.Tolerance <= 0 {
		cfg.Tolerance = dock.DefaultTolerance
	}
	switch cfg.GeometryRefresh {
	case RefreshStartup, RefreshScreenChange, RefreshEveryPass:
	default:
		cfg.GeometryRefresh = RefreshScreenChange
	}
	return cfg
}

// Start initialises the state from the preference, computes geometry,
// subscribes to events and runs one immediate pass. Calling Start on a
// running controller does nothing.
func (c *Controller) Start() error {
	c.mu.Lock()
	if c.running {
		c.mu.Unlock()
		return nil
	}
	c.running = true
	c.startedAt = c.now()

	if state, err := c.store.Init(); err != nil {
		c.logger.Warn("dock state unknown at start", "error", err)
	} else {
		c.logger.Info("dock state at start", "state", state.String())
	}

	c.geometry.Invalidate()
	g := c.geometry.Compute()
	c.logger.Info("dock geometry", "source", g.Source, "rect", g.Rect)

	if c.events != nil {
		if err := c.subs.Start(); err != nil {
			c.logger.Warn("running without window events", "error", err)
		}
	} else {
		c.debouncer.Resume()
	}

	if c.cfg.ResyncInterval > 0 {
		c.startResync(c.cfg.ResyncInterval)
	}
	c.mu.Unlock()

	c.Reconcile()
	return nil
}

// Stop unsubscribes, cancels the pending debounce and the resync loop. With
// RestoreOnStop the dock is shown afterwards. Stopping a stopped controller
// does nothing.
func (c *Controller) Stop() {
	c.halt(true)
}

// halt stops the controller. A controller handing the dock over to its
// replacement halts without restoring.
func (c *Controller) halt(restore bool) {
	c.mu.Lock()
	if !c.running {
		c.mu.Unlock()
		return
	}
	c.running = false
	c.subs.Stop()
	c.stopResync()
	restore = restore && c.cfg.RestoreOnStop
	c.mu.Unlock()

	if restore {
		c.restoreShown()
	}
}

// restoreShown shows the dock unless the controller was started again after
// the stop that asked for the restore.
func (c *Controller) restoreShown() {
	c.reconcileMu.Lock()
	defer c.reconcileMu.Unlock()
	if c.Running() {
		return
	}
	changed, err := c.store.Apply(dock.Shown)
	if err != nil {
		c.logger.Warn("failed to restore dock on stop", "error", err)
		return
	}
	if changed {
		c.logger.Info("dock visibility changed", "from", dock.Hidden.String(), "to", dock.Shown.String(), "reason", "stopped")
	}
}

func (c *Controller) startResync(interval time.Duration) {
	ctx, cancel := context.WithCancel(context.Background())
	c.resyncCancel = cancel
	r := NewReconciler(ReconcilerConfig{Interval: interval, Logger: c.logger}, c.fireReconcile)
	go r.Run(ctx)
}

func (c *Controller) stopResync() {
	if c.resyncCancel != nil {
		c.resyncCancel()
		c.resyncCancel = nil
	}
}

// Running reports whether the controller has been started.
func (c *Controller) Running() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.running
}

func (c *Controller) onScreenChange() {
	c.mu.Lock()
	policy := c.cfg.GeometryRefresh
	c.mu.Unlock()

	if policy == RefreshScreenChange {
		c.logger.Debug("screen changed, invalidating dock geometry")
		c.geometry.Invalidate()
	}
}

// fireReconcile is the debounced and periodic entry point. It never runs a
// pass once Stop has begun.
func (c *Controller) fireReconcile() {
	c.reconcileMu.Lock()
	defer c.reconcileMu.Unlock()
	if !c.Running() {
		return
	}
	c.reconcileLocked()
}

// ReconcileNow runs a pass immediately. It fails when the controller is
// stopped.
func (c *Controller) ReconcileNow() (Decision, error) {
	c.reconcileMu.Lock()
	defer c.reconcileMu.Unlock()
	if !c.Running() {
		return Decision{}, ErrNotRunning
	}
	return c.reconcileLocked(), nil
}

// Reconcile runs one pass: show the dock when nothing is on screen, else hide
// it when the frontmost window is maximized or overlaps the dock. Failures and
// panics are logged and resolve to showing the dock.
func (c *Controller) Reconcile() Decision {
	c.reconcileMu.Lock()
	defer c.reconcileMu.Unlock()
	return c.reconcileLocked()
}

func (c *Controller) reconcileLocked() Decision {
	c.mu.Lock()
	cfg := c.cfg
	c.mu.Unlock()

	d := Decision{Desired: dock.Shown.String(), Reason: dock.ReasonNoWindow, At: c.now()}
	desired := c.safeDecide(cfg, &d)
	d.Desired = desired.String()

	changed, err := c.store.Apply(desired)
	if err != nil {
		c.logger.Warn("failed to apply dock state", "desired", desired.String(), "error", err)
		d.Error = err.Error()
		c.record(d)
		return d
	}
	d.Changed = changed
	if changed {
		from := dock.Hidden
		if desired == dock.Hidden {
			from = dock.Shown
		}
		c.logger.Info("dock visibility changed",
			"from", from.String(),
			"to", desired.String(),
			"reason", d.Reason,
			"frontmost", d.Frontmost)
	}
	c.record(d)
	return d
}

// safeDecide runs decide, turning a panic into a shown decision so the pass
// still applies it.
func (c *Controller) safeDecide(cfg Config, d *Decision) (state dock.VisibilityState) {
	defer func() {
		if err := recover(); err != nil {
			c.logger.Error("reconcile panic recovered, showing dock", "error", err)
			d.Error = fmt.Sprint(err)
			d.Reason = dock.ReasonNone
			state = dock.Shown
		}
	}()
	return c.decide(cfg, d)
}

func (c *Controller) decide(cfg Config, d *Decision) dock.VisibilityState {
	windows, err := c.backend.Windows()
	if err != nil {
		err = fmt.Errorf("%w: list windows: %v", dock.ErrCollaboratorUnavailable, err)
		c.logger.Warn("window list unavailable, showing dock", "error", err)
		d.Error = err.Error()
		return dock.Shown
	}

	for _, w := range windows {
		if w.Showing() {
			d.VisibleWindows++
		}
	}
	if d.VisibleWindows == 0 {
		return dock.Shown
	}

	if cfg.GeometryRefresh == RefreshEveryPass {
		c.geometry.Invalidate()
	}
	g := c.geometry.Current()
	d.DockRect = g.Rect
	d.DockSource = g.Source

	front, err := c.backend.FrontmostWindow()
	if err != nil {
		err = fmt.Errorf("%w: frontmost window: %v", dock.ErrCollaboratorUnavailable, err)
		c.logger.Warn("frontmost window unavailable, showing dock", "error", err)
		d.Error = err.Error()
		return dock.Shown
	}
	if front != nil {
		d.Frontmost = front.Title
	}

	classifier := dock.Classifier{Tolerance: cfg.Tolerance}
	hide, reason := classifier.Classify(front, g.Rect)
	d.Reason = reason
	return dock.StateFromHidden(hide)
}

func (c *Controller) record(d Decision) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.passes++
	c.last = &d
	c.logger.Debug("reconciled",
		"desired", d.Desired,
		"reason", d.Reason,
		"visible", d.VisibleWindows,
		"changed", d.Changed)
}

// RefreshGeometry recomputes the dock geometry and, when running, reconciles.
func (c *Controller) RefreshGeometry() dock.Geometry {
	c.geometry.Invalidate()
	g := c.geometry.Compute()
	if c.Running() {
		c.fireReconcile()
	}
	return g
}

// UpdateConfig applies new tunables. A running resync loop is restarted with
// the new interval.
func (c *Controller) UpdateConfig(cfg Config) {
	cfg = normalizeConfig(cfg)

	c.mu.Lock()
	defer c.mu.Unlock()

	prev := c.cfg
	c.cfg = cfg
	c.debouncer.SetDelay(cfg.Debounce)

	if prev.GeometryRefresh != cfg.GeometryRefresh {
		c.geometry.Invalidate()
	}
	if c.running && prev.ResyncInterval != cfg.ResyncInterval {
		c.stopResync()
		if cfg.ResyncInterval > 0 {
			c.startResync(cfg.ResyncInterval)
		}
	}
	c.logger.Info("controller config updated",
		"debounce", cfg.Debounce,
		"tolerance", cfg.Tolerance,
		"geometry_refresh", cfg.GeometryRefresh,
		"resync", cfg.ResyncInterval)
}

// LastDecision returns the most recent pass, if any.
func (c *Controller) LastDecision() (Decision, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.last == nil {
		return Decision{}, false
	}
	return *c.last, true
}

// Status is a point-in-time summary for the control surface.
type Status struct {
	Running         bool          `json:"running"`
	State           string        `json:"state"`
	StateKnown      bool          `json:"state_known"`
	Transitions     int           `json:"transitions"`
	Passes          int           `json:"passes"`
	UptimeSeconds   int64         `json:"uptime_seconds"`
	DockRect        platform.Rect `json:"dock_rect"`
	DockSource      dock.Source   `json:"dock_source"`
	DockOrientation string        `json:"dock_orientation"`
	DebounceMs      int64         `json:"debounce_ms"`
	DebouncedPasses int           `json:"debounced_passes"`
	GeometryRefresh RefreshPolicy `json:"geometry_refresh"`
	Subscribed      []string      `json:"subscribed"`
	PendingPass     bool          `json:"pending_pass"`
	LastDecision    *Decision     `json:"last_decision,omitempty"`
}

// Status reports the controller's current state.
func (c *Controller) Status() Status {
	state, known := c.store.Last()
	g := c.geometry.Current()

	c.mu.Lock()
	defer c.mu.Unlock()

	s := Status{
		Running:         c.running,
		State:           state.String(),
		StateKnown:      known,
		Transitions:     c.store.Transitions(),
		Passes:          c.passes,
		DockRect:        g.Rect,
		DockSource:      g.Source,
		DockOrientation: g.Orientation.String(),
		DebounceMs:      c.debouncer.Delay().Milliseconds(),
		DebouncedPasses: c.debouncer.Fired(),
		GeometryRefresh: c.cfg.GeometryRefresh,
		PendingPass:     c.debouncer.Pending(),
	}
	if c.running {
		s.UptimeSeconds = int64(c.now().Sub(c.startedAt).Seconds())
	}
	for _, kind := range c.subs.Active() {
		s.Subscribed = append(s.Subscribed, string(kind))
	}
	if c.last != nil {
		d := *c.last
		s.LastDecision = &d
	}
	return s
}
