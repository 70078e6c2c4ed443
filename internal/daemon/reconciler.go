package daemon

import (
	"context"
	"log/slog"
	"time"
)

// ReconcilerConfig holds configuration for the periodic resync loop.
type ReconcilerConfig struct {
	Interval time.Duration
	Logger   *slog.Logger
}

// Reconciler periodically re-runs a reconciliation pass to catch window
// changes that produced no event.
type Reconciler struct {
	interval  time.Duration
	reconcile func()
	logger    *slog.Logger
}

// NewReconciler creates a resync loop calling reconcile every interval.
func NewReconciler(cfg ReconcilerConfig, reconcile func()) *Reconciler {
	interval := cfg.Interval
	if interval <= 0 {
		interval = 10 * time.Second
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Reconciler{
		interval:  interval,
		reconcile: reconcile,
		logger:    logger,
	}
}

// Run starts the resync loop. Blocks until context is cancelled.
func (r *Reconciler) Run(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	r.logger.Info("resync started", "interval", r.interval)

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("resync stopped")
			return
		case <-ticker.C:
			r.tick()
		}
	}
}

func (r *Reconciler) tick() {
	// Recover from panics to prevent crashing the daemon
	defer func() {
		if err := recover(); err != nil {
			r.logger.Error("resync panic recovered", "error", err)
		}
	}()

	r.reconcile()
}
