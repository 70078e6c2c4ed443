// Package tray shows a system tray menu that drives the daemon over IPC.
package tray

import (
	"context"
	_ "embed"
	"fmt"
	"log/slog"
	"time"

	"github.com/1broseidon/autodock/internal/ipc"
	"github.com/getlantern/systray"
)

//go:embed icon.png
var iconData []byte

// DefaultPollInterval is how often the menu refreshes from the daemon.
const DefaultPollInterval = 2 * time.Second

// Client is the subset of the IPC client the menu uses.
type Client interface {
	GetStatus() (*ipc.StatusData, error)
	Start() error
	Stop() error
	Reconcile() (*ipc.DecisionData, error)
	RefreshGeometry() (*ipc.GeometryData, error)
}

// Tray is the menu controller.
type Tray struct {
	client Client
	logger *slog.Logger
	poll   time.Duration

	statusItem  *systray.MenuItem
	autoItem    *systray.MenuItem
	reconcileIt *systray.MenuItem
	refreshItem *systray.MenuItem
	quitItem    *systray.MenuItem

	cancel context.CancelFunc
}

// New creates a tray menu bound to client.
func New(client Client, logger *slog.Logger) *Tray {
	if logger == nil {
		logger = slog.Default()
	}
	return &Tray{client: client, logger: logger, poll: DefaultPollInterval}
}

// Run blocks running the tray until Quit is chosen.
func (t *Tray) Run() {
	systray.Run(t.onReady, t.onExit)
}

func (t *Tray) onReady() {
	systray.SetIcon(iconData)
	systray.SetTitle("autodock")
	systray.SetTooltip("autodock")

	t.statusItem = systray.AddMenuItem("Connecting…", "Daemon status")
	t.statusItem.Disable()
	systray.AddSeparator()
	t.autoItem = systray.AddMenuItemCheckbox("Hide dock automatically", "Pause or resume dock management", false)
	t.reconcileIt = systray.AddMenuItem("Reconcile now", "Re-evaluate the frontmost window")
	t.refreshItem = systray.AddMenuItem("Refresh dock geometry", "Re-measure the dock")
	systray.AddSeparator()
	t.quitItem = systray.AddMenuItem("Quit", "Close the tray menu")

	ctx, cancel := context.WithCancel(context.Background())
	t.cancel = cancel
	go t.handleMenuClicks(ctx)
	go t.pollStatus(ctx)
}

func (t *Tray) onExit() {
	if t.cancel != nil {
		t.cancel()
	}
}

func (t *Tray) handleMenuClicks(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.autoItem.ClickedCh:
			t.toggle()
		case <-t.reconcileIt.ClickedCh:
			if _, err := t.client.Reconcile(); err != nil {
				t.logger.Warn("reconcile failed", "error", err)
			}
			t.refresh()
		case <-t.refreshItem.ClickedCh:
			if _, err := t.client.RefreshGeometry(); err != nil {
				t.logger.Warn("refresh geometry failed", "error", err)
			}
			t.refresh()
		case <-t.quitItem.ClickedCh:
			systray.Quit()
			return
		}
	}
}

func (t *Tray) toggle() {
	var err error
	if t.autoItem.Checked() {
		err = t.client.Stop()
	} else {
		err = t.client.Start()
	}
	if err != nil {
		t.logger.Warn("toggle failed", "error", err)
	}
	t.refresh()
}

func (t *Tray) pollStatus(ctx context.Context) {
	ticker := time.NewTicker(t.poll)
	defer ticker.Stop()

	t.refresh()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			t.refresh()
		}
	}
}

func (t *Tray) refresh() {
	status, err := t.client.GetStatus()
	v := describe(status, err)

	t.statusItem.SetTitle(v.Title)
	systray.SetTooltip(v.Tooltip)
	if v.Running {
		t.autoItem.Check()
	} else {
		t.autoItem.Uncheck()
	}
	if v.Connected {
		t.autoItem.Enable()
		t.reconcileIt.Enable()
		t.refreshItem.Enable()
	} else {
		t.autoItem.Disable()
		t.reconcileIt.Disable()
		t.refreshItem.Disable()
	}
}

// view is what the menu shows for one status sample.
type view struct {
	Title     string
	Tooltip   string
	Running   bool
	Connected bool
}

func describe(status *ipc.StatusData, err error) view {
	if err != nil || status == nil {
		return view{Title: "Daemon not running", Tooltip: "autodock: daemon not running"}
	}

	v := view{Running: status.Running, Connected: true}
	if !status.Running {
		v.Title = "Paused"
		v.Tooltip = "autodock: paused"
		return v
	}

	state := status.State
	if !status.StateKnown {
		state = "unknown"
	}
	v.Title = fmt.Sprintf("Dock %s", state)
	v.Tooltip = fmt.Sprintf("autodock: dock %s", state)
	if d := status.LastDecision; d != nil {
		v.Tooltip += fmt.Sprintf(" (%s)", d.Reason)
		if d.Frontmost != "" {
			v.Tooltip += "\nFrontmost: " + d.Frontmost
		}
	}
	if status.DryRun {
		v.Title += " [dry run]"
	}
	return v
}
