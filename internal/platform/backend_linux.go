//go:build linux

package platform

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/1broseidon/autodock/internal/x11"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
)

// LinuxBackend wraps an X11 connection behind the Backend and EventSource
// interfaces.
type LinuxBackend struct {
	Dispatcher

	// Logger reports degraded event sources. Nil uses slog.Default.
	Logger *slog.Logger

	conn      *x11.Connection
	watcher   rootWatcher
	watchOnce sync.Once
	watchErr  error
}

// rootWatcher selects the X11 notifications behind Subscribe.
type rootWatcher interface {
	WatchRoot(h x11.RootHandlers) error
	WatchScreen(onScreen func()) error
}

var (
	_ Backend     = (*LinuxBackend)(nil)
	_ EventSource = (*LinuxBackend)(nil)
)

// NewLinuxBackend creates a Linux platform backend from an existing X11 connection.
func NewLinuxBackend(conn *x11.Connection) *LinuxBackend {
	return &LinuxBackend{conn: conn, watcher: conn}
}

// NewLinuxBackendFromDisplay opens a fresh X11 connection to display ("" uses
// $DISPLAY).
func NewLinuxBackendFromDisplay(display string) (*LinuxBackend, error) {
	conn, err := x11.NewConnection(display)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to X11: %w", err)
	}
	return &LinuxBackend{conn: conn, watcher: conn}, nil
}

// Disconnect closes the underlying X11 connection.
func (b *LinuxBackend) Disconnect() {
	if b != nil && b.conn != nil {
		b.conn.Close()
	}
}

// EventLoop starts the X11 event loop (blocking).
func (b *LinuxBackend) EventLoop() {
	if b != nil && b.conn != nil {
		b.conn.EventLoop()
	}
}

// Quit stops a running EventLoop.
func (b *LinuxBackend) Quit() {
	if b != nil && b.conn != nil {
		b.conn.Quit()
	}
}

// XUtil returns the underlying xgbutil connection for X11-specific operations.
func (b *LinuxBackend) XUtil() *xgbutil.XUtil {
	if b == nil || b.conn == nil {
		return nil
	}
	return b.conn.XUtil
}

// RootWindow returns the X11 root window ID.
func (b *LinuxBackend) RootWindow() xproto.Window {
	if b == nil || b.conn == nil {
		return 0
	}
	return b.conn.Root
}

// SendKeyChord synthesises a key chord such as "Mod4-Mod1-d".
func (b *LinuxBackend) SendKeyChord(chord string) error {
	conn, err := b.connection()
	if err != nil {
		return err
	}
	return conn.SendKeyChord(chord)
}

// PrimaryDisplay returns the primary monitor with its work area.
func (b *LinuxBackend) PrimaryDisplay() (Display, error) {
	conn, err := b.connection()
	if err != nil {
		return Display{}, err
	}

	mon, err := conn.GetPrimaryMonitor()
	if err != nil {
		return Display{}, err
	}
	return b.displayFromMonitor(*mon), nil
}

// Windows lists normal client windows. A window is Visible when it is mapped
// and on the current desktop.
func (b *LinuxBackend) Windows() ([]WindowSnapshot, error) {
	conn, err := b.connection()
	if err != nil {
		return nil, err
	}

	clients, err := conn.ClientWindows()
	if err != nil {
		return nil, err
	}

	monitors, _ := conn.GetMonitors()
	snapshots := make([]WindowSnapshot, 0, len(clients))
	for _, c := range clients {
		snapshots = append(snapshots, b.snapshot(c, monitors))
	}
	return snapshots, nil
}

// FrontmostWindow returns the focused window or nil when nothing has focus.
func (b *LinuxBackend) FrontmostWindow() (*WindowSnapshot, error) {
	conn, err := b.connection()
	if err != nil {
		return nil, err
	}

	active, err := conn.ActiveClientWindow()
	if err != nil {
		return nil, err
	}
	if active == nil {
		return nil, nil
	}

	monitors, _ := conn.GetMonitors()
	snap := b.snapshot(*active, monitors)
	return &snap, nil
}

// DockElements returns the mapped dock windows, optionally filtered by WM_CLASS.
func (b *LinuxBackend) DockElements(class string) ([]DockElement, error) {
	conn, err := b.connection()
	if err != nil {
		return nil, err
	}

	docks, err := conn.DockWindows(class)
	if err != nil {
		return nil, err
	}

	elements := make([]DockElement, 0, len(docks))
	for _, d := range docks {
		elements = append(elements, DockElement{
			ID:    WindowID(d.ID),
			Class: d.Class,
			Frame: Rect{X: d.X, Y: d.Y, Width: d.Width, Height: d.Height},
		})
	}
	return elements, nil
}

// Subscribe registers handler for kind. The first call selects root window
// events; a failure there rejects every subscription. Missing RandR only
// costs the RandR screen notifications, work area changes still arrive.
func (b *LinuxBackend) Subscribe(kind EventKind, handler func(Event)) (Subscription, error) {
	b.watchOnce.Do(func() {
		if b.watcher == nil {
			b.watchErr = fmt.Errorf("x11 backend connection is nil")
			return
		}
		onScreen := func() { b.Dispatch(Event{Kind: EventScreen}) }
		b.watchErr = b.watcher.WatchRoot(x11.RootHandlers{
			OnCreate:    b.forward(EventWindowCreated),
			OnDestroy:   b.forward(EventWindowDestroyed),
			OnConfigure: b.forward(EventWindowMoved),
			OnMap:       b.forward(EventWindowMinimized),
			OnUnmap:     b.forward(EventWindowMinimized),
			OnActive:    b.forward(EventWindowFocused),
			OnDesktop:   func() { b.Dispatch(Event{Kind: EventWorkspace}) },
			OnScreen:    onScreen,
		})
		if b.watchErr != nil {
			return
		}
		if err := b.watcher.WatchScreen(onScreen); err != nil {
			b.logger().Warn("randr screen events unavailable, using work area changes", "error", err)
		}
	})
	if b.watchErr != nil {
		return nil, b.watchErr
	}
	return b.Dispatcher.Subscribe(kind, handler)
}

func (b *LinuxBackend) logger() *slog.Logger {
	if b.Logger == nil {
		return slog.Default()
	}
	return b.Logger
}

func (b *LinuxBackend) forward(kind EventKind) func(uint32) {
	return func(window uint32) {
		b.Dispatch(Event{Kind: kind, Window: WindowID(window)})
	}
}

func (b *LinuxBackend) snapshot(c x11.ClientWindow, monitors []x11.Monitor) WindowSnapshot {
	snap := WindowSnapshot{
		ID:        WindowID(c.ID),
		Title:     c.Title,
		Frame:     Rect{X: c.X, Y: c.Y, Width: c.Width, Height: c.Height},
		Minimized: c.Minimized,
		Visible:   c.Mapped && c.OnDesktop,
	}

	mon := x11.MonitorAt(monitors, c.X+c.Width/2, c.Y+c.Height/2)
	if mon == nil {
		mon = x11.MonitorAt(monitors, c.X, c.Y)
	}
	if mon == nil && len(monitors) > 0 {
		mon = &monitors[0]
		for i := range monitors {
			if monitors[i].Primary {
				mon = &monitors[i]
			}
		}
	}
	if mon != nil {
		d := b.displayFromMonitor(*mon)
		snap.Screen = d.Bounds
		snap.ScreenVisible = d.Usable
	}
	return snap
}

func (b *LinuxBackend) connection() (*x11.Connection, error) {
	if b == nil || b.conn == nil {
		return nil, fmt.Errorf("x11 backend connection is nil")
	}
	return b.conn, nil
}

func (b *LinuxBackend) displayFromMonitor(m x11.Monitor) Display {
	bounds := Rect{
		X:      m.X,
		Y:      m.Y,
		Width:  m.Width,
		Height: m.Height,
	}
	x, y, w, h := b.conn.WorkArea(m)
	return Display{
		ID:      m.ID,
		Name:    m.Name,
		Primary: m.Primary,
		Bounds:  bounds,
		Usable:  Rect{X: x, Y: y, Width: w, Height: h},
	}
}
