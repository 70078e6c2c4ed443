package x11

import (
	"fmt"

	"github.com/BurntSushi/xgb/randr"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/xevent"
	"github.com/BurntSushi/xgbutil/xprop"
	"github.com/BurntSushi/xgbutil/xwindow"
)

// RootHandlers receives notifications selected on the root window. Nil
// callbacks are skipped. The window argument is the X11 window the event
// refers to, or 0 for desktop-wide events.
type RootHandlers struct {
	OnCreate    func(window uint32)
	OnDestroy   func(window uint32)
	OnConfigure func(window uint32)
	OnMap       func(window uint32)
	OnUnmap     func(window uint32)
	OnActive    func(window uint32)
	OnDesktop   func()
	OnScreen    func()
}

// WatchRoot selects substructure and property notifications on the root
// window and routes them to h.
// Events are delivered from EventLoop.
func (c *Connection) WatchRoot(h RootHandlers) error {
	root := xwindow.New(c.XUtil, c.Root)
	if err := root.Listen(xproto.EventMaskPropertyChange, xproto.EventMaskSubstructureNotify); err != nil {
		return fmt.Errorf("failed to select root events: %w", err)
	}

	xevent.CreateNotifyFun(func(_ *xgbutil.XUtil, ev xevent.CreateNotifyEvent) {
		call(h.OnCreate, uint32(ev.Window))
	}).Connect(c.XUtil, c.Root)

	xevent.DestroyNotifyFun(func(_ *xgbutil.XUtil, ev xevent.DestroyNotifyEvent) {
		call(h.OnDestroy, uint32(ev.Window))
	}).Connect(c.XUtil, c.Root)

	xevent.ConfigureNotifyFun(func(_ *xgbutil.XUtil, ev xevent.ConfigureNotifyEvent) {
		call(h.OnConfigure, uint32(ev.Window))
	}).Connect(c.XUtil, c.Root)

	xevent.MapNotifyFun(func(_ *xgbutil.XUtil, ev xevent.MapNotifyEvent) {
		call(h.OnMap, uint32(ev.Window))
	}).Connect(c.XUtil, c.Root)

	xevent.UnmapNotifyFun(func(_ *xgbutil.XUtil, ev xevent.UnmapNotifyEvent) {
		call(h.OnUnmap, uint32(ev.Window))
	}).Connect(c.XUtil, c.Root)

	xevent.PropertyNotifyFun(func(xu *xgbutil.XUtil, ev xevent.PropertyNotifyEvent) {
		name, err := xprop.AtomName(xu, ev.Atom)
		if err != nil {
			return
		}
		switch name {
		case "_NET_ACTIVE_WINDOW":
			if h.OnActive == nil {
				return
			}
			active, _ := c.GetActiveWindow()
			h.OnActive(uint32(active))
		case "_NET_CURRENT_DESKTOP":
			if h.OnDesktop != nil {
				h.OnDesktop()
			}
		case "_NET_WORKAREA", "_NET_DESKTOP_GEOMETRY":
			if h.OnScreen != nil {
				h.OnScreen()
			}
		}
	}).Connect(c.XUtil, c.Root)

	return nil
}

// WatchScreen selects RandR screen-change notifications on the root window
// and calls onScreen for each. Without RandR, screen changes still surface
// through the _NET_DESKTOP_GEOMETRY and _NET_WORKAREA handling in WatchRoot.
func (c *Connection) WatchScreen(onScreen func()) error {
	if err := randr.Init(c.XUtil.Conn()); err != nil {
		return fmt.Errorf("randr init failed: %w", err)
	}
	if err := randr.SelectInputChecked(c.XUtil.Conn(), c.Root, randr.NotifyMaskScreenChange).Check(); err != nil {
		return fmt.Errorf("failed to select randr events: %w", err)
	}
	xevent.HookFun(func(_ *xgbutil.XUtil, ev interface{}) bool {
		switch ev.(type) {
		case randr.ScreenChangeNotifyEvent, *randr.ScreenChangeNotifyEvent:
			if onScreen != nil {
				onScreen()
			}
		}
		return true
	}).Connect(c.XUtil)
	return nil
}

func call(fn func(uint32), window uint32) {
	if fn != nil {
		fn(window)
	}
}
