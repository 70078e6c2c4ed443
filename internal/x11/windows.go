package x11

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/ewmh"
	"github.com/BurntSushi/xgbutil/icccm"
)

// ClientWindow is the raw X11 view of a managed top-level window.
type ClientWindow struct {
	ID        xproto.Window
	Title     string
	Class     string
	X         int
	Y         int
	Width     int
	Height    int
	Mapped    bool
	Minimized bool
	// OnDesktop is false when the window lives on another virtual desktop.
	OnDesktop bool
}

// ClientWindows lists the normal application windows from _NET_CLIENT_LIST
// with their frame geometry (decorations included).
func (c *Connection) ClientWindows() ([]ClientWindow, error) {
	clients, err := ewmh.ClientListGet(c.XUtil)
	if err != nil {
		return nil, fmt.Errorf("failed to get client list: %w", err)
	}

	current, desktopErr := ewmh.CurrentDesktopGet(c.XUtil)

	windows := make([]ClientWindow, 0, len(clients))
	for _, windowID := range clients {
		if !c.IsNormalWindow(windowID) {
			continue
		}
		win, ok := c.clientWindow(windowID)
		if !ok {
			continue
		}
		win.OnDesktop = desktopErr != nil || c.onDesktop(windowID, current)
		windows = append(windows, win)
	}
	return windows, nil
}

// onDesktop reports whether the window is shown on desktop. Sticky windows
// (_NET_WM_DESKTOP 0xFFFFFFFF) and windows without the property count as
// shown everywhere.
func (c *Connection) onDesktop(windowID xproto.Window, desktop uint) bool {
	d, err := ewmh.WmDesktopGet(c.XUtil, windowID)
	if err != nil || d == 0xFFFFFFFF {
		return true
	}
	return d == desktop
}

// ActiveClientWindow returns the window named by _NET_ACTIVE_WINDOW, or nil
// when no window has focus or the focused window is not a normal window.
func (c *Connection) ActiveClientWindow() (*ClientWindow, error) {
	active, err := c.GetActiveWindow()
	if err != nil {
		return nil, err
	}
	if active == 0 || active == c.Root || !c.IsNormalWindow(active) {
		return nil, nil
	}
	win, ok := c.clientWindow(active)
	if !ok {
		return nil, nil
	}
	win.OnDesktop = true
	return &win, nil
}

// DockWindows returns windows typed _NET_WM_WINDOW_TYPE_DOCK. Docks that are
// not listed in _NET_CLIENT_LIST are found by walking the root's children.
// When class is set only docks whose WM_CLASS matches it are returned.
func (c *Connection) DockWindows(class string) ([]ClientWindow, error) {
	candidates, err := ewmh.ClientListGet(c.XUtil)
	if err != nil {
		candidates = nil
	}

	docks := c.filterDocks(candidates, class)
	if len(docks) > 0 {
		return docks, nil
	}

	tree, err := xproto.QueryTree(c.XUtil.Conn(), c.Root).Reply()
	if err != nil {
		return nil, fmt.Errorf("failed to query root tree: %w", err)
	}
	return c.filterDocks(tree.Children, class), nil
}

func (c *Connection) filterDocks(candidates []xproto.Window, class string) []ClientWindow {
	var docks []ClientWindow
	for _, windowID := range candidates {
		if !c.hasWindowType(windowID, "_NET_WM_WINDOW_TYPE_DOCK") {
			continue
		}
		win, ok := c.clientWindow(windowID)
		if !ok || !win.Mapped {
			continue
		}
		if class != "" && !strings.EqualFold(win.Class, class) {
			continue
		}
		docks = append(docks, win)
	}
	return docks
}

func (c *Connection) clientWindow(windowID xproto.Window) (ClientWindow, bool) {
	x, y, w, h, ok := c.windowRect(windowID)
	if !ok {
		return ClientWindow{}, false
	}

	left, right, top, bottom, _ := c.GetFrameExtents(windowID)

	win := ClientWindow{
		ID:        windowID,
		Title:     c.windowTitle(windowID),
		Class:     c.windowClass(windowID),
		X:         x - left,
		Y:         y - top,
		Width:     w + left + right,
		Height:    h + top + bottom,
		Minimized: c.isMinimized(windowID),
	}

	if attrs, err := xproto.GetWindowAttributes(c.XUtil.Conn(), windowID).Reply(); err == nil {
		win.Mapped = attrs.MapState == xproto.MapStateViewable
	}
	return win, true
}

func (c *Connection) windowRect(windowID xproto.Window) (x, y, width, height int, ok bool) {
	geom, err := xproto.GetGeometry(c.XUtil.Conn(), xproto.Drawable(windowID)).Reply()
	if err != nil {
		return 0, 0, 0, 0, false
	}

	translate, err := xproto.TranslateCoordinates(
		c.XUtil.Conn(),
		windowID,
		c.Root,
		0, 0,
	).Reply()
	if err != nil {
		return 0, 0, 0, 0, false
	}

	return int(translate.DstX), int(translate.DstY), int(geom.Width), int(geom.Height), true
}

func (c *Connection) isMinimized(windowID xproto.Window) bool {
	if states, err := ewmh.WmStateGet(c.XUtil, windowID); err == nil {
		for _, state := range states {
			if state == "_NET_WM_STATE_HIDDEN" {
				return true
			}
		}
	}
	if state, err := icccm.WmStateGet(c.XUtil, windowID); err == nil && state.State == icccm.StateIconic {
		return true
	}
	return false
}

// GetFrameExtents returns the window decoration sizes (if available)
func (c *Connection) GetFrameExtents(windowID xproto.Window) (left, right, top, bottom int, err error) {
	extents, err := ewmh.FrameExtentsGet(c.XUtil, windowID)
	if err != nil {
		// No frame extents available, return zeros
		return 0, 0, 0, 0, nil
	}

	return int(extents.Left), int(extents.Right), int(extents.Top), int(extents.Bottom), nil
}

// IsNormalWindow checks if a window is a normal application window
func (c *Connection) IsNormalWindow(windowID xproto.Window) bool {
	types, err := ewmh.WmWindowTypeGet(c.XUtil, windowID)
	if err != nil {
		// If we can't determine type, assume it's normal
		return true
	}

	for _, t := range types {
		if t == "_NET_WM_WINDOW_TYPE_NORMAL" || t == "_NET_WM_WINDOW_TYPE_DIALOG" {
			return true
		}
		// Reject desktop, dock, splash, etc.
		if t == "_NET_WM_WINDOW_TYPE_DESKTOP" ||
			t == "_NET_WM_WINDOW_TYPE_DOCK" ||
			t == "_NET_WM_WINDOW_TYPE_SPLASH" ||
			t == "_NET_WM_WINDOW_TYPE_NOTIFICATION" {
			return false
		}
	}

	// If no specific type is set, assume it's normal
	return len(types) == 0
}

func (c *Connection) hasWindowType(windowID xproto.Window, want string) bool {
	types, err := ewmh.WmWindowTypeGet(c.XUtil, windowID)
	if err != nil {
		return false
	}
	for _, t := range types {
		if t == want {
			return true
		}
	}
	return false
}

func (c *Connection) GetActiveWindow() (xproto.Window, error) {
	return ewmh.ActiveWindowGet(c.XUtil)
}

func (c *Connection) windowClass(windowID xproto.Window) string {
	wmClass, err := icccm.WmClassGet(c.XUtil, windowID)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(wmClass.Class)
}

func (c *Connection) windowTitle(windowID xproto.Window) string {
	title, err := ewmh.WmNameGet(c.XUtil, windowID)
	if err == nil {
		title = strings.TrimSpace(title)
		if title != "" {
			return title
		}
	}

	title, err = icccm.WmNameGet(c.XUtil, windowID)
	if err == nil {
		return strings.TrimSpace(title)
	}
	return ""
}
