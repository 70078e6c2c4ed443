package platform

// WindowID is a platform-neutral window identifier.
type WindowID uint32

// Rect describes a rectangular region in screen coordinates.
type Rect struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Empty reports whether the rectangle has no area.
func (r Rect) Empty() bool {
	return r.Width <= 0 || r.Height <= 0
}

// IntersectionArea returns the area shared by r and o. Rectangles that only
// touch along an edge share no area.
func (r Rect) IntersectionArea(o Rect) int {
	x1 := max(r.X, o.X)
	y1 := max(r.Y, o.Y)
	x2 := min(r.X+r.Width, o.X+o.Width)
	y2 := min(r.Y+r.Height, o.Y+o.Height)

	w := x2 - x1
	h := y2 - y1
	if w <= 0 || h <= 0 {
		return 0
	}
	return w * h
}

// Within reports whether every component of r is within tolerance of o.
func (r Rect) Within(o Rect, tolerance int) bool {
	return abs(r.X-o.X) <= tolerance &&
		abs(r.Y-o.Y) <= tolerance &&
		abs(r.Width-o.Width) <= tolerance &&
		abs(r.Height-o.Height) <= tolerance
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// Display describes a physical display and its usable work area.
type Display struct {
	ID      int
	Name    string
	Primary bool
	Bounds  Rect
	Usable  Rect
}

// WindowSnapshot is a read-only view of a top-level window taken at
// classification time.
type WindowSnapshot struct {
	ID            WindowID
	Title         string
	Frame         Rect
	Minimized     bool
	Visible       bool
	Screen        Rect
	ScreenVisible Rect
}

// Showing reports whether the window is on screen with a non-empty frame.
func (w WindowSnapshot) Showing() bool {
	return w.Visible && !w.Minimized && !w.Frame.Empty()
}

// DockElement is a rendered dock surface reported by the window system.
type DockElement struct {
	ID    WindowID
	Class string
	Frame Rect
}

// Backend abstracts the window-system queries the dock controller needs.
type Backend interface {
	PrimaryDisplay() (Display, error)
	Windows() ([]WindowSnapshot, error)
	FrontmostWindow() (*WindowSnapshot, error)
	DockElements(class string) ([]DockElement, error)
}
