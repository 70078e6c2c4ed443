package dock

import "github.com/1broseidon/autodock/internal/platform"

// DefaultTolerance is the per-component slack, in pixels, used when deciding
// that a window fills the screen.
const DefaultTolerance = 4

// Reason explains a classification.
type Reason string

const (
	ReasonNone      Reason = "none"
	ReasonNoWindow  Reason = "no-window"
	ReasonMaximized Reason = "maximized"
	ReasonOverlap   Reason = "overlap"
)

// Classifier decides whether the frontmost window conflicts with the dock.
type Classifier struct {
	Tolerance int
}

// RequiresHiding reports whether the dock should be hidden for frontmost.
func (c Classifier) RequiresHiding(frontmost *platform.WindowSnapshot, dock platform.Rect) bool {
	hide, _ := c.Classify(frontmost, dock)
	return hide
}

// Classify is RequiresHiding plus the reason for the outcome.
func (c Classifier) Classify(frontmost *platform.WindowSnapshot, dock platform.Rect) (bool, Reason) {
	if frontmost == nil {
		return false, ReasonNoWindow
	}

	tolerance := c.Tolerance
	if tolerance <= 0 {
		tolerance = DefaultTolerance
	}

	frame := frontmost.Frame
	if frame.Within(frontmost.Screen, tolerance) || frame.Within(frontmost.ScreenVisible, tolerance) {
		return true, ReasonMaximized
	}
	if frame.IntersectionArea(dock) > 0 {
		return true, ReasonOverlap
	}
	return false, ReasonNone
}
