package x11

import "testing"

func TestPickPrimary(t *testing.T) {
	if _, err := pickPrimary(nil); err == nil {
		t.Fatalf("expected error for no monitors")
	}

	monitors := []Monitor{
		{ID: 0, Name: "DP-1", X: 1920, Y: 0, Width: 1920, Height: 1080},
		{ID: 1, Name: "eDP-1", X: 0, Y: 0, Width: 1440, Height: 900},
	}
	got, err := pickPrimary(monitors)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Name != "eDP-1" {
		t.Fatalf("expected monitor at origin, got %s", got.Name)
	}

	monitors[0].Primary = true
	got, _ = pickPrimary(monitors)
	if got.Name != "DP-1" {
		t.Fatalf("expected randr primary, got %s", got.Name)
	}
}

func TestMonitorAt(t *testing.T) {
	monitors := []Monitor{
		{ID: 0, X: 0, Y: 0, Width: 1440, Height: 900},
		{ID: 1, X: 1440, Y: 0, Width: 1920, Height: 1080},
	}

	if m := MonitorAt(monitors, 100, 100); m == nil || m.ID != 0 {
		t.Fatalf("expected monitor 0, got %+v", m)
	}
	if m := MonitorAt(monitors, 1440, 10); m == nil || m.ID != 1 {
		t.Fatalf("expected monitor 1 at shared edge, got %+v", m)
	}
	if m := MonitorAt(monitors, 100, 950); m != nil {
		t.Fatalf("expected no monitor, got %+v", m)
	}
}

func TestIntersectionRect(t *testing.T) {
	got := intersectionRect(0, 0, 1440, 900, 0, 27, 1440, 900)
	if got != (intersection{x: 0, y: 27, w: 1440, h: 873}) {
		t.Fatalf("unexpected intersection %+v", got)
	}
	if got := intersectionRect(0, 0, 10, 10, 10, 0, 20, 10); got != (intersection{}) {
		t.Fatalf("adjacent rects should not intersect, got %+v", got)
	}
}
