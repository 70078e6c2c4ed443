package daemon

import (
	"errors"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/1broseidon/autodock/internal/platform"
)

var (
	testScreen  = platform.Rect{X: 0, Y: 0, Width: 1440, Height: 900}
	testVisible = platform.Rect{X: 0, Y: 25, Width: 1440, Height: 835}
	testDock    = platform.Rect{X: 0, Y: 860, Width: 1440, Height: 40}
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakeBackend struct {
	mu          sync.Mutex
	windows     []platform.WindowSnapshot
	front       *platform.WindowSnapshot
	windowsErr  error
	frontErr    error
	displayErr  error
	dock        platform.Rect
	screen      platform.Rect
	windowCalls int
	dockCalls   int
	panicOn     bool
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{dock: testDock, screen: testScreen}
}

func (f *fakeBackend) PrimaryDisplay() (platform.Display, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.displayErr != nil {
		return platform.Display{}, f.displayErr
	}
	return platform.Display{Primary: true, Bounds: f.screen, Usable: f.screen}, nil
}

func (f *fakeBackend) Windows() ([]platform.WindowSnapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.windowCalls++
	if f.panicOn {
		panic("backend exploded")
	}
	return append([]platform.WindowSnapshot(nil), f.windows...), f.windowsErr
}

func (f *fakeBackend) FrontmostWindow() (*platform.WindowSnapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.frontErr != nil {
		return nil, f.frontErr
	}
	if f.front == nil {
		return nil, nil
	}
	w := *f.front
	return &w, nil
}

func (f *fakeBackend) DockElements(string) ([]platform.DockElement, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.dockCalls++
	if f.dock.Empty() {
		return nil, errors.New("no dock window")
	}
	return []platform.DockElement{{ID: 99, Class: "Plank", Frame: f.dock}}, nil
}

// show makes frame the only, focused window.
func (f *fakeBackend) show(title string, frame platform.Rect) {
	f.mu.Lock()
	defer f.mu.Unlock()
	w := platform.WindowSnapshot{
		ID:            1,
		Title:         title,
		Frame:         frame,
		Visible:       true,
		Screen:        testScreen,
		ScreenVisible: testVisible,
	}
	f.windows = []platform.WindowSnapshot{w}
	f.front = &w
}

func (f *fakeBackend) clear() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.windows = nil
	f.front = nil
}

func (f *fakeBackend) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.windowCalls
}

// manualScheduler records timers; tests fire them explicitly.
type manualScheduler struct {
	mu     sync.Mutex
	timers []*manualTimer
}

type manualTimer struct {
	s       *manualScheduler
	delay   time.Duration
	f       func()
	stopped bool
	fired   bool
}

func (s *manualScheduler) AfterFunc(d time.Duration, f func()) Timer {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := &manualTimer{s: s, delay: d, f: f}
	s.timers = append(s.timers, t)
	return t
}

func (t *manualTimer) Stop() bool {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	if t.stopped || t.fired {
		return false
	}
	t.stopped = true
	return true
}

// live returns timers that were neither stopped nor fired.
func (s *manualScheduler) live() []*manualTimer {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*manualTimer
	for _, t := range s.timers {
		if !t.stopped && !t.fired {
			out = append(out, t)
		}
	}
	return out
}

// fire runs every live timer.
func (s *manualScheduler) fire() int {
	timers := s.live()
	for _, t := range timers {
		s.mu.Lock()
		t.fired = true
		s.mu.Unlock()
		t.f()
	}
	return len(timers)
}

func (s *manualScheduler) all() []*manualTimer {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*manualTimer(nil), s.timers...)
}

// rejectingSource rejects the listed kinds and delegates the rest.
type rejectingSource struct {
	platform.Dispatcher
	reject map[platform.EventKind]bool
}

func (r *rejectingSource) Subscribe(kind platform.EventKind, h func(platform.Event)) (platform.Subscription, error) {
	if r.reject[kind] {
		return nil, errors.New("not supported")
	}
	return r.Dispatcher.Subscribe(kind, h)
}
