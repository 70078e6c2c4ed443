package dock

import (
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/1broseidon/autodock/internal/platform"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	screen    = platform.Rect{X: 0, Y: 0, Width: 1440, Height: 900}
	visible   = platform.Rect{X: 0, Y: 25, Width: 1440, Height: 835}
	dockBand  = platform.Rect{X: 0, Y: 860, Width: 1440, Height: 40}
	discardLg = slog.New(slog.NewTextHandler(io.Discard, nil))
)

func window(frame platform.Rect) *platform.WindowSnapshot {
	return &platform.WindowSnapshot{
		Frame:         frame,
		Visible:       true,
		Screen:        screen,
		ScreenVisible: visible,
	}
}

func TestClassifier_Scenarios(t *testing.T) {
	c := Classifier{Tolerance: DefaultTolerance}

	tests := []struct {
		name   string
		win    *platform.WindowSnapshot
		hide   bool
		reason Reason
	}{
		{"no frontmost window", nil, false, ReasonNoWindow},
		{"small window away from dock", window(platform.Rect{X: 100, Y: 100, Width: 800, Height: 600}), false, ReasonNone},
		{"full screen frame", window(screen), true, ReasonMaximized},
		{"visible frame", window(visible), true, ReasonMaximized},
		{"maximized within tolerance", window(platform.Rect{X: 2, Y: 27, Width: 1437, Height: 832}), true, ReasonMaximized},
		{"bottom band overlaps dock", window(platform.Rect{X: 0, Y: 850, Width: 1440, Height: 100}), true, ReasonOverlap},
		{"edge adjacent to dock", window(platform.Rect{X: 0, Y: 760, Width: 1440, Height: 100}), false, ReasonNone},
		{"large but not maximized", window(platform.Rect{X: 40, Y: 40, Width: 1300, Height: 780}), false, ReasonNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hide, reason := c.Classify(tt.win, dockBand)
			assert.Equal(t, tt.hide, hide)
			assert.Equal(t, tt.reason, reason)
			assert.Equal(t, tt.hide, c.RequiresHiding(tt.win, dockBand))
		})
	}
}

func TestClassifier_ZeroDockNeverOverlaps(t *testing.T) {
	c := Classifier{}
	win := window(platform.Rect{X: 0, Y: 850, Width: 1440, Height: 40})
	assert.False(t, c.RequiresHiding(win, platform.Rect{}))
}

func TestClassifier_DefaultsTolerance(t *testing.T) {
	c := Classifier{}
	assert.True(t, c.RequiresHiding(window(platform.Rect{X: 4, Y: 0, Width: 1440, Height: 900}), dockBand))
}

func TestParseOrientation(t *testing.T) {
	for in, want := range map[string]Orientation{"bottom": Bottom, "": Bottom, "LEFT": Left, " right ": Right, "'left'": Left, "'BOTTOM'": Bottom} {
		got, err := ParseOrientation(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	got, err := ParseOrientation("top")
	assert.Error(t, err)
	assert.Equal(t, Bottom, got)
}

func TestBand(t *testing.T) {
	assert.Equal(t, platform.Rect{X: 0, Y: 852, Width: 1440, Height: 48}, Band(screen, Bottom, 48))
	assert.Equal(t, platform.Rect{X: 0, Y: 0, Width: 48, Height: 900}, Band(screen, Left, 48))
	assert.Equal(t, platform.Rect{X: 1392, Y: 0, Width: 48, Height: 900}, Band(screen, Right, 48))
}

func TestClampTileSize(t *testing.T) {
	assert.Equal(t, MinTileSize, ClampTileSize(0))
	assert.Equal(t, 64, ClampTileSize(64))
	assert.Equal(t, MaxTileSize, ClampTileSize(512))
}

type fakeBackend struct {
	display    platform.Display
	displayErr error
	elements   []platform.DockElement
	elemErr    error
	calls      int
}

func (f *fakeBackend) PrimaryDisplay() (platform.Display, error) {
	f.calls++
	return f.display, f.displayErr
}

func (f *fakeBackend) DockElements(string) ([]platform.DockElement, error) {
	f.calls++
	return f.elements, f.elemErr
}

type fixedLayout struct {
	orientation Orientation
	tile        int
	err         error
}

func (l fixedLayout) Orientation() (Orientation, error) { return l.orientation, l.err }
func (l fixedLayout) TileSize() (int, error)            { return l.tile, l.err }

func newProvider(b *fakeBackend, layout Layout) *Provider {
	return NewProvider(discardLg,
		&Introspector{Backend: b},
		&Formula{Backend: b, Layout: layout, Logger: discardLg},
	)
}

func TestProvider_IntrospectedWins(t *testing.T) {
	b := &fakeBackend{
		display: platform.Display{Bounds: screen},
		elements: []platform.DockElement{
			{Frame: platform.Rect{X: 10, Y: 10}},
			{Frame: platform.Rect{X: 400, Y: 836, Width: 640, Height: 64}},
		},
	}
	g := newProvider(b, nil).Compute()
	assert.Equal(t, SourceIntrospected, g.Source)
	assert.Equal(t, platform.Rect{X: 400, Y: 836, Width: 640, Height: 64}, g.Rect)
}

func TestProvider_FallsBackToFormula(t *testing.T) {
	b := &fakeBackend{
		display: platform.Display{Bounds: screen},
		elemErr: errors.New("no dock window"),
	}
	g := newProvider(b, fixedLayout{orientation: Left, tile: 200}).Compute()
	assert.Equal(t, SourceFormula, g.Source)
	assert.Equal(t, Left, g.Orientation)
	assert.Equal(t, platform.Rect{X: 0, Y: 0, Width: MaxTileSize, Height: 900}, g.Rect)
}

func TestProvider_FormulaDefaultsOnUnreadableLayout(t *testing.T) {
	b := &fakeBackend{display: platform.Display{Bounds: screen}}
	g := newProvider(b, fixedLayout{err: errors.New("unreadable")}).Compute()
	assert.Equal(t, SourceFormula, g.Source)
	assert.Equal(t, Band(screen, Bottom, DefaultTileSize), g.Rect)
}

func TestProvider_UnavailableYieldsZeroRect(t *testing.T) {
	b := &fakeBackend{displayErr: errors.New("no screen"), elemErr: errors.New("no dock")}
	p := newProvider(b, nil)
	g := p.Compute()
	assert.Equal(t, SourceUnavailable, g.Source)
	assert.True(t, g.Rect.Empty())
	assert.False(t, Classifier{}.RequiresHiding(window(platform.Rect{X: 0, Y: 850, Width: 100, Height: 50}), g.Rect))

	_, err := p.compute()
	assert.ErrorIs(t, err, ErrGeometryUnavailable)
}

func TestProvider_CachesUntilInvalidated(t *testing.T) {
	b := &fakeBackend{display: platform.Display{Bounds: screen}}
	p := newProvider(b, nil)

	first := p.Current()
	calls := b.calls
	assert.Equal(t, first, p.Current())
	assert.Equal(t, calls, b.calls)

	b.display = platform.Display{Bounds: platform.Rect{Width: 1920, Height: 1080}}
	assert.Equal(t, first, p.Current())

	p.Invalidate()
	assert.Equal(t, platform.Rect{X: 0, Y: 1032, Width: 1920, Height: 48}, p.Current().Rect)
}

type fakeAccessor struct {
	mu      sync.Mutex
	hidden  bool
	readErr error
	setErr  error
	writes  int
}

func (f *fakeAccessor) IsHidden() (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.hidden, f.readErr
}

func (f *fakeAccessor) SetHidden(hidden bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.setErr != nil {
		return f.setErr
	}
	f.hidden = hidden
	f.writes++
	return nil
}

func TestStore_ApplyIsIdempotent(t *testing.T) {
	acc := &fakeAccessor{}
	s := NewStore(acc, discardLg)

	changed, err := s.Apply(Hidden)
	require.NoError(t, err)
	assert.True(t, changed)

	changed, err = s.Apply(Hidden)
	require.NoError(t, err)
	assert.False(t, changed)

	assert.Equal(t, 1, acc.writes)
	assert.Equal(t, 1, s.Transitions())
	last, ok := s.Last()
	assert.True(t, ok)
	assert.Equal(t, Hidden, last)
}

func TestStore_NoWriteWhenAlreadyMatching(t *testing.T) {
	acc := &fakeAccessor{hidden: true}
	s := NewStore(acc, discardLg)

	state, err := s.Init()
	require.NoError(t, err)
	assert.Equal(t, Hidden, state)

	changed, err := s.Apply(Hidden)
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Zero(t, acc.writes)
}

func TestStore_ConcurrentApplyWritesOnce(t *testing.T) {
	acc := &fakeAccessor{}
	s := NewStore(acc, discardLg)

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = s.Apply(Hidden)
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, acc.writes)
}

func TestStore_FallsBackToCachedState(t *testing.T) {
	acc := &fakeAccessor{}
	s := NewStore(acc, discardLg)

	_, err := s.Apply(Hidden)
	require.NoError(t, err)

	acc.readErr = errors.New("defaults timed out")
	changed, err := s.Apply(Hidden)
	require.NoError(t, err)
	assert.False(t, changed)

	changed, err = s.Apply(Shown)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, 2, acc.writes)
}

func TestStore_UnknownStateWrites(t *testing.T) {
	acc := &fakeAccessor{readErr: errors.New("unreadable")}
	s := NewStore(acc, discardLg)

	_, err := s.Init()
	assert.ErrorIs(t, err, ErrCollaboratorUnavailable)

	changed, err := s.Apply(Shown)
	require.NoError(t, err)
	assert.True(t, changed)
}

func TestStore_WriteFailure(t *testing.T) {
	acc := &fakeAccessor{setErr: errors.New("permission denied")}
	s := NewStore(acc, discardLg)

	changed, err := s.Apply(Hidden)
	assert.False(t, changed)
	assert.ErrorIs(t, err, ErrCollaboratorUnavailable)
	_, ok := s.Last()
	assert.False(t, ok)
}

func TestVisibilityState_String(t *testing.T) {
	assert.Equal(t, "shown", Shown.String())
	assert.Equal(t, "hidden", Hidden.String())
	assert.Equal(t, Hidden, StateFromHidden(true))
}
