package dock

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/1broseidon/autodock/internal/platform"
)

// Orientation is the screen edge the dock is attached to.
type Orientation int

const (
	Bottom Orientation = iota
	Left
	Right
)

func (o Orientation) String() string {
	switch o {
	case Left:
		return "left"
	case Right:
		return "right"
	default:
		return "bottom"
	}
}

// ParseOrientation parses "bottom", "left" or "right", optionally quoted as
// gsettings prints them. Unknown values return Bottom together with an error.
func ParseOrientation(s string) (Orientation, error) {
	switch strings.Trim(strings.ToLower(strings.TrimSpace(s)), `'"`) {
	case "", "bottom":
		return Bottom, nil
	case "left":
		return Left, nil
	case "right":
		return Right, nil
	default:
		return Bottom, fmt.Errorf("unknown dock orientation %q", s)
	}
}

// Tile size bounds applied by the formula strategy.
const (
	DefaultTileSize = 48
	MinTileSize     = 16
	MaxTileSize     = 128
)

// ClampTileSize limits size to the supported tile range.
func ClampTileSize(size int) int {
	return min(max(size, MinTileSize), MaxTileSize)
}

// Source records which strategy produced a Geometry.
type Source string

const (
	SourceIntrospected Source = "introspected"
	SourceFormula      Source = "formula"
	SourceUnavailable  Source = "unavailable"
)

// Geometry is the dock's on-screen rectangle.
type Geometry struct {
	Rect        platform.Rect
	Orientation Orientation
	Source      Source
}

// Strategy produces a dock geometry or an error when it cannot.
type Strategy interface {
	Name() string
	Geometry() (Geometry, error)
}

// Layout supplies the dock's configured orientation and tile size.
type Layout interface {
	Orientation() (Orientation, error)
	TileSize() (int, error)
}

// Introspector reads the rendered dock window from the window system.
type Introspector struct {
	Backend interface {
		DockElements(class string) ([]platform.DockElement, error)
	}
	Class       string
	Orientation Orientation
}

func (i *Introspector) Name() string { return string(SourceIntrospected) }

func (i *Introspector) Geometry() (Geometry, error) {
	elements, err := i.Backend.DockElements(i.Class)
	if err != nil {
		return Geometry{}, fmt.Errorf("list dock elements: %w", err)
	}
	for _, el := range elements {
		if el.Frame.Width > 0 && el.Frame.Height > 0 {
			return Geometry{Rect: el.Frame, Orientation: i.Orientation, Source: SourceIntrospected}, nil
		}
	}
	return Geometry{}, fmt.Errorf("no dock element with positive size")
}

// Formula synthesises a band along the configured screen edge.
type Formula struct {
	Backend interface {
		PrimaryDisplay() (platform.Display, error)
	}
	Layout Layout
	Logger *slog.Logger
}

func (f *Formula) Name() string { return string(SourceFormula) }

func (f *Formula) Geometry() (Geometry, error) {
	orientation := Bottom
	tile := DefaultTileSize
	if f.Layout != nil {
		if o, err := f.Layout.Orientation(); err == nil {
			orientation = o
		} else {
			f.logger().Debug("dock orientation unreadable, using bottom", "error", err)
		}
		if t, err := f.Layout.TileSize(); err == nil {
			tile = t
		} else {
			f.logger().Debug("dock tile size unreadable, using default", "error", err)
		}
	}
	tile = ClampTileSize(tile)

	display, err := f.Backend.PrimaryDisplay()
	if err != nil {
		return Geometry{}, fmt.Errorf("resolve primary display: %w", err)
	}
	return Geometry{
		Rect:        Band(display.Bounds, orientation, tile),
		Orientation: orientation,
		Source:      SourceFormula,
	}, nil
}

func (f *Formula) logger() *slog.Logger {
	if f.Logger == nil {
		return slog.Default()
	}
	return f.Logger
}

// Band returns the strip of thickness tile along the screen edge named by o.
func Band(screen platform.Rect, o Orientation, tile int) platform.Rect {
	switch o {
	case Left:
		return platform.Rect{X: screen.X, Y: screen.Y, Width: tile, Height: screen.Height}
	case Right:
		return platform.Rect{X: screen.X + screen.Width - tile, Y: screen.Y, Width: tile, Height: screen.Height}
	default:
		return platform.Rect{X: screen.X, Y: screen.Y + screen.Height - tile, Width: screen.Width, Height: tile}
	}
}

// Provider computes the dock geometry through an ordered strategy chain and
// caches the result until Invalidate.
type Provider struct {
	strategies []Strategy
	logger     *slog.Logger

	mu     sync.Mutex
	cached *Geometry
}

// NewProvider returns a provider trying strategies in order.
func NewProvider(logger *slog.Logger, strategies ...Strategy) *Provider {
	if logger == nil {
		logger = slog.Default()
	}
	return &Provider{strategies: strategies, logger: logger}
}

// Compute runs the strategy chain and caches the outcome. When every strategy
// fails the zero rect is returned with source unavailable; nothing overlaps it.
func (p *Provider) Compute() Geometry {
	g, err := p.compute()
	if err != nil {
		p.logger.Warn("dock geometry unavailable", "error", err)
	}

	p.mu.Lock()
	p.cached = &g
	p.mu.Unlock()
	return g
}

func (p *Provider) compute() (Geometry, error) {
	var errs []string
	for _, s := range p.strategies {
		g, err := s.Geometry()
		if err == nil {
			p.logger.Debug("dock geometry computed", "source", g.Source, "rect", g.Rect, "orientation", g.Orientation.String())
			return g, nil
		}
		errs = append(errs, fmt.Sprintf("%s: %v", s.Name(), err))
	}
	return Geometry{Source: SourceUnavailable}, fmt.Errorf("%w: %s", ErrGeometryUnavailable, strings.Join(errs, "; "))
}

// Current returns the cached geometry, computing it on first use.
func (p *Provider) Current() Geometry {
	p.mu.Lock()
	cached := p.cached
	p.mu.Unlock()
	if cached != nil {
		return *cached
	}
	return p.Compute()
}

// Invalidate drops the cached geometry.
func (p *Provider) Invalidate() {
	p.mu.Lock()
	p.cached = nil
	p.mu.Unlock()
}
