package dockaccess

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/1broseidon/autodock/internal/dock"
)

// LayoutReader is implemented by shims that can query the dock layout.
type LayoutReader interface {
	Orientation() (string, error)
	TileSize() (string, error)
}

// Preferences resolves the dock layout from the shim's layout commands and
// falls back to configured values.
type Preferences struct {
	Reader              LayoutReader
	FallbackOrientation string
	FallbackTileSize    int
}

var _ dock.Layout = Preferences{}

// NewPreferences returns Preferences reading through shim when it supports
// layout queries.
func NewPreferences(shim Shim, orientation string, tileSize int) Preferences {
	p := Preferences{FallbackOrientation: orientation, FallbackTileSize: tileSize}
	if r, ok := shim.(LayoutReader); ok {
		p.Reader = r
	}
	return p
}

// Orientation implements dock.Layout.
func (p Preferences) Orientation() (dock.Orientation, error) {
	if p.Reader != nil {
		if raw, err := p.Reader.Orientation(); err == nil {
			return dock.ParseOrientation(raw)
		}
	}
	return dock.ParseOrientation(p.FallbackOrientation)
}

// TileSize implements dock.Layout.
func (p Preferences) TileSize() (int, error) {
	if p.Reader != nil {
		if raw, err := p.Reader.TileSize(); err == nil {
			if v, err := parseNumber(raw); err == nil && v > 0 {
				return v, nil
			}
		}
	}
	if p.FallbackTileSize <= 0 {
		return dock.DefaultTileSize, nil
	}
	return p.FallbackTileSize, nil
}

// parseNumber accepts "48", "48.0" and gsettings' "uint32 48".
func parseNumber(raw string) (int, error) {
	fields := strings.Fields(raw)
	if len(fields) == 0 {
		return 0, fmt.Errorf("empty number")
	}
	f, err := strconv.ParseFloat(fields[len(fields)-1], 64)
	if err != nil {
		return 0, fmt.Errorf("invalid number %q: %w", raw, err)
	}
	return int(f + 0.5), nil
}
