package hotkeys

import (
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/1broseidon/autodock/internal/platform"
)

type nonX11Backend struct{}

func (nonX11Backend) PrimaryDisplay() (platform.Display, error) {
	return platform.Display{}, errors.New("no display")
}
func (nonX11Backend) Windows() ([]platform.WindowSnapshot, error) { return nil, nil }
func (nonX11Backend) FrontmostWindow() (*platform.WindowSnapshot, error) { return nil, nil }
func (nonX11Backend) DockElements(string) ([]platform.DockElement, error) {
	return nil, nil
}

type countingToggler struct {
	calls   int
	running bool
	err     error
}

func (c *countingToggler) Toggle() (bool, error) {
	c.calls++
	c.running = !c.running
	return c.running, c.err
}

func TestRegister_RequiresX11Backend(t *testing.T) {
	h := NewHandler(nonX11Backend{}, &countingToggler{}, nil)
	if err := h.Register("Mod4-d"); err == nil {
		t.Fatalf("expected error without an X11 backend")
	}
	if h.Sequence() != "" {
		t.Fatalf("expected no bound sequence, got %q", h.Sequence())
	}
}

func TestToggle_CallsToggler(t *testing.T) {
	toggler := &countingToggler{}
	h := NewHandler(nonX11Backend{}, toggler, slog.New(slog.NewTextHandler(io.Discard, nil)))

	h.toggle()
	h.toggle()
	if toggler.calls != 2 {
		t.Fatalf("expected 2 toggles, got %d", toggler.calls)
	}

	toggler.err = errors.New("boom")
	h.toggle()
	if toggler.calls != 3 {
		t.Fatalf("expected toggle to run despite error, got %d", toggler.calls)
	}
}
