package hotkeys

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/1broseidon/autodock/internal/platform"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/keybind"
	"github.com/BurntSushi/xgbutil/xevent"
)

// Toggler pauses or resumes dock management.
type Toggler interface {
	Toggle() (bool, error)
}

// x11Accessor is an optional interface for backends that expose X11 internals.
type x11Accessor interface {
	XUtil() *xgbutil.XUtil
	RootWindow() xproto.Window
}

// Handler manages the global pause hotkey.
type Handler struct {
	xu      *xgbutil.XUtil
	root    xproto.Window
	toggler Toggler
	logger  *slog.Logger

	mu       sync.Mutex
	sequence string
}

var ignoreModsOnce sync.Once

// NewHandler creates a hotkey handler. Backends without X11 access yield a
// handler whose Register fails.
func NewHandler(backend platform.Backend, toggler Toggler, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	var xu *xgbutil.XUtil
	var root xproto.Window
	if accessor, ok := backend.(x11Accessor); ok {
		xu = accessor.XUtil()
		root = accessor.RootWindow()
	}

	if xu != nil {
		ignoreModsOnce.Do(func() {
			configureIgnoreMods(xu)
		})
	}

	return &Handler{
		xu:      xu,
		root:    root,
		toggler: toggler,
		logger:  logger,
	}
}

// Register binds keySequence (xgbutil syntax, e.g. "Mod4-Mod1-d") to the
// pause toggle. An empty sequence unbinds.
func (h *Handler) Register(keySequence string) error {
	if h.xu == nil {
		return fmt.Errorf("hotkeys need an X11 backend")
	}
	keySequence = strings.TrimSpace(keySequence)

	h.mu.Lock()
	defer h.mu.Unlock()
	if keySequence == h.sequence {
		return nil
	}
	if h.sequence != "" {
		keybind.Detach(h.xu, h.root)
		h.sequence = ""
	}
	if keySequence == "" {
		return nil
	}

	err := keybind.KeyPressFun(func(xu *xgbutil.XUtil, ev xevent.KeyPressEvent) {
		// Toggling queries the X server; keep the event loop free.
		go h.toggle()
	}).Connect(h.xu, h.root, keySequence, true)
	if err != nil {
		return fmt.Errorf("failed to register pause hotkey %q: %w", keySequence, err)
	}
	h.sequence = keySequence
	h.logger.Info("pause hotkey registered", "keys", keySequence)
	return nil
}

// Sequence returns the bound key sequence, empty when none.
func (h *Handler) Sequence() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.sequence
}

func (h *Handler) toggle() {
	running, err := h.toggler.Toggle()
	if err != nil {
		h.logger.Warn("pause hotkey failed", "error", err)
		return
	}
	h.logger.Info("pause hotkey", "running", running)
}

func configureIgnoreMods(xu *xgbutil.XUtil) {
	// Always ignore CapsLock.
	caps := uint16(xproto.ModMaskLock)

	numLock := modMaskForKeysym(xu, "Num_Lock")
	scrollLock := modMaskForKeysym(xu, "Scroll_Lock")

	unique := make(map[uint16]struct{})
	add := func(mask uint16) {
		unique[mask] = struct{}{}
	}

	add(0)
	base := []uint16{caps}
	if numLock != 0 && numLock != caps {
		base = append(base, numLock)
	}
	if scrollLock != 0 && scrollLock != caps && scrollLock != numLock {
		base = append(base, scrollLock)
	}

	for subset := 1; subset < (1 << len(base)); subset++ {
		var mask uint16
		for bit := range base {
			if subset&(1<<bit) != 0 {
				mask |= base[bit]
			}
		}
		add(mask)
	}

	ignore := make([]uint16, 0, len(unique))
	for mask := range unique {
		ignore = append(ignore, mask)
	}

	xevent.IgnoreMods = ignore
}

func modMaskForKeysym(xu *xgbutil.XUtil, keysym string) uint16 {
	for _, keycode := range keybind.StrToKeycodes(xu, keysym) {
		if mask := keybind.ModGet(xu, keycode); mask != 0 {
			return mask
		}
	}
	return 0
}
