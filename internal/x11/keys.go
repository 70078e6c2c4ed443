package x11

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgb/xtest"
	"github.com/BurntSushi/xgbutil/keybind"
)

var modifierKeysyms = map[string]string{
	"shift":   "Shift_L",
	"control": "Control_L",
	"ctrl":    "Control_L",
	"mod1":    "Alt_L",
	"alt":     "Alt_L",
	"mod4":    "Super_L",
	"super":   "Super_L",
}

// SplitChord splits a keybind-style chord such as "Mod4-Mod1-d" into the
// keysyms to press, modifiers first.
func SplitChord(chord string) ([]string, error) {
	chord = strings.TrimSpace(chord)
	if chord == "" {
		return nil, fmt.Errorf("empty key chord")
	}

	parts := strings.Split(chord, "-")
	keysyms := make([]string, 0, len(parts))
	for i, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			return nil, fmt.Errorf("invalid key chord %q", chord)
		}
		if i == len(parts)-1 {
			keysyms = append(keysyms, part)
			continue
		}
		sym, ok := modifierKeysyms[strings.ToLower(part)]
		if !ok {
			return nil, fmt.Errorf("unknown modifier %q in key chord %q", part, chord)
		}
		keysyms = append(keysyms, sym)
	}
	return keysyms, nil
}

// SendKeyChord synthesises the chord with the XTest extension: every key is
// pressed in order and released in reverse.
func (c *Connection) SendKeyChord(chord string) error {
	keysyms, err := SplitChord(chord)
	if err != nil {
		return err
	}

	conn := c.XUtil.Conn()
	if err := xtest.Init(conn); err != nil {
		return fmt.Errorf("xtest init failed: %w", err)
	}

	keycodes := make([]xproto.Keycode, 0, len(keysyms))
	for _, sym := range keysyms {
		codes := keybind.StrToKeycodes(c.XUtil, sym)
		if len(codes) == 0 {
			return fmt.Errorf("no keycode for %q", sym)
		}
		keycodes = append(keycodes, codes[0])
	}

	for _, code := range keycodes {
		if err := xtest.FakeInputChecked(conn, xproto.KeyPress, byte(code), 0, c.Root, 0, 0, 0).Check(); err != nil {
			return fmt.Errorf("failed to press key %d: %w", code, err)
		}
	}
	for i := len(keycodes) - 1; i >= 0; i-- {
		if err := xtest.FakeInputChecked(conn, xproto.KeyRelease, byte(keycodes[i]), 0, c.Root, 0, 0, 0).Check(); err != nil {
			return fmt.Errorf("failed to release key %d: %w", keycodes[i], err)
		}
	}
	return nil
}
