// Package dockaccess reads and writes the desktop's dock autohide preference.
package dockaccess

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// Shim is the narrow interface the controller uses to observe and change the
// dock's autohide state.
type Shim interface {
	IsHidden() (bool, error)
	SetHidden(hidden bool) error
}

// Toggler performs the visible hide/show gesture after a preference write.
type Toggler interface {
	SendKeyChord(chord string) error
}

// DefaultTimeout bounds every shell command the shim runs.
const DefaultTimeout = 2 * time.Second

// ErrNotConfigured is returned when a required command is empty.
var ErrNotConfigured = errors.New("dock command not configured")

// Commands holds shell command templates. {{value}} expands to the formatted
// preference value and {{hidden}} to "true" or "false".
type Commands struct {
	Get         string
	Set         string
	Toggle      string
	Orientation string
	TileSize    string
	HiddenValue string
	ShownValue  string
	Timeout     time.Duration
}

// CommandShim runs shell commands to read and write the preference.
type CommandShim struct {
	name       string
	cmds       Commands
	toggler    Toggler
	toggleKeys string

	run func(ctx context.Context, script string) (string, error)
}

var _ Shim = (*CommandShim)(nil)

// NewCommandShim returns a shim running the given templates.
func NewCommandShim(name string, cmds Commands) *CommandShim {
	if cmds.HiddenValue == "" {
		cmds.HiddenValue = "true"
	}
	if cmds.ShownValue == "" {
		cmds.ShownValue = "false"
	}
	if cmds.Timeout <= 0 {
		cmds.Timeout = DefaultTimeout
	}
	return &CommandShim{name: name, cmds: cmds, run: runShell}
}

// WithToggler makes SetHidden send chord through t after each write.
func (s *CommandShim) WithToggler(t Toggler, chord string) *CommandShim {
	s.toggler = t
	s.toggleKeys = strings.TrimSpace(chord)
	return s
}

// Name returns the preset name.
func (s *CommandShim) Name() string {
	return s.name
}

// IsHidden runs the get command and compares its output to HiddenValue.
func (s *CommandShim) IsHidden() (bool, error) {
	if strings.TrimSpace(s.cmds.Get) == "" {
		return false, fmt.Errorf("%s: get: %w", s.name, ErrNotConfigured)
	}
	out, err := s.exec(s.cmds.Get, "", false)
	if err != nil {
		return false, err
	}
	return s.parseValue(out), nil
}

func (s *CommandShim) parseValue(out string) bool {
	got := normalizeValue(out)
	if got == normalizeValue(s.cmds.HiddenValue) {
		return true
	}
	// defaults prints 1/0 for booleans written as true/false.
	if normalizeValue(s.cmds.HiddenValue) == "true" && got == "1" {
		return true
	}
	return false
}

func normalizeValue(v string) string {
	v = strings.TrimSpace(v)
	v = strings.Trim(v, `'"`)
	return strings.ToLower(v)
}

// SetHidden runs the set command, then the toggle command or key chord.
func (s *CommandShim) SetHidden(hidden bool) error {
	if strings.TrimSpace(s.cmds.Set) == "" {
		return fmt.Errorf("%s: set: %w", s.name, ErrNotConfigured)
	}

	value := s.cmds.ShownValue
	if hidden {
		value = s.cmds.HiddenValue
	}
	if _, err := s.exec(s.cmds.Set, value, hidden); err != nil {
		return err
	}

	if strings.TrimSpace(s.cmds.Toggle) != "" {
		if _, err := s.exec(s.cmds.Toggle, value, hidden); err != nil {
			return err
		}
	}
	if s.toggler != nil && s.toggleKeys != "" {
		if err := s.toggler.SendKeyChord(s.toggleKeys); err != nil {
			return fmt.Errorf("%s: toggle keys: %w", s.name, err)
		}
	}
	return nil
}

// Orientation runs the orientation command, if any.
func (s *CommandShim) Orientation() (string, error) {
	if strings.TrimSpace(s.cmds.Orientation) == "" {
		return "", ErrNotConfigured
	}
	out, err := s.exec(s.cmds.Orientation, "", false)
	if err != nil {
		return "", err
	}
	return normalizeValue(out), nil
}

// TileSize runs the tile size command, if any.
func (s *CommandShim) TileSize() (string, error) {
	if strings.TrimSpace(s.cmds.TileSize) == "" {
		return "", ErrNotConfigured
	}
	out, err := s.exec(s.cmds.TileSize, "", false)
	if err != nil {
		return "", err
	}
	return normalizeValue(out), nil
}

func (s *CommandShim) exec(template, value string, hidden bool) (string, error) {
	script := Expand(template, value, hidden)
	ctx, cancel := context.WithTimeout(context.Background(), s.cmds.Timeout)
	defer cancel()

	out, err := s.run(ctx, script)
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return "", fmt.Errorf("%s: %q timed out after %s", s.name, script, s.cmds.Timeout)
		}
		return "", fmt.Errorf("%s: %q: %w", s.name, script, err)
	}
	return out, nil
}

// Expand substitutes {{value}} and {{hidden}} in template.
func Expand(template, value string, hidden bool) string {
	return strings.NewReplacer(
		"{{value}}", value,
		"{{hidden}}", fmt.Sprintf("%t", hidden),
	).Replace(template)
}

func runShell(ctx context.Context, script string) (string, error) {
	cmd := exec.CommandContext(ctx, "sh", "-c", script)
	// Children of sh keep stdout open after sh is killed.
	cmd.WaitDelay = 500 * time.Millisecond

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	out, err := cmd.Output()
	if err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return "", fmt.Errorf("%w: %s", err, msg)
		}
		return "", err
	}
	return string(out), nil
}
