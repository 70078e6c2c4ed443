package dockaccess

import (
	"fmt"
	"sort"
	"strings"
)

// Backend names accepted by NewPreset.
const (
	BackendCommand    = "command"
	BackendMacOS      = "macos"
	BackendDashToDock = "dash-to-dock"
	BackendPlank      = "plank"
	BackendXfce       = "xfce"
	BackendMemory     = "memory"
)

var presets = map[string]Commands{
	BackendMacOS: {
		Get:         "defaults read com.apple.dock autohide",
		Set:         "defaults write com.apple.dock autohide -bool {{value}}",
		Toggle:      `osascript -e 'tell application "System Events" to keystroke "d" using {command down, option down}'`,
		Orientation: "defaults read com.apple.dock orientation",
		TileSize:    "defaults read com.apple.dock tilesize",
		HiddenValue: "true",
		ShownValue:  "false",
	},
	BackendDashToDock: {
		Get:         "gsettings get org.gnome.shell.extensions.dash-to-dock autohide",
		Set:         "gsettings set org.gnome.shell.extensions.dash-to-dock autohide {{value}}",
		Orientation: "gsettings get org.gnome.shell.extensions.dash-to-dock dock-position",
		TileSize:    "gsettings get org.gnome.shell.extensions.dash-to-dock dash-max-icon-size",
		HiddenValue: "true",
		ShownValue:  "false",
	},
	BackendPlank: {
		Get:         "gsettings get net.launchpad.plank.dock.settings:/net/launchpad/plank/docks/dock1/ hide-mode",
		Set:         "gsettings set net.launchpad.plank.dock.settings:/net/launchpad/plank/docks/dock1/ hide-mode \"{{value}}\"",
		Orientation: "gsettings get net.launchpad.plank.dock.settings:/net/launchpad/plank/docks/dock1/ position",
		TileSize:    "gsettings get net.launchpad.plank.dock.settings:/net/launchpad/plank/docks/dock1/ icon-size",
		HiddenValue: "'auto'",
		ShownValue:  "'none'",
	},
	BackendXfce: {
		Get:         "xfconf-query -c xfce4-panel -p /panels/panel-1/autohide-behavior",
		Set:         "xfconf-query -c xfce4-panel -p /panels/panel-1/autohide-behavior -n -t int -s {{value}}",
		HiddenValue: "2",
		ShownValue:  "0",
	},
}

// PresetNames returns the names of the built-in command presets.
func PresetNames() []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// PresetCommands returns the built-in templates for backend with any
// non-empty field of overrides applied on top.
func PresetCommands(backend string, overrides Commands) (Commands, error) {
	backend = strings.ToLower(strings.TrimSpace(backend))
	var base Commands
	switch backend {
	case BackendCommand:
	default:
		p, ok := presets[backend]
		if !ok {
			return Commands{}, fmt.Errorf("unknown dock backend %q", backend)
		}
		base = p
	}

	if overrides.Get != "" {
		base.Get = overrides.Get
	}
	if overrides.Set != "" {
		base.Set = overrides.Set
	}
	if overrides.Toggle != "" {
		base.Toggle = overrides.Toggle
	}
	if overrides.Orientation != "" {
		base.Orientation = overrides.Orientation
	}
	if overrides.TileSize != "" {
		base.TileSize = overrides.TileSize
	}
	if overrides.HiddenValue != "" {
		base.HiddenValue = overrides.HiddenValue
	}
	if overrides.ShownValue != "" {
		base.ShownValue = overrides.ShownValue
	}
	if overrides.Timeout > 0 {
		base.Timeout = overrides.Timeout
	}
	return base, nil
}

// NewPreset builds the shim for backend. The memory backend returns a
// Memory shim that never touches the desktop.
func NewPreset(backend string, overrides Commands) (Shim, error) {
	if strings.EqualFold(strings.TrimSpace(backend), BackendMemory) {
		return NewMemory(false), nil
	}
	cmds, err := PresetCommands(backend, overrides)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(cmds.Get) == "" || strings.TrimSpace(cmds.Set) == "" {
		return nil, fmt.Errorf("dock backend %q requires get and set commands", backend)
	}
	return NewCommandShim(strings.ToLower(strings.TrimSpace(backend)), cmds), nil
}
