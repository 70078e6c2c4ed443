package config

import (
	"fmt"
	"strings"
)

type ValidationError struct {
	Path   string
	Source Source
	Err    error
}

func (e *ValidationError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Source.Kind == SourceFile && e.Source.File != "" && e.Source.Line > 0 {
		return fmt.Sprintf("%s:%d:%d: %s: %v", e.Source.File, e.Source.Line, e.Source.Column, e.Path, e.Err)
	}
	if e.Path != "" {
		return fmt.Sprintf("%s: %v", e.Path, e.Err)
	}
	return e.Err.Error()
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// BuildEffectiveConfig applies raw over DefaultConfig. String enums are
// normalised to lower case; validation is left to Validate.
func BuildEffectiveConfig(raw RawConfig) (*Config, error) {
	cfg := DefaultConfig()

	setString(&cfg.LogLevel, raw.LogLevel)
	setString(&cfg.Display, raw.Display)
	setString(&cfg.XAuthority, raw.XAuthority)
	setInt(&cfg.DebounceMs, raw.DebounceMs)
	setInt(&cfg.MaximizeTolerance, raw.MaximizeTolerance)
	setInt(&cfg.ResyncIntervalSeconds, raw.ResyncIntervalSeconds)
	setBool(&cfg.RestoreOnStop, raw.RestoreOnStop)
	setString(&cfg.PauseHotkey, raw.PauseHotkey)

	if d := raw.Dock; d != nil {
		setString(&cfg.Dock.Backend, d.Backend)
		setBool(&cfg.Dock.Introspect, d.Introspect)
		setString(&cfg.Dock.WindowClass, d.WindowClass)
		setString(&cfg.Dock.Orientation, d.Orientation)
		setInt(&cfg.Dock.TileSize, d.TileSize)
		setString(&cfg.Dock.GeometryRefresh, d.GeometryRefresh)
		setString(&cfg.Dock.ToggleKeys, d.ToggleKeys)

		if c := d.Commands; c != nil {
			cmds := &cfg.Dock.Commands
			setString(&cmds.Get, c.Get)
			setString(&cmds.Set, c.Set)
			setString(&cmds.Toggle, c.Toggle)
			setString(&cmds.Orientation, c.Orientation)
			setString(&cmds.TileSize, c.TileSize)
			setString(&cmds.HiddenValue, c.HiddenValue)
			setString(&cmds.ShownValue, c.ShownValue)
			setInt(&cmds.TimeoutMs, c.TimeoutMs)
		}
	}

	cfg.LogLevel = strings.ToLower(strings.TrimSpace(cfg.LogLevel))
	cfg.Dock.Backend = strings.ToLower(strings.TrimSpace(cfg.Dock.Backend))
	cfg.Dock.Orientation = strings.ToLower(strings.TrimSpace(cfg.Dock.Orientation))
	cfg.Dock.GeometryRefresh = strings.ToLower(strings.TrimSpace(cfg.Dock.GeometryRefresh))

	return cfg, nil
}
