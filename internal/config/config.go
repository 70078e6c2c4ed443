package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Validation bounds.
const (
	DefaultDebounceMs        = 100
	MinDebounceMs            = 10
	MaxDebounceMs            = 2000
	DefaultMaximizeTolerance = 4
	MinMaximizeTolerance     = 1
	MaxMaximizeTolerance     = 32
	DefaultTileSize          = 48
	DefaultCommandTimeoutMs  = 2000
	MinCommandTimeoutMs      = 100
	MaxCommandTimeoutMs      = 60000
	DefaultPauseHotkey       = "Mod4-Mod1-d"
)

// Dock backends.
var dockBackends = []string{"command", "macos", "dash-to-dock", "plank", "xfce", "memory"}

// Geometry refresh policies.
var geometryRefreshPolicies = []string{"startup", "screen_change", "every_pass"}

var orientations = []string{"bottom", "left", "right"}

var logLevels = []string{"debug", "info", "warning", "error"}

// CommandsConfig holds the shell commands used by the command dock backend.
// Non-empty values override the selected preset.
type CommandsConfig struct {
	Get         string `yaml:"get"`
	Set         string `yaml:"set"`
	Toggle      string `yaml:"toggle"`
	Orientation string `yaml:"orientation"`
	TileSize    string `yaml:"tile_size"`
	HiddenValue string `yaml:"hidden_value"`
	ShownValue  string `yaml:"shown_value"`
	TimeoutMs   int    `yaml:"timeout_ms"`
}

// DockConfig describes how the dock is found and controlled.
type DockConfig struct {
	Backend         string         `yaml:"backend"`
	Introspect      bool           `yaml:"introspect"`
	WindowClass     string         `yaml:"window_class"`
	Orientation     string         `yaml:"orientation"`
	TileSize        int            `yaml:"tile_size"`
	GeometryRefresh string         `yaml:"geometry_refresh"`
	ToggleKeys      string         `yaml:"toggle_keys"`
	Commands        CommandsConfig `yaml:"commands"`
}

// Config is the effective autodock configuration.
type Config struct {
	LogLevel              string     `yaml:"log_level"`
	Display               string     `yaml:"display"`
	XAuthority            string     `yaml:"xauthority"`
	DebounceMs            int        `yaml:"debounce_ms"`
	MaximizeTolerance     int        `yaml:"maximize_tolerance"`
	ResyncIntervalSeconds int        `yaml:"resync_interval_seconds"`
	RestoreOnStop         bool       `yaml:"restore_on_stop"`
	PauseHotkey           string     `yaml:"pause_hotkey"`
	Dock                  DockConfig `yaml:"dock"`
}

// DefaultConfig returns the built-in configuration.
func DefaultConfig() *Config {
	return &Config{
		LogLevel:          "info",
		DebounceMs:        DefaultDebounceMs,
		MaximizeTolerance: DefaultMaximizeTolerance,
		RestoreOnStop:     true,
		PauseHotkey:       DefaultPauseHotkey,
		Dock: DockConfig{
			Backend:         "plank",
			Introspect:      true,
			Orientation:     "bottom",
			TileSize:        DefaultTileSize,
			GeometryRefresh: "screen_change",
			Commands: CommandsConfig{
				TimeoutMs: DefaultCommandTimeoutMs,
			},
		},
	}
}

func DefaultConfigPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, ".config", "autodock", "config.yaml"), nil
}

// Debounce returns the event settle delay.
func (c *Config) Debounce() time.Duration {
	return time.Duration(c.DebounceMs) * time.Millisecond
}

// ResyncInterval returns the periodic reconcile interval, 0 when disabled.
func (c *Config) ResyncInterval() time.Duration {
	return time.Duration(c.ResyncIntervalSeconds) * time.Second
}

// CommandTimeout returns the per-command timeout for shell dock backends.
func (c *Config) CommandTimeout() time.Duration {
	return time.Duration(c.Dock.Commands.TimeoutMs) * time.Millisecond
}

// Validate checks every field and returns the first *ValidationError.
func (c *Config) Validate() error {
	if !oneOf(c.LogLevel, logLevels) {
		return &ValidationError{Path: "log_level", Err: fmt.Errorf("log_level must be one of: %s", strings.Join(logLevels, ", "))}
	}
	if c.DebounceMs < MinDebounceMs || c.DebounceMs > MaxDebounceMs {
		return &ValidationError{Path: "debounce_ms", Err: fmt.Errorf("debounce_ms must be between %d and %d", MinDebounceMs, MaxDebounceMs)}
	}
	if c.MaximizeTolerance < MinMaximizeTolerance || c.MaximizeTolerance > MaxMaximizeTolerance {
		return &ValidationError{Path: "maximize_tolerance", Err: fmt.Errorf("maximize_tolerance must be between %d and %d", MinMaximizeTolerance, MaxMaximizeTolerance)}
	}
	if c.ResyncIntervalSeconds < 0 {
		return &ValidationError{Path: "resync_interval_seconds", Err: fmt.Errorf("resync_interval_seconds must be >= 0")}
	}

	d := c.Dock
	if !oneOf(d.Backend, dockBackends) {
		return &ValidationError{Path: "dock.backend", Err: fmt.Errorf("backend must be one of: %s", strings.Join(dockBackends, ", "))}
	}
	if !oneOf(d.Orientation, orientations) {
		return &ValidationError{Path: "dock.orientation", Err: fmt.Errorf("orientation must be one of: %s", strings.Join(orientations, ", "))}
	}
	if d.TileSize <= 0 {
		return &ValidationError{Path: "dock.tile_size", Err: fmt.Errorf("tile_size must be > 0")}
	}
	if !oneOf(d.GeometryRefresh, geometryRefreshPolicies) {
		return &ValidationError{Path: "dock.geometry_refresh", Err: fmt.Errorf("geometry_refresh must be one of: %s", strings.Join(geometryRefreshPolicies, ", "))}
	}
	if d.Commands.TimeoutMs < MinCommandTimeoutMs || d.Commands.TimeoutMs > MaxCommandTimeoutMs {
		return &ValidationError{Path: "dock.commands.timeout_ms", Err: fmt.Errorf("timeout_ms must be between %d and %d", MinCommandTimeoutMs, MaxCommandTimeoutMs)}
	}
	if d.Backend == "command" {
		if strings.TrimSpace(d.Commands.Get) == "" {
			return &ValidationError{Path: "dock.commands.get", Err: fmt.Errorf("get is required for the command backend")}
		}
		if strings.TrimSpace(d.Commands.Set) == "" {
			return &ValidationError{Path: "dock.commands.set", Err: fmt.Errorf("set is required for the command backend")}
		}
	}
	return nil
}

func oneOf(v string, allowed []string) bool {
	for _, a := range allowed {
		if v == a {
			return true
		}
	}
	return false
}

// Save writes the configuration to path after validating it.
func (c *Config) Save(path string) error {
	if err := c.Validate(); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}
