package config

// The raw layer mirrors Config with pointer fields so that an absent key can
// be told apart from a zero value when merging over the defaults.

type RawCommandsConfig struct {
	Get         *string `yaml:"get"`
	Set         *string `yaml:"set"`
	Toggle      *string `yaml:"toggle"`
	Orientation *string `yaml:"orientation"`
	TileSize    *string `yaml:"tile_size"`
	HiddenValue *string `yaml:"hidden_value"`
	ShownValue  *string `yaml:"shown_value"`
	TimeoutMs   *int    `yaml:"timeout_ms"`
}

type RawDockConfig struct {
	Backend         *string            `yaml:"backend"`
	Introspect      *bool              `yaml:"introspect"`
	WindowClass     *string            `yaml:"window_class"`
	Orientation     *string            `yaml:"orientation"`
	TileSize        *int               `yaml:"tile_size"`
	GeometryRefresh *string            `yaml:"geometry_refresh"`
	ToggleKeys      *string            `yaml:"toggle_keys"`
	Commands        *RawCommandsConfig `yaml:"commands"`
}

type RawConfig struct {
	LogLevel              *string        `yaml:"log_level"`
	Display               *string        `yaml:"display"`
	XAuthority            *string        `yaml:"xauthority"`
	DebounceMs            *int           `yaml:"debounce_ms"`
	MaximizeTolerance     *int           `yaml:"maximize_tolerance"`
	ResyncIntervalSeconds *int           `yaml:"resync_interval_seconds"`
	RestoreOnStop         *bool          `yaml:"restore_on_stop"`
	PauseHotkey           *string        `yaml:"pause_hotkey"`
	Dock                  *RawDockConfig `yaml:"dock"`
}

func setString(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}

func setInt(dst *int, src *int) {
	if src != nil {
		*dst = *src
	}
}

func setBool(dst *bool, src *bool) {
	if src != nil {
		*dst = *src
	}
}
