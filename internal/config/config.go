package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// ViewportConfig selects where the usable screen size comes from.
type ViewportConfig struct {
	// Source is one of: auto, x11, static.
	Source string `yaml:"source"`
	// Width and Height are used by the static source, and by auto when no X
	// server is reachable.
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
	// PollIntervalMS is how often the daemon re-reads the viewport.
	PollIntervalMS int `yaml:"poll_interval_ms"`
}

// SnapConfig tunes snap-to-region behavior during drags.
type SnapConfig struct {
	CommitDelayMS int `yaml:"commit_delay_ms"`
	EdgeThreshold int `yaml:"edge_threshold"`
	CornerDivisor int `yaml:"corner_divisor"`
}

// PanelConfig holds default panel sizing.
type PanelConfig struct {
	MinWidth           int `yaml:"min_width"`
	MinHeight          int `yaml:"min_height"`
	DefaultWidth       int `yaml:"default_width"`
	DefaultHeight      int `yaml:"default_height"`
	WidgetMinWidth     int `yaml:"widget_min_width"`
	WidgetMinHeight    int `yaml:"widget_min_height"`
	WidgetDefaultWidth int `yaml:"widget_default_width"`
	// WidgetDefaultHeight is the initial height of new widgets.
	WidgetDefaultHeight int `yaml:"widget_default_height"`
}

// ChromeConfig describes panel decorations used for hit testing.
type ChromeConfig struct {
	HeaderHeight int      `yaml:"header_height"`
	ControlWidth int      `yaml:"control_width"`
	HandleSize   int      `yaml:"handle_size"`
	Controls     []string `yaml:"controls"`
}

// StoreConfig selects the preference store.
type StoreConfig struct {
	// Driver is one of: sqlite, memory.
	Driver string `yaml:"driver"`
	// Path is the sqlite database file. Empty means the default data dir.
	Path string `yaml:"path"`
}

// ThemeConfig picks the startup theme. When Accent is set, the window and
// widget colors are derived from it.
type ThemeConfig struct {
	Name   string `yaml:"name"`
	Accent string `yaml:"accent"`
}

// Config is the daemon configuration.
type Config struct {
	Include    IncludeList    `yaml:"include,omitempty"`
	LogLevel   string         `yaml:"log_level"`
	BaseZIndex int            `yaml:"base_z_index"`
	DebounceMS int            `yaml:"dock_debounce_ms"`
	Viewport   ViewportConfig `yaml:"viewport"`
	Snap       SnapConfig     `yaml:"snap"`
	Panels     PanelConfig    `yaml:"panels"`
	Chrome     ChromeConfig   `yaml:"chrome"`
	Store      StoreConfig    `yaml:"store"`
	Theme      ThemeConfig    `yaml:"theme"`
}

// IncludeList accepts either a single path or a list of paths.
type IncludeList []string

func (l *IncludeList) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		*l = IncludeList{value.Value}
		return nil
	case yaml.SequenceNode:
		var items []string
		if err := value.Decode(&items); err != nil {
			return err
		}
		*l = items
		return nil
	default:
		return fmt.Errorf("include must be a string or a list of strings")
	}
}

// DefaultConfig returns the built-in configuration.
func DefaultConfig() *Config {
	return &Config{
		LogLevel:   "info",
		BaseZIndex: 1000,
		DebounceMS: 100,
		Viewport: ViewportConfig{
			Source:         "auto",
			Width:          1920,
			Height:         1080,
			PollIntervalMS: 2000,
		},
		Snap: SnapConfig{
			CommitDelayMS: 200,
			EdgeThreshold: 30,
			CornerDivisor: 12,
		},
		Panels: PanelConfig{
			MinWidth:            800,
			MinHeight:           600,
			DefaultWidth:        800,
			DefaultHeight:       600,
			WidgetMinWidth:      160,
			WidgetMinHeight:     120,
			WidgetDefaultWidth:  320,
			WidgetDefaultHeight: 240,
		},
		Chrome: ChromeConfig{
			HeaderHeight: 32,
			ControlWidth: 28,
			HandleSize:   8,
			Controls:     []string{"refresh", "minimize", "close"},
		},
		Store: StoreConfig{Driver: "sqlite"},
		Theme: ThemeConfig{Name: "default"},
	}
}

// Validate checks the configuration, returning a *ValidationError naming the
// offending key.
func (c *Config) Validate() error {
	if _, err := ParseLogLevel(c.LogLevel); err != nil {
		return &ValidationError{Path: "log_level", Err: err}
	}
	if c.BaseZIndex < 0 {
		return &ValidationError{Path: "base_z_index", Err: fmt.Errorf("base_z_index must be >= 0")}
	}
	if c.DebounceMS <= 0 {
		return &ValidationError{Path: "dock_debounce_ms", Err: fmt.Errorf("dock_debounce_ms must be > 0")}
	}

	switch c.Viewport.Source {
	case "auto", "x11", "static":
	default:
		return &ValidationError{Path: "viewport.source", Err: fmt.Errorf("viewport.source must be one of: auto, x11, static")}
	}
	if c.Viewport.Source != "x11" && (c.Viewport.Width <= 0 || c.Viewport.Height <= 0) {
		return &ValidationError{Path: "viewport", Err: fmt.Errorf("viewport width and height must be > 0")}
	}
	if c.Viewport.PollIntervalMS < 100 {
		return &ValidationError{Path: "viewport.poll_interval_ms", Err: fmt.Errorf("poll_interval_ms must be >= 100")}
	}

	if c.Snap.CommitDelayMS <= 0 {
		return &ValidationError{Path: "snap.commit_delay_ms", Err: fmt.Errorf("commit_delay_ms must be > 0")}
	}
	if c.Snap.EdgeThreshold <= 0 {
		return &ValidationError{Path: "snap.edge_threshold", Err: fmt.Errorf("edge_threshold must be > 0")}
	}
	if c.Snap.CornerDivisor <= 0 {
		return &ValidationError{Path: "snap.corner_divisor", Err: fmt.Errorf("corner_divisor must be > 0")}
	}

	p := c.Panels
	if p.MinWidth <= 0 || p.MinHeight <= 0 {
		return &ValidationError{Path: "panels.min_width", Err: fmt.Errorf("panel minimums must be > 0")}
	}
	if p.WidgetMinWidth < 0 || p.WidgetMinHeight < 0 {
		return &ValidationError{Path: "panels.widget_min_width", Err: fmt.Errorf("widget minimums must be >= 0")}
	}
	if p.DefaultWidth <= 0 || p.DefaultHeight <= 0 || p.WidgetDefaultWidth <= 0 || p.WidgetDefaultHeight <= 0 {
		return &ValidationError{Path: "panels.default_width", Err: fmt.Errorf("default panel sizes must be > 0")}
	}

	if c.Chrome.HeaderHeight <= 0 {
		return &ValidationError{Path: "chrome.header_height", Err: fmt.Errorf("header_height must be > 0")}
	}
	if c.Chrome.ControlWidth < 0 || c.Chrome.HandleSize < 0 {
		return &ValidationError{Path: "chrome", Err: fmt.Errorf("control_width and handle_size must be >= 0")}
	}
	for i, name := range c.Chrome.Controls {
		switch name {
		case "refresh", "minimize", "close":
		default:
			return &ValidationError{Path: fmt.Sprintf("chrome.controls[%d]", i), Err: fmt.Errorf("unknown control %q", name)}
		}
	}

	switch c.Store.Driver {
	case "sqlite", "memory":
	default:
		return &ValidationError{Path: "store.driver", Err: fmt.Errorf("store.driver must be one of: sqlite, memory")}
	}
	if strings.TrimSpace(c.Theme.Name) == "" {
		return &ValidationError{Path: "theme.name", Err: fmt.Errorf("theme.name is required")}
	}
	return nil
}

// CommitDelay returns the snap hold delay.
func (c *Config) CommitDelay() time.Duration {
	return time.Duration(c.Snap.CommitDelayMS) * time.Millisecond
}

// DockDebounce returns the dock render debounce window.
func (c *Config) DockDebounce() time.Duration {
	return time.Duration(c.DebounceMS) * time.Millisecond
}

// PollInterval returns the viewport poll interval.
func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.Viewport.PollIntervalMS) * time.Millisecond
}

// SlogLevel returns the configured log level. Invalid values fall back to info.
func (c *Config) SlogLevel() slog.Level {
	level, err := ParseLogLevel(c.LogLevel)
	if err != nil {
		return slog.LevelInfo
	}
	return level
}

// ParseLogLevel converts a log_level value into a slog.Level.
func ParseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warning", "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("log_level must be one of: debug, info, warning, error")
	}
}

// Save writes the configuration to path.
//
// Note: this marshals the effective config and will not preserve comments or
// include structure from the original YAML.
func (c *Config) Save(path string) error {
	if err := c.Validate(); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	save := *c
	save.Include = nil
	data, err := yaml.Marshal(&save)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}
