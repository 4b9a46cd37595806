package daemon

import (
	"context"
	"log/slog"
	"slices"
	"sync"

	"github.com/1broseidon/snapdesk/internal/config"
	"github.com/1broseidon/snapdesk/internal/dock"
	"github.com/1broseidon/snapdesk/internal/drag"
	"github.com/1broseidon/snapdesk/internal/geometry"
	"github.com/1broseidon/snapdesk/internal/theme"
	"github.com/1broseidon/snapdesk/internal/wm"
)

// Components are the live objects a reloaded config is pushed into. Any
// field may be nil.
type Components struct {
	WM         *wm.Manager
	Drag       *drag.Controller
	Dock       *dock.Controller
	Reconciler *Reconciler
	Theme      *theme.Applier
	// Level is the daemon log level.
	Level *slog.LevelVar
}

// StateSynchronizer applies configuration changes to running components
// without a restart.
type StateSynchronizer struct {
	c      Components
	logger *slog.Logger

	mu   sync.Mutex
	last *config.Config
}

// NewStateSynchronizer creates a synchronizer. initial is the config the
// components were built from.
func NewStateSynchronizer(c Components, initial *config.Config, logger *slog.Logger) *StateSynchronizer {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &StateSynchronizer{c: c, last: initial, logger: logger}
}

// Current returns the config most recently applied.
func (s *StateSynchronizer) Current() *config.Config {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last
}

// Apply pushes cfg into every component. Settings that need a restart are
// logged and left alone.
func (s *StateSynchronizer) Apply(ctx context.Context, cfg *config.Config) {
	s.mu.Lock()
	prev := s.last
	s.last = cfg
	s.mu.Unlock()

	if s.c.Level != nil {
		s.c.Level.Set(cfg.SlogLevel())
	}
	if s.c.WM != nil {
		s.c.WM.SetThresholds(geometry.Thresholds{
			Edge:          cfg.Snap.EdgeThreshold,
			CornerDivisor: cfg.Snap.CornerDivisor,
		})
	}
	if s.c.Drag != nil {
		s.c.Drag.SetCommitDelay(cfg.CommitDelay())
	}
	if s.c.Dock != nil {
		s.c.Dock.SetDebounce(cfg.DockDebounce())
	}
	if s.c.Reconciler != nil {
		s.c.Reconciler.SetInterval(cfg.PollInterval())
	}

	if prev != nil {
		if prev.Theme != cfg.Theme {
			s.applyTheme(ctx, cfg.Theme)
		}
		if sections := restartSections(prev, cfg); len(sections) > 0 {
			s.logger.Warn("some config changes take effect after a daemon restart", "sections", sections)
		}
	}

	s.logger.Info("config applied",
		"commit_delay", cfg.CommitDelay(),
		"edge_threshold", cfg.Snap.EdgeThreshold,
		"dock_debounce", cfg.DockDebounce(),
		"log_level", cfg.LogLevel)
}

// restartSections names the config sections that differ between prev and
// next but are only read at startup.
func restartSections(prev, next *config.Config) []string {
	var out []string
	if prev.Viewport.Source != next.Viewport.Source ||
		prev.Viewport.Width != next.Viewport.Width ||
		prev.Viewport.Height != next.Viewport.Height {
		out = append(out, "viewport")
	}
	if prev.Store != next.Store {
		out = append(out, "store")
	}
	if prev.Panels != next.Panels {
		out = append(out, "panels")
	}
	pc, nc := prev.Chrome, next.Chrome
	if pc.HeaderHeight != nc.HeaderHeight ||
		pc.ControlWidth != nc.ControlWidth ||
		pc.HandleSize != nc.HandleSize ||
		!slices.Equal(pc.Controls, nc.Controls) {
		out = append(out, "chrome")
	}
	if prev.BaseZIndex != next.BaseZIndex {
		out = append(out, "base_z_index")
	}
	return out
}

func (s *StateSynchronizer) applyTheme(ctx context.Context, tc config.ThemeConfig) {
	if s.c.Theme == nil {
		return
	}
	t, err := ThemeFromConfig(tc)
	if err != nil {
		s.logger.Warn("invalid theme in config", "theme", tc.Name, "error", err)
		return
	}
	if err := s.c.Theme.Set(ctx, t); err != nil {
		s.logger.Warn("failed to apply theme", "theme", tc.Name, "error", err)
	}
}

// ThemeFromConfig builds the theme a config section describes.
func ThemeFromConfig(tc config.ThemeConfig) (theme.Theme, error) {
	if tc.Accent != "" {
		return theme.Derive(tc.Name, tc.Accent)
	}
	t := theme.Default()
	if tc.Name != "" {
		t.Name = tc.Name
	}
	return t, nil
}
