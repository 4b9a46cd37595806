// Package daemon assembles the window manager and its controllers into a
// long-running process, and keeps them in sync with the screen and the
// config file.
package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/1broseidon/snapdesk/internal/config"
	"github.com/1broseidon/snapdesk/internal/desktop"
	"github.com/1broseidon/snapdesk/internal/dock"
	"github.com/1broseidon/snapdesk/internal/drag"
	"github.com/1broseidon/snapdesk/internal/geometry"
	"github.com/1broseidon/snapdesk/internal/ipc"
	"github.com/1broseidon/snapdesk/internal/panel"
	"github.com/1broseidon/snapdesk/internal/resize"
	"github.com/1broseidon/snapdesk/internal/runtimepath"
	"github.com/1broseidon/snapdesk/internal/store"
	"github.com/1broseidon/snapdesk/internal/theme"
	"github.com/1broseidon/snapdesk/internal/viewport"
	"github.com/1broseidon/snapdesk/internal/wm"
)

// Options configure a daemon.
type Options struct {
	// ConfigPath is the file to watch and reload. Empty disables watching.
	ConfigPath string
	// SocketPath overrides the IPC socket location.
	SocketPath string
	// Viewport overrides the provider chosen from the config.
	Viewport viewport.Provider
	// Store overrides the store chosen from the config.
	Store  store.Store
	Logger *slog.Logger
	// Level is adjusted when the config log level changes.
	Level *slog.LevelVar
}

// Daemon owns every live component.
type Daemon struct {
	WM      *wm.Manager
	Drag    *drag.Controller
	Resize  *resize.Controller
	Dock    *dock.Controller
	Desktop *desktop.Desktop
	Theme   *theme.Applier

	opts       Options
	store      store.Store
	provider   viewport.Provider
	closeView  func()
	reconciler *Reconciler
	sync       *StateSynchronizer
	server     *ipc.Server
	logger     *slog.Logger
}

// New builds a daemon from cfg. Call Run to start it and Close afterwards.
func New(ctx context.Context, cfg *config.Config, opts Options) (*Daemon, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	d := &Daemon{opts: opts, logger: logger, closeView: func() {}}

	st := opts.Store
	if st == nil {
		var err error
		if st, err = OpenStore(ctx, cfg.Store, logger); err != nil {
			return nil, err
		}
	}
	d.store = st

	d.provider = opts.Viewport
	if d.provider == nil {
		provider, closeFn, err := NewViewportProvider(cfg.Viewport, logger)
		if err != nil {
			st.Close()
			return nil, err
		}
		d.provider, d.closeView = provider, closeFn
	}
	size, err := d.provider.Size()
	if err != nil {
		logger.Warn("initial viewport unavailable, using configured size", "error", err)
		size = geometry.Size{Width: cfg.Viewport.Width, Height: cfg.Viewport.Height}
	}

	prefs := store.Geometry{Store: st}
	d.WM = wm.NewManager(wm.Config{
		BaseZIndex: cfg.BaseZIndex,
		Viewport:   size,
		Thresholds: geometry.Thresholds{Edge: cfg.Snap.EdgeThreshold, CornerDivisor: cfg.Snap.CornerDivisor},
		Defaults:   PanelDefaults(cfg.Panels),
		Prefs:      prefs,
		Logger:     logger.With("component", "wm"),
	})
	d.Drag = drag.New(d.WM, drag.Config{
		CommitDelay: cfg.CommitDelay(),
		Feedback:    logFeedback{logger: logger.With("component", "drag")},
		Logger:      logger.With("component", "drag"),
	})
	d.Resize = resize.New(d.WM, resize.Config{Store: prefs, Logger: logger.With("component", "resize")})
	d.Dock = dock.New(d.WM, dock.Config{
		Debounce: cfg.DockDebounce(),
		Renderer: dock.RendererFunc(func(v dock.View) {
			logger.Debug("dock", "items", len(v.Items), "hidden", v.Hidden, "empty_desktop", v.EmptyDesktop)
		}),
		Logger: logger.With("component", "dock"),
	})
	d.Desktop = desktop.New(d.WM, d.Drag, d.Resize, d.Dock, desktop.Config{
		Chrome: ChromeFromConfig(cfg.Chrome),
		OnRefresh: func(id string) {
			logger.Info("panel refresh requested", "panel", id)
		},
		Logger: logger.With("component", "desktop"),
	})

	initial, err := ThemeFromConfig(cfg.Theme)
	if err != nil {
		logger.Warn("invalid theme in config, using default", "error", err)
		initial = theme.Default()
	}
	styler := theme.StylerFunc(func(id string, s theme.HeaderStyle) {
		logger.Debug("header styled", "panel", id, "background", s.Background, "text", s.Text)
	})
	d.Theme = theme.NewApplier(d.WM, styler, st, initial, logger.With("component", "theme"))
	if err := d.Theme.Load(ctx); err != nil {
		logger.Warn("ignoring stored theme", "error", err)
	}

	d.reconciler = NewReconciler(ReconcilerConfig{
		Interval: cfg.PollInterval(),
		Logger:   logger.With("component", "viewport"),
	}, d.provider, d.WM)
	d.sync = NewStateSynchronizer(Components{
		WM:         d.WM,
		Drag:       d.Drag,
		Dock:       d.Dock,
		Reconciler: d.reconciler,
		Theme:      d.Theme,
		Level:      opts.Level,
	}, cfg, logger)

	d.server, err = ipc.NewServer(opts.SocketPath, ipc.Services{
		WM:      d.WM,
		Dock:    d.Dock,
		Desktop: d.Desktop,
		Theme:   d.Theme,
		Layouts: prefs,
		Reload:  d.Reload,
	}, logger)
	if err != nil {
		d.Close()
		return nil, err
	}
	return d, nil
}

// SocketPath returns the IPC socket the daemon listens on.
func (d *Daemon) SocketPath() string {
	return d.server.SocketPath()
}

// Config returns the configuration currently applied.
func (d *Daemon) Config() *config.Config {
	return d.sync.Current()
}

// Reload re-reads the config file and applies it.
func (d *Daemon) Reload(ctx context.Context) error {
	if d.opts.ConfigPath == "" {
		return errors.New("no config file to reload")
	}
	res, err := config.LoadFromPath(d.opts.ConfigPath)
	if err != nil {
		return err
	}
	d.sync.Apply(ctx, res.Config)
	return nil
}

// Run starts every loop and blocks until ctx is cancelled or one of them
// fails.
func (d *Daemon) Run(ctx context.Context) error {
	d.Dock.Start()
	defer d.Dock.Stop()
	d.Theme.Start()
	defer d.Theme.Stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return d.server.Run(ctx) })
	g.Go(func() error { return d.reconciler.Run(ctx) })
	if d.opts.ConfigPath != "" {
		w := config.NewWatcher(d.opts.ConfigPath, d.logger.With("component", "config"))
		w.OnChange(func(res *config.LoadResult) {
			d.sync.Apply(ctx, res.Config)
		})
		g.Go(func() error { return w.Run(ctx) })
	}

	d.logger.Info("snapdesk daemon started", "socket", d.server.SocketPath(), "viewport", d.WM.Viewport())
	err := g.Wait()
	if errors.Is(err, context.Canceled) {
		err = nil
	}
	return err
}

// Close releases the store and the display connection.
func (d *Daemon) Close() error {
	if d.server != nil {
		d.server.Stop()
	}
	d.closeView()
	return d.store.Close()
}

// OpenStore opens the preference store a config section selects.
func OpenStore(ctx context.Context, sc config.StoreConfig, logger *slog.Logger) (store.Store, error) {
	switch sc.Driver {
	case "memory":
		return store.NewMemory(), nil
	case "sqlite", "":
		path := sc.Path
		if path == "" {
			var err error
			if path, err = runtimepath.PrefsPath(); err != nil {
				return nil, fmt.Errorf("resolve prefs path: %w", err)
			}
		}
		return store.OpenSQLite(ctx, path, logger.With("component", "store"))
	default:
		return nil, fmt.Errorf("unknown store driver %q", sc.Driver)
	}
}

// NewViewportProvider picks the viewport source a config section selects.
// The returned func releases the provider.
func NewViewportProvider(vc config.ViewportConfig, logger *slog.Logger) (viewport.Provider, func(), error) {
	static := viewport.Static(geometry.Size{Width: vc.Width, Height: vc.Height})
	switch vc.Source {
	case "static":
		return static, func() {}, nil
	case "x11":
		x, err := viewport.NewX11(logger.With("component", "viewport"))
		if err != nil {
			return nil, nil, err
		}
		return x, x.Close, nil
	case "auto", "":
		x, err := viewport.NewX11(logger.With("component", "viewport"))
		if err != nil {
			logger.Warn("no X server, using static viewport", "error", err, "size", geometry.Size(static))
			return static, func() {}, nil
		}
		return x, x.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown viewport source %q", vc.Source)
	}
}

// PanelDefaults converts the panels section into per-kind sizing.
func PanelDefaults(pc config.PanelConfig) panel.Defaults {
	return panel.Defaults{
		Standard:     panel.Limits{MinWidth: pc.MinWidth, MinHeight: pc.MinHeight},
		Widget:       panel.Limits{MinWidth: pc.WidgetMinWidth, MinHeight: pc.WidgetMinHeight},
		StandardSize: geometry.Size{Width: pc.DefaultWidth, Height: pc.DefaultHeight},
		WidgetSize:   geometry.Size{Width: pc.WidgetDefaultWidth, Height: pc.WidgetDefaultHeight},
	}
}

// ChromeFromConfig converts the chrome section into decoration sizes.
func ChromeFromConfig(cc config.ChromeConfig) desktop.Chrome {
	return desktop.Chrome{
		HeaderHeight: cc.HeaderHeight,
		ControlWidth: cc.ControlWidth,
		HandleSize:   cc.HandleSize,
		Controls:     append([]string(nil), cc.Controls...),
	}
}

// logFeedback reports drag previews and cursor changes to the log. A
// compositor front end replaces it.
type logFeedback struct {
	logger *slog.Logger
}

func (f logFeedback) ShowPreview(id string, region geometry.Region, rect geometry.Rect) {
	f.logger.Debug("snap preview", "panel", id, "region", region, "rect", rect)
}

func (f logFeedback) HidePreview(id string) {
	f.logger.Debug("snap preview hidden", "panel", id)
}

func (f logFeedback) SetCursor(id string, c drag.Cursor) {
	f.logger.Debug("cursor", "panel", id, "cursor", c)
}
