package daemon

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/1broseidon/snapdesk/internal/config"
	"github.com/1broseidon/snapdesk/internal/geometry"
	"github.com/1broseidon/snapdesk/internal/panel"
	"github.com/1broseidon/snapdesk/internal/theme"
	"github.com/1broseidon/snapdesk/internal/wm"
)

type fakeProvider struct {
	mu   sync.Mutex
	size geometry.Size
	err  error
}

func (f *fakeProvider) Size() (geometry.Size, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.size, f.err
}

func (f *fakeProvider) set(size geometry.Size, err error) {
	f.mu.Lock()
	f.size, f.err = size, err
	f.mu.Unlock()
}

func TestReconciler_PushesViewportChanges(t *testing.T) {
	m := wm.NewManager(wm.Config{Viewport: geometry.Size{Width: 1920, Height: 1080}})
	id, _ := m.CreatePanel(panel.Descriptor{Title: "a"})
	m.Snap(id, geometry.RegionRight)

	p := &fakeProvider{size: geometry.Size{Width: 1920, Height: 1080}}
	r := NewReconciler(ReconcilerConfig{}, p, m)

	if r.ReconcileNow() {
		t.Fatal("unchanged viewport reported as a change")
	}

	p.set(geometry.Size{Width: 2560, Height: 1440}, nil)
	if !r.ReconcileNow() {
		t.Fatal("expected viewport change")
	}
	if m.Viewport() != (geometry.Size{Width: 2560, Height: 1440}) {
		t.Fatalf("viewport = %v", m.Viewport())
	}
	got, _ := m.Panel(id)
	if got.Geometry != (geometry.Rect{Left: 1280, Width: 1280, Height: 1440}) {
		t.Fatalf("snapped panel not re-fit: %v", got.Geometry)
	}
}

func TestReconciler_ProviderErrorsKeepViewport(t *testing.T) {
	m := wm.NewManager(wm.Config{Viewport: geometry.Size{Width: 800, Height: 600}})
	p := &fakeProvider{err: errors.New("no display")}
	r := NewReconciler(ReconcilerConfig{}, p, m)

	for i := 0; i < 3; i++ {
		if r.ReconcileNow() {
			t.Fatal("failed read reported as a change")
		}
	}
	if m.Viewport() != (geometry.Size{Width: 800, Height: 600}) {
		t.Fatalf("viewport = %v", m.Viewport())
	}

	p.set(geometry.Size{Width: 0, Height: 600}, nil)
	if r.ReconcileNow() {
		t.Fatal("invalid size applied")
	}
}

func TestReconciler_RunStopsOnCancel(t *testing.T) {
	m := wm.NewManager(wm.Config{Viewport: geometry.Size{Width: 800, Height: 600}})
	p := &fakeProvider{size: geometry.Size{Width: 1024, Height: 768}}
	r := NewReconciler(ReconcilerConfig{Interval: time.Hour}, p, m)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- r.Run(ctx) }()

	// Run reconciles immediately before waiting for the first tick.
	deadline := time.Now().Add(2 * time.Second)
	for m.Viewport() != (geometry.Size{Width: 1024, Height: 768}) {
		if time.Now().After(deadline) {
			t.Fatal("initial reconcile did not run")
		}
		time.Sleep(5 * time.Millisecond)
	}
	r.SetInterval(time.Minute)
	cancel()
	if err := <-done; err != nil {
		t.Fatalf("Run: %v", err)
	}
}

func TestStateSynchronizer_Apply(t *testing.T) {
	m := wm.NewManager(wm.Config{})
	level := new(slog.LevelVar)
	r := NewReconciler(ReconcilerConfig{}, &fakeProvider{}, m)
	applier := theme.NewApplier(m, nil, nil, theme.Default(), nil)

	initial := config.DefaultConfig()
	s := NewStateSynchronizer(Components{WM: m, Reconciler: r, Theme: applier, Level: level}, initial, nil)

	next := config.DefaultConfig()
	next.LogLevel = "debug"
	next.Snap.EdgeThreshold = 50
	next.Snap.CornerDivisor = 8
	next.Viewport.PollIntervalMS = 500
	next.Theme = config.ThemeConfig{Name: "ocean", Accent: "#0077BE"}
	s.Apply(context.Background(), next)

	if level.Level() != slog.LevelDebug {
		t.Fatalf("level = %v", level.Level())
	}
	if got := m.Thresholds(); got != (geometry.Thresholds{Edge: 50, CornerDivisor: 8}) {
		t.Fatalf("thresholds = %+v", got)
	}
	r.mu.Lock()
	interval := r.interval
	r.mu.Unlock()
	if interval != 500*time.Millisecond {
		t.Fatalf("interval = %v", interval)
	}
	if applier.Current().Name != "ocean" {
		t.Fatalf("theme = %s", applier.Current().Name)
	}
	if s.Current() != next {
		t.Fatal("Current did not return the applied config")
	}
}

func TestStateSynchronizer_WarnsAboutRestartOnlySections(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelWarn}))
	s := NewStateSynchronizer(Components{}, config.DefaultConfig(), logger)

	next := config.DefaultConfig()
	next.Chrome.Controls = []string{"close"}
	next.Panels.MinWidth = 640
	s.Apply(context.Background(), next)

	out := buf.String()
	if !strings.Contains(out, "daemon restart") || !strings.Contains(out, "chrome") || !strings.Contains(out, "panels") {
		t.Fatalf("restart warning missing sections: %q", out)
	}

	s.Apply(context.Background(), config.DefaultConfig())
	buf.Reset()
	s.Apply(context.Background(), config.DefaultConfig())
	if strings.Contains(buf.String(), "daemon restart") {
		t.Fatalf("unchanged config warned: %q", buf.String())
	}
}

func TestRestartSections(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
		want   []string
	}{
		{"unchanged", func(*config.Config) {}, nil},
		{"hot settings only", func(c *config.Config) { c.Snap.EdgeThreshold = 5; c.LogLevel = "debug" }, nil},
		{"viewport size", func(c *config.Config) { c.Viewport.Width = 1024 }, []string{"viewport"}},
		{"store", func(c *config.Config) { c.Store.Driver = "memory" }, []string{"store"}},
		{"panels", func(c *config.Config) { c.Panels.WidgetDefaultHeight = 99 }, []string{"panels"}},
		{"chrome controls", func(c *config.Config) { c.Chrome.Controls = append(c.Chrome.Controls, "refresh") }, []string{"chrome"}},
		{"chrome size", func(c *config.Config) { c.Chrome.HeaderHeight = 40 }, []string{"chrome"}},
		{"base z", func(c *config.Config) { c.BaseZIndex = 5 }, []string{"base_z_index"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next := config.DefaultConfig()
			tt.mutate(next)
			if got := restartSections(config.DefaultConfig(), next); !slices.Equal(got, tt.want) {
				t.Fatalf("restartSections = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestThemeFromConfig(t *testing.T) {
	th, err := ThemeFromConfig(config.ThemeConfig{Name: "plain"})
	if err != nil || th.Name != "plain" || th.Colors != theme.Default().Colors {
		t.Fatalf("ThemeFromConfig = %+v, %v", th, err)
	}
	if _, err := ThemeFromConfig(config.ThemeConfig{Name: "x", Accent: "pink"}); err == nil {
		t.Fatal("expected error for invalid accent")
	}
}
