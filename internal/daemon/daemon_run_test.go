package daemon

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/1broseidon/snapdesk/internal/config"
	"github.com/1broseidon/snapdesk/internal/geometry"
	"github.com/1broseidon/snapdesk/internal/ipc"
	"github.com/1broseidon/snapdesk/internal/panel"
	"github.com/1broseidon/snapdesk/internal/store"
	"github.com/1broseidon/snapdesk/internal/viewport"
)

func discard() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func startDaemon(t *testing.T, cfgPath string) (*Daemon, *ipc.Client) {
	t.Helper()

	// Unix socket paths are length limited; keep the directory short.
	dir, err := os.MkdirTemp("", "sdd")
	if err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(dir) })

	res, err := config.LoadFromPath(cfgPath)
	if err != nil {
		t.Fatalf("LoadFromPath: %v", err)
	}
	d, err := New(context.Background(), res.Config, Options{
		ConfigPath: cfgPath,
		SocketPath: filepath.Join(dir, "d.sock"),
		Viewport:   viewport.Static(geometry.Size{Width: 2560, Height: 1440}),
		Store:      store.NewMemory(),
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- d.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		select {
		case err := <-done:
			if err != nil {
				t.Errorf("Run: %v", err)
			}
		case <-time.After(5 * time.Second):
			t.Error("daemon did not stop")
		}
		d.Close()
	})

	client := ipc.NewClientWithPath(d.SocketPath())
	deadline := time.Now().Add(2 * time.Second)
	for client.Ping(context.Background()) != nil {
		if time.Now().After(deadline) {
			t.Fatal("daemon did not start listening")
		}
		time.Sleep(10 * time.Millisecond)
	}
	return d, client
}

func TestDaemon_ServesPanelsOverIPC(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "config.yaml")
	d, client := startDaemon(t, cfgPath)
	ctx := context.Background()

	id, err := client.CreatePanel(ctx, panel.Descriptor{Title: "Files", Kind: panel.KindFileManager})
	if err != nil {
		t.Fatalf("CreatePanel: %v", err)
	}
	res, err := client.Snap(ctx, id, "right")
	if err != nil || !res.Changed {
		t.Fatalf("Snap = %+v, %v", res, err)
	}
	p, _ := d.WM.Panel(id)
	if p.Geometry != (geometry.Rect{Left: 1280, Width: 1280, Height: 1440}) {
		t.Fatalf("geometry = %v", p.Geometry)
	}

	status, err := client.GetStatus(ctx)
	if err != nil {
		t.Fatalf("GetStatus: %v", err)
	}
	if status.Viewport != (geometry.Size{Width: 2560, Height: 1440}) || status.PanelCount != 1 {
		t.Fatalf("status = %+v", status)
	}
}

func TestDaemon_ReloadAppliesConfig(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "config.yaml")
	d, client := startDaemon(t, cfgPath)

	if err := os.WriteFile(cfgPath, []byte("snap:\n  edge_threshold: 12\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := client.Reload(context.Background()); err != nil {
		t.Fatalf("Reload: %v", err)
	}
	if got := d.WM.Thresholds().Edge; got != 12 {
		t.Fatalf("edge threshold = %d", got)
	}
	if got := d.Config().Snap.EdgeThreshold; got != 12 {
		t.Fatalf("applied config edge = %d", got)
	}

	if err := os.WriteFile(cfgPath, []byte("snap:\n  edge_threshold: -1\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := client.Reload(context.Background()); err == nil {
		t.Fatal("expected reload error for invalid config")
	}
	if got := d.WM.Thresholds().Edge; got != 12 {
		t.Fatalf("invalid reload changed edge threshold to %d", got)
	}
}

func TestOpenStore(t *testing.T) {
	ctx := context.Background()

	mem, err := OpenStore(ctx, config.StoreConfig{Driver: "memory"}, discard())
	if err != nil {
		t.Fatalf("memory: %v", err)
	}
	mem.Close()

	path := filepath.Join(t.TempDir(), "prefs.db")
	db, err := OpenStore(ctx, config.StoreConfig{Driver: "sqlite", Path: path}, discard())
	if err != nil {
		t.Fatalf("sqlite: %v", err)
	}
	defer db.Close()
	if err := db.Set(ctx, "k", "v"); err != nil {
		t.Fatalf("Set: %v", err)
	}

	if _, err := OpenStore(ctx, config.StoreConfig{Driver: "redis"}, discard()); err == nil {
		t.Fatal("expected error for unknown driver")
	}
}

func TestNewViewportProvider_Static(t *testing.T) {
	p, closeFn, err := NewViewportProvider(config.ViewportConfig{Source: "static", Width: 1280, Height: 720}, discard())
	if err != nil {
		t.Fatalf("NewViewportProvider: %v", err)
	}
	defer closeFn()
	size, err := p.Size()
	if err != nil || size != (geometry.Size{Width: 1280, Height: 720}) {
		t.Fatalf("Size = %v, %v", size, err)
	}

	if _, _, err := NewViewportProvider(config.ViewportConfig{Source: "wayland"}, discard()); err == nil {
		t.Fatal("expected error for unknown source")
	}
}

func TestPanelDefaultsAndChrome(t *testing.T) {
	cfg := config.DefaultConfig()
	if got := PanelDefaults(cfg.Panels); got != panel.DefaultDefaults() {
		t.Fatalf("PanelDefaults = %+v", got)
	}
	chrome := ChromeFromConfig(cfg.Chrome)
	if chrome.HeaderHeight != 32 || len(chrome.Controls) != 3 {
		t.Fatalf("chrome = %+v", chrome)
	}
}

func TestDaemon_MissingConfigDirectoryKeepsRunning(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "missing", "config.yaml")
	_, client := startDaemon(t, cfgPath)

	time.Sleep(200 * time.Millisecond)
	if err := client.Ping(context.Background()); err != nil {
		t.Fatalf("daemon stopped without a config directory: %v", err)
	}
	status, err := client.GetStatus(context.Background())
	if err != nil {
		t.Fatalf("GetStatus: %v", err)
	}
	if status.PanelCount != 0 {
		t.Fatalf("panel count = %d", status.PanelCount)
	}
}
