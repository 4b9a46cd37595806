package resize

import (
	"context"
	"errors"
	"testing"

	"github.com/1broseidon/snapdesk/internal/geometry"
	"github.com/1broseidon/snapdesk/internal/panel"
	"github.com/1broseidon/snapdesk/internal/wm"
)

var std = panel.StandardLimits()

func TestApply_AllHandles(t *testing.T) {
	start := geometry.Rect{Left: 100, Top: 100, Width: 1000, Height: 800}
	delta := geometry.Point{X: 50, Y: 40}

	tests := []struct {
		handle Handle
		want   geometry.Rect
	}{
		{HandleE, geometry.Rect{Left: 100, Top: 100, Width: 1050, Height: 800}},
		{HandleS, geometry.Rect{Left: 100, Top: 100, Width: 1000, Height: 840}},
		{HandleSE, geometry.Rect{Left: 100, Top: 100, Width: 1050, Height: 840}},
		{HandleW, geometry.Rect{Left: 150, Top: 100, Width: 950, Height: 800}},
		{HandleN, geometry.Rect{Left: 100, Top: 140, Width: 1000, Height: 760}},
		{HandleNW, geometry.Rect{Left: 150, Top: 140, Width: 950, Height: 760}},
		{HandleNE, geometry.Rect{Left: 100, Top: 140, Width: 1050, Height: 760}},
		{HandleSW, geometry.Rect{Left: 150, Top: 100, Width: 950, Height: 840}},
	}
	for _, tt := range tests {
		t.Run(string(tt.handle), func(t *testing.T) {
			if got := Apply(tt.handle, start, delta, std); got != tt.want {
				t.Fatalf("Apply(%s) = %v, want %v", tt.handle, got, tt.want)
			}
		})
	}
}

func TestApply_MinimumSizeNeverViolated(t *testing.T) {
	start := geometry.Rect{Left: 0, Top: 0, Width: 900, Height: 700}
	deltas := []geometry.Point{{X: -5000, Y: -5000}, {X: 5000, Y: 5000}, {X: -1, Y: 3}, {X: 99, Y: -101}}
	for _, h := range Handles {
		for _, d := range deltas {
			got := Apply(h, start, d, std)
			if got.Width < 800 || got.Height < 600 {
				t.Fatalf("Apply(%s, %v) = %v below minimum", h, d, got)
			}
		}
	}
}

func TestApply_WestEdgeStopsAtMinimum(t *testing.T) {
	start := geometry.Rect{Left: 200, Top: 200, Width: 900, Height: 700}
	// Shrinking far past the minimum pins the right edge at 1100.
	got := Apply(HandleNW, start, geometry.Point{X: 5000, Y: 5000}, std)
	if got.Left+got.Width != 1100 || got.Top+got.Height != 900 {
		t.Fatalf("opposite edges drifted: %v", got)
	}
	if got.Width != 800 || got.Height != 600 {
		t.Fatalf("size = %v", got)
	}
}

type memStore struct {
	saved map[string]geometry.Rect
	err   error
}

func (m *memStore) SaveGeometry(_ context.Context, key string, r geometry.Rect) error {
	if m.err != nil {
		return m.err
	}
	if m.saved == nil {
		m.saved = map[string]geometry.Rect{}
	}
	m.saved[key] = r
	return nil
}

func newManager(t *testing.T) (*wm.Manager, string) {
	t.Helper()
	m := wm.NewManager(wm.Config{Viewport: geometry.Size{Width: 1920, Height: 1080}})
	id, err := m.CreatePanel(panel.Descriptor{
		Title:      "editor",
		Kind:       panel.KindEditor,
		PersistKey: "editor.main",
		Width:      900,
		Height:     700,
		Position:   &geometry.Point{X: 100, Y: 100},
	})
	if err != nil {
		t.Fatalf("CreatePanel: %v", err)
	}
	return m, id
}

func TestController_ResizeAndPersist(t *testing.T) {
	m, id := newManager(t)
	store := &memStore{}
	c := New(m, Config{Store: store})

	if !c.Down(id, HandleSE, geometry.Point{X: 1000, Y: 800}) {
		t.Fatal("Down reported false")
	}
	c.Move(geometry.Point{X: 1100, Y: 850})
	c.Move(geometry.Point{X: 1200, Y: 900})
	if !c.Up(context.Background()) {
		t.Fatal("Up reported false")
	}

	want := geometry.Rect{Left: 100, Top: 100, Width: 1100, Height: 800}
	p, _ := m.Panel(id)
	if p.Geometry != want {
		t.Fatalf("geometry = %v, want %v", p.Geometry, want)
	}
	if store.saved["editor.main"] != want {
		t.Fatalf("persisted %v, want %v", store.saved["editor.main"], want)
	}
}

func TestController_DownClearsSnap(t *testing.T) {
	m, id := newManager(t)
	m.Snap(id, geometry.RegionLeft)
	c := New(m, Config{})
	c.Down(id, HandleE, geometry.Point{X: 960, Y: 500})
	p, _ := m.Panel(id)
	if p.Snapped() || p.SavedGeometry != nil {
		t.Fatalf("snap state survived resize start: %+v", p)
	}
	if p.Geometry != (geometry.Rect{Width: 960, Height: 1080}) {
		t.Fatalf("resize should start from the snapped rect, got %v", p.Geometry)
	}
}

func TestController_RacesAreNoOps(t *testing.T) {
	m, id := newManager(t)
	c := New(m, Config{})
	if c.Move(geometry.Point{X: 1, Y: 1}) {
		t.Fatal("Move without a session should report false")
	}
	if c.Up(context.Background()) {
		t.Fatal("Up without a session should report false")
	}
	if c.Down("missing", HandleSE, geometry.Point{}) {
		t.Fatal("Down on unknown panel should report false")
	}
	p, _ := m.Panel(id)
	if p.Geometry.Width != 900 {
		t.Fatalf("geometry changed: %v", p.Geometry)
	}
}

func TestController_PersistFailureIsAbsorbed(t *testing.T) {
	m, id := newManager(t)
	c := New(m, Config{Store: &memStore{err: errors.New("disk full")}})
	c.Down(id, HandleSE, geometry.Point{})
	c.Move(geometry.Point{X: 10, Y: 10})
	if !c.Up(context.Background()) {
		t.Fatal("Up should still report the finished resize")
	}
}

func TestParseHandle(t *testing.T) {
	if h, err := ParseHandle("nw"); err != nil || h != HandleNW {
		t.Fatalf("ParseHandle(nw) = %v, %v", h, err)
	}
	if _, err := ParseHandle("up"); err == nil {
		t.Fatal("expected error for unknown handle")
	}
}
