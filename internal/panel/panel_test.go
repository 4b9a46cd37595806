package panel

import (
	"errors"
	"testing"

	"github.com/1broseidon/snapdesk/internal/geometry"
)

func TestNew_ClampsStandardPanelsToMinimum(t *testing.T) {
	p, err := New("panel-1", Descriptor{Title: "Files", Kind: KindFileManager, Width: 300, Height: 200}, DefaultDefaults())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if p.Geometry.Width != 800 || p.Geometry.Height != 600 {
		t.Fatalf("expected 800x600, got %dx%d", p.Geometry.Width, p.Geometry.Height)
	}
	if p.SnapState != geometry.RegionNone {
		t.Fatalf("expected no snap state, got %s", p.SnapState)
	}
	if err := p.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
}

func TestNew_WidgetsUseTheirOwnLimits(t *testing.T) {
	p, err := New("w", Descriptor{Title: "Clock", Kind: KindWidget, Width: 200, Height: 100}, DefaultDefaults())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if p.Geometry.Width != 200 || p.Geometry.Height != 120 {
		t.Fatalf("expected 200x120, got %dx%d", p.Geometry.Width, p.Geometry.Height)
	}
	if !p.IsWidget() {
		t.Fatal("expected widget")
	}
}

func TestNew_RejectsInvalidDescriptors(t *testing.T) {
	tests := []struct {
		name string
		d    Descriptor
	}{
		{"missing title", Descriptor{Title: "  "}},
		{"bad kind", Descriptor{Title: "x", Kind: "terminal"}},
		{"negative size", Descriptor{Title: "x", Width: -1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := New("id", tt.d, DefaultDefaults()); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestApplySnapThenUnsnapRestoresOriginal(t *testing.T) {
	p, _ := New("p", Descriptor{Title: "Editor", Kind: KindEditor}, DefaultDefaults())
	p.Geometry.Left, p.Geometry.Top = 50, 70
	original := p.Geometry

	p.ApplySnap(geometry.RegionLeft, geometry.Rect{Width: 960, Height: 1080})
	p.ApplySnap(geometry.RegionFull, geometry.Rect{Width: 1920, Height: 1080})
	if p.SnapState != geometry.RegionFull {
		t.Fatalf("expected full, got %s", p.SnapState)
	}
	if p.SavedGeometry == nil || *p.SavedGeometry != original {
		t.Fatalf("saved geometry should be the first pre-snap rect, got %v", p.SavedGeometry)
	}

	if !p.Unsnap() {
		t.Fatal("expected unsnap to report a change")
	}
	if p.Geometry != original {
		t.Fatalf("expected %v after unsnap, got %v", original, p.Geometry)
	}
	if p.Unsnap() {
		t.Fatal("second unsnap should be a no-op")
	}
}

func TestApplySnap_NoneIsIgnored(t *testing.T) {
	p, _ := New("p", Descriptor{Title: "x"}, DefaultDefaults())
	before := p.Geometry
	p.ApplySnap(geometry.RegionNone, geometry.Rect{Width: 1, Height: 1})
	if p.Geometry != before || p.SavedGeometry != nil {
		t.Fatal("snapping to none must not change the panel")
	}
}

func TestRegistry_DuplicateLeavesExistingUntouched(t *testing.T) {
	r := NewRegistry()
	first := &Panel{ID: "a", Title: "first"}
	if err := r.Register(first); err != nil {
		t.Fatalf("register: %v", err)
	}
	err := r.Register(&Panel{ID: "a", Title: "second"})
	if !errors.Is(err, ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}
	got, ok := r.Get("a")
	if !ok || got.Title != "first" {
		t.Fatalf("existing panel replaced: %+v", got)
	}
}

func TestRegistry_RemoveIsIdempotent(t *testing.T) {
	r := NewRegistry()
	_ = r.Register(&Panel{ID: "a"})
	r.Remove("a")
	r.Remove("a")
	r.Remove("never")
	if r.Len() != 0 {
		t.Fatalf("expected empty registry, got %d", r.Len())
	}
	if _, ok := r.Get("a"); ok {
		t.Fatal("expected a to be gone")
	}
}

func TestRegistry_SnapshotIsOrderedAndDetached(t *testing.T) {
	r := NewRegistry()
	_ = r.Register(&Panel{ID: "top", ZIndex: 1005})
	_ = r.Register(&Panel{ID: "bottom", ZIndex: 1001})
	_ = r.Register(&Panel{ID: "mid", ZIndex: 1003, SavedGeometry: &geometry.Rect{Width: 9}})

	snap := r.Snapshot()
	if len(snap) != 3 || snap[0].ID != "bottom" || snap[2].ID != "top" {
		t.Fatalf("unexpected order: %v %v %v", snap[0].ID, snap[1].ID, snap[2].ID)
	}
	snap[1].SavedGeometry.Width = 1
	mid, _ := r.Get("mid")
	if mid.SavedGeometry.Width != 9 {
		t.Fatal("snapshot shares saved geometry with the registry")
	}
}
