package store

import (
	"context"
	"errors"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/1broseidon/snapdesk/internal/geometry"
)

func exerciseStore(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()

	if _, ok, err := s.Get(ctx, "missing"); err != nil || ok {
		t.Fatalf("Get(missing) = ok=%v err=%v", ok, err)
	}
	if err := s.Set(ctx, "theme.current", "dark"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := s.Set(ctx, "theme.current", "light"); err != nil {
		t.Fatalf("Set overwrite: %v", err)
	}
	v, ok, err := s.Get(ctx, "theme.current")
	if err != nil || !ok || v != "light" {
		t.Fatalf("Get = %q %v %v", v, ok, err)
	}

	g := Geometry{Store: s}
	want := geometry.Rect{Left: -20, Top: 40, Width: 1024, Height: 768}
	if err := g.SaveGeometry(ctx, "editor", want); err != nil {
		t.Fatalf("SaveGeometry: %v", err)
	}
	got, ok, err := g.LoadGeometry(ctx, "editor")
	if err != nil || !ok || got != want {
		t.Fatalf("LoadGeometry = %v %v %v", got, ok, err)
	}
	if _, ok, _ := g.LoadGeometry(ctx, "files"); ok {
		t.Fatal("unexpected geometry for unknown key")
	}

	keys, err := s.Keys(ctx, GeometryKeyPrefix)
	if err != nil || !slices.Equal(keys, []string{"geometry.editor"}) {
		t.Fatalf("Keys = %v %v", keys, err)
	}

	// Prefixes are matched bytewise, so multi-byte characters count once.
	for _, k := range []string{"geometry.éditeur", "geometry.éditeur.2", "geometry.évier", "geometry.f"} {
		if err := g.SaveGeometry(ctx, strings.TrimPrefix(k, GeometryKeyPrefix), want); err != nil {
			t.Fatalf("SaveGeometry(%s): %v", k, err)
		}
	}
	keys, err = s.Keys(ctx, "geometry.édit")
	if err != nil || !slices.Equal(keys, []string{"geometry.éditeur", "geometry.éditeur.2"}) {
		t.Fatalf("Keys(non-ascii) = %v %v", keys, err)
	}

	remembered, err := g.Remembered(ctx)
	if err != nil || !slices.Equal(remembered, []string{"editor", "f", "éditeur", "éditeur.2", "évier"}) {
		t.Fatalf("Remembered = %v %v", remembered, err)
	}
	for _, k := range []string{"éditeur", "éditeur.2", "évier", "f"} {
		if forgot, err := g.Forget(ctx, k); err != nil || !forgot {
			t.Fatalf("Forget(%s) = %v %v", k, forgot, err)
		}
	}
	if forgot, err := g.Forget(ctx, "évier"); err != nil || forgot {
		t.Fatalf("second Forget = %v %v", forgot, err)
	}

	if err := s.Delete(ctx, "theme.current"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := s.Delete(ctx, "theme.current"); err != nil {
		t.Fatalf("second Delete: %v", err)
	}
	if _, ok, _ := s.Get(ctx, "theme.current"); ok {
		t.Fatal("deleted key still present")
	}
}

func TestMemory(t *testing.T) {
	m := NewMemory()
	exerciseStore(t, m)
	m.Close()
	if err := m.Set(context.Background(), "k", "v"); !errors.Is(err, ErrClosed) {
		t.Fatalf("Set after Close = %v, want ErrClosed", err)
	}
}

func TestSQLite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "prefs.db")
	s, err := OpenSQLite(context.Background(), path, nil)
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	exerciseStore(t, s)
	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	reopened, err := OpenSQLite(context.Background(), path, nil)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()
	if _, ok, err := (Geometry{Store: reopened}).LoadGeometry(context.Background(), "editor"); err != nil || !ok {
		t.Fatalf("geometry not persisted across reopen: ok=%v err=%v", ok, err)
	}
}

func TestLoadGeometry_CorruptValue(t *testing.T) {
	m := NewMemory()
	_ = m.Set(context.Background(), GeometryKeyPrefix+"bad", "{not json")
	if _, _, err := (Geometry{Store: m}).LoadGeometry(context.Background(), "bad"); err == nil {
		t.Fatal("expected decode error")
	}
}

func TestPrefixEnd(t *testing.T) {
	tests := []struct {
		prefix string
		want   string
		ok     bool
	}{
		{"geometry.", "geometry/", true},
		{"a\xff", "b", true},
		{"\xff\xff", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		got, ok := prefixEnd(tt.prefix)
		if got != tt.want || ok != tt.ok {
			t.Errorf("prefixEnd(%q) = %q %v, want %q %v", tt.prefix, got, ok, tt.want, tt.ok)
		}
	}
}

func TestOpenSQLite_EmptyPath(t *testing.T) {
	if _, err := OpenSQLite(context.Background(), "", nil); err == nil {
		t.Fatal("expected error for empty path")
	}
}
