package theme

import (
	"context"
	"strings"
	"testing"

	"github.com/1broseidon/snapdesk/internal/geometry"
	"github.com/1broseidon/snapdesk/internal/panel"
	"github.com/1broseidon/snapdesk/internal/wm"
)

func TestContrastColor(t *testing.T) {
	tests := []struct {
		bg   string
		want string
	}{
		{"#FFFFFF", Black},
		{"#000000", White},
		{"#1E1E1E", White},
		{"#808080", Black},
		{"#A8A8FF", White},
		{"#f0f0f0", Black},
	}
	for _, tt := range tests {
		got, err := ContrastColor(tt.bg)
		if err != nil {
			t.Fatalf("ContrastColor(%q) error: %v", tt.bg, err)
		}
		if got != tt.want {
			t.Errorf("ContrastColor(%q) = %s, want %s", tt.bg, got, tt.want)
		}
	}
	if _, err := ContrastColor("blue"); err == nil {
		t.Fatal("expected error for non-hex color")
	}
}

func TestHeaderStyle_Default(t *testing.T) {
	s := Default().HeaderStyle(false)
	want := HeaderStyle{Background: "#1E1E1Ef2", Border: "#007BFF30", Text: White}
	if s != want {
		t.Fatalf("HeaderStyle = %+v, want %+v", s, want)
	}
}

func TestHeaderStyle_ExplicitTextWins(t *testing.T) {
	th := Default()
	th.Colors.TextWidget = "#ABCDEF"
	if got := th.HeaderStyle(true).Text; got != "#ABCDEF" {
		t.Fatalf("widget text = %s", got)
	}
}

func TestValidate(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("default theme invalid: %v", err)
	}
	bad := Default()
	bad.Colors.Accent = "#12"
	if err := bad.Validate(); err == nil || !strings.Contains(err.Error(), "colors.accent") {
		t.Fatalf("expected accent error, got %v", err)
	}
	bad = Default()
	bad.Transparency.Widgets = 1.5
	if err := bad.Validate(); err == nil {
		t.Fatal("expected transparency error")
	}
}

func TestDerive(t *testing.T) {
	th, err := Derive("ocean", "#007bff")
	if err != nil {
		t.Fatalf("Derive: %v", err)
	}
	if err := th.Validate(); err != nil {
		t.Fatalf("derived theme invalid: %v", err)
	}
	if th.Colors.Accent != "#007BFF" {
		t.Fatalf("accent = %s", th.Colors.Accent)
	}
	if th.Colors.NormalWindow == th.Colors.WidgetWindow {
		t.Fatal("widget color should be hue shifted from the window color")
	}
	if _, err := Derive("x", "nope"); err == nil {
		t.Fatal("expected error for invalid accent")
	}
}

type memKV map[string]string

func (m memKV) Get(_ context.Context, key string) (string, bool, error) {
	v, ok := m[key]
	return v, ok, nil
}

func (m memKV) Set(_ context.Context, key, value string) error {
	m[key] = value
	return nil
}

func TestApplier_StylesPanelsAndPersists(t *testing.T) {
	m := wm.NewManager(wm.Config{Viewport: geometry.Size{Width: 1920, Height: 1080}})
	existing, _ := m.CreatePanel(panel.Descriptor{Title: "a"})

	styled := map[string]HeaderStyle{}
	kv := memKV{}
	a := NewApplier(m, StylerFunc(func(id string, s HeaderStyle) { styled[id] = s }), kv, Default(), nil)
	a.Start()
	defer a.Stop()

	if _, ok := styled[existing]; !ok {
		t.Fatal("existing panel not styled on start")
	}
	widget, _ := m.CreatePanel(panel.Descriptor{Title: "clock", Kind: panel.KindWidget})
	if _, ok := styled[widget]; !ok {
		t.Fatal("new panel not styled")
	}

	light := Default()
	light.Name = "light"
	light.Colors.NormalWindow = "#F5F5F5"
	if err := a.Set(context.Background(), light); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if styled[existing].Text != Black {
		t.Fatalf("existing panel not restyled: %+v", styled[existing])
	}
	if _, ok := kv[StoreKey]; !ok {
		t.Fatal("theme not persisted")
	}

	reloaded := NewApplier(m, nil, kv, Default(), nil)
	if err := reloaded.Load(context.Background()); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if reloaded.Current().Name != "light" {
		t.Fatalf("reloaded theme = %s", reloaded.Current().Name)
	}
}

func TestApplier_SetRejectsInvalid(t *testing.T) {
	m := wm.NewManager(wm.Config{})
	a := NewApplier(m, nil, nil, Default(), nil)
	bad := Default()
	bad.Name = ""
	if err := a.Set(context.Background(), bad); err == nil {
		t.Fatal("expected validation error")
	}
	if a.Current().Name != "default" {
		t.Fatal("invalid theme became current")
	}
}
