package viewport

import (
	"testing"

	"github.com/1broseidon/snapdesk/internal/geometry"
)

func TestStatic(t *testing.T) {
	got, err := Static{Width: 1920, Height: 1080}.Size()
	if err != nil || got != (geometry.Size{Width: 1920, Height: 1080}) {
		t.Fatalf("Size() = %v, %v", got, err)
	}
	if _, err := (Static{}).Size(); err == nil {
		t.Fatal("expected error for zero size")
	}
}

func TestUsable(t *testing.T) {
	monitor := geometry.Rect{Width: 1920, Height: 1080}
	tests := []struct {
		name     string
		workarea geometry.Rect
		want     geometry.Rect
	}{
		{"no workarea", geometry.Rect{}, monitor},
		{"top bar", geometry.Rect{Top: 32, Width: 1920, Height: 1048}, geometry.Rect{Top: 32, Width: 1920, Height: 1048}},
		{"spans two monitors", geometry.Rect{Width: 3840, Height: 1050}, geometry.Rect{Width: 1920, Height: 1050}},
		{"other monitor", geometry.Rect{Left: 1920, Width: 1920, Height: 1080}, monitor},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Usable(monitor, tt.workarea); got != tt.want {
				t.Fatalf("Usable = %v, want %v", got, tt.want)
			}
		})
	}
}
