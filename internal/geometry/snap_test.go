package geometry

import "testing"

func TestClassify_FullHDReferencePoints(t *testing.T) {
	screen := Size{Width: 1920, Height: 1080}
	th := DefaultThresholds()

	tests := []struct {
		name   string
		point  Point
		region Region
		rect   Rect
		ok     bool
	}{
		{"top-left corner", Point{5, 5}, RegionTopLeft, Rect{0, 0, 960, 540}, true},
		{"right edge", Point{1915, 540}, RegionRight, Rect{960, 0, 960, 1080}, true},
		{"top strip", Point{960, 5}, RegionFull, Rect{0, 0, 1920, 1080}, true},
		{"center", Point{960, 540}, RegionNone, Rect{}, false},
		{"left edge", Point{10, 540}, RegionLeft, Rect{0, 0, 960, 1080}, true},
		{"top-right corner", Point{1900, 10}, RegionTopRight, Rect{960, 0, 960, 540}, true},
		{"bottom-left corner", Point{20, 1070}, RegionBottomLeft, Rect{0, 540, 960, 540}, true},
		{"bottom-right corner", Point{1919, 1079}, RegionBottomRight, Rect{960, 540, 960, 540}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			region, rect, ok := SnapTarget(tt.point, screen, th)
			if region != tt.region {
				t.Fatalf("region = %s, want %s", region, tt.region)
			}
			if ok != tt.ok {
				t.Fatalf("ok = %v, want %v", ok, tt.ok)
			}
			if rect != tt.rect {
				t.Fatalf("rect = %v, want %v", rect, tt.rect)
			}
		})
	}
}

func TestClassify_CornersBeatEdges(t *testing.T) {
	screen := Size{Width: 1920, Height: 1080}
	// Inside both the left edge strip and the top-left corner square.
	if got := Classify(Point{X: 3, Y: 60}, screen, DefaultThresholds()); got != RegionTopLeft {
		t.Fatalf("expected corner to win, got %s", got)
	}
	// Inside the top strip and the top-right corner square.
	if got := Classify(Point{X: 1850, Y: 2}, screen, DefaultThresholds()); got != RegionTopRight {
		t.Fatalf("expected corner to win over top strip, got %s", got)
	}
}

func TestClassify_EdgesBeatTopStrip(t *testing.T) {
	// Small divisor keeps the corner zone tiny so the edge strip is reachable near the top.
	screen := Size{Width: 1920, Height: 1080}
	th := Thresholds{Edge: 30, CornerDivisor: 200}
	if got := Classify(Point{X: 2, Y: 20}, screen, th); got != RegionLeft {
		t.Fatalf("expected left edge, got %s", got)
	}
}

func TestClassify_InvalidScreen(t *testing.T) {
	if got := Classify(Point{1, 1}, Size{}, DefaultThresholds()); got != RegionNone {
		t.Fatalf("expected none for empty screen, got %s", got)
	}
}

func TestRegionRect_OddSizesCoverScreen(t *testing.T) {
	screen := Size{Width: 1001, Height: 701}
	left, _ := RegionRect(RegionLeft, screen)
	right, _ := RegionRect(RegionRight, screen)
	if left.Width+right.Width != screen.Width {
		t.Fatalf("halves do not cover width: %d + %d", left.Width, right.Width)
	}
	if right.Left != left.Width {
		t.Fatalf("right half starts at %d, want %d", right.Left, left.Width)
	}
	br, _ := RegionRect(RegionBottomRight, screen)
	if br.Top+br.Height != screen.Height || br.Left+br.Width != screen.Width {
		t.Fatalf("bottom-right quadrant %v does not reach the screen corner", br)
	}
}

func TestRegionRect_Idempotent(t *testing.T) {
	screen := Size{Width: 1280, Height: 800}
	for _, r := range Regions {
		a, okA := RegionRect(r, screen)
		b, okB := RegionRect(r, screen)
		if !okA || !okB || a != b {
			t.Fatalf("region %s not deterministic: %v %v", r, a, b)
		}
	}
}

func TestParseRegion(t *testing.T) {
	for _, r := range Regions {
		got, err := ParseRegion(string(r))
		if err != nil || got != r {
			t.Fatalf("ParseRegion(%q) = %q, %v", r, got, err)
		}
	}
	if got, err := ParseRegion(""); err != nil || got != RegionNone {
		t.Fatalf("empty should parse as none, got %q, %v", got, err)
	}
	if _, err := ParseRegion("diagonal"); err == nil {
		t.Fatal("expected error for unknown region")
	}
}

func TestRectContains(t *testing.T) {
	r := Rect{Left: 100, Top: 100, Width: 200, Height: 150}
	tests := []struct {
		p    Point
		want bool
	}{
		{Point{150, 175}, true},
		{Point{100, 100}, true},
		{Point{299, 249}, true},
		{Point{300, 100}, false},
		{Point{99, 100}, false},
		{Point{100, 250}, false},
	}
	for _, tt := range tests {
		if got := r.Contains(tt.p); got != tt.want {
			t.Errorf("Contains(%v) = %v, want %v", tt.p, got, tt.want)
		}
	}
}
