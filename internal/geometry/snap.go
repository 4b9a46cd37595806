package geometry

import "fmt"

// Region identifies a snap target on the screen. It doubles as a panel's
// snap state, with RegionNone meaning "not snapped".
type Region string

const (
	RegionNone        Region = "none"
	RegionLeft        Region = "left"
	RegionRight       Region = "right"
	RegionTopLeft     Region = "top-left"
	RegionTopRight    Region = "top-right"
	RegionBottomLeft  Region = "bottom-left"
	RegionBottomRight Region = "bottom-right"
	RegionFull        Region = "full"
)

// Regions lists every snappable region (RegionNone excluded).
var Regions = []Region{
	RegionLeft,
	RegionRight,
	RegionTopLeft,
	RegionTopRight,
	RegionBottomLeft,
	RegionBottomRight,
	RegionFull,
}

const (
	DefaultEdgeThreshold = 30
	DefaultCornerDivisor = 12
)

// Thresholds controls the size of the snap zones.
type Thresholds struct {
	// Edge is the width in pixels of the left, right and top edge strips.
	Edge int
	// CornerDivisor sizes the corner squares as min(w, h) / CornerDivisor.
	CornerDivisor int
}

// DefaultThresholds returns the stock edge and corner zone sizes.
func DefaultThresholds() Thresholds {
	return Thresholds{Edge: DefaultEdgeThreshold, CornerDivisor: DefaultCornerDivisor}
}

// ParseRegion converts a region name into a Region.
func ParseRegion(s string) (Region, error) {
	if s == "" {
		return RegionNone, nil
	}
	r := Region(s)
	if r == RegionNone {
		return r, nil
	}
	for _, known := range Regions {
		if r == known {
			return r, nil
		}
	}
	return RegionNone, fmt.Errorf("unknown snap region %q", s)
}

func (r Region) String() string {
	if r == "" {
		return string(RegionNone)
	}
	return string(r)
}

// Snapped reports whether r is an actual snap target.
func (r Region) Snapped() bool {
	return r != "" && r != RegionNone
}

// CornerThreshold returns the side of the corner squares for the screen.
func (t Thresholds) CornerThreshold(screen Size) int {
	divisor := t.CornerDivisor
	if divisor <= 0 {
		divisor = DefaultCornerDivisor
	}
	return min(screen.Width, screen.Height) / divisor
}

// Classify maps a pointer position to the snap region under it. Corners win
// over edges, and edges win over the top strip.
func Classify(p Point, screen Size, t Thresholds) Region {
	if !screen.Valid() {
		return RegionNone
	}
	corner := t.CornerThreshold(screen)
	edge := t.Edge
	if edge <= 0 {
		edge = DefaultEdgeThreshold
	}

	w, h := screen.Width, screen.Height
	nearLeft := p.X < corner
	nearRight := p.X > w-corner
	nearTop := p.Y < corner
	nearBottom := p.Y > h-corner

	switch {
	case nearLeft && nearTop:
		return RegionTopLeft
	case nearRight && nearTop:
		return RegionTopRight
	case nearLeft && nearBottom:
		return RegionBottomLeft
	case nearRight && nearBottom:
		return RegionBottomRight
	case p.X < edge:
		return RegionLeft
	case p.X > w-edge:
		return RegionRight
	case p.Y < edge:
		return RegionFull
	default:
		return RegionNone
	}
}

// RegionRect returns the rectangle a panel occupies when snapped to r.
// The second result is false for RegionNone or an unusable screen.
func RegionRect(r Region, screen Size) (Rect, bool) {
	if !screen.Valid() {
		return Rect{}, false
	}
	halfW := screen.Width / 2
	halfH := screen.Height / 2

	switch r {
	case RegionLeft:
		return Rect{Left: 0, Top: 0, Width: halfW, Height: screen.Height}, true
	case RegionRight:
		return Rect{Left: halfW, Top: 0, Width: screen.Width - halfW, Height: screen.Height}, true
	case RegionTopLeft:
		return Rect{Left: 0, Top: 0, Width: halfW, Height: halfH}, true
	case RegionTopRight:
		return Rect{Left: halfW, Top: 0, Width: screen.Width - halfW, Height: halfH}, true
	case RegionBottomLeft:
		return Rect{Left: 0, Top: halfH, Width: halfW, Height: screen.Height - halfH}, true
	case RegionBottomRight:
		return Rect{Left: halfW, Top: halfH, Width: screen.Width - halfW, Height: screen.Height - halfH}, true
	case RegionFull:
		return Rect{Left: 0, Top: 0, Width: screen.Width, Height: screen.Height}, true
	default:
		return Rect{}, false
	}
}

// SnapTarget classifies p and resolves the region rect in one step.
func SnapTarget(p Point, screen Size, t Thresholds) (Region, Rect, bool) {
	region := Classify(p, screen, t)
	rect, ok := RegionRect(region, screen)
	if !ok {
		return RegionNone, Rect{}, false
	}
	return region, rect, true
}
