package desktop

import (
	"github.com/1broseidon/snapdesk/internal/geometry"
	"github.com/1broseidon/snapdesk/internal/panel"
	"github.com/1broseidon/snapdesk/internal/resize"
)

// Part identifies which piece of a panel's chrome a point falls on.
type Part string

const (
	PartBody    Part = "body"
	PartHeader  Part = "header"
	PartControl Part = "control"
	PartHandle  Part = "handle"
)

// Control button names.
const (
	ControlRefresh  = "refresh"
	ControlMinimize = "minimize"
	ControlClose    = "close"
)

// Chrome describes the layout of panel decorations.
type Chrome struct {
	HeaderHeight int      `yaml:"header_height" json:"header_height"`
	ControlWidth int      `yaml:"control_width" json:"control_width"`
	HandleSize   int      `yaml:"handle_size" json:"handle_size"`
	Controls     []string `yaml:"controls" json:"controls"`
}

// DefaultChrome returns the stock decoration sizes.
func DefaultChrome() Chrome {
	return Chrome{
		HeaderHeight: 32,
		ControlWidth: 28,
		HandleSize:   8,
		Controls:     []string{ControlRefresh, ControlMinimize, ControlClose},
	}
}

// Hit is the result of a hit test.
type Hit struct {
	PanelID string        `json:"panel_id"`
	Part    Part          `json:"part"`
	Control string        `json:"control,omitempty"`
	Handle  resize.Handle `json:"handle,omitempty"`
}

// HandlesFor returns the resize handles a panel kind exposes. Standard panels
// and widgets only have the bottom-right grip.
func HandlesFor(k panel.Kind) []resize.Handle {
	switch k {
	case panel.KindStandard, panel.KindWidget:
		return []resize.Handle{resize.HandleSE}
	default:
		return resize.Handles
	}
}

// Classify reports which part of p lies under pt. The point must already be
// known to be inside p's rect.
func (c Chrome) Classify(p *panel.Panel, pt geometry.Point) Hit {
	hit := Hit{PanelID: p.ID, Part: PartBody}
	r := p.Geometry
	local := r.Offset(pt)

	if h, ok := c.handleAt(p.Kind, r, local); ok {
		hit.Part = PartHandle
		hit.Handle = h
		return hit
	}
	if local.Y >= c.HeaderHeight {
		return hit
	}
	// Controls are right-aligned in the header, in order.
	fromRight := r.Width - local.X
	n := len(c.Controls)
	if c.ControlWidth > 0 && fromRight > 0 && fromRight <= n*c.ControlWidth {
		idx := n - 1 - (fromRight-1)/c.ControlWidth
		hit.Part = PartControl
		hit.Control = c.Controls[idx]
		return hit
	}
	hit.Part = PartHeader
	return hit
}

func (c Chrome) handleAt(k panel.Kind, r geometry.Rect, local geometry.Point) (resize.Handle, bool) {
	s := c.HandleSize
	if s <= 0 {
		return "", false
	}
	west := local.X < s
	east := local.X >= r.Width-s
	north := local.Y < s
	south := local.Y >= r.Height-s

	var want resize.Handle
	switch {
	case north && west:
		want = resize.HandleNW
	case north && east:
		want = resize.HandleNE
	case south && west:
		want = resize.HandleSW
	case south && east:
		want = resize.HandleSE
	case north:
		want = resize.HandleN
	case south:
		want = resize.HandleS
	case west:
		want = resize.HandleW
	case east:
		want = resize.HandleE
	default:
		return "", false
	}
	for _, h := range HandlesFor(k) {
		if h == want {
			return h, true
		}
	}
	return "", false
}
