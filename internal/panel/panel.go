package panel

import (
	"fmt"
	"strings"

	"github.com/1broseidon/snapdesk/internal/geometry"
)

// Kind identifies what a panel hosts.
type Kind string

const (
	KindStandard     Kind = "standard"
	KindWidget       Kind = "widget"
	KindBrowser      Kind = "browser"
	KindFileManager  Kind = "file-manager"
	KindEditor       Kind = "editor"
	KindControlPanel Kind = "control-panel"
)

// ParseKind converts a kind name into a Kind. Empty means standard.
func ParseKind(s string) (Kind, error) {
	switch k := Kind(strings.TrimSpace(s)); k {
	case "":
		return KindStandard, nil
	case KindStandard, KindWidget, KindBrowser, KindFileManager, KindEditor, KindControlPanel:
		return k, nil
	default:
		return "", fmt.Errorf("unknown panel kind %q", s)
	}
}

// IsWidget reports whether panels of this kind are widgets.
func (k Kind) IsWidget() bool {
	return k == KindWidget
}

// Limits holds the minimum dimensions a panel may be resized to.
type Limits struct {
	MinWidth  int `yaml:"min_width" json:"min_width"`
	MinHeight int `yaml:"min_height" json:"min_height"`
}

const (
	DefaultMinWidth  = 800
	DefaultMinHeight = 600
)

// StandardLimits returns the minimums for non-widget panels.
func StandardLimits() Limits {
	return Limits{MinWidth: DefaultMinWidth, MinHeight: DefaultMinHeight}
}

// Clamp grows r's size up to the limits. Position is left untouched.
func (l Limits) Clamp(r geometry.Rect) geometry.Rect {
	r.Width = max(r.Width, l.MinWidth)
	r.Height = max(r.Height, l.MinHeight)
	return r
}

// Panel is a rectangular on-screen surface managed by the window manager.
type Panel struct {
	ID         string          `json:"id"`
	Title      string          `json:"title"`
	Kind       Kind            `json:"kind"`
	Icon       string          `json:"icon,omitempty"`
	PersistKey string          `json:"persist_key,omitempty"`
	Minimized  bool            `json:"minimized"`
	Focused    bool            `json:"focused"`
	ZIndex     int             `json:"z_index"`
	Geometry   geometry.Rect   `json:"geometry"`
	SnapState  geometry.Region `json:"snap_state"`
	// SavedGeometry is the rect the panel had before its first snap.
	SavedGeometry *geometry.Rect `json:"saved_geometry,omitempty"`
	Limits        Limits         `json:"limits"`
}

// IsWidget reports whether the panel is a widget.
func (p *Panel) IsWidget() bool {
	return p.Kind.IsWidget()
}

// Snapped reports whether the panel currently occupies a snap region.
func (p *Panel) Snapped() bool {
	return p.SnapState.Snapped()
}

// ApplySnap moves the panel into rect and records region as its snap state.
// The pre-snap geometry is saved only when nothing is saved yet, so chains of
// snaps still restore to the original free-form rect.
func (p *Panel) ApplySnap(region geometry.Region, rect geometry.Rect) {
	if !region.Snapped() {
		return
	}
	if p.SavedGeometry == nil {
		saved := p.Geometry
		p.SavedGeometry = &saved
	}
	p.Geometry = rect
	p.SnapState = region
}

// Unsnap restores the saved pre-snap geometry. It reports whether anything changed.
func (p *Panel) Unsnap() bool {
	if !p.Snapped() && p.SavedGeometry == nil {
		return false
	}
	if p.SavedGeometry != nil {
		p.Geometry = *p.SavedGeometry
	}
	p.SavedGeometry = nil
	p.SnapState = geometry.RegionNone
	return true
}

// ClearSnap drops the snap state but keeps the current geometry, which
// becomes the new free-form rect.
func (p *Panel) ClearSnap() {
	p.SavedGeometry = nil
	p.SnapState = geometry.RegionNone
}

// Clone returns a deep copy safe to hand outside the manager lock.
func (p *Panel) Clone() *Panel {
	if p == nil {
		return nil
	}
	c := *p
	if p.SavedGeometry != nil {
		saved := *p.SavedGeometry
		c.SavedGeometry = &saved
	}
	return &c
}

// Validate checks the structural invariants of a panel.
func (p *Panel) Validate() error {
	if strings.TrimSpace(p.ID) == "" {
		return fmt.Errorf("panel id is required")
	}
	if p.Snapped() && p.SavedGeometry == nil {
		return fmt.Errorf("panel %s: snapped to %s without saved geometry", p.ID, p.SnapState)
	}
	if !p.Snapped() {
		if p.Geometry.Width < p.Limits.MinWidth || p.Geometry.Height < p.Limits.MinHeight {
			return fmt.Errorf("panel %s: %dx%d is below minimum %dx%d",
				p.ID, p.Geometry.Width, p.Geometry.Height, p.Limits.MinWidth, p.Limits.MinHeight)
		}
	}
	return nil
}
