package panel

import (
	"fmt"
	"strings"

	"github.com/1broseidon/snapdesk/internal/geometry"
)

// Descriptor is the input for creating a panel.
type Descriptor struct {
	// ID is optional; the window manager assigns one when empty.
	ID         string `json:"id,omitempty"`
	Title      string `json:"title"`
	Kind       Kind   `json:"kind,omitempty"`
	Icon       string `json:"icon,omitempty"`
	PersistKey string `json:"persist_key,omitempty"`
	// Geometry is optional; a zero Width/Height selects the kind's default size
	// and a nil Position selects default placement.
	Width    int             `json:"width,omitempty"`
	Height   int             `json:"height,omitempty"`
	Position *geometry.Point `json:"position,omitempty"`
}

// Validate checks the descriptor before a panel is built from it.
func (d Descriptor) Validate() error {
	if strings.TrimSpace(d.Title) == "" {
		return fmt.Errorf("panel title is required")
	}
	if _, err := ParseKind(string(d.Kind)); err != nil {
		return err
	}
	if d.Width < 0 || d.Height < 0 {
		return fmt.Errorf("panel size must be >= 0, got %dx%d", d.Width, d.Height)
	}
	return nil
}

// Defaults supplies per-kind sizing used when building panels.
type Defaults struct {
	Standard     Limits
	Widget       Limits
	StandardSize geometry.Size
	WidgetSize   geometry.Size
}

// DefaultDefaults returns the stock sizing: 800x600 standard panels and
// 320x240 widgets with a 160x120 floor.
func DefaultDefaults() Defaults {
	return Defaults{
		Standard:     StandardLimits(),
		Widget:       Limits{MinWidth: 160, MinHeight: 120},
		StandardSize: geometry.Size{Width: DefaultMinWidth, Height: DefaultMinHeight},
		WidgetSize:   geometry.Size{Width: 320, Height: 240},
	}
}

// LimitsFor returns the minimums for a kind.
func (d Defaults) LimitsFor(k Kind) Limits {
	if k.IsWidget() {
		return d.Widget
	}
	return d.Standard
}

// SizeFor returns the default size for a kind.
func (d Defaults) SizeFor(k Kind) geometry.Size {
	if k.IsWidget() {
		return d.WidgetSize
	}
	return d.StandardSize
}

// New builds a panel from a validated descriptor. The caller assigns the id
// (when the descriptor has none), z-index and final position.
func New(id string, d Descriptor, defaults Defaults) (*Panel, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}
	kind, _ := ParseKind(string(d.Kind))
	if strings.TrimSpace(id) == "" {
		return nil, fmt.Errorf("panel id is required")
	}

	size := defaults.SizeFor(kind)
	if d.Width > 0 {
		size.Width = d.Width
	}
	if d.Height > 0 {
		size.Height = d.Height
	}
	limits := defaults.LimitsFor(kind)

	rect := limits.Clamp(geometry.Rect{Width: size.Width, Height: size.Height})
	if d.Position != nil {
		rect.Left = d.Position.X
		rect.Top = d.Position.Y
	}

	icon := d.Icon
	if icon == "" {
		icon = "web_asset"
	}

	return &Panel{
		ID:         id,
		Title:      strings.TrimSpace(d.Title),
		Kind:       kind,
		Icon:       icon,
		PersistKey: d.PersistKey,
		Geometry:   rect,
		SnapState:  geometry.RegionNone,
		Limits:     limits,
	}, nil
}
