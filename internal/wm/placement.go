package wm

import (
	"github.com/1broseidon/snapdesk/internal/geometry"
	"github.com/1broseidon/snapdesk/internal/panel"
)

const (
	// placementMargin keeps new panels off the very edge of the screen.
	placementMargin = 10
	// cascadeStep offsets each new panel from the ones already visible.
	cascadeStep = 30
)

// defaultPlacementLocked centers r in the viewport and cascades it by the
// number of visible panels. The size of r is preserved.
func (m *Manager) defaultPlacementLocked(r geometry.Rect) geometry.Rect {
	visible := 0
	m.registry.ForEach(func(p *panel.Panel) {
		if !p.Minimized {
			visible++
		}
	})

	left, top := placementMargin, placementMargin
	if m.viewport.Valid() {
		left = max(placementMargin, (m.viewport.Width-r.Width)/2)
		top = max(placementMargin, (m.viewport.Height-r.Height)/2)
	}
	offset := visible * cascadeStep
	r.Left = left + offset
	r.Top = top + offset

	// Wrap the cascade once it would push the panel's top-left off screen.
	if m.viewport.Valid() {
		if r.Left >= m.viewport.Width-cascadeStep || r.Top >= m.viewport.Height-cascadeStep {
			r.Left, r.Top = left, top
		}
	}
	return r
}
