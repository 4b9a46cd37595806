package wm

import (
	"github.com/1broseidon/snapdesk/internal/geometry"
	"github.com/1broseidon/snapdesk/internal/panel"
)

// lookupLocked returns the panel for id, logging when it does not exist.
func (m *Manager) lookupLocked(op, id string) (*panel.Panel, bool) {
	p, ok := m.registry.Get(id)
	if !ok {
		m.logger.Debug(op+": panel not found", "panel", id)
	}
	return p, ok
}

// Move places the panel's top-left corner at pos. Position is not clamped to
// the viewport. A snapped panel loses its snap state and keeps its current
// size.
func (m *Manager) Move(id string, pos geometry.Point) bool {
	m.mu.Lock()
	p, ok := m.lookupLocked("move", id)
	if !ok {
		m.mu.Unlock()
		return false
	}
	if p.Snapped() {
		p.ClearSnap()
	}
	p.Geometry.Left = pos.X
	p.Geometry.Top = pos.Y
	m.mu.Unlock()

	m.emit(Event{Type: EventGeometry, PanelID: id})
	return true
}

// SetGeometry replaces the panel's free-form rect. The size is clamped up to
// the panel's minimums and any snap state is dropped.
func (m *Manager) SetGeometry(id string, r geometry.Rect) (geometry.Rect, bool) {
	m.mu.Lock()
	p, ok := m.lookupLocked("set geometry", id)
	if !ok {
		m.mu.Unlock()
		return geometry.Rect{}, false
	}
	p.ClearSnap()
	p.Geometry = p.Limits.Clamp(r)
	applied := p.Geometry
	m.mu.Unlock()

	m.emit(Event{Type: EventGeometry, PanelID: id})
	return applied, true
}

// ClearSnap drops the panel's snap state, keeping its current rect as the new
// free-form geometry. It returns that rect.
func (m *Manager) ClearSnap(id string) (geometry.Rect, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.lookupLocked("clear snap", id)
	if !ok {
		return geometry.Rect{}, false
	}
	p.ClearSnap()
	return p.Geometry, true
}

// Snap moves the panel into region's rect for the current viewport. Widgets
// never snap. Snapping to RegionNone is the same as Unsnap.
func (m *Manager) Snap(id string, region geometry.Region) bool {
	if !region.Snapped() {
		_, ok := m.Unsnap(id)
		return ok
	}

	m.mu.Lock()
	p, ok := m.lookupLocked("snap", id)
	if !ok {
		m.mu.Unlock()
		return false
	}
	if p.IsWidget() {
		m.mu.Unlock()
		m.logger.Debug("snap: widgets do not snap", "panel", id)
		return false
	}
	rect, ok := geometry.RegionRect(region, m.viewport)
	if !ok {
		m.mu.Unlock()
		m.logger.Warn("snap: no usable viewport", "panel", id, "viewport", m.viewport.String())
		return false
	}
	p.ApplySnap(region, rect)
	m.mu.Unlock()

	m.logger.Debug("panel snapped", "panel", id, "region", region)
	m.emit(Event{Type: EventGeometry, PanelID: id})
	return true
}

// Unsnap restores the panel's pre-snap geometry. It returns the resulting
// rect and whether the panel existed.
func (m *Manager) Unsnap(id string) (geometry.Rect, bool) {
	m.mu.Lock()
	p, ok := m.lookupLocked("unsnap", id)
	if !ok {
		m.mu.Unlock()
		return geometry.Rect{}, false
	}
	changed := p.Unsnap()
	rect := p.Geometry
	m.mu.Unlock()

	if changed {
		m.emit(Event{Type: EventGeometry, PanelID: id})
	}
	return rect, true
}

// ToggleFullSnap switches a panel between full-screen and its saved geometry.
// It returns the resulting snap state. The check and the change happen under
// one lock hold so concurrent toggles alternate.
func (m *Manager) ToggleFullSnap(id string) (geometry.Region, bool) {
	m.mu.Lock()
	p, ok := m.lookupLocked("toggle full", id)
	if !ok {
		m.mu.Unlock()
		return geometry.RegionNone, false
	}

	result := geometry.RegionNone
	changed := false
	switch {
	case p.SnapState == geometry.RegionFull:
		changed = p.Unsnap()
	case p.IsWidget():
		m.mu.Unlock()
		m.logger.Debug("toggle full: widgets do not snap", "panel", id)
		return geometry.RegionNone, false
	default:
		rect, ok := geometry.RegionRect(geometry.RegionFull, m.viewport)
		if !ok {
			m.mu.Unlock()
			m.logger.Warn("toggle full: no usable viewport", "panel", id, "viewport", m.viewport.String())
			return geometry.RegionNone, false
		}
		p.ApplySnap(geometry.RegionFull, rect)
		result, changed = geometry.RegionFull, true
	}
	m.mu.Unlock()

	m.logger.Debug("panel toggled full", "panel", id, "region", result)
	if changed {
		m.emit(Event{Type: EventGeometry, PanelID: id})
	}
	return result, true
}

// SetViewport records a new usable screen size and re-fits every snapped
// panel to its region.
func (m *Manager) SetViewport(size geometry.Size) {
	m.mu.Lock()
	if size == m.viewport {
		m.mu.Unlock()
		return
	}
	m.viewport = size
	events := []Event{{Type: EventViewport}}
	if size.Valid() {
		for _, p := range m.registry.ByZIndex() {
			if !p.Snapped() {
				continue
			}
			rect, ok := geometry.RegionRect(p.SnapState, size)
			if !ok {
				continue
			}
			p.Geometry = rect
			events = append(events, Event{Type: EventGeometry, PanelID: p.ID})
		}
	}
	m.mu.Unlock()

	m.logger.Info("viewport changed", "size", size.String())
	m.emit(events...)
}
