package wm

import "github.com/1broseidon/snapdesk/internal/panel"

// DefaultBaseZIndex is the z-index the stacking counter starts from.
const DefaultBaseZIndex = 1000

// setupWindowLocked gives a freshly registered panel its initial z-index and
// focus.
func (m *Manager) setupWindowLocked(p *panel.Panel) {
	m.topZIndex++
	p.ZIndex = m.topZIndex
	m.bringToFrontLocked(p)
}

// bringToFrontLocked raises p above every other panel and moves the focus
// flag to it.
func (m *Manager) bringToFrontLocked(p *panel.Panel) {
	current := p.ZIndex
	if current == 0 {
		current = m.baseZIndex
	}
	m.topZIndex = max(m.topZIndex, current) + 1
	p.ZIndex = m.topZIndex

	m.registry.ForEach(func(other *panel.Panel) {
		if other == p {
			return
		}
		other.Focused = false
		if other.ZIndex >= m.topZIndex {
			other.ZIndex--
		}
	})
	p.Focused = true
	m.focusedID = p.ID

	m.compactLocked()
}

// compactLocked renumbers z-indices densely from base+1 once the counter has
// drifted more than two slots per panel above the base. Relative order is
// preserved.
func (m *Manager) compactLocked() {
	n := m.registry.Len()
	if n == 0 {
		m.topZIndex = m.baseZIndex
		return
	}
	if m.topZIndex-m.baseZIndex <= 2*n {
		return
	}
	for i, p := range m.registry.ByZIndex() {
		p.ZIndex = m.baseZIndex + i + 1
	}
	m.topZIndex = m.baseZIndex + n
	m.logger.Debug("z-order compacted", "panels", n, "top", m.topZIndex)
}

// refocusLocked hands focus to the highest visible panel after the focused
// panel was minimized or closed. It returns the new focused id, if any.
func (m *Manager) refocusLocked() string {
	m.focusedID = ""
	var best *panel.Panel
	m.registry.ForEach(func(p *panel.Panel) {
		p.Focused = false
		if p.Minimized {
			return
		}
		if best == nil || p.ZIndex > best.ZIndex || (p.ZIndex == best.ZIndex && p.ID > best.ID) {
			best = p
		}
	})
	if best == nil {
		return ""
	}
	best.Focused = true
	m.focusedID = best.ID
	return best.ID
}
