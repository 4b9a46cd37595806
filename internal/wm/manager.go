package wm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"sync"

	"github.com/1broseidon/snapdesk/internal/geometry"
	"github.com/1broseidon/snapdesk/internal/panel"
)

var (
	// ErrPanelNotFound is returned by lookups for an unknown panel id.
	ErrPanelNotFound = panel.ErrNotFound
	// ErrDuplicatePanel is returned when creating a panel with an id in use.
	ErrDuplicatePanel = panel.ErrDuplicate
)

// GeometryPrefs loads geometry persisted for panels that carry a persist key.
type GeometryPrefs interface {
	LoadGeometry(ctx context.Context, key string) (geometry.Rect, bool, error)
}

// Config holds configuration for the window manager.
type Config struct {
	BaseZIndex int
	Viewport   geometry.Size
	Thresholds geometry.Thresholds
	Defaults   panel.Defaults
	Prefs      GeometryPrefs
	Logger     *slog.Logger
}

// Manager owns the panel registry, the stacking counter and focus.
type Manager struct {
	mu         sync.Mutex
	registry   *panel.Registry
	baseZIndex int
	topZIndex  int
	focusedID  string
	nextID     int
	viewport   geometry.Size
	thresholds geometry.Thresholds
	defaults   panel.Defaults
	prefs      GeometryPrefs
	logger     *slog.Logger

	subMu     sync.Mutex
	subs      []subscription
	nextSubID int
}

// NewManager creates a window manager with the given configuration.
func NewManager(cfg Config) *Manager {
	base := cfg.BaseZIndex
	if base <= 0 {
		base = DefaultBaseZIndex
	}
	defaults := cfg.Defaults
	if defaults == (panel.Defaults{}) {
		defaults = panel.DefaultDefaults()
	}
	thresholds := cfg.Thresholds
	if thresholds.Edge <= 0 || thresholds.CornerDivisor <= 0 {
		thresholds = geometry.DefaultThresholds()
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	return &Manager{
		registry:   panel.NewRegistry(),
		baseZIndex: base,
		topZIndex:  base,
		nextID:     1,
		viewport:   cfg.Viewport,
		thresholds: thresholds,
		defaults:   defaults,
		prefs:      cfg.Prefs,
		logger:     logger,
	}
}

// CreatePanel builds a panel from d, places it, registers it and brings it to
// the front. It returns the new panel id.
func (m *Manager) CreatePanel(d panel.Descriptor) (string, error) {
	var saved geometry.Rect
	var haveSaved bool
	if d.PersistKey != "" && m.prefs != nil && d.Position == nil && d.Width == 0 && d.Height == 0 {
		rect, ok, err := m.prefs.LoadGeometry(context.Background(), d.PersistKey)
		if err != nil {
			m.logger.Warn("failed to load persisted geometry", "key", d.PersistKey, "error", err)
		} else if ok {
			saved, haveSaved = rect, true
		}
	}

	m.mu.Lock()

	id := d.ID
	if id == "" {
		id = m.allocateIDLocked()
	}
	p, err := panel.New(id, d, m.defaults)
	if err != nil {
		m.mu.Unlock()
		return "", fmt.Errorf("invalid panel descriptor: %w", err)
	}

	switch {
	case haveSaved:
		p.Geometry = p.Limits.Clamp(saved)
	case d.Position == nil:
		p.Geometry = m.defaultPlacementLocked(p.Geometry)
	}

	if err := m.registry.Register(p); err != nil {
		m.mu.Unlock()
		if errors.Is(err, panel.ErrDuplicate) {
			m.logger.Warn("rejected duplicate panel registration", "panel", id)
		}
		return "", fmt.Errorf("register panel %s: %w", id, err)
	}
	m.setupWindowLocked(p)
	m.mu.Unlock()

	m.logger.Info("panel created", "panel", id, "kind", p.Kind, "geometry", p.Geometry.String())
	m.emit(Event{Type: EventCreated, PanelID: id}, Event{Type: EventFocused, PanelID: id})
	return id, nil
}

func (m *Manager) allocateIDLocked() string {
	for {
		id := "panel-" + strconv.Itoa(m.nextID)
		m.nextID++
		if _, exists := m.registry.Get(id); !exists {
			return id
		}
	}
}

// BringToFront raises a visible panel and focuses it. Unknown and minimized
// panels are ignored.
func (m *Manager) BringToFront(id string) bool {
	m.mu.Lock()
	p, ok := m.registry.Get(id)
	if !ok {
		m.mu.Unlock()
		m.logger.Debug("bring to front: panel not found", "panel", id)
		return false
	}
	if p.Minimized {
		m.mu.Unlock()
		m.logger.Debug("bring to front: panel is minimized", "panel", id)
		return false
	}
	m.bringToFrontLocked(p)
	m.mu.Unlock()

	m.emit(Event{Type: EventFocused, PanelID: id})
	return true
}

// Minimize hides a panel and hands focus to the next visible panel.
func (m *Manager) Minimize(id string) bool {
	m.mu.Lock()
	p, ok := m.registry.Get(id)
	if !ok {
		m.mu.Unlock()
		m.logger.Info("minimize: panel not found", "panel", id)
		return false
	}
	if p.Minimized {
		m.mu.Unlock()
		return false
	}
	p.Minimized = true
	events := []Event{{Type: EventMinimized, PanelID: id}}
	if p.Focused || m.focusedID == id {
		if next := m.refocusLocked(); next != "" {
			events = append(events, Event{Type: EventFocused, PanelID: next})
		}
	}
	m.mu.Unlock()

	m.logger.Debug("panel minimized", "panel", id)
	m.emit(events...)
	return true
}

// Restore shows a minimized panel and brings it to the front.
func (m *Manager) Restore(id string) bool {
	m.mu.Lock()
	p, ok := m.registry.Get(id)
	if !ok {
		m.mu.Unlock()
		m.logger.Info("restore: panel not found", "panel", id)
		return false
	}
	if !p.Minimized {
		m.mu.Unlock()
		return false
	}
	p.Minimized = false
	m.bringToFrontLocked(p)
	m.mu.Unlock()

	m.logger.Debug("panel restored", "panel", id)
	m.emit(Event{Type: EventRestored, PanelID: id}, Event{Type: EventFocused, PanelID: id})
	return true
}

// Close removes a panel from the registry.
func (m *Manager) Close(id string) bool {
	m.mu.Lock()
	p, ok := m.registry.Get(id)
	if !ok {
		m.mu.Unlock()
		m.logger.Info("close: panel not found", "panel", id)
		return false
	}
	wasFocused := p.Focused || m.focusedID == id
	m.registry.Remove(id)
	events := []Event{{Type: EventClosed, PanelID: id}}
	if wasFocused {
		if next := m.refocusLocked(); next != "" {
			events = append(events, Event{Type: EventFocused, PanelID: next})
		}
	}
	if m.registry.Len() == 0 {
		m.topZIndex = m.baseZIndex
	}
	m.mu.Unlock()

	m.logger.Info("panel closed", "panel", id)
	m.emit(events...)
	return true
}

// Panel returns a copy of the panel with the given id.
func (m *Manager) Panel(id string) (*panel.Panel, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.registry.Get(id)
	if !ok {
		return nil, false
	}
	return p.Clone(), true
}

// Panels returns copies of every panel ordered bottom to top.
func (m *Manager) Panels() []*panel.Panel {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.registry.Snapshot()
}

// Count returns the number of registered panels.
func (m *Manager) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.registry.Len()
}

// Focused returns the id of the focused panel, or "".
func (m *Manager) Focused() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.focusedID
}

// TopZIndex returns the current stacking counter.
func (m *Manager) TopZIndex() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.topZIndex
}

// BaseZIndex returns the counter's starting value.
func (m *Manager) BaseZIndex() int {
	return m.baseZIndex
}

// Viewport returns the usable screen size.
func (m *Manager) Viewport() geometry.Size {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.viewport
}

// Thresholds returns the snap thresholds in effect.
func (m *Manager) Thresholds() geometry.Thresholds {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.thresholds
}

// SetThresholds replaces the snap thresholds used by drag sessions.
func (m *Manager) SetThresholds(t geometry.Thresholds) {
	if t.Edge <= 0 || t.CornerDivisor <= 0 {
		return
	}
	m.mu.Lock()
	m.thresholds = t
	m.mu.Unlock()
}
