package wm

// EventType identifies a window-manager change notification.
type EventType string

const (
	EventCreated   EventType = "created"
	EventFocused   EventType = "focused"
	EventMinimized EventType = "minimized"
	EventRestored  EventType = "restored"
	EventClosed    EventType = "closed"
	EventGeometry  EventType = "geometry"
	EventViewport  EventType = "viewport"
)

// Event is published after a registry mutation. PanelID is empty for
// viewport events.
type Event struct {
	Type    EventType
	PanelID string
}

// Listener receives events. Listeners run on the goroutine that caused the
// change, after the manager lock has been released, so they may call back
// into the manager.
type Listener func(Event)

type subscription struct {
	id int
	fn Listener
}

// Subscribe registers l and returns a function that removes it.
func (m *Manager) Subscribe(l Listener) func() {
	m.subMu.Lock()
	defer m.subMu.Unlock()
	m.nextSubID++
	id := m.nextSubID
	m.subs = append(m.subs, subscription{id: id, fn: l})
	return func() {
		m.subMu.Lock()
		defer m.subMu.Unlock()
		for i, s := range m.subs {
			if s.id == id {
				m.subs = append(m.subs[:i], m.subs[i+1:]...)
				return
			}
		}
	}
}

func (m *Manager) emit(events ...Event) {
	if len(events) == 0 {
		return
	}
	m.subMu.Lock()
	subs := make([]subscription, len(m.subs))
	copy(subs, m.subs)
	m.subMu.Unlock()

	for _, ev := range events {
		for _, s := range subs {
			s.fn(ev)
		}
	}
}
