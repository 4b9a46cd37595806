package panel

import (
	"errors"
	"sort"
)

var (
	// ErrNotFound is returned when a panel id is not registered.
	ErrNotFound = errors.New("panel not found")
	// ErrDuplicate is returned when registering an id that is already present.
	ErrDuplicate = errors.New("panel already registered")
)

// Registry maps panel ids to panels. It is not safe for concurrent use; the
// window manager serializes access.
type Registry struct {
	panels map[string]*Panel
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{panels: make(map[string]*Panel)}
}

// Register inserts p keyed by its id. A duplicate id is rejected and the
// existing entry is left untouched.
func (r *Registry) Register(p *Panel) error {
	if p == nil {
		return errors.New("panel is nil")
	}
	if _, exists := r.panels[p.ID]; exists {
		return ErrDuplicate
	}
	r.panels[p.ID] = p
	return nil
}

// Get returns the panel for id.
func (r *Registry) Get(id string) (*Panel, bool) {
	p, ok := r.panels[id]
	return p, ok
}

// Remove deletes id. Removing an absent id is a no-op.
func (r *Registry) Remove(id string) {
	delete(r.panels, id)
}

// Len returns the number of registered panels.
func (r *Registry) Len() int {
	return len(r.panels)
}

// ForEach calls fn for every panel in no particular order.
func (r *Registry) ForEach(fn func(*Panel)) {
	for _, p := range r.panels {
		fn(p)
	}
}

// ByZIndex returns the registered panels ordered bottom to top. Ties are
// broken by id so the order is stable.
func (r *Registry) ByZIndex() []*Panel {
	out := make([]*Panel, 0, len(r.panels))
	for _, p := range r.panels {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].ZIndex != out[j].ZIndex {
			return out[i].ZIndex < out[j].ZIndex
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// Snapshot returns deep copies of all panels ordered bottom to top.
func (r *Registry) Snapshot() []*Panel {
	ordered := r.ByZIndex()
	out := make([]*Panel, len(ordered))
	for i, p := range ordered {
		out[i] = p.Clone()
	}
	return out
}
