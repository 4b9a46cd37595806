// Package dock tracks minimized panels and renders the dock and the
// empty-desktop indicator.
package dock

import (
	"log/slog"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/1broseidon/snapdesk/internal/panel"
	"github.com/1broseidon/snapdesk/internal/timer"
	"github.com/1broseidon/snapdesk/internal/wm"
)

// DefaultDebounce is the window in which bursts of panel changes coalesce
// into a single render.
const DefaultDebounce = 100 * time.Millisecond

// Item is one minimized panel shown in the dock.
type Item struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Icon  string `json:"icon"`
}

// View is everything the dock surface displays.
type View struct {
	Items []Item `json:"items"`
	// Hidden is true when nothing is minimized.
	Hidden bool `json:"hidden"`
	// Visible counts panels that are on screen.
	Visible int `json:"visible"`
	// EmptyDesktop is true when no panel is visible.
	EmptyDesktop bool `json:"empty_desktop"`
}

func (v View) equal(o View) bool {
	return v.Hidden == o.Hidden &&
		v.Visible == o.Visible &&
		v.EmptyDesktop == o.EmptyDesktop &&
		slices.Equal(v.Items, o.Items)
}

// Renderer draws the dock.
type Renderer interface {
	RenderDock(View)
}

// RendererFunc adapts a function to Renderer.
type RendererFunc func(View)

// RenderDock calls f(v).
func (f RendererFunc) RenderDock(v View) { f(v) }

// WindowManager is the subset of the window manager the dock needs.
type WindowManager interface {
	Panels() []*panel.Panel
	Minimize(id string) bool
	Restore(id string) bool
	Subscribe(l wm.Listener) func()
}

// Config holds configuration for the dock controller.
type Config struct {
	Debounce  time.Duration
	Scheduler timer.Scheduler
	Renderer  Renderer
	Logger    *slog.Logger
}

// Controller keeps the dock in sync with the window manager.
type Controller struct {
	wm       WindowManager
	sched    timer.Scheduler
	debounce time.Duration
	renderer Renderer
	logger   *slog.Logger

	mu          sync.Mutex
	minimized   map[string]struct{}
	pending     timer.Timer
	last        View
	rendered    bool
	renders     int
	unsubscribe func()
}

// New creates a dock controller. Call Start to begin tracking events.
func New(m WindowManager, cfg Config) *Controller {
	debounce := cfg.Debounce
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	sched := cfg.Scheduler
	if sched == nil {
		sched = timer.Real{}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Controller{
		wm:        m,
		sched:     sched,
		debounce:  debounce,
		renderer:  cfg.Renderer,
		logger:    logger,
		minimized: make(map[string]struct{}),
	}
}

// SetDebounce changes the coalescing window for future renders.
func (c *Controller) SetDebounce(d time.Duration) {
	if d <= 0 {
		return
	}
	c.mu.Lock()
	c.debounce = d
	c.mu.Unlock()
}

// Start subscribes to window-manager events and performs an initial render.
func (c *Controller) Start() {
	c.mu.Lock()
	if c.unsubscribe != nil {
		c.mu.Unlock()
		return
	}
	for _, p := range c.wm.Panels() {
		if p.Minimized {
			c.minimized[p.ID] = struct{}{}
		}
	}
	c.mu.Unlock()

	unsubscribe := c.wm.Subscribe(c.handleEvent)

	c.mu.Lock()
	c.unsubscribe = unsubscribe
	c.mu.Unlock()
	c.Render()
}

// Stop unsubscribes and drops any pending render.
func (c *Controller) Stop() {
	c.mu.Lock()
	unsubscribe := c.unsubscribe
	c.unsubscribe = nil
	if c.pending != nil {
		c.pending.Stop()
		c.pending = nil
	}
	c.mu.Unlock()
	if unsubscribe != nil {
		unsubscribe()
	}
}

func (c *Controller) handleEvent(ev wm.Event) {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch ev.Type {
	case wm.EventMinimized:
		c.minimized[ev.PanelID] = struct{}{}
	case wm.EventRestored, wm.EventClosed:
		delete(c.minimized, ev.PanelID)
	case wm.EventCreated:
	default:
		return
	}
	c.scheduleLocked()
}

// scheduleLocked arms the debounce timer unless one is already pending.
func (c *Controller) scheduleLocked() {
	if c.pending != nil {
		return
	}
	c.pending = c.sched.AfterFunc(c.debounce, func() {
		c.mu.Lock()
		c.pending = nil
		c.mu.Unlock()
		c.Render()
	})
}

// Minimize hides panel id into the dock.
func (c *Controller) Minimize(id string) bool {
	if !c.wm.Minimize(id) {
		return false
	}
	c.Render()
	return true
}

// Restore brings panel id back from the dock on top of every other panel.
func (c *Controller) Restore(id string) bool {
	if !c.wm.Restore(id) {
		return false
	}
	c.Render()
	return true
}

// Render recomputes the view from the window manager and pushes it to the
// renderer when it differs from the previous render.
func (c *Controller) Render() View {
	view := c.build()

	c.mu.Lock()
	changed := !c.rendered || !view.equal(c.last)
	if changed {
		c.last = view
		c.rendered = true
		c.renders++
	}
	renderer := c.renderer
	c.mu.Unlock()

	if changed {
		c.logger.Debug("dock rendered", "minimized", len(view.Items), "visible", view.Visible)
		if renderer != nil {
			renderer.RenderDock(view)
		}
	}
	return view
}

func (c *Controller) build() View {
	var view View
	for _, p := range c.wm.Panels() {
		if p.Minimized {
			view.Items = append(view.Items, Item{ID: p.ID, Title: p.Title, Icon: p.Icon})
			continue
		}
		view.Visible++
	}
	sort.Slice(view.Items, func(i, j int) bool { return view.Items[i].ID < view.Items[j].ID })
	view.Hidden = len(view.Items) == 0
	view.EmptyDesktop = view.Visible == 0
	return view
}

// View returns the most recently rendered view.
func (c *Controller) View() View {
	c.mu.Lock()
	defer c.mu.Unlock()
	v := c.last
	v.Items = slices.Clone(c.last.Items)
	return v
}

// Tracked returns the ids of panels known to be minimized, sorted.
func (c *Controller) Tracked() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	ids := make([]string, 0, len(c.minimized))
	for id := range c.minimized {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Renders returns how many times the view was pushed to the renderer.
func (c *Controller) Renders() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.renders
}
