// Package resize implements handle-based panel resizing with minimum-size
// clamping.
package resize

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/1broseidon/snapdesk/internal/geometry"
	"github.com/1broseidon/snapdesk/internal/panel"
)

// Handle names a resize grip on a panel's border.
type Handle string

const (
	HandleN  Handle = "n"
	HandleS  Handle = "s"
	HandleE  Handle = "e"
	HandleW  Handle = "w"
	HandleNE Handle = "ne"
	HandleNW Handle = "nw"
	HandleSE Handle = "se"
	HandleSW Handle = "sw"
)

// Handles lists every handle. Simple panels only expose HandleSE.
var Handles = []Handle{HandleN, HandleS, HandleE, HandleW, HandleNE, HandleNW, HandleSE, HandleSW}

// ParseHandle converts a handle name into a Handle.
func ParseHandle(s string) (Handle, error) {
	for _, h := range Handles {
		if string(h) == s {
			return h, nil
		}
	}
	return "", fmt.Errorf("unknown resize handle %q", s)
}

func (h Handle) west() bool  { return h == HandleW || h == HandleNW || h == HandleSW }
func (h Handle) east() bool  { return h == HandleE || h == HandleNE || h == HandleSE }
func (h Handle) north() bool { return h == HandleN || h == HandleNE || h == HandleNW }
func (h Handle) south() bool { return h == HandleS || h == HandleSE || h == HandleSW }

// Apply computes the rect produced by dragging handle h by delta from start.
// Each axis is clamped independently to the limits. West and north handles
// move the left and top edges by the change in size so the opposite edge
// stays fixed.
func Apply(h Handle, start geometry.Rect, delta geometry.Point, limits panel.Limits) geometry.Rect {
	r := start
	switch {
	case h.east():
		r.Width = max(limits.MinWidth, start.Width+delta.X)
	case h.west():
		r.Width = max(limits.MinWidth, start.Width-delta.X)
		if r.Width != start.Width {
			r.Left = start.Left + (start.Width - r.Width)
		}
	}
	switch {
	case h.south():
		r.Height = max(limits.MinHeight, start.Height+delta.Y)
	case h.north():
		r.Height = max(limits.MinHeight, start.Height-delta.Y)
		if r.Height != start.Height {
			r.Top = start.Top + (start.Height - r.Height)
		}
	}
	return r
}

// WindowManager is the subset of the window manager a resize needs.
type WindowManager interface {
	Panel(id string) (*panel.Panel, bool)
	BringToFront(id string) bool
	ClearSnap(id string) (geometry.Rect, bool)
	SetGeometry(id string, r geometry.Rect) (geometry.Rect, bool)
}

// GeometryStore persists the final geometry of panels with a persist key.
type GeometryStore interface {
	SaveGeometry(ctx context.Context, key string, r geometry.Rect) error
}

// Config holds configuration for a resize controller.
type Config struct {
	Store  GeometryStore
	Logger *slog.Logger
}

// Controller tracks the single active resize.
type Controller struct {
	mu      sync.Mutex
	wm      WindowManager
	store   GeometryStore
	logger  *slog.Logger
	session *session
}

type session struct {
	panelID    string
	persistKey string
	handle     Handle
	limits     panel.Limits
	start      geometry.Point
	startRect  geometry.Rect
	last       geometry.Rect
}

// New creates a resize controller operating on wm.
func New(wm WindowManager, cfg Config) *Controller {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Controller{wm: wm, store: cfg.Store, logger: logger}
}

// Active returns the id of the panel being resized.
func (c *Controller) Active() (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session == nil {
		return "", false
	}
	return c.session.panelID, true
}

// Down starts resizing panel id from handle h. Any snap state is dropped and
// the current rect becomes the starting rect.
func (c *Controller) Down(id string, h Handle, pointer geometry.Point) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	p, ok := c.wm.Panel(id)
	if !ok {
		c.logger.Debug("resize: panel not found", "panel", id)
		return false
	}
	rect, ok := c.wm.ClearSnap(id)
	if !ok {
		return false
	}
	c.session = &session{
		panelID:    id,
		persistKey: p.PersistKey,
		handle:     h,
		limits:     p.Limits,
		start:      pointer,
		startRect:  rect,
		last:       rect,
	}
	c.wm.BringToFront(id)
	c.logger.Debug("resize started", "panel", id, "handle", h)
	return true
}

// Move resizes the panel for the current pointer position. It reports
// whether a resize is in progress.
func (c *Controller) Move(pointer geometry.Point) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := c.session
	if s == nil {
		return false
	}
	delta := geometry.Point{X: pointer.X - s.start.X, Y: pointer.Y - s.start.Y}
	next := Apply(s.handle, s.startRect, delta, s.limits)
	if next == s.last {
		return true
	}
	applied, ok := c.wm.SetGeometry(s.panelID, next)
	if !ok {
		c.session = nil
		return false
	}
	s.last = applied
	return true
}

// Up ends the resize and persists the final rect for panels with a persist
// key. It reports whether a resize was in progress.
func (c *Controller) Up(ctx context.Context) bool {
	c.mu.Lock()
	s := c.session
	c.session = nil
	c.mu.Unlock()

	if s == nil {
		return false
	}
	c.logger.Debug("resize ended", "panel", s.panelID, "geometry", s.last.String())
	if s.persistKey == "" || c.store == nil {
		return true
	}
	if err := c.store.SaveGeometry(ctx, s.persistKey, s.last); err != nil {
		c.logger.Warn("failed to persist panel geometry", "panel", s.panelID, "key", s.persistKey, "error", err)
	}
	return true
}
