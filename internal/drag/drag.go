// Package drag implements header dragging with hold-to-commit snapping.
package drag

import (
	"log/slog"
	"sync"
	"time"

	"github.com/1broseidon/snapdesk/internal/geometry"
	"github.com/1broseidon/snapdesk/internal/panel"
	"github.com/1broseidon/snapdesk/internal/timer"
)

// DefaultCommitDelay is how long the pointer must rest in a snap region
// before the snap is applied.
const DefaultCommitDelay = 200 * time.Millisecond

// Cursor is the pointer feedback shown over a panel header.
type Cursor string

const (
	CursorGrab     Cursor = "grab"
	CursorGrabbing Cursor = "grabbing"
)

// WindowManager is the subset of the window manager a drag needs.
type WindowManager interface {
	Panel(id string) (*panel.Panel, bool)
	BringToFront(id string) bool
	Move(id string, pos geometry.Point) bool
	Snap(id string, region geometry.Region) bool
	Unsnap(id string) (geometry.Rect, bool)
	ToggleFullSnap(id string) (geometry.Region, bool)
	Viewport() geometry.Size
	Thresholds() geometry.Thresholds
}

// Feedback receives visual hints during a drag. Implementations must not
// call back into the Controller.
type Feedback interface {
	ShowPreview(panelID string, region geometry.Region, rect geometry.Rect)
	HidePreview(panelID string)
	SetCursor(panelID string, c Cursor)
}

// Config holds configuration for a drag controller.
type Config struct {
	CommitDelay time.Duration
	Scheduler   timer.Scheduler
	Feedback    Feedback
	Logger      *slog.Logger
}

// Controller tracks the single active header drag.
type Controller struct {
	mu       sync.Mutex
	wm       WindowManager
	sched    timer.Scheduler
	delay    time.Duration
	feedback Feedback
	logger   *slog.Logger
	session  *session
}

// session is the state of one drag, from pointer-down to pointer-up. It owns
// the pending commit timer.
type session struct {
	panelID string
	widget  bool
	offset  geometry.Point
	pointer geometry.Point
	noSnap  bool

	// release is set when the panel was snapped at pointer-down. The first
	// move restores its pre-snap size.
	release  bool
	snapRect geometry.Rect

	pending  geometry.Region
	timer    timer.Timer
	timerGen int

	preview   geometry.Region
	committed geometry.Region
}

// New creates a drag controller operating on wm.
func New(wm WindowManager, cfg Config) *Controller {
	delay := cfg.CommitDelay
	if delay <= 0 {
		delay = DefaultCommitDelay
	}
	sched := cfg.Scheduler
	if sched == nil {
		sched = timer.Real{}
	}
	fb := cfg.Feedback
	if fb == nil {
		fb = noopFeedback{}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Controller{
		wm:       wm,
		sched:    sched,
		delay:    delay,
		feedback: fb,
		logger:   logger,
	}
}

// SetCommitDelay changes the hold delay for future timers.
func (c *Controller) SetCommitDelay(d time.Duration) {
	if d <= 0 {
		return
	}
	c.mu.Lock()
	c.delay = d
	c.mu.Unlock()
}

// Active returns the id of the panel being dragged.
func (c *Controller) Active() (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session == nil {
		return "", false
	}
	return c.session.panelID, true
}

// Down starts dragging panel id from pointer. Geometry is left alone until the
// pointer moves, so a click or double-click on a snapped header keeps the
// snap. It reports whether a drag started.
func (c *Controller) Down(id string, pointer geometry.Point, disableSnap bool) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.session != nil {
		c.endLocked()
	}

	p, ok := c.wm.Panel(id)
	if !ok {
		c.logger.Debug("drag: panel not found", "panel", id)
		return false
	}

	s := &session{
		panelID:   id,
		widget:    p.IsWidget(),
		offset:    p.Geometry.Offset(pointer),
		pointer:   pointer,
		noSnap:    disableSnap,
		pending:   geometry.RegionNone,
		preview:   geometry.RegionNone,
		committed: geometry.RegionNone,
	}
	if p.Snapped() {
		s.release = true
		s.snapRect = p.Geometry
	}
	c.session = s

	c.feedback.SetCursor(id, CursorGrabbing)
	c.wm.BringToFront(id)
	c.logger.Debug("drag started", "panel", id, "offset_x", s.offset.X, "offset_y", s.offset.Y)
	return true
}

// Move follows the pointer. It reports whether a drag is in progress.
func (c *Controller) Move(pointer geometry.Point, disableSnap bool) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := c.session
	if s == nil {
		return false
	}
	s.pointer = pointer
	s.noSnap = disableSnap
	if s.release {
		c.releaseLocked(s)
	}

	region, rect, inRegion := c.targetLocked(s)

	if s.committed.Snapped() {
		if inRegion && region == s.committed {
			return true
		}
		// The grab offset still refers to the pre-snap rect.
		if _, ok := c.wm.Unsnap(s.panelID); !ok {
			c.endLocked()
			return false
		}
		s.committed = geometry.RegionNone
	}

	pos := geometry.Point{X: pointer.X - s.offset.X, Y: pointer.Y - s.offset.Y}
	if !c.wm.Move(s.panelID, pos) {
		c.endLocked()
		return false
	}

	if !inRegion {
		c.cancelPendingLocked(s)
		c.hidePreviewLocked(s)
		return true
	}

	if s.preview != region {
		s.preview = region
		c.feedback.ShowPreview(s.panelID, region, rect)
	}
	c.armLocked(s, region)
	return true
}

// SetDisableSnap records a modifier change that happened without pointer
// movement. Holding the modifier cancels a pending commit.
func (c *Controller) SetDisableSnap(disable bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := c.session
	if s == nil {
		return
	}
	s.noSnap = disable
	if disable {
		c.cancelPendingLocked(s)
		c.hidePreviewLocked(s)
	}
}

// Up ends the drag without changing geometry. It reports whether a drag was
// in progress.
func (c *Controller) Up() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session == nil {
		return false
	}
	c.endLocked()
	return true
}

// DoubleClick toggles panel id between full-screen and its saved geometry.
func (c *Controller) DoubleClick(id string) (geometry.Region, bool) {
	c.mu.Lock()
	if c.session != nil && c.session.panelID == id {
		c.endLocked()
	}
	c.mu.Unlock()
	return c.wm.ToggleFullSnap(id)
}

// targetLocked classifies the session's pointer, honoring the widget
// exemption and the disable-snap modifier.
func (c *Controller) targetLocked(s *session) (geometry.Region, geometry.Rect, bool) {
	if s.widget || s.noSnap {
		return geometry.RegionNone, geometry.Rect{}, false
	}
	return geometry.SnapTarget(s.pointer, c.wm.Viewport(), c.wm.Thresholds())
}

// releaseLocked restores the pre-snap size of a panel that was snapped when
// the drag began and rescales the grab offset so the pointer keeps its
// relative position on the header.
func (c *Controller) releaseLocked(s *session) {
	s.release = false
	restored, ok := c.wm.Unsnap(s.panelID)
	if !ok {
		return
	}
	s.offset.X = scale(s.offset.X, s.snapRect.Width, restored.Width)
	s.offset.Y = min(s.offset.Y, max(restored.Height-1, 0))
}

// armLocked restarts the commit timer for region.
func (c *Controller) armLocked(s *session, region geometry.Region) {
	if s.timer != nil {
		s.timer.Stop()
	}
	s.pending = region
	s.timerGen++
	gen := s.timerGen
	s.timer = c.sched.AfterFunc(c.delay, func() { c.commit(s, gen) })
}

// commit runs when a commit timer fires.
func (c *Controller) commit(s *session, gen int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.session != s || s.timerGen != gen || !s.pending.Snapped() {
		return
	}
	region := s.pending
	s.pending = geometry.RegionNone
	s.timer = nil
	if s.noSnap || s.widget {
		c.hidePreviewLocked(s)
		return
	}
	if current, _, ok := c.targetLocked(s); !ok || current != region {
		return
	}
	if !c.wm.Snap(s.panelID, region) {
		return
	}
	s.committed = region
	c.hidePreviewLocked(s)
	c.logger.Debug("drag snap committed", "panel", s.panelID, "region", region)
}

func (c *Controller) cancelPendingLocked(s *session) {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.pending = geometry.RegionNone
	s.timerGen++
}

func (c *Controller) hidePreviewLocked(s *session) {
	if s.preview == geometry.RegionNone {
		return
	}
	s.preview = geometry.RegionNone
	c.feedback.HidePreview(s.panelID)
}

func (c *Controller) endLocked() {
	s := c.session
	c.session = nil
	c.cancelPendingLocked(s)
	c.hidePreviewLocked(s)
	c.feedback.SetCursor(s.panelID, CursorGrab)
	c.logger.Debug("drag ended", "panel", s.panelID)
}

func scale(v, from, to int) int {
	if from <= 0 {
		return v
	}
	return v * to / from
}

type noopFeedback struct{}

func (noopFeedback) ShowPreview(string, geometry.Region, geometry.Rect) {}
func (noopFeedback) HidePreview(string)                                 {}
func (noopFeedback) SetCursor(string, Cursor)                           {}
