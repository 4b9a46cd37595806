// Package desktop routes pointer input to the window-management controllers.
package desktop

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/1broseidon/snapdesk/internal/dock"
	"github.com/1broseidon/snapdesk/internal/drag"
	"github.com/1broseidon/snapdesk/internal/geometry"
	"github.com/1broseidon/snapdesk/internal/resize"
	"github.com/1broseidon/snapdesk/internal/wm"
)

// PointerType is the kind of pointer event.
type PointerType string

const (
	PointerDown        PointerType = "down"
	PointerMove        PointerType = "move"
	PointerUp          PointerType = "up"
	PointerDoubleClick PointerType = "dblclick"
)

// ParsePointerType converts an event name into a PointerType.
func ParsePointerType(s string) (PointerType, error) {
	switch t := PointerType(s); t {
	case PointerDown, PointerMove, PointerUp, PointerDoubleClick:
		return t, nil
	default:
		return "", fmt.Errorf("unknown pointer event %q", s)
	}
}

// PointerEvent is one pointer input in screen coordinates.
type PointerEvent struct {
	Type PointerType `json:"type"`
	X    int         `json:"x"`
	Y    int         `json:"y"`
	// DisableSnap is true while the snap-disabling modifier is held.
	DisableSnap bool `json:"disable_snap,omitempty"`
}

// Point returns the event position.
func (e PointerEvent) Point() geometry.Point {
	return geometry.Point{X: e.X, Y: e.Y}
}

// Action describes what a pointer event did.
type Action string

const (
	ActionNone       Action = "none"
	ActionRaise      Action = "raise"
	ActionDragStart  Action = "drag-start"
	ActionDrag       Action = "drag"
	ActionDragEnd    Action = "drag-end"
	ActionResize     Action = "resize-start"
	ActionResizing   Action = "resize"
	ActionResizeEnd  Action = "resize-end"
	ActionControl    Action = "control"
	ActionToggleFull Action = "toggle-full"
)

// Result reports how an event was routed.
type Result struct {
	Action Action `json:"action"`
	Hit    *Hit   `json:"hit,omitempty"`
}

// Config holds configuration for the desktop router.
type Config struct {
	Chrome Chrome
	// OnRefresh runs when a panel's refresh control is pressed.
	OnRefresh func(panelID string)
	Logger    *slog.Logger
}

// Desktop hit-tests pointer events and forwards them to the window manager
// and the drag, resize and dock controllers.
type Desktop struct {
	wm        *wm.Manager
	drag      *drag.Controller
	resize    *resize.Controller
	dock      *dock.Controller
	chrome    Chrome
	onRefresh func(string)
	logger    *slog.Logger
}

// New creates a desktop router.
func New(m *wm.Manager, d *drag.Controller, r *resize.Controller, dk *dock.Controller, cfg Config) *Desktop {
	chrome := cfg.Chrome
	if chrome.HeaderHeight <= 0 {
		chrome = DefaultChrome()
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Desktop{
		wm:        m,
		drag:      d,
		resize:    r,
		dock:      dk,
		chrome:    chrome,
		onRefresh: cfg.OnRefresh,
		logger:    logger,
	}
}

// Chrome returns the decoration layout in use.
func (d *Desktop) Chrome() Chrome {
	return d.chrome
}

// HitTest finds the topmost visible panel under pt.
func (d *Desktop) HitTest(pt geometry.Point) (Hit, bool) {
	panels := d.wm.Panels()
	for i := len(panels) - 1; i >= 0; i-- {
		p := panels[i]
		if p.Minimized || !p.Geometry.Contains(pt) {
			continue
		}
		return d.chrome.Classify(p, pt), true
	}
	return Hit{}, false
}

// Dispatch routes one pointer event.
func (d *Desktop) Dispatch(ctx context.Context, ev PointerEvent) Result {
	switch ev.Type {
	case PointerDown:
		return d.down(ev)
	case PointerMove:
		if d.drag.Move(ev.Point(), ev.DisableSnap) {
			return Result{Action: ActionDrag}
		}
		if d.resize.Move(ev.Point()) {
			return Result{Action: ActionResizing}
		}
	case PointerUp:
		if d.drag.Up() {
			return Result{Action: ActionDragEnd}
		}
		if d.resize.Up(ctx) {
			return Result{Action: ActionResizeEnd}
		}
	case PointerDoubleClick:
		hit, ok := d.HitTest(ev.Point())
		if ok && hit.Part == PartHeader {
			if _, ok := d.drag.DoubleClick(hit.PanelID); ok {
				return Result{Action: ActionToggleFull, Hit: &hit}
			}
		}
	default:
		d.logger.Debug("ignoring pointer event", "type", ev.Type)
	}
	return Result{Action: ActionNone}
}

// SetDisableSnap forwards a modifier change to an active drag.
func (d *Desktop) SetDisableSnap(disable bool) {
	d.drag.SetDisableSnap(disable)
}

func (d *Desktop) down(ev PointerEvent) Result {
	hit, ok := d.HitTest(ev.Point())
	if !ok {
		return Result{Action: ActionNone}
	}

	switch hit.Part {
	case PartHeader:
		if d.drag.Down(hit.PanelID, ev.Point(), ev.DisableSnap) {
			return Result{Action: ActionDragStart, Hit: &hit}
		}
	case PartHandle:
		if d.resize.Down(hit.PanelID, hit.Handle, ev.Point()) {
			return Result{Action: ActionResize, Hit: &hit}
		}
	case PartControl:
		d.runControl(hit)
		return Result{Action: ActionControl, Hit: &hit}
	case PartBody:
		if d.wm.BringToFront(hit.PanelID) {
			return Result{Action: ActionRaise, Hit: &hit}
		}
	}
	return Result{Action: ActionNone, Hit: &hit}
}

// runControl performs a header button action. Controls do not raise the
// panel.
func (d *Desktop) runControl(hit Hit) {
	switch hit.Control {
	case ControlMinimize:
		d.dock.Minimize(hit.PanelID)
	case ControlClose:
		d.wm.Close(hit.PanelID)
	case ControlRefresh:
		if d.onRefresh != nil {
			d.onRefresh(hit.PanelID)
		}
	default:
		d.logger.Debug("unknown control", "control", hit.Control, "panel", hit.PanelID)
	}
}
