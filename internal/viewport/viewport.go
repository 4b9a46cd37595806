// Package viewport reports the usable screen area panels are laid out in.
package viewport

import (
	"fmt"

	"github.com/1broseidon/snapdesk/internal/geometry"
)

// Provider reports the current usable screen size.
type Provider interface {
	Size() (geometry.Size, error)
}

// Static always reports the same size.
type Static geometry.Size

// Size returns the fixed size.
func (s Static) Size() (geometry.Size, error) {
	size := geometry.Size(s)
	if !size.Valid() {
		return geometry.Size{}, fmt.Errorf("invalid static viewport %s", size)
	}
	return size, nil
}

// Usable clips a monitor rect to the work area reserved by docks and panels.
// A work area that does not overlap the monitor is ignored.
func Usable(monitor, workarea geometry.Rect) geometry.Rect {
	if workarea.Empty() {
		return monitor
	}
	clipped := monitor.Intersect(workarea)
	if clipped.Empty() {
		return monitor
	}
	return clipped
}
