package viewport

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/BurntSushi/xgb/randr"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/ewmh"

	"github.com/1broseidon/snapdesk/internal/geometry"
)

// X11 reads the primary monitor's usable area from the X server.
type X11 struct {
	xu     *xgbutil.XUtil
	root   xproto.Window
	randr  bool
	logger *slog.Logger
	mu     sync.Mutex
}

// NewX11 connects to the X server named by $DISPLAY.
func NewX11(logger *slog.Logger) (*X11, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	xu, err := xgbutil.NewConn()
	if err != nil {
		return nil, fmt.Errorf("connect to X server: %w", err)
	}
	x := &X11{xu: xu, root: xu.RootWin(), logger: logger}
	if err := randr.Init(xu.Conn()); err != nil {
		logger.Warn("randr unavailable, using root window geometry", "error", err)
	} else {
		x.randr = true
	}
	return x, nil
}

// Size returns the primary monitor clipped to the EWMH work area of the
// current desktop.
func (x *X11) Size() (geometry.Size, error) {
	x.mu.Lock()
	defer x.mu.Unlock()

	monitor, err := x.primaryMonitor()
	if err != nil {
		return geometry.Size{}, err
	}
	usable := Usable(monitor, x.workarea())
	return usable.Size(), nil
}

func (x *X11) primaryMonitor() (geometry.Rect, error) {
	if x.randr {
		if r, ok := x.randrPrimary(); ok {
			return r, nil
		}
	}
	geom, err := xproto.GetGeometry(x.xu.Conn(), xproto.Drawable(x.root)).Reply()
	if err != nil {
		return geometry.Rect{}, fmt.Errorf("query root geometry: %w", err)
	}
	return geometry.Rect{Width: int(geom.Width), Height: int(geom.Height)}, nil
}

func (x *X11) randrPrimary() (geometry.Rect, bool) {
	conn := x.xu.Conn()
	primary, err := randr.GetOutputPrimary(conn, x.root).Reply()
	if err != nil || primary.Output == 0 {
		return geometry.Rect{}, false
	}
	output, err := randr.GetOutputInfo(conn, primary.Output, 0).Reply()
	if err != nil || output.Crtc == 0 {
		return geometry.Rect{}, false
	}
	crtc, err := randr.GetCrtcInfo(conn, output.Crtc, 0).Reply()
	if err != nil || crtc.Width == 0 || crtc.Height == 0 {
		return geometry.Rect{}, false
	}
	return geometry.Rect{
		Left:   int(crtc.X),
		Top:    int(crtc.Y),
		Width:  int(crtc.Width),
		Height: int(crtc.Height),
	}, true
}

func (x *X11) workarea() geometry.Rect {
	areas, err := ewmh.WorkareaGet(x.xu)
	if err != nil || len(areas) == 0 {
		return geometry.Rect{}
	}
	idx := 0
	if desktop, err := ewmh.CurrentDesktopGet(x.xu); err == nil && int(desktop) < len(areas) {
		idx = int(desktop)
	}
	wa := areas[idx]
	return geometry.Rect{Left: int(wa.X), Top: int(wa.Y), Width: int(wa.Width), Height: int(wa.Height)}
}

// Close disconnects from the X server.
func (x *X11) Close() {
	x.xu.Conn().Close()
}
