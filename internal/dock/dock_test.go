package dock

import (
	"slices"
	"testing"

	"github.com/1broseidon/snapdesk/internal/geometry"
	"github.com/1broseidon/snapdesk/internal/panel"
	"github.com/1broseidon/snapdesk/internal/timer"
	"github.com/1broseidon/snapdesk/internal/wm"
)

type harness struct {
	wm    *wm.Manager
	clock *timer.Manual
	views []View
	dock  *Controller
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{
		wm:    wm.NewManager(wm.Config{Viewport: geometry.Size{Width: 1920, Height: 1080}}),
		clock: timer.NewManual(),
	}
	h.dock = New(h.wm, Config{
		Scheduler: h.clock,
		Renderer:  RendererFunc(func(v View) { h.views = append(h.views, v) }),
	})
	h.dock.Start()
	t.Cleanup(h.dock.Stop)
	return h
}

func (h *harness) create(t *testing.T, title string) string {
	t.Helper()
	id, err := h.wm.CreatePanel(panel.Descriptor{Title: title})
	if err != nil {
		t.Fatalf("CreatePanel: %v", err)
	}
	return id
}

func TestStart_RendersEmptyDesktop(t *testing.T) {
	h := newHarness(t)
	if len(h.views) != 1 {
		t.Fatalf("expected initial render, got %d", len(h.views))
	}
	v := h.views[0]
	if !v.Hidden || !v.EmptyDesktop || v.Visible != 0 {
		t.Fatalf("initial view = %+v", v)
	}
}

func TestMinimizeRestore_UpdatesView(t *testing.T) {
	h := newHarness(t)
	a := h.create(t, "A")
	b := h.create(t, "B")

	if !h.dock.Minimize(a) {
		t.Fatal("Minimize reported false")
	}
	v := h.dock.View()
	if v.Hidden || len(v.Items) != 1 || v.Items[0].ID != a || v.Visible != 1 {
		t.Fatalf("view after minimize = %+v", v)
	}
	if got := h.dock.Tracked(); !slices.Equal(got, []string{a}) {
		t.Fatalf("Tracked() = %v", got)
	}

	h.dock.Minimize(b)
	v = h.dock.View()
	if !v.EmptyDesktop || v.Visible != 0 || len(v.Items) != 2 {
		t.Fatalf("view with everything minimized = %+v", v)
	}

	if !h.dock.Restore(a) {
		t.Fatal("Restore reported false")
	}
	v = h.dock.View()
	if v.EmptyDesktop || len(v.Items) != 1 || v.Items[0].ID != b {
		t.Fatalf("view after restore = %+v", v)
	}
	if h.wm.Focused() != a {
		t.Fatalf("restored panel not focused")
	}
}

func TestPanelInExactlyOneSet(t *testing.T) {
	h := newHarness(t)
	ids := []string{h.create(t, "A"), h.create(t, "B"), h.create(t, "C")}
	h.dock.Minimize(ids[0])
	h.dock.Minimize(ids[2])
	h.dock.Restore(ids[2])
	h.wm.Close(ids[0])
	h.clock.Advance(DefaultDebounce)

	docked := map[string]bool{}
	for _, it := range h.dock.View().Items {
		docked[it.ID] = true
	}
	for _, p := range h.wm.Panels() {
		if p.Minimized != docked[p.ID] {
			t.Fatalf("panel %s minimized=%v docked=%v", p.ID, p.Minimized, docked[p.ID])
		}
	}
	if docked[ids[0]] {
		t.Fatal("closed panel still in dock")
	}
	if len(h.dock.Tracked()) != 0 {
		t.Fatalf("Tracked() = %v", h.dock.Tracked())
	}
}

func TestEventBurstCoalesces(t *testing.T) {
	h := newHarness(t)
	before := h.dock.Renders()

	// Direct window-manager calls bypass the dock and are picked up via
	// events only.
	for i := 0; i < 5; i++ {
		h.create(t, "p")
	}
	if h.dock.Renders() != before {
		t.Fatal("rendered before the debounce window elapsed")
	}
	if h.clock.Pending() != 1 {
		t.Fatalf("expected one pending render, got %d", h.clock.Pending())
	}
	h.clock.Advance(DefaultDebounce)
	if h.dock.Renders() != before+1 {
		t.Fatalf("renders = %d, want %d", h.dock.Renders(), before+1)
	}
	if v := h.dock.View(); v.Visible != 5 || v.EmptyDesktop {
		t.Fatalf("view = %+v", v)
	}
}

func TestRender_SkipsUnchangedView(t *testing.T) {
	h := newHarness(t)
	h.create(t, "A")
	h.clock.Advance(DefaultDebounce)
	n := len(h.views)
	h.dock.Render()
	h.dock.Render()
	if len(h.views) != n {
		t.Fatalf("unchanged view re-rendered: %d -> %d", n, len(h.views))
	}
}

func TestStop_DropsPendingRender(t *testing.T) {
	h := newHarness(t)
	h.create(t, "A")
	h.dock.Stop()
	h.clock.Advance(DefaultDebounce)
	if len(h.views) != 1 {
		t.Fatalf("render after Stop: %d views", len(h.views))
	}
}

func TestUnknownIDs(t *testing.T) {
	h := newHarness(t)
	if h.dock.Minimize("ghost") || h.dock.Restore("ghost") {
		t.Fatal("unknown ids should report false")
	}
}
