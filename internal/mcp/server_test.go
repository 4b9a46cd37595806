package mcp

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/1broseidon/snapdesk/internal/geometry"
	"github.com/1broseidon/snapdesk/internal/ipc"
	"github.com/1broseidon/snapdesk/internal/panel"
)

type fakeDaemon struct {
	created []panel.Descriptor
	panels  []*panel.Panel
	calls   []string
	snaps   []string
	err     error
}

func (f *fakeDaemon) CreatePanel(_ context.Context, d panel.Descriptor) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.created = append(f.created, d)
	return "panel-1", nil
}

func (f *fakeDaemon) ListPanels(context.Context) (*ipc.PanelsData, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &ipc.PanelsData{Panels: f.panels, Focused: "panel-2"}, nil
}

func (f *fakeDaemon) op(name, id string) (bool, error) {
	f.calls = append(f.calls, name+":"+id)
	return id != "ghost", f.err
}

func (f *fakeDaemon) Focus(_ context.Context, id string) (bool, error)    { return f.op("focus", id) }
func (f *fakeDaemon) Minimize(_ context.Context, id string) (bool, error) { return f.op("minimize", id) }
func (f *fakeDaemon) Restore(_ context.Context, id string) (bool, error)  { return f.op("restore", id) }
func (f *fakeDaemon) Close(_ context.Context, id string) (bool, error)    { return f.op("close", id) }

func (f *fakeDaemon) Snap(_ context.Context, id, region string) (*ipc.ChangedData, error) {
	f.snaps = append(f.snaps, id+":"+region)
	if region == ipc.RegionToggleFull {
		return &ipc.ChangedData{Changed: true, Region: geometry.RegionFull}, nil
	}
	return &ipc.ChangedData{Changed: true, Region: geometry.Region(region)}, nil
}

func intPtr(v int) *int    { return &v }
func boolPtr(b bool) *bool { return &b }

func TestHandleListPanels(t *testing.T) {
	d := &fakeDaemon{panels: []*panel.Panel{
		{ID: "panel-1", Title: "Files", Kind: panel.KindFileManager, Minimized: true, ZIndex: 1001},
		{ID: "panel-2", Title: "Editor", Kind: panel.KindEditor, Focused: true, ZIndex: 1002,
			Geometry: geometry.Rect{Left: 0, Top: 0, Width: 960, Height: 1080}, SnapState: geometry.RegionLeft},
	}}
	s := NewServer(d, nil)
	ctx := context.Background()

	_, out, err := s.handleListPanels(ctx, nil, ListPanelsInput{})
	if err != nil {
		t.Fatalf("list_panels: %v", err)
	}
	if len(out.Panels) != 2 || out.Focused != "panel-2" {
		t.Fatalf("output = %+v", out)
	}
	if got := out.Panels[1]; got.Width != 960 || got.SnapState != "left" || !got.Focused {
		t.Fatalf("panel info = %+v", got)
	}

	_, out, err = s.handleListPanels(ctx, nil, ListPanelsInput{IncludeMinimized: boolPtr(false)})
	if err != nil {
		t.Fatalf("list_panels: %v", err)
	}
	if len(out.Panels) != 1 || out.Panels[0].ID != "panel-2" {
		t.Fatalf("visible only = %+v", out.Panels)
	}
}

func TestHandleCreatePanel(t *testing.T) {
	d := &fakeDaemon{}
	s := NewServer(d, nil)
	ctx := context.Background()

	_, out, err := s.handleCreatePanel(ctx, nil, CreatePanelInput{Title: "Clock", Kind: "widget", X: intPtr(10), Y: intPtr(20)})
	if err != nil {
		t.Fatalf("create_panel: %v", err)
	}
	if out.ID != "panel-1" {
		t.Fatalf("id = %q", out.ID)
	}
	got := d.created[0]
	if got.Kind != panel.KindWidget || got.Position == nil || *got.Position != (geometry.Point{X: 10, Y: 20}) {
		t.Fatalf("descriptor = %+v", got)
	}

	tests := []struct {
		name string
		in   CreatePanelInput
		want string
	}{
		{"missing title", CreatePanelInput{Title: "  "}, "title is required"},
		{"bad kind", CreatePanelInput{Title: "x", Kind: "dialog"}, "unknown panel kind"},
		{"half position", CreatePanelInput{Title: "x", X: intPtr(1)}, "together"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := s.handleCreatePanel(ctx, nil, tt.in)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("error = %v, want %q", err, tt.want)
			}
		})
	}
}

func TestPanelActions(t *testing.T) {
	d := &fakeDaemon{}
	s := NewServer(d, nil)
	ctx := context.Background()

	if _, out, err := s.handleFocusPanel(ctx, nil, PanelIDInput{ID: "panel-1"}); err != nil || !out.Changed {
		t.Fatalf("focus_panel = %+v, %v", out, err)
	}
	if _, out, err := s.handleMinimizePanel(ctx, nil, PanelIDInput{ID: "ghost"}); err != nil || out.Changed {
		t.Fatalf("minimize_panel on unknown = %+v, %v", out, err)
	}
	s.handleRestorePanel(ctx, nil, PanelIDInput{ID: "panel-1"})
	s.handleClosePanel(ctx, nil, PanelIDInput{ID: "panel-1"})

	want := []string{"focus:panel-1", "minimize:ghost", "restore:panel-1", "close:panel-1"}
	if strings.Join(d.calls, ",") != strings.Join(want, ",") {
		t.Fatalf("calls = %v", d.calls)
	}

	if _, _, err := s.handleClosePanel(ctx, nil, PanelIDInput{}); err == nil {
		t.Fatal("expected error for missing id")
	}

	d.err = errors.New("daemon down")
	if _, _, err := s.handleFocusPanel(ctx, nil, PanelIDInput{ID: "panel-1"}); err == nil || !strings.Contains(err.Error(), "focus_panel") {
		t.Fatalf("expected wrapped daemon error, got %v", err)
	}
}

func TestHandleSnapPanel(t *testing.T) {
	d := &fakeDaemon{}
	s := NewServer(d, nil)
	ctx := context.Background()

	_, out, err := s.handleSnapPanel(ctx, nil, SnapPanelInput{ID: "panel-1", Region: " Left "})
	if err != nil || out.Region != "left" || !out.Changed {
		t.Fatalf("snap left = %+v, %v", out, err)
	}
	_, out, err = s.handleSnapPanel(ctx, nil, SnapPanelInput{ID: "panel-1", Region: "full-toggle"})
	if err != nil || out.Region != "full" {
		t.Fatalf("toggle = %+v, %v", out, err)
	}
	if _, _, err := s.handleSnapPanel(ctx, nil, SnapPanelInput{ID: "panel-1", Region: "center"}); err == nil {
		t.Fatal("expected error for unknown region")
	}
	if len(d.snaps) != 2 {
		t.Fatalf("daemon snaps = %v", d.snaps)
	}
}
